package tsemitter

import (
	"sort"
	"strings"

	genspec "github.com/sodeprecated/openapi-to-ts-client/internal/spec"
)

// TypeMapper converts schema nodes into TypeScript type expressions. It is a
// pure function of the node plus the registry, except that it records which
// named types were referenced so callers can build import lists.
type TypeMapper struct {
	reg  *genspec.Registry
	deps map[string]struct{}
}

func NewTypeMapper(reg *genspec.Registry) *TypeMapper {
	return &TypeMapper{reg: reg, deps: make(map[string]struct{})}
}

// MapType renders one schema node as a TypeScript type expression.
// References emit the bare type name, never an inlined body, so cyclic
// schema graphs terminate.
func (m *TypeMapper) MapType(n *genspec.SchemaNode) string {
	if n == nil {
		return "unknown"
	}
	switch n.Kind {
	case genspec.KindPrimitive:
		switch n.Primitive {
		case genspec.PrimString:
			return "string"
		case genspec.PrimNumber:
			return "number"
		case genspec.PrimBoolean:
			return "boolean"
		case genspec.PrimNull:
			return "null"
		}
		return "unknown"
	case genspec.KindArray:
		item := m.MapType(n.Item)
		if n.Item != nil && n.Item.Kind == genspec.KindUnion {
			return "(" + item + ")[]"
		}
		return item + "[]"
	case genspec.KindObject:
		if len(n.Props) == 0 {
			return "{}"
		}
		parts := make([]string, 0, len(n.Props))
		for _, p := range n.Props {
			opt := "?"
			if p.Required {
				opt = ""
			}
			parts = append(parts, tsPropName(p.Name)+opt+": "+m.MapType(p.Schema))
		}
		return "{ " + strings.Join(parts, "; ") + " }"
	case genspec.KindUnion:
		parts := make([]string, 0, len(n.Variants))
		for _, v := range n.Variants {
			parts = append(parts, m.MapType(v))
		}
		return strings.Join(parts, " | ")
	case genspec.KindRef:
		m.deps[n.Ref] = struct{}{}
		return n.Ref
	}
	return "unknown"
}

// Deps returns the named types referenced through this mapper, sorted.
func (m *TypeMapper) Deps() []string {
	out := make([]string, 0, len(m.deps))
	for name := range m.deps {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// tsPropName quotes property names that are not valid TypeScript
// identifiers.
func tsPropName(name string) string {
	if isTSIdent(name) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `\"`) + `"`
}

func isTSIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		alpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' || r == '$'
		if i == 0 {
			if !alpha {
				return false
			}
			continue
		}
		if !alpha && !(r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
