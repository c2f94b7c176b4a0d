package spec

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// componentRefPrefix is the only $ref shape the generator resolves. Anything
// else (remote documents, file-relative refs, non-schema components) aborts
// generation.
const componentRefPrefix = "#/components/schemas/"

// BuildOption configures how the ClientModel is built from an OpenAPI doc.
type BuildOption func(*buildConfig)

type buildConfig struct {
	includeNamespaces map[string]struct{}
	excludeNamespaces map[string]struct{}
}

// WithIncludeNamespaces keeps only operations whose namespace is listed.
func WithIncludeNamespaces(names []string) BuildOption {
	return func(c *buildConfig) {
		for _, n := range names {
			n = strings.TrimSpace(n)
			if n == "" {
				continue
			}
			if c.includeNamespaces == nil {
				c.includeNamespaces = make(map[string]struct{})
			}
			c.includeNamespaces[n] = struct{}{}
		}
	}
}

// WithExcludeNamespaces drops operations whose namespace is listed.
func WithExcludeNamespaces(names []string) BuildOption {
	return func(c *buildConfig) {
		for _, n := range names {
			n = strings.TrimSpace(n)
			if n == "" {
				continue
			}
			if c.excludeNamespaces == nil {
				c.excludeNamespaces = make(map[string]struct{})
			}
			c.excludeNamespaces[n] = struct{}{}
		}
	}
}

type builder struct {
	doc      *openapi3.T
	reg      *Registry
	warnings []Warning
}

func (b *builder) warnf(code WarningCode, format string, args ...any) {
	b.warnings = append(b.warnings, Warning{Code: code, Message: fmt.Sprintf(format, args...)})
}

// BuildClientModel resolves the document's schemas and operations into the
// shared intermediate model. Reference errors are fatal; schema anomalies
// degrade to the unknown placeholder and are reported as warnings on the
// returned model.
func BuildClientModel(ctx context.Context, doc *openapi3.T, opts ...BuildOption) (*ClientModel, error) {
	_ = ctx
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}

	cfg := &buildConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	b := &builder{doc: doc, reg: NewRegistry()}
	if err := b.registerComponents(); err != nil {
		return nil, err
	}
	namespaces, err := b.collectOperations(cfg)
	if err != nil {
		return nil, err
	}

	cm := &ClientModel{
		Registry:   b.reg,
		Namespaces: namespaces,
		Warnings:   b.warnings,
	}
	if doc.Info != nil {
		cm.Title = strings.TrimSpace(doc.Info.Title)
		cm.Version = strings.TrimSpace(doc.Info.Version)
	}
	for _, s := range doc.Servers {
		if s != nil && strings.TrimSpace(s.URL) != "" {
			cm.BaseURL = strings.TrimSpace(s.URL)
			break
		}
	}
	return cm, nil
}

// registerComponents registers every named component schema. A placeholder
// pass runs first so schema bodies can reference names that convert later,
// including their own (cycles).
func (b *builder) registerComponents() error {
	if b.doc.Components == nil || len(b.doc.Components.Schemas) == 0 {
		return nil
	}
	names := make([]string, 0, len(b.doc.Components.Schemas))
	for name := range b.doc.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		b.reg.Register(name, &SchemaNode{Kind: KindUnknown})
	}
	for _, name := range names {
		node, err := b.convertSchema(b.doc.Components.Schemas[name], "schema "+name)
		if err != nil {
			return err
		}
		b.reg.Register(name, node)
	}
	return nil
}

// convertSchema translates one raw schema body into a SchemaNode. origin
// names the document fragment for warnings and errors.
func (b *builder) convertSchema(ref *openapi3.SchemaRef, origin string) (*SchemaNode, error) {
	if ref == nil {
		b.warnf(UnparseableSchema, "%s: missing schema, using unknown", origin)
		return &SchemaNode{Kind: KindUnknown}, nil
	}
	if ref.Ref != "" {
		return b.refNode(ref.Ref, origin)
	}
	v := ref.Value
	if v == nil {
		b.warnf(UnparseableSchema, "%s: empty schema, using unknown", origin)
		return &SchemaNode{Kind: KindUnknown}, nil
	}

	if variants := v.OneOf; len(variants) > 0 {
		return b.unionNode(variants, origin)
	}
	if variants := v.AnyOf; len(variants) > 0 {
		return b.unionNode(variants, origin)
	}
	if len(v.AllOf) > 0 {
		// allOf merging is out of scope; degrade rather than guess.
		b.warnf(UnparseableSchema, "%s: allOf is not supported, using unknown", origin)
		return &SchemaNode{Kind: KindUnknown}, nil
	}

	switch v.Type {
	case "array":
		item, err := b.convertSchema(v.Items, origin+" items")
		if err != nil {
			return nil, err
		}
		return &SchemaNode{Kind: KindArray, Item: item}, nil
	case "string":
		return &SchemaNode{Kind: KindPrimitive, Primitive: PrimString}, nil
	case "number", "integer":
		return &SchemaNode{Kind: KindPrimitive, Primitive: PrimNumber}, nil
	case "boolean":
		return &SchemaNode{Kind: KindPrimitive, Primitive: PrimBoolean}, nil
	case "null":
		return &SchemaNode{Kind: KindPrimitive, Primitive: PrimNull}, nil
	}

	if v.Type == "object" || len(v.Properties) > 0 {
		return b.objectNode(v, origin)
	}

	b.warnf(UnparseableSchema, "%s: no recognizable type, using unknown", origin)
	return &SchemaNode{Kind: KindUnknown}, nil
}

func (b *builder) objectNode(v *openapi3.Schema, origin string) (*SchemaNode, error) {
	required := make(map[string]struct{}, len(v.Required))
	for _, name := range v.Required {
		required[name] = struct{}{}
	}
	names := make([]string, 0, len(v.Properties))
	for name := range v.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	props := make([]Property, 0, len(names))
	for _, name := range names {
		node, err := b.convertSchema(v.Properties[name], origin+" property "+name)
		if err != nil {
			return nil, err
		}
		_, req := required[name]
		props = append(props, Property{Name: name, Schema: node, Required: req})
	}
	return &SchemaNode{Kind: KindObject, Props: props}, nil
}

func (b *builder) unionNode(variants openapi3.SchemaRefs, origin string) (*SchemaNode, error) {
	out := make([]*SchemaNode, 0, len(variants))
	for i, vref := range variants {
		node, err := b.convertSchema(vref, fmt.Sprintf("%s variant %d", origin, i))
		if err != nil {
			return nil, err
		}
		out = append(out, node)
	}
	return &SchemaNode{Kind: KindUnion, Variants: out}, nil
}

// refNode resolves a $ref string into a reference node. Only refs into the
// document's own component schemas are supported.
func (b *builder) refNode(ref, origin string) (*SchemaNode, error) {
	name, ok := strings.CutPrefix(ref, componentRefPrefix)
	if !ok || name == "" || strings.Contains(name, "/") {
		return nil, &SpecError{
			Code:     UnsupportedReference,
			Message:  fmt.Sprintf("%s: unsupported $ref %q (only %s<Name> is resolvable)", origin, ref, componentRefPrefix),
			Location: origin,
		}
	}
	if b.doc.Components == nil || b.doc.Components.Schemas[name] == nil {
		return nil, &SpecError{
			Code:     UnsupportedReference,
			Message:  fmt.Sprintf("%s: $ref %q does not resolve to a component schema", origin, ref),
			Location: origin,
		}
	}
	return &SchemaNode{Kind: KindRef, Ref: name}, nil
}

// resolveSite converts a schema occurring inline at an operation site. Bare
// $ref sites stay references and register nothing. Object and union shapes
// are registered under the synthesized site name so the contracts file gives
// them a stable declaration; scalars and arrays are cheap enough to map
// inline at the call site.
func (b *builder) resolveSite(ref *openapi3.SchemaRef, site, origin string) (*SchemaNode, error) {
	if ref == nil {
		return nil, nil
	}
	if ref.Ref != "" {
		return b.refNode(ref.Ref, origin)
	}
	node, err := b.convertSchema(ref, origin)
	if err != nil {
		return nil, err
	}
	if node.Kind == KindObject || node.Kind == KindUnion {
		b.reg.Register(site, node)
		return &SchemaNode{Kind: KindRef, Ref: site}, nil
	}
	return node, nil
}

// siteName synthesizes a deterministic registry name for an inline schema
// from its operation id, role, and site index. Pure function of its inputs;
// regeneration from an unchanged document yields the same names.
func siteName(opID, role, index string) string {
	return pascalName(opID) + role + index
}

// pascalName squashes an identifier into PascalCase, splitting on any
// non-alphanumeric rune.
func pascalName(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			if upper {
				b.WriteRune(r - 'a' + 'A')
			} else {
				b.WriteRune(r)
			}
			upper = false
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r)
			upper = false
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			upper = true
		default:
			upper = true
		}
	}
	return b.String()
}
