package tsemitter

import (
	"fmt"
	"strings"

	genspec "github.com/sodeprecated/openapi-to-ts-client/internal/spec"
)

// RenderContracts renders one named declaration per registry entry in
// insertion order. Declarations may reference names declared later;
// TypeScript hoists top-level type declarations, so no topological sort is
// needed and self-referential types come out naturally.
func RenderContracts(model *genspec.ClientModel) string {
	var b strings.Builder
	b.WriteString(fileHeader(model))

	tm := NewTypeMapper(model.Registry)
	for _, name := range model.Registry.Names() {
		node, ok := model.Registry.Lookup(name)
		if !ok {
			continue
		}
		if node.Kind == genspec.KindObject {
			fmt.Fprintf(&b, "export interface %s {\n", name)
			for _, p := range node.Props {
				opt := "?"
				if p.Required {
					opt = ""
				}
				fmt.Fprintf(&b, "  %s%s: %s;\n", tsPropName(p.Name), opt, tm.MapType(p.Schema))
			}
			b.WriteString("}\n\n")
			continue
		}
		fmt.Fprintf(&b, "export type %s = %s;\n\n", name, tm.MapType(node))
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// fileHeader is shared by both artifacts. It carries no timestamp so
// regeneration from an unchanged document is byte-identical.
func fileHeader(model *genspec.ClientModel) string {
	title := strings.TrimSpace(model.Title)
	if title == "" {
		title = "OpenAPI document"
	}
	version := strings.TrimSpace(model.Version)
	if version != "" {
		title += " " + version
	}
	return fmt.Sprintf("// Generated from %s. DO NOT EDIT.\n\n", title)
}
