package tsemitter

import (
	"strings"
	"testing"

	genspec "github.com/sodeprecated/openapi-to-ts-client/internal/spec"
)

// testModel mirrors a small two-resource document: Users with a list and a
// get-by-id call, Pets with a list call.
func testModel() *genspec.ClientModel {
	reg := genspec.NewRegistry()
	reg.Register("Pet", &genspec.SchemaNode{Kind: genspec.KindObject, Props: []genspec.Property{
		{Name: "id", Schema: strNode(), Required: true},
		{Name: "name", Schema: strNode(), Required: true},
	}})
	reg.Register("User", &genspec.SchemaNode{Kind: genspec.KindObject, Props: []genspec.Property{
		{Name: "id", Schema: strNode(), Required: true},
		{Name: "name", Schema: strNode()},
	}})
	reg.Register("PetOrName", &genspec.SchemaNode{Kind: genspec.KindUnion, Variants: []*genspec.SchemaNode{
		refNode("Pet"), strNode(),
	}})

	userList := &genspec.SchemaNode{Kind: genspec.KindArray, Item: refNode("User")}
	petList := &genspec.SchemaNode{Kind: genspec.KindArray, Item: refNode("Pet")}

	return &genspec.ClientModel{
		Title:    "Sample API",
		Version:  "1.0.0",
		BaseURL:  "https://api.example.com/v1",
		Registry: reg,
		Namespaces: []genspec.NamespaceModel{
			{Name: "Pets", Operations: []genspec.Operation{
				{
					ID: "Pets_getAll", Namespace: "Pets", MethodName: "getAll",
					HTTPMethod: genspec.GET, URLTemplate: "/pets",
					Responses: []genspec.Response{{Status: "200", Schema: petList}},
					Success:   petList,
				},
			}},
			{Name: "Users", Operations: []genspec.Operation{
				{
					ID: "Users_getAll", Namespace: "Users", MethodName: "getAll",
					HTTPMethod: genspec.GET, URLTemplate: "/users",
					Parameters: []genspec.Parameter{
						{Name: "limit", In: "query", Schema: numNode()},
					},
					Responses: []genspec.Response{{Status: "200", Schema: userList}},
					Success:   userList,
				},
				{
					ID: "Users_getById", Namespace: "Users", MethodName: "getById",
					HTTPMethod: genspec.GET, URLTemplate: "/users/{id}",
					Parameters: []genspec.Parameter{
						{Name: "id", In: "path", Required: true, Schema: strNode()},
					},
					Responses: []genspec.Response{
						{Status: "200", Schema: refNode("User")},
						{Status: "404"},
					},
					Success: refNode("User"),
				},
			}},
		},
	}
}

func TestRenderContracts(t *testing.T) {
	t.Parallel()
	out := RenderContracts(testModel())

	if !strings.HasPrefix(out, "// Generated from Sample API 1.0.0. DO NOT EDIT.\n") {
		t.Errorf("header missing or wrong:\n%s", out)
	}

	wantUser := "export interface User {\n  id: string;\n  name?: string;\n}"
	if !strings.Contains(out, wantUser) {
		t.Errorf("User declaration wrong, want:\n%s\ngot:\n%s", wantUser, out)
	}
	wantPet := "export interface Pet {\n  id: string;\n  name: string;\n}"
	if !strings.Contains(out, wantPet) {
		t.Errorf("Pet declaration wrong:\n%s", out)
	}
	if !strings.Contains(out, "export type PetOrName = Pet | string;") {
		t.Errorf("union alias missing:\n%s", out)
	}

	// Registry insertion order is emission order.
	if strings.Index(out, "interface Pet ") > strings.Index(out, "interface User ") {
		t.Errorf("declarations out of registry order:\n%s", out)
	}
	if !strings.HasSuffix(out, "\n") || strings.HasSuffix(out, "\n\n") {
		t.Errorf("output should end with exactly one newline")
	}
}

func TestRenderContracts_SelfReference(t *testing.T) {
	t.Parallel()
	reg := genspec.NewRegistry()
	reg.Register("Node", &genspec.SchemaNode{Kind: genspec.KindObject, Props: []genspec.Property{
		{Name: "value", Schema: strNode(), Required: true},
		{Name: "child", Schema: refNode("Node")},
	}})
	out := RenderContracts(&genspec.ClientModel{Title: "Cyclic", Registry: reg})

	if !strings.Contains(out, "child?: Node;") {
		t.Errorf("self reference should stay a bare name:\n%s", out)
	}
}

func TestRenderContracts_Deterministic(t *testing.T) {
	t.Parallel()
	a := RenderContracts(testModel())
	b := RenderContracts(testModel())
	if a != b {
		t.Error("contracts output differs between runs")
	}
}
