package tsemitter

import (
	"fmt"
	"strings"

	genspec "github.com/sodeprecated/openapi-to-ts-client/internal/spec"
)

// ClientOptions names the modules and constants the client file refers to.
type ClientOptions struct {
	ContractsModule string // import specifier for the contracts file, e.g. "./contracts"
	TransportModule string // import specifier for the transport file, e.g. "./transport"
	BaseURLName     string // name of the emitted base-URL constant
}

// RenderClient renders one exported const per namespace, each holding one
// callable per operation. Callables substitute path parameters into the URL,
// forward query parameters as a single object, and delegate the call to the
// transport unmodified.
func RenderClient(model *genspec.ClientModel, opts ClientOptions) string {
	tm := NewTypeMapper(model.Registry)

	var body strings.Builder
	for _, ns := range model.Namespaces {
		fmt.Fprintf(&body, "export const %s = {\n", tsConstName(ns.Name))
		for _, op := range ns.Operations {
			renderMethod(&body, tm, op, opts.BaseURLName)
		}
		body.WriteString("};\n\n")
	}

	var b strings.Builder
	b.WriteString(fileHeader(model))
	if deps := tm.Deps(); len(deps) > 0 {
		fmt.Fprintf(&b, "import type { %s } from %q;\n", strings.Join(deps, ", "), opts.ContractsModule)
	}
	fmt.Fprintf(&b, "import { send, type ApiResult } from %q;\n\n", opts.TransportModule)
	fmt.Fprintf(&b, "export const %s = %q;\n\n", opts.BaseURLName, model.BaseURL)
	b.WriteString(body.String())

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func renderMethod(b *strings.Builder, tm *TypeMapper, op genspec.Operation, baseURLName string) {
	var args []string
	for _, p := range op.PathParams() {
		args = append(args, tsArgName(p.Name)+": "+tm.MapType(p.Schema))
	}
	if op.RequestBody != nil {
		args = append(args, "body: "+tm.MapType(op.RequestBody))
	}

	query := op.QueryParams()
	if len(query) > 0 {
		parts := make([]string, 0, len(query))
		required := false
		for _, p := range query {
			opt := "?"
			if p.Required {
				opt = ""
				required = true
			}
			parts = append(parts, tsPropName(p.Name)+opt+": "+tm.MapType(p.Schema))
		}
		qOpt := "?"
		if required {
			qOpt = ""
		}
		args = append(args, "query"+qOpt+": { "+strings.Join(parts, "; ")+" }")
	}

	ret := "unknown"
	if op.Success != nil {
		ret = tm.MapType(op.Success)
	}

	info := fmt.Sprintf("{ method: %q }", string(op.HTTPMethod))
	if op.RequestBody != nil {
		info = fmt.Sprintf("{ method: %q, body }", string(op.HTTPMethod))
	}
	call := "send(" + urlExpr(op, baseURLName) + ", " + info
	if len(query) > 0 {
		call += ", { query }"
	}
	call += ")"

	fmt.Fprintf(b, "  %s(%s): Promise<ApiResult<%s>> {\n    return %s;\n  },\n", tsMethodName(op.MethodName), strings.Join(args, ", "), ret, call)
}

// urlExpr builds the template literal for an operation URL. Path-parameter
// placeholders become interpolated, URL-encoded arguments; everything else
// is the raw declared template.
func urlExpr(op genspec.Operation, baseURLName string) string {
	path := op.URLTemplate
	for _, p := range op.PathParams() {
		placeholder := "{" + p.Name + "}"
		sub := "${encodeURIComponent(String(" + tsArgName(p.Name) + "))}"
		path = strings.ReplaceAll(path, placeholder, sub)
	}
	return "`${" + baseURLName + "}" + path + "`"
}

// tsArgName squashes a parameter name into a usable TypeScript identifier.
func tsArgName(name string) string {
	var b strings.Builder
	for i, r := range name {
		ok := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' || r == '$' || (i > 0 && r >= '0' && r <= '9')
		if ok {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "" {
		return "arg"
	}
	return out
}

// tsConstName sanitizes a namespace name into an exported identifier.
func tsConstName(name string) string {
	out := tsArgName(name)
	if out == "arg" {
		return genspec.DefaultNamespace
	}
	return out
}

// tsMethodName quotes method names that are not valid identifiers; quoted
// method shorthand is legal in an object literal.
func tsMethodName(name string) string {
	if isTSIdent(name) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `\"`) + `"`
}
