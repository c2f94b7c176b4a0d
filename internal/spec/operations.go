package spec

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// DefaultNamespace receives operations whose id has no separator.
const DefaultNamespace = "Api"

// namespaceSeparator splits an operation id into namespace and method name.
const namespaceSeparator = "_"

// splitOperationID returns the namespace and method-name portions of an
// operation id. Ids without a separator (or with an empty half) land in the
// default namespace with the full id as method name.
func splitOperationID(id string) (namespace, method string) {
	before, after, found := strings.Cut(id, namespaceSeparator)
	if !found || before == "" || after == "" {
		return DefaultNamespace, id
	}
	return before, after
}

// collectOperations walks the path/method matrix, extracts per-operation
// metadata, and partitions the result into namespaces sorted by name.
// Operations lacking an id are skipped with a warning; a declared path
// parameter without a matching placeholder token is fatal.
func (b *builder) collectOperations(cfg *buildConfig) ([]NamespaceModel, error) {
	if len(b.doc.Paths) == 0 {
		return nil, nil
	}

	pathKeys := make([]string, 0, len(b.doc.Paths))
	for p := range b.doc.Paths {
		pathKeys = append(pathKeys, p)
	}
	sort.Strings(pathKeys)

	grouped := make(map[string][]Operation)

	for _, path := range pathKeys {
		item := b.doc.Paths[path]
		if item == nil {
			continue
		}

		// Path-level parameters apply to every method, overridden per
		// operation by in+name.
		baseParams := make(map[string]*openapi3.Parameter)
		for _, pref := range item.Parameters {
			if pref == nil || pref.Value == nil {
				continue
			}
			baseParams[paramKey(pref.Value.In, pref.Value.Name)] = pref.Value
		}

		ops := []struct {
			m HttpMethod
			o *openapi3.Operation
		}{
			{GET, item.Get},
			{POST, item.Post},
			{PUT, item.Put},
			{DELETE, item.Delete},
			{PATCH, item.Patch},
			{HEAD, item.Head},
			{OPTIONS, item.Options},
			{TRACE, item.Trace},
		}

		for _, pair := range ops {
			if pair.o == nil {
				continue
			}
			id := strings.TrimSpace(pair.o.OperationID)
			if id == "" {
				b.warnf(MissingOperationID, "%s %s: operation has no operationId and was skipped", strings.ToUpper(string(pair.m)), path)
				continue
			}
			namespace, methodName := splitOperationID(id)
			if !allowNamespace(namespace, cfg) {
				continue
			}

			op, err := b.buildOperation(id, namespace, methodName, pair.m, path, pair.o, baseParams)
			if err != nil {
				return nil, err
			}
			grouped[namespace] = append(grouped[namespace], *op)
		}
	}

	nsNames := make([]string, 0, len(grouped))
	for name := range grouped {
		nsNames = append(nsNames, name)
	}
	sort.Strings(nsNames)

	out := make([]NamespaceModel, 0, len(nsNames))
	for _, name := range nsNames {
		out = append(out, NamespaceModel{Name: name, Operations: grouped[name]})
	}
	return out, nil
}

func (b *builder) buildOperation(id, namespace, methodName string, method HttpMethod, path string, raw *openapi3.Operation, baseParams map[string]*openapi3.Parameter) (*Operation, error) {
	merged := make(map[string]*openapi3.Parameter, len(baseParams))
	for k, v := range baseParams {
		merged[k] = v
	}
	for _, pref := range raw.Parameters {
		if pref == nil || pref.Value == nil {
			continue
		}
		merged[paramKey(pref.Value.In, pref.Value.Name)] = pref.Value
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	params := make([]Parameter, 0, len(keys))
	for i, k := range keys {
		p := merged[k]
		node, err := b.resolveSite(p.Schema, siteName(id, "Param", strconv.Itoa(i)), fmt.Sprintf("operation %s parameter %s", id, p.Name))
		if err != nil {
			return nil, err
		}
		params = append(params, Parameter{
			Name:     strings.TrimSpace(p.Name),
			In:       strings.TrimSpace(p.In),
			Required: p.Required,
			Schema:   node,
		})
	}

	// Every declared path parameter must appear as a placeholder token in
	// the raw path, otherwise URL substitution would silently emit a broken
	// client.
	for _, p := range params {
		if p.In != "path" {
			continue
		}
		if !strings.Contains(path, "{"+p.Name+"}") {
			return nil, &SpecError{
				Code:     PathMismatch,
				Message:  fmt.Sprintf("operation %s: path parameter %q has no {%s} placeholder in %q", id, p.Name, p.Name, path),
				Location: id,
			}
		}
	}

	var body *SchemaNode
	if raw.RequestBody != nil && raw.RequestBody.Value != nil {
		sref := pickMedia(raw.RequestBody.Value.Content)
		if sref != nil {
			node, err := b.resolveSite(sref, siteName(id, "Body", ""), fmt.Sprintf("operation %s request body", id))
			if err != nil {
				return nil, err
			}
			body = node
		}
	}

	var responses []Response
	if len(raw.Responses) > 0 {
		codes := make([]string, 0, len(raw.Responses))
		for code := range raw.Responses {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		for _, code := range codes {
			rref := raw.Responses[code]
			if rref == nil || rref.Value == nil {
				continue
			}
			var node *SchemaNode
			if sref := pickMedia(rref.Value.Content); sref != nil {
				converted, err := b.resolveSite(sref, siteName(id, "Response", code), fmt.Sprintf("operation %s response %s", id, code))
				if err != nil {
					return nil, err
				}
				node = converted
			}
			responses = append(responses, Response{Status: code, Schema: node})
		}
	}

	return &Operation{
		ID:          id,
		Namespace:   namespace,
		MethodName:  methodName,
		HTTPMethod:  method,
		URLTemplate: path,
		Parameters:  params,
		RequestBody: body,
		Responses:   responses,
		Success:     selectSuccess(responses),
	}, nil
}

// selectSuccess picks the return-type schema: the first response with a 2xx
// status in ascending numeric order. One success type per method; extra 2xx
// variants are deliberately ignored rather than unioned.
func selectSuccess(responses []Response) *SchemaNode {
	best := -1
	var schema *SchemaNode
	for _, r := range responses {
		code, err := strconv.Atoi(r.Status)
		if err != nil || code < 200 || code > 299 {
			continue
		}
		if best == -1 || code < best {
			best = code
			schema = r.Schema
		}
	}
	return schema
}

// pickMedia selects the schema of the JSON media type when declared,
// otherwise the first media type in lexical order.
func pickMedia(content openapi3.Content) *openapi3.SchemaRef {
	if len(content) == 0 {
		return nil
	}
	if mt := content["application/json"]; mt != nil && mt.Schema != nil {
		return mt.Schema
	}
	mimes := make([]string, 0, len(content))
	for mime := range content {
		mimes = append(mimes, mime)
	}
	sort.Strings(mimes)
	for _, mime := range mimes {
		if mt := content[mime]; mt != nil && mt.Schema != nil {
			return mt.Schema
		}
	}
	return nil
}

func allowNamespace(name string, cfg *buildConfig) bool {
	if len(cfg.includeNamespaces) > 0 {
		if _, ok := cfg.includeNamespaces[name]; !ok {
			return false
		}
	}
	if _, blocked := cfg.excludeNamespaces[name]; blocked {
		return false
	}
	return true
}

func paramKey(in, name string) string { return in + ":" + name }
