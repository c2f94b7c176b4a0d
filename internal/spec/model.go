package spec

// Internal model shared by the resolver, the operation collector, and the
// TypeScript emitters. Everything here is built once per generation run and
// never mutated afterwards.

type HttpMethod string

const (
	GET     HttpMethod = "get"
	POST    HttpMethod = "post"
	PUT     HttpMethod = "put"
	DELETE  HttpMethod = "delete"
	PATCH   HttpMethod = "patch"
	HEAD    HttpMethod = "head"
	OPTIONS HttpMethod = "options"
	TRACE   HttpMethod = "trace"
)

// SchemaKind discriminates the SchemaNode variants.
type SchemaKind string

const (
	KindPrimitive SchemaKind = "primitive"
	KindArray     SchemaKind = "array"
	KindObject    SchemaKind = "object"
	KindUnion     SchemaKind = "union"
	KindRef       SchemaKind = "ref"
	KindUnknown   SchemaKind = "unknown"
)

// PrimitiveKind names the scalar primitives a SchemaNode can carry.
type PrimitiveKind string

const (
	PrimString  PrimitiveKind = "string"
	PrimNumber  PrimitiveKind = "number"
	PrimBoolean PrimitiveKind = "boolean"
	PrimNull    PrimitiveKind = "null"
)

// SchemaNode is one resolved schema fragment. Exactly one variant's fields
// are meaningful, selected by Kind. Reference nodes carry only the target
// name; they resolve lazily by registry lookup, never by deep copy, so
// cyclic schema graphs stay finite.
type SchemaNode struct {
	Kind      SchemaKind
	Primitive PrimitiveKind // KindPrimitive
	Item      *SchemaNode   // KindArray
	Props     []Property    // KindObject, declared order
	Variants  []*SchemaNode // KindUnion, declared order
	Ref       string        // KindRef, registry name
}

// Property is one object member. Required mirrors the owning schema's
// `required` array; it is about presence, not nullability.
type Property struct {
	Name     string
	Schema   *SchemaNode
	Required bool
}

// Registry maps canonical names to schema nodes, preserving insertion order
// so emission is deterministic.
type Registry struct {
	names []string
	nodes map[string]*SchemaNode
}

func NewRegistry() *Registry {
	return &Registry{nodes: make(map[string]*SchemaNode)}
}

// Register stores node under name. Registering an existing name replaces the
// node in place without disturbing insertion order; the resolver relies on
// this to upgrade forward-reference placeholders.
func (r *Registry) Register(name string, node *SchemaNode) {
	if _, ok := r.nodes[name]; !ok {
		r.names = append(r.names, name)
	}
	r.nodes[name] = node
}

func (r *Registry) Lookup(name string) (*SchemaNode, bool) {
	n, ok := r.nodes[name]
	return n, ok
}

// Names returns registered names in insertion order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

func (r *Registry) Len() int { return len(r.names) }

// Parameter is one declared operation parameter.
type Parameter struct {
	Name     string
	In       string // path|query|header|cookie
	Required bool
	Schema   *SchemaNode
}

// Response pairs a status code (or "default") with its payload schema.
// Schema is nil when the response declares no JSON content.
type Response struct {
	Status string
	Schema *SchemaNode
}

// Operation is one path+method entry keyed by its operation id.
type Operation struct {
	ID          string
	Namespace   string
	MethodName  string
	HTTPMethod  HttpMethod
	URLTemplate string // raw path, placeholders left as declared
	Parameters  []Parameter
	RequestBody *SchemaNode // nil when absent
	Responses   []Response
	Success     *SchemaNode // first 2xx response schema, nil for untyped
}

// PathParams returns the path-scoped parameters in declared order.
func (o *Operation) PathParams() []Parameter { return o.paramsIn("path") }

// QueryParams returns the query-scoped parameters in declared order.
func (o *Operation) QueryParams() []Parameter { return o.paramsIn("query") }

func (o *Operation) paramsIn(loc string) []Parameter {
	var out []Parameter
	for _, p := range o.Parameters {
		if p.In == loc {
			out = append(out, p)
		}
	}
	return out
}

// NamespaceModel groups the operations sharing one id prefix.
type NamespaceModel struct {
	Name       string
	Operations []Operation
}

// WarningCode categorizes non-fatal anomalies found during model building.
type WarningCode string

const (
	MissingOperationID WarningCode = "MissingOperationId"
	UnparseableSchema  WarningCode = "UnparseableSchema"
)

type Warning struct {
	Code    WarningCode
	Message string
}

// ClientModel is the shared intermediate model both emitters render from.
type ClientModel struct {
	Title      string
	Version    string
	BaseURL    string // first servers[].url, "" when absent
	Registry   *Registry
	Namespaces []NamespaceModel
	Warnings   []Warning
}
