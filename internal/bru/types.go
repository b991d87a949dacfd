// Package bru reads and writes the plain-text request, folder and environment
// files that make up a collection on disk.
package bru

const (
	Ext = ".bru"

	ConfigFile     = "bruno.json"
	CollectionFile = "collection.bru"
	FolderFile     = "folder.bru"
	EnvironmentDir = "environments"
)

type RequestType string

const (
	TypeHTTP    RequestType = "http"
	TypeGraphQL RequestType = "graphql"
	TypeGRPC    RequestType = "grpc"
)

type ParamType string

const (
	ParamQuery ParamType = "query"
	ParamPath  ParamType = "path"
)

const (
	BodyNone    = "none"
	BodyJSON    = "json"
	BodyText    = "text"
	BodyXML     = "xml"
	BodyGraphQL = "graphql"

	AuthInherit = "inherit"
	AuthNone    = "none"
	AuthBearer  = "bearer"
)

type Meta struct {
	Name string
	Type RequestType
	Seq  int
}

// HTTP is the method block of a request file.
type HTTP struct {
	Method string
	URL    string
	Body   string
	Auth   string
}

type Param struct {
	Name    string
	Value   string
	Type    ParamType
	Enabled bool
}

type KeyValue struct {
	Name    string
	Value   string
	Enabled bool
}

type Body struct {
	JSON    string
	Text    string
	XML     string
	GraphQL string
}

type Request struct {
	Meta    Meta
	HTTP    *HTTP
	Params  []Param
	Headers []KeyValue
	Body    Body
	Docs    string
}

// ParamsOf returns the params declared with type typ, in file order.
func (r *Request) ParamsOf(typ ParamType) []Param {
	var out []Param
	for _, p := range r.Params {
		if p.Type == typ {
			out = append(out, p)
		}
	}
	return out
}

type Script struct {
	Req string
	Res string
}

type Vars struct {
	Req []KeyValue
	Res []KeyValue
}

// Root holds the defaults stored in collection.bru and folder.bru.
type Root struct {
	Meta    *Meta
	Headers []KeyValue
	Auth    string
	Script  Script
	Vars    Vars
	Tests   string
	Docs    string
}

type Variable struct {
	Name    string
	Value   string
	Enabled bool
	Secret  bool
}

type Environment struct {
	Variables []Variable
}

// Lookup returns the value of the variable called name.
func (e *Environment) Lookup(name string) (string, bool) {
	for _, v := range e.Variables {
		if v.Name == name {
			return v.Value, true
		}
	}
	return "", false
}

// Codec converts records to and from their file representation.
type Codec interface {
	StringifyRequest(req Request) (string, error)
	ParseRequest(text string) (*Request, error)
	StringifyRoot(root Root) (string, error)
	ParseRoot(text string) (*Root, error)
	StringifyEnvironment(env Environment) (string, error)
	ParseEnvironment(text string) (*Environment, error)
}
