package model

type Operation struct {
	ID          string
	Method      Method
	Path        string
	Summary     string
	Description string
	Tags        []string
	Parameters  []Parameter
	RequestBody *RequestBody
	Deprecated  bool
	// Security names the schemes the operation accepts, falling back to the
	// document level requirements.
	Security []string
}

type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodDelete  Method = "DELETE"
	MethodPatch   Method = "PATCH"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
	MethodTrace   Method = "TRACE"
)

type ParameterLocation string

const (
	LocationPath   ParameterLocation = "path"
	LocationQuery  ParameterLocation = "query"
	LocationHeader ParameterLocation = "header"
	LocationCookie ParameterLocation = "cookie"
)

type Parameter struct {
	Name        string
	In          ParameterLocation
	Description string
	Required    bool
	Deprecated  bool
	Schema      *Schema
	Example     any
}

type RequestBody struct {
	Description string
	Required    bool
	Content     []MediaTypeContent
}

// JSONContent returns the first JSON media type of the body, or nil.
func (b *RequestBody) JSONContent() *MediaTypeContent {
	if b == nil {
		return nil
	}
	for i := range b.Content {
		if IsJSONMediaType(b.Content[i].MediaType) {
			return &b.Content[i]
		}
	}
	return nil
}

type MediaTypeContent struct {
	MediaType string
	Schema    *Schema
	Example   any
}
