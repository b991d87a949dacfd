package model

import "strings"

type Schema struct {
	Name        string
	Description string
	Type        SchemaType
	Format      string
	Nullable    bool
	Default     any
	Example     any

	// Object properties
	Properties []Property
	Required   []string

	// Array items
	Items *Schema

	// Enum values
	Enum []any

	// Composition
	AllOf []*Schema
	OneOf []*Schema
	AnyOf []*Schema

	// Reference
	Ref string

	// Additional properties for maps
	AdditionalProperties *Schema
}

// Property returns the schema of the named property, or nil.
func (s *Schema) Property(name string) *Schema {
	for _, p := range s.Properties {
		if p.Name == name {
			return p.Schema
		}
	}
	return nil
}

type SchemaType string

const (
	TypeString  SchemaType = "string"
	TypeNumber  SchemaType = "number"
	TypeInteger SchemaType = "integer"
	TypeBoolean SchemaType = "boolean"
	TypeArray   SchemaType = "array"
	TypeObject  SchemaType = "object"
	TypeNull    SchemaType = "null"
)

type Property struct {
	Name   string
	Schema *Schema
}

type SecurityScheme struct {
	Name string
	Type SecuritySchemeType
	// In and KeyName locate an apiKey credential: "header", "query" or "cookie"
	// and the parameter name.
	In      string
	KeyName string
	Scheme  string
}

type SecuritySchemeType string

const (
	SecurityTypeAPIKey        SecuritySchemeType = "apiKey"
	SecurityTypeHTTP          SecuritySchemeType = "http"
	SecurityTypeOAuth2        SecuritySchemeType = "oauth2"
	SecurityTypeOpenIDConnect SecuritySchemeType = "openIdConnect"
)

// IsJSONMediaType reports whether mediaType carries JSON ("application/json",
// "application/problem+json", ...).
func IsJSONMediaType(mediaType string) bool {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = mt[:i]
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}
