package model

import "strings"

type Spec struct {
	Info       Info
	Servers    []Server
	Tags       []Tag
	Operations []Operation
	Schemas    []Schema
	Security   []SecurityScheme
}

// SchemaByRef returns a schema by its $ref path (e.g., "#/components/schemas/User").
// Returns nil if the schema is not found.
func (s *Spec) SchemaByRef(ref string) *Schema {
	parts := strings.Split(ref, "/")
	if len(parts) == 0 {
		return nil
	}
	name := parts[len(parts)-1]
	for i := range s.Schemas {
		if s.Schemas[i].Name == name {
			return &s.Schemas[i]
		}
	}
	return nil
}

// TagByName returns the declared tag called name, or nil.
func (s *Spec) TagByName(name string) *Tag {
	for i := range s.Tags {
		if s.Tags[i].Name == name {
			return &s.Tags[i]
		}
	}
	return nil
}

// SecuritySchemeByName returns the declared security scheme called name, or nil.
func (s *Spec) SecuritySchemeByName(name string) *SecurityScheme {
	for i := range s.Security {
		if s.Security[i].Name == name {
			return &s.Security[i]
		}
	}
	return nil
}

type Info struct {
	Title       string
	Description string
	Version     string
}

type Server struct {
	URL         string
	Description string
}

type Tag struct {
	Name        string
	Description string
}
