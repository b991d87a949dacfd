// Package schema derives JSON schemas from example JSON values.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kolah/brunoapi/internal/model"
	"go.yaml.in/yaml/v4"
)

var errInvalidJSON = errors.New("invalid JSON")

// ParseJSON decodes a JSON document into a yaml node tree. Unlike decoding into
// map[string]any, the node keeps object keys in document order.
func ParseJSON(text string) (*yaml.Node, error) {
	if !json.Valid([]byte(text)) {
		return nil, errInvalidJSON
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		// Some valid JSON is not valid YAML (tab indentation in block
		// positions). Fall back to a node built from the decoded value;
		// object keys then come out sorted.
		var v any
		if jerr := json.Unmarshal([]byte(text), &v); jerr != nil {
			return nil, fmt.Errorf("decoding JSON: %w", jerr)
		}
		var n yaml.Node
		if eerr := n.Encode(v); eerr != nil {
			return nil, fmt.Errorf("decoding JSON: %w", eerr)
		}
		return &n, nil
	}
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		return doc.Content[0], nil
	}
	return &doc, nil
}

// Infer describes the shape of an example value. Arrays are described by their
// first element only; empty arrays get an empty items schema.
func Infer(node *yaml.Node) *model.Schema {
	if node == nil {
		return &model.Schema{Type: model.TypeNull}
	}

	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return &model.Schema{Type: model.TypeNull}
		}
		return Infer(node.Content[0])
	case yaml.AliasNode:
		return Infer(node.Alias)
	case yaml.SequenceNode:
		s := &model.Schema{Type: model.TypeArray, Items: &model.Schema{}}
		if len(node.Content) > 0 {
			s.Items = Infer(node.Content[0])
		}
		return s
	case yaml.MappingNode:
		return inferObject(node)
	}

	return &model.Schema{Type: scalarType(node)}
}

func inferObject(node *yaml.Node) *model.Schema {
	s := &model.Schema{Type: model.TypeObject}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		value := node.Content[i+1]

		s.Properties = append(s.Properties, model.Property{
			Name:   key,
			Schema: Infer(value),
		})
		if !isNull(value) {
			s.Required = append(s.Required, key)
		}
	}
	return s
}

// scalarType maps a scalar onto a JSON type name. Integers and floats are
// both "number".
func scalarType(node *yaml.Node) model.SchemaType {
	switch node.ShortTag() {
	case "!!null":
		return model.TypeNull
	case "!!bool":
		return model.TypeBoolean
	case "!!int", "!!float":
		return model.TypeNumber
	default:
		return model.TypeString
	}
}

func isNull(node *yaml.Node) bool {
	if node == nil {
		return true
	}
	if node.Kind == yaml.AliasNode {
		return isNull(node.Alias)
	}
	return node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null"
}
