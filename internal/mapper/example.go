package mapper

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/kolah/brunoapi/internal/model"
	"github.com/kolah/brunoapi/internal/schema"
	"go.yaml.in/yaml/v4"
)

// maxExampleDepth bounds example synthesis for self-referencing schemas.
const maxExampleDepth = 8

// resolve follows component references. Unknown references resolve to the
// schema itself so inline content is still used.
func (m *mapper) resolve(s *model.Schema) *model.Schema {
	for hops := 0; s != nil && s.Ref != "" && hops < maxExampleDepth; hops++ {
		target := m.spec.SchemaByRef(s.Ref)
		if target == nil || target == s {
			break
		}
		s = target
	}
	return s
}

// example builds a sample value for s: the declared example when there is one,
// otherwise a zero value of the declared type. A nullable component met again
// while it is being expanded becomes null.
func (m *mapper) example(s *model.Schema, depth int) *yaml.Node {
	if s == nil || depth > maxExampleDepth {
		return nullNode()
	}
	if s.Ref != "" {
		if target := m.spec.SchemaByRef(s.Ref); target != nil && target != s {
			if target.Nullable && m.expanding[s.Ref] > 0 {
				return nullNode()
			}
			if m.expanding == nil {
				m.expanding = make(map[string]int)
			}
			m.expanding[s.Ref]++
			defer func() { m.expanding[s.Ref]-- }()
			return m.example(target, depth+1)
		}
	}
	if s.Example != nil {
		return toNode(s.Example)
	}

	switch {
	case len(s.AllOf) > 0:
		return m.allOfExample(s, depth)
	case len(s.OneOf) > 0:
		return m.example(s.OneOf[0], depth+1)
	case len(s.AnyOf) > 0:
		return m.example(s.AnyOf[0], depth+1)
	}

	switch s.Type {
	case model.TypeString:
		if len(s.Enum) > 0 {
			return toNode(s.Enum[0])
		}
		return scalarNode("!!str", "")
	case model.TypeNumber, model.TypeInteger:
		return scalarNode("!!int", "0")
	case model.TypeBoolean:
		return scalarNode("!!bool", "false")
	case model.TypeArray:
		return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: []*yaml.Node{m.example(s.Items, depth+1)}}
	case model.TypeObject:
		return m.objectExample(s, depth)
	case "":
		if len(s.Properties) > 0 || s.AdditionalProperties != nil {
			return m.objectExample(s, depth)
		}
	}
	return nullNode()
}

// additionalPropName keys the sample entry of a map without declared properties.
const additionalPropName = "additionalProp1"

func (m *mapper) objectExample(s *model.Schema, depth int) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, p := range s.Properties {
		node.Content = append(node.Content, scalarNode("!!str", p.Name), m.example(p.Schema, depth+1))
	}
	if len(s.Properties) == 0 && s.AdditionalProperties != nil {
		node.Content = append(node.Content, scalarNode("!!str", additionalPropName), m.example(s.AdditionalProperties, depth+1))
	}
	return node
}

// allOfExample merges the object members of every allOf part; later parts
// override earlier keys.
func (m *mapper) allOfExample(s *model.Schema, depth int) *yaml.Node {
	merged := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	index := make(map[string]int)
	add := func(part *yaml.Node) {
		if part == nil || part.Kind != yaml.MappingNode {
			return
		}
		for i := 0; i+1 < len(part.Content); i += 2 {
			key := part.Content[i].Value
			if at, ok := index[key]; ok {
				merged.Content[at+1] = part.Content[i+1]
				continue
			}
			index[key] = len(merged.Content)
			merged.Content = append(merged.Content, part.Content[i], part.Content[i+1])
		}
	}

	for _, part := range s.AllOf {
		add(m.example(part, depth+1))
	}
	if len(s.Properties) > 0 {
		add(m.objectExample(s, depth))
	}
	return merged
}

func scalarNode(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func nullNode() *yaml.Node {
	return scalarNode("!!null", "null")
}

// toNode converts a declared example into a node. Examples loaded from a
// document already are nodes; anything else is encoded.
func toNode(v any) *yaml.Node {
	if n, ok := v.(*yaml.Node); ok {
		if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
			return n.Content[0]
		}
		return n
	}
	var n yaml.Node
	if err := n.Encode(v); err != nil {
		return scalarNode("!!str", fmt.Sprint(v))
	}
	return &n
}

// scalarString renders a parameter example as a single line.
func scalarString(v any) string {
	n := toNode(v)
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	if n.Kind == yaml.ScalarNode {
		if n.ShortTag() == "!!null" {
			return ""
		}
		return n.Value
	}
	text, err := schema.FormatJSON(n)
	if err != nil {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(text)); err != nil {
		return ""
	}
	return buf.String()
}
