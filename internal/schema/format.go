package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"go.yaml.in/yaml/v4"
)

// FormatJSON renders node as indented JSON, keeping mapping keys in node order.
// Scalars that are neither null, boolean nor numeric are written as strings.
// Numbers already written as JSON literals are copied verbatim.
func FormatJSON(node *yaml.Node) (string, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, node); err != nil {
		return "", err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return "", fmt.Errorf("formatting JSON: %w", err)
	}
	return out.String(), nil
}

func writeJSON(buf *bytes.Buffer, node *yaml.Node) error {
	if node == nil {
		buf.WriteString("null")
		return nil
	}

	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			buf.WriteString("null")
			return nil
		}
		return writeJSON(buf, node.Content[0])
	case yaml.AliasNode:
		return writeJSON(buf, node.Alias)
	case yaml.SequenceNode:
		buf.WriteByte('[')
		for i, item := range node.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case yaml.MappingNode:
		buf.WriteByte('{')
		for i := 0; i+1 < len(node.Content); i += 2 {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeString(buf, node.Content[i].Value)
			buf.WriteByte(':')
			if err := writeJSON(buf, node.Content[i+1]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	}

	switch node.ShortTag() {
	case "!!null":
		buf.WriteString("null")
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return fmt.Errorf("decoding boolean %q: %w", node.Value, err)
		}
		buf.WriteString(strconv.FormatBool(b))
	case "!!int", "!!float":
		if json.Valid([]byte(node.Value)) {
			buf.WriteString(node.Value)
			return nil
		}
		var f float64
		if err := node.Decode(&f); err != nil {
			return fmt.Errorf("decoding number %q: %w", node.Value, err)
		}
		data, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("encoding number %q: %w", node.Value, err)
		}
		buf.Write(data)
	default:
		writeString(buf, node.Value)
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) {
	data, _ := json.Marshal(s)
	buf.Write(data)
}
