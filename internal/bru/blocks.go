package bru

import (
	"fmt"
	"strings"
)

const indent = "  "

type block struct {
	name  string
	line  int
	lines []string
}

// splitBlocks cuts a file into its top-level blocks. A block opens with
// "name {" (or "name [" for lists) and closes with "}" (or "]") at column 0;
// inner lines lose one level of indentation.
func splitBlocks(text string) ([]block, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var blocks []block
	for i := 0; i < len(lines); i++ {
		header := strings.TrimSpace(lines[i])
		if header == "" {
			continue
		}

		var closer string
		switch {
		case strings.HasSuffix(header, "{"):
			closer = "}"
		case strings.HasSuffix(header, "["):
			closer = "]"
		default:
			return nil, fmt.Errorf("line %d: unexpected %q outside of a block", i+1, header)
		}

		name := strings.TrimSpace(header[:len(header)-1])
		if name == "" || strings.ContainsAny(name, " \t") {
			return nil, fmt.Errorf("line %d: invalid block name %q", i+1, name)
		}

		b := block{name: name, line: i + 1}
		closed := false
		for i++; i < len(lines); i++ {
			if strings.TrimRight(lines[i], " \t") == closer {
				closed = true
				break
			}
			b.lines = append(b.lines, dedent(lines[i]))
		}
		if !closed {
			return nil, fmt.Errorf("line %d: block %q is not closed", b.line, name)
		}
		blocks = append(blocks, b)
	}

	return blocks, nil
}

func dedent(line string) string {
	for range len(indent) {
		if !strings.HasPrefix(line, " ") {
			break
		}
		line = line[1:]
	}
	return line
}

func (b block) text() string {
	return strings.TrimRight(strings.Join(b.lines, "\n"), "\n")
}

func (b block) dict() []KeyValue {
	var entries []KeyValue
	for _, line := range b.lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		enabled := true
		if strings.HasPrefix(line, "~") {
			enabled = false
			line = line[1:]
		}
		name, value, _ := strings.Cut(line, ":")
		entries = append(entries, KeyValue{
			Name:    strings.TrimSpace(name),
			Value:   strings.TrimSpace(value),
			Enabled: enabled,
		})
	}
	return entries
}

func (b block) list() []KeyValue {
	var entries []KeyValue
	for _, line := range b.lines {
		line = strings.TrimSuffix(strings.TrimSpace(line), ",")
		if line == "" {
			continue
		}
		enabled := true
		if strings.HasPrefix(line, "~") {
			enabled = false
			line = line[1:]
		}
		entries = append(entries, KeyValue{Name: strings.TrimSpace(line), Enabled: enabled})
	}
	return entries
}

func (b block) lookup(key string) string {
	for _, kv := range b.dict() {
		if kv.Name == key {
			return kv.Value
		}
	}
	return ""
}

type writer struct {
	sb strings.Builder
}

func (w *writer) open(name string) {
	if w.sb.Len() > 0 {
		w.sb.WriteString("\n")
	}
	w.sb.WriteString(name)
	w.sb.WriteString(" {\n")
}

func (w *writer) close() {
	w.sb.WriteString("}\n")
}

func (w *writer) entry(kv KeyValue) {
	w.sb.WriteString(indent)
	if !kv.Enabled {
		w.sb.WriteString("~")
	}
	w.sb.WriteString(singleLine(kv.Name))
	w.sb.WriteString(":")
	if value := singleLine(kv.Value); value != "" {
		w.sb.WriteString(" ")
		w.sb.WriteString(value)
	}
	w.sb.WriteString("\n")
}

// singleLine joins the lines of s with spaces. A dictionary entry ends at the
// first line break.
func singleLine(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	lines := strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' })
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.Join(lines, " ")
}

func (w *writer) dict(name string, entries []KeyValue) {
	w.open(name)
	for _, kv := range entries {
		w.entry(kv)
	}
	w.close()
}

func (w *writer) text(name, text string) {
	w.open(name)
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if line != "" {
			w.sb.WriteString(indent)
			w.sb.WriteString(line)
		}
		w.sb.WriteString("\n")
	}
	w.close()
}

func (w *writer) list(name string, entries []KeyValue) {
	if w.sb.Len() > 0 {
		w.sb.WriteString("\n")
	}
	w.sb.WriteString(name)
	w.sb.WriteString(" [\n")
	for i, kv := range entries {
		w.sb.WriteString(indent)
		if !kv.Enabled {
			w.sb.WriteString("~")
		}
		w.sb.WriteString(singleLine(kv.Name))
		if i < len(entries)-1 {
			w.sb.WriteString(",")
		}
		w.sb.WriteString("\n")
	}
	w.sb.WriteString("]\n")
}

func (w *writer) String() string {
	return w.sb.String()
}
