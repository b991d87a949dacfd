package naming

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"List Pets", "List Pets"},
		{"a/b\\c", "a-b-c"},
		{`<>:"/\|?*`, "---------"},
		{"  spaced   out  ", "spaced out"},
		{"tab\there", "tab-here"},
		{"line\nbreak", "line-break"},
		{"", "unnamed"},
		{"   ", "unnamed"},
		{"GET /pets/{id}", "GET -pets-{id}"},
		{"unnamed", "unnamed"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require.Equal(t, tt.expected, SanitizeName(tt.input))
		})
	}
}

func TestSanitizeNameIdempotent(t *testing.T) {
	inputs := []string{
		"",
		" ",
		"\x00\x01",
		"Get a pet: by id?",
		"  many    spaces\t\tand tabs ",
		"already-clean",
		"ünïcödé <name>",
		"\n\n",
	}

	for _, in := range inputs {
		once := SanitizeName(in)
		require.Equal(t, once, SanitizeName(once), "input %q", in)
	}
}

func TestOperationID(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"List Pets", "list_pets"},
		{"Create a Pet", "create_a_pet"},
		{"GET /pets", "get_-pets"},
		{"  Spaced  Name ", "spaced_name"},
		{"", "unnamed"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require.Equal(t, tt.expected, OperationID(tt.input))
		})
	}
}

func TestFileName(t *testing.T) {
	require.Equal(t, "List Pets.bru", FileName("List Pets", ".bru"))
	require.Equal(t, "unnamed.bru", FileName("", ".bru"))
	require.Equal(t, "a-b.bru", FileName("a/b", ".bru"))
}
