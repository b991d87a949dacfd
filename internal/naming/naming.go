package naming

import (
	"regexp"
	"strings"
)

const fallbackName = "unnamed"

var (
	illegalChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1F]`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// SanitizeName turns an arbitrary display name into a name that is safe to use
// as a file or directory name on every common filesystem.
func SanitizeName(name string) string {
	s := illegalChars.ReplaceAllString(name, "-")
	s = whitespace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	if s == "" {
		return fallbackName
	}
	return s
}

// OperationID builds an operationId from a request name: "List Pets" -> "list_pets".
func OperationID(name string) string {
	words := strings.Fields(strings.ToLower(SanitizeName(name)))
	return strings.Join(words, "_")
}

// FileName returns the collection file name for a request called name.
func FileName(name, ext string) string {
	return SanitizeName(name) + ext
}
