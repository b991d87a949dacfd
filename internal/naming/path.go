package naming

import (
	"net/url"
	"regexp"
	"strings"
)

const apiSegment = "/api"

var (
	templateVar     = regexp.MustCompile(`\{\{[^}]*\}\}`)
	leadingSlashes  = regexp.MustCompile(`^/+`)
	colonParam      = regexp.MustCompile(`/:([^/?#]+)`)
	braceParam      = regexp.MustCompile(`/\{([^/{}]+)\}`)
	absoluteURLHead = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://`)
)

// StripVariables removes every {{variable}} placeholder from raw.
// The variable names are dropped, not resolved.
func StripVariables(raw string) string {
	return templateVar.ReplaceAllString(raw, "")
}

// PathPattern derives an OpenAPI path template from a request URL.
//
//	PathPattern("http://x/api", "http://x/api/users/:id") == "/api/users/{id}"
func PathPattern(baseURL, rawURL string) string {
	path := StripBaseURL(baseURL, rawURL)
	path = BracePath(path)
	if HasAPISegment(baseURL) {
		path = ReinsertAPIPrefix(path)
	}
	return path
}

// StripBaseURL removes baseURL from the front of rawURL and normalizes what is
// left into an absolute path without query string or fragment.
func StripBaseURL(baseURL, rawURL string) string {
	path := rawURL
	if baseURL != "" {
		path = strings.TrimPrefix(path, baseURL)
	}

	if absoluteURLHead.MatchString(path) {
		if u, err := url.Parse(path); err == nil {
			path = u.Path
		}
	}

	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}

	path = leadingSlashes.ReplaceAllString(path, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

// BracePath rewrites colon style path parameters to brace style: /users/:id -> /users/{id}.
func BracePath(path string) string {
	return colonParam.ReplaceAllString(path, "/{$1}")
}

// ColonPath rewrites brace style path parameters to colon style: /users/{id} -> /users/:id.
func ColonPath(path string) string {
	return braceParam.ReplaceAllString(path, "/:$1")
}

// HasAPISegment reports whether baseURL carries an /api segment.
func HasAPISegment(baseURL string) bool {
	return strings.Contains(baseURL, apiSegment)
}

// ReinsertAPIPrefix puts /api back in front of path unless it is already there.
func ReinsertAPIPrefix(path string) string {
	if strings.HasPrefix(path, apiSegment) {
		return path
	}
	return apiSegment + path
}

// ServerURL returns the server URL to declare for baseURL. Paths keep their
// /api prefix, so the server drops it once.
func ServerURL(baseURL string) string {
	if HasAPISegment(baseURL) {
		return strings.Replace(baseURL, apiSegment, "", 1)
	}
	return baseURL
}
