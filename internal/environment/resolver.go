// Package environment picks the base URL a collection's requests were written
// against, using the collection's environment files.
package environment

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/kolah/brunoapi/internal/bru"
	"github.com/spf13/afero"
)

const (
	DefaultBaseURL = "http://localhost:3000"

	baseURLVar = "baseUrl"
	apiURLVar  = "apiUrl"
)

type Resolver struct {
	fs    afero.Fs
	codec bru.Codec
}

func NewResolver(fs afero.Fs, codec bru.Codec) *Resolver {
	return &Resolver{fs: fs, codec: codec}
}

// Resolution is the outcome of Resolve.
type Resolution struct {
	BaseURL string
	// Source is the environment file the base URL came from; empty when the
	// default was used.
	Source   string
	Tried    []string
	Warnings []string
}

// Resolve walks the environment files in envDir in SortCandidates order and
// adopts the first base URL it can derive. A missing directory is not an error.
func (r *Resolver) Resolve(envDir string) *Resolution {
	res := &Resolution{BaseURL: DefaultBaseURL}

	names, err := r.candidates(envDir)
	if err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("listing environments: %v", err))
		return res
	}

	for _, name := range SortCandidates(names) {
		res.Tried = append(res.Tried, name)

		path := filepath.Join(envDir, name)
		data, err := afero.ReadFile(r.fs, path)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("reading environment %s: %v", path, err))
			continue
		}
		env, err := r.codec.ParseEnvironment(string(data))
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("parsing environment %s: %v", path, err))
			continue
		}

		if baseURL, ok := BaseURL(env); ok {
			res.BaseURL = baseURL
			res.Source = name
			return res
		}
	}

	return res
}

func (r *Resolver) candidates(envDir string) ([]string, error) {
	exists, err := afero.DirExists(r.fs, envDir)
	if err != nil || !exists {
		return nil, err
	}

	entries, err := afero.ReadDir(r.fs, envDir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), bru.Ext) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// BaseURL derives a base URL from one environment. apiUrl wins when baseUrl is
// also set, with one level of {{baseUrl}} substituted into it; otherwise
// baseUrl is taken as is.
func BaseURL(env *bru.Environment) (string, bool) {
	baseURL, hasBase := env.Lookup(baseURLVar)
	if !hasBase {
		return "", false
	}
	if apiURL, ok := env.Lookup(apiURLVar); ok {
		return strings.Replace(apiURL, "{{"+baseURLVar+"}}", baseURL, 1), true
	}
	return baseURL, true
}

// SortCandidates orders environment file names so that "local" environments
// come first and "production" ones next; names are otherwise sorted
// lexicographically. Matching is case-insensitive.
func SortCandidates(names []string) []string {
	sorted := slices.Clone(names)
	slices.SortStableFunc(sorted, func(a, b string) int {
		if pa, pb := priority(a), priority(b); pa != pb {
			return pa - pb
		}
		return strings.Compare(a, b)
	})
	return sorted
}

func priority(name string) int {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "local"):
		return 0
	case strings.Contains(lower, "production"):
		return 1
	default:
		return 2
	}
}
