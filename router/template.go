// Package router provides path template matching and the route table used
// by the dispatcher.
package router

import (
	"strings"

	"github.com/yshengliao/turbohttp/core/types"
	"github.com/yshengliao/turbohttp/pkg/errors"
)

// segment is one "/"-separated piece of a template: a literal or a {param}.
type segment struct {
	value   string
	isParam bool
}

// Template is a compiled path template such as "/hello/{name}".
type Template struct {
	pattern  string
	segments []segment
	names    []string
}

// MatchResult is the outcome of matching a path against a template.
// Params is empty, never nil, on a match without parameters.
type MatchResult struct {
	Matched bool
	Params  types.Params
}

// Compile parses pattern. A segment of the form {name} captures the whole
// corresponding path segment; anything else must match literally.
func Compile(pattern string) (*Template, error) {
	parts := strings.Split(pattern, "/")
	t := &Template{
		pattern:  pattern,
		segments: make([]segment, 0, len(parts)),
	}

	seen := make(map[string]struct{})
	for _, part := range parts {
		if len(part) < 2 || part[0] != '{' || part[len(part)-1] != '}' {
			t.segments = append(t.segments, segment{value: part})
			continue
		}

		name := part[1 : len(part)-1]
		if name == "" {
			return nil, &errors.TemplateError{Pattern: pattern, Reason: "empty parameter name"}
		}
		if strings.ContainsAny(name, "{}") {
			return nil, &errors.TemplateError{Pattern: pattern, Reason: "malformed parameter " + part}
		}
		if _, dup := seen[name]; dup {
			return nil, &errors.TemplateError{Pattern: pattern, Reason: "duplicate parameter " + name}
		}
		seen[name] = struct{}{}

		t.segments = append(t.segments, segment{value: name, isParam: true})
		t.names = append(t.names, name)
	}

	return t, nil
}

// Pattern returns the raw template string.
func (t *Template) Pattern() string {
	return t.pattern
}

// ParamNames returns parameter names in order of appearance.
func (t *Template) ParamNames() []string {
	return t.names
}

// Match matches a concrete request path.
func (t *Template) Match(path string) MatchResult {
	if path == t.pattern {
		return MatchResult{Matched: true, Params: types.Params{}}
	}
	if len(t.names) == 0 {
		return MatchResult{}
	}

	parts := strings.Split(path, "/")
	if len(parts) != len(t.segments) {
		return MatchResult{}
	}

	params := make(types.Params, len(t.names))
	for i, seg := range t.segments {
		if seg.isParam {
			if parts[i] == "" {
				return MatchResult{}
			}
			params[seg.value] = parts[i]
			continue
		}
		if parts[i] != seg.value {
			return MatchResult{}
		}
	}

	return MatchResult{Matched: true, Params: params}
}

// Match compiles pattern and matches path against it. An invalid pattern
// only matches a path equal to it.
func Match(pattern, path string) MatchResult {
	t, err := Compile(pattern)
	if err != nil {
		if pattern == path {
			return MatchResult{Matched: true, Params: types.Params{}}
		}
		return MatchResult{}
	}
	return t.Match(path)
}
