// Package redact strips credential material out of JSON payloads and header
// maps before they are handed to the logger. Nothing here persists data; it
// only rewrites copies destined for debug output.
package redact

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const replacement = "[REDACTED]"

// Built-in patterns cover the credential-bearing keys a SuiteTalk deployment
// sees in practice: the Authorization header and any consumer/token secret
// that leaks into a request or response body.
var defaultPatterns = []string{`(?i)^authorization$`, `(?i)(secret|token|password)`}

type Redactor struct {
	keys     map[string]struct{}
	keyRegex []*regexp.Regexp
}

// New builds a Redactor from exact key names and key regexes, merged with the
// built-in patterns. An invalid regex is a configuration error.
func New(keys, patterns []string) (*Redactor, error) {
	r := &Redactor{keys: map[string]struct{}{}}
	for _, k := range keys {
		if k == "" {
			continue
		}
		r.keys[strings.ToLower(k)] = struct{}{}
	}
	for _, pattern := range append(append([]string{}, defaultPatterns...), patterns...) {
		if pattern == "" {
			continue
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid redact pattern %q: %w", pattern, err)
		}
		r.keyRegex = append(r.keyRegex, re)
	}
	return r, nil
}

// Default returns a Redactor with only the built-in patterns.
func Default() *Redactor {
	r, err := New(nil, nil)
	if err != nil {
		panic(err) // built-in patterns always compile
	}
	return r
}

// Key reports whether a key (header name or JSON field) must not be logged.
func (r *Redactor) Key(k string) bool {
	if r == nil {
		return false
	}
	if _, ok := r.keys[strings.ToLower(k)]; ok {
		return true
	}
	for _, re := range r.keyRegex {
		if re.MatchString(k) {
			return true
		}
	}
	return false
}

// Apply returns raw with every sensitive key's value replaced. Payloads that
// are not valid JSON come back wholesale-redacted rather than partially
// leaked.
func (r *Redactor) Apply(raw json.RawMessage) json.RawMessage {
	if r == nil || len(raw) == 0 {
		return raw
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return json.RawMessage(`"` + replacement + `"`)
	}
	v = r.redactValue(v)
	out, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage(`"` + replacement + `"`)
	}
	return out
}

func (r *Redactor) redactValue(v any) any {
	switch vv := v.(type) {
	case map[string]any:
		for k, child := range vv {
			if r.Key(k) {
				vv[k] = replacement
				continue
			}
			vv[k] = r.redactValue(child)
		}
	case []any:
		for i := range vv {
			vv[i] = r.redactValue(vv[i])
		}
	}
	return v
}
