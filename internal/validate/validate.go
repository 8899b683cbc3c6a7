// Package validate applies the optional tool policy to incoming tool calls
// before they are dispatched to NetSuite: allow/deny lists plus optional
// per-tool JSON Schemas.
package validate

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/suitebridge/netsuite-mcp/internal/config"
)

type Gate struct {
	mode        string
	defaultDeny bool
	allow       map[string]struct{}
	deny        map[string]struct{}
	schemas     map[string]*gojsonschema.Schema
}

// Decision is the outcome of gating one tool call. Violations may be
// non-empty even when Allowed is true (audit mode).
type Decision struct {
	Allowed    bool
	Violations []string
}

// New compiles a Gate from the loaded policy. A nil policy yields a gate that
// allows everything.
func New(policy *config.Policy) (*Gate, error) {
	g := &Gate{
		mode:    "off",
		allow:   map[string]struct{}{},
		deny:    map[string]struct{}{},
		schemas: map[string]*gojsonschema.Schema{},
	}
	if policy == nil {
		return g, nil
	}
	g.mode = policy.Mode
	g.defaultDeny = policy.DefaultDeny
	for _, name := range policy.AllowTools {
		g.allow[name] = struct{}{}
	}
	for _, name := range policy.DenyTools {
		g.deny[name] = struct{}{}
	}
	for name, entry := range policy.Tools {
		if entry.Schema == nil {
			continue
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(entry.Schema))
		if err != nil {
			return nil, fmt.Errorf("policy schema for %s: %w", name, err)
		}
		g.schemas[name] = schema
	}
	return g, nil
}

// Check gates one tool call by name and argument map.
func (g *Gate) Check(tool string, args map[string]any) (Decision, error) {
	if g == nil || g.mode == "off" {
		return Decision{Allowed: true}, nil
	}

	var violations []string
	if _, denied := g.deny[tool]; denied {
		violations = append(violations, "tool is denied by policy")
	}
	if len(g.allow) > 0 {
		if _, ok := g.allow[tool]; !ok {
			violations = append(violations, "tool not in allowlist")
		}
	} else if g.defaultDeny {
		if _, ok := g.schemas[tool]; !ok {
			violations = append(violations, "tool not explicitly allowed")
		}
	}

	if schema, ok := g.schemas[tool]; ok {
		if args == nil {
			args = map[string]any{}
		}
		result, err := schema.Validate(gojsonschema.NewGoLoader(args))
		if err != nil {
			return Decision{}, err
		}
		for _, desc := range result.Errors() {
			violations = append(violations, desc.String())
		}
	}

	if len(violations) == 0 {
		return Decision{Allowed: true}, nil
	}
	return Decision{Allowed: g.mode == "audit", Violations: violations}, nil
}
