package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Policy gates which tools the server will dispatch and optionally tightens
// their argument schemas beyond what the tool definitions declare. A nil
// policy allows everything.
type Policy struct {
	Version     int                  `json:"version" yaml:"version"`
	Mode        string               `json:"mode" yaml:"mode"`
	DefaultDeny bool                 `json:"default_deny" yaml:"default_deny"`
	AllowTools  []string             `json:"allow_tools" yaml:"allow_tools"`
	DenyTools   []string             `json:"deny_tools" yaml:"deny_tools"`
	Tools       map[string]ToolEntry `json:"tools" yaml:"tools"`
}

type ToolEntry struct {
	Schema map[string]any `json:"schema" yaml:"schema"`
}

// LoadPolicy reads a yaml or json policy file. An empty path means no policy.
func LoadPolicy(path string) (*Policy, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	policy := &Policy{}
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		err = json.Unmarshal(data, policy)
	} else {
		err = yaml.Unmarshal(data, policy)
	}
	if err != nil {
		return nil, err
	}

	if policy.Version == 0 {
		policy.Version = 1
	}
	if policy.Mode == "" {
		policy.Mode = "enforce"
	}
	policy.Mode = strings.ToLower(policy.Mode)
	if policy.Mode != "enforce" && policy.Mode != "audit" && policy.Mode != "off" {
		return nil, errors.New("policy mode must be enforce, audit, or off")
	}
	if policy.Tools == nil {
		policy.Tools = map[string]ToolEntry{}
	}
	return policy, nil
}
