package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Action is the enforcement action a rule demands when it fires.
type Action string

const (
	ActionStop      Action = "stop"
	ActionModify    Action = "modify"
	ActionInterject Action = "interject"
)

// Thresholds defines confidence boundaries for the reviewer surface.
type Thresholds struct {
	HighConfidence         float64 `json:"highConfidence" yaml:"highConfidence"`
	InterjectMinConfidence float64 `json:"interjectMinConfidence" yaml:"interjectMinConfidence"`
}

// MatchSpec is a rule's match predicate. All fields are optional;
// a spec with no fields set never matches.
type MatchSpec struct {
	UserIncludes       []string `json:"userIncludes,omitempty" yaml:"userIncludes,omitempty"`
	BotIncludes        []string `json:"botIncludes,omitempty" yaml:"botIncludes,omitempty"`
	DaysSinceOrderOver *float64 `json:"daysSinceOrderOver,omitempty" yaml:"daysSinceOrderOver,omitempty"`
}

// Empty reports whether no predicate fields are set.
func (m MatchSpec) Empty() bool {
	return len(m.UserIncludes) == 0 && len(m.BotIncludes) == 0 && m.DaysSinceOrderOver == nil
}

// Rule is a single named policy check. Rules are immutable once loaded;
// editing happens by replacing the whole schema.
type Rule struct {
	ID                  string    `json:"id" yaml:"id"`
	Title               string    `json:"title" yaml:"title"`
	Description         string    `json:"description,omitempty" yaml:"description,omitempty"`
	Severity            float64   `json:"severity" yaml:"severity"`
	Match               MatchSpec `json:"match" yaml:"match"`
	Action              Action    `json:"action" yaml:"action"`
	OnViolationGuidance string    `json:"onViolationGuidance,omitempty" yaml:"onViolationGuidance,omitempty"`
}

// PolicySchema is the declarative, versioned rule set governing evaluation.
// A schema document is atomically valid or rejected — one bad rule
// invalidates the whole document.
type PolicySchema struct {
	Name             string     `json:"name" yaml:"name"`
	Version          string     `json:"version" yaml:"version"`
	Thresholds       Thresholds `json:"thresholds" yaml:"thresholds"`
	SupportProtocols []string   `json:"supportProtocols,omitempty" yaml:"supportProtocols,omitempty"`
	Rules            []Rule     `json:"rules" yaml:"rules"`
}

// SeverityCeiling is the sum of all rule severities, floored at 1 so
// confidence division never hits zero.
func (s *PolicySchema) SeverityCeiling() float64 {
	total := 0.0
	for _, r := range s.Rules {
		total += r.Severity
	}
	if total < 1 {
		return 1
	}
	return total
}

// ParseError reports an invalid schema document.
type ParseError struct {
	Cause string
}

func (e *ParseError) Error() string {
	return "schema parse error: " + e.Cause
}

// Parse decodes and validates a JSON schema document.
func Parse(data []byte) (*PolicySchema, error) {
	var s PolicySchema
	if err := json.Unmarshal(data, &s); err != nil {
		var syn *json.SyntaxError
		if errors.As(err, &syn) {
			return nil, &ParseError{Cause: fmt.Sprintf("invalid JSON at offset %d: %v", syn.Offset, err)}
		}
		return nil, &ParseError{Cause: err.Error()}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ParseYAML decodes and validates a YAML schema document.
func ParseYAML(data []byte) (*PolicySchema, error) {
	var s PolicySchema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, &ParseError{Cause: err.Error()}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks structural invariants. Returns a *ParseError naming the
// first offending field.
func (s *PolicySchema) Validate() error {
	if s.Name == "" {
		return &ParseError{Cause: "missing required field: name"}
	}
	if s.Version == "" {
		return &ParseError{Cause: "missing required field: version"}
	}
	seen := make(map[string]bool, len(s.Rules))
	for i, r := range s.Rules {
		if r.ID == "" {
			return &ParseError{Cause: fmt.Sprintf("rule %d: missing required field: id", i)}
		}
		if seen[r.ID] {
			return &ParseError{Cause: fmt.Sprintf("rule %q: duplicate id", r.ID)}
		}
		seen[r.ID] = true
		if r.Title == "" {
			return &ParseError{Cause: fmt.Sprintf("rule %q: missing required field: title", r.ID)}
		}
		if r.Severity <= 0 {
			return &ParseError{Cause: fmt.Sprintf("rule %q: severity must be a positive number", r.ID)}
		}
		switch r.Action {
		case ActionStop, ActionModify, ActionInterject:
		default:
			return &ParseError{Cause: fmt.Sprintf("rule %q: unknown action %q", r.ID, r.Action)}
		}
	}
	return nil
}

// Load reads a schema file. Extension selects the decoder: .yaml/.yml is
// parsed as YAML, everything else as JSON. Empty path returns the default
// schema.
func Load(path string) (*PolicySchema, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return Parse(data)
	}
}

// LoadWithHash loads a schema file and returns its SHA-256 hash, computed
// over the raw bytes on disk. When no path is given (defaults used), the
// hash is the SHA-256 of empty input.
func LoadWithHash(path string) (*PolicySchema, string, error) {
	if path == "" {
		h := sha256.Sum256(nil)
		return Default(), "sha256:" + hex.EncodeToString(h[:]), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read schema: %w", err)
	}

	h := sha256.Sum256(data)
	hash := "sha256:" + hex.EncodeToString(h[:])

	var s *PolicySchema
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		s, err = ParseYAML(data)
	default:
		s, err = Parse(data)
	}
	if err != nil {
		return nil, "", err
	}

	return s, hash, nil
}
