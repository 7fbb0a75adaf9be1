package schema

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseDefaultRoundTrip(t *testing.T) {
	s, err := Parse([]byte(DefaultJSON()))
	if err != nil {
		t.Fatalf("default schema should parse: %v", err)
	}
	if s.Name != Default().Name {
		t.Errorf("name mismatch: %q", s.Name)
	}
	if len(s.Rules) != 4 {
		t.Fatalf("expected 4 rules, got %d", len(s.Rules))
	}
	if s.Rules[0].ID != "R-001" || s.Rules[0].Action != ActionInterject {
		t.Errorf("rule order or action not preserved: %+v", s.Rules[0])
	}
	if s.Rules[0].Match.DaysSinceOrderOver == nil || *s.Rules[0].Match.DaysSinceOrderOver != 30 {
		t.Error("daysSinceOrderOver not preserved")
	}
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{"syntax error", `{"name": "x",`, "invalid JSON"},
		{"missing name", `{"version": "1.0"}`, "missing required field: name"},
		{"missing version", `{"name": "x"}`, "missing required field: version"},
		{
			"missing rule id",
			`{"name": "x", "version": "1", "rules": [{"title": "t", "severity": 1, "action": "stop"}]}`,
			"missing required field: id",
		},
		{
			"duplicate rule id",
			`{"name": "x", "version": "1", "rules": [
				{"id": "R-1", "title": "a", "severity": 1, "action": "stop"},
				{"id": "R-1", "title": "b", "severity": 1, "action": "stop"}
			]}`,
			"duplicate id",
		},
		{
			"zero severity",
			`{"name": "x", "version": "1", "rules": [{"id": "R-1", "title": "t", "severity": 0, "action": "stop"}]}`,
			"severity must be a positive number",
		},
		{
			"unknown action",
			`{"name": "x", "version": "1", "rules": [{"id": "R-1", "title": "t", "severity": 1, "action": "escalate"}]}`,
			`unknown action "escalate"`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected error containing %q, got %q", tc.want, err)
			}
		})
	}
}

func TestParseYAML(t *testing.T) {
	doc := `
name: test schema
version: "1.0"
rules:
  - id: R-1
    title: refund window
    severity: 5
    action: interject
    match:
      userIncludes: ["refund"]
      daysSinceOrderOver: 30
`
	s, err := ParseYAML([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Rules[0].Match.DaysSinceOrderOver == nil || *s.Rules[0].Match.DaysSinceOrderOver != 30 {
		t.Error("daysSinceOrderOver not decoded from YAML")
	}
}

func TestSeverityCeilingFloorsAtOne(t *testing.T) {
	empty := &PolicySchema{Name: "x", Version: "1"}
	if got := empty.SeverityCeiling(); got != 1 {
		t.Errorf("expected ceiling 1 for empty rule set, got %g", got)
	}

	def := Default()
	if got := def.SeverityCeiling(); got != 16 {
		t.Errorf("expected ceiling 16 for default schema, got %g", got)
	}
}

func TestMatchSpecEmpty(t *testing.T) {
	if !(MatchSpec{}).Empty() {
		t.Error("zero MatchSpec should be empty")
	}
	if (MatchSpec{UserIncludes: []string{"x"}}).Empty() {
		t.Error("spec with userIncludes should not be empty")
	}
	if (MatchSpec{DaysSinceOrderOver: daysOver(10)}).Empty() {
		t.Error("spec with day threshold should not be empty")
	}
}

func TestLoadByExtension(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "schema.json")
	os.WriteFile(jsonPath, []byte(DefaultJSON()), 0644)
	if _, err := Load(jsonPath); err != nil {
		t.Errorf("load JSON: %v", err)
	}

	yamlPath := filepath.Join(dir, "schema.yaml")
	os.WriteFile(yamlPath, []byte("name: y\nversion: \"1\"\nrules: []\n"), 0644)
	if _, err := Load(yamlPath); err != nil {
		t.Errorf("load YAML: %v", err)
	}

	s, err := Load("")
	if err != nil {
		t.Fatalf("empty path should return defaults: %v", err)
	}
	if s.Name != Default().Name {
		t.Error("empty path did not return default schema")
	}
}

func TestLoadWithHashChangesWithContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.json")

	os.WriteFile(path, []byte(DefaultJSON()), 0644)
	_, h1, err := LoadWithHash(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(h1, "sha256:") {
		t.Errorf("expected sha256 prefix, got %q", h1)
	}

	os.WriteFile(path, []byte(`{"name": "other", "version": "2", "rules": []}`), 0644)
	_, h2, err := LoadWithHash(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h1 == h2 {
		t.Error("hash should change when file content changes")
	}
}

func TestLoadWithHashRejectsInvalidSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.json")
	os.WriteFile(path, []byte(`{"name": "x"`), 0644)

	_, _, err := LoadWithHash(path)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
}
