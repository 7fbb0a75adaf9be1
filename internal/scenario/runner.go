package scenario

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"chatwarden/internal/auditor"
	"chatwarden/internal/model"
	"chatwarden/internal/schema"
)

// Run evaluates all cases in a scenario against the given schema.
// Cases are independent; each builds its own conversation.
func Run(s *Scenario, sch *schema.PolicySchema) (*RunResult, error) {
	result := &RunResult{
		Name:  s.Name,
		Total: len(s.Cases),
	}

	for i, c := range s.Cases {
		conv, err := caseConversation(i, c)
		if err != nil {
			return nil, fmt.Errorf("case %d: %w", i+1, err)
		}

		d := auditor.Evaluate(conv, sch)
		actual := string(d.Outcome)
		expected := strings.ToLower(c.Expect)

		cr := CaseResult{
			Index:    i + 1,
			Expected: expected,
			Actual:   actual,
			Rules:    len(d.TriggeredRules),
		}
		if len(d.Rationale) > 0 {
			cr.Reason = d.Rationale[0]
		}

		cr.Passed = actual == expected
		if c.ExpectRules != nil && cr.Rules != *c.ExpectRules {
			cr.Passed = false
		}

		if cr.Passed {
			result.Passed++
		} else {
			result.Failed++
		}

		result.Cases = append(result.Cases, cr)
	}

	return result, nil
}

// LoadAndRun loads a scenario YAML file, resolves its schema, and runs.
// A schema path inside the scenario file overrides the one passed in.
func LoadAndRun(path, schemaPath string) (*RunResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = path
	}

	if s.Schema != "" {
		schemaPath = s.Schema
	}
	sch, err := schema.Load(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	return Run(&s, sch)
}

func caseConversation(caseIdx int, c Case) (model.Conversation, error) {
	conv := make(model.Conversation, 0, len(c.Transcript))
	for j, cm := range c.Transcript {
		role, err := model.ParseRole(cm.Role)
		if err != nil {
			return nil, err
		}
		conv = append(conv, model.Message{
			ID:   fmt.Sprintf("c%d-m%d", caseIdx+1, j+1),
			Role: role,
			Text: cm.Text,
		})
	}
	return conv, nil
}
