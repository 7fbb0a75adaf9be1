package scenario

// CaseMessage is one transcript line in a scenario case. IDs are
// generated; scenario authors only write roles and text.
type CaseMessage struct {
	Role string `yaml:"role"`
	Text string `yaml:"text"`
}

// Case is one audit assertion: a transcript and the outcome it must
// produce.
type Case struct {
	Transcript  []CaseMessage `yaml:"transcript"`
	Expect      string        `yaml:"expect"`
	ExpectRules *int          `yaml:"expect_rules,omitempty"`
}

// Scenario is a named set of cases loaded from one YAML file.
type Scenario struct {
	Name   string `yaml:"name"`
	Schema string `yaml:"schema,omitempty"`
	Cases  []Case `yaml:"cases"`
}

// CaseResult records the evaluation of a single case.
type CaseResult struct {
	Index    int    `json:"index"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Rules    int    `json:"rules"`
	Reason   string `json:"reason,omitempty"`
	Passed   bool   `json:"passed"`
}

// RunResult aggregates all case results for one scenario file.
type RunResult struct {
	Name   string       `json:"name"`
	Total  int          `json:"total"`
	Passed int          `json:"passed"`
	Failed int          `json:"failed"`
	Cases  []CaseResult `json:"cases"`
}
