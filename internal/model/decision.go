package model

import "chatwarden/internal/schema"

// Outcome is the coarse classification of a decision.
type Outcome string

const (
	OutcomeAllow            Outcome = "allow"
	OutcomeStop             Outcome = "stop"
	OutcomeInterjectModify  Outcome = "interject-modify"
	OutcomeInterjectAskUser Outcome = "interject-ask-user"
)

// Decision is the output of one audit pass. It is a pure function of
// (conversation, schema): recomputed fresh on every change to either
// input, never persisted or merged.
type Decision struct {
	Outcome        Outcome       `json:"outcome"`
	Confidence     float64       `json:"confidence"`
	TriggeredRules []schema.Rule `json:"triggeredRules"`
	Rationale      []string      `json:"rationale"`
	SuggestedReply string        `json:"suggestedReply,omitempty"`
}

// Open reports whether this decision still needs reviewer action on the
// given conversation: a non-allow outcome with no auditor message yet.
func (d *Decision) Open(conv Conversation) bool {
	return d.Outcome != OutcomeAllow && !conv.HasAuditor()
}
