package review

import (
	"fmt"

	"chatwarden/internal/auditor"
	"chatwarden/internal/model"
	"chatwarden/internal/schema"
)

// StateError is raised when a resolution action is invoked without an
// open decision, or twice for the same pending decision without a reset.
type StateError struct {
	Op     string
	Reason string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("review action %q rejected: %s", e.Op, e.Reason)
}

// Session holds the one conversation + schema pair under review. It is
// the only mutation point for the transcript: every resolution action is
// a discrete, reviewer-triggered, one-shot append. Evaluation itself is
// stateless — Decision recomputes fresh from the current pair.
type Session struct {
	initial model.Conversation
	current model.Conversation
	schema  *schema.PolicySchema
	seq     int
}

// NewSession starts a review over an already-loaded conversation.
func NewSession(conv model.Conversation, s *schema.PolicySchema) *Session {
	return &Session{
		initial: conv.Clone(),
		current: conv.Clone(),
		schema:  s,
	}
}

// Conversation returns a copy of the current transcript.
func (s *Session) Conversation() model.Conversation {
	return s.current.Clone()
}

// Schema returns the schema currently under review.
func (s *Session) Schema() *schema.PolicySchema {
	return s.schema
}

// ReplaceSchema swaps the schema wholesale. Takes effect immediately:
// the next Decision call evaluates against the new rule set.
func (s *Session) ReplaceSchema(ns *schema.PolicySchema) {
	s.schema = ns
}

// Decision evaluates the current (conversation, schema) pair.
func (s *Session) Decision() model.Decision {
	return auditor.Evaluate(s.current, s.schema)
}

// Pending reports whether an open decision awaits reviewer action:
// outcome is not allow and no auditor message has been appended yet.
func (s *Session) Pending() bool {
	d := s.Decision()
	return d.Open(s.current)
}

// ApplySuggestion resolves the open decision by superseding the last bot
// reply: an auditor message and a new bot message carrying the suggested
// reply are inserted right after it. The original bot message is retained
// (struck through in review) but superseded in effect.
func (s *Session) ApplySuggestion() (model.Decision, error) {
	d, err := s.open("apply-suggestion")
	if err != nil {
		return model.Decision{}, err
	}
	if d.SuggestedReply == "" {
		return model.Decision{}, &StateError{Op: "apply-suggestion", Reason: "decision has no suggested reply"}
	}

	idx := s.current.LastBotIndex()
	original := s.current[idx].Text

	interjection := model.Message{
		ID:   s.nextID("auditor"),
		Role: model.RoleAuditor,
		Text: "AI Auditor interjected and modified the bot response.",
		Meta: &model.Meta{Decision: &d},
	}
	modified := model.Message{
		ID:   s.nextID("bot-modified"),
		Role: model.RoleBot,
		Text: d.SuggestedReply,
		Meta: &model.Meta{OriginalBotText: original, Decision: &d},
	}

	next := make(model.Conversation, 0, len(s.current)+2)
	next = append(next, s.current[:idx+1]...)
	next = append(next, interjection, modified)
	next = append(next, s.current[idx+1:]...)
	s.current = next

	return d, nil
}

// RequestHuman resolves the open decision by stopping the bot: a single
// auditor message records the stop. No reply is synthesized — a human is
// expected to respond out of band.
func (s *Session) RequestHuman() (model.Decision, error) {
	d, err := s.open("request-human")
	if err != nil {
		return model.Decision{}, err
	}

	s.current = append(s.current, model.Message{
		ID:   s.nextID("auditor-human"),
		Role: model.RoleAuditor,
		Text: "AI Auditor stopped the bot and requested human interjection.",
		Meta: &model.Meta{Decision: &d},
	})

	return d, nil
}

// AllowOriginal resolves the open decision by overriding the auditor:
// a single auditor message records the override and the original bot
// reply stands unchanged.
func (s *Session) AllowOriginal() (model.Decision, error) {
	d, err := s.open("allow-original")
	if err != nil {
		return model.Decision{}, err
	}

	s.current = append(s.current, model.Message{
		ID:   s.nextID("auditor-override"),
		Role: model.RoleAuditor,
		Text: "AI Auditor was overridden by user. Original bot response sent.",
		Meta: &model.Meta{Decision: &d},
	})

	return d, nil
}

// Reset discards all resolution actions and restores the conversation to
// its originally-loaded sequence. This is the only operation that may
// shrink the transcript.
func (s *Session) Reset() {
	s.current = s.initial.Clone()
	s.seq = 0
}

// open returns the current decision if it is still awaiting resolution.
func (s *Session) open(op string) (model.Decision, error) {
	d := s.Decision()
	if d.Outcome == model.OutcomeAllow {
		return model.Decision{}, &StateError{Op: op, Reason: "no open decision: outcome is allow"}
	}
	if s.current.HasAuditor() {
		return model.Decision{}, &StateError{Op: op, Reason: "decision already resolved; reset first"}
	}
	return d, nil
}

func (s *Session) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}
