package model

import (
	"encoding/json"
	"fmt"
)

// Role identifies the author of a transcript message.
type Role string

const (
	RoleUser    Role = "user"
	RoleBot     Role = "bot"
	RoleAuditor Role = "auditor"
)

// ParseRole validates a raw role string at the ingestion boundary.
// Malformed roles fail fast here rather than inside the auditor.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleBot, RoleAuditor:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown message role %q", s)
	}
}

// Meta carries variant-specific message metadata. It is write-once: set
// when the message is created, never mutated afterwards. Only auditor
// messages and auditor-modified bot messages carry a Decision snapshot;
// only modified bot messages carry the suppressed original text.
type Meta struct {
	OriginalBotText string    `json:"originalBotText,omitempty"`
	Decision        *Decision `json:"decision,omitempty"`
}

// Message is one entry in a conversation transcript.
type Message struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
	Text string `json:"text"`
	Meta *Meta  `json:"meta,omitempty"`
}

// Conversation is an ordered, append-only message sequence. Mutation only
// happens through the review session; everything else treats it as read-only.
type Conversation []Message

// ParseConversation decodes a JSON message list and validates every entry.
// One malformed message rejects the whole transcript.
func ParseConversation(data []byte) (Conversation, error) {
	var conv Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("failed to parse transcript: %w", err)
	}
	for i, m := range conv {
		if m.ID == "" {
			return nil, fmt.Errorf("message %d: missing id", i)
		}
		if _, err := ParseRole(string(m.Role)); err != nil {
			return nil, fmt.Errorf("message %q: %w", m.ID, err)
		}
		if m.Text == "" {
			return nil, fmt.Errorf("message %q: missing text", m.ID)
		}
	}
	return conv, nil
}

// LastUser returns the most recent user message.
func (c Conversation) LastUser() (Message, bool) {
	return c.last(RoleUser)
}

// LastBot returns the most recent bot message.
func (c Conversation) LastBot() (Message, bool) {
	return c.last(RoleBot)
}

// LastBotIndex returns the index of the most recent bot message, or -1.
func (c Conversation) LastBotIndex() int {
	for i := len(c) - 1; i >= 0; i-- {
		if c[i].Role == RoleBot {
			return i
		}
	}
	return -1
}

// HasAuditor reports whether any auditor message has been appended.
// This is half of the unresolved-decision gate.
func (c Conversation) HasAuditor() bool {
	for _, m := range c {
		if m.Role == RoleAuditor {
			return true
		}
	}
	return false
}

// Clone returns an independent copy of the message sequence.
func (c Conversation) Clone() Conversation {
	out := make(Conversation, len(c))
	copy(out, c)
	return out
}

func (c Conversation) last(role Role) (Message, bool) {
	for i := len(c) - 1; i >= 0; i-- {
		if c[i].Role == role {
			return c[i], true
		}
	}
	return Message{}, false
}
