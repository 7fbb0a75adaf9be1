// Package incident derives read-only, per-conversation summaries for
// list and table views. A single Detector interface backs both the
// quick-scan heuristic used for triage lists and the full-schema
// evaluator used in detail review, so Flagged/Clean labeling stays
// consistent across views.
package incident

import (
	"strings"
	"time"

	"chatwarden/internal/auditor"
	"chatwarden/internal/model"
	"chatwarden/internal/schema"
)

// Status labels an incident for list views.
type Status string

const (
	StatusFlagged Status = "Flagged"
	StatusClean   Status = "Clean"
)

// Incident is a derived projection of one conversation. It is never
// stored; recompute it whenever the conversation changes.
type Incident struct {
	ID             string `json:"id"`
	Date           string `json:"date"`
	Messages       int    `json:"messages"`
	ViolationCount int    `json:"violationCount"`
	Severity       string `json:"severity"`
	Status         Status `json:"status"`
}

// Detector counts independently-triggered violation patterns in a
// conversation.
type Detector interface {
	Count(conv model.Conversation) int
}

// Derive projects a conversation into one Incident using the given
// detector. A conversation with no messages yields no incident.
func Derive(id string, conv model.Conversation, det Detector) (Incident, bool) {
	if len(conv) == 0 {
		return Incident{}, false
	}
	count := det.Count(conv)
	status := StatusClean
	if count > 0 {
		status = StatusFlagged
	}
	return Incident{
		ID:             id,
		Date:           time.Now().UTC().Format("2006-01-02"),
		Messages:       len(conv),
		ViolationCount: count,
		Severity:       "High",
		Status:         status,
	}, true
}

// pattern is one quick-scan violation check. Unlike the full matcher,
// quick-scan gates a user-keyword pattern on its day threshold and scans
// the whole transcript, not just the last exchange.
type pattern struct {
	userIncludes []string
	botIncludes  []string
	daysOver     int
}

// QuickScan is the fixed three-pattern profile for list views: refund
// past window, out-of-policy promises, sensitive data exposure.
type QuickScan struct{}

// Count scans the joined user and bot text for each fixed pattern.
func (QuickScan) Count(conv model.Conversation) int {
	patterns := []pattern{
		{userIncludes: []string{"refund", "return"}, daysOver: 30},
		{botIncludes: []string{"processed a full refund", "absolutely! i've processed"}},
		{botIncludes: []string{"full card number", "security number", "password"}},
	}

	userText := joinedText(conv, model.RoleUser)
	botText := joinedText(conv, model.RoleBot)

	count := 0
	for _, p := range patterns {
		if len(p.userIncludes) > 0 && containsAny(userText, p.userIncludes) {
			if p.daysOver > 0 {
				if days, ok := auditor.DaysSinceMention(userText); ok && days > p.daysOver {
					count++
				}
			}
		}
		if len(p.botIncludes) > 0 && containsAny(botText, p.botIncludes) {
			count++
		}
	}
	return count
}

// SchemaScan is the full-schema profile: violation count is the number of
// rules the auditor triggers for the conversation.
type SchemaScan struct {
	Schema *schema.PolicySchema
}

func (s SchemaScan) Count(conv model.Conversation) int {
	return len(auditor.Evaluate(conv, s.Schema).TriggeredRules)
}

func joinedText(conv model.Conversation, role model.Role) string {
	var parts []string
	for _, m := range conv {
		if m.Role == role {
			parts = append(parts, m.Text)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
