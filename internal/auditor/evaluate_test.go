package auditor

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"chatwarden/internal/model"
	"chatwarden/internal/schema"
)

func conv(t *testing.T, pairs ...[2]string) model.Conversation {
	t.Helper()
	var c model.Conversation
	for i, p := range pairs {
		role, err := model.ParseRole(p[0])
		if err != nil {
			t.Fatalf("bad test role: %v", err)
		}
		c = append(c, model.Message{ID: fmt.Sprintf("m%d", i+1), Role: role, Text: p[1]})
	}
	return c
}

func ruleIDs(d model.Decision) []string {
	ids := make([]string, len(d.TriggeredRules))
	for i, r := range d.TriggeredRules {
		ids[i] = r.ID
	}
	return ids
}

func TestEvaluateInsufficientContext(t *testing.T) {
	cases := []struct {
		name string
		c    model.Conversation
	}{
		{"empty", model.Conversation{}},
		{"user only", conv(t, [2]string{"user", "hello"})},
		{"bot only", conv(t, [2]string{"bot", "how can I help?"})},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Evaluate(tc.c, schema.Default())
			if d.Outcome != model.OutcomeAllow {
				t.Errorf("outcome = %s, want allow", d.Outcome)
			}
			if d.Confidence != 0 {
				t.Errorf("confidence = %g, want 0", d.Confidence)
			}
			if len(d.Rationale) != 1 || d.Rationale[0] != insufficientContext {
				t.Errorf("rationale = %v", d.Rationale)
			}
			if d.SuggestedReply != "" {
				t.Error("allow decision should not carry a suggested reply")
			}
		})
	}
}

func TestEvaluateCleanConversation(t *testing.T) {
	c := conv(t,
		[2]string{"user", "Where is my package?"},
		[2]string{"bot", "It shipped yesterday and arrives tomorrow."},
	)
	d := Evaluate(c, schema.Default())
	if d.Outcome != model.OutcomeAllow {
		t.Errorf("outcome = %s, want allow", d.Outcome)
	}
	if d.Confidence != 0 {
		t.Errorf("confidence = %g, want 0", d.Confidence)
	}
	if len(d.TriggeredRules) != 0 {
		t.Errorf("triggered = %v, want none", ruleIDs(d))
	}
	if d.TriggeredRules == nil {
		t.Error("triggered rules must be an empty slice, not nil")
	}
}

func TestEvaluateRefundPastWindow(t *testing.T) {
	c := conv(t,
		[2]string{"user", "I want a refund. I bought this 45 days ago and the order was $299."},
		[2]string{"bot", "Let me look into your order."},
	)
	d := Evaluate(c, schema.Default())

	if d.Outcome != model.OutcomeInterjectAskUser {
		t.Errorf("outcome = %s, want interject-ask-user", d.Outcome)
	}
	want := []string{"R-001", "R-004"}
	if diff := cmp.Diff(want, ruleIDs(d)); diff != "" {
		t.Errorf("triggered rules mismatch (-want +got):\n%s", diff)
	}
	// (5+3)/16 plus the 0.1 high-value bonus.
	if math.Abs(d.Confidence-0.6) > 1e-9 {
		t.Errorf("confidence = %g, want 0.6", d.Confidence)
	}
	if d.SuggestedReply == "" {
		t.Error("non-allow decision must carry a suggested reply")
	}
	if d.Rationale[0] != "R-001: Refund past window must not be auto-approved (severity 5)" {
		t.Errorf("rationale[0] = %q", d.Rationale[0])
	}
}

func TestEvaluatePromiseUpgradesToModify(t *testing.T) {
	c := conv(t,
		[2]string{"user", "I want a refund. I bought this 45 days ago and the order was $299."},
		[2]string{"bot", "Absolutely! I've processed a full refund for you."},
	)
	d := Evaluate(c, schema.Default())

	if d.Outcome != model.OutcomeInterjectModify {
		t.Errorf("outcome = %s, want interject-modify", d.Outcome)
	}
	want := []string{"R-001", "R-002", "R-004"}
	if diff := cmp.Diff(want, ruleIDs(d)); diff != "" {
		t.Errorf("triggered rules mismatch (-want +got):\n%s", diff)
	}
	if math.Abs(d.Confidence-0.85) > 1e-9 {
		t.Errorf("confidence = %g, want 0.85", d.Confidence)
	}
}

func TestEvaluateSensitiveDataStops(t *testing.T) {
	c := conv(t,
		[2]string{"user", "I need help with my account."},
		[2]string{"bot", "Sure, please share your password and full card number."},
	)
	d := Evaluate(c, schema.Default())
	if d.Outcome != model.OutcomeStop {
		t.Errorf("outcome = %s, want stop", d.Outcome)
	}
}

func TestEvaluateStopBeatsHigherSeverityModify(t *testing.T) {
	s := &schema.PolicySchema{
		Name:    "precedence",
		Version: "1",
		Rules: []schema.Rule{
			{ID: "M-1", Title: "modify", Severity: 9, Action: schema.ActionModify,
				Match: schema.MatchSpec{BotIncludes: []string{"promise"}}},
			{ID: "S-1", Title: "stop", Severity: 1, Action: schema.ActionStop,
				Match: schema.MatchSpec{BotIncludes: []string{"password"}}},
		},
	}
	c := conv(t,
		[2]string{"user", "help"},
		[2]string{"bot", "I promise, just tell me your password"},
	)
	d := Evaluate(c, s)
	if d.Outcome != model.OutcomeStop {
		t.Errorf("outcome = %s, want stop regardless of severities", d.Outcome)
	}
}

func TestEvaluateConfidenceClampedToOne(t *testing.T) {
	s := &schema.PolicySchema{
		Name:    "clamp",
		Version: "1",
		Rules: []schema.Rule{
			{ID: "R-1", Title: "only rule", Severity: 5, Action: schema.ActionInterject,
				Match: schema.MatchSpec{UserIncludes: []string{"refund"}}},
		},
	}
	c := conv(t,
		[2]string{"user", "refund my $500 order"},
		[2]string{"bot", "checking"},
	)
	d := Evaluate(c, s)
	if d.Confidence != 1 {
		t.Errorf("confidence = %g, want clamp at 1", d.Confidence)
	}
}

func TestEvaluateHighValueBonusIsAdditive(t *testing.T) {
	s := &schema.PolicySchema{
		Name:    "bonus",
		Version: "1",
		Rules: []schema.Rule{
			{ID: "R-1", Title: "refund", Severity: 2, Action: schema.ActionInterject,
				Match: schema.MatchSpec{UserIncludes: []string{"refund"}}},
			{ID: "R-2", Title: "unused", Severity: 2, Action: schema.ActionInterject,
				Match: schema.MatchSpec{UserIncludes: []string{"never-matches"}}},
		},
	}
	low := Evaluate(conv(t,
		[2]string{"user", "refund my $99 order"},
		[2]string{"bot", "checking"},
	), s)
	high := Evaluate(conv(t,
		[2]string{"user", "refund my $101 order"},
		[2]string{"bot", "checking"},
	), s)

	if math.Abs(low.Confidence-0.5) > 1e-9 {
		t.Errorf("low-value confidence = %g, want 0.5", low.Confidence)
	}
	if math.Abs(high.Confidence-0.6) > 1e-9 {
		t.Errorf("high-value confidence = %g, want 0.6", high.Confidence)
	}
}

func TestEvaluateOnlyLastUserMessageExtracted(t *testing.T) {
	c := conv(t,
		[2]string{"user", "I bought this 45 days ago for $299 and want a refund"},
		[2]string{"bot", "Let me check."},
		[2]string{"user", "never mind the dates, just tell me the status"},
		[2]string{"bot", "It is on the way."},
	)
	d := Evaluate(c, schema.Default())
	for _, id := range ruleIDs(d) {
		if id == "R-001" {
			t.Error("R-001 fired on a stale user message; only the last one counts")
		}
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	c := conv(t,
		[2]string{"user", "I want a refund. I bought this 45 days ago and the order was $299."},
		[2]string{"bot", "Absolutely! I've processed a full refund for you."},
	)
	s := schema.Default()
	first := Evaluate(c, s)
	second := Evaluate(c, s)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("re-evaluation diverged (-first +second):\n%s", diff)
	}
}

func TestEvaluateSuggestedReplyMentionsGuidance(t *testing.T) {
	c := conv(t,
		[2]string{"user", "I want a refund. I bought this 45 days ago and the order was $299."},
		[2]string{"bot", "Let me look into your order."},
	)
	d := Evaluate(c, schema.Default())
	if !strings.Contains(d.SuggestedReply, "30-day refund window") {
		t.Errorf("reply missing boilerplate: %q", d.SuggestedReply)
	}
	if !strings.Contains(d.SuggestedReply, "• (R-001)") {
		t.Errorf("reply missing guidance bullet: %q", d.SuggestedReply)
	}
}
