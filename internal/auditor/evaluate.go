package auditor

import (
	"fmt"
	"strings"

	"chatwarden/internal/model"
	"chatwarden/internal/schema"
)

// insufficientContext is the rationale emitted when the transcript lacks
// a user or bot message. Not an error: the auditor recovers with allow/0.
const insufficientContext = "Insufficient context to audit"

// Evaluate audits a conversation against a policy schema.
//
// Evaluation order (must not be changed):
//  1. Context check — no user or bot message → allow, confidence 0
//  2. Feature extraction — days mentioned, order value (last user message)
//  3. Rule matching — schema order, keyword and day-threshold predicates
//  4. Aggregation — severity-weighted confidence, action-set precedence
//  5. Reply synthesis — only when the outcome is not allow
//
// The result is a pure function of its two inputs: re-evaluating the same
// pair yields an identical Decision.
func Evaluate(conv model.Conversation, s *schema.PolicySchema) model.Decision {
	user, okUser := conv.LastUser()
	bot, okBot := conv.LastBot()
	if !okUser || !okBot {
		return model.Decision{
			Outcome:        model.OutcomeAllow,
			Confidence:     0,
			TriggeredRules: []schema.Rule{},
			Rationale:      []string{insufficientContext},
		}
	}

	userText := strings.ToLower(user.Text)
	botText := strings.ToLower(bot.Text)
	days, _ := DaysSinceMention(user.Text)
	orderValue, _ := OrderValue(user.Text)

	triggered := matchRules(s.Rules, userText, botText, days)

	d := model.Decision{
		Outcome:        classify(triggered),
		Confidence:     confidence(triggered, s, orderValue),
		TriggeredRules: triggered,
		Rationale:      rationale(triggered),
	}

	if d.Outcome != model.OutcomeAllow {
		d.SuggestedReply = SynthesizeReply(triggered)
	}

	return d
}

// matchRules evaluates each rule's predicate in schema order. The
// triggered list preserves schema order; severity ordering is applied
// later by the reply synthesizer.
func matchRules(rules []schema.Rule, userText, botText string, days int) []schema.Rule {
	triggered := []schema.Rule{}
	for _, rule := range rules {
		hit := false
		if len(rule.Match.UserIncludes) > 0 {
			hit = hit || containsAny(userText, rule.Match.UserIncludes)
		}
		if len(rule.Match.BotIncludes) > 0 {
			hit = hit || containsAny(botText, rule.Match.BotIncludes)
		}
		if rule.Match.DaysSinceOrderOver != nil {
			if float64(days) > *rule.Match.DaysSinceOrderOver {
				hit = true
			}
		}
		if hit {
			triggered = append(triggered, rule)
		}
	}
	return triggered
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// confidence is severitySum/severityCeiling plus a flat 0.1 bonus for
// order values over $100, clamped to [0, 1]. The bonus is additive and
// independent of which rule matched.
func confidence(triggered []schema.Rule, s *schema.PolicySchema, orderValue float64) float64 {
	sum := 0.0
	for _, r := range triggered {
		sum += r.Severity
	}
	c := sum / s.SeverityCeiling()
	if orderValue > 100 {
		c += 0.1
	}
	if c > 1 {
		c = 1
	}
	if c < 0 {
		c = 0
	}
	return c
}

// classify applies action-set precedence over the triggered rules in a
// fixed priority order regardless of severity: stop dominates modify,
// which dominates a generic interject.
func classify(triggered []schema.Rule) model.Outcome {
	if len(triggered) == 0 {
		return model.OutcomeAllow
	}
	hasStop, hasModify := false, false
	for _, r := range triggered {
		switch r.Action {
		case schema.ActionStop:
			hasStop = true
		case schema.ActionModify:
			hasModify = true
		}
	}
	switch {
	case hasStop:
		return model.OutcomeStop
	case hasModify:
		return model.OutcomeInterjectModify
	default:
		return model.OutcomeInterjectAskUser
	}
}

func rationale(triggered []schema.Rule) []string {
	out := make([]string, len(triggered))
	for i, r := range triggered {
		out[i] = fmt.Sprintf("%s: %s (severity %g)", r.ID, r.Title, r.Severity)
	}
	return out
}
