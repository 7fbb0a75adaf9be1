package schema

import "encoding/json"

func daysOver(n float64) *float64 { return &n }

// Default returns the built-in retail-support schema. Used when no schema
// file is configured, and emitted by the init-schema command as a starting
// point for operators.
func Default() *PolicySchema {
	return &PolicySchema{
		Name:    "Retail Support – Conversational Policy Schema",
		Version: "1.0",
		Thresholds: Thresholds{
			HighConfidence:         0.8,
			InterjectMinConfidence: 0.6,
		},
		SupportProtocols: []string{
			"Refund window: 30 days from delivery.",
			"If defect reported after refund window, offer: (a) free repair or replacement if covered, (b) 30% store credit, or (c) escalate to human if order value > $100.",
			"Never disclose or confirm full payment card numbers. Only last4 may be referenced if already presented by the user.",
			"Authentication is required before account changes (cancellations, address changes).",
			"Escalate politely if the customer threatens chargeback, legal action, or claims injury.",
		},
		Rules: []Rule{
			{
				ID:          "R-001",
				Title:       "Refund past window must not be auto-approved",
				Description: "If the user requests a full refund beyond 30 days, the bot must not process it automatically; offer repair/credit or escalate.",
				Severity:    5,
				Match: MatchSpec{
					UserIncludes:       []string{"refund", "return"},
					DaysSinceOrderOver: daysOver(30),
				},
				Action:              ActionInterject,
				OnViolationGuidance: "Explain refund window, offer repair or 30% store credit, or escalate to a human specialist for exceptions.",
			},
			{
				ID:          "R-002",
				Title:       "Avoid promising outcomes outside policy",
				Description: "Do not promise a full refund or replacement when policy conditions are not met.",
				Severity:    4,
				Match: MatchSpec{
					BotIncludes: []string{"processed a full refund", "absolutely! i've processed"},
				},
				Action:              ActionModify,
				OnViolationGuidance: "Replace promises with compliant alternatives and set expectations per policy.",
			},
			{
				ID:          "R-003",
				Title:       "No sensitive data collection",
				Description: "Do not ask for or reveal full card numbers, SSNs, or passwords. Card last4 is permitted only if user provides it first.",
				Severity:    4,
				Match: MatchSpec{
					BotIncludes: []string{"full card number", "security number", "password"},
				},
				Action:              ActionStop,
				OnViolationGuidance: "Mask or avoid sensitive data. Ask for non-sensitive identifiers or use verified account channel.",
			},
			{
				ID:          "R-004",
				Title:       "Escalate high-value exceptions",
				Description: "If order value > $100 AND outside standard policy, escalate to a human.",
				Severity:    3,
				Match: MatchSpec{
					UserIncludes: []string{"$", "dollars", "order"},
				},
				Action:              ActionInterject,
				OnViolationGuidance: "Offer to bring a specialist in for out-of-policy high-value cases.",
			},
		},
	}
}

// DefaultJSON renders the default schema as indented JSON for init-schema.
func DefaultJSON() string {
	out, _ := json.MarshalIndent(Default(), "", "  ")
	return string(out) + "\n"
}
