package auditor

import (
	"fmt"
	"sort"
	"strings"

	"chatwarden/internal/schema"
)

const refundWindowDays = 30

// SynthesizeReply builds a suggested compliant reply from triggered-rule
// guidance: a fixed boilerplate explanation followed by each rule's
// guidance, highest severity first (ties keep matcher order). Advisory
// only — nothing is mutated until a reviewer applies it.
func SynthesizeReply(triggered []schema.Rule) string {
	sorted := make([]schema.Rule, len(triggered))
	copy(sorted, triggered)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Severity > sorted[j].Severity
	})

	lines := make([]string, len(sorted))
	for i, r := range sorted {
		lines[i] = fmt.Sprintf("• (%s) %s", r.ID, r.OnViolationGuidance)
	}

	base := fmt.Sprintf(
		"Thanks for flagging this. I can't process a full refund because it's beyond our %d-day refund window. "+
			"I can offer a free repair/replacement if covered or a 30%% store credit. "+
			"If you prefer, I can bring in a human specialist to review exceptions.",
		refundWindowDays,
	)

	return base + "\n\nGuidance applied:\n" + strings.Join(lines, "\n")
}
