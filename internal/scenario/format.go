package scenario

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatText renders run results as a pass/fail report: one line per
// scenario file, failure detail per failed case, and a final tally.
func FormatText(results []*RunResult) string {
	var b strings.Builder

	cases, passed, failedFiles := 0, 0, 0
	for _, r := range results {
		cases += r.Total
		passed += r.Passed
		if r.Failed > 0 {
			failedFiles++
		}
	}

	fmt.Fprintf(&b, "Running %d scenario file(s)\n\n", len(results))

	for _, r := range results {
		status := "PASS"
		if r.Failed > 0 {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "  %s  %s (%d/%d)\n", status, r.Name, r.Passed, r.Total)
		if r.Failed == 0 {
			continue
		}
		for _, c := range r.Cases {
			if c.Passed {
				continue
			}
			fmt.Fprintf(&b, "    FAIL  case %d: expected %s, got %s (%d rules)\n",
				c.Index, c.Expected, c.Actual, c.Rules)
			if c.Reason != "" {
				fmt.Fprintf(&b, "          %s\n", c.Reason)
			}
		}
	}

	fmt.Fprintf(&b, "\n%d of %d cases passed.", passed, cases)
	if failedFiles > 0 {
		fmt.Fprintf(&b, " %d of %d scenario files failed.", failedFiles, len(results))
	}
	b.WriteString("\n")

	return b.String()
}

// FormatJSON renders run results as indented JSON.
func FormatJSON(results []*RunResult) (string, error) {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal results: %w", err)
	}
	return string(data), nil
}
