package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"chatwarden/internal/auditor"
	"chatwarden/internal/model"
	"chatwarden/internal/schema"
)

var (
	auditTranscript string
	auditSchema     string
	auditFormat     string
)

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.Flags().StringVar(&auditTranscript, "transcript", "", "Path to transcript JSON (required)")
	auditCmd.Flags().StringVar(&auditSchema, "schema", "", "Path to policy schema (JSON or YAML, default: built-in)")
	auditCmd.Flags().StringVarP(&auditFormat, "format", "f", "text", "Output format (text|json)")
	auditCmd.MarkFlagRequired("transcript")
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit one transcript against the policy schema",
	Long: "Loads a transcript JSON file, evaluates it against the policy schema,\n" +
		"and prints the decision: outcome, confidence, triggered rules, and the\n" +
		"suggested compliant reply when the exchange is flagged.\n\n" +
		"Exit code 0 when the outcome is allow, 1 otherwise.",
	RunE: runAudit,
}

func runAudit(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(auditTranscript)
	if err != nil {
		return fmt.Errorf("read transcript: %w", err)
	}
	conv, err := model.ParseConversation(data)
	if err != nil {
		return err
	}

	sch, err := schema.Load(auditSchema)
	if err != nil {
		return err
	}

	d := auditor.Evaluate(conv, sch)

	switch auditFormat {
	case "json":
		out, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal decision: %w", err)
		}
		fmt.Println(string(out))
	default:
		printDecision(d)
	}

	if d.Outcome != model.OutcomeAllow {
		os.Exit(1)
	}
	return nil
}

func printDecision(d model.Decision) {
	fmt.Printf("Outcome:    %s\n", d.Outcome)
	fmt.Printf("Confidence: %.0f%%\n", d.Confidence*100)
	fmt.Printf("Rules:      %d matched\n", len(d.TriggeredRules))
	if len(d.Rationale) > 0 {
		fmt.Println("Rationale:")
		for _, r := range d.Rationale {
			fmt.Printf("  - %s\n", r)
		}
	}
	if d.SuggestedReply != "" {
		fmt.Println("\nSuggested compliant reply:")
		for _, line := range strings.Split(d.SuggestedReply, "\n") {
			fmt.Printf("  %s\n", line)
		}
	}
}
