package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "chatwarden",
	Short: "Conversation-policy auditor for customer-support chatbots",
	Long:  "Evaluates support-chat transcripts against a declarative rule schema,\nscores severity-weighted confidence, and drafts policy-compliant replies\nfor flagged exchanges. Enforcement happens at review time, not after the fact.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
