package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"chatwarden/internal/incident"
	"chatwarden/internal/store"
)

var incidentsDB string

func init() {
	rootCmd.AddCommand(incidentsCmd)
	incidentsCmd.Flags().StringVar(&incidentsDB, "db", defaultDBPath(), "Path to conversation store")
}

var incidentsCmd = &cobra.Command{
	Use:   "incidents",
	Short: "List incidents over stored conversations",
	Long:  "Derives one incident per stored conversation using the quick-scan\nprofile and prints a triage table: message count, violation count,\nseverity, and Flagged/Clean status.",
	RunE:  runIncidents,
}

func runIncidents(cmd *cobra.Command, args []string) error {
	st, err := store.Open(incidentsDB)
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.List()
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No conversations stored. Run `chatwarden seed` first.")
		return nil
	}

	fmt.Printf("%-25s %-14s %-10s %-12s %-10s %s\n", "USER", "INCIDENT", "MESSAGES", "VIOLATIONS", "SEVERITY", "STATUS")
	for i, rec := range records {
		inc, ok := incident.Derive(fmt.Sprintf("incident-%03d", i+1), rec.Conversation, incident.QuickScan{})
		if !ok {
			continue
		}
		fmt.Printf("%-25s %-14s %-10d %-12d %-10s %s\n",
			truncate(rec.Email, 25),
			inc.ID,
			inc.Messages,
			inc.ViolationCount,
			inc.Severity,
			inc.Status,
		)
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
