package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"chatwarden/internal/store"
)

var seedDB string

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().StringVar(&seedDB, "db", defaultDBPath(), "Path to conversation store")
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the conversation store with sample data",
	Long:  "Creates the SQLite store if needed and loads the sample corpus:\na mix of clean threads and threads the default schema flags.\nUsers that already have history are left untouched.",
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	st, err := store.Open(seedDB)
	if err != nil {
		return err
	}
	defer st.Close()

	n, err := st.Seed()
	if err != nil {
		return fmt.Errorf("seed store: %w", err)
	}

	fmt.Printf("Seeded %d user(s) into %s\n", n, seedDB)
	return nil
}

// defaultDBPath returns ~/.chatwarden/conversations.db, falling back to
// the current directory when no home is available.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "conversations.db"
	}
	return filepath.Join(home, ".chatwarden", "conversations.db")
}
