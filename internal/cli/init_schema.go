package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"chatwarden/internal/schema"
)

var initSchemaOut string

func init() {
	rootCmd.AddCommand(initSchemaCmd)
	initSchemaCmd.Flags().StringVarP(&initSchemaOut, "output", "o", "", "Write to file instead of stdout")
}

var initSchemaCmd = &cobra.Command{
	Use:   "init-schema",
	Short: "Emit the default policy schema",
	Long:  "Prints the built-in retail-support schema as JSON. Edit the rules,\nthresholds, and protocols to match your own support policy, then pass\nthe file via --schema.",
	RunE:  runInitSchema,
}

func runInitSchema(cmd *cobra.Command, args []string) error {
	out := schema.DefaultJSON()

	if initSchemaOut == "" {
		fmt.Print(out)
		return nil
	}

	if _, err := os.Stat(initSchemaOut); err == nil {
		return fmt.Errorf("refusing to overwrite existing file: %s", initSchemaOut)
	}
	if err := os.WriteFile(initSchemaOut, []byte(out), 0644); err != nil {
		return fmt.Errorf("write schema: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Wrote default schema to %s\n", initSchemaOut)
	return nil
}
