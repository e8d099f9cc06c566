package cli

import (
	"fmt"

	"eco-quiz-engine/internal/engine"
	"github.com/spf13/cobra"
)

// NewValidateCmd prints how a bank would be split into levels.
func NewValidateCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Dedupe a question bank and report the levels it produces",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := readBank(file)
			if err != nil {
				return err
			}
			unique := engine.Dedupe(b.Entries)
			levels, err := engine.BuildLevels(b.Entries)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "bank %q: %d entries, %d unique, %d levels\n", b.ID, len(b.Entries), len(unique), len(levels))
			for _, lvl := range levels {
				fmt.Fprintf(out, "  level %d: %d questions\n", lvl.ID, len(lvl.Questions))
			}
			if dropped := len(unique) - len(levels)*engine.LevelSize; dropped > 0 {
				fmt.Fprintf(out, "  %d trailing questions dropped\n", dropped)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML bank to validate (defaults to the built-in eco bank)")
	return cmd
}
