package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/SAP-F-2025/survey-assistant/internal/source"
	"github.com/SAP-F-2025/survey-assistant/internal/validator"
	"github.com/spf13/cobra"
)

var questionsJSON *bool

func init() {
	questionsJSON = questionsCmd.Flags().Bool("json", false, "Print the parsed questions as JSON.")
	rootCmd.AddCommand(questionsCmd)
}

var questionsCmd = &cobra.Command{
	Use:   "questions <file> [--json]",
	Short: "Parses and validates a question file in the extractor JSON or line format.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		qs, err := source.ParseQuestions(data)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", args[0], err)
		}
		if err := validator.New().Question().ValidateSet(qs); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if *questionsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(qs)
		}
		for i, q := range qs {
			line := fmt.Sprintf("%d. %s (%s)", i+1, q.Text, q.Type.Label())
			if len(q.Options) > 0 {
				line += ": " + strings.Join(q.Options, " | ")
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}
