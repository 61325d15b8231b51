package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/SAP-F-2025/survey-assistant/internal/storage"
	"github.com/spf13/cobra"
)

var exportOut *string

func init() {
	exportOut = exportCmd.Flags().StringP("out", "o", "", "Spreadsheet to write. Defaults to the CSV name with an .xlsx extension.")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <responses.csv> [--out <responses.xlsx>]",
	Short: "Converts a responses CSV file into a spreadsheet.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := storage.LoadTable(args[0])
		if err != nil {
			return err
		}
		data, err := storage.ExportXLSX(table)
		if err != nil {
			return err
		}

		out := *exportOut
		if out == "" {
			out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".xlsx"
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d responses to %s\n", len(table.Records), out)
		return nil
	},
}
