package commands

import (
	"encoding/json"
	"os"
	"time"

	"github.com/SAP-F-2025/survey-assistant/internal/config"
	"github.com/SAP-F-2025/survey-assistant/internal/services"
	"github.com/SAP-F-2025/survey-assistant/internal/utils"
	"github.com/SAP-F-2025/survey-assistant/internal/validator"
	"github.com/SAP-F-2025/survey-assistant/pkg"
	"github.com/spf13/cobra"
)

var autofillReq = &services.AutofillRequest{}

func init() {
	flags := autofillCmd.Flags()
	flags.StringVar(&autofillReq.FormURL, "url", "", "Form to answer.")
	flags.StringVar(&autofillReq.FormName, "form-name", "", "Responses file name. Derived from the URL when empty.")
	flags.IntVarP(&autofillReq.Count, "count", "n", 1, "Number of responses to generate.")
	flags.BoolVar(&autofillReq.Submit, "submit", false, "Also submit every response to the form.")
	flags.DurationVar(&autofillReq.Delay, "delay", 2*time.Second, "Pause between responses.")
	flags.Uint64Var(&autofillReq.Seed, "seed", 0, "Seed for the answer generator. 0 picks one.")
	_ = autofillCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(autofillCmd)
}

var autofillCmd = &cobra.Command{
	Use:   "autofill --url <form url> [-n <count>] [--submit]",
	Short: "Generates synthetic responses for a form and stores them.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		logger := utils.NewSlog(os.Stderr, cfg.Environment, cfg.LogLevel)

		deps, cleanup, err := pkg.BuildServiceDeps(cfg, logger)
		if err != nil {
			return err
		}
		defer cleanup()
		deps.Validator = validator.New()

		report, runErr := services.NewServiceManager(deps).Autofill().Run(cmd.Context(), autofillReq)
		if report != nil {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
		}
		return runErr
	},
}
