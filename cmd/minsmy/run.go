package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MrNicolass/Minsmy-AI-Sales/internal/app"
	"github.com/MrNicolass/Minsmy-AI-Sales/internal/common"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate the sales report",
	Long:  `Loads the sales CSV, computes metrics, fetches the economic context, renders charts, requests the narrative and writes the report files.`,
	RunE:  runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	common.PrintBanner(config, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(config, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer application.Close()

	result, err := application.Run(ctx)
	if err != nil {
		return err
	}

	for _, w := range result.Warnings {
		logger.Warn().Str("run_id", result.RunID).Msg(w)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nRun %s: %d records, %d charts\n", result.RunID, result.Records, len(result.Charts.Order))
	if result.Narrative.Degraded {
		fmt.Fprintf(cmd.OutOrStdout(), "Narrative unavailable (%s); the report contains the data summary only\n", result.Narrative.Cause)
	}
	for _, out := range result.Outputs {
		fmt.Fprintf(cmd.OutOrStdout(), "  %-8s %s\n", out.Format, out.Path)
	}
	return nil
}
