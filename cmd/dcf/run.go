package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"dcf_valuation/pkg/core/engine"
	"dcf_valuation/pkg/io/export"
	"dcf_valuation/pkg/io/loader"
	"dcf_valuation/pkg/io/store"
	"dcf_valuation/pkg/models"
)

var (
	runOutputDir string
	runExcelPath string
	runHTMLPath  string
	runPersist   bool
	runFullDump  bool
)

var runCmd = &cobra.Command{
	Use:   "run <case-file>",
	Short: "Value a case from an assumptions document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		a, err := loader.LoadAssumptions(path)
		if err != nil {
			return err
		}

		result, err := engine.Run(a)
		if err != nil {
			return err
		}

		caseName := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		reportResult(caseName, result)
		return writeOutputs(cmd.Context(), caseName, a, result)
	},
}

func init() {
	runCmd.Flags().StringVarP(&runOutputDir, "out", "o", "", "write CSV schedules to this directory")
	runCmd.Flags().StringVar(&runExcelPath, "xlsx", "", "write an Excel workbook to this path")
	runCmd.Flags().StringVar(&runHTMLPath, "html", "", "write an HTML report to this path")
	runCmd.Flags().BoolVar(&runPersist, "persist", false, "save the run to Postgres (DATABASE_URL)")
	runCmd.Flags().BoolVar(&runFullDump, "full", false, "print statements and cash flows, not just the summary")
	rootCmd.AddCommand(runCmd)
}

func reportResult(caseName string, result *models.ValuationResult) {
	if runFullDump {
		export.RenderStatements(os.Stdout, result)
		export.RenderCashFlows(os.Stdout, result)
	}
	export.RenderSummary(os.Stdout, result)

	if failures := result.AuditFailures(); len(failures) > 0 {
		export.RenderAudit(os.Stdout, result)
		log.Warn().Int("failed", len(failures)).Msg("audit checks failed")
	} else {
		log.Info().
			Str("case", caseName).
			Int("checks", len(result.AuditChecks)).
			Float64("equity_value", result.Bridge.EquityValue).
			Msg("valuation complete")
	}
}

func writeOutputs(ctx context.Context, caseName string, a *models.Assumptions, result *models.ValuationResult) error {
	if runOutputDir != "" {
		if err := export.WriteCSV(runOutputDir, result); err != nil {
			return err
		}
		log.Info().Str("dir", runOutputDir).Msg("wrote CSV schedules")
	}
	if runExcelPath != "" {
		if err := export.WriteWorkbook(runExcelPath, result); err != nil {
			return err
		}
		log.Info().Str("path", runExcelPath).Msg("wrote workbook")
	}
	if runHTMLPath != "" {
		html, err := export.ReportHTML(caseName, result)
		if err != nil {
			return err
		}
		if err := os.WriteFile(runHTMLPath, html, 0o644); err != nil {
			return fmt.Errorf("write html report: %w", err)
		}
		log.Info().Str("path", runHTMLPath).Msg("wrote report")
	}
	if runPersist {
		if err := store.InitDB(ctx); err != nil {
			return err
		}
		defer store.Close()
		runID := uuid.NewString()
		if err := store.NewRunRepo().Save(ctx, runID, caseName, a, result); err != nil {
			return err
		}
		log.Info().Str("run_id", runID).Msg("persisted run")
	}
	return nil
}
