package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/pipeaudit/internal/adapters/report"
	"github.com/okian/pipeaudit/internal/adapters/tabular"
	"github.com/okian/pipeaudit/internal/app"
	"github.com/okian/pipeaudit/internal/config"
	"github.com/okian/pipeaudit/internal/domain/model"
	"github.com/okian/pipeaudit/pkg/logger"
	"github.com/okian/pipeaudit/pkg/metrics"
)

var runFlags struct {
	configPath  string
	dealsPath   string
	actsPath    string
	htmlPath    string
	jsonOut     bool
	reference   string
	windowStart string
	windowEnd   string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a full audit over CSV exports and print the report",
	Long: `Run reads a deals export (and optionally an activities export), runs
every audit module, and prints a text summary to stdout.

Column mappings, funnel stages, and thresholds come from the YAML config
file (--config or $PIPEAUDIT_CONFIG) with PIPEAUDIT_* environment
overrides.`,
	RunE: runAudit,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runFlags.configPath, "config", "", "Path to YAML config file")
	f.StringVar(&runFlags.dealsPath, "deals", "", "Path to deals CSV export (required)")
	f.StringVar(&runFlags.actsPath, "activities", "", "Path to activities CSV export")
	f.StringVar(&runFlags.htmlPath, "html", "", "Also write an HTML report to this path")
	f.BoolVar(&runFlags.jsonOut, "json", false, "Print the raw report aggregate as JSON instead of text")
	f.StringVar(&runFlags.reference, "reference", "", "Staleness reference time (RFC3339); default is the latest updated-at in the export")
	f.StringVar(&runFlags.windowStart, "window-start", "", "Funnel window: keep deals created at or after this time (RFC3339)")
	f.StringVar(&runFlags.windowEnd, "window-end", "", "Funnel window: keep deals created at or before this time (RFC3339)")
	_ = runCmd.MarkFlagRequired("deals")
}

func runAudit(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if err := logger.Init(); err != nil {
		return err
	}
	cfg, err := config.Load(ctx, runFlags.configPath)
	if err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.Error(err))
	}
	metrics.Initialize(metrics.WithMetricsEnabled(cfg.MetricsEnabled))

	resolved, err := cfg.Resolve()
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	dealRows, err := tabular.ReadFile(runFlags.dealsPath)
	if err != nil {
		return err
	}
	var activityRows []model.RawRecord
	if runFlags.actsPath != "" {
		if activityRows, err = tabular.ReadFile(runFlags.actsPath); err != nil {
			return err
		}
	}

	opts := []app.Option{
		app.WithQualityRequiredFields(cfg.QualityRequiredFields),
		app.WithLeadSourceNormalization(cfg.NormalizeByLeadSource),
	}
	if runFlags.reference != "" {
		ref, err := time.Parse(time.RFC3339, runFlags.reference)
		if err != nil {
			return fmt.Errorf("parse --reference: %w", err)
		}
		opts = append(opts, app.WithReferenceTime(ref))
	}
	start, end, err := parseWindow(runFlags.windowStart, runFlags.windowEnd)
	if err != nil {
		return err
	}
	if !start.IsZero() || !end.IsZero() {
		opts = append(opts, app.WithWindow(start, end))
	}

	rep, err := app.New(resolved, opts...).Run(ctx, dealRows, activityRows)
	if err != nil {
		return err
	}

	if runFlags.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return err
		}
	} else if err := report.WriteText(os.Stdout, rep); err != nil {
		return err
	}

	if runFlags.htmlPath != "" {
		f, err := os.Create(runFlags.htmlPath)
		if err != nil {
			return fmt.Errorf("create html report: %w", err)
		}
		defer f.Close()
		if err := report.WriteHTML(f, rep); err != nil {
			return err
		}
		logger.Get().Info(ctx, "html report written", logger.String("path", runFlags.htmlPath))
	}
	return nil
}

func parseWindow(rawStart, rawEnd string) (start, end time.Time, err error) {
	if rawStart != "" {
		if start, err = time.Parse(time.RFC3339, rawStart); err != nil {
			return start, end, fmt.Errorf("parse --window-start: %w", err)
		}
	}
	if rawEnd != "" {
		if end, err = time.Parse(time.RFC3339, rawEnd); err != nil {
			return start, end, fmt.Errorf("parse --window-end: %w", err)
		}
	}
	return start, end, nil
}
