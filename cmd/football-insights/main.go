package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/football-insights-go/internal/chart"
	"github.com/user/football-insights-go/internal/collector"
	"github.com/user/football-insights-go/internal/config"
	"github.com/user/football-insights-go/internal/logging"
	"github.com/user/football-insights-go/internal/report"
	"github.com/user/football-insights-go/internal/stats"
)

// options holds the flags shared by every command.
type options struct {
	configPath   string
	goalsURL     string
	resultsURL   string
	shootoutsURL string
	cacheDir     string
	logLevel     string
	refresh      bool

	outputPath string
	outputDir  string
	format     string
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "football-insights",
		Short: "Football Insights charts international football results.",
		Long: `A tool that loads the international football goalscorers, results and
penalty-shootout datasets, cleans their dates and renders charts summarising
goals and wins.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", os.Getenv("FOOTBALL_CONFIG"), "Path to a YAML config file")
	pf.StringVar(&opts.goalsURL, "goals-url", "", "Goalscorers CSV (URL or path)")
	pf.StringVar(&opts.resultsURL, "results-url", "", "Match results CSV (URL or path)")
	pf.StringVar(&opts.shootoutsURL, "shootouts-url", "", "Shootouts CSV (URL or path)")
	pf.StringVar(&opts.cacheDir, "cache-dir", "", "Directory for cached downloads")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.BoolVar(&opts.refresh, "refresh", false, "Ignore cached downloads and fetch again")

	collectCmd := &cobra.Command{
		Use:   "collect",
		Short: "Fetches the datasets and caches them.",
		Long:  `Fetches the three CSV sources, caches their content and reports how many rows survive cleaning.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.setup(out)
			if err != nil {
				return err
			}
			col := collector.NewDatasetCollector(cfg, logger)
			col.Refresh = opts.refresh
			if err := col.Collect(cmd.Context()); err != nil {
				return fmt.Errorf("error during data collection: %w", err)
			}
			for _, s := range col.Data.Metadata.Sources {
				if s.Absent {
					fmt.Fprintf(out, "%-10s not loaded (%s)\n", s.Dataset, s.Location)
					continue
				}
				fmt.Fprintf(out, "%-10s %d rows read, %d kept\n", s.Dataset, s.RawRows, s.KeptRows)
			}
			return nil
		},
	}

	chartsCmd := &cobra.Command{
		Use:   "charts",
		Short: "Renders the six charts as image files.",
		Long:  `Collects the datasets (cache first) and writes one image per chart into the output directory.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.setup(out)
			if err != nil {
				return err
			}
			if opts.outputDir != "" {
				cfg.Charts.OutputDir = opts.outputDir
			}
			if opts.format != "" {
				cfg.Charts.Format = opts.format
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			in, err := buildInput(cmd.Context(), cfg, logger, opts.refresh)
			if err != nil {
				return err
			}
			adapter := &report.ImageReportAdapter{Format: cfg.Charts.Format}
			if err := adapter.PrepareData(in); err != nil {
				return fmt.Errorf("failed to prepare charts: %w", err)
			}
			if err := adapter.Write(cfg.Charts.OutputDir); err != nil {
				return fmt.Errorf("failed to write charts to %s: %w", cfg.Charts.OutputDir, err)
			}
			for _, p := range adapter.Paths {
				fmt.Fprintln(out, p)
			}
			return nil
		},
	}
	chartsCmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", "Directory for chart images")
	chartsCmd.Flags().StringVarP(&opts.format, "format", "f", "", "Image format (png, svg, pdf)")

	reportCmd := &cobra.Command{
		Use:   "report [html|json|xlsx]",
		Short: "Generates a report from the collected data.",
		Long:  `Generates a report in the specified format (html, json or xlsx) with the chart aggregates.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reportFormat := args[0]
			adapter, err := report.NewAdapter(reportFormat)
			if err != nil {
				return err
			}
			cfg, logger, err := opts.setup(out)
			if err != nil {
				return err
			}

			outputFilePath := opts.outputPath
			if outputFilePath == "" {
				outputFilePath = fmt.Sprintf("football-insights-report.%s", reportFormat)
			}
			absOutputFilePath, err := filepath.Abs(outputFilePath)
			if err != nil {
				return fmt.Errorf("invalid output file path '%s': %w", outputFilePath, err)
			}

			in, err := buildInput(cmd.Context(), cfg, logger, opts.refresh)
			if err != nil {
				return err
			}
			if err := adapter.PrepareData(in); err != nil {
				return fmt.Errorf("failed to prepare %s report data: %w", reportFormat, err)
			}
			if err := adapter.Write(absOutputFilePath); err != nil {
				return fmt.Errorf("failed to write %s report to %s: %w", reportFormat, absOutputFilePath, err)
			}
			fmt.Fprintf(out, "%s report generated successfully: %s\n", strings.ToUpper(reportFormat), absOutputFilePath)
			return nil
		},
	}
	reportCmd.Flags().StringVarP(&opts.outputPath, "output-file-path", "o", "", "Output file path for the report")
	reportCmd.ValidArgs = report.Formats

	clearCacheCmd := &cobra.Command{
		Use:   "clear-cache",
		Short: "Removes cached downloads for the configured sources.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.setup(out)
			if err != nil {
				return err
			}
			return collector.NewDatasetCollector(cfg, logger).ClearCache()
		},
	}

	rootCmd.AddCommand(collectCmd, chartsCmd, reportCmd, clearCacheCmd)
	return rootCmd
}

// setup loads the configuration, applies flag overrides and builds the logger.
func (o *options) setup(out io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	overrides := []struct {
		value string
		dst   *string
	}{
		{o.goalsURL, &cfg.Sources.Goals},
		{o.resultsURL, &cfg.Sources.Results},
		{o.shootoutsURL, &cfg.Sources.Shootouts},
		{o.cacheDir, &cfg.CacheDir},
		{o.logLevel, &cfg.Logging.Level},
	}
	for _, ov := range overrides {
		if ov.value != "" {
			*ov.dst = ov.value
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	logger := logging.New(out, cfg.Logging.Level)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// buildInput collects the datasets, aggregates them and renders the charts.
func buildInput(ctx context.Context, cfg *config.Config, logger *slog.Logger, refresh bool) (*report.Input, error) {
	col := collector.NewDatasetCollector(cfg, logger)
	col.Refresh = refresh
	if err := col.Collect(ctx); err != nil {
		return nil, fmt.Errorf("failed to load or collect data: %w", err)
	}
	summary := stats.Summarize(&col.Data, cfg.Charts.MinuteBins, cfg.Charts.TopN)
	charts := chart.GenerateAll(summary, logger)
	logger.Info("charts generated", "count", len(charts))
	return &report.Input{Data: &col.Data, Summary: summary, Charts: charts, Logger: logger}, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
