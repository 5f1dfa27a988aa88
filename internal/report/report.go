package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/user/football-insights-go/internal/chart"
	"github.com/user/football-insights-go/internal/models"
)

// Input is everything a report can draw from.
type Input struct {
	Data    *models.CollectedData
	Summary models.Summary
	Charts  []*chart.Chart
	// Logger receives warnings while preparing a report. Nil discards them.
	Logger *slog.Logger
}

func (in *Input) logger() *slog.Logger {
	if in.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return in.Logger
}

// ReportAdapter defines the interface for generating different report formats.
type ReportAdapter interface {
	PrepareData(in *Input) error
	Write(outputPath string) error
}

// Formats accepted by NewAdapter.
var Formats = []string{"html", "json", "xlsx"}

// NewAdapter returns the adapter for a report format.
func NewAdapter(format string) (ReportAdapter, error) {
	switch format {
	case "html":
		return &HTMLReportAdapter{}, nil
	case "json":
		return &JSONReportAdapter{}, nil
	case "xlsx":
		return &XLSXReportAdapter{}, nil
	default:
		return nil, fmt.Errorf("invalid report format '%s'. Must be one of %v", format, Formats)
	}
}

func writeFile(outputFilePath string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(outputFilePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory for report file %s: %w", outputFilePath, err)
	}
	return os.WriteFile(outputFilePath, data, 0644)
}

// --- Image Report Adapter ---

// ImageReportAdapter writes every chart as its own image file.
type ImageReportAdapter struct {
	Format string
	charts []*chart.Chart
	// Paths lists the files created by the last Write.
	Paths []string
}

// PrepareData keeps the charts to write.
func (ira *ImageReportAdapter) PrepareData(in *Input) error {
	if len(in.Charts) == 0 {
		return fmt.Errorf("no charts to write")
	}
	ira.charts = in.Charts
	return nil
}

// Write saves the charts into the directory outputDir.
func (ira *ImageReportAdapter) Write(outputDir string) error {
	format := ira.Format
	if format == "" {
		format = "png"
	}
	ira.Paths = ira.Paths[:0]
	for _, c := range ira.charts {
		path, err := c.Save(outputDir, format)
		if err != nil {
			return err
		}
		ira.Paths = append(ira.Paths, path)
	}
	return nil
}
