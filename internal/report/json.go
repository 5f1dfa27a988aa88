package report

import (
	"encoding/json"
	"fmt"

	"github.com/user/football-insights-go/internal/models"
)

// JSONReportAdapter generates reports in JSON format.
type JSONReportAdapter struct {
	reportData []byte
}

type jsonReport struct {
	Metadata models.Metadata `json:"metadata"`
	Summary  models.Summary  `json:"summary"`
}

// PrepareData marshals the metadata and aggregates into indented JSON.
func (jra *JSONReportAdapter) PrepareData(in *Input) error {
	data, err := json.MarshalIndent(jsonReport{Metadata: in.Data.Metadata, Summary: in.Summary}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data to JSON: %w", err)
	}
	jra.reportData = data
	return nil
}

// Write saves the JSON report data to the specified output file.
func (jra *JSONReportAdapter) Write(outputFilePath string) error {
	return writeFile(outputFilePath, jra.reportData)
}
