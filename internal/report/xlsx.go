package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/user/football-insights-go/internal/models"
)

// XLSXReportAdapter generates a workbook with one sheet per aggregate and a
// sheet holding the chart images.
type XLSXReportAdapter struct {
	reportData []byte
}

const (
	sheetSources     = "Sources"
	sheetMinutes     = "Goals by Minute"
	sheetGoalTypes   = "Goal Types"
	sheetYears       = "Goals per Year"
	sheetShootouts   = "Shootout Winners"
	sheetScorers     = "Top Scorers"
	sheetTournaments = "Goals by Tournament"
	sheetCharts      = "Charts"
)

// PrepareData builds the workbook in memory.
func (xra *XLSXReportAdapter) PrepareData(in *Input) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSources); err != nil {
		return fmt.Errorf("failed to rename default sheet: %w", err)
	}

	sources := make([][]any, 0, len(in.Data.Metadata.Sources))
	for _, s := range in.Data.Metadata.Sources {
		sources = append(sources, []any{s.Dataset, s.Location, !s.Absent, s.RawRows, s.KeptRows, s.CacheHit})
	}
	if err := writeSheet(f, sheetSources, []string{"Dataset", "Location", "Loaded", "Rows read", "Rows kept", "Cache hit"}, sources); err != nil {
		return err
	}

	s := in.Summary
	if len(s.MinuteHistogram) > 0 {
		rows := make([][]any, len(s.MinuteHistogram))
		for i, b := range s.MinuteHistogram {
			rows[i] = []any{b.Min, b.Max, b.Count}
		}
		if err := writeSheet(f, sheetMinutes, []string{"From minute", "To minute", "Goals"}, rows); err != nil {
			return err
		}
	}
	if len(s.GoalsByYear) > 0 {
		rows := make([][]any, len(s.GoalsByYear))
		for i, y := range s.GoalsByYear {
			rows[i] = []any{y.Year, y.Count}
		}
		if err := writeSheet(f, sheetYears, []string{"Year", "Goals"}, rows); err != nil {
			return err
		}
	}
	for _, cs := range []struct {
		sheet  string
		header []string
		rows   [][]any
	}{
		{sheetGoalTypes, []string{"Type", "Goals"}, categoryRows(s.GoalTypes)},
		{sheetShootouts, []string{"Team", "Wins"}, categoryRows(s.TopShootoutWins)},
		{sheetScorers, []string{"Player", "Goals"}, categoryRows(s.TopScorers)},
		{sheetTournaments, []string{"Tournament", "Goals"}, categoryRows(s.GoalsByTournament)},
	} {
		if len(cs.rows) == 0 {
			continue
		}
		if err := writeSheet(f, cs.sheet, cs.header, cs.rows); err != nil {
			return err
		}
	}

	if len(in.Charts) > 0 {
		if _, err := f.NewSheet(sheetCharts); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheetCharts, err)
		}
		// charts are stacked one below the other, 36 rows apart
		for i, c := range in.Charts {
			img, err := c.Render("png")
			if err != nil {
				return err
			}
			cell, err := excelize.CoordinatesToCellName(1, 1+i*36)
			if err != nil {
				return fmt.Errorf("failed to place chart %s: %w", c.Name, err)
			}
			pic := &excelize.Picture{
				Extension: ".png",
				File:      img,
				Format:    &excelize.GraphicOptions{ScaleX: 0.6, ScaleY: 0.6, AltText: c.Title},
			}
			if err := f.AddPictureFromBytes(sheetCharts, cell, pic); err != nil {
				return fmt.Errorf("failed to add chart %s to workbook: %w", c.Name, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("failed to serialise workbook: %w", err)
	}
	xra.reportData = buf.Bytes()
	return nil
}

// Write saves the workbook to the specified output file.
func (xra *XLSXReportAdapter) Write(outputFilePath string) error {
	return writeFile(outputFilePath, xra.reportData)
}

func categoryRows(cs []models.Category) [][]any {
	rows := make([][]any, len(cs))
	for i, c := range cs {
		rows[i] = []any{c.Label, c.Value}
	}
	return rows
}

// writeSheet creates sheet (unless it exists) and fills it with a header row
// followed by rows.
func writeSheet(f *excelize.File, sheet string, header []string, rows [][]any) error {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return fmt.Errorf("failed to look up sheet %s: %w", sheet, err)
	}
	if idx < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
	}
	for i, h := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("failed to address header %q in %s: %w", h, sheet, err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return fmt.Errorf("failed to address row %d of %s: %w", r+1, sheet, err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}
