package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/user/football-insights-go/internal/models"
)

//go:embed templates/report.html.tmpl
var reportTemplate string

// HTMLReportAdapter generates a self-contained HTML page with embedded charts.
type HTMLReportAdapter struct {
	reportBuf bytes.Buffer
}

type htmlChart struct {
	Name  string
	Title string
	Image template.URL
}

var titleCaser = cases.Title(language.English)

var funcMap = template.FuncMap{
	"Title": titleCaser.String,
	"FormatDateTime": func(t time.Time) string {
		return t.Format("2006-01-02 15:04:05 MST")
	},
	"FormatNumber": func(v float64) string {
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', 1, 64)
	},
	"FormatRange": func(b models.HistogramBin) string {
		return fmt.Sprintf("%.1f – %.1f", b.Min, b.Max)
	},
	"Humanize": func(s string) string {
		return titleCaser.String(strings.ReplaceAll(s, "_", " "))
	},
}

// PrepareData renders the HTML page, embedding each chart as a PNG data URI.
func (hra *HTMLReportAdapter) PrepareData(in *Input) error {
	tmpl, err := template.New("report").Funcs(funcMap).Parse(reportTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse HTML template: %w", err)
	}

	charts := make([]htmlChart, 0, len(in.Charts))
	for _, c := range in.Charts {
		enc, err := c.Base64PNG()
		if err != nil {
			in.logger().Warn("chart left out of HTML report", "chart", c.Name, "err", err)
			continue
		}
		charts = append(charts, htmlChart{
			Name:  c.Name,
			Title: c.Title,
			Image: template.URL("data:image/png;base64," + enc),
		})
	}

	view := struct {
		Metadata models.Metadata
		Summary  models.Summary
		Charts   []htmlChart
	}{
		Metadata: in.Data.Metadata,
		Summary:  in.Summary,
		Charts:   charts,
	}

	hra.reportBuf.Reset()
	if err := tmpl.Execute(&hra.reportBuf, view); err != nil {
		return fmt.Errorf("failed to execute HTML template: %w", err)
	}
	return nil
}

// Write saves the HTML report data to the specified output file.
func (hra *HTMLReportAdapter) Write(outputFilePath string) error {
	return writeFile(outputFilePath, hra.reportBuf.Bytes())
}
