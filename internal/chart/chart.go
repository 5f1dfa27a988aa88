// Package chart renders the football aggregates with gonum/plot.
package chart

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/user/football-insights-go/internal/models"
)

// Chart names, also used as output file stems.
const (
	NameGoalsByMinute     = "goals_by_minute"
	NameGoalTypes         = "goal_type_proportions"
	NameGoalsPerYear      = "goals_per_year"
	NameShootoutWinners   = "top_shootout_winners"
	NameTopScorers        = "top_scorers"
	NameGoalsByTournament = "goals_by_tournament"
)

// Chart is a built plot together with its canvas size.
type Chart struct {
	Name   string
	Title  string
	Plot   *plot.Plot
	Width  vg.Length
	Height vg.Length
}

// Render draws the chart in the given format (png, svg, pdf, ...).
func (c *Chart) Render(format string) ([]byte, error) {
	if c.Plot == nil {
		return nil, fmt.Errorf("chart %s has no plot", c.Name)
	}
	writer, err := c.Plot.WriterTo(c.Width, c.Height, format)
	if err != nil {
		return nil, fmt.Errorf("failed to create plot writer for %s: %w", c.Name, err)
	}
	var buf bytes.Buffer
	if _, err := writer.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write plot %s to buffer: %w", c.Name, err)
	}
	return buf.Bytes(), nil
}

// Base64PNG renders the chart as a base64 encoded PNG.
func (c *Chart) Base64PNG() (string, error) {
	data, err := c.Render("png")
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Save writes the chart to dir as <name>.<format> and returns the file path.
func (c *Chart) Save(dir, format string) (string, error) {
	data, err := c.Render(format)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create chart directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, c.Name+"."+format)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write chart %s: %w", path, err)
	}
	return path, nil
}

// GenerateMinuteHistogram draws goals per minute from precomputed bins.
func GenerateMinuteHistogram(bins []models.HistogramBin) (*Chart, error) {
	if len(bins) == 0 {
		return nil, fmt.Errorf("no data to plot for minute histogram")
	}
	p := plot.New()
	p.Title.Text = "Goals by Minute"
	p.X.Label.Text = "Minute of goal"
	p.Y.Label.Text = "Goals"

	h := &plotter.Histogram{
		Bins:      make([]plotter.HistogramBin, len(bins)),
		Width:     bins[0].Max - bins[0].Min,
		FillColor: plotutil.Color(0),
		LineStyle: plotter.DefaultLineStyle,
	}
	for i, b := range bins {
		h.Bins[i] = plotter.HistogramBin{Min: b.Min, Max: b.Max, Weight: float64(b.Count)}
	}
	h.LineStyle.Color = color.White
	h.LineStyle.Width = vg.Points(0.5)
	p.Add(h)
	p.Add(plotter.NewGrid())

	return &Chart{Name: NameGoalsByMinute, Title: p.Title.Text, Plot: p, Width: 10 * vg.Inch, Height: 6 * vg.Inch}, nil
}

// pieStart is the angle of the first slice, counter-clockwise from the x axis.
const pieStart = 140 * math.Pi / 180

// GenerateGoalTypePie draws the share of each goal type. Empty categories are
// left out.
func GenerateGoalTypePie(cats []models.Category) (*Chart, error) {
	total := 0.0
	for _, c := range cats {
		if c.Value > 0 {
			total += c.Value
		}
	}
	if total == 0 {
		return nil, fmt.Errorf("no data to plot for goal type pie chart")
	}

	p := plot.New()
	p.Title.Text = "Goal Type Proportions"
	p.HideAxes()
	p.Legend.Top = true

	var (
		pctXYs, nameXYs   plotter.XYs
		pctText, nameText []string
	)
	start := pieStart
	for i, c := range cats {
		if c.Value <= 0 {
			continue
		}
		sweep := 2 * math.Pi * c.Value / total
		wedge, err := plotter.NewPolygon(wedgePoints(start, start+sweep))
		if err != nil {
			return nil, fmt.Errorf("failed to create slice %s: %w", c.Label, err)
		}
		wedge.Color = plotutil.Color(i)
		wedge.LineStyle.Color = color.White
		wedge.LineStyle.Width = vg.Points(1)
		p.Add(wedge)
		p.Legend.Add(c.Label, wedge)

		mid := start + sweep/2
		pctXYs = append(pctXYs, plotter.XY{X: 0.6 * math.Cos(mid), Y: 0.6 * math.Sin(mid)})
		pctText = append(pctText, fmt.Sprintf("%.1f%%", 100*c.Value/total))
		nameXYs = append(nameXYs, plotter.XY{X: 1.15 * math.Cos(mid), Y: 1.15 * math.Sin(mid)})
		nameText = append(nameText, c.Label)
		start += sweep
	}

	for _, l := range []plotter.XYLabels{{XYs: pctXYs, Labels: pctText}, {XYs: nameXYs, Labels: nameText}} {
		labels, err := plotter.NewLabels(l)
		if err != nil {
			return nil, fmt.Errorf("failed to create pie labels: %w", err)
		}
		for i := range labels.TextStyle {
			labels.TextStyle[i].XAlign = draw.XCenter
			labels.TextStyle[i].YAlign = draw.YCenter
		}
		p.Add(labels)
	}

	p.X.Min, p.X.Max = -1.5, 1.5
	p.Y.Min, p.Y.Max = -1.5, 1.5

	return &Chart{Name: NameGoalTypes, Title: p.Title.Text, Plot: p, Width: 8 * vg.Inch, Height: 8 * vg.Inch}, nil
}

// wedgePoints outlines a unit-circle slice between two angles.
func wedgePoints(from, to float64) plotter.XYs {
	steps := int(math.Ceil((to - from) / (math.Pi / 90)))
	if steps < 2 {
		steps = 2
	}
	pts := make(plotter.XYs, 0, steps+2)
	pts = append(pts, plotter.XY{})
	for i := 0; i <= steps; i++ {
		a := from + (to-from)*float64(i)/float64(steps)
		pts = append(pts, plotter.XY{X: math.Cos(a), Y: math.Sin(a)})
	}
	return pts
}

// GenerateGoalsPerYear draws one vertical bar per calendar year.
func GenerateGoalsPerYear(years []models.YearCount) (*Chart, error) {
	if len(years) == 0 {
		return nil, fmt.Errorf("no data to plot for goals per year")
	}
	p := plot.New()
	p.Title.Text = "Goals per Year"
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Goals"

	values := make(plotter.Values, len(years))
	labels := make([]string, len(years))
	for i, y := range years {
		values[i] = float64(y.Count)
		// every label would overlap on a century of data
		if len(years) <= 30 || y.Year%10 == 0 {
			labels[i] = strconv.Itoa(y.Year)
		}
	}

	bars, err := plotter.NewBarChart(values, barWidth(len(years), 12*vg.Inch))
	if err != nil {
		return nil, fmt.Errorf("failed to create goals per year bars: %w", err)
	}
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(labels...)

	return &Chart{Name: NameGoalsPerYear, Title: p.Title.Text, Plot: p, Width: 12 * vg.Inch, Height: 6 * vg.Inch}, nil
}

// GenerateRankedBars draws horizontal bars, the first category at the bottom.
func GenerateRankedBars(name, title, xLabel, yLabel string, cats []models.Category) (*Chart, error) {
	if len(cats) == 0 {
		return nil, fmt.Errorf("no data to plot for: %s", title)
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	values := make(plotter.Values, len(cats))
	labels := make([]string, len(cats))
	for i, c := range cats {
		values[i] = c.Value
		labels[i] = c.Label
	}

	bars, err := plotter.NewBarChart(values, barWidth(len(cats), 6*vg.Inch))
	if err != nil {
		return nil, fmt.Errorf("failed to create bars for %s: %w", title, err)
	}
	bars.Horizontal = true
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalY(labels...)
	p.Add(plotter.NewGrid())

	return &Chart{Name: name, Title: title, Plot: p, Width: 12 * vg.Inch, Height: 6 * vg.Inch}, nil
}

// barWidth spreads n bars over roughly 70% of the given extent.
func barWidth(n int, extent vg.Length) vg.Length {
	w := extent * 0.7 / vg.Length(n+1)
	if hi := vg.Points(24); w > hi {
		return hi
	}
	if lo := vg.Points(1); w < lo {
		return lo
	}
	return w
}

// GenerateAll builds every chart the summary has data for. A chart that
// cannot be built is logged and skipped.
func GenerateAll(s models.Summary, logger *slog.Logger) []*Chart {
	builders := []struct {
		name  string
		build func() (*Chart, error)
	}{
		{NameGoalsByMinute, func() (*Chart, error) { return GenerateMinuteHistogram(s.MinuteHistogram) }},
		{NameGoalTypes, func() (*Chart, error) { return GenerateGoalTypePie(s.GoalTypes) }},
		{NameGoalsPerYear, func() (*Chart, error) { return GenerateGoalsPerYear(s.GoalsByYear) }},
		{NameShootoutWinners, func() (*Chart, error) {
			return GenerateRankedBars(NameShootoutWinners, "Top 10 Teams by Shootout Wins", "Wins", "Team", s.TopShootoutWins)
		}},
		{NameTopScorers, func() (*Chart, error) {
			return GenerateRankedBars(NameTopScorers, "Top 10 Goalscorers", "Goals", "Player", s.TopScorers)
		}},
		{NameGoalsByTournament, func() (*Chart, error) {
			return GenerateRankedBars(NameGoalsByTournament, "Goals by Tournament", "Goals", "Tournament", s.GoalsByTournament)
		}},
	}

	charts := make([]*Chart, 0, len(builders))
	for _, b := range builders {
		c, err := b.build()
		if err != nil {
			logger.Warn("skipping chart", "chart", b.name, "err", err)
			continue
		}
		charts = append(charts, c)
	}
	return charts
}
