// Package stats computes the aggregates behind each chart. Every function is
// pure: it reads its input slice and returns fresh values.
package stats

import (
	"math"
	"sort"

	"github.com/user/football-insights-go/internal/models"
)

// Goal type labels, in pie order.
const (
	LabelNormalGoals  = "Normal goals"
	LabelOwnGoals     = "Own goals"
	LabelPenaltyGoals = "Penalty goals"
)

// MinuteHistogram buckets goal minutes into n equal-width bins spanning the
// observed range. The last bin includes its upper edge. A single distinct
// minute is widened to [m-0.5, m+0.5].
func MinuteHistogram(goals []models.GoalEvent, n int) []models.HistogramBin {
	if len(goals) == 0 || n <= 0 {
		return nil
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, g := range goals {
		m := float64(g.Minute)
		lo = math.Min(lo, m)
		hi = math.Max(hi, m)
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	width := (hi - lo) / float64(n)

	bins := make([]models.HistogramBin, n)
	for i := range bins {
		bins[i].Min = lo + float64(i)*width
		bins[i].Max = lo + float64(i+1)*width
	}
	bins[n-1].Max = hi

	for _, g := range goals {
		m := float64(g.Minute)
		i := int((m - lo) / width)
		if i >= n {
			i = n - 1
		}
		// float division can land one bin off the computed edges
		if i > 0 && m < bins[i].Min {
			i--
		}
		if i < n-1 && m >= bins[i].Max {
			i++
		}
		bins[i].Count++
	}
	return bins
}

// GoalTypeProportions counts normal goals (neither own goal nor penalty), own
// goals and penalties.
func GoalTypeProportions(goals []models.GoalEvent) []models.Category {
	var normal, own, pen float64
	for _, g := range goals {
		if !g.OwnGoal && !g.Penalty {
			normal++
		}
		if g.OwnGoal {
			own++
		}
		if g.Penalty {
			pen++
		}
	}
	return []models.Category{
		{Label: LabelNormalGoals, Value: normal},
		{Label: LabelOwnGoals, Value: own},
		{Label: LabelPenaltyGoals, Value: pen},
	}
}

// GoalsByYear counts goals per calendar year in ascending year order.
func GoalsByYear(goals []models.GoalEvent) []models.YearCount {
	counts := make(map[int]int)
	for _, g := range goals {
		counts[g.Date.Year()]++
	}
	out := make([]models.YearCount, 0, len(counts))
	for y, c := range counts {
		out = append(out, models.YearCount{Year: y, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// TopShootoutWinners returns the n teams with the most shootout wins in
// ascending order, so the leader ends up at the top of a horizontal bar chart.
func TopShootoutWinners(shootouts []models.ShootoutResult, n int) []models.Category {
	counts := make(map[string]float64)
	for _, s := range shootouts {
		counts[s.Winner]++
	}
	return ascending(largest(counts, n))
}

// TopScorers returns the n players with the most goals in ascending order.
func TopScorers(goals []models.GoalEvent, n int) []models.Category {
	counts := make(map[string]float64)
	for _, g := range goals {
		counts[g.Scorer]++
	}
	return ascending(largest(counts, n))
}

// GoalsByTournament sums home and away goals per tournament and returns the n
// largest totals in descending order.
func GoalsByTournament(matches []models.MatchResult, n int) []models.Category {
	sums := make(map[string]float64)
	for _, m := range matches {
		sums[m.Tournament] += float64(m.TotalGoals())
	}
	return largest(sums, n)
}

// largest returns the n biggest entries, descending by value and then by label.
func largest(values map[string]float64, n int) []models.Category {
	out := make([]models.Category, 0, len(values))
	for k, v := range values {
		out = append(out, models.Category{Label: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Label < out[j].Label
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func ascending(cs []models.Category) []models.Category {
	out := make([]models.Category, len(cs))
	for i, c := range cs {
		out[len(cs)-1-i] = c
	}
	return out
}

// Summarize computes every aggregate for the datasets that are present.
func Summarize(data *models.CollectedData, bins, topN int) models.Summary {
	var s models.Summary
	if data.Goals != nil {
		s.MinuteHistogram = MinuteHistogram(data.Goals, bins)
		s.GoalTypes = GoalTypeProportions(data.Goals)
		s.GoalsByYear = GoalsByYear(data.Goals)
		s.TopScorers = TopScorers(data.Goals, topN)
	}
	if data.Shootouts != nil {
		s.TopShootoutWins = TopShootoutWinners(data.Shootouts, topN)
	}
	if data.Matches != nil {
		s.GoalsByTournament = GoalsByTournament(data.Matches, topN)
	}
	return s
}
