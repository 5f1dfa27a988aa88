package collector

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/user/football-insights-go/internal/models"
	"github.com/user/football-insights-go/pkg/table"
)

// Columns each dataset must provide. Other columns are read when present.
var (
	goalColumns     = []string{"date", "scorer", "minute", "own_goal", "penalty"}
	resultColumns   = []string{"date", "home_score", "away_score", "tournament"}
	shootoutColumns = []string{"date", "winner"}
)

func requireColumns(t *table.Table, cols []string) error {
	for _, c := range cols {
		if !t.HasColumn(c) {
			return fmt.Errorf("%w: %s", table.ErrMissingColumn, c)
		}
	}
	return nil
}

// parseInt accepts plain integers and integral floats such as "44.0".
func parseInt(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return int(f), nil
}

// optionalBool treats an absent column as false.
func optionalBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}

// DecodeGoals converts a cleaned goalscorers table into goal events. Rows
// whose values cannot be coerced are skipped and counted.
func DecodeGoals(t *table.Table, layout string) ([]models.GoalEvent, int, error) {
	if err := requireColumns(t, goalColumns); err != nil {
		return nil, 0, err
	}
	rows := t.Rows()
	goals := make([]models.GoalEvent, 0, len(rows))
	skipped := 0
	for _, r := range rows {
		date, err := time.Parse(layout, r.Get("date"))
		if err != nil {
			skipped++
			continue
		}
		minute, err := parseInt(r.Get("minute"))
		if err != nil {
			skipped++
			continue
		}
		own, err := strconv.ParseBool(r.Get("own_goal"))
		if err != nil {
			skipped++
			continue
		}
		pen, err := strconv.ParseBool(r.Get("penalty"))
		if err != nil {
			skipped++
			continue
		}
		goals = append(goals, models.GoalEvent{
			Date:     date,
			HomeTeam: r.Get("home_team"),
			AwayTeam: r.Get("away_team"),
			Team:     r.Get("team"),
			Scorer:   r.Get("scorer"),
			Minute:   minute,
			OwnGoal:  own,
			Penalty:  pen,
		})
	}
	return goals, skipped, nil
}

// DecodeMatches converts a cleaned results table into match results.
func DecodeMatches(t *table.Table, layout string) ([]models.MatchResult, int, error) {
	if err := requireColumns(t, resultColumns); err != nil {
		return nil, 0, err
	}
	rows := t.Rows()
	matches := make([]models.MatchResult, 0, len(rows))
	skipped := 0
	for _, r := range rows {
		date, err := time.Parse(layout, r.Get("date"))
		if err != nil {
			skipped++
			continue
		}
		home, err := parseInt(r.Get("home_score"))
		if err != nil {
			skipped++
			continue
		}
		away, err := parseInt(r.Get("away_score"))
		if err != nil {
			skipped++
			continue
		}
		neutral, err := optionalBool(r.Get("neutral"))
		if err != nil {
			skipped++
			continue
		}
		matches = append(matches, models.MatchResult{
			Date:       date,
			HomeTeam:   r.Get("home_team"),
			AwayTeam:   r.Get("away_team"),
			HomeScore:  home,
			AwayScore:  away,
			Tournament: r.Get("tournament"),
			City:       r.Get("city"),
			Country:    r.Get("country"),
			Neutral:    neutral,
		})
	}
	return matches, skipped, nil
}

// DecodeShootouts converts a cleaned shootouts table into shootout results.
func DecodeShootouts(t *table.Table, layout string) ([]models.ShootoutResult, int, error) {
	if err := requireColumns(t, shootoutColumns); err != nil {
		return nil, 0, err
	}
	rows := t.Rows()
	shootouts := make([]models.ShootoutResult, 0, len(rows))
	skipped := 0
	for _, r := range rows {
		date, err := time.Parse(layout, r.Get("date"))
		if err != nil {
			skipped++
			continue
		}
		shootouts = append(shootouts, models.ShootoutResult{
			Date:         date,
			HomeTeam:     r.Get("home_team"),
			AwayTeam:     r.Get("away_team"),
			Winner:       r.Get("winner"),
			FirstShooter: r.Get("first_shooter"),
		})
	}
	return shootouts, skipped, nil
}
