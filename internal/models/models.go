package models

import "time"

// Dataset names used in metadata, cache keys and logs.
const (
	DatasetGoals     = "goals"
	DatasetResults   = "results"
	DatasetShootouts = "shootouts"
)

// CollectedData is the main structure holding the three cleaned datasets.
// A nil slice together with Source.Absent means the dataset failed to load.
type CollectedData struct {
	Metadata  Metadata         `json:"metadata"`
	Goals     []GoalEvent      `json:"-"`
	Matches   []MatchResult    `json:"-"`
	Shootouts []ShootoutResult `json:"-"`
}

// Metadata holds information about the collection run and its sources.
type Metadata struct {
	Collector CollectorMetadata `json:"collector"`
	Sources   []SourceMetadata  `json:"sources"`
}

// CollectorMetadata contains details about the execution environment.
type CollectorMetadata struct {
	RunID         string    `json:"run_id"`
	Version       string    `json:"version"`
	DateCollected time.Time `json:"date_collected"`
	Platform      string    `json:"platform"`
	GoVersion     string    `json:"go_version"`
	DateLayout    string    `json:"date_layout"`
}

// SourceMetadata describes how one dataset was loaded.
type SourceMetadata struct {
	Dataset  string `json:"dataset"`
	Location string `json:"location"`
	CacheHit bool   `json:"cache_hit"`
	Absent   bool   `json:"absent"`
	RawRows  int    `json:"raw_rows"`
	KeptRows int    `json:"kept_rows"`
}

// Source returns the metadata for the named dataset, if recorded.
func (m Metadata) Source(dataset string) (SourceMetadata, bool) {
	for _, s := range m.Sources {
		if s.Dataset == dataset {
			return s, true
		}
	}
	return SourceMetadata{}, false
}

// GoalEvent is one row of the goalscorers dataset.
type GoalEvent struct {
	Date     time.Time `json:"date"`
	HomeTeam string    `json:"home_team"`
	AwayTeam string    `json:"away_team"`
	Team     string    `json:"team"`
	Scorer   string    `json:"scorer"`
	Minute   int       `json:"minute"`
	OwnGoal  bool      `json:"own_goal"`
	Penalty  bool      `json:"penalty"`
}

// MatchResult is one row of the results dataset.
type MatchResult struct {
	Date       time.Time `json:"date"`
	HomeTeam   string    `json:"home_team"`
	AwayTeam   string    `json:"away_team"`
	HomeScore  int       `json:"home_score"`
	AwayScore  int       `json:"away_score"`
	Tournament string    `json:"tournament"`
	City       string    `json:"city,omitempty"`
	Country    string    `json:"country,omitempty"`
	Neutral    bool      `json:"neutral"`
}

// TotalGoals is the number of goals scored by both sides.
func (m MatchResult) TotalGoals() int {
	return m.HomeScore + m.AwayScore
}

// ShootoutResult is one row of the shootouts dataset.
type ShootoutResult struct {
	Date         time.Time `json:"date"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	Winner       string    `json:"winner"`
	FirstShooter string    `json:"first_shooter,omitempty"` // not present in older exports
}

// HistogramBin is one equal-width bucket of a histogram. Max is exclusive
// except for the last bin of a histogram.
type HistogramBin struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// Category is a labelled value, used for pie slices and ranked bars.
type Category struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// YearCount is the number of events in a calendar year.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// Summary holds every aggregate that backs a chart.
type Summary struct {
	MinuteHistogram   []HistogramBin `json:"minute_histogram,omitempty"`
	GoalTypes         []Category     `json:"goal_types,omitempty"`
	GoalsByYear       []YearCount    `json:"goals_by_year,omitempty"`
	TopShootoutWins   []Category     `json:"top_shootout_winners,omitempty"`
	TopScorers        []Category     `json:"top_scorers,omitempty"`
	GoalsByTournament []Category     `json:"goals_by_tournament,omitempty"`
}
