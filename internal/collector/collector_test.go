package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/football-insights-go/internal/config"
	"github.com/user/football-insights-go/internal/models"
	"github.com/user/football-insights-go/pkg/table"
)

const goalsCSV = `date,home_team,away_team,team,scorer,minute,own_goal,penalty
1916-07-02,Chile,Uruguay,Uruguay,José Piendibene,44,FALSE,FALSE
1916-07-02,Chile,Uruguay,Uruguay,Isabelino Gradín,55,FALSE,FALSE
1916-07-06,Argentina,Chile,Argentina,Alberto Ohaco,2,FALSE,FALSE
1916-07-06,Argentina,Chile,Chile,Luis Alberto Marín,NA,FALSE,FALSE
1916-07-06,Argentina,Chile,Argentina,Juan Domingo Brown,70,TRUE,FALSE
1916-13-08,Argentina,Chile,Argentina,Ricardo Naón,75,FALSE,TRUE
`

const resultsCSV = `date,home_team,away_team,home_score,away_score,tournament,city,country,neutral
1872-11-30,Scotland,England,0,0,Friendly,Glasgow,Scotland,FALSE
1873-03-08,England,Scotland,4,2,Friendly,London,England,FALSE
2030-06-01,Spain,Morocco,NA,NA,FIFA World Cup,Madrid,Spain,FALSE
`

const shootoutsCSV = `date,home_team,away_team,winner
1967-08-22,India,Taiwan,Taiwan
1971-11-14,South Korea,Vietnam Republic,South Korea
`

// logLines decodes the JSON records written to buf.
func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		out = append(out, rec)
	}
	return out
}

func newTestCollector(t *testing.T, goals, results, shootouts string) (*DatasetCollector, *bytes.Buffer) {
	t.Helper()
	cfg := config.Default()
	cfg.Sources = config.SourcesConfig{Goals: goals, Results: results, Shootouts: shootouts}
	cfg.DateLayout = "2006-01-02"
	cfg.CacheDir = filepath.Join(t.TempDir(), "cache")
	cfg.Fetch = config.FetchConfig{Timeout: 5 * time.Second, RPS: 100, Burst: 10, MaxBody: 1 << 20}

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewDatasetCollector(cfg, logger), &buf
}

func csvServer(t *testing.T) *httptest.Server {
	t.Helper()
	files := map[string]string{
		"/goalscorers.csv": goalsCSV,
		"/results.csv":     resultsCSV,
		"/shootouts.csv":   shootoutsCSV,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLoadTable_RowCountMatchesSource(t *testing.T) {
	srv := csvServer(t)
	dc, _ := newTestCollector(t, "", "", "")

	tbl := dc.LoadTable(context.Background(), srv.URL+"/goalscorers.csv")
	require.NotNil(t, tbl)
	assert.Equal(t, 6, tbl.Nrow())
}

func TestLoadTable_UnreachableLogsOneError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL + "/goalscorers.csv"
	srv.Close()

	dc, buf := newTestCollector(t, "", "", "")
	tbl := dc.LoadTable(context.Background(), url)

	assert.Nil(t, tbl)
	lines := logLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "ERROR", lines[0]["level"])
	assert.Equal(t, url, lines[0]["source"])
}

func TestLoadTable_BadStatus(t *testing.T) {
	srv := csvServer(t)
	dc, buf := newTestCollector(t, "", "", "")

	assert.Nil(t, dc.LoadTable(context.Background(), srv.URL+"/missing.csv"))
	lines := logLines(t, buf)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0]["err"], "404")
}

func TestLoadTable_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shootouts.csv")
	require.NoError(t, os.WriteFile(path, []byte(shootoutsCSV), 0644))

	dc, _ := newTestCollector(t, "", "", "")
	tbl := dc.LoadTable(context.Background(), path)
	require.NotNil(t, tbl)
	assert.Equal(t, 2, tbl.Nrow())
}

func TestLoadTable_UsesCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(shootoutsCSV))
	}))
	defer srv.Close()

	dc, _ := newTestCollector(t, "", "", "")
	url := srv.URL + "/shootouts.csv"

	require.NotNil(t, dc.LoadTable(context.Background(), url))
	require.NotNil(t, dc.LoadTable(context.Background(), url))
	assert.Equal(t, int32(1), hits.Load())

	dc.Refresh = true
	require.NotNil(t, dc.LoadTable(context.Background(), url))
	assert.Equal(t, int32(2), hits.Load())
}

func TestCollect(t *testing.T) {
	srv := csvServer(t)
	dc, _ := newTestCollector(t,
		srv.URL+"/goalscorers.csv",
		srv.URL+"/results.csv",
		srv.URL+"/shootouts.csv",
	)

	require.NoError(t, dc.Collect(context.Background()))

	// NA minute and the month-13 date are dropped
	require.Len(t, dc.Data.Goals, 4)
	assert.Equal(t, "José Piendibene", dc.Data.Goals[0].Scorer)
	assert.Equal(t, 44, dc.Data.Goals[0].Minute)
	assert.True(t, dc.Data.Goals[3].OwnGoal)
	assert.Equal(t, time.Date(1916, 7, 2, 0, 0, 0, 0, time.UTC), dc.Data.Goals[0].Date)

	// the unplayed fixture has NA scores
	require.Len(t, dc.Data.Matches, 2)
	assert.Equal(t, 6, dc.Data.Matches[1].TotalGoals())

	require.Len(t, dc.Data.Shootouts, 2)
	assert.Equal(t, "Taiwan", dc.Data.Shootouts[0].Winner)

	meta, ok := dc.Data.Metadata.Source(models.DatasetGoals)
	require.True(t, ok)
	assert.Equal(t, 6, meta.RawRows)
	assert.Equal(t, 4, meta.KeptRows)
	assert.False(t, meta.Absent)
	assert.NotEmpty(t, dc.Data.Metadata.Collector.RunID)
}

func TestCollect_AbsentDataset(t *testing.T) {
	srv := csvServer(t)
	dc, buf := newTestCollector(t,
		srv.URL+"/goalscorers.csv",
		srv.URL+"/gone.csv",
		srv.URL+"/shootouts.csv",
	)

	require.NoError(t, dc.Collect(context.Background()))

	assert.Nil(t, dc.Data.Matches)
	assert.NotNil(t, dc.Data.Goals)
	meta, ok := dc.Data.Metadata.Source(models.DatasetResults)
	require.True(t, ok)
	assert.True(t, meta.Absent)

	errorLines := 0
	for _, rec := range logLines(t, buf) {
		if rec["level"] == "ERROR" {
			errorLines++
		}
	}
	assert.Equal(t, 1, errorLines)
}

func TestCollect_NothingLoaded(t *testing.T) {
	dir := t.TempDir()
	dc, _ := newTestCollector(t,
		filepath.Join(dir, "a.csv"),
		filepath.Join(dir, "b.csv"),
		filepath.Join(dir, "c.csv"),
	)
	assert.ErrorIs(t, dc.Collect(context.Background()), ErrNoData)
}

func TestCollect_WrongColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goals.csv")
	require.NoError(t, os.WriteFile(path, []byte(shootoutsCSV), 0644))
	srv := csvServer(t)

	dc, _ := newTestCollector(t, path, srv.URL+"/results.csv", srv.URL+"/shootouts.csv")
	require.NoError(t, dc.Collect(context.Background()))
	assert.Nil(t, dc.Data.Goals)
}

func TestCacheOperations(t *testing.T) {
	cache := Cache{Dir: filepath.Join(t.TempDir(), "cache")}
	src := "https://example.com/results.csv"

	assert.False(t, cache.Exists(src))
	require.NoError(t, cache.Save(src, []byte(resultsCSV)))
	assert.True(t, cache.Exists(src))

	content, err := cache.Load(src)
	require.NoError(t, err)
	assert.Equal(t, resultsCSV, string(content))

	assert.NotEqual(t, cache.Path(src), cache.Path("https://example.com/shootouts.csv"))

	require.NoError(t, cache.Clear(src))
	assert.False(t, cache.Exists(src))
	assert.NoError(t, cache.Clear(src))
}

func TestCache_LoadCorrupt(t *testing.T) {
	cache := Cache{Dir: t.TempDir()}
	src := "https://example.com/goalscorers.csv"
	require.NoError(t, os.WriteFile(cache.Path(src), []byte("not a zip"), 0644))

	_, err := cache.Load(src)
	assert.Error(t, err)
}

func TestDatasetCollector_ClearCache(t *testing.T) {
	srv := csvServer(t)
	dc, _ := newTestCollector(t,
		srv.URL+"/goalscorers.csv",
		srv.URL+"/results.csv",
		srv.URL+"/shootouts.csv",
	)
	require.NoError(t, dc.Collect(context.Background()))
	assert.True(t, dc.cache.Exists(srv.URL+"/results.csv"))

	require.NoError(t, dc.ClearCache())
	assert.False(t, dc.cache.Exists(srv.URL+"/results.csv"))
}

func TestFetcher_BodyLimit(t *testing.T) {
	srv := csvServer(t)
	f := NewFetcher(time.Second, 100, 1, 16)

	_, err := f.Fetch(context.Background(), srv.URL+"/goalscorers.csv")
	assert.Error(t, err)
}

func TestFetcher_CancelledContext(t *testing.T) {
	srv := csvServer(t)
	f := NewFetcher(time.Second, 100, 1, 1<<20)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Fetch(ctx, srv.URL+"/goalscorers.csv")
	assert.Error(t, err)
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://raw.githubusercontent.com/x/results.csv"))
	assert.True(t, IsRemote("HTTP://example.com/a.csv"))
	assert.False(t, IsRemote("data/results.csv"))
}

func TestDecodeGoals_SkipsUncoercibleRows(t *testing.T) {
	tbl, err := table.FromRecords([][]string{
		{"date", "scorer", "minute", "own_goal", "penalty"},
		{"2022-12-18", "Lionel Messi", "23", "FALSE", "TRUE"},
		{"2022-12-18", "Kylian Mbappé", "80.0", "FALSE", "TRUE"},
		{"2022-12-18", "Ángel Di María", "thirty-six", "FALSE", "FALSE"},
		{"2022-12-18", "Nobody", "12", "maybe", "FALSE"},
	})
	require.NoError(t, err)

	goals, skipped, err := DecodeGoals(tbl, "2006-01-02")
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	require.Len(t, goals, 2)
	assert.Equal(t, 80, goals[1].Minute)
	assert.True(t, goals[0].Penalty)
}

func TestDecodeMatches_MissingColumn(t *testing.T) {
	tbl, err := table.FromRecords([][]string{{"date", "home_score"}, {"2022-12-18", "3"}})
	require.NoError(t, err)

	_, _, err = DecodeMatches(tbl, "2006-01-02")
	assert.ErrorIs(t, err, table.ErrMissingColumn)
}
