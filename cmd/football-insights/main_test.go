package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	goalsCSV = `date,home_team,away_team,team,scorer,minute,own_goal,penalty
1916-07-02,Chile,Uruguay,Uruguay,José Piendibene,44,FALSE,FALSE
1916-07-02,Chile,Uruguay,Uruguay,Isabelino Gradín,55,FALSE,FALSE
1916-07-06,Argentina,Chile,Argentina,Alberto Ohaco,2,FALSE,FALSE
1916-07-06,Argentina,Chile,Chile,Luis Alberto Marín,82,TRUE,FALSE
1917-10-03,Uruguay,Chile,Uruguay,Ángel Romano,75,FALSE,TRUE
`
	resultsCSV = `date,home_team,away_team,home_score,away_score,tournament,city,country,neutral
1872-11-30,Scotland,England,0,0,Friendly,Glasgow,Scotland,FALSE
1873-03-08,England,Scotland,4,2,Friendly,London,England,FALSE
1916-07-02,Chile,Uruguay,0,4,Copa América,Buenos Aires,Argentina,TRUE
`
	shootoutsCSV = `date,home_team,away_team,winner
1967-08-22,India,Taiwan,Taiwan
1971-11-14,South Korea,Vietnam Republic,South Korea
`
)

// sourceArgs serves the sample datasets over HTTP and returns the flags
// pointing at them, with a cache under dir.
func sourceArgs(t *testing.T, dir string) []string {
	t.Helper()
	files := map[string]string{"/goals.csv": goalsCSV, "/results.csv": resultsCSV, "/shootouts.csv": shootoutsCSV}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return []string{
		"--goals-url", srv.URL + "/goals.csv",
		"--results-url", srv.URL + "/results.csv",
		"--shootouts-url", srv.URL + "/shootouts.csv",
		"--cache-dir", filepath.Join(dir, "cache"),
		"--log-level", "error",
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func TestCollectCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, append([]string{"collect"}, sourceArgs(t, dir)...)...)
	require.NoError(t, err)

	assert.Contains(t, out, "goals      5 rows read, 5 kept")
	assert.Contains(t, out, "shootouts  2 rows read, 2 kept")
	entries, err := os.ReadDir(filepath.Join(dir, "cache"))
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestChartsCommand(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "charts")
	args := append([]string{"charts", "-o", outDir, "-f", "svg"}, sourceArgs(t, dir)...)
	_, err := run(t, args...)
	require.NoError(t, err)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Len(t, entries, 6)
	for _, e := range entries {
		assert.Equal(t, ".svg", filepath.Ext(e.Name()))
	}
}

func TestChartsCommand_InvalidFormat(t *testing.T) {
	dir := t.TempDir()
	args := append([]string{"charts", "-o", dir, "-f", "gif"}, sourceArgs(t, dir)...)
	_, err := run(t, args...)
	assert.Error(t, err)
}

func TestReportCommand(t *testing.T) {
	for _, format := range []string{"html", "json", "xlsx"} {
		t.Run(format, func(t *testing.T) {
			dir := t.TempDir()
			outFile := filepath.Join(dir, "report."+format)
			args := append([]string{"report", format, "-o", outFile}, sourceArgs(t, dir)...)
			out, err := run(t, args...)
			require.NoError(t, err)
			assert.Contains(t, out, "report generated successfully")

			info, err := os.Stat(outFile)
			require.NoError(t, err)
			assert.Positive(t, info.Size())
		})
	}
}

func TestReportCommand_BadFormat(t *testing.T) {
	_, err := run(t, "report", "pdf")
	assert.Error(t, err)
}

func TestReportCommand_NoData(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "report", "json",
		"-o", filepath.Join(dir, "r.json"),
		"--goals-url", filepath.Join(dir, "missing-goals.csv"),
		"--results-url", filepath.Join(dir, "missing-results.csv"),
		"--shootouts-url", filepath.Join(dir, "missing-shootouts.csv"),
		"--cache-dir", filepath.Join(dir, "cache"),
		"--log-level", "error",
	)
	assert.Error(t, err)
}

func TestClearCacheCommand(t *testing.T) {
	dir := t.TempDir()
	args := sourceArgs(t, dir)
	_, err := run(t, append([]string{"collect"}, args...)...)
	require.NoError(t, err)

	_, err = run(t, append([]string{"clear-cache"}, args...)...)
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(dir, "cache"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
