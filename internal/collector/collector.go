package collector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/user/football-insights-go/internal/config"
	"github.com/user/football-insights-go/internal/models"
	"github.com/user/football-insights-go/pkg/table"
)

// Version is reported in collection metadata.
const Version = "0.1.0"

// ErrNoData is returned by Collect when none of the datasets could be loaded.
var ErrNoData = errors.New("no dataset could be loaded")

// DatasetCollector loads, cleans and decodes the three football datasets.
type DatasetCollector struct {
	cfg     *config.Config
	fetcher *Fetcher
	cache   Cache
	logger  *slog.Logger

	// Refresh bypasses cached content and refetches every source.
	Refresh bool
	Data    models.CollectedData
}

// NewDatasetCollector creates a collector for the sources in cfg.
func NewDatasetCollector(cfg *config.Config, logger *slog.Logger) *DatasetCollector {
	return &DatasetCollector{
		cfg:     cfg,
		fetcher: NewFetcher(cfg.Fetch.Timeout, cfg.Fetch.RPS, cfg.Fetch.Burst, cfg.Fetch.MaxBody),
		cache:   Cache{Dir: cfg.CacheDir},
		logger:  logger,
	}
}

type source struct {
	dataset  string
	location string
}

func (dc *DatasetCollector) sources() []source {
	return []source{
		{models.DatasetGoals, dc.cfg.Sources.Goals},
		{models.DatasetResults, dc.cfg.Sources.Results},
		{models.DatasetShootouts, dc.cfg.Sources.Shootouts},
	}
}

// LoadTable fetches and parses one source, going through the cache for
// remote sources. On failure it logs a single error record and returns nil.
func (dc *DatasetCollector) LoadTable(ctx context.Context, location string) *table.Table {
	t, _ := dc.loadTable(ctx, location)
	return t
}

func (dc *DatasetCollector) loadTable(ctx context.Context, location string) (*table.Table, bool) {
	remote := IsRemote(location)
	if remote && !dc.Refresh && dc.cache.Exists(location) {
		content, err := dc.cache.Load(location)
		if err == nil {
			var t *table.Table
			if t, err = table.Read(bytes.NewReader(content)); err == nil {
				dc.logger.Debug("loaded from cache", "source", location, "rows", t.Nrow())
				return t, true
			}
		}
		dc.logger.Debug("cache unusable, refetching", "source", location, "err", err)
	}

	content, err := dc.fetcher.Fetch(ctx, location)
	if err != nil {
		dc.logger.Error("failed to load dataset", "source", location, "err", err)
		return nil, false
	}
	t, err := table.Read(bytes.NewReader(content))
	if err != nil {
		dc.logger.Error("failed to load dataset", "source", location, "err", err)
		return nil, false
	}
	if remote {
		if err := dc.cache.Save(location, content); err != nil {
			dc.logger.Debug("could not cache dataset", "source", location, "err", err)
		}
	}
	return t, false
}

// Collect loads the three datasets concurrently, cleans their date columns
// and decodes them into dc.Data. A dataset that fails to load is recorded as
// absent; Collect only fails when every dataset is absent or ctx ends.
func (dc *DatasetCollector) Collect(ctx context.Context) error {
	srcs := dc.sources()
	tables := make([]*table.Table, len(srcs))
	hits := make([]bool, len(srcs))

	var g errgroup.Group
	for i, s := range srcs {
		g.Go(func() error {
			tables[i], hits[i] = dc.loadTable(ctx, s.location)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}

	dc.Data = models.CollectedData{Metadata: dc.metadata()}
	present := 0
	for i, s := range srcs {
		meta := models.SourceMetadata{Dataset: s.dataset, Location: s.location, CacheHit: hits[i], Absent: true}
		if tables[i] != nil {
			meta.RawRows = tables[i].Nrow()
			kept, err := dc.decode(s.dataset, tables[i])
			if err != nil {
				dc.logger.Error("failed to prepare dataset", "dataset", s.dataset, "source", s.location, "err", err)
			} else {
				meta.Absent = false
				meta.KeptRows = kept
				present++
			}
		}
		dc.Data.Metadata.Sources = append(dc.Data.Metadata.Sources, meta)
	}

	if present == 0 {
		return ErrNoData
	}
	return nil
}

// decode cleans t and stores the typed rows for dataset, returning how many
// rows were kept.
func (dc *DatasetCollector) decode(dataset string, t *table.Table) (int, error) {
	layout := dc.cfg.DateLayout
	cleaned, err := t.Clean(layout, "date")
	if err != nil {
		return 0, err
	}
	var kept, skipped int
	switch dataset {
	case models.DatasetGoals:
		dc.Data.Goals, skipped, err = DecodeGoals(cleaned, layout)
		kept = len(dc.Data.Goals)
	case models.DatasetResults:
		dc.Data.Matches, skipped, err = DecodeMatches(cleaned, layout)
		kept = len(dc.Data.Matches)
	case models.DatasetShootouts:
		dc.Data.Shootouts, skipped, err = DecodeShootouts(cleaned, layout)
		kept = len(dc.Data.Shootouts)
	default:
		return 0, fmt.Errorf("unknown dataset %q", dataset)
	}
	if err != nil {
		return 0, err
	}
	dc.logger.Debug("dataset cleaned", "dataset", dataset,
		"raw_rows", t.Nrow(), "dropped", t.Nrow()-cleaned.Nrow()+skipped)
	return kept, nil
}

func (dc *DatasetCollector) metadata() models.Metadata {
	return models.Metadata{
		Collector: models.CollectorMetadata{
			RunID:         uuid.NewString(),
			Version:       Version,
			DateCollected: time.Now().UTC(),
			Platform:      fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
			GoVersion:     runtime.Version(),
			DateLayout:    dc.cfg.DateLayout,
		},
	}
}

// ClearCache removes cached content for every configured source.
func (dc *DatasetCollector) ClearCache() error {
	for _, s := range dc.sources() {
		if err := dc.cache.Clear(s.location); err != nil {
			return err
		}
	}
	return nil
}
