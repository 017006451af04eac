package license

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gridline-data/locator-cli/internal/fetcher"
)

// SyncResult holds the outcome of one state's ingestion.
type SyncResult struct {
	State   string `json:"state"`
	Board   string `json:"board"`
	Parsed  int    `json:"parsed"`
	Loaded  int64  `json:"loaded"`
	Skipped bool   `json:"skipped,omitempty"` // scraper-tier source
}

// Ingestor runs registry sources and loads their output into the store.
type Ingestor struct {
	reg   *Registry
	fetch fetcher.Fetcher
	store *Store
}

// NewIngestor creates an ingestor.
func NewIngestor(reg *Registry, fetch fetcher.Fetcher, store *Store) *Ingestor {
	return &Ingestor{reg: reg, fetch: fetch, store: store}
}

// Run ingests the named states sequentially, or all registered states
// when states is empty. Scraper-tier sources are reported as skipped,
// not errors; a failing state aborts the run.
func (i *Ingestor) Run(ctx context.Context, states []string, tempDir string) ([]SyncResult, error) {
	log := zap.L().With(zap.String("component", "license.ingest"))

	sources, err := i.reg.Select(states)
	if err != nil {
		return nil, err
	}

	var results []SyncResult
	for _, src := range sources {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}

		res := SyncResult{State: src.State(), Board: src.Board()}

		lics, err := src.Fetch(ctx, i.fetch, tempDir)
		if eris.Is(err, ErrScraperSource) {
			log.Info("skipping scraper-tier state",
				zap.String("state", src.State()),
				zap.String("board", src.Board()),
			)
			res.Skipped = true
			results = append(results, res)
			continue
		}
		if err != nil {
			return results, eris.Wrapf(err, "license: ingest %s", src.State())
		}

		res.Parsed = len(lics)
		n, err := i.store.Upsert(ctx, lics)
		if err != nil {
			return results, err
		}
		res.Loaded = n

		log.Info("state ingested",
			zap.String("state", src.State()),
			zap.String("board", src.Board()),
			zap.Int("parsed", res.Parsed),
			zap.Int64("loaded", res.Loaded),
		)
		results = append(results, res)
	}
	return results, nil
}
