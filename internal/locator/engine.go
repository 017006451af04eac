package locator

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gridline-data/locator-cli/internal/capability"
	"github.com/gridline-data/locator-cli/internal/checkpoint"
	"github.com/gridline-data/locator-cli/internal/dedup"
	"github.com/gridline-data/locator-cli/internal/model"
	"github.com/gridline-data/locator-cli/internal/normalize"
)

// SweepOpts configures a ZIP sweep run.
type SweepOpts struct {
	Vendors []string // restrict to specific vendor names; empty = all
	Zips    []string // search ZIPs, in sweep order
	Resume  bool     // reload checkpoints and skip completed ZIPs

	// CheckpointEvery is how many newly completed ZIPs trigger a checkpoint
	// save. Defaults to 25.
	CheckpointEvery int
	// VendorParallelism bounds concurrent vendor sweeps. Defaults to 3.
	// Within one vendor, ZIPs are always sequential.
	VendorParallelism int
	// FuzzyThreshold is the minimum name similarity at which two same-state
	// dealers are treated as duplicates. Defaults to dedup.FuzzyThreshold.
	FuzzyThreshold float64
}

// SweepResult is the outcome of one vendor's sweep.
type SweepResult struct {
	OEM        string
	Raw        []model.Dealer
	Dedup      dedup.Result
	FailedZips []string
	Completed  int
}

// Engine drives ZIP sweeps across registered vendors.
type Engine struct {
	reg   *Registry
	fetch Fetcher
	ckpts *checkpoint.Store
}

// NewEngine creates a sweep engine.
func NewEngine(reg *Registry, fetch Fetcher, ckpts *checkpoint.Store) *Engine {
	return &Engine{reg: reg, fetch: fetch, ckpts: ckpts}
}

// Run sweeps the selected vendors in parallel, ZIP by ZIP within each.
// A vendor that fails (unsupported mode, cancelled context) does not abort
// the others; its partial result is still returned.
func (e *Engine) Run(ctx context.Context, opts SweepOpts) ([]SweepResult, error) {
	log := zap.L().With(zap.String("component", "locator.engine"))

	if opts.CheckpointEvery <= 0 {
		opts.CheckpointEvery = 25
	}
	if opts.VendorParallelism <= 0 {
		opts.VendorParallelism = 3
	}
	if opts.FuzzyThreshold <= 0 {
		opts.FuzzyThreshold = dedup.FuzzyThreshold
	}

	vendors, err := e.reg.Select(opts.Vendors)
	if err != nil {
		return nil, err
	}
	if len(vendors) == 0 {
		log.Info("no vendors selected")
		return nil, nil
	}
	log.Info("sweep starting",
		zap.Int("vendors", len(vendors)),
		zap.Int("zips", len(opts.Zips)),
	)

	var mu sync.Mutex
	var results []SweepResult

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.VendorParallelism)

	for _, v := range vendors {
		g.Go(func() error {
			res, sweepErr := e.sweepVendor(gctx, v, opts)
			if sweepErr != nil {
				log.Error("vendor sweep failed",
					zap.String("vendor", v.Name),
					zap.Error(sweepErr),
				)
			}
			if res != nil {
				mu.Lock()
				results = append(results, *res)
				mu.Unlock()
			}
			return nil // individual vendor failures never abort the run
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// sweepVendor runs one vendor over the ZIP list with checkpointing.
func (e *Engine) sweepVendor(ctx context.Context, v Vendor, opts SweepOpts) (*SweepResult, error) {
	log := zap.L().With(
		zap.String("component", "locator.engine"),
		zap.String("vendor", v.Name),
	)

	cp := &checkpoint.Checkpoint{
		OEM:       v.Name,
		StartedAt: time.Now().UTC(),
		TotalZips: len(opts.Zips),
		Status:    checkpoint.StatusInProgress,
	}
	zips := opts.Zips

	if opts.Resume {
		loaded, found, err := e.ckpts.Load(v.Name)
		if err != nil {
			return nil, err
		}
		if found {
			cp = loaded
			cp.TotalZips = len(opts.Zips)
			cp.Status = checkpoint.StatusInProgress
			zips = cp.Remaining(opts.Zips)
			log.Info("resuming from checkpoint",
				zap.Int("sequence", cp.Sequence),
				zap.Int("already_completed", len(cp.CompletedZips)),
				zap.Int("remaining", len(zips)),
			)
		}
	}

	sinceSave := 0
	for _, zip := range zips {
		if ctx.Err() != nil {
			// Cancelled: leave the checkpoint as-is and surface what we have.
			e.ckpts.SaveOrLog(cp)
			return e.finishResult(cp, opts.FuzzyThreshold), ctx.Err()
		}

		dealers, err := e.scrapeZip(ctx, v, zip)
		if errors.Is(err, ErrModeUnsupported) {
			// Configuration gap, not a scrape failure: the whole vendor
			// cannot run in this mode.
			e.ckpts.SaveOrLog(cp)
			return e.finishResult(cp, opts.FuzzyThreshold), err
		}
		if err != nil {
			log.Warn("zip scrape failed, continuing sweep",
				zap.String("zip", zip),
				zap.Error(err),
			)
			cp.FailedZips = appendUnique(cp.FailedZips, zip)
			continue
		}

		cp.FailedZips = removeZip(cp.FailedZips, zip)
		cp.CompletedZips = appendUnique(cp.CompletedZips, zip)
		cp.RawDealers = append(cp.RawDealers, dealers...)

		sinceSave++
		if sinceSave >= opts.CheckpointEvery {
			sinceSave = 0
			// Dedup re-runs over the full raw set at every save so output
			// stays deterministic regardless of checkpoint boundaries.
			cp.DedupedCount = len(dedup.RunWithThreshold(cp.RawDealers, opts.FuzzyThreshold).Dealers)
			e.ckpts.SaveOrLog(cp)
		}
	}

	if len(cp.CompletedZips) >= cp.TotalZips {
		cp.Status = checkpoint.StatusCompleted
	}

	res := e.finishResult(cp, opts.FuzzyThreshold)
	cp.DedupedCount = len(res.Dedup.Dealers)
	e.ckpts.SaveOrLog(cp)

	res.Dedup.LogSummary(v.Name)
	log.Info("vendor sweep complete",
		zap.Int("raw", len(cp.RawDealers)),
		zap.Int("unique", len(res.Dedup.Dealers)),
		zap.Int("failed_zips", len(cp.FailedZips)),
	)
	return res, nil
}

// scrapeZip fetches and parses one (vendor, ZIP) locator page, finishing
// each record with provenance and capability flags.
func (e *Engine) scrapeZip(ctx context.Context, v Vendor, zip string) ([]model.Dealer, error) {
	body, err := e.fetch.Fetch(ctx, v, zip)
	if err != nil {
		return nil, err
	}
	dealers, err := v.Parse(body, zip)
	if err != nil {
		return nil, err
	}
	for i := range dealers {
		finishDealer(&dealers[i], v.Name, zip)
	}
	return dealers, nil
}

// finishDealer stamps provenance and derives domain and capability flags.
// Capabilities are recomputed, never carried over, so re-parsing a
// checkpointed record always agrees with a fresh scrape.
func finishDealer(d *model.Dealer, oem, zip string) {
	d.OEMSource = oem
	d.ScrapedFromZip = zip
	if d.Domain == "" {
		if dom, ok := normalize.Domain(d.Website); ok {
			d.Domain = dom
		}
	}
	d.Capabilities = capability.Detect(oem, d.Name, d.Tier, d.Certifications)
}

func (e *Engine) finishResult(cp *checkpoint.Checkpoint, threshold float64) *SweepResult {
	return &SweepResult{
		OEM:        cp.OEM,
		Raw:        cp.RawDealers,
		Dedup:      dedup.RunWithThreshold(cp.RawDealers, threshold),
		FailedZips: cp.FailedZips,
		Completed:  len(cp.CompletedZips),
	}
}

func appendUnique(list []string, s string) []string {
	for _, x := range list {
		if x == s {
			return list
		}
	}
	return append(list, s)
}

func removeZip(list []string, s string) []string {
	out := list[:0]
	for _, x := range list {
		if x != s {
			out = append(out, x)
		}
	}
	return out
}
