// Package checkpoint persists partial ZIP-sweep progress so a multi-hour
// locator sweep can survive transient failures and resume where it left off.
//
// The checkpoint carries the raw, pre-dedup dealer list. Dedup is re-run
// from scratch over the full accumulated set at every save: the fuzzy name
// signal depends on acceptance order and the set of previously accepted
// records, so recomputing from the full raw list keeps output deterministic
// no matter where checkpoint boundaries fall.
package checkpoint

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gridline-data/locator-cli/internal/model"
)

// Status marks whether a sweep is still running or has covered every ZIP.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Checkpoint is the persisted state of one OEM sweep.
type Checkpoint struct {
	OEM       string    `json:"oem"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TotalZips     int      `json:"total_zips"`
	CompletedZips []string `json:"completed_zips"`
	FailedZips    []string `json:"failed_zips"`

	RawDealerCount int    `json:"raw_dealer_count"`
	DedupedCount   int    `json:"deduped_count"`
	Sequence       int    `json:"sequence"`
	Status         Status `json:"status"`

	// RawDealers is the full accumulated pre-dedup record list, serialized
	// field for field. Round-trip fidelity is a hard contract; the exact
	// file format is not.
	RawDealers []model.Dealer `json:"raw_dealers"`
}

// Remaining returns the ZIPs from the full work list not yet completed.
// Failed ZIPs are included so a resumed sweep retries them.
func (c *Checkpoint) Remaining(all []string) []string {
	done := make(map[string]bool, len(c.CompletedZips))
	for _, z := range c.CompletedZips {
		done[z] = true
	}
	var out []string
	for _, z := range all {
		if !done[z] {
			out = append(out, z)
		}
	}
	return out
}

// Store reads and writes checkpoint files under a single directory,
// one file per OEM.
type Store struct {
	dir string
}

// NewStore creates the checkpoint directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "checkpoint: create dir %s", dir)
	}
	return &Store{dir: dir}, nil
}

// path builds the checkpoint file path for an OEM name.
func (s *Store) path(oem string) string {
	safe := strings.ReplaceAll(strings.ToLower(oem), " ", "_")
	return filepath.Join(s.dir, safe+".checkpoint.json")
}

// Save writes the checkpoint atomically (temp file + rename) and bumps its
// sequence number and update timestamp.
func (s *Store) Save(cp *Checkpoint) error {
	cp.Sequence++
	cp.UpdatedAt = time.Now().UTC()
	cp.RawDealerCount = len(cp.RawDealers)

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "checkpoint: marshal %s", cp.OEM)
	}

	final := s.path(cp.OEM)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return eris.Wrapf(err, "checkpoint: write %s", tmp)
	}
	if err := os.Rename(tmp, final); err != nil {
		return eris.Wrapf(err, "checkpoint: rename %s", final)
	}
	return nil
}

// SaveOrLog saves and, on failure, logs the error instead of propagating it.
// A checkpoint write failure must never abort an in-progress sweep; scraping
// continues with whatever is accumulated in memory.
func (s *Store) SaveOrLog(cp *Checkpoint) {
	if err := s.Save(cp); err != nil {
		zap.L().Error("checkpoint save failed, sweep continues",
			zap.String("component", "checkpoint"),
			zap.String("oem", cp.OEM),
			zap.Error(err),
		)
	}
}

// Load reads the checkpoint for an OEM. found is false if none exists.
func (s *Store) Load(oem string) (*Checkpoint, bool, error) {
	data, err := os.ReadFile(s.path(oem))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrapf(err, "checkpoint: read %s", oem)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, false, eris.Wrapf(err, "checkpoint: unmarshal %s", oem)
	}
	return &cp, true, nil
}

// Delete removes an OEM's checkpoint file, if present.
func (s *Store) Delete(oem string) error {
	err := os.Remove(s.path(oem))
	if err != nil && !os.IsNotExist(err) {
		return eris.Wrapf(err, "checkpoint: delete %s", oem)
	}
	return nil
}
