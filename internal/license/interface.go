// Package license ingests state contractor-license registries into the
// licensee store. Each state is a Source: a descriptor for where the
// registry export lives, how it is acquired, and how its rows map onto
// the standardized licensee record.
package license

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/gridline-data/locator-cli/internal/fetcher"
	"github.com/gridline-data/locator-cli/internal/model"
)

// ErrScraperSource marks states whose registry has no bulk or API
// acquisition path. Their licensees arrive through a separate browser
// pipeline and cannot be fetched here.
var ErrScraperSource = eris.New("license: source requires browser scraping")

// Source defines the interface each state registry must implement.
type Source interface {
	// State returns the 2-letter state code.
	State() string

	// Board returns the issuing board's name (e.g., "CSLB").
	Board() string

	// Tier returns how this state's data is acquired.
	Tier() model.SourceTier

	// Fetch downloads the registry export and parses it into standardized
	// licensees. tempDir is a working directory for temporary files.
	// Scraper-tier sources return ErrScraperSource.
	Fetch(ctx context.Context, f fetcher.Fetcher, tempDir string) ([]model.Licensee, error)
}

// Registry maps state codes to their registry sources.
type Registry struct {
	sources map[string]Source
	order   []string // insertion order for deterministic iteration
}

// NewRegistry creates a registry populated with every wired state.
func NewRegistry() *Registry {
	r := &Registry{sources: make(map[string]Source)}

	// Bulk-download states.
	r.Register(&California{})
	r.Register(&Texas{})
	r.Register(&Florida{})
	r.Register(&Utah{})
	r.Register(&SouthCarolina{})

	// Open-data API states.
	r.Register(&Washington{})
	r.Register(&Colorado{})

	// Scraper-only states, registered so sweeps can report them as gaps.
	r.Register(&Nevada{})

	return r
}

// Register adds a source to the registry.
func (r *Registry) Register(s Source) {
	st := s.State()
	if _, exists := r.sources[st]; !exists {
		r.order = append(r.order, st)
	}
	r.sources[st] = s
}

// Get returns the source for a state code.
func (r *Registry) Get(state string) (Source, error) {
	s, ok := r.sources[state]
	if !ok {
		return nil, eris.Errorf("license: no source for state %q", state)
	}
	return s, nil
}

// Select returns sources for the named states, or all in registration
// order when states is empty.
func (r *Registry) Select(states []string) ([]Source, error) {
	if len(states) == 0 {
		return r.All(), nil
	}
	out := make([]Source, 0, len(states))
	for _, st := range states {
		s, err := r.Get(st)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// All returns every source in registration order.
func (r *Registry) All() []Source {
	out := make([]Source, 0, len(r.order))
	for _, st := range r.order {
		out = append(out, r.sources[st])
	}
	return out
}
