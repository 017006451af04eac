// Package locator implements the generic dealer-locator scraper driver.
//
// One driver, parametrized per vendor: each OEM brand contributes a small
// Vendor value (locator URL template, fetch mode, parse function) instead of
// its own scraper type. Vendors are assembled into an explicit Registry at
// program start; there is no import-time self-registration.
package locator

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/gridline-data/locator-cli/internal/model"
)

// FetchMode selects how a vendor's locator page is retrieved.
type FetchMode int

const (
	// ModeHTTP fetches the locator endpoint directly (JSON API or static HTML).
	ModeHTTP FetchMode = iota + 1
	// ModeBrowser drives a headless browser for JS-rendered locators.
	ModeBrowser
)

// String returns the human-readable mode name.
func (m FetchMode) String() string {
	switch m {
	case ModeHTTP:
		return "http"
	case ModeBrowser:
		return "browser"
	default:
		return "unknown"
	}
}

// ErrModeUnsupported reports a vendor asked to run in a mode it has no
// recipe for. Callers treat it as a per-vendor configuration gap, not a
// scrape failure.
var ErrModeUnsupported = eris.New("locator: fetch mode not supported for vendor")

// Vendor is one OEM's locator recipe.
type Vendor struct {
	// Name is the unique OEM identifier ("generac", "tesla-energy").
	Name string
	// Mode is how the locator must be fetched.
	Mode FetchMode
	// URL builds the locator request URL for one search ZIP.
	URL func(zip string) string
	// Parse maps one raw locator response into dealer records. Provenance
	// fields (OEMSource, ScrapedFromZip) and capability flags are filled in
	// by the driver, not by Parse.
	Parse func(body []byte, zip string) ([]model.Dealer, error)
	// WaitSelector is the CSS selector browser mode waits on before
	// snapshotting the page. Ignored in HTTP mode.
	WaitSelector string
}

// Fetcher retrieves one vendor's locator response for one ZIP.
type Fetcher interface {
	Fetch(ctx context.Context, v Vendor, zip string) ([]byte, error)
}

// Registry maps vendor names to their locator recipes, preserving
// registration order for deterministic iteration.
type Registry struct {
	vendors map[string]Vendor
	order   []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{vendors: make(map[string]Vendor)}
}

// Register adds a vendor. Re-registering a name replaces the recipe but
// keeps its original position.
func (r *Registry) Register(v Vendor) {
	if _, ok := r.vendors[v.Name]; !ok {
		r.order = append(r.order, v.Name)
	}
	r.vendors[v.Name] = v
}

// Get returns a vendor by name.
func (r *Registry) Get(name string) (Vendor, error) {
	v, ok := r.vendors[name]
	if !ok {
		return Vendor{}, eris.New(fmt.Sprintf("locator: unknown vendor %q", name))
	}
	return v, nil
}

// Select returns the named vendors, or all vendors if names is empty.
func (r *Registry) Select(names []string) ([]Vendor, error) {
	if len(names) == 0 {
		return r.All(), nil
	}
	out := make([]Vendor, 0, len(names))
	for _, name := range names {
		v, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// All returns every vendor in registration order.
func (r *Registry) All() []Vendor {
	out := make([]Vendor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.vendors[name])
	}
	return out
}

// AllNames returns the registered vendor names in registration order.
func (r *Registry) AllNames() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
