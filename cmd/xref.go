package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gridline-data/locator-cli/internal/export"
	"github.com/gridline-data/locator-cli/internal/license"
	"github.com/gridline-data/locator-cli/internal/model"
	"github.com/gridline-data/locator-cli/internal/store"
	"github.com/gridline-data/locator-cli/internal/xref"
)

var xrefCmd = &cobra.Command{
	Use:   "xref",
	Short: "Cross-reference stored dealers with license registries",
	Long: `Match stored dealers against the licensee database by normalized
phone, then website domain. Matches carry the licensee's license fields
for enrichment.

States default to those seen in the stored dealers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("license"); err != nil {
			return err
		}
		log := zap.L().With(zap.String("command", "xref"))

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		dealers, err := st.ListDealers(ctx, store.DealerFilter{})
		if err != nil {
			return err
		}
		if len(dealers) == 0 {
			return eris.New("no dealers in store: run sweep first")
		}

		pool, err := licensePool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		states, err := xrefStates(cmd, dealers)
		if err != nil {
			return err
		}

		matches, err := runXref(ctx, pool, dealers, states)
		if err != nil {
			return err
		}

		log.Info("cross-reference complete",
			zap.Int("dealers", len(dealers)),
			zap.Strings("states", states),
			zap.Int("matches", len(matches)),
		)
		fmt.Printf("Matched %d licensees against %d dealers\n", len(matches), len(dealers))

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			return nil
		}
		if err := writeMatches(out, matches); err != nil {
			return err
		}
		fmt.Printf("Wrote %d matches to %s\n", len(matches), out)
		return nil
	},
}

func init() {
	xrefCmd.Flags().String("states", "", "comma-separated state codes (default states seen in stored dealers)")
	xrefCmd.Flags().String("out", "", "write matches to a .csv or .xlsx file")
	rootCmd.AddCommand(xrefCmd)
}

// xrefStates resolves the states flag, falling back to the distinct states
// of the stored dealers.
func xrefStates(cmd *cobra.Command, dealers []model.Dealer) ([]string, error) {
	statesStr, _ := cmd.Flags().GetString("states")
	if states := toUpper(splitAndTrim(statesStr)); len(states) > 0 {
		return states, nil
	}

	seen := make(map[string]bool)
	for _, d := range dealers {
		if d.State != "" {
			seen[strings.ToUpper(d.State)] = true
		}
	}
	if len(seen) == 0 {
		return nil, eris.New("stored dealers carry no states: pass --states")
	}
	states := make([]string, 0, len(seen))
	for s := range seen {
		states = append(states, s)
	}
	sort.Strings(states)
	return states, nil
}

// runXref loads each state's licensees and matches them against the dealers.
func runXref(ctx context.Context, pool *pgxpool.Pool, dealers []model.Dealer, states []string) ([]model.Match, error) {
	licStore := license.NewStore(pool)
	matcher := xref.NewMatcher(dealers)

	var matches []model.Match
	for _, state := range states {
		lics, err := licStore.ListByState(ctx, state)
		if err != nil {
			return nil, err
		}
		matches = append(matches, matcher.MatchAll(lics)...)
	}
	return matches, nil
}

// writeMatches picks the writer from the output extension.
func writeMatches(path string, matches []model.Match) error {
	switch ext := filepath.Ext(path); ext {
	case ".csv":
		return export.WriteMatchesCSV(path, matches)
	case ".xlsx":
		return export.WriteMatchesXLSX(path, matches)
	default:
		return eris.Errorf("unsupported output format %q: use .csv or .xlsx", ext)
	}
}
