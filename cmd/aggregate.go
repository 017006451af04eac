package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/gridline-data/locator-cli/internal/aggregate"
	"github.com/gridline-data/locator-cli/internal/model"
	"github.com/gridline-data/locator-cli/internal/store"
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Merge stored dealers into cross-OEM contractor profiles",
	Long: `Merge the deduplicated dealers from every recorded sweep into
unified contractor profiles, grouping by normalized phone, then domain,
then name+state. A contractor listed by several OEM locators becomes one
profile carrying all its brands.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		profiles, err := loadProfiles(ctx, st)
		if err != nil {
			return err
		}

		multi := 0
		for _, p := range profiles {
			if p.OEMCount() > 1 {
				multi++
			}
		}
		fmt.Printf("Profiles:  %d\n", len(profiles))
		fmt.Printf("Multi-OEM: %d\n", multi)

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			return nil
		}
		data, err := json.MarshalIndent(profiles, "", "  ")
		if err != nil {
			return eris.Wrap(err, "marshal profiles")
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return eris.Wrapf(err, "write %s", out)
		}
		fmt.Printf("Wrote %d profiles to %s\n", len(profiles), out)
		return nil
	},
}

func init() {
	aggregateCmd.Flags().String("out", "", "write profiles as JSON")
	rootCmd.AddCommand(aggregateCmd)
}

// loadProfiles reads every stored dealer, batches them by OEM, and merges
// the batches into contractor profiles.
func loadProfiles(ctx context.Context, st store.Store) ([]aggregate.Profile, error) {
	dealers, err := st.ListDealers(ctx, store.DealerFilter{})
	if err != nil {
		return nil, err
	}
	if len(dealers) == 0 {
		return nil, eris.New("no dealers in store: run sweep first")
	}

	byOEM := make(map[string][]model.Dealer)
	for _, d := range dealers {
		byOEM[d.OEMSource] = append(byOEM[d.OEMSource], d)
	}
	oems := make([]string, 0, len(byOEM))
	for oem := range byOEM {
		oems = append(oems, oem)
	}
	sort.Strings(oems)

	batches := make([]aggregate.Batch, 0, len(oems))
	for _, oem := range oems {
		batches = append(batches, aggregate.Batch{OEM: oem, Dealers: byOEM[oem]})
	}
	return aggregate.Merge(batches), nil
}
