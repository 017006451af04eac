package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gridline-data/locator-cli/internal/aggregate"
	"github.com/gridline-data/locator-cli/internal/model"
	"github.com/gridline-data/locator-cli/internal/scorer"
	"github.com/gridline-data/locator-cli/internal/store"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score contractor profiles and save ranked leads",
	Long: `Aggregate stored dealers into contractor profiles, cross-reference
them with the licensee database, score each profile on brand count,
licensure, tenure, capability breadth, and reputation, and save the
ranked leads in the local store.

Pass --no-license to score without a licensee database; license and
tenure components are zero.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := scorer.Validate(cfg.Scoring); err != nil {
			return err
		}
		log := zap.L().With(zap.String("command", "score"))

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		profiles, err := loadProfiles(ctx, st)
		if err != nil {
			return err
		}

		matchesByKey := make(map[string][]model.Match)
		noLicense, _ := cmd.Flags().GetBool("no-license")
		if !noLicense {
			if err := cfg.Validate("license"); err != nil {
				return err
			}
			pool, err := licensePool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			dealers, err := st.ListDealers(ctx, store.DealerFilter{})
			if err != nil {
				return err
			}
			states, err := xrefStates(cmd, dealers)
			if err != nil {
				return err
			}
			matches, err := runXref(ctx, pool, dealers, states)
			if err != nil {
				return err
			}
			matchesByKey = groupMatches(matches)
		}

		leads := scorer.ScoreAll(cfg.Scoring, profiles, matchesByKey, time.Now())

		saved, err := st.SaveLeads(ctx, leads)
		if err != nil {
			return err
		}

		log.Info("leads saved", zap.Int("saved", saved))
		printLeadTiers(leads)
		fmt.Println("Scoring complete")
		return nil
	},
}

func init() {
	scoreCmd.Flags().Bool("no-license", false, "skip the licensee cross-reference")
	scoreCmd.Flags().String("states", "", "comma-separated state codes for the cross-reference")
	rootCmd.AddCommand(scoreCmd)
}

// groupMatches indexes license matches by the identity key their dealer
// groups under, lining them up with aggregated profiles.
func groupMatches(matches []model.Match) map[string][]model.Match {
	byKey := make(map[string][]model.Match)
	for _, m := range matches {
		if key, ok := aggregate.KeyFor(m.Dealer); ok {
			byKey[key] = append(byKey[key], m)
		}
	}
	return byKey
}

func printLeadTiers(leads []scorer.Lead) {
	tiers := make(map[string]int, 4)
	for _, l := range leads {
		tiers[l.Tier]++
	}
	fmt.Printf("Leads: %d (A %d, B %d, C %d, D %d)\n",
		len(leads), tiers["A"], tiers["B"], tiers["C"], tiers["D"])
}
