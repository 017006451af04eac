package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/gridline-data/locator-cli/internal/checkpoint"
	"github.com/gridline-data/locator-cli/internal/dedup"
)

var dedupCmd = &cobra.Command{
	Use:   "dedup",
	Short: "Re-run deduplication over a sweep checkpoint",
	Long: `Re-run the three-signal dedup (exact phone, exact domain,
intra-source fuzzy name) over the raw dealers in an OEM's checkpoint,
and print the audit breakdown. Useful for inspecting what a threshold
change would drop without re-scraping.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		oem, _ := cmd.Flags().GetString("oem")
		if oem == "" {
			return eris.New("--oem is required")
		}

		ckpts, err := checkpoint.NewStore(cfg.Sweep.CheckpointDir)
		if err != nil {
			return err
		}
		cp, found, err := ckpts.Load(oem)
		if err != nil {
			return err
		}
		if !found {
			return eris.Errorf("no checkpoint for %s in %s", oem, cfg.Sweep.CheckpointDir)
		}

		threshold, _ := cmd.Flags().GetFloat64("threshold")
		if threshold == 0 {
			threshold = cfg.Dedup.FuzzyThreshold
		}

		res := dedup.RunWithThreshold(cp.RawDealers, threshold)
		res.LogSummary(oem)

		fmt.Printf("Raw:     %d\n", len(cp.RawDealers))
		fmt.Printf("Unique:  %d\n", len(res.Dealers))
		fmt.Printf("Removed: %d (phone %d, domain %d, fuzzy %d)\n",
			res.Removed, res.PhoneCount, res.DomainCount, res.FuzzyCount)

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			return nil
		}
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return eris.Wrap(err, "marshal dedup result")
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return eris.Wrapf(err, "write %s", out)
		}
		fmt.Printf("Wrote dedup result to %s\n", out)
		return nil
	},
}

func init() {
	dedupCmd.Flags().String("oem", "", "OEM whose checkpoint to re-dedupe")
	dedupCmd.Flags().Float64("threshold", 0, "fuzzy name cutoff override (default: dedup.fuzzy_threshold from config)")
	dedupCmd.Flags().String("out", "", "write the full result (kept + dropped with reasons) as JSON")
	rootCmd.AddCommand(dedupCmd)
}
