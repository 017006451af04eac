package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gridline-data/locator-cli/internal/checkpoint"
	"github.com/gridline-data/locator-cli/internal/locator"
	"github.com/gridline-data/locator-cli/internal/model"
	"github.com/gridline-data/locator-cli/internal/store"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Sweep OEM dealer locators across a ZIP list",
	Long: `Sweep OEM dealer-locator sites ZIP by ZIP, dedupe each vendor's
results, and record the unique dealers in the local store.

ZIPs come from --zips, --zips-file (one per line, typically produced by
the zips command), or both. Use --resume to pick up from the last
checkpoint after an interrupted run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("sweep"); err != nil {
			return err
		}
		log := zap.L().With(zap.String("command", "sweep"))

		zips, err := collectZips(cmd)
		if err != nil {
			return err
		}
		vendorsStr, _ := cmd.Flags().GetString("vendors")
		resume, _ := cmd.Flags().GetBool("resume")

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		ckpts, err := checkpoint.NewStore(cfg.Sweep.CheckpointDir)
		if err != nil {
			return err
		}

		fetch := locator.ModeMux{
			HTTP:    locator.NewHTTPFetcher(cfg.Sweep.UserAgent, 30*time.Second, 2),
			Browser: locator.NewBrowserFetcher(60 * time.Second),
		}
		engine := locator.NewEngine(locator.DefaultRegistry(), fetch, ckpts)

		opts := locator.SweepOpts{
			Vendors:           splitAndTrim(vendorsStr),
			Zips:              zips,
			Resume:            resume,
			CheckpointEvery:   cfg.Sweep.CheckpointEvery,
			VendorParallelism: cfg.Sweep.VendorParallelism,
			FuzzyThreshold:    cfg.Dedup.FuzzyThreshold,
		}

		log.Info("starting sweep",
			zap.Strings("vendors", opts.Vendors),
			zap.Int("zips", len(zips)),
			zap.Bool("resume", resume),
		)

		results, err := engine.Run(ctx, opts)
		if persistErr := persistResults(cmd, st, results, len(zips)); persistErr != nil {
			return persistErr
		}
		if err != nil {
			return eris.Wrap(err, "sweep")
		}

		printSweepResults(results)
		return nil
	},
}

func init() {
	sweepCmd.Flags().String("vendors", "", "comma-separated vendor names (default all registered)")
	sweepCmd.Flags().String("zips", "", "comma-separated ZIP codes to sweep")
	sweepCmd.Flags().String("zips-file", "", "file with one ZIP per line")
	sweepCmd.Flags().Bool("resume", false, "resume from the last checkpoint")
	rootCmd.AddCommand(sweepCmd)
}

// collectZips merges the --zips and --zips-file flags.
func collectZips(cmd *cobra.Command) ([]string, error) {
	zipsStr, _ := cmd.Flags().GetString("zips")
	zipsFile, _ := cmd.Flags().GetString("zips-file")

	zips := splitAndTrim(zipsStr)
	if zipsFile != "" {
		fromFile, err := readLines(zipsFile)
		if err != nil {
			return nil, err
		}
		zips = append(zips, fromFile...)
	}
	if len(zips) == 0 {
		return nil, eris.New("no ZIPs to sweep: pass --zips or --zips-file")
	}
	return zips, nil
}

// persistResults records each vendor's sweep and its deduplicated dealers.
// Partial results from an aborted run are still recorded, marked failed.
func persistResults(cmd *cobra.Command, st store.Store, results []locator.SweepResult, totalZips int) error {
	ctx := cmd.Context()
	for _, res := range results {
		sweep, err := st.CreateSweep(ctx, res.OEM, totalZips)
		if err != nil {
			return err
		}

		if _, err := st.InsertDealers(ctx, sweep.ID, res.Dedup.Dealers); err != nil {
			return err
		}

		status := model.SweepCompleted
		if res.Completed+len(res.FailedZips) < totalZips {
			status = model.SweepFailed
		}
		err = st.CompleteSweep(ctx, sweep.ID, status, len(res.Raw), len(res.Dedup.Dealers), len(res.FailedZips))
		if err != nil {
			return err
		}
	}
	return nil
}

func printSweepResults(results []locator.SweepResult) {
	fmt.Printf("%-14s %8s %8s %8s %8s\n", "VENDOR", "RAW", "UNIQUE", "ZIPS", "FAILED")
	fmt.Println(strings.Repeat("-", 52))
	for _, res := range results {
		fmt.Printf("%-14s %8d %8d %8d %8d\n",
			res.OEM, len(res.Raw), len(res.Dedup.Dealers), res.Completed, len(res.FailedZips))
	}
	fmt.Println("Sweep complete")
}
