package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gridline-data/locator-cli/internal/fetcher"
	"github.com/gridline-data/locator-cli/internal/license"
)

var licenseCmd = &cobra.Command{
	Use:   "license",
	Short: "Manage state contractor-license registry data",
}

var licenseSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch and load state license registries",
	Long: `Download each state's contractor-license registry export, parse it
into standardized licensees, and upsert them into the license database.

Scraper-tier states have no bulk export and are reported as skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("license"); err != nil {
			return err
		}
		log := zap.L().With(zap.String("command", "license.sync"))

		states := licenseStates(cmd)

		pool, err := licensePool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := license.Migrate(ctx, pool); err != nil {
			return err
		}

		tempDir := cfg.License.TempDir
		if err := os.MkdirAll(tempDir, 0o755); err != nil {
			return eris.Wrapf(err, "license sync: create temp dir %s", tempDir)
		}

		f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			UserAgent:  cfg.Sweep.UserAgent,
			MaxRetries: 3,
		})
		ing := license.NewIngestor(license.NewRegistry(), f, license.NewStore(pool))

		log.Info("starting license sync", zap.Strings("states", states))

		results, err := ing.Run(ctx, states, tempDir)
		printSyncResults(results)
		if err != nil {
			return eris.Wrap(err, "license sync")
		}

		fmt.Println("Sync complete")
		return nil
	},
}

var licenseLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load a manually downloaded registry export",
	Long: `Parse a registry export already on disk with the named state's
column mapping and upsert it into the license database. The file must be
the same format the state's live source serves.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("license"); err != nil {
			return err
		}

		state, _ := cmd.Flags().GetString("state")
		file, _ := cmd.Flags().GetString("file")
		if state == "" || file == "" {
			return eris.New("--state and --file are required")
		}

		pool, err := licensePool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := license.Migrate(ctx, pool); err != nil {
			return err
		}

		tempDir := cfg.License.TempDir
		if err := os.MkdirAll(tempDir, 0o755); err != nil {
			return eris.Wrapf(err, "license load: create temp dir %s", tempDir)
		}

		ing := license.NewIngestor(license.NewRegistry(), nil, license.NewStore(pool))
		res, err := ing.LoadFile(ctx, toUpper([]string{state})[0], file, tempDir)
		if err != nil {
			return err
		}

		fmt.Printf("Loaded %d of %d parsed licensees for %s (%s)\n",
			res.Loaded, res.Parsed, res.State, res.Board)
		return nil
	},
}

func init() {
	licenseSyncCmd.Flags().String("states", "", "comma-separated state codes (default all registered)")
	licenseLoadCmd.Flags().String("state", "", "2-letter state code the export belongs to")
	licenseLoadCmd.Flags().String("file", "", "path to the downloaded export")
	licenseCmd.AddCommand(licenseSyncCmd)
	licenseCmd.AddCommand(licenseLoadCmd)
	rootCmd.AddCommand(licenseCmd)
}

// licenseStates resolves the states flag with the config as fallback.
func licenseStates(cmd *cobra.Command) []string {
	statesStr, _ := cmd.Flags().GetString("states")
	states := toUpper(splitAndTrim(statesStr))
	if len(states) == 0 {
		states = toUpper(cfg.License.States)
	}
	return states
}

func printSyncResults(results []license.SyncResult) {
	if len(results) == 0 {
		return
	}
	fmt.Printf("%-6s %-8s %10s %10s  %s\n", "STATE", "BOARD", "PARSED", "LOADED", "NOTE")
	for _, r := range results {
		note := ""
		if r.Skipped {
			note = "skipped (scraper-tier)"
		}
		fmt.Printf("%-6s %-8s %10d %10d  %s\n", r.State, r.Board, r.Parsed, r.Loaded, note)
	}
}
