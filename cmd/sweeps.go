package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gridline-data/locator-cli/internal/model"
	"github.com/gridline-data/locator-cli/internal/store"
)

var sweepsCmd = &cobra.Command{
	Use:   "sweeps",
	Short: "List recorded sweeps",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		oem, _ := cmd.Flags().GetString("oem")
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		sweeps, err := st.ListSweeps(ctx, store.SweepFilter{
			OEM:    oem,
			Status: model.SweepStatus(status),
			Limit:  limit,
		})
		if err != nil {
			return err
		}
		if len(sweeps) == 0 {
			fmt.Println("No sweeps recorded")
			return nil
		}

		fmt.Printf("%-38s %-12s %-10s %6s %8s %8s %8s  %s\n",
			"ID", "VENDOR", "STATUS", "ZIPS", "RAW", "UNIQUE", "FAILED", "STARTED")
		for _, s := range sweeps {
			fmt.Printf("%-38s %-12s %-10s %6d %8d %8d %8d  %s\n",
				s.ID, s.OEM, s.Status, s.TotalZips, s.RawCount, s.UniqueCount,
				s.FailedZips, s.StartedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	sweepsCmd.Flags().String("oem", "", "filter by vendor name")
	sweepsCmd.Flags().String("status", "", "filter by status: running, completed, failed")
	sweepsCmd.Flags().Int("limit", 20, "maximum sweeps to list")
	rootCmd.AddCommand(sweepsCmd)
}
