package main

import (
	"fmt"
	"os"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gridline-data/locator-cli/internal/export"
	"github.com/gridline-data/locator-cli/internal/scorer"
	"github.com/gridline-data/locator-cli/internal/store"
	"github.com/gridline-data/locator-cli/pkg/notion"
	sfpkg "github.com/gridline-data/locator-cli/pkg/salesforce"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export scored leads",
}

var exportCSVCmd = &cobra.Command{
	Use:   "csv",
	Short: "Write leads to a CSV file",
	RunE: func(cmd *cobra.Command, args []string) error {
		leads, closeStore, err := exportLeads(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		out, _ := cmd.Flags().GetString("out")
		if err := export.WriteLeadsCSV(out, leads); err != nil {
			return err
		}
		fmt.Printf("Wrote %d leads to %s\n", len(leads), out)
		return nil
	},
}

var exportXLSXCmd = &cobra.Command{
	Use:   "xlsx",
	Short: "Write leads to an XLSX workbook with per-tier sheets",
	RunE: func(cmd *cobra.Command, args []string) error {
		leads, closeStore, err := exportLeads(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		out, _ := cmd.Flags().GetString("out")
		if err := export.WriteLeadsXLSX(out, leads); err != nil {
			return err
		}
		fmt.Printf("Wrote %d leads to %s\n", len(leads), out)
		return nil
	},
}

var exportNotionCmd = &cobra.Command{
	Use:   "notion",
	Short: "Push leads to the Notion lead database",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Notion.Token == "" || cfg.Notion.LeadDB == "" {
			return eris.New("notion token and lead database ID are required (LOCATOR_NOTION_TOKEN, LOCATOR_NOTION_LEAD_DB)")
		}

		leads, closeStore, err := exportLeads(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		c := notion.NewClient(cfg.Notion.Token)
		created, err := export.PushLeadsToNotion(cmd.Context(), c, cfg.Notion.LeadDB, leads)
		if err != nil {
			return eris.Wrapf(err, "export notion: created %d of %d", created, len(leads))
		}
		fmt.Printf("Pushed %d leads to Notion\n", created)
		return nil
	},
}

var exportSalesforceCmd = &cobra.Command{
	Use:   "salesforce",
	Short: "Upsert leads into Salesforce",
	RunE: func(cmd *cobra.Command, args []string) error {
		sf, err := initSalesforce()
		if err != nil {
			return err
		}

		leads, closeStore, err := exportLeads(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		res, err := export.UpsertLeadsToSalesforce(cmd.Context(), sf, leads)
		if err != nil {
			return err
		}
		fmt.Printf("Salesforce upsert: %d created, %d updated, %d failed\n",
			res.Created, res.Updated, res.Failed)
		return nil
	},
}

func init() {
	exportCmd.PersistentFlags().String("tier", "", "restrict to one tier (A-D)")
	exportCmd.PersistentFlags().Float64("min-score", 0, "minimum lead score")
	exportCmd.PersistentFlags().Int("limit", 0, "maximum leads to export")
	exportCSVCmd.Flags().String("out", "leads.csv", "output file")
	exportXLSXCmd.Flags().String("out", "leads.xlsx", "output file")
	exportCmd.AddCommand(exportCSVCmd)
	exportCmd.AddCommand(exportXLSXCmd)
	exportCmd.AddCommand(exportNotionCmd)
	exportCmd.AddCommand(exportSalesforceCmd)
	rootCmd.AddCommand(exportCmd)
}

// exportLeads loads leads from the store per the shared export flags.
// The returned func closes the store once the caller is done.
func exportLeads(cmd *cobra.Command) ([]scorer.Lead, func(), error) {
	ctx := cmd.Context()

	if err := cfg.Validate("export"); err != nil {
		return nil, nil, err
	}

	st, err := openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() { _ = st.Close() }

	tier, _ := cmd.Flags().GetString("tier")
	minScore, _ := cmd.Flags().GetFloat64("min-score")
	limit, _ := cmd.Flags().GetInt("limit")

	leads, err := st.ListLeads(ctx, store.LeadFilter{Tier: tier, MinScore: minScore, Limit: limit})
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	if len(leads) == 0 {
		closeStore()
		return nil, nil, eris.New("no leads in store: run score first")
	}

	zap.L().Info("leads loaded for export",
		zap.String("component", "export"),
		zap.Int("leads", len(leads)),
		zap.String("tier", tier),
		zap.Float64("min_score", minScore),
	)
	return leads, closeStore, nil
}

// initSalesforce builds the JWT-authenticated Salesforce client.
func initSalesforce() (sfpkg.Client, error) {
	if cfg.Salesforce.ClientID == "" {
		return nil, eris.New("salesforce client ID is required (LOCATOR_SALESFORCE_CLIENT_ID)")
	}

	pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	sf, err := salesforce.Init(salesforce.Creds{
		Domain:         cfg.Salesforce.LoginURL,
		Username:       cfg.Salesforce.Username,
		ConsumerKey:    cfg.Salesforce.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}

	return sfpkg.NewClient(sf), nil
}
