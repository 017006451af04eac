package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gridline-data/locator-cli/internal/zipgrid"
)

var zipsCmd = &cobra.Command{
	Use:   "zips",
	Short: "Build a ZIP sweep grid from a ZCTA shapefile",
	Long: `Build a spatially thinned ZIP grid from a Census ZCTA shapefile.

ZIP centroids closer than --spacing miles to an already kept ZIP are
dropped, so locator radius searches cover the area without redundant
queries. The result is written one ZIP per line, ready for sweep
--zips-file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := zap.L().With(zap.String("command", "zips"))

		shapefile, _ := cmd.Flags().GetString("shapefile")
		if shapefile == "" {
			shapefile = cfg.Zips.ShapefilePath
		}
		if shapefile == "" {
			return eris.New("shapefile path is required (--shapefile or LOCATOR_ZIPS_SHAPEFILE_PATH)")
		}

		spacing, _ := cmd.Flags().GetFloat64("spacing")
		if spacing <= 0 {
			spacing = cfg.Zips.SpacingMiles
		}

		statesStr, _ := cmd.Flags().GetString("states")
		states := toUpper(splitAndTrim(statesStr))
		if len(states) == 0 {
			states = toUpper(cfg.Zips.States)
		}

		all, err := zipgrid.LoadShapefile(shapefile)
		if err != nil {
			return err
		}
		log.Info("shapefile loaded", zap.Int("zctas", len(all)))

		grid := zipgrid.Grid(all, spacing)
		codes := zipgrid.ForStates(grid, states)

		log.Info("grid built",
			zap.Float64("spacing_miles", spacing),
			zap.Strings("states", states),
			zap.Int("zips", len(codes)),
		)

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			for _, c := range codes {
				fmt.Println(c)
			}
			return nil
		}

		content := strings.Join(codes, "\n") + "\n"
		if err := os.WriteFile(out, []byte(content), 0o644); err != nil {
			return eris.Wrapf(err, "write %s", out)
		}
		fmt.Printf("Wrote %d ZIPs to %s\n", len(codes), out)
		return nil
	},
}

func init() {
	zipsCmd.Flags().String("shapefile", "", "ZCTA shapefile path (default from config)")
	zipsCmd.Flags().Float64("spacing", 0, "minimum miles between kept ZIP centroids (default from config)")
	zipsCmd.Flags().String("states", "", "comma-separated state codes to keep (default all)")
	zipsCmd.Flags().String("out", "", "output file (default stdout)")
	rootCmd.AddCommand(zipsCmd)
}
