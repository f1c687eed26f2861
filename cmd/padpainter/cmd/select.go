package cmd

import (
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/padpainter/internal/config"
)

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Select board pads by schematic pin properties",
	Long: `Select maps every pad of the chosen parts to its schematic pin (pad name =
pin number) and prints the pads whose pin passes every criterion.

Pin number and pin name patterns are regular expressions that may match
anywhere; anchor them (^1$) for exact matches. Functions take the legacy
pin codes or names: I O B T W w P U C E N, input, power_in, passive, ...
States are connected and unconnected.

Pads with no pin behind them, such as mounting holes, are never selected.`,
	Args: cobra.NoArgs,
	RunE: runSelect,
}

func init() {
	rootCmd.AddCommand(selectCmd)
	addSelectFlags(selectCmd)
	selectCmd.Flags().StringP("output", "o", config.DefaultOutput, "output format: table, json or yaml")
}

// addSelectFlags registers the pad criteria shared by select and watch.
func addSelectFlags(c *cobra.Command) {
	f := c.Flags()
	f.StringSliceP("units", "u", nil, "units to include (default every unit of the selected parts)")
	f.String("pin-number", "", "regular expression the pin number must match")
	f.String("pin-name", "", "regular expression the pin name must match")
	f.StringSliceP("functions", "f", nil, "pin functions to include (default all)")
	f.StringSliceP("states", "s", nil, "pad states to include: connected, unconnected (default both)")
}

func runSelect(cmd *cobra.Command, args []string) error {
	_, res, err := selectPads(cfg, logger)
	if err != nil {
		return err
	}
	return renderMatches(cmd.OutOrStdout(), cfg.Output, res)
}
