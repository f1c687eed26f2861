package cmd

import (
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/padpainter/internal/config"
)

var partsCmd = &cobra.Command{
	Use:   "parts",
	Short: "Show how each part resolved to a library symbol",
	Long: `Parts lists every requested reference with its library, symbol, resolution
status and pin count, followed by the problems found while resolving them
(unregistered libraries, missing symbol definitions, malformed pin records).`,
	Args: cobra.NoArgs,
	RunE: runParts,
}

var unitsCmd = &cobra.Command{
	Use:   "units",
	Short: "List the units of the selected parts",
	Args:  cobra.NoArgs,
	RunE:  runUnits,
}

func init() {
	rootCmd.AddCommand(partsCmd)
	rootCmd.AddCommand(unitsCmd)
	partsCmd.Flags().StringP("output", "o", config.DefaultOutput, "output format: table, json or yaml")
	unitsCmd.Flags().StringP("output", "o", config.DefaultOutput, "output format: table, json or yaml")
}

func runParts(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cfg, logger)
	if err != nil {
		return err
	}
	return renderParts(cmd.OutOrStdout(), cfg.Output, s.model, s.board)
}

func runUnits(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cfg, logger)
	if err != nil {
		return err
	}
	return renderUnits(cmd.OutOrStdout(), cfg.Output, s.model.Units(s.refs...))
}
