package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/OpenTraceLab/padpainter/internal/config"
	"github.com/OpenTraceLab/padpainter/internal/logging"
)

var (
	// Global flags
	cfgFile string

	// Set up by PersistentPreRunE for every subcommand
	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "padpainter",
	Short: "padpainter - select KiCad board pads by schematic pin properties",
	Long: `padpainter cross-references a KiCad board with its netlist and legacy
symbol libraries, so pads can be selected by the schematic pin behind them:
unit, pin number, pin name, electrical function and connection state.

Settings come from flags, PADPAINTER_* environment variables and an
optional padpainter.yaml, in that order of precedence.

Examples:
  padpainter parts --board widget.kicad_pcb
  padpainter units --board widget.kicad_pcb --refs U1
  padpainter select --board widget.kicad_pcb --refs U1 --functions W,w
  padpainter select --board widget.kicad_pcb --states unconnected -o json
  padpainter watch --board widget.kicad_pcb --pin-name '^IN'`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Logging())
		if err != nil {
			return err
		}
		if cfg.FileUsed != "" {
			logger.Debug("config file loaded", zap.String("path", cfg.FileUsed))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default padpainter.yaml in the working directory)")
	pf.BoolP("verbose", "v", false, "verbose output (development logging, debug level)")
	pf.String("log-level", "", "log level: debug, info, warn, error (default "+config.DefaultLogLevel+", debug with --verbose)")
	pf.String("log-format", config.DefaultLogFormat, "log format: console or json")

	pf.StringP("board", "b", "", "KiCad board file (.kicad_pcb)")
	pf.StringP("netlist", "n", "", "netlist file (default <board>.net)")
	pf.String("config-home", "", "directory holding the global sym-lib-table (default $KICAD_CONFIG_HOME or the KiCad config dir)")
	pf.StringSliceP("refs", "r", nil, "part references to load (default every part on the board)")
}
