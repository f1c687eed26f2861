package partmodel

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/OpenTraceLab/padpainter/pkg/kicad/libtable"
	"github.com/OpenTraceLab/padpainter/pkg/kicad/netlist"
)

// ErrNoNetlist is returned when no netlist was given and none sits next to
// the board.
var ErrNoNetlist = errors.New("partmodel: no netlist file")

// Options configures one Refresh.
type Options struct {
	// BoardFile locates the board-local sym-lib-table, the cache/rescue
	// libraries and the default <board>.net netlist. Optional.
	BoardFile string

	// NetlistFile overrides the netlist guessed from BoardFile.
	NetlistFile string

	// ConfigHome holds the global sym-lib-table. Defaults to
	// libtable.DefaultConfigHome().
	ConfigHome string

	// References to resolve. Empty means every netlist reference.
	References []string

	Reader SymbolReader
	Logger *zap.Logger
}

// Refresh runs the whole pipeline: index tables, scan the netlist, resolve
// the references. Only unreadable netlist or table files abort it.
func Refresh(opts Options) (*Model, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	netFile := opts.NetlistFile
	if netFile == "" {
		netFile = netlist.GuessFile(opts.BoardFile)
	}
	if netFile == "" {
		return nil, ErrNoNetlist
	}

	configHome := opts.ConfigHome
	if configHome == "" {
		configHome = libtable.DefaultConfigHome()
	}

	board := libtable.BoardFromFile(opts.BoardFile)
	tables := libtable.SearchPaths(configHome, board.Dir)
	index, err := libtable.Load(tables, board)
	if err != nil {
		return nil, fmt.Errorf("partmodel: load library tables: %w", err)
	}
	logger.Debug("library index loaded",
		zap.Strings("tables", tables), zap.Int("libraries", index.Len()))

	nl, err := netlist.ParseFile(netFile)
	if err != nil {
		return nil, fmt.Errorf("partmodel: %w", err)
	}
	if nl.Orphaned > 0 {
		logger.Warn("libsource lines without a component reference",
			zap.String("netlist", netFile), zap.Int("count", nl.Orphaned))
	}

	refs := opts.References
	if len(refs) == 0 {
		refs = nl.References()
	}

	m := NewBuilder(index, nl, opts.Reader, logger).Build(refs)
	m.Source = Source{Netlist: netFile, Tables: tables}
	return m, nil
}
