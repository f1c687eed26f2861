package cmd

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/OpenTraceLab/padpainter/internal/config"
	"github.com/OpenTraceLab/padpainter/pkg/kicad/pcb"
	"github.com/OpenTraceLab/padpainter/pkg/padfilter"
	"github.com/OpenTraceLab/padpainter/pkg/partmodel"
)

// session is one load of board, netlist and libraries.
type session struct {
	board *pcb.Board // nil when no board file was given
	model *partmodel.Model
	refs  []string
}

// loadSession reads the board (if any) and builds the part model for the
// configured references, falling back to every footprint on the board and
// then to every part in the netlist.
func loadSession(c *config.Config, log *zap.Logger) (*session, error) {
	s := &session{refs: c.Refs}

	if c.Board != "" {
		board, err := pcb.ParseFile(c.Board)
		if err != nil {
			return nil, fmt.Errorf("error parsing board %s: %w", c.Board, err)
		}
		s.board = board
		log.Debug("board loaded",
			zap.String("board", c.Board),
			zap.Int("version", board.Version),
			zap.String("generator", board.Generator),
			zap.Int("footprints", len(board.Footprints)))
		if len(s.refs) == 0 {
			s.refs = board.References()
		}
	}

	model, err := partmodel.Refresh(partmodel.Options{
		BoardFile:   c.Board,
		NetlistFile: c.Netlist,
		ConfigHome:  c.ConfigHome,
		References:  s.refs,
		Logger:      log,
	})
	if err != nil {
		return nil, err
	}
	s.model = model
	if len(s.refs) == 0 {
		s.refs = model.Order
	}
	return s, nil
}

// pads lists every named copper pad of the board's footprints.
func (s *session) pads() []padfilter.PadIdentity {
	if s.board == nil {
		return nil
	}
	var out []padfilter.PadIdentity
	s.board.EachPad(func(fp *pcb.Footprint, pad *pcb.Pad) {
		if pad.Mechanical() {
			return
		}
		out = append(out, padfilter.PadIdentity{
			Reference: fp.Reference,
			Pad:       pad.Number,
			Net:       pad.Net,
		})
	})
	return out
}

// criteria turns the configured selection into filter criteria. Unset units,
// functions and states select everything the loaded parts offer.
func (s *session) criteria(c *config.Config) (padfilter.Criteria, error) {
	crit := padfilter.Criteria{
		References:       s.refs,
		Units:            c.Units,
		PinNumberPattern: c.PinNumber,
		PinNamePattern:   c.PinName,
		Functions:        padfilter.AllFunctions(),
		States:           padfilter.AllStates(),
	}
	if len(crit.Units) == 0 {
		crit.Units = s.model.Units(s.refs...)
	}
	if len(c.Functions) > 0 {
		fns, err := padfilter.ParseFunctions(c.Functions)
		if err != nil {
			return crit, err
		}
		crit.Functions = fns
	}
	if len(c.States) > 0 {
		states, err := padfilter.ParseStates(c.States)
		if err != nil {
			return crit, err
		}
		crit.States = states
	}
	return crit, nil
}

// selectPads runs one full load and filter pass.
func selectPads(c *config.Config, log *zap.Logger) (*session, padfilter.Result, error) {
	if c.Board == "" {
		return nil, padfilter.Result{}, fmt.Errorf("no board file given (use --board or PADPAINTER_BOARD)")
	}
	s, err := loadSession(c, log)
	if err != nil {
		return nil, padfilter.Result{}, err
	}
	crit, err := s.criteria(c)
	if err != nil {
		return nil, padfilter.Result{}, err
	}

	res := padfilter.Filter(s.model, crit, s.pads())
	for _, pe := range res.Errors {
		log.Warn("pad skipped", zap.Stringer("pad", pe.Pad), zap.Error(pe.Err))
	}
	if len(res.NoPin) > 0 {
		log.Debug("pads without a schematic pin", zap.Int("count", len(res.NoPin)))
	}
	return s, res, nil
}
