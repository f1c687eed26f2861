// Package padfilter selects board pads by the schematic pins behind them.
//
// Each pad is mapped to a pin through the part model (pad name = pin
// number), then tested against the unit, number/name patterns, pin
// function and connection state in the Criteria. Pads with no pin behind
// them, such as mounting holes, are never matched and are not errors.
package padfilter

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/OpenTraceLab/padpainter/pkg/kicad/legacylib"
	"github.com/OpenTraceLab/padpainter/pkg/partmodel"
)

// ErrPattern marks an invalid pin number or pin name pattern.
var ErrPattern = errors.New("invalid pattern")

// PadIdentity names one pad on the board.
type PadIdentity struct {
	Reference string `json:"reference" yaml:"reference"`
	Pad       string `json:"pad" yaml:"pad"`
	Net       string `json:"net" yaml:"net"` // empty when unconnected
}

func (p PadIdentity) String() string {
	return p.Reference + "." + p.Pad
}

// Match is a selected pad together with the pin it resolved to.
type Match struct {
	PadIdentity `yaml:",inline"`
	Pin         legacylib.Pin `json:"pin" yaml:"pin"`
	State       State         `json:"state" yaml:"state"`
}

// PadError is a failure evaluating one pad.
type PadError struct {
	Pad PadIdentity
	Err error
}

func (e PadError) Error() string {
	return fmt.Sprintf("pad %s: %v", e.Pad, e.Err)
}

func (e PadError) Unwrap() error {
	return e.Err
}

// Result is the outcome of one Filter pass.
type Result struct {
	Matches []Match
	Errors  []PadError

	// NoPin lists pads of selected parts that have no pin in the symbol.
	NoPin []PadIdentity
}

// Pads returns the matched pads without pin details.
func (r Result) Pads() []PadIdentity {
	out := make([]PadIdentity, len(r.Matches))
	for i, m := range r.Matches {
		out[i] = m.PadIdentity
	}
	return out
}

// PartLookup finds the pin model of a part; *partmodel.Model implements it.
type PartLookup interface {
	Part(ref string) (partmodel.PartSymbol, bool)
}

// Filter evaluates c against every pad. Pads of unselected or unknown
// parts are skipped silently. Per-pad failures are collected in
// Result.Errors and never stop the pass.
func Filter(parts PartLookup, c Criteria, pads []PadIdentity) Result {
	var res Result

	numberRe, err := regexp.Compile(c.PinNumberPattern)
	patternErr := patternError("pin number", c.PinNumberPattern, err)
	nameRe, err := regexp.Compile(c.PinNamePattern)
	patternErr = errors.Join(patternErr, patternError("pin name", c.PinNamePattern, err))

	refs := toSet(c.References)
	units := toSet(c.Units)
	functions := toSet(c.Functions)
	states := toSet(c.States)

	for _, pad := range pads {
		if _, ok := refs[pad.Reference]; !ok {
			continue
		}
		part, ok := parts.Part(pad.Reference)
		if !ok {
			continue
		}
		pin, ok := part.Pin(pad.Pad)
		if !ok {
			res.NoPin = append(res.NoPin, pad)
			continue
		}
		if patternErr != nil {
			res.Errors = append(res.Errors, PadError{Pad: pad, Err: patternErr})
			continue
		}

		state := StateOf(pad.Net)
		if _, ok := units[pin.Unit]; !ok {
			continue
		}
		if !numberRe.MatchString(pin.Number) || !nameRe.MatchString(pin.Name) {
			continue
		}
		if _, ok := functions[pin.Function]; !ok {
			continue
		}
		if _, ok := states[state]; !ok {
			continue
		}
		res.Matches = append(res.Matches, Match{PadIdentity: pad, Pin: pin, State: state})
	}

	return res
}

func patternError(field, pattern string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s %q: %v", ErrPattern, field, pattern, err)
}
