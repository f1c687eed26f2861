package padfilter

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/padpainter/pkg/kicad/legacylib"
)

// State is the connection state of a pad.
type State int

const (
	Connected State = iota + 1
	Unconnected
)

func (s State) String() string {
	switch s {
	case Connected:
		return "Connected"
	case Unconnected:
		return "Unconnected"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText renders the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// StateOf classifies a pad by its net name: blank means unconnected.
func StateOf(netName string) State {
	if strings.TrimSpace(netName) == "" {
		return Unconnected
	}
	return Connected
}

// AllStates returns both connection states.
func AllStates() []State {
	return []State{Connected, Unconnected}
}

// ParseState accepts "connected"/"c" or "unconnected"/"u", any case.
func ParseState(s string) (State, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "connected", "c":
		return Connected, nil
	case "unconnected", "u":
		return Unconnected, nil
	default:
		return 0, fmt.Errorf("padfilter: unknown pad state %q", s)
	}
}

// ParseStates parses each entry with ParseState.
func ParseStates(in []string) ([]State, error) {
	out := make([]State, 0, len(in))
	for _, s := range in {
		st, err := ParseState(s)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

// AllFunctions returns every pin function.
func AllFunctions() []legacylib.Function {
	return legacylib.Functions()
}

// ParseFunctions parses each entry with legacylib.ParseFunction.
func ParseFunctions(in []string) ([]legacylib.Function, error) {
	out := make([]legacylib.Function, 0, len(in))
	for _, s := range in {
		f, err := legacylib.ParseFunction(s)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// Criteria selects pads. A pad matches when its part is listed in
// References and its pin satisfies every other field. Empty Units,
// Functions or States match nothing; empty patterns match everything.
type Criteria struct {
	References []string
	Units      []string

	// PinNumberPattern and PinNamePattern are regular expressions that
	// need to match somewhere in the pin number or name.
	PinNumberPattern string
	PinNamePattern   string

	Functions []legacylib.Function
	States    []State
}

// MatchAll returns criteria that accept every pin of the given parts and units.
func MatchAll(refs, units []string) Criteria {
	return Criteria{
		References: refs,
		Units:      units,
		Functions:  AllFunctions(),
		States:     AllStates(),
	}
}

func toSet[T comparable](items []T) map[T]struct{} {
	set := make(map[T]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}
