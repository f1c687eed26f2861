package legacylib

import (
	"fmt"
	"strings"
)

// Function is the electrical type of a pin, stored as its one-character
// code from the library file.
type Function byte

const (
	Input         Function = 'I'
	Output        Function = 'O'
	Bidirectional Function = 'B'
	TriState      Function = 'T'
	PowerIn       Function = 'W'
	PowerOut      Function = 'w'
	Passive       Function = 'P'
	Unspecified   Function = 'U'
	OpenCollector Function = 'C'
	OpenEmitter   Function = 'E'
	NotConnected  Function = 'N'
)

var functionNames = map[Function]string{
	Input:         "Input",
	Output:        "Output",
	Bidirectional: "Bidirectional",
	TriState:      "TriState",
	PowerIn:       "PowerIn",
	PowerOut:      "PowerOut",
	Passive:       "Passive",
	Unspecified:   "Unspecified",
	OpenCollector: "OpenCollector",
	OpenEmitter:   "OpenEmitter",
	NotConnected:  "NotConnected",
}

// Alternative spellings accepted by ParseFunction, lowercased.
var functionAliases = map[string]Function{
	"in":             Input,
	"out":            Output,
	"i/o":            Bidirectional,
	"bidi":           Bidirectional,
	"3-state":        TriState,
	"tri_state":      TriState,
	"pwr":            PowerIn,
	"power_in":       PowerIn,
	"pwr out":        PowerOut,
	"power_out":      PowerOut,
	"unspec":         Unspecified,
	"opencoll":       OpenCollector,
	"open_collector": OpenCollector,
	"openemit":       OpenEmitter,
	"open_emitter":   OpenEmitter,
	"nc":             NotConnected,
	"no_connect":     NotConnected,
}

// Functions returns every known function in a stable order.
func Functions() []Function {
	return []Function{
		Input, Output, Bidirectional, PowerIn, PowerOut, TriState,
		OpenCollector, OpenEmitter, Passive, Unspecified, NotConnected,
	}
}

// Known reports whether f is one of the defined codes.
func (f Function) Known() bool {
	_, ok := functionNames[f]
	return ok
}

// Code returns the single-character code used in library files.
func (f Function) Code() string {
	return string(rune(f))
}

func (f Function) String() string {
	if name, ok := functionNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%c)", rune(f))
}

// MarshalText renders the function by name.
func (f Function) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// ParseFunction accepts a one-character code ("W", "w", "P") or a name
// such as "input", "PowerOut" or "open_collector".
func ParseFunction(s string) (Function, error) {
	s = strings.TrimSpace(s)
	if len(s) == 1 {
		if f := Function(s[0]); f.Known() {
			return f, nil
		}
	}
	lower := strings.ToLower(s)
	for f, name := range functionNames {
		if strings.ToLower(name) == lower {
			return f, nil
		}
	}
	if f, ok := functionAliases[lower]; ok {
		return f, nil
	}
	return 0, fmt.Errorf("legacylib: unknown pin function %q", s)
}
