// Package legacylib reads pin data from KiCad legacy symbol libraries
// (.lib, "EESchema-LIBRARY Version 2.x").
//
// A symbol definition looks like:
//
//	DEF RES R 0 0 N Y 1 F N
//	F0 "R" 80 0 50 V V C CNN
//	ALIAS RESISTOR
//	DRAW
//	X ~ 1 0 150 50 D 50 50 1 1 P
//	X ~ 2 0 -150 50 U 50 50 1 1 P
//	ENDDRAW
//	ENDDEF
//
// The reader makes a single pass. It stays in the seeking state until a
// DEF or ALIAS line names the wanted symbol, then collects X (pin) records
// until ENDDEF. Pin fields are positional: 1=name, 2=number, 9=unit,
// 11=electrical type.
package legacylib

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// minPinFields is the field count needed to reach the electrical type.
const minPinFields = 12

// Pin is one electrical pin of a symbol.
type Pin struct {
	Number   string   `json:"number" yaml:"number"`
	Name     string   `json:"name" yaml:"name"`
	Unit     string   `json:"unit" yaml:"unit"`
	Function Function `json:"function" yaml:"function"`
}

// MalformedLine is a pin record that could not be read and was skipped.
type MalformedLine struct {
	Line int
	Text string
	Err  error
}

func (m MalformedLine) Error() string {
	return fmt.Sprintf("line %d: %v", m.Line, m.Err)
}

func (m MalformedLine) Unwrap() error {
	return m.Err
}

// Definition is what was collected for one symbol.
type Definition struct {
	Symbol string
	Pins   map[string]Pin      // keyed by pin number
	Units  map[string]struct{} // unit tags used by the pins

	// Found is set once a DEF or ALIAS line named the symbol.
	Found bool

	// Truncated is set when the file ended before ENDDEF. Pins and
	// Units are empty in that case.
	Truncated bool

	Malformed []MalformedLine
}

// Complete reports whether the definition was found and closed by ENDDEF.
func (d *Definition) Complete() bool {
	return d.Found && !d.Truncated
}

// UnitList returns the unit tags in sorted order.
func (d *Definition) UnitList() []string {
	units := make([]string, 0, len(d.Units))
	for u := range d.Units {
		units = append(units, u)
	}
	sort.Strings(units)
	return units
}

type scanState int

const (
	seeking scanState = iota
	collecting
	finished
)

func (s scanState) String() string {
	switch s {
	case seeking:
		return "seeking"
	case collecting:
		return "collecting"
	case finished:
		return "finished"
	default:
		return fmt.Sprintf("scanState(%d)", int(s))
	}
}

// Reader reads symbols from library files on disk.
type Reader struct{}

// ReadSymbol implements the symbol lookup used by part model builders.
func (Reader) ReadSymbol(path, symbol string) (*Definition, error) {
	return ReadSymbol(path, symbol)
}

// ReadSymbol scans the library file at path for symbol. Only I/O problems
// are returned as errors; a missing or truncated definition is reported
// through the Definition flags.
func ReadSymbol(path, symbol string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("legacylib: %w", err)
	}
	defer f.Close()

	def, err := ScanSymbol(f, symbol)
	if err != nil {
		return nil, fmt.Errorf("legacylib: %s: %w", path, err)
	}
	return def, nil
}

// ScanSymbol scans library text from r for symbol.
func ScanSymbol(r io.Reader, symbol string) (*Definition, error) {
	def := &Definition{
		Symbol: symbol,
		Pins:   make(map[string]Pin),
		Units:  make(map[string]struct{}),
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	state := seeking
	lineNo := 0
	for state != finished && scanner.Scan() {
		lineNo++
		line := scanner.Text()

		switch state {
		case seeking:
			if namesSymbol(line, symbol) {
				def.Found = true
				state = collecting
			}

		case collecting:
			switch {
			case strings.HasPrefix(line, "ENDDEF"):
				state = finished
			case hasKeyword(line, "X"):
				pin, err := parsePin(line)
				if err != nil {
					def.Malformed = append(def.Malformed, MalformedLine{Line: lineNo, Text: line, Err: err})
					continue
				}
				def.Pins[pin.Number] = pin
				def.Units[pin.Unit] = struct{}{}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if state == collecting {
		def.Truncated = true
		def.Pins = make(map[string]Pin)
		def.Units = make(map[string]struct{})
	}

	return def, nil
}

func parsePin(line string) (Pin, error) {
	if n := len(strings.Fields(line)); n < minPinFields {
		return Pin{}, fmt.Errorf("pin record has %d fields, need at least %d", n, minPinFields)
	}
	rec, err := pinParser.ParseString("", line)
	if err != nil {
		return Pin{}, fmt.Errorf("pin record: %w", err)
	}
	return Pin{
		Number:   rec.Number,
		Name:     rec.Name,
		Unit:     rec.Unit,
		Function: Function(rec.Type[0]),
	}, nil
}
