// Package pcb reads footprints, pads and nets from KiCad board files.
//
// Both the KiCad 6+ layout (footprint, property "Reference") and the
// older KiCad 5 layout (module, fp_text reference) are accepted.
package pcb

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/OpenTraceLab/padpainter/pkg/kicad/sexp/kicadsexp"
)

// ParseFile reads and parses a KiCad board file
func ParseFile(filename string) (*Board, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads and parses a KiCad board from an io.Reader
func Parse(r io.Reader) (*Board, error) {
	sexps, err := kicadsexp.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse s-expression: %w", err)
	}
	if len(sexps) == 0 {
		return nil, fmt.Errorf("empty file or no valid s-expressions found")
	}

	root, ok := sexps[0].(*kicadsexp.List)
	if !ok || root.Name() != "kicad_pcb" {
		return nil, fmt.Errorf("not a KiCad PCB file: expected 'kicad_pcb', got %s", sexps[0])
	}

	board := &Board{}
	board.Version, board.Generator = parseHeader(root)
	board.Nets = parseNets(root)

	netMap := NewNetMap(board.Nets)
	for _, key := range []string{"footprint", "module"} {
		for _, node := range root.FindAll(key) {
			board.Footprints = append(board.Footprints, parseFootprint(node, netMap))
		}
	}

	return board, nil
}

// parseHeader extracts version and generator information from the root node
// Expected format: (kicad_pcb (version 20221018) (generator pcbnew) ...)
func parseHeader(root *kicadsexp.List) (version int, generator string) {
	if node, ok := root.Find("version"); ok {
		version, _ = node.Int(1)
	}

	generator = "unknown"
	if node, ok := root.Find("generator"); ok {
		if name, ok := node.Atom(1); ok {
			generator = name
		}
	} else if node, ok := root.Find("host"); ok {
		// Older format: (host pcbnew "(5.1.9)")
		if name, ok := node.Atom(1); ok {
			generator = name
		}
	}
	return version, generator
}

// parseNets extracts the top-level net table
// Expected format: (net 0 "") (net 1 "GND") (net 2 "+5V") ...
func parseNets(root *kicadsexp.List) []Net {
	var nets []Net
	for _, node := range root.FindAll("net") {
		number, ok := node.Int(1)
		if !ok {
			continue
		}
		name, _ := node.Atom(2)
		nets = append(nets, Net{Number: number, Name: name})
	}
	return nets
}

// parseFootprint extracts a footprint and its pads
// Expected format: (footprint "library:name" (layer "F.Cu") (property "Reference" "R1") (pad ...) ...)
func parseFootprint(node *kicadsexp.List, netMap *NetMap) Footprint {
	var fp Footprint

	if id, ok := node.Atom(1); ok {
		if lib, name, found := strings.Cut(id, ":"); found {
			fp.Library, fp.Name = lib, name
		} else {
			fp.Name = id
		}
	}

	for _, prop := range node.FindAll("property") {
		key, _ := prop.Atom(1)
		value, _ := prop.Atom(2)
		switch key {
		case "Reference":
			fp.Reference = value
		case "Value":
			fp.Value = value
		}
	}

	// KiCad 5: (fp_text reference "R1" ...) (fp_text value "10k" ...)
	for _, text := range node.FindAll("fp_text") {
		kind, _ := text.Atom(1)
		value, _ := text.Atom(2)
		switch {
		case kind == "reference" && fp.Reference == "":
			fp.Reference = value
		case kind == "value" && fp.Value == "":
			fp.Value = value
		}
	}

	for _, padNode := range node.FindAll("pad") {
		fp.Pads = append(fp.Pads, parsePad(padNode, netMap))
	}

	return fp
}

// parsePad extracts a pad's number and net
// Expected format: (pad "number" type shape (at x y) ... (net n "name"))
func parsePad(node *kicadsexp.List, netMap *NetMap) Pad {
	var pad Pad
	pad.Number, _ = node.Atom(1)
	pad.Type, _ = node.Atom(2)

	netNode, ok := node.Find("net")
	if !ok {
		return pad
	}
	if num, ok := netNode.Int(1); ok {
		if name, ok := netNode.Atom(2); ok {
			pad.Net = name
		} else {
			pad.Net = netMap.Name(num)
		}
		if num == 0 {
			pad.Net = ""
		}
		return pad
	}
	// KiCad 9 boards may name the net without a number: (net "GND")
	pad.Net, _ = netNode.Atom(1)
	return pad
}
