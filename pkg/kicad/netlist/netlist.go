// Package netlist extracts part-to-symbol associations from KiCad netlist
// (.net) files.
//
// Only two kinds of lines matter:
//
//	(comp (ref R1)
//	  (libsource (lib Device) (part R) (description "Resistor"))
//
// A comp line opens a reference; the next libsource line attaches its
// library and symbol to that reference and closes it. The pairing is
// positional, so the scanner carries the open reference explicitly and a
// libsource line with no open reference is ignored instead of being
// attributed to a stale one.
package netlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	compRefRe   = regexp.MustCompile(`\(\s*comp\s+\(\s*ref\s+"?([^\s()"]+)"?\s*\)`)
	libSourceRe = regexp.MustCompile(`\(\s*libsource\s+\(\s*lib\s+"?([^)"]*?)"?\s*\)\s*\(\s*part\s+"?([^)"]*?)"?\s*\)`)
)

// Association ties a part reference to the library symbol it was drawn
// from. Library and Symbol are empty when the netlist never declared them.
type Association struct {
	Reference string `json:"reference" yaml:"reference"`
	Library   string `json:"library" yaml:"library"` // lowercased
	Symbol    string `json:"symbol" yaml:"symbol"`
}

// HasLibrary reports whether a libsource line was attached.
func (a Association) HasLibrary() bool {
	return a.Library != ""
}

// Netlist holds the associations found in one netlist scan.
type Netlist struct {
	Parts map[string]Association

	// Order lists references in the order they first appeared.
	Order []string

	// Orphaned counts libsource lines seen with no open reference.
	Orphaned int
}

// Lookup returns the association for ref.
func (n *Netlist) Lookup(ref string) (Association, bool) {
	a, ok := n.Parts[ref]
	return a, ok
}

// References returns every reference in netlist order.
func (n *Netlist) References() []string {
	out := make([]string, len(n.Order))
	copy(out, n.Order)
	return out
}

// ParseFile scans the netlist at path.
func ParseFile(path string) (*Netlist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("netlist: %w", err)
	}
	defer f.Close()

	nl, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("netlist: %s: %w", path, err)
	}
	return nl, nil
}

// Parse scans netlist text from r.
func Parse(r io.Reader) (*Netlist, error) {
	nl := &Netlist{Parts: make(map[string]Association)}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	// Reference waiting for its libsource line; empty when none is open.
	var current string

	for scanner.Scan() {
		line := scanner.Text()

		if m := compRefRe.FindStringSubmatch(line); m != nil {
			current = m[1]
			if _, seen := nl.Parts[current]; !seen {
				nl.Order = append(nl.Order, current)
			}
			nl.Parts[current] = Association{Reference: current}
		}

		m := libSourceRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if current == "" {
			nl.Orphaned++
			continue
		}
		nl.Parts[current] = Association{
			Reference: current,
			Library:   strings.ToLower(strings.TrimSpace(m[1])),
			Symbol:    strings.TrimSpace(m[2]),
		}
		current = ""
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return nl, nil
}

// GuessFile returns the netlist that KiCad writes next to a board
// (<board>.net), or "" if there is none.
func GuessFile(boardFile string) string {
	if boardFile == "" {
		return ""
	}
	candidate := strings.TrimSuffix(boardFile, filepath.Ext(boardFile)) + ".net"
	if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
		return candidate
	}
	return ""
}
