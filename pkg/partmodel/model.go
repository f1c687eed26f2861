// Package partmodel joins netlist associations, the symbol library index and
// legacy symbol definitions into a per-reference pin model.
//
// Every requested reference ends up in the model, whatever happens to it.
// Parts that could not be fully resolved carry a Status other than Resolved
// and empty Pins/Units, so pad filtering simply finds nothing for them. The
// reasons are collected as Issues instead of being returned as errors.
//
// A model is a snapshot: build a new one for every refresh.
package partmodel

import (
	"encoding/json"
	"sort"

	"github.com/OpenTraceLab/padpainter/pkg/kicad/legacylib"
)

// PartSymbol is the pin model of one part reference.
type PartSymbol struct {
	Reference string
	Library   string
	Symbol    string

	// ResolvedFile is the library file, or "" when the library name has
	// no index entry (or no library was declared).
	ResolvedFile string

	Status Status

	Pins  map[string]legacylib.Pin
	Units map[string]struct{}
}

func newPartSymbol(ref string) PartSymbol {
	return PartSymbol{
		Reference: ref,
		Pins:      make(map[string]legacylib.Pin),
		Units:     make(map[string]struct{}),
	}
}

// HasFile reports whether the part's library was located.
func (p PartSymbol) HasFile() bool {
	return p.ResolvedFile != ""
}

// Pin looks up a pin by number.
func (p PartSymbol) Pin(number string) (legacylib.Pin, bool) {
	pin, ok := p.Pins[number]
	return pin, ok
}

// UnitList returns the part's unit tags sorted.
func (p PartSymbol) UnitList() []string {
	return sortedKeys(p.Units)
}

// partSymbolDoc is the encoded form of a PartSymbol, with units as a
// sorted list.
type partSymbolDoc struct {
	Reference    string                   `json:"reference" yaml:"reference"`
	Library      string                   `json:"library" yaml:"library"`
	Symbol       string                   `json:"symbol" yaml:"symbol"`
	ResolvedFile string                   `json:"file,omitempty" yaml:"file,omitempty"`
	Status       Status                   `json:"status" yaml:"status"`
	Units        []string                 `json:"units" yaml:"units"`
	Pins         map[string]legacylib.Pin `json:"pins" yaml:"pins"`
}

func (p PartSymbol) doc() partSymbolDoc {
	units := p.UnitList()
	if units == nil {
		units = []string{}
	}
	return partSymbolDoc{
		Reference:    p.Reference,
		Library:      p.Library,
		Symbol:       p.Symbol,
		ResolvedFile: p.ResolvedFile,
		Status:       p.Status,
		Units:        units,
		Pins:         p.Pins,
	}
}

// MarshalJSON encodes the part with its units as a sorted list.
func (p PartSymbol) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.doc())
}

// MarshalYAML implements yaml.Marshaler the same way.
func (p PartSymbol) MarshalYAML() (interface{}, error) {
	return p.doc(), nil
}

// Source records which files a model was built from.
type Source struct {
	Netlist string   `json:"netlist" yaml:"netlist"`
	Tables  []string `json:"tables" yaml:"tables"`
}

// Model maps part references to their pin models.
type Model struct {
	Parts  map[string]PartSymbol
	Order  []string // references in request order
	Issues []Issue
	Source Source
}

func newModel() *Model {
	return &Model{Parts: make(map[string]PartSymbol)}
}

// Part returns the entry for ref.
func (m *Model) Part(ref string) (PartSymbol, bool) {
	p, ok := m.Parts[ref]
	return p, ok
}

// List returns the parts in request order.
func (m *Model) List() []PartSymbol {
	out := make([]PartSymbol, 0, len(m.Order))
	for _, ref := range m.Order {
		out = append(out, m.Parts[ref])
	}
	return out
}

// Units returns the sorted union of unit tags of the given references, or
// of every part when none are given. Unknown references are ignored.
func (m *Model) Units(refs ...string) []string {
	if len(refs) == 0 {
		refs = m.Order
	}
	units := make(map[string]struct{})
	for _, ref := range refs {
		for u := range m.Parts[ref].Units {
			units[u] = struct{}{}
		}
	}
	return sortedKeys(units)
}

// Count returns how many parts have the given status.
func (m *Model) Count(status Status) int {
	n := 0
	for _, p := range m.Parts {
		if p.Status == status {
			n++
		}
	}
	return n
}

func (m *Model) add(p PartSymbol, issues ...Issue) {
	if _, dup := m.Parts[p.Reference]; !dup {
		m.Order = append(m.Order, p.Reference)
	}
	m.Parts[p.Reference] = p
	m.Issues = append(m.Issues, issues...)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
