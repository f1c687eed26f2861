package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/OpenTraceLab/padpainter/pkg/kicad/pcb"
	"github.com/OpenTraceLab/padpainter/pkg/padfilter"
	"github.com/OpenTraceLab/padpainter/pkg/partmodel"
)

// selectReport is the structured form of a select run.
type selectReport struct {
	Matches []padfilter.Match       `json:"matches" yaml:"matches"`
	NoPin   []padfilter.PadIdentity `json:"no_pin,omitempty" yaml:"no_pin,omitempty"`
	Errors  []string                `json:"errors,omitempty" yaml:"errors,omitempty"`
}

func newSelectReport(res padfilter.Result) selectReport {
	r := selectReport{Matches: res.Matches, NoPin: res.NoPin}
	if r.Matches == nil {
		r.Matches = []padfilter.Match{}
	}
	for _, e := range res.Errors {
		r.Errors = append(r.Errors, e.Error())
	}
	return r
}

// writeStructured encodes v as json or yaml.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
	}
}

func renderMatches(w io.Writer, format string, res padfilter.Result) error {
	if format != "table" {
		return writeStructured(w, format, newSelectReport(res))
	}

	if len(res.Matches) == 0 {
		_, _ = fmt.Fprintln(w, "(0 pads)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Pad", "Pin Name", "Unit", "Function", "Net", "State"})
	for _, m := range res.Matches {
		t.AppendRow(table.Row{m.String(), m.Pin.Name, m.Pin.Unit, m.Pin.Function, m.Net, m.State})
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d pads)\n", len(res.Matches))
	return nil
}

// renderParts shows the part model. Board is optional and adds the placed
// footprint and value of each part to the table.
func renderParts(w io.Writer, format string, model *partmodel.Model, board *pcb.Board) error {
	if format != "table" {
		return writeStructured(w, format, model.List())
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Ref", "Footprint", "Value", "Library", "Symbol", "Status", "Pins", "Units", "File"})
	for _, p := range model.List() {
		var footprint, value string
		if board != nil {
			if fp, ok := board.Footprint(p.Reference); ok {
				footprint, value = fp.ID(), fp.Value
			}
		}
		t.AppendRow(table.Row{
			p.Reference, footprint, value, p.Library, p.Symbol, p.Status,
			len(p.Pins), strings.Join(p.UnitList(), ","), p.ResolvedFile,
		})
	}
	t.Render()

	if len(model.Issues) > 0 {
		_, _ = fmt.Fprintln(w)
		for _, issue := range model.Issues {
			_, _ = fmt.Fprintf(w, "%s: %v\n", issue.Severity, issue)
		}
	}
	return nil
}

func renderUnits(w io.Writer, format string, units []string) error {
	if format != "table" {
		if units == nil {
			units = []string{}
		}
		return writeStructured(w, format, units)
	}
	for _, u := range units {
		_, _ = fmt.Fprintln(w, u)
	}
	return nil
}
