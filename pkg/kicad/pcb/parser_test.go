package pcb

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const kicad6Board = `(kicad_pcb (version 20221018) (generator pcbnew)
  (net 0 "")
  (net 1 "GND")
  (net 2 "Net-(R1-Pad2)")
  (footprint "Resistor_SMD:R_0603_1608Metric" (layer "F.Cu")
    (at 100 50)
    (property "Reference" "R1")
    (property "Value" "10k")
    (pad "1" smd roundrect (at -0.8 0) (size 0.8 0.95) (layers "F.Cu") (net 1 "GND"))
    (pad "2" smd roundrect (at 0.8 0) (size 0.8 0.95) (layers "F.Cu") (net 2 "Net-(R1-Pad2)"))
  )
  (footprint "Package_SO:SOIC-8" (layer "F.Cu")
    (at 120 50)
    (property "Reference" "U1")
    (pad "1" smd rect (at 0 0) (size 1 1) (layers "F.Cu") (net 2))
    (pad "2" smd rect (at 0 1) (size 1 1) (layers "F.Cu"))
    (pad "" np_thru_hole circle (at 2 2) (size 3 3) (drill 3) (layers "*.Cu"))
  )
)
`

const kicad5Board = `(kicad_pcb (version 20171130) (host pcbnew "(5.1.9)")
  (net 0 "")
  (net 1 VCC)
  (module Capacitor_SMD:C_0805 (layer F.Cu) (tedit 5F68FEEF) (tstamp 5E1C2A3B)
    (at 80 40)
    (fp_text reference C3 (at 0 -1.5) (layer F.SilkS))
    (fp_text value 100n (at 0 1.5) (layer F.Fab))
    (pad 1 smd roundrect (at -1 0) (size 1 1.4) (layers F.Cu) (net 1 VCC))
    (pad 2 smd roundrect (at 1 0) (size 1 1.4) (layers F.Cu) (net 0 ""))
  )
)
`

func TestParseKiCad6Board(t *testing.T) {
	board, err := Parse(strings.NewReader(kicad6Board))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if board.Version != 20221018 || board.Generator != "pcbnew" {
		t.Errorf("header = %d %q", board.Version, board.Generator)
	}
	if len(board.Nets) != 3 {
		t.Errorf("got %d nets, want 3", len(board.Nets))
	}
	if len(board.Footprints) != 2 {
		t.Fatalf("got %d footprints, want 2", len(board.Footprints))
	}

	r1 := board.Footprints[0]
	if r1.Reference != "R1" || r1.Value != "10k" {
		t.Errorf("R1 = %+v", r1)
	}
	if r1.Library != "Resistor_SMD" || r1.Name != "R_0603_1608Metric" {
		t.Errorf("R1 footprint id = %q:%q", r1.Library, r1.Name)
	}
	if len(r1.Pads) != 2 || r1.Pads[0].Net != "GND" || r1.Pads[1].Net != "Net-(R1-Pad2)" {
		t.Errorf("R1 pads = %+v", r1.Pads)
	}

	u1, ok := board.Footprint("U1")
	if !ok {
		t.Fatal("U1 not found")
	}
	// net given by number only resolves through the net table
	if u1.Pads[0].Net != "Net-(R1-Pad2)" {
		t.Errorf("U1.1 net = %q", u1.Pads[0].Net)
	}
	if u1.Pads[1].Net != "" {
		t.Errorf("U1.2 net = %q, want unconnected", u1.Pads[1].Net)
	}
}

func TestParseKiCad5Board(t *testing.T) {
	board, err := Parse(strings.NewReader(kicad5Board))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if board.Generator != "pcbnew" {
		t.Errorf("generator = %q", board.Generator)
	}
	if len(board.Footprints) != 1 {
		t.Fatalf("got %d footprints, want 1", len(board.Footprints))
	}
	c3 := board.Footprints[0]
	if c3.Reference != "C3" || c3.Value != "100n" {
		t.Errorf("C3 = %+v", c3)
	}
	if c3.Pads[0].Number != "1" || c3.Pads[0].Net != "VCC" {
		t.Errorf("C3.1 = %+v", c3.Pads[0])
	}
	if c3.Pads[1].Net != "" {
		t.Errorf("C3.2 net = %q, want unconnected", c3.Pads[1].Net)
	}
}

func TestFootprintIDAndMechanicalPads(t *testing.T) {
	board, err := Parse(strings.NewReader(kicad6Board))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	u1, _ := board.Footprint("U1")
	if got := u1.ID(); got != "Package_SO:SOIC-8" {
		t.Errorf("ID() = %q", got)
	}
	if u1.Pads[0].Mechanical() || !u1.Pads[2].Mechanical() {
		t.Errorf("Mechanical() wrong for %+v", u1.Pads)
	}

	bare := Footprint{Name: "TestPoint"}
	if got := bare.ID(); got != "TestPoint" {
		t.Errorf("ID() without library = %q", got)
	}
}

func TestNameOnlyNet(t *testing.T) {
	board, err := Parse(strings.NewReader(`(kicad_pcb (version 20240108)
  (footprint "X" (property "Reference" "J1") (pad "1" thru_hole circle (net "SIG"))))`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := board.Footprints[0].Pads[0].Net; got != "SIG" {
		t.Errorf("net = %q, want SIG", got)
	}
}

func TestReferencesAndPads(t *testing.T) {
	board, err := Parse(strings.NewReader(kicad6Board))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	refs := board.References()
	if len(refs) != 2 || refs[0] != "R1" || refs[1] != "U1" {
		t.Errorf("References() = %v", refs)
	}

	var pads []string
	board.EachPad(func(fp *Footprint, pad *Pad) {
		pads = append(pads, fp.Reference+"."+pad.Number)
	})
	want := "R1.1 R1.2 U1.1 U1.2"
	if got := strings.Join(pads, " "); got != want {
		t.Errorf("EachPad() = %q, want %q", got, want)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"wrong root", "(kicad_sch (version 20211014))"},
		{"unbalanced", "(kicad_pcb (version 1)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tt.input)); err == nil {
				t.Error("Parse() error = nil, want error")
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.kicad_pcb")
	if err := os.WriteFile(path, []byte(kicad6Board), 0o644); err != nil {
		t.Fatal(err)
	}
	board, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if len(board.Footprints) != 2 {
		t.Errorf("got %d footprints", len(board.Footprints))
	}

	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.kicad_pcb")); err == nil {
		t.Error("ParseFile() on missing file succeeded")
	}
}
