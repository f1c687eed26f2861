package partmodel

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"

	"github.com/OpenTraceLab/padpainter/pkg/kicad/legacylib"
	"github.com/OpenTraceLab/padpainter/pkg/kicad/libtable"
	"github.com/OpenTraceLab/padpainter/pkg/kicad/netlist"
)

// memLibraries serves library files from memory, keyed by path.
type memLibraries map[string]string

func (m memLibraries) ReadSymbol(path, symbol string) (*legacylib.Definition, error) {
	text, ok := m[path]
	if !ok {
		return nil, errors.New("open " + path + ": no such file")
	}
	return legacylib.ScanSymbol(strings.NewReader(text), symbol)
}

const testLib = `EESchema-LIBRARY Version 2.4
DEF RES R 0 0 N Y 1 F N
DRAW
X 1 1 0 0 100 R 50 50 1 1 P N
ENDDRAW
ENDDEF
DEF DUAL U 0 0 Y Y 2 F N
DRAW
X A 1 0 0 100 R 50 50 1 1 I
X B 2 0 0 100 R 50 50 1 1 O
X C 3 0 0 100 R 50 50 2 1 B
X D 4 0 0
ENDDRAW
ENDDEF
`

const testNetlist = `(export (version D)
  (components
    (comp (ref R1)
      (libsource (lib MyLib) (part RES)))
    (comp (ref U1)
      (libsource (lib mylib) (part DUAL)))
    (comp (ref J1)
      (value CONN))
    (comp (ref X1)
      (libsource (lib Unknown) (part THING)))
    (comp (ref Q1)
      (libsource (lib mylib) (part NOPE)))
    (comp (ref F1)
      (libsource (lib gone) (part FUSE)))
  ))
`

func newTestBuilder(t *testing.T, logger *zap.Logger) *Builder {
	t.Helper()

	index := libtable.New()
	index.Set("MyLib", "/libs/mylib.lib", "test")
	index.Set("gone", "/libs/gone.lib", "test")

	nl, err := netlist.Parse(strings.NewReader(testNetlist))
	require.NoError(t, err)

	return NewBuilder(index, nl, memLibraries{"/libs/mylib.lib": testLib}, logger)
}

func TestBuildResolvedPart(t *testing.T) {
	m := newTestBuilder(t, nil).Build([]string{"R1"})

	r1, ok := m.Part("R1")
	require.True(t, ok)
	assert.Equal(t, Resolved, r1.Status)
	assert.Equal(t, "mylib", r1.Library)
	assert.Equal(t, "RES", r1.Symbol)
	assert.Equal(t, "/libs/mylib.lib", r1.ResolvedFile)
	assert.Equal(t, map[string]legacylib.Pin{
		"1": {Number: "1", Name: "1", Unit: "1", Function: legacylib.Passive},
	}, r1.Pins)
	assert.Equal(t, []string{"1"}, r1.UnitList())
	assert.Empty(t, m.Issues)
}

func TestBuildMultiUnitPart(t *testing.T) {
	m := newTestBuilder(t, nil).Build([]string{"U1"})

	u1, _ := m.Part("U1")
	assert.Equal(t, Resolved, u1.Status)
	assert.Len(t, u1.Pins, 3)
	assert.Equal(t, []string{"1", "2"}, u1.UnitList())

	require.Len(t, m.Issues, 1)
	assert.ErrorIs(t, m.Issues[0], ErrMalformedPinRecord)
	assert.Equal(t, Warning, m.Issues[0].Severity)
}

func TestBuildEveryFailureKind(t *testing.T) {
	refs := []string{"R1", "J1", "X1", "Q1", "F1", "MISSING"}
	m := newTestBuilder(t, nil).Build(refs)

	assert.Equal(t, refs, m.Order)

	want := map[string]Status{
		"R1":      Resolved,
		"J1":      NoLibrary,
		"X1":      LibraryNotRegistered,
		"Q1":      PartDefinitionNotFound,
		"F1":      IOFailure,
		"MISSING": ReferenceNotFound,
	}
	for ref, status := range want {
		p, ok := m.Part(ref)
		require.True(t, ok, ref)
		assert.Equal(t, status, p.Status, ref)
		if status != Resolved {
			assert.Empty(t, p.Pins, ref)
			assert.Empty(t, p.Units, ref)
			assert.NotNil(t, p.Pins, ref)
		}
	}

	x1, _ := m.Part("X1")
	assert.False(t, x1.HasFile())

	issues := make(map[string]Issue)
	for _, is := range m.Issues {
		issues[is.Reference] = is
	}
	assert.NotContains(t, issues, "J1")
	assert.ErrorIs(t, issues["X1"], ErrLibraryNotRegistered)
	assert.ErrorIs(t, issues["Q1"], ErrPartDefinitionNotFound)
	assert.ErrorIs(t, issues["F1"], ErrIO)
	assert.ErrorIs(t, issues["MISSING"], ErrReferenceNotFound)
	assert.Equal(t, Error, issues["MISSING"].Severity)
	assert.Equal(t, Warning, issues["X1"].Severity)
}

func TestMissingReferenceDoesNotAffectOthers(t *testing.T) {
	m := newTestBuilder(t, nil).Build([]string{"NOPE", "R1"})

	r1, _ := m.Part("R1")
	assert.Equal(t, Resolved, r1.Status)
	assert.Len(t, r1.Pins, 1)

	require.Len(t, m.Issues, 1)
	assert.Equal(t, "NOPE", m.Issues[0].Reference)
}

func TestBuildDropsBlankAndDuplicateRefs(t *testing.T) {
	m := newTestBuilder(t, nil).Build([]string{" R1 ", "", "R1", "U1"})
	assert.Equal(t, []string{"R1", "U1"}, m.Order)
	assert.Len(t, m.List(), 2)
}

func TestModelUnits(t *testing.T) {
	m := newTestBuilder(t, nil).Build([]string{"R1", "U1", "J1"})

	assert.Equal(t, []string{"1", "2"}, m.Units())
	assert.Equal(t, []string{"1"}, m.Units("R1"))
	assert.Empty(t, m.Units("J1", "unknown"))
}

func TestPartSymbolEncodesUnits(t *testing.T) {
	m := newTestBuilder(t, nil).Build([]string{"U1"})
	u1, ok := m.Part("U1")
	require.True(t, ok)

	data, err := json.Marshal(u1)
	require.NoError(t, err)
	var decoded struct {
		Reference string   `json:"reference"`
		Status    string   `json:"status"`
		Units     []string `json:"units"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "U1", decoded.Reference)
	assert.Equal(t, "resolved", decoded.Status)
	assert.Equal(t, []string{"1", "2"}, decoded.Units)

	out, err := yaml.Marshal(u1)
	require.NoError(t, err)
	assert.Contains(t, string(out), "units:\n    - \"1\"\n    - \"2\"")
}

func TestDefinitionNotFoundIsWarned(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	m := newTestBuilder(t, zap.New(core)).Build([]string{"Q1", "X1"})

	assert.Equal(t, 2, m.Count(PartDefinitionNotFound)+m.Count(LibraryNotRegistered))
	assert.Equal(t, 1, logs.FilterMessage("symbol definition not found").Len())
	assert.Equal(t, 1, logs.FilterMessage("library not registered").Len())
}

func TestBuildIsIdempotent(t *testing.T) {
	b := newTestBuilder(t, nil)
	refs := []string{"R1", "U1", "J1", "MISSING"}

	first := b.Build(refs)
	second := b.Build(refs)
	assert.Equal(t, first.Parts, second.Parts)
	assert.Equal(t, first.Order, second.Order)
	assert.Equal(t, len(first.Issues), len(second.Issues))
}
