package partmodel

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/OpenTraceLab/padpainter/pkg/kicad/legacylib"
	"github.com/OpenTraceLab/padpainter/pkg/kicad/netlist"
)

// LibraryIndex resolves a library name to its file.
type LibraryIndex interface {
	Lookup(name string) (string, bool)
}

// Associations resolves a part reference to its netlist entry.
type Associations interface {
	Lookup(ref string) (netlist.Association, bool)
}

// SymbolReader reads a symbol definition from a library file.
type SymbolReader interface {
	ReadSymbol(path, symbol string) (*legacylib.Definition, error)
}

// Builder resolves part references into PartSymbols.
type Builder struct {
	index  LibraryIndex
	parts  Associations
	reader SymbolReader
	logger *zap.Logger
}

// NewBuilder creates a builder. A nil reader reads legacy library files
// from disk; a nil logger discards log output.
func NewBuilder(index LibraryIndex, parts Associations, reader SymbolReader, logger *zap.Logger) *Builder {
	if reader == nil {
		reader = legacylib.Reader{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		index:  index,
		parts:  parts,
		reader: reader,
		logger: logger,
	}
}

// Build resolves every reference in refs. Blank and repeated references are
// dropped; every other one appears in the result.
func (b *Builder) Build(refs []string) *Model {
	m := newModel()
	seen := make(map[string]bool)
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" || seen[ref] {
			continue
		}
		seen[ref] = true

		part, issues := b.resolve(ref)
		m.add(part, issues...)
	}

	b.logger.Debug("part model built",
		zap.Int("parts", len(m.Order)),
		zap.Int("resolved", m.Count(Resolved)),
		zap.Int("issues", len(m.Issues)))
	return m
}

func (b *Builder) resolve(ref string) (PartSymbol, []Issue) {
	part := newPartSymbol(ref)
	log := b.logger.With(zap.String("ref", ref))

	assoc, ok := b.parts.Lookup(ref)
	if !ok {
		part.Status = ReferenceNotFound
		log.Error("reference not found in netlist")
		return part, []Issue{{Reference: ref, Severity: Error, Err: ErrReferenceNotFound}}
	}
	part.Library = assoc.Library
	part.Symbol = assoc.Symbol

	if !assoc.HasLibrary() {
		part.Status = NoLibrary
		log.Debug("no library declared for part")
		return part, nil
	}

	file, ok := b.index.Lookup(assoc.Library)
	if !ok {
		part.Status = LibraryNotRegistered
		log.Warn("library not registered", zap.String("library", assoc.Library))
		return part, []Issue{{
			Reference: ref,
			Severity:  Warning,
			Err:       fmt.Errorf("%w: %q", ErrLibraryNotRegistered, assoc.Library),
		}}
	}
	part.ResolvedFile = file

	def, err := b.reader.ReadSymbol(file, assoc.Symbol)
	if err != nil {
		part.Status = IOFailure
		log.Error("library file unreadable", zap.String("file", file), zap.Error(err))
		return part, []Issue{{
			Reference: ref,
			Severity:  Error,
			Err:       fmt.Errorf("%w: %w", ErrIO, err),
		}}
	}

	var issues []Issue
	for _, bad := range def.Malformed {
		log.Warn("skipped malformed pin record",
			zap.String("file", file), zap.Int("line", bad.Line), zap.String("text", bad.Text))
		issues = append(issues, Issue{
			Reference: ref,
			Severity:  Warning,
			Err:       fmt.Errorf("%w: %s: %w", ErrMalformedPinRecord, file, bad),
		})
	}

	if !def.Complete() {
		part.Status = PartDefinitionNotFound
		reason := "not found"
		if def.Truncated {
			reason = "truncated"
		}
		log.Warn("symbol definition "+reason,
			zap.String("symbol", assoc.Symbol), zap.String("file", file))
		return part, append(issues, Issue{
			Reference: ref,
			Severity:  Warning,
			Err:       fmt.Errorf("%w: %q in %s (%s)", ErrPartDefinitionNotFound, assoc.Symbol, file, reason),
		})
	}

	part.Status = Resolved
	part.Pins = def.Pins
	part.Units = def.Units
	return part, issues
}
