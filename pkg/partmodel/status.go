package partmodel

import (
	"errors"
	"fmt"
)

// Status describes how far resolution got for one part.
type Status int

const (
	// Resolved: the symbol definition was found and read.
	Resolved Status = iota
	// NoLibrary: the netlist lists the reference without a libsource.
	NoLibrary
	// ReferenceNotFound: the reference is not in the netlist.
	ReferenceNotFound
	// LibraryNotRegistered: no sym-lib-table entry for the library.
	LibraryNotRegistered
	// PartDefinitionNotFound: the library file has no complete definition
	// for the symbol.
	PartDefinitionNotFound
	// IOFailure: the library file could not be read.
	IOFailure
)

func (s Status) String() string {
	switch s {
	case Resolved:
		return "resolved"
	case NoLibrary:
		return "no-library"
	case ReferenceNotFound:
		return "reference-not-found"
	case LibraryNotRegistered:
		return "library-not-registered"
	case PartDefinitionNotFound:
		return "definition-not-found"
	case IOFailure:
		return "io-failure"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// MarshalText renders the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Sentinel errors carried by Issues; test with errors.Is.
var (
	ErrReferenceNotFound      = errors.New("reference not found in netlist")
	ErrLibraryNotRegistered   = errors.New("library not registered in any sym-lib-table")
	ErrPartDefinitionNotFound = errors.New("symbol definition not found in library")
	ErrMalformedPinRecord     = errors.New("malformed pin record")
	ErrIO                     = errors.New("library file unreadable")
)

// Severity separates failures that lose a part from degraded results.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// MarshalText renders the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Issue is one per-reference problem found while building a model.
type Issue struct {
	Reference string
	Severity  Severity
	Err       error
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s: %v", i.Reference, i.Err)
}

func (i Issue) Unwrap() error {
	return i.Err
}
