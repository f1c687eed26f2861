// Package libtable builds the symbol library index from KiCad sym-lib-table
// files.
//
// A sym-lib-table maps logical library names to library files:
//
//	(sym_lib_table
//	  (lib (name MyLib)(type Legacy)(uri ${KIPRJMOD}/mylib.lib)(options "")(descr ""))
//	)
//
// Tables are read line by line. The global table is loaded first and the
// board-local one second, so local entries override global ones. Names are
// case-insensitive: they are lowercased when stored and when looked up.
//
// After the tables, the board's own cache and rescue libraries
// (<board>-cache.lib, <board>-rescue.lib next to the board file) are added
// when they exist on disk. They never replace an entry that a table
// declared under the same name.
package libtable

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// SourceSynthesized marks entries that were not read from a table file.
const SourceSynthesized = "<board>"

var tableEntryRe = regexp.MustCompile(`\(\s*lib\s+\(\s*name\s+([^)]+)\).*\(\s*uri\s+([^)]+)\)`)

// Entry is one library registration.
type Entry struct {
	Name   string // lowercased library name
	URI    string // library file location with environment variables expanded
	Source string // table file the entry came from, or SourceSynthesized
}

// Index is a case-insensitive library name to file table.
type Index struct {
	entries map[string]Entry
}

// New creates an empty index.
func New() *Index {
	return &Index{entries: make(map[string]Entry)}
}

// Set registers name, replacing any existing entry with the same lowercased name.
func (ix *Index) Set(name, uri, source string) {
	key := strings.ToLower(name)
	ix.entries[key] = Entry{Name: key, URI: uri, Source: source}
}

// Lookup returns the file registered for name.
func (ix *Index) Lookup(name string) (string, bool) {
	e, ok := ix.entries[strings.ToLower(name)]
	return e.URI, ok
}

// Entry returns the full registration for name.
func (ix *Index) Entry(name string) (Entry, bool) {
	e, ok := ix.entries[strings.ToLower(name)]
	return e, ok
}

// Len returns the number of registered libraries.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Entries returns all registrations sorted by name.
func (ix *Index) Entries() []Entry {
	out := make([]Entry, 0, len(ix.entries))
	for _, e := range ix.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ReadTable adds every (lib ...) line found in r and returns how many were read.
func (ix *Index) ReadTable(r io.Reader, source string) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	count := 0
	for scanner.Scan() {
		m := tableEntryRe.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		name := unquote(m[1])
		if name == "" {
			continue
		}
		ix.Set(name, ExpandEnv(unquote(m[2])), source)
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, fmt.Errorf("libtable: read %s: %w", source, err)
	}
	return count, nil
}

// LoadFile reads one table file into the index.
func (ix *Index) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("libtable: %w", err)
	}
	defer f.Close()

	_, err = ix.ReadTable(f, path)
	return err
}

// Board locates the board whose cache and rescue libraries are indexed.
type Board struct {
	Dir  string // directory holding the board file
	Name string // board file name without extension
}

// BoardFromFile derives the Board for a .kicad_pcb (or any design) path.
func BoardFromFile(path string) Board {
	if path == "" {
		return Board{}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	base := filepath.Base(abs)
	return Board{
		Dir:  filepath.Dir(abs),
		Name: strings.TrimSuffix(base, filepath.Ext(base)),
	}
}

// AddBoardLibraries registers <name>-cache and <name>-rescue when their .lib
// files exist next to the board. Names already in the index are left alone.
// It returns the names that were added.
func (ix *Index) AddBoardLibraries(b Board) []string {
	if b.Name == "" {
		return nil
	}

	var added []string
	for _, suffix := range []string{"-cache", "-rescue"} {
		name := b.Name + suffix
		if _, exists := ix.Entry(name); exists {
			continue
		}
		file := filepath.Join(b.Dir, name+".lib")
		if info, err := os.Stat(file); err != nil || info.IsDir() {
			continue
		}
		ix.Set(name, file, SourceSynthesized)
		added = append(added, strings.ToLower(name))
	}
	return added
}

// Load reads the table files in order (later files override earlier ones)
// and then adds the board's cache/rescue libraries.
func Load(files []string, b Board) (*Index, error) {
	ix := New()
	for _, file := range files {
		if err := ix.LoadFile(file); err != nil {
			return nil, err
		}
	}
	ix.AddBoardLibraries(b)
	return ix, nil
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return s
}

var envRefRe = regexp.MustCompile(`\$(\w+|\{[^}]*\})`)

// ExpandEnv substitutes $VAR and ${VAR} references with their environment
// values. References to unset variables are left untouched.
func ExpandEnv(s string) string {
	return envRefRe.ReplaceAllStringFunc(s, func(ref string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(ref[1:], "{"), "}")
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		return ref
	})
}
