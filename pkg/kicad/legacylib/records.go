package legacylib

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// RecordLexer splits a library line into whitespace-separated fields.
// Legacy records are purely positional, so every non-blank run is a Field.
var RecordLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Field", Pattern: `[^\s]+`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// defHeader is the first line of a symbol definition.
// Example: DEF LM358 U 0 20 Y Y 2 F N
type defHeader struct {
	Name string   `"DEF" @Field`
	Rest []string `@Field*`
}

// aliasHeader lists additional names for the enclosing definition.
// Example: ALIAS LM2904 LM158
type aliasHeader struct {
	Names []string `"ALIAS" @Field+`
}

// pinRecord is a pin line inside the DRAW section.
// Example: X IN+ 3 -200 -100 100 R 50 50 1 1 I
type pinRecord struct {
	Name        string   `"X" @Field`
	Number      string   `@Field`
	PosX        string   `@Field`
	PosY        string   `@Field`
	Length      string   `@Field`
	Orientation string   `@Field`
	NumberSize  string   `@Field`
	NameSize    string   `@Field`
	Unit        string   `@Field`
	Convert     string   `@Field`
	Type        string   `@Field`
	Shape       []string `@Field*`
}

var (
	defParser   = buildRecordParser[defHeader]()
	aliasParser = buildRecordParser[aliasHeader]()
	pinParser   = buildRecordParser[pinRecord]()
)

func buildRecordParser[T any]() *participle.Parser[T] {
	return participle.MustBuild[T](
		participle.Lexer(RecordLexer),
		participle.Elide("Whitespace"),
	)
}

// hasKeyword reports whether line starts with kw followed by whitespace.
func hasKeyword(line, kw string) bool {
	if !strings.HasPrefix(line, kw) || len(line) == len(kw) {
		return false
	}
	c := line[len(kw)]
	return c == ' ' || c == '\t'
}

// namesSymbol reports whether a DEF or ALIAS line introduces symbol.
func namesSymbol(line, symbol string) bool {
	switch {
	case hasKeyword(line, "DEF"):
		rec, err := defParser.ParseString("", line)
		if err != nil {
			return false
		}
		// A leading '~' marks a symbol whose value field is hidden.
		return rec.Name == symbol || strings.TrimPrefix(rec.Name, "~") == symbol
	case hasKeyword(line, "ALIAS"):
		rec, err := aliasParser.ParseString("", line)
		if err != nil {
			return false
		}
		for _, name := range rec.Names {
			if name == symbol {
				return true
			}
		}
	}
	return false
}
