package parser

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/riskloom-cli/internal/table"
)

// Options select how a file is read. Sheet fields apply to workbooks only;
// Delimiter applies to delimited text and is sniffed when zero.
type Options struct {
	SheetName  string
	SheetIndex int
	Delimiter  rune
}

// Parser defines a tabular file reader.
type Parser interface {
	CanParse(filename string) bool
	Parse(path string, opt Options) (*table.Table, error)
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

// ParseFile selects a parser based on filename and returns the raw table.
func ParseFile(path string, opt Options) (*table.Table, error) {
	for _, p := range registry {
		if p.CanParse(path) {
			return p.Parse(path, opt)
		}
	}
	return nil, &table.IngestionError{
		Table: filepath.Base(path),
		Err:   fmt.Errorf("%w: %s", ErrUnsupported, strings.ToLower(filepath.Ext(path))),
	}
}

// Supported reports whether any registered parser accepts filename.
func Supported(filename string) bool {
	for _, p := range registry {
		if p.CanParse(filename) {
			return true
		}
	}
	return false
}

func init() {
	// Register default parsers
	Register(csvParser{})
	Register(xlsxParser{})
	Register(jsonParser{})
}

// ErrUnsupported indicates a format is not supported yet.
var ErrUnsupported = errors.New("unsupported table format")
