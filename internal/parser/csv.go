package parser

import (
	"strings"

	"github.com/KaramelBytes/riskloom-cli/internal/table"
)

type csvParser struct{}

func (csvParser) CanParse(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv")
}

func (csvParser) Parse(path string, opt Options) (*table.Table, error) {
	return table.ReadCSVFile(path, opt.Delimiter)
}
