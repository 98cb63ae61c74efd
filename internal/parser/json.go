package parser

import (
	"strings"

	"github.com/KaramelBytes/riskloom-cli/internal/table"
)

type jsonParser struct{}

func (jsonParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".json")
}

func (jsonParser) Parse(path string, _ Options) (*table.Table, error) {
	return table.ReadJSONFile(path)
}
