package parser

import (
	"strings"

	"github.com/KaramelBytes/riskloom-cli/internal/table"
)

type xlsxParser struct{}

func (xlsxParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

// Parse reads the selected sheet; the first sheet when neither name nor index is set.
func (xlsxParser) Parse(path string, opt Options) (*table.Table, error) {
	idx := opt.SheetIndex
	if opt.SheetName == "" && idx <= 0 {
		idx = 1
	}
	return table.ReadXLSXFile(path, opt.SheetName, idx)
}
