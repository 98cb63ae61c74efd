package table

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ReadXLSXFile reads one sheet of an .xlsx workbook into a Table.
// If sheetName is empty and sheetIndex <= 0, the first sheet is used.
// sheetIndex is 1-based (Sheet1 == 1).
func ReadXLSXFile(path string, sheetName string, sheetIndex int) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &IngestionError{Table: filepath.Base(path), Err: fmt.Errorf("read xlsx: %w", err)}
	}
	return ReadXLSX(b, filepath.Base(path), sheetName, sheetIndex)
}

// ReadXLSX parses workbook bytes. Numeric cells become float64, boolean cells
// bool, text cells string and blank or error cells missing.
func ReadXLSX(data []byte, name string, sheetName string, sheetIndex int) (*Table, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, ingestErr(name, "open xlsx: %w", err)
	}
	sheets := parseWorkbook(readZipFile(zr, "xl/workbook.xml"))
	rels := parseRelationships(readZipFile(zr, "xl/_rels/workbook.xml.rels"))

	target := ""
	if sheetName != "" {
		for _, s := range sheets {
			if strings.EqualFold(s.Name, sheetName) {
				if rel, ok := rels[s.RID]; ok {
					target = normalizeRelPath(rel)
				}
				break
			}
		}
		if target == "" {
			available := make([]string, len(sheets))
			for i, s := range sheets {
				available[i] = s.Name
			}
			return nil, ingestErr(name, "sheet '%s' not found; available sheets: %s", sheetName, strings.Join(available, ", "))
		}
	}
	if target == "" {
		idx := sheetIndex
		if idx <= 0 {
			idx = 1
		}
		// sheetId is not guaranteed to be positional, so prefer document order
		if idx <= len(sheets) {
			if rel, ok := rels[sheets[idx-1].RID]; ok {
				target = normalizeRelPath(rel)
			}
		}
		if target == "" {
			target = "xl/worksheets/sheet" + strconv.Itoa(idx) + ".xml"
		}
	}
	sheetXML := readZipFile(zr, target)
	if sheetXML == nil {
		return nil, ingestErr(name, "worksheet %s missing from workbook", target)
	}

	rr := newSheetRowReader(sheetXML, parseSharedStrings(readZipFile(zr, "xl/sharedStrings.xml")))
	headerCells, ok := rr.Next()
	if !ok {
		return nil, ingestErr(name, "sheet has no rows")
	}
	header := make([]string, len(headerCells))
	for i, c := range headerCells {
		header[i] = Text(c)
	}
	if blankHeader(header) {
		return nil, ingestErr(name, "header row is blank")
	}
	var rows [][]any
	for {
		row, ok := rr.Next()
		if !ok {
			break
		}
		empty := true
		for _, c := range row {
			if c != nil {
				empty = false
				break
			}
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	t := New(name, header, rows)
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

type wbSheet struct {
	Name    string
	SheetID int
	RID     string
}

// parseWorkbook extracts sheet entries with names and relationship ids.
func parseWorkbook(data []byte) []wbSheet {
	if len(data) == 0 {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var sheets []wbSheet
	for {
		tok, err := dec.Token()
		if err != nil {
			return sheets
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "sheet" {
			continue
		}
		var s wbSheet
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "name":
				s.Name = a.Value
			case "sheetId":
				s.SheetID, _ = strconv.Atoi(a.Value)
			case "id":
				s.RID = a.Value // in r: namespace
			}
		}
		sheets = append(sheets, s)
	}
}

// parseRelationships returns map[r:id]Target.
func parseRelationships(data []byte) map[string]string {
	out := map[string]string{}
	if len(data) == 0 {
		return out
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Relationship" {
			continue
		}
		var id, target string
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "Id":
				id = a.Value
			case "Target":
				target = a.Value
			}
		}
		if id != "" && target != "" {
			out[id] = target
		}
	}
}

func readZipFile(zr *zip.Reader, name string) []byte {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil
		}
		defer rc.Close()
		b, err := io.ReadAll(rc)
		if err != nil {
			return nil
		}
		return b
	}
	return nil
}

func parseSharedStrings(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var out []string
	var buf strings.Builder
	var inT bool
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "si" {
				buf.Reset()
			}
			if se.Name.Local == "t" {
				inT = true
			}
		case xml.EndElement:
			if se.Name.Local == "t" {
				inT = false
			}
			if se.Name.Local == "si" {
				out = append(out, buf.String())
				buf.Reset()
			}
		case xml.CharData:
			if inT {
				buf.Write(se)
			}
		}
	}
}

// sheetRowReader streams typed rows out of a worksheet part.
type sheetRowReader struct {
	dec    *xml.Decoder
	shared []string
	inRow  bool
	curRow []any
}

func newSheetRowReader(data []byte, shared []string) *sheetRowReader {
	return &sheetRowReader{dec: xml.NewDecoder(bytes.NewReader(data)), shared: shared}
}

func (r *sheetRowReader) Next() ([]any, bool) {
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, false
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "row" {
				r.inRow = true
				r.curRow = nil
			}
			if r.inRow && se.Name.Local == "c" {
				var rAttr, tAttr string
				for _, a := range se.Attr {
					switch a.Name.Local {
					case "r":
						rAttr = a.Value
					case "t":
						tAttr = a.Value
					}
				}
				colIdx := len(r.curRow)
				if i := colIndexFromRef(rAttr); i >= 0 {
					colIdx = i
				}
				val := r.readCellValue(tAttr)
				if len(r.curRow) <= colIdx {
					tmp := make([]any, colIdx+1)
					copy(tmp, r.curRow)
					r.curRow = tmp
				}
				r.curRow[colIdx] = val
			}
		case xml.EndElement:
			if se.Name.Local == "row" {
				r.inRow = false
				return r.curRow, true
			}
		}
	}
}

func (r *sheetRowReader) readCellValue(tAttr string) any {
	var raw string
	var seen bool
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return nil
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "v" || se.Name.Local == "t" {
				var sb strings.Builder
				for {
					tk, er := r.dec.Token()
					if er != nil {
						break
					}
					if ed, ok := tk.(xml.EndElement); ok && (ed.Name.Local == "v" || ed.Name.Local == "t") {
						break
					}
					if ch, ok := tk.(xml.CharData); ok {
						sb.Write(ch)
					}
				}
				raw = sb.String()
				seen = true
			}
		case xml.EndElement:
			if se.Name.Local == "c" {
				if !seen {
					return nil
				}
				return r.typedValue(tAttr, raw)
			}
		}
	}
}

func (r *sheetRowReader) typedValue(tAttr, raw string) any {
	switch tAttr {
	case "s":
		idx, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || idx < 0 || idx >= len(r.shared) {
			return nil
		}
		return textCell(r.shared[idx])
	case "b":
		return strings.TrimSpace(raw) == "1"
	case "e":
		return nil
	case "str", "inlineStr":
		return textCell(raw)
	default:
		if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return f
		}
		return textCell(raw)
	}
}

// colIndexFromRef maps refs like "C12" to a 0-based column index.
func colIndexFromRef(ref string) int {
	idx := 0
	for i := 0; i < len(ref); i++ {
		c := ref[i]
		switch {
		case c >= 'A' && c <= 'Z':
			idx = idx*26 + int(c-'A'+1)
		case c >= 'a' && c <= 'z':
			idx = idx*26 + int(c-'a'+1)
		default:
			return idx - 1
		}
	}
	return idx - 1
}

// normalizeRelPath converts relationship Target paths to ZIP entry names.
// Targets may be absolute ("/xl/worksheets/sheet1.xml") or relative to xl/.
func normalizeRelPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return "xl/" + rel
}
