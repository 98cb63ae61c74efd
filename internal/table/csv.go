package table

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ReadCSVFile reads a delimited file into a Table named after the file.
// If delim is 0 it is sniffed from the extension and the header line.
func ReadCSVFile(path string, delim rune) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &IngestionError{Table: filepath.Base(path), Err: fmt.Errorf("open csv: %w", err)}
	}
	if delim == 0 {
		delim = SniffDelimiter(path, b)
	}
	return ReadCSV(bytes.NewReader(b), filepath.Base(path), delim)
}

// ReadCSV reads a header row followed by records. Every cell is kept as text,
// except NA spellings which become missing.
func ReadCSV(r io.Reader, name string, delim rune) (*Table, error) {
	if delim == 0 {
		delim = ','
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comma = delim

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ingestErr(name, "empty file")
		}
		return nil, ingestErr(name, "read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	if blankHeader(header) {
		return nil, ingestErr(name, "header row is blank")
	}

	var rows [][]any
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, ingestErr(name, "read row %d: %w", len(rows)+1, err)
		}
		if blankRecord(rec) {
			continue
		}
		row := make([]any, len(header))
		for j := range header {
			if j < len(rec) {
				row[j] = textCell(rec[j])
			}
		}
		rows = append(rows, row)
	}
	t := New(name, header, rows)
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// SniffDelimiter picks ',' ';' or '\t' for a delimited file.
func SniffDelimiter(path string, content []byte) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	line, _ := bufio.NewReader(bytes.NewReader(content)).ReadString('\n')
	best, bestN := ',', strings.Count(line, ",")
	for _, d := range []rune{';', '\t'} {
		if n := strings.Count(line, string(d)); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}

func blankHeader(h []string) bool {
	for _, s := range h {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}

func blankRecord(rec []string) bool {
	for _, s := range rec {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}
