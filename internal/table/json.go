package table

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ReadJSONFile reads a JSON array of records into a Table named after the file.
func ReadJSONFile(path string) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &IngestionError{Table: filepath.Base(path), Err: fmt.Errorf("read json: %w", err)}
	}
	return ReadJSON(bytes.NewReader(b), filepath.Base(path))
}

// ReadJSON reads record-oriented rows: [{"col": value, ...}, ...].
// Columns are ordered by first appearance; keys absent from a record are missing.
func ReadJSON(r io.Reader, name string) (*Table, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, ingestErr(name, "decode records: %w", err)
	}
	var header []string
	index := map[string]int{}
	records := make([]map[string]any, 0, len(raw))
	for i, msg := range raw {
		keys, vals, err := decodeObject(msg)
		if err != nil {
			return nil, ingestErr(name, "record %d: %w", i+1, err)
		}
		for _, k := range keys {
			if _, ok := index[k]; !ok {
				index[k] = len(header)
				header = append(header, k)
			}
		}
		records = append(records, vals)
	}
	rows := make([][]any, len(records))
	for i, rec := range records {
		row := make([]any, len(header))
		for k, v := range rec {
			row[index[k]] = jsonCell(v)
		}
		rows[i] = row
	}
	t := New(name, header, rows)
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// decodeObject returns an object's keys in document order alongside its values.
func decodeObject(msg json.RawMessage) ([]string, map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(msg))
	// numbers keep their literal text so long integer ids stay distinct
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("expected object, got %v", tok)
	}
	var keys []string
	vals := map[string]any{}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		k, ok := kt.(string)
		if !ok {
			return nil, nil, fmt.Errorf("unexpected key %v", kt)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, nil, fmt.Errorf("value for %q: %w", k, err)
		}
		if _, dup := vals[k]; !dup {
			keys = append(keys, k)
		}
		vals[k] = v
	}
	return keys, vals, nil
}

func jsonCell(v any) any {
	switch x := v.(type) {
	case string:
		return textCell(x)
	case json.Number, bool, nil:
		return x
	default:
		// nested arrays/objects are kept as their JSON text
		b, err := json.Marshal(x)
		if err != nil {
			return nil
		}
		return string(b)
	}
}
