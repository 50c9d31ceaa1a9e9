package importer

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Loris-rss/Research-Visbility-Checker/internal/collection"
)

// ReadJSON reads either an array of objects or a collection snapshot
// ({"name", "columns", "rows"}).
func ReadJSON(r io.Reader, name string) (*collection.Collection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return collection.New(name, nil), nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	if trimmed[0] == '{' {
		var snap struct {
			Columns []string         `json:"columns"`
			Rows    []map[string]any `json:"rows"`
		}
		if err := dec.Decode(&snap); err != nil {
			return nil, fmt.Errorf("parsing JSON object: %w", err)
		}
		c := collection.New(name, snap.Columns)
		for _, row := range snap.Rows {
			c.Append(ConvertNumbers(row))
		}
		return c, nil
	}

	var records []map[string]any
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("parsing JSON array: %w", err)
	}
	c := collection.New(name, nil)
	for _, rec := range records {
		c.Append(ConvertNumbers(rec))
	}
	return c, nil
}

// ReadJSONL reads one JSON object per line. Blank lines are skipped.
func ReadJSONL(r io.Reader, name string) (*collection.Collection, error) {
	c := collection.New(name, nil)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if lineNum == 1 {
			line = bytes.TrimPrefix(line, utf8BOM)
		}
		if len(line) == 0 {
			continue
		}

		dec := json.NewDecoder(bytes.NewReader(line))
		dec.UseNumber()
		var rec map[string]any
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		c.Append(ConvertNumbers(rec))
	}
	return c, scanner.Err()
}

// ConvertNumbers replaces json.Number values by int64 or float64 so that
// identifiers typed as numbers stringify without an exponent.
func ConvertNumbers(rec map[string]any) collection.Record {
	out := make(collection.Record, len(rec))
	for k, v := range rec {
		out[k] = convertValue(v)
	}
	return out
}

func convertValue(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = convertValue(e)
		}
		return out
	default:
		return v
	}
}
