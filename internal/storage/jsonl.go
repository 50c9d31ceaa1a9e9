// Package storage persists collection snapshots as JSONL files and
// comparison runs in an SQLite history database.
package storage

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Loris-rss/Research-Visbility-Checker/internal/collection"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/importer"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// SnapshotExt is the file extension of collection snapshots.
const SnapshotExt = ".jsonl"

// ErrSnapshotNotFound is returned when no snapshot exists for a name.
var ErrSnapshotNotFound = errors.New("collection not found")

// SnapshotMeta is the first line of a snapshot file.
type SnapshotMeta struct {
	Name       string    `json:"name"`
	Columns    []string  `json:"columns"`
	Source     string    `json:"source,omitempty"` // imported file
	Format     string    `json:"format,omitempty"`
	Rows       int       `json:"rows"`
	ImportedAt time.Time `json:"imported_at"`
}

// ValidateName rejects collection names that cannot be used as file names.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return errors.New("collection name is required")
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("invalid collection name %q: contains a path separator", name)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("invalid collection name %q: starts with a dot", name)
	}
	return nil
}

// SnapshotPath returns the snapshot file of a collection inside dir.
func SnapshotPath(dir, name string) string {
	return filepath.Join(dir, name+SnapshotExt)
}

// WriteSnapshot writes a collection to dir/<name>.jsonl, replacing any
// previous snapshot. Absent cells are written as null.
func WriteSnapshot(dir string, c *collection.Collection, meta SnapshotMeta) error {
	if err := ValidateName(c.Name); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating collections directory: %w", err)
	}

	meta.Name = c.Name
	meta.Columns = c.Columns
	meta.Rows = c.Len()
	if meta.ImportedAt.IsZero() {
		meta.ImportedAt = time.Now().UTC()
	}

	var buf bytes.Buffer
	if err := writeLine(&buf, meta); err != nil {
		return fmt.Errorf("encoding snapshot header: %w", err)
	}
	for i, row := range c.Rows {
		if err := writeLine(&buf, jsonSafe(row)); err != nil {
			return fmt.Errorf("encoding row %d: %w", i, err)
		}
	}

	// Write then rename so that readers never see a half-written snapshot.
	path := SnapshotPath(dir, c.Name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

func writeLine(buf *bytes.Buffer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(data)
	buf.WriteByte('\n')
	return nil
}

// jsonSafe replaces NaN and infinite floats, which JSON cannot carry, by nil.
func jsonSafe(r collection.Record) collection.Record {
	out := make(collection.Record, len(r))
	for k, v := range r {
		if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			out[k] = nil
			continue
		}
		out[k] = v
	}
	return out
}

// ReadSnapshot reads dir/<name>.jsonl.
func ReadSnapshot(dir, name string) (*collection.Collection, *SnapshotMeta, error) {
	if err := ValidateName(name); err != nil {
		return nil, nil, err
	}
	f, err := os.Open(SnapshotPath(dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
		}
		return nil, nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	var meta *SnapshotMeta
	var c *collection.Collection
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		if meta == nil {
			meta = &SnapshotMeta{}
			if err := json.Unmarshal(line, meta); err != nil {
				return nil, nil, fmt.Errorf("parsing snapshot header: %w", err)
			}
			c = collection.New(meta.Name, meta.Columns)
			continue
		}

		dec := json.NewDecoder(bytes.NewReader(line))
		dec.UseNumber()
		var rec map[string]any
		if err := dec.Decode(&rec); err != nil {
			return nil, nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		c.Append(importer.ConvertNumbers(rec))
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading snapshot: %w", err)
	}
	if meta == nil {
		return nil, nil, fmt.Errorf("snapshot %s is empty", name)
	}
	return c, meta, nil
}

// ListSnapshots returns the header of every snapshot in dir, sorted by name.
// A missing directory yields no snapshots.
func ListSnapshots(dir string) ([]SnapshotMeta, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading collections directory: %w", err)
	}

	var metas []SnapshotMeta
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), SnapshotExt) {
			continue
		}
		meta, err := readMeta(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		metas = append(metas, *meta)
	}
	sort.Slice(metas, func(i, j int) bool { return metas[i].Name < metas[j].Name })
	return metas, nil
}

func readMeta(path string) (*SnapshotMeta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, errors.New("empty snapshot")
	}
	var meta SnapshotMeta
	if err := json.Unmarshal(scanner.Bytes(), &meta); err != nil {
		return nil, fmt.Errorf("parsing snapshot header: %w", err)
	}
	return &meta, nil
}

// ReadSnapshots loads the named snapshots in the given order. With no names,
// every snapshot in dir is loaded in name order.
func ReadSnapshots(dir string, names []string) ([]*collection.Collection, error) {
	if len(names) == 0 {
		metas, err := ListSnapshots(dir)
		if err != nil {
			return nil, err
		}
		for _, m := range metas {
			names = append(names, m.Name)
		}
	}

	out := make([]*collection.Collection, 0, len(names))
	for _, name := range names {
		c, _, err := ReadSnapshot(dir, name)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// DeleteSnapshot removes dir/<name>.jsonl.
func DeleteSnapshot(dir, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := os.Remove(SnapshotPath(dir, name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
		}
		return fmt.Errorf("removing snapshot: %w", err)
	}
	return nil
}
