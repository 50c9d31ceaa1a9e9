package storage

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Loris-rss/Research-Visbility-Checker/internal/collection"
)

func halCollection() *collection.Collection {
	c := collection.New("HAL", []string{"Title_article", "doiId_s", "pubmedId_s", "year"})
	c.Rows = []collection.Record{
		{"Title_article": "Paper A", "doiId_s": "10.1/a", "pubmedId_s": int64(12345678), "year": int64(2020)},
		{"Title_article": "Paper B", "doiId_s": nil, "pubmedId_s": math.NaN(), "year": 2021.5},
	}
	return c
}

func TestSnapshot_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "collections")

	if err := WriteSnapshot(dir, halCollection(), SnapshotMeta{Source: "hal.csv", Format: "csv"}); err != nil {
		t.Fatalf("WriteSnapshot() error = %v", err)
	}

	c, meta, err := ReadSnapshot(dir, "HAL")
	if err != nil {
		t.Fatalf("ReadSnapshot() error = %v", err)
	}

	if meta.Source != "hal.csv" || meta.Rows != 2 || meta.ImportedAt.IsZero() {
		t.Errorf("meta = %+v", meta)
	}
	if !reflect.DeepEqual(c.Columns, halCollection().Columns) {
		t.Errorf("Columns = %v", c.Columns)
	}
	if got := c.Value(0, "pubmedId_s"); got != int64(12345678) {
		t.Errorf("pubmedId_s = %#v, want int64", got)
	}
	if got := c.Value(1, "pubmedId_s"); got != nil {
		t.Errorf("NaN cell = %#v, want nil", got)
	}
	if got := c.Value(1, "year"); got != 2021.5 {
		t.Errorf("year = %#v, want 2021.5", got)
	}
}

func TestWriteSnapshot_Replaces(t *testing.T) {
	dir := t.TempDir()
	c := halCollection()
	if err := WriteSnapshot(dir, c, SnapshotMeta{}); err != nil {
		t.Fatal(err)
	}
	c.Rows = c.Rows[:1]
	if err := WriteSnapshot(dir, c, SnapshotMeta{}); err != nil {
		t.Fatal(err)
	}

	got, _, err := ReadSnapshot(dir, "HAL")
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 1 {
		t.Errorf("Len() = %d, want 1", got.Len())
	}
	if _, err := os.Stat(SnapshotPath(dir, "HAL") + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"HAL", false},
		{"WoS 2024", false},
		{"", true},
		{"  ", true},
		{"../escape", true},
		{`a\b`, true},
		{".hidden", true},
	}
	for _, tt := range tests {
		if err := ValidateName(tt.name); (err != nil) != tt.wantErr {
			t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestReadSnapshot_NotFound(t *testing.T) {
	_, _, err := ReadSnapshot(t.TempDir(), "Scopus")
	if !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("ReadSnapshot() error = %v, want ErrSnapshotNotFound", err)
	}
}

func TestListAndReadSnapshots(t *testing.T) {
	dir := t.TempDir()

	metas, err := ListSnapshots(filepath.Join(dir, "missing"))
	if err != nil || len(metas) != 0 {
		t.Errorf("ListSnapshots(missing) = (%v, %v)", metas, err)
	}

	for _, name := range []string{"WoS", "HAL", "ORCID"} {
		c := collection.New(name, []string{"DOI"})
		c.Append(collection.Record{"DOI": "10.1/" + name})
		if err := WriteSnapshot(dir, c, SnapshotMeta{}); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	metas, err = ListSnapshots(dir)
	if err != nil {
		t.Fatalf("ListSnapshots() error = %v", err)
	}
	var names []string
	for _, m := range metas {
		names = append(names, m.Name)
	}
	if !reflect.DeepEqual(names, []string{"HAL", "ORCID", "WoS"}) {
		t.Errorf("names = %v", names)
	}

	all, err := ReadSnapshots(dir, nil)
	if err != nil || len(all) != 3 || all[0].Name != "HAL" {
		t.Errorf("ReadSnapshots(all) = (%d, %v)", len(all), err)
	}

	picked, err := ReadSnapshots(dir, []string{"WoS", "HAL"})
	if err != nil || len(picked) != 2 || picked[0].Name != "WoS" {
		t.Errorf("ReadSnapshots(picked) = (%d, %v)", len(picked), err)
	}

	if _, err := ReadSnapshots(dir, []string{"Scopus"}); !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("ReadSnapshots(missing) error = %v", err)
	}
}

func TestDeleteSnapshot(t *testing.T) {
	dir := t.TempDir()
	if err := WriteSnapshot(dir, halCollection(), SnapshotMeta{}); err != nil {
		t.Fatal(err)
	}
	if err := DeleteSnapshot(dir, "HAL"); err != nil {
		t.Fatalf("DeleteSnapshot() error = %v", err)
	}
	if err := DeleteSnapshot(dir, "HAL"); !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("DeleteSnapshot(again) error = %v", err)
	}
}
