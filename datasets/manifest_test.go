package datasets

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "filelist.txt")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}
	return path
}

func TestLoadManifest(t *testing.T) {
	path := writeManifest(t, "a1.wav|Hello there.\n\na2.wav|Привет, мир!\n")

	records, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest failed: %v", err)
	}
	want := []Record{
		{AudioRef: "a1.wav", Text: "Hello there."},
		{AudioRef: "a2.wav", Text: "Привет, мир!"},
	}
	if len(records) != len(want) {
		t.Fatalf("got %d records, want %d", len(records), len(want))
	}
	for i, rec := range records {
		if rec != want[i] {
			t.Errorf("record %d: got %+v, want %+v", i, rec, want[i])
		}
	}
}

func TestLoadManifest_MissingSeparator(t *testing.T) {
	path := writeManifest(t, "a1.wav|ok\nbroken line\n")

	if _, err := LoadManifest(path); err == nil {
		t.Fatal("expected error for line without separator")
	}
}

func TestLoadManifest_Empty(t *testing.T) {
	path := writeManifest(t, "\n\n")

	if _, err := LoadManifest(path); err == nil {
		t.Fatal("expected error for manifest with no entries")
	}
}

func TestRecordTextLengths_CountsRunes(t *testing.T) {
	records := []Record{
		{AudioRef: "a1.wav", Text: "hello"},
		{AudioRef: "a2.wav", Text: "привет"},
		{AudioRef: "a3.wav", Text: ""},
	}

	got := RecordTextLengths(records)
	want := []int{5, 6, 0}
	if len(got) != len(want) {
		t.Fatalf("got %d lengths, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("length %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestLoadManifest_MissingFile(t *testing.T) {
	if _, err := LoadManifest(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
