package datasets

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// Record is one manifest entry: an audio file reference and its raw
// transcript. Records are immutable once loaded.
type Record struct {
	AudioRef string
	Text     string
}

// LoadManifest reads a pipe-separated filelist ("audio_name|transcript", one
// entry per line, UTF-8) and returns the ordered records. Blank lines are
// skipped; a line without a separator is an error since silently dropping
// entries would shift dataset indices.
func LoadManifest(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %q: %w", path, err)
	}
	defer f.Close()

	var records []Record
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		audio, transcript, ok := strings.Cut(text, "|")
		if !ok {
			return nil, fmt.Errorf("manifest: %s:%d: missing %q separator", path, line, "|")
		}
		records = append(records, Record{
			AudioRef: strings.TrimSpace(audio),
			Text:     strings.TrimSpace(transcript),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("manifest: read %q: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("manifest: %q contains no entries", path)
	}
	return records, nil
}

// RecordTextLengths returns the per-record transcript length in runes, the
// length metric the sampler buckets on.
func RecordTextLengths(records []Record) []int {
	lengths := make([]int, len(records))
	for i, rec := range records {
		lengths[i] = utf8.RuneCountInString(rec.Text)
	}
	return lengths
}
