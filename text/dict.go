package text

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// dictEntry holds the stressed spelling of a word and, optionally, its
// phonemic spelling as space-separated phoneme codes.
type dictEntry struct {
	stressed string
	phonemes []string
}

// loadDict reads a pronunciation dictionary. Each line is
// "word|stressed_form" or "word|stressed_form|PH ON EME S"; empty lines and
// lines starting with '#' are skipped. Keys are lowercased.
func loadDict(path string) (map[string]dictEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("text: open dictionary %q: %w", path, err)
	}
	defer f.Close()

	dict := make(map[string]dictEntry)
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		parts := strings.Split(raw, "|")
		if len(parts) < 2 {
			return nil, fmt.Errorf("text: dictionary %s:%d: expected word|stressed_form", path, line)
		}
		entry := dictEntry{stressed: strings.TrimSpace(parts[1])}
		if len(parts) > 2 {
			entry.phonemes = strings.Fields(strings.ToUpper(parts[2]))
		}
		dict[strings.ToLower(strings.TrimSpace(parts[0]))] = entry
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("text: read dictionary %q: %w", path, err)
	}
	return dict, nil
}
