package text

import (
	"fmt"
	"strings"
	"unicode"
)

// A Cleaner transforms raw transcript text before encoding.
type Cleaner func(string) string

// cleaners is the registry of named cleaner pipelines.
var cleaners = map[string]Cleaner{
	"basic_cleaners":           basicCleaners,
	"english_cleaners":         englishCleaners,
	"transliteration_cleaners": transliterationCleaners,
}

// abbreviations expanded by the english pipeline, longest first.
var abbreviations = [][2]string{
	{"mrs.", "misess"},
	{"mr.", "mister"},
	{"dr.", "doctor"},
	{"st.", "saint"},
	{"jr.", "junior"},
	{"etc.", "et cetera"},
}

// translitRU maps Cyrillic runes to a Latin spelling for ru_trans.
var translitRU = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "yo",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "h", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "sch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
}

// Clean runs the named cleaner pipelines in order.
func Clean(text string, names []string) (string, error) {
	for _, name := range names {
		fn, ok := cleaners[name]
		if !ok {
			return "", fmt.Errorf("text: unknown cleaner %q", name)
		}
		text = fn(text)
	}
	return text, nil
}

// basicCleaners lowercases and collapses whitespace.
func basicCleaners(text string) string {
	text = strings.ToLower(text)
	return strings.Join(strings.Fields(text), " ")
}

// englishCleaners lowercases, expands common abbreviations, and collapses
// whitespace.
func englishCleaners(text string) string {
	text = strings.ToLower(text)
	for _, pair := range abbreviations {
		text = strings.ReplaceAll(text, pair[0], pair[1])
	}
	return strings.Join(strings.Fields(text), " ")
}

// transliterationCleaners lowercases, transliterates Cyrillic to Latin, and
// collapses whitespace.
func transliterationCleaners(text string) string {
	text = strings.ToLower(text)
	var b strings.Builder
	for _, r := range text {
		if lat, ok := translitRU[r]; ok {
			b.WriteString(lat)
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// isVowel reports whether r is a vowel in any supported language.
func isVowel(r rune) bool {
	if !unicode.IsLetter(r) {
		return false
	}
	return strings.ContainsRune("aeiouyаеёиоуыэюя", unicode.ToLower(r))
}
