// Package text implements the text service for the data pipeline: cleaner
// pipelines, stress and phoneme dictionaries, and encoding between transcript
// strings and symbol-id sequences over per-language vocabularies.
package text

import "fmt"

// Language selects a symbol vocabulary.
type Language string

const (
	LanguageEN      Language = "en"
	LanguageRU      Language = "ru"
	LanguageRUTrans Language = "ru_trans"
)

// IsValid reports whether l is a recognised language.
func (l Language) IsValid() bool {
	switch l {
	case LanguageEN, LanguageRU, LanguageRUTrans:
		return true
	}
	return false
}

const (
	// Pad occupies id 0 so zero padding decodes to it.
	Pad = "_"

	// StressMark precedes a stressed vowel.
	StressMark = "+"

	punctuation = "!'(),.:;? -"
)

const (
	lettersEN = "abcdefghijklmnopqrstuvwxyz"
	lettersRU = "абвгдежзийклмнопрстуфхцчшщъыьэюяё"
)

// phonemeCodes is the reduced phoneme inventory used when a dictionary entry
// provides a phonemic spelling. Codes are stored in the vocabulary with an
// "@" prefix so they never collide with letters.
var phonemeCodes = []string{
	"A", "AA", "B", "CH", "D", "E", "EE", "F", "G", "H", "I", "II", "J",
	"K", "L", "M", "N", "O", "OO", "P", "R", "S", "SH", "T", "TS", "U",
	"UU", "V", "Y", "Z", "ZH",
}

// Letters returns the letter set for a language.
func Letters(lang Language) (string, error) {
	switch lang {
	case LanguageEN, LanguageRUTrans:
		return lettersEN, nil
	case LanguageRU:
		return lettersRU, nil
	}
	return "", fmt.Errorf("text: unknown language %q", lang)
}

// Symbols returns the full ordered vocabulary for a language: pad,
// punctuation, stress mark, letters, then prefixed phoneme codes.
func Symbols(lang Language) ([]string, error) {
	letters, err := Letters(lang)
	if err != nil {
		return nil, err
	}
	syms := []string{Pad}
	for _, r := range punctuation {
		syms = append(syms, string(r))
	}
	syms = append(syms, StressMark)
	for _, r := range letters {
		syms = append(syms, string(r))
	}
	for _, code := range phonemeCodes {
		syms = append(syms, "@"+code)
	}
	return syms, nil
}

// CTCSymbols returns the reduced auxiliary vocabulary for a language: its
// letters followed by the pad/terminator. Everything else (punctuation,
// stress marks, phonemes) is deliberately outside this set.
func CTCSymbols(lang Language) ([]string, error) {
	letters, err := Letters(lang)
	if err != nil {
		return nil, err
	}
	syms := make([]string, 0, len(letters)+1)
	for _, r := range letters {
		syms = append(syms, string(r))
	}
	return append(syms, Pad), nil
}

// CTCSymbolsLength returns the size of the auxiliary vocabulary, which the
// training harness needs to size its output layer.
func CTCSymbolsLength(lang Language) (int, error) {
	syms, err := CTCSymbols(lang)
	if err != nil {
		return 0, err
	}
	return len(syms), nil
}
