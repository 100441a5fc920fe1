package text

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/Max1Denysov/sova-tts-engine/datasets"
)

// Handler encodes transcripts into symbol-id sequences for one language. It
// implements the datasets.TextService contract. The random source drives
// per-word probability resolution in word-level mode; a Handler is not safe
// for concurrent use with a shared rand.Rand.
type Handler struct {
	lang       Language
	symbolToID map[string]int64
	idToSymbol []string
	dict       map[string]dictEntry
	rng        *rand.Rand
}

// NewHandler builds a handler for lang. dictPath may be empty, in which case
// stress and phoneme lookups fall back to rule-based behavior only.
func NewHandler(lang Language, dictPath string, rng *rand.Rand) (*Handler, error) {
	syms, err := Symbols(lang)
	if err != nil {
		return nil, err
	}

	h := &Handler{
		lang:       lang,
		idToSymbol: syms,
		symbolToID: make(map[string]int64, len(syms)),
		rng:        rng,
	}
	for i, s := range syms {
		h.symbolToID[s] = int64(i)
	}

	if dictPath != "" {
		h.dict, err = loadDict(dictPath)
		if err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Language returns the handler's language.
func (h *Handler) Language() Language {
	return h.lang
}

// NumSymbols returns the vocabulary size.
func (h *Handler) NumSymbols() int {
	return len(h.idToSymbol)
}

// TextToSequence cleans text and encodes it to symbol ids. Hard stress and
// phoneme flags apply to every word; probabilistic flags (word-level mode)
// are resolved independently per word. When stressAlways is set, words
// missing from the dictionary still receive a rule-placed stress mark, so
// the symbol stream is stressed consistently for models that expect it.
func (h *Handler) TextToSequence(text string, cleanerNames []string, stress, phonemes datasets.Flag, dictPrime, stressAlways bool) ([]int64, error) {
	cleaned, err := Clean(text, cleanerNames)
	if err != nil {
		return nil, err
	}

	var seq []int64
	words := strings.Split(cleaned, " ")
	for i, word := range words {
		if i > 0 {
			seq = h.appendSymbol(seq, " ")
		}
		if word == "" {
			continue
		}

		stressOn := h.resolveWordFlag(stress)
		phonemesOn := h.resolveWordFlag(phonemes)

		entry, known := h.lookup(word, dictPrime)

		if phonemesOn && known && len(entry.phonemes) > 0 {
			for _, code := range entry.phonemes {
				seq = h.appendSymbol(seq, "@"+code)
			}
			continue
		}

		spelled := word
		if stressOn {
			switch {
			case known && entry.stressed != "":
				spelled = entry.stressed
			case stressAlways:
				spelled = stressFallback(word)
			}
		}
		for _, r := range spelled {
			seq = h.appendSymbol(seq, string(r))
		}
	}
	return seq, nil
}

// IDToSymbol maps a symbol id back to its textual form.
func (h *Handler) IDToSymbol(id int64) (string, bool) {
	if id < 0 || id >= int64(len(h.idToSymbol)) {
		return "", false
	}
	return h.idToSymbol[id], true
}

// SymbolToID maps a symbol to its id.
func (h *Handler) SymbolToID(sym string) (int64, bool) {
	id, ok := h.symbolToID[sym]
	return id, ok
}

// SequenceToText decodes ids back into a string, skipping unknown ids and
// stripping the "@" phoneme prefix.
func (h *Handler) SequenceToText(seq []int64) string {
	var b strings.Builder
	for _, id := range seq {
		sym, ok := h.IDToSymbol(id)
		if !ok {
			continue
		}
		b.WriteString(strings.TrimPrefix(sym, "@"))
	}
	return b.String()
}

func (h *Handler) resolveWordFlag(f datasets.Flag) bool {
	if f.IsProbabilistic() {
		return f.Resolve(h.rng)
	}
	return f.Bool()
}

func (h *Handler) lookup(word string, dictPrime bool) (dictEntry, bool) {
	if !dictPrime || h.dict == nil {
		return dictEntry{}, false
	}
	entry, ok := h.dict[strings.ToLower(word)]
	return entry, ok
}

// appendSymbol encodes one symbol, dropping anything outside the vocabulary.
func (h *Handler) appendSymbol(seq []int64, sym string) []int64 {
	id, ok := h.symbolToID[sym]
	if !ok {
		return seq
	}
	return append(seq, id)
}

// stressFallback places a stress mark before the first vowel of word. Used
// only under the stressAlways override for words the dictionary doesn't know.
func stressFallback(word string) string {
	for i, r := range word {
		if isVowel(r) {
			return word[:i] + StressMark + word[i:]
		}
	}
	return word
}

// Verify the TextService contract at compile time.
var _ datasets.TextService = (*Handler)(nil)

// String implements fmt.Stringer for logging.
func (h *Handler) String() string {
	return fmt.Sprintf("text.Handler(%s, %d symbols)", h.lang, len(h.idToSymbol))
}
