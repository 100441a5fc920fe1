package datasets

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
)

// Collate merges assembled examples into one zero-padded rectangular batch.
// Examples are laid out in symbol-length-descending order so downstream
// sequence packing can rely on sorted text lengths. Optional fields follow an
// all-or-nothing rule: if any example lacks an alignment or the auxiliary
// sequence, the whole batch omits that field. Collate is pure and safe to
// call concurrently on disjoint batches.
func Collate(examples []*Example) (*Batch, error) {
	if len(examples) == 0 {
		return nil, fmt.Errorf("collate: empty batch")
	}

	numMels := examples[0].Mel.Rows
	for i, ex := range examples {
		if len(ex.Text) == 0 {
			return nil, fmt.Errorf("collate: example %d has an empty symbol sequence", i)
		}
		if ex.Mel.Rows != numMels {
			return nil, fmt.Errorf("collate: example %d has %d mel channels, batch has %d", i, ex.Mel.Rows, numMels)
		}
	}

	withAlignments := !slices.ContainsFunc(examples, func(ex *Example) bool { return ex.Alignment == nil })
	withAux := !slices.ContainsFunc(examples, func(ex *Example) bool { return ex.AuxText == nil })
	warnMixedPresence(examples, withAlignments, withAux)

	order := make([]int, len(examples))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(len(examples[b].Text), len(examples[a].Text))
	})

	batchSize := len(examples)
	maxText := len(examples[order[0]].Text)
	maxTime := 0
	maxAux := 0
	for _, ex := range examples {
		maxTime = max(maxTime, ex.Mel.Cols)
		if withAux {
			maxAux = max(maxAux, len(ex.AuxText))
		}
	}

	b := &Batch{
		BatchSize:  batchSize,
		NumMels:    numMels,
		MaxTextLen: maxText,
		MaxTime:    maxTime,
		Text:       make([]int64, batchSize*maxText),
		TextLen:    make([]int64, batchSize),
		Mel:        make([]float32, batchSize*numMels*maxTime),
		MelLen:     make([]int64, batchSize),
		Gate:       make([]float32, batchSize*maxTime),
	}
	if withAlignments {
		b.Alignments = make([]float32, batchSize*maxTime*maxText)
	}
	if withAux {
		b.MaxAuxLen = maxAux
		b.AuxText = make([]int64, batchSize*maxAux)
		b.AuxLen = make([]int64, batchSize)
	}

	for row, idx := range order {
		ex := examples[idx]
		textLen := len(ex.Text)
		melLen := ex.Mel.Cols

		b.TextLen[row] = int64(textLen)
		b.MelLen[row] = int64(melLen)

		copy(b.Text[row*maxText:], ex.Text)

		for c := range numMels {
			copy(b.Mel[(row*numMels+c)*maxTime:], ex.Mel.Row(c))
		}

		// The gate target is a trailing run of ones starting at the last
		// real frame: "stop decoding here or later".
		for t := max(melLen-1, 0); t < maxTime; t++ {
			b.Gate[row*maxTime+t] = 1
		}

		if withAlignments {
			for t := range ex.Alignment.Rows {
				copy(b.Alignments[(row*maxTime+t)*maxText:], ex.Alignment.Row(t))
			}
		}

		if withAux {
			b.AuxLen[row] = int64(len(ex.AuxText))
			copy(b.AuxText[row*maxAux:], ex.AuxText)
		}
	}

	return b, nil
}

// warnMixedPresence surfaces batches that mix examples with and without an
// optional field. The field is omitted for the whole batch either way, but a
// mixed composition usually means an upstream configuration problem.
func warnMixedPresence(examples []*Example, withAlignments, withAux bool) {
	if !withAlignments {
		if slices.ContainsFunc(examples, func(ex *Example) bool { return ex.Alignment != nil }) {
			slog.Warn("collate: batch mixes examples with and without alignments; omitting alignments for the whole batch")
		}
	}
	if !withAux {
		if slices.ContainsFunc(examples, func(ex *Example) bool { return ex.AuxText != nil }) {
			slog.Warn("collate: batch mixes examples with and without auxiliary text; omitting auxiliary text for the whole batch")
		}
	}
}
