package datasets

import (
	"slices"
	"testing"
)

// makeExample builds an example with textLen symbols (first symbol equals
// textLen so rows are identifiable after sorting) and a numMels×melLen mel
// filled with fill.
func makeExample(t *testing.T, textLen, melLen, numMels int, fill float32) *Example {
	t.Helper()
	text := make([]int64, textLen)
	text[0] = int64(textLen)
	for i := 1; i < textLen; i++ {
		text[i] = int64(i)
	}
	mel := NewMatrix(numMels, melLen)
	for i := range mel.Data {
		mel.Data[i] = fill
	}
	return &Example{Text: text, Mel: mel}
}

func TestCollate_SortsByTextLengthDescending(t *testing.T) {
	examples := []*Example{
		makeExample(t, 5, 10, 2, 0.5),
		makeExample(t, 3, 12, 2, 0.25),
		makeExample(t, 8, 9, 2, 0.75),
	}
	b, err := Collate(examples)
	if err != nil {
		t.Fatalf("Collate failed: %v", err)
	}

	if !slices.Equal(b.TextLen, []int64{8, 5, 3}) {
		t.Fatalf("text lengths: got %v, want [8 5 3]", b.TextLen)
	}
	// Mel lengths follow the same permutation.
	if !slices.Equal(b.MelLen, []int64{9, 10, 12}) {
		t.Fatalf("mel lengths: got %v, want [9 10 12]", b.MelLen)
	}
	// First symbol of each row marks which example landed there.
	for row, want := range []int64{8, 5, 3} {
		if got := b.TextRow(row)[0]; got != want {
			t.Errorf("row %d starts with %d, want %d", row, got, want)
		}
	}
	// Padding beyond the true length is zero.
	if got := b.TextRow(2)[3]; got != 0 {
		t.Errorf("expected zero padding, got %d", got)
	}
}

func TestCollate_GateIsTrailingRunOfOnes(t *testing.T) {
	examples := []*Example{
		makeExample(t, 7, 20, 3, 1),
		makeExample(t, 4, 15, 3, 1),
	}
	b, err := Collate(examples)
	if err != nil {
		t.Fatalf("Collate failed: %v", err)
	}
	if b.MaxTime != 20 {
		t.Fatalf("max time: got %d, want 20", b.MaxTime)
	}

	// Row 1 is the text-length-4 example with true mel length 15: zeros on
	// [0,13], ones on [14,19].
	gate := b.GateRow(1)
	for tt := 0; tt < 14; tt++ {
		if gate[tt] != 0 {
			t.Errorf("gate[%d] = %v, want 0", tt, gate[tt])
		}
	}
	for tt := 14; tt < 20; tt++ {
		if gate[tt] != 1 {
			t.Errorf("gate[%d] = %v, want 1", tt, gate[tt])
		}
	}
}

func TestCollate_AlignmentsAllOrNothing(t *testing.T) {
	withAlign := makeExample(t, 6, 10, 2, 1)
	al := NewMatrix(10, 6)
	withAlign.Alignment = &al

	without := makeExample(t, 4, 8, 2, 1)

	b, err := Collate([]*Example{withAlign, without})
	if err != nil {
		t.Fatalf("Collate failed: %v", err)
	}
	if b.HasAlignments() {
		t.Fatal("batch with a missing alignment must omit alignments entirely")
	}
}

func TestCollate_AlignmentBlockCopiedTopLeft(t *testing.T) {
	a := makeExample(t, 3, 4, 2, 1)
	alA := NewMatrix(4, 3)
	for i := range alA.Data {
		alA.Data[i] = 1
	}
	a.Alignment = &alA

	bEx := makeExample(t, 5, 6, 2, 1)
	alB := NewMatrix(6, 5)
	for i := range alB.Data {
		alB.Data[i] = 2
	}
	bEx.Alignment = &alB

	b, err := Collate([]*Example{a, bEx})
	if err != nil {
		t.Fatalf("Collate failed: %v", err)
	}
	if !b.HasAlignments() {
		t.Fatal("expected alignments in batch")
	}

	// Row 0 is the text-length-5 example: filled with 2s over (6×5), zero
	// outside. Row 1 is the 3-symbol example: 1s over (4×3).
	if got := b.AlignmentAt(0, 5, 4); got != 2 {
		t.Errorf("alignment(0,5,4) = %v, want 2", got)
	}
	if got := b.AlignmentAt(1, 3, 2); got != 1 {
		t.Errorf("alignment(1,3,2) = %v, want 1", got)
	}
	if got := b.AlignmentAt(1, 4, 0); got != 0 {
		t.Errorf("alignment(1,4,0) = %v, want 0 padding", got)
	}
	if got := b.AlignmentAt(1, 0, 3); got != 0 {
		t.Errorf("alignment(1,0,3) = %v, want 0 padding", got)
	}
}

func TestCollate_AuxTextLengthsAndPadding(t *testing.T) {
	a := makeExample(t, 6, 10, 2, 1)
	a.AuxText = []int64{4, 5, 6}
	b2 := makeExample(t, 4, 8, 2, 1)
	b2.AuxText = []int64{7}

	b, err := Collate([]*Example{a, b2})
	if err != nil {
		t.Fatalf("Collate failed: %v", err)
	}
	if !b.HasAuxText() {
		t.Fatal("expected auxiliary text in batch")
	}
	if !slices.Equal(b.AuxLen, []int64{3, 1}) {
		t.Fatalf("aux lengths: got %v, want [3 1]", b.AuxLen)
	}
	if !slices.Equal(b.AuxRow(0), []int64{4, 5, 6}) {
		t.Fatalf("aux row 0: got %v", b.AuxRow(0))
	}
	if !slices.Equal(b.AuxRow(1), []int64{7, 0, 0}) {
		t.Fatalf("aux row 1: got %v", b.AuxRow(1))
	}
}

func TestCollate_AuxTextAllOrNothing(t *testing.T) {
	a := makeExample(t, 6, 10, 2, 1)
	a.AuxText = []int64{1, 2}
	b2 := makeExample(t, 4, 8, 2, 1)

	b, err := Collate([]*Example{a, b2})
	if err != nil {
		t.Fatalf("Collate failed: %v", err)
	}
	if b.HasAuxText() {
		t.Fatal("batch with a missing aux sequence must omit aux text entirely")
	}
}

func TestCollate_EndToEndShapes(t *testing.T) {
	const numMels = 3
	a := makeExample(t, 4, 20, numMels, 0.5)
	b2 := makeExample(t, 7, 15, numMels, 0.25)

	b, err := Collate([]*Example{a, b2})
	if err != nil {
		t.Fatalf("Collate failed: %v", err)
	}

	if b.BatchSize != 2 || b.MaxTextLen != 7 {
		t.Fatalf("text shape: got (%d, %d), want (2, 7)", b.BatchSize, b.MaxTextLen)
	}
	if b.NumMels != numMels || b.MaxTime != 20 {
		t.Fatalf("mel shape: got (%d, %d, %d), want (2, %d, 20)", b.BatchSize, b.NumMels, b.MaxTime, numMels)
	}

	// Row 0 is the 7-symbol example with mel time 15: gate ones from 14.
	gate := b.GateRow(0)
	if gate[13] != 0 || gate[14] != 1 || gate[19] != 1 {
		t.Fatalf("gate row: got [13]=%v [14]=%v [19]=%v, want 0 1 1", gate[13], gate[14], gate[19])
	}

	// Mel content lands in the left-aligned time prefix.
	if got := b.MelAt(0, 2, 14); got != 0.25 {
		t.Errorf("mel(0,2,14) = %v, want 0.25", got)
	}
	if got := b.MelAt(0, 2, 15); got != 0 {
		t.Errorf("mel(0,2,15) = %v, want 0 padding", got)
	}
	if got := b.MelAt(1, 0, 19); got != 0.5 {
		t.Errorf("mel(1,0,19) = %v, want 0.5", got)
	}
}

func TestCollate_RejectsEmptyAndInconsistentBatches(t *testing.T) {
	if _, err := Collate(nil); err == nil {
		t.Error("expected error for empty batch")
	}

	a := makeExample(t, 4, 10, 2, 1)
	b2 := makeExample(t, 5, 10, 3, 1)
	if _, err := Collate([]*Example{a, b2}); err == nil {
		t.Error("expected error for mismatched mel channel counts")
	}
}
