package datasets

import "github.com/gomlx/gomlx/pkg/core/tensors"

// Batch is one collated training batch. Tensors are stored as flat row-major
// buffers with explicit dims; rows follow the symbol-length-descending order
// chosen by Collate. A Batch is built fresh per Collate call and consumed
// immediately by the training loop.
type Batch struct {
	BatchSize int

	// Text is batch × MaxTextLen symbol ids, left-aligned, zero padded.
	Text       []int64
	MaxTextLen int

	// TextLen holds true symbol lengths, descending.
	TextLen []int64

	// Mel is batch × NumMels × MaxTime.
	Mel     []float32
	NumMels int
	MaxTime int

	// MelLen holds true frame counts per example. It follows the same row
	// permutation as TextLen but is not itself monotonic.
	MelLen []int64

	// Gate is batch × MaxTime stop targets: ones from the last real frame
	// to the end of the row.
	Gate []float32

	// Alignments is batch × MaxTime × MaxTextLen, nil when the batch
	// carries no attention targets.
	Alignments []float32

	// AuxText is batch × MaxAuxLen over the auxiliary vocabulary, nil when
	// unused. AuxLen holds the true lengths.
	AuxText   []int64
	MaxAuxLen int
	AuxLen    []int64
}

// HasAlignments reports whether the batch carries attention targets.
func (b *Batch) HasAlignments() bool { return b.Alignments != nil }

// HasAuxText reports whether the batch carries the auxiliary sequence.
func (b *Batch) HasAuxText() bool { return b.AuxText != nil }

// TextRow returns the padded symbol row i. The slice aliases the batch buffer.
func (b *Batch) TextRow(i int) []int64 {
	return b.Text[i*b.MaxTextLen : (i+1)*b.MaxTextLen]
}

// GateRow returns the gate row i. The slice aliases the batch buffer.
func (b *Batch) GateRow(i int) []float32 {
	return b.Gate[i*b.MaxTime : (i+1)*b.MaxTime]
}

// MelAt returns the mel value for example i, channel c, frame t.
func (b *Batch) MelAt(i, c, t int) float32 {
	return b.Mel[(i*b.NumMels+c)*b.MaxTime+t]
}

// AlignmentAt returns the alignment value for example i, frame t, symbol s.
// Only valid when HasAlignments.
func (b *Batch) AlignmentAt(i, t, s int) float32 {
	return b.Alignments[(i*b.MaxTime+t)*b.MaxTextLen+s]
}

// AuxRow returns the padded auxiliary row i. Only valid when HasAuxText.
func (b *Batch) AuxRow(i int) []int64 {
	return b.AuxText[i*b.MaxAuxLen : (i+1)*b.MaxAuxLen]
}

// BatchTensors is the gomlx view of a Batch. Optional fields are nil when the
// batch omits them.
type BatchTensors struct {
	Text    *tensors.Tensor
	TextLen *tensors.Tensor
	Mel     *tensors.Tensor
	MelLen  *tensors.Tensor
	Gate    *tensors.Tensor

	Alignments *tensors.Tensor
	AuxText    *tensors.Tensor
	AuxLen     *tensors.Tensor
}

// Tensors converts the batch buffers into gomlx tensors. Nested slice views
// alias the flat buffers, so conversion allocates only the tensor storage.
func (b *Batch) Tensors() *BatchTensors {
	text := make([][]int64, b.BatchSize)
	gate := make([][]float32, b.BatchSize)
	mel := make([][][]float32, b.BatchSize)
	for i := range b.BatchSize {
		text[i] = b.TextRow(i)
		gate[i] = b.GateRow(i)
		mel[i] = make([][]float32, b.NumMels)
		for c := range b.NumMels {
			base := (i*b.NumMels + c) * b.MaxTime
			mel[i][c] = b.Mel[base : base+b.MaxTime]
		}
	}

	bt := &BatchTensors{
		Text:    tensors.FromAnyValue(text),
		TextLen: tensors.FromAnyValue(b.TextLen),
		Mel:     tensors.FromAnyValue(mel),
		MelLen:  tensors.FromAnyValue(b.MelLen),
		Gate:    tensors.FromAnyValue(gate),
	}

	if b.HasAlignments() {
		al := make([][][]float32, b.BatchSize)
		for i := range b.BatchSize {
			al[i] = make([][]float32, b.MaxTime)
			for t := range b.MaxTime {
				base := (i*b.MaxTime + t) * b.MaxTextLen
				al[i][t] = b.Alignments[base : base+b.MaxTextLen]
			}
		}
		bt.Alignments = tensors.FromAnyValue(al)
	}

	if b.HasAuxText() {
		aux := make([][]int64, b.BatchSize)
		for i := range b.BatchSize {
			aux[i] = b.AuxRow(i)
		}
		bt.AuxText = tensors.FromAnyValue(aux)
		bt.AuxLen = tensors.FromAnyValue(b.AuxLen)
	}

	return bt
}
