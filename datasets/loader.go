package datasets

import (
	"context"
	"fmt"
	"io"
	"iter"

	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// Loader drives one epoch at a time: it pulls indices from the sampler,
// assembles examples, and collates them into batches. Yield and Restart
// follow the gomlx train.Dataset contract so the loader plugs straight into a
// training loop. A partial batch left at the end of an epoch is dropped.
type Loader struct {
	ds        *TextMelDataset
	sampler   *BucketSampler
	batchSize int

	next func() (int, bool)
	stop func()
}

// NewLoader wires a dataset and sampler into an epoch loader.
func NewLoader(ds *TextMelDataset, sampler *BucketSampler, batchSize int) (*Loader, error) {
	if batchSize < 1 {
		return nil, fmt.Errorf("loader: batch size must be positive, got %d", batchSize)
	}
	l := &Loader{ds: ds, sampler: sampler, batchSize: batchSize}
	l.next, l.stop = iter.Pull(sampler.All())
	return l, nil
}

// Name identifies the loader to the training loop.
func (l *Loader) Name() string {
	return "TextMelLoader"
}

// NextBatch assembles and collates the next batch of the current epoch. It
// returns io.EOF when the epoch is exhausted; the following call starts the
// next epoch with the sampler's fresh ordering.
func (l *Loader) NextBatch() (*Batch, error) {
	idxs := make([]int, 0, l.batchSize)
	for len(idxs) < l.batchSize {
		idx, ok := l.next()
		if !ok {
			// The pass is complete; the sampler has already
			// reshuffled if configured to. Re-arm for next epoch.
			l.rearm()
			return nil, io.EOF
		}
		idxs = append(idxs, idx)
	}

	examples := make([]*Example, len(idxs))
	for i, idx := range idxs {
		ex, err := l.ds.Assemble(idx)
		if err != nil {
			return nil, err
		}
		examples[i] = ex
	}

	batch, err := Collate(examples)
	if err != nil {
		return nil, err
	}
	if m := l.ds.metrics; m != nil {
		m.BatchesCollated.Add(context.Background(), 1)
	}
	return batch, nil
}

// Yield produces the next batch as gomlx tensors. Inputs are text, text
// lengths, mel, mel lengths; labels are mel and gate targets. io.EOF marks
// the epoch boundary.
func (l *Loader) Yield() (spec any, inputs []*tensors.Tensor, labels []*tensors.Tensor, err error) {
	batch, err := l.NextBatch()
	if err != nil {
		return nil, nil, nil, err
	}
	bt := batch.Tensors()
	inputs = []*tensors.Tensor{bt.Text, bt.TextLen, bt.Mel, bt.MelLen}
	labels = []*tensors.Tensor{bt.Mel, bt.Gate}
	return nil, inputs, labels, nil
}

// Restart abandons the rest of the current epoch and starts over with the
// sampler's current ordering.
func (l *Loader) Restart() error {
	l.rearm()
	return nil
}

func (l *Loader) rearm() {
	if l.stop != nil {
		l.stop()
	}
	l.next, l.stop = iter.Pull(l.sampler.All())
}
