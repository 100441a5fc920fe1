package datasets

import (
	"cmp"
	"fmt"
	"iter"
	"math/rand"
	"slices"
)

// SamplerOptions configures a BucketSampler.
type SamplerOptions struct {
	// BatchSize is the mini-batch size the training loop will consume.
	// Bucketed reshuffling regroups indices into chunks of this size.
	BatchSize int

	// Shuffle enables re-randomising the order at construction and after
	// every completed pass.
	Shuffle bool

	// Bucket enables grouping indices by transcript length before
	// shuffling, so batches see similar lengths and padding stays small.
	Bucket bool

	// LenDiff is the maximum length span covered by one bucket.
	LenDiff int
}

// BucketSampler produces, once per epoch, a full ordering of dataset indices.
// With bucketing enabled, indices are grouped into runs of similar transcript
// length; shuffling then permutes within buckets, permutes bucket order, and
// finally permutes whole batch-sized chunks so the trainer still sees batches
// in random order. Regrouping into chunks drops the trailing
// len(indices) mod BatchSize indices from the order; every reshuffle restarts
// from the full buckets, so the drop does not accumulate across epochs.
//
// A sampler is owned by a single controlling goroutine. Reshuffle is meant to
// be called at epoch boundaries only; concurrent calls are not supported.
type BucketSampler struct {
	opts    SamplerOptions
	rng     *rand.Rand
	buckets [][]int
	idxs    []int
}

// NewBucketSampler builds a sampler over a dataset whose i-th example has
// transcript length lengths[i]. The random source is explicit so epoch
// orderings are reproducible under a fixed seed.
func NewBucketSampler(lengths []int, opts SamplerOptions, rng *rand.Rand) (*BucketSampler, error) {
	if len(lengths) == 0 {
		return nil, fmt.Errorf("sampler: empty dataset")
	}
	if opts.BatchSize < 1 {
		return nil, fmt.Errorf("sampler: batch size must be positive, got %d", opts.BatchSize)
	}
	if opts.Bucket && opts.LenDiff < 1 {
		return nil, fmt.Errorf("sampler: len diff must be positive, got %d", opts.LenDiff)
	}

	s := &BucketSampler{opts: opts, rng: rng}

	if opts.Bucket {
		s.buckets = buildBuckets(lengths, opts.LenDiff)
		s.idxs = flatten(s.buckets)
	} else {
		s.idxs = make([]int, len(lengths))
		for i := range s.idxs {
			s.idxs[i] = i
		}
	}

	if opts.Shuffle {
		s.Reshuffle()
	}
	return s, nil
}

// buildBuckets sorts (length, index) pairs ascending and greedily cuts the
// sorted run into windows of span lenDiff. The trailing bucket is always
// flushed, including a singleton opened by the very last element.
func buildBuckets(lengths []int, lenDiff int) [][]int {
	type pair struct{ length, idx int }
	pairs := make([]pair, len(lengths))
	for i, l := range lengths {
		pairs[i] = pair{length: l, idx: i}
	}
	slices.SortFunc(pairs, func(a, b pair) int {
		if c := cmp.Compare(a.length, b.length); c != 0 {
			return c
		}
		return cmp.Compare(a.idx, b.idx)
	})

	var buckets [][]int
	minLen := pairs[0].length
	maxLen := minLen + lenDiff
	var cur []int
	for _, p := range pairs {
		if p.length >= minLen && p.length < maxLen {
			cur = append(cur, p.idx)
			continue
		}
		buckets = append(buckets, cur)
		cur = []int{p.idx}
		minLen = p.length
		maxLen = minLen + lenDiff
	}
	if len(cur) > 0 {
		buckets = append(buckets, cur)
	}
	return buckets
}

// Reshuffle regenerates the ordering for the next pass. With bucketing on:
// permute within each bucket, permute bucket order, flatten, regroup into
// BatchSize chunks (remainder dropped), permute chunk order, flatten. With
// bucketing off: permute the whole sequence.
func (s *BucketSampler) Reshuffle() {
	if !s.opts.Bucket {
		s.idxs = permuted(s.rng, s.idxs)
		return
	}

	shuffled := make([][]int, len(s.buckets))
	for i, b := range s.buckets {
		shuffled[i] = permuted(s.rng, b)
	}
	s.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	flat := flatten(shuffled)

	nChunks := len(flat) / s.opts.BatchSize
	chunks := make([][]int, nChunks)
	for i := range chunks {
		chunks[i] = flat[i*s.opts.BatchSize : (i+1)*s.opts.BatchSize]
	}
	s.rng.Shuffle(len(chunks), func(i, j int) {
		chunks[i], chunks[j] = chunks[j], chunks[i]
	})
	s.idxs = flatten(chunks)
}

// All returns one pass over the current ordering. Consuming the pass to the
// end triggers a reshuffle for the next epoch when shuffling is enabled;
// breaking out early leaves the ordering untouched.
func (s *BucketSampler) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		for _, idx := range s.idxs {
			if !yield(idx) {
				return
			}
		}
		if s.opts.Shuffle {
			s.Reshuffle()
		}
	}
}

// Len reports how many indices the current ordering holds. After a bucketed
// reshuffle this can be smaller than the dataset by len mod BatchSize.
func (s *BucketSampler) Len() int {
	return len(s.idxs)
}

// Indices returns a copy of the current ordering.
func (s *BucketSampler) Indices() []int {
	out := make([]int, len(s.idxs))
	copy(out, s.idxs)
	return out
}

// BucketSizes returns the size of each bucket in formation order, or nil when
// bucketing is disabled.
func (s *BucketSampler) BucketSizes() []int {
	if s.buckets == nil {
		return nil
	}
	sizes := make([]int, len(s.buckets))
	for i, b := range s.buckets {
		sizes[i] = len(b)
	}
	return sizes
}

func permuted(rng *rand.Rand, in []int) []int {
	out := make([]int, len(in))
	copy(out, in)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

func flatten(groups [][]int) []int {
	n := 0
	for _, g := range groups {
		n += len(g)
	}
	out := make([]int, 0, n)
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
