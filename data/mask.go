// Package data holds the batch, mask and iteration collaborators that feed
// the model: token-id sequences, style labels and the per-batch masks.
package data

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/RoyHirsch/TextualStyleTransfer/params"
)

// Masks use the 1 = attend, 0 = block convention; the attention primitive's
// fill branch depends on it bit-for-bit.

// PadMask returns the (1 x T) source padding mask: 1 where the id is a real
// token, 0 where it is padding.
func PadMask(src []int) *mat.Dense {
	out := mat.NewDense(1, len(src), nil)
	for j, id := range src {
		if id != params.PadID {
			out.Set(0, j, 1)
		}
	}
	return out
}

// SubsequentMask returns the (T x T) causal mask: position i may attend to
// positions j <= i only.
func SubsequentMask(t int) *mat.Dense {
	out := mat.NewDense(t, t, nil)
	for i := 0; i < t; i++ {
		for j := 0; j <= i; j++ {
			out.Set(i, j, 1)
		}
	}
	return out
}

// MakeMasks builds the source mask (padding-aware) and the target mask
// (padding AND causal) for one example. In reconstruction the target is the
// source itself, so callers usually pass the same slice twice.
func MakeMasks(src, tgt []int) (srcMask, tgtMask *mat.Dense) {
	srcMask = PadMask(src)

	t := len(tgt)
	tgtMask = SubsequentMask(t)
	for i := 0; i < t; i++ {
		for j := 0; j < t; j++ {
			if tgt[j] == params.PadID {
				tgtMask.Set(i, j, 0)
			}
		}
	}
	return srcMask, tgtMask
}

// Batch is one padded batch of token-id sequences with their style labels.
type Batch struct {
	Src    [][]int
	Labels []int
}

// Len returns the number of examples in the batch.
func (b *Batch) Len() int { return len(b.Src) }

// Validate checks the batch is rectangular and labeled one-to-one.
func (b *Batch) Validate() error {
	if len(b.Src) != len(b.Labels) {
		return fmt.Errorf("batch: %d sequences but %d labels", len(b.Src), len(b.Labels))
	}
	if len(b.Src) == 0 {
		return nil
	}
	t := len(b.Src[0])
	for i, s := range b.Src {
		if len(s) != t {
			return fmt.Errorf("batch: sequence %d has length %d, want %d", i, len(s), t)
		}
	}
	return nil
}

// MakeBatches splits a dataset into fixed-size batches, in order. The last
// batch may be short.
func MakeBatches(seqs [][]int, labels []int, batchSize int) ([]Batch, error) {
	if len(seqs) != len(labels) {
		return nil, fmt.Errorf("data: %d sequences but %d labels", len(seqs), len(labels))
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("data: invalid batch size %d", batchSize)
	}
	var out []Batch
	for i := 0; i < len(seqs); i += batchSize {
		end := i + batchSize
		if end > len(seqs) {
			end = len(seqs)
		}
		b := Batch{Src: seqs[i:end], Labels: labels[i:end]}
		if err := b.Validate(); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}
