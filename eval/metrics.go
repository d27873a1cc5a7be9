// Package eval runs the no-gradient evaluation and generation pipelines:
// loss/accuracy accumulation over a validation stream, greedy decoding and
// style-flipped batch generation.
package eval

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/RoyHirsch/TextualStyleTransfer/utils"
)

// Running accumulators. All are associative sums/counts, so cross-batch
// order does not matter, and every one of them reports 0 when nothing was
// observed instead of dividing by zero.

// Loss accumulates a running average of per-batch loss values.
type Loss struct {
	sum float64
	n   int
}

func (l *Loss) Update(v float64) {
	l.sum += v
	l.n++
}

// Avg returns the mean observed loss, or 0 with no observations.
func (l *Loss) Avg() float64 {
	if l.n == 0 {
		return 0
	}
	return l.sum / float64(l.n)
}

// AccuracyRec accumulates token-level reconstruction accuracy, flattened
// across batch and position.
type AccuracyRec struct {
	correct int
	total   int
}

// Update compares the argmax of each predicted distribution row against the
// reference ids. preds is (T x V); ids must have T entries.
func (a *AccuracyRec) Update(preds *mat.Dense, ids []int) {
	t, _ := preds.Dims()
	if t != len(ids) {
		panic(fmt.Sprintf("AccuracyRec: %d predictions vs %d reference ids", t, len(ids)))
	}
	hyp := utils.ArgmaxRows(preds)
	for i, id := range ids {
		if hyp[i] == id {
			a.correct++
		}
		a.total++
	}
}

// Value returns the running accuracy, or 0 with no observations.
func (a *AccuracyRec) Value() float64 {
	if a.total == 0 {
		return 0
	}
	return float64(a.correct) / float64(a.total)
}

// AccuracyCls accumulates example-level classification accuracy.
type AccuracyCls struct {
	correct int
	total   int
}

// Update compares argmax of (1 x nStyles) logits against the true label.
func (a *AccuracyCls) Update(logits *mat.Dense, label int) {
	if utils.ArgmaxRow(logits) == label {
		a.correct++
	}
	a.total++
}

// Value returns the running accuracy, or 0 with no observations.
func (a *AccuracyCls) Value() float64 {
	if a.total == 0 {
		return 0
	}
	return float64(a.correct) / float64(a.total)
}

// ---------- Criteria ----------

// CrossEntropyLogits is the classification criterion: negative log-softmax
// probability of the true label given (1 x nStyles) logits.
func CrossEntropyLogits(logits *mat.Dense, label int) float64 {
	_, c := logits.Dims()
	if label < 0 || label >= c {
		panic(fmt.Sprintf("CrossEntropyLogits: label %d out of range [0, %d)", label, c))
	}
	logProbs := utils.RowLogSoftmax(logits)
	return -logProbs.At(0, label)
}

// SequenceNLL is the reconstruction criterion: mean negative log-probability
// of the reference ids under (T x V) log-probabilities.
func SequenceNLL(logProbs *mat.Dense, ids []int) float64 {
	t, v := logProbs.Dims()
	if t != len(ids) {
		panic(fmt.Sprintf("SequenceNLL: %d predictions vs %d reference ids", t, len(ids)))
	}
	sum := 0.0
	for i, id := range ids {
		if id < 0 || id >= v {
			panic(fmt.Sprintf("SequenceNLL: id %d out of range [0, %d)", id, v))
		}
		sum -= logProbs.At(i, id)
	}
	return sum / float64(t)
}

// EntropyFromLogits is the entropy regularization criterion over classifier
// logits; it depends on no label.
func EntropyFromLogits(logits *mat.Dense) float64 {
	logProbs := utils.RowLogSoftmax(logits)
	r, c := logProbs.Dims()
	ent := 0.0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			lp := logProbs.At(i, j)
			ent -= math.Exp(lp) * lp
		}
	}
	return ent / float64(r)
}
