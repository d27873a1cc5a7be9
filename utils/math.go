package utils

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Matrix helpers used throughout the forward pipeline.

// r = rows of matrix
// c = columns of matrix
// o = output
// m = matrix input number 1
// n = matrix input number 2

func Dot(m, n mat.Matrix) mat.Matrix {
	r, _ := m.Dims()
	_, c := n.Dims()
	o := mat.NewDense(r, c, nil)
	o.Product(m, n)
	return o
}

func Apply(fn func(i, j int, v float64) float64, m mat.Matrix) mat.Matrix {
	r, c := m.Dims()
	o := mat.NewDense(r, c, nil)
	o.Apply(fn, m)
	return o
}

func Scale(s float64, m mat.Matrix) mat.Matrix {
	r, c := m.Dims()
	o := mat.NewDense(r, c, nil)
	o.Scale(s, m)
	return o
}

func Add(m, n mat.Matrix) mat.Matrix {
	r, c := m.Dims()
	o := mat.NewDense(r, c, nil)
	o.Add(m, n)
	return o
}

func ToDense(m mat.Matrix) *mat.Dense {
	if d, ok := m.(*mat.Dense); ok {
		return d
	}
	return mat.DenseCopyOf(m)
}

func ZerosLike(a *mat.Dense) *mat.Dense {
	r, c := a.Dims()
	return mat.NewDense(r, c, nil)
}

func OnesRow(c int) *mat.Dense {
	out := mat.NewDense(1, c, nil)
	for j := 0; j < c; j++ {
		out.Set(0, j, 1)
	}
	return out
}

// XavierArray returns Glorot/fan-avg uniform values for a (fanIn x fanOut)
// weight matrix.
func XavierArray(fanIn, fanOut int) []float64 {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	out := make([]float64, fanIn*fanOut)
	for i := range out {
		out[i] = -bound + 2*bound*rand.Float64()
	}
	return out
}

// AddRowVec adds a (1 x c) row vector to every row of m.
func AddRowVec(m, row *mat.Dense) *mat.Dense {
	r, c := m.Dims()
	rr, rc := row.Dims()
	if rr != 1 || rc != c {
		panic(fmt.Sprintf("AddRowVec: row must be (1 x %d), got (%d x %d)", c, rr, rc))
	}
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, m.At(i, j)+row.At(0, j))
		}
	}
	return out
}

// ---------- Softmax variants ----------

// MaskFill is the additive constant driving masked scores to effective
// negative infinity before softmax. Any fill below roughly -1e4 already
// saturates float64 softmax to the same distribution.
const MaskFill = -1e9

// RowSoftmax applies softmax independently to each row across columns.
// Attention scores have shape (Lq x Lk); row sums come out as 1.
func RowSoftmax(m mat.Matrix) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		mx := m.At(i, 0)
		for j := 1; j < c; j++ {
			if v := m.At(i, j); v > mx {
				mx = v
			}
		}
		sum := 0.0
		for j := 0; j < c; j++ {
			e := math.Exp(m.At(i, j) - mx)
			out.Set(i, j, e)
			sum += e
		}
		inv := 1.0 / sum
		for j := 0; j < c; j++ {
			out.Set(i, j, out.At(i, j)*inv)
		}
	}
	return out
}

// RowSoftmaxMasked computes softmax(m + fill*(1-mask)) per row. The mask
// uses the 1 = attend, 0 = block convention and must have either the same
// shape as m or a single row that is broadcast across all query rows.
// A fully masked row degenerates to the uniform distribution: every score
// receives the same MaskFill shift, so softmax flattens rather than NaNs.
func RowSoftmaxMasked(m, mask *mat.Dense) *mat.Dense {
	if mask == nil {
		return RowSoftmax(m)
	}
	r, c := m.Dims()
	mr, mc := mask.Dims()
	if mc != c || (mr != r && mr != 1) {
		panic(fmt.Sprintf("RowSoftmaxMasked: mask (%d x %d) incompatible with scores (%d x %d)", mr, mc, r, c))
	}
	filled := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		mi := i
		if mr == 1 {
			mi = 0
		}
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if mask.At(mi, j) == 0 {
				v = MaskFill
			}
			filled.Set(i, j, v)
		}
	}
	return RowSoftmax(filled)
}

// RowLogSoftmax applies log-softmax independently to each row.
func RowLogSoftmax(m mat.Matrix) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		mx := m.At(i, 0)
		for j := 1; j < c; j++ {
			if v := m.At(i, j); v > mx {
				mx = v
			}
		}
		sum := 0.0
		for j := 0; j < c; j++ {
			sum += math.Exp(m.At(i, j) - mx)
		}
		lse := mx + math.Log(sum)
		for j := 0; j < c; j++ {
			out.Set(i, j, m.At(i, j)-lse)
		}
	}
	return out
}

// ArgmaxRows returns the column index of the max entry in each row.
func ArgmaxRows(m *mat.Dense) []int {
	r, c := m.Dims()
	out := make([]int, r)
	for i := 0; i < r; i++ {
		best, bestJ := m.At(i, 0), 0
		for j := 1; j < c; j++ {
			if v := m.At(i, j); v > best {
				best, bestJ = v, j
			}
		}
		out[i] = bestJ
	}
	return out
}

// ArgmaxRow returns the index of the max entry of a (1 x c) row vector.
func ArgmaxRow(m *mat.Dense) int {
	return ArgmaxRows(m)[0]
}

// RowSums returns per-row sums for a mat.Dense.
func RowSums(m *mat.Dense) []float64 {
	r, c := m.Dims()
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		sum := 0.0
		for j := 0; j < c; j++ {
			sum += m.At(i, j)
		}
		out[i] = sum
	}
	return out
}

// ReluApply is shape-compatible with mat.Dense.Apply.
func ReluApply(i, j int, v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
