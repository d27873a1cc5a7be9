package transformer

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/RoyHirsch/TextualStyleTransfer/utils"
)

var testRng = rand.New(rand.NewSource(123))

func randDense(r, c int) *mat.Dense {
	data := make([]float64, r*c)
	for i := range data {
		data[i] = testRng.NormFloat64()
	}
	return mat.NewDense(r, c, data)
}

func TestAttentionShapeAndNormalization(t *testing.T) {
	q := randDense(5, 4)
	k := randDense(7, 4)
	v := randDense(7, 4)

	out, attn := Attention(q, k, v, nil, 0, false)

	if r, c := out.Dims(); r != 5 || c != 4 {
		t.Fatalf("output dims = (%d, %d), want (5, 4)", r, c)
	}
	if r, c := attn.Dims(); r != 5 || c != 7 {
		t.Fatalf("weight dims = (%d, %d), want (5, 7)", r, c)
	}
	for i, s := range utils.RowSums(attn) {
		if math.Abs(s-1.0) > 1e-9 {
			t.Fatalf("attention row %d sums to %.9f, want 1", i, s)
		}
	}
}

func TestAttentionMaskBlocksPositions(t *testing.T) {
	q := randDense(3, 4)
	k := randDense(4, 4)
	v := randDense(4, 4)

	// block key positions 2 and 3 for every query row
	mask := mat.NewDense(1, 4, []float64{1, 1, 0, 0})
	_, attn := Attention(q, k, v, mask, 0, false)

	for i := 0; i < 3; i++ {
		for j := 2; j < 4; j++ {
			if w := attn.At(i, j); w > 1e-9 {
				t.Fatalf("masked weight [%d,%d] = %g, want ~0", i, j, w)
			}
		}
		if s := attn.At(i, 0) + attn.At(i, 1); math.Abs(s-1.0) > 1e-9 {
			t.Fatalf("unmasked mass in row %d sums to %.9f, want 1", i, s)
		}
	}
}

// A fully masked row saturates every score to the same fill value, so the
// softmax degenerates to uniform.
func TestAttentionFullyMaskedRowUniform(t *testing.T) {
	q := randDense(2, 4)
	k := randDense(3, 4)
	v := randDense(3, 4)

	mask := mat.NewDense(2, 3, []float64{
		1, 1, 0,
		0, 0, 0,
	})
	_, attn := Attention(q, k, v, mask, 0, false)

	for j := 0; j < 3; j++ {
		if w := attn.At(1, j); math.Abs(w-1.0/3.0) > 1e-9 {
			t.Fatalf("fully-masked row weight [1,%d] = %g, want 1/3", j, w)
		}
	}
}

func TestMultiHeadAttentionShapes(t *testing.T) {
	cases := []struct{ d, h int }{
		{8, 1},
		{8, 2},
		{12, 4},
	}
	for _, c := range cases {
		m := NewMultiHeadAttention(c.h, c.d, 0)
		x := randDense(6, c.d)
		mask := mat.NewDense(1, 6, []float64{1, 1, 1, 1, 1, 0})

		out, weights := m.Forward(x, x, x, mask, false)
		if r, cc := out.Dims(); r != 6 || cc != c.d {
			t.Fatalf("d=%d h=%d: output dims (%d, %d), want (6, %d)", c.d, c.h, r, cc, c.d)
		}
		if len(weights) != c.h {
			t.Fatalf("d=%d h=%d: got %d head weights", c.d, c.h, len(weights))
		}
		for hi, w := range weights {
			if r, cc := w.Dims(); r != 6 || cc != 6 {
				t.Fatalf("head %d weight dims (%d, %d), want (6, 6)", hi, r, cc)
			}
		}
	}
}

// Attention is a weighted sum over value rows: reordering key/value rows
// together with the mask columns must leave the output untouched.
func TestAttentionKeyValuePermutationInvariance(t *testing.T) {
	q := randDense(3, 4)
	k := randDense(4, 4)
	v := randDense(4, 4)
	mask := mat.NewDense(1, 4, []float64{1, 1, 0, 1})

	want, _ := Attention(q, k, v, mask, 0, false)

	perms := [][]int{
		{1, 0, 2, 3},
		{3, 2, 1, 0},
		{2, 3, 0, 1},
	}
	for _, perm := range perms {
		kp := mat.NewDense(4, 4, nil)
		vp := mat.NewDense(4, 4, nil)
		mp := mat.NewDense(1, 4, nil)
		for i, src := range perm {
			copy(kp.RawRowView(i), k.RawRowView(src))
			copy(vp.RawRowView(i), v.RawRowView(src))
			mp.Set(0, i, mask.At(0, src))
		}

		got, _ := Attention(q, kp, vp, mp, 0, false)
		if !mat.EqualApprox(got, want, 1e-12) {
			t.Fatalf("permutation %v changed the attention output", perm)
		}
	}
}

// Any fill below roughly -1e4 already drives exp to zero in float64, so the
// masked distribution must be identical no matter how deep the fill goes.
func TestAttentionMaskFillSaturation(t *testing.T) {
	q := randDense(3, 4)
	k := randDense(4, 4)
	v := randDense(4, 4)
	mask := mat.NewDense(1, 4, []float64{1, 0, 1, 1})

	_, attn := Attention(q, k, v, mask, 0, false)

	scores := utils.ToDense(utils.Dot(q, k.T()))
	scores.Scale(1.0/math.Sqrt(4), scores)

	for _, fill := range []float64{-1e4, -1e6, utils.MaskFill} {
		filled := mat.DenseCopyOf(scores)
		for i := 0; i < 3; i++ {
			for j := 0; j < 4; j++ {
				if mask.At(0, j) == 0 {
					filled.Set(i, j, fill)
				}
			}
		}
		want := utils.RowSoftmax(filled)
		if !mat.EqualApprox(attn, want, 1e-12) {
			t.Fatalf("fill %g yields a different distribution than the mask path", fill)
		}
	}
}

func TestMultiHeadAttentionDivisibilityPanic(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for dModel not divisible by h")
		}
	}()
	NewMultiHeadAttention(3, 8, 0)
}
