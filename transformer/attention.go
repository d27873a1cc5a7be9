package transformer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/RoyHirsch/TextualStyleTransfer/utils"
)

// Attention computes scaled dot-product attention for one head.
//
//	q: (Lq x dK), k: (Lk x dK), v: (Lk x dV)
//	mask: nil, (1 x Lk) broadcast over query rows, or (Lq x Lk); 1 = attend, 0 = block
//
// Returns the attended output (Lq x dV) and the attention distribution
// (Lq x Lk). Each unmasked row of the distribution sums to 1; a fully
// masked row degenerates to uniform (see utils.RowSoftmaxMasked).
func Attention(q, k, v, mask *mat.Dense, dropout float64, training bool) (*mat.Dense, *mat.Dense) {
	_, dk := q.Dims()
	lk, dk2 := k.Dims()
	lv, _ := v.Dims()
	if dk != dk2 {
		panic(fmt.Sprintf("Attention: q dim %d != k dim %d", dk, dk2))
	}
	if lk != lv {
		panic(fmt.Sprintf("Attention: key length %d != value length %d", lk, lv))
	}

	scores := utils.ToDense(utils.Dot(q, k.T()))
	scores.Scale(1.0/math.Sqrt(float64(dk)), scores)

	pAttn := utils.RowSoftmaxMasked(scores, mask)
	pAttn = utils.Dropout(pAttn, dropout, training)

	out := utils.ToDense(utils.Dot(pAttn, v))
	return out, pAttn
}

// MultiHeadAttention projects query/key/value through four learned linear
// maps, runs Attention per head and recombines the heads. Attention weights
// are returned to the caller instead of being cached on the struct, so one
// instance is safe to share across concurrent readers.
type MultiHeadAttention struct {
	H       int
	DModel  int
	DHead   int
	Dropout float64

	Wquery  *mat.Dense // (dModel x dModel)
	Wkey    *mat.Dense // (dModel x dModel)
	Wvalue  *mat.Dense // (dModel x dModel)
	Woutput *mat.Dense // (dModel x dModel)
}

// NewMultiHeadAttention builds an H-head attention layer. dModel must be
// evenly divisible by h; violating that is a construction bug, not a
// runtime condition, so it panics.
func NewMultiHeadAttention(h, dModel int, dropout float64) *MultiHeadAttention {
	if h <= 0 || dModel%h != 0 {
		panic(fmt.Sprintf("NewMultiHeadAttention: dModel (%d) must be divisible by h (%d)", dModel, h))
	}
	return &MultiHeadAttention{
		H:       h,
		DModel:  dModel,
		DHead:   dModel / h,
		Dropout: dropout,
		Wquery:  mat.NewDense(dModel, dModel, utils.XavierArray(dModel, dModel)),
		Wkey:    mat.NewDense(dModel, dModel, utils.XavierArray(dModel, dModel)),
		Wvalue:  mat.NewDense(dModel, dModel, utils.XavierArray(dModel, dModel)),
		Woutput: mat.NewDense(dModel, dModel, utils.XavierArray(dModel, dModel)),
	}
}

// Forward runs multi-head attention over one sequence.
//
//	query: (Lq x dModel), key/value: (Lk x dModel)
//
// The same mask is applied to all heads. Returns the combined output
// (Lq x dModel) and the per-head attention distributions.
func (m *MultiHeadAttention) Forward(query, key, value, mask *mat.Dense, training bool) (*mat.Dense, []*mat.Dense) {
	lq, d := query.Dims()
	if d != m.DModel {
		panic(fmt.Sprintf("MultiHeadAttention: input width %d, want %d", d, m.DModel))
	}
	lk, _ := key.Dims()

	// Project in full width once, then slice per-head column blocks.
	q := utils.ToDense(utils.Dot(query, m.Wquery))
	k := utils.ToDense(utils.Dot(key, m.Wkey))
	v := utils.ToDense(utils.Dot(value, m.Wvalue))

	headsCat := mat.NewDense(lq, m.DModel, nil)
	weights := make([]*mat.Dense, m.H)
	for h := 0; h < m.H; h++ {
		base := h * m.DHead
		qh := q.Slice(0, lq, base, base+m.DHead).(*mat.Dense)
		kh := k.Slice(0, lk, base, base+m.DHead).(*mat.Dense)
		vh := v.Slice(0, lk, base, base+m.DHead).(*mat.Dense)

		oh, ah := Attention(qh, kh, vh, mask, m.Dropout, training)
		weights[h] = ah

		dst := headsCat.Slice(0, lq, base, base+m.DHead).(*mat.Dense)
		dst.Copy(oh)
	}

	out := utils.ToDense(utils.Dot(headsCat, m.Woutput))
	return out, weights
}

// Params returns the learned matrices in a stable order for checkpointing.
func (m *MultiHeadAttention) Params() []*mat.Dense {
	return []*mat.Dense{m.Wquery, m.Wkey, m.Wvalue, m.Woutput}
}
