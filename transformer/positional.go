package transformer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/RoyHirsch/TextualStyleTransfer/utils"
)

// PositionalEncoding holds the deterministic sinusoidal position table,
// precomputed once in log space up to maxLen positions. It carries no
// learned state; repeated calls with the same length are identical.
type PositionalEncoding struct {
	PE      *mat.Dense // (maxLen x dModel)
	MaxLen  int
	Dropout float64
}

func NewPositionalEncoding(dModel, maxLen int, dropout float64) *PositionalEncoding {
	pe := mat.NewDense(maxLen, dModel, nil)
	for pos := 0; pos < maxLen; pos++ {
		for i := 0; i < dModel; i += 2 {
			div := math.Exp(float64(i) * -(math.Log(10000.0) / float64(dModel)))
			pe.Set(pos, i, math.Sin(float64(pos)*div))
			if i+1 < dModel {
				pe.Set(pos, i+1, math.Cos(float64(pos)*div))
			}
		}
	}
	return &PositionalEncoding{PE: pe, MaxLen: maxLen, Dropout: dropout}
}

// Forward adds the position signal to x (T x dModel) and applies dropout.
// Sequences longer than the precomputed table are a hard bounds error.
func (p *PositionalEncoding) Forward(x *mat.Dense, training bool) *mat.Dense {
	t, d := x.Dims()
	if t > p.MaxLen {
		panic(fmt.Sprintf("PositionalEncoding: sequence length %d exceeds table length %d", t, p.MaxLen))
	}
	out := utils.ToDense(utils.Add(x, p.PE.Slice(0, t, 0, d)))
	return utils.Dropout(out, p.Dropout, training)
}
