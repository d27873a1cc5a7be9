package transformer

import (
	"gonum.org/v1/gonum/mat"

	"github.com/RoyHirsch/TextualStyleTransfer/utils"
)

// PositionwiseFeedForward is the two-stage projection applied to every
// position independently: dModel -> dFF, ReLU, dropout, dFF -> dModel.
type PositionwiseFeedForward struct {
	W1      *mat.Dense // (dModel x dFF)
	B1      *mat.Dense // (1 x dFF)
	W2      *mat.Dense // (dFF x dModel)
	B2      *mat.Dense // (1 x dModel)
	Dropout float64
}

func NewPositionwiseFeedForward(dModel, dFF int, dropout float64) *PositionwiseFeedForward {
	return &PositionwiseFeedForward{
		W1:      mat.NewDense(dModel, dFF, utils.XavierArray(dModel, dFF)),
		B1:      mat.NewDense(1, dFF, nil),
		W2:      mat.NewDense(dFF, dModel, utils.XavierArray(dFF, dModel)),
		B2:      mat.NewDense(1, dModel, nil),
		Dropout: dropout,
	}
}

// Forward maps (T x dModel) -> (T x dModel).
func (f *PositionwiseFeedForward) Forward(x *mat.Dense, training bool) *mat.Dense {
	h := utils.AddRowVec(utils.ToDense(utils.Dot(x, f.W1)), f.B1)
	h = utils.ToDense(utils.Apply(utils.ReluApply, h))
	h = utils.Dropout(h, f.Dropout, training)
	return utils.AddRowVec(utils.ToDense(utils.Dot(h, f.W2)), f.B2)
}

func (f *PositionwiseFeedForward) Params() []*mat.Dense {
	return []*mat.Dense{f.W1, f.B1, f.W2, f.B2}
}
