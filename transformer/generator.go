package transformer

import (
	"gonum.org/v1/gonum/mat"

	"github.com/RoyHirsch/TextualStyleTransfer/utils"
)

// Generator is the linear projection to vocabulary size followed by
// log-softmax normalization. Exponentials of each output row sum to 1.
type Generator struct {
	Proj *mat.Dense // (dModel x vocab)
	Bias *mat.Dense // (1 x vocab)
}

func NewGenerator(dModel, vocab int) *Generator {
	return &Generator{
		Proj: mat.NewDense(dModel, vocab, utils.XavierArray(dModel, vocab)),
		Bias: mat.NewDense(1, vocab, nil),
	}
}

// Forward maps (T x dModel) -> (T x vocab) log-probabilities.
func (g *Generator) Forward(x *mat.Dense) *mat.Dense {
	logits := utils.AddRowVec(utils.ToDense(utils.Dot(x, g.Proj)), g.Bias)
	return utils.RowLogSoftmax(logits)
}

func (g *Generator) Params() []*mat.Dense {
	return []*mat.Dense{g.Proj, g.Bias}
}

// Classifier predicts the style of an encoded sequence: mean-pool over the
// positions, then one linear map to style logits.
type Classifier struct {
	W *mat.Dense // (dModel x nStyles)
	B *mat.Dense // (1 x nStyles)
}

func NewClassifier(dModel, nStyles int) *Classifier {
	return &Classifier{
		W: mat.NewDense(dModel, nStyles, utils.XavierArray(dModel, nStyles)),
		B: mat.NewDense(1, nStyles, nil),
	}
}

// Forward maps an encoded sequence (T x dModel) to (1 x nStyles) logits.
func (c *Classifier) Forward(encOut *mat.Dense) *mat.Dense {
	t, d := encOut.Dims()
	pooled := mat.NewDense(1, d, nil)
	for j := 0; j < d; j++ {
		sum := 0.0
		for i := 0; i < t; i++ {
			sum += encOut.At(i, j)
		}
		pooled.Set(0, j, sum/float64(t))
	}
	return utils.AddRowVec(utils.ToDense(utils.Dot(pooled, c.W)), c.B)
}

func (c *Classifier) Params() []*mat.Dense {
	return []*mat.Dense{c.W, c.B}
}
