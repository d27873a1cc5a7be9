package transformer

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/RoyHirsch/TextualStyleTransfer/utils"
)

// LayerNorm normalizes each row (position) across the feature columns,
// then applies the learned per-feature affine. The denominator uses the
// sample standard deviation with eps added outside the square root.
type LayerNorm struct {
	D     int
	Eps   float64
	Gamma *mat.Dense // (1 x d)
	Beta  *mat.Dense // (1 x d)
}

func NewLayerNorm(d int, eps float64) *LayerNorm {
	return &LayerNorm{
		D:     d,
		Eps:   eps,
		Gamma: utils.OnesRow(d),
		Beta:  mat.NewDense(1, d, nil),
	}
}

// Forward maps (T x d) -> (T x d).
func (ln *LayerNorm) Forward(x *mat.Dense) *mat.Dense {
	t, d := x.Dims()
	if d != ln.D {
		panic("LayerNorm: feature width mismatch")
	}
	out := mat.NewDense(t, d, nil)
	for i := 0; i < t; i++ {
		mu := 0.0
		for j := 0; j < d; j++ {
			mu += x.At(i, j)
		}
		mu /= float64(d)
		v := 0.0
		for j := 0; j < d; j++ {
			diff := x.At(i, j) - mu
			v += diff * diff
		}
		// sample std, matching the reference normalization
		std := 0.0
		if d > 1 {
			std = math.Sqrt(v / float64(d-1))
		}
		inv := 1.0 / (std + ln.Eps)
		for j := 0; j < d; j++ {
			n := (x.At(i, j) - mu) * inv
			out.Set(i, j, ln.Gamma.At(0, j)*n+ln.Beta.At(0, j))
		}
	}
	return out
}

func (ln *LayerNorm) Params() []*mat.Dense {
	return []*mat.Dense{ln.Gamma, ln.Beta}
}

// SublayerConnection wraps a sublayer f with pre-normalization, dropout and
// a residual addition: x + dropout(f(norm(x))). Input and output shapes are
// identical by construction.
type SublayerConnection struct {
	Norm    *LayerNorm
	Dropout float64
}

func NewSublayerConnection(d int, dropout float64) *SublayerConnection {
	return &SublayerConnection{Norm: NewLayerNorm(d, 1e-6), Dropout: dropout}
}

func (s *SublayerConnection) Forward(x *mat.Dense, f func(*mat.Dense) *mat.Dense, training bool) *mat.Dense {
	y := utils.Dropout(f(s.Norm.Forward(x)), s.Dropout, training)
	return utils.ToDense(utils.Add(x, y))
}

func (s *SublayerConnection) Params() []*mat.Dense {
	return s.Norm.Params()
}
