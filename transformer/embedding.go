package transformer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/RoyHirsch/TextualStyleTransfer/utils"
)

// Embeddings maps token ids to dense rows of the lookup table, scaled by
// sqrt(dModel). The source and target streams share one instance.
type Embeddings struct {
	LUT    *mat.Dense // (vocab x dModel)
	DModel int
}

func NewEmbeddings(dModel, vocab int) *Embeddings {
	return &Embeddings{
		LUT:    mat.NewDense(vocab, dModel, utils.XavierArray(vocab, dModel)),
		DModel: dModel,
	}
}

// Forward maps ids to a (T x dModel) matrix.
func (e *Embeddings) Forward(ids []int) *mat.Dense {
	v, d := e.LUT.Dims()
	scale := math.Sqrt(float64(e.DModel))
	out := mat.NewDense(len(ids), d, nil)
	for t, id := range ids {
		if id < 0 || id >= v {
			panic(fmt.Sprintf("Embeddings: id %d out of range [0, %d)", id, v))
		}
		row := e.LUT.RawRowView(id)
		for j := 0; j < d; j++ {
			out.Set(t, j, row[j]*scale)
		}
	}
	return out
}

func (e *Embeddings) Params() []*mat.Dense {
	return []*mat.Dense{e.LUT}
}

// StyleEmbedding maps a discrete style label to one dModel-wide vector.
type StyleEmbedding struct {
	Table *mat.Dense // (nStyles x dModel)
}

func NewStyleEmbedding(nStyles, dModel int) *StyleEmbedding {
	return &StyleEmbedding{Table: mat.NewDense(nStyles, dModel, utils.XavierArray(nStyles, dModel))}
}

// Lookup returns the style vector as a (1 x dModel) row, ready to be
// prepended to a sequence or broadcast-added across its positions.
func (s *StyleEmbedding) Lookup(label int) *mat.Dense {
	n, d := s.Table.Dims()
	if label < 0 || label >= n {
		panic(fmt.Sprintf("StyleEmbedding: label %d out of range [0, %d)", label, n))
	}
	out := mat.NewDense(1, d, nil)
	copy(out.RawRowView(0), s.Table.RawRowView(label))
	return out
}

func (s *StyleEmbedding) Params() []*mat.Dense {
	return []*mat.Dense{s.Table}
}
