package utils

import (
	"fmt"
	"log"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Dropout zeroes each element with probability p and rescales the survivors
// by 1/(1-p) (inverted dropout). Outside of training, or at p == 0, the
// input is returned untouched so inference stays deterministic.
func Dropout(m *mat.Dense, p float64, training bool) *mat.Dense {
	if !training || p <= 0 {
		return m
	}
	if p >= 1 {
		panic(fmt.Sprintf("Dropout: invalid probability %v", p))
	}
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	keep := 1.0 / (1.0 - p)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if rand.Float64() < p {
				out.Set(i, j, 0)
			} else {
				out.Set(i, j, m.At(i, j)*keep)
			}
		}
	}
	return out
}

// Debugf logs periodic diagnostics; callers gate it on params.Config.Debug.
func Debugf(format string, args ...any) {
	log.Printf(format, args...)
}
