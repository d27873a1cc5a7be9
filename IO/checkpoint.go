package IO

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"
)

// Gob-based weight checkpoints. Each model exposes Params() returning its
// learned matrices in a stable order; the checkpoint stores the raw data of
// each and loading copies them back into a freshly built model of the same
// configuration.

type matData struct {
	R, C int
	Data []float64
}

type checkpointData struct {
	Mats []matData
}

// SaveModel persists the matrices to filename (created/overwritten).
func SaveModel(filename string, mats []*mat.Dense) error {
	data := checkpointData{Mats: make([]matData, len(mats))}
	for i, m := range mats {
		r, c := m.Dims()
		raw := mat.DenseCopyOf(m).RawMatrix()
		data.Mats[i] = matData{R: r, C: c, Data: append([]float64(nil), raw.Data...)}
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(data); err != nil {
		return err
	}
	return os.WriteFile(filename, buf.Bytes(), 0o644)
}

// LoadModel restores matrices saved by SaveModel into mats, in order. The
// receiving model must have been built with the same configuration; any
// count or shape mismatch aborts the load.
func LoadModel(filename string, mats []*mat.Dense) error {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	var data checkpointData
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&data); err != nil {
		return err
	}
	if len(data.Mats) != len(mats) {
		return fmt.Errorf("LoadModel: parameter count mismatch (have %d, file %d)", len(mats), len(data.Mats))
	}
	for i, m := range mats {
		r, c := m.Dims()
		if data.Mats[i].R != r || data.Mats[i].C != c {
			return fmt.Errorf("LoadModel: matrix %d is (%d x %d), file has (%d x %d)",
				i, r, c, data.Mats[i].R, data.Mats[i].C)
		}
		m.Copy(mat.NewDense(r, c, data.Mats[i].Data))
	}
	return nil
}
