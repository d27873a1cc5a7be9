// Package IO handles everything that crosses the process boundary: vocab
// import/export, pretrained embeddings, BPE training and model checkpoints.
package IO

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/RoyHirsch/TextualStyleTransfer/params"
	"github.com/RoyHirsch/TextualStyleTransfer/transformer"
)

// LoadPretrainedEmbedding overwrites the token-embedding table in place
// with a precomputed (vocab x dModel) matrix keyed by vocabulary id, e.g. a
// Glove export. The overwrite is destructive.
func LoadPretrainedEmbedding(emb *transformer.Embeddings, pretrained *mat.Dense) error {
	vr, vc := emb.LUT.Dims()
	pr, pc := pretrained.Dims()
	if pr != vr || pc != vc {
		return fmt.Errorf("pretrained embedding is (%d x %d), table is (%d x %d)", pr, pc, vr, vc)
	}
	emb.LUT.Copy(pretrained)
	log.Printf("Loaded pre-calculated embedding (%d x %d)", pr, pc)
	return nil
}

// ExportVocabJSON writes the current vocab maps to path.
func ExportVocabJSON(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	data := map[string]any{
		"TokenToID": params.Vocab.TokenToID,
		"IDToToken": params.Vocab.IDToToken,
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ImportVocabJSON loads vocab maps written by ExportVocabJSON into
// params.Vocab.
func ImportVocabJSON(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	var data struct {
		TokenToID map[string]int
		IDToToken []string
	}
	if err := json.NewDecoder(f).Decode(&data); err != nil {
		return fmt.Errorf("invalid vocab file %s: %w", path, err)
	}
	if len(data.IDToToken) == 0 {
		return fmt.Errorf("vocab file %s is empty", path)
	}
	params.Vocab = params.Vocabulary{TokenToID: data.TokenToID, IDToToken: data.IDToToken}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
