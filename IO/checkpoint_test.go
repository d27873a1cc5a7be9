package IO

import (
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/RoyHirsch/TextualStyleTransfer/params"
	"github.com/RoyHirsch/TextualStyleTransfer/transformer"
)

func smallConfig() params.ModelConfig {
	return params.ModelConfig{
		DModel:    8,
		DFF:       16,
		VocabSize: 10,
		NumHeads:  2,
		NumLayers: 1,
		NStyles:   2,
		Dropout:   0,
		MaxLen:    32,
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	cfg := smallConfig()
	_, dec := transformer.MakeEncoderDecoder(cfg)
	path := filepath.Join(t.TempDir(), "model.gob")

	if err := SaveModel(path, dec.Params()); err != nil {
		t.Fatal(err)
	}

	_, dec2 := transformer.MakeEncoderDecoder(cfg)
	want := dec.Params()
	got := dec2.Params()
	if mat.EqualApprox(want[0], got[0], 0) {
		t.Fatal("fresh model unexpectedly matches the saved one before loading")
	}

	if err := LoadModel(path, got); err != nil {
		t.Fatal(err)
	}
	for i := range want {
		if !mat.EqualApprox(want[i], got[i], 0) {
			t.Fatalf("matrix %d differs after round trip", i)
		}
	}
}

func TestLoadModelRejectsCountMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.gob")
	mats := []*mat.Dense{mat.NewDense(2, 2, []float64{1, 2, 3, 4})}
	if err := SaveModel(path, mats); err != nil {
		t.Fatal(err)
	}

	two := []*mat.Dense{mat.NewDense(2, 2, nil), mat.NewDense(2, 2, nil)}
	if err := LoadModel(path, two); err == nil {
		t.Fatal("expected error for parameter count mismatch")
	}
}

func TestLoadModelRejectsShapeMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.gob")
	if err := SaveModel(path, []*mat.Dense{mat.NewDense(2, 3, nil)}); err != nil {
		t.Fatal(err)
	}
	if err := LoadModel(path, []*mat.Dense{mat.NewDense(3, 2, nil)}); err == nil {
		t.Fatal("expected error for shape mismatch")
	}
}

func TestLoadPretrainedEmbedding(t *testing.T) {
	emb := transformer.NewEmbeddings(4, 6)
	pre := mat.NewDense(6, 4, nil)
	pre.Set(2, 1, 7)

	if err := LoadPretrainedEmbedding(emb, pre); err != nil {
		t.Fatal(err)
	}
	if emb.LUT.At(2, 1) != 7 {
		t.Fatal("embedding table not overwritten")
	}

	if err := LoadPretrainedEmbedding(emb, mat.NewDense(5, 4, nil)); err == nil {
		t.Fatal("expected error for shape mismatch")
	}
}

func TestVocabJSONRoundTrip(t *testing.T) {
	saved := params.Vocab
	defer func() { params.Vocab = saved }()

	words := append(append([]string{}, params.Special...), "hello", "world")
	t2i := make(map[string]int, len(words))
	for i, w := range words {
		t2i[w] = i
	}
	params.Vocab = params.Vocabulary{TokenToID: t2i, IDToToken: words}

	path := filepath.Join(t.TempDir(), "vocab.json")
	if err := ExportVocabJSON(path); err != nil {
		t.Fatal(err)
	}

	params.Vocab = params.Vocabulary{}
	if err := ImportVocabJSON(path); err != nil {
		t.Fatal(err)
	}
	if params.Vocab.Lookup("hello") != 4 {
		t.Fatalf("lookup hello = %d, want 4", params.Vocab.Lookup("hello"))
	}
	if params.Vocab.Lookup("missing") != params.UnkID {
		t.Fatal("unknown token must fall back to <unk>")
	}
	if params.Vocab.EosID() != params.EosID {
		t.Fatalf("eos id = %d, want %d", params.Vocab.EosID(), params.EosID)
	}
}
