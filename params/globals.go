package params

// Special token ids. The vocabulary builder keeps these at the start of the
// vocab in this exact order.
const (
	PadID = 0
	BosID = 1
	EosID = 2
	UnkID = 3
)

// Special tokens kept at the start of the vocab.
var Special = []string{"<pad>", "<bos>", "<eos>", "<unk>"}

// Vocabulary is a bidirectional token <-> id mapping.
type Vocabulary struct {
	TokenToID map[string]int
	IDToToken []string
}

// EosID returns the reserved end-of-sequence id, or -1 if the vocab has none.
func (v Vocabulary) EosID() int {
	if id, ok := v.TokenToID["<eos>"]; ok {
		return id
	}
	return -1
}

// Lookup returns the id for tok, falling back to <unk>.
func (v Vocabulary) Lookup(tok string) int {
	if id, ok := v.TokenToID[tok]; ok {
		return id
	}
	return v.TokenToID["<unk>"]
}

// Vocab is initialized on first vocab build/import call.
var Vocab Vocabulary

// ModelConfig holds the transformer hyperparameters plus the evaluation and
// generation knobs.
type ModelConfig struct {
	// Core transformer parameters
	DModel    int // model width
	DFF       int // feed-forward hidden width
	VocabSize int // |V|
	NumHeads  int // attention heads, dHead = DModel/NumHeads
	NumLayers int // encoder/decoder depth
	NStyles   int // style-embedding table size
	Dropout   float64
	MaxLen    int // positional-encoding table length, hard cap on sequence length

	// Evaluation parameters
	EvalMaxBatches int    // 0 = no batches processed; <0 = unlimited
	PrimaryMetric  string // rec_acc | cls_acc | rec_loss | cls_loss | ent_loss

	Debug      bool // enable periodic debug logs
	DebugEvery int  // print every N batches
}

// Reasonable defaults for small experiments.
var Config = ModelConfig{
	DModel:    512,
	DFF:       2048,
	VocabSize: 8192,
	NumHeads:  8,
	NumLayers: 6,
	NStyles:   2,
	Dropout:   0.1,
	MaxLen:    5000,

	EvalMaxBatches: -1,
	PrimaryMetric:  "rec_acc",

	Debug:      false,
	DebugEvery: 100,
}
