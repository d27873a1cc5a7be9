package IO

import (
	"fmt"
	"os"
	"path/filepath"

	tk "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/model/bpe"
	"github.com/sugarme/tokenizer/normalizer"
	"github.com/sugarme/tokenizer/pretokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	"github.com/sugarme/tokenizer/processor"

	"github.com/RoyHirsch/TextualStyleTransfer/params"
)

// Tokenizer used by the generation CLI and the dataset loader.
var bpeTokenizer *tk.Tokenizer

// TrainOrLoadBPE trains a BPE tokenizer on corpusPath (when tokPath does not
// exist yet) and loads it into memory. It also fills params.Vocab with the
// TokenToID/IDToToken maps so the rest of the pipeline can resolve the
// reserved <eos> id.
func TrainOrLoadBPE(corpusPath, tokPath string, vocabSize int) error {
	if fileExists(tokPath) {
		t, err := pretrained.FromFile(tokPath)
		if err != nil {
			return err
		}
		bpeTokenizer = t
		return fillVocabFromTokenizer()
	}

	bpeModel, err := bpe.NewBpeBuilder().Build()
	if err != nil {
		return err
	}
	t := tk.NewTokenizer(bpeModel)

	// Normalize to NFKC lower for English
	t.WithNormalizer(normalizer.NewSequence([]normalizer.Normalizer{
		normalizer.NewNFKC(),
		normalizer.Lowercase(),
	}))
	// Whitespace pretokenization is robust and keeps decode simple.
	t.WithPreTokenizer(pretokenizer.NewWhitespaceSplit())

	// BOS/EOS framing via template processor, matching the reserved ids.
	single, err := processor.NewTemplateFromOne("<bos> $A <eos>")
	if err != nil {
		return err
	}
	pair, err := processor.NewTemplateFromOne("$A")
	if err != nil {
		return err
	}
	specialToks := processor.NewTokensFrom([]processor.SpecialToken{
		*processor.NewSpecialTokenFrom("<bos>", params.BosID),
		*processor.NewSpecialTokenFrom("<eos>", params.EosID),
	})
	t.WithPostProcessor(processor.NewTemplateProcessing(single, pair, specialToks))

	tr := bpe.NewBpeTrainer(0, vocabSize)
	added := make([]tk.AddedToken, len(params.Special))
	for i, s := range params.Special {
		added[i] = tk.NewAddedToken(s, true)
	}
	tr.SpecialTokens = added

	if err := t.Train(tr, []string{corpusPath}); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(tokPath), 0o755); err != nil {
		return err
	}
	if err := t.Save(tokPath, false); err != nil {
		return err
	}
	bpeTokenizer = t
	return fillVocabFromTokenizer()
}

func fillVocabFromTokenizer() error {
	if bpeTokenizer == nil {
		return fmt.Errorf("tokenizer not initialized")
	}
	vocab := bpeTokenizer.GetVocab(true)
	id2tok := make([]string, len(vocab))
	tok2id := make(map[string]int, len(vocab))
	for tok, id := range vocab {
		tok2id[tok] = id
		id2tok[id] = tok
	}
	params.Vocab = params.Vocabulary{TokenToID: tok2id, IDToToken: id2tok}
	return nil
}

// HasBPE reports whether a trained tokenizer has been loaded. Callers use
// it to pick between subword encoding and plain whitespace vocab lookup.
func HasBPE() bool {
	return bpeTokenizer != nil
}

// EncodeBPE encodes raw text into token ids (without BOS/EOS).
func EncodeBPE(text string) ([]int, error) {
	if bpeTokenizer == nil {
		return nil, fmt.Errorf("tokenizer not initialized")
	}
	enc, err := bpeTokenizer.EncodeSingle(text)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(enc.Ids))
	for i, v := range enc.Ids {
		out[i] = int(v)
	}
	return out, nil
}
