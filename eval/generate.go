package eval

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/RoyHirsch/TextualStyleTransfer/data"
	"github.com/RoyHirsch/TextualStyleTransfer/params"
	"github.com/RoyHirsch/TextualStyleTransfer/transformer"
	"github.com/RoyHirsch/TextualStyleTransfer/utils"
)

// FlipLabels negates every binary style label (0 <-> 1). Toggling is only
// defined for two styles; anything else is a programming error here.
func FlipLabels(labels []int) []int {
	out := make([]int, len(labels))
	for i, l := range labels {
		if l != 0 && l != 1 {
			panic(fmt.Sprintf("FlipLabels: label %d is not binary", l))
		}
		out[i] = 1 - l
	}
	return out
}

// GenerateSentences runs style-flipped generation over the dataset: every
// example's label is toggled, a sequence is regenerated greedily under the
// flipped style, and the generated text, original text and UNMODIFIED
// original labels are collected. limit > 0 caps the number of batches.
func GenerateSentences(gen *transformer.StyleTransformer, batches []data.Batch, vocab params.Vocabulary, limit int) (generated, original []string, labels []int, err error) {
	eosID := vocab.EosID()

	for i, batch := range batches {
		if err := batch.Validate(); err != nil {
			return nil, nil, nil, err
		}
		negLabels := FlipLabels(batch.Labels)

		for n := 0; n < batch.Len(); n++ {
			src := batch.Src[n]
			srcMask, _ := data.MakeMasks(src, src)

			preds := gen.Forward(src, srcMask, negLabels[n], false)
			genSent, _, err := GreedyDecodeSent(preds, vocab.IDToToken, eosID)
			if err != nil {
				return nil, nil, nil, err
			}
			origSent, err := SentToStr(src, vocab.IDToToken, eosID)
			if err != nil {
				return nil, nil, nil, err
			}

			generated = append(generated, genSent)
			original = append(original, origSent)
			labels = append(labels, batch.Labels[n])
		}

		if limit > 0 && i == limit-1 {
			break
		}
	}
	return generated, original, labels, nil
}

// PrintGeneratedSamples prints up to numSentences original/generated pairs,
// running only as many batches as needed.
func PrintGeneratedSamples(gen *transformer.StyleTransformer, batches []data.Batch, vocab params.Vocabulary, numSentences int) error {
	if len(batches) == 0 || numSentences <= 0 {
		return nil
	}
	batchSize := batches[0].Len()
	if batchSize == 0 {
		return nil
	}
	numBatches := (numSentences + batchSize - 1) / batchSize

	generated, original, _, err := GenerateSentences(gen, batches, vocab, numBatches)
	if err != nil {
		return err
	}
	if len(generated) > numSentences {
		generated = generated[:numSentences]
		original = original[:numSentences]
	}
	for i := range generated {
		fmt.Println("Original: " + original[i])
		fmt.Println("Generated: " + generated[i])
		fmt.Println()
	}
	return nil
}

// GenerateSentencesToCSV persists the full style-flipped collection as a
// three-column table under outDir, creating the directory if absent.
func GenerateSentencesToCSV(gen *transformer.StyleTransformer, batches []data.Batch, vocab params.Vocabulary, outDir, fileName string, limit int) error {
	generated, original, labels, err := GenerateSentences(gen, batches, vocab, limit)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(outDir, fileName))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"generated_sentences", "original_sentences", "original_labels"}); err != nil {
		return err
	}
	for i := range generated {
		if err := w.Write([]string{generated[i], original[i], strconv.Itoa(labels[i])}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// TestRandomSamples logs a handful of style-transferred samples together
// with the classifier's verdict on the encoded generation, to eyeball model
// quality during experiments. transferStyle toggles label flipping.
func TestRandomSamples(batches []data.Batch,
	gen *transformer.StyleTransformer, enc *transformer.SourceEncoder,
	cls *transformer.Classifier, vocab params.Vocabulary,
	numSamples int, transferStyle bool) error {

	eosID := vocab.EosID()

	for _, batch := range batches {
		if numSamples == 0 {
			break
		}
		if batch.Len() == 0 {
			continue
		}

		src, trueLabel := batch.Src[0], batch.Labels[0]
		srcMask, _ := data.MakeMasks(src, src)

		label := trueLabel
		if transferStyle {
			label = 1 - trueLabel
		}

		preds := gen.Forward(src, srcMask, label, false)
		decSent, decIDs, err := GreedyDecodeSent(preds, vocab.IDToToken, eosID)
		if err != nil {
			return err
		}
		srcSent, err := SentToStr(src, vocab.IDToToken, eosID)
		if err != nil {
			return err
		}

		srcClass := "neg"
		if trueLabel == 1 {
			srcClass = "pos"
		}
		log.Printf("Original: text: %s", srcSent)
		log.Printf("Original: class: %s", srcClass)

		// Classify the re-encoded generation.
		decMask, _ := data.MakeMasks(decIDs, decIDs)
		clsPreds := cls.Forward(enc.Encode(decIDs, decMask, false))
		predClass := "neg"
		if utils.ArgmaxRow(clsPreds) == 1 {
			predClass = "pos"
		}
		if transferStyle {
			log.Printf("Style transfer output:")
		}
		log.Printf("Predicted: text: %s", decSent)
		log.Printf("Predicted: class: %s", predClass)

		numSamples--
	}
	return nil
}
