package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/RoyHirsch/TextualStyleTransfer/IO"
	"github.com/RoyHirsch/TextualStyleTransfer/data"
	"github.com/RoyHirsch/TextualStyleTransfer/eval"
	"github.com/RoyHirsch/TextualStyleTransfer/params"
	"github.com/RoyHirsch/TextualStyleTransfer/transformer"
)

var (
	vocabPath  = flag.String("vocab", "", "Path to a vocab.json exported earlier")
	corpusPath = flag.String("corpus", "", "Raw corpus for BPE training (used with -tok)")
	tokPath    = flag.String("tok", "", "Tokenizer json path; trained from -corpus if missing")
	dataPath   = flag.String("data", "", "Validation dataset: one 'label<TAB>text' per line")
	modelPath  = flag.String("model", "", "Weight checkpoint to load")
	batchSize  = flag.Int("batch", 32, "Batch size")

	evalFlag  = flag.Bool("eval", false, "Run the evaluation loop")
	genCSV    = flag.String("csv", "", "Write style-flipped generations to this file under -out")
	outDir    = flag.String("out", "generated", "Output directory for -csv")
	samples   = flag.Int("samples", 0, "Print N style-flipped samples")
	inspect   = flag.Int("inspect", 0, "Log N transfers with the classifier's verdict")
	limit     = flag.Int("limit", 0, "Max generation batches (0 = all)")
	cliFlag   = flag.Bool("cli", false, "Interactive style-flip CLI")
	saveModel = flag.String("save", "", "Save freshly initialized weights to this path and exit")
)

func main() {
	flag.Parse()

	if err := loadVocab(); err != nil {
		log.Fatal(err)
	}

	cfg := params.Config
	cfg.VocabSize = len(params.Vocab.IDToToken)

	enc, dec := transformer.MakeEncoderDecoder(cfg)
	cls := transformer.NewClassifier(cfg.DModel, cfg.NStyles)
	gen := transformer.NewStyleTransformer(cfg)

	mats := enc.Params()
	mats = append(mats, dec.Params()...)
	mats = append(mats, cls.Params()...)
	mats = append(mats, gen.Params()...)

	if *saveModel != "" {
		if err := IO.SaveModel(*saveModel, mats); err != nil {
			log.Fatal(err)
		}
		fmt.Println("Saved model to", *saveModel)
		return
	}
	if *modelPath != "" {
		if err := IO.LoadModel(*modelPath, mats); err != nil {
			log.Fatal(err)
		}
		fmt.Println("Loaded model from", *modelPath)
	}

	if *cliFlag {
		styleCLI(gen)
		return
	}

	batches, err := loadBatches(*dataPath, *batchSize)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Loaded %d batches.\n", len(batches))

	if *evalFlag {
		metric, err := eval.Evaluate(0, batches, enc, dec, cls, cfg)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%s: %.4f\n", cfg.PrimaryMetric, metric)
	}
	if *samples > 0 {
		if err := eval.PrintGeneratedSamples(gen, batches, params.Vocab, *samples); err != nil {
			log.Fatal(err)
		}
	}
	if *inspect > 0 {
		if err := eval.TestRandomSamples(batches, gen, enc, cls, params.Vocab, *inspect, true); err != nil {
			log.Fatal(err)
		}
	}
	if *genCSV != "" {
		if err := eval.GenerateSentencesToCSV(gen, batches, params.Vocab, *outDir, *genCSV, *limit); err != nil {
			log.Fatal(err)
		}
		fmt.Println("Wrote generations to", *outDir+"/"+*genCSV)
	}
}

func loadVocab() error {
	switch {
	case *tokPath != "":
		return IO.TrainOrLoadBPE(*corpusPath, *tokPath, params.Config.VocabSize)
	case *vocabPath != "":
		return IO.ImportVocabJSON(*vocabPath)
	default:
		return fmt.Errorf("need -vocab or -tok to resolve the vocabulary")
	}
}

// loadBatches reads 'label<TAB>text' lines, encodes the text through
// encodeText (subword BPE when a tokenizer is loaded, vocab lookup
// otherwise) and pads every sequence to the longest one so batches come
// out rectangular.
func loadBatches(path string, batchSize int) ([]data.Batch, error) {
	if path == "" {
		return nil, fmt.Errorf("need -data to load a dataset")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var seqs [][]int
	var labels []int
	maxLen := 0

	r := bufio.NewReader(f)
	for {
		line, err := r.ReadString('\n')
		if line != "" {
			line = strings.TrimRight(line, "\n")
			parts := strings.SplitN(line, "\t", 2)
			if len(parts) != 2 {
				return nil, fmt.Errorf("bad dataset line: %q", line)
			}
			label, convErr := strconv.Atoi(parts[0])
			if convErr != nil {
				return nil, fmt.Errorf("bad label in line %q: %w", line, convErr)
			}
			ids, encErr := encodeText(parts[1])
			if encErr != nil {
				return nil, fmt.Errorf("line %q: %w", line, encErr)
			}
			if len(ids) > maxLen {
				maxLen = len(ids)
			}
			seqs = append(seqs, ids)
			labels = append(labels, label)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	for i, s := range seqs {
		for len(s) < maxLen {
			s = append(s, params.PadID)
		}
		seqs[i] = s
	}
	return data.MakeBatches(seqs, labels, batchSize)
}
