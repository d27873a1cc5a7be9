package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/RoyHirsch/TextualStyleTransfer/IO"
	"github.com/RoyHirsch/TextualStyleTransfer/data"
	"github.com/RoyHirsch/TextualStyleTransfer/eval"
	"github.com/RoyHirsch/TextualStyleTransfer/params"
	"github.com/RoyHirsch/TextualStyleTransfer/transformer"
)

// styleCLI reads sentences from stdin and prints the greedy generation
// for every style, so you can eyeball transfers without a dataset file.
func styleCLI(gen *transformer.StyleTransformer) {
	fmt.Println("Type a sentence to restyle, or 'quit' to exit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		ids, err := encodeText(line)
		if err != nil {
			fmt.Println("encode error:", err)
			continue
		}
		srcMask := data.PadMask(ids)
		for style := 0; style < params.Config.NStyles; style++ {
			preds := gen.Forward(ids, srcMask, style, false)
			sent, _, err := eval.GreedyDecodeSent(preds, params.Vocab.IDToToken, params.Vocab.EosID())
			if err != nil {
				fmt.Println("decode error:", err)
				continue
			}
			fmt.Printf("style %d: %s\n", style, sent)
		}
	}
}

// encodeText turns raw text into <bos>-framed token ids. With a trained
// tokenizer loaded it encodes subwords; otherwise whitespace tokens are
// looked up directly in the vocab.
func encodeText(line string) ([]int, error) {
	if IO.HasBPE() {
		ids, err := IO.EncodeBPE(line)
		if err != nil {
			return nil, err
		}
		out := append([]int{params.BosID}, ids...)
		return append(out, params.EosID), nil
	}
	ids := []int{params.BosID}
	for _, tok := range strings.Fields(strings.ToLower(line)) {
		ids = append(ids, params.Vocab.Lookup(tok))
	}
	return append(ids, params.EosID), nil
}
