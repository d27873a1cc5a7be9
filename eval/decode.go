package eval

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/RoyHirsch/TextualStyleTransfer/utils"
)

// GreedyDecodeSent converts a (T x V) vocabulary distribution to text by
// taking the argmax id at every position, then mapping ids to tokens with
// end-of-sequence truncation. It also returns the raw decoded ids.
func GreedyDecodeSent(preds *mat.Dense, id2word []string, eosID int) (string, []int, error) {
	ids := utils.ArgmaxRows(preds)
	sent, err := SentToStr(ids, id2word, eosID)
	if err != nil {
		return "", nil, err
	}
	return sent, ids, nil
}

// SentToStr turns a flat id sequence into whitespace-joined tokens. If
// eosID is positive, the sequence is truncated at its FIRST occurrence and
// trailing ids are ignored. Ids outside the vocabulary reject the whole
// input; the conversion is defensive, not best-effort.
func SentToStr(ids []int, id2word []string, eosID int) (string, error) {
	if eosID > 0 {
		for i, id := range ids {
			if id == eosID {
				ids = ids[:i]
				break
			}
		}
	}
	toks := make([]string, len(ids))
	for i, id := range ids {
		if id < 0 || id >= len(id2word) {
			return "", fmt.Errorf("sent2str: id %d out of vocabulary range [0, %d)", id, len(id2word))
		}
		toks[i] = id2word[id]
	}
	return strings.Join(toks, " "), nil
}
