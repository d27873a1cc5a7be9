package eval

import (
	"fmt"
	"log"

	"gonum.org/v1/gonum/mat"

	"github.com/RoyHirsch/TextualStyleTransfer/data"
	"github.com/RoyHirsch/TextualStyleTransfer/params"
	"github.com/RoyHirsch/TextualStyleTransfer/transformer"
	"github.com/RoyHirsch/TextualStyleTransfer/utils"
)

// Evaluate runs one pass over the validation batches in inference mode and
// accumulates three losses (classification, reconstruction, entropy) and
// two accuracies (reconstruction, classification).
//
// Per batch, per example: build masks, encode the source, classify the
// encoding, decode with the TRUE style label against the encoder output and
// score the whole sequence against the unshifted source; accuracy is then
// computed on the shifted alignment, preds[1:] vs src[:len-1]. The loss is
// unshifted while the accuracy is shifted; the asymmetry is inherited
// behavior, kept as observed.
//
// cfg.EvalMaxBatches caps the pass: 0 processes nothing and every metric
// reports its identity value; negative means no cap.
//
// All five quantities are logged; the returned value is the one named by
// cfg.PrimaryMetric.
func Evaluate(epoch int, batches []data.Batch,
	enc *transformer.SourceEncoder, dec *transformer.StyleDecoder,
	cls *transformer.Classifier, cfg params.ModelConfig) (float64, error) {

	clsRunningLoss := &Loss{}
	recRunningLoss := &Loss{}
	entRunningLoss := &Loss{}

	recAcc := &AccuracyRec{}
	clsAcc := &AccuracyCls{}

	for i, batch := range batches {
		if cfg.EvalMaxBatches >= 0 && i == cfg.EvalMaxBatches {
			break
		}
		if err := batch.Validate(); err != nil {
			return 0, err
		}

		for n := 0; n < batch.Len(); n++ {
			src, label := batch.Src[n], batch.Labels[n]
			srcMask, tgtMask := data.MakeMasks(src, src)

			// Classifier loss
			encodeOut := enc.Encode(src, srcMask, false)
			clsPreds := cls.Forward(encodeOut)
			clsRunningLoss.Update(CrossEntropyLogits(clsPreds, label))

			// Rec loss, against the unshifted source
			preds := dec.Forward(encodeOut, label, srcMask, src, tgtMask, false)
			recRunningLoss.Update(SequenceNLL(preds, src))

			// Entropy loss
			entRunningLoss.Update(EntropyFromLogits(clsPreds))

			// Accuracy, on the shifted alignment
			t, v := preds.Dims()
			if t > 1 {
				shifted := preds.Slice(1, t, 0, v).(*mat.Dense)
				recAcc.Update(shifted, src[:t-1])
			}
			clsAcc.Update(clsPreds, label)
		}

		if cfg.Debug && cfg.DebugEvery > 0 && (i+1)%cfg.DebugEvery == 0 {
			utils.Debugf("Eval-e-%d: batch %d, running rec acc %.3f", epoch, i+1, recAcc.Value())
		}
	}

	log.Printf("Eval-e-%d: loss cls: %.3f, loss rec: %.3f, loss ent: %.3f",
		epoch, clsRunningLoss.Avg(), recRunningLoss.Avg(), entRunningLoss.Avg())
	log.Printf("Eval-e-%d: acc cls: %.3f, acc rec: %.3f", epoch, clsAcc.Value(), recAcc.Value())

	switch cfg.PrimaryMetric {
	case "", "rec_acc":
		return recAcc.Value(), nil
	case "cls_acc":
		return clsAcc.Value(), nil
	case "rec_loss":
		return recRunningLoss.Avg(), nil
	case "cls_loss":
		return clsRunningLoss.Avg(), nil
	case "ent_loss":
		return entRunningLoss.Avg(), nil
	default:
		return 0, fmt.Errorf("evaluate: unknown primary metric %q", cfg.PrimaryMetric)
	}
}
