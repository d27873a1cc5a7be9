package eval

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/RoyHirsch/TextualStyleTransfer/data"
	"github.com/RoyHirsch/TextualStyleTransfer/params"
	"github.com/RoyHirsch/TextualStyleTransfer/transformer"
)

func evalConfig() params.ModelConfig {
	return params.ModelConfig{
		DModel:    8,
		DFF:       16,
		VocabSize: 12,
		NumHeads:  2,
		NumLayers: 1,
		NStyles:   2,
		Dropout:   0,
		MaxLen:    32,

		EvalMaxBatches: -1,
		PrimaryMetric:  "rec_acc",
	}
}

func evalBatches(t *testing.T) []data.Batch {
	t.Helper()
	seqs := [][]int{
		{1, 5, 6, 2},
		{1, 7, 8, 2},
		{1, 9, 10, 2},
		{1, 4, 11, 2},
	}
	labels := []int{0, 1, 1, 0}
	batches, err := data.MakeBatches(seqs, labels, 2)
	if err != nil {
		t.Fatal(err)
	}
	return batches
}

func TestEvaluateReturnsPrimaryMetric(t *testing.T) {
	cfg := evalConfig()
	enc, dec := transformer.MakeEncoderDecoder(cfg)
	cls := transformer.NewClassifier(cfg.DModel, cfg.NStyles)

	metric, err := Evaluate(0, evalBatches(t), enc, dec, cls, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if metric < 0 || metric > 1 {
		t.Fatalf("rec accuracy = %g, want value in [0, 1]", metric)
	}
}

func TestEvaluateZeroCapProcessesNothing(t *testing.T) {
	cfg := evalConfig()
	cfg.EvalMaxBatches = 0
	enc, dec := transformer.MakeEncoderDecoder(cfg)
	cls := transformer.NewClassifier(cfg.DModel, cfg.NStyles)

	metric, err := Evaluate(0, evalBatches(t), enc, dec, cls, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if metric != 0 {
		t.Fatalf("metric with zero cap = %g, want identity 0", metric)
	}
}

func TestEvaluateLossMetricPositive(t *testing.T) {
	cfg := evalConfig()
	cfg.PrimaryMetric = "rec_loss"
	enc, dec := transformer.MakeEncoderDecoder(cfg)
	cls := transformer.NewClassifier(cfg.DModel, cfg.NStyles)

	metric, err := Evaluate(0, evalBatches(t), enc, dec, cls, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if metric <= 0 {
		t.Fatalf("reconstruction NLL = %g, want > 0 for an untrained model", metric)
	}
}

func TestEvaluateDebugLogging(t *testing.T) {
	cfg := evalConfig()
	cfg.Debug = true
	cfg.DebugEvery = 1
	enc, dec := transformer.MakeEncoderDecoder(cfg)
	cls := transformer.NewClassifier(cfg.DModel, cfg.NStyles)

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	if _, err := Evaluate(3, evalBatches(t), enc, dec, cls, cfg); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Eval-e-3: batch 1, running rec acc") {
		t.Fatalf("debug diagnostics missing from log output:\n%s", buf.String())
	}
}

func TestEvaluateUnknownMetric(t *testing.T) {
	cfg := evalConfig()
	cfg.PrimaryMetric = "bleu"
	enc, dec := transformer.MakeEncoderDecoder(cfg)
	cls := transformer.NewClassifier(cfg.DModel, cfg.NStyles)

	if _, err := Evaluate(0, evalBatches(t), enc, dec, cls, cfg); err == nil {
		t.Fatal("expected error for unknown primary metric")
	}
}
