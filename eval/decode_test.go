package eval

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

var testWords = []string{"<pad>", "<bos>", "<eos>", "<unk>", "hello", "world", "again"}

func TestSentToStrTruncatesAtFirstEos(t *testing.T) {
	s, err := SentToStr([]int{4, 5, 2, 6, 2, 6}, testWords, 2)
	if err != nil {
		t.Fatal(err)
	}
	if s != "hello world" {
		t.Fatalf("got %q, want %q", s, "hello world")
	}
}

func TestSentToStrNoEosIdKeepsAll(t *testing.T) {
	s, err := SentToStr([]int{4, 5, 6}, testWords, -1)
	if err != nil {
		t.Fatal(err)
	}
	if s != "hello world again" {
		t.Fatalf("got %q", s)
	}
}

func TestSentToStrRejectsOutOfRangeIds(t *testing.T) {
	if _, err := SentToStr([]int{4, 99}, testWords, 2); err == nil {
		t.Fatal("expected error for id outside vocabulary")
	}
	if _, err := SentToStr([]int{-1}, testWords, 2); err == nil {
		t.Fatal("expected error for negative id")
	}
}

func TestGreedyDecodeSent(t *testing.T) {
	// peaked rows: argmax ids 4, 5, 2, 6
	preds := mat.NewDense(4, len(testWords), nil)
	for i, id := range []int{4, 5, 2, 6} {
		preds.Set(i, id, 5)
	}

	sent, ids, err := GreedyDecodeSent(preds, testWords, 2)
	if err != nil {
		t.Fatal(err)
	}
	if sent != "hello world" {
		t.Fatalf("got %q, want %q", sent, "hello world")
	}
	want := []int{4, 5, 2, 6}
	for i, id := range want {
		if ids[i] != id {
			t.Fatalf("raw ids[%d] = %d, want %d", i, ids[i], id)
		}
	}
}
