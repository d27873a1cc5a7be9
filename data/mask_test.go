package data

import (
	"testing"
)

func TestPadMask(t *testing.T) {
	m := PadMask([]int{1, 5, 6, 2, 0, 0})
	want := []float64{1, 1, 1, 1, 0, 0}
	for j, w := range want {
		if m.At(0, j) != w {
			t.Fatalf("mask[0,%d] = %g, want %g", j, m.At(0, j), w)
		}
	}
}

func TestSubsequentMask(t *testing.T) {
	m := SubsequentMask(4)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			want := 0.0
			if j <= i {
				want = 1
			}
			if m.At(i, j) != want {
				t.Fatalf("mask[%d,%d] = %g, want %g", i, j, m.At(i, j), want)
			}
		}
	}
}

func TestMakeMasksCombinesCausalAndPadding(t *testing.T) {
	src := []int{1, 5, 2, 0}
	_, tgtMask := MakeMasks(src, src)

	// last column is padding: blocked everywhere, even below the diagonal
	for i := 0; i < 4; i++ {
		if tgtMask.At(i, 3) != 0 {
			t.Fatalf("padded column leaked through at row %d", i)
		}
	}
	// future positions stay blocked
	if tgtMask.At(0, 1) != 0 || tgtMask.At(1, 2) != 0 {
		t.Fatal("causal structure lost")
	}
	if tgtMask.At(2, 0) != 1 || tgtMask.At(2, 2) != 1 {
		t.Fatal("valid past positions must stay attendable")
	}
}

func TestMakeBatches(t *testing.T) {
	seqs := [][]int{{1, 2}, {3, 4}, {5, 6}, {7, 8}, {9, 10}}
	labels := []int{0, 1, 0, 1, 0}

	batches, err := MakeBatches(seqs, labels, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(batches) != 3 {
		t.Fatalf("got %d batches, want 3", len(batches))
	}
	if batches[2].Len() != 1 {
		t.Fatalf("last batch len = %d, want 1", batches[2].Len())
	}
	if batches[1].Labels[0] != 0 || batches[1].Src[0][0] != 5 {
		t.Fatal("batches must preserve dataset order")
	}
}

func TestMakeBatchesRejectsRagged(t *testing.T) {
	_, err := MakeBatches([][]int{{1, 2}, {3}}, []int{0, 1}, 2)
	if err == nil {
		t.Fatal("expected error for ragged sequences inside one batch")
	}
}

func TestMakeBatchesRejectsLabelMismatch(t *testing.T) {
	_, err := MakeBatches([][]int{{1, 2}}, []int{0, 1}, 2)
	if err == nil {
		t.Fatal("expected error for sequence/label count mismatch")
	}
}
