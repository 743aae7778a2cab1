package charseq

import (
	"math/rand"
	"strings"
	"testing"
)

func TestVocab(t *testing.T) {
	v := NewVocab("hello")
	if v.Size() != 4 {
		t.Fatalf("expected 4 characters, got %d", v.Size())
	}
	for i, r := range v.Chars {
		if v.Index[r] != i {
			t.Errorf("index of %q expected %d, got %d", r, i, v.Index[r])
		}
		if i > 0 && v.Chars[i-1] >= r {
			t.Errorf("chars not sorted: %q", string(v.Chars))
		}
	}
}

func TestGenSeq(t *testing.T) {
	text := "abcabcabcab"
	g, err := NewGenerator(strings.NewReader(text), 4)
	if err != nil {
		t.Fatal(err)
	}
	if g.InputSize() != 3 || g.OutputSize() != 3 {
		t.Fatalf("expected 3 classes, got %d %d", g.InputSize(), g.OutputSize())
	}

	x, y, reset := g.GenSeq()
	if !reset {
		t.Errorf("first window should reset")
	}
	if len(x) != 4 || len(y) != 4 {
		t.Fatalf("expected windows of 4, got %d %d", len(x), len(y))
	}
	for i := range x {
		if x[i][g.Vocab.Index[rune(text[i])]] != 1 {
			t.Errorf("input %d is not %q", i, text[i])
		}
		if y[i] != g.Vocab.Index[rune(text[i+1])] {
			t.Errorf("target %d expected %q, got %q", i, text[i+1], g.Vocab.Chars[y[i]])
		}
	}

	if _, _, reset := g.GenSeq(); reset {
		t.Errorf("second window should continue")
	}
	// 11 characters only fit two windows of 4 with a trailing target.
	if _, _, reset := g.GenSeq(); !reset {
		t.Errorf("third window should wrap around")
	}
}

func TestNewGeneratorShortText(t *testing.T) {
	if _, err := NewGenerator(strings.NewReader("ab"), 4); err == nil {
		t.Errorf("expected error for short text")
	}
}

func TestEncodeDecode(t *testing.T) {
	g, err := NewGenerator(strings.NewReader("the quick brown fox"), 3)
	if err != nil {
		t.Fatal(err)
	}
	if s := g.Decode(g.Encode("brown the fox")); s != "brown the fox" {
		t.Errorf("round trip gave %q", s)
	}
	if ids := g.Encode("z!"); len(ids) != 0 {
		t.Errorf("unknown characters encoded to %v", ids)
	}

	x, y := g.Text()
	if len(x) != len(y) || len(y) != len("the quick brown fox")-1 {
		t.Errorf("Text lengths %d %d", len(x), len(y))
	}

	rx, ry := g.Random(rand.New(rand.NewSource(1)))
	if len(rx) != 3 || len(ry) != 3 {
		t.Errorf("Random lengths %d %d", len(rx), len(ry))
	}
}

func TestSortOutput(t *testing.T) {
	g, _ := NewGenerator(strings.NewReader("abc"), 1)
	chars := g.SortOutput([]float64{0.2, 0.5, 0.3})
	want := []string{"b", "c", "a"}
	for i, c := range chars {
		if c.S != want[i] {
			t.Errorf("expected %v, got %v", want, chars)
			break
		}
	}
}
