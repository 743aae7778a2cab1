package charseq

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"strings"
)

type Vocab struct {
	Chars []rune
	Index map[rune]int
}

func NewVocab(text string) *Vocab {
	v := Vocab{Index: make(map[rune]int)}
	for _, r := range text {
		if _, ok := v.Index[r]; !ok {
			v.Index[r] = -1
			v.Chars = append(v.Chars, r)
		}
	}
	sort.Slice(v.Chars, func(i, j int) bool { return v.Chars[i] < v.Chars[j] })
	for i, r := range v.Chars {
		v.Index[r] = i
	}
	return &v
}

func (v *Vocab) Size() int {
	return len(v.Chars)
}

// A Generator cuts a text into consecutive windows for next character prediction.
type Generator struct {
	Vocab  *Vocab
	SeqLen int

	text   []int
	offset int
}

func NewGenerator(r io.Reader, seqLen int) (*Generator, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := string(b)
	if len([]rune(text)) < seqLen+1 {
		return nil, fmt.Errorf("text has %d characters, need at least %d", len([]rune(text)), seqLen+1)
	}
	g := Generator{Vocab: NewVocab(text), SeqLen: seqLen}
	g.text = g.Encode(text)
	return &g, nil
}

func NewGeneratorFile(filepath string, seqLen int) (*Generator, error) {
	f, err := os.Open(filepath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return NewGenerator(f, seqLen)
}

// GenSeq returns the next window of one-hot inputs and the index of the
// character following each input. reset is true when the window starts over
// from the beginning of the text, in which case the state carried over from
// the previous window should be discarded.
func (g *Generator) GenSeq() (input [][]float64, output []int, reset bool) {
	if g.offset+g.SeqLen+1 > len(g.text) {
		g.offset = 0
	}
	reset = g.offset == 0

	input = make([][]float64, g.SeqLen)
	output = make([]int, g.SeqLen)
	for t := 0; t < g.SeqLen; t++ {
		input[t] = g.OneHot(g.text[g.offset+t])
		output[t] = g.text[g.offset+t+1]
	}
	g.offset += g.SeqLen
	return input, output, reset
}

// Random returns a window starting at a random position of the text.
func (g *Generator) Random(rng *rand.Rand) ([][]float64, []int) {
	start := rng.Intn(len(g.text) - g.SeqLen)
	input := make([][]float64, g.SeqLen)
	output := make([]int, g.SeqLen)
	for t := 0; t < g.SeqLen; t++ {
		input[t] = g.OneHot(g.text[start+t])
		output[t] = g.text[start+t+1]
	}
	return input, output
}

// Text returns the whole text as inputs and next character targets.
func (g *Generator) Text() ([][]float64, []int) {
	input := make([][]float64, len(g.text)-1)
	for t := range input {
		input[t] = g.OneHot(g.text[t])
	}
	return input, g.text[1:]
}

func (g *Generator) OneHot(c int) []float64 {
	v := make([]float64, g.InputSize())
	v[c] = 1
	return v
}

func (g *Generator) Encode(s string) []int {
	ids := make([]int, 0, len(s))
	for _, r := range s {
		if i, ok := g.Vocab.Index[r]; ok {
			ids = append(ids, i)
		}
	}
	return ids
}

func (g *Generator) Decode(ids []int) string {
	var sb strings.Builder
	for _, i := range ids {
		sb.WriteRune(g.Vocab.Chars[i])
	}
	return sb.String()
}

func (g *Generator) InputSize() int {
	return g.Vocab.Size()
}

func (g *Generator) OutputSize() int {
	return g.Vocab.Size()
}

func (g *Generator) SortOutput(output []float64) []Char {
	chars := make([]Char, len(output))
	for i, o := range output {
		chars[i] = Char{S: string(g.Vocab.Chars[i]), Probability: o}
	}
	sort.Sort(ByProbabilityDesc(chars))
	return chars
}

type Char struct {
	S           string
	Probability float64
}

func (c Char) String() string {
	return fmt.Sprintf("{%q %.3g}", c.S, c.Probability)
}

type ByProbabilityDesc []Char

func (a ByProbabilityDesc) Len() int           { return len(a) }
func (a ByProbabilityDesc) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a ByProbabilityDesc) Less(i, j int) bool { return a[i].Probability > a[j].Probability }
