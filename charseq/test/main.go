package main

import (
	"flag"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/fumin/lstm"
	"github.com/fumin/lstm/charseq"
)

var (
	weightsFile = flag.String("weightsFile", "", "trained weights, must end in .vanilla")
	textFile    = flag.String("text", "", "text the weights were trained on")
	prompt      = flag.String("prompt", "", "text to prime the network with before sampling")
	length      = flag.Int("length", 500, "number of characters to sample")
	topK        = flag.Int("topk", 5, "number of most likely next characters to print")
	seed        = flag.Int64("seed", 1, "random seed")
)

func main() {
	flag.Parse()
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	p, err := lstm.LoadFile(*weightsFile)
	if err != nil {
		logrus.WithError(err).Fatal("loading weights")
	}
	gen, err := charseq.NewGeneratorFile(*textFile, 1)
	if err != nil {
		logrus.WithError(err).Fatal("reading text")
	}
	if gen.InputSize() != p.XSize() || gen.OutputSize() != p.NClasses {
		logrus.WithFields(logrus.Fields{
			"vocab":     gen.Vocab.Size(),
			"x_size":    p.XSize(),
			"n_classes": p.NClasses,
		}).Fatal("weights were trained on a different vocabulary")
	}

	x, y := gen.Text()
	seq, err := lstm.Unroll(p, x, y, lstm.NewState(p.HSize))
	if err != nil {
		logrus.WithError(err).Fatal("evaluating")
	}
	logrus.WithFields(logrus.Fields{
		"chars": len(y),
		"loss":  seq.Loss,
		"bpc":   seq.Loss / float64(len(y)) / math.Ln2,
	}).Info("evaluated text")

	state := lstm.NewState(p.HSize)
	ids := gen.Encode(*prompt)
	first := 0
	if len(ids) > 0 {
		primed, err := lstm.Unroll(p, oneHots(gen, ids[:len(ids)-1]), nil, state)
		if err != nil {
			logrus.WithError(err).Fatal("priming")
		}
		state = primed.Final
		first = ids[len(ids)-1]

		next, err := lstm.Forward(p, gen.OneHot(first), state.H, state.C)
		if err != nil {
			logrus.WithError(err).Fatal("priming")
		}
		chars := gen.SortOutput(next.Y)
		if len(chars) > *topK {
			chars = chars[:*topK]
		}
		logrus.Infof("most likely after %q: %v", *prompt, chars)
	}

	sample, err := lstm.Sample(p, state, first, *length, gen.OneHot, rand.New(rand.NewSource(*seed)))
	if err != nil {
		logrus.WithError(err).Fatal("sampling")
	}
	logrus.Infof("sample:\n%s%s", *prompt, gen.Decode(sample))
}

func oneHots(gen *charseq.Generator, ids []int) [][]float64 {
	x := make([][]float64, len(ids))
	for i, c := range ids {
		x[i] = gen.OneHot(c)
	}
	return x
}
