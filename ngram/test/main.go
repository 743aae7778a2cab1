package main

import (
	"flag"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/fumin/lstm"
	"github.com/fumin/lstm/ngram"
)

var (
	weightsFile = flag.String("weightsFile", "", "trained weights, must end in .vanilla")
	order       = flag.Int("n", 5, "order of the n-gram model")
	seqLen      = flag.Int("seqlen", 200, "sequence length")
	tables      = flag.Int("tables", 5, "number of n-gram tables to evaluate on")
	samples     = flag.Int("samples", 100, "number of sequences per table")
	seed        = flag.Int64("seed", 1, "random seed")
)

func main() {
	flag.Parse()
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	p, err := lstm.LoadFile(*weightsFile)
	if err != nil {
		logrus.WithError(err).Fatal("loading weights")
	}
	if p.XSize() != 1 || p.NClasses != 2 {
		logrus.WithFields(logrus.Fields{"x_size": p.XSize(), "n_classes": p.NClasses}).Fatal("weights were not trained on bit sequences")
	}

	rng := rand.New(rand.NewSource(*seed))
	for i := 0; i < *tables; i++ {
		prob := ngram.GenProb(rng, *order)
		var l float64 = 0
		for j := 0; j < *samples; j++ {
			x, y := ngram.GenSeq(rng, prob, *seqLen)
			seq, err := lstm.Unroll(p, x, y, lstm.NewState(p.HSize))
			if err != nil {
				logrus.WithError(err).Fatal("evaluating")
			}
			l += seq.Loss
		}
		bpc := l / float64(*samples * *seqLen) / math.Ln2
		optimal := ngram.Entropy(prob) / math.Ln2
		logrus.WithFields(logrus.Fields{
			"table":       i,
			"bpc":         bpc,
			"optimal_bpc": optimal,
			"excess":      bpc - optimal,
		}).Info("evaluated")
	}
}
