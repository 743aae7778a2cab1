package main

import (
	"flag"
	"math"
	"math/rand"
	"os"
	"runtime/pprof"

	"github.com/sirupsen/logrus"

	"github.com/fumin/lstm"
	"github.com/fumin/lstm/config"
	"github.com/fumin/lstm/monitor"
	"github.com/fumin/lstm/ngram"
)

var (
	configFile = flag.String("config", "", "training configuration in JSON")
	order      = flag.Int("n", 5, "order of the n-gram model")
	seqLen     = flag.Int("seqlen", 200, "sequence length")
	iterations = flag.Int("iterations", 0, "number of training steps, 0 to train forever")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
)

func main() {
	flag.Parse()
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Default()
	cfg.Port = 8087
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			logrus.WithError(err).Fatal("loading config")
		}
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			logrus.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	prob := ngram.GenProb(rng, *order)
	logrus.WithFields(logrus.Fields{
		"seed":        cfg.Seed,
		"optimal_bpc": ngram.Entropy(prob) / math.Ln2,
	}).Info("generated n-gram table")

	p, err := lstm.NewParameters(cfg.HSize, cfg.HSize+1, 2, cfg.WeightSD, rng)
	if err != nil {
		logrus.WithError(err).Fatal("creating network")
	}
	opt, err := lstm.NewOptimizer(cfg.Optimizer, p, cfg.LearningRate, cfg.Momentum)
	if err != nil {
		logrus.WithError(err).Fatal("creating optimizer")
	}

	mon := monitor.New()
	mon.ListenAndServe(cfg.Port)

	var bpcSum float64 = 0
	for i := 1; *iterations == 0 || i <= *iterations; i++ {
		if cfg.BatchSize > 1 {
			examples := make([]lstm.Example, cfg.BatchSize)
			for j := range examples {
				x, y := ngram.GenSeq(rng, prob, *seqLen)
				examples[j] = lstm.Example{X: x, Y: y, Init: lstm.NewState(p.HSize)}
			}
			opt.ZeroGrad()
			seqs, err := lstm.ForwardBackwardParallel(p, examples, cfg.Workers)
			if err != nil {
				logrus.WithError(err).Fatal("training")
			}
			opt.Step()
			for _, s := range seqs {
				bpcSum += s.Loss / float64(*seqLen) / math.Ln2 / float64(len(seqs))
			}
		} else {
			x, y := ngram.GenSeq(rng, prob, *seqLen)
			opt.ZeroGrad()
			seq, err := lstm.ForwardBackward(p, x, y, lstm.NewState(p.HSize))
			if err != nil {
				logrus.WithError(err).Fatal("training")
			}
			opt.Step()
			bpcSum += seq.Loss / float64(*seqLen) / math.Ln2
		}

		if i%cfg.LogEvery == 0 {
			bpc := bpcSum / float64(cfg.LogEvery)
			bpcSum = 0
			mon.Losses = append(mon.Losses, bpc)
			logrus.WithFields(logrus.Fields{"iter": i, "bpc": bpc}).Info("training")
		}
		mon.Poll(p)
	}
	if cfg.WeightsFile != "" {
		if err := p.SaveFile(cfg.WeightsFile); err != nil {
			logrus.WithError(err).Error("saving weights")
		}
	}
}
