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
	"github.com/fumin/lstm/copytask"
	"github.com/fumin/lstm/monitor"
)

var (
	configFile = flag.String("config", "", "training configuration in JSON")
	numSymbols = flag.Int("symbols", 8, "number of distinct symbols")
	delay      = flag.Int("delay", 3, "number of timesteps between a symbol and its echo")
	maxLen     = flag.Int("maxlen", 20, "maximum sequence length")
	iterations = flag.Int("iterations", 0, "number of training steps, 0 to train forever")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
)

func main() {
	flag.Parse()
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Default()
	cfg.Port = 8088
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
	logrus.WithField("seed", cfg.Seed).Info("seeded")

	p, err := lstm.NewParameters(cfg.HSize, cfg.HSize+*numSymbols, copytask.OutputSize(*numSymbols), cfg.WeightSD, rng)
	if err != nil {
		logrus.WithError(err).Fatal("creating network")
	}
	opt, err := lstm.NewOptimizer(cfg.Optimizer, p, cfg.LearningRate, cfg.Momentum)
	if err != nil {
		logrus.WithError(err).Fatal("creating optimizer")
	}
	logrus.WithField("numweights", p.NumWeights()).Info("network ready")

	mon := monitor.New()
	mon.ListenAndServe(cfg.Port)

	var lossSum float64 = 0
	var stepSum int = 0
	for i := 1; *iterations == 0 || i <= *iterations; i++ {
		x, y := copytask.GenSeq(rng, rng.Intn(*maxLen)+*delay+1, *numSymbols, *delay)
		opt.ZeroGrad()
		seq, err := lstm.ForwardBackward(p, x, y, lstm.NewState(p.HSize))
		if err != nil {
			logrus.WithError(err).Fatal("training")
		}
		opt.Step()
		lossSum += seq.Loss
		stepSum += len(y)

		if i%cfg.LogEvery == 0 {
			bps := lossSum / float64(stepSum) / math.Ln2
			lossSum, stepSum = 0, 0
			mon.Losses = append(mon.Losses, bps)
			logrus.WithFields(logrus.Fields{"iter": i, "bits_per_step": bps, "seq_len": len(y)}).Info("training")
		}
		if mon.Poll(p) {
			printDebug(y, seq)
		}
	}
	if cfg.WeightsFile != "" {
		if err := p.SaveFile(cfg.WeightsFile); err != nil {
			logrus.WithError(err).Error("saving weights")
		}
	}
}

func printDebug(y []int, seq *lstm.Sequence) {
	pred := make([]int, len(seq.Caches))
	for t, c := range seq.Caches {
		pred[t] = argmax(c.Y)
	}
	logrus.Infof("y:    %v", y)
	logrus.Infof("pred: %v", pred)
}

func argmax(v []float64) int {
	best := 0
	for i := range v {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
