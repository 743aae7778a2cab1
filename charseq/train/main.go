package main

import (
	"flag"
	"math"
	"math/rand"
	"os"
	"runtime/pprof"

	"github.com/sirupsen/logrus"

	"github.com/fumin/lstm"
	"github.com/fumin/lstm/charseq"
	"github.com/fumin/lstm/config"
	"github.com/fumin/lstm/monitor"
)

var (
	configFile  = flag.String("config", "", "training configuration in JSON")
	textFile    = flag.String("text", "", "training text")
	weightsFile = flag.String("weightsFile", "", "file to save weights to, must end in .vanilla")
	resume      = flag.Bool("resume", false, "continue from the weights in weightsFile")
	iterations  = flag.Int("iterations", 0, "number of training steps, 0 to train forever")
	cpuprofile  = flag.String("cpuprofile", "", "write cpu profile to file")
)

func main() {
	flag.Parse()
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Default()
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			logrus.WithError(err).Fatal("loading config")
		}
	}
	if *weightsFile != "" {
		cfg.WeightsFile = *weightsFile
	}
	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("invalid config")
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

	gen, err := charseq.NewGeneratorFile(*textFile, cfg.SeqLen)
	if err != nil {
		logrus.WithError(err).Fatal("reading text")
	}
	p, err := newParameters(cfg, gen, rng)
	if err != nil {
		logrus.WithError(err).Fatal("creating network")
	}
	opt, err := lstm.NewOptimizer(cfg.Optimizer, p, cfg.LearningRate, cfg.Momentum)
	if err != nil {
		logrus.WithError(err).Fatal("creating optimizer")
	}
	logrus.WithFields(logrus.Fields{
		"vocab":      gen.Vocab.Size(),
		"h_size":     p.HSize,
		"numweights": p.NumWeights(),
		"optimizer":  cfg.Optimizer,
	}).Info("network ready")

	mon := monitor.New()
	mon.ListenAndServe(cfg.Port)

	state := lstm.NewState(p.HSize)
	smooth := -math.Log(1/float64(gen.Vocab.Size())) * float64(cfg.SeqLen)
	for i := 1; *iterations == 0 || i <= *iterations; i++ {
		opt.ZeroGrad()
		var l float64
		if cfg.BatchSize > 1 {
			l = trainBatch(p, gen, cfg, rng)
		} else {
			x, y, reset := gen.GenSeq()
			if reset {
				state = lstm.NewState(p.HSize)
			}
			seq, err := lstm.ForwardBackward(p, x, y, state)
			if err != nil {
				logrus.WithError(err).Fatal("training")
			}
			state = seq.Final
			l = seq.Loss
		}
		opt.Step()
		smooth = 0.999*smooth + 0.001*l

		if i%cfg.LogEvery == 0 {
			bpc := smooth / float64(cfg.SeqLen) / math.Ln2
			mon.Losses = append(mon.Losses, bpc)
			logrus.WithFields(logrus.Fields{"iter": i, "bpc": bpc}).Info("training")
		}
		if cfg.SaveEvery > 0 && i%cfg.SaveEvery == 0 {
			save(p, cfg.WeightsFile)
		}
		if mon.Poll(p) {
			printSample(p, gen, state, rng)
		}
	}
	save(p, cfg.WeightsFile)
}

func newParameters(cfg *config.TrainConfig, gen *charseq.Generator, rng *rand.Rand) (*lstm.Parameters, error) {
	if *resume {
		return lstm.LoadFile(cfg.WeightsFile)
	}
	return lstm.NewParameters(cfg.HSize, cfg.HSize+gen.InputSize(), gen.OutputSize(), cfg.WeightSD, rng)
}

func trainBatch(p *lstm.Parameters, gen *charseq.Generator, cfg *config.TrainConfig, rng *rand.Rand) float64 {
	examples := make([]lstm.Example, cfg.BatchSize)
	for i := range examples {
		x, y := gen.Random(rng)
		examples[i] = lstm.Example{X: x, Y: y, Init: lstm.NewState(p.HSize)}
	}
	seqs, err := lstm.ForwardBackwardParallel(p, examples, cfg.Workers)
	if err != nil {
		logrus.WithError(err).Fatal("training")
	}
	var l float64 = 0
	for _, s := range seqs {
		l += s.Loss
	}
	return l / float64(len(seqs))
}

func save(p *lstm.Parameters, path string) {
	if path == "" {
		return
	}
	if err := p.SaveFile(path); err != nil {
		logrus.WithError(err).WithField("path", path).Error("saving weights")
		return
	}
	logrus.WithField("path", path).Info("saved weights")
}

func printSample(p *lstm.Parameters, gen *charseq.Generator, state lstm.State, rng *rand.Rand) {
	ids, err := lstm.Sample(p, state, rng.Intn(gen.Vocab.Size()), 200, gen.OneHot, rng)
	if err != nil {
		logrus.WithError(err).Error("sampling")
		return
	}
	logrus.Infof("sample:\n%s", gen.Decode(ids))
}
