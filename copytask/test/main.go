package main

import (
	"flag"
	"fmt"
	"html/template"
	"math"
	"math/rand"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/fumin/lstm"
	"github.com/fumin/lstm/copytask"
)

var (
	weightsFile = flag.String("weightsFile", "", "trained weights, must end in .vanilla")
	delay       = flag.Int("delay", 3, "delay the weights were trained with")
	seed        = flag.Int64("seed", 1, "random seed")
	port        = flag.Int("port", 9000, "port to serve the runs on")
)

type Run struct {
	SeqLen      int
	BitsPerStep float64
	X           [][]float64
	Y           [][]float64
	Predictions [][]float64
	Hidden      [][]float64
}

func main() {
	flag.Parse()
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	p, err := lstm.LoadFile(*weightsFile)
	if err != nil {
		logrus.WithError(err).Fatal("loading weights")
	}
	numSymbols := p.XSize()
	if copytask.OutputSize(numSymbols) != p.NClasses {
		logrus.WithFields(logrus.Fields{"x_size": numSymbols, "n_classes": p.NClasses}).Fatal("weights were not trained on the copy task")
	}

	rng := rand.New(rand.NewSource(*seed))
	seqLens := []int{10, 20, 30, 50, 120}
	runs := make([]Run, 0, len(seqLens))
	for _, seql := range seqLens {
		x, y := copytask.GenSeq(rng, seql, numSymbols, *delay)
		seq, err := lstm.Unroll(p, x, y, lstm.NewState(p.HSize))
		if err != nil {
			logrus.WithError(err).Fatal("evaluating")
		}
		bps := seq.Loss / float64(len(y)) / math.Ln2
		logrus.WithFields(logrus.Fields{"seq_len": seql, "bits_per_step": bps}).Info("evaluated")

		r := Run{
			SeqLen:      seql,
			BitsPerStep: bps,
			X:           x,
			Y:           oneHots(y, p.NClasses),
			Predictions: lstm.Predictions(seq.Caches),
			Hidden:      hidden(seq.Caches),
		}
		runs = append(runs, r)
	}

	http.HandleFunc("/", root(runs))
	logrus.WithField("port", *port).Info("serving runs")
	if err := http.ListenAndServe(fmt.Sprintf(":%d", *port), nil); err != nil {
		logrus.WithError(err).Error("serving")
	}
}

func oneHots(y []int, n int) [][]float64 {
	t := lstm.MakeTensor2(len(y), n)
	for i, c := range y {
		t[i][c] = 1
	}
	return t
}

// hidden rescales the hidden states from [-1, 1] to [0, 1] for display.
func hidden(caches []*lstm.Cache) [][]float64 {
	hs := make([][]float64, len(caches))
	for t, c := range caches {
		hs[t] = make([]float64, len(c.H))
		for i, h := range c.H {
			hs[t][i] = (h + 1) / 2
		}
	}
	return hs
}

var rootTmpl = template.Must(template.New("").Parse(`
<!DOCTYPE html>
<html>
<head>
  <script type="text/javascript" src="http://d3js.org/d3.v3.js"></script>
</head>
<body>
<script type="text/javascript">
var page = {{.}};
var colors = ["#d73027","#f46d43","#fdae61","#fee090","#ffffbf","#e0f3f8","#abd9e9","#74add1","#4575b4"];

// imshow displays a 2 dimensional matrix with 0.0 in blue and 1.0 in red.
function imshow(parent, matrix) {
  var colormap = d3.scale.quantize().domain([0, 1]).range(colors.slice().reverse());
  var table = parent.append("table").style("margin-bottom", "1em");
  table.selectAll("tr").data(matrix).
    enter().append("tr").
    selectAll("td").data(function(d) { return d; }).
    enter().append("td").
    style("background-color", colormap).
    style("min-width", "1em").
    style("height", "1em");
  return table;
}

var run = d3.select("body").selectAll("div").
  data(page.Runs).
  enter().append("div").
  attr("id", function(d){ return "run-"+d.SeqLen; });

run.append("h4").text(function(d){ return "Sequence length: "+d.SeqLen+", bits-per-step: "+d.BitsPerStep.toPrecision(3); });
imshow(run, function(d){ return d3.transpose(d.X); });
imshow(run, function(d){ return d3.transpose(d.Y); });
imshow(run, function(d){ return d3.transpose(d.Predictions); });
imshow(run, function(d){ return d3.transpose(d.Hidden); });
</script>
</body>
</html>
`))

func root(runs []Run) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		page := struct {
			Runs []Run
		}{
			Runs: runs,
		}
		if err := rootTmpl.Execute(w, page); err != nil {
			logrus.WithError(err).Error("rendering runs")
		}
	}
}
