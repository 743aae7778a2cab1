// Package monitor exposes the weights and loss history of a training loop
// over HTTP.
//
// Handlers never touch the network directly. They hand a request to the
// training loop, which answers it between two training steps in Poll.
package monitor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/fumin/lstm"
)

type weightsReply struct {
	b   []byte
	err error
}

type Monitor struct {
	weightsChan chan chan weightsReply
	lossChan    chan chan []float64
	sampleChan  chan struct{}

	Losses []float64
}

func New() *Monitor {
	return &Monitor{
		weightsChan: make(chan chan weightsReply),
		lossChan:    make(chan chan []float64),
		sampleChan:  make(chan struct{}),
		Losses:      make([]float64, 0),
	}
}

// Handler returns the HTTP handler serving /Weights, /Loss and /Sample.
func (m *Monitor) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/Weights", func(w http.ResponseWriter, r *http.Request) {
		c := make(chan weightsReply)
		m.weightsChan <- c
		reply := <-c
		if reply.err != nil {
			http.Error(w, reply.err.Error(), http.StatusInternalServerError)
			return
		}
		w.Write(reply.b)
	})
	mux.HandleFunc("/Loss", func(w http.ResponseWriter, r *http.Request) {
		c := make(chan []float64)
		m.lossChan <- c
		json.NewEncoder(w).Encode(<-c)
	})
	mux.HandleFunc("/Sample", func(w http.ResponseWriter, r *http.Request) {
		m.sampleChan <- struct{}{}
	})
	return mux
}

// ListenAndServe serves Handler on port in a new goroutine.
func (m *Monitor) ListenAndServe(port int) {
	go func() {
		logrus.WithField("port", port).Info("monitor listening")
		if err := http.ListenAndServe(fmt.Sprintf(":%d", port), m.Handler()); err != nil {
			logrus.WithError(err).Error("monitor stopped")
		}
	}()
}

// Poll answers at most one pending request using p.
// It returns true if a sample was requested.
func (m *Monitor) Poll(p *lstm.Parameters) bool {
	select {
	case c := <-m.weightsChan:
		var buf bytes.Buffer
		if err := p.Save(&buf); err != nil {
			logrus.WithError(err).Error("encoding weights")
			c <- weightsReply{err: err}
			break
		}
		c <- weightsReply{b: buf.Bytes()}
	case c := <-m.lossChan:
		c <- append([]float64(nil), m.Losses...)
	case <-m.sampleChan:
		return true
	default:
	}
	return false
}
