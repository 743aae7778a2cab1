package monitor

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fumin/lstm"
)

func TestMonitor(t *testing.T) {
	p, err := lstm.NewParameters(2, 3, 2, lstm.DefaultWeightSD, nil)
	if err != nil {
		t.Fatal(err)
	}
	m := New()
	m.Losses = append(m.Losses, 1.5, 0.5)

	sampled := make(chan struct{}, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			default:
			}
			if m.Poll(p) {
				sampled <- struct{}{}
			}
		}
	}()

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/Loss")
	if err != nil {
		t.Fatal(err)
	}
	var losses []float64
	if err := json.NewDecoder(resp.Body).Decode(&losses); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if len(losses) != 2 || losses[0] != 1.5 || losses[1] != 0.5 {
		t.Errorf("unexpected losses %v", losses)
	}

	resp, err = http.Get(srv.URL + "/Weights")
	if err != nil {
		t.Fatal(err)
	}
	q, err := lstm.Load(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	if q.HSize != 2 || q.ZSize != 3 || q.NClasses != 2 {
		t.Errorf("wrong dimensions %d %d %d", q.HSize, q.ZSize, q.NClasses)
	}

	resp, err = http.Get(srv.URL + "/Sample")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	<-sampled
}

func TestMonitorWeightsEncodingError(t *testing.T) {
	p, err := lstm.NewParameters(2, 3, 2, lstm.DefaultWeightSD, nil)
	if err != nil {
		t.Fatal(err)
	}
	p.Wv.V[0] = math.NaN()
	m := New()

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			default:
			}
			m.Poll(p)
		}
	}()

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/Weights")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, resp.StatusCode)
	}

	// The monitor keeps serving after a failed request.
	resp, err = http.Get(srv.URL + "/Loss")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
}
