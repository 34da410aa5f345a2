// Package web serves the live chart for one pipeline instance. It only ever
// reads the pipeline's snapshot and pause cells: the page polls /data on a
// fixed cadence and redraws unless paused, mirroring how ingestion never
// waits on presentation.
package web

import (
	"encoding/json"
	"html/template"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/measlab/liveplot/pipeline"
)

// Server renders the live chart for a pipeline instance.
type Server struct {
	pipe *pipeline.Pipeline
}

// NewServer wraps a pipeline instance for presentation.
func NewServer(pipe *pipeline.Pipeline) *Server {
	return &Server{pipe: pipe}
}

// Handler builds the HTTP routes: the chart page, the polled snapshot data
// and the Prometheus metrics endpoint.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/", s.handleIndex)
	r.Get("/data", s.handleData)
	r.Handle("/metrics", promhttp.HandlerFor(s.pipe.Metrics.Registry, promhttp.HandlerOpts{}))
	return r
}

// Trace is one plotted line.
type Trace struct {
	Name string    `json:"name"`
	X    []float64 `json:"x"`
	Y    []float64 `json:"y"`
}

// ChartData is the snapshot rendered for the page's polling loop.
type ChartData struct {
	Title  string  `json:"title"`
	Paused bool    `json:"paused"`
	Traces []Trace `json:"traces"`
}

func (s *Server) handleData(w http.ResponseWriter, req *http.Request) {
	snap := s.pipe.Snapshot.Load()

	data := ChartData{
		Title:  snap.Rec.IDN,
		Paused: s.pipe.Paused.Load(),
	}

	switch s.pipe.Kind {
	case pipeline.KindIV:
		data.Traces = append(data.Traces, Trace{
			Name: "scan0",
			X:    snap.Series.Column(0),
			Y:    snap.Series.Column(1),
		})
		// The reverse slot starts zero-filled; only plot it once a second
		// sweep has landed there.
		if reverse := snap.Series.Column(2); allNonZero(reverse) {
			data.Traces = append(data.Traces, Trace{
				Name: "scan1",
				X:    reverse,
				Y:    snap.Series.Column(3),
			})
		}
	case pipeline.KindIT:
		data.Traces = append(data.Traces, Trace{
			Name: "j",
			X:    snap.Series.Column(0),
			Y:    snap.Series.Column(1),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode chart data: %v\n", err)
	}
}

func allNonZero(values []float64) bool {
	if len(values) == 0 {
		return false
	}
	for _, v := range values {
		if v == 0 {
			return false
		}
	}
	return true
}

type pageParams struct {
	Kind   string
	XLabel string
	YLabel string
}

func (s *Server) handleIndex(w http.ResponseWriter, req *http.Request) {
	params := pageParams{
		Kind:   string(s.pipe.Kind),
		XLabel: "time (s)",
		YLabel: "J (mA/cm^2)",
	}
	if s.pipe.Kind == pipeline.KindIV {
		params.XLabel = "bias (V)"
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, params); err != nil {
		log.Printf("Failed to render chart page: %v\n", err)
	}
}

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))
