package main

import (
	"context"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/netsim-project/netsim/netsim"
	"github.com/netsim-project/netsim/payload"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// statsServer serves a read-only snapshot of a running scenario's Network
// over fasthttp: JSON at /stats, Prometheus text exposition at /metrics.
// A Network shared across goroutines needs its own synchronization; mu is
// that synchronization. The tick loop goroutine holds it only long enough
// to advance, the HTTP handlers only long enough to read.
type statsServer struct {
	mu       sync.Mutex
	net      *netsim.Network[payload.Sized]
	registry *prometheus.Registry

	delivered prometheus.Counter
	dropped   prometheus.Counter
	corrupted prometheus.Counter
	round     prometheus.Gauge
}

// newStatsServer builds its own Registry rather than registering into
// prometheus.DefaultRegisterer: runAll drives several scenarios in the
// same process, one statsServer each, and the default registerer panics
// on the second registration of the same metric name.
func newStatsServer(net *netsim.Network[payload.Sized]) *statsServer {
	s := &statsServer{
		net:      net,
		registry: prometheus.NewRegistry(),
		delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "netsim_delivered_total", Help: "packets delivered uncorrupted",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "netsim_dropped_total", Help: "packets dropped or corrupted",
		}),
		corrupted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "netsim_corrupted_total", Help: "packets that completed corrupted",
		}),
		round: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "netsim_round", Help: "current tick round",
		}),
	}
	s.registry.MustRegister(s.delivered, s.dropped, s.corrupted, s.round)
	return s
}

// onDelivered and onDropped are called by the tick loop's sink wrapper and
// drop hook to keep the counters current. Both run inside AdvanceWith, that
// is inside advance, which already holds s.mu, so they take no lock of their
// own; prometheus counters are safe for concurrent use.
func (s *statsServer) onDelivered() {
	s.delivered.Inc()
}

// onDropped records a packet that completed corrupted instead of reaching
// sink. Corruption is currently netsim's only drop path (loss roll or
// download-buffer overflow), so dropped and corrupted move together.
func (s *statsServer) onDropped() {
	s.dropped.Inc()
	s.corrupted.Inc()
}

// advance drives one AdvanceWith tick under s.mu, so the HTTP handlers'
// reads of the Network (in snapshot) never race with the mutation a tick
// performs. The tick loop must call this instead of built.Net.AdvanceWith
// directly whenever a stats server is serving the same Network: a wrapper
// sharing a Network across goroutines owns its own synchronization.
func (s *statsServer) advance(step time.Duration, sink func(netsim.Packet[payload.Sized])) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.net.AdvanceWith(step, sink); err != nil {
		return err
	}
	s.round.Set(float64(s.net.Round()))
	return nil
}

type statsSnapshot struct {
	Round            uint64 `json:"round"`
	ElapsedMs        int64  `json:"elapsed_ms"`
	PacketsInTransit int    `json:"packets_in_transit"`
}

func (s *statsServer) snapshot() statsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return statsSnapshot{
		Round:            s.net.Round(),
		ElapsedMs:        s.net.Elapsed().Milliseconds(),
		PacketsInTransit: s.net.PacketsInTransit(),
	}
}

func (s *statsServer) handler() fasthttp.RequestHandler {
	metrics := fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return func(ctx *fasthttp.RequestCtx) {
		switch string(ctx.Path()) {
		case "/metrics":
			metrics(ctx)
		case "/stats":
			ctx.SetContentType("application/json")
			if err := json.NewEncoder(ctx).Encode(s.snapshot()); err != nil {
				ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			}
		default:
			ctx.SetStatusCode(fasthttp.StatusNotFound)
		}
	}
}

// run serves until ctx is canceled, then shuts the server down gracefully.
func (s *statsServer) run(ctx context.Context, addr string) error {
	srv := &fasthttp.Server{Handler: s.handler()}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe(addr) }()

	select {
	case <-ctx.Done():
		return srv.Shutdown()
	case err := <-errc:
		return err
	}
}
