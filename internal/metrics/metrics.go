// Package metrics exports the controller's state as Prometheus metrics,
// fed from the event bus so the control loop never touches a collector.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coreman2200/funtimes-lightstrip/internal/events"
)

var (
	framesFlushed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lightstrip",
		Subsystem: "strip",
		Name:      "frames_total",
		Help:      "Frames pushed to the strip driver",
	}, []string{"source"})

	flushErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lightstrip",
		Subsystem: "strip",
		Name:      "write_errors_total",
		Help:      "Failed strip driver writes",
	}, []string{"source"})

	flushSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "lightstrip",
		Subsystem: "strip",
		Name:      "flush_seconds",
		Help:      "Time spent pushing one frame",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
	})

	encoderPosition = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lightstrip",
		Subsystem: "encoder",
		Name:      "position",
		Help:      "Current encoder position",
	})

	encoderSteps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lightstrip",
		Subsystem: "encoder",
		Name:      "steps_total",
		Help:      "Encoder detents by direction",
	}, []string{"direction"})

	selectedCase = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lightstrip",
		Subsystem: "encoder",
		Name:      "case",
		Help:      "Case selected by the encoder position",
	})

	modeChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lightstrip",
		Subsystem: "dispatch",
		Name:      "mode_changes_total",
		Help:      "Mode transitions by target mode",
	}, []string{"to"})

	driven = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lightstrip",
		Subsystem: "dispatch",
		Name:      "driven",
		Help:      "1 while the external controller drives the strip",
	})

	linked = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lightstrip",
		Subsystem: "link",
		Name:      "up",
		Help:      "1 while the driverstation link is established",
	})
)

// Attach subscribes the collectors to bus and returns the unsubscribe
// function.
func Attach(bus *events.Bus) func() {
	unsubs := []func(){
		bus.Subscribe(func(e events.FrameFlushedEvent) {
			framesFlushed.WithLabelValues(e.Source).Inc()
			flushSeconds.Observe(e.FlushMS / 1000)
			if e.Err != "" {
				flushErrors.WithLabelValues(e.Source).Inc()
			}
		}),
		bus.Subscribe(func(e events.PositionChangedEvent) {
			encoderPosition.Set(float64(e.Position))
			if e.Step > 0 {
				encoderSteps.WithLabelValues("cw").Inc()
			} else {
				encoderSteps.WithLabelValues("ccw").Inc()
			}
		}),
		bus.Subscribe(func(e events.CaseChangedEvent) {
			selectedCase.Set(float64(e.Case))
		}),
		bus.Subscribe(func(e events.ModeChangedEvent) {
			modeChanges.WithLabelValues(e.To).Inc()
			if e.To == "driven" {
				driven.Set(1)
			} else {
				driven.Set(0)
			}
		}),
		bus.Subscribe(func(e events.LinkChangedEvent) {
			if e.Linked {
				linked.Set(1)
			} else {
				linked.Set(0)
			}
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
