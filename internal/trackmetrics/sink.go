// Package trackmetrics turns tracker events into Prometheus collectors,
// following the registry/collector shape of the retrieval pack's HLS
// orchestrator metrics package.
package trackmetrics

import (
	"net/http"
	"sync"

	"github.com/colinmarsh/segtrack/internal/representation"
	"github.com/colinmarsh/segtrack/internal/trackevent"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Sink is a trackevent.Listener that registers and updates Prometheus
// collectors for buffering state, buffering level, gaps, discontinuities,
// representation switches, and format changes.
type Sink struct {
	registry *prometheus.Registry

	bufferingEnabled *prometheus.GaugeVec
	bufferingLevel   *prometheus.GaugeVec
	segmentGaps      *prometheus.CounterVec
	discontinuities  *prometheus.CounterVec
	switches         *prometheus.CounterVec
	formatChanges    *prometheus.CounterVec

	mu         sync.Mutex
	currentSet string
}

// New creates and registers the tracker metrics collectors.
func New() *Sink {
	registry := prometheus.NewRegistry()

	bufferingEnabled := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tracker_buffering_enabled",
		Help: "Whether buffering is currently enabled for an adaptation set (1) or not (0).",
	}, []string{"adaptation_set"})

	bufferingLevel := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tracker_buffering_level_seconds",
		Help: "Buffering level bounds and targets, in seconds.",
	}, []string{"adaptation_set", "bound"})

	segmentGaps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_segment_gap_total",
		Help: "Total number of segment gaps encountered.",
	}, []string{"adaptation_set"})

	discontinuities := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_discontinuity_total",
		Help: "Total number of discontinuities encountered.",
	}, []string{"adaptation_set"})

	switches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_representation_switch_total",
		Help: "Total number of representation switches.",
	}, []string{"adaptation_set"})

	formatChanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_format_change_total",
		Help: "Total number of stream format changes.",
	}, []string{"adaptation_set", "format"})

	registry.MustRegister(bufferingEnabled, bufferingLevel, segmentGaps, discontinuities, switches, formatChanges)

	return &Sink{
		registry:         registry,
		bufferingEnabled: bufferingEnabled,
		bufferingLevel:   bufferingLevel,
		segmentGaps:      segmentGaps,
		discontinuities:  discontinuities,
		switches:         switches,
		formatChanges:    formatChanges,
		currentSet:       "unknown",
	}
}

// Handler returns an http.Handler serving the registered collectors.
func (s *Sink) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// TrackerEvent implements trackevent.Listener. Events that don't carry an
// AdaptationSetID (SegmentGap, Discontinuity, RepresentationSwitch,
// FormatChange) are labeled with the most recently seen set, since they are
// always delivered on the same single-set tracker that last reported one.
func (s *Sink) TrackerEvent(e trackevent.Event) {
	switch e.Kind {
	case trackevent.KindBufferingStateUpdate:
		set := s.rememberSet(e.AdaptationSetID)
		enabled := 0.0
		if e.BufferingEnabled {
			enabled = 1.0
		}
		s.bufferingEnabled.WithLabelValues(set).Set(enabled)

	case trackevent.KindBufferingLevelChange:
		set := s.rememberSet(e.AdaptationSetID)
		s.bufferingLevel.WithLabelValues(set, "min").Set(e.BufferingMin.Seconds())
		s.bufferingLevel.WithLabelValues(set, "max").Set(e.BufferingMax.Seconds())
		s.bufferingLevel.WithLabelValues(set, "current").Set(e.BufferingCurrent.Seconds())
		s.bufferingLevel.WithLabelValues(set, "target").Set(e.BufferingTarget.Seconds())

	case trackevent.KindSegmentChange:
		s.rememberSet(e.AdaptationSetID)

	case trackevent.KindSegmentGap:
		s.segmentGaps.WithLabelValues(s.lastSet()).Inc()

	case trackevent.KindDiscontinuity:
		s.discontinuities.WithLabelValues(s.lastSet()).Inc()

	case trackevent.KindRepresentationSwitch:
		s.switches.WithLabelValues(s.lastSet()).Inc()

	case trackevent.KindFormatChange:
		s.formatChanges.WithLabelValues(s.lastSet(), e.Format.String()).Inc()
	}
}

func (s *Sink) rememberSet(id representation.ID) string {
	set := id.String()
	s.mu.Lock()
	s.currentSet = set
	s.mu.Unlock()
	return set
}

func (s *Sink) lastSet() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentSet
}

var _ trackevent.Listener = (*Sink)(nil)
