package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/playmatatu/pinball/internal/physics"
)

var (
	// FramesSimulated counts physics frames stepped across all sessions.
	FramesSimulated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pinball_frames_simulated_total",
		Help: "Physics frames stepped",
	})

	// SubSteps tracks how many contacts a frame needed.
	SubSteps = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pinball_frame_sub_steps",
		Help:    "Sub-steps per physics frame",
		Buckets: []float64{1, 2, 3, 4, 6, 8, 12, 16, 20},
	})

	// FramesTruncated counts frames that hit the iteration cap.
	FramesTruncated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pinball_frames_truncated_total",
		Help: "Frames whose remaining time was dropped at the iteration cap",
	})

	// ContactsSkipped counts rigid contacts ignored for deep penetration.
	ContactsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pinball_contacts_skipped_total",
		Help: "Contacts skipped for excessive penetration, by item kind",
	}, []string{"kind"})

	// EventsEmitted counts queued gameplay events.
	EventsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pinball_events_emitted_total",
		Help: "Gameplay events by kind",
	}, []string{"kind"})

	// ActiveSessions tracks running table sessions.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pinball_active_sessions",
		Help: "Running table sessions",
	})

	// FrameStepSeconds tracks the wall time of one session frame.
	FrameStepSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pinball_frame_step_seconds",
		Help:    "Wall time spent stepping one frame",
		Buckets: prometheus.ExponentialBuckets(0.00005, 2, 12),
	})
)

// Observer feeds physics counters into the collectors above.
type Observer struct{}

var _ physics.Observer = Observer{}

func (Observer) FrameSimulated(s physics.FrameStats) {
	FramesSimulated.Inc()
	SubSteps.Observe(float64(s.SubSteps))
	if s.Truncated {
		FramesTruncated.Inc()
	}
}

func (Observer) ContactSkipped(kind physics.Kind) {
	ContactsSkipped.WithLabelValues(kind.String()).Inc()
}

func (Observer) EventEmitted(kind physics.EventKind) {
	EventsEmitted.WithLabelValues(kind.String()).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
