package physics

import (
	"runtime"

	"go.uber.org/zap"
)

// Options configures a World.
type Options struct {
	Gravity       Vec3
	Drag          float32 // fraction of velocity lost per time unit
	MaxIterations int     // sub-steps per frame before the rest of the frame is dropped
	Parallelism   int     // goroutines for the per-ball narrowphase; 1 runs inline
	Seed          uint64  // scatter RNG seed

	Logger   *zap.Logger
	Observer Observer
}

func DefaultOptions() Options {
	return Options{
		Gravity:       Vec3{0, DefaultSlopeY, DefaultSlopeZ},
		MaxIterations: DefaultMaxIterations,
		Parallelism:   runtime.GOMAXPROCS(0),
		Seed:          1,
	}
}

func (o Options) withDefaults() Options {
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.Parallelism <= 0 {
		o.Parallelism = 1
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Observer == nil {
		o.Observer = NopObserver{}
	}
	return o
}

// FrameStats summarizes one call to Step.
type FrameStats struct {
	Frame     uint64 `json:"frame"`
	SubSteps  int    `json:"sub_steps"`
	Hits      int    `json:"hits"`
	Contacts  int    `json:"contacts"`
	Skipped   int    `json:"skipped"`
	Truncated bool   `json:"truncated"`
}

// Observer receives simulation counters. Implementations must be cheap; they
// are called from the step loop.
type Observer interface {
	FrameSimulated(stats FrameStats)
	ContactSkipped(kind Kind)
	EventEmitted(kind EventKind)
}

type NopObserver struct{}

func (NopObserver) FrameSimulated(FrameStats) {}
func (NopObserver) ContactSkipped(Kind)       {}
func (NopObserver) EventEmitted(EventKind)    {}
