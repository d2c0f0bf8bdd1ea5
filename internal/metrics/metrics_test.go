package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playmatatu/pinball/internal/physics"
)

func TestObserverCounts(t *testing.T) {
	var o Observer
	frames := testutil.ToFloat64(FramesSimulated)
	truncated := testutil.ToFloat64(FramesTruncated)
	hits := testutil.ToFloat64(EventsEmitted.WithLabelValues("hit"))
	skipped := testutil.ToFloat64(ContactsSkipped.WithLabelValues("wall"))

	o.FrameSimulated(physics.FrameStats{SubSteps: 3})
	o.FrameSimulated(physics.FrameStats{SubSteps: 20, Truncated: true})
	o.EventEmitted(physics.EventHit)
	o.ContactSkipped(physics.KindWall)

	assert.Equal(t, frames+2, testutil.ToFloat64(FramesSimulated))
	assert.Equal(t, truncated+1, testutil.ToFloat64(FramesTruncated))
	assert.Equal(t, hits+1, testutil.ToFloat64(EventsEmitted.WithLabelValues("hit")))
	assert.Equal(t, skipped+1, testutil.ToFloat64(ContactsSkipped.WithLabelValues("wall")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	Observer{}.FrameSimulated(physics.FrameStats{SubSteps: 1})

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pinball_frames_simulated_total")
}
