package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Counters(t *testing.T) {
	m := NewManager()

	m.SnapshotApplied()
	m.SnapshotApplied()
	m.MessageDropped(DropMalformed)
	m.IntentSent("makePick")
	m.IntentFailed("makePick")
	m.TimeoutEmitted()
	m.TransportOpened()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.snapshotsApplied))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.messagesDropped.WithLabelValues(DropMalformed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.intentsSent.WithLabelValues("makePick")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.timeoutsEmitted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transportOpen))

	m.TransportClosed()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.transportOpen))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transportCloses))
}

func TestManager_NilIsNoop(t *testing.T) {
	var m *Manager
	require.NotPanics(t, func() {
		m.SnapshotApplied()
		m.MessageDropped(DropStale)
		m.TransportClosed()
	})
}

func TestManager_Handler(t *testing.T) {
	m := NewManager(WithNamespace("test"))
	m.IntentSent("keepalive")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `test_intents_sent_total{action="keepalive"} 1`))
}
