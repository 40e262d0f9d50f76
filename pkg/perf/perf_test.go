package perf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudposse/pomgraph/pkg/schema"
)

func TestTrack_DisabledRecordsNothing(t *testing.T) {
	EnableTracking(false)
	Reset()

	Track(nil, "perf.disabled")()

	assert.Empty(t, Snapshot())
}

func TestTrack_Records(t *testing.T) {
	EnableTracking(true)
	t.Cleanup(func() {
		EnableTracking(false)
		Reset()
	})
	Reset()

	for i := 0; i < 3; i++ {
		done := Track(nil, "perf.enabled")
		time.Sleep(time.Millisecond)
		done()
	}

	stats := Snapshot()
	require.Len(t, stats, 1)
	assert.Equal(t, "perf.enabled", stats[0].Name)
	assert.Equal(t, int64(3), stats[0].Count)
	assert.GreaterOrEqual(t, stats[0].Total, 3*time.Millisecond)
	assert.GreaterOrEqual(t, stats[0].Max, stats[0].P50)
}

func TestTrack_ConfigEnables(t *testing.T) {
	EnableTracking(false)
	t.Cleanup(func() {
		EnableTracking(false)
		Reset()
	})
	Reset()

	cfg := &schema.Configuration{Profiler: schema.Profiler{Enabled: true}}
	Track(cfg, "perf.config")()

	stats := Snapshot()
	require.Len(t, stats, 1)
	assert.Equal(t, "perf.config", stats[0].Name)
}
