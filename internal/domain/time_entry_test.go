package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_Variants(t *testing.T) {
	assert.True(t, Running().IsRunning())
	_, ok := Running().Seconds()
	assert.False(t, ok)

	sec, ok := Stopped(90).Seconds()
	assert.True(t, ok)
	assert.Equal(t, int64(90), sec)

	assert.True(t, DurationFromAPI(-1).IsRunning())
	assert.True(t, DurationFromAPI(-1700000000).IsRunning())
	assert.False(t, DurationFromAPI(0).IsRunning())
}

func TestTimeEntry_StopAt(t *testing.T) {
	start := time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)
	now := start.Add(3 * time.Hour)

	derived := TimeEntry{Start: start, Duration: Stopped(5400)}
	assert.Equal(t, start.Add(90*time.Minute), derived.StopAt(now))

	stop := start.Add(time.Hour)
	explicit := TimeEntry{Start: start, Stop: &stop, Duration: Stopped(3600)}
	assert.Equal(t, stop, explicit.StopAt(now))

	running := TimeEntry{Start: start, Duration: Running()}
	assert.Equal(t, now, running.StopAt(now))
}

func TestTimeEntry_JSONRoundTripKeepsRunningState(t *testing.T) {
	start := time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)
	stop := start.Add(time.Hour)
	in := []TimeEntry{
		{ID: 1, Description: "writing", Start: start, Duration: Running()},
		{ID: 2, Description: "coding", Start: start, Stop: &stop, Duration: Stopped(3600), Tags: []string{"dev"}},
	}
	b, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"duration":-1`)

	var out []TimeEntry
	require.NoError(t, json.Unmarshal(b, &out))
	require.Len(t, out, 2)
	assert.True(t, out[0].IsRunning())
	assert.Nil(t, out[0].Stop)
	assert.False(t, out[1].IsRunning())
	assert.True(t, out[1].Start.Equal(start))
	require.NotNil(t, out[1].Stop)
	assert.True(t, out[1].Stop.Equal(stop))
	assert.Equal(t, []string{"dev"}, out[1].Tags)
}

func TestTimeEntry_UnmarshalRejectsMissingFields(t *testing.T) {
	var e TimeEntry
	err := json.Unmarshal([]byte(`{"id":3,"description":"x","duration":10}`), &e)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing start")

	err = json.Unmarshal([]byte(`{"id":3,"description":"x","start":"2025-08-01T09:00:00Z"}`), &e)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing duration")
}

func TestWindow_EndWithoutStartIsIgnored(t *testing.T) {
	end := time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC)
	w := Window{End: end}
	assert.False(t, w.HasStart())
	assert.False(t, w.HasEnd())

	w.Start = end.Add(-24 * time.Hour)
	assert.True(t, w.HasEnd())
}
