package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toggl-efforts/internal/domain"
)

func newDispatcher() (*Dispatcher, *fakeToggl, *recordingCache, *fakeSettings, *fakeNotifier, *fakeOpener) {
	toggl := &fakeToggl{now: func() time.Time { return mon }}
	c := &recordingCache{}
	settings := &fakeSettings{key: "secret"}
	n := &fakeNotifier{}
	o := &fakeOpener{}
	return &Dispatcher{Log: discardLogger(), Toggl: toggl, Cache: c, Settings: settings, Notifier: n, Opener: o}, toggl, c, settings, n, o
}

func TestDispatcher_Start(t *testing.T) {
	d, toggl, c, _, n, _ := newDispatcher()

	status, err := d.Do(context.Background(), "start|write report")
	require.NoError(t, err)
	assert.Equal(t, "Started write report", status)
	assert.Equal(t, []string{"write report"}, toggl.started)
	assert.Equal(t, 1, c.invalidated)
	// Notifier is off.
	assert.Empty(t, n.calls)
}

func TestDispatcher_StartNotifiesWhenEnabled(t *testing.T) {
	d, _, _, settings, n, _ := newDispatcher()
	settings.notifier = true

	_, err := d.Do(context.Background(), "start|writing")
	require.NoError(t, err)
	assert.Equal(t, []string{"active:writing"}, n.calls)
}

func TestDispatcher_StartRequiresDescription(t *testing.T) {
	d, toggl, _, _, _, _ := newDispatcher()

	_, err := d.Do(context.Background(), "start|  ")
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Empty(t, toggl.started)
}

func TestDispatcher_ContinueKeepsPipesInDescription(t *testing.T) {
	d, toggl, c, _, _, _ := newDispatcher()

	status, err := d.Do(context.Background(), "continue|7|fix a|b parsing")
	require.NoError(t, err)
	assert.Equal(t, "Continued fix a|b parsing", status)
	assert.Equal(t, []string{"fix a|b parsing"}, toggl.started)
	assert.Equal(t, 1, c.invalidated)
}

func TestDispatcher_Stop(t *testing.T) {
	d, toggl, c, settings, n, _ := newDispatcher()
	settings.notifier = true
	toggl.entries = []domain.TimeEntry{runningEntry(42, "writing", mon.Add(-time.Hour))}

	status, err := d.Do(context.Background(), "stop|42|writing")
	require.NoError(t, err)
	assert.Equal(t, "Stopped writing", status)
	assert.Equal(t, []int64{42}, toggl.stopped)
	assert.False(t, toggl.entries[0].IsRunning())
	assert.Equal(t, 1, c.invalidated)
	assert.Equal(t, []string{"stopped"}, n.calls)
}

func TestDispatcher_BadID(t *testing.T) {
	d, toggl, c, _, _, _ := newDispatcher()

	for _, token := range []string{"stop|abc|writing", "continue|x|writing", "stop"} {
		_, err := d.Do(context.Background(), token)
		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve, token)
	}
	assert.Empty(t, toggl.stopped)
	assert.Empty(t, toggl.started)
	assert.Zero(t, c.invalidated)
}

func TestDispatcher_ServiceFailureLeavesCache(t *testing.T) {
	d, toggl, c, _, _, _ := newDispatcher()
	toggl.err = errBoom

	status, err := d.Do(context.Background(), "start|writing")
	assert.Equal(t, "Problem talking to toggl.com", status)
	var fe *domain.FetchError
	require.ErrorAs(t, err, &fe)
	assert.True(t, errors.Is(err, errBoom))
	assert.Zero(t, c.invalidated)

	_, err = d.Do(context.Background(), "stop|1|writing")
	require.ErrorAs(t, err, &fe)
	assert.Zero(t, c.invalidated)
}

func TestDispatcher_ForceRefresh(t *testing.T) {
	d, _, c, _, _, _ := newDispatcher()

	status, err := d.Do(context.Background(), "force_refresh")
	require.NoError(t, err)
	assert.Equal(t, "Cache cleared", status)
	assert.Equal(t, 1, c.dropped)
}

func TestDispatcher_NotifierToggle(t *testing.T) {
	d, _, _, settings, n, _ := newDispatcher()
	ctx := context.Background()

	status, err := d.Do(ctx, "enable_notifier")
	require.NoError(t, err)
	assert.Equal(t, "Notifier enabled", status)
	assert.True(t, settings.notifier)

	status, err = d.Do(ctx, "disable_notifier")
	require.NoError(t, err)
	assert.Equal(t, "Notifier disabled", status)
	assert.False(t, settings.notifier)

	assert.Equal(t, []string{"activate:secret", "quit"}, n.calls)
}

func TestDispatcher_SettingsFailure(t *testing.T) {
	d, _, _, settings, _, _ := newDispatcher()
	settings.err = errBoom

	status, err := d.Do(context.Background(), "enable_notifier")
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, "Could not enable the notifier", status)
}

func TestDispatcher_ClearKey(t *testing.T) {
	d, _, _, settings, n, _ := newDispatcher()

	status, err := d.Do(context.Background(), "clear_key")
	require.NoError(t, err)
	assert.Equal(t, "Cleared API key", status)
	assert.Empty(t, settings.key)
	assert.Equal(t, []string{"quit"}, n.calls)
}

func TestDispatcher_Open(t *testing.T) {
	d, _, _, _, _, o := newDispatcher()

	status, err := d.Do(context.Background(), "open|"+ServiceURL)
	require.NoError(t, err)
	assert.Equal(t, "Opened "+ServiceURL, status)
	assert.Equal(t, []string{ServiceURL}, o.opened)

	o.err = errBoom
	status, err = d.Do(context.Background(), "open|/tmp/log")
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, "Cannot open /tmp/log", status)
}

func TestDispatcher_UnknownVerb(t *testing.T) {
	d, toggl, c, _, _, _ := newDispatcher()

	status, err := d.Do(context.Background(), "explode|1")
	assert.Equal(t, `Unknown command "explode"`, status)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Empty(t, toggl.started)
	assert.Zero(t, c.invalidated)
}

func TestDispatcher_MissingDependencies(t *testing.T) {
	status, err := (&Dispatcher{}).Do(context.Background(), "start|x")
	require.Error(t, err)
	assert.Equal(t, "Not configured", status)
}
