package guide

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"agrisense/models"
	"agrisense/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{t: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fakeGenerator struct {
	mu    sync.Mutex
	calls int
	text  string
	err   error
}

func (g *fakeGenerator) Generate(_ context.Context, req GenerateRequest) (models.InstructionRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return models.InstructionRecord{}, g.err
	}
	text := g.text
	if text == "" {
		text = fmt.Sprintf("water the %s (call %d)", req.Crop, g.calls)
	}
	return models.InstructionRecord{Instructions: text, GeneratedAt: time.Now()}, nil
}

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func newTestController(t *testing.T) (*Controller, *store.Memory, *fakeGenerator, *fakeClock) {
	t.Helper()
	st := store.NewMemory()
	gen := &fakeGenerator{}
	clock := newFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.Local))
	return New(st, gen, WithClock(clock.Now)), st, gen, clock
}

func TestProgress(t *testing.T) {
	testCases := []struct {
		name     string
		days     int
		duration int
		want     float64
	}{
		{"day zero", 0, 120, 0},
		{"halfway", 60, 120, 50},
		{"full", 120, 120, 100},
		{"past duration clamps", 130, 120, 100},
		{"zero duration", 10, 0, 0},
		{"short cycle", 30, 60, 50},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Progress(tc.days, tc.duration))
		})
	}
}

func TestProgressMonotonic(t *testing.T) {
	prev := 0.0
	for days := 0; days <= 200; days++ {
		p := Progress(days, 120)
		assert.GreaterOrEqual(t, p, prev, "day %d", days)
		assert.LessOrEqual(t, p, 100.0)
		prev = p
	}
}

func TestCropDuration(t *testing.T) {
	assert.Equal(t, 120, CropDuration("rice"))
	assert.Equal(t, 120, CropDuration("wheat"))
	assert.Equal(t, 365, CropDuration("sugarcane"))
	assert.Equal(t, 60, CropDuration("beans"))
	assert.Equal(t, 120, CropDuration(" Rice "))
	assert.Equal(t, DefaultCropDuration, CropDuration("dragonfruit"))
	assert.Equal(t, DefaultCropDuration, CropDuration(""))
}

func TestStartSetsStateAtomically(t *testing.T) {
	ctrl, _, _, _ := newTestController(t)
	ctx := context.Background()

	status, err := ctrl.Start(ctx, "rice")
	require.NoError(t, err)

	// active == true implies crop, startDate and duration are all set.
	assert.True(t, status.Active)
	assert.Equal(t, "rice", status.FarmerCrop)
	assert.Equal(t, "2025-06-01", status.StartDate)
	assert.Equal(t, 120, status.CropDuration)
	assert.Equal(t, 0, status.DaysSincePlanting)
	assert.Equal(t, 0.0, status.ProgressPercent)
}

func TestStartRejectsEmptyCrop(t *testing.T) {
	ctrl, st, _, _ := newTestController(t)
	ctx := context.Background()

	_, err := ctrl.Start(ctx, "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	// Nothing was written.
	raw, err := st.Get(ctx, GuidePath)
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestGenerateTodayIdempotent(t *testing.T) {
	ctrl, _, gen, _ := newTestController(t)
	ctx := context.Background()

	_, err := ctrl.Start(ctx, "tomato")
	require.NoError(t, err)

	res, err := ctrl.GenerateToday(ctx, "en", false)
	require.NoError(t, err)
	assert.Equal(t, OutcomeGenerated, res.Outcome)

	// Second automatic trigger on the same day must not call the
	// generator again.
	res, err = ctrl.GenerateToday(ctx, "en", false)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyGenerated, res.Outcome)
	assert.Equal(t, 1, gen.callCount())

	state, err := ctrl.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, state.DailyInstructions, 1)
}

func TestManualRefreshOverwrites(t *testing.T) {
	ctrl, _, gen, _ := newTestController(t)
	ctx := context.Background()

	_, err := ctrl.Start(ctx, "corn")
	require.NoError(t, err)

	gen.text = "first"
	_, err = ctrl.GenerateToday(ctx, "en", false)
	require.NoError(t, err)

	gen.text = "second"
	res, err := ctrl.GenerateToday(ctx, "en", true)
	require.NoError(t, err)
	assert.Equal(t, OutcomeGenerated, res.Outcome)
	assert.Equal(t, 2, gen.callCount())

	state, err := ctrl.Load(ctx)
	require.NoError(t, err)
	require.Len(t, state.DailyInstructions, 1)
	rec, ok := state.TodayRecord(ctrl.DayKey())
	require.True(t, ok)
	assert.Equal(t, "second", rec.Instructions)
}

func TestGenerateSkipsWhenInactive(t *testing.T) {
	ctrl, _, gen, _ := newTestController(t)

	res, err := ctrl.GenerateToday(context.Background(), "en", false)
	require.NoError(t, err)
	assert.Equal(t, OutcomeInactive, res.Outcome)
	assert.Zero(t, gen.callCount())
}

func TestGenerateFailureLeavesStateUnchanged(t *testing.T) {
	ctrl, _, gen, _ := newTestController(t)
	ctx := context.Background()

	_, err := ctrl.Start(ctx, "potato")
	require.NoError(t, err)
	before, err := ctrl.Load(ctx)
	require.NoError(t, err)

	gen.err = &UpstreamError{Service: "gemini", Status: 503, Msg: "overloaded"}
	_, err = ctrl.GenerateToday(ctx, "en", false)
	var uerr *UpstreamError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, 503, uerr.Status)

	after, err := ctrl.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Empty(t, after.DailyInstructions)
}

func TestStopPreservesHistoryAndRestartSucceeds(t *testing.T) {
	ctrl, _, _, clock := newTestController(t)
	ctx := context.Background()

	_, err := ctrl.Start(ctx, "beans")
	require.NoError(t, err)
	_, err = ctrl.GenerateToday(ctx, "en", false)
	require.NoError(t, err)

	require.NoError(t, ctrl.Stop(ctx))
	state, err := ctrl.Load(ctx)
	require.NoError(t, err)
	assert.False(t, state.Active)
	assert.Len(t, state.DailyInstructions, 1, "stop keeps history")
	assert.Equal(t, "beans", state.FarmerCrop, "stop leaves last crop in place")

	// Restart with a new crop days later: old history stays.
	clock.Advance(72 * time.Hour)
	status, err := ctrl.Start(ctx, "cotton")
	require.NoError(t, err)
	assert.True(t, status.Active)
	assert.Equal(t, "cotton", status.FarmerCrop)
	assert.Equal(t, 150, status.CropDuration)
	assert.Len(t, status.DailyInstructions, 1)
}

func TestDayRolloverGeneratesAgain(t *testing.T) {
	ctrl, _, gen, clock := newTestController(t)
	ctx := context.Background()

	_, err := ctrl.Start(ctx, "wheat")
	require.NoError(t, err)
	_, err = ctrl.GenerateToday(ctx, "en", false)
	require.NoError(t, err)

	// Same day: guard holds.
	_, err = ctrl.GenerateToday(ctx, "en", false)
	require.NoError(t, err)
	assert.Equal(t, 1, gen.callCount())

	// After midnight the key changes and the guard opens.
	clock.Advance(24 * time.Hour)
	res, err := ctrl.GenerateToday(ctx, "en", false)
	require.NoError(t, err)
	assert.Equal(t, OutcomeGenerated, res.Outcome)
	assert.Equal(t, "2025-06-02", res.Day)
	assert.Equal(t, 1, res.DaysSincePlanting)
	assert.Equal(t, 2, gen.callCount())

	state, err := ctrl.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, state.DailyInstructions, 2)
}

func TestWheatLifecycleProgress(t *testing.T) {
	ctrl, _, _, clock := newTestController(t)
	ctx := context.Background()

	_, err := ctrl.Start(ctx, "wheat")
	require.NoError(t, err)

	status, err := ctrl.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, status.DaysSincePlanting)
	assert.Equal(t, 0.0, status.ProgressPercent)

	clock.Advance(60 * 24 * time.Hour)
	status, err = ctrl.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 60, status.DaysSincePlanting)
	assert.Equal(t, 50.0, status.ProgressPercent)

	clock.Advance(70 * 24 * time.Hour)
	status, err = ctrl.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 130, status.DaysSincePlanting)
	assert.Equal(t, 100.0, status.ProgressPercent, "clamped past the 120-day duration")
}

func TestWatchAutoGeneratesOnSensorChange(t *testing.T) {
	ctrl, st, gen, _ := newTestController(t)
	ctx := context.Background()

	_, err := ctrl.Start(ctx, "rice")
	require.NoError(t, err)

	stop, err := ctrl.Watch("en")
	require.NoError(t, err)
	defer stop()

	temp := 31.5
	require.NoError(t, st.Set(ctx, SensorsPath, models.SensorSnapshot{Temperature: &temp}))
	assert.Equal(t, 1, gen.callCount(), "sensor change triggers exactly one generation")

	// Today's record now exists: further ticks must not reach the
	// generator.
	require.NoError(t, st.Set(ctx, SensorsPath, models.SensorSnapshot{Temperature: &temp}))
	require.NoError(t, st.Set(ctx, SensorsPath, models.SensorSnapshot{Temperature: &temp}))
	assert.Equal(t, 1, gen.callCount())
}

func TestWatchStopsAfterUnsubscribe(t *testing.T) {
	ctrl, st, gen, _ := newTestController(t)
	ctx := context.Background()

	_, err := ctrl.Start(ctx, "rice")
	require.NoError(t, err)

	stop, err := ctrl.Watch("en")
	require.NoError(t, err)
	stop()

	temp := 28.0
	require.NoError(t, st.Set(ctx, SensorsPath, models.SensorSnapshot{Temperature: &temp}))
	assert.Zero(t, gen.callCount())
}

func TestGenerateReportsIncompleteState(t *testing.T) {
	ctrl, st, _, _ := newTestController(t)
	ctx := context.Background()

	// active without crop/startDate violates the state invariant.
	require.NoError(t, st.Set(ctx, GuidePath, map[string]any{"active": true}))

	_, err := ctrl.GenerateToday(ctx, "en", false)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
}
