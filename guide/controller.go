// Package guide owns the daily farming-guide state machine: when a
// guidance program starts and stops, how growth progress is derived,
// and when today's instructions get (re)generated: exactly once per
// calendar day unless a user explicitly asks for a refresh.
package guide

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"agrisense/models"
	"agrisense/store"
)

// Store paths the controller owns or observes.
const (
	GuidePath        = "guide"
	ActivePath       = "guide/active"
	InstructionsPath = "guide/dailyInstructions"
	SensorsPath      = "SMART_FARM/sensors"
)

const dayKeyLayout = "2006-01-02"

// GenerateRequest is the contract between the controller and the
// instruction generator.
type GenerateRequest struct {
	Crop              string                `json:"crop"`
	SensorData        models.SensorSnapshot `json:"sensorData"`
	DaysSincePlanting int                   `json:"daysSincePlanting"`
	CropDuration      int                   `json:"cropDuration"`
	Language          string                `json:"language"`
}

// Generator produces one day's instructions. Slow and fallible; the
// controller bounds every call with a timeout.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (models.InstructionRecord, error)
}

// Outcome classifies a GenerateToday invocation. Skips are not errors:
// they are the guard doing its job.
type Outcome string

const (
	OutcomeGenerated        Outcome = "generated"
	OutcomeInactive         Outcome = "inactive"
	OutcomeAlreadyGenerated Outcome = "already-generated"
	OutcomeInFlight         Outcome = "in-flight"
)

// Result reports what a GenerateToday invocation did.
type Result struct {
	Outcome           Outcome
	Day               string
	Crop              string
	DaysSincePlanting int
	Record            models.InstructionRecord
}

// Status is the controller state plus the derived progress values.
// Progress is recomputed on every read, never stored.
type Status struct {
	models.GuideState
	Today             string                    `json:"today"`
	DaysSincePlanting int                       `json:"daysSincePlanting"`
	ProgressPercent   float64                   `json:"progressPercent"`
	TodayInstructions *models.InstructionRecord `json:"todayInstructions,omitempty"`
}

// Controller is the single owner of the guide decision logic. Both the
// interactive handlers and the scheduled trigger go through the same
// GenerateToday entry point.
type Controller struct {
	store      store.Store
	gen        Generator
	now        func() time.Time
	genTimeout time.Duration

	mu       sync.Mutex
	inFlight map[string]bool // day key -> generation in flight
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithGenerateTimeout bounds each generation cycle (default 30s).
func WithGenerateTimeout(d time.Duration) Option {
	return func(c *Controller) { c.genTimeout = d }
}

// New builds a Controller on top of the shared state tree.
func New(st store.Store, gen Generator, opts ...Option) *Controller {
	c := &Controller{
		store:      st,
		gen:        gen,
		now:        time.Now,
		genTimeout: 30 * time.Second,
		inFlight:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DayKey returns today's calendar-date key in the controller's local
// timezone. It flips once per real day and drives regeneration the
// first time the controller observes state after midnight.
func (c *Controller) DayKey() string {
	return c.now().Format(dayKeyLayout)
}

// Load reads the guide document; an absent document is the zero state.
func (c *Controller) Load(ctx context.Context) (models.GuideState, error) {
	var state models.GuideState
	if _, err := store.Decode(ctx, c.store, GuidePath, &state); err != nil {
		return models.GuideState{}, fmt.Errorf("load guide state: %w", err)
	}
	return state, nil
}

// Status returns the current state with derived progress.
func (c *Controller) Status(ctx context.Context) (Status, error) {
	state, err := c.Load(ctx)
	if err != nil {
		return Status{}, err
	}
	return c.status(state), nil
}

func (c *Controller) status(state models.GuideState) Status {
	s := Status{
		GuideState: state,
		Today:      c.DayKey(),
	}
	if state.StartDate != "" {
		s.DaysSincePlanting = c.daysSince(state.StartDate)
		s.ProgressPercent = Progress(s.DaysSincePlanting, state.CropDuration)
	}
	if rec, ok := state.TodayRecord(s.Today); ok {
		s.TodayInstructions = &rec
	}
	return s
}

// Start begins a guidance program for crop. Prior instruction history
// is preserved across restarts; only startDate, crop and duration are
// overwritten. The caller is expected to trigger GenerateToday next.
func (c *Controller) Start(ctx context.Context, crop string) (Status, error) {
	if crop == "" {
		return Status{}, &ValidationError{Msg: "no crop selected"}
	}

	prev, err := c.Load(ctx)
	if err != nil {
		return Status{}, err
	}

	state := models.GuideState{
		Active:            true,
		StartDate:         c.DayKey(),
		FarmerCrop:        crop,
		CropDuration:      CropDuration(crop),
		DailyInstructions: prev.DailyInstructions,
	}
	if err := c.store.Set(ctx, GuidePath, state); err != nil {
		return Status{}, fmt.Errorf("start guide: %w", err)
	}
	return c.status(state), nil
}

// Stop deactivates the program. History, crop and start date stay in
// place so the dashboard can still show the last cycle.
func (c *Controller) Stop(ctx context.Context) error {
	if err := c.store.Set(ctx, ActivePath, false); err != nil {
		return fmt.Errorf("stop guide: %w", err)
	}
	return nil
}

// GenerateToday is the single generation entry point for the reactive
// path, the manual refresh and the scheduled trigger.
//
// With force=false it is the guarded automatic check: it skips when no
// program is active, when today's record already exists, or when a
// generation for today is in flight. With force=true (manual refresh)
// an existing record is overwritten, but the in-flight guard still
// applies. On failure nothing is written and state is unchanged.
func (c *Controller) GenerateToday(ctx context.Context, language string, force bool) (Result, error) {
	state, err := c.Load(ctx)
	if err != nil {
		return Result{}, err
	}

	day := c.DayKey()
	res := Result{Day: day, Crop: state.FarmerCrop}

	if !state.Active {
		res.Outcome = OutcomeInactive
		return res, nil
	}
	if state.FarmerCrop == "" || state.StartDate == "" || state.CropDuration <= 0 {
		return res, &ValidationError{Msg: "guide state incomplete"}
	}
	if _, ok := state.TodayRecord(day); ok && !force {
		res.Outcome = OutcomeAlreadyGenerated
		return res, nil
	}

	c.mu.Lock()
	if c.inFlight[day] {
		c.mu.Unlock()
		res.Outcome = OutcomeInFlight
		return res, nil
	}
	c.inFlight[day] = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.inFlight, day)
		c.mu.Unlock()
	}()

	res.DaysSincePlanting = c.daysSince(state.StartDate)

	// Missing sensors are valid; generation proceeds on a zero snapshot.
	var sensors models.SensorSnapshot
	if _, err := store.Decode(ctx, c.store, SensorsPath, &sensors); err != nil {
		log.Printf("guide: sensor snapshot unavailable: %v", err)
	}

	gctx, cancel := context.WithTimeout(ctx, c.genTimeout)
	defer cancel()

	rec, err := c.gen.Generate(gctx, GenerateRequest{
		Crop:              state.FarmerCrop,
		SensorData:        sensors,
		DaysSincePlanting: res.DaysSincePlanting,
		CropDuration:      state.CropDuration,
		Language:          language,
	})
	if err != nil {
		return res, err
	}

	if err := c.store.Set(ctx, InstructionsPath+"/"+day, rec); err != nil {
		return res, fmt.Errorf("store instructions for %s: %w", day, err)
	}

	res.Outcome = OutcomeGenerated
	res.Record = rec
	return res, nil
}

// Watch installs the one reactive rule replacing the dashboard's
// overlapping listeners: any change to the guide document or to the
// sensor snapshot re-evaluates the guarded GenerateToday. The returned
// function tears the subscriptions down.
func (c *Controller) Watch(language string) (func(), error) {
	check := func(json.RawMessage) {
		ctx, cancel := context.WithTimeout(context.Background(), c.genTimeout)
		defer cancel()
		res, err := c.GenerateToday(ctx, language, false)
		if err != nil {
			log.Printf("guide: auto-generate failed: %v", err)
			return
		}
		if res.Outcome == OutcomeGenerated {
			log.Printf("guide: generated instructions for %s (day %d of %s cycle)",
				res.Day, res.DaysSincePlanting, res.Crop)
		}
	}

	unsubGuide, err := c.store.Subscribe(GuidePath, check)
	if err != nil {
		return nil, fmt.Errorf("watch guide: %w", err)
	}
	unsubSensors, err := c.store.Subscribe(SensorsPath, check)
	if err != nil {
		unsubGuide()
		return nil, fmt.Errorf("watch sensors: %w", err)
	}
	return func() {
		unsubGuide()
		unsubSensors()
	}, nil
}

// daysSince returns whole days elapsed since the given calendar date,
// clamped to zero.
func (c *Controller) daysSince(startDate string) int {
	start, err := time.ParseInLocation(dayKeyLayout, startDate, time.Local)
	if err != nil {
		return 0
	}
	days := int(c.now().Sub(start).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// Progress returns the growth percentage, clamped to [0,100].
func Progress(daysSincePlanting, cropDuration int) float64 {
	if cropDuration <= 0 {
		return 0
	}
	p := float64(daysSincePlanting) / float64(cropDuration) * 100
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}
