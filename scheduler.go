package main

import (
	"context"
	"log"
	"time"

	"agrisense/guide"

	"github.com/google/uuid"
)

// autoGuideService periodically re-runs the guarded daily-guide check,
// catching the case where no dashboard is open when the day rolls
// over. It goes through the same Controller.GenerateToday entry point
// as the reactive path, with the default language.
type autoGuideService struct {
	id       string
	ctrl     *guide.Controller
	interval time.Duration
	stopChan chan struct{}
}

func newAutoGuideService(ctrl *guide.Controller, interval time.Duration) *autoGuideService {
	return &autoGuideService{
		id:       uuid.NewString(),
		ctrl:     ctrl,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the periodic check.
func (s *autoGuideService) Start() {
	go s.run()
	log.Printf("auto-guide service %s started (interval %s)", s.id, s.interval)
}

// Stop halts the periodic check.
func (s *autoGuideService) Stop() {
	close(s.stopChan)
	log.Printf("auto-guide service %s stopped", s.id)
}

func (s *autoGuideService) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Check immediately on start
	s.check()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.check()
		}
	}
}

func (s *autoGuideService) check() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res, err := s.ctrl.GenerateToday(ctx, "en", false)
	if err != nil {
		log.Printf("auto-guide %s: check failed: %v", s.id, err)
		return
	}
	switch res.Outcome {
	case guide.OutcomeGenerated:
		log.Printf("auto-guide %s: generated instructions for %s (%s, day %d)",
			s.id, res.Day, res.Crop, res.DaysSincePlanting)
	default:
		log.Printf("auto-guide %s: skipped (%s)", s.id, res.Outcome)
	}
}
