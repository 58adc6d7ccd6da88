package main

import (
	"encoding/json"
	"net/http"
	"strings"

	"agrisense/guide"
)

// handleGuideStatus returns the guide document with derived progress.
func (a *App) handleGuideStatus(w http.ResponseWriter, r *http.Request) {
	status, err := a.ctrl.Status(r.Context())
	if err != nil {
		writeGuideErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// handleStartGuide begins a guidance program and generates the first
// day's instructions. A generation failure does not undo the start;
// the guide stays active and the error is reported alongside.
func (a *App) handleStartGuide(w http.ResponseWriter, r *http.Request) {
	var req startGuideReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}
	crop := strings.ToLower(strings.TrimSpace(req.Crop))

	status, err := a.ctrl.Start(r.Context(), crop)
	if err != nil {
		writeGuideErr(w, err)
		return
	}

	// First-day instructions. force=true: a record kept from a prior
	// cycle under today's key must not suppress the fresh crop's.
	lang := req.Language
	if lang == "" {
		lang = "en"
	}
	var warning string
	if _, err := a.ctrl.GenerateToday(r.Context(), lang, true); err != nil {
		warning = err.Error()
	}

	status, err = a.ctrl.Status(r.Context())
	if err != nil {
		writeGuideErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		guide.Status
		Warning string `json:"warning,omitempty"`
	}{status, warning})
}

// handleStopGuide deactivates the program, leaving history intact.
func (a *App) handleStopGuide(w http.ResponseWriter, r *http.Request) {
	if err := a.ctrl.Stop(r.Context()); err != nil {
		writeGuideErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgResp{Message: "guide stopped"})
}

// handleRefreshGuide regenerates today's instructions on user request,
// overwriting any existing record for the day.
func (a *App) handleRefreshGuide(w http.ResponseWriter, r *http.Request) {
	var req refreshGuideReq
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // empty body is fine
	}
	lang := req.Language
	if lang == "" {
		lang = "en"
	}

	res, err := a.ctrl.GenerateToday(r.Context(), lang, true)
	if err != nil {
		writeGuideErr(w, err)
		return
	}
	switch res.Outcome {
	case guide.OutcomeInactive:
		writeErr(w, http.StatusBadRequest, "no active guide")
	case guide.OutcomeInFlight:
		writeJSON(w, http.StatusOK, msgResp{Message: "generation already in progress"})
	default:
		writeJSON(w, http.StatusOK, res.Record)
	}
}

// handleDailyGuide is the stateless generator proxy: it forwards the
// request to the instruction generator without touching guide state.
func (a *App) handleDailyGuide(w http.ResponseWriter, r *http.Request) {
	var req dailyGuideReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}
	if strings.TrimSpace(req.Crop) == "" {
		writeErr(w, http.StatusBadRequest, "crop is required")
		return
	}
	if req.Language == "" {
		req.Language = "en"
	}

	rec, err := a.gemini.Generate(r.Context(), guide.GenerateRequest{
		Crop:              req.Crop,
		SensorData:        req.SensorData,
		DaysSincePlanting: req.DaysSincePlanting,
		CropDuration:      req.CropDuration,
		Language:          req.Language,
	})
	if err != nil {
		writeGuideErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dailyGuideResp{
		Instructions: rec.Instructions,
		GeneratedAt:  rec.GeneratedAt,
	})
}

// handleAutoDailyGuide is the scheduled trigger: same guarded check the
// reactive path runs, exposed for an external cron. 200 covers both
// generation and intentional skips.
func (a *App) handleAutoDailyGuide(w http.ResponseWriter, r *http.Request) {
	res, err := a.ctrl.GenerateToday(r.Context(), "en", false)
	if err != nil {
		writeGuideErr(w, err)
		return
	}
	switch res.Outcome {
	case guide.OutcomeInactive:
		writeJSON(w, http.StatusOK, msgResp{Message: "no active guide to generate instructions for"})
	case guide.OutcomeAlreadyGenerated:
		writeJSON(w, http.StatusOK, msgResp{Message: "instructions already generated for today"})
	case guide.OutcomeInFlight:
		writeJSON(w, http.StatusOK, msgResp{Message: "generation already in progress"})
	default:
		writeJSON(w, http.StatusOK, autoGuideResp{
			Success: true,
			Message: "daily instructions generated and stored",
			Crop:    res.Crop,
			Day:     res.DaysSincePlanting,
			Date:    res.Day,
		})
	}
}
