package main

import (
	"encoding/json"
	"net/http"
	"time"

	"agrisense/models"
	"agrisense/store"
)

// ControlsPath is the actuator document in the state tree.
const ControlsPath = "SMART_FARM/controls"

func (a *App) loadControls(r *http.Request) (models.FarmControls, error) {
	controls := models.DefaultFarmControls()
	if _, err := store.Decode(r.Context(), a.state, ControlsPath, &controls); err != nil {
		return models.FarmControls{}, err
	}
	return controls, nil
}

// handleControls returns the current actuator state, defaults when the
// document has never been written.
func (a *App) handleControls(w http.ResponseWriter, r *http.Request) {
	controls, err := a.loadControls(r)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "store error")
		return
	}
	writeJSON(w, http.StatusOK, controls)
}

// handleUpdateControls applies a partial update to the actuator state
// and writes the whole document back. Switching autoMode on turns the
// pump off and vice versa; they are never on together.
func (a *App) handleUpdateControls(w http.ResponseWriter, r *http.Request) {
	var req controlsUpdateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.AutoMode != nil && *req.AutoMode && req.Pump != nil && *req.Pump {
		writeErr(w, http.StatusBadRequest, "autoMode and pump cannot both be on")
		return
	}
	if req.SoilLimit != nil && (*req.SoilLimit < 0 || *req.SoilLimit > 100) {
		writeErr(w, http.StatusBadRequest, "soilLimit must be between 0 and 100")
		return
	}
	if req.StartTime != nil && !validClock(*req.StartTime) {
		writeErr(w, http.StatusBadRequest, "startTime must be HH:MM")
		return
	}
	if req.StopDuration != nil && !validClock(*req.StopDuration) {
		writeErr(w, http.StatusBadRequest, "stopDuration must be HH:MM")
		return
	}

	controls, err := a.loadControls(r)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "store error")
		return
	}

	if req.AutoMode != nil {
		controls.AutoMode = *req.AutoMode
	}
	if req.LaserSystem != nil {
		controls.LaserSystem = *req.LaserSystem
	}
	if req.Pump != nil {
		controls.Pump = *req.Pump
	}
	if req.SolarTracker != nil {
		controls.SolarTracker = *req.SolarTracker
	}
	if req.StartTime != nil {
		controls.StartTime = *req.StartTime
	}
	if req.StopDuration != nil {
		controls.StopDuration = *req.StopDuration
	}
	if req.SoilLimit != nil {
		controls.SoilLimit = *req.SoilLimit
	}

	// Mutual exclusion: the switch flipped in this request wins.
	if req.AutoMode != nil && *req.AutoMode {
		controls.Pump = false
	}
	if req.Pump != nil && *req.Pump {
		controls.AutoMode = false
	}

	if err := a.state.Set(r.Context(), ControlsPath, controls); err != nil {
		writeErr(w, http.StatusInternalServerError, "store error")
		return
	}
	writeJSON(w, http.StatusOK, controls)
}

func validClock(v string) bool {
	_, err := time.Parse("15:04", v)
	return err == nil
}
