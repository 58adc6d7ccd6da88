package main

import (
	"net/http"

	"agrisense/guide"
	"agrisense/models"
	"agrisense/store"
)

// handleSensors returns the live sensor snapshot from the state tree.
func (a *App) handleSensors(w http.ResponseWriter, r *http.Request) {
	var snap models.SensorSnapshot
	found, err := store.Decode(r.Context(), a.state, guide.SensorsPath, &snap)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "store error")
		return
	}
	if !found {
		writeErr(w, http.StatusNotFound, "no sensor data")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleSensorSummary returns rolling statistics over recent snapshots.
func (a *App) handleSensorSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.sensors.summary())
}
