package main

import (
	"encoding/json"
	"net/http"
)

// handleWeather proxies the weather provider for the dashboard cards.
func (a *App) handleWeather(w http.ResponseWriter, r *http.Request) {
	var req weatherReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.City == "" && (req.Lat == 0 && req.Lon == 0) {
		writeErr(w, http.StatusBadRequest, "either city name or coordinates required")
		return
	}

	report, err := a.weather.Fetch(r.Context(), req.City, req.Lat, req.Lon)
	if err != nil {
		writeGuideErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
