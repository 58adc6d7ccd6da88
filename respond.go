package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"agrisense/guide"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errResp{Error: msg})
}

// writeGuideErr maps the guide error taxonomy onto HTTP statuses:
// validation 400, config/upstream 500. No failure mutates guide state,
// so the client can simply retry via an explicit refresh.
func writeGuideErr(w http.ResponseWriter, err error) {
	var verr *guide.ValidationError
	if errors.As(err, &verr) {
		writeErr(w, http.StatusBadRequest, verr.Error())
		return
	}
	writeErr(w, http.StatusInternalServerError, err.Error())
}
