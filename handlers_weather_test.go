package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func owmStub(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/weather"):
			assert.Equal(t, "metric", r.URL.Query().Get("units"))
			_, _ = w.Write([]byte(`{
				"name": "Pune",
				"sys": {"country": "IN"},
				"main": {"temp": 29.6, "feels_like": 31.2, "humidity": 70},
				"wind": {"speed": 4.2},
				"weather": [{"description": "scattered clouds", "icon": "03d"}]
			}`))
		case strings.HasPrefix(r.URL.Path, "/forecast"):
			_, _ = w.Write([]byte(`{"list": [
				{"dt_txt": "2025-06-01 09:00:00", "main": {"temp": 27, "temp_min": 24, "temp_max": 29, "humidity": 65}, "wind": {"speed": 2.0}, "weather": [{"description": "clear", "icon": "01d"}]},
				{"dt_txt": "2025-06-01 12:00:00", "main": {"temp": 30.4, "temp_min": 26.8, "temp_max": 31.2, "humidity": 60}, "wind": {"speed": 3.1}, "weather": [{"description": "clear sky", "icon": "01d"}]},
				{"dt_txt": "2025-06-02 12:00:00", "main": {"temp": 28, "temp_min": 25, "temp_max": 30, "humidity": 72}, "wind": {"speed": 6.5}, "weather": [{"description": "light rain", "icon": "10d"}]}
			]}`))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestWeatherHandler(t *testing.T) {
	backend := owmStub(t)
	defer backend.Close()

	app, _, _ := newTestApp(t)
	app.weather = newWeatherClient(backend.URL, "test-key")

	rec := postJSON(t, app.handleWeather, weatherReq{City: "Pune"})
	require.Equal(t, http.StatusOK, rec.Code)

	var report weatherReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))

	assert.Equal(t, 30, report.Current.Temp)
	assert.Equal(t, 31, report.Current.FeelsLike)
	assert.Equal(t, 15, report.Current.WindSpeed, "4.2 m/s rounds to 15 km/h")
	assert.Equal(t, "Pune", report.Current.City)
	assert.Equal(t, "IN", report.Current.Country)

	// Only the noon slots survive.
	require.Len(t, report.Forecast, 2)
	assert.Equal(t, "2025-06-01", report.Forecast[0].Date)
	assert.Equal(t, 30, report.Forecast[0].Temp)
	assert.Equal(t, 11, report.Forecast[0].WindSpeed, "3.1 m/s rounds to 11 km/h")
	assert.Equal(t, "light rain", report.Forecast[1].Description)
	assert.Equal(t, 23, report.Forecast[1].WindSpeed)
}

func TestWeatherHandlerRequiresLocation(t *testing.T) {
	app, _, _ := newTestApp(t)
	app.weather = newWeatherClient("http://127.0.0.1:0", "key")

	rec := postJSON(t, app.handleWeather, weatherReq{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWeatherHandlerMissingKey(t *testing.T) {
	app, _, _ := newTestApp(t)
	app.weather = newWeatherClient("http://127.0.0.1:0", "")

	rec := postJSON(t, app.handleWeather, weatherReq{City: "Pune"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWeatherHandlerUpstreamFailure(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"cod":"404","message":"city not found"}`, http.StatusNotFound)
	}))
	defer backend.Close()

	app, _, _ := newTestApp(t)
	app.weather = newWeatherClient(backend.URL, "key")

	rec := postJSON(t, app.handleWeather, weatherReq{City: "Nowhere"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
