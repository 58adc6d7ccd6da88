package main

import (
	"encoding/json"
	"sync"

	"agrisense/guide"
	"agrisense/models"
	"agrisense/store"

	"github.com/montanaflynn/stats"
)

const sensorLogCapacity = 288 // ~24h of 5-minute updates

// sensorLog keeps a bounded ring of recent sensor snapshots and
// derives per-metric statistics for the dashboard summary card.
type sensorLog struct {
	mu   sync.Mutex
	ring []models.SensorSnapshot
	pos  int
	full bool
}

func newSensorLog(capacity int) *sensorLog {
	return &sensorLog{ring: make([]models.SensorSnapshot, capacity)}
}

// follow subscribes the log to the live sensor path.
func (l *sensorLog) follow(st store.Store) (func(), error) {
	return st.Subscribe(guide.SensorsPath, func(raw json.RawMessage) {
		if raw == nil {
			return
		}
		var snap models.SensorSnapshot
		if err := json.Unmarshal(raw, &snap); err != nil {
			return
		}
		l.add(snap)
	})
}

func (l *sensorLog) add(snap models.SensorSnapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ring[l.pos] = snap
	l.pos = (l.pos + 1) % len(l.ring)
	if l.pos == 0 {
		l.full = true
	}
}

// summary aggregates the window. Metrics with no readings are omitted.
func (l *sensorLog) summary() models.SensorSummary {
	l.mu.Lock()
	n := l.pos
	if l.full {
		n = len(l.ring)
	}
	window := make([]models.SensorSnapshot, n)
	if l.full {
		copy(window, l.ring[l.pos:])
		copy(window[len(l.ring)-l.pos:], l.ring[:l.pos])
	} else {
		copy(window, l.ring[:n])
	}
	l.mu.Unlock()

	sum := models.SensorSummary{Samples: n}
	sum.Temperature = metricStats(window, func(s models.SensorSnapshot) *float64 { return s.Temperature })
	sum.Humidity = metricStats(window, func(s models.SensorSnapshot) *float64 { return s.Humidity })
	sum.SoilMoisture = metricStats(window, func(s models.SensorSnapshot) *float64 { return s.SoilMoisture })
	sum.PHLevel = metricStats(window, func(s models.SensorSnapshot) *float64 { return s.PHLevel })
	sum.LightIntensity = metricStats(window, func(s models.SensorSnapshot) *float64 { return s.LightIntensity })
	return sum
}

func metricStats(window []models.SensorSnapshot, pick func(models.SensorSnapshot) *float64) *models.MetricStats {
	var series []float64
	for _, s := range window {
		if v := pick(s); v != nil {
			series = append(series, *v)
		}
	}
	if len(series) == 0 {
		return nil
	}
	mean, err := stats.Mean(series)
	if err != nil {
		return nil
	}
	min, _ := stats.Min(series)
	max, _ := stats.Max(series)
	return &models.MetricStats{Mean: mean, Min: min, Max: max}
}
