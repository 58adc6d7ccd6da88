package models

// SensorSnapshot is a point-in-time reading of the farm sensors at store
// path "SMART_FARM/sensors". Every field is optional: missing sensor
// wiring simply leaves the pointer nil.
type SensorSnapshot struct {
	Temperature    *float64 `bson:"temperature,omitempty"    json:"temperature,omitempty"`    // °C
	Humidity       *float64 `bson:"humidity,omitempty"       json:"humidity,omitempty"`       // %
	SoilMoisture   *float64 `bson:"soilMoisture,omitempty"   json:"soilMoisture,omitempty"`   // %
	PHLevel        *float64 `bson:"phLevel,omitempty"        json:"phLevel,omitempty"`
	LightIntensity *float64 `bson:"lightIntensity,omitempty" json:"lightIntensity,omitempty"` // lux
	RainDetected   bool     `bson:"rainDetected,omitempty"   json:"rainDetected,omitempty"`
}

// SensorSummary aggregates a rolling window of snapshots per metric.
type SensorSummary struct {
	Samples        int          `json:"samples"`
	Temperature    *MetricStats `json:"temperature,omitempty"`
	Humidity       *MetricStats `json:"humidity,omitempty"`
	SoilMoisture   *MetricStats `json:"soilMoisture,omitempty"`
	PHLevel        *MetricStats `json:"phLevel,omitempty"`
	LightIntensity *MetricStats `json:"lightIntensity,omitempty"`
}

// MetricStats holds basic descriptive statistics for one sensor metric.
type MetricStats struct {
	Mean float64 `json:"mean"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}
