package models

// FarmControls is the actuator document at store path
// "SMART_FARM/controls". The field hardware polls it; the dashboard and
// the API write it as a whole document. At most one of AutoMode and
// Pump is on at a time.
type FarmControls struct {
	AutoMode     bool    `bson:"autoMode"     json:"autoMode"`
	LaserSystem  bool    `bson:"laserSystem"  json:"laserSystem"`
	Pump         bool    `bson:"pump"         json:"pump"`
	SolarTracker bool    `bson:"solarTracker" json:"solarTracker"`
	StartTime    string  `bson:"startTime"    json:"startTime"`    // HH:MM
	StopDuration string  `bson:"stopDuration" json:"stopDuration"` // HH:MM
	SoilLimit    float64 `bson:"soilLimit"    json:"soilLimit"`    // irrigation threshold, %
}

// DefaultFarmControls matches the state a fresh installation runs with
// before anyone touches the dashboard.
func DefaultFarmControls() FarmControls {
	return FarmControls{
		AutoMode:     true,
		StartTime:    "20:17",
		StopDuration: "00:01",
		SoilLimit:    45,
	}
}
