package main

import (
	"time"

	"agrisense/models"
)

// Request/response DTOs. Keep them minimal and explicit.

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResp struct {
	Token string `json:"token"`
}

type startGuideReq struct {
	Crop     string `json:"crop"`
	Language string `json:"language,omitempty"`
}

type refreshGuideReq struct {
	Language string `json:"language,omitempty"`
}

// Payload of POST /api/daily-guide, the stateless generator proxy.
type dailyGuideReq struct {
	Crop              string                `json:"crop"`
	SensorData        models.SensorSnapshot `json:"sensorData"`
	DaysSincePlanting int                   `json:"daysSincePlanting"`
	CropDuration      int                   `json:"cropDuration"`
	Language          string                `json:"language,omitempty"`
}

type dailyGuideResp struct {
	Instructions string    `json:"instructions"`
	GeneratedAt  time.Time `json:"generatedAt"`
}

type chatReq struct {
	Messages      []chatMessage          `json:"messages"`
	SensorData    *models.SensorSnapshot `json:"sensorData,omitempty"`
	PredictedCrop string                 `json:"predictedCrop,omitempty"`
	Language      string                 `json:"language,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResp struct {
	Response string `json:"response"`
}

type cropPredictionReq struct {
	SensorData models.SensorSnapshot `json:"sensorData"`
	Language   string                `json:"language,omitempty"`
}

// cropPrediction is parsed from the model output; when the output is
// not valid JSON a synthetic fallback record is returned instead.
type cropPrediction struct {
	CropName        string `json:"cropName"`
	Reason          string `json:"reason"`
	Recommendations string `json:"recommendations"`
}

type cropPricesReq struct {
	CropName string `json:"cropName"`
	Location string `json:"location"`
	Language string `json:"language,omitempty"`
}

type cropPricesResp struct {
	PriceInfo string `json:"priceInfo"`
}

type insuranceAdviceReq struct {
	CropType string `json:"cropType"`
	Location string `json:"location"`
	Season   string `json:"season"`
	Language string `json:"language,omitempty"`
}

type insuranceAdviceResp struct {
	Advice string `json:"advice"`
}

// Partial update of the actuator document; nil fields stay untouched.
type controlsUpdateReq struct {
	AutoMode     *bool    `json:"autoMode,omitempty"`
	LaserSystem  *bool    `json:"laserSystem,omitempty"`
	Pump         *bool    `json:"pump,omitempty"`
	SolarTracker *bool    `json:"solarTracker,omitempty"`
	StartTime    *string  `json:"startTime,omitempty"`
	StopDuration *string  `json:"stopDuration,omitempty"`
	SoilLimit    *float64 `json:"soilLimit,omitempty"`
}

type weatherReq struct {
	Lat  float64 `json:"lat,omitempty"`
	Lon  float64 `json:"lon,omitempty"`
	City string  `json:"city,omitempty"`
}

type errResp struct {
	Error string `json:"error"`
}

type msgResp struct {
	Message string `json:"message"`
}

// Response of the scheduled trigger when it generated a record.
type autoGuideResp struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Crop    string `json:"crop"`
	Day     int    `json:"day"`
	Date    string `json:"date"`
}
