package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI  string
	MongoDB   string
	JWTSecret string
	Port      string

	// Instruction generator (Gemini REST)
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	// OpenAI-compatible advisor gateway (chat, prices, insurance)
	AIGatewayURL   string
	AIGatewayKey   string
	AIGatewayModel string

	// Weather proxy
	OpenWeatherKey string
	OpenWeatherURL string

	// Background daily-guide check
	AutoGuideInterval time.Duration
}

func mustConfig() Config {
	// Optional .env for local development; real env vars win in deployment.
	_ = godotenv.Load()

	cfg := Config{
		MongoURI:  getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:   getenv("MONGO_DB", "agrisense"),
		JWTSecret: getenv("JWT_SECRET", "change_me"),
		Port:      getenv("PORT", "8080"),

		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   getenv("GEMINI_MODEL", "gemini-2.0-flash-exp"),
		GeminiBaseURL: getenv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),

		AIGatewayURL:   getenv("AI_GATEWAY_URL", "https://ai.gateway.lovable.dev/v1"),
		AIGatewayKey:   os.Getenv("AI_GATEWAY_KEY"),
		AIGatewayModel: getenv("AI_GATEWAY_MODEL", "google/gemini-2.5-flash-lite"),

		OpenWeatherKey: os.Getenv("OPENWEATHERMAP_API_KEY"),
		OpenWeatherURL: getenv("OPENWEATHERMAP_URL", "https://api.openweathermap.org/data/2.5"),

		AutoGuideInterval: getenvDuration("AUTO_GUIDE_INTERVAL", time.Hour),
	}

	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
