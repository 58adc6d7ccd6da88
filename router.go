package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	httpSwagger "github.com/swaggo/http-swagger"
)

// routes wires middlewares and endpoints. Adjust CORS for your frontend hosts.
func (a *App) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:3000", "https://*.run.app"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/api/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=60")
		w.Write(openapiYAML)
	})

	r.Mount("/swagger", httpSwagger.Handler(
		httpSwagger.URL("/api/openapi.yaml"),
	))

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/register", a.handleRegister)
		api.Post("/auth/login", a.handleLogin)

		// Stateless AI/weather proxies, callable before sign-in like
		// the original edge functions were.
		api.Post("/daily-guide", a.handleDailyGuide)
		api.Post("/chat", a.handleChat)
		api.Post("/crop-prediction", a.handleCropPrediction)
		api.Post("/crop-prices", a.handleCropPrices)
		api.Post("/insurance-advice", a.handleInsuranceAdvice)
		api.Post("/weather", a.handleWeather)

		// Scheduled trigger entry point (cron hits this).
		api.Post("/tasks/auto-daily-guide", a.handleAutoDailyGuide)

		api.Group(func(pr chi.Router) {
			pr.Use(a.authMiddleware)
			pr.Get("/me", a.handleMe)

			pr.Route("/guide", func(gr chi.Router) {
				gr.Get("/", a.handleGuideStatus)
				gr.Post("/start", a.handleStartGuide)
				gr.Post("/stop", a.handleStopGuide)
				gr.Post("/refresh", a.handleRefreshGuide)
			})

			pr.Route("/controls", func(cr chi.Router) {
				cr.Get("/", a.handleControls)
				cr.Post("/", a.handleUpdateControls)
			})

			pr.Route("/sensors", func(sr chi.Router) {
				sr.Get("/", a.handleSensors)
				sr.Get("/summary", a.handleSensorSummary)
			})
		})
	})

	return r
}
