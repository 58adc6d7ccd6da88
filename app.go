package main

import (
	"context"

	"agrisense/guide"
	"agrisense/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type App struct {
	cfg   Config
	mongo *mongo.Client
	users *mongo.Collection

	state   store.Store
	ctrl    *guide.Controller
	gemini  *geminiClient
	advisor *advisorClient
	weather *weatherClient
	sensors *sensorLog
	sched   *autoGuideService
}

func newApp(ctx context.Context, cfg Config) (*App, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.MongoDB)

	app := &App{
		cfg:   cfg,
		mongo: client,
		users: db.Collection("users"),
		state: store.NewMongo(db, "state"),
	}
	app.gemini = newGeminiClient(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel)
	app.advisor = newAdvisorClient(cfg.AIGatewayURL, cfg.AIGatewayKey, cfg.AIGatewayModel)
	app.weather = newWeatherClient(cfg.OpenWeatherURL, cfg.OpenWeatherKey)
	app.ctrl = guide.New(app.state, app.gemini)
	app.sensors = newSensorLog(sensorLogCapacity)
	app.sched = newAutoGuideService(app.ctrl, cfg.AutoGuideInterval)

	// Indexes
	if _, err := app.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return nil, err
	}

	return app, nil
}

func (a *App) close(ctx context.Context) { _ = a.mongo.Disconnect(ctx) }
