package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"
)

func main() {
	cfg := mustConfig()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	app, err := newApp(ctx, cfg)
	if err != nil {
		log.Fatal("mongo connect error: ", err)
	}
	defer app.close(context.Background())

	// Reactive auto-generation: re-evaluate the daily-guide guard on
	// every guide or sensor change, plus the periodic safety net.
	stopWatch, err := app.ctrl.Watch("en")
	if err != nil {
		log.Printf("guide watch unavailable: %v", err)
	} else {
		defer stopWatch()
	}
	if unsub, err := app.sensors.follow(app.state); err != nil {
		log.Printf("sensor log unavailable: %v", err)
	} else {
		defer unsub()
	}
	app.sched.Start()
	defer app.sched.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Println("AgriSense API listening on :" + cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
