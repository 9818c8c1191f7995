package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carecall/internal/config"
	"carecall/internal/database"
	"carecall/internal/ivr"
	"carecall/internal/scheduler"
	"carecall/internal/server"
	"carecall/internal/session"
	"carecall/internal/store"
	"carecall/internal/twilio"
)

func main() {
	logger := log.New(os.Stdout, "[carecall] ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("database init failed: %v", err)
	}
	st := store.New(db)

	sessions := session.NewMemoryStore(time.Duration(cfg.SessionTTLMinutes) * time.Minute)
	dispatcher := twilio.New(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, cfg.PublicBaseURL, logger)
	responder := ivr.NewResponder(st, logger)

	sched := scheduler.New(cfg, st, dispatcher, logger)
	if err := sched.Start(); err != nil {
		logger.Fatalf("scheduler start: %v", err)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server.New(cfg, st, sessions, responder, logger).Handler(),
	}

	go func() {
		logger.Printf("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server error: %v", err)
		}
	}()

	waitForShutdown(srv, sched, logger)
}

func waitForShutdown(srv *http.Server, sched *scheduler.Scheduler, logger *log.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("server shutdown error: %v", err)
	}
	sched.Stop()
}
