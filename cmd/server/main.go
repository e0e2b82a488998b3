package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/antigravity/tournamentRounds/internal/config"
	"github.com/antigravity/tournamentRounds/internal/db"
	"github.com/antigravity/tournamentRounds/internal/handlers"
	"github.com/antigravity/tournamentRounds/internal/store"
	"github.com/antigravity/tournamentRounds/internal/telemetry"
	"github.com/antigravity/tournamentRounds/internal/tournament"
)

func main() {
	cfg, err := config.ParseServer(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[ROUNDS] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := telemetry.Run(ctx, "tournament-rounds", cfg.Telemetry, func(ctx context.Context) error {
		return serve(ctx, cfg)
	}); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}

func serve(ctx context.Context, cfg config.Server) error {
	sqlDB, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	st := store.New(sqlDB)
	defer st.Close()

	mux := http.NewServeMux()
	handlers.New(tournament.NewService(st)).Register(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           http.TimeoutHandler(mux, cfg.RequestTimeout, "request timed out"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		log.Printf("Server started on %s", cfg.Addr)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
