package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/antigravity/tournamentRounds/internal/config"
	"github.com/antigravity/tournamentRounds/internal/fixture"
	"github.com/antigravity/tournamentRounds/internal/simulator"
	"github.com/antigravity/tournamentRounds/internal/telemetry"
)

func main() {
	cfg, err := config.ParseSimulator(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[SIM] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := telemetry.Run(ctx, "tournament-simulator", cfg.Telemetry, func(ctx context.Context) error {
		return run(ctx, cfg)
	}); err != nil {
		log.Fatalf("simulation failed: %v", err)
	}
}

func run(ctx context.Context, cfg config.Simulator) error {
	f, err := fixture.Load(cfg.Fixture)
	if err != nil {
		return err
	}
	name := cfg.Tournament
	if name == "" {
		if len(f.Tournaments) == 0 {
			return fmt.Errorf("fixture %s defines no tournament", cfg.Fixture)
		}
		name = f.Tournaments[0].Name
	}
	teams, err := f.TournamentTeams(name)
	if err != nil {
		return err
	}
	var courses []string
	for _, tour := range f.Tournaments {
		if tour.Name == name {
			courses = tour.Courses
		}
	}

	client := simulator.NewClient(cfg.BaseURL, &http.Client{Timeout: cfg.Timeout})
	sim := simulator.New(client, simulator.Options{
		Tournament: name,
		Courses:    courses,
		MinDelay:   cfg.MinDelay,
		MaxDelay:   cfg.MaxDelay,
		DropRate:   cfg.DropRate,
		Seed:       cfg.Seed,
	})

	log.Printf("simulating %d teams in %q", len(teams), name)
	report, err := sim.Run(ctx, teams)
	for _, row := range report.Leaderboard {
		log.Printf("#%d team %d %s: %d (avg %.2f)", row.Rank, row.TeamNumber, row.TeamName, row.Total, row.Average)
	}
	if err != nil {
		return err
	}
	log.Printf("all %d teams completed", len(report.Teams))
	return nil
}
