package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/antigravity/tournamentRounds/internal/config"
	"github.com/antigravity/tournamentRounds/internal/db"
	"github.com/antigravity/tournamentRounds/internal/fixture"
)

func main() {
	cfg, err := config.ParseSeed(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[SEED] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("seed: %v", err)
	}
}

func run(ctx context.Context, cfg config.Seed) error {
	var f *fixture.Fixture
	if cfg.Teams > 0 {
		f = fixture.Generate(cfg.Tournament, cfg.Teams, cfg.PlayersPerTeam)
	} else {
		loaded, err := fixture.Load(cfg.Fixture)
		if err != nil {
			return err
		}
		f = loaded
	}

	sqlDB, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := fixture.Apply(ctx, sqlDB, f); err != nil {
		return err
	}
	log.Printf("applied %d courses, %d teams, %d tournaments to %s",
		len(f.Courses), len(f.Teams), len(f.Tournaments), cfg.DBPath)

	if cfg.Out == "" {
		return nil
	}
	data, err := f.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfg.Out, data, 0o644); err != nil {
		return err
	}
	log.Printf("wrote fixture to %s", cfg.Out)
	return nil
}
