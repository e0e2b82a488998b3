// Package config parses environment variables and command-line flags for the
// server, seed and simulator commands. Flags override the environment.
package config

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Telemetry controls the OTLP trace exporter.
type Telemetry struct {
	Endpoint string `env:"ROUNDS_OTEL_ENDPOINT"`
	Enabled  bool   `env:"ROUNDS_OTEL_ENABLED" envDefault:"true"`
}

// Server holds server command configuration.
type Server struct {
	Addr            string        `env:"ROUNDS_ADDR" envDefault:":8080"`
	DBPath          string        `env:"ROUNDS_DB_PATH" envDefault:"tournament.db"`
	RequestTimeout  time.Duration `env:"ROUNDS_REQUEST_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"ROUNDS_SHUTDOWN_TIMEOUT" envDefault:"5s"`
	Telemetry       Telemetry
}

// Seed holds seed command configuration. Generate takes precedence over
// Fixture when Teams is positive.
type Seed struct {
	DBPath         string `env:"ROUNDS_DB_PATH" envDefault:"tournament.db"`
	Fixture        string `env:"ROUNDS_SEED_FIXTURE" envDefault:"fixtures/tournament.yaml"`
	Tournament     string `env:"ROUNDS_SEED_TOURNAMENT" envDefault:"Load Test"`
	Teams          int    `env:"ROUNDS_SEED_TEAMS"`
	PlayersPerTeam int    `env:"ROUNDS_SEED_PLAYERS_PER_TEAM" envDefault:"4"`
	Out            string `env:"ROUNDS_SEED_OUT"`
}

// Simulator holds load simulator configuration.
type Simulator struct {
	BaseURL    string        `env:"ROUNDS_SIM_BASE_URL" envDefault:"http://localhost:8080"`
	Fixture    string        `env:"ROUNDS_SIM_FIXTURE" envDefault:"fixtures/tournament.yaml"`
	Tournament string        `env:"ROUNDS_SIM_TOURNAMENT"`
	MinDelay   time.Duration `env:"ROUNDS_SIM_MIN_DELAY" envDefault:"100ms"`
	MaxDelay   time.Duration `env:"ROUNDS_SIM_MAX_DELAY" envDefault:"500ms"`
	DropRate   float64       `env:"ROUNDS_SIM_DROP_RATE" envDefault:"0.01"`
	Timeout    time.Duration `env:"ROUNDS_SIM_TIMEOUT" envDefault:"10s"`
	Seed       int64         `env:"ROUNDS_SIM_SEED"`
	Telemetry  Telemetry
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func parseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// ParseServer parses environment and flags into a Server config.
func ParseServer(fs *flag.FlagSet, args []string) (Server, error) {
	var cfg Server
	if err := ParseEnv(&cfg); err != nil {
		return Server{}, err
	}
	if fs == nil {
		return Server{}, errors.New("flag parser is required")
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	fs.DurationVar(&cfg.RequestTimeout, "request-timeout", cfg.RequestTimeout, "Per-request timeout")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "Graceful shutdown timeout")
	fs.StringVar(&cfg.Telemetry.Endpoint, "otel-endpoint", cfg.Telemetry.Endpoint, "OTLP/HTTP trace endpoint URL")
	if err := parseArgs(fs, args); err != nil {
		return Server{}, err
	}
	if cfg.RequestTimeout <= 0 {
		return Server{}, fmt.Errorf("request timeout must be positive, got %s", cfg.RequestTimeout)
	}
	return cfg, nil
}

// ParseSeed parses environment and flags into a Seed config.
func ParseSeed(fs *flag.FlagSet, args []string) (Seed, error) {
	var cfg Seed
	if err := ParseEnv(&cfg); err != nil {
		return Seed{}, err
	}
	if fs == nil {
		return Seed{}, errors.New("flag parser is required")
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.Fixture, "fixture", cfg.Fixture, "YAML fixture to apply")
	fs.StringVar(&cfg.Tournament, "tournament", cfg.Tournament, "Tournament name for a generated fixture")
	fs.IntVar(&cfg.Teams, "teams", cfg.Teams, "Generate this many teams instead of reading -fixture")
	fs.IntVar(&cfg.PlayersPerTeam, "players-per-team", cfg.PlayersPerTeam, "Players per generated team")
	fs.StringVar(&cfg.Out, "out", cfg.Out, "Also write the applied fixture to this YAML file")
	if err := parseArgs(fs, args); err != nil {
		return Seed{}, err
	}
	if cfg.Teams < 0 || cfg.PlayersPerTeam <= 0 {
		return Seed{}, fmt.Errorf("teams must be non-negative and players per team positive")
	}
	return cfg, nil
}

// ParseSimulator parses environment and flags into a Simulator config.
func ParseSimulator(fs *flag.FlagSet, args []string) (Simulator, error) {
	var cfg Simulator
	if err := ParseEnv(&cfg); err != nil {
		return Simulator{}, err
	}
	if fs == nil {
		return Simulator{}, errors.New("flag parser is required")
	}
	fs.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "Server base URL")
	fs.StringVar(&cfg.Fixture, "fixture", cfg.Fixture, "YAML fixture describing the teams")
	fs.StringVar(&cfg.Tournament, "tournament", cfg.Tournament, "Tournament to play (defaults to the first in the fixture)")
	fs.DurationVar(&cfg.MinDelay, "min-delay", cfg.MinDelay, "Minimum pause between holes")
	fs.DurationVar(&cfg.MaxDelay, "max-delay", cfg.MaxDelay, "Maximum pause between holes")
	fs.Float64Var(&cfg.DropRate, "drop-rate", cfg.DropRate, "Chance a player sits the round out")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "HTTP client timeout")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed (0 seeds from the clock)")
	if err := parseArgs(fs, args); err != nil {
		return Simulator{}, err
	}
	if cfg.MinDelay < 0 || cfg.MaxDelay < cfg.MinDelay {
		return Simulator{}, fmt.Errorf("invalid delay range %s-%s", cfg.MinDelay, cfg.MaxDelay)
	}
	if cfg.DropRate < 0 || cfg.DropRate > 1 {
		return Simulator{}, fmt.Errorf("drop rate %v outside 0-1", cfg.DropRate)
	}
	return cfg, nil
}
