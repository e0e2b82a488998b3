// Package fixture loads a YAML description of the tournament identity graph
// (courses, holes, teams, players, tournaments) and writes it to the database
// together with the pre-paired round records. It stands in for the
// administration layer that owns these entities in production.
package fixture

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/antigravity/tournamentRounds/internal/rotation"
)

// DefaultHolePar is used for generated holes when a course omits them.
const DefaultHolePar = 3

// Fixture is the root of a fixture file.
type Fixture struct {
	Courses     []Course     `yaml:"courses"`
	Teams       []Team       `yaml:"teams"`
	Tournaments []Tournament `yaml:"tournaments"`
}

type Course struct {
	Name    string `yaml:"name"`
	Par     int    `yaml:"par,omitempty"`
	HolePar int    `yaml:"hole_par,omitempty"`
	Holes   []Hole `yaml:"holes,omitempty"`
}

type Hole struct {
	Number int    `yaml:"number"`
	Name   string `yaml:"name,omitempty"`
	Par    int    `yaml:"par,omitempty"`
}

type Team struct {
	Number  int      `yaml:"number"`
	Name    string   `yaml:"name"`
	Players []Player `yaml:"players"`
}

type Player struct {
	Number int    `yaml:"number"`
	Name   string `yaml:"name"`
	Email  string `yaml:"email,omitempty"`
}

// Tournament lists the courses it uses and the team numbers taking part.
// An empty team list means every team in the fixture. Only active
// tournaments accept scores; a missing active key means active.
type Tournament struct {
	Name    string   `yaml:"name"`
	Active  bool     `yaml:"active"`
	Courses []string `yaml:"courses"`
	Teams   []int    `yaml:"teams,omitempty"`
}

func (t *Tournament) UnmarshalYAML(value *yaml.Node) error {
	type plain Tournament
	p := plain{Active: true}
	if err := value.Decode(&p); err != nil {
		return err
	}
	*t = Tournament(p)
	return nil
}

// Load reads and validates a fixture file.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fixture: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates fixture YAML.
func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("fixture: parse yaml: %w", err)
	}
	if err := f.normalize(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Marshal encodes the fixture as YAML.
func (f *Fixture) Marshal() ([]byte, error) {
	return yaml.Marshal(f)
}

// Generate builds a fixture shaped like the load-test tournament: two
// courses of par-3 holes and teams of players numbered consecutively.
func Generate(tournament string, teams, playersPerTeam int) *Fixture {
	f := &Fixture{
		Courses: []Course{
			{Name: "Red Course", HolePar: DefaultHolePar},
			{Name: "Black Course", HolePar: DefaultHolePar},
		},
	}
	for t := 1; t <= teams; t++ {
		team := Team{Number: t, Name: fmt.Sprintf("Team %d", t)}
		for p := 1; p <= playersPerTeam; p++ {
			n := (t-1)*playersPerTeam + p
			team.Players = append(team.Players, Player{
				Number: n,
				Name:   fmt.Sprintf("Player %d", n),
				Email:  fmt.Sprintf("player%d@example.com", n),
			})
		}
		f.Teams = append(f.Teams, team)
	}
	f.Tournaments = []Tournament{{Name: tournament, Active: true, Courses: []string{"Red Course", "Black Course"}}}
	// Generated names and numbers are unique and every course has 18 holes,
	// so normalize only fills in defaults here.
	_ = f.normalize()
	return f
}

// Team returns the team with the given number.
func (f *Fixture) Team(number int) (Team, bool) {
	for _, t := range f.Teams {
		if t.Number == number {
			return t, true
		}
	}
	return Team{}, false
}

// TournamentTeams returns the teams taking part in the named tournament.
func (f *Fixture) TournamentTeams(name string) ([]Team, error) {
	for _, tour := range f.Tournaments {
		if tour.Name != name {
			continue
		}
		teams := make([]Team, 0, len(tour.Teams))
		for _, n := range tour.Teams {
			team, _ := f.Team(n)
			teams = append(teams, team)
		}
		return teams, nil
	}
	return nil, fmt.Errorf("fixture: tournament %q not defined", name)
}

func (f *Fixture) normalize() error {
	courses := make(map[string]bool, len(f.Courses))
	for i := range f.Courses {
		c := &f.Courses[i]
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			return fmt.Errorf("fixture: course %d has no name", i+1)
		}
		if courses[c.Name] {
			return fmt.Errorf("fixture: duplicate course %q", c.Name)
		}
		courses[c.Name] = true
		if len(c.Holes) == 0 {
			par := c.HolePar
			if par <= 0 {
				par = DefaultHolePar
			}
			for n := 1; n <= rotation.Holes; n++ {
				c.Holes = append(c.Holes, Hole{Number: n, Par: par})
			}
		}
		if len(c.Holes) != rotation.Holes {
			return fmt.Errorf("fixture: course %q has %d holes, want %d", c.Name, len(c.Holes), rotation.Holes)
		}
		seen := make(map[int]bool, rotation.Holes)
		total := 0
		for j := range c.Holes {
			h := &c.Holes[j]
			if !rotation.Valid(h.Number) || seen[h.Number] {
				return fmt.Errorf("fixture: course %q has invalid or duplicate hole %d", c.Name, h.Number)
			}
			seen[h.Number] = true
			if h.Name == "" {
				h.Name = fmt.Sprintf("Hole %d", h.Number)
			}
			total += h.Par
		}
		if c.Par == 0 {
			c.Par = total
		}
	}

	teams := make(map[int]bool, len(f.Teams))
	players := make(map[int]bool)
	for _, t := range f.Teams {
		if teams[t.Number] {
			return fmt.Errorf("fixture: duplicate team %d", t.Number)
		}
		teams[t.Number] = true
		for _, p := range t.Players {
			if players[p.Number] {
				return fmt.Errorf("fixture: player %d belongs to more than one team", p.Number)
			}
			players[p.Number] = true
		}
	}

	for i := range f.Tournaments {
		tour := &f.Tournaments[i]
		if strings.TrimSpace(tour.Name) == "" {
			return fmt.Errorf("fixture: tournament %d has no name", i+1)
		}
		for _, c := range tour.Courses {
			if !courses[c] {
				return fmt.Errorf("fixture: tournament %q uses unknown course %q", tour.Name, c)
			}
		}
		if len(tour.Teams) == 0 {
			for _, t := range f.Teams {
				tour.Teams = append(tour.Teams, t.Number)
			}
		}
		for _, n := range tour.Teams {
			if !teams[n] {
				return fmt.Errorf("fixture: tournament %q lists unknown team %d", tour.Name, n)
			}
		}
	}
	return nil
}

// Apply writes the fixture in one transaction. Existing entities are matched
// by their keys and updated, so applying the same fixture twice is harmless.
// Existing rounds keep their state.
func Apply(ctx context.Context, sqlDB *sql.DB, f *Fixture) error {
	tx, err := sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("fixture: begin: %w", err)
	}
	if err := apply(ctx, tx, f); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("fixture: commit: %w", err)
	}
	return nil
}

func apply(ctx context.Context, tx *sql.Tx, f *Fixture) error {
	courseIDs := make(map[string]int64)
	for _, c := range f.Courses {
		var id int64
		err := tx.QueryRowContext(ctx, `INSERT INTO courses (name, par) VALUES (?, ?)
			ON CONFLICT (name) DO UPDATE SET par = excluded.par RETURNING id`, c.Name, c.Par).Scan(&id)
		if err != nil {
			return fmt.Errorf("fixture: course %q: %w", c.Name, err)
		}
		courseIDs[c.Name] = id
		for _, h := range c.Holes {
			_, err := tx.ExecContext(ctx, `INSERT INTO holes (course_id, number, name, par) VALUES (?, ?, ?, ?)
				ON CONFLICT (course_id, number) DO UPDATE SET name = excluded.name, par = excluded.par`,
				id, h.Number, h.Name, h.Par)
			if err != nil {
				return fmt.Errorf("fixture: course %q hole %d: %w", c.Name, h.Number, err)
			}
		}
	}

	teamIDs := make(map[int]int64)
	playerIDs := make(map[int][]int64)
	for _, t := range f.Teams {
		var id int64
		err := tx.QueryRowContext(ctx, `INSERT INTO teams (number, name) VALUES (?, ?)
			ON CONFLICT (number) DO UPDATE SET name = excluded.name RETURNING id`, t.Number, t.Name).Scan(&id)
		if err != nil {
			return fmt.Errorf("fixture: team %d: %w", t.Number, err)
		}
		teamIDs[t.Number] = id
		for _, p := range t.Players {
			var pid int64
			err := tx.QueryRowContext(ctx, `INSERT INTO players (number, name, email, team_id) VALUES (?, ?, ?, ?)
				ON CONFLICT (number) DO UPDATE SET name = excluded.name, email = excluded.email, team_id = excluded.team_id
				RETURNING id`, p.Number, p.Name, p.Email, id).Scan(&pid)
			if err != nil {
				return fmt.Errorf("fixture: player %d: %w", p.Number, err)
			}
			playerIDs[t.Number] = append(playerIDs[t.Number], pid)
		}
	}

	for _, tour := range f.Tournaments {
		var tid int64
		err := tx.QueryRowContext(ctx, `INSERT INTO tournaments (name, active) VALUES (?, ?)
			ON CONFLICT (name) DO UPDATE SET active = excluded.active RETURNING id`, tour.Name, tour.Active).Scan(&tid)
		if err != nil {
			return fmt.Errorf("fixture: tournament %q: %w", tour.Name, err)
		}
		for _, c := range tour.Courses {
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO tournament_courses (tournament_id, course_id) VALUES (?, ?)`,
				tid, courseIDs[c]); err != nil {
				return fmt.Errorf("fixture: tournament %q course %q: %w", tour.Name, c, err)
			}
		}
		for _, n := range tour.Teams {
			teamID := teamIDs[n]
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO tournament_teams (tournament_id, team_id) VALUES (?, ?)`,
				tid, teamID); err != nil {
				return fmt.Errorf("fixture: tournament %q team %d: %w", tour.Name, n, err)
			}
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO team_rounds (team_id, tournament_id) VALUES (?, ?)`,
				teamID, tid); err != nil {
				return fmt.Errorf("fixture: team round %d: %w", n, err)
			}
			var teamRoundID int64
			if err := tx.QueryRowContext(ctx, `SELECT id FROM team_rounds WHERE team_id = ? AND tournament_id = ?`,
				teamID, tid).Scan(&teamRoundID); err != nil {
				return fmt.Errorf("fixture: team round %d: %w", n, err)
			}
			for _, pid := range playerIDs[n] {
				if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO player_rounds (player_id, team_round_id) VALUES (?, ?)`,
					pid, teamRoundID); err != nil {
					return fmt.Errorf("fixture: player round for team %d: %w", n, err)
				}
			}
		}
	}
	return nil
}
