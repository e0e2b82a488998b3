// Package simulator drives a full shotgun-start round against a running
// server: one worker per team activates its rounds, plays all 18 holes with
// random scores and ends the rounds.
package simulator

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/antigravity/tournamentRounds/internal/fixture"
	"github.com/antigravity/tournamentRounds/internal/models"
	"github.com/antigravity/tournamentRounds/internal/rotation"
	"github.com/antigravity/tournamentRounds/internal/tournament"
)

const (
	evenCourse = "Red Course"
	oddCourse  = "Black Course"

	minScore = 1
	maxScore = 6
)

// Options tunes a simulation run.
type Options struct {
	Tournament string
	// Courses the tournament is played on. Teams prefer the Red Course when
	// even and the Black Course when odd.
	Courses  []string
	MinDelay time.Duration
	MaxDelay time.Duration
	// DropRate is the chance that a player sits the round out. Every team
	// keeps at least one player.
	DropRate float64
	// Seed makes runs reproducible. Zero seeds from the clock.
	Seed int64
}

// TeamResult summarises one team's simulated round.
type TeamResult struct {
	Team    int
	Course  string
	Start   int
	Players int
	Summary models.RoundSummary
}

// Report is the outcome of a simulation.
type Report struct {
	Teams       []TeamResult
	Leaderboard []models.TeamLeaderboardEntry
}

type Simulator struct {
	client *Client
	opts   Options
}

func New(client *Client, opts Options) *Simulator {
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	return &Simulator{client: client, opts: opts}
}

// StartingHole spreads teams over the course, two per hole.
func StartingHole(team int) int {
	return (team/2)%rotation.Holes + 1
}

// CourseFor picks the course a team plays from those available.
func CourseFor(team int, courses []string) string {
	want := oddCourse
	if team%2 == 0 {
		want = evenCourse
	}
	for _, c := range courses {
		if c == want {
			return c
		}
	}
	if len(courses) == 0 {
		return want
	}
	return courses[team%len(courses)]
}

// Score draws a hole score from a normal distribution around 3, clamped to
// 1-6.
func Score(rng *rand.Rand) int {
	s := int(math.Round(rng.NormFloat64() + 3))
	return max(minScore, min(maxScore, s))
}

// Run resets the tournament, plays every team concurrently and refreshes
// the leaderboard. A failing team does not stop the others; the first
// failure is returned after all teams finish.
func (s *Simulator) Run(ctx context.Context, teams []fixture.Team) (Report, error) {
	name := s.opts.Tournament
	affected, err := s.client.StartTournament(ctx, name)
	if err != nil {
		return Report{}, fmt.Errorf("start tournament: %w", err)
	}
	log.Printf("tournament %q started: %d team rounds, %d player rounds", name, affected.TeamRounds, affected.PlayerRounds)

	var (
		mu      sync.Mutex
		results []TeamResult
		g       errgroup.Group
	)
	for _, team := range teams {
		rng := rand.New(rand.NewSource(s.opts.Seed + int64(team.Number)))
		g.Go(func() error {
			res, err := s.playTeam(ctx, rng, team)
			if err != nil {
				log.Printf("team %d: %v", team.Number, err)
				return fmt.Errorf("team %d: %w", team.Number, err)
			}
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	runErr := g.Wait()

	report := Report{Teams: results}
	if _, err := s.client.UpdateLeaderboard(ctx, name); err != nil {
		return report, fmt.Errorf("update leaderboard: %w", err)
	}
	board, err := s.client.TeamLeaderboard(ctx, name)
	if err != nil {
		return report, fmt.Errorf("team leaderboard: %w", err)
	}
	report.Leaderboard = board
	return report, runErr
}

func (s *Simulator) playTeam(ctx context.Context, rng *rand.Rand, team fixture.Team) (TeamResult, error) {
	name := s.opts.Tournament
	course := CourseFor(team.Number, s.opts.Courses)
	start := StartingHole(team.Number)
	players := s.lineup(rng, team.Players)
	if len(players) == 0 {
		return TeamResult{}, fmt.Errorf("team has no players")
	}
	if dropped := len(team.Players) - len(players); dropped > 0 {
		log.Printf("team %d: %d player(s) not playing", team.Number, dropped)
	}

	if err := s.client.ActivateTeamRound(ctx, tournament.ActivateTeamRequest{
		Tournament: name, Team: team.Number, Course: course, Hole: start,
	}); err != nil {
		return TeamResult{}, err
	}
	for _, p := range players {
		if err := s.client.ActivatePlayerRound(ctx, tournament.ActivatePlayerRequest{
			Tournament: name, Team: team.Number, Player: p.Number, Course: course, Hole: start,
		}); err != nil {
			return TeamResult{}, err
		}
	}
	log.Printf("team %d starting round on %s at hole %d", team.Number, course, start)

	seq, err := rotation.Sequence(start)
	if err != nil {
		return TeamResult{}, err
	}
	for _, hole := range seq {
		scores := make([]models.PlayerScore, len(players))
		for i, p := range players {
			scores[i] = models.PlayerScore{PlayerNumber: p.Number, Score: Score(rng)}
		}
		if err := s.pause(ctx, rng); err != nil {
			return TeamResult{}, err
		}
		if _, err := s.client.RecordTeamScores(ctx, tournament.TeamScoresRequest{
			Tournament: name, Course: course, Hole: hole, Team: team.Number, Scores: scores,
		}); err != nil {
			return TeamResult{}, err
		}
	}

	for _, p := range players {
		if _, err := s.client.EndPlayerRound(ctx, name, p.Number); err != nil {
			return TeamResult{}, err
		}
	}
	summary, err := s.client.EndTeamRound(ctx, name, team.Number)
	if err != nil {
		return TeamResult{}, err
	}
	log.Printf("team %d round completed: total %d", team.Number, summary.Total)
	return TeamResult{Team: team.Number, Course: course, Start: start, Players: len(players), Summary: summary}, nil
}

func (s *Simulator) lineup(rng *rand.Rand, roster []fixture.Player) []fixture.Player {
	var players []fixture.Player
	for _, p := range roster {
		if rng.Float64() >= s.opts.DropRate {
			players = append(players, p)
		}
	}
	if len(players) == 0 && len(roster) > 0 {
		players = roster[:1]
	}
	return players
}

func (s *Simulator) pause(ctx context.Context, rng *rand.Rand) error {
	d := s.opts.MinDelay
	if spread := s.opts.MaxDelay - s.opts.MinDelay; spread > 0 {
		d += time.Duration(rng.Int63n(int64(spread)))
	}
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
