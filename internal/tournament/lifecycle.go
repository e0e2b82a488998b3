package tournament

import (
	"context"
	"fmt"
	"log"

	"go.opentelemetry.io/otel/attribute"

	apperrors "github.com/antigravity/tournamentRounds/internal/errors"
	"github.com/antigravity/tournamentRounds/internal/models"
	"github.com/antigravity/tournamentRounds/internal/rotation"
	"github.com/antigravity/tournamentRounds/internal/store"
)

// ActivateTeamRequest addresses a team round and the hole it starts on.
type ActivateTeamRequest struct {
	Tournament string `json:"tournament_name"`
	Team       int    `json:"team_number"`
	Course     string `json:"course_name"`
	Hole       int    `json:"hole_number"`
}

// ActivatePlayerRequest addresses a player round and the hole it starts on.
type ActivatePlayerRequest struct {
	Tournament string `json:"tournament_name"`
	Team       int    `json:"team_number"`
	Player     int    `json:"player_number"`
	Course     string `json:"course_name"`
	Hole       int    `json:"hole_number"`
}

// RecordScoreRequest is one player's score on one hole.
type RecordScoreRequest struct {
	Tournament string `json:"tournament_name"`
	Player     int    `json:"player_number"`
	Course     string `json:"course_name"`
	Hole       int    `json:"hole_number"`
	Score      int    `json:"score"`
}

// TeamScoresRequest carries the scores of several team members on one hole.
type TeamScoresRequest struct {
	Tournament string               `json:"tournament_name"`
	Course     string               `json:"course_name"`
	Hole       int                  `json:"hole_number"`
	Team       int                  `json:"team_number"`
	Scores     []models.PlayerScore `json:"scores"`
}

// TeamScoresResult holds the rounds after a team submission.
type TeamScoresResult struct {
	Team    models.TeamRound     `json:"team_round"`
	Players []models.PlayerRound `json:"player_rounds"`
}

// StartTournament resets every round of the tournament to ready. Scores and
// hole pointers are deleted and aggregates zeroed in a single transaction.
// Calling it again is harmless.
func (s *Service) StartTournament(ctx context.Context, name string) (affected models.Affected, err error) {
	ctx, span := s.start(ctx, "tournament.StartTournament", tournamentAttr(name))
	defer func() { finish(span, err) }()

	if err := requireName("tournament", name); err != nil {
		return models.Affected{}, err
	}
	err = s.store.Update(ctx, func(tx *store.Tx) error {
		tour, err := tx.Tournament(name)
		if err != nil {
			return err
		}
		affected, err = tx.ResetTournament(tour.ID)
		return err
	})
	if err != nil {
		return models.Affected{}, fmt.Errorf("start tournament: %w", err)
	}
	log.Printf("tournament %q reset: %d team rounds, %d player rounds", name, affected.TeamRounds, affected.PlayerRounds)
	return affected, nil
}

// ActivateTeamRound puts a team round in play on course, starting at hole.
func (s *Service) ActivateTeamRound(ctx context.Context, req ActivateTeamRequest) (round models.TeamRound, err error) {
	ctx, span := s.start(ctx, "tournament.ActivateTeamRound",
		tournamentAttr(req.Tournament),
		attribute.Int("team.number", req.Team),
		attribute.String("course.name", req.Course),
		attribute.Int("hole.number", req.Hole))
	defer func() { finish(span, err) }()

	if err := validatePath(req.Tournament, req.Course, req.Hole); err != nil {
		return models.TeamRound{}, err
	}
	err = s.store.Update(ctx, func(tx *store.Tx) error {
		tour, course, hole, err := resolveHole(tx, req.Tournament, req.Course, req.Hole)
		if err != nil {
			return err
		}
		round, err = tx.TeamRound(tour.ID, req.Team)
		if err != nil {
			return err
		}
		if err := activatable(round.Status); err != nil {
			return err
		}
		activate(&round.Round, course, hole)
		return tx.SaveTeamRound(round)
	})
	if err != nil {
		return models.TeamRound{}, fmt.Errorf("activate team round: %w", err)
	}
	return round, nil
}

// ActivatePlayerRound puts a player round in play on course, starting at
// hole. Score records from an earlier activation are deleted. It does not
// require the team round to be active.
func (s *Service) ActivatePlayerRound(ctx context.Context, req ActivatePlayerRequest) (round models.PlayerRound, err error) {
	ctx, span := s.start(ctx, "tournament.ActivatePlayerRound",
		tournamentAttr(req.Tournament),
		attribute.Int("team.number", req.Team),
		attribute.Int("player.number", req.Player),
		attribute.String("course.name", req.Course),
		attribute.Int("hole.number", req.Hole))
	defer func() { finish(span, err) }()

	if err := validatePath(req.Tournament, req.Course, req.Hole); err != nil {
		return models.PlayerRound{}, err
	}
	err = s.store.Update(ctx, func(tx *store.Tx) error {
		tour, course, hole, err := resolveHole(tx, req.Tournament, req.Course, req.Hole)
		if err != nil {
			return err
		}
		team, err := tx.TeamRound(tour.ID, req.Team)
		if err != nil {
			return err
		}
		round, err = tx.TeamPlayerRound(team.ID, req.Player)
		if err != nil {
			return err
		}
		if err := activatable(round.Status); err != nil {
			return err
		}
		if _, err := tx.DeleteScores(round.ID); err != nil {
			return err
		}
		activate(&round.Round, course, hole)
		return tx.SavePlayerRound(round)
	})
	if err != nil {
		return models.PlayerRound{}, fmt.Errorf("activate player round: %w", err)
	}
	return round, nil
}

// RecordScore upserts a player's score on a hole. The tournament must be
// active. Scoring the round's current hole advances it; scoring the last hole
// of the rotation completes the round. Any other hole is treated as a
// correction and leaves the pointer alone.
func (s *Service) RecordScore(ctx context.Context, req RecordScoreRequest) (round models.PlayerRound, err error) {
	ctx, span := s.start(ctx, "tournament.RecordScore",
		tournamentAttr(req.Tournament),
		attribute.Int("player.number", req.Player),
		attribute.String("course.name", req.Course),
		attribute.Int("hole.number", req.Hole),
		attribute.Int("score", req.Score))
	defer func() { finish(span, err) }()

	if err := validatePath(req.Tournament, req.Course, req.Hole); err != nil {
		return models.PlayerRound{}, err
	}
	if err := validateScore(req.Score); err != nil {
		return models.PlayerRound{}, err
	}
	err = s.store.Update(ctx, func(tx *store.Tx) error {
		tour, course, hole, err := resolveHole(tx, req.Tournament, req.Course, req.Hole)
		if err != nil {
			return err
		}
		if err := scoring(tour); err != nil {
			return err
		}
		round, err = tx.PlayerRound(tour.ID, req.Player)
		if err != nil {
			return err
		}
		round, err = recordScore(tx, round, course, hole, req.Score)
		return err
	})
	if err != nil {
		return models.PlayerRound{}, fmt.Errorf("record score: %w", err)
	}
	return round, nil
}

// RecordTeamScores records the listed members' scores on a hole and then
// advances the team round's own pointer. Player and team pointers move
// independently.
func (s *Service) RecordTeamScores(ctx context.Context, req TeamScoresRequest) (result TeamScoresResult, err error) {
	ctx, span := s.start(ctx, "tournament.RecordTeamScores",
		tournamentAttr(req.Tournament),
		attribute.Int("team.number", req.Team),
		attribute.String("course.name", req.Course),
		attribute.Int("hole.number", req.Hole),
		attribute.Int("scores", len(req.Scores)))
	defer func() { finish(span, err) }()

	if err := validatePath(req.Tournament, req.Course, req.Hole); err != nil {
		return TeamScoresResult{}, err
	}
	for _, ps := range req.Scores {
		if err := validateScore(ps.Score); err != nil {
			return TeamScoresResult{}, fmt.Errorf("player %d: %w", ps.PlayerNumber, err)
		}
	}

	err = s.store.Update(ctx, func(tx *store.Tx) error {
		tour, course, hole, err := resolveHole(tx, req.Tournament, req.Course, req.Hole)
		if err != nil {
			return err
		}
		if err := scoring(tour); err != nil {
			return err
		}
		team, err := tx.TeamRound(tour.ID, req.Team)
		if err != nil {
			return err
		}
		if err := playable(team.Round, course); err != nil {
			return fmt.Errorf("team %d: %w", req.Team, err)
		}

		players := make([]models.PlayerRound, 0, len(req.Scores))
		for _, ps := range req.Scores {
			pr, err := tx.TeamPlayerRound(team.ID, ps.PlayerNumber)
			if err != nil {
				return err
			}
			pr, err = recordScore(tx, pr, course, hole, ps.Score)
			if err != nil {
				return fmt.Errorf("player %d: %w", ps.PlayerNumber, err)
			}
			players = append(players, pr)
		}

		if err := advance(tx, &team.Round, course, hole); err != nil {
			return err
		}
		if err := tx.SaveTeamRound(team); err != nil {
			return err
		}
		result = TeamScoresResult{Team: team, Players: players}
		return nil
	})
	if err != nil {
		return TeamScoresResult{}, fmt.Errorf("record team scores: %w", err)
	}
	return result, nil
}

// EndPlayerRound freezes a player's total and average from the recorded
// scores and takes the round out of play.
func (s *Service) EndPlayerRound(ctx context.Context, tournament string, player int) (summary models.RoundSummary, err error) {
	ctx, span := s.start(ctx, "tournament.EndPlayerRound",
		tournamentAttr(tournament),
		attribute.Int("player.number", player))
	defer func() { finish(span, err) }()

	if err := requireName("tournament", tournament); err != nil {
		return models.RoundSummary{}, err
	}
	err = s.store.Update(ctx, func(tx *store.Tx) error {
		tour, err := tx.Tournament(tournament)
		if err != nil {
			return err
		}
		round, err := tx.PlayerRound(tour.ID, player)
		if err != nil {
			return err
		}
		if err := endable(round.Status); err != nil {
			return fmt.Errorf("player %d: %w", player, err)
		}
		scores, err := tx.Scores(round.ID)
		if err != nil {
			return err
		}
		values := make([]int, len(scores))
		for i, sc := range scores {
			values[i] = sc.Score
		}
		round.Total, round.Average = PlayerAggregate(values)
		freeze(&round.Round)
		summary = models.RoundSummary{Total: round.Total, Average: round.Average, HolesPlayed: len(scores)}
		return tx.SavePlayerRound(round)
	})
	if err != nil {
		return models.RoundSummary{}, fmt.Errorf("end player round: %w", err)
	}
	return summary, nil
}

// EndTeamRound freezes a team's total and average from the scores of its
// started member rounds and takes the round out of play.
func (s *Service) EndTeamRound(ctx context.Context, tournament string, team int) (summary models.RoundSummary, err error) {
	ctx, span := s.start(ctx, "tournament.EndTeamRound",
		tournamentAttr(tournament),
		attribute.Int("team.number", team))
	defer func() { finish(span, err) }()

	if err := requireName("tournament", tournament); err != nil {
		return models.RoundSummary{}, err
	}
	err = s.store.Update(ctx, func(tx *store.Tx) error {
		tour, err := tx.Tournament(tournament)
		if err != nil {
			return err
		}
		round, err := tx.TeamRound(tour.ID, team)
		if err != nil {
			return err
		}
		if err := endable(round.Status); err != nil {
			return fmt.Errorf("team %d: %w", team, err)
		}
		members, err := tx.TeamPlayerRounds(round.ID)
		if err != nil {
			return err
		}
		var totals []int
		holes := make(map[int]bool)
		for _, pr := range members {
			if pr.Status == models.StatusReady {
				continue
			}
			scores, err := tx.Scores(pr.ID)
			if err != nil {
				return err
			}
			values := make([]int, len(scores))
			for i, sc := range scores {
				values[i] = sc.Score
				holes[sc.HoleNumber] = true
			}
			total, _ := PlayerAggregate(values)
			totals = append(totals, total)
		}
		round.Total, round.Average = TeamAggregate(totals)
		freeze(&round.Round)
		summary = models.RoundSummary{Total: round.Total, Average: round.Average, HolesPlayed: len(holes)}
		return tx.SaveTeamRound(round)
	})
	if err != nil {
		return models.RoundSummary{}, fmt.Errorf("end team round: %w", err)
	}
	return summary, nil
}

// EndTournament refreshes the tournament leaderboard and then marks every
// round done, in one transaction.
func (s *Service) EndTournament(ctx context.Context, name string) (affected models.Affected, err error) {
	ctx, span := s.start(ctx, "tournament.EndTournament", tournamentAttr(name))
	defer func() { finish(span, err) }()

	if err := requireName("tournament", name); err != nil {
		return models.Affected{}, err
	}
	err = s.store.Update(ctx, func(tx *store.Tx) error {
		tour, err := tx.Tournament(name)
		if err != nil {
			return err
		}
		if _, err := refresh(tx, tour); err != nil {
			return err
		}
		affected, err = tx.FinalizeTournament(tour.ID)
		return err
	})
	if err != nil {
		return models.Affected{}, fmt.Errorf("end tournament: %w", err)
	}
	log.Printf("tournament %q finalized: %d team rounds, %d player rounds", name, affected.TeamRounds, affected.PlayerRounds)
	return affected, nil
}

func validatePath(tournament, course string, hole int) error {
	if err := requireName("tournament", tournament); err != nil {
		return err
	}
	if err := requireName("course", course); err != nil {
		return err
	}
	if !rotation.Valid(hole) {
		return apperrors.InvalidArgument(fmt.Sprintf("hole %d outside 1-%d", hole, rotation.Holes))
	}
	return nil
}

func validateScore(score int) error {
	if score <= 0 {
		return apperrors.InvalidArgument(fmt.Sprintf("score %d must be positive", score))
	}
	return nil
}

func scoring(tour models.Tournament) error {
	if !tour.Active {
		return apperrors.InvalidState(fmt.Sprintf("tournament %q is not active", tour.Name))
	}
	return nil
}

// resolveHole resolves the tournament, a course it uses and a hole on that
// course.
func resolveHole(tx *store.Tx, tournament, courseName string, number int) (models.Tournament, models.Course, models.Hole, error) {
	tour, err := tx.Tournament(tournament)
	if err != nil {
		return models.Tournament{}, models.Course{}, models.Hole{}, err
	}
	course, err := tx.Course(courseName)
	if err != nil {
		return models.Tournament{}, models.Course{}, models.Hole{}, err
	}
	uses, err := tx.TournamentUsesCourse(tour.ID, course.ID)
	if err != nil {
		return models.Tournament{}, models.Course{}, models.Hole{}, err
	}
	if !uses {
		return models.Tournament{}, models.Course{}, models.Hole{}, apperrors.NotFound(
			fmt.Sprintf("tournament %q is not played on course %q", tournament, courseName))
	}
	hole, err := tx.Hole(course.ID, number)
	if err != nil {
		return models.Tournament{}, models.Course{}, models.Hole{}, err
	}
	return tour, course, hole, nil
}

func activatable(status models.Status) error {
	if status == models.StatusReady || status == models.StatusActive {
		return nil
	}
	return apperrors.InvalidState(fmt.Sprintf("round is %s, reset the tournament to play it again", status))
}

func endable(status models.Status) error {
	if status == models.StatusActive || status == models.StatusComplete {
		return nil
	}
	return apperrors.InvalidState(fmt.Sprintf("round is %s", status))
}

func playable(r models.Round, course models.Course) error {
	if r.Status != models.StatusActive {
		return apperrors.InvalidState(fmt.Sprintf("round is %s, not active", r.Status))
	}
	if r.CourseID != course.ID {
		return apperrors.NotFound(fmt.Sprintf("round is not playing course %q", course.Name))
	}
	return nil
}

func activate(r *models.Round, course models.Course, hole models.Hole) {
	r.Status = models.StatusActive
	r.Total = 0
	r.Average = 0
	r.Rank = 0
	r.Refreshed = false
	r.CourseID = course.ID
	r.CourseName = course.Name
	r.StartingHole = hole.Number
	r.CurrentHole = hole.Number
}

func freeze(r *models.Round) {
	r.Status = models.StatusComplete
	r.CurrentHole = 0
	r.Refreshed = true
}

func recordScore(tx *store.Tx, round models.PlayerRound, course models.Course, hole models.Hole, score int) (models.PlayerRound, error) {
	if err := playable(round.Round, course); err != nil {
		return models.PlayerRound{}, err
	}
	if err := tx.UpsertScore(round.ID, hole.ID, score); err != nil {
		return models.PlayerRound{}, err
	}
	if err := advance(tx, &round.Round, course, hole); err != nil {
		return models.PlayerRound{}, err
	}
	if err := tx.SavePlayerRound(round); err != nil {
		return models.PlayerRound{}, err
	}
	return round, nil
}

// advance moves the current hole pointer past scored when scored is the
// current hole, completing the round after the last hole of its rotation.
func advance(tx *store.Tx, r *models.Round, course models.Course, scored models.Hole) error {
	if r.CurrentHole != scored.Number {
		return nil
	}
	next, ok, err := rotation.Next(r.StartingHole, scored.Number)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidState, "round has no valid starting hole", err)
	}
	if !ok {
		r.Status = models.StatusComplete
		r.CurrentHole = 0
		return nil
	}
	if _, err := tx.Hole(course.ID, next); err != nil {
		return err
	}
	r.CurrentHole = next
	return nil
}
