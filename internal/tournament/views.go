package tournament

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/attribute"

	"github.com/antigravity/tournamentRounds/internal/models"
	"github.com/antigravity/tournamentRounds/internal/rotation"
	"github.com/antigravity/tournamentRounds/internal/store"
)

// TeamLeaderboard lists the refreshed team rounds of a tournament by rank.
func (s *Service) TeamLeaderboard(ctx context.Context, tournament string) (entries []models.TeamLeaderboardEntry, err error) {
	ctx, span := s.start(ctx, "tournament.TeamLeaderboard", tournamentAttr(tournament))
	defer func() { finish(span, err) }()

	if err := requireName("tournament", tournament); err != nil {
		return nil, err
	}
	err = s.store.View(ctx, func(tx *store.Tx) error {
		tour, err := tx.Tournament(tournament)
		if err != nil {
			return err
		}
		rounds, err := tx.TeamRounds(tour.ID)
		if err != nil {
			return err
		}
		holes, err := tx.TeamHolesPlayed(tour.ID)
		if err != nil {
			return err
		}
		entries = make([]models.TeamLeaderboardEntry, 0, len(rounds))
		for _, r := range rounds {
			if !r.Refreshed {
				continue
			}
			entries = append(entries, models.TeamLeaderboardEntry{
				TeamNumber:   r.TeamNumber,
				TeamName:     r.TeamName,
				Total:        r.Total,
				Average:      r.Average,
				Rank:         r.Rank,
				HolesPlayed:  holes[r.ID],
				StartingHole: r.StartingHole,
				CurrentHole:  r.CurrentHole,
				Status:       r.Status,
				Completed:    r.Status.Completed(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("team leaderboard: %w", err)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return rankBefore(entries[i].Rank, entries[i].TeamNumber, entries[j].Rank, entries[j].TeamNumber)
	})
	return entries, nil
}

// PlayerLeaderboard lists the refreshed player rounds of a tournament by
// rank.
func (s *Service) PlayerLeaderboard(ctx context.Context, tournament string) (entries []models.PlayerLeaderboardEntry, err error) {
	ctx, span := s.start(ctx, "tournament.PlayerLeaderboard", tournamentAttr(tournament))
	defer func() { finish(span, err) }()

	if err := requireName("tournament", tournament); err != nil {
		return nil, err
	}
	err = s.store.View(ctx, func(tx *store.Tx) error {
		tour, err := tx.Tournament(tournament)
		if err != nil {
			return err
		}
		rounds, err := tx.PlayerRounds(tour.ID)
		if err != nil {
			return err
		}
		scores, err := tx.TournamentScores(tour.ID)
		if err != nil {
			return err
		}
		entries = make([]models.PlayerLeaderboardEntry, 0, len(rounds))
		for _, r := range rounds {
			if !r.Refreshed {
				continue
			}
			entries = append(entries, models.PlayerLeaderboardEntry{
				PlayerNumber: r.PlayerNumber,
				PlayerName:   r.PlayerName,
				TeamNumber:   r.TeamNumber,
				Total:        r.Total,
				Average:      r.Average,
				Rank:         r.Rank,
				HolesPlayed:  len(scores[r.ID]),
				StartingHole: r.StartingHole,
				CurrentHole:  r.CurrentHole,
				Status:       r.Status,
				Completed:    r.Status.Completed(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("player leaderboard: %w", err)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return rankBefore(entries[i].Rank, entries[i].PlayerNumber, entries[j].Rank, entries[j].PlayerNumber)
	})
	return entries, nil
}

// rankBefore orders ranked rows first by rank, then unranked rows by number.
func rankBefore(rankA, numA, rankB, numB int) bool {
	switch {
	case rankA == 0 && rankB == 0:
		return numA < numB
	case rankA == 0:
		return false
	case rankB == 0:
		return true
	case rankA != rankB:
		return rankA < rankB
	}
	return numA < numB
}

// PlayerCurrentHole reports where a player's round stands.
func (s *Service) PlayerCurrentHole(ctx context.Context, tournament string, player int) (view models.CurrentHole, err error) {
	ctx, span := s.start(ctx, "tournament.PlayerCurrentHole",
		tournamentAttr(tournament),
		attribute.Int("player.number", player))
	defer func() { finish(span, err) }()

	if err := requireName("tournament", tournament); err != nil {
		return models.CurrentHole{}, err
	}
	err = s.store.View(ctx, func(tx *store.Tx) error {
		tour, err := tx.Tournament(tournament)
		if err != nil {
			return err
		}
		round, err := tx.PlayerRound(tour.ID, player)
		if err != nil {
			return err
		}
		scores, err := tx.Scores(round.ID)
		if err != nil {
			return err
		}
		view = currentHole(tour.Name, round.Round, len(scores))
		view.PlayerNumber = round.PlayerNumber
		view.TeamNumber = round.TeamNumber
		return nil
	})
	if err != nil {
		return models.CurrentHole{}, fmt.Errorf("player current hole: %w", err)
	}
	return view, nil
}

// TeamCurrentHole reports where a team's round stands.
func (s *Service) TeamCurrentHole(ctx context.Context, tournament string, team int) (view models.CurrentHole, err error) {
	ctx, span := s.start(ctx, "tournament.TeamCurrentHole",
		tournamentAttr(tournament),
		attribute.Int("team.number", team))
	defer func() { finish(span, err) }()

	if err := requireName("tournament", tournament); err != nil {
		return models.CurrentHole{}, err
	}
	err = s.store.View(ctx, func(tx *store.Tx) error {
		tour, err := tx.Tournament(tournament)
		if err != nil {
			return err
		}
		round, err := tx.TeamRound(tour.ID, team)
		if err != nil {
			return err
		}
		holes, err := tx.TeamHolesPlayed(tour.ID)
		if err != nil {
			return err
		}
		view = currentHole(tour.Name, round.Round, holes[round.ID])
		view.TeamNumber = round.TeamNumber
		return nil
	})
	if err != nil {
		return models.CurrentHole{}, fmt.Errorf("team current hole: %w", err)
	}
	return view, nil
}

func currentHole(tournament string, r models.Round, holesPlayed int) models.CurrentHole {
	return models.CurrentHole{
		Tournament:   tournament,
		CourseName:   r.CourseName,
		Status:       r.Status,
		StartingHole: r.StartingHole,
		CurrentHole:  r.CurrentHole,
		HolesPlayed:  holesPlayed,
		Completed:    r.Status.Completed(),
	}
}

// PlayerScorecard returns a player's card for the course being played, one
// line per hole in the order the player plays them.
func (s *Service) PlayerScorecard(ctx context.Context, tournament string, player int) (card models.Scorecard, err error) {
	ctx, span := s.start(ctx, "tournament.PlayerScorecard",
		tournamentAttr(tournament),
		attribute.Int("player.number", player))
	defer func() { finish(span, err) }()

	if err := requireName("tournament", tournament); err != nil {
		return models.Scorecard{}, err
	}
	err = s.store.View(ctx, func(tx *store.Tx) error {
		tour, err := tx.Tournament(tournament)
		if err != nil {
			return err
		}
		round, err := tx.PlayerRound(tour.ID, player)
		if err != nil {
			return err
		}
		card = models.Scorecard{
			Tournament:   tour.Name,
			PlayerNumber: round.PlayerNumber,
			PlayerName:   round.PlayerName,
			TeamNumber:   round.TeamNumber,
			CourseName:   round.CourseName,
			Status:       round.Status,
			StartingHole: round.StartingHole,
			CurrentHole:  round.CurrentHole,
			Holes:        []models.ScorecardHole{},
		}
		if round.CourseID == 0 {
			return nil
		}
		holes, err := tx.Holes(round.CourseID)
		if err != nil {
			return err
		}
		scores, err := tx.Scores(round.ID)
		if err != nil {
			return err
		}
		card.Holes = scorecardHoles(holes, scores, round.StartingHole)
		for _, h := range card.Holes {
			if h.Score == nil {
				continue
			}
			card.Total += *h.Score
			card.ParPlayed += h.Par
			card.HolesPlayed++
		}
		return nil
	})
	if err != nil {
		return models.Scorecard{}, fmt.Errorf("player scorecard: %w", err)
	}
	return card, nil
}

// scorecardHoles lays out holes in rotation order from start, or by number
// when the round has no starting hole.
func scorecardHoles(holes []models.Hole, scores []models.Score, start int) []models.ScorecardHole {
	byHole := make(map[int64]int, len(scores))
	for _, sc := range scores {
		byHole[sc.HoleID] = sc.Score
	}
	lines := make([]models.ScorecardHole, 0, len(holes))
	for _, h := range holes {
		line := models.ScorecardHole{Number: h.Number, Name: h.Name, Par: h.Par}
		if v, ok := byHole[h.ID]; ok {
			line.Score = &v
		}
		lines = append(lines, line)
	}
	if !rotation.Valid(start) {
		return lines
	}
	sort.SliceStable(lines, func(i, j int) bool {
		pi, _ := rotation.Position(start, lines[i].Number)
		pj, _ := rotation.Position(start, lines[j].Number)
		return pi < pj
	})
	return lines
}
