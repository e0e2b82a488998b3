package tournament

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/attribute"

	"github.com/antigravity/tournamentRounds/internal/models"
	"github.com/antigravity/tournamentRounds/internal/store"
)

// PlayerAggregate returns the total and per-hole average of a player's
// scores. The average is 0 when nothing has been scored.
func PlayerAggregate(scores []int) (total int, average float64) {
	for _, s := range scores {
		total += s
	}
	if len(scores) == 0 {
		return 0, 0
	}
	return total, float64(total) / float64(len(scores))
}

// TeamAggregate returns the sum of the member totals and that sum divided
// by the number of contributing members.
func TeamAggregate(totals []int) (total int, average float64) {
	return PlayerAggregate(totals)
}

// Standing is one competitor in a ranking.
type Standing struct {
	Number int
	Total  int
}

// Rank assigns 1-based ranks by ascending total. Equal totals are ordered by
// number so every competitor gets a distinct rank. The result is keyed by
// number.
func Rank(standings []Standing) map[int]int {
	sorted := make([]Standing, len(standings))
	copy(sorted, standings)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Total != sorted[j].Total {
			return sorted[i].Total < sorted[j].Total
		}
		return sorted[i].Number < sorted[j].Number
	})
	ranks := make(map[int]int, len(sorted))
	for i, s := range sorted {
		ranks[s.Number] = i + 1
	}
	return ranks
}

// UpdateLeaderboard recomputes aggregates and ranks for the named
// tournament, or for every tournament when name is empty. It returns the
// number of rounds written.
func (s *Service) UpdateLeaderboard(ctx context.Context, name string) (affected models.Affected, err error) {
	ctx, span := s.start(ctx, "tournament.UpdateLeaderboard", tournamentAttr(name))
	defer func() { finish(span, err) }()

	err = s.store.Update(ctx, func(tx *store.Tx) error {
		var tournaments []models.Tournament
		if name == "" {
			all, err := tx.Tournaments()
			if err != nil {
				return err
			}
			tournaments = all
		} else {
			tour, err := tx.Tournament(name)
			if err != nil {
				return err
			}
			tournaments = []models.Tournament{tour}
		}
		for _, tour := range tournaments {
			n, err := refresh(tx, tour)
			if err != nil {
				return fmt.Errorf("tournament %q: %w", tour.Name, err)
			}
			affected.TeamRounds += n.TeamRounds
			affected.PlayerRounds += n.PlayerRounds
		}
		return nil
	})
	if err != nil {
		return models.Affected{}, fmt.Errorf("update leaderboard: %w", err)
	}
	span.SetAttributes(
		attribute.Int("rounds.team", affected.TeamRounds),
		attribute.Int("rounds.player", affected.PlayerRounds))
	return affected, nil
}

// refresh recomputes every active or complete round of a tournament from
// the recorded scores and re-ranks them. Ranks cover only rounds written in
// this pass.
func refresh(tx *store.Tx, tour models.Tournament) (models.Affected, error) {
	scores, err := tx.TournamentScores(tour.ID)
	if err != nil {
		return models.Affected{}, err
	}
	players, err := tx.PlayerRounds(tour.ID)
	if err != nil {
		return models.Affected{}, err
	}
	teams, err := tx.TeamRounds(tour.ID)
	if err != nil {
		return models.Affected{}, err
	}

	memberTotals := make(map[int64][]int)
	var scoring []models.PlayerRound
	for _, pr := range players {
		if !pr.Status.Scoring() {
			continue
		}
		pr.Total, pr.Average = PlayerAggregate(scores[pr.ID])
		memberTotals[pr.TeamRoundID] = append(memberTotals[pr.TeamRoundID], pr.Total)
		scoring = append(scoring, pr)
	}
	standings := make([]Standing, len(scoring))
	for i, pr := range scoring {
		standings[i] = Standing{Number: pr.PlayerNumber, Total: pr.Total}
	}
	playerRanks := Rank(standings)
	for _, pr := range scoring {
		pr.Rank = playerRanks[pr.PlayerNumber]
		pr.Refreshed = true
		if err := tx.SavePlayerRound(pr); err != nil {
			return models.Affected{}, err
		}
	}

	var scoringTeams []models.TeamRound
	for _, tr := range teams {
		if !tr.Status.Scoring() {
			continue
		}
		tr.Total, tr.Average = TeamAggregate(memberTotals[tr.ID])
		scoringTeams = append(scoringTeams, tr)
	}
	standings = make([]Standing, len(scoringTeams))
	for i, tr := range scoringTeams {
		standings[i] = Standing{Number: tr.TeamNumber, Total: tr.Total}
	}
	teamRanks := Rank(standings)
	for _, tr := range scoringTeams {
		tr.Rank = teamRanks[tr.TeamNumber]
		tr.Refreshed = true
		if err := tx.SaveTeamRound(tr); err != nil {
			return models.Affected{}, err
		}
	}
	return models.Affected{TeamRounds: len(scoringTeams), PlayerRounds: len(scoring)}, nil
}
