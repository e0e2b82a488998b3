package store

import (
	apperrors "github.com/antigravity/tournamentRounds/internal/errors"
	"github.com/antigravity/tournamentRounds/internal/models"
)

// UpsertScore records the score of a player round on a hole, overwriting any
// earlier submission for the same hole.
func (t *Tx) UpsertScore(playerRoundID, holeID int64, score int) error {
	_, err := t.exec(`INSERT INTO scores (player_round_id, hole_id, score, recorded_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (player_round_id, hole_id) DO UPDATE SET
			score = excluded.score,
			recorded_at = excluded.recorded_at`,
		playerRoundID, holeID, score, t.now().UTC().UnixMilli())
	return apperrors.Storage("upsert score", err)
}

// DeleteScores removes every score record of a player round and reports how
// many were removed.
func (t *Tx) DeleteScores(playerRoundID int64) (int, error) {
	res, err := t.exec(`DELETE FROM scores WHERE player_round_id = ?`, playerRoundID)
	if err != nil {
		return 0, apperrors.Storage("delete scores", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperrors.Storage("delete scores", err)
	}
	return int(n), nil
}

// Scores lists the score records of a player round ordered by hole number.
func (t *Tx) Scores(playerRoundID int64) ([]models.Score, error) {
	rows, err := t.query(`SELECT s.player_round_id, s.hole_id, h.number, s.score
		FROM scores s
		JOIN holes h ON h.id = s.hole_id
		WHERE s.player_round_id = ?
		ORDER BY h.number`, playerRoundID)
	if err != nil {
		return nil, apperrors.Storage("list scores", err)
	}
	defer rows.Close()

	var scores []models.Score
	for rows.Next() {
		var s models.Score
		if err := rows.Scan(&s.PlayerRoundID, &s.HoleID, &s.HoleNumber, &s.Score); err != nil {
			return nil, apperrors.Storage("scan score", err)
		}
		scores = append(scores, s)
	}
	return scores, apperrors.Storage("list scores", rows.Err())
}

// TournamentScores returns the score values of every player round in a
// tournament, keyed by player round id.
func (t *Tx) TournamentScores(tournamentID int64) (map[int64][]int, error) {
	rows, err := t.query(`SELECT s.player_round_id, s.score
		FROM scores s
		JOIN player_rounds pr ON pr.id = s.player_round_id
		JOIN team_rounds tr ON tr.id = pr.team_round_id
		WHERE tr.tournament_id = ?`, tournamentID)
	if err != nil {
		return nil, apperrors.Storage("list tournament scores", err)
	}
	defer rows.Close()

	scores := make(map[int64][]int)
	for rows.Next() {
		var id int64
		var score int
		if err := rows.Scan(&id, &score); err != nil {
			return nil, apperrors.Storage("scan tournament score", err)
		}
		scores[id] = append(scores[id], score)
	}
	return scores, apperrors.Storage("list tournament scores", rows.Err())
}

// TeamHolesPlayed counts the distinct holes scored by the members of each
// team round in a tournament, keyed by team round id.
func (t *Tx) TeamHolesPlayed(tournamentID int64) (map[int64]int, error) {
	rows, err := t.query(`SELECT pr.team_round_id, COUNT(DISTINCT s.hole_id)
		FROM scores s
		JOIN player_rounds pr ON pr.id = s.player_round_id
		JOIN team_rounds tr ON tr.id = pr.team_round_id
		WHERE tr.tournament_id = ?
		GROUP BY pr.team_round_id`, tournamentID)
	if err != nil {
		return nil, apperrors.Storage("count team holes", err)
	}
	defer rows.Close()

	holes := make(map[int64]int)
	for rows.Next() {
		var id int64
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, apperrors.Storage("scan team holes", err)
		}
		holes[id] = n
	}
	return holes, apperrors.Storage("count team holes", rows.Err())
}
