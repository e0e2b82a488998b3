package store

import (
	"database/sql"
	"fmt"

	apperrors "github.com/antigravity/tournamentRounds/internal/errors"
	"github.com/antigravity/tournamentRounds/internal/models"
)

type rowScanner interface {
	Scan(dest ...any) error
}

const teamRoundSelect = `
	SELECT tr.id, tr.tournament_id, COALESCE(tr.course_id, 0), COALESCE(c.name, ''),
		tr.status, tr.total, tr.average, tr.rank,
		COALESCE(sh.number, 0), COALESCE(ch.number, 0), tr.refreshed_at IS NOT NULL,
		tm.id, tm.number, tm.name
	FROM team_rounds tr
	JOIN teams tm ON tm.id = tr.team_id
	LEFT JOIN courses c ON c.id = tr.course_id
	LEFT JOIN holes sh ON sh.id = tr.starting_hole_id
	LEFT JOIN holes ch ON ch.id = tr.current_hole_id`

const playerRoundSelect = `
	SELECT pr.id, tr.tournament_id, COALESCE(pr.course_id, 0), COALESCE(c.name, ''),
		pr.status, pr.total, pr.average, pr.rank,
		COALESCE(sh.number, 0), COALESCE(ch.number, 0), pr.refreshed_at IS NOT NULL,
		pr.team_round_id, p.id, p.number, p.name, tm.number
	FROM player_rounds pr
	JOIN team_rounds tr ON tr.id = pr.team_round_id
	JOIN teams tm ON tm.id = tr.team_id
	JOIN players p ON p.id = pr.player_id
	LEFT JOIN courses c ON c.id = pr.course_id
	LEFT JOIN holes sh ON sh.id = pr.starting_hole_id
	LEFT JOIN holes ch ON ch.id = pr.current_hole_id`

func checkStatus(s models.Status) error {
	if !s.Valid() {
		return fmt.Errorf("unknown round status %q", s)
	}
	return nil
}

func scanTeamRound(row rowScanner) (models.TeamRound, error) {
	var r models.TeamRound
	err := row.Scan(&r.ID, &r.TournamentID, &r.CourseID, &r.CourseName,
		&r.Status, &r.Total, &r.Average, &r.Rank,
		&r.StartingHole, &r.CurrentHole, &r.Refreshed,
		&r.TeamID, &r.TeamNumber, &r.TeamName)
	if err != nil {
		return r, err
	}
	return r, checkStatus(r.Status)
}

func scanPlayerRound(row rowScanner) (models.PlayerRound, error) {
	var r models.PlayerRound
	err := row.Scan(&r.ID, &r.TournamentID, &r.CourseID, &r.CourseName,
		&r.Status, &r.Total, &r.Average, &r.Rank,
		&r.StartingHole, &r.CurrentHole, &r.Refreshed,
		&r.TeamRoundID, &r.PlayerID, &r.PlayerNumber, &r.PlayerName, &r.TeamNumber)
	if err != nil {
		return r, err
	}
	return r, checkStatus(r.Status)
}

// TeamRound loads the round of a team in a tournament.
func (t *Tx) TeamRound(tournamentID int64, teamNumber int) (models.TeamRound, error) {
	r, err := scanTeamRound(t.queryRow(teamRoundSelect+`
	JOIN tournament_teams tt ON tt.tournament_id = tr.tournament_id AND tt.team_id = tr.team_id
	WHERE tr.tournament_id = ? AND tm.number = ?`, tournamentID, teamNumber))
	if err == sql.ErrNoRows {
		return models.TeamRound{}, notFound(fmt.Sprintf("team round not found for team %d", teamNumber),
			map[string]string{"team": fmt.Sprint(teamNumber)})
	}
	if err != nil {
		return models.TeamRound{}, apperrors.Storage("load team round", err)
	}
	return r, nil
}

// PlayerRound loads the round a player plays in a tournament.
func (t *Tx) PlayerRound(tournamentID int64, playerNumber int) (models.PlayerRound, error) {
	r, err := scanPlayerRound(t.queryRow(playerRoundSelect+`
	WHERE tr.tournament_id = ? AND p.number = ? AND p.team_id = tr.team_id`, tournamentID, playerNumber))
	if err == sql.ErrNoRows {
		return models.PlayerRound{}, notFound(fmt.Sprintf("player round not found for player %d", playerNumber),
			map[string]string{"player": fmt.Sprint(playerNumber)})
	}
	if err != nil {
		return models.PlayerRound{}, apperrors.Storage("load player round", err)
	}
	return r, nil
}

// TeamPlayerRound loads the round of a team member linked to teamRoundID.
func (t *Tx) TeamPlayerRound(teamRoundID int64, playerNumber int) (models.PlayerRound, error) {
	r, err := scanPlayerRound(t.queryRow(playerRoundSelect+`
	WHERE pr.team_round_id = ? AND p.number = ? AND p.team_id = tr.team_id`, teamRoundID, playerNumber))
	if err == sql.ErrNoRows {
		return models.PlayerRound{}, notFound(fmt.Sprintf("player %d has no round in this team round", playerNumber),
			map[string]string{"player": fmt.Sprint(playerNumber)})
	}
	if err != nil {
		return models.PlayerRound{}, apperrors.Storage("load player round", err)
	}
	return r, nil
}

// TeamRounds lists every team round of a tournament ordered by team number.
func (t *Tx) TeamRounds(tournamentID int64) ([]models.TeamRound, error) {
	rows, err := t.query(teamRoundSelect+`
	WHERE tr.tournament_id = ?
	ORDER BY tm.number`, tournamentID)
	if err != nil {
		return nil, apperrors.Storage("list team rounds", err)
	}
	defer rows.Close()

	var rounds []models.TeamRound
	for rows.Next() {
		r, err := scanTeamRound(rows)
		if err != nil {
			return nil, apperrors.Storage("scan team round", err)
		}
		rounds = append(rounds, r)
	}
	return rounds, apperrors.Storage("list team rounds", rows.Err())
}

// PlayerRounds lists every player round of a tournament ordered by player
// number.
func (t *Tx) PlayerRounds(tournamentID int64) ([]models.PlayerRound, error) {
	return t.listPlayerRounds(`WHERE tr.tournament_id = ?`, tournamentID)
}

// TeamPlayerRounds lists the player rounds linked to a team round.
func (t *Tx) TeamPlayerRounds(teamRoundID int64) ([]models.PlayerRound, error) {
	return t.listPlayerRounds(`WHERE pr.team_round_id = ?`, teamRoundID)
}

func (t *Tx) listPlayerRounds(where string, args ...any) ([]models.PlayerRound, error) {
	rows, err := t.query(playerRoundSelect+"\n\t"+where+"\n\tORDER BY p.number", args...)
	if err != nil {
		return nil, apperrors.Storage("list player rounds", err)
	}
	defer rows.Close()

	var rounds []models.PlayerRound
	for rows.Next() {
		r, err := scanPlayerRound(rows)
		if err != nil {
			return nil, apperrors.Storage("scan player round", err)
		}
		rounds = append(rounds, r)
	}
	return rounds, apperrors.Storage("list player rounds", rows.Err())
}

// roundUpdate writes the mutable fields of a round. Hole pointers are stored
// as hole ids resolved on the round's course; a zero number clears them.
func (t *Tx) roundUpdate(table string, r models.Round) error {
	// refreshed_at keeps the first refresh time until the round is reset.
	query := `UPDATE ` + table + ` SET
		status = ?, total = ?, average = ?, rank = ?, course_id = ?,
		starting_hole_id = (SELECT id FROM holes WHERE course_id = ? AND number = ?),
		current_hole_id = (SELECT id FROM holes WHERE course_id = ? AND number = ?),
		refreshed_at = CASE WHEN ? THEN COALESCE(refreshed_at, ?) ELSE NULL END
		WHERE id = ?`
	res, err := t.exec(query,
		string(r.Status), r.Total, r.Average, r.Rank, nullID(r.CourseID),
		r.CourseID, r.StartingHole,
		r.CourseID, r.CurrentHole,
		r.Refreshed, t.now().UTC().UnixMilli(),
		r.ID)
	if err != nil {
		return apperrors.Storage("update "+table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.Storage("update "+table, err)
	}
	if n == 0 {
		return notFound(fmt.Sprintf("%s %d not found", table, r.ID), nil)
	}
	return nil
}

// SaveTeamRound writes status, aggregates, course and hole pointers.
func (t *Tx) SaveTeamRound(r models.TeamRound) error {
	return t.roundUpdate("team_rounds", r.Round)
}

// SavePlayerRound writes status, aggregates, course and hole pointers.
func (t *Tx) SavePlayerRound(r models.PlayerRound) error {
	return t.roundUpdate("player_rounds", r.Round)
}

// ResetTournament deletes every score record of the tournament and returns
// all of its rounds to ready with cleared aggregates and pointers.
func (t *Tx) ResetTournament(tournamentID int64) (models.Affected, error) {
	const playerRoundIDs = `SELECT pr.id FROM player_rounds pr
		JOIN team_rounds tr ON tr.id = pr.team_round_id
		WHERE tr.tournament_id = ?`
	const cleared = `status = 'ready', total = 0, average = 0, rank = 0, course_id = NULL,
		starting_hole_id = NULL, current_hole_id = NULL, refreshed_at = NULL`

	if _, err := t.exec(`DELETE FROM scores WHERE player_round_id IN (`+playerRoundIDs+`)`, tournamentID); err != nil {
		return models.Affected{}, apperrors.Storage("delete tournament scores", err)
	}
	players, err := t.exec(`UPDATE player_rounds SET `+cleared+` WHERE id IN (`+playerRoundIDs+`)`, tournamentID)
	if err != nil {
		return models.Affected{}, apperrors.Storage("reset player rounds", err)
	}
	teams, err := t.exec(`UPDATE team_rounds SET `+cleared+` WHERE tournament_id = ?`, tournamentID)
	if err != nil {
		return models.Affected{}, apperrors.Storage("reset team rounds", err)
	}
	return affected(teams, players)
}

// FinalizeTournament marks every round of the tournament done.
func (t *Tx) FinalizeTournament(tournamentID int64) (models.Affected, error) {
	players, err := t.exec(`UPDATE player_rounds SET status = 'done'
		WHERE team_round_id IN (SELECT id FROM team_rounds WHERE tournament_id = ?)`, tournamentID)
	if err != nil {
		return models.Affected{}, apperrors.Storage("finalize player rounds", err)
	}
	teams, err := t.exec(`UPDATE team_rounds SET status = 'done' WHERE tournament_id = ?`, tournamentID)
	if err != nil {
		return models.Affected{}, apperrors.Storage("finalize team rounds", err)
	}
	return affected(teams, players)
}

func affected(teams, players sql.Result) (models.Affected, error) {
	nTeams, err := teams.RowsAffected()
	if err != nil {
		return models.Affected{}, apperrors.Storage("count team rounds", err)
	}
	nPlayers, err := players.RowsAffected()
	if err != nil {
		return models.Affected{}, apperrors.Storage("count player rounds", err)
	}
	return models.Affected{TeamRounds: int(nTeams), PlayerRounds: int(nPlayers)}, nil
}
