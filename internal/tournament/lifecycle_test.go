package tournament

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/antigravity/tournamentRounds/internal/db"
	apperrors "github.com/antigravity/tournamentRounds/internal/errors"
	"github.com/antigravity/tournamentRounds/internal/fixture"
	"github.com/antigravity/tournamentRounds/internal/models"
	"github.com/antigravity/tournamentRounds/internal/rotation"
	"github.com/antigravity/tournamentRounds/internal/store"
)

const testTournament = "Winter Open"

// newTestService seeds four teams of three players (team t owns players
// 3t-2..3t) on the Red and Black courses.
func newTestService(t *testing.T) *Service {
	t.Helper()
	return serviceFor(t, fixture.Generate(testTournament, 4, 3))
}

func serviceFor(t *testing.T, f *fixture.Fixture) *Service {
	t.Helper()
	sqlDB, err := db.Open(filepath.Join(t.TempDir(), "rounds.sqlite"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	if err := fixture.Apply(context.Background(), sqlDB, f); err != nil {
		t.Fatalf("apply fixture: %v", err)
	}
	return NewService(store.New(sqlDB))
}

func activatePlayer(t *testing.T, svc *Service, team, player int, course string, hole int) models.PlayerRound {
	t.Helper()
	pr, err := svc.ActivatePlayerRound(context.Background(), ActivatePlayerRequest{
		Tournament: testTournament, Team: team, Player: player, Course: course, Hole: hole,
	})
	if err != nil {
		t.Fatalf("activate player %d: %v", player, err)
	}
	return pr
}

func playHoles(t *testing.T, svc *Service, player int, course string, start int, scores ...int) models.PlayerRound {
	t.Helper()
	seq, err := rotation.Sequence(start)
	if err != nil {
		t.Fatalf("sequence: %v", err)
	}
	var pr models.PlayerRound
	for i, score := range scores {
		pr, err = svc.RecordScore(context.Background(), RecordScoreRequest{
			Tournament: testTournament, Player: player, Course: course, Hole: seq[i], Score: score,
		})
		if err != nil {
			t.Fatalf("player %d hole %d: %v", player, seq[i], err)
		}
	}
	return pr
}

func repeat(score, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = score
	}
	return out
}

func requireCode(t *testing.T, err error, code apperrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if got := apperrors.CodeOf(err); got != code {
		t.Fatalf("expected %s, got %s (%v)", code, got, err)
	}
}

func TestFullRotationCompletesOnLastHole(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.ActivateTeamRound(ctx, ActivateTeamRequest{
		Tournament: testTournament, Team: 3, Course: "Black Course", Hole: 5,
	}); err != nil {
		t.Fatalf("activate team: %v", err)
	}
	activatePlayer(t, svc, 3, 7, "Black Course", 5)

	seq, _ := rotation.Sequence(5)
	for i, hole := range seq {
		pr, err := svc.RecordScore(ctx, RecordScoreRequest{
			Tournament: testTournament, Player: 7, Course: "Black Course", Hole: hole, Score: 3,
		})
		if err != nil {
			t.Fatalf("hole %d: %v", hole, err)
		}
		if i < len(seq)-1 {
			if pr.Status != models.StatusActive {
				t.Fatalf("round completed early at hole %d", hole)
			}
			if pr.CurrentHole != seq[i+1] {
				t.Fatalf("after hole %d current hole = %d, want %d", hole, pr.CurrentHole, seq[i+1])
			}
			continue
		}
		if pr.Status != models.StatusComplete {
			t.Fatalf("expected complete after hole %d, got %s", hole, pr.Status)
		}
		if pr.CurrentHole != 0 {
			t.Fatalf("expected current hole cleared, got %d", pr.CurrentHole)
		}
	}

	if _, err := svc.UpdateLeaderboard(ctx, testTournament); err != nil {
		t.Fatalf("update leaderboard: %v", err)
	}
	board, err := svc.PlayerLeaderboard(ctx, testTournament)
	if err != nil {
		t.Fatalf("player leaderboard: %v", err)
	}
	if len(board) != 1 {
		t.Fatalf("expected one refreshed player, got %d", len(board))
	}
	got := board[0]
	if got.PlayerNumber != 7 || got.Total != 54 || got.Average != 3.0 || got.HolesPlayed != 18 || !got.Completed {
		t.Fatalf("unexpected leaderboard row: %+v", got)
	}

	view, err := svc.PlayerCurrentHole(ctx, testTournament, 7)
	if err != nil {
		t.Fatalf("current hole: %v", err)
	}
	if !view.Completed || view.CurrentHole != 0 || view.StartingHole != 5 || view.HolesPlayed != 18 {
		t.Fatalf("unexpected current hole view: %+v", view)
	}
}

func TestRecordScoreUpsertsSameHole(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	activatePlayer(t, svc, 1, 2, "Red Course", 10)

	first, err := svc.RecordScore(ctx, RecordScoreRequest{Tournament: testTournament, Player: 2, Course: "Red Course", Hole: 10, Score: 4})
	if err != nil {
		t.Fatalf("first submission: %v", err)
	}
	if first.CurrentHole != 11 {
		t.Fatalf("expected current hole 11, got %d", first.CurrentHole)
	}
	second, err := svc.RecordScore(ctx, RecordScoreRequest{Tournament: testTournament, Player: 2, Course: "Red Course", Hole: 10, Score: 2})
	if err != nil {
		t.Fatalf("correction: %v", err)
	}
	if second.CurrentHole != 11 {
		t.Fatalf("correction moved current hole to %d", second.CurrentHole)
	}

	card, err := svc.PlayerScorecard(ctx, testTournament, 2)
	if err != nil {
		t.Fatalf("scorecard: %v", err)
	}
	if card.HolesPlayed != 1 || card.Total != 2 {
		t.Fatalf("expected one record with the latest value, got holes=%d total=%d", card.HolesPlayed, card.Total)
	}
	if card.Holes[0].Number != 10 || card.Holes[0].Score == nil || *card.Holes[0].Score != 2 {
		t.Fatalf("unexpected first scorecard line: %+v", card.Holes[0])
	}
	if card.ParPlayed != 3 {
		t.Fatalf("expected par played 3, got %d", card.ParPlayed)
	}
}

func TestRecordScoreValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	activatePlayer(t, svc, 1, 1, "Red Course", 1)

	tests := []struct {
		name string
		req  RecordScoreRequest
		code apperrors.Code
	}{
		{name: "unknown tournament", req: RecordScoreRequest{Tournament: "Nope", Player: 1, Course: "Red Course", Hole: 1, Score: 3}, code: apperrors.CodeNotFound},
		{name: "unknown player", req: RecordScoreRequest{Tournament: testTournament, Player: 99, Course: "Red Course", Hole: 1, Score: 3}, code: apperrors.CodeNotFound},
		{name: "other course", req: RecordScoreRequest{Tournament: testTournament, Player: 1, Course: "Black Course", Hole: 1, Score: 3}, code: apperrors.CodeNotFound},
		{name: "hole out of range", req: RecordScoreRequest{Tournament: testTournament, Player: 1, Course: "Red Course", Hole: 19, Score: 3}, code: apperrors.CodeInvalidArgument},
		{name: "zero score", req: RecordScoreRequest{Tournament: testTournament, Player: 1, Course: "Red Course", Hole: 1, Score: 0}, code: apperrors.CodeInvalidArgument},
		{name: "empty course", req: RecordScoreRequest{Tournament: testTournament, Player: 1, Hole: 1, Score: 3}, code: apperrors.CodeInvalidArgument},
		{name: "ready round", req: RecordScoreRequest{Tournament: testTournament, Player: 2, Course: "Red Course", Hole: 1, Score: 3}, code: apperrors.CodeInvalidState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordScore(ctx, tt.req)
			requireCode(t, err, tt.code)
		})
	}

	pr, err := svc.PlayerCurrentHole(ctx, testTournament, 1)
	if err != nil {
		t.Fatalf("current hole: %v", err)
	}
	if pr.HolesPlayed != 0 || pr.CurrentHole != 1 {
		t.Fatalf("failed submissions mutated the round: %+v", pr)
	}
	ready, err := svc.PlayerCurrentHole(ctx, testTournament, 2)
	if err != nil {
		t.Fatalf("current hole: %v", err)
	}
	if ready.HolesPlayed != 0 || ready.Status != models.StatusReady {
		t.Fatalf("ready round was mutated: %+v", ready)
	}
}

func TestRecordScoreKeepsHighScores(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	activatePlayer(t, svc, 1, 1, "Red Course", 1)
	playHoles(t, svc, 1, "Red Course", 1, 14)

	card, err := svc.PlayerScorecard(ctx, testTournament, 1)
	if err != nil {
		t.Fatalf("scorecard: %v", err)
	}
	if card.Holes[0].Score == nil || *card.Holes[0].Score != 14 || card.Total != 14 {
		t.Fatalf("expected 14 stored on hole 1, got %+v", card.Holes[0])
	}
	if _, err := svc.UpdateLeaderboard(ctx, testTournament); err != nil {
		t.Fatalf("update leaderboard: %v", err)
	}
	board, err := svc.PlayerLeaderboard(ctx, testTournament)
	if err != nil {
		t.Fatalf("player leaderboard: %v", err)
	}
	if len(board) != 1 || board[0].Total != 14 {
		t.Fatalf("unexpected leaderboard: %+v", board)
	}
}

func TestActivateResetsAggregates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	activatePlayer(t, svc, 2, 4, "Red Course", 1)
	playHoles(t, svc, 4, "Red Course", 1, 3, 4, 5)
	if _, err := svc.UpdateLeaderboard(ctx, testTournament); err != nil {
		t.Fatalf("update leaderboard: %v", err)
	}

	team, err := svc.ActivateTeamRound(ctx, ActivateTeamRequest{Tournament: testTournament, Team: 2, Course: "Black Course", Hole: 7})
	if err != nil {
		t.Fatalf("activate team: %v", err)
	}
	if team.Status != models.StatusActive || team.Total != 0 || team.Average != 0 || team.Rank != 0 {
		t.Fatalf("unexpected team round: %+v", team.Round)
	}
	if team.StartingHole != 7 || team.CurrentHole != 7 || team.CourseName != "Black Course" {
		t.Fatalf("unexpected hole pointers: %+v", team.Round)
	}

	pr := activatePlayer(t, svc, 2, 4, "Black Course", 7)
	if pr.Total != 0 || pr.Average != 0 || pr.Rank != 0 || pr.Refreshed {
		t.Fatalf("player round not zeroed: %+v", pr.Round)
	}
	board, err := svc.PlayerLeaderboard(ctx, testTournament)
	if err != nil {
		t.Fatalf("player leaderboard: %v", err)
	}
	if len(board) != 0 {
		t.Fatalf("reactivated round still listed: %+v", board)
	}
}

func TestReactivateOnNewCourseDropsOldScores(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	activatePlayer(t, svc, 2, 4, "Red Course", 1)
	playHoles(t, svc, 4, "Red Course", 1, 3, 4, 5)

	activatePlayer(t, svc, 2, 4, "Black Course", 7)
	pr := playHoles(t, svc, 4, "Black Course", 7, repeat(3, rotation.Holes)...)
	if pr.Status != models.StatusComplete {
		t.Fatalf("expected complete round, got %s", pr.Status)
	}
	if _, err := svc.UpdateLeaderboard(ctx, testTournament); err != nil {
		t.Fatalf("update leaderboard: %v", err)
	}

	board, err := svc.PlayerLeaderboard(ctx, testTournament)
	if err != nil {
		t.Fatalf("player leaderboard: %v", err)
	}
	if len(board) != 1 || board[0].Total != 54 || board[0].HolesPlayed != rotation.Holes {
		t.Fatalf("unexpected leaderboard: %+v", board)
	}
	card, err := svc.PlayerScorecard(ctx, testTournament, 4)
	if err != nil {
		t.Fatalf("scorecard: %v", err)
	}
	if card.Total != board[0].Total || card.HolesPlayed != board[0].HolesPlayed {
		t.Fatalf("scorecard %d/%d disagrees with leaderboard %d/%d",
			card.Total, card.HolesPlayed, board[0].Total, board[0].HolesPlayed)
	}
}

func TestActivateRejectsFinishedRounds(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	activatePlayer(t, svc, 1, 1, "Red Course", 1)
	playHoles(t, svc, 1, "Red Course", 1, 3, 4)
	if _, err := svc.EndPlayerRound(ctx, testTournament, 1); err != nil {
		t.Fatalf("end player round: %v", err)
	}

	_, err := svc.ActivatePlayerRound(ctx, ActivatePlayerRequest{
		Tournament: testTournament, Team: 1, Player: 1, Course: "Black Course", Hole: 9,
	})
	requireCode(t, err, apperrors.CodeInvalidState)
	view, err := svc.PlayerCurrentHole(ctx, testTournament, 1)
	if err != nil {
		t.Fatalf("current hole: %v", err)
	}
	if view.Status != models.StatusComplete || view.CourseName != "Red Course" || view.StartingHole != 1 || view.HolesPlayed != 2 {
		t.Fatalf("rejected activation mutated complete round: %+v", view)
	}

	if _, err := svc.EndTournament(ctx, testTournament); err != nil {
		t.Fatalf("end tournament: %v", err)
	}
	_, err = svc.ActivateTeamRound(ctx, ActivateTeamRequest{Tournament: testTournament, Team: 2, Course: "Red Course", Hole: 3})
	requireCode(t, err, apperrors.CodeInvalidState)
	_, err = svc.ActivatePlayerRound(ctx, ActivatePlayerRequest{
		Tournament: testTournament, Team: 1, Player: 1, Course: "Red Course", Hole: 1,
	})
	requireCode(t, err, apperrors.CodeInvalidState)

	team, err := svc.TeamCurrentHole(ctx, testTournament, 2)
	if err != nil {
		t.Fatalf("team current hole: %v", err)
	}
	if team.Status != models.StatusDone || team.StartingHole != 0 || team.CourseName != "" {
		t.Fatalf("rejected activation mutated done team round: %+v", team)
	}
	card, err := svc.PlayerScorecard(ctx, testTournament, 1)
	if err != nil {
		t.Fatalf("scorecard: %v", err)
	}
	if card.Status != models.StatusDone || card.Total != 7 || card.HolesPlayed != 2 {
		t.Fatalf("rejected activation mutated done player round: %+v", card)
	}
}

func TestScoringRequiresActiveTournament(t *testing.T) {
	f := fixture.Generate(testTournament, 2, 2)
	f.Tournaments[0].Active = false
	svc := serviceFor(t, f)
	ctx := context.Background()

	if _, err := svc.ActivateTeamRound(ctx, ActivateTeamRequest{Tournament: testTournament, Team: 1, Course: "Red Course", Hole: 1}); err != nil {
		t.Fatalf("activate team: %v", err)
	}
	activatePlayer(t, svc, 1, 1, "Red Course", 1)

	_, err := svc.RecordScore(ctx, RecordScoreRequest{Tournament: testTournament, Player: 1, Course: "Red Course", Hole: 1, Score: 3})
	requireCode(t, err, apperrors.CodeInvalidState)
	_, err = svc.RecordTeamScores(ctx, TeamScoresRequest{
		Tournament: testTournament, Course: "Red Course", Hole: 1, Team: 1,
		Scores: []models.PlayerScore{{PlayerNumber: 1, Score: 3}},
	})
	requireCode(t, err, apperrors.CodeInvalidState)

	view, err := svc.PlayerCurrentHole(ctx, testTournament, 1)
	if err != nil {
		t.Fatalf("current hole: %v", err)
	}
	if view.HolesPlayed != 0 || view.CurrentHole != 1 {
		t.Fatalf("inactive tournament accepted a score: %+v", view)
	}
}

func TestActivateRejectsUnknownPaths(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.ActivateTeamRound(ctx, ActivateTeamRequest{Tournament: testTournament, Team: 9, Course: "Red Course", Hole: 1})
	requireCode(t, err, apperrors.CodeNotFound)
	_, err = svc.ActivateTeamRound(ctx, ActivateTeamRequest{Tournament: testTournament, Team: 1, Course: "Green Course", Hole: 1})
	requireCode(t, err, apperrors.CodeNotFound)
	_, err = svc.ActivatePlayerRound(ctx, ActivatePlayerRequest{Tournament: testTournament, Team: 1, Player: 4, Course: "Red Course", Hole: 1})
	requireCode(t, err, apperrors.CodeNotFound)
	_, err = svc.ActivatePlayerRound(ctx, ActivatePlayerRequest{Tournament: testTournament, Team: 1, Player: 1, Course: "Red Course", Hole: 0})
	requireCode(t, err, apperrors.CodeInvalidArgument)

	view, err := svc.TeamCurrentHole(ctx, testTournament, 1)
	if err != nil {
		t.Fatalf("team current hole: %v", err)
	}
	if view.Status != models.StatusReady {
		t.Fatalf("failed activation mutated team round: %+v", view)
	}
}

func TestRecordTeamScoresAdvancesBothPointers(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	if _, err := svc.ActivateTeamRound(ctx, ActivateTeamRequest{Tournament: testTournament, Team: 1, Course: "Red Course", Hole: 18}); err != nil {
		t.Fatalf("activate team: %v", err)
	}
	for _, p := range []int{1, 2, 3} {
		activatePlayer(t, svc, 1, p, "Red Course", 18)
	}

	res, err := svc.RecordTeamScores(ctx, TeamScoresRequest{
		Tournament: testTournament, Course: "Red Course", Hole: 18, Team: 1,
		Scores: []models.PlayerScore{{PlayerNumber: 1, Score: 2}, {PlayerNumber: 2, Score: 3}, {PlayerNumber: 3, Score: 4}},
	})
	if err != nil {
		t.Fatalf("team scores: %v", err)
	}
	if res.Team.CurrentHole != 1 {
		t.Fatalf("expected team to move to hole 1, got %d", res.Team.CurrentHole)
	}
	if len(res.Players) != 3 {
		t.Fatalf("expected three player rounds, got %d", len(res.Players))
	}
	for _, pr := range res.Players {
		if pr.CurrentHole != 1 {
			t.Fatalf("player %d at hole %d, want 1", pr.PlayerNumber, pr.CurrentHole)
		}
	}

	_, err = svc.RecordTeamScores(ctx, TeamScoresRequest{
		Tournament: testTournament, Course: "Red Course", Hole: 1, Team: 1,
		Scores: []models.PlayerScore{{PlayerNumber: 1, Score: 3}, {PlayerNumber: 5, Score: 3}},
	})
	requireCode(t, err, apperrors.CodeNotFound)

	view, err := svc.PlayerCurrentHole(ctx, testTournament, 1)
	if err != nil {
		t.Fatalf("current hole: %v", err)
	}
	if view.HolesPlayed != 1 || view.CurrentHole != 1 {
		t.Fatalf("rejected team submission left changes behind: %+v", view)
	}

	summary, err := svc.EndTeamRound(ctx, testTournament, 1)
	if err != nil {
		t.Fatalf("end team round: %v", err)
	}
	if summary.Total != 9 || summary.Average != 3 || summary.HolesPlayed != 1 {
		t.Fatalf("unexpected team summary: %+v", summary)
	}
}

func TestRecordTeamScoresRequiresActiveTeam(t *testing.T) {
	svc := newTestService(t)
	activatePlayer(t, svc, 1, 1, "Red Course", 1)
	_, err := svc.RecordTeamScores(context.Background(), TeamScoresRequest{
		Tournament: testTournament, Course: "Red Course", Hole: 1, Team: 1,
		Scores: []models.PlayerScore{{PlayerNumber: 1, Score: 3}},
	})
	requireCode(t, err, apperrors.CodeInvalidState)
}

func TestLeaderboardRanksPlayers(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	for _, p := range []int{1, 2, 3} {
		activatePlayer(t, svc, 1, p, "Red Course", 1)
	}
	playHoles(t, svc, 1, "Red Course", 1, repeat(9, 8)...)             // 72
	playHoles(t, svc, 2, "Red Course", 1, append(repeat(11, 6), 2)...) // 68
	playHoles(t, svc, 3, "Red Course", 1, append(repeat(11, 6), 9)...) // 75

	affected, err := svc.UpdateLeaderboard(ctx, testTournament)
	if err != nil {
		t.Fatalf("update leaderboard: %v", err)
	}
	if affected.PlayerRounds != 3 || affected.TeamRounds != 0 {
		t.Fatalf("unexpected affected counts: %+v", affected)
	}
	board, err := svc.PlayerLeaderboard(ctx, testTournament)
	if err != nil {
		t.Fatalf("player leaderboard: %v", err)
	}
	want := []struct{ player, total, rank int }{{2, 68, 1}, {1, 72, 2}, {3, 75, 3}}
	if len(board) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(board))
	}
	for i, w := range want {
		if board[i].PlayerNumber != w.player || board[i].Total != w.total || board[i].Rank != w.rank {
			t.Fatalf("row %d = %+v, want player %d total %d rank %d", i, board[i], w.player, w.total, w.rank)
		}
	}
}

func TestLeaderboardUnknownTournament(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, err := svc.TeamLeaderboard(ctx, "Nope")
	requireCode(t, err, apperrors.CodeNotFound)
	_, err = svc.UpdateLeaderboard(ctx, "Nope")
	requireCode(t, err, apperrors.CodeNotFound)
	if _, err := svc.UpdateLeaderboard(ctx, ""); err != nil {
		t.Fatalf("update every tournament: %v", err)
	}
}

func TestEndPlayerRound(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.EndPlayerRound(ctx, testTournament, 5)
	requireCode(t, err, apperrors.CodeInvalidState)

	activatePlayer(t, svc, 2, 5, "Red Course", 3)
	playHoles(t, svc, 5, "Red Course", 3, 2, 3, 4)
	summary, err := svc.EndPlayerRound(ctx, testTournament, 5)
	if err != nil {
		t.Fatalf("end player round: %v", err)
	}
	if summary.Total != 9 || summary.Average != 3 || summary.HolesPlayed != 3 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	_, err = svc.RecordScore(ctx, RecordScoreRequest{Tournament: testTournament, Player: 5, Course: "Red Course", Hole: 6, Score: 3})
	requireCode(t, err, apperrors.CodeInvalidState)

	board, err := svc.PlayerLeaderboard(ctx, testTournament)
	if err != nil {
		t.Fatalf("player leaderboard: %v", err)
	}
	if len(board) != 1 || board[0].Status != models.StatusComplete || board[0].CurrentHole != 0 {
		t.Fatalf("ended round not listed as complete: %+v", board)
	}
}

func TestEndTournamentMatchesRefresh(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	if _, err := svc.ActivateTeamRound(ctx, ActivateTeamRequest{Tournament: testTournament, Team: 2, Course: "Red Course", Hole: 2}); err != nil {
		t.Fatalf("activate team: %v", err)
	}
	activatePlayer(t, svc, 2, 4, "Red Course", 2)
	activatePlayer(t, svc, 2, 6, "Red Course", 2)
	playHoles(t, svc, 4, "Red Course", 2, 3, 3, 2)
	playHoles(t, svc, 6, "Red Course", 2, 4, 4)

	if _, err := svc.UpdateLeaderboard(ctx, testTournament); err != nil {
		t.Fatalf("update leaderboard: %v", err)
	}
	before, err := svc.PlayerLeaderboard(ctx, testTournament)
	if err != nil {
		t.Fatalf("player leaderboard: %v", err)
	}
	teamsBefore, err := svc.TeamLeaderboard(ctx, testTournament)
	if err != nil {
		t.Fatalf("team leaderboard: %v", err)
	}

	affected, err := svc.EndTournament(ctx, testTournament)
	if err != nil {
		t.Fatalf("end tournament: %v", err)
	}
	if affected.TeamRounds != 4 || affected.PlayerRounds != 12 {
		t.Fatalf("unexpected affected counts: %+v", affected)
	}

	after, err := svc.PlayerLeaderboard(ctx, testTournament)
	if err != nil {
		t.Fatalf("player leaderboard: %v", err)
	}
	if len(after) != len(before) {
		t.Fatalf("expected %d rows after end, got %d", len(before), len(after))
	}
	for i := range after {
		if after[i].Total != before[i].Total || after[i].Rank != before[i].Rank || after[i].Average != before[i].Average {
			t.Fatalf("row %d changed: before %+v after %+v", i, before[i], after[i])
		}
		if after[i].Status != models.StatusDone || !after[i].Completed {
			t.Fatalf("row %d not done: %+v", i, after[i])
		}
	}
	teamsAfter, err := svc.TeamLeaderboard(ctx, testTournament)
	if err != nil {
		t.Fatalf("team leaderboard: %v", err)
	}
	if len(teamsAfter) != 1 || teamsAfter[0].Total != teamsBefore[0].Total || teamsAfter[0].Total != 16 {
		t.Fatalf("unexpected team rows: before %+v after %+v", teamsBefore, teamsAfter)
	}
	if teamsAfter[0].Average != 8 || teamsAfter[0].HolesPlayed != 3 {
		t.Fatalf("unexpected team aggregates: %+v", teamsAfter[0])
	}

	_, err = svc.ActivatePlayerRound(ctx, ActivatePlayerRequest{Tournament: testTournament, Team: 2, Player: 4, Course: "Red Course", Hole: 1})
	requireCode(t, err, apperrors.CodeInvalidState)
}

func TestStartTournamentResetsEverything(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	activatePlayer(t, svc, 3, 8, "Black Course", 4)
	playHoles(t, svc, 8, "Black Course", 4, 3, 3)
	if _, err := svc.EndTournament(ctx, testTournament); err != nil {
		t.Fatalf("end tournament: %v", err)
	}

	for i := 0; i < 2; i++ {
		affected, err := svc.StartTournament(ctx, testTournament)
		if err != nil {
			t.Fatalf("start tournament (pass %d): %v", i+1, err)
		}
		if affected.TeamRounds != 4 || affected.PlayerRounds != 12 {
			t.Fatalf("unexpected affected counts: %+v", affected)
		}
	}

	card, err := svc.PlayerScorecard(ctx, testTournament, 8)
	if err != nil {
		t.Fatalf("scorecard: %v", err)
	}
	if card.Status != models.StatusReady || card.HolesPlayed != 0 || card.CourseName != "" || card.StartingHole != 0 {
		t.Fatalf("round not reset: %+v", card)
	}
	board, err := svc.PlayerLeaderboard(ctx, testTournament)
	if err != nil {
		t.Fatalf("player leaderboard: %v", err)
	}
	if len(board) != 0 {
		t.Fatalf("reset rounds still listed: %+v", board)
	}

	_, err = svc.StartTournament(ctx, "Nope")
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestConcurrentSubmissions(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	for team := 1; team <= 4; team++ {
		for p := 3*team - 2; p <= 3*team; p++ {
			activatePlayer(t, svc, team, p, "Red Course", team)
		}
	}

	var wg sync.WaitGroup
	errs := make(chan error, 12)
	for p := 1; p <= 12; p++ {
		wg.Add(1)
		go func(player int) {
			defer wg.Done()
			start := (player-1)/3 + 1
			seq, _ := rotation.Sequence(start)
			for _, hole := range seq {
				_, err := svc.RecordScore(ctx, RecordScoreRequest{
					Tournament: testTournament, Player: player, Course: "Red Course", Hole: hole, Score: 2,
				})
				if err != nil {
					errs <- err
					return
				}
			}
		}(p)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent submission: %v", err)
	}

	if _, err := svc.UpdateLeaderboard(ctx, testTournament); err != nil {
		t.Fatalf("update leaderboard: %v", err)
	}
	board, err := svc.PlayerLeaderboard(ctx, testTournament)
	if err != nil {
		t.Fatalf("player leaderboard: %v", err)
	}
	if len(board) != 12 {
		t.Fatalf("expected 12 rows, got %d", len(board))
	}
	for i, row := range board {
		if row.Total != 36 || row.Status != models.StatusComplete || row.Rank != i+1 {
			t.Fatalf("unexpected row %d: %+v", i, row)
		}
	}
}

func TestCanceledContextMutatesNothing(t *testing.T) {
	svc := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.StartTournament(ctx, testTournament)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
