package models

// Status is the lifecycle state of a team or player round.
type Status string

const (
	StatusReady    Status = "ready"
	StatusActive   Status = "active"
	StatusComplete Status = "complete"
	StatusDone     Status = "done"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusReady, StatusActive, StatusComplete, StatusDone:
		return true
	}
	return false
}

// Completed is the boolean view of a finished round.
func (s Status) Completed() bool {
	return s == StatusComplete || s == StatusDone
}

// Scoring reports whether the leaderboard recomputes rounds in this status.
// Ready rounds have not started and done rounds are frozen.
func (s Status) Scoring() bool {
	return s == StatusActive || s == StatusComplete
}

type Tournament struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

type Course struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Par  int    `json:"par"`
}

type Hole struct {
	ID       int64  `json:"id"`
	CourseID int64  `json:"course_id"`
	Number   int    `json:"number"`
	Name     string `json:"name"`
	Par      int    `json:"par"`
}

// Round holds the fields shared by team and player rounds. Hole pointers are
// hole numbers on the round's course; zero means unset.
type Round struct {
	ID           int64   `json:"id"`
	TournamentID int64   `json:"tournament_id"`
	CourseID     int64   `json:"course_id,omitempty"`
	CourseName   string  `json:"course_name,omitempty"`
	Status       Status  `json:"status"`
	Total        int     `json:"total"`
	Average      float64 `json:"average"`
	Rank         int     `json:"rank"`
	StartingHole int     `json:"starting_hole,omitempty"`
	CurrentHole  int     `json:"current_hole,omitempty"`
	Refreshed    bool    `json:"refreshed"`
}

type TeamRound struct {
	Round
	TeamID     int64  `json:"team_id"`
	TeamNumber int    `json:"team_number"`
	TeamName   string `json:"team_name"`
}

type PlayerRound struct {
	Round
	TeamRoundID  int64  `json:"team_round_id"`
	PlayerID     int64  `json:"player_id"`
	PlayerNumber int    `json:"player_number"`
	PlayerName   string `json:"player_name"`
	TeamNumber   int    `json:"team_number"`
}

type Score struct {
	PlayerRoundID int64 `json:"player_round_id"`
	HoleID        int64 `json:"hole_id"`
	HoleNumber    int   `json:"hole_number"`
	Score         int   `json:"score"`
}

// PlayerScore is one entry of a team score submission.
type PlayerScore struct {
	PlayerNumber int `json:"player_number"`
	Score        int `json:"score"`
}

type TeamLeaderboardEntry struct {
	TeamNumber   int     `json:"team_number"`
	TeamName     string  `json:"team_name"`
	Total        int     `json:"total"`
	Average      float64 `json:"average"`
	Rank         int     `json:"rank"`
	HolesPlayed  int     `json:"holes_played"`
	StartingHole int     `json:"starting_hole,omitempty"`
	CurrentHole  int     `json:"current_hole,omitempty"`
	Status       Status  `json:"status"`
	Completed    bool    `json:"completed"`
}

type PlayerLeaderboardEntry struct {
	PlayerNumber int     `json:"player_number"`
	PlayerName   string  `json:"player_name"`
	TeamNumber   int     `json:"team_number"`
	Total        int     `json:"total"`
	Average      float64 `json:"average"`
	Rank         int     `json:"rank"`
	HolesPlayed  int     `json:"holes_played"`
	StartingHole int     `json:"starting_hole,omitempty"`
	CurrentHole  int     `json:"current_hole,omitempty"`
	Status       Status  `json:"status"`
	Completed    bool    `json:"completed"`
}

// CurrentHole is the position of one round within its rotation.
type CurrentHole struct {
	Tournament   string `json:"tournament_name"`
	TeamNumber   int    `json:"team_number,omitempty"`
	PlayerNumber int    `json:"player_number,omitempty"`
	CourseName   string `json:"course_name,omitempty"`
	Status       Status `json:"status"`
	StartingHole int    `json:"starting_hole,omitempty"`
	CurrentHole  int    `json:"current_hole,omitempty"`
	HolesPlayed  int    `json:"holes_played"`
	Completed    bool   `json:"completed"`
}

type ScorecardHole struct {
	Number int    `json:"hole_number"`
	Name   string `json:"name"`
	Par    int    `json:"par"`
	Score  *int   `json:"score,omitempty"`
}

type Scorecard struct {
	Tournament   string          `json:"tournament_name"`
	PlayerNumber int             `json:"player_number"`
	PlayerName   string          `json:"player_name"`
	TeamNumber   int             `json:"team_number"`
	CourseName   string          `json:"course_name,omitempty"`
	Status       Status          `json:"status"`
	StartingHole int             `json:"starting_hole,omitempty"`
	CurrentHole  int             `json:"current_hole,omitempty"`
	Holes        []ScorecardHole `json:"holes"`
	Total        int             `json:"total"`
	ParPlayed    int             `json:"par_played"`
	HolesPlayed  int             `json:"holes_played"`
}

// RoundSummary is returned when a single round is ended manually.
type RoundSummary struct {
	Total       int     `json:"total"`
	Average     float64 `json:"average"`
	HolesPlayed int     `json:"holes_played"`
}

// Affected counts rounds touched by a tournament-wide operation.
type Affected struct {
	TeamRounds   int `json:"team_rounds"`
	PlayerRounds int `json:"player_rounds"`
}
