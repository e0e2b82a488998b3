package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/antigravity/tournamentRounds/internal/models"
	"github.com/antigravity/tournamentRounds/internal/tournament"
)

// Client calls the round server's JSON endpoints.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the server at baseURL. A nil httpClient
// uses http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

type tournamentBody struct {
	Tournament string `json:"tournament_name"`
}

type playerBody struct {
	Tournament string `json:"tournament_name"`
	Player     int    `json:"player_number"`
}

type teamBody struct {
	Tournament string `json:"tournament_name"`
	Team       int    `json:"team_number"`
}

func (c *Client) StartTournament(ctx context.Context, name string) (models.Affected, error) {
	var out models.Affected
	err := c.post(ctx, "/api/tournament/start", tournamentBody{Tournament: name}, &out)
	return out, err
}

func (c *Client) UpdateLeaderboard(ctx context.Context, name string) (models.Affected, error) {
	var out models.Affected
	err := c.post(ctx, "/api/leaderboard/update", tournamentBody{Tournament: name}, &out)
	return out, err
}

func (c *Client) ActivateTeamRound(ctx context.Context, req tournament.ActivateTeamRequest) error {
	return c.post(ctx, "/api/rounds/team/activate", req, nil)
}

func (c *Client) ActivatePlayerRound(ctx context.Context, req tournament.ActivatePlayerRequest) error {
	return c.post(ctx, "/api/rounds/player/activate", req, nil)
}

func (c *Client) RecordTeamScores(ctx context.Context, req tournament.TeamScoresRequest) (tournament.TeamScoresResult, error) {
	var out tournament.TeamScoresResult
	err := c.post(ctx, "/api/scores/team", req, &out)
	return out, err
}

func (c *Client) EndPlayerRound(ctx context.Context, name string, player int) (models.RoundSummary, error) {
	var out models.RoundSummary
	err := c.post(ctx, "/api/rounds/player/end", playerBody{Tournament: name, Player: player}, &out)
	return out, err
}

func (c *Client) EndTeamRound(ctx context.Context, name string, team int) (models.RoundSummary, error) {
	var out models.RoundSummary
	err := c.post(ctx, "/api/rounds/team/end", teamBody{Tournament: name, Team: team}, &out)
	return out, err
}

func (c *Client) TeamLeaderboard(ctx context.Context, name string) ([]models.TeamLeaderboardEntry, error) {
	var out []models.TeamLeaderboardEntry
	err := c.get(ctx, "/api/leaderboard/teams", url.Values{"tournament_name": {name}}, &out)
	return out, err
}

func (c *Client) TeamCurrentHole(ctx context.Context, name string, team int) (models.CurrentHole, error) {
	var out models.CurrentHole
	q := url.Values{"tournament_name": {name}, "team_number": {strconv.Itoa(team)}}
	err := c.get(ctx, "/api/rounds/current-hole", q, &out)
	return out, err
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: %s: %s", req.Method, req.URL.Path, resp.Status, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		_, err := io.Copy(io.Discard, resp.Body)
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", req.URL.Path, err)
	}
	return nil
}
