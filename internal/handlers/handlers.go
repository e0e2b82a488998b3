package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	apperrors "github.com/antigravity/tournamentRounds/internal/errors"
	"github.com/antigravity/tournamentRounds/internal/models"
	"github.com/antigravity/tournamentRounds/internal/tournament"
)

// Handler exposes the round lifecycle as JSON over HTTP.
type Handler struct {
	svc *tournament.Service
}

func New(svc *tournament.Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts every endpoint on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", h.HealthHandler)                                                // GET
	mux.HandleFunc("/api/tournament/start", h.StartTournamentHandler)                             // POST
	mux.HandleFunc("/api/tournament/end", h.EndTournamentHandler)                                 // POST
	mux.HandleFunc("/api/rounds/team/activate", h.ActivateTeamRoundHandler)                       // POST
	mux.HandleFunc("/api/rounds/player/activate", h.ActivatePlayerRoundHandler)                   // POST
	mux.HandleFunc("/api/rounds/team/end", h.EndTeamRoundHandler)                                 // POST
	mux.HandleFunc("/api/rounds/player/end", h.EndPlayerRoundHandler)                             // POST
	mux.HandleFunc("/api/rounds/current-hole", h.CurrentHoleHandler)                              // GET
	mux.HandleFunc("/api/scores", h.ScoresHandler)                                                // POST
	mux.HandleFunc("/api/scores/team", h.TeamScoresHandler)                                       // POST
	mux.HandleFunc("/api/leaderboard/update", h.UpdateLeaderboardHandler)                         // POST
	mux.Handle("/api/leaderboard/teams", NoCache(http.HandlerFunc(h.TeamLeaderboardHandler)))     // GET
	mux.Handle("/api/leaderboard/players", NoCache(http.HandlerFunc(h.PlayerLeaderboardHandler))) // GET
	mux.Handle("/api/scorecard", NoCache(http.HandlerFunc(h.ScorecardHandler)))                   // GET
}

// NoCache marks responses as uncacheable. Leaderboards change with every
// refresh.
func NoCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}

type tournamentRequest struct {
	Tournament string `json:"tournament_name"`
}

type playerRequest struct {
	Tournament string `json:"tournament_name"`
	Player     int    `json:"player_number"`
}

type teamRequest struct {
	Tournament string `json:"tournament_name"`
	Team       int    `json:"team_number"`
}

type affectedResponse struct {
	Message      string `json:"message"`
	TeamRounds   int    `json:"team_rounds"`
	PlayerRounds int    `json:"player_rounds"`
}

func newAffected(message string, a models.Affected) affectedResponse {
	return affectedResponse{Message: message, TeamRounds: a.TeamRounds, PlayerRounds: a.PlayerRounds}
}

type summaryResponse struct {
	Message string `json:"message"`
	models.RoundSummary
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := h.svc.Ping(r.Context()); err != nil {
		log.Printf("health check failed: %v", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) StartTournamentHandler(w http.ResponseWriter, r *http.Request) {
	var req tournamentRequest
	if !decodePost(w, r, &req) {
		return
	}
	affected, err := h.svc.StartTournament(r.Context(), req.Tournament)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newAffected(fmt.Sprintf("tournament %q started", req.Tournament), affected))
}

func (h *Handler) EndTournamentHandler(w http.ResponseWriter, r *http.Request) {
	var req tournamentRequest
	if !decodePost(w, r, &req) {
		return
	}
	affected, err := h.svc.EndTournament(r.Context(), req.Tournament)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newAffected(fmt.Sprintf("tournament %q ended", req.Tournament), affected))
}

func (h *Handler) ActivateTeamRoundHandler(w http.ResponseWriter, r *http.Request) {
	var req tournament.ActivateTeamRequest
	if !decodePost(w, r, &req) {
		return
	}
	round, err := h.svc.ActivateTeamRound(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, round)
}

func (h *Handler) ActivatePlayerRoundHandler(w http.ResponseWriter, r *http.Request) {
	var req tournament.ActivatePlayerRequest
	if !decodePost(w, r, &req) {
		return
	}
	round, err := h.svc.ActivatePlayerRound(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, round)
}

func (h *Handler) EndTeamRoundHandler(w http.ResponseWriter, r *http.Request) {
	var req teamRequest
	if !decodePost(w, r, &req) {
		return
	}
	summary, err := h.svc.EndTeamRound(r.Context(), req.Tournament, req.Team)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{Message: fmt.Sprintf("team %d round ended", req.Team), RoundSummary: summary})
}

func (h *Handler) EndPlayerRoundHandler(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if !decodePost(w, r, &req) {
		return
	}
	summary, err := h.svc.EndPlayerRound(r.Context(), req.Tournament, req.Player)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{Message: fmt.Sprintf("player %d round ended", req.Player), RoundSummary: summary})
}

// CurrentHoleHandler answers for a player when player_number is given and
// for a team otherwise.
func (h *Handler) CurrentHoleHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	tour := q.Get("tournament_name")

	var (
		view models.CurrentHole
		err  error
	)
	switch {
	case q.Get("player_number") != "":
		player, ok := queryInt(w, r, "player_number")
		if !ok {
			return
		}
		view, err = h.svc.PlayerCurrentHole(r.Context(), tour, player)
	case q.Get("team_number") != "":
		team, ok := queryInt(w, r, "team_number")
		if !ok {
			return
		}
		view, err = h.svc.TeamCurrentHole(r.Context(), tour, team)
	default:
		http.Error(w, "Missing player_number or team_number", http.StatusBadRequest)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) ScoresHandler(w http.ResponseWriter, r *http.Request) {
	var req tournament.RecordScoreRequest
	if !decodePost(w, r, &req) {
		return
	}
	round, err := h.svc.RecordScore(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, round)
}

func (h *Handler) TeamScoresHandler(w http.ResponseWriter, r *http.Request) {
	var req tournament.TeamScoresRequest
	if !decodePost(w, r, &req) {
		return
	}
	result, err := h.svc.RecordTeamScores(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// UpdateLeaderboardHandler refreshes every tournament when the body names
// none. An empty body is accepted.
func (h *Handler) UpdateLeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req tournamentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	affected, err := h.svc.UpdateLeaderboard(r.Context(), req.Tournament)
	if err != nil {
		writeError(w, err)
		return
	}
	message := "leaderboards updated"
	if req.Tournament != "" {
		message = fmt.Sprintf("leaderboard of %q updated", req.Tournament)
	}
	writeJSON(w, http.StatusOK, newAffected(message, affected))
}

func (h *Handler) TeamLeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	entries, err := h.svc.TeamLeaderboard(r.Context(), r.URL.Query().Get("tournament_name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) PlayerLeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	entries, err := h.svc.PlayerLeaderboard(r.Context(), r.URL.Query().Get("tournament_name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) ScorecardHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	player, ok := queryInt(w, r, "player_number")
	if !ok {
		return
	}
	card, err := h.svc.PlayerScorecard(r.Context(), r.URL.Query().Get("tournament_name"), player)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func decodePost(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func queryInt(w http.ResponseWriter, r *http.Request, key string) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		http.Error(w, "Missing "+key, http.StatusBadRequest)
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		http.Error(w, "Invalid "+key, http.StatusBadRequest)
		return 0, false
	}
	return n, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("request failed: %v", err)
	}
	http.Error(w, err.Error(), status)
}
