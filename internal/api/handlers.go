package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fight-club/matchsim/internal/errs"
	"github.com/fight-club/matchsim/internal/match"

	"github.com/go-chi/chi/v5"
)

func (h *routerHandlers) resolveMatch(w http.ResponseWriter, r *http.Request) (MatchHandle, bool) {
	id := chi.URLParam(r, "id")
	m, ok := h.registry.Get(id)
	if !ok {
		writeError(w, "match not found", http.StatusNotFound)
		return nil, false
	}
	return m, true
}

func (h *routerHandlers) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	m, ok := h.resolveMatch(w, r)
	if !ok {
		return
	}
	writeJSON(w, m.GetSnapshot())
}

func (h *routerHandlers) handleSummary(w http.ResponseWriter, r *http.Request) {
	m, ok := h.resolveMatch(w, r)
	if !ok {
		return
	}
	writeJSON(w, m.Summarize())
}

func (h *routerHandlers) handleShout(w http.ResponseWriter, r *http.Request) {
	m, ok := h.resolveMatch(w, r)
	if !ok {
		return
	}

	var req struct {
		PlayerID  string `json:"playerId"`
		ShoutType string `json:"shoutType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	st, ok := match.ParseShoutType(req.ShoutType)
	if !ok {
		writeError(w, "unknown shoutType", http.StatusBadRequest)
		return
	}

	payload := match.Shout{PlayerID: req.PlayerID, ShoutType: st}
	if err := m.ScheduleExternal(match.EventShout, payload, GetClientIP(r)); err != nil {
		writeScheduleError(w, err)
		return
	}
	writeJSON(w, map[string]bool{"accepted": true})
}

func (h *routerHandlers) handleSubstitution(w http.ResponseWriter, r *http.Request) {
	m, ok := h.resolveMatch(w, r)
	if !ok {
		return
	}

	var req struct {
		PlayerOutID  string `json:"playerOutId"`
		PlayerInID   string `json:"playerInId"`
		PositionSlot string `json:"positionSlot"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.PlayerOutID == "" || req.PlayerInID == "" {
		writeError(w, "playerOutId and playerInId are required", http.StatusBadRequest)
		return
	}

	payload := match.Substitution{PlayerOutID: req.PlayerOutID, PlayerInID: req.PlayerInID, PositionSlot: req.PositionSlot}
	if err := m.ScheduleExternal(match.EventSubstitution, payload, GetClientIP(r)); err != nil {
		writeScheduleError(w, err)
		return
	}
	writeJSON(w, map[string]bool{"accepted": true})
}

func (h *routerHandlers) handleTactics(w http.ResponseWriter, r *http.Request) {
	m, ok := h.resolveMatch(w, r)
	if !ok {
		return
	}

	var req struct {
		TeamID       string `json:"teamId"`
		FormationID  string `json:"formationId"`
		Instructions string `json:"instructions"`
		Mentality    string `json:"mentality"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.TeamID == "" {
		writeError(w, "teamId is required", http.StatusBadRequest)
		return
	}

	payload := match.TacticalChange{TeamID: req.TeamID, FormationID: req.FormationID, Instructions: req.Instructions, Mentality: req.Mentality}
	if err := m.ScheduleExternal(match.EventTacticalChange, payload, GetClientIP(r)); err != nil {
		writeScheduleError(w, err)
		return
	}
	writeJSON(w, map[string]bool{"accepted": true})
}

// writeScheduleError maps the errs taxonomy onto HTTP status: constraint
// violations are caller mistakes (400), everything else is a server-side
// scheduling failure (500).
func writeScheduleError(w http.ResponseWriter, err error) {
	if errors.Is(err, errs.ErrConstraint) {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeError(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
