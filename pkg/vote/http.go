package vote

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/framefest/platform/pkg/common/logger"
	"github.com/framefest/platform/pkg/contest"
	"github.com/framefest/platform/pkg/entry"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const voterTokenHeader = "X-Voter-Token"

type Handler struct {
	service  *Service
	entries  *entry.Service
	contests *contest.Service
	byOrigin OriginHasher
	byToken  TokenStrategy
}

func NewHandler(service *Service, entries *entry.Service, contests *contest.Service) *Handler {
	return &Handler{service: service, entries: entries, contests: contests}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/entries/{id}/vote", h.handleToggle).Methods(http.MethodPost)
	r.HandleFunc("/entries/{id}/vote", h.handleStatus).Methods(http.MethodGet)
}

func (h *Handler) RegisterAdmin(r *mux.Router) {
	r.HandleFunc("/entries/{id}/votes/recompute", h.handleRecompute).Methods(http.MethodPost)
}

func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	entryID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid entry id", http.StatusBadRequest)
		return
	}

	e, err := h.entries.Get(r.Context(), entryID)
	if err != nil {
		if errors.Is(err, entry.ErrNotFound) {
			http.Error(w, "entry not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to load entry for vote")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// Phase gating happens here, at the call site, so the engine stays
	// reusable for admin contexts that are not phase-bound.
	c, err := h.contests.Get(r.Context(), e.ContestID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to load contest for vote")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !contest.VotingOpen(contest.ResolvePhase(c, time.Now().UTC())) {
		http.Error(w, ErrVotingClosed.Error(), http.StatusForbidden)
		return
	}

	result, err := h.service.Toggle(r.Context(), entryID, h.voterID(r, entryID))
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyVoted):
			http.Error(w, "already voted", http.StatusConflict)
		case errors.Is(err, ErrNotVotable):
			http.Error(w, "entry is not votable", http.StatusConflict)
		default:
			logger.Log.WithError(err).Error("failed to toggle vote")
			http.Error(w, "failed to toggle vote", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	entryID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid entry id", http.StatusBadRequest)
		return
	}

	voted, err := h.service.HasVoted(r.Context(), entryID, h.voterID(r, entryID))
	if err != nil {
		logger.Log.WithError(err).Error("failed to read vote status")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	count, err := h.service.Count(r.Context(), entryID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to count votes")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"voted": voted, "vote_count": count})
}

func (h *Handler) handleRecompute(w http.ResponseWriter, r *http.Request) {
	entryID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid entry id", http.StatusBadRequest)
		return
	}

	count, err := h.service.Recompute(r.Context(), entryID)
	if err != nil {
		if errors.Is(err, entry.ErrNotFound) {
			http.Error(w, "entry not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to recompute vote count")
		http.Error(w, "failed to recompute vote count", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entry_id": entryID, "vote_count": count})
}

// voterID picks the identity strategy: a client-issued token when the caller
// presents one, the network origin otherwise.
func (h *Handler) voterID(r *http.Request, entryID uuid.UUID) string {
	if token := strings.TrimSpace(r.Header.Get(voterTokenHeader)); token != "" {
		return h.byToken.Derive(token, entryID.String())
	}
	return h.byOrigin.Derive(requestOrigin(r), entryID.String())
}

func requestOrigin(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if origin := strings.TrimSpace(parts[0]); origin != "" {
			return origin
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.WithError(err).Error("failed to encode response")
	}
}
