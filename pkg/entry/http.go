package entry

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/framefest/platform/pkg/common/logger"
	"github.com/framefest/platform/pkg/common/models"
	"github.com/framefest/platform/pkg/contest"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type Handler struct {
	service  *Service
	contests *contest.Service
}

func NewHandler(service *Service, contests *contest.Service) *Handler {
	return &Handler{service: service, contests: contests}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/contests/{id}/entries", h.handleGallery).Methods(http.MethodGet)
	r.HandleFunc("/contests/{id}/entries", h.handleSubmit).Methods(http.MethodPost)
}

func (h *Handler) RegisterAdmin(r *mux.Router) {
	r.HandleFunc("/contests/{id}/entries", h.handleAdminList).Methods(http.MethodGet)
	r.HandleFunc("/entries/{id}/status", h.handleSetStatus).Methods(http.MethodPatch)
	r.HandleFunc("/entries/{id}/award", h.handleSetAward).Methods(http.MethodPatch)
	r.HandleFunc("/entries/bulk-status", h.handleBulkStatus).Methods(http.MethodPost)
}

// handleGallery serves the public entry list. The gallery stays hidden while
// the contest is draft or upcoming; only approved and winner entries are shown.
func (h *Handler) handleGallery(w http.ResponseWriter, r *http.Request) {
	contestID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid contest id", http.StatusBadRequest)
		return
	}

	c, err := h.contests.Get(r.Context(), contestID)
	if err != nil {
		if errors.Is(err, contest.ErrNotFound) {
			http.Error(w, "contest not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to load contest for gallery")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	phase := contest.ResolvePhase(c, time.Now().UTC())
	if !contest.GalleryVisible(phase) {
		http.Error(w, "gallery not available", http.StatusForbidden)
		return
	}

	entries, err := h.service.ListByContest(r.Context(), contestID, []string{StatusApproved, StatusWinner})
	if err != nil {
		logger.Log.WithError(err).Error("failed to list gallery entries")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"phase":       phase,
		"voting_open": contest.VotingOpen(phase),
		"items":       entries,
	})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	contestID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid contest id", http.StatusBadRequest)
		return
	}

	c, err := h.contests.Get(r.Context(), contestID)
	if err != nil {
		if errors.Is(err, contest.ErrNotFound) {
			http.Error(w, "contest not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to load contest for submission")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if !contest.SubmissionOpen(contest.ResolvePhase(c, time.Now().UTC())) {
		http.Error(w, "submissions are closed", http.StatusForbidden)
		return
	}

	var req models.CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	req.ContestID = contestID

	created, err := h.service.Create(r.Context(), req)
	if err != nil {
		if IsValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Log.WithError(err).Error("failed to create entry")
		http.Error(w, "failed to create entry", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"entry": created})
}

func (h *Handler) handleAdminList(w http.ResponseWriter, r *http.Request) {
	contestID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid contest id", http.StatusBadRequest)
		return
	}

	var statuses []string
	if raw := r.URL.Query().Get("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			if !ValidStatus(s) {
				http.Error(w, "invalid status filter", http.StatusBadRequest)
				return
			}
			statuses = append(statuses, s)
		}
	}

	entries, err := h.service.ListByContest(r.Context(), contestID, statuses)
	if err != nil {
		logger.Log.WithError(err).Error("failed to list entries")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": entries})
}

func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid entry id", http.StatusBadRequest)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if err := h.service.SetStatus(r.Context(), id, req.Status); err != nil {
		if IsValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "entry not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to update entry status")
		http.Error(w, "failed to update entry status", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entry_id": id, "status": req.Status})
}

func (h *Handler) handleSetAward(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid entry id", http.StatusBadRequest)
		return
	}

	// A null label clears the award.
	var req struct {
		Label *string `json:"label"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	label := ""
	if req.Label != nil {
		label = *req.Label
	}

	if err := h.service.SetAward(r.Context(), id, label); err != nil {
		if IsValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "entry not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to update entry award")
		http.Error(w, "failed to update entry award", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entry_id": id, "award_label": label})
}

func (h *Handler) handleBulkStatus(w http.ResponseWriter, r *http.Request) {
	var req models.BulkStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if len(req.EntryIDs) == 0 {
		http.Error(w, "entry_ids required", http.StatusBadRequest)
		return
	}

	failures, err := h.service.BulkSetStatus(r.Context(), req.EntryIDs, req.Status)
	if err != nil {
		if IsValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Log.WithError(err).Error("failed to apply bulk status update")
		http.Error(w, "failed to apply bulk status update", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"updated":  len(req.EntryIDs) - len(failures),
		"failures": failures,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.WithError(err).Error("failed to encode response")
	}
}
