package contest

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/framefest/platform/pkg/common/logger"
	"github.com/framefest/platform/pkg/common/models"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/contests", h.handleList).Methods(http.MethodGet)
	r.HandleFunc("/contests/{id}", h.handleGet).Methods(http.MethodGet)
}

func (h *Handler) RegisterAdmin(r *mux.Router) {
	r.HandleFunc("/contests", h.handleCreate).Methods(http.MethodPost)
	r.HandleFunc("/contests/{id}", h.handleUpdate).Methods(http.MethodPatch)
	r.HandleFunc("/contests/{id}", h.handleArchive).Methods(http.MethodDelete)
	r.HandleFunc("/contests/{id}/categories", h.handleCreateCategory).Methods(http.MethodPost)
	r.HandleFunc("/contests/{id}/categories", h.handleListCategories).Methods(http.MethodGet)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req models.CreateContestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	c, err := h.service.Create(r.Context(), req)
	if err != nil {
		if IsValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Log.WithError(err).Error("failed to create contest")
		http.Error(w, "failed to create contest", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"contest": c})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	includeArchived := r.URL.Query().Get("include_archived") == "true"
	contests, err := h.service.List(r.Context(), includeArchived)
	if err != nil {
		logger.Log.WithError(err).Error("failed to list contests")
		http.Error(w, "failed to list contests", http.StatusInternalServerError)
		return
	}

	now := time.Now().UTC()
	items := make([]map[string]interface{}, 0, len(contests))
	for _, c := range contests {
		items = append(items, contestView(c, now))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid contest id", http.StatusBadRequest)
		return
	}
	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "contest not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to get contest")
		http.Error(w, "failed to get contest", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, contestView(c, time.Now().UTC()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid contest id", http.StatusBadRequest)
		return
	}
	var req models.UpdateContestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	c, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		if IsValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "contest not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to update contest")
		http.Error(w, "failed to update contest", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"contest": c})
}

func (h *Handler) handleArchive(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid contest id", http.StatusBadRequest)
		return
	}
	if err := h.service.Archive(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "contest not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to archive contest")
		http.Error(w, "failed to archive contest", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid contest id", http.StatusBadRequest)
		return
	}
	var req models.CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	category, err := h.service.AddCategory(r.Context(), id, req)
	if err != nil {
		if IsValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "contest not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to create category")
		http.Error(w, "failed to create category", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"category": category})
}

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid contest id", http.StatusBadRequest)
		return
	}
	categories, err := h.service.Categories(r.Context(), id)
	if err != nil {
		logger.Log.WithError(err).Error("failed to list categories")
		http.Error(w, "failed to list categories", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": categories})
}

// contestView attaches the derived phase and the affordance flags the public
// screens key off.
func contestView(c models.Contest, now time.Time) map[string]interface{} {
	phase := ResolvePhase(c, now)
	return map[string]interface{}{
		"contest":         c,
		"phase":           phase,
		"gallery_visible": GalleryVisible(phase),
		"submission_open": SubmissionOpen(phase),
		"voting_open":     VotingOpen(phase),
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.WithError(err).Error("failed to encode response")
	}
}
