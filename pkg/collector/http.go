package collector

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/framefest/platform/pkg/common/logger"
	"github.com/framefest/platform/pkg/contest"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Handler is the collector-service surface: on-demand runs and run logs.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/collect", h.handleCollectAll).Methods(http.MethodPost)
	r.HandleFunc("/collect/{id}", h.handleCollectContest).Methods(http.MethodPost)
	r.HandleFunc("/contests/{id}/collection-logs", h.handleLogs).Methods(http.MethodGet)
}

func (h *Handler) handleCollectAll(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.CollectAll(r.Context())
	if err != nil {
		if errors.Is(err, ErrMissingCredentials) {
			http.Error(w, err.Error(), http.StatusPreconditionFailed)
			return
		}
		logger.Log.WithError(err).Error("failed to run collection")
		http.Error(w, "failed to run collection", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": summaries})
}

func (h *Handler) handleCollectContest(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid contest id", http.StatusBadRequest)
		return
	}

	summary, err := h.service.CollectForContest(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingCredentials):
			http.Error(w, err.Error(), http.StatusPreconditionFailed)
		case errors.Is(err, contest.ErrNotFound):
			http.Error(w, "contest not found", http.StatusNotFound)
		default:
			logger.Log.WithError(err).Error("failed to run collection for contest")
			http.Error(w, "failed to run collection", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleLogs(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid contest id", http.StatusBadRequest)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	logs, err := h.service.Logs(r.Context(), id, limit)
	if err != nil {
		logger.Log.WithError(err).Error("failed to list collection logs")
		http.Error(w, "failed to list collection logs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": logs})
}

// TriggerHandler lives in the contest-service: it requests an asynchronous
// run by publishing a collect.requested event the collector-service consumes.
type TriggerHandler struct {
	publisher EventPublisher
}

func NewTriggerHandler(publisher EventPublisher) *TriggerHandler {
	return &TriggerHandler{publisher: publisher}
}

func (h *TriggerHandler) Register(r *mux.Router) {
	r.HandleFunc("/contests/{id}/collect", h.handleTrigger).Methods(http.MethodPost)
}

func (h *TriggerHandler) handleTrigger(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid contest id", http.StatusBadRequest)
		return
	}

	err = h.publisher.PublishEvent(r.Context(), "collect.requested", "contest-service", map[string]interface{}{
		"contest_id": id.String(),
	})
	if err != nil {
		logger.Log.WithError(err).Error("failed to request collection run")
		http.Error(w, "failed to request collection run", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]interface{}{"contest_id": id, "status": "requested"})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.WithError(err).Error("failed to encode response")
	}
}
