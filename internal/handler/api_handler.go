package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"veritas/ranking-service/internal/models"
	"veritas/ranking-service/internal/service"
	"veritas/ranking-service/pkg/helpers"
	"veritas/ranking-service/pkg/logger"
)

// EventFinder is the slice of the event repository the API needs
type EventFinder interface {
	FindByID(ctx context.Context, id string) (*models.Event, error)
}

// APIHandler exposes the engine operations over a thin JSON surface. The
// engine owns no wire protocol; this layer only maps requests to service
// calls and policy rejections to status codes.
type APIHandler struct {
	votes      service.VoteService
	engagement service.EngagementService
	factCheck  service.FactCheckService
	events     EventFinder
	idGen      *helpers.IDGenerator
	log        *logger.Logger
}

func NewAPIHandler(
	votes service.VoteService,
	engagement service.EngagementService,
	factCheck service.FactCheckService,
	events EventFinder,
	idGen *helpers.IDGenerator,
	log *logger.Logger,
) *APIHandler {
	return &APIHandler{
		votes:      votes,
		engagement: engagement,
		factCheck:  factCheck,
		events:     events,
		idGen:      idGen,
		log:        log,
	}
}

// Router returns the configured HTTP router
func (h *APIHandler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.requestID)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/events/{eventID}/votes", h.castVote).Methods("POST")
	api.HandleFunc("/events/{eventID}/views", h.recordView).Methods("POST")
	api.HandleFunc("/events/{eventID}/likes", h.recordLike).Methods("POST")
	api.HandleFunc("/events/{eventID}/likes/{userID}", h.recordUnlike).Methods("DELETE")
	api.HandleFunc("/events/{eventID}/comments", h.recordComment).Methods("POST")
	api.HandleFunc("/events/{eventID}/shares", h.recordShare).Methods("POST")
	api.HandleFunc("/events/{eventID}/fact-check", h.runFactCheck).Methods("POST")

	r.HandleFunc("/health", h.health).Methods("GET")

	return r
}

// requestID tags every request with an X-Request-ID, echoing the caller's
// when one is supplied, so log lines can be tied back to a request
func (h *APIHandler) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = h.idGen.GenerateUUID()
		}
		w.Header().Set("X-Request-ID", id)
		h.log.WithRequestID(id).
			WithField("method", r.Method).
			WithField("path", r.URL.Path).
			Debug("handling request")
		next.ServeHTTP(w, r)
	})
}

type voteRequest struct {
	UserID    uint64 `json:"user_id"`
	Direction string `json:"direction"`
}

type engagementRequest struct {
	UserID  uint64 `json:"user_id"`
	Content string `json:"content,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *APIHandler) castVote(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["eventID"]

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	direction := models.VoteDirection(req.Direction)
	switch direction {
	case models.VoteUp, models.VoteDown, models.VoteNone:
	default:
		writeError(w, http.StatusBadRequest, "invalid vote direction")
		return
	}

	err := h.votes.CastVote(r.Context(), req.UserID, eventID, direction)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

func (h *APIHandler) recordView(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["eventID"]
	if err := h.engagement.RecordView(r.Context(), eventID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

func (h *APIHandler) recordLike(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["eventID"]

	var req engagementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.engagement.RecordLike(r.Context(), eventID, req.UserID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

func (h *APIHandler) recordUnlike(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	eventID := vars["eventID"]
	userID, err := strconv.ParseUint(vars["userID"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.engagement.RecordUnlike(r.Context(), eventID, userID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

func (h *APIHandler) recordComment(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["eventID"]

	var req engagementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.engagement.RecordComment(r.Context(), eventID, req.UserID, req.Content); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

func (h *APIHandler) recordShare(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["eventID"]

	var req engagementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.engagement.RecordShare(r.Context(), eventID, req.UserID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

// runFactCheck triggers the aggregation pipeline for one event and settles
// vote alignment once the verdict is in
func (h *APIHandler) runFactCheck(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["eventID"]

	event, err := h.events.FindByID(r.Context(), eventID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if event == nil {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}

	result, err := h.factCheck.FactCheck(r.Context(), event)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	if err := h.votes.SettleConsensus(r.Context(), eventID); err != nil {
		h.log.WithEventID(eventID).WithField("error", err.Error()).
			Warn("failed to settle vote consensus")
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"credibility_score": result.CredibilityScore,
		"verified":          result.Verified,
		"accepted":          result.Accepted,
		"rejection_reasons": result.RejectionReasons,
		"summary":           result.Summary,
		"source_domains":    result.SourceDomains,
	})
}

func (h *APIHandler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeServiceError maps policy rejections to their user-visible status
// codes; anything else is a server error
func (h *APIHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrVoteRateLimited), errors.Is(err, service.ErrCommentRateLimited):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, service.ErrContentFlagged):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrEventNotFound), errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrDuplicateVote), errors.Is(err, service.ErrAlreadyLiked), errors.Is(err, service.ErrNotLiked):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.log.WithField("error", err.Error()).Error("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
