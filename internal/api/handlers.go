// Package api exposes HTTP handlers for the tracker service.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/brn-maker/time-manager-ai2/internal/auth"
	"github.com/brn-maker/time-manager-ai2/internal/domain"
	"github.com/brn-maker/time-manager-ai2/internal/payments"
	"github.com/brn-maker/time-manager-ai2/internal/summary"
)

// Handler coordinates HTTP requests with the domain services.
type Handler struct {
	tracker       *domain.Service
	summaries     *summary.Service
	payments      *payments.Client
	webhook       *payments.Processor
	webhookSecret string
}

// NewHandler builds a Handler.
func NewHandler(tracker *domain.Service, summaries *summary.Service, paymentsClient *payments.Client, webhook *payments.Processor, webhookSecret string) *Handler {
	return &Handler{
		tracker:       tracker,
		summaries:     summaries,
		payments:      paymentsClient,
		webhook:       webhook,
		webhookSecret: webhookSecret,
	}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/activities", h.activities)
	mux.HandleFunc("/v1/activities/summary", h.summarize)
	mux.HandleFunc("/v1/activities/", h.activityByID)
	mux.HandleFunc("/v1/goals", h.goals)
	mux.HandleFunc("/v1/goals/", h.goalByID)
	mux.HandleFunc("/v1/payments/initiate", h.initiatePayment)
	mux.HandleFunc("/v1/payments/webhook", h.paymentWebhook)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) activities(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createActivity(w, r)
	case http.MethodGet:
		h.listActivities(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) activityByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/activities/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing activity id")
		return
	}

	switch r.Method {
	case http.MethodPut:
		h.updateActivity(w, r, id)
	case http.MethodDelete:
		h.deleteActivity(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) createActivity(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireScope(w, r, auth.ScopeTrackerWrite)
	if !ok {
		return
	}

	var req ActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	activity, err := h.tracker.CreateActivity(r.Context(), claims.UserID, req.input())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toActivityView(*activity))
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireScope(w, r, auth.ScopeTrackerRead, auth.ScopeTrackerWrite)
	if !ok {
		return
	}

	query := r.URL.Query()
	var (
		found []domain.Activity
		err   error
	)
	switch {
	case query.Get("date") != "" && query.Get("period") == "":
		found, err = h.tracker.ActivitiesByDate(r.Context(), claims.UserID, query.Get("date"))
	case query.Get("period") != "":
		date := query.Get("date")
		if date == "" {
			date = time.Now().Format(time.DateOnly)
		}
		found, err = h.tracker.ActivitiesByPeriod(r.Context(), claims.UserID, domain.Period(query.Get("period")), date)
	default:
		found, err = h.tracker.Activities(r.Context(), claims.UserID)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items := make([]ActivityView, 0, len(found))
	for _, activity := range found {
		items = append(items, toActivityView(activity))
	}
	writeJSON(w, http.StatusOK, ListActivitiesResponse{Items: items})
}

func (h *Handler) updateActivity(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := requireScope(w, r, auth.ScopeTrackerWrite)
	if !ok {
		return
	}

	var req ActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	activity, err := h.tracker.UpdateActivity(r.Context(), claims.UserID, id, req.input())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityView(*activity))
}

func (h *Handler) deleteActivity(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := requireScope(w, r, auth.ScopeTrackerWrite)
	if !ok {
		return
	}

	if err := h.tracker.DeleteActivity(r.Context(), claims.UserID, id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "activity deleted"})
}

func (h *Handler) summarize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireScope(w, r, auth.ScopeTrackerRead, auth.ScopeTrackerWrite)
	if !ok {
		return
	}

	var req SummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if req.Period == "" {
		req.Period = string(domain.PeriodDaily)
	}
	if req.Date == "" {
		req.Date = time.Now().Format(time.DateOnly)
	}

	narrative, err := h.summaries.Summarize(r.Context(), claims.UserID, domain.Period(req.Period), req.Date)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidDate):
			writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		case errors.Is(err, domain.ErrQuotaExhausted):
			writeError(w, http.StatusForbidden, "quota_exhausted", "You have no AI analysis credits remaining. Please purchase more.")
		default:
			writeError(w, http.StatusBadGateway, "upstream_error", err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, SummaryResponse{Summary: narrative})
}

func (h *Handler) goals(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createGoal(w, r)
	case http.MethodGet:
		h.listGoals(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) goalByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/goals/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing goal id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getGoal(w, r, id)
	case http.MethodPut:
		h.updateGoal(w, r, id)
	case http.MethodDelete:
		h.deleteGoal(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) createGoal(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireScope(w, r, auth.ScopeTrackerWrite)
	if !ok {
		return
	}

	var req GoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	goal, err := h.tracker.CreateGoal(r.Context(), claims.UserID, req.input())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGoalView(*goal))
}

func (h *Handler) listGoals(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireScope(w, r, auth.ScopeTrackerRead, auth.ScopeTrackerWrite)
	if !ok {
		return
	}

	goals, err := h.tracker.Goals(r.Context(), claims.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	items := make([]GoalView, 0, len(goals))
	for _, goal := range goals {
		items = append(items, toGoalView(goal))
	}
	writeJSON(w, http.StatusOK, ListGoalsResponse{Items: items})
}

func (h *Handler) getGoal(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := requireScope(w, r, auth.ScopeTrackerRead, auth.ScopeTrackerWrite)
	if !ok {
		return
	}

	goal, err := h.tracker.Goal(r.Context(), claims.UserID, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalView(*goal))
}

func (h *Handler) updateGoal(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := requireScope(w, r, auth.ScopeTrackerWrite)
	if !ok {
		return
	}

	var req GoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	if err := h.tracker.UpdateGoal(r.Context(), claims.UserID, id, req.input()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "goal updated"})
}

func (h *Handler) deleteGoal(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := requireScope(w, r, auth.ScopeTrackerWrite)
	if !ok {
		return
	}

	if err := h.tracker.DeleteGoal(r.Context(), claims.UserID, id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "goal deleted"})
}

func (h *Handler) initiatePayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireScope(w, r, auth.ScopeTrackerWrite)
	if !ok {
		return
	}
	if h.payments == nil {
		writeError(w, http.StatusServiceUnavailable, "payments_disabled", "payment gateway not configured")
		return
	}

	var req InitiatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "email is required")
		return
	}

	url, err := h.payments.InitializeTopUp(r.Context(), req.Email, claims.UserID)
	if err != nil {
		writeError(w, http.StatusBadGateway, "upstream_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, InitiatePaymentResponse{AuthorizationURL: url})
}

func (h *Handler) paymentWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to read body")
		return
	}

	signature := r.Header.Get("x-paystack-signature")
	if !payments.VerifySignature(h.webhookSecret, body, signature) {
		writeError(w, http.StatusUnauthorized, "invalid_signature", "webhook signature mismatch")
		return
	}

	if err := h.webhook.Process(r.Context(), body); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	w.WriteHeader(http.StatusOK)
}

func requireScope(w http.ResponseWriter, r *http.Request, scopes ...string) (*auth.Claims, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return nil, false
	}
	for _, scope := range scopes {
		if claims.HasScope(scope) {
			return claims, true
		}
	}
	writeError(w, http.StatusForbidden, "forbidden", "scope "+scopes[0]+" required")
	return nil, false
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
	case errors.Is(err, domain.ErrActivityNotFound), errors.Is(err, domain.ErrGoalNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrQuotaExhausted):
		writeError(w, http.StatusForbidden, "quota_exhausted", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
