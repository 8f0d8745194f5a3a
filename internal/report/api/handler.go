package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ms-dayreport/internal/auth"
	"ms-dayreport/internal/logger"
	"ms-dayreport/internal/report"
	"ms-dayreport/internal/utils"
)

type ReportService interface {
	DayReport(ctx context.Context, actor auth.Actor, date string, forceRefresh bool) (*report.DayReport, error)
	SaveColumns(ctx context.Context, actor auth.Actor, columns []string) ([]string, error)
}

type CSRFTokens interface {
	Issue(ctx context.Context, sessionID string) (string, error)
	Validate(ctx context.Context, sessionID, token string) (bool, error)
}

type Handler struct {
	Service ReportService
	CSRF    CSRFTokens
	Logger  *logger.Logger
}

func NewHandler(service ReportService, csrf CSRFTokens, log *logger.Logger) *Handler {
	return &Handler{Service: service, CSRF: csrf, Logger: log}
}

// RegisterRoutes mounts the report endpoints on a chi router. The caller is
// expected to have wrapped the router in the auth middleware and capability
// gate already.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports/day", func(r chi.Router) {
		r.Get("/", h.GetDayReport)
		r.Get("/csrf", h.GetCSRFToken)
		r.Post("/fetch", h.FetchOrders)
		r.Post("/columns", h.SaveColumns)
	})
}

type fetchRequest struct {
	Date         string `json:"date"`
	RefreshCache string `json:"refresh_cache"`
	CSRFToken    string `json:"csrf_token"`
}

type fetchResponse struct {
	Success        bool        `json:"success"`
	Date           string      `json:"date,omitempty"`
	FormattedDate  string      `json:"formatted_date,omitempty"`
	Rows           interface{} `json:"rows,omitempty"`
	WasCacheHit    bool        `json:"was_cache_hit"`
	VisibleColumns []string    `json:"visible_columns,omitempty"`
	Error          string      `json:"error,omitempty"`
}

type columnsRequest struct {
	CSRFToken      string   `json:"csrf_token"`
	VisibleColumns []string `json:"visible_columns"`
}

// GetDayReport serves the report for the date in the query string, defaulting
// to the current day.
func (h *Handler) GetDayReport(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format(report.DateLayout)
	}

	actor := auth.ActorFromContext(r.Context())
	h.Logger.Info("API", fmt.Sprintf("GetDayReport: actor=%s date=%s", actor.UserID, date))

	result, err := h.Service.DayReport(r.Context(), actor, date, false)
	if err != nil {
		h.writeServiceError(w, "GetDayReport", err)
		return
	}

	sendJSONResponse(w, http.StatusOK, utils.SuccessResponse("day report", result))
}

// FetchOrders is the asynchronous fetch endpoint: CSRF-gated, with an
// optional forced cache refresh.
func (h *Handler) FetchOrders(w http.ResponseWriter, r *http.Request) {
	var req fetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("FetchOrders: failed to decode request body: %v", err))
		sendJSONResponse(w, http.StatusBadRequest, fetchResponse{Success: false, Error: "invalid_request_body"})
		return
	}

	actor := auth.ActorFromContext(r.Context())
	if !h.validCSRF(r.Context(), actor, req.CSRFToken) {
		sendJSONResponse(w, http.StatusForbidden, fetchResponse{Success: false, Error: report.ReasonForbidden})
		return
	}

	h.Logger.Info("API", fmt.Sprintf("FetchOrders: actor=%s date=%s refresh=%s", actor.UserID, req.Date, req.RefreshCache))

	result, err := h.Service.DayReport(r.Context(), actor, req.Date, req.RefreshCache == "1")
	if err != nil {
		if reason := report.RejectionReason(err); reason != "" {
			status := http.StatusBadRequest
			if report.IsAuthorizationError(err) {
				status = http.StatusForbidden
			}
			h.Logger.Warn("API", fmt.Sprintf("FetchOrders: rejected: %v", err))
			sendJSONResponse(w, status, fetchResponse{Success: false, Error: reason})
			return
		}
		h.Logger.Error("API", fmt.Sprintf("FetchOrders: %v", err))
		sendJSONResponse(w, http.StatusInternalServerError, fetchResponse{Success: false, Error: "internal_error"})
		return
	}

	sendJSONResponse(w, http.StatusOK, fetchResponse{
		Success:        true,
		Date:           result.Date,
		FormattedDate:  result.FormattedDate,
		Rows:           result.Rows,
		WasCacheHit:    result.WasCacheHit,
		VisibleColumns: result.VisibleColumns,
	})
}

// SaveColumns persists the actor's visible-column choice. Unknown column ids
// are silently dropped; the response echoes what was stored.
func (h *Handler) SaveColumns(w http.ResponseWriter, r *http.Request) {
	var req columnsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("SaveColumns: failed to decode request body: %v", err))
		sendJSONResponse(w, http.StatusBadRequest, utils.RejectionResponse("invalid_request_body"))
		return
	}

	actor := auth.ActorFromContext(r.Context())
	if !h.validCSRF(r.Context(), actor, req.CSRFToken) {
		sendJSONResponse(w, http.StatusForbidden, utils.RejectionResponse(report.ReasonForbidden))
		return
	}

	stored, err := h.Service.SaveColumns(r.Context(), actor, req.VisibleColumns)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("SaveColumns: %v", err))
		sendJSONResponse(w, http.StatusInternalServerError, utils.RejectionResponse("internal_error"))
		return
	}

	h.Logger.Info("API", fmt.Sprintf("SaveColumns: actor=%s columns=%v", actor.UserID, stored))
	sendJSONResponse(w, http.StatusOK, utils.SuccessResponse("columns saved", map[string]interface{}{
		"visible_columns": stored,
	}))
}

// GetCSRFToken issues a fresh anti-forgery token for the actor's session.
func (h *Handler) GetCSRFToken(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())

	token, err := h.CSRF.Issue(r.Context(), actor.UserID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetCSRFToken: %v", err))
		sendJSONResponse(w, http.StatusInternalServerError, utils.RejectionResponse("internal_error"))
		return
	}

	sendJSONResponse(w, http.StatusOK, utils.SuccessResponse("csrf token issued", map[string]string{
		"csrf_token": token,
	}))
}

// writeServiceError maps service errors onto rejection responses: validation
// failures carry their machine-readable reason, everything else stays generic.
func (h *Handler) writeServiceError(w http.ResponseWriter, op string, err error) {
	if reason := report.RejectionReason(err); reason != "" {
		status := http.StatusBadRequest
		if report.IsAuthorizationError(err) {
			status = http.StatusForbidden
		}
		h.Logger.Warn("API", fmt.Sprintf("%s: rejected: %v", op, err))
		sendJSONResponse(w, status, utils.RejectionResponse(reason))
		return
	}
	h.Logger.Error("API", fmt.Sprintf("%s: %v", op, err))
	sendJSONResponse(w, http.StatusInternalServerError, utils.RejectionResponse("internal_error"))
}

// validCSRF checks the presented token, logging failures as potential audit
// events. Store errors count as invalid rather than leaking a distinct state.
func (h *Handler) validCSRF(ctx context.Context, actor auth.Actor, token string) bool {
	ok, err := h.CSRF.Validate(ctx, actor.UserID, token)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("csrf validation failed for %s: %v", actor.UserID, err))
		return false
	}
	if !ok {
		h.Logger.LogSecurity("CSRF", "invalid token presented by "+actor.UserID)
	}
	return ok
}

func sendJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already out, nothing left to do but note it.
		return
	}
}
