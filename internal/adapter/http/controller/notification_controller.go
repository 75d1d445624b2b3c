package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cambiatec/fiat-notification-reconciler/internal/adapter/http/models"
	"github.com/cambiatec/fiat-notification-reconciler/internal/commons"
	"github.com/cambiatec/fiat-notification-reconciler/internal/logger"
)

type NotificationService interface {
	ListUnacknowledged(ctx context.Context, limit int, order string) (commons.Response[commons.Page[models.NotificationView]], error)
	Acknowledge(ctx context.Context, req models.AcknowledgeNotificationRequest) (commons.Response[models.AcknowledgeNotificationResponse], error)
}

type NotificationController struct {
	service NotificationService
}

func NewNotificationController(service NotificationService) *NotificationController {
	return &NotificationController{service: service}
}

func (c *NotificationController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	listHandler := http.HandlerFunc(c.listUnacknowledged)
	ackHandler := http.HandlerFunc(c.acknowledge)
	if authMiddleware != nil {
		listHandler = authMiddleware(listHandler).ServeHTTP
		ackHandler = authMiddleware(ackHandler).ServeHTTP
	}

	mux.Handle("/unacknowledged-notifications", http.HandlerFunc(listHandler))
	mux.Handle("/acknowledge-notification", http.HandlerFunc(ackHandler))
}

func (c *NotificationController) listUnacknowledged(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodGet {
		response := commons.ErrorResponse[commons.Page[models.NotificationView]]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	limit := 0
	if limitParam := strings.TrimSpace(r.URL.Query().Get("limit")); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed < 0 {
			response := commons.ErrorResponse[commons.Page[models.NotificationView]]("validation failed", "limit must be a non-negative integer")
			writeJSON(w, http.StatusBadRequest, response)
			logResponse(r, http.StatusBadRequest, response, start)
			return
		}
		limit = parsed
	}
	order := r.URL.Query().Get("order")

	response, err := c.service.ListUnacknowledged(r.Context(), limit, order)
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := http.StatusInternalServerError
		if response.Message == "validation failed" {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

func (c *NotificationController) acknowledge(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodPost {
		response := commons.ErrorResponse[models.AcknowledgeNotificationResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	var req models.AcknowledgeNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.AcknowledgeNotificationResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.AcknowledgeNotificationResponse]("validation failed", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}

	response, err := c.service.Acknowledge(r.Context(), req)
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := http.StatusInternalServerError
		if response.Message == "validation failed" {
			status = http.StatusBadRequest
		}
		if response.Message == "Notification not found" {
			status = http.StatusNotFound
		}
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}
