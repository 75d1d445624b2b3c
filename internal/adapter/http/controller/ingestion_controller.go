package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cambiatec/fiat-notification-reconciler/internal/adapter/http/models"
	"github.com/cambiatec/fiat-notification-reconciler/internal/commons"
	"github.com/cambiatec/fiat-notification-reconciler/internal/logger"
)

type IngestionService interface {
	Ingest(ctx context.Context, req models.IngestNotificationRequest) (commons.Response[models.IngestNotificationResponse], error)
}

type IngestionController struct {
	service IngestionService
}

func NewIngestionController(service IngestionService) *IngestionController {
	return &IngestionController{service: service}
}

func (c *IngestionController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	handler := http.HandlerFunc(c.ingest)
	if authMiddleware != nil {
		handler = authMiddleware(handler).ServeHTTP
	}

	mux.Handle("/ingest-notification", http.HandlerFunc(handler))
}

func (c *IngestionController) ingest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodPost {
		response := commons.ErrorResponse[models.IngestNotificationResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	var req models.IngestNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.IngestNotificationResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.IngestNotificationResponse]("validation failed", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}

	response, err := c.service.Ingest(r.Context(), req)
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := http.StatusInternalServerError
		if response.Message == "validation failed" {
			status = http.StatusBadRequest
		}
		if response.Message == "failed to store notification" {
			// Retryable: the device should resubmit once storage recovers.
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	// A fresh accept creates a record; duplicates and ignores do not.
	status := http.StatusOK
	if response.Data != nil && response.Data.Outcome == models.IngestOutcomeAccepted && !response.Data.Duplicate {
		status = http.StatusCreated
	}
	writeJSON(w, status, response)
	logResponse(r, status, response, start)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
