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

type DeviceService interface {
	Register(ctx context.Context, req models.RegisterDeviceRequest) (commons.Response[models.RegisterDeviceResponse], error)
	Revoke(ctx context.Context, req models.RevokeDeviceRequest) (commons.Response[models.RevokeDeviceResponse], error)
}

type DeviceController struct {
	service DeviceService
}

func NewDeviceController(service DeviceService) *DeviceController {
	return &DeviceController{service: service}
}

func (c *DeviceController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	registerHandler := http.HandlerFunc(c.register)
	revokeHandler := http.HandlerFunc(c.revoke)
	if authMiddleware != nil {
		registerHandler = authMiddleware(registerHandler).ServeHTTP
		revokeHandler = authMiddleware(revokeHandler).ServeHTTP
	}

	mux.Handle("/register-device", http.HandlerFunc(registerHandler))
	mux.Handle("/revoke-device", http.HandlerFunc(revokeHandler))
}

func (c *DeviceController) register(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodPost {
		response := commons.ErrorResponse[models.RegisterDeviceResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	var req models.RegisterDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.RegisterDeviceResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.RegisterDeviceResponse]("validation failed", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}

	response, err := c.service.Register(r.Context(), req)
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

	writeJSON(w, http.StatusCreated, response)
	logResponse(r, http.StatusCreated, response, start)
}

func (c *DeviceController) revoke(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodPost {
		response := commons.ErrorResponse[models.RevokeDeviceResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	var req models.RevokeDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.RevokeDeviceResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.RevokeDeviceResponse]("validation failed", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}

	response, err := c.service.Revoke(r.Context(), req)
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := http.StatusInternalServerError
		if response.Message == "validation failed" {
			status = http.StatusBadRequest
		}
		if response.Message == "Device not found" {
			status = http.StatusNotFound
		}
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}
