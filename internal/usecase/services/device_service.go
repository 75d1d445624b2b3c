package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/cambiatec/fiat-notification-reconciler/internal/adapter/http/models"
	"github.com/cambiatec/fiat-notification-reconciler/internal/commons"
	"github.com/cambiatec/fiat-notification-reconciler/internal/domain"
	"github.com/cambiatec/fiat-notification-reconciler/internal/logger"
)

type DeviceService struct {
	devices domain.DeviceRepository
}

func NewDeviceService(devices domain.DeviceRepository) *DeviceService {
	return &DeviceService{devices: devices}
}

// Register creates a delegated device and returns its key exactly once.
// Only the bcrypt hash is stored, so a lost key means re-registering.
func (s *DeviceService) Register(ctx context.Context, req models.RegisterDeviceRequest) (commons.Response[models.RegisterDeviceResponse], error) {
	logger.Info("device service register request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.RegisterDeviceResponse]("validation failed", err.Error()), err
	}

	deviceKey, err := generateDeviceKey()
	if err != nil {
		logger.Error("device service key generation failed", err, nil)
		return commons.ErrorResponse[models.RegisterDeviceResponse]("failed to register device", "Unable to register device right now"), err
	}

	keyHash, err := hashDeviceKey(deviceKey)
	if err != nil {
		logger.Error("device service key hashing failed", err, nil)
		return commons.ErrorResponse[models.RegisterDeviceResponse]("failed to register device", "Unable to register device right now"), err
	}

	device := domain.DelegatedDevice{
		ID:      uuid.NewString(),
		Label:   strings.TrimSpace(req.Label),
		KeyHash: keyHash,
		Status:  domain.DeviceStatusActive,
	}

	created, err := s.devices.Create(ctx, device)
	if err != nil {
		logger.Error("device service create failed", err, logger.Fields{
			"label": device.Label,
		})
		return commons.ErrorResponse[models.RegisterDeviceResponse]("failed to register device", "Unable to register device right now"), err
	}

	response := models.RegisterDeviceResponse{
		ID:        created.ID,
		Label:     created.Label,
		DeviceKey: deviceKey,
		Status:    string(created.Status),
		CreatedAt: created.CreatedAt.UTC().Format(time.RFC3339),
	}

	logger.Info("device service device registered", logger.Fields{
		"deviceId": created.ID,
		"label":    created.Label,
	})

	return commons.SuccessResponse("device registered", response), nil
}

func (s *DeviceService) Revoke(ctx context.Context, req models.RevokeDeviceRequest) (commons.Response[models.RevokeDeviceResponse], error) {
	logger.Info("device service revoke request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.RevokeDeviceResponse]("validation failed", err.Error()), err
	}

	id := strings.TrimSpace(req.DeviceID)

	if err := s.devices.Revoke(ctx, id, time.Now().UTC()); err != nil {
		if errors.Is(err, domain.ErrDeviceRevoked) {
			// Revoking twice is a success: the device stays locked out.
			logger.Info("device service already revoked", logger.Fields{
				"deviceId": id,
			})
			return commons.SuccessResponse("device already revoked", models.RevokeDeviceResponse{
				ID:     id,
				Status: string(domain.DeviceStatusRevoked),
			}), nil
		}
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.RevokeDeviceResponse]("Device not found"), err
		}
		logger.Error("device service revoke failed", err, logger.Fields{
			"deviceId": id,
		})
		return commons.ErrorResponse[models.RevokeDeviceResponse]("failed to revoke device", "Unable to revoke device right now"), err
	}

	logger.Info("device service device revoked", logger.Fields{
		"deviceId": id,
	})

	return commons.SuccessResponse("device revoked", models.RevokeDeviceResponse{
		ID:     id,
		Status: string(domain.DeviceStatusRevoked),
	}), nil
}

// Verify authenticates a device id and key pair for the ingestion endpoint.
// Lookup, status and key failures surface as distinct errors so callers can
// log precisely, though the HTTP layer answers 401 to all of them.
func (s *DeviceService) Verify(ctx context.Context, deviceID string, deviceKey string) (domain.DelegatedDevice, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" || deviceKey == "" {
		return domain.DelegatedDevice{}, domain.ErrInvalidDeviceKey
	}

	device, err := s.devices.Get(ctx, deviceID)
	if err != nil {
		return domain.DelegatedDevice{}, err
	}

	if device.Status != domain.DeviceStatusActive {
		return domain.DelegatedDevice{}, domain.ErrDeviceRevoked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(device.KeyHash), []byte(deviceKey)); err != nil {
		if err == bcrypt.ErrMismatchedHashAndPassword {
			return domain.DelegatedDevice{}, domain.ErrInvalidDeviceKey
		}
		return domain.DelegatedDevice{}, fmt.Errorf("compare device key: %w", err)
	}

	if err := s.devices.TouchSeen(ctx, device.ID, time.Now().UTC()); err != nil {
		// Best effort: a stale last_seen_at must not block ingestion.
		logger.Error("device service touch seen failed", err, logger.Fields{
			"deviceId": device.ID,
		})
	}

	return device, nil
}

func generateDeviceKey() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate device key: %w", err)
	}

	return hex.EncodeToString(raw), nil
}

func hashDeviceKey(deviceKey string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(deviceKey), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash device key: %w", err)
	}

	return string(hashed), nil
}
