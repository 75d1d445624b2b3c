package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/cambiatec/fiat-notification-reconciler/internal/domain"
	"github.com/cambiatec/fiat-notification-reconciler/internal/logger"
)

type DeviceVerifier interface {
	Verify(ctx context.Context, deviceID string, deviceKey string) (domain.DelegatedDevice, error)
}

// DeviceAuth guards the ingestion endpoint with per-device credentials sent
// as HTTP Basic auth: device id as username, device key as password. Unknown
// ids, revoked devices and bad keys all answer 401 identically.
func DeviceAuth(devices DeviceVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, key, ok := r.BasicAuth()
			if !ok {
				logger.Info("device auth middleware missing credentials", logger.Fields{
					"method": r.Method,
					"path":   r.URL.Path,
				})
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			device, err := devices.Verify(r.Context(), id, key)
			if err != nil {
				fields := logger.Fields{
					"method":   r.Method,
					"path":     r.URL.Path,
					"deviceId": id,
				}
				switch {
				case errors.Is(err, domain.ErrDeviceRevoked):
					logger.Info("device auth middleware revoked device", fields)
				case errors.Is(err, domain.ErrRecordNotFound), errors.Is(err, domain.ErrInvalidDeviceKey):
					logger.Info("device auth middleware unauthorized device", fields)
				default:
					logger.Error("device auth middleware verification failed", err, fields)
					http.Error(w, "unable to verify device", http.StatusInternalServerError)
					return
				}
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			logger.Info("device auth middleware authorized device", logger.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"deviceId": device.ID,
			})
			next.ServeHTTP(w, r)
		})
	}
}
