package middleware

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cambiatec/fiat-notification-reconciler/internal/domain"
)

type verifierStub struct {
	verifyFn func(ctx context.Context, deviceID, deviceKey string) (domain.DelegatedDevice, error)
}

func (s verifierStub) Verify(ctx context.Context, deviceID, deviceKey string) (domain.DelegatedDevice, error) {
	if s.verifyFn != nil {
		return s.verifyFn(ctx, deviceID, deviceKey)
	}
	return domain.DelegatedDevice{}, domain.ErrRecordNotFound
}

func deviceRequest(id, key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/ingest-notification", nil)
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(id+":"+key)))
	return req
}

func TestDeviceAuth_AllowsVerifiedDevice(t *testing.T) {
	mw := DeviceAuth(verifierStub{
		verifyFn: func(_ context.Context, deviceID, deviceKey string) (domain.DelegatedDevice, error) {
			if deviceID != "dev-1" || deviceKey != "key-1" {
				t.Fatalf("unexpected credentials %s %s", deviceID, deviceKey)
			}
			return domain.DelegatedDevice{ID: deviceID, Status: domain.DeviceStatusActive}, nil
		},
	})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	mw(next).ServeHTTP(rr, deviceRequest("dev-1", "key-1"))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestDeviceAuth_RejectsMissingCredentials(t *testing.T) {
	mw := DeviceAuth(verifierStub{})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without credentials")
	})

	req := httptest.NewRequest(http.MethodPost, "/ingest-notification", nil)
	rr := httptest.NewRecorder()
	mw(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
}

func TestDeviceAuth_RejectsRevokedDevice(t *testing.T) {
	mw := DeviceAuth(verifierStub{
		verifyFn: func(context.Context, string, string) (domain.DelegatedDevice, error) {
			return domain.DelegatedDevice{}, domain.ErrDeviceRevoked
		},
	})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for a revoked device")
	})

	rr := httptest.NewRecorder()
	mw(next).ServeHTTP(rr, deviceRequest("dev-1", "key-1"))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
}

func TestDeviceAuth_ReportsVerifierOutage(t *testing.T) {
	mw := DeviceAuth(verifierStub{
		verifyFn: func(context.Context, string, string) (domain.DelegatedDevice, error) {
			return domain.DelegatedDevice{}, errors.New("connection refused")
		},
	})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run when verification is unavailable")
	})

	rr := httptest.NewRecorder()
	mw(next).ServeHTTP(rr, deviceRequest("dev-1", "key-1"))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rr.Code)
	}
}
