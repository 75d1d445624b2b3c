package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/cambiatec/fiat-notification-reconciler/internal/adapter/http/models"
	"github.com/cambiatec/fiat-notification-reconciler/internal/domain"
	"github.com/cambiatec/fiat-notification-reconciler/internal/usecase/services"
)

type deviceRepoStub struct {
	createFn    func(ctx context.Context, device domain.DelegatedDevice) (domain.DelegatedDevice, error)
	getFn       func(ctx context.Context, id string) (domain.DelegatedDevice, error)
	touchSeenFn func(ctx context.Context, id string, at time.Time) error
	revokeFn    func(ctx context.Context, id string, revokedAt time.Time) error
}

func (s deviceRepoStub) Create(ctx context.Context, device domain.DelegatedDevice) (domain.DelegatedDevice, error) {
	if s.createFn != nil {
		return s.createFn(ctx, device)
	}
	device.CreatedAt = time.Now().UTC()
	return device, nil
}

func (s deviceRepoStub) Get(ctx context.Context, id string) (domain.DelegatedDevice, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return domain.DelegatedDevice{}, domain.ErrRecordNotFound
}

func (s deviceRepoStub) TouchSeen(ctx context.Context, id string, at time.Time) error {
	if s.touchSeenFn != nil {
		return s.touchSeenFn(ctx, id, at)
	}
	return nil
}

func (s deviceRepoStub) Revoke(ctx context.Context, id string, revokedAt time.Time) error {
	if s.revokeFn != nil {
		return s.revokeFn(ctx, id, revokedAt)
	}
	return nil
}

func TestDeviceServiceRegisterStoresOnlyHash(t *testing.T) {
	var persisted domain.DelegatedDevice

	svc := services.NewDeviceService(deviceRepoStub{
		createFn: func(_ context.Context, device domain.DelegatedDevice) (domain.DelegatedDevice, error) {
			persisted = device
			device.CreatedAt = time.Now().UTC()
			return device, nil
		},
	})

	resp, err := svc.Register(context.Background(), models.RegisterDeviceRequest{Label: "Pixel 8 caja 2"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if resp.Data == nil || resp.Data.DeviceKey == "" {
		t.Fatal("expected plaintext device key in response")
	}
	if len(resp.Data.DeviceKey) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(resp.Data.DeviceKey))
	}
	if persisted.KeyHash == "" || persisted.KeyHash == resp.Data.DeviceKey {
		t.Fatal("expected hashed key before persistence")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(persisted.KeyHash), []byte(resp.Data.DeviceKey)); err != nil {
		t.Fatalf("stored hash does not match issued key: %v", err)
	}
	if persisted.Status != domain.DeviceStatusActive {
		t.Fatalf("expected ACTIVE device, got %s", persisted.Status)
	}
}

func TestDeviceServiceVerifySuccessTouchesLastSeen(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("super-secret-key"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to generate test hash: %v", err)
	}
	touched := false

	svc := services.NewDeviceService(deviceRepoStub{
		getFn: func(_ context.Context, id string) (domain.DelegatedDevice, error) {
			return domain.DelegatedDevice{
				ID:      id,
				Label:   "caja 1",
				KeyHash: string(hash),
				Status:  domain.DeviceStatusActive,
			}, nil
		},
		touchSeenFn: func(_ context.Context, id string, _ time.Time) error {
			touched = true
			return nil
		},
	})

	device, err := svc.Verify(context.Background(), "dev-1", "super-secret-key")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if device.ID != "dev-1" {
		t.Fatalf("unexpected device %+v", device)
	}
	if !touched {
		t.Fatal("expected last seen to be updated")
	}
}

func TestDeviceServiceVerifyRejectsWrongKey(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("super-secret-key"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to generate test hash: %v", err)
	}

	svc := services.NewDeviceService(deviceRepoStub{
		getFn: func(_ context.Context, id string) (domain.DelegatedDevice, error) {
			return domain.DelegatedDevice{ID: id, KeyHash: string(hash), Status: domain.DeviceStatusActive}, nil
		},
		touchSeenFn: func(context.Context, string, time.Time) error {
			t.Fatal("failed verification must not update last seen")
			return nil
		},
	})

	_, err = svc.Verify(context.Background(), "dev-1", "guessed-key")
	if !errors.Is(err, domain.ErrInvalidDeviceKey) {
		t.Fatalf("expected invalid key error, got %v", err)
	}
}

func TestDeviceServiceVerifyRejectsRevokedDevice(t *testing.T) {
	svc := services.NewDeviceService(deviceRepoStub{
		getFn: func(_ context.Context, id string) (domain.DelegatedDevice, error) {
			return domain.DelegatedDevice{ID: id, KeyHash: "irrelevant", Status: domain.DeviceStatusRevoked}, nil
		},
	})

	_, err := svc.Verify(context.Background(), "dev-1", "super-secret-key")
	if !errors.Is(err, domain.ErrDeviceRevoked) {
		t.Fatalf("expected revoked error, got %v", err)
	}
}

func TestDeviceServiceRevokeIsIdempotent(t *testing.T) {
	svc := services.NewDeviceService(deviceRepoStub{
		revokeFn: func(context.Context, string, time.Time) error {
			return domain.ErrDeviceRevoked
		},
	})

	resp, err := svc.Revoke(context.Background(), models.RevokeDeviceRequest{DeviceID: "dev-1"})
	if err != nil {
		t.Fatalf("repeated revoke must succeed, got %v", err)
	}
	if !resp.Success || resp.Message != "device already revoked" {
		t.Fatalf("unexpected envelope %+v", resp)
	}
	if resp.Data == nil || resp.Data.Status != string(domain.DeviceStatusRevoked) {
		t.Fatal("expected REVOKED status in response")
	}
}

func TestDeviceServiceRevokeUnknownDevice(t *testing.T) {
	svc := services.NewDeviceService(deviceRepoStub{
		revokeFn: func(context.Context, string, time.Time) error {
			return domain.ErrRecordNotFound
		},
	})

	resp, err := svc.Revoke(context.Background(), models.RevokeDeviceRequest{DeviceID: "ghost"})
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if resp.Message != "Device not found" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
}
