package models

import (
	"errors"
	"strings"
)

type RegisterDeviceRequest struct {
	Label string `json:"label"`
}

func (r RegisterDeviceRequest) Validate() error {
	var errs []string

	label := strings.TrimSpace(r.Label)
	if label == "" {
		errs = append(errs, "label is required")
	} else if len(label) > 120 {
		errs = append(errs, "label must be at most 120 characters")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

type RegisterDeviceResponse struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	DeviceKey string `json:"deviceKey"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

type RevokeDeviceRequest struct {
	DeviceID string `json:"deviceId"`
}

func (r RevokeDeviceRequest) Validate() error {
	if strings.TrimSpace(r.DeviceID) == "" {
		return errors.New("deviceId is required")
	}

	return nil
}

type RevokeDeviceResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}
