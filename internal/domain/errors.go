package domain

import "errors"

var (
	ErrRecordNotFound        = errors.New("Record not found")
	ErrDuplicateNotification = errors.New("Duplicate notification")
	ErrNotificationFinal     = errors.New("Notification already acknowledged")
	ErrObligationTaken       = errors.New("Obligation already claimed by another notification")
	ErrObligationConflict    = errors.New("Order subsystem rejected the payment transition")
	ErrDeviceRevoked         = errors.New("Device key revoked")
	ErrInvalidDeviceKey      = errors.New("Invalid device key")
)
