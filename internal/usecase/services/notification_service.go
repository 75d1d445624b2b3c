package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cambiatec/fiat-notification-reconciler/internal/adapter/http/models"
	"github.com/cambiatec/fiat-notification-reconciler/internal/commons"
	"github.com/cambiatec/fiat-notification-reconciler/internal/domain"
	"github.com/cambiatec/fiat-notification-reconciler/internal/logger"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type NotificationService struct {
	notifications domain.NotificationRepository
}

func NewNotificationService(notifications domain.NotificationRepository) *NotificationService {
	return &NotificationService{notifications: notifications}
}

// ListUnacknowledged pages through notifications the order subsystem has not
// consumed yet, ordered by observedAt then id so repeated polls see a stable
// sequence.
func (s *NotificationService) ListUnacknowledged(ctx context.Context, limit int, order string) (commons.Response[commons.Page[models.NotificationView]], error) {
	logger.Info("notification service list unacknowledged request", logger.Fields{
		"limit": limit,
		"order": order,
	})

	order = strings.ToLower(strings.TrimSpace(order))
	if order == "" {
		order = "asc"
	}
	if order != "asc" && order != "desc" {
		err := fmt.Errorf("order must be asc or desc")
		return commons.ErrorResponse[commons.Page[models.NotificationView]]("validation failed", err.Error()), err
	}

	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	notifications, err := s.notifications.ListUnacknowledged(ctx, limit, order == "asc")
	if err != nil {
		logger.Error("notification service list failed", err, logger.Fields{
			"limit": limit,
			"order": order,
		})
		return commons.ErrorResponse[commons.Page[models.NotificationView]]("failed to list notifications", "Unable to list notifications right now"), err
	}

	views := make([]models.NotificationView, 0, len(notifications))
	for _, notification := range notifications {
		views = append(views, models.NewNotificationView(notification))
	}

	return commons.SuccessResponse("unacknowledged notifications", commons.PageOf(views, order)), nil
}

func (s *NotificationService) Acknowledge(ctx context.Context, req models.AcknowledgeNotificationRequest) (commons.Response[models.AcknowledgeNotificationResponse], error) {
	logger.Info("notification service acknowledge request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.AcknowledgeNotificationResponse]("validation failed", err.Error()), err
	}

	id := strings.TrimSpace(req.NotificationID)

	acknowledged, err := s.notifications.Acknowledge(ctx, id, time.Now().UTC())
	if err != nil {
		if errors.Is(err, domain.ErrNotificationFinal) {
			// Repeating an ack is a success: the consumer's goal state holds.
			logger.Info("notification service already acknowledged", logger.Fields{
				"notificationId": id,
			})
			response := models.AcknowledgeNotificationResponse{
				ID:     id,
				Status: string(domain.NotificationStatusAcknowledged),
			}
			if got, getErr := s.notifications.Get(ctx, id); getErr == nil && got.AcknowledgedAt != nil {
				response.AcknowledgedAt = got.AcknowledgedAt.UTC().Format(time.RFC3339)
			}
			return commons.SuccessResponse("notification already acknowledged", response), nil
		}
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.AcknowledgeNotificationResponse]("Notification not found"), err
		}
		logger.Error("notification service acknowledge failed", err, logger.Fields{
			"notificationId": id,
		})
		return commons.ErrorResponse[models.AcknowledgeNotificationResponse]("failed to acknowledge notification", "Unable to acknowledge notification right now"), err
	}

	response := models.AcknowledgeNotificationResponse{
		ID:     acknowledged.ID,
		Status: string(acknowledged.Status),
	}
	if acknowledged.AcknowledgedAt != nil {
		response.AcknowledgedAt = acknowledged.AcknowledgedAt.UTC().Format(time.RFC3339)
	}

	logger.Info("notification service acknowledged", logger.Fields{
		"notificationId": acknowledged.ID,
	})

	return commons.SuccessResponse("notification acknowledged", response), nil
}
