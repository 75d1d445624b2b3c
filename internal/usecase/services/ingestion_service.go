package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/cambiatec/fiat-notification-reconciler/internal/adapter/http/models"
	"github.com/cambiatec/fiat-notification-reconciler/internal/commons"
	"github.com/cambiatec/fiat-notification-reconciler/internal/domain"
	"github.com/cambiatec/fiat-notification-reconciler/internal/logger"
	"github.com/cambiatec/fiat-notification-reconciler/internal/parser"
)

// PaymentParser turns raw push-notification text into a structured payment.
type PaymentParser interface {
	Parse(title, content, sourcePackage string) (parser.ParsedPayment, error)
}

// SweepTrigger wakes the reconciliation loop ahead of its next tick.
type SweepTrigger interface {
	Trigger()
}

type IngestionService struct {
	notifications domain.NotificationRepository
	parser        PaymentParser
	sweeper       SweepTrigger
	dedupeWindow  time.Duration
}

func NewIngestionService(
	notifications domain.NotificationRepository,
	paymentParser PaymentParser,
	sweeper SweepTrigger,
	dedupeWindow time.Duration,
) *IngestionService {
	return &IngestionService{
		notifications: notifications,
		parser:        paymentParser,
		sweeper:       sweeper,
		dedupeWindow:  dedupeWindow,
	}
}

func (s *IngestionService) Ingest(ctx context.Context, req models.IngestNotificationRequest) (commons.Response[models.IngestNotificationResponse], error) {
	logger.Info("ingestion service notification received", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.IngestNotificationResponse]("validation failed", err.Error()), err
	}

	parsed, err := s.parser.Parse(req.Title, req.Content, req.SourcePackage)
	if err != nil {
		return s.ignoredOutcome(req, err)
	}

	// V7 ids embed the creation instant, so primary-key order follows
	// arrival order.
	id, err := uuid.NewV7()
	if err != nil {
		logger.Error("ingestion service id generation failed", err, nil)
		return commons.ErrorResponse[models.IngestNotificationResponse]("failed to store notification", "Unable to store notification right now"), err
	}

	candidate := domain.BankNotification{
		ID:              id.String(),
		CorrelationID:   uuid.NewString(),
		BankID:          parsed.BankID,
		Amount:          parsed.Amount,
		Currency:        parsed.Currency,
		CounterpartName: parsed.CounterpartName,
		ReferenceText:   parsed.ReferenceText,
		RawTitle:        req.Title,
		RawContent:      req.Content,
		SourcePackage:   req.SourcePackage,
		ObservedAt:      req.ObservedAt(),
		Status:          domain.NotificationStatusStored,
	}

	existing, err := s.notifications.FindDuplicate(ctx, candidate, s.dedupeWindow)
	if err == nil {
		logger.Info("ingestion service duplicate notification", logger.Fields{
			"notificationId": existing.ID,
			"bankId":         existing.BankID,
			"status":         existing.Status,
		})
		return commons.SuccessResponse("duplicate notification", duplicateResponse(existing)), nil
	}
	if !errors.Is(err, domain.ErrRecordNotFound) {
		logger.Error("ingestion service duplicate probe failed", err, logger.Fields{
			"bankId": candidate.BankID,
		})
		return commons.ErrorResponse[models.IngestNotificationResponse]("failed to store notification", "Unable to store notification right now"), err
	}

	created, err := s.notifications.Create(ctx, candidate)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateNotification) {
			// Another device won the insert between our probe and now.
			winner, getErr := s.notifications.GetBySignature(ctx, candidate.DedupeSignature())
			if getErr != nil {
				logger.Error("ingestion service duplicate lookup failed", getErr, logger.Fields{
					"bankId": candidate.BankID,
				})
				return commons.ErrorResponse[models.IngestNotificationResponse]("failed to store notification", "Unable to store notification right now"), getErr
			}
			return commons.SuccessResponse("duplicate notification", duplicateResponse(winner)), nil
		}
		logger.Error("ingestion service store failed", err, logger.Fields{
			"bankId":   candidate.BankID,
			"currency": candidate.Currency,
		})
		return commons.ErrorResponse[models.IngestNotificationResponse]("failed to store notification", "Unable to store notification right now"), err
	}

	if s.sweeper != nil {
		s.sweeper.Trigger()
	}

	amount := created.Amount
	response := models.IngestNotificationResponse{
		ID:              created.ID,
		CorrelationID:   created.CorrelationID,
		Outcome:         models.IngestOutcomeAccepted,
		Status:          string(created.Status),
		BankID:          created.BankID,
		Amount:          &amount,
		Currency:        string(created.Currency),
		CounterpartName: created.CounterpartName,
		ReferenceText:   created.ReferenceText,
	}

	logger.Info("ingestion service notification accepted", logger.Fields{
		"notificationId": created.ID,
		"bankId":         created.BankID,
		"amount":         created.Amount.String(),
		"currency":       created.Currency,
	})

	return commons.SuccessResponse("notification accepted", response), nil
}

// ignoredOutcome reports non-payment or unreadable notifications back to the
// device as a success so it does not retry them. Raw text is logged for
// unparseable amounts so new bank formats can be profiled later.
func (s *IngestionService) ignoredOutcome(req models.IngestNotificationRequest, parseErr error) (commons.Response[models.IngestNotificationResponse], error) {
	var reason string

	switch {
	case errors.Is(parseErr, parser.ErrUnrecognizedSource):
		reason = "UNRECOGNIZED_SOURCE"
		logger.Info("ingestion service ignored unrecognized source", logger.Fields{
			"sourcePackage": req.SourcePackage,
			"title":         req.Title,
		})
	case errors.Is(parseErr, parser.ErrUnparseableAmount):
		reason = "UNPARSEABLE_AMOUNT"
		logger.Info("ingestion service ignored unparseable amount", logger.Fields{
			"sourcePackage": req.SourcePackage,
			"title":         req.Title,
			"content":       req.Content,
		})
	default:
		logger.Error("ingestion service parse failed", parseErr, logger.Fields{
			"sourcePackage": req.SourcePackage,
		})
		return commons.ErrorResponse[models.IngestNotificationResponse]("failed to parse notification", parseErr.Error()), parseErr
	}

	response := models.IngestNotificationResponse{
		Outcome:       models.IngestOutcomeIgnored,
		IgnoredReason: reason,
	}

	return commons.SuccessResponse("notification ignored", response), nil
}

// duplicateResponse reports the already-stored record. The outcome repeats
// the original accept so the retrying device treats the event as settled.
func duplicateResponse(existing domain.BankNotification) models.IngestNotificationResponse {
	amount := existing.Amount

	return models.IngestNotificationResponse{
		ID:              existing.ID,
		CorrelationID:   existing.CorrelationID,
		Outcome:         models.IngestOutcomeAccepted,
		Status:          string(existing.Status),
		Duplicate:       true,
		BankID:          existing.BankID,
		Amount:          &amount,
		Currency:        string(existing.Currency),
		CounterpartName: existing.CounterpartName,
		ReferenceText:   existing.ReferenceText,
	}
}
