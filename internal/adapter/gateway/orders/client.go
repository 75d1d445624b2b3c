package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cambiatec/fiat-notification-reconciler/internal/domain"
	"github.com/cambiatec/fiat-notification-reconciler/internal/logger"
)

// Client talks to the order subsystem. Amounts travel as strings on the
// wire and parse into exact decimals; the client timeout is the only
// timeout in the reconciliation path.
type Client struct {
	baseURL  string
	username string
	password string
	client   *http.Client
}

func NewClient(baseURL, username, password string, timeout time.Duration) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		client:   &http.Client{Timeout: timeout},
	}
}

type obligationPayload struct {
	OrderID           string    `json:"orderId"`
	ExpectedAmount    string    `json:"expectedAmount"`
	Currency          string    `json:"currency"`
	ExpectedPayerHint string    `json:"expectedPayerHint"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"createdAt"`
	ExpiresAt         time.Time `json:"expiresAt"`
}

type listEnvelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    []obligationPayload `json:"data"`
}

func (c *Client) ListAwaitingPayment(ctx context.Context, currency domain.Currency) ([]domain.PendingObligation, error) {
	endpoint := fmt.Sprintf("%s/internal/pending-obligations?currency=%s", c.baseURL, url.QueryEscape(string(currency)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build pending obligations request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch pending obligations: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch pending obligations: unexpected status %d", resp.StatusCode)
	}

	var envelope listEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode pending obligations: %w", err)
	}
	if !envelope.Success {
		return nil, fmt.Errorf("fetch pending obligations: %s", envelope.Message)
	}

	obligations := make([]domain.PendingObligation, 0, len(envelope.Data))
	for _, payload := range envelope.Data {
		amount, err := decimal.NewFromString(payload.ExpectedAmount)
		if err != nil {
			logger.Error("pending obligation with bad amount skipped", err, logger.Fields{
				"orderId": payload.OrderID,
				"amount":  payload.ExpectedAmount,
			})
			continue
		}
		obligations = append(obligations, domain.PendingObligation{
			OrderID:       payload.OrderID,
			Amount:        amount,
			Currency:      domain.Currency(payload.Currency),
			PayerNameHint: payload.ExpectedPayerHint,
			Status:        payload.Status,
			CreatedAt:     payload.CreatedAt,
			ExpiresAt:     payload.ExpiresAt,
		})
	}

	return obligations, nil
}

type paymentObservedRequest struct {
	OrderID         string `json:"orderId"`
	NotificationID  string `json:"notificationId"`
	CorrelationID   string `json:"correlationId"`
	Amount          string `json:"amount"`
	Currency        string `json:"currency"`
	CounterpartName string `json:"counterpartName"`
}

// MarkPaymentObserved reports an observed payment for the obligation. The
// order side dedupes on correlationId, so retrying after a timeout cannot
// double-apply. A 409 means the obligation is no longer claimable.
func (c *Client) MarkPaymentObserved(ctx context.Context, observation domain.PaymentObservation) error {
	body, err := json.Marshal(paymentObservedRequest{
		OrderID:         observation.OrderID,
		NotificationID:  observation.NotificationID,
		CorrelationID:   observation.CorrelationID,
		Amount:          observation.Amount.String(),
		Currency:        string(observation.Currency),
		CounterpartName: observation.CounterpartName,
	})
	if err != nil {
		return fmt.Errorf("encode payment observed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/internal/payment-observed", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build payment observed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("post payment observed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		return nil
	case http.StatusConflict:
		return domain.ErrObligationConflict
	case http.StatusNotFound:
		return domain.ErrRecordNotFound
	default:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("post payment observed: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
}
