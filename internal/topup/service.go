package topup

import (
	"context"
	"errors"
	"time"

	"github.com/MamzStore/ppobb/internal/logger"
	"github.com/MamzStore/ppobb/internal/metrics"
	"github.com/MamzStore/ppobb/internal/payment"

	"github.com/google/uuid"
)

const (
	MinAmount int64 = 10_000
	MaxAmount int64 = 5_000_000
)

var (
	ErrInvalidAmount       = errors.New("topup amount out of range")
	ErrPaymentCreateFailed = errors.New("could not create payment")
)

// WebhookResult says what a delivery amounted to, for logging and metrics.
type WebhookResult string

const (
	WebhookCredited  WebhookResult = "credited"
	WebhookDuplicate WebhookResult = "duplicate"
	WebhookUnknown   WebhookResult = "unknown"
)

type Service interface {
	Create(ctx context.Context, userID int, amount int64) (*Topup, error)
	// HandleWebhook applies a provider confirmation. Unknown refs and
	// repeated deliveries are acknowledged without effect; the credit
	// happens at most once.
	HandleWebhook(ctx context.Context, payload payment.WebhookPayload) (WebhookResult, error)
	Get(ctx context.Context, id int) (*Topup, error)
	ListByUser(ctx context.Context, userID, limit, offset int) ([]Topup, error)
}

type service struct {
	topups      Repository
	gateway     payment.Client
	callbackURL string
}

func NewService(topups Repository, gateway payment.Client, callbackURL string) Service {
	return &service{
		topups:      topups,
		gateway:     gateway,
		callbackURL: callbackURL,
	}
}

func (s *service) Create(ctx context.Context, userID int, amount int64) (*Topup, error) {
	if amount < MinAmount || amount > MaxAmount {
		return nil, ErrInvalidAmount
	}

	refID := "TP-" + uuid.NewString()

	t, err := s.topups.Create(ctx, userID, amount, refID)
	if err != nil {
		return nil, err
	}

	res, err := s.gateway.CreatePayment(ctx, amount, refID, s.callbackURL)
	if err != nil {
		// Retire the row so a stray webhook for this ref can never
		// credit anything.
		if _, expireErr := s.topups.MarkExpired(ctx, t.ID); expireErr != nil {
			logger.Error("failed to expire topup after gateway error",
				"topup_id", t.ID, "error", expireErr)
		}
		logger.Error("payment create failed", "topup_id", t.ID, "error", err)
		return nil, ErrPaymentCreateFailed
	}

	expiresAt := time.Now().Add(time.Duration(res.ExpiresIn) * time.Second)
	t, err = s.topups.AttachPaymentDetails(ctx, t.ID, res.ProviderTrxID, res.UniqueAmount, res.QRString, expiresAt)
	if err != nil {
		return nil, err
	}

	metrics.RecordTopupCreated()
	logger.Info("topup created",
		"topup_id", t.ID, "ref_id", refID, "amount", amount, "unique_amount", res.UniqueAmount)
	return t, nil
}

func (s *service) HandleWebhook(ctx context.Context, payload payment.WebhookPayload) (WebhookResult, error) {
	if err := payload.Validate(); err != nil {
		metrics.RecordWebhook("invalid")
		return "", err
	}

	t, credited, err := s.topups.MarkPaidAndCredit(ctx, payload.RefID, payload.TrxIDGateway)
	if err != nil {
		if errors.Is(err, ErrTopupNotFound) {
			// Stale or foreign event. Acknowledge so the provider
			// stops retrying; there is nothing to credit.
			metrics.RecordWebhook(string(WebhookUnknown))
			logger.Info("webhook for unknown topup acknowledged", "ref_id", payload.RefID)
			return WebhookUnknown, nil
		}
		metrics.RecordWebhook("error")
		return "", err
	}

	if !credited {
		metrics.RecordWebhook(string(WebhookDuplicate))
		logger.Info("duplicate webhook acknowledged",
			"ref_id", payload.RefID, "status", t.Status)
		return WebhookDuplicate, nil
	}

	metrics.RecordWebhook(string(WebhookCredited))
	metrics.RecordTopupPaid()
	logger.Info("topup credited",
		"topup_id", t.ID, "ref_id", payload.RefID, "amount", t.Amount,
		"amount_received", payload.AmountReceived)
	return WebhookCredited, nil
}

func (s *service) Get(ctx context.Context, id int) (*Topup, error) {
	t, err := s.topups.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Lazy expiry on read; the webhook path is unaffected because an
	// expired row is terminal.
	if t.Status == StatusPending && t.ExpiresAt != nil && t.ExpiresAt.Before(time.Now()) {
		return s.topups.MarkExpired(ctx, t.ID)
	}

	return t, nil
}

func (s *service) ListByUser(ctx context.Context, userID, limit, offset int) ([]Topup, error) {
	return s.topups.ListByUser(ctx, userID, limit, offset)
}
