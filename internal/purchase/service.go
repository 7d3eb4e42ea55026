package purchase

import (
	"context"
	"errors"
	"fmt"

	"github.com/MamzStore/ppobb/internal/catalog"
	"github.com/MamzStore/ppobb/internal/fulfillment"
	"github.com/MamzStore/ppobb/internal/ledger"
	"github.com/MamzStore/ppobb/internal/logger"
	"github.com/MamzStore/ppobb/internal/metrics"
	"github.com/MamzStore/ppobb/internal/user"

	"github.com/google/uuid"
)

var (
	ErrProductInactive    = errors.New("product is not active")
	ErrNotSubmitted       = errors.New("purchase was never submitted to the provider")
	ErrGatewayUnreachable = errors.New("could not reach fulfillment provider")
	ErrGatewayRejected    = errors.New("fulfillment provider rejected the purchase")
)

type Service interface {
	Place(ctx context.Context, userID, productID int, destination string) (*Purchase, error)
	CheckStatus(ctx context.Context, purchaseID int) (*Purchase, error)
	GetByID(ctx context.Context, purchaseID int) (*Purchase, error)
	ListByUser(ctx context.Context, userID, limit, offset int) ([]PurchaseWithProduct, error)
}

// Enqueuer hands a submitted purchase to the background status sweeper.
type Enqueuer interface {
	EnqueueStatusCheck(ctx context.Context, purchaseID int) error
}

type service struct {
	purchases Repository
	products  catalog.Repository
	users     user.Repository
	wallet    ledger.Repository
	gateway   fulfillment.Client
	sweeper   Enqueuer
}

func NewService(
	purchases Repository,
	products catalog.Repository,
	users user.Repository,
	wallet ledger.Repository,
	gateway fulfillment.Client,
	sweeper Enqueuer,
) Service {
	return &service{
		purchases: purchases,
		products:  products,
		users:     users,
		wallet:    wallet,
		gateway:   gateway,
		sweeper:   sweeper,
	}
}

// Place runs the purchase state machine up to its first rest point:
// debit, record, submit. A submission that cannot be accepted is rolled
// back synchronously (refund + failed) before the error is returned.
func (s *service) Place(ctx context.Context, userID, productID int, destination string) (*Purchase, error) {
	product, err := s.products.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, ErrProductInactive
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	refID := uuid.NewString()

	// Conditional debit; no purchase row exists if this fails.
	if _, err := s.wallet.Adjust(ctx, userID, -product.Price, ledger.EntryPurchaseDebit, refID); err != nil {
		return nil, err
	}

	p, err := s.purchases.Create(ctx, userID, productID, destination, product.Price, refID)
	if err != nil {
		// The debit has landed but no purchase row could be written;
		// reverse it before surfacing the storage error.
		if _, refundErr := s.wallet.Adjust(ctx, userID, product.Price, ledger.EntryPurchaseRefund, refID); refundErr != nil {
			logger.Error("failed to reverse debit after create error",
				"user_id", userID, "ref_id", refID, "error", refundErr)
		}
		return nil, err
	}

	result, err := s.gateway.Submit(ctx, product.Code, destination, refID)
	if err != nil {
		if _, _, refundErr := s.purchases.FailWithRefund(ctx, p.ID, "provider unreachable"); refundErr != nil {
			logger.Error("refund after unreachable submit failed",
				"purchase_id", p.ID, "error", refundErr)
			// Keep the unreachable classification so callers still treat
			// this as a provider outage, not an internal failure.
			return nil, fmt.Errorf("%w: refund failed: %v", ErrGatewayUnreachable, refundErr)
		}
		metrics.RecordPurchase(StatusFailed)
		metrics.RecordRefund()
		logger.Error("fulfillment submit unreachable", "purchase_id", p.ID, "error", err)
		return nil, ErrGatewayUnreachable
	}

	if !result.Accepted {
		_, _, refundErr := s.purchases.FailWithRefund(ctx, p.ID, result.Message)
		if refundErr != nil {
			logger.Error("refund after rejected submit failed",
				"purchase_id", p.ID, "error", refundErr)
			return nil, refundErr
		}
		metrics.RecordPurchase(StatusFailed)
		metrics.RecordRefund()
		logger.Info("fulfillment rejected purchase",
			"purchase_id", p.ID, "message", result.Message)
		return nil, fmt.Errorf("%w: %s", ErrGatewayRejected, result.Message)
	}

	providerRef := result.ProviderRefID
	if providerRef == "" {
		providerRef = refID
	}

	submitted, err := s.purchases.MarkSubmitted(ctx, p.ID, providerRef)
	if err != nil {
		return nil, err
	}
	metrics.RecordPurchase(StatusSubmitted)
	logger.Info("purchase submitted",
		"purchase_id", submitted.ID, "ref_id", providerRef, "amount", submitted.Amount)

	if s.sweeper != nil {
		if err := s.sweeper.EnqueueStatusCheck(ctx, submitted.ID); err != nil {
			logger.Error("failed to enqueue status sweep", "purchase_id", submitted.ID, "error", err)
		}
	}

	return submitted, nil
}

// CheckStatus re-polls the provider for a submitted purchase. Calling it
// on a terminal purchase is a no-op; calling it twice for a failure
// refunds once.
func (s *service) CheckStatus(ctx context.Context, purchaseID int) (*Purchase, error) {
	p, err := s.purchases.GetByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}

	if p.IsTerminal() {
		return p, nil
	}

	if p.Status != StatusSubmitted || p.RefID == nil || *p.RefID == "" {
		return nil, ErrNotSubmitted
	}

	status, err := s.gateway.CheckStatus(ctx, *p.RefID)
	if err != nil {
		return nil, ErrGatewayUnreachable
	}

	switch status.State {
	case fulfillment.StateSuccess:
		// Debit already happened at submission; only the row moves.
		updated, err := s.purchases.MarkSuccess(ctx, purchaseID, status.SerialNumber)
		if err != nil {
			return nil, err
		}
		metrics.RecordPurchase(StatusSuccess)
		logger.Info("purchase succeeded", "purchase_id", purchaseID, "serial", status.SerialNumber)
		return updated, nil

	case fulfillment.StateFailed:
		updated, refunded, err := s.purchases.FailWithRefund(ctx, purchaseID, "provider reported failure")
		if err != nil {
			return nil, err
		}
		if refunded {
			metrics.RecordPurchase(StatusFailed)
			metrics.RecordRefund()
			logger.Info("purchase failed, refunded", "purchase_id", purchaseID, "amount", updated.Amount)
		}
		return updated, nil

	default:
		return p, nil
	}
}

func (s *service) GetByID(ctx context.Context, purchaseID int) (*Purchase, error) {
	return s.purchases.GetByID(ctx, purchaseID)
}

func (s *service) ListByUser(ctx context.Context, userID, limit, offset int) ([]PurchaseWithProduct, error) {
	return s.purchases.ListByUser(ctx, userID, limit, offset)
}
