package sweeper

import (
	"context"
	"testing"

	"github.com/MamzStore/ppobb/internal/purchase"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPurchaseService struct{ mock.Mock }

func (m *MockPurchaseService) Place(ctx context.Context, userID, productID int, destination string) (*purchase.Purchase, error) {
	args := m.Called(ctx, userID, productID, destination)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchase.Purchase), args.Error(1)
}

func (m *MockPurchaseService) CheckStatus(ctx context.Context, purchaseID int) (*purchase.Purchase, error) {
	args := m.Called(ctx, purchaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchase.Purchase), args.Error(1)
}

func (m *MockPurchaseService) GetByID(ctx context.Context, purchaseID int) (*purchase.Purchase, error) {
	args := m.Called(ctx, purchaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchase.Purchase), args.Error(1)
}

func (m *MockPurchaseService) ListByUser(ctx context.Context, userID, limit, offset int) ([]purchase.PurchaseWithProduct, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]purchase.PurchaseWithProduct), args.Error(1)
}

func newTestSweeper(rdb *redis.Client, purchases purchase.Service) *Service {
	return &Service{
		redis:     rdb,
		purchases: purchases,
	}
}

func TestEnqueueStatusCheck(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.Regexp().ExpectLPush(queueKey, `.*"purchase_id":11.*`).SetVal(1)

	svc := newTestSweeper(db, new(MockPurchaseService))

	err := svc.EnqueueStatusCheck(ctx, 11)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnqueueStatusCheck_RedisDown(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.Regexp().ExpectLPush(queueKey, `.*`).SetErr(assert.AnError)

	svc := newTestSweeper(db, new(MockPurchaseService))

	err := svc.EnqueueStatusCheck(ctx, 11)
	assert.Error(t, err)
}

func TestProcessNext_SettledPurchaseIsDone(t *testing.T) {
	db, rmock := redismock.NewClientMock()
	ctx := context.Background()

	rmock.ExpectBRPop(popTimeout, queueKey).
		SetVal([]string{queueKey, `{"purchase_id":11,"tries":0,"created":"2026-01-01T00:00:00Z"}`})
	rmock.ExpectLLen(queueKey).SetVal(0)

	purchases := new(MockPurchaseService)
	purchases.On("CheckStatus", mock.Anything, 11).
		Return(&purchase.Purchase{ID: 11, Status: purchase.StatusSuccess}, nil)

	svc := newTestSweeper(db, purchases)
	svc.processNext(ctx)

	// Settled, so nothing goes back on the queue.
	purchases.AssertExpectations(t)
	require.NoError(t, rmock.ExpectationsWereMet())
}

func TestProcessNext_MissingPurchaseDropped(t *testing.T) {
	db, rmock := redismock.NewClientMock()
	ctx := context.Background()

	rmock.ExpectBRPop(popTimeout, queueKey).
		SetVal([]string{queueKey, `{"purchase_id":404,"tries":0,"created":"2026-01-01T00:00:00Z"}`})
	rmock.ExpectLLen(queueKey).SetVal(0)

	purchases := new(MockPurchaseService)
	purchases.On("CheckStatus", mock.Anything, 404).
		Return(nil, purchase.ErrPurchaseNotFound)

	svc := newTestSweeper(db, purchases)
	svc.processNext(ctx)

	purchases.AssertExpectations(t)
	require.NoError(t, rmock.ExpectationsWereMet())
}

func TestQueueLength(t *testing.T) {
	db, rmock := redismock.NewClientMock()
	ctx := context.Background()

	rmock.ExpectLLen(queueKey).SetVal(3)

	svc := newTestSweeper(db, new(MockPurchaseService))

	assert.Equal(t, int64(3), svc.QueueLength(ctx))
	assert.NoError(t, rmock.ExpectationsWereMet())
}
