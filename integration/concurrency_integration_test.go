package integration_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MamzStore/ppobb/internal/catalog"
	"github.com/MamzStore/ppobb/internal/fulfillment"
	"github.com/MamzStore/ppobb/internal/ledger"
	"github.com/MamzStore/ppobb/internal/payment"
	"github.com/MamzStore/ppobb/internal/purchase"
	"github.com/MamzStore/ppobb/internal/topup"
	"github.com/MamzStore/ppobb/internal/user"
)

// A provider that retries hard can deliver the same webhook from several
// workers at once. Only one delivery may move money.
func TestTopupWebhook_ConcurrentDuplicateDeliveries_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()

	cleanDatabase(t, db)

	srv := fakePaymentServer()
	defer srv.Close()

	ledgerRepo := ledger.NewRepository(db)
	topupRepo := topup.NewRepository(db, ledgerRepo)
	svc := topup.NewService(topupRepo, payment.NewClient(srv.URL, "test-key"), "http://localhost:8080/api/topup/webhook")
	ctx := context.Background()

	userID := createTestUser(t, db, "race-topup@test.com", "Race Topup")
	fundWallet(t, db, userID, 10_000)

	created, err := svc.Create(ctx, userID, 50_000)
	require.NoError(t, err)

	payload := payment.WebhookPayload{
		Status:         "PAID",
		RefID:          created.RefID,
		AmountReceived: 50_123,
		TrxIDGateway:   "MPAY-TRX-1",
	}

	type delivery struct {
		result topup.WebhookResult
		err    error
	}

	const deliveries = 8
	results := make(chan delivery, deliveries)

	var wg sync.WaitGroup
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.HandleWebhook(ctx, payload)
			results <- delivery{result, err}
		}()
	}
	wg.Wait()
	close(results)

	credited, duplicates := 0, 0
	for d := range results {
		require.NoError(t, d.err)
		switch d.result {
		case topup.WebhookCredited:
			credited++
		case topup.WebhookDuplicate:
			duplicates++
		}
	}
	require.Equal(t, 1, credited)
	require.Equal(t, deliveries-1, duplicates)

	require.Equal(t, int64(60_000), walletBalance(t, db, userID))

	entries, err := ledgerRepo.GetEntries(ctx, userID, 20, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, ledger.EntryTopupCredit, entries[0].Type)
}

func TestLedger_ConcurrentDebits_NeverOverdraw_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()

	cleanDatabase(t, db)

	ledgerRepo := ledger.NewRepository(db)
	ctx := context.Background()

	userID := createTestUser(t, db, "race-debit@test.com", "Race Debit")
	fundWallet(t, db, userID, 30_000)

	// 10 workers race for a balance that only covers 3 debits.
	const workers = 10
	errs := make(chan error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := ledgerRepo.Adjust(ctx, userID, -10_000, ledger.EntryPurchaseDebit, fmt.Sprintf("debit-%d", n))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	succeeded, rejected := 0, 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, ledger.ErrInsufficientBalance)
			rejected++
		}
	}
	require.Equal(t, 3, succeeded)
	require.Equal(t, workers-3, rejected)

	require.Equal(t, int64(0), walletBalance(t, db, userID))

	entries, err := ledgerRepo.GetEntries(ctx, userID, 20, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
}

func TestPurchase_ConcurrentPlace_NeverOverdraw_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()

	cleanDatabase(t, db)

	provider := &fakeProvider{acceptSubmit: true, checkStatus: "Pending", echoRefID: true}
	srv := provider.server()
	defer srv.Close()

	ledgerRepo := ledger.NewRepository(db)
	purchaseRepo := purchase.NewRepository(db, ledgerRepo)
	svc := purchase.NewService(
		purchaseRepo,
		catalog.NewRepository(db),
		user.NewRepository(db),
		ledgerRepo,
		fulfillment.NewClient(srv.URL, "test-key"),
		noopEnqueuer{},
	)
	ctx := context.Background()

	userID := createTestUser(t, db, "race-buyer@test.com", "Race Buyer")
	productID := createTestProduct(t, db, "TSEL10R", 10_000)
	fundWallet(t, db, userID, 25_000)

	const attempts = 6
	errs := make(chan error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Place(ctx, userID, productID, "081234567890")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	placed, rejected := 0, 0
	for err := range errs {
		if err == nil {
			placed++
		} else {
			require.ErrorIs(t, err, ledger.ErrInsufficientBalance)
			rejected++
		}
	}
	require.Equal(t, 2, placed)
	require.Equal(t, attempts-2, rejected)

	require.Equal(t, int64(5_000), walletBalance(t, db, userID))

	var rows int
	require.NoError(t, db.Get(&rows, `SELECT COUNT(*) FROM purchases WHERE user_id = $1`, userID))
	require.Equal(t, 2, rows)
}
