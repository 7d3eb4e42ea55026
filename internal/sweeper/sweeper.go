// Package sweeper re-polls submitted purchases in the background until
// the provider settles them. Jobs live in a Redis list so a restart
// does not lose them.
package sweeper

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/MamzStore/ppobb/internal/logger"
	"github.com/MamzStore/ppobb/internal/metrics"
	"github.com/MamzStore/ppobb/internal/purchase"

	"github.com/redis/go-redis/v9"
)

const (
	queueKey      = "purchase_sweeps"
	deadLetterKey = "purchase_sweeps:failed"
	maxTries      = 10
	retryBackoff  = 15 * time.Second
	popTimeout    = 2 * time.Second
)

type sweepJob struct {
	PurchaseID int       `json:"purchase_id"`
	Tries      int       `json:"tries"`
	Created    time.Time `json:"created"`
}

type Service struct {
	redis     *redis.Client
	purchases purchase.Service
}

func New(redisAddr string) *Service {
	return &Service{
		redis: redis.NewClient(&redis.Options{
			Addr: redisAddr,
		}),
	}
}

// EnqueueStatusCheck queues a purchase for background status polling.
func (s *Service) EnqueueStatusCheck(ctx context.Context, purchaseID int) error {
	job := sweepJob{
		PurchaseID: purchaseID,
		Tries:      0,
		Created:    time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, data).Err(); err != nil {
		logger.Error("failed to queue status sweep", "purchase_id", purchaseID, "error", err)
		return err
	}

	logger.Info("status sweep queued", "purchase_id", purchaseID)
	return nil
}

// Start runs the worker loop. The purchase service is handed in here
// rather than at construction because the service itself enqueues
// through this sweeper.
func (s *Service) Start(ctx context.Context, purchases purchase.Service) {
	s.purchases = purchases
	logger.Info("purchase sweeper started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("purchase sweeper stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, popTimeout, queueKey).Result()
	if err != nil {
		return
	}
	metrics.SweeperQueueLength.Set(float64(s.QueueLength(ctx)))

	var job sweepJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Error("bad sweep job data", "error", err)
		return
	}

	job.Tries++
	p, err := s.purchases.CheckStatus(ctx, job.PurchaseID)
	if err != nil {
		if errors.Is(err, purchase.ErrPurchaseNotFound) {
			logger.Error("sweep job for missing purchase dropped", "purchase_id", job.PurchaseID)
			return
		}
		logger.Error("status sweep failed", "purchase_id", job.PurchaseID, "attempt", job.Tries, "error", err)
		s.requeueOrPark(job, err)
		return
	}

	if p.IsTerminal() {
		logger.Info("purchase settled by sweeper",
			"purchase_id", p.ID, "status", p.Status, "attempt", job.Tries)
		return
	}

	// Provider still says pending.
	s.requeueOrPark(job, nil)
}

func (s *Service) requeueOrPark(job sweepJob, cause error) {
	if job.Tries < maxTries {
		time.Sleep(retryBackoff)
		data, _ := json.Marshal(job)
		s.redis.LPush(context.Background(), queueKey, data)
		return
	}

	// Out of tries; park the job where an operator can find it. The
	// purchase row itself stays submitted and can still be checked by
	// hand.
	parked := map[string]interface{}{
		"job":  job,
		"time": time.Now(),
	}
	if cause != nil {
		parked["error"] = cause.Error()
	}
	data, _ := json.Marshal(parked)
	s.redis.LPush(context.Background(), deadLetterKey, data)
	logger.Error("sweep job parked after max tries", "purchase_id", job.PurchaseID)
}

// Recover re-queues purchases that were submitted but have no pending
// sweep job, e.g. after a crash wiped Redis.
func (s *Service) Recover(ctx context.Context, repo purchase.Repository) error {
	pending, err := repo.ListSubmitted(ctx, 500)
	if err != nil {
		return err
	}

	for _, p := range pending {
		if err := s.EnqueueStatusCheck(ctx, p.ID); err != nil {
			return err
		}
	}

	if len(pending) > 0 {
		logger.Info("recovered submitted purchases into sweep queue", "count", len(pending))
	}
	return nil
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	return length
}

func (s *Service) Close() error {
	return s.redis.Close()
}
