package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dvfens/ags/internal/app/service"
	"github.com/dvfens/ags/pkg/logger"
)

// StateSweeper removes expired rows of the database state backend.
type StateSweeper interface {
	DeleteExpired(now time.Time) (int64, error)
}

// OrderExpiryScheduler cancels stale unpaid ONLINE orders and sweeps expired
// session state on the same schedule.
type OrderExpiryScheduler struct {
	cron         *cron.Cron
	spec         string
	ttl          time.Duration
	orderService service.OrderService
	sweeper      StateSweeper
}

// NewOrderExpiryScheduler builds the scheduler. sweeper may be nil when session
// state lives in Redis.
func NewOrderExpiryScheduler(orderService service.OrderService, sweeper StateSweeper, spec string, ttl time.Duration) *OrderExpiryScheduler {
	return &OrderExpiryScheduler{
		cron:         cron.New(),
		spec:         spec,
		ttl:          ttl,
		orderService: orderService,
		sweeper:      sweeper,
	}
}

func (s *OrderExpiryScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, s.RunOnce)
	if err != nil {
		logger.Error("Failed to add cron job for order expiry", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Order expiry scheduler started", map[string]interface{}{
		"spec": s.spec,
		"ttl":  s.ttl.String(),
	})
	return nil
}

// RunOnce performs a single expiry pass.
func (s *OrderExpiryScheduler) RunOnce() {
	expired, err := s.orderService.ExpirePendingOrders(s.ttl)
	if err != nil {
		logger.Error("Scheduled order expiry failed", err)
	} else if expired > 0 {
		logger.Info("Expired pending orders", map[string]interface{}{
			"count": expired,
		})
	}

	if s.sweeper == nil {
		return
	}
	swept, err := s.sweeper.DeleteExpired(time.Now())
	if err != nil {
		logger.Error("Failed to sweep expired session state", err)
		return
	}
	if swept > 0 {
		logger.Debug("Swept expired session state", map[string]interface{}{
			"count": swept,
		})
	}
}

func (s *OrderExpiryScheduler) Stop() {
	logger.Info("Stopping order expiry scheduler...", nil)
	<-s.cron.Stop().Done()
	logger.Info("Order expiry scheduler stopped", nil)
}
