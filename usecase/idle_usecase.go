package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"collab-backend/pkg/metrics"
)

// IdleUsecase closes conversations nobody has touched for a while.
type IdleUsecase struct {
	inquiries InquiryStore
	threshold time.Duration
	metrics   *metrics.Metrics
	log       *zap.Logger
	now       func() time.Time
}

func NewIdleUsecase(inquiries InquiryStore, threshold time.Duration, m *metrics.Metrics, log *zap.Logger) *IdleUsecase {
	return &IdleUsecase{inquiries: inquiries, threshold: threshold, metrics: m, log: log.Named("idle"), now: time.Now}
}

// CloseIdle closes every active inquiry idle for longer than the threshold and
// returns how many were closed.
func (u *IdleUsecase) CloseIdle(ctx context.Context) (int64, error) {
	before := u.now().Add(-u.threshold)
	n, err := u.inquiries.CloseIdle(ctx, before)
	if err != nil {
		return 0, err
	}
	u.metrics.IdleClosedAdd(n)
	if n > 0 {
		u.log.Info("closed idle inquiries", zap.Int64("count", n), zap.Time("inactive_since", before))
	}
	return n, nil
}
