package worker

import (
	"context"
	"time"

	"content_studio/internal/logger"
	"content_studio/internal/metrics"
)

const scheduledPublishWorker = "scheduled_publish"

// DuePublisher đăng các nội dung đã tới giờ hẹn (ContentService)
type DuePublisher interface {
	PublishDue(ctx context.Context, now time.Time) (int, error)
}

// ScheduledPublishWorker worker đăng nội dung theo lịch.
// Mỗi tick đăng mọi nội dung có schedule.publishAt <= now; lỗi của một tick không dừng worker.
type ScheduledPublishWorker struct {
	publisher DuePublisher
	interval  time.Duration // Khoảng thời gian giữa các lần chạy
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewScheduledPublishWorker tạo mới ScheduledPublishWorker
// Tham số:
//   - publisher: service đăng nội dung
//   - interval: Khoảng thời gian giữa các lần chạy (mặc định: 30 giây)
//   - m: metrics, có thể nil
func NewScheduledPublishWorker(publisher DuePublisher, interval time.Duration, m *metrics.Metrics) *ScheduledPublishWorker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &ScheduledPublishWorker{
		publisher: publisher,
		interval:  interval,
		metrics:   m,
		now:       time.Now,
	}
}

// Start chạy worker đến khi ctx bị hủy
func (w *ScheduledPublishWorker) Start(ctx context.Context) {
	log := logger.GetAppLogger()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.WithFields(map[string]interface{}{
		"interval": w.interval.String(),
	}).Info("🗓️ [SCHEDULED_PUBLISH] Starting Scheduled Publish Worker...")

	for {
		select {
		case <-ctx.Done():
			log.Info("🗓️ [SCHEDULED_PUBLISH] Scheduled Publish Worker stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce chạy một lần, trả về số nội dung đã đăng. Panic được recover và tính là lỗi.
func (w *ScheduledPublishWorker) RunOnce(ctx context.Context) (published int) {
	log := logger.GetAppLogger()
	defer func() {
		if r := recover(); r != nil {
			w.metrics.IncWorkerRun(scheduledPublishWorker, "panic")
			log.WithFields(map[string]interface{}{
				"panic": r,
			}).Error("🗓️ [SCHEDULED_PUBLISH] Panic khi đăng nội dung theo lịch, sẽ tiếp tục ở lần chạy tiếp theo")
			published = 0
		}
	}()

	var err error
	published, err = w.publisher.PublishDue(ctx, w.now())
	if err != nil {
		w.metrics.IncWorkerRun(scheduledPublishWorker, "error")
		log.WithError(err).Error("🗓️ [SCHEDULED_PUBLISH] Lỗi lấy danh sách nội dung tới hạn")
		return 0
	}
	w.metrics.IncWorkerRun(scheduledPublishWorker, "ok")

	// published = 0 thì không log
	if published > 0 {
		log.WithFields(map[string]interface{}{
			"published": published,
		}).Info("🗓️ [SCHEDULED_PUBLISH] Đã đăng nội dung theo lịch")
	}
	return published
}
