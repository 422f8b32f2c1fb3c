package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ordelix/ordelix/internal/health"
	jobmetrics "github.com/ordelix/ordelix/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// ReportRefresher recomputes the health report.
type ReportRefresher interface {
	Refresh(ctx context.Context) (health.Report, error)
}

// HealthSnapshotJob recomputes the health report so dashboard reads hit a warm cache.
type HealthSnapshotJob struct {
	Reports ReportRefresher
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewHealthSnapshotJob wires dependencies for the snapshot handler.
func NewHealthSnapshotJob(reports ReportRefresher, logger *slog.Logger, metrics *jobmetrics.Metrics) *HealthSnapshotJob {
	return &HealthSnapshotJob{
		Reports: reports,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes health snapshot tasks.
func (j *HealthSnapshotJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("health snapshot: handler not configured")
	}
	payload, err := decodeSnapshotPayload(t)
	if err != nil {
		return err
	}

	start := j.now()
	tracker := j.metrics().Track(TaskHealthSnapshot)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	if !payload.ScheduledFor.IsZero() {
		logger = logger.With(slog.Time("scheduled_for", payload.ScheduledFor))
	}

	report, err := j.Reports.Refresh(ctx)
	if err != nil {
		resultErr = err
		logger.Error("refresh health report", slog.Any("error", err))
		return resultErr
	}

	logger.Info("health snapshot computed",
		slog.Int("score", report.Score),
		slog.Int("orders", report.Metrics.OrderCount),
		slog.Int("low_stock", report.Metrics.LowStockCount),
		slog.Int("suggestions", len(report.Suggestions)),
		slog.Duration("duration", j.now().Sub(start)))
	return resultErr
}

func (j *HealthSnapshotJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskHealthSnapshot))
	}
	return slog.Default().With(slog.String("job", TaskHealthSnapshot))
}

func (j *HealthSnapshotJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *HealthSnapshotJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
