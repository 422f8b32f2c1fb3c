package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/ordelix/ordelix/internal/jobs"
	"github.com/ordelix/ordelix/internal/masterdata"
)

// MaterialLister lists every material.
type MaterialLister interface {
	ListMaterials(ctx context.Context) ([]masterdata.Material, error)
}

// LowStockScanJob publishes the low-stock gauge and warns about backlogged materials.
type LowStockScanJob struct {
	Materials MaterialLister
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
}

// NewLowStockScanJob initialises the scan handler.
func NewLowStockScanJob(materials MaterialLister, logger *slog.Logger, metrics *jobmetrics.Metrics) *LowStockScanJob {
	return &LowStockScanJob{Materials: materials, Logger: logger, Metrics: metrics}
}

// Handle executes the scan.
func (j *LowStockScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Materials == nil {
		return errors.New("low stock scan: handler not configured")
	}
	if _, err := decodeSnapshotPayload(t); err != nil {
		return err
	}

	tracker := j.metrics().Track(TaskLowStockScan)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	materials, err := j.Materials.ListMaterials(ctx)
	if err != nil {
		resultErr = err
		logger.Error("list materials", slog.Any("error", err))
		return resultErr
	}

	low := LowStock(materials)
	for _, m := range low {
		level := slog.LevelInfo
		if m.Quantity < 0 {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "material below threshold",
			slog.String("material_id", m.ID),
			slog.String("name", m.Name),
			slog.Int("quantity", m.Quantity),
			slog.Int("threshold", m.LowStockThreshold))
	}
	j.metrics().SetLowStock(len(low))
	logger.Info("low stock scan completed", slog.Int("materials", len(materials)), slog.Int("low", len(low)))
	return resultErr
}

// LowStock filters materials at or below their threshold, keeping input order.
func LowStock(materials []masterdata.Material) []masterdata.Material {
	low := make([]masterdata.Material, 0)
	for _, m := range materials {
		if m.IsLowStock() {
			low = append(low, m)
		}
	}
	return low
}

func (j *LowStockScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskLowStockScan))
	}
	return slog.Default().With(slog.String("job", TaskLowStockScan))
}

func (j *LowStockScanJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
