package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskHealthSnapshot recomputes the business health report and warms the cache.
	TaskHealthSnapshot = "health:snapshot"
	// TaskLowStockScan counts materials at or below their threshold.
	TaskLowStockScan = "inventory:low-stock-scan"
)

// ScanUniqueness collapses low-stock scans enqueued in quick succession.
const ScanUniqueness = time.Minute

// SnapshotPayload carries scheduling metadata for on-demand runs.
type SnapshotPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewHealthSnapshotTask constructs an Asynq task for the health snapshot.
// A zero at leaves the payload empty; cron registrations use that form.
func NewHealthSnapshotTask(at time.Time) (*asynq.Task, error) {
	var body []byte
	if !at.IsZero() {
		raw, err := json.Marshal(SnapshotPayload{ScheduledFor: at.UTC()})
		if err != nil {
			return nil, err
		}
		body = raw
	}
	return asynq.NewTask(TaskHealthSnapshot, body, asynq.Queue(QueueDefault)), nil
}

// NewLowStockScanTask constructs a low-stock scan. The payload is always empty so
// every scan enqueued within ScanUniqueness maps to the same uniqueness key.
func NewLowStockScanTask() *asynq.Task {
	return asynq.NewTask(TaskLowStockScan, nil, asynq.Queue(QueueDefault), asynq.Unique(ScanUniqueness))
}

func decodeSnapshotPayload(t *asynq.Task) (SnapshotPayload, error) {
	var payload SnapshotPayload
	if len(t.Payload()) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return payload, asynq.SkipRetry
	}
	return payload, nil
}
