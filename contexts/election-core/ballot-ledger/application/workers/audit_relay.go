package workers

import (
	"context"
	"log/slog"
	"time"

	application "greenballot/contexts/election-core/ballot-ledger/application"
	"greenballot/contexts/election-core/ballot-ledger/ports"
)

// AuditRelay publishes persisted audit rows to the event bus so external
// subscribers observe one event per committed mutation, in commit order.
type AuditRelay struct {
	Audit     ports.AuditLog
	Publisher ports.Publisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

// RunOnce publishes a bounded batch of pending audit rows and marks each row
// published only after the broker accepts it. It stops on the first failure
// so the retry loop can reprocess remaining rows safely.
func (r AuditRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Audit.ListPendingAudit(ctx, limit)
	if err != nil {
		logger.Error("audit relay list failed",
			"event", "ballot_audit_list_failed",
			"module", "election-core/ballot-ledger",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	for _, row := range pending {
		if err := r.Publisher.Publish(ctx, row.EntityID, row.Payload); err != nil {
			logger.Error("audit relay publish failed",
				"event", "ballot_audit_publish_failed",
				"module", "election-core/ballot-ledger",
				"layer", "worker",
				"audit_id", row.AuditID,
				"event_type", row.EventType,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Audit.MarkAuditPublished(ctx, row.AuditID, now); err != nil {
			logger.Error("audit relay mark published failed",
				"event", "ballot_audit_mark_published_failed",
				"module", "election-core/ballot-ledger",
				"layer", "worker",
				"audit_id", row.AuditID,
				"error", err.Error(),
			)
			return err
		}
	}

	logger.Info("audit relay cycle completed",
		"event", "ballot_audit_relay_completed",
		"module", "election-core/ballot-ledger",
		"layer", "worker",
		"published_count", len(pending),
	)
	return nil
}
