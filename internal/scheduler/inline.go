package scheduler

import (
	"context"
	"time"

	"scanner_backend/internal/delivery"
	"scanner_backend/platform/logger"

	"github.com/google/uuid"
)

const inlineFollowupTimeout = 60 * time.Second

// InlineDispatcher runs followups on an in-process goroutine. Used when no
// Redis is configured, so single-node deployments still get background
// followups without a queue.
type InlineDispatcher struct {
	orchestrator *delivery.Orchestrator
	log          *logger.Logger
}

func NewInlineDispatcher(orchestrator *delivery.Orchestrator, log *logger.Logger) *InlineDispatcher {
	return &InlineDispatcher{orchestrator: orchestrator, log: log}
}

func (d *InlineDispatcher) DispatchLeadFollowup(_ context.Context, payload LeadFollowupPayload) error {
	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return err
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), inlineFollowupTimeout)
		defer cancel()

		if err := d.orchestrator.Process(ctx, delivery.FollowupParams{
			LeadID:    leadID,
			ClientIP:  payload.ClientIP,
			UserAgent: payload.UserAgent,
		}); err != nil {
			d.log.Error("inline followup failed", "error", err, "leadId", payload.LeadID)
		}
	}()

	return nil
}
