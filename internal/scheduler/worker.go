package scheduler

import (
	"context"
	"fmt"

	"scanner_backend/internal/delivery"
	"scanner_backend/platform/config"
	"scanner_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type Worker struct {
	server       *asynq.Server
	mux          *asynq.ServeMux
	orchestrator *delivery.Orchestrator
	log          *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, orchestrator *delivery.Orchestrator, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:       server,
		mux:          mux,
		orchestrator: orchestrator,
		log:          log,
	}

	mux.HandleFunc(TaskLeadFollowup, w.handleLeadFollowup)

	return w, nil
}

func (w *Worker) handleLeadFollowup(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadFollowupPayload(task)
	if err != nil {
		return err
	}

	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return err
	}

	return w.orchestrator.Process(ctx, delivery.FollowupParams{
		LeadID:    leadID,
		ClientIP:  payload.ClientIP,
		UserAgent: payload.UserAgent,
	})
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
