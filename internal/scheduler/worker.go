package scheduler

import (
	"context"
	"fmt"
	"time"

	leadsservice "leadscoring_backend/internal/leads/service"
	"leadscoring_backend/platform/config"
	"leadscoring_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const uniqueWindow = time.Minute

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	leads  *leadsservice.Service
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, leads *leadsservice.Service, log *logger.Logger) (*Worker, error) {
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
		server: server,
		mux:    mux,
		leads:  leads,
		log:    log,
	}

	mux.HandleFunc(TaskRecomputeTotals, w.handleRecomputeTotals)

	return w, nil
}

func (w *Worker) handleRecomputeTotals(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseRecomputeTotalsPayload(task)
	if err != nil {
		return err
	}

	accountID, err := uuid.Parse(payload.AccountID)
	if err != nil {
		return err
	}

	w.log.TaskEvent(TaskRecomputeTotals, "started", "account_id", accountID)
	if err := w.leads.RecomputeTotals(ctx, accountID); err != nil {
		w.log.TaskEvent(TaskRecomputeTotals, "failed", "account_id", accountID, "error", err)
		return err
	}
	w.log.TaskEvent(TaskRecomputeTotals, "completed", "account_id", accountID)
	return nil
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
