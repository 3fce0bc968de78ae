package scheduler

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"

	"leadscoring_backend/internal/events"
	"leadscoring_backend/platform/config"
	"leadscoring_backend/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

type Client struct {
	client *asynq.Client
	queue  string
	log    *logger.Logger
}

func NewClient(cfg config.SchedulerConfig, log *logger.Logger) (*Client, error) {
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

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
		log:    log,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueRecomputeTotals queues a re-score of the account's stored
// leads. Tasks for the same account within a short window collapse
// into one via uniqueness.
func (c *Client) EnqueueRecomputeTotals(ctx context.Context, accountID string) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewRecomputeTotalsTask(RecomputeTotalsPayload{AccountID: accountID})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.MaxRetry(3),
		asynq.Unique(uniqueWindow))
	if err != nil && !errors.Is(err, asynq.ErrDuplicateTask) {
		return err
	}
	return nil
}

// RegisterHandlers subscribes the client to scoring configuration
// changes so every mutation triggers a background recompute.
func (c *Client) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.ScoringConfigChanged{}.EventName(), events.HandlerFunc(
		func(ctx context.Context, event events.Event) error {
			changed, ok := event.(events.ScoringConfigChanged)
			if !ok {
				return nil
			}
			return c.EnqueueRecomputeTotals(ctx, changed.AccountID.String())
		}))
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
