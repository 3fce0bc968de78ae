package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskRecomputeTotals = "leads.recompute_totals"

// RecomputeTotalsPayload identifies the account whose stored leads
// must be re-scored against the current scoring configuration.
type RecomputeTotalsPayload struct {
	AccountID string `json:"accountId"`
}

func NewRecomputeTotalsTask(payload RecomputeTotalsPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRecomputeTotals, data), nil
}

func ParseRecomputeTotalsPayload(task *asynq.Task) (RecomputeTotalsPayload, error) {
	var payload RecomputeTotalsPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return RecomputeTotalsPayload{}, err
	}
	return payload, nil
}
