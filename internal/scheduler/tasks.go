// Package scheduler enqueues and runs deferred lead followup work via asynq.
package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskLeadFollowup = "lead.followup"

// LeadFollowupPayload identifies the lead plus the submission attribution the
// conversion event needs.
type LeadFollowupPayload struct {
	LeadID    string `json:"leadId"`
	ClientIP  string `json:"clientIp"`
	UserAgent string `json:"userAgent"`
}

func NewLeadFollowupTask(payload LeadFollowupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadFollowup, data), nil
}

func ParseLeadFollowupPayload(task *asynq.Task) (LeadFollowupPayload, error) {
	var payload LeadFollowupPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadFollowupPayload{}, err
	}
	return payload, nil
}
