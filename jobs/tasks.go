package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPolicyReload re-reads policy and entity files and swaps the
	// published snapshot.
	TaskPolicyReload = "policy:reload"
)

// PolicyReloadPayload describes one reload request. Empty paths fall back
// to the worker's configured defaults.
type PolicyReloadPayload struct {
	PolicyPath   string `json:"policy_path,omitempty"`
	EntitiesPath string `json:"entities_path,omitempty"`
}

// NewPolicyReloadTask constructs an Asynq task.
func NewPolicyReloadTask(payload PolicyReloadPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPolicyReload, data), nil
}
