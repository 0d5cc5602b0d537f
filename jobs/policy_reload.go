package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/gatehouse-authz/gatehouse/internal/authz"
	"github.com/gatehouse-authz/gatehouse/internal/loader"
)

// PolicyReloadJob rebuilds the snapshot from the policy and entity files
// and swaps it into the store. A failed load is reported and retried by
// Asynq while the previous snapshot stays live, so a broken file never
// takes down authorization.
type PolicyReloadJob struct {
	store        *authz.Store
	loader       *loader.Loader
	logger       *slog.Logger
	policyPath   string
	entitiesPath string
}

// NewPolicyReloadJob constructs the reload job with default file paths.
func NewPolicyReloadJob(store *authz.Store, l *loader.Loader, logger *slog.Logger, policyPath, entitiesPath string) *PolicyReloadJob {
	return &PolicyReloadJob{
		store:        store,
		loader:       l,
		logger:       logger,
		policyPath:   policyPath,
		entitiesPath: entitiesPath,
	}
}

// Handle processes TaskPolicyReload tasks.
func (j *PolicyReloadJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload PolicyReloadPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	policyPath := payload.PolicyPath
	if policyPath == "" {
		policyPath = j.policyPath
	}
	entitiesPath := payload.EntitiesPath
	if entitiesPath == "" {
		entitiesPath = j.entitiesPath
	}

	snap, err := j.Reload(ctx, policyPath, entitiesPath)
	if err != nil {
		if j.logger != nil {
			j.logger.Error("policy reload", slog.Any("error", err))
		}
		return err
	}
	if j.logger != nil {
		j.logger.Info("policy reload",
			slog.Int64("version", snap.Version),
			slog.Int("statements", snap.Policies.Len()))
	}
	return nil
}

// Reload performs one load-and-swap cycle.
func (j *PolicyReloadJob) Reload(ctx context.Context, policyPath, entitiesPath string) (*authz.Snapshot, error) {
	policies, err := j.loader.LoadPolicies(policyPath)
	if err != nil {
		return nil, err
	}
	entities, _, err := j.loader.LoadEntities(entitiesPath)
	if err != nil {
		return nil, err
	}
	return j.store.Swap(entities, policies), nil
}
