package jobs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse-authz/gatehouse/internal/authz"
	"github.com/gatehouse-authz/gatehouse/internal/loader"
)

const policyV1 = `
statements:
  - id: admin-all
    effect: permit
    principal:
      role: admin
    action:
      any: true
    resource:
      any: true
`

const policyV2 = policyV1 + `
  - id: viewer-describe
    effect: permit
    principal:
      role: viewer
    action:
      name: describe
    resource:
      any: true
`

const entitiesFixture = `
principals:
  - id: Alice
    roles: [admin]
  - id: Bob
    roles: [viewer]
`

func reloadFixture(t *testing.T) (*PolicyReloadJob, *authz.Store, string, string) {
	t.Helper()
	dir := t.TempDir()
	policyPath := filepath.Join(dir, "policies.yaml")
	entitiesPath := filepath.Join(dir, "entities.yaml")
	require.NoError(t, os.WriteFile(policyPath, []byte(policyV1), 0o600))
	require.NoError(t, os.WriteFile(entitiesPath, []byte(entitiesFixture), 0o600))

	l := loader.New()
	policies, err := l.LoadPolicies(policyPath)
	require.NoError(t, err)
	entities, _, err := l.LoadEntities(entitiesPath)
	require.NoError(t, err)

	store := authz.NewStore(entities, policies)
	job := NewPolicyReloadJob(store, l, nil, policyPath, entitiesPath)
	return job, store, policyPath, entitiesPath
}

func reloadTask(t *testing.T, payload PolicyReloadPayload) *asynq.Task {
	t.Helper()
	task, err := NewPolicyReloadTask(payload)
	require.NoError(t, err)
	return task
}

func TestPolicyReloadSwapsSnapshot(t *testing.T) {
	job, store, policyPath, _ := reloadFixture(t)
	require.NoError(t, os.WriteFile(policyPath, []byte(policyV2), 0o600))

	require.NoError(t, job.Handle(context.Background(), reloadTask(t, PolicyReloadPayload{})))

	snap := store.Current()
	assert.Equal(t, int64(2), snap.Version)
	assert.Equal(t, 2, snap.Policies.Len())

	dec, err := snap.Evaluate(context.Background(), authz.Request{
		Principal: "Bob", Action: "describe", Resource: authz.Resource{Kind: "Pod", Name: "nginx-pod"},
	})
	require.NoError(t, err)
	assert.True(t, dec.Allowed())
}

func TestPolicyReloadKeepsOldSnapshotOnFailure(t *testing.T) {
	job, store, policyPath, _ := reloadFixture(t)
	before := store.Current()

	require.NoError(t, os.WriteFile(policyPath, []byte("statements: [{id: broken, effect: audit}]"), 0o600))

	err := job.Handle(context.Background(), reloadTask(t, PolicyReloadPayload{}))
	require.Error(t, err)
	assert.Same(t, before, store.Current())
}

func TestPolicyReloadBadPayloadSkipsRetry(t *testing.T) {
	job, _, _, _ := reloadFixture(t)

	err := job.Handle(context.Background(), asynq.NewTask(TaskPolicyReload, []byte("{not json")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestPolicyReloadPayloadOverridesPaths(t *testing.T) {
	job, store, _, entitiesPath := reloadFixture(t)

	altPolicy := filepath.Join(t.TempDir(), "alt.yaml")
	require.NoError(t, os.WriteFile(altPolicy, []byte(policyV2), 0o600))

	payload, err := json.Marshal(PolicyReloadPayload{PolicyPath: altPolicy, EntitiesPath: entitiesPath})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), asynq.NewTask(TaskPolicyReload, payload)))
	assert.Equal(t, 2, store.Current().Policies.Len())
}
