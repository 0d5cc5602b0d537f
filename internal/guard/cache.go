package guard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/gatehouse-authz/gatehouse/internal/authz"
)

// DecisionCache memoises decisions in Redis. Keys carry the snapshot
// version, so a policy reload invalidates every prior entry without a
// flush. Requests carrying context attributes bypass the cache: their
// decisions are not a function of (principal, action, resource) alone.
type DecisionCache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewDecisionCache instantiates the cache helper.
func NewDecisionCache(client *redis.Client, ttl time.Duration) *DecisionCache {
	return &DecisionCache{client: client, ttl: ttl}
}

// Evaluate returns a cached decision when one exists, evaluating and
// storing it otherwise. Concurrent misses for the same key collapse into
// a single evaluation. Redis being unavailable degrades to direct
// evaluation rather than failing the authorization check.
func (c *DecisionCache) Evaluate(ctx context.Context, snap *authz.Snapshot, req authz.Request) (authz.Decision, error) {
	if c == nil || c.client == nil || len(req.Context) > 0 {
		return snap.Evaluate(ctx, req)
	}

	key := fmt.Sprintf("gatehouse:decision:%d:%s:%s:%s/%s",
		snap.Version, req.Principal, req.Action, req.Resource.Kind, req.Resource.Name)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var dec authz.Decision
		if err := json.Unmarshal(payload, &dec); err == nil {
			return dec, nil
		}
	}

	result, err, _ := c.group.Do(key, func() (any, error) {
		dec, err := snap.Evaluate(ctx, req)
		if err != nil {
			return authz.Decision{}, err
		}
		if raw, err := json.Marshal(dec); err == nil {
			_ = c.client.Set(ctx, key, raw, c.ttl).Err()
		}
		return dec, nil
	})
	if err != nil {
		return authz.Decision{}, err
	}
	return result.(authz.Decision), nil
}
