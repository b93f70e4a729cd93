// Package redis is a discovery directory backed by Redis sorted sets.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	rds "github.com/redis/go-redis/v9"

	"github.com/KamdynS/petclinic-genai/discovery"
)

// Registry keeps three keys per service under <prefix>:services:<serviceID>:
// a sorted set of instance ids scored by first registration time, a hash of
// the serialized instances and a sorted set of last-seen times used for TTL
// pruning. Instances are returned oldest registration first, so
// FirstSelector keeps picking the same instance across heartbeats.
type Registry struct {
	client rds.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRegistry creates a registry. When ttl > 0, instances not refreshed
// within ttl are ignored and pruned on read.
func NewRegistry(client rds.UniversalClient, prefix string, ttl time.Duration) *Registry {
	return &Registry{client: client, prefix: prefix, ttl: ttl}
}

func (r *Registry) key(serviceID string) string {
	p := r.prefix
	if p != "" {
		p += ":"
	}
	return fmt.Sprintf("%sservices:%s", p, serviceID)
}

func (r *Registry) instancesKey(serviceID string) string { return r.key(serviceID) + ":instances" }

func (r *Registry) seenKey(serviceID string) string { return r.key(serviceID) + ":seen" }

// Register adds an instance or refreshes it. A refresh updates the stored
// instance and its last-seen time but keeps the original registration time.
func (r *Registry) Register(ctx context.Context, inst discovery.Instance) error {
	if inst.ServiceID == "" {
		return errors.New("register: empty service id")
	}
	if inst.InstanceID == "" {
		inst.InstanceID = inst.URI()
	}
	b, err := json.Marshal(inst)
	if err != nil {
		return err
	}
	now := float64(time.Now().UnixNano())
	_, err = r.client.TxPipelined(ctx, func(pipe rds.Pipeliner) error {
		pipe.ZAddNX(ctx, r.key(inst.ServiceID), rds.Z{Score: now, Member: inst.InstanceID})
		pipe.HSet(ctx, r.instancesKey(inst.ServiceID), inst.InstanceID, string(b))
		pipe.ZAdd(ctx, r.seenKey(inst.ServiceID), rds.Z{Score: now, Member: inst.InstanceID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("register %s/%s: %w", inst.ServiceID, inst.InstanceID, err)
	}
	return nil
}

// Deregister removes an instance by id. Removing an unknown id is not an error.
func (r *Registry) Deregister(ctx context.Context, serviceID, instanceID string) error {
	return r.remove(ctx, serviceID, instanceID)
}

func (r *Registry) remove(ctx context.Context, serviceID string, instanceIDs ...string) error {
	if len(instanceIDs) == 0 {
		return nil
	}
	members := make([]interface{}, len(instanceIDs))
	for i, id := range instanceIDs {
		members[i] = id
	}
	_, err := r.client.TxPipelined(ctx, func(pipe rds.Pipeliner) error {
		pipe.ZRem(ctx, r.key(serviceID), members...)
		pipe.ZRem(ctx, r.seenKey(serviceID), members...)
		pipe.HDel(ctx, r.instancesKey(serviceID), instanceIDs...)
		return nil
	})
	return err
}

// Instances implements discovery.Client interface
func (r *Registry) Instances(ctx context.Context, serviceID string) ([]discovery.Instance, error) {
	if r.ttl > 0 {
		cutoff := fmt.Sprintf("(%d", time.Now().Add(-r.ttl).UnixNano())
		stale, err := r.client.ZRangeByScore(ctx, r.seenKey(serviceID), &rds.ZRangeBy{Min: "-inf", Max: cutoff}).Result()
		if err != nil && !errors.Is(err, rds.Nil) {
			return nil, err
		}
		if err := r.remove(ctx, serviceID, stale...); err != nil {
			return nil, err
		}
	}

	ids, err := r.client.ZRange(ctx, r.key(serviceID), 0, -1).Result()
	if err != nil && !errors.Is(err, rds.Nil) {
		return nil, err
	}
	if len(ids) == 0 {
		return []discovery.Instance{}, nil
	}
	raw, err := r.client.HMGet(ctx, r.instancesKey(serviceID), ids...).Result()
	if err != nil {
		return nil, err
	}
	out := make([]discovery.Instance, 0, len(ids))
	for _, v := range raw {
		// a concurrent Deregister may have removed the hash entry
		s, ok := v.(string)
		if !ok {
			continue
		}
		var inst discovery.Instance
		if err := json.Unmarshal([]byte(s), &inst); err != nil {
			return nil, fmt.Errorf("decode instance of %s: %w", serviceID, err)
		}
		out = append(out, inst)
	}
	return out, nil
}

// Heartbeat re-registers inst every interval until ctx is done
func (r *Registry) Heartbeat(ctx context.Context, inst discovery.Instance, interval time.Duration) error {
	if err := r.Register(ctx, inst); err != nil {
		return err
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if err := r.Register(ctx, inst); err != nil {
				return err
			}
		}
	}
}

var _ discovery.Client = (*Registry)(nil)
