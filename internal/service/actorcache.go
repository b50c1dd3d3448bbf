package service

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/forsa/checkin-server-go/internal/model"
	redisclient "github.com/forsa/checkin-server-go/internal/redis"
)

// CachedActor is the slice of a profile the redemption path needs repeatedly.
// Cached with a short TTL so a role change propagates within seconds; never
// authoritative for anything but redemption authorization.
type CachedActor struct {
	Role        model.Role `json:"role"`
	DisplayName *string    `json:"displayName,omitempty"`
}

type ActorCache struct {
	redisClient *redisclient.Client
	ttl         time.Duration
}

func NewActorCache(redisClient *redisclient.Client, ttl time.Duration) *ActorCache {
	return &ActorCache{redisClient: redisClient, ttl: ttl}
}

// Get returns the cached actor, or nil on miss. Redis errors degrade to a
// miss so the caller falls back to the profile store.
func (c *ActorCache) Get(ctx context.Context, profileID string) *CachedActor {
	if c == nil || c.ttl <= 0 {
		return nil
	}

	data, err := c.redisClient.Get(ctx, redisclient.ActorCacheKey(profileID)).Result()
	if err != nil {
		if err != goredis.Nil {
			log.Warn().Err(err).Str("profileId", profileID).Msg("actor cache read failed")
		}
		return nil
	}

	var actor CachedActor
	if err := json.Unmarshal([]byte(data), &actor); err != nil {
		log.Warn().Err(err).Str("profileId", profileID).Msg("actor cache entry corrupt")
		return nil
	}
	return &actor
}

// Put stores the actor, best effort.
func (c *ActorCache) Put(ctx context.Context, profileID string, actor CachedActor) {
	if c == nil || c.ttl <= 0 {
		return
	}

	data, err := json.Marshal(actor)
	if err != nil {
		return
	}
	if err := c.redisClient.Set(ctx, redisclient.ActorCacheKey(profileID), data, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("profileId", profileID).Msg("actor cache write failed")
	}
}
