package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/bookedbarber/bookedbarber-api/internal/config"
	"github.com/bookedbarber/bookedbarber-api/internal/models"
)

// membershipTTL bounds how stale a cached membership row can get when a
// mutation misses the explicit invalidation path.
const membershipTTL = 60 * time.Second

func NewRedisClient(cfg config.RedisConfig, log *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Info("redis connected", zap.String("addr", cfg.Addr))
	return client, nil
}

// MembershipCache caches user/organization join rows. Only positive lookups
// are cached; absence always goes back to the store, so granting access takes
// effect immediately. Cache failures degrade to a miss, never to a denial.
type MembershipCache struct {
	client *redis.Client
	log    *zap.Logger
}

func NewMembershipCache(client *redis.Client, log *zap.Logger) *MembershipCache {
	return &MembershipCache{client: client, log: log}
}

func key(userID, organizationID uint) string {
	return fmt.Sprintf("authz:member:%d:%d", userID, organizationID)
}

func (c *MembershipCache) Get(ctx context.Context, userID, organizationID uint) (*models.UserOrganization, bool) {
	raw, err := c.client.Get(ctx, key(userID, organizationID)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.log.Warn("membership cache get failed", zap.Error(err))
		return nil, false
	}

	var m models.UserOrganization
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, false
	}
	return &m, true
}

func (c *MembershipCache) Set(ctx context.Context, m *models.UserOrganization) {
	raw, err := json.Marshal(m)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key(m.UserID, m.OrganizationID), raw, membershipTTL).Err(); err != nil {
		c.log.Warn("membership cache set failed", zap.Error(err))
	}
}

func (c *MembershipCache) Invalidate(ctx context.Context, userID, organizationID uint) {
	if err := c.client.Del(ctx, key(userID, organizationID)).Err(); err != nil {
		c.log.Warn("membership cache invalidate failed", zap.Error(err))
	}
}
