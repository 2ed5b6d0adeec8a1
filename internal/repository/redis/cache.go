package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Karthik-sherigar/CodeCollab-Live/internal/domain"
	"github.com/google/uuid"
)

const (
	analyticsCachePrefix = "analytics:"
	analyticsCacheTTL    = 30 * time.Minute
)

// AnalyticsCache caches computed analytics for ended sessions. The event
// log of an ended session no longer grows, so cached entries stay correct
// until the session is deleted.
type AnalyticsCache struct {
	client *Client
}

// NewAnalyticsCache creates a new analytics cache
func NewAnalyticsCache(client *Client) *AnalyticsCache {
	return &AnalyticsCache{client: client}
}

// Get retrieves cached analytics for a session
func (c *AnalyticsCache) Get(ctx context.Context, sessionID uuid.UUID) (*domain.SessionAnalytics, error) {
	key := fmt.Sprintf("%s%s", analyticsCachePrefix, sessionID.String())

	data, err := c.client.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, nil // Cache miss
	}

	var analytics domain.SessionAnalytics
	if err := json.Unmarshal(data, &analytics); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analytics: %w", err)
	}

	return &analytics, nil
}

// Set caches analytics for a session
func (c *AnalyticsCache) Set(ctx context.Context, sessionID uuid.UUID, analytics *domain.SessionAnalytics) error {
	key := fmt.Sprintf("%s%s", analyticsCachePrefix, sessionID.String())

	data, err := json.Marshal(analytics)
	if err != nil {
		return fmt.Errorf("failed to marshal analytics: %w", err)
	}

	return c.client.rdb.Set(ctx, key, data, analyticsCacheTTL).Err()
}

// Invalidate removes cached analytics for a session
func (c *AnalyticsCache) Invalidate(ctx context.Context, sessionID uuid.UUID) error {
	key := fmt.Sprintf("%s%s", analyticsCachePrefix, sessionID.String())
	return c.client.rdb.Del(ctx, key).Err()
}
