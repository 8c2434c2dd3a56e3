package categories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TreeCache stores each hub's rendered category forest in Redis. Every
// category write invalidates the owning hub's entry; a stale tree is never
// served past the TTL.
type TreeCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewTreeCache(client *redis.Client, ttl time.Duration) *TreeCache {
	return &TreeCache{client: client, ttl: ttl}
}

func treeKey(hubID int64) string {
	return fmt.Sprintf("catalog:tree:%d", hubID)
}

// Get returns the cached forest for the hub, or ok=false on miss or any
// Redis/decode failure. Cache errors never fail a read path.
func (c *TreeCache) Get(ctx context.Context, hubID int64) ([]*TreeNode, bool) {
	data, err := c.client.Get(ctx, treeKey(hubID)).Bytes()
	if err != nil {
		return nil, false
	}
	var tree []*TreeNode
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, false
	}
	return tree, true
}

// Set stores the forest, best effort.
func (c *TreeCache) Set(ctx context.Context, hubID int64, tree []*TreeNode) {
	data, err := json.Marshal(tree)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, treeKey(hubID), data, c.ttl).Err()
}

// Invalidate drops the hub's cached forest.
func (c *TreeCache) Invalidate(ctx context.Context, hubID int64) error {
	return c.client.Del(ctx, treeKey(hubID)).Err()
}
