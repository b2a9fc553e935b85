package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = 24 * time.Hour

// DedupChecker remembers which order status changes have already been
// announced, so a restarted client does not notify twice.
// Key format: notify:<order_id>:<status>
type DedupChecker struct {
	client redis.Cmdable
}

// NewDedupChecker creates a DedupChecker wrapping the given Redis client.
func NewDedupChecker(client redis.Cmdable) *DedupChecker {
	return &DedupChecker{client: client}
}

// Claim records the status change and reports whether this caller is the
// first to do so. The key is set with SETNX so that concurrent clients
// sharing a Redis instance announce a change once; it expires after dedupTTL.
func (d *DedupChecker) Claim(ctx context.Context, orderID int64, status string) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.key(orderID, status), "1", dedupTTL).Result()
	if err != nil {
		return false, fmt.Errorf("dedup claim: %w", err)
	}
	return ok, nil
}

func (d *DedupChecker) key(orderID int64, status string) string {
	return fmt.Sprintf("notify:%d:%s", orderID, status)
}
