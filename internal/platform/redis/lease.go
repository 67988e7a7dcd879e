// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package redis

import (
	stdctx "context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/milize/internal/platform/constants"
)

// releaseScript deletes the lease only if this holder still owns it.
// KEYS[1] = lease key
// ARGV[1] = holder token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`)

// Leaser hands out short exclusive leases named after a sweep.
type Leaser struct {
	client *redis.Client
}

// NewLeaser wraps client.
func NewLeaser(client *redis.Client) *Leaser {
	return &Leaser{client: client}
}

// Acquire takes the lease called name for at most ttl.
//
// # Returns
//   - release: frees the lease; safe to call once the lease has expired.
//   - ok: false when another holder owns the lease.
func (l *Leaser) Acquire(context stdctx.Context, name string, ttl time.Duration) (release func(), ok bool, err error) {
	key := constants.RedisPrefixLease + name
	token := uuid.NewString()

	acquired, err := l.client.SetNX(context, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis: acquire lease %s: %w", name, err)
	}
	if !acquired {
		return func() {}, false, nil
	}

	release = func() {
		// A detached context lets the release run after the caller was cancelled.
		releaseCtx, cancel := stdctx.WithTimeout(stdctx.WithoutCancel(context), writeTimeout)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err()
	}
	return release, true, nil
}
