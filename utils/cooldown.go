package utils

import (
	"context"
	"sync"
	"time"
)

// in-memory fallback store
type cooldownEntry struct {
	expiresAt time.Time
}

var (
	cooldowns   = map[string]cooldownEntry{}
	cooldownsMu sync.Mutex
)

// EmailCooldownTrySet sets a cooldown key for resending a verification email.
// Returns true if set, false if still cooling down. Prefer Redis; fallback to memory.
func EmailCooldownTrySet(email string, cooldown time.Duration) bool {
	key := "cooldown:email:" + email
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if ok, err := rc.SetNX(ctx, key, "1", cooldown).Result(); err == nil {
			return ok
		}
		// On Redis error fall through to the memory fallback
	}
	cooldownsMu.Lock()
	defer cooldownsMu.Unlock()
	if entry, ok := cooldowns[key]; ok && time.Now().Before(entry.expiresAt) {
		return false
	}
	cooldowns[key] = cooldownEntry{expiresAt: time.Now().Add(cooldown)}
	return true
}

// EmailCooldownClear releases a cooldown early, used when the send the
// cooldown was guarding could not be delivered.
func EmailCooldownClear(email string) {
	key := "cooldown:email:" + email
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rc.Del(ctx, key).Err(); err == nil {
			return
		}
	}
	cooldownsMu.Lock()
	delete(cooldowns, key)
	cooldownsMu.Unlock()
}
