package utils

import (
	"sync"
	"time"
)

var (
	blacklistedTokens = make(map[string]time.Time)
	blacklistMutex    sync.Mutex
)

// BlacklistToken revokes a token until it would have expired anyway.
func BlacklistToken(token string, expiry time.Time) {
	blacklistMutex.Lock()
	defer blacklistMutex.Unlock()
	pruneBlacklistLocked(time.Now())
	blacklistedTokens[token] = expiry
}

func IsTokenBlacklisted(token string) bool {
	blacklistMutex.Lock()
	defer blacklistMutex.Unlock()

	expiry, exists := blacklistedTokens[token]
	if !exists {
		return false
	}
	if time.Now().Before(expiry) {
		return true
	}
	delete(blacklistedTokens, token)
	return false
}

func pruneBlacklistLocked(now time.Time) {
	for token, expiry := range blacklistedTokens {
		if now.After(expiry) {
			delete(blacklistedTokens, token)
		}
	}
}
