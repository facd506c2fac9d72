package utils

import (
	"sync"
	"time"
)

var (
	submitLocks = make(map[string]time.Time)
	submitMutex = &sync.Mutex{}
)

const submitLockDuration = 10 * time.Second

// CheckAndSetSubmitLock takes a short-lived lock for a (guild, user) pair so
// a double-clicked command does not reach the enforcement API twice. The
// store's uniqueness constraint stays the real serialization point; this only
// damps the common case.
func CheckAndSetSubmitLock(guildID, userID string) bool {
	key := guildID + ":" + userID

	submitMutex.Lock()
	defer submitMutex.Unlock()

	if lockedAt, ok := submitLocks[key]; ok {
		if time.Since(lockedAt) < submitLockDuration {
			return false // Locked
		}
	}

	submitLocks[key] = time.Now()
	return true
}

// ReleaseSubmitLock releases the lock taken by CheckAndSetSubmitLock.
func ReleaseSubmitLock(guildID, userID string) {
	key := guildID + ":" + userID

	submitMutex.Lock()
	defer submitMutex.Unlock()

	delete(submitLocks, key)
}
