// Copyright (c) 2025 Insightst
// Licensed under the MIT License. See LICENSE file in the project root for details.

package manifest

import "sync"

var (
	// Process-wide cache; cleared when the CLI exits.
	globalCache     *Manifest
	globalCacheLock sync.RWMutex
)

// GetCached returns the cached manifest, or nil if not cached.
func GetCached() *Manifest {
	globalCacheLock.RLock()
	defer globalCacheLock.RUnlock()
	return globalCache
}

// SetCached stores the manifest in RAM.
func SetCached(m *Manifest) {
	globalCacheLock.Lock()
	defer globalCacheLock.Unlock()
	globalCache = m
}

// ClearCache removes the manifest from RAM.
func ClearCache() {
	globalCacheLock.Lock()
	defer globalCacheLock.Unlock()
	globalCache = nil
}

// SessionCache exposes the RAM cache as session-scoped storage: it is dropped
// whenever the session ends.
type SessionCache struct{}

// Clear implements auth.Clearer.
func (SessionCache) Clear() error {
	ClearCache()
	return nil
}
