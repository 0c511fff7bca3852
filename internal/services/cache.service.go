package services

import (
	"sync"
	"time"

	"volumescope/internal/models"
)

type volumeCacheEntry struct {
	usage     *models.VolumeUsage
	fetchedAt time.Time
}

// VolumeCache holds volume usage per path with a TTL. Scan results are never
// cached; only the cheap statfs-style lookups are.
type VolumeCache struct {
	mu      sync.RWMutex
	entries map[string]volumeCacheEntry
	ttl     time.Duration
	fetch   func(string) (*models.VolumeUsage, error)
}

var volumeCache = NewVolumeCache(5*time.Second, GetVolumeUsage)

// NewVolumeCache creates a cache that calls fetch on a miss
func NewVolumeCache(ttl time.Duration, fetch func(string) (*models.VolumeUsage, error)) *VolumeCache {
	return &VolumeCache{
		entries: make(map[string]volumeCacheEntry),
		ttl:     ttl,
		fetch:   fetch,
	}
}

// SetCacheTTL sets the volume cache time-to-live
func SetCacheTTL(duration time.Duration) {
	volumeCache.mu.Lock()
	defer volumeCache.mu.Unlock()
	volumeCache.ttl = duration
}

// GetCachedVolumeUsage returns cached volume usage if valid, otherwise fetches fresh
func GetCachedVolumeUsage(path string) (*models.VolumeUsage, error) {
	return volumeCache.Get(path)
}

func (vc *VolumeCache) isValid(entry volumeCacheEntry) bool {
	return entry.usage != nil && time.Since(entry.fetchedAt) < vc.ttl
}

// Get returns the cached usage for path, refreshing it when stale
func (vc *VolumeCache) Get(path string) (*models.VolumeUsage, error) {
	vc.mu.RLock()
	entry, ok := vc.entries[path]
	if ok && vc.isValid(entry) {
		defer vc.mu.RUnlock()
		return entry.usage, nil
	}
	vc.mu.RUnlock()

	// Fetched outside the lock
	usage, err := vc.fetch(path)
	if err != nil {
		return nil, err
	}

	vc.mu.Lock()
	vc.entries[path] = volumeCacheEntry{usage: usage, fetchedAt: time.Now()}
	vc.mu.Unlock()

	return usage, nil
}

// Clear drops every entry
func (vc *VolumeCache) Clear() {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	vc.entries = make(map[string]volumeCacheEntry)
}
