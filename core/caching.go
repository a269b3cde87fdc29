package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/repopulse/internal/contract"
	"github.com/huangsam/repopulse/schema"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// defaultCacheTTL applies when the config carries no TTL.
const defaultCacheTTL = 7 * 24 * time.Hour

// cachedLoadRecords loads the record set, reusing a cached copy while the inputs are unchanged.
func cachedLoadRecords(ctx context.Context, cfg *contract.Config, src contract.RecordSource, mgr contract.CacheManager) (*schema.RecordSet, error) {
	records := mgr.GetRecordStore()
	if records == nil {
		// Fallback to direct loading
		return src.Load(ctx)
	}

	key, err := generateCacheKey(ctx, src)
	if err != nil {
		// Load reports the missing input with a better message
		return src.Load(ctx)
	}

	// Check for cache hit
	if set := checkCacheHit(records, key, cfg.CacheTTL, location(cfg)); set != nil {
		return set, nil
	}

	// Cache miss: load and store
	return loadAndStore(ctx, src, records, key)
}

// checkCacheHit attempts to retrieve and validate a cached record set
func checkCacheHit(records contract.CacheStore, key string, ttl time.Duration, loc *time.Location) *schema.RecordSet {
	data, version, ts, err := records.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	// Validate version and staleness
	if version == currentCacheVersion {
		entryTimestamp := time.Unix(ts, 0)
		if time.Since(entryTimestamp) <= ttl {
			var set schema.RecordSet
			if err := json.Unmarshal(data, &set); err == nil {
				relocate(&set, loc)
				return &set // Cache hit
			}
		}
	}

	return nil // Cache miss (stale or version mismatch)
}

// loadAndStore loads the records and stores them in cache
func loadAndStore(ctx context.Context, src contract.RecordSource, records contract.CacheStore, key string) (*schema.RecordSet, error) {
	set, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}

	// Store in cache
	if data, err := json.Marshal(set); err == nil {
		if err := records.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
			contract.LogWarn("Failed to cache records", err)
		}
	}

	return set, nil
}

// generateCacheKey creates a unique key from the fingerprint of every input
func generateCacheKey(ctx context.Context, src contract.RecordSource) (string, error) {
	fingerprint, err := src.Fingerprint(ctx)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("records:v%d:%s", currentCacheVersion, fingerprint)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key))), nil
}

// relocate moves decoded timestamps back into the configured zone.
// JSON keeps only the offset.
func relocate(set *schema.RecordSet, loc *time.Location) {
	in := func(t *time.Time) {
		if t != nil {
			*t = t.In(loc)
		}
	}
	for i := range set.PullRequests {
		pr := &set.PullRequests[i]
		in(&pr.Opened)
		in(pr.Closed)
		in(pr.Merged)
		for j := range pr.Reviews {
			in(&pr.Reviews[j])
		}
	}
	for i := range set.Issues {
		issue := &set.Issues[i]
		in(&issue.Opened)
		in(issue.Closed)
	}
	for i := range set.Videos {
		video := &set.Videos[i]
		in(&video.ReviewDate)
		in(video.UploadDate)
	}
}
