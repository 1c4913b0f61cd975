package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fraudsight/transaction-service/internal/models"
	"github.com/fraudsight/transaction-service/internal/query"
)

const keyPrefix = "transactions:"

// Per-view TTLs. The plain admin list turns over fastest; per-user views are
// invalidated on every write by their owner and can live longer.
const (
	allTTL   = 60 * time.Second
	userTTL  = 300 * time.Second
	adminTTL = 120 * time.Second
)

// Coordinator runs the cache-aside discipline around search results. Every
// operation is best-effort: failures are logged and the request proceeds as
// if the cache were absent.
type Coordinator struct {
	store Store
	log   *logrus.Logger
}

// NewCoordinator initializes a cache coordinator
func NewCoordinator(store Store, log *logrus.Logger) *Coordinator {
	return &Coordinator{store: store, log: log}
}

// SearchKey derives the cache key and TTL for a scoped search. Keys are
// grouped by view (per-user, admin list, admin filtered) and suffixed with a
// hash of the normalized filter, so distinct filter combinations cache
// distinctly while invalidation can still drop a whole view by prefix.
func SearchKey(scope query.Scope, f query.Filter) (string, time.Duration) {
	h := filterHash(f)
	if !scope.Admin {
		return fmt.Sprintf("%suser:%d:%s", keyPrefix, scope.UserID, h), userTTL
	}
	if unfiltered(f) {
		return keyPrefix + "all:" + h, allTTL
	}
	return keyPrefix + "admin:" + h, adminTTL
}

// unfiltered reports whether the filter narrows nothing beyond pagination
// and sort, i.e. the plain list view.
func unfiltered(f query.Filter) bool {
	return f.AmountMin == nil && f.AmountMax == nil &&
		f.DateFrom == nil && f.DateTo == nil &&
		f.CreatedHoursAgo == nil && f.UserID == nil && f.UserCreatedDays == nil &&
		f.Type == "" && f.Status == "" && f.Search == ""
}

func filterHash(f query.Filter) string {
	raw, err := json.Marshal(f)
	if err != nil {
		// Filter contains only marshalable fields; this cannot happen.
		return "0"
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:8])
}

// GetSearch returns a cached search response, or reports a miss. Cache
// failures and undecodable entries count as misses.
func (c *Coordinator) GetSearch(ctx context.Context, key string) (*models.SearchResponse, bool) {
	payload, found, err := c.store.Get(ctx, key)
	if err != nil {
		c.log.Warnf("Cache read failed for %s: %v", key, err)
		return nil, false
	}
	if !found {
		return nil, false
	}
	var resp models.SearchResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		c.log.Warnf("Cache entry for %s is undecodable: %v", key, err)
		return nil, false
	}
	return &resp, true
}

// PutSearch stores a fully computed search response. Nothing is written for
// an already-cancelled request, so aborted computes leave no partial entries.
func (c *Coordinator) PutSearch(ctx context.Context, key string, ttl time.Duration, resp *models.SearchResponse) {
	if ctx.Err() != nil {
		return
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		c.log.Warnf("Cache encode failed for %s: %v", key, err)
		return
	}
	if err := c.store.Set(ctx, key, payload, ttl); err != nil {
		c.log.Warnf("Cache write failed for %s: %v", key, err)
	}
}

// Invalidate drops every cached view that could contain the user's rows:
// the user's own view plus both admin-facing views. Invalidation is
// unconditional, not predicate-aware.
func (c *Coordinator) Invalidate(ctx context.Context, userID int64) {
	prefixes := []string{
		fmt.Sprintf("%suser:%d:", keyPrefix, userID),
		keyPrefix + "all:",
		keyPrefix + "admin:",
	}
	for _, prefix := range prefixes {
		if err := c.store.DeleteByPrefix(ctx, prefix); err != nil {
			c.log.Warnf("Cache invalidation failed for %s: %v", prefix, err)
		}
	}
}
