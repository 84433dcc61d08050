package extract

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/ppiankov/juridoc/internal/cache"
)

// CachedCapability memoizes successful extraction calls. Flatten is stable,
// so the same document and entity type always produce the same request.
type CachedCapability struct {
	next      Capability
	cache     cache.Cache
	ttl       time.Duration
	namespace string // distinguishes endpoints sharing one cache directory
	logger    *slog.Logger
}

// NewCachedCapability wraps next with c. A zero ttl uses the cache default.
func NewCachedCapability(next Capability, c cache.Cache, ttl time.Duration, namespace string, logger *slog.Logger) *CachedCapability {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CachedCapability{
		next:      next,
		cache:     c,
		ttl:       ttl,
		namespace: namespace,
		logger:    logger,
	}
}

// ExtractEntities serves from the cache or calls the wrapped capability.
// Failures are never cached.
func (c *CachedCapability) ExtractEntities(ctx context.Context, req Request) ([]string, error) {
	key := cache.Key(c.namespace, req.DocumentType, string(req.Entity), req.Text)

	if data, found := c.cache.Get(key); found {
		var spans []string
		if err := json.Unmarshal(data, &spans); err == nil {
			c.logger.Debug("extraction cache hit", "entity_type", req.Entity)
			return spans, nil
		}
		_ = c.cache.Delete(key)
	}

	spans, err := c.next.ExtractEntities(ctx, req)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(spans); err == nil {
		if err := c.cache.Set(key, data, c.ttl); err != nil {
			c.logger.Warn("extraction cache write failed", "entity_type", req.Entity, "error", err)
		}
	}
	return spans, nil
}
