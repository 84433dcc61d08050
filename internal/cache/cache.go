package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"time"

	"github.com/ppiankov/juridoc/internal/model"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key hashes the parts that identify one extraction call into a cache key.
// Parts are length-prefixed so ("ab", "c") and ("a", "bc") differ.
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		var size [8]byte
		n := len(p)
		for i := range size {
			size[i] = byte(n >> (8 * i))
		}
		h.Write(size[:])
		h.Write([]byte(p))
	}
	return "juridoc-v1-" + hex.EncodeToString(h.Sum(nil))
}

// New builds the cache described by cfg: nil when disabled, memory-only
// when no directory is set, memory backed by disk otherwise.
func New(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return nil
	}

	memoryTTL := time.Duration(cfg.MemoryTTL) * time.Minute
	if cfg.Dir == "" {
		return NewMemoryCache(memoryTTL, 10*time.Minute)
	}
	return NewLayeredCache(memoryTTL, filepath.Clean(cfg.Dir), time.Duration(cfg.DiskTTL)*time.Hour)
}
