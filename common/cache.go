package common

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/ground-x/gxchain/log"
)

var logger = log.NewModuleLogger("common")

// SeenCache is a small, fixed-capacity "have I already processed this"
// cache, keyed by Hash. The gossip adapter keeps one per topic to avoid
// re-delivering a message it has already forwarded to the node, since the
// overlay contract (spec §4.6) makes no deduplication guarantee of its own.
//
// Adapted from the teacher's common.Cache: the ARC and shard variants are
// dropped (nothing here runs at a scale that needs them), leaving only the
// plain hashicorp/golang-lru wrapper, repurposed from a generic keyed cache
// into a single-purpose seen-set.
type SeenCache struct {
	lru *lru.Cache
}

// NewSeenCache builds a SeenCache holding at most size entries.
func NewSeenCache(size int) *SeenCache {
	if size <= 0 {
		size = 1
	}
	c, err := lru.New(size)
	if err != nil {
		logger.Error("failed to allocate seen-message cache", "size", size, "err", err)
		c, _ = lru.New(1)
	}
	return &SeenCache{lru: c}
}

// MarkSeen records h as seen and reports whether it had already been seen.
func (c *SeenCache) MarkSeen(h Hash) (alreadySeen bool) {
	if c.lru.Contains(h) {
		return true
	}
	c.lru.Add(h, struct{}{})
	return false
}
