package feed

import (
	"hash/fnv"
	"sort"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"

	"io.winapps.starlight/internal/metrics"
	models "io.winapps.starlight/internal/models/account"
)

// Composer memoizes ComposeFeed per (snapshot revision, follow list). A new
// snapshot gets a new revision, so stale orderings are never served; the TTL
// only bounds memory.
type Composer struct {
	cache   *cache.Cache
	metrics metrics.Recorder
}

// NewComposer creates a composer whose memo entries live for ttl
func NewComposer(ttl time.Duration, rec metrics.Recorder) *Composer {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Composer{
		cache:   cache.New(ttl, 2*ttl),
		metrics: rec,
	}
}

// Compose returns ComposeFeed(entries, following), reusing an earlier result
// for the same revision and follow set.
func (c *Composer) Compose(revision uint64, entries []models.Entry, following []string) []models.Entry {
	if len(following) == 0 {
		return entries
	}

	key := strconv.FormatUint(revision, 10) + ":" + fingerprint(following)
	if x, found := c.cache.Get(key); found {
		c.metrics.RecordFeedComposition(true)
		return x.([]models.Entry)
	}

	out := ComposeFeed(entries, following)
	c.cache.Set(key, out, cache.DefaultExpiration)
	c.metrics.RecordFeedComposition(false)
	return out
}

// fingerprint is order-insensitive so the same set always hits the same memo
func fingerprint(ids []string) string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	h := fnv.New64a()
	for _, id := range sorted {
		h.Write([]byte(id))
		h.Write([]byte{0})
	}
	return strconv.FormatUint(h.Sum64(), 16)
}
