package cache

import "sync/atomic"

// counters receives sturdyc metric callbacks for one namespace.
type counters struct {
	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

func (c *counters) CacheHit()  { c.hits.Add(1) }
func (c *counters) CacheMiss() { c.misses.Add(1) }

func (c *counters) EntriesEvicted(n int) { c.evictions.Add(int64(n)) }

func (c *counters) AsynchronousRefresh()                 {}
func (c *counters) SynchronousRefresh()                  {}
func (c *counters) MissingRecord()                       {}
func (c *counters) ForcedEviction()                      {}
func (c *counters) ShardIndex(int)                       {}
func (c *counters) CacheBatchRefreshSize(int)            {}
func (c *counters) ObserveCacheSize(callback func() int) {}

// Stats is a point-in-time view of one namespace.
type Stats struct {
	Name          string  `json:"name"`
	Size          int     `json:"size"`
	HitCount      int64   `json:"hitCount"`
	MissCount     int64   `json:"missCount"`
	HitRate       float64 `json:"hitRate"`
	MissRate      float64 `json:"missRate"`
	EvictionCount int64   `json:"evictionCount"`
}

func (c *counters) snapshot(name string, size int) Stats {
	hits, misses := c.hits.Load(), c.misses.Load()
	s := Stats{
		Name:          name,
		Size:          size,
		HitCount:      hits,
		MissCount:     misses,
		EvictionCount: c.evictions.Load(),
		HitRate:       1,
	}
	if total := hits + misses; total > 0 {
		s.HitRate = float64(hits) / float64(total)
		s.MissRate = float64(misses) / float64(total)
	}
	return s
}
