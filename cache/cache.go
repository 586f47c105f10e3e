// Package cache memoizes placement searches. The same (board, piece kind)
// pair recurs constantly across branches of a solve, and the reachability
// graph depends on nothing else once the rule set is fixed, so results are
// shared through a fixed-size hash-indexed table. Colliding stores simply
// overwrite: a lost entry only costs a recomputation.
package cache

import (
	"encoding/binary"
	"math"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/bryanmylee/perfect-clear/board"
	"github.com/bryanmylee/perfect-clear/movegen"
	"github.com/bryanmylee/perfect-clear/piece"
)

// estEntrySize approximates the heap footprint of one cached result,
// memo map included. Only used to size the table from a memory fraction.
const estEntrySize = 8192

const (
	minSizePowerOf2 = 12
	maxSizePowerOf2 = 24
)

type entry struct {
	key uint64
	res *movegen.Result
}

// Cache is a slot-per-hash table of search results. Safe for concurrent
// use; writers to the same slot race benignly (last writer wins).
type Cache struct {
	mu    sync.RWMutex
	slots []entry
	mask  uint64

	lookups atomic.Uint64
	hits    atomic.Uint64
	stores  atomic.Uint64
}

// New sizes a cache to the given fraction of system memory, clamped to
// [2^12, 2^24] slots.
func New(fractionOfMemory float64) *Cache {
	totalMem := memory.TotalMemory()
	desired := fractionOfMemory * (float64(totalMem) / float64(estEntrySize))
	power := int(math.Log2(desired))
	if power < minSizePowerOf2 {
		power = minSizePowerOf2
	}
	if power > maxSizePowerOf2 {
		power = maxSizePowerOf2
	}
	numSlots := 1 << power

	log.Debug().
		Int("num-slots", numSlots).
		Uint64("total-system-memory-bytes", totalMem).
		Msg("placement cache sized")

	return &Cache{
		slots: make([]entry, numSlots),
		mask:  uint64(numSlots - 1),
	}
}

// Key hashes everything a placement search depends on: the rule-set
// fingerprint, the board fill and the piece kind.
func Key(fingerprint uint64, b board.Board, k piece.Kind) uint64 {
	var buf [41]byte
	binary.LittleEndian.PutUint64(buf[0:], fingerprint)
	for i, seg := range b.Hash64() {
		binary.LittleEndian.PutUint64(buf[8+i*8:], seg)
	}
	buf[40] = byte(k)
	return xxhash.Sum64(buf[:])
}

// Get returns the cached result for key, if present.
func (c *Cache) Get(key uint64) (*movegen.Result, bool) {
	c.lookups.Add(1)
	c.mu.RLock()
	e := c.slots[key&c.mask]
	c.mu.RUnlock()
	if e.res == nil || e.key != key {
		return nil, false
	}
	c.hits.Add(1)
	return e.res, true
}

// Put stores the result for key, overwriting any slot occupant.
func (c *Cache) Put(key uint64, res *movegen.Result) {
	c.mu.Lock()
	c.slots[key&c.mask] = entry{key: key, res: res}
	c.mu.Unlock()
	c.stores.Add(1)
}

// Stats is a point-in-time counter snapshot.
type Stats struct {
	Lookups uint64
	Hits    uint64
	Stores  uint64
}

func (c *Cache) Stats() Stats {
	return Stats{
		Lookups: c.lookups.Load(),
		Hits:    c.hits.Load(),
		Stores:  c.stores.Load(),
	}
}

// Reset clears all entries and counters, keeping the allocation.
func (c *Cache) Reset() {
	c.mu.Lock()
	clear(c.slots)
	c.mu.Unlock()
	c.lookups.Store(0)
	c.hits.Store(0)
	c.stores.Store(0)
}
