package emu

import "github.com/sarchlab/mipsdyn/insts"

// TranslationCache maps instruction addresses to translated cells. Keys are
// full virtual addresses including the mode bit, so the same location seen
// in 32-bit and MIPS16 mode caches separately.
type TranslationCache struct {
	cells map[uint64]Cell

	hits   uint64
	misses uint64
}

// TranslationCacheStats holds lookup counters.
type TranslationCacheStats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

// NewTranslationCache creates an empty cache.
func NewTranslationCache() *TranslationCache {
	return &TranslationCache{cells: make(map[uint64]Cell)}
}

// Lookup returns the cell cached for addr.
func (c *TranslationCache) Lookup(addr uint64) (Cell, bool) {
	cell, ok := c.cells[addr]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return cell, ok
}

// Store caches a cell for addr, replacing any previous one.
func (c *TranslationCache) Store(addr uint64, cell Cell) {
	c.cells[addr] = cell
}

// Invalidate drops the cell cached for addr.
func (c *TranslationCache) Invalidate(addr uint64) {
	delete(c.cells, addr)
}

// InvalidateRange drops every cell whose encoding overlaps [start, end) and
// returns how many were dropped.
func (c *TranslationCache) InvalidateRange(start, end uint64) int {
	n := 0
	for addr := range c.cells {
		first := addr &^ 1
		last := first + uint64(insts.Size(addr))
		if first < end && last > start {
			delete(c.cells, addr)
			n++
		}
	}
	return n
}

// Clear drops all cells and resets the lookup counters.
func (c *TranslationCache) Clear() {
	clear(c.cells)
	c.ResetStats()
}

// ResetStats zeroes the lookup counters.
func (c *TranslationCache) ResetStats() {
	c.hits = 0
	c.misses = 0
}

// Len returns the number of cached cells.
func (c *TranslationCache) Len() int {
	return len(c.cells)
}

// Stats returns the lookup counters.
func (c *TranslationCache) Stats() TranslationCacheStats {
	return TranslationCacheStats{
		Hits:    c.hits,
		Misses:  c.misses,
		Entries: len(c.cells),
	}
}
