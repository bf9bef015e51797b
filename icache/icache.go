// Package icache models a set-associative instruction cache in front of
// physical memory, using Akita cache components for tag and LRU state.
package icache

import (
	"errors"
	"fmt"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid icache config")

// Config holds cache configuration parameters.
type Config struct {
	// Size in bytes
	Size int `json:"size"`
	// Associativity (number of ways)
	Associativity int `json:"associativity"`
	// BlockSize in bytes (cache line size)
	BlockSize int `json:"block_size"`
	// HitLatency in cycles
	HitLatency uint64 `json:"hit_latency"`
	// MissLatency in cycles (includes memory access time)
	MissLatency uint64 `json:"miss_latency"`
}

// DefaultConfig returns a 16KB, 4-way cache with 32B lines, close to the
// primary instruction caches of the R4000/5K families.
func DefaultConfig() Config {
	return Config{
		Size:          16 * 1024,
		Associativity: 4,
		BlockSize:     32,
		HitLatency:    1,
		MissLatency:   20,
	}
}

// Validate checks that the geometry describes at least one set of
// power-of-two sized lines.
func (c Config) Validate() error {
	if c.BlockSize < 4 || c.BlockSize&(c.BlockSize-1) != 0 {
		return fmt.Errorf("%w: block size %d must be a power of two >= 4",
			ErrInvalidConfig, c.BlockSize)
	}
	if c.Associativity <= 0 {
		return fmt.Errorf("%w: associativity must be positive", ErrInvalidConfig)
	}
	if c.Size <= 0 || c.Size%(c.Associativity*c.BlockSize) != 0 {
		return fmt.Errorf("%w: size %d is not a multiple of associativity*block size",
			ErrInvalidConfig, c.Size)
	}
	return nil
}

// NumSets returns the number of sets the geometry yields.
func (c Config) NumSets() int {
	return c.Size / (c.Associativity * c.BlockSize)
}

// AccessResult contains the result of a cache access.
type AccessResult struct {
	// Hit indicates whether the access was a cache hit.
	Hit bool
	// Latency is the number of cycles this access takes.
	Latency uint64
	// Data holds the bytes read, in memory order.
	Data []byte
}

// Statistics holds cache performance statistics.
type Statistics struct {
	Reads         uint64
	Hits          uint64
	Misses        uint64
	Evictions     uint64
	Invalidations uint64
	Uncached      uint64
}

// BackingStore is the memory the cache fills lines from.
type BackingStore interface {
	Read(addr uint64, size int) []byte
}

// Cache is a read-only instruction cache.
type Cache struct {
	config Config

	// Akita cache directory for tag/state management
	directory *akitacache.DirectoryImpl

	// Data storage - indexed by (setID * associativity + wayID)
	dataStore [][]byte

	stats   Statistics
	backing BackingStore
}

// New creates a new cache with the given configuration.
func New(config Config, backing BackingStore) *Cache {
	numSets := config.NumSets()
	totalBlocks := numSets * config.Associativity

	dataStore := make([][]byte, totalBlocks)
	for i := range dataStore {
		dataStore[i] = make([]byte, config.BlockSize)
	}

	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
		dataStore: dataStore,
		backing:   backing,
	}
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns cache statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// ResetStats clears cache statistics.
func (c *Cache) ResetStats() {
	c.stats = Statistics{}
}

func (c *Cache) blockIndex(block *akitacache.Block) int {
	return block.SetID*c.config.Associativity + block.WayID
}

func (c *Cache) blockAddr(addr uint64) uint64 {
	return addr &^ uint64(c.config.BlockSize-1)
}

// Read fetches size bytes at the physical address addr. Accesses that
// straddle a line boundary bypass the cache.
func (c *Cache) Read(addr uint64, size int) AccessResult {
	c.stats.Reads++

	offset := int(addr - c.blockAddr(addr))
	if offset+size > c.config.BlockSize {
		c.stats.Uncached++
		return AccessResult{
			Latency: c.config.MissLatency,
			Data:    c.fetch(addr, size),
		}
	}

	block := c.directory.Lookup(0, c.blockAddr(addr))
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)

		return AccessResult{
			Hit:     true,
			Latency: c.config.HitLatency,
			Data:    c.copyOut(block, offset, size),
		}
	}

	c.stats.Misses++
	return c.handleMiss(addr, offset, size)
}

func (c *Cache) handleMiss(addr uint64, offset, size int) AccessResult {
	result := AccessResult{Latency: c.config.MissLatency}

	blockAddr := c.blockAddr(addr)

	victim := c.directory.FindVictim(blockAddr)
	if victim == nil {
		result.Data = c.fetch(addr, size)
		return result
	}

	if victim.IsValid {
		c.stats.Evictions++
	}

	copy(c.dataStore[c.blockIndex(victim)], c.fetch(blockAddr, c.config.BlockSize))

	// Tag stores the block-aligned address.
	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = false
	c.directory.Visit(victim)

	result.Data = c.copyOut(victim, offset, size)

	return result
}

func (c *Cache) fetch(addr uint64, size int) []byte {
	if c.backing == nil {
		return make([]byte, size)
	}
	return c.backing.Read(addr, size)
}

func (c *Cache) copyOut(block *akitacache.Block, offset, size int) []byte {
	data := make([]byte, size)
	copy(data, c.dataStore[c.blockIndex(block)][offset:offset+size])
	return data
}

// Invalidate drops the line holding addr, if cached.
func (c *Cache) Invalidate(addr uint64) {
	block := c.directory.Lookup(0, c.blockAddr(addr))
	if block != nil && block.IsValid {
		block.IsValid = false
		c.stats.Invalidations++
	}
}

// InvalidateRange drops every line overlapping [start, end).
func (c *Cache) InvalidateRange(start, end uint64) {
	if end <= start {
		return
	}

	first := c.blockAddr(start)
	for _, set := range c.directory.GetSets() {
		for _, block := range set.Blocks {
			if block.IsValid && block.Tag >= first && block.Tag < end {
				block.IsValid = false
				c.stats.Invalidations++
			}
		}
	}
}

// Reset invalidates all cache lines and clears statistics.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.stats = Statistics{}
}
