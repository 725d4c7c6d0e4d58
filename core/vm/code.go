// Copyright 2024 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package vm

import (
	"sync"
	"sync/atomic"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/holiman/uint256"
	"github.com/sunyihoo/go-evm/common"
)

// maxCachedBitvec is the largest analysis that is kept in the shared cache.
// fastcache silently drops entries of 64KB and above.
const maxCachedBitvec = 60 * 1024

// AnalysisCache memoizes jump destination analysis by code hash. A single
// cache may be shared by any number of EVM instances running concurrently;
// a racing fill for the same hash stores identical bytes.
type AnalysisCache struct {
	cache  *fastcache.Cache
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewAnalysisCache creates a cache bounded to roughly maxBytes of analyses.
func NewAnalysisCache(maxBytes int) *AnalysisCache {
	return &AnalysisCache{cache: fastcache.New(maxBytes)}
}

// Get returns the jumpdest analysis for the given code hash, if cached.
func (c *AnalysisCache) Get(hash common.Hash) (bitvec, bool) {
	bits, ok := c.cache.HasGet(nil, hash[:])
	if ok {
		c.hits.Add(1)
		return bits, true
	}
	c.misses.Add(1)
	return nil, false
}

// Put stores the analysis of the code identified by hash.
func (c *AnalysisCache) Put(hash common.Hash, bits bitvec) {
	if len(bits) > maxCachedBitvec {
		return
	}
	c.cache.Set(hash[:], bits)
}

// Stats returns the cumulative number of lookups that hit and missed.
func (c *AnalysisCache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// Reset drops every cached analysis.
func (c *AnalysisCache) Reset() {
	c.cache.Reset()
}

// Code is a piece of analysed bytecode. Analysis is computed lazily, at most
// once, the first time a jump destination is validated.
type Code struct {
	bytes      []byte
	hash       common.Hash
	deployment bool

	once     sync.Once
	analysis bitvec
	cache    *AnalysisCache
}

// NewCode wraps deployed code identified by its hash. The shared cache may be
// nil.
func NewCode(code []byte, hash common.Hash, cache *AnalysisCache) *Code {
	return &Code{bytes: code, hash: hash, cache: cache}
}

// NewDeploymentCode wraps init code. Init code has no stable identity, so its
// analysis is never shared.
func NewDeploymentCode(code []byte) *Code {
	return &Code{bytes: code, deployment: true}
}

// Bytes returns the raw code.
func (c *Code) Bytes() []byte { return c.bytes }

// Hash returns the code hash, zero for deployment code.
func (c *Code) Hash() common.Hash { return c.hash }

// Len returns the code length in bytes.
func (c *Code) Len() int { return len(c.bytes) }

// IsDeployment reports whether the code is init code of a creation.
func (c *Code) IsDeployment() bool { return c.deployment }

// GetOp returns the n'th element in the code, STOP beyond its end.
func (c *Code) GetOp(n uint64) OpCode {
	if n < uint64(len(c.bytes)) {
		return OpCode(c.bytes[n])
	}
	return STOP
}

// ValidJumpdest reports whether dest is a JUMPDEST opcode that is not part of
// a PUSH immediate.
func (c *Code) ValidJumpdest(dest *uint256.Int) bool {
	udest, overflow := dest.Uint64WithOverflow()
	// PC cannot go beyond len(code) and certainly can't be bigger than 63bits.
	// Don't bother checking for JUMPDEST in that case.
	if overflow || udest >= uint64(len(c.bytes)) {
		return false
	}
	if OpCode(c.bytes[udest]) != JUMPDEST {
		return false
	}
	return c.isCode(udest)
}

// isCode returns true if the provided PC location is an actual opcode, as
// opposed to a data-segment following a PUSHN operation.
func (c *Code) isCode(udest uint64) bool {
	c.once.Do(c.analyse)
	return c.analysis.codeSegment(udest)
}

func (c *Code) analyse() {
	shared := c.cache != nil && !c.deployment && c.hash != (common.Hash{})
	if shared {
		if bits, ok := c.cache.Get(c.hash); ok {
			c.analysis = bits
			return
		}
	}
	c.analysis = codeBitmap(c.bytes)
	if shared {
		c.cache.Put(c.hash, c.analysis)
	}
}
