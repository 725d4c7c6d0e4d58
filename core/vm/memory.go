// Copyright 2015 The go-ethereum Authors
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

	"github.com/holiman/uint256"
	"github.com/sunyihoo/go-evm/params"
)

// maxMemorySize is the largest size whose expansion cost still fits the
// quadratic formula in 64 bits.
const maxMemorySize = 0x1FFFFFFFE0

// maxPooledMemory caps the capacity of memories returned to the pool.
const maxPooledMemory = 16 << 10

var memoryPool = sync.Pool{
	New: func() any {
		return &Memory{}
	},
}

// Memory is the byte-addressed scratch space of a frame. It only grows, in
// whole words, and never shrinks while the frame is alive. paid is the total
// expansion fee charged so far, so each expansion is billed the difference.
type Memory struct {
	store []byte
	paid  uint64
}

// NewMemory returns an empty memory, possibly recycled.
func NewMemory() *Memory {
	return memoryPool.Get().(*Memory)
}

// Free hands the memory back for reuse. It must not be touched afterwards.
// Free 将内存返回到池中。
func (m *Memory) Free() {
	if cap(m.store) > maxPooledMemory {
		return
	}
	m.store = m.store[:0]
	m.paid = 0
	memoryPool.Put(m)
}

// memoryGasCost returns the fee for growing mem to newMemSize bytes, rounded
// up to a word: the cost of the new size minus what was already paid. It
// records the new total, callers must charge the fee before resizing.
func memoryGasCost(mem *Memory, newMemSize uint64, rules *params.Rules) (uint64, error) {
	if newMemSize == 0 {
		return 0, nil
	}
	if newMemSize > maxMemorySize {
		return 0, ErrGasUintOverflow
	}
	words := toWordSize(newMemSize)
	if words*32 <= uint64(mem.Len()) {
		return 0, nil
	}
	total := words*rules.MemoryGas + words*words/rules.QuadCoeffDiv
	fee := total - mem.paid
	mem.paid = total
	return fee, nil
}

// Resize grows the memory to size bytes, zero filled. Sizes are always whole
// words, see memoryGasCost.
func (m *Memory) Resize(size uint64) {
	if n := uint64(len(m.store)); n < size {
		m.store = append(m.store, make([]byte, size-n)...)
	}
}

// Set copies value into memory[offset:offset+size]. The region must already
// be allocated.
// Set 将 offset + size 设置为 value。
func (m *Memory) Set(offset, size uint64, value []byte) {
	if size == 0 {
		// The offset may lie beyond the store, zero sized accesses don't expand.
		return
	}
	if offset+size > uint64(len(m.store)) {
		panic("invalid memory: store empty")
	}
	copy(m.store[offset:offset+size], value)
}

// Set32 writes val as a big-endian word at offset.
func (m *Memory) Set32(offset uint64, val *uint256.Int) {
	if offset+32 > uint64(len(m.store)) {
		panic("invalid memory: store empty")
	}
	val.PutUint256(m.store[offset:])
}

// GetCopy returns a copy of memory[offset:offset+size].
func (m *Memory) GetCopy(offset, size uint64) []byte {
	if size == 0 {
		return nil
	}
	cpy := make([]byte, size)
	copy(cpy, m.store[offset:offset+size])
	return cpy
}

// GetPtr returns memory[offset:offset+size] without copying. The slice is
// only valid until the next expansion.
func (m *Memory) GetPtr(offset, size uint64) []byte {
	if size == 0 {
		return nil
	}
	return m.store[offset : offset+size]
}

// Copy moves length bytes from src to dst, the regions may overlap (MCOPY).
func (m *Memory) Copy(dst, src, length uint64) {
	if length == 0 {
		return
	}
	copy(m.store[dst:], m.store[src:src+length])
}

// Len returns the allocated size in bytes.
// Len 返回底层切片的长度。
func (m *Memory) Len() int {
	return len(m.store)
}

// Data returns the backing slice.
func (m *Memory) Data() []byte {
	return m.store
}
