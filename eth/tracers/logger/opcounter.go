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

package logger

import (
	"sort"
	"sync/atomic"

	"github.com/sunyihoo/go-evm/core/tracing"
	"github.com/sunyihoo/go-evm/core/vm"
)

// OpCounter counts executed opcodes by kind. Its hooks only touch atomic
// counters, so one counter can observe every job of a batch.
type OpCounter struct {
	counts [256]atomic.Uint64
	faults atomic.Uint64
}

// NewOpCounter returns a zeroed counter.
func NewOpCounter() *OpCounter {
	return new(OpCounter)
}

// Hooks returns the tracing hooks feeding the counter.
func (c *OpCounter) Hooks() *tracing.Hooks {
	return &tracing.Hooks{
		OnOpcode: c.OnOpcode,
		OnFault:  c.OnFault,
	}
}

func (c *OpCounter) OnOpcode(pc uint64, op byte, gas, cost uint64, scope tracing.OpContext, rData []byte, depth int, err error) {
	c.counts[op].Add(1)
}

func (c *OpCounter) OnFault(pc uint64, op byte, gas, cost uint64, scope tracing.OpContext, depth int, err error) {
	c.faults.Add(1)
}

// Count returns how often op was dispatched.
func (c *OpCounter) Count(op vm.OpCode) uint64 {
	return c.counts[op].Load()
}

// Total returns the number of dispatched opcodes.
func (c *OpCounter) Total() uint64 {
	var total uint64
	for i := range c.counts {
		total += c.counts[i].Load()
	}
	return total
}

// Faults returns the number of opcodes that failed after being dispatched.
func (c *OpCounter) Faults() uint64 {
	return c.faults.Load()
}

// OpCount is a single entry of OpCounter.Summary.
type OpCount struct {
	Op    vm.OpCode `json:"op"`
	Name  string    `json:"name"`
	Count uint64    `json:"count"`
}

// Summary lists the opcodes seen, most frequent first.
func (c *OpCounter) Summary() []OpCount {
	var res []OpCount
	for i := range c.counts {
		if n := c.counts[i].Load(); n > 0 {
			op := vm.OpCode(i)
			res = append(res, OpCount{Op: op, Name: op.String(), Count: n})
		}
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].Count > res[j].Count })
	return res
}
