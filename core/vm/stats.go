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
	"golang.org/x/exp/maps"
)

// Stats holds per-execution counters. They are collected on the EVM that ran
// the execution and aggregated by the caller, no process-wide state is kept.
type Stats struct {
	Opcodes     uint64            // instructions dispatched, across all frames
	Calls       uint64            // CALL, CALLCODE, DELEGATECALL and STATICCALL entries
	Creates     uint64            // CREATE and CREATE2 entries
	Precompiles map[string]uint64 // invocations by precompile name
	Ecrecovers  uint64
}

// NewStats returns an empty accumulator.
func NewStats() *Stats {
	return &Stats{Precompiles: make(map[string]uint64)}
}

// Add folds other into s.
func (s *Stats) Add(other *Stats) {
	if other == nil {
		return
	}
	s.Opcodes += other.Opcodes
	s.Calls += other.Calls
	s.Creates += other.Creates
	s.Ecrecovers += other.Ecrecovers
	if s.Precompiles == nil {
		s.Precompiles = make(map[string]uint64, len(other.Precompiles))
	}
	for name, n := range other.Precompiles {
		s.Precompiles[name] += n
	}
}

// Copy returns a deep copy of s.
func (s *Stats) Copy() *Stats {
	cpy := *s
	cpy.Precompiles = maps.Clone(s.Precompiles)
	if cpy.Precompiles == nil {
		cpy.Precompiles = make(map[string]uint64)
	}
	return &cpy
}

func (s *Stats) countPrecompile(p PrecompiledContract) {
	s.Precompiles[p.Name()]++
	if isEcrecover(p) {
		s.Ecrecovers++
	}
}
