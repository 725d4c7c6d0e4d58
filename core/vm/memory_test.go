// Copyright 2023 The go-ethereum Authors
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
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunyihoo/go-evm/common"
	"github.com/sunyihoo/go-evm/params"
	"github.com/sunyihoo/go-evm/params/forks"
)

func TestMemoryCopy(t *testing.T) {
	// Test cases from https://eips.ethereum.org/EIPS/eip-5656#test-cases
	for i, tc := range []struct {
		dst, src, len uint64
		pre           string
		want          string
	}{
		{ // MCOPY 0 32 32 - copy 32 bytes from offset 32 to offset 0.
			0, 32, 32,
			"0000000000000000000000000000000000000000000000000000000000000000 000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f",
			"000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f 000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f",
		},
		{ // MCOPY 0 0 32 - copy 32 bytes from offset 0 to offset 0.
			0, 0, 32,
			"0101010101010101010101010101010101010101010101010101010101010101",
			"0101010101010101010101010101010101010101010101010101010101010101",
		},
		{ // MCOPY 0 1 8 - copy 8 bytes from offset 1 to offset 0 (overlapping).
			0, 1, 8,
			"000102030405060708 000000000000000000000000000000000000000000000000",
			"010203040506070808 000000000000000000000000000000000000000000000000",
		},
		{ // MCOPY 1 0 8 - copy 8 bytes from offset 0 to offset 1 (overlapping).
			1, 0, 8,
			"000102030405060708 000000000000000000000000000000000000000000000000",
			"000001020304050607 000000000000000000000000000000000000000000000000",
		},
		{ // MCOPY 0xFFFFFFFFFFFF 0xFFFFFFFFFFFF 0 - copy zero bytes from out-of-bounds index(overlapping).
			0xFFFFFFFFFFFF, 0xFFFFFFFFFFFF, 0,
			"11",
			"11",
		},
	} {
		m := NewMemory()
		data := common.FromHex(strings.ReplaceAll(tc.pre, " ", ""))
		m.Resize(uint64(len(data)))
		m.Set(0, uint64(len(data)), data)
		m.Copy(tc.dst, tc.src, tc.len)
		want := common.FromHex(strings.ReplaceAll(tc.want, " ", ""))
		assert.Equalf(t, want, m.Data(), "case %d", i)
		m.Free()
	}
}

func TestMemoryGasCost(t *testing.T) {
	rules := params.RulesForFork(forks.Cancun)
	tests := []struct {
		size     uint64
		cost     uint64
		overflow bool
	}{
		{0x1fffffffe0, 36028809887088637, false},
		{0x1fffffffe1, 0, true},
	}
	for i, tt := range tests {
		v, err := memoryGasCost(&Memory{}, tt.size, &rules)
		if tt.overflow {
			require.ErrorIsf(t, err, ErrGasUintOverflow, "test %d", i)
			continue
		}
		require.NoErrorf(t, err, "test %d", i)
		assert.Equalf(t, tt.cost, v, "test %d", i)
	}
}

// Expansion is charged only for the words not paid for yet, and computing the
// cost of an already paid size yields zero.
func TestMemoryGasCostIncremental(t *testing.T) {
	var (
		rules = params.RulesForFork(forks.London)
		mem   = NewMemory()
	)
	defer mem.Free()

	first, err := memoryGasCost(mem, 32, &rules)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), first) // 1 word * 3 + 1/512

	again, err := memoryGasCost(mem, 32, &rules)
	require.NoError(t, err)
	assert.Zero(t, again)
	mem.Resize(32)

	within, err := memoryGasCost(mem, 20, &rules)
	require.NoError(t, err)
	assert.Zero(t, within)

	// 1024 words cost 1024*3 + 1024*1024/512 in total, minus what was paid.
	grow, err := memoryGasCost(mem, 1024*32, &rules)
	require.NoError(t, err)
	assert.Equal(t, uint64(1024*3+2048-3), grow)
	mem.Resize(1024 * 32)

	total := first + grow
	assert.Equal(t, uint64(1024*3+2048), total)
}

func TestCallGas(t *testing.T) {
	for i, tt := range []struct {
		fraction  uint64
		available uint64
		base      uint64
		requested uint64
		want      uint64
	}{
		{0, 1000, 100, 5000, 5000},     // pre EIP-150, request passes through
		{64, 6500, 100, 5000, 5000},    // cap above request
		{64, 6500, 100, 100000, 6300},  // (6500-100) - 6400/64
		{64, 100, 100, 1, 0},           // nothing left after base
		{64, 64100, 100, 64000, 63000}, // 64000 - 1000
	} {
		have, err := callGas(tt.fraction, tt.available, tt.base, uint256.NewInt(tt.requested))
		require.NoErrorf(t, err, "test %d", i)
		assert.Equalf(t, tt.want, have, "test %d", i)
	}
	// An over-wide request is capped after EIP-150 and an error before.
	wide := new(uint256.Int).Lsh(uint256.NewInt(1), 100)
	have, err := callGas(64, 6500, 100, wide)
	require.NoError(t, err)
	assert.Equal(t, uint64(6300), have)

	_, err = callGas(0, 6500, 100, wide)
	require.ErrorIs(t, err, ErrGasUintOverflow)
}
