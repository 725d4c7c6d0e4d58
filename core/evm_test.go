// Copyright 2019 The go-ethereum Authors
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

package core

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunyihoo/go-evm/common"
	"github.com/sunyihoo/go-evm/core/state"
	"github.com/sunyihoo/go-evm/core/tracing"
	"github.com/sunyihoo/go-evm/core/types"
)

// countingChain records how often each number is looked up.
type countingChain struct {
	HashChain
	lookups map[uint64]int
}

func (c *countingChain) GetCanonicalHash(number uint64) common.Hash {
	c.lookups[number]++
	return c.HashChain.GetCanonicalHash(number)
}

func TestGetHashFn(t *testing.T) {
	var (
		parent = common.Hash{0xaa}
		chain  = &countingChain{
			HashChain: HashChain{298: {0x01}, 44: {0x02}, 43: {0x03}},
			lookups:   make(map[uint64]int),
		}
		header = &types.Header{Number: big.NewInt(300), ParentHash: parent}
		get    = GetHashFn(header, chain, 256)
	)
	assert.Equal(t, parent, get(299))
	assert.Equal(t, common.Hash{0x01}, get(298))
	assert.Equal(t, common.Hash{0x02}, get(44), "oldest visible ancestor")
	assert.Equal(t, common.Hash{}, get(43), "outside the window")
	assert.Equal(t, common.Hash{}, get(300), "current block")
	assert.Equal(t, common.Hash{}, get(1000), "future block")

	get(298)
	assert.Equal(t, 1, chain.lookups[298])
	assert.Zero(t, chain.lookups[299])
	assert.Zero(t, chain.lookups[43])

	// A missing chain only exposes the parent.
	get = GetHashFn(header, nil, 256)
	assert.Equal(t, parent, get(299))
	assert.Equal(t, common.Hash{}, get(298))
}

func TestNewEVMBlockContext(t *testing.T) {
	header := &types.Header{
		Coinbase:   common.Address{0x01},
		Number:     big.NewInt(7),
		GasLimit:   1_000_000,
		Time:       42,
		Difficulty: big.NewInt(131072),
		MixDigest:  common.Hash{0x0f},
		BaseFee:    big.NewInt(10),
	}
	ctx := NewEVMBlockContext(header, nil, nil, 256)
	assert.Equal(t, header.Coinbase, ctx.Coinbase)
	assert.Equal(t, uint64(7), ctx.BlockNumber.Uint64())
	assert.Equal(t, uint64(42), ctx.Time)
	assert.Equal(t, big.NewInt(131072), ctx.Difficulty)
	assert.Nil(t, ctx.Random, "pre-merge header carries no randomness")
	assert.Nil(t, ctx.BlobBaseFee)

	// Context values are copies.
	header.BaseFee.SetInt64(11)
	assert.Equal(t, big.NewInt(10), ctx.BaseFee)

	author := common.Address{0x02}
	header.Difficulty = new(big.Int)
	ctx = NewEVMBlockContext(header, nil, &author, 256)
	assert.Equal(t, author, ctx.Coinbase)
	require.NotNil(t, ctx.Random)
	assert.Equal(t, header.MixDigest, *ctx.Random)
}

func TestTransfer(t *testing.T) {
	statedb := state.New(state.NewDatabaseForTesting())
	from, to := common.Address{0x01}, common.Address{0x02}
	statedb.SetBalance(from, uint256.NewInt(100), tracing.BalanceIncreaseGenesisBalance)

	assert.True(t, CanTransfer(statedb, from, uint256.NewInt(100)))
	assert.False(t, CanTransfer(statedb, from, uint256.NewInt(101)))

	Transfer(statedb, from, to, uint256.NewInt(40))
	assert.Equal(t, uint256.NewInt(60), statedb.GetBalance(from))
	assert.Equal(t, uint256.NewInt(40), statedb.GetBalance(to))
}
