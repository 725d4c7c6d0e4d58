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

package core

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/sunyihoo/go-evm/common"
	"github.com/sunyihoo/go-evm/core/tracing"
	"github.com/sunyihoo/go-evm/core/types"
	"github.com/sunyihoo/go-evm/core/vm"
)

// ChainContext supports retrieving ancestor hashes from the current blockchain
// to be used during transaction processing.
type ChainContext interface {
	// GetCanonicalHash returns the hash of the canonical block with the given
	// number, or the zero hash if it is unknown.
	GetCanonicalHash(number uint64) common.Hash
}

// HashChain is a ChainContext over an explicit number to hash table.
type HashChain map[uint64]common.Hash

// GetCanonicalHash implements ChainContext.
func (c HashChain) GetCanonicalHash(number uint64) common.Hash {
	return c[number]
}

// NewEVMBlockContext creates a new context for use in the EVM. If author is nil
// the header coinbase is used.
func NewEVMBlockContext(header *types.Header, chain ChainContext, author *common.Address, window uint64) vm.BlockContext {
	var (
		beneficiary common.Address
		baseFee     *big.Int
		blobBaseFee *big.Int
		random      *common.Hash
	)
	if author == nil {
		beneficiary = header.Coinbase
	} else {
		beneficiary = *author
	}
	if header.BaseFee != nil {
		baseFee = new(big.Int).Set(header.BaseFee)
	}
	if header.BlobBaseFee != nil {
		blobBaseFee = new(big.Int).Set(header.BlobBaseFee)
	}
	if header.PostMerge() {
		random = &header.MixDigest
	}
	difficulty := new(big.Int)
	if header.Difficulty != nil {
		difficulty.Set(header.Difficulty)
	}
	return vm.BlockContext{
		CanTransfer: CanTransfer,
		Transfer:    Transfer,
		GetHash:     GetHashFn(header, chain, window),
		Coinbase:    beneficiary,
		BlockNumber: new(big.Int).Set(header.Number),
		Time:        header.Time,
		Difficulty:  difficulty,
		BaseFee:     baseFee,
		BlobBaseFee: blobBaseFee,
		GasLimit:    header.GasLimit,
		Random:      random,
	}
}

// NewEVMTxContext creates a new transaction context for a single transaction.
func NewEVMTxContext(msg *Message) vm.TxContext {
	ctx := vm.TxContext{
		Origin:     msg.From,
		GasPrice:   new(big.Int),
		BlobHashes: msg.BlobHashes,
	}
	if msg.GasPrice != nil {
		ctx.GasPrice.Set(msg.GasPrice)
	}
	if msg.BlobGasFeeCap != nil {
		ctx.BlobFeeCap = new(big.Int).Set(msg.BlobGasFeeCap)
	}
	return ctx
}

// GetHashFn returns a GetHashFunc which retrieves ancestor hashes by number.
// Only the window most recent ancestors of ref are visible, the parent hash is
// taken from ref itself and lookups are memoized.
func GetHashFn(ref *types.Header, chain ChainContext, window uint64) func(n uint64) common.Hash {
	var (
		current = ref.Number.Uint64()
		cache   = map[uint64]common.Hash{}
	)
	return func(n uint64) common.Hash {
		if n >= current || current-n > window {
			return common.Hash{}
		}
		if n == current-1 {
			return ref.ParentHash
		}
		if hash, ok := cache[n]; ok {
			return hash
		}
		var hash common.Hash
		if chain != nil {
			hash = chain.GetCanonicalHash(n)
		}
		cache[n] = hash
		return hash
	}
}

// CanTransfer checks whether there are enough funds in the address' account to make a transfer.
// This does not take the necessary gas in to account to make the transfer valid.
func CanTransfer(db vm.StateDB, addr common.Address, amount *uint256.Int) bool {
	return db.GetBalance(addr).Cmp(amount) >= 0
}

// Transfer subtracts amount from sender and adds amount to recipient using the given Db
func Transfer(db vm.StateDB, sender, recipient common.Address, amount *uint256.Int) {
	db.SubBalance(sender, amount, tracing.BalanceChangeTransfer)
	db.AddBalance(recipient, amount, tracing.BalanceChangeTransfer)
}
