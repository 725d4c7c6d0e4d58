// Copyright 2014 The go-ethereum Authors
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

package types

import (
	"math/big"

	"github.com/sunyihoo/go-evm/common"
)

// Header carries the fields of a block header that execution can observe.
// Consensus-only fields (roots, bloom, seal) are not part of it.
type Header struct {
	ParentHash  common.Hash    `json:"parentHash"`
	Coinbase    common.Address `json:"miner"`
	Number      *big.Int       `json:"number"`
	GasLimit    uint64         `json:"gasLimit"`
	Time        uint64         `json:"timestamp"`
	Difficulty  *big.Int       `json:"difficulty"`
	MixDigest   common.Hash    `json:"mixHash"`
	BaseFee     *big.Int       `json:"baseFeePerGas,omitempty"`
	BlobBaseFee *big.Int       `json:"blobBaseFee,omitempty"`
}

// PostMerge reports whether the header belongs to a proof-of-stake block, in which
// case MixDigest holds the beacon randomness.
func (h *Header) PostMerge() bool {
	return h.Difficulty == nil || h.Difficulty.Sign() == 0
}
