// Copyright 2016 The go-ethereum Authors
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

package params

import (
	"math/big"

	"github.com/sunyihoo/go-evm/params/forks"
)

// Rules wraps ChainConfig and is merely syntactic sugar or can be used for functions
// that do not have or require information about the block.
//
// Rules is a one time interface meaning that it shouldn't be used in between transition
// phases. Besides the fork flags it carries every numeric protocol parameter that
// changed across forks, so execution never needs to consult the ChainConfig again.
type Rules struct {
	ChainID                                                 *big.Int
	IsHomestead, IsEIP150, IsEIP155, IsEIP158               bool
	IsByzantium, IsConstantinople, IsPetersburg, IsIstanbul bool
	IsBerlin, IsLondon                                      bool
	IsMerge, IsShanghai, IsCancun, IsPrague                 bool

	MaxCodeSize     uint64 // Maximum deployed code size, 0 means unlimited (pre EIP-170)
	MaxInitCodeSize uint64 // Maximum initcode size, 0 means unlimited (pre EIP-3860)
	CallGasFraction uint64 // Forwarding cap denominator, 0 means no cap (pre EIP-150)
	BlockHashWindow uint64 // Number of ancestors visible to BLOCKHASH
	MemoryGas       uint64 // Linear coefficient of the memory expansion cost
	QuadCoeffDiv    uint64 // Quadratic divisor of the memory expansion cost

	RefundQuotient             uint64 // Max refund is gasUsed / RefundQuotient
	SstoreClearsScheduleRefund uint64 // Refund for clearing a storage slot
	SelfdestructRefund         uint64 // Refund for the first self-destruct of an account

	MaxBlobsPerBlock uint64 // Maximum blob hashes a transaction may carry, 0 before Cancun
	BlobGasPerBlob   uint64

	EcrecoverGas            uint64
	Sha256BaseGas           uint64
	Sha256PerWordGas        uint64
	Ripemd160BaseGas        uint64
	Ripemd160PerWordGas     uint64
	IdentityBaseGas         uint64
	IdentityPerWordGas      uint64
	Bn256AddGas             uint64
	Bn256ScalarMulGas       uint64
	Bn256PairingBaseGas     uint64
	Bn256PairingPerPointGas uint64
	PointEvaluationGas      uint64
}

// Rules resolves the fork configuration active at the given block number and
// timestamp. It is a pure function of its inputs: forks up to the merge are keyed
// by number, later ones by timestamp.
func (c *ChainConfig) Rules(num *big.Int, timestamp uint64) Rules {
	chainID := c.ChainID
	if chainID == nil {
		chainID = new(big.Int)
	}
	// disallow setting Merge out of order
	isMerge := c.IsMerge(num) && c.IsLondon(num)
	r := Rules{
		ChainID:          new(big.Int).Set(chainID),
		IsHomestead:      c.IsHomestead(num),
		IsEIP150:         c.IsEIP150(num),
		IsEIP155:         c.IsEIP155(num),
		IsEIP158:         c.IsEIP158(num),
		IsByzantium:      c.IsByzantium(num),
		IsConstantinople: c.IsConstantinople(num),
		IsPetersburg:     c.IsPetersburg(num),
		IsIstanbul:       c.IsIstanbul(num),
		IsBerlin:         c.IsBerlin(num),
		IsLondon:         c.IsLondon(num),
		IsMerge:          isMerge,
		IsShanghai:       isMerge && c.IsShanghai(num, timestamp),
		IsCancun:         isMerge && c.IsCancun(num, timestamp),
		IsPrague:         isMerge && c.IsPrague(num, timestamp),
	}
	r.setParameters()
	return r
}

// RulesForFork returns the rules of a chain that activated every fork up to and
// including f at genesis.
func RulesForFork(f forks.Fork) Rules {
	r := Rules{
		ChainID:          big.NewInt(1),
		IsHomestead:      f >= forks.Homestead,
		IsEIP150:         f >= forks.TangerineWhistle,
		IsEIP155:         f >= forks.SpuriousDragon,
		IsEIP158:         f >= forks.SpuriousDragon,
		IsByzantium:      f >= forks.Byzantium,
		IsConstantinople: f >= forks.Constantinople,
		IsPetersburg:     f >= forks.Petersburg,
		IsIstanbul:       f >= forks.Istanbul,
		IsBerlin:         f >= forks.Berlin,
		IsLondon:         f >= forks.London,
		IsMerge:          f >= forks.Paris,
		IsShanghai:       f >= forks.Shanghai,
		IsCancun:         f >= forks.Cancun,
		IsPrague:         f >= forks.Prague,
	}
	r.setParameters()
	return r
}

// setParameters derives the numeric protocol parameters from the fork flags.
func (r *Rules) setParameters() {
	r.BlockHashWindow = BlockHashWindow
	r.MemoryGas = MemoryGas
	r.QuadCoeffDiv = QuadCoeffDiv

	r.EcrecoverGas = EcrecoverGas
	r.Sha256BaseGas, r.Sha256PerWordGas = Sha256BaseGas, Sha256PerWordGas
	r.Ripemd160BaseGas, r.Ripemd160PerWordGas = Ripemd160BaseGas, Ripemd160PerWordGas
	r.IdentityBaseGas, r.IdentityPerWordGas = IdentityBaseGas, IdentityPerWordGas

	if r.IsEIP150 {
		r.CallGasFraction = CallGasFraction
	}
	if r.IsEIP158 {
		r.MaxCodeSize = MaxCodeSize
	}
	if r.IsShanghai {
		r.MaxInitCodeSize = MaxInitCodeSize
	}
	switch {
	case r.IsIstanbul:
		r.Bn256AddGas = Bn256AddGasIstanbul
		r.Bn256ScalarMulGas = Bn256ScalarMulGasIstanbul
		r.Bn256PairingBaseGas = Bn256PairingBaseGasIstanbul
		r.Bn256PairingPerPointGas = Bn256PairingPerPointGasIstanbul
	default:
		r.Bn256AddGas = Bn256AddGasByzantium
		r.Bn256ScalarMulGas = Bn256ScalarMulGasByzantium
		r.Bn256PairingBaseGas = Bn256PairingBaseGasByzantium
		r.Bn256PairingPerPointGas = Bn256PairingPerPointGasByzantium
	}
	switch {
	case r.IsLondon:
		r.RefundQuotient = RefundQuotientEIP3529
		r.SstoreClearsScheduleRefund = SstoreClearsScheduleRefundEIP3529
	case r.IsIstanbul:
		r.RefundQuotient = RefundQuotient
		r.SstoreClearsScheduleRefund = SstoreClearsScheduleRefundEIP2200
		r.SelfdestructRefund = SelfdestructRefundGas
	default:
		r.RefundQuotient = RefundQuotient
		r.SstoreClearsScheduleRefund = SstoreRefundGas
		r.SelfdestructRefund = SelfdestructRefundGas
	}
	switch {
	case r.IsPrague:
		r.MaxBlobsPerBlock = MaxBlobsPerBlockPrague
	case r.IsCancun:
		r.MaxBlobsPerBlock = MaxBlobsPerBlockCancun
	}
	if r.IsCancun {
		r.BlobGasPerBlob = BlobTxBlobGasPerBlob
		r.PointEvaluationGas = BlobTxPointEvaluationPrecompileGas
	}
}

// Fork returns the latest fork active under the rules.
func (r Rules) Fork() forks.Fork {
	switch {
	case r.IsPrague:
		return forks.Prague
	case r.IsCancun:
		return forks.Cancun
	case r.IsShanghai:
		return forks.Shanghai
	case r.IsMerge:
		return forks.Paris
	case r.IsLondon:
		return forks.London
	case r.IsBerlin:
		return forks.Berlin
	case r.IsIstanbul:
		return forks.Istanbul
	case r.IsPetersburg:
		return forks.Petersburg
	case r.IsConstantinople:
		return forks.Constantinople
	case r.IsByzantium:
		return forks.Byzantium
	case r.IsEIP158:
		return forks.SpuriousDragon
	case r.IsEIP150:
		return forks.TangerineWhistle
	case r.IsHomestead:
		return forks.Homestead
	default:
		return forks.Frontier
	}
}
