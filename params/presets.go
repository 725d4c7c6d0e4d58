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

package params

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/sunyihoo/go-evm/params/forks"
)

// farFutureBlock schedules a fork that a preset must not reach.
const farFutureBlock = 10_000_000

// Forks maps the preset names accepted by the evm command to chain configs that
// activate every fork up to and including the named one at genesis.
var Forks = map[string]*ChainConfig{}

func init() {
	for f := forks.Frontier; f <= forks.Prague; f++ {
		Forks[f.String()] = ForkConfig(f)
	}
}

// ForkConfig returns a chain config with all forks up to f active at genesis.
func ForkConfig(f forks.Fork) *ChainConfig {
	zero := func(at forks.Fork) *big.Int {
		if f >= at {
			return big.NewInt(0)
		}
		return nil
	}
	zeroTime := func(at forks.Fork) *uint64 {
		if f >= at {
			return newUint64(0)
		}
		return nil
	}
	// A nil Petersburg block means "together with Constantinople", so the
	// Constantinople preset has to push it out of reach to keep EIP-1283.
	// Constantinople 预设必须把 Petersburg 推到远处，否则 nil 即视为同时激活。
	petersburg := zero(forks.Petersburg)
	if f == forks.Constantinople {
		petersburg = big.NewInt(farFutureBlock)
	}
	return &ChainConfig{
		ChainID:             big.NewInt(1),
		HomesteadBlock:      zero(forks.Homestead),
		EIP150Block:         zero(forks.TangerineWhistle),
		EIP155Block:         zero(forks.SpuriousDragon),
		EIP158Block:         zero(forks.SpuriousDragon),
		ByzantiumBlock:      zero(forks.Byzantium),
		ConstantinopleBlock: zero(forks.Constantinople),
		PetersburgBlock:     petersburg,
		IstanbulBlock:       zero(forks.Istanbul),
		BerlinBlock:         zero(forks.Berlin),
		LondonBlock:         zero(forks.London),
		MergeBlock:          zero(forks.Paris),
		ShanghaiTime:        zeroTime(forks.Shanghai),
		CancunTime:          zeroTime(forks.Cancun),
		PragueTime:          zeroTime(forks.Prague),
	}
}

// LookupFork resolves a preset name case-insensitively.
func LookupFork(name string) (*ChainConfig, error) {
	for n, cfg := range Forks {
		if strings.EqualFold(n, name) {
			return cfg, nil
		}
	}
	return nil, fmt.Errorf("unknown fork %q, available: %s", name, strings.Join(ForkNames(), ", "))
}

// ForkNames returns the preset names in activation order.
func ForkNames() []string {
	names := make([]string, 0, len(Forks))
	for f := forks.Frontier; f <= forks.Prague; f++ {
		names = append(names, f.String())
	}
	return names
}
