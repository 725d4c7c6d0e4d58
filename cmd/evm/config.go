// Copyright 2017 The go-ethereum Authors
// This file is part of go-ethereum.
//
// go-ethereum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ethereum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ethereum. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"bufio"
	"errors"
	"math/big"
	"os"

	"github.com/holiman/uint256"
	"github.com/naoina/toml"
	"github.com/sunyihoo/go-evm/common"
	"github.com/sunyihoo/go-evm/core/state"
	"github.com/sunyihoo/go-evm/core/tracing"
	"github.com/sunyihoo/go-evm/core/vm/runtime"
	"github.com/sunyihoo/go-evm/params"
)

// envConfig is the TOML layout of the --config file. Every field is
// optional, unset ones keep the runtime defaults.
type envConfig struct {
	Origin      common.Address
	Coinbase    common.Address
	BlockNumber uint64
	Time        uint64
	Difficulty  *big.Int     `toml:",omitempty"`
	BaseFee     *big.Int     `toml:",omitempty"`
	BlobBaseFee *big.Int     `toml:",omitempty"`
	Random      *common.Hash `toml:",omitempty"`
	BlobHashes  []common.Hash
	Alloc       map[string]allocAccount // prestate keyed by hex address
}

type allocAccount struct {
	Balance *big.Int `toml:",omitempty"`
	Nonce   uint64
	Code    string            // hex
	Storage map[string]string // hex slot to hex value
}

func loadEnvConfig(file string) (*envConfig, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := new(envConfig)
	err = params.TOMLSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return cfg, err
}

// apply copies the environment into the runtime config.
func (c *envConfig) apply(cfg *runtime.Config) {
	cfg.Origin = c.Origin
	cfg.Coinbase = c.Coinbase
	cfg.BlockNumber = new(big.Int).SetUint64(c.BlockNumber)
	cfg.Time = c.Time
	cfg.Difficulty = c.Difficulty
	cfg.BaseFee = c.BaseFee
	cfg.BlobBaseFee = c.BlobBaseFee
	cfg.Random = c.Random
	cfg.BlobHashes = c.BlobHashes
}

// allocate writes the prestate into statedb and commits it, so the run
// observes it as the original storage.
func (c *envConfig) allocate(statedb *state.StateDB) error {
	for hexAddr, acct := range c.Alloc {
		addr := common.HexToAddress(hexAddr)
		statedb.CreateAccount(addr)
		if acct.Balance != nil {
			balance, overflow := uint256.FromBig(acct.Balance)
			if overflow {
				return errors.New("balance of " + hexAddr + " overflows 256 bits")
			}
			statedb.SetBalance(addr, balance, tracing.BalanceChangeUnspecified)
		}
		statedb.SetNonce(addr, acct.Nonce)
		if acct.Code != "" {
			statedb.SetCode(addr, common.FromHex(acct.Code))
		}
		for slot, value := range acct.Storage {
			statedb.SetState(addr, common.HexToHash(slot), common.HexToHash(value))
		}
	}
	return statedb.Commit(false)
}
