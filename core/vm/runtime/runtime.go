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

package runtime

import (
	"context"
	"math"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/sunyihoo/go-evm/common"
	"github.com/sunyihoo/go-evm/core/state"
	"github.com/sunyihoo/go-evm/core/vm"
	"github.com/sunyihoo/go-evm/crypto"
	"github.com/sunyihoo/go-evm/params"
)

// Config is a basic type specifying certain configuration flags for running
// the EVM.
type Config struct {
	ChainConfig *params.ChainConfig
	Difficulty  *big.Int
	Origin      common.Address
	Coinbase    common.Address
	BlockNumber *big.Int
	Time        uint64
	GasLimit    uint64
	GasPrice    *big.Int
	Value       *big.Int
	EVMConfig   vm.Config
	BaseFee     *big.Int
	BlobBaseFee *big.Int
	BlobHashes  []common.Hash
	BlobFeeCap  *big.Int
	Random      *common.Hash

	// Parallelism bounds the number of jobs ExecuteBatch runs at once. Zero
	// means one per CPU.
	Parallelism int

	State     *state.StateDB
	GetHashFn func(n uint64) common.Hash
}

// defaultBaseFee is the base fee of the simulated block, 1 gwei.
const defaultBaseFee = 1_000_000_000

// contractAddress is where Execute installs the code it runs.
var contractAddress = common.BytesToAddress([]byte("contract"))

// sets defaults on the config
func setDefaults(cfg *Config) {
	if cfg.ChainConfig == nil {
		cfg.ChainConfig = params.AllForksChainConfig
	}
	if cfg.Difficulty == nil {
		cfg.Difficulty = new(big.Int)
	}
	if cfg.GasLimit == 0 {
		cfg.GasLimit = math.MaxUint64
	}
	if cfg.GasPrice == nil {
		cfg.GasPrice = new(big.Int)
	}
	if cfg.Value == nil {
		cfg.Value = new(big.Int)
	}
	if cfg.BlockNumber == nil {
		cfg.BlockNumber = new(big.Int)
	}
	if cfg.GetHashFn == nil {
		cfg.GetHashFn = func(n uint64) common.Hash {
			return common.BytesToHash(crypto.Keccak256([]byte(new(big.Int).SetUint64(n).String())))
		}
	}
	if cfg.BaseFee == nil {
		cfg.BaseFee = big.NewInt(defaultBaseFee)
	}
	if cfg.BlobBaseFee == nil {
		cfg.BlobBaseFee = big.NewInt(1)
	}
	// Post-merge configs carry the beacon randomness in place of difficulty.
	if cfg.Random == nil && cfg.ChainConfig.IsMerge(cfg.BlockNumber) {
		cfg.Random = &(common.Hash{})
	}
}

func (cfg *Config) rules() params.Rules {
	return cfg.ChainConfig.Rules(cfg.BlockNumber, cfg.Time)
}

// Execute executes the code using the input as call data during the execution.
// It returns the EVM's return value, the new state and an error if it failed.
//
// Execute sets up an in-memory, temporary, environment for the execution of
// the given code. It makes sure that it's restored to its original state afterwards.
func Execute(code, input []byte, cfg *Config) ([]byte, *state.StateDB, error) {
	if cfg == nil {
		cfg = new(Config)
	}
	setDefaults(cfg)

	if cfg.State == nil {
		cfg.State = state.New(state.NewDatabaseForTesting())
	}
	res := execute(context.Background(), cfg, cfg.State, Job{Code: code, Input: input})
	return res.Output, cfg.State, res.Err
}

// Create executes the code using the EVM create method
func Create(input []byte, cfg *Config) ([]byte, common.Address, uint64, error) {
	if cfg == nil {
		cfg = new(Config)
	}
	setDefaults(cfg)

	if cfg.State == nil {
		cfg.State = state.New(state.NewDatabaseForTesting())
	}
	var (
		vmenv = NewEnv(cfg)
		rules = cfg.rules()
	)
	if hooks := cfg.EVMConfig.Tracer; hooks != nil && hooks.OnTxStart != nil {
		hooks.OnTxStart(vmenv.GetVMContext(), cfg.Origin, nil, cfg.GasLimit, cfg.Value)
	}
	cfg.State.Prepare(rules, cfg.Origin, cfg.Coinbase, nil, vm.ActivePrecompiles(rules), nil)
	code, address, leftOverGas, err := vmenv.Create(
		cfg.Origin,
		input,
		cfg.GasLimit,
		uint256.MustFromBig(cfg.Value),
	)
	if hooks := cfg.EVMConfig.Tracer; hooks != nil && hooks.OnTxEnd != nil {
		hooks.OnTxEnd(cfg.GasLimit-leftOverGas, nil)
	}
	return code, address, leftOverGas, err
}

// Call executes the code given by the contract's address. It will return the
// EVM's return value or an error if it failed.
//
// Call, unlike Execute, requires a config and also requires the State field to
// be set.
func Call(address common.Address, input []byte, cfg *Config) ([]byte, uint64, error) {
	setDefaults(cfg)

	var (
		vmenv   = NewEnv(cfg)
		statedb = cfg.State
		rules   = cfg.rules()
	)
	if hooks := cfg.EVMConfig.Tracer; hooks != nil && hooks.OnTxStart != nil {
		hooks.OnTxStart(vmenv.GetVMContext(), cfg.Origin, &address, cfg.GasLimit, cfg.Value)
	}
	statedb.Prepare(rules, cfg.Origin, cfg.Coinbase, &address, vm.ActivePrecompiles(rules), nil)

	ret, leftOverGas, err := vmenv.Call(
		cfg.Origin,
		address,
		input,
		cfg.GasLimit,
		uint256.MustFromBig(cfg.Value),
	)
	if hooks := cfg.EVMConfig.Tracer; hooks != nil && hooks.OnTxEnd != nil {
		hooks.OnTxEnd(cfg.GasLimit-leftOverGas, nil)
	}
	return ret, leftOverGas, err
}
