// Copyright 2018 The go-ethereum Authors
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
	"errors"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunyihoo/go-evm/common"
	"github.com/sunyihoo/go-evm/core/state"
	"github.com/sunyihoo/go-evm/core/tracing"
	"github.com/sunyihoo/go-evm/params"
	"github.com/sunyihoo/go-evm/params/forks"
)

var (
	testCaller   = common.HexToAddress("0xc0ffee")
	testContract = common.HexToAddress("0xc0de")
)

func newTestEVM(fork forks.Fork, config Config) (*EVM, *state.StateDB) {
	statedb := state.New(state.NewDatabaseForTesting())
	blockCtx := BlockContext{
		CanTransfer: func(db StateDB, addr common.Address, amount *uint256.Int) bool {
			return db.GetBalance(addr).Cmp(amount) >= 0
		},
		Transfer: func(db StateDB, sender, recipient common.Address, amount *uint256.Int) {
			db.SubBalance(sender, amount, tracing.BalanceChangeTransfer)
			db.AddBalance(recipient, amount, tracing.BalanceChangeTransfer)
		},
		GetHash: func(uint64) common.Hash { return common.Hash{} },
	}
	return NewEVM(blockCtx, statedb, params.ForkConfig(fork), config), statedb
}

// runCode installs code at testContract and calls into it.
func runCode(t *testing.T, fork forks.Fork, config Config, code []byte, gas uint64) ([]byte, uint64, error, *state.StateDB) {
	t.Helper()
	evm, statedb := newTestEVM(fork, config)
	statedb.SetCode(testContract, code)
	ret, left, err := evm.Call(testCaller, testContract, nil, gas, new(uint256.Int))
	return ret, left, err, statedb
}

func TestExactGasConsumption(t *testing.T) {
	code := []byte{byte(PUSH1), 1, byte(PUSH1), 2, byte(ADD), byte(STOP)}

	_, left, err, _ := runCode(t, forks.Cancun, Config{}, code, 9)
	require.NoError(t, err)
	assert.Zero(t, left)

	_, left, err, _ = runCode(t, forks.Cancun, Config{}, code, 8)
	require.ErrorIs(t, err, ErrOutOfGas)
	assert.Zero(t, left)
}

// Constantinople meters SSTORE by net change (EIP-1283), Petersburg reverts
// to the flat legacy prices.
func TestSstoreNetMeteringByFork(t *testing.T) {
	code := []byte{byte(PUSH1), 0, byte(PUSH1), 0, byte(SSTORE), byte(STOP)}
	for _, tt := range []struct {
		fork forks.Fork
		used uint64
	}{
		{forks.Byzantium, 5006},
		{forks.Constantinople, 206},
		{forks.Petersburg, 5006},
	} {
		t.Run(tt.fork.String(), func(t *testing.T) {
			const gas = 100_000
			_, left, err, _ := runCode(t, tt.fork, Config{}, code, gas)
			require.NoError(t, err)
			assert.Equal(t, tt.used, gas-left)
		})
	}
}

func TestGasChargedBeforeStackValidation(t *testing.T) {
	code := []byte{byte(ADD)}

	_, _, err, _ := runCode(t, forks.Cancun, Config{}, code, 2)
	require.ErrorIs(t, err, ErrOutOfGas)

	_, left, err, _ := runCode(t, forks.Cancun, Config{}, code, 3)
	var underflow *ErrStackUnderflow
	require.ErrorAs(t, err, &underflow)
	assert.True(t, IsExceptionalHalt(err))
	assert.Zero(t, left)
}

func TestStoreWithoutGasHasNoEffect(t *testing.T) {
	code := []byte{byte(PUSH1), 1, byte(PUSH1), 0, byte(SSTORE)}
	_, left, err, statedb := runCode(t, forks.Cancun, Config{}, code, 2000)
	require.ErrorIs(t, err, ErrOutOfGas)
	assert.Zero(t, left)
	assert.Equal(t, common.Hash{}, statedb.GetState(testContract, common.Hash{}))
}

func TestRevertKeepsGas(t *testing.T) {
	code := []byte{
		byte(PUSH1), 1, byte(PUSH1), 0, byte(SSTORE),
		byte(PUSH1), 0, byte(PUSH1), 0, byte(REVERT),
	}
	_, left, err, statedb := runCode(t, forks.Cancun, Config{}, code, 100_000)
	require.ErrorIs(t, err, ErrExecutionReverted)
	assert.Equal(t, StatusRevert, StatusOf(err))
	// two pushes, a cold zero to one store, two pushes and a free revert
	assert.Equal(t, uint64(100_000-3*2-22100-3*2), left)
	assert.Equal(t, common.Hash{}, statedb.GetState(testContract, common.Hash{}))
}

func TestExceptionalHalts(t *testing.T) {
	tests := []struct {
		name string
		code []byte
		want error
	}{
		{"invalid opcode", []byte{0xfe}, &ErrInvalidOpCode{}},
		{"bad jump", []byte{byte(PUSH1), 5, byte(JUMP)}, ErrInvalidJump},
		{"jump into push data", []byte{byte(PUSH1), 4, byte(JUMP), byte(PUSH1), byte(JUMPDEST)}, ErrInvalidJump},
		{"return data out of bounds", []byte{byte(PUSH1), 1, byte(PUSH1), 0, byte(PUSH1), 0, byte(RETURNDATACOPY)}, ErrReturnDataOutOfBounds},
		{"overflow", []byte{byte(JUMPDEST), byte(PUSH0), byte(PUSH1), 0, byte(JUMP)}, &ErrStackOverflow{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, left, err, _ := runCode(t, forks.Cancun, Config{}, tt.code, 1_000_000)
			require.Error(t, err)
			switch want := tt.want.(type) {
			case *ErrInvalidOpCode:
				assert.ErrorAs(t, err, &want)
			case *ErrStackOverflow:
				assert.ErrorAs(t, err, &want)
			default:
				assert.ErrorIs(t, err, want)
			}
			assert.Equal(t, StatusExceptionalHalt, StatusOf(err))
			assert.Zero(t, left)
		})
	}
}

func TestStaticCallWriteProtection(t *testing.T) {
	evm, statedb := newTestEVM(forks.Cancun, Config{})
	statedb.SetCode(testContract, []byte{byte(PUSH1), 1, byte(PUSH1), 0, byte(SSTORE)})
	_, left, err := evm.StaticCall(testCaller, testContract, nil, 100_000)
	require.ErrorIs(t, err, ErrWriteProtection)
	assert.Zero(t, left)
}

func TestTracerHasNoEffect(t *testing.T) {
	code := []byte{
		byte(PUSH1), 0x2a, byte(PUSH1), 0, byte(MSTORE),
		byte(PUSH1), 0x2a, byte(PUSH1), 1, byte(SSTORE),
		byte(PUSH1), 0x20, byte(PUSH1), 0, byte(LOG0),
		byte(PUSH1), 0x20, byte(PUSH1), 0, byte(RETURN),
	}
	var steps int
	recording := &tracing.Hooks{
		OnOpcode: func(pc uint64, op byte, gas, cost uint64, scope tracing.OpContext, rData []byte, depth int, err error) {
			steps++
		},
		OnEnter:     func(int, byte, common.Address, common.Address, []byte, uint64, *big.Int) {},
		OnExit:      func(int, []byte, uint64, error, bool) {},
		OnGasChange: func(uint64, uint64, tracing.GasChangeReason) {},
	}
	wantRet, wantLeft, err, wantState := runCode(t, forks.Cancun, Config{}, code, 100_000)
	require.NoError(t, err)

	for name, hooks := range map[string]*tracing.Hooks{"empty": {}, "recording": recording} {
		t.Run(name, func(t *testing.T) {
			ret, left, err, statedb := runCode(t, forks.Cancun, Config{Tracer: hooks}, code, 100_000)
			require.NoError(t, err)
			assert.Equal(t, wantRet, ret)
			assert.Equal(t, wantLeft, left)
			slot := common.BigToHash(big.NewInt(1))
			assert.Equal(t, wantState.GetState(testContract, slot), statedb.GetState(testContract, slot))
			assert.Len(t, statedb.Logs(), len(wantState.Logs()))
		})
	}
	assert.Equal(t, 12, steps)
}

func TestCallDepthLimit(t *testing.T) {
	// Calls itself with all available gas until the nesting limit is hit.
	code := []byte{
		byte(PUSH1), 0, byte(DUP1), byte(DUP1), byte(DUP1), byte(DUP1),
		byte(ADDRESS), byte(GAS), byte(CALL), byte(STOP),
	}
	var (
		maxDepth  int
		depthErrs int
	)
	hooks := &tracing.Hooks{
		OnOpcode: func(pc uint64, op byte, gas, cost uint64, scope tracing.OpContext, rData []byte, depth int, err error) {
			maxDepth = max(maxDepth, depth)
		},
		OnExit: func(depth int, output []byte, gasUsed uint64, err error, reverted bool) {
			if errors.Is(err, ErrDepth) {
				depthErrs++
			}
		},
	}
	_, _, err, _ := runCode(t, forks.Cancun, Config{Tracer: hooks, MaxCallDepth: 3}, code, 1_000_000)
	require.NoError(t, err)
	assert.Equal(t, 4, maxDepth)
	assert.Equal(t, 1, depthErrs)
}

func TestPrecompileFailureInsideCall(t *testing.T) {
	// CALL blake2f with empty input and store ISZERO of the outcome in slot 0.
	code := []byte{
		byte(PUSH1), 0, byte(DUP1), byte(DUP1), byte(DUP1), byte(DUP1),
		byte(PUSH1), 0x09, byte(PUSH2), 0x0f, 0xff, byte(CALL),
		byte(ISZERO), byte(PUSH1), 0, byte(SSTORE), byte(STOP),
	}
	_, _, err, statedb := runCode(t, forks.Cancun, Config{}, code, 1_000_000)
	require.NoError(t, err)
	assert.Equal(t, common.BigToHash(big.NewInt(1)), statedb.GetState(testContract, common.Hash{}))

	// At the top level the failure kind is reported as such.
	evm, _ := newTestEVM(forks.Cancun, Config{})
	_, left, err := evm.Call(testCaller, common.BytesToAddress([]byte{0x09}), nil, 10_000, new(uint256.Int))
	require.Error(t, err)
	assert.Equal(t, StatusPrecompileFailure, StatusOf(err))
	assert.Zero(t, left)
}

func TestForkGatedPrecompile(t *testing.T) {
	kzg := common.BytesToAddress([]byte{0x0a})

	evm, _ := newTestEVM(forks.London, Config{})
	ret, left, err := evm.Call(testCaller, kzg, nil, 100_000, new(uint256.Int))
	require.NoError(t, err)
	assert.Empty(t, ret)
	assert.Equal(t, uint64(100_000), left)

	evm, _ = newTestEVM(forks.Cancun, Config{})
	_, _, err = evm.Call(testCaller, kzg, nil, 100_000, new(uint256.Int))
	assert.True(t, IsPrecompileFailure(err))
}

func TestCancelledLoopStops(t *testing.T) {
	code := []byte{byte(JUMPDEST), byte(PUSH1), 0, byte(JUMP)}
	evm, statedb := newTestEVM(forks.Cancun, Config{})
	statedb.SetCode(testContract, code)
	evm.Cancel()
	require.True(t, evm.Cancelled())

	_, left, err := evm.Call(testCaller, testContract, nil, 1_000_000, new(uint256.Int))
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000-1-3-8), left)
}

func TestStatsCollection(t *testing.T) {
	code := []byte{
		byte(PUSH1), 0, byte(DUP1), byte(DUP1), byte(DUP1), byte(DUP1),
		byte(PUSH1), 0x04, byte(PUSH2), 0x0f, 0xff, byte(CALL), byte(STOP),
	}
	evm, statedb := newTestEVM(forks.Cancun, Config{StatsEnabled: true})
	statedb.SetCode(testContract, code)
	_, _, err := evm.Call(testCaller, testContract, nil, 100_000, new(uint256.Int))
	require.NoError(t, err)

	stats := evm.Stats()
	require.NotNil(t, stats)
	assert.Equal(t, uint64(9), stats.Opcodes)
	assert.Equal(t, uint64(2), stats.Calls)
	assert.Equal(t, uint64(1), stats.Precompiles["ID"])
	assert.Zero(t, stats.Ecrecovers)

	evm, _ = newTestEVM(forks.Cancun, Config{})
	assert.Nil(t, evm.Stats())
}

func TestInstructionSets(t *testing.T) {
	for f := forks.Frontier; f <= forks.Prague; f++ {
		jt := LookupInstructionSet(params.RulesForFork(f))
		for i, op := range jt {
			require.NotNilf(t, op, "fork %v op %#x", f, i)
		}
		assert.Equal(t, f >= forks.Shanghai, jt[PUSH0].Defined(), "PUSH0 at %v", f)
		assert.Equal(t, f >= forks.Cancun, jt[MCOPY].Defined(), "MCOPY at %v", f)
		assert.Equal(t, f >= forks.Byzantium, jt[REVERT].Defined(), "REVERT at %v", f)
		assert.Equal(t, f >= forks.Homestead, jt[DELEGATECALL].Defined(), "DELEGATECALL at %v", f)
		assert.False(t, jt[0xfe].Defined())
	}
	// Tangerine Whistle repriced the state access opcodes.
	frontier := LookupInstructionSet(params.RulesForFork(forks.Frontier))
	eip150 := LookupInstructionSet(params.RulesForFork(forks.TangerineWhistle))
	assert.Equal(t, uint64(50), frontier[SLOAD].ConstantGas())
	assert.Equal(t, uint64(200), eip150[SLOAD].ConstantGas())
}

func TestFailureStatus(t *testing.T) {
	assert.Equal(t, StatusSuccess, StatusOf(nil))
	assert.Equal(t, StatusRevert, StatusOf(ErrExecutionReverted))
	assert.Equal(t, StatusExceptionalHalt, StatusOf(ErrOutOfGas))
	assert.Equal(t, StatusExceptionalHalt, StatusOf(VMErrorFromErr(ErrDepth)))
	assert.Equal(t, StatusPrecompileFailure, StatusOf(&PrecompileError{Name: "BLAKE2F", Err: errBlake2FInvalidInputLength}))

	res := &ExecutionResult{Status: StatusRevert, Output: []byte{1}, Err: ErrExecutionReverted}
	assert.True(t, res.Failed())
	assert.Nil(t, res.Return())
	assert.Equal(t, []byte{1}, res.Revert())

	res = &ExecutionResult{Status: StatusSuccess, Output: []byte{2}}
	assert.False(t, res.Failed())
	assert.Equal(t, []byte{2}, res.Return())
	assert.Nil(t, res.Revert())
}
