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
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunyihoo/go-evm/common"
	"github.com/sunyihoo/go-evm/core/state"
	"github.com/sunyihoo/go-evm/core/tracing"
	"github.com/sunyihoo/go-evm/core/vm"
	"github.com/sunyihoo/go-evm/core/vm/program"
	"github.com/sunyihoo/go-evm/params"
	"github.com/sunyihoo/go-evm/params/forks"
)

func TestDefaults(t *testing.T) {
	cfg := new(Config)
	setDefaults(cfg)

	assert.NotNil(t, cfg.ChainConfig)
	assert.NotNil(t, cfg.Difficulty, "expected difficulty to be non nil")
	assert.NotZero(t, cfg.GasLimit, "didn't expect gaslimit to be zero")
	assert.NotNil(t, cfg.GasPrice)
	assert.NotNil(t, cfg.Value)
	assert.NotNil(t, cfg.GetHashFn)
	assert.NotNil(t, cfg.BlockNumber, "expected block number to be non nil")
	assert.Equal(t, big.NewInt(defaultBaseFee), cfg.BaseFee)
	assert.NotNil(t, cfg.Random, "post-merge config without randomness")

	cfg = &Config{ChainConfig: params.ForkConfig(forks.London)}
	setDefaults(cfg)
	assert.Nil(t, cfg.Random)
}

func TestEVM(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("crashed with: %v", r)
		}
	}()

	Execute([]byte{
		byte(vm.DIFFICULTY),
		byte(vm.TIMESTAMP),
		byte(vm.GASLIMIT),
		byte(vm.PUSH1),
		byte(vm.ORIGIN),
		byte(vm.BLOCKHASH),
		byte(vm.COINBASE),
	}, nil, nil)
}

func TestExecute(t *testing.T) {
	ret, _, err := Execute([]byte{
		byte(vm.PUSH1), 10,
		byte(vm.PUSH1), 0,
		byte(vm.MSTORE),
		byte(vm.PUSH1), 32,
		byte(vm.PUSH1), 0,
		byte(vm.RETURN),
	}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10), new(big.Int).SetBytes(ret))
}

func TestCall(t *testing.T) {
	statedb := state.New(state.NewDatabaseForTesting())
	address := common.HexToAddress("0x0a")
	statedb.SetCode(address, []byte{
		byte(vm.PUSH1), 10,
		byte(vm.PUSH1), 0,
		byte(vm.MSTORE),
		byte(vm.PUSH1), 32,
		byte(vm.PUSH1), 0,
		byte(vm.RETURN),
	})

	ret, _, err := Call(address, nil, &Config{State: statedb, ChainConfig: params.ForkConfig(forks.London)})
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10), new(big.Int).SetBytes(ret))
}

func TestCreate(t *testing.T) {
	deployed := program.New().Sload(0).Push(0).Op(vm.MSTORE).Return(0, 32).Bytes()
	initcode := program.New().Sstore(0, 0x2a).ReturnViaCodeCopy(deployed).Bytes()

	cfg := &Config{GasLimit: 1_000_000}
	code, address, _, err := Create(initcode, cfg)
	require.NoError(t, err)
	assert.Equal(t, deployed, code)
	assert.Equal(t, deployed, cfg.State.GetCode(address))
	assert.Equal(t, uint64(1), cfg.State.GetNonce(address))

	ret, _, err := Call(address, nil, cfg)
	require.NoError(t, err)
	assert.Equal(t, common.BigToHash(big.NewInt(0x2a)).Bytes(), ret)
}

func TestCreateRejectsEFPrefix(t *testing.T) {
	initcode := program.New().Mstore([]byte{0xef}, 0).Return(0, 1).Bytes()
	_, _, left, err := Create(initcode, &Config{GasLimit: 100_000})
	require.ErrorIs(t, err, vm.ErrInvalidCode)
	assert.Zero(t, left)
}

func TestCallGasRetention(t *testing.T) {
	var (
		statedb = state.New(state.NewDatabaseForTesting())
		caller  = common.HexToAddress("0xaa")
		callee  = common.HexToAddress("0xbb")
	)
	// The callee reports the gas it was given.
	statedb.SetCode(callee, program.New().Op(vm.GAS).Push(0).Op(vm.MSTORE).Return(0, 32).Bytes())
	statedb.SetCode(caller, program.New().
		Call(nil, callee, 0, 0, 0, 0, 32).Op(vm.POP).
		Push(0).Op(vm.MLOAD).Push(0).Op(vm.SSTORE).Bytes())

	_, _, err := Call(caller, nil, &Config{State: statedb, GasLimit: 100_000})
	require.NoError(t, err)

	// About 97377 is left once the cold access and memory are paid for, of
	// which a 64th stays with the caller.
	got := statedb.GetState(caller, common.Hash{}).Big().Uint64()
	assert.InDelta(t, 97377-97377/64, got, 64)
}

func TestNestedRevert(t *testing.T) {
	var (
		statedb = state.New(state.NewDatabaseForTesting())
		outer   = common.HexToAddress("0xaa")
		inner   = common.HexToAddress("0xbb")
		exits   []bool
	)
	statedb.SetCode(inner, program.New().Sstore(0, 0x2a).Revert(0, 0).Bytes())
	statedb.SetCode(outer, program.New().
		Sstore(1, 1).
		Call(nil, inner, 0, 0, 0, 0, 0).
		Push(2).Op(vm.SSTORE).Bytes())

	cfg := &Config{
		State: statedb,
		EVMConfig: vm.Config{Tracer: &tracing.Hooks{
			OnExit: func(depth int, output []byte, gasUsed uint64, err error, reverted bool) {
				exits = append(exits, reverted)
			},
		}},
	}
	_, _, err := Call(outer, nil, cfg)
	require.NoError(t, err)

	assert.Equal(t, common.BigToHash(big.NewInt(1)), statedb.GetState(outer, common.BigToHash(big.NewInt(1))))
	assert.Equal(t, common.Hash{}, statedb.GetState(outer, common.BigToHash(big.NewInt(2))), "call status should be zero")
	assert.Equal(t, common.Hash{}, statedb.GetState(inner, common.Hash{}))
	assert.Equal(t, []bool{true, false}, exits)
}

func TestOuterFailureUndoesInnerSuccess(t *testing.T) {
	var (
		statedb = state.New(state.NewDatabaseForTesting())
		outer   = common.HexToAddress("0xaa")
		inner   = common.HexToAddress("0xbb")
	)
	statedb.SetCode(inner, program.New().Sstore(0, 0x2a).Bytes())
	statedb.SetCode(outer, program.New().
		Call(nil, inner, 0, 0, 0, 0, 0).
		Op(vm.INVALID).Bytes())

	_, left, err := Call(outer, nil, &Config{State: statedb, GasLimit: 200_000})
	require.Error(t, err)
	assert.True(t, vm.IsExceptionalHalt(err))
	assert.Zero(t, left)
	assert.Equal(t, common.Hash{}, statedb.GetState(inner, common.Hash{}))
}

func TestBlockhashWindow(t *testing.T) {
	code := program.New().
		Push(299).Op(vm.BLOCKHASH).Push(0).Op(vm.MSTORE).
		Push(43).Op(vm.BLOCKHASH).Push(32).Op(vm.MSTORE).
		Push(300).Op(vm.BLOCKHASH).Push(64).Op(vm.MSTORE).
		Return(0, 96).Bytes()

	cfg := &Config{BlockNumber: big.NewInt(300)}
	ret, _, err := Execute(code, nil, cfg)
	require.NoError(t, err)
	require.Len(t, ret, 96)
	assert.Equal(t, cfg.GetHashFn(299).Bytes(), ret[:32])
	assert.Equal(t, make([]byte, 32), ret[32:64], "below the window")
	assert.Equal(t, make([]byte, 32), ret[64:], "current block")
}

func TestExecuteBatch(t *testing.T) {
	jobs := make([]Job, 8)
	for i := range jobs {
		jobs[i] = Job{
			Code: program.New().
				Sstore(0, i+1).
				Log(0, 0, i).
				ReturnData([]byte{byte(i)}).Bytes(),
		}
	}
	cfg := &Config{Parallelism: 3, EVMConfig: vm.Config{StatsEnabled: true}}
	res, err := ExecuteBatch(context.Background(), jobs, cfg)
	require.NoError(t, err)
	require.Len(t, res.Results, len(jobs))
	require.Len(t, res.States, len(jobs))

	for i, r := range res.Results {
		require.NoError(t, r.Err)
		assert.Equal(t, vm.StatusSuccess, r.Status)
		assert.Equal(t, []byte{byte(i)}, r.Output)
		assert.Len(t, r.Logs, 1)
		assert.True(t, r.TouchedAddresses.Contains(contractAddress))
		assert.Equal(t, common.BigToHash(big.NewInt(int64(i+1))), res.States[i].GetState(contractAddress, common.Hash{}))
	}
	require.NotNil(t, res.Stats)
	assert.Equal(t, uint64(len(jobs)), res.Stats.Calls)
	assert.Equal(t, res.Results[0].Stats.Opcodes*uint64(len(jobs)), res.Stats.Opcodes)
}

func TestExecuteBatchDeterministic(t *testing.T) {
	code := program.New().Sstore(0, 1).Sload(0).Push(0).Op(vm.MSTORE).Return(0, 32).Bytes()
	jobs := []Job{{Code: code}, {Code: code}, {Code: code}, {Code: code}}

	res, err := ExecuteBatch(context.Background(), jobs, &Config{})
	require.NoError(t, err)
	for _, r := range res.Results[1:] {
		assert.Equal(t, res.Results[0].Output, r.Output)
		assert.Equal(t, res.Results[0].GasUsed, r.GasUsed)
		assert.Nil(t, r.Stats)
	}
	assert.Nil(t, res.Stats)
}

func TestExecuteBatchRefundCap(t *testing.T) {
	var (
		base = state.New(state.NewDatabaseForTesting())
		addr = common.HexToAddress("0xcc")
	)
	base.SetCode(addr, program.New().Sstore(0, 0).Bytes())
	base.SetState(addr, common.Hash{}, common.BigToHash(big.NewInt(1)))
	base.Finalise(true)

	res, err := ExecuteBatch(context.Background(), []Job{{Address: &addr, Gas: 100_000}}, &Config{State: base})
	require.NoError(t, err)

	r := res.Results[0]
	require.NoError(t, r.Err)
	// Two pushes and a cold slot reset, the 4800 clearing refund is capped
	// at a fifth of the gas used.
	assert.Equal(t, uint64(5006/5), r.GasRefund)
	assert.Equal(t, uint64(5006-5006/5), r.GasUsed)
	assert.Equal(t, common.Hash{}, res.States[0].GetState(addr, common.Hash{}))
	assert.Equal(t, common.BigToHash(big.NewInt(1)), base.GetState(addr, common.Hash{}), "base state modified")
}

func TestExecuteBatchSharedAnalysis(t *testing.T) {
	// A loop running twice forces analysis of the installed code.
	p := program.New().Push(2)
	_, loop := p.Jumpdest()
	p.Push(1).Op(vm.SWAP1, vm.SUB, vm.DUP1).Push(loop).Op(vm.JUMPI)
	code := p.Bytes()

	cache := vm.NewAnalysisCache(1024 * 1024)
	jobs := []Job{{Code: code}, {Code: code}, {Code: code}}
	_, err := ExecuteBatch(context.Background(), jobs, &Config{Parallelism: 1, EVMConfig: vm.Config{AnalysisCache: cache}})
	require.NoError(t, err)

	hits, misses := cache.Stats()
	assert.Equal(t, uint64(1), misses)
	assert.Equal(t, uint64(2), hits)
}

func TestExecuteBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ExecuteBatch(ctx, []Job{{Code: []byte{byte(vm.STOP)}}}, nil)
	require.ErrorIs(t, err, context.Canceled)

	// A running job is interrupted at its next jump.
	p := program.New()
	_, loop := p.Jumpdest()
	p.Jump(loop)

	ctx, cancel = context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = ExecuteBatch(ctx, []Job{{Code: p.Bytes()}}, nil)
	require.True(t, errors.Is(err, context.DeadlineExceeded), "have %v", err)
}

func TestPrecompileStats(t *testing.T) {
	code := program.New().
		Call(nil, common.BytesToAddress([]byte{0x01}), 0, 0, 128, 0, 32).Op(vm.POP).
		Call(nil, common.BytesToAddress([]byte{0x04}), 0, 0, 32, 0, 32).Op(vm.POP).
		Call(nil, common.BytesToAddress([]byte{0x04}), 0, 0, 32, 0, 32).Bytes()

	res, err := ExecuteBatch(context.Background(), []Job{{Code: code}}, &Config{EVMConfig: vm.Config{StatsEnabled: true}})
	require.NoError(t, err)

	stats := res.Results[0].Stats
	assert.Equal(t, uint64(1), stats.Ecrecovers)
	assert.Equal(t, uint64(1), stats.Precompiles["ECREC"])
	assert.Equal(t, uint64(2), stats.Precompiles["ID"])
	assert.Equal(t, uint64(4), stats.Calls)
}

func BenchmarkExecuteBatch(b *testing.B) {
	p := program.New().Push(1000)
	_, loop := p.Jumpdest()
	p.Push(1).Op(vm.SWAP1, vm.SUB, vm.DUP1).Push(loop).Op(vm.JUMPI)
	jobs := make([]Job, 64)
	for i := range jobs {
		jobs[i] = Job{Code: p.Bytes(), Value: new(big.Int)}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ExecuteBatch(context.Background(), jobs, &Config{}); err != nil {
			b.Fatal(err)
		}
	}
}
