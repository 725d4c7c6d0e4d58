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

package core

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunyihoo/go-evm/common"
	"github.com/sunyihoo/go-evm/core/state"
	"github.com/sunyihoo/go-evm/core/tracing"
	"github.com/sunyihoo/go-evm/core/types"
	"github.com/sunyihoo/go-evm/core/vm"
	"github.com/sunyihoo/go-evm/crypto"
	"github.com/sunyihoo/go-evm/params"
	"github.com/sunyihoo/go-evm/params/forks"
)

var (
	testSender    = common.HexToAddress("0x71562b71999873db5b286df957af199ec94617f7")
	testRecipient = common.HexToAddress("0xbeef")
	testCoinbase  = common.HexToAddress("0xc014ba5e")

	oneEther = uint256.NewInt(params.Ether)
	gwei     = big.NewInt(params.GWei)
)

func TestIntrinsicGas(t *testing.T) {
	accessList := types.AccessList{{
		Address:     testRecipient,
		StorageKeys: []common.Hash{{1}, {2}},
	}}
	tests := []struct {
		name                          string
		data                          []byte
		accessList                    types.AccessList
		creation, homestead, istanbul bool
		shanghai                      bool
		want                          uint64
	}{
		{name: "call", want: params.TxGas},
		{name: "frontier create", creation: true, want: params.TxGas},
		{name: "create", creation: true, homestead: true, want: params.TxGasContractCreation},
		{name: "frontier data", data: []byte{0, 1}, want: 21000 + 4 + 68},
		{name: "istanbul data", data: []byte{0, 1}, istanbul: true, want: 21000 + 4 + 16},
		{name: "init code words", data: make([]byte, 33), creation: true, homestead: true, shanghai: true, want: 53000 + 33*4 + 2*2},
		{name: "access list", accessList: accessList, want: 21000 + 2400 + 2*1900},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gas, err := IntrinsicGas(tt.data, tt.accessList, tt.creation, tt.homestead, tt.istanbul, tt.shanghai)
			require.NoError(t, err)
			assert.Equal(t, tt.want, gas)
		})
	}
}

func newTestState(t *testing.T) *state.StateDB {
	t.Helper()
	statedb := state.New(state.NewDatabaseForTesting())
	statedb.SetBalance(testSender, oneEther, tracing.BalanceIncreaseGenesisBalance)
	return statedb
}

func newTestEVM(fork forks.Fork, statedb vm.StateDB, config vm.Config) *vm.EVM {
	header := &types.Header{
		Coinbase:    testCoinbase,
		Number:      big.NewInt(1),
		GasLimit:    30_000_000,
		Difficulty:  new(big.Int),
		BlobBaseFee: big.NewInt(1),
	}
	if fork >= forks.London {
		header.BaseFee = new(big.Int).Set(gwei)
	}
	if fork < forks.Paris {
		header.Difficulty = big.NewInt(1)
	}
	blockCtx := NewEVMBlockContext(header, HashChain{}, nil, params.BlockHashWindow)
	return vm.NewEVM(blockCtx, statedb, params.ForkConfig(fork), config)
}

func transferMessage() *Message {
	return &Message{
		From:     testSender,
		To:       &testRecipient,
		Value:    uint256.NewInt(1000),
		GasLimit: params.TxGas,
		GasPrice: new(big.Int).Mul(gwei, big.NewInt(2)),
	}
}

func TestApplyMessageTransfer(t *testing.T) {
	statedb := newTestState(t)
	evm := newTestEVM(forks.Cancun, statedb, vm.Config{})
	gp := NewGasPool(1_000_000)

	res, err := ApplyMessage(evm, transferMessage(), gp)
	require.NoError(t, err)
	require.NoError(t, res.Err)
	assert.Equal(t, vm.StatusSuccess, res.Status)
	assert.Equal(t, params.TxGas, res.GasUsed)
	assert.Equal(t, uint64(1_000_000-params.TxGas), gp.Gas())

	// 2 gwei per gas is paid, 1 gwei of it goes to the coinbase
	spent := new(uint256.Int).Mul(uint256.NewInt(params.TxGas), uint256.NewInt(2*params.GWei))
	spent.Add(spent, uint256.NewInt(1000))
	assert.Equal(t, new(uint256.Int).Sub(oneEther, spent), statedb.GetBalance(testSender))
	assert.Equal(t, uint256.NewInt(1000), statedb.GetBalance(testRecipient))
	assert.Equal(t, new(uint256.Int).Mul(uint256.NewInt(params.TxGas), uint256.NewInt(params.GWei)), statedb.GetBalance(testCoinbase))
	assert.Equal(t, uint64(1), statedb.GetNonce(testSender))
	assert.True(t, res.TouchedAddresses.Contains(testRecipient))
}

func TestApplyMessageIntakeErrors(t *testing.T) {
	blobHash := common.Hash{0x01}
	tests := []struct {
		name   string
		prep   func(*state.StateDB)
		mutate func(*Message)
		pool   uint64
		want   error
	}{
		{name: "nonce too high", mutate: func(m *Message) { m.Nonce = 5 }, want: ErrNonceTooHigh},
		{name: "nonce too low", prep: func(s *state.StateDB) { s.SetNonce(testSender, 3) }, want: ErrNonceTooLow},
		{name: "intrinsic gas", mutate: func(m *Message) { m.GasLimit = params.TxGas - 1 }, want: ErrIntrinsicGas},
		{name: "insufficient funds", mutate: func(m *Message) { m.Value = oneEther }, want: ErrInsufficientFunds},
		{name: "gas limit reached", pool: params.TxGas - 1, want: ErrGasLimitReached},
		{name: "fee cap too low", mutate: func(m *Message) { m.GasPrice = big.NewInt(1) }, want: ErrFeeCapTooLow},
		{name: "tip above fee cap", mutate: func(m *Message) { m.GasTipCap = new(big.Int).Mul(gwei, big.NewInt(3)) }, want: ErrTipAboveFeeCap},
		{name: "sender has code", prep: func(s *state.StateDB) { s.SetCode(testSender, []byte{byte(vm.STOP)}) }, want: ErrSenderNoEOA},
		{
			name: "init code too large",
			mutate: func(m *Message) {
				m.To, m.Value, m.GasLimit = nil, nil, 300_000
				m.Data = make([]byte, params.MaxInitCodeSize+1)
			},
			want: ErrMaxInitCodeSizeExceeded,
		},
		{name: "blob create", mutate: func(m *Message) { m.To, m.BlobHashes = nil, []common.Hash{blobHash} }, want: ErrBlobTxCreate},
		{name: "missing blobs", mutate: func(m *Message) { m.BlobHashes = []common.Hash{} }, want: ErrMissingBlobHashes},
		{name: "too many blobs", mutate: func(m *Message) { m.BlobHashes = make([]common.Hash, 7) }, want: ErrTooManyBlobs},
		{name: "blob fee cap", mutate: func(m *Message) { m.BlobHashes = []common.Hash{blobHash} }, want: ErrBlobFeeCapTooLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			statedb := newTestState(t)
			if tt.prep != nil {
				tt.prep(statedb)
			}
			nonce := statedb.GetNonce(testSender)
			msg := transferMessage()
			if tt.mutate != nil {
				tt.mutate(msg)
			}
			pool := tt.pool
			if pool == 0 {
				pool = 1_000_000
			}
			gp := NewGasPool(pool)
			evm := newTestEVM(forks.Cancun, statedb, vm.Config{})

			res, err := ApplyMessage(evm, msg, gp)
			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, res)
			assert.Equal(t, oneEther, statedb.GetBalance(testSender))
			assert.Equal(t, nonce, statedb.GetNonce(testSender))
			assert.Equal(t, pool, gp.Gas())
		})
	}
}

func TestApplyMessageExecutionFailure(t *testing.T) {
	statedb := newTestState(t)
	// PUSH1 0 PUSH1 0 REVERT
	statedb.SetCode(testRecipient, []byte{byte(vm.PUSH1), 0, byte(vm.PUSH1), 0, byte(vm.REVERT)})
	msg := transferMessage()
	msg.GasLimit = 50_000

	res, err := ApplyMessage(newTestEVM(forks.Cancun, statedb, vm.Config{}), msg, NewGasPool(1_000_000))
	require.NoError(t, err, "a reverted call is not an intake error")
	assert.Equal(t, vm.StatusRevert, res.Status)
	assert.True(t, errors.Is(res.Err, vm.ErrExecutionReverted))
	assert.Equal(t, params.TxGas+6, res.GasUsed)
	assert.Equal(t, uint64(1), statedb.GetNonce(testSender))
	assert.True(t, statedb.GetBalance(testRecipient).IsZero(), "value transfer not reverted")
}

func TestApplyMessageRefundCap(t *testing.T) {
	tests := []struct {
		fork         forks.Fork
		used, refund uint64
	}{
		// 21000 intrinsic, two pushes and a cold slot reset: 26006 before refunds
		{forks.Berlin, 26006 - 26006/2, 26006 / 2},
		{forks.London, 26006 - 4800, 4800},
	}
	for _, tt := range tests {
		t.Run(tt.fork.String(), func(t *testing.T) {
			statedb := newTestState(t)
			// PUSH1 0 PUSH1 0 SSTORE
			statedb.SetCode(testRecipient, []byte{byte(vm.PUSH1), 0, byte(vm.PUSH1), 0, byte(vm.SSTORE)})
			statedb.SetState(testRecipient, common.Hash{}, common.Hash{31: 1})
			statedb.Finalise(true)

			msg := transferMessage()
			msg.GasLimit = 100_000
			res, err := ApplyMessage(newTestEVM(tt.fork, statedb, vm.Config{}), msg, NewGasPool(1_000_000))
			require.NoError(t, err)
			require.NoError(t, res.Err)
			assert.Equal(t, tt.used, res.GasUsed)
			assert.Equal(t, tt.refund, res.GasRefund)
		})
	}
}

func TestApplyMessageCreate(t *testing.T) {
	statedb := newTestState(t)
	// Deploys the single byte 0x00: MSTORE8(0, 0) RETURN(0, 1)
	initcode := []byte{
		byte(vm.PUSH1), 0, byte(vm.PUSH1), 0, byte(vm.MSTORE8),
		byte(vm.PUSH1), 1, byte(vm.PUSH1), 0, byte(vm.RETURN),
	}
	msg := &Message{From: testSender, GasLimit: 100_000, GasPrice: gwei, Data: initcode}

	res, err := ApplyMessage(newTestEVM(forks.Cancun, statedb, vm.Config{StatsEnabled: true}), msg, NewGasPool(1_000_000))
	require.NoError(t, err)
	require.NoError(t, res.Err)

	addr := crypto.CreateAddress(testSender, 0)
	assert.Equal(t, []byte{0}, statedb.GetCode(addr))
	assert.Equal(t, uint64(1), statedb.GetNonce(addr))
	assert.Equal(t, uint64(1), statedb.GetNonce(testSender))
	require.NotNil(t, res.Stats)
	assert.Equal(t, uint64(1), res.Stats.Creates)
}

func TestApplyMessageBlobs(t *testing.T) {
	statedb := newTestState(t)
	// PUSH1 0 BLOBHASH PUSH1 0 SSTORE
	statedb.SetCode(testRecipient, []byte{byte(vm.PUSH1), 0, byte(vm.BLOBHASH), byte(vm.PUSH1), 0, byte(vm.SSTORE)})
	blobHash := common.Hash{0x01, 0xaa}

	msg := transferMessage()
	msg.GasLimit = 100_000
	msg.Value = nil
	msg.BlobHashes = []common.Hash{blobHash}
	msg.BlobGasFeeCap = big.NewInt(10)

	res, err := ApplyMessage(newTestEVM(forks.Cancun, statedb, vm.Config{}), msg, NewGasPool(1_000_000))
	require.NoError(t, err)
	require.NoError(t, res.Err)
	assert.Equal(t, blobHash, statedb.GetState(testRecipient, common.Hash{}))

	// Gas and blob gas at a base fee of one wei are both paid for.
	spent := new(uint256.Int).Mul(uint256.NewInt(res.GasUsed), uint256.NewInt(2*params.GWei))
	spent.Add(spent, uint256.NewInt(params.BlobTxBlobGasPerBlob))
	assert.Equal(t, new(uint256.Int).Sub(oneEther, spent), statedb.GetBalance(testSender))
}

func TestFloorDataGas(t *testing.T) {
	gas, err := FloorDataGas(nil)
	require.NoError(t, err)
	assert.Equal(t, params.TxGas, gas)

	gas, err = FloorDataGas([]byte{0, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, params.TxGas+(1+2*4)*10, gas)
}

func TestApplyMessageDataFloor(t *testing.T) {
	data := bytes.Repeat([]byte{0xff}, 100)
	tests := []struct {
		fork     forks.Fork
		gasLimit uint64
		used     uint64
		err      error
	}{
		// 21000 + 100*16 intrinsic, below the 21000 + 100*4*10 floor
		{fork: forks.Cancun, gasLimit: 30_000, used: 22_600},
		{fork: forks.Prague, gasLimit: 30_000, used: 25_000},
		{fork: forks.Prague, gasLimit: 24_999, err: ErrFloorDataGas},
	}
	for _, tt := range tests {
		t.Run(tt.fork.String(), func(t *testing.T) {
			statedb := newTestState(t)
			msg := transferMessage()
			msg.GasLimit = tt.gasLimit
			msg.Data = data

			var floor uint64
			hooks := &tracing.Hooks{
				OnGasChange: func(old, new uint64, reason tracing.GasChangeReason) {
					if reason == tracing.GasChangeTxDataFloor {
						floor = old - new
					}
				},
			}
			gp := NewGasPool(1_000_000)
			res, err := ApplyMessage(newTestEVM(tt.fork, statedb, vm.Config{Tracer: hooks}), msg, gp)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				assert.Equal(t, oneEther, statedb.GetBalance(testSender))
				assert.Equal(t, uint64(1_000_000), gp.Gas())
				return
			}
			require.NoError(t, err)
			require.NoError(t, res.Err)
			assert.Equal(t, tt.used, res.GasUsed)
			assert.Equal(t, uint64(1_000_000)-tt.used, gp.Gas())
			assert.Equal(t, res.GasUsed-22_600, floor)
		})
	}
}

func TestApplyMessageTracerHooks(t *testing.T) {
	var (
		started bool
		ended   uint64
	)
	hooks := &tracing.Hooks{
		OnTxStart: func(env *tracing.VMContext, from common.Address, to *common.Address, gasLimit uint64, value *big.Int) {
			started = true
			assert.Equal(t, testSender, from)
			assert.Equal(t, testCoinbase, env.Coinbase)
		},
		OnTxEnd: func(gasUsed uint64, err error) {
			assert.NoError(t, err)
			ended = gasUsed
		},
	}
	statedb := newTestState(t)
	_, err := ApplyMessage(newTestEVM(forks.Cancun, statedb, vm.Config{Tracer: hooks}), transferMessage(), NewGasPool(1_000_000))
	require.NoError(t, err)
	assert.True(t, started)
	assert.Equal(t, params.TxGas, ended)
}

func TestGasPool(t *testing.T) {
	gp := NewGasPool(100)
	require.NoError(t, gp.SubGas(60))
	err := gp.SubGas(41)
	require.ErrorIs(t, err, ErrGasLimitReached)
	assert.Equal(t, uint64(40), gp.Gas())
	gp.AddGas(10)
	assert.Equal(t, "50", gp.String())
}
