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

package state

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunyihoo/go-evm/common"
	"github.com/sunyihoo/go-evm/core/tracing"
	"github.com/sunyihoo/go-evm/core/types"
	"github.com/sunyihoo/go-evm/crypto"
	"github.com/sunyihoo/go-evm/params"
	"github.com/sunyihoo/go-evm/params/forks"
)

var (
	addrA = common.HexToAddress("0xaaaa")
	addrB = common.HexToAddress("0xbbbb")
	slot1 = common.HexToHash("0x01")
	slot2 = common.HexToHash("0x02")
)

func TestNestedSnapshots(t *testing.T) {
	s := New(NewDatabaseForTesting())
	s.AddBalance(addrA, uint256.NewInt(100), tracing.BalanceChangeUnspecified)

	outer := s.Snapshot()
	s.SetState(addrA, slot1, common.HexToHash("0x11"))
	s.AddRefund(10)

	middle := s.Snapshot()
	s.SetNonce(addrA, 5)
	s.AddLog(&types.Log{Address: addrA})

	inner := s.Snapshot()
	s.SetCode(addrB, []byte{0x60, 0x00})

	s.RevertToSnapshot(inner)
	assert.Empty(t, s.GetCode(addrB))
	assert.Equal(t, uint64(5), s.GetNonce(addrA))

	s.RevertToSnapshot(middle)
	assert.Equal(t, uint64(0), s.GetNonce(addrA))
	assert.Empty(t, s.TxLogs())
	assert.Equal(t, common.HexToHash("0x11"), s.GetState(addrA, slot1))
	assert.Equal(t, uint64(10), s.GetRefund())

	s.RevertToSnapshot(outer)
	assert.Equal(t, common.Hash{}, s.GetState(addrA, slot1))
	assert.Equal(t, uint64(0), s.GetRefund())
	assert.Equal(t, uint64(100), s.GetBalance(addrA).Uint64())
}

func TestRevertOuterInvalidatesInner(t *testing.T) {
	s := New(NewDatabaseForTesting())
	outer := s.Snapshot()
	inner := s.Snapshot()
	s.RevertToSnapshot(outer)

	assert.Panics(t, func() { s.RevertToSnapshot(inner) })
	assert.Panics(t, func() { s.RevertToSnapshot(outer) })
}

func TestRevertUnknownSnapshotPanics(t *testing.T) {
	s := New(NewDatabaseForTesting())
	assert.Panics(t, func() { s.RevertToSnapshot(42) })
}

func TestCommitAndReload(t *testing.T) {
	db := NewDatabaseForTesting()
	s := New(db)
	code := []byte{0x60, 0x01, 0x60, 0x00, 0x55}

	s.AddBalance(addrA, uint256.NewInt(42), tracing.BalanceChangeUnspecified)
	s.SetNonce(addrA, 3)
	s.SetCode(addrA, code)
	s.SetState(addrA, slot1, common.HexToHash("0x1234"))
	s.SetState(addrA, slot2, common.HexToHash("0x01"))
	require.NoError(t, s.Commit(true))

	fresh := New(db)
	assert.Equal(t, uint64(42), fresh.GetBalance(addrA).Uint64())
	assert.Equal(t, uint64(3), fresh.GetNonce(addrA))
	assert.Equal(t, code, fresh.GetCode(addrA))
	assert.Equal(t, crypto.Keccak256Hash(code), fresh.GetCodeHash(addrA))
	assert.Equal(t, common.HexToHash("0x1234"), fresh.GetCommittedState(addrA, slot1))
	assert.NotEqual(t, types.EmptyRootHash, fresh.GetStorageRoot(addrA))

	// Clearing every slot restores the empty storage commitment.
	fresh.SetState(addrA, slot1, common.Hash{})
	fresh.SetState(addrA, slot2, common.Hash{})
	require.NoError(t, fresh.Commit(true))
	assert.Equal(t, types.EmptyRootHash, New(db).GetStorageRoot(addrA))
}

func TestCommitDeletesEmptyAndDestructed(t *testing.T) {
	db := NewDatabaseForTesting()
	s := New(db)
	s.AddBalance(addrA, uint256.NewInt(1), tracing.BalanceChangeUnspecified)
	s.SetState(addrA, slot1, common.HexToHash("0x01"))
	s.AddBalance(addrB, uint256.NewInt(1), tracing.BalanceChangeUnspecified)
	require.NoError(t, s.Commit(true))

	s = New(db)
	s.SelfDestruct(addrA)
	s.SubBalance(addrB, uint256.NewInt(1), tracing.BalanceChangeUnspecified)
	require.NoError(t, s.Commit(true))

	s = New(db)
	assert.False(t, s.Exist(addrA))
	assert.False(t, s.Exist(addrB))

	// A resurrected account must not see its old storage.
	s.AddBalance(addrA, uint256.NewInt(1), tracing.BalanceChangeUnspecified)
	assert.Equal(t, common.Hash{}, s.GetState(addrA, slot1))
}

func TestSelfDestruct6780(t *testing.T) {
	s := New(NewDatabaseForTesting())
	s.AddBalance(addrA, uint256.NewInt(7), tracing.BalanceChangeUnspecified)
	s.Finalise(true)

	_, destructed := s.SelfDestruct6780(addrA)
	assert.False(t, destructed, "pre-existing account must survive")

	s.CreateAccount(addrB)
	s.CreateContract(addrB)
	_, destructed = s.SelfDestruct6780(addrB)
	assert.True(t, destructed)
	assert.True(t, s.HasSelfDestructed(addrB))
}

func TestAccessListJournal(t *testing.T) {
	s := New(NewDatabaseForTesting())
	s.Prepare(params.RulesForFork(forks.Cancun), addrA, common.Address{}, nil, nil, nil)
	assert.True(t, s.AddressInAccessList(addrA))

	snap := s.Snapshot()
	s.AddSlotToAccessList(addrB, slot1)
	addrOk, slotOk := s.SlotInAccessList(addrB, slot1)
	assert.True(t, addrOk)
	assert.True(t, slotOk)

	s.RevertToSnapshot(snap)
	addrOk, slotOk = s.SlotInAccessList(addrB, slot1)
	assert.False(t, addrOk)
	assert.False(t, slotOk)
	assert.True(t, s.AddressInAccessList(addrA))
}

func TestTransientStorageRevert(t *testing.T) {
	s := New(NewDatabaseForTesting())
	s.SetTransientState(addrA, slot1, common.HexToHash("0x05"))
	snap := s.Snapshot()
	s.SetTransientState(addrA, slot1, common.HexToHash("0x06"))
	s.RevertToSnapshot(snap)
	assert.Equal(t, common.HexToHash("0x05"), s.GetTransientState(addrA, slot1))

	s.Prepare(params.RulesForFork(forks.Cancun), addrA, common.Address{}, nil, nil, nil)
	assert.Equal(t, common.Hash{}, s.GetTransientState(addrA, slot1))
}

func TestTouchedAddresses(t *testing.T) {
	s := New(NewDatabaseForTesting())
	s.AddAddressToAccessList(addrB)
	s.AddBalance(addrA, uint256.NewInt(1), tracing.BalanceChangeUnspecified)

	touched := s.TouchedAddresses()
	assert.True(t, touched.Contains(addrA))
	assert.True(t, touched.Contains(addrB))

	s.Finalise(true)
	assert.False(t, s.TouchedAddresses().Contains(addrA))
}

func TestCopyIsIndependent(t *testing.T) {
	s := New(NewDatabaseForTesting())
	s.AddBalance(addrA, uint256.NewInt(10), tracing.BalanceChangeUnspecified)
	s.SetState(addrA, slot1, common.HexToHash("0x01"))

	cpy := s.Copy()
	cpy.AddBalance(addrA, uint256.NewInt(5), tracing.BalanceChangeUnspecified)
	cpy.SetState(addrA, slot1, common.HexToHash("0x02"))

	assert.Equal(t, uint64(10), s.GetBalance(addrA).Uint64())
	assert.Equal(t, common.HexToHash("0x01"), s.GetState(addrA, slot1))
	assert.Equal(t, uint64(15), cpy.GetBalance(addrA).Uint64())
	assert.Equal(t, common.HexToHash("0x02"), cpy.GetState(addrA, slot1))
}

func TestRefundUnderflowPanics(t *testing.T) {
	s := New(NewDatabaseForTesting())
	s.AddRefund(1)
	assert.Panics(t, func() { s.SubRefund(2) })
}

func TestHookedState(t *testing.T) {
	var (
		balances []*big.Int
		nonces   [][2]uint64
		storage  []common.Hash
		logs     int
	)
	hooks := &tracing.Hooks{
		OnBalanceChange: func(addr common.Address, prev, new *big.Int, reason tracing.BalanceChangeReason) {
			balances = append(balances, new)
		},
		OnNonceChange: func(addr common.Address, prev, new uint64) {
			nonces = append(nonces, [2]uint64{prev, new})
		},
		OnStorageChange: func(addr common.Address, slot common.Hash, prev, new common.Hash) {
			storage = append(storage, new)
		},
		OnLog: func(*types.Log) { logs++ },
	}
	s := NewHookedState(New(NewDatabaseForTesting()), hooks)
	s.AddBalance(addrA, uint256.NewInt(3), tracing.BalanceChangeTransfer)
	s.SubBalance(addrA, uint256.NewInt(1), tracing.BalanceChangeTransfer)
	s.SetNonce(addrA, 4)
	s.SetState(addrA, slot1, common.HexToHash("0x09"))
	s.SetState(addrA, slot1, common.HexToHash("0x09"))
	s.AddLog(&types.Log{Address: addrA})

	require.Len(t, balances, 2)
	assert.Equal(t, int64(3), balances[0].Int64())
	assert.Equal(t, int64(2), balances[1].Int64())
	assert.Equal(t, [][2]uint64{{0, 4}}, nonces)
	assert.Equal(t, []common.Hash{common.HexToHash("0x09")}, storage)
	assert.Equal(t, 1, logs)
}

func TestDump(t *testing.T) {
	db := NewDatabaseForTesting()
	s := New(db)
	s.AddBalance(addrA, uint256.NewInt(1), tracing.BalanceChangeUnspecified)
	s.SetState(addrA, slot1, common.HexToHash("0xff"))
	s.AddBalance(addrB, uint256.NewInt(2), tracing.BalanceChangeUnspecified)
	require.NoError(t, s.Commit(false))

	dump := New(db).RawDump(nil)
	require.Len(t, dump.Accounts, 2)
	assert.Equal(t, "1", dump.Accounts[addrA].Balance)
	assert.Equal(t, "ff", dump.Accounts[addrA].Storage[slot1])
	assert.NotEmpty(t, dump.Root)

	partial := New(db).RawDump(&DumpConfig{Max: 1, SkipStorage: true})
	assert.Len(t, partial.Accounts, 1)
	assert.Equal(t, addrB.Bytes(), partial.Next)
}
