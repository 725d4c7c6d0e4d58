// Copyright 2020 The go-ethereum Authors
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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunyihoo/go-evm/common"
)

func TestAccessListAddAndDelete(t *testing.T) {
	al := newAccessList()
	addrChange, slotChange := al.AddSlot(addrA, slot1)
	assert.True(t, addrChange)
	assert.True(t, slotChange)

	addrChange, slotChange = al.AddSlot(addrA, slot1)
	assert.False(t, addrChange)
	assert.False(t, slotChange)
	assert.False(t, al.AddAddress(addrA))

	// Deleting an address which still has slots is a journal ordering bug.
	assert.Panics(t, func() { al.DeleteAddress(addrA) })

	al.DeleteSlot(addrA, slot1)
	al.DeleteAddress(addrA)
	assert.False(t, al.ContainsAddress(addrA))
	assert.Panics(t, func() { al.DeleteSlot(addrA, slot1) })
}

func TestAccessListCopy(t *testing.T) {
	al := newAccessList()
	al.AddSlot(addrA, slot1)
	al.AddAddress(addrB)

	cpy := al.Copy()
	require.True(t, al.Equal(cpy))

	cpy.AddSlot(addrB, slot2)
	assert.False(t, al.Equal(cpy))
	_, ok := al.Contains(addrB, slot2)
	assert.False(t, ok)
	assert.Equal(t, []common.Address{addrA, addrB}, al.Addresses())
}

func TestTransientStorage(t *testing.T) {
	ts := newTransientStorage()
	ts.Set(addrA, slot1, common.HexToHash("0x01"))
	cpy := ts.Copy()
	ts.Set(addrA, slot1, common.Hash{})

	assert.Equal(t, common.Hash{}, ts.Get(addrA, slot1))
	assert.Empty(t, ts)
	assert.Equal(t, common.HexToHash("0x01"), cpy.Get(addrA, slot1))
	assert.Contains(t, cpy.PrettyPrint(), "0x000000000000000000000000000000000000aaaa")
}

func TestJournalDirties(t *testing.T) {
	s := New(NewDatabaseForTesting())
	snap := s.Snapshot()
	s.SetNonce(addrA, 1)
	s.SetNonce(addrA, 2)
	// object creation plus two nonce changes
	assert.Equal(t, 3, s.journal.dirties[addrA])

	s.RevertToSnapshot(snap)
	assert.NotContains(t, s.journal.dirties, addrA)
	assert.Zero(t, s.journal.length())
}

func TestJournalRipemdTouch(t *testing.T) {
	s := New(NewDatabaseForTesting())
	snap := s.Snapshot()
	s.journal.touchChange(ripemd)
	s.RevertToSnapshot(snap)
	assert.Contains(t, s.journal.dirties, ripemd)
}
