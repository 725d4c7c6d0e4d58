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
	"fmt"
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sunyihoo/go-evm/common"
)

// accessList tracks the addresses and storage slots warmed during a
// transaction. A slot can only be present if its address is present too.
type accessList struct {
	addresses mapset.Set[common.Address]
	slots     map[common.Address]mapset.Set[common.Hash]
}

func newAccessList() *accessList {
	return &accessList{
		addresses: mapset.NewThreadUnsafeSet[common.Address](),
		slots:     make(map[common.Address]mapset.Set[common.Hash]),
	}
}

// ContainsAddress returns true if the address is in the access list.
func (al *accessList) ContainsAddress(address common.Address) bool {
	return al.addresses.Contains(address)
}

// Contains checks if a slot within an account is present in the access list,
// returning separate flags for the presence of the account and the slot
// respectively.
func (al *accessList) Contains(address common.Address, slot common.Hash) (addressPresent bool, slotPresent bool) {
	if !al.addresses.Contains(address) {
		return false, false
	}
	slots, ok := al.slots[address]
	return true, ok && slots.Contains(slot)
}

// AddAddress adds an address to the access list, and returns 'true' if the
// operation caused a change (addr was not previously in the list).
func (al *accessList) AddAddress(address common.Address) bool {
	return al.addresses.Add(address)
}

// AddSlot adds the specified (addr, slot) combo to the access list.
// Return values are:
// - address added
// - slot added
// For any 'true' value returned, a corresponding journal entry must be made.
func (al *accessList) AddSlot(address common.Address, slot common.Hash) (addrChange bool, slotChange bool) {
	addrChange = al.addresses.Add(address)
	slots, ok := al.slots[address]
	if !ok {
		slots = mapset.NewThreadUnsafeSet[common.Hash]()
		al.slots[address] = slots
	}
	return addrChange, slots.Add(slot)
}

// DeleteSlot removes an (address, slot)-tuple from the access list.
// This operation needs to be performed in the same order as the addition happened.
// This method is meant to be used by the journal, which maintains ordering of
// operations.
func (al *accessList) DeleteSlot(address common.Address, slot common.Hash) {
	slots, ok := al.slots[address]
	if !ok || !slots.Contains(slot) {
		panic("reverting slot change, slot not present in list")
	}
	slots.Remove(slot)
	if slots.Cardinality() == 0 {
		delete(al.slots, address)
	}
}

// DeleteAddress removes an address from the access list. This operation
// needs to be performed in the same order as the addition happened.
// This method is meant to be used by the journal, which maintains ordering of
// operations.
func (al *accessList) DeleteAddress(address common.Address) {
	if _, ok := al.slots[address]; ok {
		panic("reverting address change, address has slots")
	}
	al.addresses.Remove(address)
}

// Copy creates an independent copy of an accessList.
func (al *accessList) Copy() *accessList {
	cp := &accessList{
		addresses: al.addresses.Clone(),
		slots:     make(map[common.Address]mapset.Set[common.Hash], len(al.slots)),
	}
	for addr, slots := range al.slots {
		cp.slots[addr] = slots.Clone()
	}
	return cp
}

// Equal returns true if the two access lists are identical
func (al *accessList) Equal(other *accessList) bool {
	if !al.addresses.Equal(other.addresses) || len(al.slots) != len(other.slots) {
		return false
	}
	for addr, slots := range al.slots {
		theirs, ok := other.slots[addr]
		if !ok || !slots.Equal(theirs) {
			return false
		}
	}
	return true
}

// Addresses returns the warm addresses in byte order.
func (al *accessList) Addresses() []common.Address {
	addrs := al.addresses.ToSlice()
	slices.SortFunc(addrs, common.Address.Cmp)
	return addrs
}

// PrettyPrint prints the contents of the access list in a human-readable form
func (al *accessList) PrettyPrint() string {
	out := new(strings.Builder)
	for _, addr := range al.Addresses() {
		fmt.Fprintf(out, "%#x : (%d slots)\n", addr, al.slotCount(addr))
		if slots, ok := al.slots[addr]; ok {
			keys := slots.ToSlice()
			slices.SortFunc(keys, common.Hash.Cmp)
			for _, key := range keys {
				fmt.Fprintf(out, "    %#x\n", key)
			}
		}
	}
	return out.String()
}

func (al *accessList) slotCount(addr common.Address) int {
	if slots, ok := al.slots[addr]; ok {
		return slots.Cardinality()
	}
	return 0
}
