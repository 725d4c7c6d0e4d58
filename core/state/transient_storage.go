// Copyright 2022 The go-ethereum Authors
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

	"github.com/sunyihoo/go-evm/common"
)

// transientStorage is a representation of EIP-1153 "Transient Storage".
// Its contents are discarded when the transaction ends.
type transientStorage map[common.Address]Storage

// newTransientStorage creates a new instance of a transientStorage.
func newTransientStorage() transientStorage {
	return make(transientStorage)
}

// Set sets the transient-storage `value` for `key` at the given `addr`.
func (t transientStorage) Set(addr common.Address, key, value common.Hash) {
	if value == (common.Hash{}) { // this is a 'delete'
		if slots, ok := t[addr]; ok {
			delete(slots, key)
			if len(slots) == 0 {
				delete(t, addr)
			}
		}
		return
	}
	slots, ok := t[addr]
	if !ok {
		slots = make(Storage)
		t[addr] = slots
	}
	slots[key] = value
}

// Get gets the transient storage for `key` at the given `addr`.
func (t transientStorage) Get(addr common.Address, key common.Hash) common.Hash {
	return t[addr][key]
}

// Copy does a deep copy of the transientStorage
func (t transientStorage) Copy() transientStorage {
	storage := make(transientStorage, len(t))
	for addr, slots := range t {
		storage[addr] = slots.Copy()
	}
	return storage
}

// PrettyPrint prints the contents of the transient storage in a human-readable form
func (t transientStorage) PrettyPrint() string {
	out := new(strings.Builder)
	addrs := make([]common.Address, 0, len(t))
	for addr := range t {
		addrs = append(addrs, addr)
	}
	slices.SortFunc(addrs, common.Address.Cmp)

	for _, addr := range addrs {
		fmt.Fprintf(out, "%#x:\n", addr)
		for _, key := range t[addr].sortedKeys() {
			fmt.Fprintf(out, "  %X : %X\n", key, t[addr][key])
		}
	}
	return out.String()
}
