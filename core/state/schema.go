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

package state

import "github.com/sunyihoo/go-evm/common"

// The state database is a flat key-value layout:
//
//	accountPrefix + address              -> slim account encoding
//	storagePrefix + address + slot       -> 32 byte value, absent if zero
//	codePrefix + code hash               -> contract code
var (
	accountPrefix = []byte("a")
	storagePrefix = []byte("s")
	codePrefix    = []byte("c")
)

// accountKey = accountPrefix + address
func accountKey(addr common.Address) []byte {
	return append(append(make([]byte, 0, 1+common.AddressLength), accountPrefix...), addr.Bytes()...)
}

// storageAccountPrefix = storagePrefix + address
func storageAccountPrefix(addr common.Address) []byte {
	return append(append(make([]byte, 0, 1+common.AddressLength+common.HashLength), storagePrefix...), addr.Bytes()...)
}

// storageKey = storagePrefix + address + slot
func storageKey(addr common.Address, slot common.Hash) []byte {
	return append(storageAccountPrefix(addr), slot.Bytes()...)
}

// storageRangeEnd returns the first key after all storage slots of addr.
func storageRangeEnd(addr common.Address) []byte {
	end := storageAccountPrefix(addr)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i]++; end[i] != 0 {
			break
		}
	}
	return end
}

// codeKey = codePrefix + hash
func codeKey(hash common.Hash) []byte {
	return append(append(make([]byte, 0, 1+common.HashLength), codePrefix...), hash.Bytes()...)
}
