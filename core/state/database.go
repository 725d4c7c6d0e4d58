// Copyright 2017 The go-ethereum Authors
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
	"errors"
	"fmt"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/sunyihoo/go-evm/common"
	"github.com/sunyihoo/go-evm/core/types"
	"github.com/sunyihoo/go-evm/crypto"
	"github.com/sunyihoo/go-evm/ethdb"
	"github.com/sunyihoo/go-evm/ethdb/memorydb"
)

// codeCacheSize is the size of the shared contract code cache in bytes.
const codeCacheSize = 64 * 1024 * 1024

// Database wraps access to the flat account, storage and code records of the
// world state. It is safe for concurrent use: many StateDB instances, possibly
// on different goroutines, may read through the same Database.
type Database struct {
	disk      ethdb.KeyValueStore
	codeCache *fastcache.Cache
}

// NewDatabase creates a state database on top of the given key-value store.
func NewDatabase(disk ethdb.KeyValueStore) *Database {
	return &Database{
		disk:      disk,
		codeCache: fastcache.New(codeCacheSize),
	}
}

// NewDatabaseForTesting is similar to NewDatabase, but it initializes the caching
// db by using an ephemeral memory db with default config for testing.
func NewDatabaseForTesting() *Database {
	return NewDatabase(memorydb.New())
}

// DiskDB returns the underlying key-value store.
func (db *Database) DiskDB() ethdb.KeyValueStore {
	return db.disk
}

// Account retrieves the account associated with the address, nil if it does
// not exist.
func (db *Database) Account(addr common.Address) (*types.StateAccount, error) {
	blob, err := db.disk.Get(accountKey(addr))
	if errors.Is(err, ethdb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	acct, err := types.FullAccount(blob)
	if err != nil {
		return nil, fmt.Errorf("account %x: %w", addr, err)
	}
	return acct, nil
}

// Storage retrieves the committed value of the storage slot, zero if the slot
// is not set.
func (db *Database) Storage(addr common.Address, slot common.Hash) (common.Hash, error) {
	blob, err := db.disk.Get(storageKey(addr, slot))
	if errors.Is(err, ethdb.ErrNotFound) {
		return common.Hash{}, nil
	}
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(blob), nil
}

// ContractCode retrieves a particular contract's code.
func (db *Database) ContractCode(codeHash common.Hash) ([]byte, error) {
	if codeHash == types.EmptyCodeHash {
		return nil, nil
	}
	if code := db.codeCache.Get(nil, codeHash.Bytes()); len(code) > 0 {
		return code, nil
	}
	code, err := db.disk.Get(codeKey(codeHash))
	if err != nil {
		return nil, fmt.Errorf("code %x: %w", codeHash, err)
	}
	db.codeCache.Set(codeHash.Bytes(), code)
	return code, nil
}

// ContractCodeSize retrieves a particular contracts code's size.
func (db *Database) ContractCodeSize(codeHash common.Hash) (int, error) {
	code, err := db.ContractCode(codeHash)
	return len(code), err
}

// storageRoot computes the flat storage commitment of the account:
// keccak256 over slot||value of every set slot in key order, or EmptyRootHash
// if the account has no storage.
func (db *Database) storageRoot(addr common.Address) (common.Hash, error) {
	it := db.disk.NewIterator(storageAccountPrefix(addr), nil)
	defer it.Release()

	var (
		hasher = crypto.NewKeccakState()
		prefix = len(storageAccountPrefix(addr))
		empty  = true
	)
	for it.Next() {
		hasher.Write(it.Key()[prefix:])
		hasher.Write(common.LeftPadBytes(it.Value(), common.HashLength))
		empty = false
	}
	if err := it.Error(); err != nil {
		return common.Hash{}, err
	}
	if empty {
		return types.EmptyRootHash, nil
	}
	var root common.Hash
	hasher.Read(root[:])
	return root, nil
}

// deleteStorage wipes every committed storage slot of the account.
func (db *Database) deleteStorage(addr common.Address) error {
	return db.disk.DeleteRange(storageAccountPrefix(addr), storageRangeEnd(addr))
}
