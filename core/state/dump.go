// Copyright 2014 The go-ethereum Authors
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
	"encoding/json"
	"fmt"
	"time"

	"github.com/sunyihoo/go-evm/common"
	"github.com/sunyihoo/go-evm/common/hexutil"
	"github.com/sunyihoo/go-evm/core/types"
	"github.com/sunyihoo/go-evm/crypto"
	"github.com/sunyihoo/go-evm/log"
)

// DumpConfig is a set of options to control what portions of the state will be
// iterated and collected.
type DumpConfig struct {
	SkipCode    bool
	SkipStorage bool
	Start       []byte // first address to include, nil means from the beginning
	Max         uint64 // maximum number of accounts, 0 means unlimited
}

// DumpCollector interface which the state database calls during iteration
type DumpCollector interface {
	// OnRoot is called with the flat state commitment once iteration is done
	OnRoot(common.Hash)
	// OnAccount is called once for each account in the state
	OnAccount(common.Address, DumpAccount)
}

// DumpAccount represents an account in the state.
type DumpAccount struct {
	Balance  string                 `json:"balance"`
	Nonce    uint64                 `json:"nonce"`
	Root     hexutil.Bytes          `json:"root"`
	CodeHash hexutil.Bytes          `json:"codeHash"`
	Code     hexutil.Bytes          `json:"code,omitempty"`
	Storage  map[common.Hash]string `json:"storage,omitempty"`
}

// Dump represents the full dump in a collected format, as one large map.
type Dump struct {
	Root     string                         `json:"root"`
	Accounts map[common.Address]DumpAccount `json:"accounts"`
	// Next can be set to represent that this dump is only partial, and Next
	// is where an iterator should be positioned in order to continue the dump.
	Next []byte `json:"next,omitempty"` // nil if no more accounts
}

// OnRoot implements DumpCollector interface
func (d *Dump) OnRoot(root common.Hash) {
	d.Root = fmt.Sprintf("%x", root)
}

// OnAccount implements DumpCollector interface
func (d *Dump) OnAccount(addr common.Address, account DumpAccount) {
	d.Accounts[addr] = account
}

// DumpToCollector iterates the committed state according to the given options
// and inserts the items into a collector for aggregation or serialization.
// Only state persisted by Commit is visible.
func (s *StateDB) DumpToCollector(c DumpCollector, conf *DumpConfig) (nextKey []byte) {
	if conf == nil {
		conf = new(DumpConfig)
	}
	var (
		missingCode = 0
		accounts    = uint64(0)
		start       = time.Now()
		logged      = time.Now()
		hasher      = crypto.NewKeccakState()
		disk        = s.db.DiskDB()
		it          = disk.NewIterator(accountPrefix, conf.Start)
	)
	defer it.Release()
	log.Info("Dumping state", "start", hexutil.Bytes(conf.Start))

	for it.Next() {
		hasher.Write(it.Key())
		hasher.Write(it.Value())

		if conf.Max > 0 && accounts >= conf.Max {
			if nextKey == nil {
				nextKey = common.CopyBytes(it.Key()[len(accountPrefix):])
			}
			continue
		}
		data, err := types.FullAccount(it.Value())
		if err != nil {
			panic(err)
		}
		var (
			addr    = common.BytesToAddress(it.Key()[len(accountPrefix):])
			account = DumpAccount{
				Balance:  data.Balance.String(),
				Nonce:    data.Nonce,
				Root:     data.Root[:],
				CodeHash: data.CodeHash,
			}
		)
		if !conf.SkipCode {
			code, err := s.db.ContractCode(common.BytesToHash(data.CodeHash))
			if err != nil {
				missingCode++
			}
			account.Code = code
		}
		if !conf.SkipStorage {
			account.Storage = make(map[common.Hash]string)
			prefix := storageAccountPrefix(addr)
			storageIt := disk.NewIterator(prefix, nil)
			for storageIt.Next() {
				key := common.BytesToHash(storageIt.Key()[len(prefix):])
				account.Storage[key] = common.Bytes2Hex(storageIt.Value())
			}
			storageIt.Release()
		}
		c.OnAccount(addr, account)
		accounts++
		if time.Since(logged) > 8*time.Second {
			log.Info("Dumping state in progress", "at", addr, "accounts", accounts, "elapsed", time.Since(start))
			logged = time.Now()
		}
	}
	if missingCode > 0 {
		log.Warn("Dump incomplete due to missing code", "accounts", missingCode)
	}
	var root common.Hash
	hasher.Read(root[:])
	c.OnRoot(root)
	log.Info("State dump done", "accounts", accounts, "elapsed", time.Since(start))

	return nextKey
}

// RawDump returns the committed state as a Dump value.
func (s *StateDB) RawDump(opts *DumpConfig) Dump {
	dump := &Dump{
		Accounts: make(map[common.Address]DumpAccount),
	}
	dump.Next = s.DumpToCollector(dump, opts)
	return *dump
}

// Dump returns a JSON string representing the entire committed state as a
// single json-object
func (s *StateDB) Dump(opts *DumpConfig) []byte {
	dump := s.RawDump(opts)
	json, err := json.MarshalIndent(dump, "", "    ")
	if err != nil {
		log.Error("Error dumping state", "err", err)
	}
	return json
}
