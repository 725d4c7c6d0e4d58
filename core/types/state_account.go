// Copyright 2021 The go-ethereum Authors
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

package types

import (
	"bytes"
	"encoding/binary"
	"errors"

	"github.com/holiman/uint256"
	"github.com/sunyihoo/go-evm/common"
)

// StateAccount is the consensus representation of accounts.
// These objects are stored in the account table of the state database.
type StateAccount struct {
	Nonce    uint64
	Balance  *uint256.Int
	Root     common.Hash // storage commitment of the account, EmptyRootHash if none
	CodeHash []byte
}

// NewEmptyStateAccount constructs an empty state account.
func NewEmptyStateAccount() *StateAccount {
	return &StateAccount{
		Balance:  new(uint256.Int),
		Root:     EmptyRootHash,
		CodeHash: EmptyCodeHash.Bytes(),
	}
}

// Copy returns a deep-copied state account object.
func (acct *StateAccount) Copy() *StateAccount {
	var balance *uint256.Int
	if acct.Balance != nil {
		balance = new(uint256.Int).Set(acct.Balance)
	}
	return &StateAccount{
		Nonce:    acct.Nonce,
		Balance:  balance,
		Root:     acct.Root,
		CodeHash: common.CopyBytes(acct.CodeHash),
	}
}

const (
	slimHasRoot     = 1 << 0
	slimHasCodeHash = 1 << 1
)

var errShortAccount = errors.New("account record too short")

// SlimAccountBytes encodes the state account in the slim format, where the
// empty root and the empty code hash are omitted:
//
//	flags(1) | nonce(8) | len(1) | balance(len) | [root(32)] | [codehash(32)]
func SlimAccountBytes(account StateAccount) []byte {
	var (
		flags   byte
		balance []byte
	)
	if account.Balance != nil && !account.Balance.IsZero() {
		balance = account.Balance.Bytes()
	}
	if account.Root != EmptyRootHash && account.Root != (common.Hash{}) {
		flags |= slimHasRoot
	}
	if len(account.CodeHash) != 0 && !bytes.Equal(account.CodeHash, EmptyCodeHash[:]) {
		flags |= slimHasCodeHash
	}
	buf := make([]byte, 0, 10+len(balance)+2*common.HashLength)
	buf = append(buf, flags)
	buf = binary.BigEndian.AppendUint64(buf, account.Nonce)
	buf = append(buf, byte(len(balance)))
	buf = append(buf, balance...)
	if flags&slimHasRoot != 0 {
		buf = append(buf, account.Root[:]...)
	}
	if flags&slimHasCodeHash != 0 {
		buf = append(buf, common.BytesToHash(account.CodeHash).Bytes()...)
	}
	return buf
}

// FullAccount decodes the data on the slim format and returns the consensus
// format account.
func FullAccount(data []byte) (*StateAccount, error) {
	if len(data) < 10 {
		return nil, errShortAccount
	}
	var (
		flags  = data[0]
		nonce  = binary.BigEndian.Uint64(data[1:9])
		balLen = int(data[9])
		rest   = data[10:]
	)
	if balLen > 32 || len(rest) < balLen {
		return nil, errShortAccount
	}
	account := &StateAccount{
		Nonce:    nonce,
		Balance:  new(uint256.Int).SetBytes(rest[:balLen]),
		Root:     EmptyRootHash,
		CodeHash: EmptyCodeHash.Bytes(),
	}
	rest = rest[balLen:]
	if flags&slimHasRoot != 0 {
		if len(rest) < common.HashLength {
			return nil, errShortAccount
		}
		account.Root = common.BytesToHash(rest[:common.HashLength])
		rest = rest[common.HashLength:]
	}
	if flags&slimHasCodeHash != 0 {
		if len(rest) < common.HashLength {
			return nil, errShortAccount
		}
		account.CodeHash = common.CopyBytes(rest[:common.HashLength])
		rest = rest[common.HashLength:]
	}
	if len(rest) != 0 {
		return nil, errors.New("trailing bytes in account record")
	}
	return account, nil
}
