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
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"github.com/sunyihoo/go-evm/common"
)

func TestSlimAccountEmpty(t *testing.T) {
	data := SlimAccountBytes(*NewEmptyStateAccount())
	require.Len(t, data, 10)

	acct, err := FullAccount(data)
	require.NoError(t, err)
	require.Zero(t, acct.Nonce)
	require.True(t, acct.Balance.IsZero())
	require.Equal(t, EmptyRootHash, acct.Root)
	require.Equal(t, EmptyCodeHash.Bytes(), acct.CodeHash)
}

func TestSlimAccountRoundtrip(t *testing.T) {
	want := StateAccount{
		Nonce:    7,
		Balance:  uint256.NewInt(1_000_000_007),
		Root:     common.HexToHash("0x01"),
		CodeHash: common.HexToHash("0xdeadbeef").Bytes(),
	}
	got, err := FullAccount(SlimAccountBytes(want))
	require.NoError(t, err)
	require.Equal(t, want.Nonce, got.Nonce)
	require.Equal(t, want.Balance, got.Balance)
	require.Equal(t, want.Root, got.Root)
	require.Equal(t, want.CodeHash, got.CodeHash)
}

func TestFullAccountMalformed(t *testing.T) {
	for _, data := range [][]byte{
		nil,
		{0, 0, 0, 0, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 0, 0, 0, 0, 5, 1},
		{slimHasRoot, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 2},
		{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0xff},
	} {
		_, err := FullAccount(data)
		require.Error(t, err, "input %x", data)
	}
}

func TestStateAccountCopy(t *testing.T) {
	a := NewEmptyStateAccount()
	a.Balance.SetUint64(5)
	b := a.Copy()
	b.Balance.SetUint64(6)
	b.CodeHash[0] = 0
	require.Equal(t, uint64(5), a.Balance.Uint64())
	require.Equal(t, EmptyCodeHash.Bytes(), a.CodeHash)
}
