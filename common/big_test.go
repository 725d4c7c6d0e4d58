// Copyright 2015 The go-ethereum Authors
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

package common

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddressConversion(t *testing.T) {
	a := HexToAddress("0x00000000000000000000000000000000deadbeef")
	require.Equal(t, "0x00000000000000000000000000000000deadbeef", a.Hex())
	require.Equal(t, big.NewInt(0xdeadbeef), a.Big())
	require.Equal(t, uint64(0xdeadbeef), a.Word().Uint64())

	// Longer input is cropped from the left.
	long := append([]byte{0xff, 0xff}, a.Bytes()...)
	require.Equal(t, a, BytesToAddress(long))
	require.True(t, IsHexAddress(a.Hex()))
	require.False(t, IsHexAddress("0xdeadbeef"))
}

func TestHashText(t *testing.T) {
	h := BytesToHash([]byte{1, 2, 3})
	enc, err := h.MarshalText()
	require.NoError(t, err)

	var dec Hash
	require.NoError(t, dec.UnmarshalText(enc))
	require.Equal(t, h, dec)
	require.Equal(t, 0, h.Cmp(dec))
	require.Equal(t, "010203", Bytes2Hex(TrimLeftZeroes(h[:])))
}

func TestPadding(t *testing.T) {
	require.Equal(t, []byte{0, 0, 1}, LeftPadBytes([]byte{1}, 3))
	require.Equal(t, []byte{1, 0, 0}, RightPadBytes([]byte{1}, 3))
	require.Equal(t, []byte{1, 2}, RightPadBytes([]byte{1, 2}, 1))
	require.Nil(t, CopyBytes(nil))
	require.Equal(t, []byte{0xab, 0xcd}, FromHex("0xabcd"))
	require.Equal(t, []byte{0x0a}, FromHex("a"))
}
