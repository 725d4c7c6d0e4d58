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

package crypto

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sunyihoo/go-evm/common"
	"github.com/sunyihoo/go-evm/common/hexutil"
)

var (
	testAddrHex = "970e8128ab834e8eac17ab8e3812f010678cf791"
	testPrivHex = "289c2857d4598e37fb9647507e47a309d6133539bf21a8b9cb6df88fd5232032"
)

func TestKeccak256Hash(t *testing.T) {
	require.Equal(t, "0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470", Keccak256Hash().Hex())
	require.Equal(t, common.FromHex("41b1a0649752af1b28b3dc29a1556eee781e4a4c3a1f7f53f90fa834de098c4d"), Keccak256([]byte("foo")))
	require.Equal(t, Keccak256Hash([]byte("fo"), []byte("o")), HashData(NewKeccakState(), []byte("foo")))
}

func TestNewContractAddress(t *testing.T) {
	key, err := HexToECDSA(testPrivHex)
	require.NoError(t, err)
	addr := common.HexToAddress(testAddrHex)
	require.Equal(t, addr, PubkeyToAddress(key.PublicKey))

	for nonce, want := range map[uint64]string{
		0:      "333c3310824b7c685133f2bedb2ca4b8b4df633d",
		1:      "8bda78331c916a08481428e4b07c96d3e916d165",
		2:      "c9ddedf451bc62ce88bf9292afb13df35b670699",
		0x7f:   "c0abf4f4f9a9cd6a2dfdcac294838a0c75e7aec8",
		0x80:   "546f3373d302355243c77628cfed00a817810c5d",
		0xffff: "227747c1e529b8fe358fdf1c733006978d81d1ba",
	} {
		require.Equal(t, common.HexToAddress(want), CreateAddress(addr, nonce), "nonce %d", nonce)
	}
}

func TestEcrecoverKnownSignature(t *testing.T) {
	hash := Keccak256([]byte("go-evm ecrecover"))
	require.Equal(t, "0xcc4f00a7219da37d4b713a9a30cc16b93578d3728f7207cdaa1cb07b8dabebed", hexutil.Encode(hash))

	sig := append(common.FromHex("8c6d087890e413e671409a94b68a9f8c92af277e63c808415860cbcc97b53221"),
		common.FromHex("578dc77004c17b97da08b528fc4f35a732559a67b3b66b07a0afdfe3bc5518fd")...)
	sig = append(sig, 1)

	pub, err := Ecrecover(hash, sig)
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress(testAddrHex), common.BytesToAddress(Keccak256(pub[1:])[12:]))

	// Flipping the recovery id yields a different, still valid, key.
	sig[RecoveryIDOffset] = 0
	pub, err = Ecrecover(hash, sig)
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress("6f14b93891fa6616ec8408594cd1de71029f30c3"), common.BytesToAddress(Keccak256(pub[1:])[12:]))
}

func TestSignRoundTrip(t *testing.T) {
	key, err := HexToECDSA(testPrivHex)
	require.NoError(t, err)
	msg := Keccak256([]byte("foo"))

	sig, err := Sign(msg, key)
	require.NoError(t, err)
	require.Len(t, sig, SignatureLength)

	recovered, err := SigToPub(msg, sig)
	require.NoError(t, err)
	require.Equal(t, PubkeyToAddress(key.PublicKey), PubkeyToAddress(*recovered))
	require.True(t, VerifySignature(FromECDSAPub(&key.PublicKey), msg, sig[:64]))

	_, err = Ecrecover(msg, sig[:64])
	require.Error(t, err)
}

func TestValidateSignatureValues(t *testing.T) {
	one, zero := big.NewInt(1), big.NewInt(0)
	minusOne := new(big.Int).Sub(secp256k1N, one)
	check := func(expected bool, v byte, r, s *big.Int) {
		require.Equal(t, expected, ValidateSignatureValues(v, r, s, false), "v=%d r=%v s=%v", v, r, s)
	}
	check(true, 0, one, one)
	check(true, 1, one, one)
	check(false, 2, one, one)
	check(false, 0, zero, one)
	check(false, 0, one, zero)
	check(true, 0, minusOne, minusOne)
	check(false, 0, secp256k1N, one)
	check(false, 0, one, secp256k1N)
	require.False(t, ValidateSignatureValues(0, one, minusOne, true), "homestead accepts high s")
}
