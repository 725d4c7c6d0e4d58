// Copyright 2024 The go-ethereum Authors
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

package bls12381

import (
	"math/big"
	"testing"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generators() (g1, g2 []byte) {
	_, _, a, b := bls12381.Generators()
	return encodeG1(&a), encodeG2(&b)
}

func scalar(n int64) []byte {
	return new(big.Int).SetInt64(n).FillBytes(make([]byte, ScalarSize))
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestG1AddAndMultiExp(t *testing.T) {
	g1, _ := generators()
	_, _, gen, _ := bls12381.Generators()
	double := encodeG1(new(bls12381.G1Affine).ScalarMultiplication(&gen, big.NewInt(2)))

	sum, err := G1Add(concat(g1, g1))
	require.NoError(t, err)
	assert.Equal(t, double, sum)

	// Infinity is the neutral element.
	same, err := G1Add(concat(g1, make([]byte, G1Size)))
	require.NoError(t, err)
	assert.Equal(t, g1, same)

	prod, err := G1MultiExp(concat(g1, scalar(2)))
	require.NoError(t, err)
	assert.Equal(t, double, prod)

	// 1*G + 1*G == 2*G
	prod, err = G1MultiExp(concat(g1, scalar(1), g1, scalar(1)))
	require.NoError(t, err)
	assert.Equal(t, double, prod)

	zero, err := G1MultiExp(concat(g1, scalar(0)))
	require.NoError(t, err)
	assert.Equal(t, make([]byte, G1Size), zero)
}

func TestG2AddAndMultiExp(t *testing.T) {
	_, g2 := generators()
	_, _, _, gen := bls12381.Generators()
	double := encodeG2(new(bls12381.G2Affine).ScalarMultiplication(&gen, big.NewInt(2)))

	sum, err := G2Add(concat(g2, g2))
	require.NoError(t, err)
	assert.Equal(t, double, sum)

	prod, err := G2MultiExp(concat(g2, scalar(2)))
	require.NoError(t, err)
	assert.Equal(t, double, prod)
}

func TestPairingCheck(t *testing.T) {
	g1, g2 := generators()
	_, _, gen, _ := bls12381.Generators()
	neg := encodeG1(new(bls12381.G1Affine).Neg(&gen))

	// e(G1, G2) * e(-G1, G2) == 1
	ok, err := PairingCheck(concat(g1, g2, neg, g2))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = PairingCheck(concat(g1, g2))
	require.NoError(t, err)
	assert.False(t, ok)

	// A pair with infinity contributes the identity.
	ok, err = PairingCheck(make([]byte, PairingSize))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMapToCurve(t *testing.T) {
	out, err := MapFpToG1(make([]byte, FieldSize))
	require.NoError(t, err)
	p, err := decodeG1(out, true)
	require.NoError(t, err)
	assert.False(t, p.IsInfinity())

	out, err = MapFp2ToG2(make([]byte, 2*FieldSize))
	require.NoError(t, err)
	_, err = decodeG2(out, true)
	require.NoError(t, err)
}

func TestDecodeErrors(t *testing.T) {
	g1, _ := generators()

	_, err := G1Add(g1)
	require.ErrorIs(t, err, ErrInvalidLength)
	_, err = G1MultiExp(nil)
	require.ErrorIs(t, err, ErrInvalidLength)
	_, err = PairingCheck(make([]byte, PairingSize+1))
	require.ErrorIs(t, err, ErrInvalidLength)

	padded := concat(g1, g1)
	padded[0] = 1
	_, err = G1Add(padded)
	require.ErrorIs(t, err, ErrInvalidPadding)

	// The field modulus itself is not a reduced element.
	modulus := make([]byte, FieldSize)
	fp.Modulus().FillBytes(modulus)
	_, err = MapFpToG1(modulus)
	require.ErrorIs(t, err, ErrInvalidField)

	offCurve := concat(g1, g1)
	offCurve[G1Size-1] ^= 1
	_, err = G1Add(offCurve)
	require.ErrorIs(t, err, ErrNotOnCurve)
}
