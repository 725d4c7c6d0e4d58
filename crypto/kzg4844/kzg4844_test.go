// Copyright 2023 The go-ethereum Authors
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

package kzg4844

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sunyihoo/go-evm/common"
)

// The commitment to the zero polynomial is the compressed point at infinity,
// and so is its proof at any evaluation point.
func zeroPolynomialInput(point byte) []byte {
	infinity := make([]byte, 48)
	infinity[0] = 0xc0

	input := make([]byte, 0, PointEvaluationInputLength)
	input = append(input, common.FromHex("010657f37554c781402a22917dee2f75def7ab966d7b770905398eba3c444014")...)
	x := make([]byte, 32)
	x[31] = point
	input = append(input, x...)
	input = append(input, make([]byte, 32)...) // claim
	input = append(input, infinity...)
	input = append(input, infinity...)
	return input
}

func TestVersionedHash(t *testing.T) {
	var c Commitment
	c[0] = 0xc0
	vh := CalcBlobHashV1(sha256.New(), &c)
	require.True(t, IsValidVersionedHash(vh[:]))
	require.Equal(t, common.FromHex("010657f37554c781402a22917dee2f75def7ab966d7b770905398eba3c444014"), vh[:])
}

func TestPointEvaluation(t *testing.T) {
	out, err := PointEvaluation(zeroPolynomialInput(7))
	require.NoError(t, err)
	require.Equal(t, common.FromHex(
		"0000000000000000000000000000000000000000000000000000000000001000"+
			"73eda753299d7d483339d80809a1d80553bda402fffe5bfeffffffff00000001"), out)
}

func TestPointEvaluationFailures(t *testing.T) {
	_, err := PointEvaluation(make([]byte, 191))
	require.ErrorIs(t, err, errInvalidInputLength)

	input := zeroPolynomialInput(7)
	input[5] ^= 0xff
	_, err = PointEvaluation(input)
	require.ErrorIs(t, err, errMismatchedHash)

	// A non-zero claim for the zero polynomial must not verify.
	input = zeroPolynomialInput(7)
	input[95] = 1
	_, err = PointEvaluation(input)
	require.Error(t, err)
}
