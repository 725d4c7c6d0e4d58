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

package bn256

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sunyihoo/go-evm/common"
)

var (
	g1Gen = common.FromHex("0x0000000000000000000000000000000000000000000000000000000000000001" +
		"0000000000000000000000000000000000000000000000000000000000000002")
	g1Neg = common.FromHex("0x0000000000000000000000000000000000000000000000000000000000000001" +
		"30644e72e131a029b85045b68181585d97816a916871ca8d3c208c16d87cfd45")
	g1Double = common.FromHex("0x030644e72e131a029b85045b68181585d97816a916871ca8d3c208c16d87cfd3" +
		"15ed738c0e0a7c92e7845f96b2ae9c0a68a6a449e3538fc7ff3ebf7a5a18a2c4")
	g2Gen = common.FromHex("0x198e9393920d483a7260bfb731fb5d25f1aa493335a9e71297e485b7aef312c2" +
		"1800deef121f1e76426a00665e5c4479674322d4f75edadd46debd5cd992f6ed" +
		"090689d0585ff075ec9e99ad690c3395bc4b313370b38ef355acdadcd122975b" +
		"12c85ea5db8c6deb4aab71808dcb408fe3d1e7690c43d37b4ce6cc0166fa7daa")
)

func TestG1AddAndMul(t *testing.T) {
	a := new(G1)
	_, err := a.Unmarshal(g1Gen)
	require.NoError(t, err)

	sum := new(G1).Add(a, a)
	require.Equal(t, g1Double, sum.Marshal())

	prod := new(G1).ScalarMult(a, big.NewInt(2))
	require.Equal(t, g1Double, prod.Marshal())

	// P + (-P) is the point at infinity.
	neg := new(G1)
	_, err = neg.Unmarshal(g1Neg)
	require.NoError(t, err)
	require.Equal(t, make([]byte, 64), new(G1).Add(a, neg).Marshal())
}

func TestG1Unmarshal(t *testing.T) {
	_, err := new(G1).Unmarshal(make([]byte, 63))
	require.Error(t, err)

	inf := new(G1)
	_, err = inf.Unmarshal(make([]byte, 64))
	require.NoError(t, err)
	require.Equal(t, make([]byte, 64), inf.Marshal())

	bad := common.CopyBytes(g1Gen)
	bad[63] = 3
	_, err = new(G1).Unmarshal(bad)
	require.ErrorIs(t, err, errNotOnCurve)
}

func TestPairingCheck(t *testing.T) {
	p, n := new(G1), new(G1)
	_, err := p.Unmarshal(g1Gen)
	require.NoError(t, err)
	_, err = n.Unmarshal(g1Neg)
	require.NoError(t, err)
	q := new(G2)
	_, err = q.Unmarshal(g2Gen)
	require.NoError(t, err)

	require.True(t, PairingCheck(nil, nil))
	require.True(t, PairingCheck([]*G1{p, n}, []*G2{q, q}))
	require.False(t, PairingCheck([]*G1{p}, []*G2{q}))
	require.False(t, PairingCheck([]*G1{p, p}, []*G2{q}))
}
