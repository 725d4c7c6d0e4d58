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

// Package bn256 implements the alt_bn128 curve operations used by the
// EIP-196 and EIP-197 precompiles on top of gnark-crypto.
package bn256

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
)

var (
	errInvalidLength = errors.New("bn256: invalid input length")
	errNotOnCurve    = errors.New("bn256: point not on curve")
	errNotInSubgroup = errors.New("bn256: point not in correct subgroup")
)

// G1 is an abstract cyclic group. The zero value is the point at infinity.
type G1 struct {
	inner bn254.G1Affine
}

// Unmarshal decodes a point encoded as [32-byte X | 32-byte Y]. The all-zero
// encoding is the point at infinity.
func (g *G1) Unmarshal(buf []byte) (int, error) {
	if len(buf) < 64 {
		return 0, errInvalidLength
	}
	if isZero(buf[:64]) {
		g.inner.X.SetZero()
		g.inner.Y.SetZero()
		return 64, nil
	}
	if err := g.inner.X.SetBytesCanonical(buf[:32]); err != nil {
		return 0, err
	}
	if err := g.inner.Y.SetBytesCanonical(buf[32:64]); err != nil {
		return 0, err
	}
	if !g.inner.IsOnCurve() {
		return 0, errNotOnCurve
	}
	return 64, nil
}

// Marshal encodes the point as [32-byte X | 32-byte Y].
func (g *G1) Marshal() []byte {
	out := make([]byte, 64)
	x := g.inner.X.Bytes()
	y := g.inner.Y.Bytes()
	copy(out[:32], x[:])
	copy(out[32:], y[:])
	return out
}

// Add sets g to a+b and returns g.
func (g *G1) Add(a, b *G1) *G1 {
	g.inner.Add(&a.inner, &b.inner)
	return g
}

// ScalarMult sets g to a*scalar and returns g.
func (g *G1) ScalarMult(a *G1, scalar *big.Int) *G1 {
	g.inner.ScalarMultiplication(&a.inner, scalar)
	return g
}

// G2 is an abstract cyclic group over the quadratic extension field.
type G2 struct {
	inner bn254.G2Affine
}

// Unmarshal decodes a point encoded as [X.imag | X.real | Y.imag | Y.real],
// each coordinate half being 32 bytes.
func (g *G2) Unmarshal(buf []byte) (int, error) {
	if len(buf) < 128 {
		return 0, errInvalidLength
	}
	if isZero(buf[:128]) {
		g.inner.X.SetZero()
		g.inner.Y.SetZero()
		return 128, nil
	}
	if err := g.inner.X.A1.SetBytesCanonical(buf[0:32]); err != nil {
		return 0, err
	}
	if err := g.inner.X.A0.SetBytesCanonical(buf[32:64]); err != nil {
		return 0, err
	}
	if err := g.inner.Y.A1.SetBytesCanonical(buf[64:96]); err != nil {
		return 0, err
	}
	if err := g.inner.Y.A0.SetBytesCanonical(buf[96:128]); err != nil {
		return 0, err
	}
	if !g.inner.IsOnCurve() {
		return 0, errNotOnCurve
	}
	if !g.inner.IsInSubGroup() {
		return 0, errNotInSubgroup
	}
	return 128, nil
}

// PairingCheck computes the product of the pairings e(a[i], b[i]) and reports
// whether it is the identity in GT.
func PairingCheck(a []*G1, b []*G2) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	p := make([]bn254.G1Affine, len(a))
	q := make([]bn254.G2Affine, len(b))
	for i := range a {
		p[i] = a[i].inner
		q[i] = b[i].inner
	}
	ok, err := bn254.PairingCheck(p, q)
	return err == nil && ok
}

func isZero(buf []byte) bool {
	for _, b := range buf {
		if b != 0 {
			return false
		}
	}
	return true
}
