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

// Package bls12381 implements the EIP-2537 encodings and curve operations
// of BLS12-381 on top of gnark-crypto.
//
// A field element is 64 bytes, big endian, with the top 16 bytes zero. A G1
// point is x|y and a G2 point is x.c0|x.c1|y.c0|y.c1. The all-zero encoding
// is the point at infinity.
// 域元素占 64 字节，高 16 字节必须为零；全零编码表示无穷远点。
package bls12381

import (
	"errors"

	"github.com/consensys/gnark-crypto/ecc"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fp"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

const (
	FieldSize   = 64                   // Padded size of an encoded field element
	G1Size      = 2 * FieldSize        // Size of an encoded G1 point
	G2Size      = 4 * FieldSize        // Size of an encoded G2 point
	ScalarSize  = 32                   // Size of an encoded scalar
	G1PairSize  = G1Size + ScalarSize  // Size of a G1 point and scalar pair
	G2PairSize  = G2Size + ScalarSize  // Size of a G2 point and scalar pair
	PairingSize = G1Size + G2Size      // Size of a G1 and G2 point pair
	paddingSize = FieldSize - fp.Bytes // Leading zero bytes of a field element
)

var (
	ErrInvalidLength  = errors.New("bls12381: invalid input length")
	ErrInvalidPadding = errors.New("bls12381: invalid field element top bytes")
	ErrInvalidField   = errors.New("bls12381: invalid field element")
	ErrNotOnCurve     = errors.New("bls12381: point not on curve")
	ErrNotInSubgroup  = errors.New("bls12381: point not in correct subgroup")
)

// G1Add adds the two G1 points of a 256 byte input. The points are not
// required to be in the prime order subgroup.
func G1Add(input []byte) ([]byte, error) {
	if len(input) != 2*G1Size {
		return nil, ErrInvalidLength
	}
	a, err := decodeG1(input[:G1Size], false)
	if err != nil {
		return nil, err
	}
	b, err := decodeG1(input[G1Size:], false)
	if err != nil {
		return nil, err
	}
	return encodeG1(new(bls12381.G1Affine).Add(a, b)), nil
}

// G1MultiExp computes the sum of point*scalar over the (point, scalar) pairs
// of the input.
func G1MultiExp(input []byte) ([]byte, error) {
	k := len(input) / G1PairSize
	if k == 0 || len(input)%G1PairSize != 0 {
		return nil, ErrInvalidLength
	}
	var (
		points  = make([]bls12381.G1Affine, k)
		scalars = make([]fr.Element, k)
	)
	for i := 0; i < k; i++ {
		off := i * G1PairSize
		p, err := decodeG1(input[off:off+G1Size], true)
		if err != nil {
			return nil, err
		}
		points[i] = *p
		scalars[i].SetBytes(input[off+G1Size : off+G1PairSize])
	}
	res, err := new(bls12381.G1Affine).MultiExp(points, scalars, ecc.MultiExpConfig{})
	if err != nil {
		return nil, err
	}
	return encodeG1(res), nil
}

// G2Add adds the two G2 points of a 512 byte input. The points are not
// required to be in the prime order subgroup.
func G2Add(input []byte) ([]byte, error) {
	if len(input) != 2*G2Size {
		return nil, ErrInvalidLength
	}
	a, err := decodeG2(input[:G2Size], false)
	if err != nil {
		return nil, err
	}
	b, err := decodeG2(input[G2Size:], false)
	if err != nil {
		return nil, err
	}
	return encodeG2(new(bls12381.G2Affine).Add(a, b)), nil
}

// G2MultiExp is the G2 counterpart of G1MultiExp.
func G2MultiExp(input []byte) ([]byte, error) {
	k := len(input) / G2PairSize
	if k == 0 || len(input)%G2PairSize != 0 {
		return nil, ErrInvalidLength
	}
	var (
		points  = make([]bls12381.G2Affine, k)
		scalars = make([]fr.Element, k)
	)
	for i := 0; i < k; i++ {
		off := i * G2PairSize
		p, err := decodeG2(input[off:off+G2Size], true)
		if err != nil {
			return nil, err
		}
		points[i] = *p
		scalars[i].SetBytes(input[off+G2Size : off+G2PairSize])
	}
	res, err := new(bls12381.G2Affine).MultiExp(points, scalars, ecc.MultiExpConfig{})
	if err != nil {
		return nil, err
	}
	return encodeG2(res), nil
}

// PairingCheck reports whether the product of the pairings of the (G1, G2)
// pairs of the input is the identity in GT.
// 输入为若干 (G1, G2) 点对，所有点都必须在素数阶子群中。
func PairingCheck(input []byte) (bool, error) {
	k := len(input) / PairingSize
	if k == 0 || len(input)%PairingSize != 0 {
		return false, ErrInvalidLength
	}
	var (
		p = make([]bls12381.G1Affine, k)
		q = make([]bls12381.G2Affine, k)
	)
	for i := 0; i < k; i++ {
		off := i * PairingSize
		g1, err := decodeG1(input[off:off+G1Size], true)
		if err != nil {
			return false, err
		}
		g2, err := decodeG2(input[off+G1Size:off+PairingSize], true)
		if err != nil {
			return false, err
		}
		p[i], q[i] = *g1, *g2
	}
	return bls12381.PairingCheck(p, q)
}

// MapFpToG1 maps a 64 byte field element onto G1 with the SSWU map.
func MapFpToG1(input []byte) ([]byte, error) {
	if len(input) != FieldSize {
		return nil, ErrInvalidLength
	}
	u, err := decodeField(input)
	if err != nil {
		return nil, err
	}
	p := bls12381.MapToG1(u)
	return encodeG1(&p), nil
}

// MapFp2ToG2 maps a 128 byte Fp2 element onto G2 with the SSWU map.
func MapFp2ToG2(input []byte) ([]byte, error) {
	if len(input) != 2*FieldSize {
		return nil, ErrInvalidLength
	}
	var (
		u   bls12381.E2
		err error
	)
	if u.A0, err = decodeField(input[:FieldSize]); err != nil {
		return nil, err
	}
	if u.A1, err = decodeField(input[FieldSize:]); err != nil {
		return nil, err
	}
	p := bls12381.MapToG2(u)
	return encodeG2(&p), nil
}

// decodeG1 decodes a G1 point, checking that it is on the curve and, if
// requested, in the prime order subgroup.
func decodeG1(in []byte, subgroupCheck bool) (*bls12381.G1Affine, error) {
	var (
		p   bls12381.G1Affine
		err error
	)
	if p.X, err = decodeField(in[:FieldSize]); err != nil {
		return nil, err
	}
	if p.Y, err = decodeField(in[FieldSize:G1Size]); err != nil {
		return nil, err
	}
	if !p.IsOnCurve() {
		return nil, ErrNotOnCurve
	}
	if subgroupCheck && !p.IsInSubGroup() {
		return nil, ErrNotInSubgroup
	}
	return &p, nil
}

// decodeG2 decodes a G2 point, checking that it is on the curve and, if
// requested, in the prime order subgroup.
func decodeG2(in []byte, subgroupCheck bool) (*bls12381.G2Affine, error) {
	var (
		p   bls12381.G2Affine
		err error
	)
	if p.X.A0, err = decodeField(in[:FieldSize]); err != nil {
		return nil, err
	}
	if p.X.A1, err = decodeField(in[FieldSize : 2*FieldSize]); err != nil {
		return nil, err
	}
	if p.Y.A0, err = decodeField(in[2*FieldSize : 3*FieldSize]); err != nil {
		return nil, err
	}
	if p.Y.A1, err = decodeField(in[3*FieldSize : G2Size]); err != nil {
		return nil, err
	}
	if !p.IsOnCurve() {
		return nil, ErrNotOnCurve
	}
	if subgroupCheck && !p.IsInSubGroup() {
		return nil, ErrNotInSubgroup
	}
	return &p, nil
}

// decodeField decodes a padded field element, rejecting values that are not
// reduced modulo p.
func decodeField(in []byte) (fp.Element, error) {
	for _, b := range in[:paddingSize] {
		if b != 0 {
			return fp.Element{}, ErrInvalidPadding
		}
	}
	e, err := fp.BigEndian.Element((*[fp.Bytes]byte)(in[paddingSize:FieldSize]))
	if err != nil {
		return fp.Element{}, ErrInvalidField
	}
	return e, nil
}

func encodeField(out []byte, e *fp.Element) {
	fp.BigEndian.PutElement((*[fp.Bytes]byte)(out[paddingSize:FieldSize]), *e)
}

// encodeG1 encodes a G1 point. The infinity point in gnark-crypto is (0, 0),
// which already matches the all-zero encoding.
func encodeG1(p *bls12381.G1Affine) []byte {
	out := make([]byte, G1Size)
	encodeField(out[:FieldSize], &p.X)
	encodeField(out[FieldSize:], &p.Y)
	return out
}

func encodeG2(p *bls12381.G2Affine) []byte {
	out := make([]byte, G2Size)
	encodeField(out[:FieldSize], &p.X.A0)
	encodeField(out[FieldSize:2*FieldSize], &p.X.A1)
	encodeField(out[2*FieldSize:3*FieldSize], &p.Y.A0)
	encodeField(out[3*FieldSize:], &p.Y.A1)
	return out
}
