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

package math

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOverflow(t *testing.T) {
	for i, tt := range []struct {
		x, y     uint64
		op       func(uint64, uint64) (uint64, bool)
		overflow bool
	}{
		{MaxUint64, 1, SafeAdd, true},
		{MaxUint64 - 1, 1, SafeAdd, false},
		{0, 1, SafeSub, true},
		{0, 0, SafeSub, false},
		{1 << 32, 1 << 32, SafeMul, true},
		{MaxUint32, MaxUint32, SafeMul, false},
	} {
		_, overflow := tt.op(tt.x, tt.y)
		assert.Equal(t, tt.overflow, overflow, "case %d", i)
	}
	assert.Equal(t, uint64(MaxUint64), SaturatingAdd(MaxUint64, 5))
}

func TestParse(t *testing.T) {
	for _, tt := range []struct {
		input string
		num   uint64
		ok    bool
	}{
		{"", 0, true},
		{"0", 0, true},
		{"0x10", 16, true},
		{"12345", 12345, true},
		{"0x", 0, false},
		{"ab", 0, false},
	} {
		num, ok := ParseUint64(tt.input)
		assert.Equal(t, tt.ok, ok, tt.input)
		if ok {
			assert.Equal(t, tt.num, num, tt.input)
		}
	}
	_, ok := ParseBig256("0x10000000000000000000000000000000000000000000000000000000000000000")
	assert.False(t, ok, "257 bit number accepted")
	assert.Equal(t, []byte{0, 0, 1}, PaddedBigBytes(big.NewInt(1), 3))
}
