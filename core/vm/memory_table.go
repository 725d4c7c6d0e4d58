// Copyright 2017 The go-ethereum Authors
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

package vm

import (
	"math"

	"github.com/holiman/uint256"
)

// Memory sizing runs before gas is charged: the returned size is the highest
// byte an instruction will touch, and overflow makes the instruction fail
// with ErrGasUintOverflow before any expansion happens.

// calcMemSize64 returns offset+length, flagging overflow of either operand or
// of the sum. A zero length never expands memory, whatever the offset.
func calcMemSize64(off, l *uint256.Int) (uint64, bool) {
	if !l.IsUint64() {
		return 0, true
	}
	return calcMemSize64WithUint(off, l.Uint64())
}

func calcMemSize64WithUint(off *uint256.Int, length uint64) (uint64, bool) {
	if length == 0 {
		return 0, false
	}
	offset, overflow := off.Uint64WithOverflow()
	if overflow {
		return 0, true
	}
	end := offset + length
	return end, end < offset
}

// toWordSize returns the number of 32 byte words covering size.
func toWordSize(size uint64) uint64 {
	if size > math.MaxUint64-31 {
		return math.MaxUint64/32 + 1
	}
	return (size + 31) / 32
}

// span sizes an instruction reading or writing memory[stack[offset]:+stack[length]].
func span(offset, length int) memorySizeFunc {
	return func(stack *Stack) (uint64, bool) {
		return calcMemSize64(stack.Back(offset), stack.Back(length))
	}
}

// fixedSpan sizes an instruction touching size bytes at stack[offset].
func fixedSpan(offset int, size uint64) memorySizeFunc {
	return func(stack *Stack) (uint64, bool) {
		return calcMemSize64WithUint(stack.Back(offset), size)
	}
}

// twoSpans sizes an instruction with an input and an output region, like the
// CALL family.
func twoSpans(in, out memorySizeFunc) memorySizeFunc {
	return func(stack *Stack) (uint64, bool) {
		x, overflow := in(stack)
		if overflow {
			return 0, true
		}
		y, overflow := out(stack)
		if overflow {
			return 0, true
		}
		return max(x, y), false
	}
}

var (
	memoryKeccak256      = span(0, 1)
	memoryCallDataCopy   = span(0, 2)
	memoryReturnDataCopy = span(0, 2)
	memoryCodeCopy       = span(0, 2)
	memoryExtCodeCopy    = span(1, 3)
	memoryMLoad          = fixedSpan(0, 32)
	memoryMStore         = fixedSpan(0, 32)
	memoryMStore8        = fixedSpan(0, 1)
	memoryCreate         = span(1, 2)
	memoryCreate2        = span(1, 2)
	memoryReturn         = span(0, 1)
	memoryRevert         = span(0, 1)
	memoryLog            = span(0, 1)

	// gas, addr, value, inOffset, inSize, outOffset, outSize
	memoryCall = twoSpans(span(3, 4), span(5, 6))
	// gas, addr, inOffset, inSize, outOffset, outSize
	memoryDelegateCall = twoSpans(span(2, 3), span(4, 5))
	memoryStaticCall   = memoryDelegateCall
)

// memoryMcopy covers both the source and the destination region.
func memoryMcopy(stack *Stack) (uint64, bool) {
	start := stack.Back(0) // dst
	if stack.Back(1).Gt(start) {
		start = stack.Back(1) // src
	}
	return calcMemSize64(start, stack.Back(2))
}
