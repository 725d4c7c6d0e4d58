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

// Package program assembles EVM bytecode for tests. It is not a compiler:
// malformed requests panic, and nothing here is meant for production input.
package program

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/sunyihoo/go-evm/core/vm"
)

// Program is a bytecode buffer with builder methods. Every method appends to
// the buffer and returns the program, so calls can be chained.
type Program struct {
	code []byte
}

// New creates an empty program.
func New() *Program {
	return &Program{code: make([]byte, 0, 64)}
}

func (p *Program) add(op byte) *Program {
	p.code = append(p.code, op)
	return p
}

// doPush emits the shortest PUSHn holding val. Zero is pushed as PUSH1 0 so
// the output stays valid before Shanghai.
func (p *Program) doPush(val *uint256.Int) {
	if val == nil {
		val = new(uint256.Int)
	}
	data := val.Bytes()
	if len(data) == 0 {
		data = []byte{0}
	}
	p.add(byte(vm.PUSH1) - 1 + byte(len(data)))
	p.Append(data)
}

// Append appends raw bytes.
func (p *Program) Append(data []byte) *Program {
	p.code = append(p.code, data...)
	return p
}

// Bytes returns the bytecode. The slice is not a copy.
func (p *Program) Bytes() []byte {
	return p.code
}

// SetBytes replaces the bytecode.
func (p *Program) SetBytes(code []byte) {
	p.code = code
}

// Hex returns the bytecode hex encoded, without prefix.
func (p *Program) Hex() string {
	return fmt.Sprintf("%02x", p.code)
}

// Size returns the current length of the bytecode.
func (p *Program) Size() int {
	return len(p.code)
}

// Op appends the given opcodes.
func (p *Program) Op(ops ...vm.OpCode) *Program {
	for _, op := range ops {
		p.add(byte(op))
	}
	return p
}

// Push emits a PUSHn for val. Integers, big and uint256 numbers, byte slices
// and anything with a Bytes method (addresses, hashes) are accepted.
func (p *Program) Push(val any) *Program {
	switch v := val.(type) {
	case int:
		p.doPush(new(uint256.Int).SetUint64(uint64(v)))
	case uint64:
		p.doPush(new(uint256.Int).SetUint64(v))
	case uint32:
		p.doPush(new(uint256.Int).SetUint64(uint64(v)))
	case uint16:
		p.doPush(new(uint256.Int).SetUint64(uint64(v)))
	case byte:
		p.doPush(new(uint256.Int).SetUint64(uint64(v)))
	case *big.Int:
		p.doPush(uint256.MustFromBig(v))
	case *uint256.Int:
		p.doPush(v)
	case uint256.Int:
		p.doPush(&v)
	case []byte:
		p.doPush(new(uint256.Int).SetBytes(v))
	case interface{ Bytes() []byte }:
		p.doPush(new(uint256.Int).SetBytes(v.Bytes()))
	case nil:
		p.doPush(nil)
	default:
		panic(fmt.Sprintf("unsupported type %T", v))
	}
	return p
}

// Push0 emits PUSH0.
func (p *Program) Push0() *Program {
	return p.Op(vm.PUSH0)
}

// pushGas pushes an explicit gas amount, or GAS to forward everything.
func (p *Program) pushGas(gas *uint256.Int) {
	if gas == nil {
		p.Op(vm.GAS)
	} else {
		p.doPush(gas)
	}
}

// call emits one of the call opcodes. value is ignored for the variants that
// don't take one.
func (p *Program) call(op vm.OpCode, gas *uint256.Int, address, value, inOffset, inSize, outOffset, outSize any) *Program {
	p.Push(outSize).Push(outOffset).Push(inSize).Push(inOffset)
	if op == vm.CALL || op == vm.CALLCODE {
		p.Push(value)
	}
	p.Push(address)
	p.pushGas(gas)
	return p.Op(op)
}

// Call emits a CALL. A nil gas forwards all available gas.
func (p *Program) Call(gas *uint256.Int, address, value, inOffset, inSize, outOffset, outSize any) *Program {
	return p.call(vm.CALL, gas, address, value, inOffset, inSize, outOffset, outSize)
}

// CallCode emits a CALLCODE. A nil gas forwards all available gas.
func (p *Program) CallCode(gas *uint256.Int, address, value, inOffset, inSize, outOffset, outSize any) *Program {
	return p.call(vm.CALLCODE, gas, address, value, inOffset, inSize, outOffset, outSize)
}

// DelegateCall emits a DELEGATECALL. A nil gas forwards all available gas.
func (p *Program) DelegateCall(gas *uint256.Int, address, inOffset, inSize, outOffset, outSize any) *Program {
	return p.call(vm.DELEGATECALL, gas, address, nil, inOffset, inSize, outOffset, outSize)
}

// StaticCall emits a STATICCALL. A nil gas forwards all available gas.
func (p *Program) StaticCall(gas *uint256.Int, address, inOffset, inSize, outOffset, outSize any) *Program {
	return p.call(vm.STATICCALL, gas, address, nil, inOffset, inSize, outOffset, outSize)
}

// ExtcodeCopy emits an EXTCODECOPY.
func (p *Program) ExtcodeCopy(address, memOffset, codeOffset, length any) *Program {
	return p.Push(length).Push(codeOffset).Push(memOffset).Push(address).Op(vm.EXTCODECOPY)
}

// Label returns the PC of the next instruction.
func (p *Program) Label() uint64 {
	return uint64(len(p.code))
}

// Jumpdest emits a JUMPDEST and returns its PC.
func (p *Program) Jumpdest() (*Program, uint64) {
	here := p.Label()
	p.Op(vm.JUMPDEST)
	return p, here
}

// Jump emits PUSH loc, JUMP.
func (p *Program) Jump(loc any) *Program {
	return p.Push(loc).Op(vm.JUMP)
}

// JumpIf emits a JUMPI to loc taken when condition is non-zero.
func (p *Program) JumpIf(loc any, condition any) *Program {
	return p.Push(condition).Push(loc).Op(vm.JUMPI)
}

// InputAddressToStack loads 32 bytes of calldata at inputOffset and masks
// them to an address.
func (p *Program) InputAddressToStack(inputOffset uint32) *Program {
	p.Push(inputOffset).Op(vm.CALLDATALOAD)
	mask, _ := new(big.Int).SetString("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF", 16)
	return p.Push(mask).Op(vm.AND)
}

// Mstore writes data to memory at memStart, in 32 byte words with the tail
// written byte by byte.
func (p *Program) Mstore(data []byte, memStart uint32) *Program {
	idx := 0
	for ; idx+32 <= len(data); idx += 32 {
		p.Push(data[idx : idx+32]).Push(uint32(idx) + memStart).Op(vm.MSTORE)
	}
	for ; idx < len(data); idx++ {
		p.Push(data[idx]).Push(uint32(idx) + memStart).Op(vm.MSTORE8)
	}
	return p
}

// MstoreSmall stores up to 32 bytes as a single right-aligned word at memStart.
func (p *Program) MstoreSmall(data []byte, memStart uint32) *Program {
	if len(data) > 32 {
		panic("only <=32 byte data size supported")
	}
	if len(data) == 0 {
		panic("data is zero length")
	}
	return p.Push(data).Push(memStart).Op(vm.MSTORE)
}

// MemToStorage copies memory words [memStart, memStart+memSize) into
// consecutive slots from startSlot. Partial words are copied whole.
func (p *Program) MemToStorage(memStart, memSize, startSlot int) *Program {
	for idx := memStart; idx < memStart+memSize; idx += 32 {
		p.Push(idx).Op(vm.MLOAD)
		p.Push(startSlot).Op(vm.SSTORE)
		startSlot++
	}
	return p
}

// ReturnViaCodeCopy appends data to the program and emits a constructor that
// copies it to memory and returns it as the deployed code. The preceding
// bytecode must not change size afterwards.
func (p *Program) ReturnViaCodeCopy(data []byte) *Program {
	p.Push(len(data))
	// PUSH2 is always wide enough, code is bounded by the max initcode size
	p.Op(vm.PUSH2)
	offsetPos := p.Size()
	p.Append([]byte{0, 0})
	p.Push(0)
	p.Op(vm.CODECOPY)
	p.Return(0, len(data))
	offset := p.Size()
	p.Append(data)

	p.code[offsetPos] = byte(offset >> 8)
	p.code[offsetPos+1] = byte(offset)
	return p
}

// Sstore stores value in slot.
func (p *Program) Sstore(slot any, value any) *Program {
	return p.Push(value).Push(slot).Op(vm.SSTORE)
}

// Sload pushes the value of slot.
func (p *Program) Sload(slot any) *Program {
	return p.Push(slot).Op(vm.SLOAD)
}

// Tstore stores value in transient slot.
func (p *Program) Tstore(slot any, value any) *Program {
	return p.Push(value).Push(slot).Op(vm.TSTORE)
}

// Return emits RETURN of memory[offset:offset+len].
func (p *Program) Return(offset, len int) *Program {
	return p.Push(len).Push(offset).Op(vm.RETURN)
}

// Revert emits REVERT of memory[offset:offset+len].
func (p *Program) Revert(offset, len int) *Program {
	return p.Push(len).Push(offset).Op(vm.REVERT)
}

// ReturnData stores data at memory 0 and returns it.
func (p *Program) ReturnData(data []byte) *Program {
	return p.Mstore(data, 0).Return(0, len(data))
}

// RevertData stores data at memory 0 and reverts with it.
func (p *Program) RevertData(data []byte) *Program {
	return p.Mstore(data, 0).Revert(0, len(data))
}

// Log emits LOGn of memory[offset:offset+size] with the given topics.
func (p *Program) Log(offset, size int, topics ...any) *Program {
	if len(topics) > 4 {
		panic("at most 4 topics")
	}
	for i := len(topics) - 1; i >= 0; i-- {
		p.Push(topics[i])
	}
	return p.Push(size).Push(offset).Op(vm.LOG0 + vm.OpCode(len(topics)))
}

// Create stores code in memory and runs CREATE with it, leaving the new
// address or zero on the stack.
func (p *Program) Create(code []byte, value any) *Program {
	p.Mstore(code, 0)
	return p.Push(len(code)).Push(0).Push(value).Op(vm.CREATE)
}

// Create2 stores code in memory and runs CREATE2 with it, leaving the new
// address or zero on the stack.
func (p *Program) Create2(code []byte, salt any) *Program {
	p.Mstore(code, 0)
	return p.Push(salt).Push(len(code)).Push(0).Push(0).Op(vm.CREATE2)
}

// Create2ThenCall runs Create2 and calls the result with no value and no
// data, discarding both the address and the call status.
func (p *Program) Create2ThenCall(code []byte, salt any) *Program {
	p.Create2(code, salt)
	p.Push(0).Push(0) // mem out
	p.Push(0).Push(0) // mem in
	p.Push(0)         // value
	p.Op(vm.DUP6)     // address
	p.Op(vm.GAS)
	p.Op(vm.CALL)
	p.Op(vm.POP)
	return p.Op(vm.POP)
}

// Selfdestruct emits SELFDESTRUCT to beneficiary.
func (p *Program) Selfdestruct(beneficiary any) *Program {
	return p.Push(beneficiary).Op(vm.SELFDESTRUCT)
}
