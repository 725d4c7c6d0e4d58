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

package vm

import (
	"github.com/holiman/uint256"
	"github.com/sunyihoo/go-evm/common"
	"github.com/sunyihoo/go-evm/core/tracing"
)

// CallKind identifies how a frame was entered.
type CallKind byte

const (
	KindCall CallKind = iota
	KindCallCode
	KindDelegateCall
	KindStaticCall
	KindCreate
	KindCreate2
)

// OpCode returns the opcode that enters a frame of this kind.
func (k CallKind) OpCode() OpCode {
	switch k {
	case KindCallCode:
		return CALLCODE
	case KindDelegateCall:
		return DELEGATECALL
	case KindStaticCall:
		return STATICCALL
	case KindCreate:
		return CREATE
	case KindCreate2:
		return CREATE2
	default:
		return CALL
	}
}

func (k CallKind) String() string { return k.OpCode().String() }

// IsCreate reports whether the frame runs init code.
func (k CallKind) IsCreate() bool { return k == KindCreate || k == KindCreate2 }

// ExecutionContext is the immutable half of a call: who is executing which
// code on whose behalf. It is built once when the call begins and never
// modified afterwards.
type ExecutionContext struct {
	Kind        CallKind
	Address     common.Address // account whose storage and balance are in scope
	CodeAddress common.Address // account the code was loaded from
	Caller      common.Address
	Value       *uint256.Int
	Input       []byte
	Depth       int // 0 for the top-level frame of a transaction
	Code        *Code
	ReadOnly    bool
}

// IsTopLevel reports whether the context belongs to the transaction's own
// frame rather than to a nested call.
func (c *ExecutionContext) IsTopLevel() bool { return c.Depth == 0 }

// Frame is the mutable activation record of a running call. The world state
// snapshot is owned by the code that created the frame, a frame never
// reverts it itself.
type Frame struct {
	Context    *ExecutionContext
	Stack      *Stack
	Memory     *Memory
	Gas        uint64
	PC         uint64
	ReturnData []byte // last call's return data
	Snapshot   int
}

// NewFrame allocates a frame for the given context with pooled stack and
// memory. Release must be called once the frame is done.
func NewFrame(ctx *ExecutionContext, gas uint64, snapshot int) *Frame {
	return &Frame{
		Context:  ctx,
		Stack:    newstack(),
		Memory:   NewMemory(),
		Gas:      gas,
		Snapshot: snapshot,
	}
}

// Release returns the stack and memory to their pools.
func (f *Frame) Release() {
	returnStack(f.Stack)
	f.Memory.Free()
	f.Stack, f.Memory = nil, nil
}

// UseGas attempts the use gas and subtracts it and returns true on success
func (f *Frame) UseGas(gas uint64, logger *tracing.Hooks, reason tracing.GasChangeReason) (ok bool) {
	if f.Gas < gas {
		return false
	}
	if logger != nil && logger.OnGasChange != nil && reason != tracing.GasChangeIgnored {
		logger.OnGasChange(f.Gas, f.Gas-gas, reason)
	}
	f.Gas -= gas
	return true
}

// RefundGas refunds gas to the frame
func (f *Frame) RefundGas(gas uint64, logger *tracing.Hooks, reason tracing.GasChangeReason) {
	if gas == 0 {
		return
	}
	if logger != nil && logger.OnGasChange != nil && reason != tracing.GasChangeIgnored {
		logger.OnGasChange(f.Gas, f.Gas+gas, reason)
	}
	f.Gas += gas
}

// MemoryData returns the underlying memory slice.
func (f *Frame) MemoryData() []byte {
	if f.Memory == nil {
		return nil
	}
	return f.Memory.Data()
}

// StackData returns the stack data.
func (f *Frame) StackData() []uint256.Int {
	if f.Stack == nil {
		return nil
	}
	return f.Stack.Data()
}

// Caller returns the current caller.
func (f *Frame) Caller() common.Address { return f.Context.Caller }

// Address returns the address where this frame is being executed.
func (f *Frame) Address() common.Address { return f.Context.Address }

// CallValue returns the value supplied with this call.
func (f *Frame) CallValue() *uint256.Int { return f.Context.Value }

// CallInput returns the input/calldata with this call.
func (f *Frame) CallInput() []byte { return f.Context.Input }

// ContractCode returns the code of the contract being executed.
func (f *Frame) ContractCode() []byte { return f.Context.Code.Bytes() }
