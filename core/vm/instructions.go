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

package vm

import (
	"math"

	"github.com/holiman/uint256"
	"github.com/sunyihoo/go-evm/common"
	"github.com/sunyihoo/go-evm/core/tracing"
	"github.com/sunyihoo/go-evm/core/types"
	"github.com/sunyihoo/go-evm/crypto"
	"github.com/sunyihoo/go-evm/params"
)

func opAdd(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	y.Add(&x, y)
	return nil, nil
}

func opSub(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	y.Sub(&x, y)
	return nil, nil
}

func opMul(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	y.Mul(&x, y)
	return nil, nil
}

func opDiv(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	y.Div(&x, y)
	return nil, nil
}

func opSdiv(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	y.SDiv(&x, y)
	return nil, nil
}

func opMod(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	y.Mod(&x, y)
	return nil, nil
}

func opSmod(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	y.SMod(&x, y)
	return nil, nil
}

func opExp(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	base, exponent := frame.Stack.pop(), frame.Stack.peek()
	exponent.Exp(&base, exponent)
	return nil, nil
}

func opSignExtend(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	back, num := frame.Stack.pop(), frame.Stack.peek()
	num.ExtendSign(num, &back)
	return nil, nil
}

func opNot(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	x := frame.Stack.peek()
	x.Not(x)
	return nil, nil
}

// setBool stores the outcome of a comparison into the stack slot.
func setBool(v *uint256.Int, b bool) {
	if b {
		v.SetOne()
	} else {
		v.Clear()
	}
}

func opLt(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	setBool(y, x.Lt(y))
	return nil, nil
}

func opGt(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	setBool(y, x.Gt(y))
	return nil, nil
}

func opSlt(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	setBool(y, x.Slt(y))
	return nil, nil
}

func opSgt(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	setBool(y, x.Sgt(y))
	return nil, nil
}

func opEq(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	setBool(y, x.Eq(y))
	return nil, nil
}

func opIszero(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	x := frame.Stack.peek()
	setBool(x, x.IsZero())
	return nil, nil
}

func opAnd(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	y.And(&x, y)
	return nil, nil
}

func opOr(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	y.Or(&x, y)
	return nil, nil
}

func opXor(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	y.Xor(&x, y)
	return nil, nil
}

func opByte(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	th, val := frame.Stack.pop(), frame.Stack.peek()
	val.Byte(&th)
	return nil, nil
}

func opAddmod(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	x, y, z := frame.Stack.pop(), frame.Stack.pop(), frame.Stack.peek()
	z.AddMod(&x, &y, z)
	return nil, nil
}

func opMulmod(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	x, y, z := frame.Stack.pop(), frame.Stack.pop(), frame.Stack.peek()
	z.MulMod(&x, &y, z)
	return nil, nil
}

// opSHL implements Shift Left
// The SHL instruction (shift left) pops 2 values from the stack, first arg1 and then arg2,
// and pushes on the stack arg2 shifted to the left by arg1 number of bits.
func opSHL(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	// Note, second operand is left in the stack; accumulate result into it, and no need to push it afterwards
	shift, value := frame.Stack.pop(), frame.Stack.peek()
	if shift.LtUint64(256) {
		value.Lsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil, nil
}

// opSHR implements Logical Shift Right
// The SHR instruction (logical shift right) pops 2 values from the stack, first arg1 and then arg2,
// and pushes on the stack arg2 shifted to the right by arg1 number of bits with zero fill.
func opSHR(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	shift, value := frame.Stack.pop(), frame.Stack.peek()
	if shift.LtUint64(256) {
		value.Rsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil, nil
}

// opSAR implements Arithmetic Shift Right
// The SAR instruction (arithmetic shift right) pops 2 values from the stack, first arg1 and then arg2,
// and pushes on the stack arg2 shifted to the right by arg1 number of bits with sign extension.
func opSAR(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	shift, value := frame.Stack.pop(), frame.Stack.peek()
	if shift.GtUint64(256) {
		if value.Sign() >= 0 {
			value.Clear()
		} else {
			// Max negative shift: all bits set
			value.SetAllOne()
		}
		return nil, nil
	}
	n := uint(shift.Uint64())
	value.SRsh(value, n)
	return nil, nil
}

func opKeccak256(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	offset, size := frame.Stack.pop(), frame.Stack.peek()
	data := frame.Memory.GetPtr(offset.Uint64(), size.Uint64())

	if interpreter.hasher == nil {
		interpreter.hasher = crypto.NewKeccakState()
	} else {
		interpreter.hasher.Reset()
	}
	interpreter.hasher.Write(data)
	interpreter.hasher.Read(interpreter.hasherBuf[:])

	size.SetBytes(interpreter.hasherBuf[:])
	return nil, nil
}

func opAddress(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	frame.Stack.push(new(uint256.Int).SetBytes(frame.Address().Bytes()))
	return nil, nil
}

func opBalance(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	slot := frame.Stack.peek()
	address := common.Address(slot.Bytes20())
	slot.Set(interpreter.evm.StateDB.GetBalance(address))
	return nil, nil
}

func opOrigin(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	frame.Stack.push(new(uint256.Int).SetBytes(interpreter.evm.Origin.Bytes()))
	return nil, nil
}

func opCaller(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	frame.Stack.push(new(uint256.Int).SetBytes(frame.Caller().Bytes()))
	return nil, nil
}

func opCallValue(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	frame.Stack.push(frame.CallValue())
	return nil, nil
}

func opCallDataLoad(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	x := frame.Stack.peek()
	if offset, overflow := x.Uint64WithOverflow(); !overflow {
		data := getData(frame.Context.Input, offset, 32)
		x.SetBytes(data)
	} else {
		x.Clear()
	}
	return nil, nil
}

func opCallDataSize(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	frame.Stack.push(new(uint256.Int).SetUint64(uint64(len(frame.Context.Input))))
	return nil, nil
}

func opCallDataCopy(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	var (
		memOffset  = frame.Stack.pop()
		dataOffset = frame.Stack.pop()
		length     = frame.Stack.pop()
	)
	dataOffset64, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		dataOffset64 = math.MaxUint64
	}
	// These values are checked for overflow during gas cost calculation
	memOffset64 := memOffset.Uint64()
	length64 := length.Uint64()
	frame.Memory.Set(memOffset64, length64, getData(frame.Context.Input, dataOffset64, length64))

	return nil, nil
}

func opReturnDataSize(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	frame.Stack.push(new(uint256.Int).SetUint64(uint64(len(frame.ReturnData))))
	return nil, nil
}

func opReturnDataCopy(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	var (
		memOffset  = frame.Stack.pop()
		dataOffset = frame.Stack.pop()
		length     = frame.Stack.pop()
	)

	offset64, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		return nil, ErrReturnDataOutOfBounds
	}
	// we can reuse dataOffset now (aliasing it for clarity)
	var end = dataOffset
	end.Add(&dataOffset, &length)
	end64, overflow := end.Uint64WithOverflow()
	if overflow || uint64(len(frame.ReturnData)) < end64 {
		return nil, ErrReturnDataOutOfBounds
	}
	frame.Memory.Set(memOffset.Uint64(), length.Uint64(), frame.ReturnData[offset64:end64])
	return nil, nil
}

func opExtCodeSize(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	slot := frame.Stack.peek()
	slot.SetUint64(uint64(interpreter.evm.StateDB.GetCodeSize(slot.Bytes20())))
	return nil, nil
}

func opCodeSize(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	frame.Stack.push(new(uint256.Int).SetUint64(uint64(frame.Context.Code.Len())))
	return nil, nil
}

func opCodeCopy(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	var (
		memOffset  = frame.Stack.pop()
		codeOffset = frame.Stack.pop()
		length     = frame.Stack.pop()
	)
	uint64CodeOffset, overflow := codeOffset.Uint64WithOverflow()
	if overflow {
		uint64CodeOffset = math.MaxUint64
	}
	codeCopy := getData(frame.Context.Code.Bytes(), uint64CodeOffset, length.Uint64())
	frame.Memory.Set(memOffset.Uint64(), length.Uint64(), codeCopy)
	return nil, nil
}

func opExtCodeCopy(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	var (
		stack      = frame.Stack
		a          = stack.pop()
		memOffset  = stack.pop()
		codeOffset = stack.pop()
		length     = stack.pop()
	)
	uint64CodeOffset, overflow := codeOffset.Uint64WithOverflow()
	if overflow {
		uint64CodeOffset = math.MaxUint64
	}
	addr := common.Address(a.Bytes20())
	code := interpreter.evm.StateDB.GetCode(addr)
	codeCopy := getData(code, uint64CodeOffset, length.Uint64())
	frame.Memory.Set(memOffset.Uint64(), length.Uint64(), codeCopy)

	return nil, nil
}

// opExtCodeHash returns the code hash of a specified account.
// There are several cases when the function is called, while we can relay everything
// to `state.GetCodeHash` function to ensure the correctness.
//
//  1. Caller tries to get the code hash of a normal contract account, state
//     should return the relative code hash and set it as the result.
//
//  2. Caller tries to get the code hash of a non-existent account, state should
//     return common.Hash{} and zero will be set as the result.
//
//  3. Caller tries to get the code hash for an account without contract code, state
//     should return emptyCodeHash(0xc5d246...) as the result.
//
//  4. Caller tries to get the code hash of a precompiled account, the result should be
//     zero or emptyCodeHash.
//
// It is worth noting that in order to avoid unnecessary create and clean, all precompile
// accounts on mainnet have been transferred 1 wei, so the return here should be
// emptyCodeHash. If the precompile account is not transferred any amount on a private or
// customized chain, the return value will be zero.
//
//  5. Caller tries to get the code hash for an account which is marked as self-destructed
//     in the current transaction, the code hash of this account should be returned.
//
//  6. Caller tries to get the code hash for an account which is marked as deleted, this
//     account should be regarded as a non-existent account and zero should be returned.
func opExtCodeHash(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	slot := frame.Stack.peek()
	address := common.Address(slot.Bytes20())
	if interpreter.evm.StateDB.Empty(address) {
		slot.Clear()
	} else {
		slot.SetBytes(interpreter.evm.StateDB.GetCodeHash(address).Bytes())
	}
	return nil, nil
}

func opGasprice(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	v, _ := uint256.FromBig(interpreter.evm.GasPrice)
	frame.Stack.push(v)
	return nil, nil
}

func opBlockhash(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	num := frame.Stack.peek()
	num64, overflow := num.Uint64WithOverflow()
	if overflow {
		num.Clear()
		return nil, nil
	}
	var (
		upper  = interpreter.evm.Context.BlockNumber.Uint64()
		window = interpreter.evm.chainRules.BlockHashWindow
		lower  uint64
	)
	if upper > window {
		lower = upper - window
	}
	if num64 >= lower && num64 < upper {
		res := interpreter.evm.Context.GetHash(num64)
		num.SetBytes(res[:])
	} else {
		num.Clear()
	}
	return nil, nil
}

func opCoinbase(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	frame.Stack.push(new(uint256.Int).SetBytes(interpreter.evm.Context.Coinbase.Bytes()))
	return nil, nil
}

func opTimestamp(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	frame.Stack.push(new(uint256.Int).SetUint64(interpreter.evm.Context.Time))
	return nil, nil
}

func opNumber(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	v, _ := uint256.FromBig(interpreter.evm.Context.BlockNumber)
	frame.Stack.push(v)
	return nil, nil
}

func opDifficulty(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	v, _ := uint256.FromBig(interpreter.evm.Context.Difficulty)
	frame.Stack.push(v)
	return nil, nil
}

func opRandom(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	var v = new(uint256.Int)
	if random := interpreter.evm.Context.Random; random != nil {
		v.SetBytes(random.Bytes())
	}
	frame.Stack.push(v)
	return nil, nil
}

func opGasLimit(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	frame.Stack.push(new(uint256.Int).SetUint64(interpreter.evm.Context.GasLimit))
	return nil, nil
}

func opPop(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	frame.Stack.pop()
	return nil, nil
}

func opMload(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	v := frame.Stack.peek()
	offset := v.Uint64()
	v.SetBytes(frame.Memory.GetPtr(offset, 32))
	return nil, nil
}

func opMstore(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	mStart, val := frame.Stack.pop(), frame.Stack.pop()
	frame.Memory.Set32(mStart.Uint64(), &val)
	return nil, nil
}

func opMstore8(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	off, val := frame.Stack.pop(), frame.Stack.pop()
	frame.Memory.store[off.Uint64()] = byte(val.Uint64())
	return nil, nil
}

func opSload(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	loc := frame.Stack.peek()
	hash := common.Hash(loc.Bytes32())
	val := interpreter.evm.StateDB.GetState(frame.Address(), hash)
	loc.SetBytes(val.Bytes())
	return nil, nil
}

func opSstore(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	if frame.Context.ReadOnly {
		return nil, ErrWriteProtection
	}
	loc := frame.Stack.pop()
	val := frame.Stack.pop()
	interpreter.evm.StateDB.SetState(frame.Address(), loc.Bytes32(), val.Bytes32())
	return nil, nil
}

func opJump(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	if interpreter.evm.abort.Load() {
		return nil, errStopToken
	}
	pos := frame.Stack.pop()
	if !frame.Context.Code.ValidJumpdest(&pos) {
		return nil, ErrInvalidJump
	}
	*pc = pos.Uint64() - 1 // pc will be increased by the interpreter loop
	return nil, nil
}

func opJumpi(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	if interpreter.evm.abort.Load() {
		return nil, errStopToken
	}
	pos, cond := frame.Stack.pop(), frame.Stack.pop()
	if !cond.IsZero() {
		if !frame.Context.Code.ValidJumpdest(&pos) {
			return nil, ErrInvalidJump
		}
		*pc = pos.Uint64() - 1 // pc will be increased by the interpreter loop
	}
	return nil, nil
}

func opJumpdest(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	return nil, nil
}

func opPc(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	frame.Stack.push(new(uint256.Int).SetUint64(*pc))
	return nil, nil
}

func opMsize(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	frame.Stack.push(new(uint256.Int).SetUint64(uint64(frame.Memory.Len())))
	return nil, nil
}

func opGas(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	frame.Stack.push(new(uint256.Int).SetUint64(frame.Gas))
	return nil, nil
}

// create runs CREATE or CREATE2 on behalf of the frame. All but one 64th of
// the remaining gas is handed to the initcode, the rest is refunded after.
func create(interpreter *EVMInterpreter, frame *Frame, kind CallKind) ([]byte, error) {
	if frame.Context.ReadOnly {
		return nil, ErrWriteProtection
	}
	var (
		evm          = interpreter.evm
		value        = frame.Stack.pop()
		offset, size = frame.Stack.pop(), frame.Stack.pop()
		salt         uint256.Int
		gas          = frame.Gas
		reason       = tracing.GasChangeCallContractCreation
	)
	if kind == KindCreate2 {
		salt = frame.Stack.pop()
		reason = tracing.GasChangeCallContractCreation2
	}
	input := frame.Memory.GetCopy(offset.Uint64(), size.Uint64())
	if fraction := evm.chainRules.CallGasFraction; fraction != 0 {
		gas -= gas / fraction
	}
	// reuse size int for stackvalue
	stackvalue := size

	frame.UseGas(gas, evm.Config.Tracer, reason)

	var (
		res       []byte
		addr      common.Address
		returnGas uint64
		suberr    error
	)
	if kind == KindCreate2 {
		res, addr, returnGas, suberr = evm.Create2(frame.Address(), input, gas, &value, &salt)
	} else {
		res, addr, returnGas, suberr = evm.Create(frame.Address(), input, gas, &value)
	}
	// Push item on the stack based on the returned error. If the ruleset is
	// homestead we must check for CodeStoreOutOfGasError (homestead only
	// rule) and treat as an error, if the ruleset is frontier we must
	// ignore this error and pretend the operation was successful.
	if evm.chainRules.IsHomestead && suberr == ErrCodeStoreOutOfGas {
		stackvalue.Clear()
	} else if suberr != nil && suberr != ErrCodeStoreOutOfGas {
		stackvalue.Clear()
	} else {
		stackvalue.SetBytes(addr.Bytes())
	}
	frame.Stack.push(&stackvalue)

	frame.RefundGas(returnGas, evm.Config.Tracer, tracing.GasChangeCallLeftOverRefunded)

	if suberr == ErrExecutionReverted {
		frame.ReturnData = res // set REVERT data to return data buffer
		return res, nil
	}
	frame.ReturnData = nil // clear dirty return data buffer
	return nil, nil
}

func opCreate(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	return create(interpreter, frame, KindCreate)
}

func opCreate2(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	return create(interpreter, frame, KindCreate2)
}

// finishCall pushes the success flag of a nested call, copies its output into
// the requested memory window and refunds the gas it left over.
func finishCall(interpreter *EVMInterpreter, frame *Frame, temp, retOffset, retSize uint256.Int, ret []byte, returnGas uint64, err error) ([]byte, error) {
	if err != nil {
		temp.Clear()
	} else {
		temp.SetOne()
	}
	frame.Stack.push(&temp)
	if err == nil || err == ErrExecutionReverted {
		frame.Memory.Set(retOffset.Uint64(), retSize.Uint64(), ret)
	}
	frame.RefundGas(returnGas, interpreter.evm.Config.Tracer, tracing.GasChangeCallLeftOverRefunded)

	frame.ReturnData = ret
	return ret, nil
}

func opCall(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	stack := frame.Stack
	// Pop gas. The actual gas in interpreter.evm.callGasTemp.
	// We can use this as a temporary value
	temp := stack.pop()
	gas := interpreter.evm.callGasTemp
	// Pop other call parameters.
	addr, value, inOffset, inSize, retOffset, retSize := stack.pop(), stack.pop(), stack.pop(), stack.pop(), stack.pop(), stack.pop()
	toAddr := common.Address(addr.Bytes20())
	// Get the arguments from the memory.
	args := frame.Memory.GetPtr(inOffset.Uint64(), inSize.Uint64())

	if frame.Context.ReadOnly && !value.IsZero() {
		return nil, ErrWriteProtection
	}
	if !value.IsZero() {
		gas += params.CallStipend
	}
	ret, returnGas, err := interpreter.evm.Call(frame.Address(), toAddr, args, gas, &value)
	return finishCall(interpreter, frame, temp, retOffset, retSize, ret, returnGas, err)
}

func opCallCode(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	// Pop gas. The actual gas is in interpreter.evm.callGasTemp.
	stack := frame.Stack
	// We use it as a temporary value
	temp := stack.pop()
	gas := interpreter.evm.callGasTemp
	// Pop other call parameters.
	addr, value, inOffset, inSize, retOffset, retSize := stack.pop(), stack.pop(), stack.pop(), stack.pop(), stack.pop(), stack.pop()
	toAddr := common.Address(addr.Bytes20())
	// Get arguments from the memory.
	args := frame.Memory.GetPtr(inOffset.Uint64(), inSize.Uint64())

	if !value.IsZero() {
		gas += params.CallStipend
	}
	ret, returnGas, err := interpreter.evm.CallCode(frame.Address(), toAddr, args, gas, &value)
	return finishCall(interpreter, frame, temp, retOffset, retSize, ret, returnGas, err)
}

func opDelegateCall(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	stack := frame.Stack
	// Pop gas. The actual gas is in interpreter.evm.callGasTemp.
	// We use it as a temporary value
	temp := stack.pop()
	gas := interpreter.evm.callGasTemp
	// Pop other call parameters.
	addr, inOffset, inSize, retOffset, retSize := stack.pop(), stack.pop(), stack.pop(), stack.pop(), stack.pop()
	toAddr := common.Address(addr.Bytes20())
	// Get arguments from the memory.
	args := frame.Memory.GetPtr(inOffset.Uint64(), inSize.Uint64())

	ret, returnGas, err := interpreter.evm.DelegateCall(frame.Caller(), frame.Address(), toAddr, args, gas, frame.CallValue())
	return finishCall(interpreter, frame, temp, retOffset, retSize, ret, returnGas, err)
}

func opStaticCall(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	// Pop gas. The actual gas is in interpreter.evm.callGasTemp.
	stack := frame.Stack
	// We use it as a temporary value
	temp := stack.pop()
	gas := interpreter.evm.callGasTemp
	// Pop other call parameters.
	addr, inOffset, inSize, retOffset, retSize := stack.pop(), stack.pop(), stack.pop(), stack.pop(), stack.pop()
	toAddr := common.Address(addr.Bytes20())
	// Get arguments from the memory.
	args := frame.Memory.GetPtr(inOffset.Uint64(), inSize.Uint64())

	ret, returnGas, err := interpreter.evm.StaticCall(frame.Address(), toAddr, args, gas)
	return finishCall(interpreter, frame, temp, retOffset, retSize, ret, returnGas, err)
}

func opReturn(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	offset, size := frame.Stack.pop(), frame.Stack.pop()
	ret := frame.Memory.GetCopy(offset.Uint64(), size.Uint64())

	return ret, errStopToken
}

func opRevert(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	offset, size := frame.Stack.pop(), frame.Stack.pop()
	ret := frame.Memory.GetCopy(offset.Uint64(), size.Uint64())

	frame.ReturnData = ret
	return ret, ErrExecutionReverted
}

func opUndefined(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	return nil, &ErrInvalidOpCode{opcode: frame.Context.Code.GetOp(*pc)}
}

func opStop(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	return nil, errStopToken
}

// traceSelfdestruct reports a self-destruct as a zero-gas call frame at the
// depth below the executing one.
func traceSelfdestruct(interpreter *EVMInterpreter, frame *Frame, beneficiary common.Address, balance *uint256.Int) {
	tracer := interpreter.evm.Config.Tracer
	if tracer == nil {
		return
	}
	depth := frame.Context.Depth + 1
	if tracer.OnEnter != nil {
		tracer.OnEnter(depth, byte(SELFDESTRUCT), frame.Address(), beneficiary, []byte{}, 0, balance.ToBig())
	}
	if tracer.OnExit != nil {
		tracer.OnExit(depth, []byte{}, 0, nil, false)
	}
}

func opSelfdestruct(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	if frame.Context.ReadOnly {
		return nil, ErrWriteProtection
	}
	beneficiary := frame.Stack.pop()
	balance := interpreter.evm.StateDB.GetBalance(frame.Address())
	interpreter.evm.StateDB.AddBalance(beneficiary.Bytes20(), balance, tracing.BalanceIncreaseSelfdestruct)
	interpreter.evm.StateDB.SelfDestruct(frame.Address())
	traceSelfdestruct(interpreter, frame, beneficiary.Bytes20(), balance)
	return nil, errStopToken
}

func opSelfdestruct6780(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	if frame.Context.ReadOnly {
		return nil, ErrWriteProtection
	}
	beneficiary := frame.Stack.pop()
	balance := interpreter.evm.StateDB.GetBalance(frame.Address())
	interpreter.evm.StateDB.SubBalance(frame.Address(), balance, tracing.BalanceDecreaseSelfdestruct)
	interpreter.evm.StateDB.AddBalance(beneficiary.Bytes20(), balance, tracing.BalanceIncreaseSelfdestruct)
	interpreter.evm.StateDB.SelfDestruct6780(frame.Address())
	traceSelfdestruct(interpreter, frame, beneficiary.Bytes20(), balance)
	return nil, errStopToken
}

// following functions are used by the instruction jump  table

// make log instruction function
func makeLog(size int) executionFunc {
	return func(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
		if frame.Context.ReadOnly {
			return nil, ErrWriteProtection
		}
		topics := make([]common.Hash, size)
		stack := frame.Stack
		mStart, mSize := stack.pop(), stack.pop()
		for i := 0; i < size; i++ {
			addr := stack.pop()
			topics[i] = addr.Bytes32()
		}

		d := frame.Memory.GetCopy(mStart.Uint64(), mSize.Uint64())
		interpreter.evm.StateDB.AddLog(&types.Log{
			Address: frame.Address(),
			Topics:  topics,
			Data:    d,
			// This is a non-consensus field, but assigned here because
			// core/state doesn't know the current block number.
			BlockNumber: interpreter.evm.Context.BlockNumber.Uint64(),
		})

		return nil, nil
	}
}

// opPush1 is a specialized version of pushN
func opPush1(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	var (
		code    = frame.Context.Code.Bytes()
		integer = new(uint256.Int)
	)
	*pc += 1
	if *pc < uint64(len(code)) {
		frame.Stack.push(integer.SetUint64(uint64(code[*pc])))
	} else {
		frame.Stack.push(integer.Clear())
	}
	return nil, nil
}

// make push instruction function
func makePush(size uint64, pushByteSize int) executionFunc {
	return func(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
		var (
			code    = frame.Context.Code.Bytes()
			codeLen = len(code)
			start   = min(codeLen, int(*pc+1))
			end     = min(codeLen, start+pushByteSize)
		)
		a := new(uint256.Int).SetBytes(code[start:end])

		// Missing bytes: pushByteSize - len(pushData)
		if missing := pushByteSize - (end - start); missing > 0 {
			a.Lsh(a, uint(8*missing))
		}
		frame.Stack.push(a)
		*pc += size
		return nil, nil
	}
}

// make dup instruction function
func makeDup(size int64) executionFunc {
	return func(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
		frame.Stack.dup(int(size))
		return nil, nil
	}
}

// make swap instruction function
func makeSwap(n int) executionFunc {
	return func(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
		frame.Stack.swap(n)
		return nil, nil
	}
}

// getData returns size bytes of data from start, zero padded past the end.
func getData(data []byte, start uint64, size uint64) []byte {
	length := uint64(len(data))
	start = min(start, length)
	end := min(start+size, length)
	if start+size < start {
		end = length
	}
	return common.RightPadBytes(data[start:end], int(size))
}
