// Copyright 2019 The go-ethereum Authors
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
	"fmt"
	"slices"
	"strconv"

	"github.com/holiman/uint256"
	"github.com/sunyihoo/go-evm/common"
	"github.com/sunyihoo/go-evm/params"
)

// eip is an instruction set change that can be applied on top of a fork's
// jump table through Config.ExtraEips.
type eip struct {
	number int
	name   string
	enable func(*JumpTable)
}

// eips is sorted by number.
var eips = []eip{
	{1153, "transient storage", enable1153},
	{1344, "CHAINID opcode", enable1344},
	{1884, "repricing for trie-size-dependent opcodes", enable1884},
	{2200, "net-metered SSTORE", enable2200},
	{2929, "cold and warm state access", enable2929},
	{3198, "BASEFEE opcode", enable3198},
	{3529, "reduction in refunds", enable3529},
	{3855, "PUSH0 opcode", enable3855},
	{3860, "limit and meter initcode", enable3860},
	{4844, "BLOBHASH opcode", enable4844},
	{5656, "MCOPY opcode", enable5656},
	{6780, "SELFDESTRUCT only in same transaction", enable6780},
	{7516, "BLOBBASEFEE opcode", enable7516},
}

func lookupEIP(num int) (eip, bool) {
	i, found := slices.BinarySearchFunc(eips, num, func(e eip, n int) int { return e.number - n })
	if !found {
		return eip{}, false
	}
	return eips[i], true
}

// EnableEIP applies the given EIP to jt in place. Callers must pass a copy,
// the fork tables are shared.
func EnableEIP(eipNum int, jt *JumpTable) error {
	e, ok := lookupEIP(eipNum)
	if !ok {
		return fmt.Errorf("undefined eip %d", eipNum)
	}
	e.enable(jt)
	return nil
}

// ValidEip reports whether eipNum can be passed in Config.ExtraEips.
func ValidEip(eipNum int) bool {
	_, ok := lookupEIP(eipNum)
	return ok
}

// ActivateableEips lists the numbers accepted by EnableEIP, ascending.
func ActivateableEips() []string {
	nums := make([]string, len(eips))
	for i, e := range eips {
		nums[i] = strconv.Itoa(e.number)
	}
	return nums
}

// EIPName returns a short description of the EIP, empty if it is unknown.
func EIPName(eipNum int) string {
	e, _ := lookupEIP(eipNum)
	return e.name
}

// enable1884: SLOAD, BALANCE and EXTCODEHASH get more expensive, SELFBALANCE
// is added.
func enable1884(jt *JumpTable) {
	jt[SLOAD].constantGas = params.SloadGasEIP1884
	jt[BALANCE].constantGas = params.BalanceGasEIP1884
	jt[EXTCODEHASH].constantGas = params.ExtcodeHashGasEIP1884

	jt[SELFBALANCE] = &operation{
		execute:     opSelfBalance,
		constantGas: GasFastStep,
		minStack:    minStack(0, 1),
		maxStack:    maxStack(0, 1),
	}
}

func opSelfBalance(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	frame.Stack.push(interpreter.evm.StateDB.GetBalance(frame.Address()))
	return nil, nil
}

func enable1344(jt *JumpTable) {
	jt[CHAINID] = &operation{
		execute:     opChainID,
		constantGas: GasQuickStep,
		minStack:    minStack(0, 1),
		maxStack:    maxStack(0, 1),
	}
}

// opChainID pushes the EIP-155 chain identifier.
func opChainID(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	chainID, _ := uint256.FromBig(interpreter.evm.chainRules.ChainID)
	frame.Stack.push(chainID)
	return nil, nil
}

func enable2200(jt *JumpTable) {
	jt[SLOAD].constantGas = params.SloadGasEIP2200
	jt[SSTORE].dynamicGas = gasSStoreEIP2200
}

// enable2929 moves the account and slot access costs into dynamic gas that
// depends on the access list. The warm cost stays constant.
func enable2929(jt *JumpTable) {
	jt[SSTORE].dynamicGas = gasSStoreEIP2929

	jt[SLOAD].constantGas = 0
	jt[SLOAD].dynamicGas = gasSLoadEIP2929

	for op, dynamic := range map[OpCode]gasFunc{
		EXTCODECOPY:  gasExtCodeCopyEIP2929,
		EXTCODESIZE:  gasEip2929AccountCheck,
		EXTCODEHASH:  gasEip2929AccountCheck,
		BALANCE:      gasEip2929AccountCheck,
		CALL:         gasCallEIP2929,
		CALLCODE:     gasCallCodeEIP2929,
		STATICCALL:   gasStaticCallEIP2929,
		DELEGATECALL: gasDelegateCallEIP2929,
	} {
		jt[op].constantGas = params.WarmStorageReadCostEIP2929
		jt[op].dynamicGas = dynamic
	}
	// Formerly part of the dynamic cost.
	jt[SELFDESTRUCT].constantGas = params.SelfdestructGasEIP150
	jt[SELFDESTRUCT].dynamicGas = gasSelfdestructEIP2929
}

// enable3529: the lowered refunds are carried by the rules, the table only
// needs the 2929 pricing in place.
func enable3529(jt *JumpTable) {
	jt[SSTORE].dynamicGas = gasSStoreEIP2929
	jt[SELFDESTRUCT].dynamicGas = gasSelfdestructEIP2929
}

func enable3198(jt *JumpTable) {
	jt[BASEFEE] = &operation{
		execute:     opBaseFee,
		constantGas: GasQuickStep,
		minStack:    minStack(0, 1),
		maxStack:    maxStack(0, 1),
	}
}

func opBaseFee(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	baseFee, _ := uint256.FromBig(interpreter.evm.Context.BaseFee)
	frame.Stack.push(baseFee)
	return nil, nil
}

func enable1153(jt *JumpTable) {
	jt[TLOAD] = &operation{
		execute:     opTload,
		constantGas: params.WarmStorageReadCostEIP2929,
		minStack:    minStack(1, 1),
		maxStack:    maxStack(1, 1),
	}
	jt[TSTORE] = &operation{
		execute:     opTstore,
		constantGas: params.WarmStorageReadCostEIP2929,
		minStack:    minStack(2, 0),
		maxStack:    maxStack(2, 0),
	}
}

func opTload(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	loc := frame.Stack.peek()
	val := interpreter.evm.StateDB.GetTransientState(frame.Address(), common.Hash(loc.Bytes32()))
	loc.SetBytes(val.Bytes())
	return nil, nil
}

// opTstore is a state write and fails in a static frame.
func opTstore(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	if frame.Context.ReadOnly {
		return nil, ErrWriteProtection
	}
	loc, val := frame.Stack.pop(), frame.Stack.pop()
	interpreter.evm.StateDB.SetTransientState(frame.Address(), loc.Bytes32(), val.Bytes32())
	return nil, nil
}

func enable3855(jt *JumpTable) {
	jt[PUSH0] = &operation{
		execute:     opPush0,
		constantGas: GasQuickStep,
		minStack:    minStack(0, 1),
		maxStack:    maxStack(0, 1),
	}
}

func opPush0(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	frame.Stack.push(new(uint256.Int))
	return nil, nil
}

func enable3860(jt *JumpTable) {
	jt[CREATE].dynamicGas = gasCreateEip3860
	jt[CREATE2].dynamicGas = gasCreate2Eip3860
}

func enable5656(jt *JumpTable) {
	jt[MCOPY] = &operation{
		execute:     opMcopy,
		constantGas: GasFastestStep,
		dynamicGas:  gasMcopy,
		minStack:    minStack(3, 0),
		maxStack:    maxStack(3, 0),
		memorySize:  memoryMcopy,
	}
}

// opMcopy relies on memoryMcopy having rejected operands above 64 bits.
func opMcopy(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	dst, src, length := frame.Stack.pop(), frame.Stack.pop(), frame.Stack.pop()
	frame.Memory.Copy(dst.Uint64(), src.Uint64(), length.Uint64())
	return nil, nil
}

func enable4844(jt *JumpTable) {
	jt[BLOBHASH] = &operation{
		execute:     opBlobHash,
		constantGas: GasFastestStep,
		minStack:    minStack(1, 1),
		maxStack:    maxStack(1, 1),
	}
}

// opBlobHash replaces the index with the versioned hash, zero if out of range.
func opBlobHash(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	index := frame.Stack.peek()
	hashes := interpreter.evm.TxContext.BlobHashes
	if index.LtUint64(uint64(len(hashes))) {
		hash := hashes[index.Uint64()]
		index.SetBytes32(hash[:])
	} else {
		index.Clear()
	}
	return nil, nil
}

func enable7516(jt *JumpTable) {
	jt[BLOBBASEFEE] = &operation{
		execute:     opBlobBaseFee,
		constantGas: GasQuickStep,
		minStack:    minStack(0, 1),
		maxStack:    maxStack(0, 1),
	}
}

func opBlobBaseFee(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error) {
	blobBaseFee, _ := uint256.FromBig(interpreter.evm.Context.BlobBaseFee)
	frame.Stack.push(blobBaseFee)
	return nil, nil
}

func enable6780(jt *JumpTable) {
	jt[SELFDESTRUCT] = &operation{
		execute:     opSelfdestruct6780,
		dynamicGas:  gasSelfdestructEIP2929,
		constantGas: params.SelfdestructGasEIP150,
		minStack:    minStack(1, 0),
		maxStack:    maxStack(1, 0),
	}
}
