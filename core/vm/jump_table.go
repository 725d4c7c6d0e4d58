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
	"fmt"

	"github.com/sunyihoo/go-evm/params"
)

type (
	executionFunc func(pc *uint64, interpreter *EVMInterpreter, frame *Frame) ([]byte, error)
	gasFunc       func(evm *EVM, frame *Frame, memorySize uint64) (uint64, error) // last parameter is the requested memory size as a uint64
	// memorySizeFunc returns the required size, and whether the operation overflowed a uint64
	memorySizeFunc func(*Stack) (size uint64, overflow bool)
)

type operation struct {
	// execute is the operation function
	execute     executionFunc
	constantGas uint64
	dynamicGas  gasFunc
	// minStack tells how many stack items are required
	minStack int
	// maxStack specifies the max length the stack can have for this operation
	// to not overflow the stack.
	maxStack int

	// memorySize returns the memory size required for the operation
	memorySize memorySizeFunc

	// undefined denotes if the instruction is not officially defined in the jump table
	undefined bool
}

var (
	frontierInstructionSet         = newFrontierInstructionSet()
	homesteadInstructionSet        = newHomesteadInstructionSet()
	tangerineWhistleInstructionSet = newTangerineWhistleInstructionSet()
	spuriousDragonInstructionSet   = newSpuriousDragonInstructionSet()
	byzantiumInstructionSet        = newByzantiumInstructionSet()
	constantinopleInstructionSet   = newConstantinopleInstructionSet()
	istanbulInstructionSet         = newIstanbulInstructionSet()
	berlinInstructionSet           = newBerlinInstructionSet()
	londonInstructionSet           = newLondonInstructionSet()
	mergeInstructionSet            = newMergeInstructionSet()
	shanghaiInstructionSet         = newShanghaiInstructionSet()
	cancunInstructionSet           = newCancunInstructionSet()
	pragueInstructionSet           = newPragueInstructionSet()
)

// JumpTable contains the EVM opcodes supported at a given fork.
type JumpTable [256]*operation

func validate(jt JumpTable) JumpTable {
	for i, op := range jt {
		if op == nil {
			panic(fmt.Sprintf("op %#x is not set", i))
		}
		// The interpreter has an assumption that if the memorySize function is
		// set, then the dynamicGas function is also set. This is a somewhat
		// arbitrary assumption, and can be removed if we need to -- but it
		// allows us to avoid a condition check. As long as we have that assumption
		// in there, this little sanity check prevents us from merging in a
		// change which violates it.
		if op.memorySize != nil && op.dynamicGas == nil {
			panic(fmt.Sprintf("op %v has dynamic memory but not dynamic gas", OpCode(i).String()))
		}
	}
	return jt
}

// instructionSetForRules returns the shared jump table of the active fork.
// The returned table must not be modified.
func instructionSetForRules(rules params.Rules) *JumpTable {
	switch {
	case rules.IsPrague:
		return &pragueInstructionSet
	case rules.IsCancun:
		return &cancunInstructionSet
	case rules.IsShanghai:
		return &shanghaiInstructionSet
	case rules.IsMerge:
		return &mergeInstructionSet
	case rules.IsLondon:
		return &londonInstructionSet
	case rules.IsBerlin:
		return &berlinInstructionSet
	case rules.IsIstanbul:
		return &istanbulInstructionSet
	case rules.IsConstantinople:
		return &constantinopleInstructionSet
	case rules.IsByzantium:
		return &byzantiumInstructionSet
	case rules.IsEIP158:
		return &spuriousDragonInstructionSet
	case rules.IsEIP150:
		return &tangerineWhistleInstructionSet
	case rules.IsHomestead:
		return &homesteadInstructionSet
	default:
		return &frontierInstructionSet
	}
}

// newPragueInstructionSet returns the instructions active from Prague. No
// opcode changed at this fork outside of account code delegation and EOF,
// neither of which this engine executes.
func newPragueInstructionSet() JumpTable {
	instructionSet := newCancunInstructionSet()
	return validate(instructionSet)
}

func newCancunInstructionSet() JumpTable {
	instructionSet := newShanghaiInstructionSet()
	enable4844(&instructionSet) // EIP-4844 (BLOBHASH opcode)
	enable7516(&instructionSet) // EIP-7516 (BLOBBASEFEE opcode)
	enable1153(&instructionSet) // EIP-1153 "Transient Storage"
	enable5656(&instructionSet) // EIP-5656 (MCOPY opcode)
	enable6780(&instructionSet) // EIP-6780 SELFDESTRUCT only in same transaction
	return validate(instructionSet)
}

func newShanghaiInstructionSet() JumpTable {
	instructionSet := newMergeInstructionSet()
	enable3855(&instructionSet) // PUSH0 instruction
	enable3860(&instructionSet) // Limit and meter initcode
	return validate(instructionSet)
}

func newMergeInstructionSet() JumpTable {
	instructionSet := newLondonInstructionSet()
	instructionSet[PREVRANDAO] = &operation{
		execute:     opRandom,
		constantGas: GasQuickStep,
		minStack:    minStack(0, 1),
		maxStack:    maxStack(0, 1),
	}
	return validate(instructionSet)
}

// newLondonInstructionSet returns the frontier, homestead, byzantium,
// constantinople, istanbul, petersburg, berlin and london instructions.
func newLondonInstructionSet() JumpTable {
	instructionSet := newBerlinInstructionSet()
	enable3529(&instructionSet) // EIP-3529: Reduction in refunds https://eips.ethereum.org/EIPS/eip-3529
	enable3198(&instructionSet) // Base fee opcode https://eips.ethereum.org/EIPS/eip-3198
	return validate(instructionSet)
}

// newBerlinInstructionSet returns the frontier, homestead, byzantium,
// constantinople, istanbul, petersburg and berlin instructions.
func newBerlinInstructionSet() JumpTable {
	instructionSet := newIstanbulInstructionSet()
	enable2929(&instructionSet) // Gas cost increases for state access opcodes https://eips.ethereum.org/EIPS/eip-2929
	return validate(instructionSet)
}

// newIstanbulInstructionSet returns the frontier, homestead, byzantium,
// constantinople, istanbul and petersburg instructions.
func newIstanbulInstructionSet() JumpTable {
	instructionSet := newConstantinopleInstructionSet()

	enable1344(&instructionSet) // ChainID opcode - https://eips.ethereum.org/EIPS/eip-1344
	enable1884(&instructionSet) // Reprice reader opcodes - https://eips.ethereum.org/EIPS/eip-1884
	enable2200(&instructionSet) // Net metered SSTORE - https://eips.ethereum.org/EIPS/eip-2200

	return validate(instructionSet)
}

// newConstantinopleInstructionSet returns the frontier, homestead,
// byzantium and constantinople instructions.
func newConstantinopleInstructionSet() JumpTable {
	instructionSet := newByzantiumInstructionSet()
	instructionSet[SHL] = &operation{
		execute:     opSHL,
		constantGas: GasFastestStep,
		minStack:    minStack(2, 1),
		maxStack:    maxStack(2, 1),
	}
	instructionSet[SHR] = &operation{
		execute:     opSHR,
		constantGas: GasFastestStep,
		minStack:    minStack(2, 1),
		maxStack:    maxStack(2, 1),
	}
	instructionSet[SAR] = &operation{
		execute:     opSAR,
		constantGas: GasFastestStep,
		minStack:    minStack(2, 1),
		maxStack:    maxStack(2, 1),
	}
	instructionSet[EXTCODEHASH] = &operation{
		execute:     opExtCodeHash,
		constantGas: params.ExtcodeHashGasConstantinople,
		minStack:    minStack(1, 1),
		maxStack:    maxStack(1, 1),
	}
	instructionSet[CREATE2] = &operation{
		execute:     opCreate2,
		constantGas: params.Create2Gas,
		dynamicGas:  gasCreate2,
		minStack:    minStack(4, 1),
		maxStack:    maxStack(4, 1),
		memorySize:  memoryCreate2,
	}
	return validate(instructionSet)
}

// newByzantiumInstructionSet returns the frontier, homestead and
// byzantium instructions.
func newByzantiumInstructionSet() JumpTable {
	instructionSet := newSpuriousDragonInstructionSet()
	instructionSet[STATICCALL] = &operation{
		execute:     opStaticCall,
		constantGas: params.CallGasEIP150,
		dynamicGas:  gasStaticCall,
		minStack:    minStack(6, 1),
		maxStack:    maxStack(6, 1),
		memorySize:  memoryStaticCall,
	}
	instructionSet[RETURNDATASIZE] = &operation{
		execute:     opReturnDataSize,
		constantGas: GasQuickStep,
		minStack:    minStack(0, 1),
		maxStack:    maxStack(0, 1),
	}
	instructionSet[RETURNDATACOPY] = &operation{
		execute:     opReturnDataCopy,
		constantGas: GasFastestStep,
		dynamicGas:  gasReturnDataCopy,
		minStack:    minStack(3, 0),
		maxStack:    maxStack(3, 0),
		memorySize:  memoryReturnDataCopy,
	}
	instructionSet[REVERT] = &operation{
		execute:    opRevert,
		dynamicGas: gasRevert,
		minStack:   minStack(2, 0),
		maxStack:   maxStack(2, 0),
		memorySize: memoryRevert,
	}
	return validate(instructionSet)
}

// EIP 158 a.k.a Spurious Dragon
func newSpuriousDragonInstructionSet() JumpTable {
	instructionSet := newTangerineWhistleInstructionSet()
	instructionSet[EXP].dynamicGas = gasExpEIP158
	return validate(instructionSet)
}

// EIP 150 a.k.a Tangerine Whistle
func newTangerineWhistleInstructionSet() JumpTable {
	instructionSet := newHomesteadInstructionSet()
	instructionSet[BALANCE].constantGas = params.BalanceGasEIP150
	instructionSet[EXTCODESIZE].constantGas = params.ExtcodeSizeGasEIP150
	instructionSet[SLOAD].constantGas = params.SloadGasEIP150
	instructionSet[EXTCODECOPY].constantGas = params.ExtcodeCopyBaseEIP150
	instructionSet[CALL].constantGas = params.CallGasEIP150
	instructionSet[CALLCODE].constantGas = params.CallGasEIP150
	instructionSet[DELEGATECALL].constantGas = params.CallGasEIP150
	return validate(instructionSet)
}

// newHomesteadInstructionSet returns the frontier and homestead
// instructions that can be executed during the homestead phase.
func newHomesteadInstructionSet() JumpTable {
	instructionSet := newFrontierInstructionSet()
	instructionSet[DELEGATECALL] = &operation{
		execute:     opDelegateCall,
		dynamicGas:  gasDelegateCall,
		constantGas: params.CallGasFrontier,
		minStack:    minStack(6, 1),
		maxStack:    maxStack(6, 1),
		memorySize:  memoryDelegateCall,
	}
	return validate(instructionSet)
}

// simpleOp builds an operation without dynamic cost that pops and pushes a
// fixed number of items.
func simpleOp(execute executionFunc, gas uint64, pops, pushes int) *operation {
	return &operation{
		execute:     execute,
		constantGas: gas,
		minStack:    minStack(pops, pushes),
		maxStack:    maxStack(pops, pushes),
	}
}

// newFrontierInstructionSet returns the frontier instructions
// that can be executed during the frontier phase.
func newFrontierInstructionSet() JumpTable {
	tbl := JumpTable{
		STOP:       simpleOp(opStop, 0, 0, 0),
		ADD:        simpleOp(opAdd, GasFastestStep, 2, 1),
		MUL:        simpleOp(opMul, GasFastStep, 2, 1),
		SUB:        simpleOp(opSub, GasFastestStep, 2, 1),
		DIV:        simpleOp(opDiv, GasFastStep, 2, 1),
		SDIV:       simpleOp(opSdiv, GasFastStep, 2, 1),
		MOD:        simpleOp(opMod, GasFastStep, 2, 1),
		SMOD:       simpleOp(opSmod, GasFastStep, 2, 1),
		ADDMOD:     simpleOp(opAddmod, GasMidStep, 3, 1),
		MULMOD:     simpleOp(opMulmod, GasMidStep, 3, 1),
		SIGNEXTEND: simpleOp(opSignExtend, GasFastStep, 2, 1),
		EXP: {
			execute:    opExp,
			dynamicGas: gasExpFrontier,
			minStack:   minStack(2, 1),
			maxStack:   maxStack(2, 1),
		},
		LT:     simpleOp(opLt, GasFastestStep, 2, 1),
		GT:     simpleOp(opGt, GasFastestStep, 2, 1),
		SLT:    simpleOp(opSlt, GasFastestStep, 2, 1),
		SGT:    simpleOp(opSgt, GasFastestStep, 2, 1),
		EQ:     simpleOp(opEq, GasFastestStep, 2, 1),
		ISZERO: simpleOp(opIszero, GasFastestStep, 1, 1),
		AND:    simpleOp(opAnd, GasFastestStep, 2, 1),
		OR:     simpleOp(opOr, GasFastestStep, 2, 1),
		XOR:    simpleOp(opXor, GasFastestStep, 2, 1),
		NOT:    simpleOp(opNot, GasFastestStep, 1, 1),
		BYTE:   simpleOp(opByte, GasFastestStep, 2, 1),
		KECCAK256: {
			execute:     opKeccak256,
			constantGas: params.Keccak256Gas,
			dynamicGas:  gasKeccak256,
			minStack:    minStack(2, 1),
			maxStack:    maxStack(2, 1),
			memorySize:  memoryKeccak256,
		},
		ADDRESS:      simpleOp(opAddress, GasQuickStep, 0, 1),
		BALANCE:      simpleOp(opBalance, params.BalanceGasFrontier, 1, 1),
		ORIGIN:       simpleOp(opOrigin, GasQuickStep, 0, 1),
		CALLER:       simpleOp(opCaller, GasQuickStep, 0, 1),
		CALLVALUE:    simpleOp(opCallValue, GasQuickStep, 0, 1),
		CALLDATALOAD: simpleOp(opCallDataLoad, GasFastestStep, 1, 1),
		CALLDATASIZE: simpleOp(opCallDataSize, GasQuickStep, 0, 1),
		CALLDATACOPY: {
			execute:     opCallDataCopy,
			constantGas: GasFastestStep,
			dynamicGas:  gasCallDataCopy,
			minStack:    minStack(3, 0),
			maxStack:    maxStack(3, 0),
			memorySize:  memoryCallDataCopy,
		},
		CODESIZE: simpleOp(opCodeSize, GasQuickStep, 0, 1),
		CODECOPY: {
			execute:     opCodeCopy,
			constantGas: GasFastestStep,
			dynamicGas:  gasCodeCopy,
			minStack:    minStack(3, 0),
			maxStack:    maxStack(3, 0),
			memorySize:  memoryCodeCopy,
		},
		GASPRICE:    simpleOp(opGasprice, GasQuickStep, 0, 1),
		EXTCODESIZE: simpleOp(opExtCodeSize, params.ExtcodeSizeGasFrontier, 1, 1),
		EXTCODECOPY: {
			execute:     opExtCodeCopy,
			constantGas: params.ExtcodeCopyBaseFrontier,
			dynamicGas:  gasExtCodeCopy,
			minStack:    minStack(4, 0),
			maxStack:    maxStack(4, 0),
			memorySize:  memoryExtCodeCopy,
		},
		BLOCKHASH:  simpleOp(opBlockhash, GasExtStep, 1, 1),
		COINBASE:   simpleOp(opCoinbase, GasQuickStep, 0, 1),
		TIMESTAMP:  simpleOp(opTimestamp, GasQuickStep, 0, 1),
		NUMBER:     simpleOp(opNumber, GasQuickStep, 0, 1),
		DIFFICULTY: simpleOp(opDifficulty, GasQuickStep, 0, 1),
		GASLIMIT:   simpleOp(opGasLimit, GasQuickStep, 0, 1),
		POP:        simpleOp(opPop, GasQuickStep, 1, 0),
		MLOAD: {
			execute:     opMload,
			constantGas: GasFastestStep,
			dynamicGas:  gasMLoad,
			minStack:    minStack(1, 1),
			maxStack:    maxStack(1, 1),
			memorySize:  memoryMLoad,
		},
		MSTORE: {
			execute:     opMstore,
			constantGas: GasFastestStep,
			dynamicGas:  gasMStore,
			minStack:    minStack(2, 0),
			maxStack:    maxStack(2, 0),
			memorySize:  memoryMStore,
		},
		MSTORE8: {
			execute:     opMstore8,
			constantGas: GasFastestStep,
			dynamicGas:  gasMStore8,
			memorySize:  memoryMStore8,
			minStack:    minStack(2, 0),
			maxStack:    maxStack(2, 0),
		},
		SLOAD: simpleOp(opSload, params.SloadGasFrontier, 1, 1),
		SSTORE: {
			execute:    opSstore,
			dynamicGas: gasSStore,
			minStack:   minStack(2, 0),
			maxStack:   maxStack(2, 0),
		},
		JUMP:     simpleOp(opJump, GasMidStep, 1, 0),
		JUMPI:    simpleOp(opJumpi, GasSlowStep, 2, 0),
		PC:       simpleOp(opPc, GasQuickStep, 0, 1),
		MSIZE:    simpleOp(opMsize, GasQuickStep, 0, 1),
		GAS:      simpleOp(opGas, GasQuickStep, 0, 1),
		JUMPDEST: simpleOp(opJumpdest, params.JumpdestGas, 0, 0),
		CREATE: {
			execute:     opCreate,
			constantGas: params.CreateGas,
			dynamicGas:  gasCreate,
			minStack:    minStack(3, 1),
			maxStack:    maxStack(3, 1),
			memorySize:  memoryCreate,
		},
		CALL: {
			execute:     opCall,
			constantGas: params.CallGasFrontier,
			dynamicGas:  gasCall,
			minStack:    minStack(7, 1),
			maxStack:    maxStack(7, 1),
			memorySize:  memoryCall,
		},
		CALLCODE: {
			execute:     opCallCode,
			constantGas: params.CallGasFrontier,
			dynamicGas:  gasCallCode,
			minStack:    minStack(7, 1),
			maxStack:    maxStack(7, 1),
			memorySize:  memoryCall,
		},
		RETURN: {
			execute:    opReturn,
			dynamicGas: gasReturn,
			minStack:   minStack(2, 0),
			maxStack:   maxStack(2, 0),
			memorySize: memoryReturn,
		},
		SELFDESTRUCT: {
			execute:    opSelfdestruct,
			dynamicGas: gasSelfdestruct,
			minStack:   minStack(1, 0),
			maxStack:   maxStack(1, 0),
		},
	}
	tbl[PUSH1] = simpleOp(opPush1, GasFastestStep, 0, 1)
	for i := 2; i <= 32; i++ {
		tbl[PUSH1+OpCode(i-1)] = simpleOp(makePush(uint64(i), i), GasFastestStep, 0, 1)
	}
	for i := 1; i <= 16; i++ {
		tbl[DUP1+OpCode(i-1)] = &operation{
			execute:     makeDup(int64(i)),
			constantGas: GasFastestStep,
			minStack:    minDupStack(i),
			maxStack:    maxDupStack(i),
		}
		tbl[SWAP1+OpCode(i-1)] = &operation{
			execute:     makeSwap(i),
			constantGas: GasFastestStep,
			minStack:    minSwapStack(i + 1),
			maxStack:    maxSwapStack(i + 1),
		}
	}
	for i := 0; i <= 4; i++ {
		tbl[LOG0+OpCode(i)] = &operation{
			execute:    makeLog(i),
			dynamicGas: makeGasLog(uint64(i)),
			minStack:   minStack(i+2, 0),
			maxStack:   maxStack(i+2, 0),
			memorySize: memoryLog,
		}
	}
	// Fill all unassigned slots with opUndefined.
	for i, entry := range tbl {
		if entry == nil {
			tbl[i] = &operation{execute: opUndefined, maxStack: maxStack(0, 0), undefined: true}
		}
	}
	return validate(tbl)
}

func copyJumpTable(source *JumpTable) *JumpTable {
	dest := *source
	for i, op := range source {
		if op != nil {
			opCopy := *op
			dest[i] = &opCopy
		}
	}
	return &dest
}
