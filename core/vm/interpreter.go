// Copyright 2014 The go-ethereum Authors
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

	"github.com/sunyihoo/go-evm/common"
	"github.com/sunyihoo/go-evm/common/math"
	"github.com/sunyihoo/go-evm/core/tracing"
	"github.com/sunyihoo/go-evm/crypto"
	"github.com/sunyihoo/go-evm/log"
	"github.com/sunyihoo/go-evm/params"
)

// Config are the configuration options for the Interpreter
// Config 是解释器的配置选项
type Config struct {
	Tracer        *tracing.Hooks
	NoBaseFee     bool           // Forces the EIP-1559 baseFee to 0 (needed for 0 price calls)
	ExtraEips     []int          // Additional EIPS that are to be enabled
	MaxCallDepth  int            // Nesting limit below the top-level frame, params.CallCreateDepth if zero
	AnalysisCache *AnalysisCache // Jump destination analyses shared between EVMs, optional
	StatsEnabled  bool           // Collect per-execution Stats
}

// EVMInterpreter represents an EVM interpreter
// EVMInterpreter 表示一个EVM解释器
type EVMInterpreter struct {
	evm   *EVM
	table *JumpTable

	hasher    crypto.KeccakState // Keccak256 hasher instance shared across opcodes
	hasherBuf common.Hash        // Keccak256 hasher result array shared across opcodes
}

// NewEVMInterpreter returns a new instance of the Interpreter.
// NewEVMInterpreter 返回一个新的解释器实例。
func NewEVMInterpreter(evm *EVM) *EVMInterpreter {
	table := instructionSetForRules(evm.chainRules)
	var extraEips []int
	if len(evm.Config.ExtraEips) > 0 {
		// Deep-copy jumptable to prevent modification of opcodes in other tables
		table = copyJumpTable(table)
	}
	for _, eip := range evm.Config.ExtraEips {
		if err := EnableEIP(eip, table); err != nil {
			// Disable it, so caller can check if it's activated or not
			log.Error("EIP activation failed", "eip", eip, "error", err)
		} else {
			extraEips = append(extraEips, eip)
		}
	}
	evm.Config.ExtraEips = extraEips
	return &EVMInterpreter{evm: evm, table: table}
}

// Run loops and evaluates the frame's code and returns the return byte-slice
// and an error if one occurred.
//
// It's important to note that any errors returned by the interpreter should be
// considered a revert-and-consume-all-gas operation except for
// ErrExecutionReverted which means revert-and-keep-gas-left. The frame's
// snapshot is restored by the caller, never here.
//
// Run 循环执行操作码，每一步都在产生副作用之前扣除 gas。
// 除 ErrExecutionReverted 外，任何错误都会消耗全部剩余 gas。
func (in *EVMInterpreter) Run(frame *Frame) (ret []byte, err error) {
	// Don't bother with the execution if there's no code.
	if frame.Context.Code.Len() == 0 {
		return nil, nil
	}

	var (
		op OpCode // current opcode
		// For optimisation reason we're using uint64 as the program counter.
		// It's theoretically possible to go above 2^64. The YP defines the PC
		// to be uint256. Practically much less so feasible.
		pc   = frame.PC
		cost uint64
		// copies used by tracer
		pcCopy  uint64 // needed for the deferred EVMLogger
		gasCopy uint64 // for EVMLogger to log gas remaining before execution
		logged  bool   // deferred EVMLogger should ignore already logged steps
		res     []byte // result of the opcode execution function
		tracer  = in.evm.Config.Tracer
		debug   = tracer != nil
		stats   = in.evm.stats
		depth   = frame.Context.Depth + 1
	)
	defer func() {
		frame.PC = pc
	}()
	if debug {
		defer func() { // this deferred method handles exit-with-error
			if err == nil {
				return
			}
			if !logged && tracer.OnOpcode != nil {
				tracer.OnOpcode(pcCopy, byte(op), gasCopy, cost, frame, frame.ReturnData, depth, VMErrorFromErr(err))
			}
			if logged && tracer.OnFault != nil {
				tracer.OnFault(pcCopy, byte(op), gasCopy, cost, frame, depth, VMErrorFromErr(err))
			}
		}()
	}
	// The Interpreter main run loop (contextual). This loop runs until either an
	// explicit STOP, RETURN or SELFDESTRUCT is executed, an error occurred during
	// the execution of one of the operations or until the done flag is set by the
	// parent context.
	for {
		if debug {
			// Capture pre-execution values for tracing.
			logged, pcCopy, gasCopy = false, pc, frame.Gas
		}
		if stats != nil {
			stats.Opcodes++
		}
		op = frame.Context.Code.GetOp(pc)
		operation := in.table[op]
		cost = operation.constantGas // For tracing

		// Static gas is charged before anything else is looked at, so a
		// frame that cannot pay for the instruction halts without any of its
		// effects becoming visible.
		if frame.Gas < cost {
			return nil, ErrOutOfGas
		}
		frame.Gas -= cost

		// Validate stack
		if sLen := frame.Stack.len(); sLen < operation.minStack {
			return nil, &ErrStackUnderflow{stackLen: sLen, required: operation.minStack}
		} else if sLen > operation.maxStack {
			return nil, &ErrStackOverflow{stackLen: sLen, limit: operation.maxStack}
		}

		if operation.dynamicGas != nil {
			// All ops with a dynamic memory usage also has a dynamic gas cost.
			var memorySize uint64
			// calculate the new memory size and expand the memory to fit
			// the operation
			// Memory check needs to be done prior to evaluating the dynamic gas portion,
			// to detect calculation overflows
			if operation.memorySize != nil {
				memSize, overflow := operation.memorySize(frame.Stack)
				if overflow {
					return nil, ErrGasUintOverflow
				}
				// memory is expanded in words of 32 bytes. Gas
				// is also calculated in words.
				if memorySize, overflow = math.SafeMul(toWordSize(memSize), 32); overflow {
					return nil, ErrGasUintOverflow
				}
			}
			// Consume the gas and return an error if not enough gas is available.
			// cost is explicitly set so that the capture state defer method can get the proper cost
			var dynamicCost uint64
			dynamicCost, err = operation.dynamicGas(in.evm, frame, memorySize)
			cost += dynamicCost // for tracing
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrOutOfGas, err)
			}
			if frame.Gas < dynamicCost {
				return nil, ErrOutOfGas
			}
			frame.Gas -= dynamicCost

			// Do tracing before memory expansion
			if debug {
				if tracer.OnGasChange != nil {
					tracer.OnGasChange(gasCopy, gasCopy-cost, tracing.GasChangeCallOpCode)
				}
				if tracer.OnOpcode != nil {
					tracer.OnOpcode(pc, byte(op), gasCopy, cost, frame, frame.ReturnData, depth, VMErrorFromErr(err))
					logged = true
				}
			}
			if memorySize > 0 {
				frame.Memory.Resize(memorySize)
			}
		} else if debug {
			if tracer.OnGasChange != nil {
				tracer.OnGasChange(gasCopy, gasCopy-cost, tracing.GasChangeCallOpCode)
			}
			if tracer.OnOpcode != nil {
				tracer.OnOpcode(pc, byte(op), gasCopy, cost, frame, frame.ReturnData, depth, VMErrorFromErr(err))
				logged = true
			}
		}

		// execute the operation
		res, err = operation.execute(&pc, in, frame)
		if err != nil {
			break
		}
		pc++
	}

	if err == errStopToken {
		err = nil // clear stop token error
	}

	return res, err
}

// maxCallDepth resolves the configured nesting limit.
func (c *Config) maxCallDepth() int {
	if c.MaxCallDepth > 0 {
		return c.MaxCallDepth
	}
	return int(params.CallCreateDepth)
}
