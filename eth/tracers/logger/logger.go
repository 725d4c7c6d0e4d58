// Copyright 2021 The go-ethereum Authors
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

// Package logger implements opcode level tracers over the tracing hooks of
// the EVM.
package logger

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"sync/atomic"

	"github.com/holiman/uint256"
	"github.com/sunyihoo/go-evm/common"
	"github.com/sunyihoo/go-evm/common/hexutil"
	"github.com/sunyihoo/go-evm/common/math"
	"github.com/sunyihoo/go-evm/core/tracing"
	"github.com/sunyihoo/go-evm/core/types"
	"github.com/sunyihoo/go-evm/core/vm"
)

// Storage represents a contract's storage.
type Storage map[common.Hash]common.Hash

// Copy duplicates the current storage.
func (s Storage) Copy() Storage {
	cpy := make(Storage, len(s))
	for key, value := range s {
		cpy[key] = value
	}
	return cpy
}

// Config are the configuration options for structured logger the EVM
type Config struct {
	EnableMemory     bool `toml:",omitempty"` // enable memory capture
	DisableStack     bool `toml:",omitempty"` // disable stack capture
	DisableStorage   bool `toml:",omitempty"` // disable storage capture
	EnableReturnData bool `toml:",omitempty"` // enable return data capture
	Limit            int  `toml:",omitempty"` // maximum length of output, but zero means unlimited
}

// StructLog is emitted to the EVM each cycle and lists information about the current internal state
// prior to the execution of the statement.
type StructLog struct {
	Pc            uint64
	Op            vm.OpCode
	Gas           uint64
	GasCost       uint64
	Memory        []byte
	MemorySize    int
	Stack         []uint256.Int
	ReturnData    []byte
	Storage       map[common.Hash]common.Hash
	Depth         int
	RefundCounter uint64
	Err           error
}

// OpName formats the operand name in a human-readable format.
func (s *StructLog) OpName() string {
	return s.Op.String()
}

// ErrorString formats the log's error as a string.
func (s *StructLog) ErrorString() string {
	if s.Err != nil {
		return s.Err.Error()
	}
	return ""
}

// MarshalJSON encodes the log in the format emitted by the JSON logger.
func (s StructLog) MarshalJSON() ([]byte, error) {
	type structLog struct {
		Pc            uint64              `json:"pc"`
		Op            vm.OpCode           `json:"op"`
		Gas           math.HexOrDecimal64 `json:"gas"`
		GasCost       math.HexOrDecimal64 `json:"gasCost"`
		Memory        hexutil.Bytes       `json:"memory,omitempty"`
		MemorySize    int                 `json:"memSize"`
		Stack         []string            `json:"stack"`
		ReturnData    hexutil.Bytes       `json:"returnData,omitempty"`
		Depth         int                 `json:"depth"`
		RefundCounter uint64              `json:"refund"`
		OpName        string              `json:"opName"`
		ErrorString   string              `json:"error,omitempty"`
	}
	enc := structLog{
		Pc:            s.Pc,
		Op:            s.Op,
		Gas:           math.HexOrDecimal64(s.Gas),
		GasCost:       math.HexOrDecimal64(s.GasCost),
		Memory:        s.Memory,
		MemorySize:    s.MemorySize,
		ReturnData:    s.ReturnData,
		Depth:         s.Depth,
		RefundCounter: s.RefundCounter,
		OpName:        s.OpName(),
		ErrorString:   s.ErrorString(),
	}
	if s.Stack != nil {
		enc.Stack = make([]string, len(s.Stack))
		for i, item := range s.Stack {
			enc.Stack[i] = item.Hex()
		}
	}
	return json.Marshal(&enc)
}

// StructLogger is an EVM state logger collecting a StructLog per executed
// opcode.
//
// StructLogger can capture state based on the given Log configuration and also keeps
// a track record of modified storage which is used in reporting snapshots of the
// contract their storage.
type StructLogger struct {
	cfg Config
	env *tracing.VMContext

	storage map[common.Address]Storage
	logs    []StructLog
	output  []byte
	err     error
	usedGas uint64

	interrupt atomic.Bool // Atomic flag to signal execution interruption
	reason    error       // Textual reason for the interruption
}

// NewStructLogger returns a new logger
func NewStructLogger(cfg *Config) *StructLogger {
	logger := &StructLogger{
		storage: make(map[common.Address]Storage),
	}
	if cfg != nil {
		logger.cfg = *cfg
	}
	return logger
}

// Hooks returns the tracing hooks feeding the logger.
func (l *StructLogger) Hooks() *tracing.Hooks {
	return &tracing.Hooks{
		OnTxStart: l.OnTxStart,
		OnTxEnd:   l.OnTxEnd,
		OnExit:    l.OnExit,
		OnOpcode:  l.OnOpcode,
	}
}

// Reset clears the data held by the logger.
func (l *StructLogger) Reset() {
	l.storage = make(map[common.Address]Storage)
	l.output = make([]byte, 0)
	l.logs = l.logs[:0]
	l.err = nil
	l.usedGas = 0
}

// OnOpcode logs a new structured log message.
//
// OnOpcode also tracks SLOAD/SSTORE ops to track storage change.
func (l *StructLogger) OnOpcode(pc uint64, opcode byte, gas, cost uint64, scope tracing.OpContext, rData []byte, depth int, err error) {
	// If tracing was interrupted, set the error and stop
	if l.interrupt.Load() {
		return
	}
	// check if already accumulated the specified number of logs
	if l.cfg.Limit != 0 && l.cfg.Limit <= len(l.logs) {
		return
	}
	var (
		op     = vm.OpCode(opcode)
		memory = scope.MemoryData()
		stack  = scope.StackData()
	)
	var mem []byte
	if l.cfg.EnableMemory {
		mem = common.CopyBytes(memory)
	}
	var stck []uint256.Int
	if !l.cfg.DisableStack {
		stck = make([]uint256.Int, len(stack))
		copy(stck, stack)
	}
	var (
		contractAddr = scope.Address()
		stackLen     = len(stack)
		storage      Storage
	)
	if !l.cfg.DisableStorage && l.env != nil && (op == vm.SLOAD || op == vm.SSTORE) {
		if l.storage[contractAddr] == nil {
			l.storage[contractAddr] = make(Storage)
		}
		// SLOAD records the value read, SSTORE the value about to be written
		if op == vm.SLOAD && stackLen >= 1 {
			slot := common.Hash(stack[stackLen-1].Bytes32())
			l.storage[contractAddr][slot] = l.env.StateDB.GetState(contractAddr, slot)
			storage = l.storage[contractAddr].Copy()
		} else if op == vm.SSTORE && stackLen >= 2 {
			slot := common.Hash(stack[stackLen-1].Bytes32())
			l.storage[contractAddr][slot] = common.Hash(stack[stackLen-2].Bytes32())
			storage = l.storage[contractAddr].Copy()
		}
	}
	var rdata []byte
	if l.cfg.EnableReturnData {
		rdata = common.CopyBytes(rData)
	}
	var refund uint64
	if l.env != nil {
		refund = l.env.StateDB.GetRefund()
	}
	l.logs = append(l.logs, StructLog{pc, op, gas, cost, mem, len(memory), stck, rdata, storage, depth, refund, err})
}

// OnExit is called a call frame finishes processing.
func (l *StructLogger) OnExit(depth int, output []byte, gasUsed uint64, err error, reverted bool) {
	if depth != 0 {
		return
	}
	l.output = common.CopyBytes(output)
	l.err = err
	l.usedGas = gasUsed
}

// OnTxStart captures the environment the logger reads refunds and storage
// from.
func (l *StructLogger) OnTxStart(env *tracing.VMContext, from common.Address, to *common.Address, gasLimit uint64, value *big.Int) {
	l.env = env
}

// OnTxEnd records the gas used by the whole message.
func (l *StructLogger) OnTxEnd(gasUsed uint64, err error) {
	if err != nil {
		// Don't override vm error
		if l.err == nil {
			l.err = err
		}
		return
	}
	l.usedGas = gasUsed
}

// GetResult returns the captured trace in the debug API result format.
func (l *StructLogger) GetResult() (json.RawMessage, error) {
	// Tracing aborted
	if l.reason != nil {
		return nil, l.reason
	}
	failed := l.err != nil
	// Return data when successful and revert reason when reverted, otherwise empty.
	returnVal := fmt.Sprintf("%x", l.output)
	if failed && !vm.IsRevert(l.err) {
		returnVal = ""
	}
	return json.Marshal(&ExecutionResult{
		Gas:         l.usedGas,
		Failed:      failed,
		ReturnValue: returnVal,
		StructLogs:  l.logs,
	})
}

// Stop terminates execution of the tracer at the first opportune moment.
func (l *StructLogger) Stop(err error) {
	l.reason = err
	l.interrupt.Store(true)
}

// StructLogs returns the captured log entries.
func (l *StructLogger) StructLogs() []StructLog { return l.logs }

// Error returns the VM error captured by the trace.
func (l *StructLogger) Error() error { return l.err }

// Output returns the VM return value captured by the trace.
func (l *StructLogger) Output() []byte { return l.output }

// ExecutionResult groups all structured logs emitted by the EVM
// while replaying a message in debug mode as well as its
// execution status, the amount of gas used and the return value
type ExecutionResult struct {
	Gas         uint64      `json:"gas"`
	Failed      bool        `json:"failed"`
	ReturnValue string      `json:"returnValue"`
	StructLogs  []StructLog `json:"structLogs"`
}

// WriteTrace writes a formatted trace to the given writer
func WriteTrace(writer io.Writer, logs []StructLog) {
	for _, log := range logs {
		fmt.Fprintf(writer, "%-16spc=%08d gas=%v cost=%v", log.Op, log.Pc, log.Gas, log.GasCost)
		if log.Err != nil {
			fmt.Fprintf(writer, " ERROR: %v", log.Err)
		}
		fmt.Fprintln(writer)

		if len(log.Stack) > 0 {
			fmt.Fprintln(writer, "Stack:")
			for i := len(log.Stack) - 1; i >= 0; i-- {
				fmt.Fprintf(writer, "%08d  %s\n", len(log.Stack)-i-1, log.Stack[i].Hex())
			}
		}
		if len(log.Memory) > 0 {
			fmt.Fprintln(writer, "Memory:")
			fmt.Fprint(writer, hex.Dump(log.Memory))
		}
		if len(log.Storage) > 0 {
			fmt.Fprintln(writer, "Storage:")
			for h, item := range log.Storage {
				fmt.Fprintf(writer, "%x: %x\n", h, item)
			}
		}
		if len(log.ReturnData) > 0 {
			fmt.Fprintln(writer, "ReturnData:")
			fmt.Fprint(writer, hex.Dump(log.ReturnData))
		}
		fmt.Fprintln(writer)
	}
}

// WriteLogs writes vm logs in a readable format to the given writer
func WriteLogs(writer io.Writer, logs []*types.Log) {
	for _, log := range logs {
		fmt.Fprintf(writer, "LOG%d: %x bn=%d txi=%x\n", len(log.Topics), log.Address, log.BlockNumber, log.TxIndex)

		for i, topic := range log.Topics {
			fmt.Fprintf(writer, "%08d  %x\n", i, topic)
		}
		fmt.Fprint(writer, hex.Dump(log.Data))
		fmt.Fprintln(writer)
	}
}
