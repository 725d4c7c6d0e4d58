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
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sunyihoo/go-evm/common"
	"github.com/sunyihoo/go-evm/core/types"
)

// Status is the outcome class of an execution.
type Status uint8

const (
	StatusSuccess Status = iota
	StatusRevert
	StatusExceptionalHalt
	StatusPrecompileFailure
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusRevert:
		return "revert"
	case StatusExceptionalHalt:
		return "exceptional halt"
	case StatusPrecompileFailure:
		return "precompile failure"
	default:
		return "unknown"
	}
}

// StatusOf classifies the error returned by a top-level call.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusSuccess
	case IsRevert(err):
		return StatusRevert
	case IsPrecompileFailure(err):
		return StatusPrecompileFailure
	default:
		return StatusExceptionalHalt
	}
}

// ExecutionResult includes all output after executing given evm
// message no matter the execution itself is successful or not.
type ExecutionResult struct {
	Status           Status
	Output           []byte // Returned data from evm(function result or data supplied with revert opcode)
	GasUsed          uint64 // Total used gas, refunded gas excluded
	GasRefund        uint64 // Total gas refunded after execution, already capped
	Logs             []*types.Log
	TouchedAddresses mapset.Set[common.Address]
	Err              error // Any error encountered during the execution(listed in core/vm/errors.go)
	Stats            *Stats
}

// Unwrap returns the internal evm error which allows us for further
// analysis outside.
func (result *ExecutionResult) Unwrap() error {
	return result.Err
}

// Failed returns the indicator whether the execution is successful or not
func (result *ExecutionResult) Failed() bool { return result.Err != nil }

// Return is a helper function to help caller distinguish between revert reason
// and function return. Return returns the data after execution if no error occurs.
func (result *ExecutionResult) Return() []byte {
	if result.Err != nil {
		return nil
	}
	return common.CopyBytes(result.Output)
}

// Revert returns the concrete revert reason if the execution is aborted by `REVERT`
// opcode. Note the reason can be nil if no data supplied with revert opcode.
func (result *ExecutionResult) Revert() []byte {
	if result.Status != StatusRevert {
		return nil
	}
	return common.CopyBytes(result.Output)
}
