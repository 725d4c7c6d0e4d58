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

package logger

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunyihoo/go-evm/common"
	"github.com/sunyihoo/go-evm/core/vm"
	"github.com/sunyihoo/go-evm/core/vm/program"
	"github.com/sunyihoo/go-evm/core/vm/runtime"
)

func TestStructLoggerStorage(t *testing.T) {
	code := program.New().Sstore(1, 0x2a).Sload(1).Op(vm.POP).Bytes()
	logger := NewStructLogger(nil)

	_, _, err := runtime.Execute(code, nil, &runtime.Config{EVMConfig: vm.Config{Tracer: logger.Hooks()}})
	require.NoError(t, err)

	// running off the end of the code executes an implicit STOP
	logs := logger.StructLogs()
	require.Len(t, logs, 7)
	assert.Equal(t, vm.STOP, logs[6].Op)
	assert.Equal(t, vm.SSTORE, logs[2].Op)
	slot := common.Hash{31: 1}
	assert.Equal(t, common.Hash{31: 0x2a}, logs[2].Storage[slot])
	assert.Equal(t, vm.SLOAD, logs[4].Op)
	assert.Equal(t, common.Hash{31: 0x2a}, logs[4].Storage[slot])
	assert.Nil(t, logs[0].Storage)
	for _, log := range logs {
		assert.Equal(t, 1, log.Depth)
	}

	raw, err := logger.GetResult()
	require.NoError(t, err)
	var res struct {
		Failed     bool              `json:"failed"`
		StructLogs []json.RawMessage `json:"structLogs"`
	}
	require.NoError(t, json.Unmarshal(raw, &res))
	assert.False(t, res.Failed)
	assert.Len(t, res.StructLogs, 7)
}

func TestStructLoggerLimitAndRevert(t *testing.T) {
	code := program.New().RevertData([]byte{0xde, 0xad}).Bytes()
	logger := NewStructLogger(&Config{Limit: 2, DisableStack: true})

	_, _, err := runtime.Execute(code, nil, &runtime.Config{EVMConfig: vm.Config{Tracer: logger.Hooks()}})
	require.ErrorIs(t, err, vm.ErrExecutionReverted)
	require.Len(t, logger.StructLogs(), 2)
	assert.Nil(t, logger.StructLogs()[0].Stack)
	assert.ErrorIs(t, logger.Error(), vm.ErrExecutionReverted)
	assert.Equal(t, []byte{0xde, 0xad}, logger.Output())

	raw, err := logger.GetResult()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"returnValue":"dead"`)
	assert.Contains(t, string(raw), `"failed":true`)

	logger.Reset()
	assert.Empty(t, logger.StructLogs())
	assert.NoError(t, logger.Error())
}

func TestJSONLogger(t *testing.T) {
	var (
		buf  bytes.Buffer
		code = program.New().Push(1).Push(2).Op(vm.ADD).Push(0).Op(vm.MSTORE).Return(0, 32).Bytes()
	)
	_, _, err := runtime.Execute(code, nil, &runtime.Config{
		EVMConfig: vm.Config{Tracer: NewJSONLogger(&Config{EnableMemory: true}, &buf)},
	})
	require.NoError(t, err)

	var lines []map[string]any
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var line map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		lines = append(lines, line)
	}
	require.NoError(t, scanner.Err())
	// eight opcodes and the summary
	require.Len(t, lines, 9)

	assert.Equal(t, "PUSH1", lines[0]["opName"])
	assert.Equal(t, float64(0), lines[0]["pc"])
	assert.Equal(t, "ADD", lines[2]["opName"])
	assert.Equal(t, []any{"0x1", "0x2"}, lines[2]["stack"])
	assert.Equal(t, "RETURN", lines[7]["opName"])
	assert.NotEmpty(t, lines[7]["memory"])

	last := lines[8]
	assert.Equal(t, "0x0000000000000000000000000000000000000000000000000000000000000003", last["output"])
	assert.NotContains(t, last, "error")
}

func TestOpCounterBatch(t *testing.T) {
	var (
		counter = NewOpCounter()
		code    = program.New().Push(1).Push(2).Op(vm.ADD, vm.POP).Bytes()
		jobs    = make([]runtime.Job, 16)
	)
	for i := range jobs {
		jobs[i] = runtime.Job{Code: code}
	}
	_, err := runtime.ExecuteBatch(context.Background(), jobs, &runtime.Config{
		Parallelism: 4,
		EVMConfig:   vm.Config{Tracer: counter.Hooks()},
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(32), counter.Count(vm.PUSH1))
	assert.Equal(t, uint64(16), counter.Count(vm.ADD))
	assert.Equal(t, uint64(16), counter.Count(vm.STOP))
	assert.Equal(t, uint64(16*5), counter.Total())
	assert.Zero(t, counter.Faults())

	summary := counter.Summary()
	require.Len(t, summary, 4)
	assert.Equal(t, OpCount{Op: vm.PUSH1, Name: "PUSH1", Count: 32}, summary[0])
}
