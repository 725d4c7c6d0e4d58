// Copyright 2024 The go-ethereum Authors
// This file is part of go-ethereum.
//
// go-ethereum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ethereum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ethereum. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"bytes"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunyihoo/go-evm/common"
	"github.com/sunyihoo/go-evm/core/state"
	"github.com/sunyihoo/go-evm/core/vm/runtime"
	"github.com/sunyihoo/go-evm/params"
	"github.com/sunyihoo/go-evm/params/forks"
)

const testEnv = `
Coinbase = "0x00000000000000000000000000000000000000cb"
BlockNumber = 300
Time = 1700000000
BaseFee = 7

[Alloc.0x00000000000000000000000000000000000000aa]
Balance = 1000
Nonce = 3
Code = "0x602a60005500"

[Alloc.0x00000000000000000000000000000000000000aa.Storage]
"0x01" = "0x02"
`

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadEnvConfig(t *testing.T) {
	env, err := loadEnvConfig(writeFile(t, "env.toml", testEnv))
	require.NoError(t, err)

	var cfg runtime.Config
	env.apply(&cfg)
	assert.Equal(t, common.HexToAddress("0xcb"), cfg.Coinbase)
	assert.Equal(t, big.NewInt(300), cfg.BlockNumber)
	assert.Equal(t, uint64(1700000000), cfg.Time)
	assert.Equal(t, big.NewInt(7), cfg.BaseFee)

	statedb := state.New(state.NewDatabaseForTesting())
	require.NoError(t, env.allocate(statedb))

	addr := common.HexToAddress("0xaa")
	assert.Equal(t, uint64(1000), statedb.GetBalance(addr).Uint64())
	assert.Equal(t, uint64(3), statedb.GetNonce(addr))
	assert.Equal(t, common.FromHex("0x602a60005500"), statedb.GetCode(addr))
	assert.Equal(t, common.HexToHash("0x02"), statedb.GetCommittedState(addr, common.HexToHash("0x01")))
}

func TestLoadEnvConfigUnknownField(t *testing.T) {
	_, err := loadEnvConfig(writeFile(t, "env.toml", "Gas = 5\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "env.toml")
}

func TestOpenDatabase(t *testing.T) {
	for _, kind := range []string{"memory", "pebble", "leveldb"} {
		t.Run(kind, func(t *testing.T) {
			db, err := openDatabase(kind, t.TempDir())
			require.NoError(t, err)
			defer db.Close()

			require.NoError(t, db.Put([]byte("k"), []byte("v")))
			v, err := db.Get([]byte("k"))
			require.NoError(t, err)
			assert.Equal(t, []byte("v"), v)
		})
	}
	_, err := openDatabase("rocksdb", t.TempDir())
	assert.Error(t, err)
}

func TestPrintForkTable(t *testing.T) {
	var buf bytes.Buffer
	printForkTable(&buf)
	out := buf.String()
	assert.Contains(t, out, "PRECOMPILES")

	var pragueRow string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, forks.Prague.String()) {
			pragueRow = line
		}
	}
	require.NotEmpty(t, pragueRow)
	assert.Contains(t, pragueRow, " 17 ")
	assert.Contains(t, out, forks.Frontier.String())
}

func TestDefinedOpcodes(t *testing.T) {
	var (
		frontier = definedOpcodes(params.RulesForFork(forks.Frontier))
		prague   = definedOpcodes(params.RulesForFork(forks.Prague))
	)
	assert.Greater(t, prague, frontier)
}
