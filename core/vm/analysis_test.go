// Copyright 2017 The go-ethereum Authors
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
	"math/bits"
	"sync"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunyihoo/go-evm/crypto"
)

func TestJumpDestAnalysis(t *testing.T) {
	tests := []struct {
		code  []byte
		exp   byte
		which int
	}{
		{[]byte{byte(PUSH1), 0x01, 0x01, 0x01}, 0b0000_0010, 0},
		{[]byte{byte(PUSH1), byte(PUSH1), byte(PUSH1), byte(PUSH1)}, 0b0000_1010, 0},
		{[]byte{0x00, byte(PUSH1), 0x00, byte(PUSH1), 0x00, byte(PUSH1), 0x00, byte(PUSH1)}, 0b0101_0100, 0},
		{[]byte{byte(PUSH8), byte(PUSH8), byte(PUSH8), byte(PUSH8), byte(PUSH8), byte(PUSH8), byte(PUSH8), byte(PUSH8), 0x01, 0x01, 0x01}, bits.Reverse8(0x7F), 0},
		{[]byte{byte(PUSH8), 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01}, 0b0000_0001, 1},
		{[]byte{0x01, 0x01, 0x01, 0x01, 0x01, byte(PUSH2), byte(PUSH2), byte(PUSH2), 0x01, 0x01, 0x01}, 0b1100_0000, 0},
		{[]byte{0x01, 0x01, 0x01, 0x01, 0x01, byte(PUSH2), 0x01, 0x01, 0x01, 0x01, 0x01}, 0b0000_0000, 1},
		{[]byte{byte(PUSH3), 0x01, 0x01, 0x01, byte(PUSH1), 0x01, 0x01, 0x01, 0x01, 0x01, 0x01}, 0b0010_1110, 0},
		{[]byte{byte(PUSH3), 0x01, 0x01, 0x01, byte(PUSH1), 0x01, 0x01, 0x01, 0x01, 0x01, 0x01}, 0b0000_0000, 1},
		{[]byte{0x01, byte(PUSH8), 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01}, 0b1111_1100, 0},
		{[]byte{0x01, byte(PUSH8), 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01}, 0b0000_0011, 1},
		{[]byte{byte(PUSH16), 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01}, 0b1111_1110, 0},
		{[]byte{byte(PUSH16), 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01}, 0b1111_1111, 1},
		{[]byte{byte(PUSH16), 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01}, 0b0000_0001, 2},
		{[]byte{byte(PUSH8), 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, byte(PUSH1), 0x01}, 0b1111_1110, 0},
		{[]byte{byte(PUSH8), 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, byte(PUSH1), 0x01}, 0b0000_0101, 1},
		{[]byte{byte(PUSH32)}, 0b1111_1110, 0},
		{[]byte{byte(PUSH32)}, 0b1111_1111, 1},
		{[]byte{byte(PUSH32)}, 0b1111_1111, 2},
		{[]byte{byte(PUSH32)}, 0b1111_1111, 3},
		{[]byte{byte(PUSH32)}, 0b0000_0001, 4},
	}
	for i, test := range tests {
		ret := codeBitmap(test.code)
		require.Equalf(t, test.exp, ret[test.which], "test %d", i)
	}
}

func TestValidJumpdest(t *testing.T) {
	// PUSH1 0x5b JUMPDEST PUSH2 0x5b5b STOP JUMPDEST
	code := []byte{byte(PUSH1), 0x5b, byte(JUMPDEST), byte(PUSH2), 0x5b, 0x5b, byte(STOP), byte(JUMPDEST)}
	c := NewCode(code, crypto.Keccak256Hash(code), nil)

	for dest, want := range map[uint64]bool{
		0: false, // PUSH1
		1: false, // immediate that looks like JUMPDEST
		2: true,
		4: false,
		5: false,
		6: false, // STOP
		7: true,
		8: false, // beyond the code
	} {
		assert.Equalf(t, want, c.ValidJumpdest(uint256.NewInt(dest)), "dest %d", dest)
	}
	huge := new(uint256.Int).Lsh(uint256.NewInt(1), 70)
	assert.False(t, c.ValidJumpdest(huge))
}

func TestCodeGetOp(t *testing.T) {
	c := NewDeploymentCode([]byte{byte(ADD)})
	assert.Equal(t, ADD, c.GetOp(0))
	assert.Equal(t, STOP, c.GetOp(1))
	assert.Equal(t, STOP, c.GetOp(1<<40))
	assert.True(t, c.IsDeployment())
}

func TestAnalysisCacheShared(t *testing.T) {
	code := []byte{byte(PUSH1), 0x03, byte(JUMP), byte(JUMPDEST), byte(STOP)}
	hash := crypto.Keccak256Hash(code)
	cache := NewAnalysisCache(1024 * 1024)

	first := NewCode(code, hash, cache)
	require.True(t, first.ValidJumpdest(uint256.NewInt(3)))
	hits, misses := cache.Stats()
	assert.Equal(t, uint64(0), hits)
	assert.Equal(t, uint64(1), misses)

	second := NewCode(code, hash, cache)
	require.True(t, second.ValidJumpdest(uint256.NewInt(3)))
	hits, _ = cache.Stats()
	assert.Equal(t, uint64(1), hits)

	// Init code never touches the shared cache.
	deploy := NewDeploymentCode(code)
	require.True(t, deploy.ValidJumpdest(uint256.NewInt(3)))
	hits, misses = cache.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
}

func TestAnalysisCacheConcurrent(t *testing.T) {
	var (
		cache = NewAnalysisCache(1024 * 1024)
		codes = make([][]byte, 8)
		wg    sync.WaitGroup
	)
	for i := range codes {
		// i filler bytes shift the JUMPDEST into a different position
		code := make([]byte, 0, i+3)
		for j := 0; j < i; j++ {
			code = append(code, byte(PUSH1), 0x5b)
		}
		codes[i] = append(code, byte(JUMPDEST), byte(STOP))
	}
	for worker := 0; worker < 16; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, code := range codes {
				c := NewCode(code, crypto.Keccak256Hash(code), cache)
				assert.True(t, c.ValidJumpdest(uint256.NewInt(uint64(2*i))))
				if i > 0 {
					assert.False(t, c.ValidJumpdest(uint256.NewInt(1)))
				}
			}
		}()
	}
	wg.Wait()

	for i, code := range codes {
		bits, ok := cache.Get(crypto.Keccak256Hash(code))
		require.True(t, ok)
		assert.Equal(t, codeBitmap(code), bits, "code %d", i)
	}
}

const analysisCodeSize = 1200 * 1024

func BenchmarkJumpdestAnalysis_1200k(bench *testing.B) {
	code := make([]byte, analysisCodeSize)
	bench.SetBytes(analysisCodeSize)
	bench.ResetTimer()
	for i := 0; i < bench.N; i++ {
		codeBitmap(code)
	}
	bench.StopTimer()
}
