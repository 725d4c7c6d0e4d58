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
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunyihoo/go-evm/params/forks"
)

func TestActivateableEips(t *testing.T) {
	nums := ActivateableEips()
	require.Len(t, nums, len(eips))
	prev := 0
	for _, s := range nums {
		n, err := strconv.Atoi(s)
		require.NoError(t, err)
		assert.Greater(t, n, prev)
		assert.True(t, ValidEip(n))
		assert.NotEmpty(t, EIPName(n))
		prev = n
	}
	assert.False(t, ValidEip(1))
	assert.Empty(t, EIPName(1))

	var jt JumpTable
	assert.Error(t, EnableEIP(9999, &jt))
}

// Extra EIPs apply to a private copy of the fork table.
func TestExtraEips(t *testing.T) {
	code := []byte{byte(PUSH0), byte(STOP)}

	_, _, err, _ := runCode(t, forks.London, Config{}, code, 100)
	require.ErrorAs(t, err, new(*ErrInvalidOpCode))

	_, left, err, _ := runCode(t, forks.London, Config{ExtraEips: []int{3855}}, code, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(100-GasQuickStep), left)

	// The shared London table is unchanged.
	_, _, err, _ = runCode(t, forks.London, Config{}, code, 100)
	require.ErrorAs(t, err, new(*ErrInvalidOpCode))
}

func TestExtraEipsDropsUnknown(t *testing.T) {
	evm, _ := newTestEVM(forks.London, Config{ExtraEips: []int{9999, 1153}})
	assert.Equal(t, []int{1153}, evm.Config.ExtraEips)
}
