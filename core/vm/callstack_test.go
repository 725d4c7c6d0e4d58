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
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStackOps(t *testing.T) {
	st := newstack()
	defer returnStack(st)

	for i := uint64(1); i <= 4; i++ {
		st.push(uint256.NewInt(i))
	}
	assert.Equal(t, 4, st.len())
	assert.Equal(t, uint64(4), st.peek().Uint64())
	assert.Equal(t, uint64(1), st.Back(3).Uint64())

	st.dup(2) // 1 2 3 4 3
	assert.Equal(t, uint64(3), st.peek().Uint64())

	st.swap(4) // 3 2 3 4 1
	assert.Equal(t, uint64(1), st.peek().Uint64())
	assert.Equal(t, uint64(3), st.Back(4).Uint64())

	v := st.pop()
	assert.Equal(t, uint64(1), v.Uint64())
	assert.Equal(t, 4, st.len())
}

func TestCallStackDepth(t *testing.T) {
	cs := newCallStack(2)
	assert.Nil(t, cs.Current())
	assert.Nil(t, cs.Pop())

	frames := make([]*Frame, 4)
	for i := range frames {
		frames[i] = &Frame{Context: &ExecutionContext{Depth: i}}
	}
	// The top-level frame plus two nested ones fit under a limit of two.
	for i := 0; i < 3; i++ {
		require.NoError(t, cs.Push(frames[i]))
		assert.Same(t, frames[i], cs.Current())
	}
	assert.Equal(t, 3, cs.Depth())
	require.ErrorIs(t, cs.Push(frames[3]), ErrDepth)
	assert.Equal(t, 3, cs.Depth())

	assert.Same(t, frames[2], cs.Pop())
	require.NoError(t, cs.Push(frames[3]))
	assert.Equal(t, 3, cs.Depth())
}

func TestCallStackReadOnly(t *testing.T) {
	cs := newCallStack(1024)
	assert.False(t, cs.readOnly())

	require.NoError(t, cs.Push(&Frame{Context: &ExecutionContext{}}))
	assert.False(t, cs.readOnly())

	require.NoError(t, cs.Push(&Frame{Context: &ExecutionContext{Kind: KindStaticCall, ReadOnly: true}}))
	assert.True(t, cs.readOnly())

	cs.Pop()
	assert.False(t, cs.readOnly())
}

func TestCallKind(t *testing.T) {
	for kind, op := range map[CallKind]OpCode{
		KindCall:         CALL,
		KindCallCode:     CALLCODE,
		KindDelegateCall: DELEGATECALL,
		KindStaticCall:   STATICCALL,
		KindCreate:       CREATE,
		KindCreate2:      CREATE2,
	} {
		assert.Equal(t, op, kind.OpCode())
		assert.Equal(t, op.String(), kind.String())
		assert.Equal(t, op == CREATE || op == CREATE2, kind.IsCreate())
	}
	assert.True(t, (&ExecutionContext{}).IsTopLevel())
	assert.False(t, (&ExecutionContext{Depth: 1}).IsTopLevel())
}
