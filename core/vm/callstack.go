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

// CallStack is the ordered sequence of active frames of one transaction. The
// depth limit is enforced here rather than by the host goroutine stack.
type CallStack struct {
	frames []*Frame
	limit  int
}

func newCallStack(limit int) *CallStack {
	return &CallStack{frames: make([]*Frame, 0, 16), limit: limit}
}

// checkDepth reports ErrDepth if a frame nested one level deeper than the
// current one would exceed the limit.
func (cs *CallStack) checkDepth() error {
	if len(cs.frames) > cs.limit {
		return ErrDepth
	}
	return nil
}

// Push appends a frame. The top-level frame sits at depth 0, so at most
// limit+1 frames may be active at once.
func (cs *CallStack) Push(f *Frame) error {
	if err := cs.checkDepth(); err != nil {
		return err
	}
	cs.frames = append(cs.frames, f)
	return nil
}

// Pop removes and returns the innermost frame.
func (cs *CallStack) Pop() *Frame {
	n := len(cs.frames)
	if n == 0 {
		return nil
	}
	f := cs.frames[n-1]
	cs.frames[n-1] = nil
	cs.frames = cs.frames[:n-1]
	return f
}

// Depth returns the number of active frames.
func (cs *CallStack) Depth() int { return len(cs.frames) }

// Current returns the innermost frame, or nil if none is active.
func (cs *CallStack) Current() *Frame {
	if len(cs.frames) == 0 {
		return nil
	}
	return cs.frames[len(cs.frames)-1]
}

// readOnly reports whether the innermost frame runs under STATICCALL
// protection, which every nested frame inherits.
func (cs *CallStack) readOnly() bool {
	if f := cs.Current(); f != nil {
		return f.Context.ReadOnly
	}
	return false
}
