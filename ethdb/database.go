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

// Package ethdb defines the interfaces for the key-value stores backing the
// world state.
package ethdb

import (
	"errors"
	"io"
)

// ErrNotFound is returned by every backend when a requested key is absent.
var ErrNotFound = errors.New("not found")

// KeyValueReader wraps the Has and Get method of a backing data store.
type KeyValueReader interface {
	// Has retrieves if a key is present in the key-value data store.
	Has(key []byte) (bool, error)

	// Get retrieves the given key if it's present in the key-value data store.
	// A missing key yields ErrNotFound.
	Get(key []byte) ([]byte, error)
}

// KeyValueWriter wraps the Put method of a backing data store.
type KeyValueWriter interface {
	// Put inserts the given value into the key-value data store.
	Put(key []byte, value []byte) error

	// Delete removes the key from the key-value data store.
	Delete(key []byte) error
}

// KeyValueRangeDeleter wraps the DeleteRange method of a backing data store.
type KeyValueRangeDeleter interface {
	// DeleteRange removes every key in [start, end). The state layer wipes all
	// slots of an account with a single call.
	DeleteRange(start, end []byte) error
}

// KeyValueStater wraps the Stat method of a backing data store.
type KeyValueStater interface {
	// Stat returns the statistic data of the database.
	Stat() (string, error)
}

// Batch buffers writes until Write flushes them to the host store in one go.
// Commit of the state uses one batch for storage and code and a second one for
// the accounts. A batch is not safe for concurrent use.
type Batch interface {
	KeyValueWriter

	// ValueSize returns the number of bytes queued for writing.
	ValueSize() int

	// Write flushes the queued operations.
	Write() error

	// Reset drops the queued operations so the batch can be reused.
	Reset()

	// Replay applies the queued operations to w, in order.
	Replay(w KeyValueWriter) error
}

// Batcher wraps the NewBatch method of a backing data store.
type Batcher interface {
	NewBatch() Batch
}

// Iterator walks key/value pairs in ascending key order. On failure Next
// returns false and Error reports the cause. Release must always be called,
// an iterator need not be exhausted. It is not safe for concurrent use.
type Iterator interface {
	// Next advances to the next pair and reports whether there was one.
	Next() bool

	// Error returns the failure that stopped iteration, nil on exhaustion.
	Error() error

	// Key returns the current key. The slice is only valid until Next.
	Key() []byte

	// Value returns the current value. The slice is only valid until Next.
	Value() []byte

	// Release frees the iterator. It can be called more than once.
	Release()
}

// Iteratee wraps the NewIterator method of a backing data store.
type Iteratee interface {
	// NewIterator iterates the keys under prefix, beginning at prefix+start.
	// The dump walks accounts this way and the state database derives storage
	// commitments from it.
	NewIterator(prefix []byte, start []byte) Iterator
}

// KeyValueStore contains all the methods required to allow handling different
// key-value data stores backing the state database.
type KeyValueStore interface {
	KeyValueReader
	KeyValueWriter
	KeyValueStater
	KeyValueRangeDeleter
	Batcher
	Iteratee
	io.Closer
}
