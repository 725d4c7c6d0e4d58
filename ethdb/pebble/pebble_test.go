// Copyright 2023 The go-ethereum Authors
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

package pebble

import (
	"testing"

	"github.com/cockroachdb/pebble"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunyihoo/go-evm/ethdb"
	"github.com/sunyihoo/go-evm/ethdb/dbtest"
	"github.com/sunyihoo/go-evm/log"
)

func TestCompactionCounters(t *testing.T) {
	db := &Database{log: log.Root()}

	db.onCompactionBegin(pebble.CompactionInfo{Input: []pebble.LevelInfo{{Level: 0}}})
	assert.False(t, db.compStartTime.IsZero(), "compStartTime should be set")
	assert.Equal(t, uint32(1), db.level0Comp.Load())
	assert.Equal(t, uint32(0), db.nonLevel0Comp.Load())
	assert.Equal(t, 1, db.activeComp)

	db.onCompactionBegin(pebble.CompactionInfo{Input: []pebble.LevelInfo{{Level: 1}}})
	assert.Equal(t, uint32(1), db.level0Comp.Load())
	assert.Equal(t, uint32(1), db.nonLevel0Comp.Load())
	assert.Equal(t, 2, db.activeComp)

	db.onCompactionEnd(pebble.CompactionInfo{})
	db.onCompactionEnd(pebble.CompactionInfo{})
	assert.Zero(t, db.activeComp)
	assert.Panics(t, func() { db.onCompactionEnd(pebble.CompactionInfo{}) })
}

func TestWriteStallCounters(t *testing.T) {
	db := &Database{log: log.Root()}

	db.onWriteStallBegin(pebble.WriteStallBeginInfo{Reason: "memtable count limit reached"})
	assert.True(t, db.writeStalled.Load())
	assert.Equal(t, int64(1), db.writeDelayCount.Load())

	db.onWriteStallEnd()
	assert.False(t, db.writeStalled.Load())
}

func TestUpperBound(t *testing.T) {
	assert.Equal(t, []byte{0x01, 0x03}, upperBound([]byte{0x01, 0x02}))
	assert.Equal(t, []byte{0x02}, upperBound([]byte{0x01, 0xff}))
	assert.Nil(t, upperBound([]byte{0xff, 0xff}))
	assert.Nil(t, upperBound([]byte{}))
}

func TestPebbleDB(t *testing.T) {
	t.Run("DatabaseSuite", func(t *testing.T) {
		dbtest.TestDatabaseSuite(t, func() ethdb.KeyValueStore {
			db, err := NewMem()
			require.NoError(t, err)
			return db
		})
	})
}
