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

// Package dbtest contains the conformance suite every ethdb.KeyValueStore
// backend is tested against.
package dbtest

import (
	"bytes"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sunyihoo/go-evm/ethdb"
)

// TestDatabaseSuite runs a suite of tests against a KeyValueStore database
// implementation.
func TestDatabaseSuite(t *testing.T, New func() ethdb.KeyValueStore) {
	t.Run("Iterator", func(t *testing.T) {
		tests := []struct {
			content map[string]string
			prefix  string
			start   string
			order   []string
		}{
			// Empty databases should be iterable
			{map[string]string{}, "", "", nil},
			{map[string]string{}, "non-existent-prefix", "", nil},

			// Single-item databases should be iterable
			{map[string]string{"key": "val"}, "", "", []string{"key"}},
			{map[string]string{"key": "val"}, "k", "", []string{"key"}},
			{map[string]string{"key": "val"}, "l", "", nil},

			// Multi-item databases should be fully iterable
			{
				map[string]string{"k1": "v1", "k5": "v5", "k2": "v2", "k4": "v4", "k3": "v3"},
				"k", "",
				[]string{"k1", "k2", "k3", "k4", "k5"},
			},
			// Prefixed and started iteration
			{
				map[string]string{"ka1": "va1", "ka5": "va5", "ka2": "va2", "kb3": "vb3", "kb1": "vb1"},
				"ka", "2",
				[]string{"ka2", "ka5"},
			},
			{
				map[string]string{"ka1": "va1", "ka5": "va5", "ka2": "va2", "kb3": "vb3", "kb1": "vb1"},
				"kb", "9",
				nil,
			},
		}
		for i, tt := range tests {
			db := New()
			for key, val := range tt.content {
				require.NoError(t, db.Put([]byte(key), []byte(val)))
			}
			it := db.NewIterator([]byte(tt.prefix), []byte(tt.start))
			var got []string
			for it.Next() {
				got = append(got, string(it.Key()))
				require.Equal(t, tt.content[string(it.Key())], string(it.Value()), "test %d", i)
			}
			require.NoError(t, it.Error())
			it.Release()
			require.Equal(t, tt.order, got, "test %d", i)
			db.Close()
		}
	})

	t.Run("KeyValueOperations", func(t *testing.T) {
		db := New()
		defer db.Close()

		key := []byte("foo")
		got, err := db.Has(key)
		require.NoError(t, err)
		require.False(t, got)

		_, err = db.Get(key)
		require.ErrorIs(t, err, ethdb.ErrNotFound)

		value := []byte("hello world")
		require.NoError(t, db.Put(key, value))

		got, err = db.Has(key)
		require.NoError(t, err)
		require.True(t, got)

		dat, err := db.Get(key)
		require.NoError(t, err)
		require.Equal(t, value, dat)

		require.NoError(t, db.Delete(key))
		got, err = db.Has(key)
		require.NoError(t, err)
		require.False(t, got)
	})

	t.Run("Batch", func(t *testing.T) {
		db := New()
		defer db.Close()

		b := db.NewBatch()
		for _, k := range []string{"1", "2", "3", "4"} {
			require.NoError(t, b.Put([]byte(k), nil))
		}
		require.Equal(t, 4, b.ValueSize())

		has, err := db.Has([]byte("1"))
		require.NoError(t, err)
		require.False(t, has, "batch must not write before Write")

		require.NoError(t, b.Write())
		require.Equal(t, []string{"1", "2", "3", "4"}, iterateKeys(db.NewIterator(nil, nil)))

		b.Reset()
		require.Zero(t, b.ValueSize())

		// Mix writes and deletes in batch
		b.Put([]byte("5"), nil)
		b.Delete([]byte("1"))
		b.Put([]byte("6"), nil)
		require.NoError(t, b.Delete([]byte("3")))
		b.Put([]byte("3"), nil)
		require.NoError(t, b.Write())

		require.Equal(t, []string{"2", "3", "4", "5", "6"}, iterateKeys(db.NewIterator(nil, nil)))
	})

	t.Run("BatchReplay", func(t *testing.T) {
		db := New()
		defer db.Close()

		want := []string{"1", "2", "3", "4"}
		b := db.NewBatch()
		for _, k := range want {
			b.Put([]byte(k), nil)
		}
		b2 := db.NewBatch()
		require.NoError(t, b.Replay(b2))
		require.NoError(t, b2.Replay(b))
		require.NoError(t, b2.Write())
		require.Equal(t, want, iterateKeys(db.NewIterator(nil, nil)))
	})

	t.Run("DeleteRange", func(t *testing.T) {
		db := New()
		defer db.Close()

		addRange := func(start, stop int) {
			for i := start; i <= stop; i++ {
				db.Put([]byte{byte(i)}, []byte{byte(i)})
			}
		}
		checkRange := func(start, stop int, exp bool) {
			for i := start; i <= stop; i++ {
				has, err := db.Has([]byte{byte(i)})
				require.NoError(t, err)
				require.Equal(t, exp, has, "key %d", i)
			}
		}
		addRange(1, 9)
		require.NoError(t, db.DeleteRange([]byte{2}, []byte{5}))
		checkRange(1, 1, true)
		checkRange(2, 4, false)
		checkRange(5, 9, true)

		require.NoError(t, db.DeleteRange([]byte{0}, []byte{10}))
		checkRange(1, 9, false)
	})

	t.Run("OperationsAfterClose", func(t *testing.T) {
		db := New()
		db.Put([]byte("key"), []byte("value"))
		db.Close()

		_, err := db.Get([]byte("key"))
		require.Error(t, err)
		require.Error(t, db.Put([]byte("key2"), []byte("value2")))
	})

	t.Run("Stat", func(t *testing.T) {
		db := New()
		defer db.Close()

		db.Put([]byte("key"), []byte("value"))
		_, err := db.Stat()
		require.NoError(t, err)
	})
}

func iterateKeys(it ethdb.Iterator) []string {
	defer it.Release()

	var keys []string
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	slices.SortFunc(keys, func(a, b string) int { return bytes.Compare([]byte(a), []byte(b)) })
	return keys
}
