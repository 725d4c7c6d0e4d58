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
	"fmt"
	"path/filepath"

	"github.com/sunyihoo/go-evm/ethdb"
	"github.com/sunyihoo/go-evm/ethdb/leveldb"
	"github.com/sunyihoo/go-evm/ethdb/memorydb"
	"github.com/sunyihoo/go-evm/ethdb/pebble"
	"github.com/sunyihoo/go-evm/log"
)

const (
	dbCache   = 64 // megabytes
	dbHandles = 128
)

// openDatabase opens the key-value store backing the world state. The memory
// backend ignores datadir.
func openDatabase(kind, datadir string) (ethdb.KeyValueStore, error) {
	switch kind {
	case "memory":
		return memorydb.New(), nil
	case "pebble":
		path := filepath.Join(datadir, "pebble")
		log.Info("Opening state database", "type", kind, "path", path)
		return pebble.New(path, dbCache, dbHandles, false)
	case "leveldb":
		path := filepath.Join(datadir, "leveldb")
		log.Info("Opening state database", "type", kind, "path", path)
		return leveldb.New(path, dbCache, dbHandles, false)
	default:
		return nil, fmt.Errorf("unknown database type %q, want memory, pebble or leveldb", kind)
	}
}

func showDBStats(db ethdb.KeyValueStater) {
	stats, err := db.Stat()
	if err != nil {
		log.Warn("Failed to read database stats", "error", err)
		return
	}
	fmt.Println(stats)
}
