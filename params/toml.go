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

package params

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/naoina/toml"
)

// TOMLSettings ensure that TOML keys use the same names as Go struct fields.
var TOMLSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

// LoadChainConfig decodes a chain config from a TOML file and validates its
// fork ordering.
func LoadChainConfig(file string) (*ChainConfig, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, err := DecodeChainConfig(bufio.NewReader(f))
	if err != nil {
		return nil, errors.New(file + ", " + err.Error())
	}
	return cfg, nil
}

// DecodeChainConfig decodes a TOML chain config from r.
func DecodeChainConfig(r io.Reader) (*ChainConfig, error) {
	cfg := new(ChainConfig)
	if err := TOMLSettings.NewDecoder(r).Decode(cfg); err != nil {
		return nil, err
	}
	if err := cfg.CheckConfigForkOrder(); err != nil {
		return nil, err
	}
	return cfg, nil
}
