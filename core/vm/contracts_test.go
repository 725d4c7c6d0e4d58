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
	"bytes"
	"errors"
	"fmt"
	"testing"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunyihoo/go-evm/common"
	"github.com/sunyihoo/go-evm/crypto"
	"github.com/sunyihoo/go-evm/params"
	"github.com/sunyihoo/go-evm/params/forks"
)

// precompiledTest defines the input/output pairs for precompiled contract tests.
type precompiledTest struct {
	Input, Expected string
	Gas             uint64
	Name            string
}

// precompiledFailureTest defines the input/error pairs for precompiled
// contract failure tests.
type precompiledFailureTest struct {
	Input         string
	ExpectedError error
	Name          string
}

var (
	cancunRules = params.RulesForFork(forks.Cancun)
	pragueRules = params.RulesForFork(forks.Prague)
)

const ecrecoverInput = "38d18acb67d25c8bb9942764b62f18e17054f66a817bd4295423adf9ed98873e000000000000000000000000000000000000000000000000000000000000001b38d18acb67d25c8bb9942764b62f18e17054f66a817bd4295423adf9ed98873e789d1dd423d25f0772d2748d60f7e4b81bb14d086eba8e8e8efb6dcff8a4ae02"

var precompiledTests = map[string][]precompiledTest{
	"01": {{
		Input:    ecrecoverInput,
		Expected: "000000000000000000000000ceaccac640adf55b2028469bd36ba501f28b699d",
		Gas:      3000,
		Name:     "ecrecover",
	}},
	"02": {{
		Input:    ecrecoverInput,
		Expected: "811c7003375852fabd0d362e40e68607a12bdabae61a7d068fe5fdd1dbbf2a5d",
		Gas:      108,
		Name:     "128",
	}},
	"03": {{
		Input:    ecrecoverInput,
		Expected: "0000000000000000000000009215b8d9882ff46f0dfde6684d78e831467f65e6",
		Gas:      1080,
		Name:     "128",
	}},
	"04": {{
		Input:    ecrecoverInput,
		Expected: ecrecoverInput,
		Gas:      27,
		Name:     "128",
	}},
	"05": {{
		// base 3, exponent 2, modulus 5, one byte each
		Input: "0000000000000000000000000000000000000000000000000000000000000001" +
			"0000000000000000000000000000000000000000000000000000000000000001" +
			"0000000000000000000000000000000000000000000000000000000000000001" +
			"030205",
		Expected: "04",
		Gas:      200,
		Name:     "small",
	}},
	"08": {{
		Input:    "",
		Expected: "0000000000000000000000000000000000000000000000000000000000000001",
		Gas:      45000,
		Name:     "empty",
	}},
	"09": {{
		Input:    "0000000c48c9bdf267e6096a3ba7ca8485ae67bb2bf894fe72f36e3cf1361d5f3af54fa5d182e6ad7f520e511f6c3e2b8c68059b6bbd41fbabd9831f79217e1319cde05b61626300000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000300000000000000000000000000000001",
		Expected: "ba80a53f981c4d0d6a2797b69f12f6e94c212f14685ac4b74b12bb6fdbffa2d17d87c5392aab792dc252d5de4533cc9518d38aa8dbf1925ab92386edd4009923",
		Gas:      12,
		Name:     "vector 5",
	}},
}

var blake2FMalformedInputTests = []precompiledFailureTest{
	{
		Input:         "",
		ExpectedError: errBlake2FInvalidInputLength,
		Name:          "vector 0: empty input",
	},
	{
		Input:         "00000c48c9bdf267e6096a3ba7ca8485ae67bb2bf894fe72f36e3cf1361d5f3af54fa5d182e6ad7f520e511f6c3e2b8c68059b6bbd41fbabd9831f79217e1319cde05b61626300000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000300000000000000000000000000000001",
		ExpectedError: errBlake2FInvalidInputLength,
		Name:          "vector 1: less than 213 bytes input",
	},
	{
		Input:         "000000000c48c9bdf267e6096a3ba7ca8485ae67bb2bf894fe72f36e3cf1361d5f3af54fa5d182e6ad7f520e511f6c3e2b8c68059b6bbd41fbabd9831f79217e1319cde05b61626300000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000300000000000000000000000000000001",
		ExpectedError: errBlake2FInvalidInputLength,
		Name:          "vector 2: more than 213 bytes input",
	},
	{
		Input:         "0000000c48c9bdf267e6096a3ba7ca8485ae67bb2bf894fe72f36e3cf1361d5f3af54fa5d182e6ad7f520e511f6c3e2b8c68059b6bbd41fbabd9831f79217e1319cde05b61626300000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000300000000000000000000000000000002",
		ExpectedError: errBlake2FInvalidFinalFlag,
		Name:          "vector 3: malformed final block indicator flag",
	},
}

func precompileAt(t *testing.T, addr string, rules params.Rules) PrecompiledContract {
	t.Helper()
	p, ok := LookupPrecompile(common.HexToAddress(addr), rules)
	require.Truef(t, ok, "precompile %s not active", addr)
	return p
}

func testPrecompiled(t *testing.T, addr string, test precompiledTest) {
	p := precompileAt(t, addr, cancunRules)
	in := common.Hex2Bytes(test.Input)
	gas := RequiredGas(p, in, cancunRules)
	t.Run(fmt.Sprintf("%s-%s-Gas=%d", p.Name(), test.Name, gas), func(t *testing.T) {
		res, remaining, err := RunPrecompiledContract(p, in, gas+5, cancunRules, nil)
		require.NoError(t, err)
		assert.Equal(t, test.Expected, common.Bytes2Hex(res))
		assert.Equal(t, test.Gas, gas)
		assert.Equal(t, uint64(5), remaining)
		// Verify that the precompile did not touch the input buffer
		assert.True(t, bytes.Equal(in, common.Hex2Bytes(test.Input)), "input modified")
	})
}

func testPrecompiledOOG(t *testing.T, addr string, test precompiledTest) {
	p := precompileAt(t, addr, cancunRules)
	in := common.Hex2Bytes(test.Input)
	gas := RequiredGas(p, in, cancunRules) - 1

	t.Run(fmt.Sprintf("%s-%s-Gas=%d", p.Name(), test.Name, gas), func(t *testing.T) {
		res, remaining, err := RunPrecompiledContract(p, in, gas, cancunRules, nil)
		require.ErrorIs(t, err, ErrOutOfGas)
		assert.True(t, IsExceptionalHalt(err))
		assert.Nil(t, res)
		assert.Zero(t, remaining)
	})
}

func TestPrecompiledContracts(t *testing.T) {
	for addr, tests := range precompiledTests {
		for _, test := range tests {
			testPrecompiled(t, addr, test)
			if test.Gas > 0 {
				testPrecompiledOOG(t, addr, test)
			}
		}
	}
}

func TestPrecompileBlake2FMalformedInput(t *testing.T) {
	p := precompileAt(t, "09", cancunRules)
	for _, test := range blake2FMalformedInputTests {
		t.Run(test.Name, func(t *testing.T) {
			in := common.Hex2Bytes(test.Input)
			_, _, err := RunPrecompiledContract(p, in, RequiredGas(p, in, cancunRules), cancunRules, nil)
			require.ErrorIs(t, err, test.ExpectedError)

			var perr *PrecompileError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, "BLAKE2F", perr.Name)
			assert.True(t, IsPrecompileFailure(err))
			assert.False(t, IsExceptionalHalt(err))
			assert.False(t, IsRevert(err))
		})
	}
}

func TestEcrecoverSigned(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	hash := crypto.Keccak256([]byte("go-evm"))
	sig, err := crypto.Sign(hash, key)
	require.NoError(t, err)

	input := make([]byte, 128)
	copy(input, hash)
	input[63] = sig[64] + 27
	copy(input[64:], sig[:64])

	p := precompileAt(t, "01", cancunRules)
	out, err := p.Run(input, cancunRules)
	require.NoError(t, err)
	want := common.LeftPadBytes(crypto.PubkeyToAddress(key.PublicKey).Bytes(), 32)
	assert.Equal(t, want, out)

	// Trailing zeroes are implied for short input, losing v.
	out, err = p.Run(input[:63], cancunRules)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestEcrecoverInvalidInput(t *testing.T) {
	base := common.Hex2Bytes(ecrecoverInput)
	mutate := func(f func([]byte)) []byte {
		in := common.CopyBytes(base)
		f(in)
		return in
	}
	p := precompileAt(t, "01", cancunRules)
	for name, in := range map[string][]byte{
		"v 29":          mutate(func(in []byte) { in[63] = 29 }),
		"v high bytes":  mutate(func(in []byte) { in[32] = 1 }),
		"r zero":        mutate(func(in []byte) { copy(in[64:96], make([]byte, 32)) }),
		"s zero":        mutate(func(in []byte) { copy(in[96:128], make([]byte, 32)) }),
		"s above order": mutate(func(in []byte) { copy(in[96:128], bytes.Repeat([]byte{0xff}, 32)) }),
		"empty":         nil,
	} {
		t.Run(name, func(t *testing.T) {
			out, remaining, err := RunPrecompiledContract(p, in, 3000, cancunRules, nil)
			require.NoError(t, err)
			assert.Empty(t, out)
			assert.Zero(t, remaining)
		})
	}
}

func TestBn256AddMatchesScalarMul(t *testing.T) {
	var (
		g1  = common.Hex2Bytes("0000000000000000000000000000000000000000000000000000000000000001" + "0000000000000000000000000000000000000000000000000000000000000002")
		two = common.LeftPadBytes([]byte{2}, 32)
		add = precompileAt(t, "06", cancunRules)
		mul = precompileAt(t, "07", cancunRules)
	)
	sum, err := add.Run(append(common.CopyBytes(g1), g1...), cancunRules)
	require.NoError(t, err)
	prod, err := mul.Run(append(common.CopyBytes(g1), two...), cancunRules)
	require.NoError(t, err)
	assert.Equal(t, sum, prod)
	assert.Len(t, sum, 64)

	// The point at infinity is the neutral element.
	same, err := add.Run(g1, cancunRules)
	require.NoError(t, err)
	assert.Equal(t, g1, same)

	// Istanbul repricing
	assert.Equal(t, uint64(150), RequiredGas(add, nil, cancunRules))
	assert.Equal(t, uint64(500), RequiredGas(add, nil, params.RulesForFork(forks.Byzantium)))
}

func TestBn256PairingBadInput(t *testing.T) {
	p := precompileAt(t, "08", cancunRules)
	_, _, err := RunPrecompiledContract(p, make([]byte, 100), 1_000_000, cancunRules, nil)
	require.ErrorIs(t, err, errBadPairingInput)
	assert.True(t, IsPrecompileFailure(err))
}

func TestActivePrecompiles(t *testing.T) {
	for fork, want := range map[forks.Fork]int{
		forks.Frontier:  4,
		forks.Homestead: 4,
		forks.Byzantium: 8,
		forks.Istanbul:  9,
		forks.London:    9,
		forks.Cancun:    10,
		forks.Prague:    17,
	} {
		rules := params.RulesForFork(fork)
		addrs := ActivePrecompiles(rules)
		require.Lenf(t, addrs, want, "fork %v", fork)
		for i, addr := range addrs {
			assert.Equal(t, common.BytesToAddress([]byte{byte(i + 1)}), addr)
		}
		assert.Len(t, PrecompileNames(rules), want)
	}
	_, ok := LookupPrecompile(common.BytesToAddress([]byte{0xa}), params.RulesForFork(forks.London))
	assert.False(t, ok)
	_, ok = LookupPrecompile(common.BytesToAddress([]byte{0x5}), params.RulesForFork(forks.Homestead))
	assert.False(t, ok)
	_, ok = LookupPrecompile(common.BytesToAddress([]byte{0xb}), cancunRules)
	assert.False(t, ok)
}

func TestBls12381Gas(t *testing.T) {
	var (
		g1msm = precompileAt(t, "0c", pragueRules)
		g2msm = precompileAt(t, "0e", pragueRules)
		pair  = precompileAt(t, "0f", pragueRules)
	)
	for _, tt := range []struct {
		p     PrecompiledContract
		input int
		want  uint64
	}{
		{g1msm, 0, 0},
		{g1msm, 160, 12000},
		{g1msm, 2 * 160, 2 * 12000 * 949 / 1000},
		{g1msm, 200 * 160, 200 * 12000 * 519 / 1000},
		{g2msm, 288, 22500},
		{g2msm, 2 * 288, 45000},
		{pair, 0, 37700},
		{pair, 2 * 384, 37700 + 2*32600},
	} {
		assert.Equalf(t, tt.want, RequiredGas(tt.p, make([]byte, tt.input), pragueRules), "%s with %d bytes", tt.p.Name(), tt.input)
	}
}

func TestBls12381Precompiles(t *testing.T) {
	_, _, gen, _ := bls12381.Generators()
	var g1 []byte
	for _, e := range []fp.Element{gen.X, gen.Y} {
		b := e.Bytes()
		g1 = append(g1, append(make([]byte, 16), b[:]...)...)
	}
	add := precompileAt(t, "0b", pragueRules)

	// Adding two infinity points.
	out, remaining, err := RunPrecompiledContract(add, make([]byte, 256), 10000, pragueRules, nil)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 128), out)
	assert.Equal(t, uint64(10000-375), remaining)

	double, _, err := RunPrecompiledContract(add, append(common.CopyBytes(g1), g1...), 10000, pragueRules, nil)
	require.NoError(t, err)
	msm := precompileAt(t, "0c", pragueRules)
	prod, err := msm.Run(append(common.CopyBytes(g1), common.LeftPadBytes([]byte{2}, 32)...), pragueRules)
	require.NoError(t, err)
	assert.Equal(t, double, prod)

	pair := precompileAt(t, "0f", pragueRules)
	out, err = pair.Run(make([]byte, 384), pragueRules)
	require.NoError(t, err)
	assert.Equal(t, true32Byte, out)

	// Empty input is rejected by the pairing check.
	_, _, err = RunPrecompiledContract(pair, nil, 100_000, pragueRules, nil)
	var perr *PrecompileError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "BLS12_PAIRING_CHECK", perr.Name)
	assert.True(t, IsPrecompileFailure(err))

	for _, addr := range []byte{0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10, 0x11} {
		_, ok := LookupPrecompile(common.BytesToAddress([]byte{addr}), cancunRules)
		assert.Falsef(t, ok, "precompile %#x active before Prague", addr)
	}
}

func TestModExpRepricing(t *testing.T) {
	p := precompileAt(t, "05", cancunRules)
	in := common.Hex2Bytes(precompiledTests["05"][0].Input)
	// EIP-198 charges nothing for a tiny exponent, EIP-2565 has a floor of 200.
	assert.Equal(t, uint64(0), RequiredGas(p, in, params.RulesForFork(forks.Byzantium)))
	assert.Equal(t, uint64(200), RequiredGas(p, in, params.RulesForFork(forks.Berlin)))
}

func BenchmarkPrecompiledEcrecover(bench *testing.B) {
	var (
		p  = &ecrecover{}
		in = common.Hex2Bytes(ecrecoverInput)
	)
	bench.ReportAllocs()
	bench.ResetTimer()
	for i := 0; i < bench.N; i++ {
		if _, err := p.Run(in, cancunRules); err != nil {
			bench.Fatal(err)
		}
	}
}
