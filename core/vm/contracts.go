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

package vm

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"math/big"
	"sort"

	"github.com/sunyihoo/go-evm/common"
	"github.com/sunyihoo/go-evm/common/math"
	"github.com/sunyihoo/go-evm/core/tracing"
	"github.com/sunyihoo/go-evm/crypto"
	"github.com/sunyihoo/go-evm/crypto/blake2b"
	"github.com/sunyihoo/go-evm/crypto/bls12381"
	"github.com/sunyihoo/go-evm/crypto/bn256"
	"github.com/sunyihoo/go-evm/crypto/kzg4844"
	"github.com/sunyihoo/go-evm/params"
	"golang.org/x/crypto/ripemd160"
)

// PrecompiledContract is the basic interface for native Go contracts. The
// implementation requires a deterministic gas count based on the input size
// of the Run method of the contract. Gas is split into a fixed base part and
// a data dependent part, both priced by the active fork.
type PrecompiledContract interface {
	Name() string
	BaseGas(input []byte, rules params.Rules) uint64 // fixed cost of a single invocation
	DataGas(input []byte, rules params.Rules) uint64 // input dependent cost
	Run(input []byte, rules params.Rules) ([]byte, error)
}

// PrecompiledContracts contains the precompiled contracts active at a fork.
type PrecompiledContracts map[common.Address]PrecompiledContract

// precompileDescriptor binds a contract to the predicate deciding whether it
// is reachable under a given fork.
type precompileDescriptor struct {
	contract PrecompiledContract
	active   func(params.Rules) bool
}

func always(params.Rules) bool { return true }

func isPrague(r params.Rules) bool { return r.IsPrague }

// precompileRegistry is the closed set of native contracts known to the
// engine. Repricing between forks is handled by the contracts themselves, so
// every address maps to exactly one implementation.
var precompileRegistry = map[common.Address]precompileDescriptor{
	common.BytesToAddress([]byte{0x01}): {&ecrecover{}, always},
	common.BytesToAddress([]byte{0x02}): {&sha256hash{}, always},
	common.BytesToAddress([]byte{0x03}): {&ripemd160hash{}, always},
	common.BytesToAddress([]byte{0x04}): {&dataCopy{}, always},
	common.BytesToAddress([]byte{0x05}): {&bigModExp{}, func(r params.Rules) bool { return r.IsByzantium }},
	common.BytesToAddress([]byte{0x06}): {&bn256Add{}, func(r params.Rules) bool { return r.IsByzantium }},
	common.BytesToAddress([]byte{0x07}): {&bn256ScalarMul{}, func(r params.Rules) bool { return r.IsByzantium }},
	common.BytesToAddress([]byte{0x08}): {&bn256Pairing{}, func(r params.Rules) bool { return r.IsByzantium }},
	common.BytesToAddress([]byte{0x09}): {&blake2F{}, func(r params.Rules) bool { return r.IsIstanbul }},
	common.BytesToAddress([]byte{0x0a}): {&kzgPointEvaluation{}, func(r params.Rules) bool { return r.IsCancun }},
	common.BytesToAddress([]byte{0x0b}): {&bls12381G1Add{}, isPrague},
	common.BytesToAddress([]byte{0x0c}): {&bls12381G1MultiExp{}, isPrague},
	common.BytesToAddress([]byte{0x0d}): {&bls12381G2Add{}, isPrague},
	common.BytesToAddress([]byte{0x0e}): {&bls12381G2MultiExp{}, isPrague},
	common.BytesToAddress([]byte{0x0f}): {&bls12381Pairing{}, isPrague},
	common.BytesToAddress([]byte{0x10}): {&bls12381MapFpToG1{}, isPrague},
	common.BytesToAddress([]byte{0x11}): {&bls12381MapFp2ToG2{}, isPrague},
}

// activePrecompiledContracts returns the contracts reachable under rules.
func activePrecompiledContracts(rules params.Rules) PrecompiledContracts {
	active := make(PrecompiledContracts, len(precompileRegistry))
	for addr, desc := range precompileRegistry {
		if desc.active(rules) {
			active[addr] = desc.contract
		}
	}
	return active
}

// ActivePrecompiles returns the addresses of the precompiles enabled with the
// given rules, in ascending order.
func ActivePrecompiles(rules params.Rules) []common.Address {
	addrs := make([]common.Address, 0, len(precompileRegistry))
	for addr, desc := range precompileRegistry {
		if desc.active(rules) {
			addrs = append(addrs, addr)
		}
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Cmp(addrs[j]) < 0 })
	return addrs
}

// LookupPrecompile returns the contract at addr if it is active under rules.
func LookupPrecompile(addr common.Address, rules params.Rules) (PrecompiledContract, bool) {
	desc, ok := precompileRegistry[addr]
	if !ok || !desc.active(rules) {
		return nil, false
	}
	return desc.contract, true
}

// RequiredGas returns the total cost of running p on input.
func RequiredGas(p PrecompiledContract, input []byte, rules params.Rules) uint64 {
	return math.SaturatingAdd(p.BaseGas(input, rules), p.DataGas(input, rules))
}

// RunPrecompiledContract runs and evaluates the output of a precompiled contract.
// It returns
// - the returned bytes,
// - the _remaining_ gas,
// - any error that occurred
//
// Too little gas is an exceptional halt. Any error signaled by the contract
// itself is wrapped in a *PrecompileError.
func RunPrecompiledContract(p PrecompiledContract, input []byte, suppliedGas uint64, rules params.Rules, logger *tracing.Hooks) (ret []byte, remainingGas uint64, err error) {
	gasCost := RequiredGas(p, input, rules)
	if suppliedGas < gasCost {
		return nil, 0, ErrOutOfGas
	}
	if logger != nil && logger.OnGasChange != nil {
		logger.OnGasChange(suppliedGas, suppliedGas-gasCost, tracing.GasChangeCallPrecompiledContract)
	}
	suppliedGas -= gasCost
	output, err := p.Run(input, rules)
	if err != nil {
		return nil, suppliedGas, &PrecompileError{Name: p.Name(), Err: err}
	}
	return output, suppliedGas, nil
}

// wordGas prices size bytes at perWord per started 32 byte word.
func wordGas(size int, perWord uint64) uint64 {
	return (uint64(size) + 31) / 32 * perWord
}

// ecrecover implemented as a native contract.
type ecrecover struct{}

func (c *ecrecover) Name() string { return "ECREC" }

func (c *ecrecover) BaseGas(input []byte, rules params.Rules) uint64 {
	return rules.EcrecoverGas
}

func (c *ecrecover) DataGas(input []byte, rules params.Rules) uint64 { return 0 }

func (c *ecrecover) Run(input []byte, rules params.Rules) ([]byte, error) {
	const ecRecoverInputLength = 128

	input = common.RightPadBytes(input, ecRecoverInputLength)
	// "input" is (hash, v, r, s), each 32 bytes
	// but for ecrecover we want (r, s, v)

	r := new(big.Int).SetBytes(input[64:96])
	s := new(big.Int).SetBytes(input[96:128])
	v := input[63] - 27

	// tighter sig s values input homestead only apply to tx sigs
	if !allZero(input[32:63]) || !crypto.ValidateSignatureValues(v, r, s, false) {
		return nil, nil
	}
	// We must make sure not to modify the 'input', so placing the 'v' along with
	// the signature needs to be done on a new allocation
	sig := make([]byte, 65)
	copy(sig, input[64:128])
	sig[64] = v
	// v needs to be at the end for libsecp256k1
	pubKey, err := crypto.Ecrecover(input[:32], sig)
	// make sure the public key is a valid one
	if err != nil {
		return nil, nil
	}

	// the first byte of pubkey is bitcoin heritage
	return common.LeftPadBytes(crypto.Keccak256(pubKey[1:])[12:], 32), nil
}

// SHA256 implemented as a native contract.
type sha256hash struct{}

func (c *sha256hash) Name() string { return "SHA256" }

func (c *sha256hash) BaseGas(input []byte, rules params.Rules) uint64 {
	return rules.Sha256BaseGas
}

func (c *sha256hash) DataGas(input []byte, rules params.Rules) uint64 {
	return wordGas(len(input), rules.Sha256PerWordGas)
}

func (c *sha256hash) Run(input []byte, rules params.Rules) ([]byte, error) {
	h := sha256.Sum256(input)
	return h[:], nil
}

// RIPEMD160 implemented as a native contract.
type ripemd160hash struct{}

func (c *ripemd160hash) Name() string { return "RIPEMD160" }

func (c *ripemd160hash) BaseGas(input []byte, rules params.Rules) uint64 {
	return rules.Ripemd160BaseGas
}

func (c *ripemd160hash) DataGas(input []byte, rules params.Rules) uint64 {
	return wordGas(len(input), rules.Ripemd160PerWordGas)
}

func (c *ripemd160hash) Run(input []byte, rules params.Rules) ([]byte, error) {
	ripemd := ripemd160.New()
	ripemd.Write(input)
	return common.LeftPadBytes(ripemd.Sum(nil), 32), nil
}

// data copy implemented as a native contract.
type dataCopy struct{}

func (c *dataCopy) Name() string { return "ID" }

func (c *dataCopy) BaseGas(input []byte, rules params.Rules) uint64 {
	return rules.IdentityBaseGas
}

func (c *dataCopy) DataGas(input []byte, rules params.Rules) uint64 {
	return wordGas(len(input), rules.IdentityPerWordGas)
}

func (c *dataCopy) Run(input []byte, rules params.Rules) ([]byte, error) {
	return common.CopyBytes(input), nil
}

// bigModExp implements a native big integer exponential modular operation.
// The EIP-2565 pricing applies from Berlin on.
type bigModExp struct{}

var (
	big1      = big.NewInt(1)
	big3      = big.NewInt(3)
	big7      = big.NewInt(7)
	big8      = big.NewInt(8)
	big20     = big.NewInt(20)
	big32     = big.NewInt(32)
	big64     = big.NewInt(64)
	big96     = big.NewInt(96)
	big480    = big.NewInt(480)
	big1024   = big.NewInt(1024)
	big3072   = big.NewInt(3072)
	big199680 = big.NewInt(199680)
)

func bigMax(x, y *big.Int) *big.Int {
	if x.Cmp(y) < 0 {
		return y
	}
	return x
}

// modexpMultComplexity implements bigModexp multComplexity formula, as defined in EIP-198
//
//	def mult_complexity(x):
//		if x <= 64: return x ** 2
//		elif x <= 1024: return x ** 2 // 4 + 96 * x - 3072
//		else: return x ** 2 // 16 + 480 * x - 199680
//
// where is x is max(length_of_MODULUS, length_of_BASE)
func modexpMultComplexity(x *big.Int) *big.Int {
	switch {
	case x.Cmp(big64) <= 0:
		x.Mul(x, x) // x ** 2
	case x.Cmp(big1024) <= 0:
		// (x ** 2 // 4 ) + ( 96 * x - 3072)
		x = new(big.Int).Add(
			new(big.Int).Rsh(new(big.Int).Mul(x, x), 2),
			new(big.Int).Sub(new(big.Int).Mul(big96, x), big3072),
		)
	default:
		// (x ** 2 // 16) + (480 * x - 199680)
		x = new(big.Int).Add(
			new(big.Int).Rsh(new(big.Int).Mul(x, x), 4),
			new(big.Int).Sub(new(big.Int).Mul(big480, x), big199680),
		)
	}
	return x
}

func (c *bigModExp) Name() string { return "MODEXP" }

func (c *bigModExp) BaseGas(input []byte, rules params.Rules) uint64 { return 0 }

func (c *bigModExp) DataGas(input []byte, rules params.Rules) uint64 {
	var (
		baseLen = new(big.Int).SetBytes(getData(input, 0, 32))
		expLen  = new(big.Int).SetBytes(getData(input, 32, 32))
		modLen  = new(big.Int).SetBytes(getData(input, 64, 32))
	)
	if len(input) > 96 {
		input = input[96:]
	} else {
		input = input[:0]
	}
	// Retrieve the head 32 bytes of exp for the adjusted exponent length
	var expHead *big.Int
	if big.NewInt(int64(len(input))).Cmp(baseLen) <= 0 {
		expHead = new(big.Int)
	} else {
		if expLen.Cmp(big32) > 0 {
			expHead = new(big.Int).SetBytes(getData(input, baseLen.Uint64(), 32))
		} else {
			expHead = new(big.Int).SetBytes(getData(input, baseLen.Uint64(), expLen.Uint64()))
		}
	}
	// Calculate the adjusted exponent length
	var msb int
	if bitlen := expHead.BitLen(); bitlen > 0 {
		msb = bitlen - 1
	}
	adjExpLen := new(big.Int)
	if expLen.Cmp(big32) > 0 {
		adjExpLen.Sub(expLen, big32)
		adjExpLen.Mul(big8, adjExpLen)
	}
	adjExpLen.Add(adjExpLen, big.NewInt(int64(msb)))
	// Calculate the gas cost of the operation
	gas := new(big.Int).Set(bigMax(modLen, baseLen))
	if rules.IsBerlin {
		// EIP-2565 has three changes
		// 1. Different multComplexity (inlined here)
		// in EIP-2565 (https://eips.ethereum.org/EIPS/eip-2565):
		//
		// def mult_complexity(x):
		//    ceiling(x/8)^2
		//
		// where is x is max_length_of_modulus_and_base
		gas = gas.Add(gas, big7)
		gas = gas.Div(gas, big8)
		gas.Mul(gas, gas)

		gas.Mul(gas, bigMax(adjExpLen, big1))
		// 2. Different divisor (`GQUADDIVISOR`) (3)
		gas.Div(gas, big3)
		if gas.BitLen() > 64 {
			return math.MaxUint64
		}
		// 3. Minimum price of 200 gas
		if gas.Uint64() < 200 {
			return 200
		}
		return gas.Uint64()
	}
	gas = modexpMultComplexity(gas)
	gas.Mul(gas, bigMax(adjExpLen, big1))
	gas.Div(gas, big20)

	if gas.BitLen() > 64 {
		return math.MaxUint64
	}
	return gas.Uint64()
}

func (c *bigModExp) Run(input []byte, rules params.Rules) ([]byte, error) {
	var (
		baseLen = new(big.Int).SetBytes(getData(input, 0, 32)).Uint64()
		expLen  = new(big.Int).SetBytes(getData(input, 32, 32)).Uint64()
		modLen  = new(big.Int).SetBytes(getData(input, 64, 32)).Uint64()
	)
	if len(input) > 96 {
		input = input[96:]
	} else {
		input = input[:0]
	}
	// Handle a special case when both the base and mod length is zero
	if baseLen == 0 && modLen == 0 {
		return []byte{}, nil
	}
	// Retrieve the operands and execute the exponentiation
	var (
		base = new(big.Int).SetBytes(getData(input, 0, baseLen))
		exp  = new(big.Int).SetBytes(getData(input, baseLen, expLen))
		mod  = new(big.Int).SetBytes(getData(input, baseLen+expLen, modLen))
		v    []byte
	)
	switch {
	case mod.BitLen() == 0:
		// Modulo 0 is undefined, return zero
		return common.LeftPadBytes([]byte{}, int(modLen)), nil
	case base.BitLen() == 1: // a bit length of 1 means it's 1 (or -1).
		// If base == 1, then we can just return base % mod (if mod >= 1, which it is)
		v = base.Mod(base, mod).Bytes()
	default:
		v = base.Exp(base, exp, mod).Bytes()
	}
	return common.LeftPadBytes(v, int(modLen)), nil
}

// newCurvePoint unmarshals a binary blob into a bn256 elliptic curve point,
// returning it, or an error if the point is invalid.
func newCurvePoint(blob []byte) (*bn256.G1, error) {
	p := new(bn256.G1)
	if _, err := p.Unmarshal(blob); err != nil {
		return nil, err
	}
	return p, nil
}

// newTwistPoint unmarshals a binary blob into a bn256 elliptic curve point,
// returning it, or an error if the point is invalid.
func newTwistPoint(blob []byte) (*bn256.G2, error) {
	p := new(bn256.G2)
	if _, err := p.Unmarshal(blob); err != nil {
		return nil, err
	}
	return p, nil
}

// bn256Add implements a native elliptic curve point addition conforming to
// Byzantium consensus rules, repriced by EIP-1108 from Istanbul on.
type bn256Add struct{}

func (c *bn256Add) Name() string { return "BN254_ADD" }

func (c *bn256Add) BaseGas(input []byte, rules params.Rules) uint64 { return rules.Bn256AddGas }

func (c *bn256Add) DataGas(input []byte, rules params.Rules) uint64 { return 0 }

func (c *bn256Add) Run(input []byte, rules params.Rules) ([]byte, error) {
	x, err := newCurvePoint(getData(input, 0, 64))
	if err != nil {
		return nil, err
	}
	y, err := newCurvePoint(getData(input, 64, 64))
	if err != nil {
		return nil, err
	}
	res := new(bn256.G1)
	res.Add(x, y)
	return res.Marshal(), nil
}

// bn256ScalarMul implements a native elliptic curve scalar multiplication
// conforming to Byzantium consensus rules, repriced from Istanbul on.
type bn256ScalarMul struct{}

func (c *bn256ScalarMul) Name() string { return "BN254_MUL" }

func (c *bn256ScalarMul) BaseGas(input []byte, rules params.Rules) uint64 {
	return rules.Bn256ScalarMulGas
}

func (c *bn256ScalarMul) DataGas(input []byte, rules params.Rules) uint64 { return 0 }

func (c *bn256ScalarMul) Run(input []byte, rules params.Rules) ([]byte, error) {
	p, err := newCurvePoint(getData(input, 0, 64))
	if err != nil {
		return nil, err
	}
	res := new(bn256.G1)
	res.ScalarMult(p, new(big.Int).SetBytes(getData(input, 64, 32)))
	return res.Marshal(), nil
}

var (
	// true32Byte is returned if the bn256 pairing check succeeds.
	true32Byte = []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}

	// false32Byte is returned if the bn256 pairing check fails.
	false32Byte = make([]byte, 32)

	// errBadPairingInput is returned if the bn256 pairing input is invalid.
	errBadPairingInput = errors.New("bad elliptic curve pairing size")
)

// bn256Pairing implements a pairing pre-compile for the bn256 curve
// conforming to Byzantium consensus rules, repriced from Istanbul on.
type bn256Pairing struct{}

func (c *bn256Pairing) Name() string { return "BN254_PAIRING" }

func (c *bn256Pairing) BaseGas(input []byte, rules params.Rules) uint64 {
	return rules.Bn256PairingBaseGas
}

func (c *bn256Pairing) DataGas(input []byte, rules params.Rules) uint64 {
	return uint64(len(input)/192) * rules.Bn256PairingPerPointGas
}

func (c *bn256Pairing) Run(input []byte, rules params.Rules) ([]byte, error) {
	// Handle some corner cases cheaply
	if len(input)%192 > 0 {
		return nil, errBadPairingInput
	}
	// Convert the input into a set of coordinates
	var (
		cs []*bn256.G1
		ts []*bn256.G2
	)
	for i := 0; i < len(input); i += 192 {
		c, err := newCurvePoint(input[i : i+64])
		if err != nil {
			return nil, err
		}
		t, err := newTwistPoint(input[i+64 : i+192])
		if err != nil {
			return nil, err
		}
		cs = append(cs, c)
		ts = append(ts, t)
	}
	// Execute the pairing checks and return the results
	if bn256.PairingCheck(cs, ts) {
		return true32Byte, nil
	}
	return false32Byte, nil
}

type blake2F struct{}

func (c *blake2F) Name() string { return "BLAKE2F" }

func (c *blake2F) BaseGas(input []byte, rules params.Rules) uint64 { return 0 }

func (c *blake2F) DataGas(input []byte, rules params.Rules) uint64 {
	// If the input is malformed, we can't calculate the gas, return 0 and let the
	// actual call choke and fault.
	if len(input) != blake2FInputLength {
		return 0
	}
	return uint64(binary.BigEndian.Uint32(input[0:4])) * params.Blake2FPerRoundGas
}

const (
	blake2FInputLength        = 213
	blake2FFinalBlockBytes    = byte(1)
	blake2FNonFinalBlockBytes = byte(0)
)

var (
	errBlake2FInvalidInputLength = errors.New("invalid input length")
	errBlake2FInvalidFinalFlag   = errors.New("invalid final flag")
)

func (c *blake2F) Run(input []byte, rules params.Rules) ([]byte, error) {
	// Make sure the input is valid (correct length and final flag)
	if len(input) != blake2FInputLength {
		return nil, errBlake2FInvalidInputLength
	}
	if input[212] != blake2FNonFinalBlockBytes && input[212] != blake2FFinalBlockBytes {
		return nil, errBlake2FInvalidFinalFlag
	}
	// Parse the input into the Blake2b call parameters
	var (
		rounds = binary.BigEndian.Uint32(input[0:4])
		final  = input[212] == blake2FFinalBlockBytes

		h [8]uint64
		m [16]uint64
		t [2]uint64
	)
	for i := 0; i < 8; i++ {
		offset := 4 + i*8
		h[i] = binary.LittleEndian.Uint64(input[offset : offset+8])
	}
	for i := 0; i < 16; i++ {
		offset := 68 + i*8
		m[i] = binary.LittleEndian.Uint64(input[offset : offset+8])
	}
	t[0] = binary.LittleEndian.Uint64(input[196:204])
	t[1] = binary.LittleEndian.Uint64(input[204:212])

	// Execute the compression function, extract and return the result
	blake2b.F(&h, m, t, final, rounds)

	output := make([]byte, 64)
	for i := 0; i < 8; i++ {
		offset := i * 8
		binary.LittleEndian.PutUint64(output[offset:offset+8], h[i])
	}
	return output, nil
}

// kzgPointEvaluation implements the EIP-4844 point evaluation precompile.
type kzgPointEvaluation struct{}

func (b *kzgPointEvaluation) Name() string { return "KZG_POINT_EVALUATION" }

func (b *kzgPointEvaluation) BaseGas(input []byte, rules params.Rules) uint64 {
	return rules.PointEvaluationGas
}

func (b *kzgPointEvaluation) DataGas(input []byte, rules params.Rules) uint64 { return 0 }

func (b *kzgPointEvaluation) Run(input []byte, rules params.Rules) ([]byte, error) {
	return kzg4844.PointEvaluation(input)
}

// msmGas prices a multi exponentiation of k pairs with the EIP-2537 discount
// table. Inputs of more than 128 pairs get the last discount.
// 超过 128 对时沿用折扣表的最后一项。
func msmGas(input []byte, pairSize int, mulGas uint64, discounts *[128]uint64) uint64 {
	k := uint64(len(input) / pairSize)
	if k == 0 {
		return 0
	}
	discount := discounts[len(discounts)-1]
	if k <= uint64(len(discounts)) {
		discount = discounts[k-1]
	}
	gas, overflow := math.SafeMul(k*mulGas, discount)
	if overflow {
		return math.MaxUint64
	}
	return gas / 1000
}

// bls12381G1Add implements EIP-2537 G1Add precompile.
type bls12381G1Add struct{}

func (c *bls12381G1Add) Name() string { return "BLS12_G1ADD" }

func (c *bls12381G1Add) BaseGas(input []byte, rules params.Rules) uint64 {
	return params.Bls12381G1AddGas
}

func (c *bls12381G1Add) DataGas(input []byte, rules params.Rules) uint64 { return 0 }

func (c *bls12381G1Add) Run(input []byte, rules params.Rules) ([]byte, error) {
	return bls12381.G1Add(input)
}

// bls12381G1MultiExp implements EIP-2537 G1MSM precompile.
type bls12381G1MultiExp struct{}

func (c *bls12381G1MultiExp) Name() string { return "BLS12_G1MSM" }

func (c *bls12381G1MultiExp) BaseGas(input []byte, rules params.Rules) uint64 { return 0 }

func (c *bls12381G1MultiExp) DataGas(input []byte, rules params.Rules) uint64 {
	return msmGas(input, bls12381.G1PairSize, params.Bls12381G1MulGas, &params.Bls12381G1MultiExpDiscountTable)
}

func (c *bls12381G1MultiExp) Run(input []byte, rules params.Rules) ([]byte, error) {
	return bls12381.G1MultiExp(input)
}

// bls12381G2Add implements EIP-2537 G2Add precompile.
type bls12381G2Add struct{}

func (c *bls12381G2Add) Name() string { return "BLS12_G2ADD" }

func (c *bls12381G2Add) BaseGas(input []byte, rules params.Rules) uint64 {
	return params.Bls12381G2AddGas
}

func (c *bls12381G2Add) DataGas(input []byte, rules params.Rules) uint64 { return 0 }

func (c *bls12381G2Add) Run(input []byte, rules params.Rules) ([]byte, error) {
	return bls12381.G2Add(input)
}

// bls12381G2MultiExp implements EIP-2537 G2MSM precompile.
type bls12381G2MultiExp struct{}

func (c *bls12381G2MultiExp) Name() string { return "BLS12_G2MSM" }

func (c *bls12381G2MultiExp) BaseGas(input []byte, rules params.Rules) uint64 { return 0 }

func (c *bls12381G2MultiExp) DataGas(input []byte, rules params.Rules) uint64 {
	return msmGas(input, bls12381.G2PairSize, params.Bls12381G2MulGas, &params.Bls12381G2MultiExpDiscountTable)
}

func (c *bls12381G2MultiExp) Run(input []byte, rules params.Rules) ([]byte, error) {
	return bls12381.G2MultiExp(input)
}

// bls12381Pairing implements EIP-2537 Pairing precompile.
type bls12381Pairing struct{}

func (c *bls12381Pairing) Name() string { return "BLS12_PAIRING_CHECK" }

func (c *bls12381Pairing) BaseGas(input []byte, rules params.Rules) uint64 {
	return params.Bls12381PairingBaseGas
}

func (c *bls12381Pairing) DataGas(input []byte, rules params.Rules) uint64 {
	return uint64(len(input)/bls12381.PairingSize) * params.Bls12381PairingPerPairGas
}

func (c *bls12381Pairing) Run(input []byte, rules params.Rules) ([]byte, error) {
	ok, err := bls12381.PairingCheck(input)
	if err != nil {
		return nil, err
	}
	if ok {
		return true32Byte, nil
	}
	return false32Byte, nil
}

// bls12381MapFpToG1 implements EIP-2537 MapG1 precompile.
type bls12381MapFpToG1 struct{}

func (c *bls12381MapFpToG1) Name() string { return "BLS12_MAP_FP_TO_G1" }

func (c *bls12381MapFpToG1) BaseGas(input []byte, rules params.Rules) uint64 {
	return params.Bls12381MapG1Gas
}

func (c *bls12381MapFpToG1) DataGas(input []byte, rules params.Rules) uint64 { return 0 }

func (c *bls12381MapFpToG1) Run(input []byte, rules params.Rules) ([]byte, error) {
	return bls12381.MapFpToG1(input)
}

// bls12381MapFp2ToG2 implements EIP-2537 MapG2 precompile.
type bls12381MapFp2ToG2 struct{}

func (c *bls12381MapFp2ToG2) Name() string { return "BLS12_MAP_FP2_TO_G2" }

func (c *bls12381MapFp2ToG2) BaseGas(input []byte, rules params.Rules) uint64 {
	return params.Bls12381MapG2Gas
}

func (c *bls12381MapFp2ToG2) DataGas(input []byte, rules params.Rules) uint64 { return 0 }

func (c *bls12381MapFp2ToG2) Run(input []byte, rules params.Rules) ([]byte, error) {
	return bls12381.MapFp2ToG2(input)
}

// PrecompileNames maps the active precompile addresses to their names.
func PrecompileNames(rules params.Rules) map[common.Address]string {
	names := make(map[common.Address]string)
	for _, addr := range ActivePrecompiles(rules) {
		names[addr] = precompileRegistry[addr].contract.Name()
	}
	return names
}

// isEcrecover reports whether the precompile is the signature recovery one,
// which is counted separately in Stats.
func isEcrecover(p PrecompiledContract) bool {
	_, ok := p.(*ecrecover)
	return ok
}

func allZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
