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
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sunyihoo/go-evm/params/forks"
)

func TestCheckConfigForkOrder(t *testing.T) {
	require.NoError(t, MainnetChainConfig.CheckConfigForkOrder())
	require.NoError(t, AllForksChainConfig.CheckConfigForkOrder())
	for _, cfg := range Forks {
		require.NoError(t, cfg.CheckConfigForkOrder())
	}

	// Berlin before Istanbul
	bad := *MainnetChainConfig
	bad.BerlinBlock = big.NewInt(1)
	require.Error(t, bad.CheckConfigForkOrder())

	// A skipped mandatory fork
	bad = *MainnetChainConfig
	bad.IstanbulBlock = nil
	require.Error(t, bad.CheckConfigForkOrder())

	// Cancun is optional between Shanghai and Prague, but not out of order.
	bad = *AllForksChainConfig
	bad.CancunTime = newUint64(10)
	bad.PragueTime = newUint64(5)
	require.Error(t, bad.CheckConfigForkOrder())
}

func TestRulesMainnet(t *testing.T) {
	for _, tt := range []struct {
		number uint64
		time   uint64
		fork   forks.Fork
	}{
		{0, 0, forks.Frontier},
		{1_149_999, 0, forks.Frontier},
		{1_150_000, 0, forks.Homestead},
		{2_463_000, 0, forks.TangerineWhistle},
		{2_675_000, 0, forks.SpuriousDragon},
		{4_370_000, 0, forks.Byzantium},
		{7_280_000, 0, forks.Petersburg},
		{9_069_000, 0, forks.Istanbul},
		{12_244_000, 0, forks.Berlin},
		{12_965_000, 0, forks.London},
		{15_537_394, 1663224179, forks.Paris},
		{17_034_870, 1681338455, forks.Shanghai},
		{19_426_587, 1710338135, forks.Cancun},
		{22_431_084, 1746612311, forks.Prague},
	} {
		rules := MainnetChainConfig.Rules(new(big.Int).SetUint64(tt.number), tt.time)
		require.Equal(t, tt.fork, rules.Fork(), "block %d time %d", tt.number, tt.time)
	}
	// Timestamp forks are not active before the merge block, whatever the time.
	rules := MainnetChainConfig.Rules(big.NewInt(15_000_000), 1746612311)
	require.False(t, rules.IsShanghai)
	require.Equal(t, forks.London, rules.Fork())
}

// Activation is monotonic: once a fork is active it stays active for every
// later block and timestamp.
func TestRulesMonotonic(t *testing.T) {
	prev := forks.Frontier
	for number := uint64(0); number < 24_000_000; number += 250_000 {
		time := uint64(1600000000) + number*12
		fork := MainnetChainConfig.Rules(new(big.Int).SetUint64(number), time).Fork()
		require.GreaterOrEqual(t, int(fork), int(prev), "block %d", number)
		prev = fork
	}
	require.Equal(t, forks.Prague, prev)
}

func TestRulesParameters(t *testing.T) {
	frontier := RulesForFork(forks.Frontier)
	require.Zero(t, frontier.CallGasFraction)
	require.Zero(t, frontier.MaxCodeSize)
	require.Equal(t, RefundQuotient, frontier.RefundQuotient)
	require.Equal(t, SstoreRefundGas, frontier.SstoreClearsScheduleRefund)
	require.Equal(t, Bn256AddGasByzantium, frontier.Bn256AddGas)

	istanbul := RulesForFork(forks.Istanbul)
	require.Equal(t, uint64(CallGasFraction), istanbul.CallGasFraction)
	require.Equal(t, uint64(MaxCodeSize), istanbul.MaxCodeSize)
	require.Equal(t, Bn256AddGasIstanbul, istanbul.Bn256AddGas)
	require.Equal(t, SstoreClearsScheduleRefundEIP2200, istanbul.SstoreClearsScheduleRefund)

	london := RulesForFork(forks.London)
	require.Equal(t, RefundQuotientEIP3529, london.RefundQuotient)
	require.Zero(t, london.SelfdestructRefund)
	require.Zero(t, london.MaxInitCodeSize)

	cancun := RulesForFork(forks.Cancun)
	require.Equal(t, uint64(MaxInitCodeSize), cancun.MaxInitCodeSize)
	require.Equal(t, uint64(MaxBlobsPerBlockCancun), cancun.MaxBlobsPerBlock)
	require.Equal(t, uint64(BlobTxPointEvaluationPrecompileGas), cancun.PointEvaluationGas)
	require.Equal(t, uint64(MaxBlobsPerBlockPrague), RulesForFork(forks.Prague).MaxBlobsPerBlock)

	for f := forks.Frontier; f <= forks.Prague; f++ {
		require.Equal(t, f, RulesForFork(f).Fork())
		require.Equal(t, RulesForFork(f), ForkConfig(f).Rules(big.NewInt(0), 0))
	}
}

func TestConstantinoplePreset(t *testing.T) {
	head := big.NewInt(0)
	cfg := ForkConfig(forks.Constantinople)
	require.True(t, cfg.IsConstantinople(head))
	require.False(t, cfg.IsPetersburg(head))
	require.Equal(t, forks.Constantinople, cfg.Rules(head, 0).Fork())
	require.NoError(t, cfg.CheckConfigForkOrder())

	require.True(t, ForkConfig(forks.Petersburg).IsPetersburg(head))
}

func TestDecodeChainConfig(t *testing.T) {
	cfg, err := DecodeChainConfig(strings.NewReader(`
ChainID = 5
HomesteadBlock = 0
EIP150Block = 0
EIP155Block = 0
EIP158Block = 0
ByzantiumBlock = 10
`))
	require.NoError(t, err)
	require.Zero(t, cfg.ChainID.Cmp(big.NewInt(5)))
	require.False(t, cfg.Rules(big.NewInt(9), 0).IsByzantium)
	require.True(t, cfg.Rules(big.NewInt(10), 0).IsByzantium)

	_, err = DecodeChainConfig(strings.NewReader("Unknown = 1\n"))
	require.Error(t, err)

	_, err = LookupFork("cancun")
	require.NoError(t, err)
	_, err = LookupFork("nope")
	require.Error(t, err)
}
