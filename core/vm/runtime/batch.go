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

package runtime

import (
	"context"
	"math/big"
	goruntime "runtime"

	"github.com/holiman/uint256"
	"github.com/sunyihoo/go-evm/common"
	"github.com/sunyihoo/go-evm/core/state"
	"github.com/sunyihoo/go-evm/core/vm"
	"github.com/sunyihoo/go-evm/log"
	"golang.org/x/sync/errgroup"
)

// batchAnalysisCacheSize is the size of the analysis cache created for a
// batch whose config doesn't bring one.
const batchAnalysisCacheSize = 16 * 1024 * 1024

// Job is one independent execution in a batch.
type Job struct {
	Code    []byte          // installed at a fixed address and called, if set
	Address *common.Address // account to call when Code is nil
	Input   []byte
	Gas     uint64   // zero means the config gas limit
	Value   *big.Int // nil means the config value
}

// BatchResult holds the outcome of ExecuteBatch.
type BatchResult struct {
	Results []*vm.ExecutionResult // in job order
	States  []*state.StateDB      // post-state of each job, in job order
	Stats   *vm.Stats             // sum of the per-job stats, nil unless enabled
}

// ExecuteBatch runs the jobs concurrently, each on its own copy of cfg.State.
// Jobs share the chain config, the precompile registry and the analysis cache
// and nothing else, so results don't depend on scheduling. A tracer in cfg is
// shared by all jobs and must be safe for concurrent use.
//
// The returned error is only set if ctx is cancelled before every job finished.
func ExecuteBatch(ctx context.Context, jobs []Job, cfg *Config) (*BatchResult, error) {
	if cfg == nil {
		cfg = new(Config)
	}
	setDefaults(cfg)

	base := cfg.State
	if base == nil {
		base = state.New(state.NewDatabaseForTesting())
	}
	shared := *cfg
	if shared.EVMConfig.AnalysisCache == nil {
		shared.EVMConfig.AnalysisCache = vm.NewAnalysisCache(batchAnalysisCacheSize)
	}
	// Copies are taken up front, the base state is not touched concurrently.
	res := &BatchResult{
		Results: make([]*vm.ExecutionResult, len(jobs)),
		States:  make([]*state.StateDB, len(jobs)),
	}
	for i := range jobs {
		res.States[i] = base.Copy()
	}
	limit := cfg.Parallelism
	if limit <= 0 {
		limit = goruntime.NumCPU()
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res.Results[i] = execute(gctx, &shared, res.States[i], job)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if shared.EVMConfig.StatsEnabled {
		res.Stats = vm.NewStats()
		for _, r := range res.Results {
			res.Stats.Add(r.Stats)
		}
	}
	hits, misses := shared.EVMConfig.AnalysisCache.Stats()
	log.Debug("Executed batch", "jobs", len(jobs), "parallelism", limit, "analysis.hits", hits, "analysis.misses", misses)
	return res, nil
}

// execute runs a single job against statedb and assembles its result. The
// refund is capped the same way a transaction's would be.
func execute(ctx context.Context, cfg *Config, statedb *state.StateDB, job Job) *vm.ExecutionResult {
	var (
		evm   = newEnv(cfg, statedb)
		rules = cfg.rules()
		to    = contractAddress
		gas   = cfg.GasLimit
		value = cfg.Value
	)
	if job.Code == nil && job.Address != nil {
		to = *job.Address
	}
	if job.Gas != 0 {
		gas = job.Gas
	}
	if job.Value != nil {
		value = job.Value
	}
	stop := context.AfterFunc(ctx, evm.Cancel)
	defer stop()

	if hooks := cfg.EVMConfig.Tracer; hooks != nil && hooks.OnTxStart != nil {
		hooks.OnTxStart(evm.GetVMContext(), cfg.Origin, &to, gas, value)
	}
	statedb.Prepare(rules, cfg.Origin, cfg.Coinbase, &to, vm.ActivePrecompiles(rules), nil)
	if job.Code != nil {
		statedb.CreateAccount(to)
		statedb.SetCode(to, job.Code)
	}
	ret, leftOverGas, err := evm.Call(cfg.Origin, to, job.Input, gas, uint256.MustFromBig(value))

	used := gas - leftOverGas
	refund := min(statedb.GetRefund(), used/rules.RefundQuotient)
	result := &vm.ExecutionResult{
		Status:           vm.StatusOf(err),
		Output:           ret,
		GasUsed:          used - refund,
		GasRefund:        refund,
		Logs:             statedb.TxLogs(),
		TouchedAddresses: statedb.TouchedAddresses(),
		Err:              err,
		Stats:            evm.Stats(),
	}
	if hooks := cfg.EVMConfig.Tracer; hooks != nil && hooks.OnTxEnd != nil {
		hooks.OnTxEnd(result.GasUsed, nil)
	}
	return result
}
