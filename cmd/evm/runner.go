// Copyright 2017 The go-ethereum Authors
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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sunyihoo/go-evm/common"
	"github.com/sunyihoo/go-evm/core/state"
	"github.com/sunyihoo/go-evm/core/tracing"
	"github.com/sunyihoo/go-evm/core/vm"
	"github.com/sunyihoo/go-evm/core/vm/runtime"
	"github.com/sunyihoo/go-evm/eth/tracers/logger"
	"github.com/sunyihoo/go-evm/internal/flags"
	"github.com/sunyihoo/go-evm/log"
	"github.com/sunyihoo/go-evm/params"
	"github.com/urfave/cli/v2"
)

var (
	CodeFileFlag = &cli.StringFlag{
		Name:     "codefile",
		Usage:    "File containing EVM code. If '-' is specified, code is read from stdin ",
		Category: flags.VMCategory,
	}
	CreateFlag = &cli.BoolFlag{
		Name:     "create",
		Usage:    "Indicates the action should be create rather than call",
		Category: flags.VMCategory,
	}
)

var runCommand = &cli.Command{
	Action:    runCmd,
	Name:      "run",
	Usage:     "Run arbitrary evm binary",
	ArgsUsage: "<code>",
	Description: `The run command runs arbitrary EVM code.

The code is given as a hex string argument or through --codefile. The
execution environment and a prestate may be loaded from a TOML file with
--config.`,
	Flags: append(append([]cli.Flag{
		CodeFileFlag,
		CreateFlag,
		MaxDepthFlag,
		DBFlag,
		DataDirFlag,
		DumpFlag,
		StatsFlag,
		OpCountFlag,
	}, envFlags...), traceFlags...),
}

// execStats holds timing of the execution.
type execStats struct {
	Time    time.Duration `json:"time"`
	GasUsed uint64        `json:"gasUsed"`
}

func runCmd(ctx *cli.Context) error {
	if err := flags.CheckExclusive(ctx, TraceFlag, OpCountFlag); err != nil {
		return err
	}
	tracer, err := tracerFromFlags(ctx)
	if err != nil {
		return err
	}
	var counter *logger.OpCounter
	if ctx.Bool(OpCountFlag.Name) {
		counter = logger.NewOpCounter()
		tracer = counter.Hooks()
	}
	chainConfig, err := chainConfigFromFlags(ctx)
	if err != nil {
		return err
	}
	code, err := readCode(ctx)
	if err != nil {
		return err
	}
	input, err := readInput(ctx)
	if err != nil {
		return err
	}
	extraEips := ctx.IntSlice(ExtraEipsFlag.Name)
	for _, eip := range extraEips {
		if !vm.ValidEip(eip) {
			return fmt.Errorf("eip %d cannot be activated, available: %s", eip, strings.Join(vm.ActivateableEips(), ", "))
		}
	}
	db, err := openDatabase(ctx.String(DBFlag.Name), ctx.String(DataDirFlag.Name))
	if err != nil {
		return err
	}
	defer db.Close()

	statedb := state.New(state.NewDatabase(db))
	cfg := &runtime.Config{
		ChainConfig: chainConfig,
		GasLimit:    ctx.Uint64(GasFlag.Name),
		GasPrice:    flags.GlobalBig(ctx, PriceFlag.Name),
		Value:       flags.GlobalBig(ctx, ValueFlag.Name),
		State:       statedb,
		EVMConfig: vm.Config{
			Tracer:       tracer,
			ExtraEips:    extraEips,
			MaxCallDepth: ctx.Int(MaxDepthFlag.Name),
			StatsEnabled: ctx.Bool(StatsFlag.Name),
		},
	}
	if file := ctx.String(ConfigFileFlag.Name); file != "" {
		env, err := loadEnvConfig(file)
		if err != nil {
			return err
		}
		env.apply(cfg)
		if err := env.allocate(statedb); err != nil {
			return err
		}
	}
	log.Debug("Executing code", "fork", ctx.String(ForkFlag.Name), "size", len(code), "input", len(input), "gas", cfg.GasLimit)

	var (
		output  []byte
		gasUsed uint64
		stats   *vm.Stats
		execErr error
		start   = time.Now()
	)
	if ctx.Bool(CreateFlag.Name) {
		var (
			address  common.Address
			leftOver uint64
		)
		output, address, leftOver, execErr = runtime.Create(append(code, input...), cfg)
		gasUsed = cfg.GasLimit - leftOver
		fmt.Fprintf(os.Stderr, "Contract address: %v\n", address)
	} else {
		res, err := runtime.ExecuteBatch(context.Background(), []runtime.Job{{Code: code, Input: input}}, cfg)
		if err != nil {
			return err
		}
		result := res.Results[0]
		output, gasUsed, stats, execErr = result.Output, result.GasUsed, res.Stats, result.Err
		statedb = res.States[0]

		log.Info("Execution finished", "status", result.Status, "gas", result.GasUsed, "refund", result.GasRefund)
		if tracer != nil && len(result.Logs) > 0 {
			logger.WriteLogs(os.Stderr, result.Logs)
		}
	}
	elapsed := time.Since(start)

	if ctx.Bool(DumpFlag.Name) || ctx.String(DBFlag.Name) != "memory" {
		if err := statedb.Commit(chainConfig.IsEIP158(cfg.BlockNumber)); err != nil {
			return fmt.Errorf("failed to commit state: %v", err)
		}
	}
	if ctx.Bool(DumpFlag.Name) {
		fmt.Println(string(statedb.Dump(nil)))
	}
	if ctx.Bool(StatsFlag.Name) {
		printStats(os.Stderr, execStats{Time: elapsed, GasUsed: gasUsed}, stats)
		showDBStats(db)
	}
	if counter != nil {
		printOpCounts(os.Stderr, counter)
	}
	// Print the output even on revert, it carries the reason.
	fmt.Printf("%#x\n", output)
	if execErr != nil {
		fmt.Printf(" error: %v\n", execErr)
	}
	return nil
}

// chainConfigFromFlags resolves the chain config from --chainconfig, falling
// back to the --fork preset.
func chainConfigFromFlags(ctx *cli.Context) (*params.ChainConfig, error) {
	if file := ctx.String(ChainConfigFlag.Name); file != "" {
		return params.LoadChainConfig(file)
	}
	return params.LookupFork(ctx.String(ForkFlag.Name))
}

func readCode(ctx *cli.Context) ([]byte, error) {
	var hexcode []byte
	switch file := ctx.String(CodeFileFlag.Name); {
	case file == "-":
		src, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("could not load code from stdin: %v", err)
		}
		hexcode = src
	case file != "":
		src, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("could not load code from file: %v", err)
		}
		hexcode = src
	case ctx.Args().Len() > 0:
		hexcode = []byte(ctx.Args().First())
	default:
		return nil, errors.New("no code specified, pass it as argument or with --codefile")
	}
	code := common.FromHex(strings.TrimSpace(string(hexcode)))
	if len(code) == 0 {
		return nil, errors.New("code is empty or not hex")
	}
	return code, nil
}

func readInput(ctx *cli.Context) ([]byte, error) {
	if err := flags.CheckExclusive(ctx, InputFlag, InputFileFlag); err != nil {
		return nil, err
	}
	if file := ctx.String(InputFileFlag.Name); file != "" {
		src, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("could not load input from file: %v", err)
		}
		return common.FromHex(strings.TrimSpace(string(src))), nil
	}
	return common.FromHex(ctx.String(InputFlag.Name)), nil
}

func printStats(w io.Writer, exec execStats, stats *vm.Stats) {
	fmt.Fprintf(w, "EVM gas used:    %d\nexecution time:  %v\n", exec.GasUsed, exec.Time)
	if stats == nil {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(stats)
}

func printOpCounts(w io.Writer, counter *logger.OpCounter) {
	for _, c := range counter.Summary() {
		fmt.Fprintf(w, "%-16s %d\n", c.Name, c.Count)
	}
	fmt.Fprintf(w, "%-16s %d\n", "total", counter.Total())
	if faults := counter.Faults(); faults > 0 {
		fmt.Fprintf(w, "%-16s %d\n", "faults", faults)
	}
}

// structTracer collects struct logs and prints them in text form when the
// message ends.
type structTracer struct {
	*logger.StructLogger
	out io.Writer
}

func newStructTracer(cfg *logger.Config, out io.Writer) *structTracer {
	return &structTracer{StructLogger: logger.NewStructLogger(cfg), out: out}
}

func (t *structTracer) Hooks() *tracing.Hooks {
	hooks := t.StructLogger.Hooks()
	hooks.OnTxEnd = func(gasUsed uint64, err error) {
		t.StructLogger.OnTxEnd(gasUsed, err)
		logger.WriteTrace(t.out, t.StructLogs())
	}
	return hooks
}
