// Copyright 2014 The go-ethereum Authors
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

// evm executes EVM code snippets.
package main

import (
	"fmt"
	"math/big"
	"os"

	"github.com/sunyihoo/go-evm/core/tracing"
	"github.com/sunyihoo/go-evm/eth/tracers/logger"
	"github.com/sunyihoo/go-evm/internal/debug"
	"github.com/sunyihoo/go-evm/internal/flags"
	"github.com/urfave/cli/v2"
)

var (
	// Execution environment flags.
	ForkFlag = &cli.StringFlag{
		Name:     "fork",
		Usage:    "Fork ruleset to execute under",
		Value:    "Prague",
		Category: flags.VMCategory,
	}
	ChainConfigFlag = &cli.StringFlag{
		Name:     "chainconfig",
		Usage:    "TOML chain config file, overrides --fork",
		Category: flags.VMCategory,
	}
	ConfigFileFlag = &cli.StringFlag{
		Name:     "config",
		Usage:    "TOML file with the execution environment",
		Category: flags.VMCategory,
	}
	GasFlag = &cli.Uint64Flag{
		Name:     "gas",
		Usage:    "Gas limit for the evm",
		Value:    10000000000,
		Category: flags.VMCategory,
	}
	PriceFlag = &flags.BigFlag{
		Name:     "price",
		Usage:    "Price set for the evm",
		Value:    new(big.Int),
		Category: flags.VMCategory,
	}
	ValueFlag = &flags.BigFlag{
		Name:     "value",
		Usage:    "Value set for the evm",
		Value:    new(big.Int),
		Category: flags.VMCategory,
	}
	MaxDepthFlag = &cli.IntFlag{
		Name:     "maxdepth",
		Usage:    "Maximum call depth, 0 means the protocol limit",
		Category: flags.VMCategory,
	}
	ExtraEipsFlag = &cli.IntSliceFlag{
		Name:     "vm.eips",
		Usage:    "EIPs to activate on top of the fork, see 'evm forks'",
		Category: flags.VMCategory,
	}
	InputFlag = &cli.StringFlag{
		Name:     "input",
		Usage:    "Input for the EVM",
		Category: flags.VMCategory,
	}
	InputFileFlag = &cli.StringFlag{
		Name:     "inputfile",
		Usage:    "File containing input for the EVM",
		Category: flags.VMCategory,
	}

	// State flags.
	DBFlag = &cli.StringFlag{
		Name:     "db",
		Usage:    "State database backend (memory|pebble|leveldb)",
		Value:    "memory",
		Category: flags.StateCategory,
	}
	DataDirFlag = &flags.DirectoryFlag{
		Name:     "datadir",
		Usage:    "Directory of the on-disk state database",
		Value:    flags.DirectoryString("evmdata"),
		Category: flags.StateCategory,
	}
	DumpFlag = &cli.BoolFlag{
		Name:     "dump",
		Usage:    "Dumps the state after the run",
		Category: flags.StateCategory,
	}

	// Debugging flags.
	StatsFlag = &cli.BoolFlag{
		Name:  "stats",
		Usage: "Collects and prints execution statistics",
	}
	OpCountFlag = &cli.BoolFlag{
		Name:  "opcount",
		Usage: "Prints the executed opcodes by frequency",
	}

	// Tracing flags.
	TraceFlag = &cli.BoolFlag{
		Name:     "trace",
		Usage:    "Enable tracing and output trace log.",
		Category: flags.TracingCategory,
	}
	TraceFormatFlag = &cli.StringFlag{
		Name:     "trace.format",
		Usage:    "Trace output format to use (json|struct)",
		Value:    "json",
		Category: flags.TracingCategory,
	}
	TraceDisableMemoryFlag = &cli.BoolFlag{
		Name:     "trace.nomemory",
		Aliases:  []string{"nomemory"},
		Value:    true,
		Usage:    "disable memory output",
		Category: flags.TracingCategory,
	}
	TraceDisableStackFlag = &cli.BoolFlag{
		Name:     "trace.nostack",
		Aliases:  []string{"nostack"},
		Usage:    "disable stack output",
		Category: flags.TracingCategory,
	}
	TraceDisableStorageFlag = &cli.BoolFlag{
		Name:     "trace.nostorage",
		Aliases:  []string{"nostorage"},
		Usage:    "disable storage output",
		Category: flags.TracingCategory,
	}
	TraceDisableReturnDataFlag = &cli.BoolFlag{
		Name:     "trace.noreturndata",
		Aliases:  []string{"noreturndata"},
		Value:    true,
		Usage:    "disable return data output",
		Category: flags.TracingCategory,
	}
)

// traceFlags contains flags that configure tracing output.
var traceFlags = []cli.Flag{
	TraceFlag,
	TraceFormatFlag,
	TraceDisableStackFlag,
	TraceDisableMemoryFlag,
	TraceDisableStorageFlag,
	TraceDisableReturnDataFlag,
}

// envFlags configure the fork and the execution environment.
var envFlags = []cli.Flag{
	ForkFlag,
	ChainConfigFlag,
	ConfigFileFlag,
	GasFlag,
	PriceFlag,
	ValueFlag,
	ExtraEipsFlag,
	InputFlag,
	InputFileFlag,
}

var app = flags.NewApp("the evm command line interface")

func init() {
	app.Flags = debug.Flags
	app.Commands = []*cli.Command{
		runCommand,
		precompileCommand,
		forksCommand,
	}
	app.Before = func(ctx *cli.Context) error {
		return debug.Setup(ctx)
	}
	app.After = func(ctx *cli.Context) error {
		debug.Exit()
		return nil
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// tracerFromFlags parses the cli flags and returns the specified tracer, nil
// if tracing is off.
func tracerFromFlags(ctx *cli.Context) (*tracing.Hooks, error) {
	if !ctx.Bool(TraceFlag.Name) {
		return nil, nil
	}
	config := &logger.Config{
		EnableMemory:     !ctx.Bool(TraceDisableMemoryFlag.Name),
		DisableStack:     ctx.Bool(TraceDisableStackFlag.Name),
		DisableStorage:   ctx.Bool(TraceDisableStorageFlag.Name),
		EnableReturnData: !ctx.Bool(TraceDisableReturnDataFlag.Name),
	}
	switch format := ctx.String(TraceFormatFlag.Name); format {
	case "json":
		return logger.NewJSONLogger(config, os.Stderr), nil
	case "struct":
		return newStructTracer(config, os.Stderr).Hooks(), nil
	default:
		return nil, fmt.Errorf("unknown trace format: %q", format)
	}
}
