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
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/sunyihoo/go-evm/common"
	"github.com/sunyihoo/go-evm/core/vm"
	"github.com/sunyihoo/go-evm/params"
	"github.com/sunyihoo/go-evm/params/forks"
	"github.com/urfave/cli/v2"
)

var precompileCommand = &cli.Command{
	Action:    precompileCmd,
	Name:      "precompile",
	Usage:     "Run a precompiled contract directly",
	ArgsUsage: "<address>",
	Flags: []cli.Flag{
		ForkFlag,
		ChainConfigFlag,
		GasFlag,
		InputFlag,
		InputFileFlag,
	},
}

var forksCommand = &cli.Command{
	Action:    forksCmd,
	Name:      "forks",
	Usage:     "List the supported fork rulesets",
	ArgsUsage: "[<fork>]",
	Description: `Without arguments the forks command prints a summary of every
supported ruleset. Given a fork name it prints the chain config and the
active precompiles of that fork.`,
}

func precompileCmd(ctx *cli.Context) error {
	if ctx.Args().Len() != 1 {
		return errors.New("expected the precompile address as the only argument")
	}
	chainConfig, err := chainConfigFromFlags(ctx)
	if err != nil {
		return err
	}
	input, err := readInput(ctx)
	if err != nil {
		return err
	}
	var (
		addr  = common.HexToAddress(ctx.Args().First())
		rules = chainConfig.Rules(new(big.Int), 0)
		gas   = ctx.Uint64(GasFlag.Name)
	)
	p, ok := vm.LookupPrecompile(addr, rules)
	if !ok {
		return fmt.Errorf("no precompile at %v under %s", addr, ctx.String(ForkFlag.Name))
	}
	required := vm.RequiredGas(p, input, rules)
	output, remaining, err := vm.RunPrecompiledContract(p, input, gas, rules, nil)

	fmt.Fprintf(os.Stderr, "precompile:  %s\nrequired:    %d\nremaining:   %d\n", p.Name(), required, remaining)
	fmt.Printf("%#x\n", output)
	if err != nil {
		fmt.Printf(" error: %v\n", err)
	}
	return nil
}

func forksCmd(ctx *cli.Context) error {
	if ctx.Args().Len() > 0 {
		return describeFork(ctx.Args().First())
	}
	printForkTable(os.Stdout)
	fmt.Println("\nEIPs accepted by --vm.eips:")
	for _, num := range vm.ActivateableEips() {
		n, _ := strconv.Atoi(num)
		fmt.Printf(" - %s: %s\n", num, vm.EIPName(n))
	}
	return nil
}

// printForkTable renders one row per supported fork.
func printForkTable(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Fork", "Opcodes", "Precompiles", "Refund quotient", "Max code size"})
	for f := forks.Frontier; f <= forks.Prague; f++ {
		rules := params.RulesForFork(f)
		table.Append([]string{
			f.String(),
			strconv.Itoa(definedOpcodes(rules)),
			strconv.Itoa(len(vm.ActivePrecompiles(rules))),
			strconv.FormatUint(rules.RefundQuotient, 10),
			strconv.FormatUint(rules.MaxCodeSize, 10),
		})
	}
	table.Render()
}

func describeFork(name string) error {
	chainConfig, err := params.LookupFork(name)
	if err != nil {
		return err
	}
	rules := chainConfig.Rules(new(big.Int), 0)
	fmt.Print(chainConfig.Description())
	fmt.Printf("Opcodes:     %d\n", definedOpcodes(rules))
	fmt.Println("Precompiles:")
	for _, addr := range vm.ActivePrecompiles(rules) {
		p, _ := vm.LookupPrecompile(addr, rules)
		fmt.Printf(" - %v %s\n", addr, p.Name())
	}
	return nil
}

func definedOpcodes(rules params.Rules) int {
	var n int
	for _, op := range vm.LookupInstructionSet(rules) {
		if op != nil && op.Defined() {
			n++
		}
	}
	return n
}
