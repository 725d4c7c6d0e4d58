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
	"errors"
	"math/big"
	"sync/atomic"

	"github.com/holiman/uint256"
	"github.com/sunyihoo/go-evm/common"
	"github.com/sunyihoo/go-evm/core/tracing"
	"github.com/sunyihoo/go-evm/core/types"
	"github.com/sunyihoo/go-evm/crypto"
	"github.com/sunyihoo/go-evm/params"
)

type (
	// CanTransferFunc is the signature of a transfer guard function
	CanTransferFunc func(StateDB, common.Address, *uint256.Int) bool
	// TransferFunc is the signature of a transfer function
	TransferFunc func(StateDB, common.Address, common.Address, *uint256.Int)
	// GetHashFunc returns the n'th block hash in the blockchain
	// and is used by the BLOCKHASH EVM op code.
	GetHashFunc func(uint64) common.Hash
)

// BlockContext provides the EVM with auxiliary information. Once provided
// it shouldn't be modified.
type BlockContext struct {
	// CanTransfer returns whether the account contains
	// sufficient ether to transfer the value
	CanTransfer CanTransferFunc
	// Transfer transfers ether from one account to the other
	Transfer TransferFunc
	// GetHash returns the hash corresponding to n
	GetHash GetHashFunc

	// Block information
	Coinbase    common.Address // Provides information for COINBASE
	GasLimit    uint64         // Provides information for GASLIMIT
	BlockNumber *big.Int       // Provides information for NUMBER
	Time        uint64         // Provides information for TIME
	Difficulty  *big.Int       // Provides information for DIFFICULTY
	BaseFee     *big.Int       // Provides information for BASEFEE (0 if vm runs with NoBaseFee flag and 0 gas price)
	BlobBaseFee *big.Int       // Provides information for BLOBBASEFEE (0 if vm runs with NoBaseFee flag and 0 blob gas price)
	Random      *common.Hash   // Provides information for PREVRANDAO
}

// TxContext provides the EVM with information about a transaction.
// All fields can change between transactions.
// TxContext 提供关于交易的信息。所有字段在交易之间可以改变。
type TxContext struct {
	// Message information
	Origin     common.Address // Provides information for ORIGIN
	GasPrice   *big.Int       // Provides information for GASPRICE (and is used to zero the basefee if NoBaseFee is set)
	BlobHashes []common.Hash  // Provides information for BLOBHASH
	BlobFeeCap *big.Int       // Is used to zero the blobbasefee if NoBaseFee is set
}

// EVM is the Ethereum Virtual Machine base object and provides
// the necessary tools to run a contract on the given state with
// the provided context. It should be noted that any error
// generated through any of the calls should be considered a
// revert-state-and-consume-all-gas operation, no checks on
// specific errors should ever be performed. The interpreter makes
// sure that any errors generated are to be considered faulty code.
//
// The EVM should never be reused and is not thread safe. Independent EVMs,
// each over its own StateDB, may run concurrently and share an AnalysisCache.
type EVM struct {
	// Context provides auxiliary blockchain related information
	Context BlockContext
	TxContext
	// StateDB gives access to the underlying state
	StateDB StateDB

	// chainConfig contains information about the current chain
	chainConfig *params.ChainConfig
	// chain rules contains the chain rules for the current epoch, resolved
	// once and never re-derived during execution
	chainRules params.Rules
	// virtual machine configuration options used to initialise the
	// evm.
	Config Config
	// global (to this context) ethereum virtual machine
	// used throughout the execution of the tx.
	interpreter *EVMInterpreter
	// abort is used to abort the EVM calling operations
	abort atomic.Bool
	// callGasTemp holds the gas available for the current call. This is needed because the
	// available gas is calculated in gasCall* according to the 63/64 rule and later
	// applied in opCall*.
	callGasTemp uint64
	// precompiles holds the precompiled contracts for the current epoch
	precompiles PrecompiledContracts
	// callStack tracks the frames currently executing
	callStack *CallStack
	// codes holds the code objects loaded by this EVM, keyed by code hash
	codes map[common.Hash]*Code
	// stats is nil unless Config.StatsEnabled is set
	stats *Stats
}

// NewEVM constructs an EVM instance with the supplied block context, state
// database and several configs. It meant to be used throughout the entire
// state transition of a block, with the transaction context switched as
// needed by calling evm.SetTxContext.
func NewEVM(blockCtx BlockContext, statedb StateDB, chainConfig *params.ChainConfig, config Config) *EVM {
	if blockCtx.BlockNumber == nil {
		blockCtx.BlockNumber = new(big.Int)
	}
	if blockCtx.Difficulty == nil {
		blockCtx.Difficulty = new(big.Int)
	}
	if blockCtx.BaseFee == nil {
		blockCtx.BaseFee = new(big.Int)
	}
	if blockCtx.BlobBaseFee == nil {
		blockCtx.BlobBaseFee = new(big.Int)
	}
	evm := &EVM{
		Context:     blockCtx,
		TxContext:   TxContext{GasPrice: new(big.Int), BlobFeeCap: new(big.Int)},
		StateDB:     statedb,
		Config:      config,
		chainConfig: chainConfig,
		chainRules:  chainConfig.Rules(blockCtx.BlockNumber, blockCtx.Time),
		codes:       make(map[common.Hash]*Code),
	}
	evm.callStack = newCallStack(evm.Config.maxCallDepth())
	if config.StatsEnabled {
		evm.stats = NewStats()
	}
	evm.precompiles = activePrecompiledContracts(evm.chainRules)
	evm.interpreter = NewEVMInterpreter(evm)
	return evm
}

// SetTracer sets the tracer for following state transition.
func (evm *EVM) SetTracer(tracer *tracing.Hooks) {
	evm.Config.Tracer = tracer
}

// SetTxContext resets the EVM with a new transaction context.
// This is not threadsafe and should only be done very cautiously.
// SetTxContext 使用新的交易上下文重置 EVM。
// 这不是线程安全的，应非常谨慎地执行。
func (evm *EVM) SetTxContext(txCtx TxContext) {
	if txCtx.GasPrice == nil {
		txCtx.GasPrice = new(big.Int)
	}
	if txCtx.BlobFeeCap == nil {
		txCtx.BlobFeeCap = new(big.Int)
	}
	if evm.Config.NoBaseFee {
		if txCtx.GasPrice.BitLen() == 0 {
			evm.Context.BaseFee = new(big.Int)
		}
		if txCtx.BlobFeeCap.BitLen() == 0 {
			evm.Context.BlobBaseFee = new(big.Int)
		}
	}
	evm.TxContext = txCtx
}

// Cancel cancels any running EVM operation. This may be called concurrently and
// it's safe to be called multiple times.
func (evm *EVM) Cancel() {
	evm.abort.Store(true)
}

// Cancelled returns true if Cancel has been called
// Cancelled 返回 true 如果 Cancel 已被调用
func (evm *EVM) Cancelled() bool {
	return evm.abort.Load()
}

// Interpreter returns the current interpreter
func (evm *EVM) Interpreter() *EVMInterpreter {
	return evm.interpreter
}

// ChainConfig returns the environment's chain configuration
// ChainConfig 返回环境的链配置
func (evm *EVM) ChainConfig() *params.ChainConfig { return evm.chainConfig }

// Rules returns the fork rules the EVM was created with.
func (evm *EVM) Rules() params.Rules { return evm.chainRules }

// Depth returns the number of frames currently executing.
func (evm *EVM) Depth() int { return evm.callStack.Depth() }

// Stats returns the counters collected so far, or nil if collection is
// disabled.
func (evm *EVM) Stats() *Stats { return evm.stats }

// ActivePrecompiles returns the addresses of the precompiles reachable by
// this EVM.
func (evm *EVM) ActivePrecompiles() []common.Address {
	return ActivePrecompiles(evm.chainRules)
}

// precompile returns the precompiled contract associated with the given address.
func (evm *EVM) precompile(addr common.Address) (PrecompiledContract, bool) {
	p, ok := evm.precompiles[addr]
	return p, ok
}

func (evm *EVM) runPrecompile(p PrecompiledContract, input []byte, gas uint64) ([]byte, uint64, error) {
	if evm.stats != nil {
		evm.stats.countPrecompile(p)
	}
	return RunPrecompiledContract(p, input, gas, evm.chainRules, evm.Config.Tracer)
}

// codeAt returns the code object of addr. Objects are reused for the
// lifetime of the EVM, so the analysis of a contract called repeatedly is
// done once.
func (evm *EVM) codeAt(addr common.Address) *Code {
	hash := evm.StateDB.GetCodeHash(addr)
	if hash == (common.Hash{}) || hash == types.EmptyCodeHash {
		return NewCode(nil, hash, nil)
	}
	if code, ok := evm.codes[hash]; ok {
		return code
	}
	code := NewCode(evm.StateDB.GetCode(addr), hash, evm.Config.AnalysisCache)
	evm.codes[hash] = code
	return code
}

// run executes ctx in a fresh frame pushed onto the call stack and returns
// the output and the gas left in the frame.
func (evm *EVM) run(ctx *ExecutionContext, gas uint64, snapshot int) ([]byte, uint64, error) {
	frame := NewFrame(ctx, gas, snapshot)
	if err := evm.callStack.Push(frame); err != nil {
		frame.Release()
		return nil, gas, err
	}
	ret, err := evm.interpreter.Run(frame)
	evm.callStack.Pop()

	gas = frame.Gas
	frame.Release()
	return ret, gas, err
}

// failed reverts the snapshot of an unsuccessful call and, unless the call
// reverted deliberately, burns the gas it had left.
func (evm *EVM) failed(snapshot int, gas uint64, err error) uint64 {
	evm.StateDB.RevertToSnapshot(snapshot)
	if errors.Is(err, ErrExecutionReverted) {
		return gas
	}
	if evm.Config.Tracer != nil && evm.Config.Tracer.OnGasChange != nil {
		evm.Config.Tracer.OnGasChange(gas, 0, tracing.GasChangeCallFailedExecution)
	}
	return 0
}

// Call executes the contract associated with the addr with the given input as
// parameters. It also handles any necessary value transfer required and takes
// the necessary steps to create accounts and reverses the state in case of an
// execution error or failed value transfer.
func (evm *EVM) Call(caller common.Address, addr common.Address, input []byte, gas uint64, value *uint256.Int) (ret []byte, leftOverGas uint64, err error) {
	depth := evm.callStack.Depth()
	// Capture the tracer start/end events in debug mode
	if evm.Config.Tracer != nil {
		evm.captureBegin(depth, CALL, caller, addr, input, gas, value.ToBig())
		defer func(startGas uint64) {
			evm.captureEnd(depth, startGas, leftOverGas, ret, err)
		}(gas)
	}
	// Fail if we're trying to execute above the call depth limit
	if evm.callStack.checkDepth() != nil {
		return nil, gas, ErrDepth
	}
	// Fail if we're trying to transfer more than the available balance
	if !value.IsZero() && !evm.Context.CanTransfer(evm.StateDB, caller, value) {
		return nil, gas, ErrInsufficientBalance
	}
	if evm.stats != nil {
		evm.stats.Calls++
	}
	snapshot := evm.StateDB.Snapshot()
	p, isPrecompile := evm.precompile(addr)

	if !evm.StateDB.Exist(addr) {
		if !isPrecompile && evm.chainRules.IsEIP158 && value.IsZero() {
			// Calling a non-existing account, don't do anything.
			return nil, gas, nil
		}
		evm.StateDB.CreateAccount(addr)
	}
	evm.Context.Transfer(evm.StateDB, caller, addr, value)

	if isPrecompile {
		ret, gas, err = evm.runPrecompile(p, input, gas)
	} else {
		code := evm.codeAt(addr)
		if code.Len() == 0 {
			ret, err = nil, nil // gas is unchanged
		} else {
			ctx := &ExecutionContext{
				Kind:        KindCall,
				Address:     addr,
				CodeAddress: addr,
				Caller:      caller,
				Value:       value,
				Input:       input,
				Depth:       depth,
				Code:        code,
				ReadOnly:    evm.callStack.readOnly(),
			}
			ret, gas, err = evm.run(ctx, gas, snapshot)
		}
	}
	// When an error was returned by the EVM or when setting the creation code
	// above we revert to the snapshot and consume any gas remaining. Additionally,
	// when we're in homestead this also counts for code storage gas errors.
	if err != nil {
		gas = evm.failed(snapshot, gas, err)
	}
	return ret, gas, err
}

// CallCode executes the contract associated with the addr with the given input
// as parameters. It also handles any necessary value transfer required and takes
// the necessary steps to create accounts and reverses the state in case of an
// execution error or failed value transfer.
//
// CallCode differs from Call in the sense that it executes the given address'
// code with the caller as context.
func (evm *EVM) CallCode(caller common.Address, addr common.Address, input []byte, gas uint64, value *uint256.Int) (ret []byte, leftOverGas uint64, err error) {
	depth := evm.callStack.Depth()
	// Invoke tracer hooks that signal entering/exiting a call frame
	if evm.Config.Tracer != nil {
		evm.captureBegin(depth, CALLCODE, caller, addr, input, gas, value.ToBig())
		defer func(startGas uint64) {
			evm.captureEnd(depth, startGas, leftOverGas, ret, err)
		}(gas)
	}
	// Fail if we're trying to execute above the call depth limit
	if evm.callStack.checkDepth() != nil {
		return nil, gas, ErrDepth
	}
	// Fail if we're trying to transfer more than the available balance
	// Note although it's noop to transfer X ether to caller itself. But
	// if caller doesn't have enough balance, it would be an error to allow
	// over-charging itself. So the check here is necessary.
	if !evm.Context.CanTransfer(evm.StateDB, caller, value) {
		return nil, gas, ErrInsufficientBalance
	}
	if evm.stats != nil {
		evm.stats.Calls++
	}
	var snapshot = evm.StateDB.Snapshot()

	// It is allowed to call precompiles, even via delegatecall
	if p, isPrecompile := evm.precompile(addr); isPrecompile {
		ret, gas, err = evm.runPrecompile(p, input, gas)
	} else {
		ctx := &ExecutionContext{
			Kind:        KindCallCode,
			Address:     caller,
			CodeAddress: addr,
			Caller:      caller,
			Value:       value,
			Input:       input,
			Depth:       depth,
			Code:        evm.codeAt(addr),
			ReadOnly:    evm.callStack.readOnly(),
		}
		ret, gas, err = evm.run(ctx, gas, snapshot)
	}
	if err != nil {
		gas = evm.failed(snapshot, gas, err)
	}
	return ret, gas, err
}

// DelegateCall executes the contract associated with the addr with the given input
// as parameters. It reverses the state in case of an execution error.
//
// DelegateCall differs from CallCode in the sense that it executes the given address'
// code with the caller as context and the caller is set to the caller of the caller.
// The value is inherited from the parent frame and not transferred.
func (evm *EVM) DelegateCall(originCaller common.Address, caller common.Address, addr common.Address, input []byte, gas uint64, value *uint256.Int) (ret []byte, leftOverGas uint64, err error) {
	depth := evm.callStack.Depth()
	// Invoke tracer hooks that signal entering/exiting a call frame
	if evm.Config.Tracer != nil {
		// DELEGATECALL inherits value from parent call
		evm.captureBegin(depth, DELEGATECALL, caller, addr, input, gas, value.ToBig())
		defer func(startGas uint64) {
			evm.captureEnd(depth, startGas, leftOverGas, ret, err)
		}(gas)
	}
	// Fail if we're trying to execute above the call depth limit
	if evm.callStack.checkDepth() != nil {
		return nil, gas, ErrDepth
	}
	if evm.stats != nil {
		evm.stats.Calls++
	}
	var snapshot = evm.StateDB.Snapshot()

	// It is allowed to call precompiles, even via delegatecall
	if p, isPrecompile := evm.precompile(addr); isPrecompile {
		ret, gas, err = evm.runPrecompile(p, input, gas)
	} else {
		ctx := &ExecutionContext{
			Kind:        KindDelegateCall,
			Address:     caller,
			CodeAddress: addr,
			Caller:      originCaller,
			Value:       value,
			Input:       input,
			Depth:       depth,
			Code:        evm.codeAt(addr),
			ReadOnly:    evm.callStack.readOnly(),
		}
		ret, gas, err = evm.run(ctx, gas, snapshot)
	}
	if err != nil {
		gas = evm.failed(snapshot, gas, err)
	}
	return ret, gas, err
}

// StaticCall executes the contract associated with the addr with the given input
// as parameters while disallowing any modifications to the state during the call.
// Opcodes that attempt to perform such modifications will result in exceptions
// instead of performing the modifications.
func (evm *EVM) StaticCall(caller common.Address, addr common.Address, input []byte, gas uint64) (ret []byte, leftOverGas uint64, err error) {
	depth := evm.callStack.Depth()
	// Invoke tracer hooks that signal entering/exiting a call frame
	if evm.Config.Tracer != nil {
		evm.captureBegin(depth, STATICCALL, caller, addr, input, gas, nil)
		defer func(startGas uint64) {
			evm.captureEnd(depth, startGas, leftOverGas, ret, err)
		}(gas)
	}
	// Fail if we're trying to execute above the call depth limit
	if evm.callStack.checkDepth() != nil {
		return nil, gas, ErrDepth
	}
	if evm.stats != nil {
		evm.stats.Calls++
	}
	// We take a snapshot here. This is a bit counter-intuitive, and could probably be skipped.
	// However, even a staticcall is considered a 'touch'. On mainnet, static calls were introduced
	// after all empty accounts were deleted, so this is not required. However, if we omit this,
	// then certain tests start failing; stRevertTest/RevertPrecompiledTouchExactOOG.json.
	// We could change this, but for now it's left for legacy reasons
	var snapshot = evm.StateDB.Snapshot()

	// We do an AddBalance of zero here, just in order to trigger a touch.
	// This doesn't matter on Mainnet, where all empties are gone at the time of Byzantium,
	// but is the correct thing to do and matters on other networks, in tests, and potential
	// future scenarios
	evm.StateDB.AddBalance(addr, new(uint256.Int), tracing.BalanceChangeTouchAccount)

	if p, isPrecompile := evm.precompile(addr); isPrecompile {
		ret, gas, err = evm.runPrecompile(p, input, gas)
	} else {
		ctx := &ExecutionContext{
			Kind:        KindStaticCall,
			Address:     addr,
			CodeAddress: addr,
			Caller:      caller,
			Value:       new(uint256.Int),
			Input:       input,
			Depth:       depth,
			Code:        evm.codeAt(addr),
			ReadOnly:    true,
		}
		ret, gas, err = evm.run(ctx, gas, snapshot)
	}
	if err != nil {
		gas = evm.failed(snapshot, gas, err)
	}
	return ret, gas, err
}

// create creates a new contract using code as deployment code.
func (evm *EVM) create(caller common.Address, code []byte, gas uint64, value *uint256.Int, address common.Address, kind CallKind) (ret []byte, createAddress common.Address, leftOverGas uint64, err error) {
	depth := evm.callStack.Depth()
	if evm.Config.Tracer != nil {
		evm.captureBegin(depth, kind.OpCode(), caller, address, code, gas, value.ToBig())
		defer func(startGas uint64) {
			evm.captureEnd(depth, startGas, leftOverGas, ret, err)
		}(gas)
	}
	// Depth check execution. Fail if we're trying to execute above the
	// limit.
	if evm.callStack.checkDepth() != nil {
		return nil, common.Address{}, gas, ErrDepth
	}
	if !evm.Context.CanTransfer(evm.StateDB, caller, value) {
		return nil, common.Address{}, gas, ErrInsufficientBalance
	}
	nonce := evm.StateDB.GetNonce(caller)
	if nonce+1 < nonce {
		return nil, common.Address{}, gas, ErrNonceUintOverflow
	}
	evm.StateDB.SetNonce(caller, nonce+1)
	if evm.stats != nil {
		evm.stats.Creates++
	}
	// We add this to the access list _before_ taking a snapshot. Even if the
	// creation fails, the access-list change should not be rolled back.
	if evm.chainRules.IsBerlin {
		evm.StateDB.AddAddressToAccessList(address)
	}
	// Ensure there's no existing contract already at the designated address.
	// Account is regarded as existent if any of these three conditions is met:
	// - the nonce is non-zero
	// - the code is non-empty
	// - the storage is non-empty
	contractHash := evm.StateDB.GetCodeHash(address)
	storageRoot := evm.StateDB.GetStorageRoot(address)
	if evm.StateDB.GetNonce(address) != 0 ||
		(contractHash != (common.Hash{}) && contractHash != types.EmptyCodeHash) || // non-empty code
		(storageRoot != (common.Hash{}) && storageRoot != types.EmptyRootHash) { // non-empty storage
		if evm.Config.Tracer != nil && evm.Config.Tracer.OnGasChange != nil {
			evm.Config.Tracer.OnGasChange(gas, 0, tracing.GasChangeCallFailedExecution)
		}
		return nil, common.Address{}, 0, ErrContractAddressCollision
	}
	// Create a new account on the state only if the object was not present.
	// It might be possible the contract code is deployed to a pre-existent
	// account with non-zero balance.
	snapshot := evm.StateDB.Snapshot()
	if !evm.StateDB.Exist(address) {
		evm.StateDB.CreateAccount(address)
	}
	// CreateContract means that regardless of whether the account previously existed
	// in the state trie or not, it _now_ becomes created as a _contract_ account.
	// This is performed _prior_ to executing the initcode,  since the initcode
	// acts inside that account.
	evm.StateDB.CreateContract(address)

	if evm.chainRules.IsEIP158 {
		evm.StateDB.SetNonce(address, 1)
	}
	evm.Context.Transfer(evm.StateDB, caller, address, value)

	// The init code runs in its own frame. It has no stable code hash, so its
	// analysis is never shared.
	ctx := &ExecutionContext{
		Kind:        kind,
		Address:     address,
		CodeAddress: address,
		Caller:      caller,
		Value:       value,
		Depth:       depth,
		Code:        NewDeploymentCode(code),
		ReadOnly:    evm.callStack.readOnly(),
	}
	ret, gas, err = evm.initNewContract(ctx, gas, snapshot)
	if err != nil && (evm.chainRules.IsHomestead || err != ErrCodeStoreOutOfGas) {
		evm.StateDB.RevertToSnapshot(snapshot)
		if err != ErrExecutionReverted {
			if evm.Config.Tracer != nil && evm.Config.Tracer.OnGasChange != nil {
				evm.Config.Tracer.OnGasChange(gas, 0, tracing.GasChangeCallFailedExecution)
			}
			gas = 0
		}
	}
	return ret, address, gas, err
}

// initNewContract runs a new contract's creation code, performs checks on the
// resulting code that is to be deployed, and consumes necessary gas.
func (evm *EVM) initNewContract(ctx *ExecutionContext, gas uint64, snapshot int) ([]byte, uint64, error) {
	ret, gas, err := evm.run(ctx, gas, snapshot)
	if err != nil {
		return ret, gas, err
	}
	// Check whether the max code size has been exceeded, assign err if the case.
	if limit := evm.chainRules.MaxCodeSize; limit != 0 && uint64(len(ret)) > limit {
		return ret, gas, ErrMaxCodeSizeExceeded
	}
	// Reject code starting with 0xEF if EIP-3541 is enabled.
	if len(ret) >= 1 && ret[0] == 0xEF && evm.chainRules.IsLondon {
		return ret, gas, ErrInvalidCode
	}
	createDataGas := uint64(len(ret)) * params.CreateDataGas
	if gas < createDataGas {
		return ret, gas, ErrCodeStoreOutOfGas
	}
	if evm.Config.Tracer != nil && evm.Config.Tracer.OnGasChange != nil {
		evm.Config.Tracer.OnGasChange(gas, gas-createDataGas, tracing.GasChangeCallCodeStorage)
	}
	gas -= createDataGas

	evm.StateDB.SetCode(ctx.Address, ret)
	return ret, gas, nil
}

// Create creates a new contract using code as deployment code.
func (evm *EVM) Create(caller common.Address, code []byte, gas uint64, value *uint256.Int) (ret []byte, contractAddr common.Address, leftOverGas uint64, err error) {
	contractAddr = crypto.CreateAddress(caller, evm.StateDB.GetNonce(caller))
	return evm.create(caller, code, gas, value, contractAddr, KindCreate)
}

// Create2 creates a new contract using code as deployment code.
//
// The different between Create2 with Create is Create2 uses keccak256(0xff ++ msg.sender ++ salt ++ keccak256(init_code))[12:]
// instead of the usual sender-and-nonce-hash as the address where the contract is initialized at.
func (evm *EVM) Create2(caller common.Address, code []byte, gas uint64, endowment *uint256.Int, salt *uint256.Int) (ret []byte, contractAddr common.Address, leftOverGas uint64, err error) {
	contractAddr = crypto.CreateAddress2(caller, salt.Bytes32(), crypto.Keccak256(code))
	return evm.create(caller, code, gas, endowment, contractAddr, KindCreate2)
}

func (evm *EVM) captureBegin(depth int, typ OpCode, from common.Address, to common.Address, input []byte, startGas uint64, value *big.Int) {
	tracer := evm.Config.Tracer
	if tracer.OnEnter != nil {
		tracer.OnEnter(depth, byte(typ), from, to, input, startGas, value)
	}
	if tracer.OnGasChange != nil {
		tracer.OnGasChange(0, startGas, tracing.GasChangeCallInitialBalance)
	}
}

func (evm *EVM) captureEnd(depth int, startGas uint64, leftOverGas uint64, ret []byte, err error) {
	tracer := evm.Config.Tracer
	if leftOverGas != 0 && tracer.OnGasChange != nil {
		tracer.OnGasChange(leftOverGas, 0, tracing.GasChangeCallLeftOverReturned)
	}
	var reverted bool
	if err != nil {
		reverted = true
	}
	if !evm.chainRules.IsHomestead && errors.Is(err, ErrCodeStoreOutOfGas) {
		reverted = false
	}
	if tracer.OnExit != nil {
		tracer.OnExit(depth, ret, startGas-leftOverGas, VMErrorFromErr(err), reverted)
	}
}

// GetVMContext provides context about the block being executed as well as state
// to the tracers.
// GetVMContext 向 tracers 提供关于正在执行的块的上下文以及状态。
func (evm *EVM) GetVMContext() *tracing.VMContext {
	return &tracing.VMContext{
		Coinbase:    evm.Context.Coinbase,
		BlockNumber: evm.Context.BlockNumber,
		Time:        evm.Context.Time,
		Random:      evm.Context.Random,
		BaseFee:     evm.Context.BaseFee,
		StateDB:     evm.StateDB,
	}
}
