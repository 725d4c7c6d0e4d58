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

package core

import (
	"bytes"
	"fmt"
	"math"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/sunyihoo/go-evm/common"
	"github.com/sunyihoo/go-evm/core/tracing"
	"github.com/sunyihoo/go-evm/core/types"
	"github.com/sunyihoo/go-evm/core/vm"
	"github.com/sunyihoo/go-evm/crypto/kzg4844"
	"github.com/sunyihoo/go-evm/log"
	"github.com/sunyihoo/go-evm/params"
)

// IntrinsicGas computes the 'intrinsic gas' for a message with the given data.
func IntrinsicGas(data []byte, accessList types.AccessList, isContractCreation, isHomestead, isEIP2028, isEIP3860 bool) (uint64, error) {
	// Set the starting gas for the raw transaction
	var gas uint64
	if isContractCreation && isHomestead {
		gas = params.TxGasContractCreation
	} else {
		gas = params.TxGas
	}
	dataLen := uint64(len(data))
	// Bump the required gas by the amount of transactional data
	if dataLen > 0 {
		// Zero and non-zero bytes are priced differently
		var nz uint64
		for _, byt := range data {
			if byt != 0 {
				nz++
			}
		}
		// Make sure we don't exceed uint64 for all data combinations
		nonZeroGas := params.TxDataNonZeroGasFrontier
		if isEIP2028 {
			nonZeroGas = params.TxDataNonZeroGasEIP2028
		}
		if (math.MaxUint64-gas)/nonZeroGas < nz {
			return 0, ErrGasUintOverflow
		}
		gas += nz * nonZeroGas

		z := dataLen - nz
		if (math.MaxUint64-gas)/params.TxDataZeroGas < z {
			return 0, ErrGasUintOverflow
		}
		gas += z * params.TxDataZeroGas

		if isContractCreation && isEIP3860 {
			lenWords := toWordSize(dataLen)
			if (math.MaxUint64-gas)/params.InitCodeWordGas < lenWords {
				return 0, ErrGasUintOverflow
			}
			gas += lenWords * params.InitCodeWordGas
		}
	}
	if accessList != nil {
		gas += uint64(len(accessList)) * params.TxAccessListAddressGas
		gas += uint64(accessList.StorageKeys()) * params.TxAccessListStorageKeyGas
	}
	return gas, nil
}

// FloorDataGas computes the minimum gas required for a transaction based on its
// data tokens (EIP-7623). A zero byte is one token, a non-zero byte four.
// 零字节计 1 个 token，非零字节计 4 个。
func FloorDataGas(data []byte) (uint64, error) {
	var (
		z      = uint64(bytes.Count(data, []byte{0}))
		nz     = uint64(len(data)) - z
		tokens = nz*params.TxTokenPerNonZeroByte + z
	)
	// Check for overflow
	if (math.MaxUint64-params.TxGas)/params.TxCostFloorPerToken < tokens {
		return 0, ErrGasUintOverflow
	}
	return params.TxGas + tokens*params.TxCostFloorPerToken, nil
}

// toWordSize returns the ceiled word size required for init code payment calculation.
func toWordSize(size uint64) uint64 {
	if size > math.MaxUint64-31 {
		return math.MaxUint64/32 + 1
	}
	return (size + 31) / 32
}

// A Message contains the data derived from a single transaction that is relevant to state
// processing.
type Message struct {
	To            *common.Address
	From          common.Address
	Nonce         uint64
	Value         *uint256.Int
	GasLimit      uint64
	GasPrice      *big.Int
	GasFeeCap     *big.Int // defaults to GasPrice
	GasTipCap     *big.Int // defaults to GasPrice
	Data          []byte
	AccessList    types.AccessList
	BlobGasFeeCap *big.Int
	BlobHashes    []common.Hash

	// When SkipNonceChecks is true, the message nonce is not checked against the
	// account nonce in state.
	SkipNonceChecks bool

	// When SkipFromEOACheck is true, the message sender is not checked to be an EOA.
	SkipFromEOACheck bool
}

// setDefaults fills the optional pricing fields.
func (msg *Message) setDefaults() {
	if msg.Value == nil {
		msg.Value = new(uint256.Int)
	}
	if msg.GasPrice == nil {
		msg.GasPrice = new(big.Int)
	}
	if msg.GasFeeCap == nil {
		msg.GasFeeCap = msg.GasPrice
	}
	if msg.GasTipCap == nil {
		msg.GasTipCap = msg.GasPrice
	}
}

// ApplyMessage computes the new state by applying the given message
// against the old state within the environment.
//
// ApplyMessage returns the execution result and an error. The error is only set
// when the message is rejected at intake (bad nonce, unaffordable gas, too little
// intrinsic gas, ...), in which case the result is nil and neither the state nor
// the gas pool is changed. Failures during execution are
// reported through ExecutionResult.Err and never through the returned error.
func ApplyMessage(evm *vm.EVM, msg *Message, gp *GasPool) (*vm.ExecutionResult, error) {
	msg.setDefaults()
	evm.SetTxContext(NewEVMTxContext(msg))

	st := newStateTransition(evm, msg, gp)
	if hooks := evm.Config.Tracer; hooks != nil && hooks.OnTxStart != nil {
		hooks.OnTxStart(evm.GetVMContext(), msg.From, msg.To, msg.GasLimit, msg.Value.ToBig())
	}
	var (
		snapshot = evm.StateDB.Snapshot()
		pool     = gp.Gas()
	)
	res, err := st.execute()
	if err != nil {
		// A rejected message leaves neither the state nor the pool changed.
		evm.StateDB.RevertToSnapshot(snapshot)
		*gp = GasPool(pool)
	}
	if hooks := evm.Config.Tracer; hooks != nil && hooks.OnTxEnd != nil {
		var used uint64
		if res != nil {
			used = res.GasUsed
		}
		hooks.OnTxEnd(used, err)
	}
	return res, err
}

// stateTransition represents a state transition.
//
// == The State Transitioning Model
//
// A state transition is a change made when a message is applied to the current world
// state.
//
//  1. Nonce handling
//  2. Pre pay gas
//  3. Create a new state object if the recipient is nil
//  4. Value transfer
//
// == If contract creation ==
//
//	4a. Attempt to run transaction data
//	4b. If valid, use result as code for the new state object
//
// == end ==
//
//  5. Run Script section
//  6. Refund and pay the coinbase
type stateTransition struct {
	gp           *GasPool
	msg          *Message
	gasRemaining uint64
	initialGas   uint64
	state        vm.StateDB
	evm          *vm.EVM
	rules        params.Rules
}

// newStateTransition initialises and returns a new state transition object.
func newStateTransition(evm *vm.EVM, msg *Message, gp *GasPool) *stateTransition {
	return &stateTransition{
		gp:    gp,
		evm:   evm,
		msg:   msg,
		state: evm.StateDB,
		rules: evm.Rules(),
	}
}

// to returns the recipient of the message.
func (st *stateTransition) to() common.Address {
	if st.msg == nil || st.msg.To == nil /* contract creation */ {
		return common.Address{}
	}
	return *st.msg.To
}

func (st *stateTransition) buyGas() error {
	mgval := new(big.Int).SetUint64(st.msg.GasLimit)
	mgval.Mul(mgval, st.msg.GasPrice)
	balanceCheck := new(big.Int).SetUint64(st.msg.GasLimit)
	balanceCheck.Mul(balanceCheck, st.msg.GasFeeCap)
	balanceCheck.Add(balanceCheck, st.msg.Value.ToBig())

	if st.rules.IsCancun {
		if blobGas := st.blobGasUsed(); blobGas > 0 && st.msg.BlobGasFeeCap != nil {
			// Check that the user has enough funds to cover blobGasUsed * tx.BlobGasFeeCap
			blobBalanceCheck := new(big.Int).SetUint64(blobGas)
			blobBalanceCheck.Mul(blobBalanceCheck, st.msg.BlobGasFeeCap)
			balanceCheck.Add(balanceCheck, blobBalanceCheck)
			// Pay for blobGasUsed * actual blob fee
			blobFee := new(big.Int).SetUint64(blobGas)
			blobFee.Mul(blobFee, st.evm.Context.BlobBaseFee)
			mgval.Add(mgval, blobFee)
		}
	}
	balanceCheckU256, overflow := uint256.FromBig(balanceCheck)
	if overflow {
		return fmt.Errorf("%w: address %v required balance exceeds 256 bits", ErrInsufficientFunds, st.msg.From.Hex())
	}
	if have, want := st.state.GetBalance(st.msg.From), balanceCheckU256; have.Cmp(want) < 0 {
		return fmt.Errorf("%w: address %v have %v want %v", ErrInsufficientFunds, st.msg.From.Hex(), have, want)
	}
	if err := st.gp.SubGas(st.msg.GasLimit); err != nil {
		return err
	}
	if st.evm.Config.Tracer != nil && st.evm.Config.Tracer.OnGasChange != nil {
		st.evm.Config.Tracer.OnGasChange(0, st.msg.GasLimit, tracing.GasChangeTxInitialBalance)
	}
	st.gasRemaining = st.msg.GasLimit
	st.initialGas = st.msg.GasLimit

	mgvalU256, _ := uint256.FromBig(mgval)
	st.state.SubBalance(st.msg.From, mgvalU256, tracing.BalanceDecreaseGasBuy)
	return nil
}

func (st *stateTransition) preCheck() error {
	msg := st.msg
	if !msg.SkipNonceChecks {
		// Make sure this transaction's nonce is correct.
		stNonce := st.state.GetNonce(msg.From)
		if msgNonce := msg.Nonce; stNonce < msgNonce {
			return fmt.Errorf("%w: address %v, tx: %d state: %d", ErrNonceTooHigh,
				msg.From.Hex(), msgNonce, stNonce)
		} else if stNonce > msgNonce {
			return fmt.Errorf("%w: address %v, tx: %d state: %d", ErrNonceTooLow,
				msg.From.Hex(), msgNonce, stNonce)
		} else if stNonce+1 < stNonce {
			return fmt.Errorf("%w: address %v, nonce: %d", ErrNonceMax,
				msg.From.Hex(), stNonce)
		}
	}
	if !msg.SkipFromEOACheck {
		// Make sure the sender is an EOA
		if codeSize := st.state.GetCodeSize(msg.From); codeSize > 0 {
			return fmt.Errorf("%w: address %v, len(code): %d", ErrSenderNoEOA, msg.From.Hex(), codeSize)
		}
	}
	// Make sure that transaction gasFeeCap is greater than the baseFee (post london)
	if st.rules.IsLondon {
		// Skip the checks if gas fields are zero and baseFee was explicitly disabled
		skipCheck := st.evm.Config.NoBaseFee && msg.GasFeeCap.BitLen() == 0 && msg.GasTipCap.BitLen() == 0
		if !skipCheck {
			if msg.GasFeeCap.Cmp(msg.GasTipCap) < 0 {
				return fmt.Errorf("%w: address %v, maxPriorityFeePerGas: %s, maxFeePerGas: %s", ErrTipAboveFeeCap,
					msg.From.Hex(), msg.GasTipCap, msg.GasFeeCap)
			}
			if msg.GasFeeCap.Cmp(st.evm.Context.BaseFee) < 0 {
				return fmt.Errorf("%w: address %v, maxFeePerGas: %s, baseFee: %s", ErrFeeCapTooLow,
					msg.From.Hex(), msg.GasFeeCap, st.evm.Context.BaseFee)
			}
		}
	}
	// Check the blob version validity
	if msg.BlobHashes != nil {
		if msg.To == nil {
			return ErrBlobTxCreate
		}
		if len(msg.BlobHashes) == 0 {
			return ErrMissingBlobHashes
		}
		if limit := st.rules.MaxBlobsPerBlock; uint64(len(msg.BlobHashes)) > limit {
			return fmt.Errorf("%w: have %d, max %d", ErrTooManyBlobs, len(msg.BlobHashes), limit)
		}
		for i, hash := range msg.BlobHashes {
			if !kzg4844.IsValidVersionedHash(hash[:]) {
				return fmt.Errorf("blob %d has invalid hash version", i)
			}
		}
	}
	// Check that the user is paying at least the current blob fee
	if st.rules.IsCancun && st.blobGasUsed() > 0 {
		skipCheck := st.evm.Config.NoBaseFee && (msg.BlobGasFeeCap == nil || msg.BlobGasFeeCap.BitLen() == 0)
		if !skipCheck {
			if msg.BlobGasFeeCap == nil || msg.BlobGasFeeCap.Cmp(st.evm.Context.BlobBaseFee) < 0 {
				return fmt.Errorf("%w: address %v blobGasFeeCap: %v, blobBaseFee: %v", ErrBlobFeeCapTooLow,
					msg.From.Hex(), msg.BlobGasFeeCap, st.evm.Context.BlobBaseFee)
			}
		}
	}
	return st.buyGas()
}

// execute will transition the state by applying the current message and
// returning the evm execution result.
//
// If any intake rule is violated, the error is returned directly with a nil
// execution result.
func (st *stateTransition) execute() (*vm.ExecutionResult, error) {
	// First check this message satisfies all consensus rules before
	// applying the message. The rules include these clauses
	//
	// 1. the nonce of the message caller is correct
	// 2. caller has enough balance to cover transaction fee(gaslimit * gasprice)
	// 3. the amount of gas required is available in the block
	// 4. the purchased gas is enough to cover intrinsic usage
	// 5. there is no overflow when calculating intrinsic gas
	// 6. caller has enough balance to cover asset transfer for **topmost** call

	// Check clauses 1-3, buy gas if everything is correct
	if err := st.preCheck(); err != nil {
		return nil, err
	}
	var (
		msg              = st.msg
		rules            = st.rules
		contractCreation = msg.To == nil
	)
	// Check clauses 4-5, subtract intrinsic gas if everything is correct
	gas, err := IntrinsicGas(msg.Data, msg.AccessList, contractCreation, rules.IsHomestead, rules.IsIstanbul, rules.IsShanghai)
	if err != nil {
		return nil, err
	}
	if st.gasRemaining < gas {
		return nil, fmt.Errorf("%w: have %d, want %d", ErrIntrinsicGas, st.gasRemaining, gas)
	}
	// Gas limit suffices for the floor data cost (EIP-7623)
	var floorDataGas uint64
	if rules.IsPrague {
		floorDataGas, err = FloorDataGas(msg.Data)
		if err != nil {
			return nil, err
		}
		if msg.GasLimit < floorDataGas {
			return nil, fmt.Errorf("%w: have %d, want %d", ErrFloorDataGas, msg.GasLimit, floorDataGas)
		}
	}
	if t := st.evm.Config.Tracer; t != nil && t.OnGasChange != nil {
		t.OnGasChange(st.gasRemaining, st.gasRemaining-gas, tracing.GasChangeTxIntrinsicGas)
	}
	st.gasRemaining -= gas

	// Check clause 6
	value := msg.Value
	if !value.IsZero() && !st.evm.Context.CanTransfer(st.state, msg.From, value) {
		return nil, fmt.Errorf("%w: address %v", ErrInsufficientFundsForTransfer, msg.From.Hex())
	}
	// Check whether the init code size has been exceeded.
	if limit := rules.MaxInitCodeSize; limit > 0 && contractCreation && uint64(len(msg.Data)) > limit {
		return nil, fmt.Errorf("%w: code size %v limit %v", ErrMaxInitCodeSizeExceeded, len(msg.Data), limit)
	}
	// Execute the preparatory steps for state transition which includes:
	// - prepare accessList(post-berlin)
	// - reset transient storage(eip 1153)
	st.state.Prepare(rules, msg.From, st.evm.Context.Coinbase, msg.To, vm.ActivePrecompiles(rules), msg.AccessList)

	log.Debug("Applying message", "from", msg.From, "to", msg.To, "gas", msg.GasLimit, "value", msg.Value, "fork", rules.Fork())

	var (
		ret   []byte
		vmerr error // vm errors do not effect consensus and are therefore not assigned to err
	)
	if contractCreation {
		ret, _, st.gasRemaining, vmerr = st.evm.Create(msg.From, msg.Data, st.gasRemaining, value)
	} else {
		// Increment the nonce for the next transaction.
		st.state.SetNonce(msg.From, st.state.GetNonce(msg.From)+1)
		ret, st.gasRemaining, vmerr = st.evm.Call(msg.From, st.to(), msg.Data, st.gasRemaining, value)
	}
	gasRefund := st.refundGas(rules.RefundQuotient, floorDataGas)

	effectiveTip := msg.GasPrice
	if rules.IsLondon {
		effectiveTip = new(big.Int).Sub(msg.GasFeeCap, st.evm.Context.BaseFee)
		if effectiveTip.Cmp(msg.GasTipCap) > 0 {
			effectiveTip = msg.GasTipCap
		}
	}
	if st.evm.Config.NoBaseFee && msg.GasFeeCap.Sign() == 0 && msg.GasTipCap.Sign() == 0 {
		// Skip fee payment when NoBaseFee is set and the fee fields
		// are 0. This avoids a negative effectiveTip being applied to
		// the coinbase when simulating calls.
	} else if effectiveTip.Sign() > 0 {
		fee := new(uint256.Int).SetUint64(st.gasUsed())
		fee.Mul(fee, uint256.MustFromBig(effectiveTip))
		st.state.AddBalance(st.evm.Context.Coinbase, fee, tracing.BalanceIncreaseRewardTransactionFee)
	}
	result := &vm.ExecutionResult{
		Status:           vm.StatusOf(vmerr),
		Output:           ret,
		GasUsed:          st.gasUsed(),
		GasRefund:        gasRefund,
		Logs:             st.state.TxLogs(),
		TouchedAddresses: st.state.TouchedAddresses(),
		Err:              vmerr,
	}
	if stats := st.evm.Stats(); stats != nil {
		result.Stats = stats.Copy()
	}
	log.Debug("Message applied", "status", result.Status, "used", result.GasUsed, "refund", result.GasRefund, "err", vmerr)
	return result, nil
}

// refundGas applies the refund counter capped to gasUsed/refundQuotient, charges
// up to the data floor, returns the remaining gas to the sender and the block
// pool, and reports the refund.
// 退款之后若已用 gas 仍低于 floorDataGas，则按 floorDataGas 计费。
func (st *stateTransition) refundGas(refundQuotient, floorDataGas uint64) uint64 {
	refund := st.gasUsed() / refundQuotient
	if refund > st.state.GetRefund() {
		refund = st.state.GetRefund()
	}
	if st.evm.Config.Tracer != nil && st.evm.Config.Tracer.OnGasChange != nil && refund > 0 {
		st.evm.Config.Tracer.OnGasChange(st.gasRemaining, st.gasRemaining+refund, tracing.GasChangeTxRefunds)
	}
	st.gasRemaining += refund

	// Data-heavy transactions pay the floor gas.
	if st.gasUsed() < floorDataGas {
		prev := st.gasRemaining
		st.gasRemaining = st.initialGas - floorDataGas
		if t := st.evm.Config.Tracer; t != nil && t.OnGasChange != nil {
			t.OnGasChange(prev, st.gasRemaining, tracing.GasChangeTxDataFloor)
		}
	}

	// Return ETH for remaining gas, exchanged at the original rate.
	remaining := uint256.NewInt(st.gasRemaining)
	remaining.Mul(remaining, uint256.MustFromBig(st.msg.GasPrice))
	st.state.AddBalance(st.msg.From, remaining, tracing.BalanceIncreaseGasReturn)

	if st.evm.Config.Tracer != nil && st.evm.Config.Tracer.OnGasChange != nil && st.gasRemaining > 0 {
		st.evm.Config.Tracer.OnGasChange(st.gasRemaining, 0, tracing.GasChangeTxLeftOverReturned)
	}
	// Also return remaining gas to the block gas counter so it is
	// available for the next transaction.
	st.gp.AddGas(st.gasRemaining)

	return refund
}

// gasUsed returns the amount of gas used up by the state transition.
func (st *stateTransition) gasUsed() uint64 {
	return st.initialGas - st.gasRemaining
}

// blobGasUsed returns the amount of blob gas used by the message.
func (st *stateTransition) blobGasUsed() uint64 {
	return uint64(len(st.msg.BlobHashes)) * st.rules.BlobGasPerBlob
}
