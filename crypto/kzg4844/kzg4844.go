// Copyright 2023 The go-ethereum Authors
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

// Package kzg4844 implements the KZG point evaluation used by the EIP-4844
// precompile.
package kzg4844

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
	"math/big"
	"sync"

	gokzg4844 "github.com/crate-crypto/go-kzg-4844"
)

// Commitment is a serialized commitment to a polynomial.
type Commitment [48]byte

// Proof is a serialized commitment to the quotient polynomial.
type Proof [48]byte

// Point is a BLS field element.
type Point [32]byte

// Claim is a claimed evaluation value in a specific point.
type Claim [32]byte

// BlobCommitmentVersionKZG is the version byte of versioned blob hashes.
const BlobCommitmentVersionKZG = 0x01

var (
	context     *gokzg4844.Context
	contextErr  error
	contextOnce sync.Once

	// FieldElementsPerBlob and the BLS modulus, returned on successful
	// verification.
	returnValue [64]byte
)

func init() {
	new(big.Int).SetUint64(gokzg4844.ScalarsPerBlob).FillBytes(returnValue[:32])
	copy(returnValue[32:], gokzg4844.BlsModulus[:])
}

// ctx initializes the go-kzg context from the embedded mainnet trusted setup on
// first use. Loading takes a few seconds.
func ctx() (*gokzg4844.Context, error) {
	contextOnce.Do(func() {
		context, contextErr = gokzg4844.NewContext4096Secure()
	})
	return context, contextErr
}

// VerifyProof verifies the KZG proof that the polynomial committed to by
// commitment evaluates to claim at the given point.
func VerifyProof(commitment Commitment, point Point, claim Claim, proof Proof) error {
	c, err := ctx()
	if err != nil {
		return fmt.Errorf("kzg context: %w", err)
	}
	return c.VerifyKZGProof((gokzg4844.KZGCommitment)(commitment), (gokzg4844.Scalar)(point), (gokzg4844.Scalar)(claim), (gokzg4844.KZGProof)(proof))
}

// CalcBlobHashV1 calculates the 'versioned blob hash' of a commitment.
// The given hasher must be a sha256 hash instance, otherwise the result will be invalid!
func CalcBlobHashV1(hasher hash.Hash, commit *Commitment) (vh [32]byte) {
	if hasher.Size() != 32 {
		panic("wrong hash size")
	}
	hasher.Reset()
	hasher.Write(commit[:])
	hasher.Sum(vh[:0])
	vh[0] = BlobCommitmentVersionKZG
	return vh
}

// IsValidVersionedHash checks that h is a structurally-valid versioned blob hash.
func IsValidVersionedHash(h []byte) bool {
	return len(h) == 32 && h[0] == BlobCommitmentVersionKZG
}

// PointEvaluationInputLength is the exact input size of the point evaluation
// precompile: versioned hash, point, claim, commitment and proof.
const PointEvaluationInputLength = 192

var (
	errInvalidInputLength = errors.New("invalid input length")
	errMismatchedHash     = errors.New("mismatched versioned hash")
)

// PointEvaluation runs the point_evaluation_precompile of EIP-4844 and returns
// FIELD_ELEMENTS_PER_BLOB || BLS_MODULUS on success.
func PointEvaluation(input []byte) ([]byte, error) {
	if len(input) != PointEvaluationInputLength {
		return nil, errInvalidInputLength
	}
	var (
		versionedHash [32]byte
		point         Point
		claim         Claim
		commitment    Commitment
		proof         Proof
	)
	copy(versionedHash[:], input[:32])
	copy(point[:], input[32:64])
	copy(claim[:], input[64:96])
	copy(commitment[:], input[96:144])
	copy(proof[:], input[144:192])

	if CalcBlobHashV1(sha256.New(), &commitment) != versionedHash {
		return nil, errMismatchedHash
	}
	if err := VerifyProof(commitment, point, claim, proof); err != nil {
		return nil, fmt.Errorf("verify_kzg_proof error: %w", err)
	}
	result := returnValue
	return result[:], nil
}
