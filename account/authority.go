// Copyright (c) 2014-2016 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account

import (
	"github.com/bitmark-inc/bitmarkd/fault"
)

// Authority is a weighted-threshold multisig requirement: the set of
// signers carried by a review_requirement or delay_requirement is
// satisfied once the signing accounts present contribute weight that
// meets or exceeds Threshold.
//
// Accounts are keyed by their base58 string since Account wraps an
// interface and is not itself safe as a map key across independently
// decoded instances of the same key.
type Authority struct {
	Weights   map[string]uint32 // base58 account -> weight
	Threshold uint32
}

// NewAuthority builds an Authority from parallel account/weight pairs.
func NewAuthority(accounts []*Account, weights []uint32, threshold uint32) *Authority {
	w := make(map[string]uint32, len(accounts))
	for i, a := range accounts {
		w[a.String()] += weights[i]
	}
	return &Authority{Weights: w, Threshold: threshold}
}

// TotalWeight is the sum of every key's weight, the most the
// authority could ever be satisfied with.
func (a *Authority) TotalWeight() uint64 {
	var total uint64
	for _, w := range a.Weights {
		total += uint64(w)
	}
	return total
}

// IsNull reports whether the authority names no keys at all.
func (a *Authority) IsNull() bool {
	return 0 == len(a.Weights)
}

// IsTrivial reports whether the authority is satisfied with zero
// signatures.
func (a *Authority) IsTrivial() bool {
	return 0 == a.Threshold
}

// IsImpossible reports whether no combination of signers could ever
// reach Threshold.
func (a *Authority) IsImpossible() bool {
	return a.TotalWeight() < uint64(a.Threshold)
}

// Validate checks the three consistency rules the original
// check_authority imposes: not impossible, not trivial, not null.
func (a *Authority) Validate() error {
	if a.IsNull() {
		return fault.ErrNullAuthority
	}
	if a.IsTrivial() {
		return fault.ErrTrivialAuthority
	}
	if a.IsImpossible() {
		return fault.ErrImpossibleAuthority
	}
	return nil
}

// Satisfied reports whether the accounts present in signers (base58
// encoded, de-duplicated by the caller) carry enough combined weight
// to meet Threshold.
func (a *Authority) Satisfied(signers map[string]bool) bool {
	var total uint64
	for signer := range signers {
		total += uint64(a.Weights[signer])
	}
	return total >= uint64(a.Threshold)
}
