// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tnt

import (
	"time"

	"github.com/bitmark-inc/bitmarkd/account"
)

// TankStore is the host's read/write access to tank objects. The
// engine never persists a Tank itself; every operation receives a
// TankStore and works through the copy-on-write staging layer (see
// staging.go) over it.
type TankStore interface {
	LookupTank(TankID) (*Tank, error)
}

// AccountBalanceCredit funds an account's externally-held balance of
// asset, the terminal action once a release reaches an account sink,
// and the action that refunds a tank's deposit reserve to a claimant
// at tank_delete.
type AccountBalanceCredit interface {
	CreditAccount(acct *account.Account, asset AssetID, amount Amount) error
}

// AccountBalanceDebit removes funds from an account's externally-held
// balance of asset - the host-side effect of a tank_create deposit/fee
// or a tank_update deposit increase. Amount's saturating, non-negative
// arithmetic can't represent a debit as a negative credit, so this is
// its own interface rather than reusing AccountBalanceCredit.
type AccountBalanceDebit interface {
	DebitAccount(acct *account.Account, asset AssetID, amount Amount) error
}

// AssetAuthorizer decides whether acct may hold/receive asset at all
// (e.g. a whitelist/KYC gate on the asset type); invoked only when a
// release reaches an account sink.
type AssetAuthorizer interface {
	IsAuthorized(acct *account.Account, asset AssetID) bool
}

// Clock supplies the current ledger time, so periodic/time_lock/delay
// requirements evaluate deterministically against consensus time
// rather than wall-clock time.
type Clock interface {
	Now() time.Time
}

// Signers is supplied by the host per-operation: the set of accounts
// whose signatures were present and verified on the enclosing
// transaction, keyed by base58 account string. The engine consults it
// only through account.Authority.Satisfied and never verifies
// signatures itself, except for ticket_requirement tickets which
// carry their own detached signature (see requirement_calc.go).
type Signers map[string]bool
