// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tnt

import "github.com/bitmark-inc/bitmarkd/fault"

// Parameters bounds the resources a single flow evaluation may
// consume, set by the host and shared by every tank on the ledger.
type Parameters struct {
	// MaxSinkChainLength bounds how many non-terminal sinks a single
	// release may traverse before reaching a terminal tank/account.
	MaxSinkChainLength uint32

	// MaxTapsToOpen bounds how many taps a single tap_open request
	// (including every opener cascade it triggers) may process.
	MaxTapsToOpen uint32

	// BaseFee and PricePerByte compute tank_create's fee: base +
	// price_per_byte * size(create_op), where size(create_op) is the
	// packed byte length of the schematic being created.
	BaseFee      Amount
	PricePerByte Amount
}

// DefaultParameters mirrors the engine's built in defaults.
var DefaultParameters = Parameters{
	MaxSinkChainLength: 10,
	MaxTapsToOpen:      10,
	BaseFee:            5,
	PricePerByte:       0,
}

// TankCreateFee computes tank_create's fee for a schematic whose packed
// encoding is opSize bytes long: base + price_per_byte * opSize,
// saturating like every other Amount computation.
func TankCreateFee(params Parameters, opSize int) Amount {
	size := int64(opSize)
	rate := int64(params.PricePerByte)
	if size < 0 || rate < 0 || (rate != 0 && size > int64(MaxAmount)/rate) {
		return params.BaseFee.Add(MaxAmount)
	}
	return params.BaseFee.Add(Amount(rate * size))
}

// Validate rejects parameter blocks that would make the engine
// unusable (a zero bound can never be satisfied by any flow).
func (p Parameters) Validate() error {
	if 0 == p.MaxSinkChainLength {
		return fault.ErrBadSchematic
	}
	if 0 == p.MaxTapsToOpen {
		return fault.ErrBadSchematic
	}
	return nil
}
