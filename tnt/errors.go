// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tnt

import "github.com/bitmark-inc/bitmarkd/fault"

// Re-exported so callers of this package only need to import tnt, not
// also fault, for the errors its own API can return.
var (
	ErrTankGone             = fault.ErrTankNotFound
	ErrTankNotFound         = fault.ErrTankNotFound
	ErrAttachmentNotFound   = fault.ErrAttachmentNotFound
	ErrTapNotFound          = fault.ErrTapNotFound
	ErrRequirementNotFound  = fault.ErrRequirementNotFound
	ErrMaxTapsExceeded      = fault.ErrMaxTapsExceeded
	ErrMaxSinkChainExceeded = fault.ErrMaxSinkChainExceeded
	ErrBadSchematic         = fault.ErrBadSchematic
	ErrBadDepositPath       = fault.ErrBadDepositPath
	ErrBadAttachment        = fault.ErrBadAttachment
	ErrBadTapRequirement    = fault.ErrBadTapRequirement
	ErrBadQuery             = fault.ErrBadQuery
	ErrEmergencyTapShape    = fault.ErrEmergencyTapShape
	ErrTapNotConnected      = fault.ErrTapNotConnected
	ErrAssetMismatch        = fault.ErrAssetMismatch
	ErrNotAuthorized        = fault.ErrNotAuthorized
	ErrTankEmpty            = fault.ErrTankEmpty
	ErrRequirementZero      = fault.ErrRequirementYieldsZero
	ErrDepositPathMismatch  = fault.ErrDepositPathMismatch
	ErrRequestedExceedsLimit = fault.ErrRequestedExceedsLimit
	ErrInsufficientDeposit  = fault.ErrInsufficientDeposit
	ErrInternalInvariant    = fault.ErrInternalInvariant
)

// IsValidation, IsAuthorization, IsResource, IsSemantic and IsInternal
// classify any error this package returns per spec.md's error
// taxonomy.
func IsValidation(err error) bool   { return fault.IsErrValidation(err) }
func IsAuthorization(err error) bool { return fault.IsErrAuthorization(err) }
func IsResource(err error) bool     { return fault.IsErrResource(err) }
func IsSemantic(err error) bool     { return fault.IsErrSemantic(err) }
func IsInternal(err error) bool     { return fault.IsErrInternal(err) }
