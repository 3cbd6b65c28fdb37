// Copyright (c) 2014-2016 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// error classes for the tank-and-tap engine
//
// Validation errors are caused by a malformed request (bad schematic,
// bad query, out of range field); Authorization errors mean the
// request is well formed but the caller lacks the authority to make
// it; Resource errors mean a referenced tank/attachment/requirement
// does not exist, or a bound (max_taps_to_open, max_sink_chain_length)
// was exceeded; Semantic errors mean the request is individually valid
// but cannot be satisfied given the current state (insufficient
// balance, requirement yields zero release); Internal errors indicate
// a bug in the engine or its host integration, never a bad request.
type ValidationError GenericError
type AuthorizationError GenericError
type ResourceError GenericError
type SemanticError GenericError
type InternalError GenericError

func (e ValidationError) Error() string   { return string(e) }
func (e AuthorizationError) Error() string { return string(e) }
func (e ResourceError) Error() string     { return string(e) }
func (e SemanticError) Error() string     { return string(e) }
func (e InternalError) Error() string     { return string(e) }

func IsErrValidation(e error) bool   { _, ok := e.(ValidationError); return ok }
func IsErrAuthorization(e error) bool { _, ok := e.(AuthorizationError); return ok }
func IsErrResource(e error) bool     { _, ok := e.(ResourceError); return ok }
func IsErrSemantic(e error) bool     { _, ok := e.(SemanticError); return ok }
func IsErrInternal(e error) bool     { _, ok := e.(InternalError); return ok }

// common tnt errors, grouped by class

var (
	ErrBadSchematic          = ValidationError("tank schematic is not well formed")
	ErrBadDepositPath        = ValidationError("deposit source pattern is not well formed")
	ErrBadAttachment         = ValidationError("attachment is not well formed")
	ErrBadTapRequirement     = ValidationError("tap requirement is not well formed")
	ErrBadQuery              = ValidationError("query is not well formed")
	ErrEmergencyTapShape     = ValidationError("emergency tap does not meet the required shape")
	ErrTapNotConnected       = ValidationError("tap is not connected")
	ErrAssetMismatch         = ValidationError("sink does not accept this asset")
	ErrPackedDataTruncated   = ValidationError("packed data is truncated")
	ErrUnknownTag            = ValidationError("unknown tag in packed data")
)

var (
	ErrNotAuthorized      = AuthorizationError("caller is not authorized for this operation")
	ErrImpossibleAuthority = AuthorizationError("authority can never be satisfied")
	ErrTrivialAuthority    = AuthorizationError("authority requires no signatures")
	ErrNullAuthority       = AuthorizationError("authority has no keys")
)

var (
	ErrTankNotFound         = ResourceError("tank does not exist")
	ErrAttachmentNotFound   = ResourceError("attachment does not exist")
	ErrTapNotFound          = ResourceError("tap does not exist")
	ErrRequirementNotFound  = ResourceError("tap requirement does not exist")
	ErrMaxTapsExceeded      = ResourceError("cascade would open more than max_taps_to_open taps")
	ErrMaxSinkChainExceeded = ResourceError("sink chain exceeds max_sink_chain_length")
)

var (
	ErrTankNotEmpty           = SemanticError("tank must be empty before it can be destroyed")
	ErrTankEmpty              = SemanticError("tank balance is insufficient for this release")
	ErrRequirementYieldsZero  = SemanticError("a tap requirement currently permits no release")
	ErrDepositPathMismatch    = SemanticError("deposit does not match the restrictor's allowed path")
	ErrRequestedExceedsLimit  = SemanticError("requested amount exceeds the available release")
	ErrInsufficientDeposit    = SemanticError("deposit reserve cannot cover the requested decrease or claim")
)

var (
	ErrInternalInvariant = InternalError("an internal invariant was violated")
)
