// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tnt

import "github.com/bitmark-inc/bitmarkd/fault"

// LookupSchematicFunc resolves a foreign tank id to its schematic, for
// validating a tap's connection across tanks.
type LookupSchematicFunc func(TankID) (*TankSchematic, error)

// ValidateSchematic checks every attachment, the emergency tap, and
// every ordinary tap of schematic, in that order - matching
// validate_tank's checking order in the original implementation.
func ValidateSchematic(schematic *TankSchematic, params Parameters, lookup LookupSchematicFunc) error {
	sawRestrictor := false
	for _, a := range schematic.Attachments {
		if a.Kind == AttachmentDepositSourceRestrictor {
			if sawRestrictor {
				return fault.ErrBadSchematic
			}
			sawRestrictor = true
		}
		if err := ValidateAttachment(schematic, *a); nil != err {
			return err
		}
	}

	if err := ValidateEmergencyTap(schematic.EmergencyTap); nil != err {
		return err
	}

	for _, tap := range schematic.Taps {
		if err := ValidateTap(*tap); nil != err {
			return err
		}
		if err := CheckTapConnection(schematic, *tap, params, lookup); nil != err {
			return err
		}
	}

	return nil
}

// ValidateAttachment checks the per-kind consistency rules the
// original's internal_attachment_checker visitor applies.
func ValidateAttachment(schematic *TankSchematic, a Attachment) error {
	switch a.Kind {
	case AttachmentAssetFlowMeter:
		if nil == a.AssetFlowMeter {
			return fault.ErrBadAttachment
		}
	case AttachmentDepositSourceRestrictor:
		if nil == a.DepositSourceRestrictor {
			return fault.ErrBadAttachment
		}
		return ValidateDepositPaths(a.DepositSourceRestrictor.Paths)
	case AttachmentTapOpener:
		if nil == a.TapOpener {
			return fault.ErrBadAttachment
		}
		if !a.TapOpener.ReleaseAmount.Unlimited && a.TapOpener.ReleaseAmount.Limit <= 0 {
			return fault.ErrBadAttachment
		}
		if _, err := GetTap(schematic, a.TapOpener.Tap); nil != err {
			return err
		}
	case AttachmentConnectAuthority:
		if nil == a.ConnectAuthority {
			return fault.ErrBadAttachment
		}
		if err := a.ConnectAuthority.Authority.Validate(); nil != err {
			return err
		}
		target, err := GetAttachment(schematic, a.ConnectAuthority.Attachment)
		if nil != err {
			return err
		}
		if !target.ReceivesAsset() {
			return fault.ErrBadAttachment
		}
	default:
		return fault.ErrBadAttachment
	}
	return nil
}

// ValidateTap checks a tap's connect shape and every requirement on
// it, in slot order. A tap with a null ConnectAuthority must be
// Connected; a tap that declares a ConnectAuthority may be created
// disconnected and connected later via tank_update, but the authority
// itself must still be well formed.
func ValidateTap(tap Tap) error {
	if tap.ConnectAuthority.IsNull() {
		if !tap.Connected {
			return fault.ErrTapNotConnected
		}
	} else if err := tap.ConnectAuthority.Validate(); nil != err {
		return err
	}
	for i := range tap.Requirements {
		if err := ValidateTapRequirement(tap.Requirements[i]); nil != err {
			return err
		}
	}
	return nil
}

// ValidateTapRequirement checks the per-kind consistency rules the
// original's internal_requirement_checker visitor applies: positive
// limits, non-empty time_lock toggles, valid authorities, a non-empty
// hash, a non-null ticket signer, and positive exchange parameters.
func ValidateTapRequirement(r TapRequirement) error {
	switch r.Kind {
	case RequirementImmediateFlowLimit:
		if nil == r.ImmediateFlowLimit {
			return fault.ErrBadTapRequirement
		}
		return checkPositiveLimit(r.ImmediateFlowLimit.Limit)
	case RequirementCumulativeFlowLimit:
		if nil == r.CumulativeFlowLimit {
			return fault.ErrBadTapRequirement
		}
		return checkPositiveLimit(r.CumulativeFlowLimit.Limit)
	case RequirementPeriodicFlowLimit:
		if nil == r.PeriodicFlowLimit {
			return fault.ErrBadTapRequirement
		}
		if 0 == r.PeriodicFlowLimit.PeriodDurationSec {
			return fault.ErrBadTapRequirement
		}
		return checkPositiveLimit(r.PeriodicFlowLimit.Limit)
	case RequirementTimeLock:
		if nil == r.TimeLock || 0 == len(r.TimeLock.Toggles) {
			return fault.ErrBadTapRequirement
		}
		for i := 1; i < len(r.TimeLock.Toggles); i++ {
			if !r.TimeLock.Toggles[i].After(r.TimeLock.Toggles[i-1]) {
				return fault.ErrBadTapRequirement
			}
		}
	case RequirementMinimumTankLevel:
		if nil == r.MinimumTankLevel {
			return fault.ErrBadTapRequirement
		}
	case RequirementReview:
		if nil == r.Review {
			return fault.ErrBadTapRequirement
		}
		return r.Review.Reviewer.Validate()
	case RequirementDocumentation:
		if nil == r.Documentation || "" == r.Documentation.RequiredText {
			return fault.ErrBadTapRequirement
		}
	case RequirementDelay:
		if nil == r.Delay || r.Delay.Delay <= 0 {
			return fault.ErrBadTapRequirement
		}
		return r.Delay.VetoAuthority.Validate()
	case RequirementHashLock:
		if nil == r.HashLock || 0 == len(r.HashLock.Hash) {
			return fault.ErrBadTapRequirement
		}
	case RequirementTicket:
		if nil == r.Ticket || nil == r.Ticket.Signer {
			return fault.ErrBadTapRequirement
		}
	case RequirementExchange:
		if nil == r.Exchange || r.Exchange.TickAmount <= 0 {
			return fault.ErrBadTapRequirement
		}
		return checkPositiveLimit(r.Exchange.ReleasePerTick)
	default:
		return fault.ErrBadTapRequirement
	}
	return nil
}

func checkPositiveLimit(limit AssetFlowLimit) error {
	if !limit.Unlimited && limit.Limit <= 0 {
		return fault.ErrBadTapRequirement
	}
	return nil
}

// ValidateEmergencyTap enforces the emergency tap's fixed shape: no
// requirements, a required (non-trivial) open authority, DestructorTap
// set, and - unlike an ordinary tap - a mandatory, non-null
// ConnectAuthority. That authority is the tank's single "auth" gate
// for tank_update and tank_delete, so it must be satisfiable on its
// own; it is checked the same way any other tap's ConnectAuthority is,
// via the shared ValidateTap rule.
func ValidateEmergencyTap(tap Tap) error {
	if len(tap.Requirements) != 0 {
		return fault.ErrEmergencyTapShape
	}
	if err := tap.OpenAuthority.Validate(); nil != err {
		return err
	}
	if !tap.DestructorTap {
		return fault.ErrEmergencyTapShape
	}
	if tap.ConnectAuthority.IsNull() {
		return fault.ErrEmergencyTapShape
	}
	return ValidateTap(tap)
}

// CheckTapConnection walks tap's output sink chain and, if it
// terminates on a tank guarded by a deposit_source_restrictor,
// verifies that the tap's own path to that tank matches the
// restrictor's pattern - the only check in validation that needs to
// see across tank boundaries.
// selfTankID is the sentinel "current tank" used while validating a
// schematic that has not yet been assigned a real TankID: same_tank
// resolves to this value, which this function recognizes as "the
// schematic being validated" rather than looking it up externally.
const selfTankID TankID = 0

func CheckTapConnection(schematic *TankSchematic, tap Tap, params Parameters, lookup LookupSchematicFunc) error {
	if !tap.Connected {
		// a disconnected tap has no sink chain to check yet - it is
		// only reachable once tank_update's taps_replace connects it,
		// at which point the replacement is revalidated in full.
		return nil
	}
	hops, err := GetSinkChain(tap.OutputSink, selfTankID, schematic, lookup, params.MaxSinkChainLength)
	if nil != err {
		return err
	}
	terminal := hops[len(hops)-1]
	if terminal.Sink.Kind != SinkTank {
		return nil
	}

	var destSchematic *TankSchematic
	if terminal.Sink.Tank == selfTankID {
		destSchematic = schematic
	} else {
		destSchematic, err = lookup(terminal.Sink.Tank)
		if nil != err {
			return err
		}
	}

	restrictorIdx, found := findRestrictor(destSchematic)
	if !found {
		return nil
	}
	restrictor := destSchematic.Attachments[restrictorIdx].DepositSourceRestrictor

	visits := make([]DepositPathVisit, 0, len(hops)-1)
	for _, h := range hops[:len(hops)-1] {
		visits = append(visits, DepositPathVisit{Sink: h.Sink, Tank: h.Tank})
	}
	if _, matched := MatchDepositPaths(restrictor.Paths, visits); !matched {
		return fault.ErrDepositPathMismatch
	}
	return nil
}

func findRestrictor(schematic *TankSchematic) (AttachmentIndex, bool) {
	for i, a := range schematic.Attachments {
		if a.Kind == AttachmentDepositSourceRestrictor {
			return i, true
		}
	}
	return 0, false
}
