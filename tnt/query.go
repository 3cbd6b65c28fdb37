// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tnt

import (
	"time"

	"github.com/bitmark-inc/bitmarkd/account"
	"github.com/bitmark-inc/bitmarkd/fault"
)

// QueryKind tags which of the fourteen query variants a Query holds.
// Append-only: this order is part of the wire format.
type QueryKind uint64

const (
	QueryResetMeter QueryKind = iota
	QueryReconnectAttachment
	QueryCreateRequestForReview
	QueryReviewRequestToOpen
	QueryCancelRequestForReview
	QueryConsumeApprovedRequestToOpen
	QueryDocumentationString
	QueryCreateRequestForDelay
	QueryVetoRequestInDelay
	QueryCancelRequestInDelay
	QueryConsumeMaturedRequestToOpen
	QueryRevealHashPreimage
	QueryRedeemTicketToOpen
	QueryResetExchangeAndMeter
	queryKindLimit
)

// Query is the tagged union of all fourteen query variants.
type Query struct {
	Kind QueryKind

	ResetMeter                   *ResetMeter
	ReconnectAttachment          *ReconnectAttachment
	CreateRequestForReview       *CreateRequestForReview
	ReviewRequestToOpen          *ReviewRequestToOpen
	CancelRequestForReview       *CancelRequestForReview
	ConsumeApprovedRequestToOpen *ConsumeApprovedRequestToOpen
	DocumentationString          *DocumentationString
	CreateRequestForDelay        *CreateRequestForDelay
	VetoRequestInDelay           *VetoRequestInDelay
	CancelRequestInDelay         *CancelRequestInDelay
	ConsumeMaturedRequestToOpen  *ConsumeMaturedRequestToOpen
	RevealHashPreimage           *RevealHashPreimage
	RedeemTicketToOpen           *RedeemTicketToOpen
	ResetExchangeAndMeter        *ResetExchangeAndMeter
}

// TargetedQuery addresses a Query at a specific attachment or tap
// requirement slot on a tank.
type TargetedQuery struct {
	Query   Query
	Address AccessoryAddress
}

type ResetMeter struct{}

type ReconnectAttachment struct {
	NewOutputSink Sink
}

type CreateRequestForReview struct {
	Amount AssetFlowLimit
}

type ReviewRequestToOpen struct {
	RequestID uint64
}

type CancelRequestForReview struct {
	RequestID uint64
}

type ConsumeApprovedRequestToOpen struct {
	RequestID uint64
}

type DocumentationString struct {
	Text string
}

type CreateRequestForDelay struct {
	Amount AssetFlowLimit
}

type VetoRequestInDelay struct {
	RequestID uint64
}

type CancelRequestInDelay struct {
	RequestID uint64
}

type ConsumeMaturedRequestToOpen struct {
	RequestID uint64
}

type RevealHashPreimage struct {
	Preimage []byte
}

type RedeemTicketToOpen struct {
	MaxWithdrawal Amount
	TicketNumber  uint64
	Signature     []byte // ed25519 over the canonical ticket tuple, see requirement_calc.go
}

type ResetExchangeAndMeter struct{}

// ApplyTankQuery applies one of the eight standalone tank_query
// operations - the ones that mutate persistent tank state directly,
// independent of any tap_open call: reset_meter, reconnect_attachment,
// create/cancel a review or delay request, veto_request_in_delay, and
// reset_exchange_and_meter. Five queries only meaningful alongside a
// tap_open call (consume_approved_request_to_open,
// documentation_string, consume_matured_request_to_open,
// reveal_hash_preimage, redeem_ticket_to_open) are instead consumed
// transiently by requirement_calc.go's max release computation.
// review_request_to_open is acted on by neither path: it is rejected
// here, ignored by MaxTapRelease, and a review request is approved only
// through ApproveRequest.
//
// signers authorizes reset_meter and reconnect_attachment, the two
// queries with their own declared authority; lookup resolves a
// reconnect's new sink across tank boundaries the same way schematic
// validation does.
func ApplyTankQuery(tank *Tank, schematic *TankSchematic, tq TargetedQuery, clock Clock, signers Signers, lookup LookupSchematicFunc) error {
	q := tq.Query
	switch q.Kind {
	case QueryResetMeter:
		if !tq.Address.IsAttachment {
			return fault.ErrBadQuery
		}
		att, err := GetAttachment(schematic, tq.Address.Attachment)
		if nil != err {
			return err
		}
		if att.Kind != AttachmentAssetFlowMeter {
			return fault.ErrBadQuery
		}
		emergency := schematic.EmergencyTap.OpenAuthority
		reset := att.AssetFlowMeter.ResetAuthority
		if !(!reset.IsNull() && reset.Satisfied(signers)) && !emergency.Satisfied(signers) {
			return fault.ErrNotAuthorized
		}
		tank.AttachmentState(tq.Address.Attachment).MeteredAmount = 0
		return nil

	case QueryReconnectAttachment:
		if !tq.Address.IsAttachment || nil == q.ReconnectAttachment {
			return fault.ErrBadQuery
		}
		att, err := GetAttachment(schematic, tq.Address.Attachment)
		if nil != err {
			return err
		}
		if att.Kind != AttachmentAssetFlowMeter && att.Kind != AttachmentTapOpener {
			return fault.ErrBadQuery
		}
		gate, found := findConnectAuthorityFor(schematic, tq.Address.Attachment)
		if !found || !gate.Satisfied(signers) {
			return fault.ErrNotAuthorized
		}
		if err := validateReconnectSink(schematic, tank.ID, q.ReconnectAttachment.NewOutputSink, lookup); nil != err {
			return err
		}
		switch att.Kind {
		case AttachmentAssetFlowMeter:
			att.AssetFlowMeter.OutputSink = q.ReconnectAttachment.NewOutputSink
		case AttachmentTapOpener:
			att.TapOpener.OutputSink = q.ReconnectAttachment.NewOutputSink
		}
		return nil

	case QueryCreateRequestForReview:
		return createRequest(tank, schematic, tq.Address, q.CreateRequestForReview.Amount, RequirementReview, clock)

	case QueryCancelRequestForReview:
		return cancelPendingRequest(tank, tq.Address, q.CancelRequestForReview.RequestID)

	case QueryCreateRequestForDelay:
		return createRequest(tank, schematic, tq.Address, q.CreateRequestForDelay.Amount, RequirementDelay, clock)

	case QueryCancelRequestInDelay:
		return cancelPendingRequest(tank, tq.Address, q.CancelRequestInDelay.RequestID)

	case QueryVetoRequestInDelay:
		return cancelPendingRequest(tank, tq.Address, q.VetoRequestInDelay.RequestID)

	case QueryResetExchangeAndMeter:
		if tq.Address.IsAttachment {
			return fault.ErrBadQuery
		}
		req, err := GetRequirement(schematic, tq.Address.Requirement)
		if nil != err {
			return err
		}
		if req.Kind != RequirementExchange {
			return fault.ErrBadQuery
		}
		state := tank.RequirementState(tq.Address.Requirement)
		state.AmountReleased = 0
		tank.AttachmentState(req.Exchange.MeterIndex).MeteredAmount = 0
		return nil

	default:
		return fault.ErrBadQuery
	}
}

func createRequest(tank *Tank, schematic *TankSchematic, addr AccessoryAddress, amount AssetFlowLimit, wantKind TapRequirementKind, clock Clock) error {
	if addr.IsAttachment {
		return fault.ErrBadQuery
	}
	req, err := GetRequirement(schematic, addr.Requirement)
	if nil != err {
		return err
	}
	if req.Kind != wantKind {
		return fault.ErrBadQuery
	}
	state := tank.RequirementState(addr.Requirement)
	state.NextRequestID++
	id := state.NextRequestID
	now := time.Time{}
	if nil != clock {
		now = clock.Now()
	}
	state.Requests = append(state.Requests, PendingRequest{ID: id, Amount: amount, CreatedAt: now})
	return nil
}

// findConnectAuthorityFor returns the authority that may reconnect
// attachment idx: the attachment_connect_authority attachment whose
// own Attachment field names idx.
func findConnectAuthorityFor(schematic *TankSchematic, idx AttachmentIndex) (account.Authority, bool) {
	for _, a := range schematic.Attachments {
		if a.Kind == AttachmentConnectAuthority && nil != a.ConnectAuthority && a.ConnectAuthority.Attachment == idx {
			return a.ConnectAuthority.Authority, true
		}
	}
	return account.Authority{}, false
}

// validateReconnectSink checks a reconnect_attachment query's new sink
// the same way attachment creation does: it must resolve and accept
// the tank's own asset. Account sinks accept any asset and always
// pass, matching how a terminal release to an account is already
// permitted regardless of declared asset.
func validateReconnectSink(schematic *TankSchematic, selfTank TankID, newSink Sink, lookup LookupSchematicFunc) error {
	if newSink.Resolved(selfTank).Kind == SinkAccount {
		return nil
	}
	lookupFn := func(id TankID) (*TankSchematic, error) {
		if nil == lookup {
			return nil, fault.ErrTankNotFound
		}
		return lookup(id)
	}
	asset, err := GetSinkAsset(newSink, selfTank, schematic, lookupFn)
	if nil != err {
		return err
	}
	if asset != schematic.Asset {
		return fault.ErrAssetMismatch
	}
	return nil
}

func cancelPendingRequest(tank *Tank, addr AccessoryAddress, id uint64) error {
	if addr.IsAttachment {
		return fault.ErrBadQuery
	}
	state := tank.RequirementState(addr.Requirement)
	for i, r := range state.Requests {
		if r.ID == id {
			state.Requests = append(state.Requests[:i], state.Requests[i+1:]...)
			return nil
		}
	}
	return fault.ErrRequirementNotFound
}

// ApproveRequest marks a pending review request approved (the host
// calls this once its own reviewers have signed off - the engine
// itself has no opinion on how review authority is satisfied beyond
// the tap requirement's Authority.Satisfied check the host performs
// before calling this).
func ApproveRequest(tank *Tank, addr RequirementAddress, id uint64) error {
	state := tank.RequirementState(addr)
	for i := range state.Requests {
		if state.Requests[i].ID == id {
			state.Requests[i].Approved = true
			return nil
		}
	}
	return fault.ErrRequirementNotFound
}
