// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tnt

import (
	"time"

	"github.com/bitmark-inc/bitmarkd/account"
	"github.com/bitmark-inc/bitmarkd/fault"
	"github.com/bitmark-inc/bitmarkd/merkle"
	"github.com/bitmark-inc/bitmarkd/util"
)

// periodNumber computes p = floor((now - creation) / period), the
// single fixed anchor every periodic_flow_limit requirement on a tank
// shares - unlike per-requirement lazy state, this never resets as
// long as the tank exists.
func periodNumber(creation, now time.Time, periodDurationSec uint32) uint64 {
	if now.Before(creation) || 0 == periodDurationSec {
		return 0
	}
	return uint64(now.Sub(creation).Seconds()) / uint64(periodDurationSec)
}

// MaxTapRelease computes the most a tap may release right now: the
// minimum across every one of its requirements, together with the
// index of the requirement that binds (the lowest), so callers can
// report exactly why a release was limited. openQueries carries the
// open-time queries submitted alongside this tap_open call (consume_
// approved_request_to_open, documentation_string, consume_matured_
// request_to_open, reveal_hash_preimage, redeem_ticket_to_open); each
// may be targeted at any requirement on this tap. A review_request_to_
// open query among them has no effect.
func MaxTapRelease(tank *Tank, schematic *TankSchematic, tapIdx TapIndex, openQueries []TargetedQuery, clock Clock) (AssetFlowLimit, int, error) {
	tap, err := GetTap(schematic, tapIdx)
	if nil != err {
		return AssetFlowLimit{}, -1, err
	}

	result := UnlimitedFlow
	binding := -1

	for i := range tap.Requirements {
		addr := RequirementAddress{Tap: tapIdx, Requirement: RequirementIndex(i)}
		limit, err := maxRequirementRelease(tank, schematic, addr, tap.Requirements[i], openQueries, clock)
		if nil != err {
			return AssetFlowLimit{}, -1, err
		}
		if !limit.Unlimited && (result.Unlimited || limit.Limit < result.Limit) {
			result = limit
			binding = i
		}
		if !result.Unlimited && result.Limit == 0 {
			break
		}
	}

	if result.Unlimited {
		balance := LimitedFlow(tank.Balance)
		return balance, binding, nil
	}
	if result.Limit > tank.Balance {
		return LimitedFlow(tank.Balance), -1, nil
	}
	return result, binding, nil
}

func maxRequirementRelease(tank *Tank, schematic *TankSchematic, addr RequirementAddress, req TapRequirement, openQueries []TargetedQuery, clock Clock) (AssetFlowLimit, error) {
	state := tank.RequirementState(addr)

	switch req.Kind {
	case RequirementImmediateFlowLimit:
		return req.ImmediateFlowLimit.Limit, nil

	case RequirementCumulativeFlowLimit:
		limit := req.CumulativeFlowLimit.Limit
		if limit.Unlimited {
			return limit, nil
		}
		return LimitedFlow(limit.Limit.Sub(state.AmountReleased)), nil

	case RequirementPeriodicFlowLimit:
		pr := req.PeriodicFlowLimit
		if pr.Limit.Unlimited {
			return pr.Limit, nil
		}
		if nil == clock {
			return pr.Limit, nil
		}
		periodNum := periodNumber(tank.CreationTime, clock.Now(), pr.PeriodDurationSec)
		if periodNum == state.PeriodNum {
			return LimitedFlow(pr.Limit.Limit.Sub(state.AmountReleased)), nil
		}
		return pr.Limit, nil

	case RequirementTimeLock:
		if nil == clock {
			return LimitedFlow(0), nil
		}
		if req.TimeLock.UnlockedAt(clock.Now()) {
			return UnlimitedFlow, nil
		}
		return LimitedFlow(0), nil

	case RequirementMinimumTankLevel:
		min := req.MinimumTankLevel.MinimumLevel
		if tank.Balance <= min {
			return LimitedFlow(0), nil
		}
		return LimitedFlow(tank.Balance - min), nil

	case RequirementDocumentation:
		for _, q := range openQueries {
			if !sameAddress(q.Address, addr) || q.Query.Kind != QueryDocumentationString {
				continue
			}
			if q.Query.DocumentationString.Text == req.Documentation.RequiredText {
				return UnlimitedFlow, nil
			}
		}
		return LimitedFlow(0), nil

	case RequirementReview:
		return sumConsumedRequests(tank, addr, openQueries, QueryConsumeApprovedRequestToOpen, func(p PendingRequest) bool {
			return p.Approved
		})

	case RequirementDelay:
		if nil == clock {
			return LimitedFlow(0), nil
		}
		now := clock.Now()
		return sumConsumedRequests(tank, addr, openQueries, QueryConsumeMaturedRequestToOpen, func(p PendingRequest) bool {
			return !p.CreatedAt.IsZero() && now.Sub(p.CreatedAt) >= req.Delay.Delay
		})

	case RequirementHashLock:
		for _, q := range openQueries {
			if !sameAddress(q.Address, addr) || q.Query.Kind != QueryRevealHashPreimage {
				continue
			}
			digest := merkle.HashPreimage(req.HashLock.Algorithm, q.Query.RevealHashPreimage.Preimage)
			if bytesEqual(digest, req.HashLock.Hash) {
				return UnlimitedFlow, nil
			}
		}
		return LimitedFlow(0), nil

	case RequirementTicket:
		var total AssetFlowLimit
		for _, q := range openQueries {
			if !sameAddress(q.Address, addr) || q.Query.Kind != QueryRedeemTicketToOpen {
				continue
			}
			t := q.Query.RedeemTicketToOpen
			if state.UsedTickets[t.TicketNumber] {
				continue
			}
			if !verifyTicket(req.Ticket.Signer, tank.ID, addr, t) {
				continue
			}
			total.Limit = total.Limit.Add(t.MaxWithdrawal)
		}
		return total, nil

	case RequirementExchange:
		er := req.Exchange
		meterState := tank.AttachmentState(er.MeterIndex)
		if er.TickAmount <= 0 {
			return LimitedFlow(0), nil
		}
		ticks := int64(meterState.MeteredAmount) / int64(er.TickAmount)
		if er.ReleasePerTick.Unlimited {
			if ticks > 0 {
				return UnlimitedFlow, nil
			}
			return LimitedFlow(0), nil
		}
		earned := Amount(ticks) * er.ReleasePerTick.Limit
		return LimitedFlow(earned.Sub(state.AmountReleased)), nil

	default:
		return AssetFlowLimit{}, fault.ErrInternalInvariant
	}
}

func sameAddress(a AccessoryAddress, b RequirementAddress) bool {
	return !a.IsAttachment && a.Requirement == b
}

func sumConsumedRequests(tank *Tank, addr RequirementAddress, openQueries []TargetedQuery, wantKind QueryKind, gate func(PendingRequest) bool) (AssetFlowLimit, error) {
	state := tank.RequirementState(addr)
	var total AssetFlowLimit
	for _, q := range openQueries {
		if !sameAddress(q.Address, addr) || q.Query.Kind != wantKind {
			continue
		}
		var id uint64
		switch wantKind {
		case QueryConsumeApprovedRequestToOpen:
			id = q.Query.ConsumeApprovedRequestToOpen.RequestID
		case QueryConsumeMaturedRequestToOpen:
			id = q.Query.ConsumeMaturedRequestToOpen.RequestID
		}
		for _, r := range state.Requests {
			if r.ID == id && gate(r) {
				if r.Amount.Unlimited {
					return UnlimitedFlow, nil
				}
				total.Limit = total.Limit.Add(r.Amount.Limit)
			}
		}
	}
	return total, nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// verifyTicket checks an ed25519 signature over the canonical tuple
// (tank_id, tap_id, requirement_index, max_withdrawal, ticket_number),
// the same tuple a ticket-issuing host signs off-chain.
func verifyTicket(signer *account.Account, tankID TankID, addr RequirementAddress, t *RedeemTicketToOpen) bool {
	if nil == signer || nil == t {
		return false
	}
	message := ticketMessage(tankID, addr, t.MaxWithdrawal, t.TicketNumber)
	return nil == signer.CheckSignature(message, account.Signature(t.Signature))
}

// ConsumeOpenQueries is called once a tap_open release using
// openQueries has actually committed: it removes redeemed review/delay
// requests and marks redeemed ticket numbers spent, so a second
// tap_open cannot reuse the same request or ticket.
func ConsumeOpenQueries(tank *Tank, tap *Tap, tapIdx TapIndex, openQueries []TargetedQuery) {
	for i := range tap.Requirements {
		addr := RequirementAddress{Tap: tapIdx, Requirement: RequirementIndex(i)}
		req := tap.Requirements[i]
		state := tank.RequirementState(addr)

		switch req.Kind {
		case RequirementReview:
			consumeRequests(state, addr, openQueries, QueryConsumeApprovedRequestToOpen)
		case RequirementDelay:
			consumeRequests(state, addr, openQueries, QueryConsumeMaturedRequestToOpen)
		case RequirementTicket:
			for _, q := range openQueries {
				if !sameAddress(q.Address, addr) || q.Query.Kind != QueryRedeemTicketToOpen {
					continue
				}
				if nil == state.UsedTickets {
					state.UsedTickets = make(map[uint64]bool)
				}
				state.UsedTickets[q.Query.RedeemTicketToOpen.TicketNumber] = true
			}
		case RequirementHashLock:
			for _, q := range openQueries {
				if sameAddress(q.Address, addr) && q.Query.Kind == QueryRevealHashPreimage {
					state.RevealedPreimage = q.Query.RevealHashPreimage.Preimage
				}
			}
		}
	}
}

func consumeRequests(state *TapRequirementState, addr RequirementAddress, openQueries []TargetedQuery, wantKind QueryKind) {
	var ids []uint64
	for _, q := range openQueries {
		if !sameAddress(q.Address, addr) || q.Query.Kind != wantKind {
			continue
		}
		var id uint64
		switch wantKind {
		case QueryConsumeApprovedRequestToOpen:
			id = q.Query.ConsumeApprovedRequestToOpen.RequestID
		case QueryConsumeMaturedRequestToOpen:
			id = q.Query.ConsumeMaturedRequestToOpen.RequestID
		}
		ids = append(ids, id)
	}
	if 0 == len(ids) {
		return
	}
	kept := state.Requests[:0]
	for _, r := range state.Requests {
		remove := false
		for _, id := range ids {
			if r.ID == id {
				remove = true
				break
			}
		}
		if !remove {
			kept = append(kept, r)
		}
	}
	state.Requests = kept
}

func ticketMessage(tankID TankID, addr RequirementAddress, maxWithdrawal Amount, ticketNumber uint64) []byte {
	message := make([]byte, 0, 40)
	message = append(message, util.ToVarint64(uint64(tankID))...)
	message = append(message, util.ToVarint64(uint64(addr.Tap))...)
	message = append(message, util.ToVarint64(uint64(addr.Requirement))...)
	message = append(message, util.ToVarint64(uint64(maxWithdrawal))...)
	message = append(message, util.ToVarint64(ticketNumber)...)
	return message
}
