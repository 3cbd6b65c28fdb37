// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tnt

import (
	"github.com/bitmark-inc/bitmarkd/account"
	"github.com/bitmark-inc/bitmarkd/fault"
)

// FlowReportEntry records one tap actually opened during a flow - the
// tap that was dequeued and processed at that step, not the tap the
// caller originally asked to open.
type FlowReportEntry struct {
	Tank     TankID
	Tap      TapIndex
	Released Amount
}

// FlowReport is the full record of a tap_open call: the root tap plus
// every tap a tap_opener cascade opened in turn, in the order they
// were processed, together with every authority the flow required.
// RequiredAuthorities maps each touched tank to the ordered, de-
// duplicated list of authorities a signer must satisfy to reproduce
// this flow: the open-authority of every tap that was opened, plus (for
// callers that fold a reset_meter/reconnect_attachment query into the
// same report via RecordQueryAuthority) the authority that query
// itself declares. The six open-time query kinds carry no authority of
// their own and never contribute an entry.
type FlowReport struct {
	Entries             []FlowReportEntry
	RequiredAuthorities map[TankID][]account.Authority
}

// recordRequiredAuthority appends auth to tank's required-authority
// list, skipping null authorities (nothing to require) and authorities
// already recorded for that tank.
func (r *FlowReport) recordRequiredAuthority(tank TankID, auth account.Authority) {
	if auth.IsNull() {
		return
	}
	if nil == r.RequiredAuthorities {
		r.RequiredAuthorities = make(map[TankID][]account.Authority)
	}
	for _, existing := range r.RequiredAuthorities[tank] {
		if authorityEqual(existing, auth) {
			return
		}
	}
	r.RequiredAuthorities[tank] = append(r.RequiredAuthorities[tank], auth)
}

// RecordQueryAuthority lets a caller applying a reset_meter or
// reconnect_attachment query alongside this flow fold that query's own
// required authority into the same report, so the host need consult
// only one map per transaction.
func (r *FlowReport) RecordQueryAuthority(tank TankID, auth account.Authority) {
	r.recordRequiredAuthority(tank, auth)
}

func authorityEqual(a, b account.Authority) bool {
	if a.Threshold != b.Threshold || len(a.Weights) != len(b.Weights) {
		return false
	}
	for k, v := range a.Weights {
		if bv, ok := b.Weights[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

// TapFlowContext bundles the collaborators a tap_open evaluation
// needs beyond the tank data itself.
type TapFlowContext struct {
	Staging       *Staging
	Authorizer    AssetAuthorizer
	CreditAccount AccountBalanceCredit
	Clock         Clock
	Params        Parameters
}

type queuedTap struct {
	Tank      TankID
	Tap       TapIndex
	Requested AssetFlowLimit
}

// OpenTap evaluates opening rootTap on rootTank for exactly requested
// units of asset, together with any tap_opener cascade it triggers.
// The whole cascade is flattened into a single FIFO queue bounded by
// Params.MaxTapsToOpen rather than recursing, so a long chain of
// openers cannot exhaust the call stack. openQueries apply only to the
// root tap; cascaded taps opened by a tap_opener carry no queries of
// their own (they use whatever requirement state already lets them
// release, per the attachment's configured ReleaseAmount).
func (ctx *TapFlowContext) OpenTap(rootTank TankID, rootTap TapIndex, requested Amount, openQueries []TargetedQuery) (*FlowReport, error) {
	queue := []queuedTap{{Tank: rootTank, Tap: rootTap, Requested: LimitedFlow(requested)}}
	report := &FlowReport{}
	opened := 0

	var enqueue EnqueueTapFunc = func(tankID TankID, tapIdx TapIndex, amount AssetFlowLimit) error {
		if opened+len(queue)+1 > int(ctx.Params.MaxTapsToOpen) {
			return fault.ErrMaxTapsExceeded
		}
		queue = append(queue, queuedTap{Tank: tankID, Tap: tapIdx, Requested: amount})
		return nil
	}

	sinkCtx := &SinkFlowContext{
		Staging:       ctx.Staging,
		Authorizer:    ctx.Authorizer,
		CreditAccount: ctx.CreditAccount,
		EnqueueTap:    enqueue,
		Params:        ctx.Params,
	}

	for len(queue) > 0 {
		if opened >= int(ctx.Params.MaxTapsToOpen) {
			return nil, fault.ErrMaxTapsExceeded
		}
		item := queue[0]
		queue = queue[1:]
		opened++

		var queries []TargetedQuery
		if item.Tank == rootTank && item.Tap == rootTap && 0 == len(report.Entries) {
			queries = openQueries
		}

		released, auth, err := ctx.processOneTap(sinkCtx, item, queries)
		if nil != err {
			return nil, err
		}
		report.recordRequiredAuthority(item.Tank, auth)
		report.Entries = append(report.Entries, FlowReportEntry{
			Tank:     item.Tank,
			Tap:      item.Tap,
			Released: released,
		})
	}

	return report, nil
}

// processOneTap evaluates and immediately applies a single dequeued
// tap: it computes the binding release, ascertains it at least covers
// what was requested, debits the tank, releases the asset downstream,
// and consumes whatever open-time queries it redeemed.
func (ctx *TapFlowContext) processOneTap(sinkCtx *SinkFlowContext, item queuedTap, openQueries []TargetedQuery) (Amount, account.Authority, error) {
	tank, err := ctx.Staging.Lookup(item.Tank)
	if nil != err {
		return 0, account.Authority{}, err
	}
	tap, err := GetTap(&tank.Schematic, item.Tap)
	if nil != err {
		return 0, account.Authority{}, err
	}
	if !tap.Connected {
		return 0, account.Authority{}, fault.ErrTapNotConnected
	}

	maxRelease, binding, err := MaxTapRelease(tank, &tank.Schematic, item.Tap, openQueries, ctx.Clock)
	if nil != err {
		return 0, account.Authority{}, err
	}

	var request Amount
	if item.Requested.Unlimited {
		if maxRelease.Unlimited {
			return 0, account.Authority{}, fault.ErrInternalInvariant
		}
		request = maxRelease.Limit
	} else {
		request = item.Requested.Limit
	}

	if !maxRelease.Unlimited {
		if request > maxRelease.Limit {
			if maxRelease.Limit == 0 {
				if binding < 0 {
					return 0, account.Authority{}, fault.ErrTankEmpty
				}
				return 0, account.Authority{}, fault.ErrRequirementYieldsZero
			}
			return 0, account.Authority{}, fault.ErrRequestedExceedsLimit
		}
	}
	if request > tank.Balance {
		return 0, account.Authority{}, fault.ErrTankEmpty
	}

	tank.Balance = tank.Balance.Sub(request)
	advanceRequirementState(tank, item.Tap, tap, request, ctx.Clock)
	ctx.Staging.Stage(tank)

	if err := sinkCtx.ReleaseToSink(item.Tank, tap.OutputSink, request); nil != err {
		return 0, account.Authority{}, err
	}

	ConsumeOpenQueries(tank, tap, item.Tap, openQueries)
	ctx.Staging.Stage(tank)

	return request, tap.OpenAuthority, nil
}

// advanceRequirementState updates the running totals cumulative,
// periodic and exchange requirements track, now that request units
// have actually been released.
func advanceRequirementState(tank *Tank, tapIdx TapIndex, tap *Tap, request Amount, clock Clock) {
	for i, req := range tap.Requirements {
		addr := RequirementAddress{Tap: tapIdx, Requirement: RequirementIndex(i)}
		state := tank.RequirementState(addr)
		switch req.Kind {
		case RequirementCumulativeFlowLimit, RequirementExchange:
			state.AmountReleased = state.AmountReleased.Add(request)

		case RequirementPeriodicFlowLimit:
			pr := req.PeriodicFlowLimit
			if nil != clock && pr.PeriodDurationSec > 0 {
				periodNum := periodNumber(tank.CreationTime, clock.Now(), pr.PeriodDurationSec)
				if periodNum != state.PeriodNum {
					state.PeriodNum = periodNum
					state.AmountReleased = 0
				}
			}
			state.AmountReleased = state.AmountReleased.Add(request)
		}
	}
}
