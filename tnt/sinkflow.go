// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tnt

import "github.com/bitmark-inc/bitmarkd/fault"

// EnqueueTapFunc schedules tapIdx on tankID to be opened for amount as
// a side effect of a tap_opener attachment - the caller (tapflow.go)
// supplies this so the cascade stays a single flat FIFO queue rather
// than recursing through sinkflow and tapflow into each other.
type EnqueueTapFunc func(tankID TankID, tapIdx TapIndex, amount AssetFlowLimit) error

// SinkFlowContext bundles everything ReleaseToSink needs from its
// caller: the staging layer to read/write tanks through, the host's
// authorization and crediting services for terminal account sinks,
// and the tap-opener side-effect callback.
type SinkFlowContext struct {
	Staging       *Staging
	Authorizer    AssetAuthorizer
	CreditAccount AccountBalanceCredit
	EnqueueTap    EnqueueTapFunc
	Params        Parameters
}

// ReleaseToSink walks asset amount of the origin tank's asset from
// origin through every attachment it passes through until it reaches
// a terminal account or tank sink, applying asset_flow_meter and
// tap_opener side effects along the way and, at a restricted terminal
// tank, checking the path actually traveled against that tank's
// deposit_source_restrictor pattern.
func (ctx *SinkFlowContext) ReleaseToSink(originTank TankID, origin Sink, amount Amount) error {
	if origin.Kind == SinkSameTank {
		return fault.ErrInternalInvariant
	}

	visited := []DepositPathVisit{{Sink: origin, Tank: originTank}}
	sink := origin
	currentTank := originTank

	for hop := uint32(0); ; hop++ {
		resolved := sink.Resolved(currentTank)
		if resolved.IsTerminal() {
			return ctx.releaseTerminal(resolved, visited, amount)
		}
		if hop >= ctx.Params.MaxSinkChainLength {
			return fault.ErrMaxSinkChainExceeded
		}

		tank, err := ctx.Staging.Lookup(currentTank)
		if nil != err {
			return err
		}
		att, err := GetAttachment(&tank.Schematic, resolved.Attachment)
		if nil != err {
			return err
		}

		switch att.Kind {
		case AttachmentAssetFlowMeter:
			tank.AttachmentState(resolved.Attachment).MeteredAmount =
				tank.AttachmentState(resolved.Attachment).MeteredAmount.Add(amount)
			sink = att.AssetFlowMeter.OutputSink

		case AttachmentTapOpener:
			if nil != ctx.EnqueueTap {
				if err := ctx.EnqueueTap(currentTank, att.TapOpener.Tap, att.TapOpener.ReleaseAmount); nil != err {
					return err
				}
			}
			sink = att.TapOpener.OutputSink

		default:
			return fault.ErrInternalInvariant
		}

		visited = append(visited, DepositPathVisit{Sink: sink, Tank: currentTank})
		// the attachment we just followed lives on currentTank, and so
		// does its output sink's same_tank, if any; currentTank is
		// unchanged until the sink resolves to a different tank.
		if next := sink.Resolved(currentTank); next.Kind == SinkTank {
			currentTank = next.Tank
		}
	}
}

func (ctx *SinkFlowContext) releaseTerminal(sink Sink, visited []DepositPathVisit, amount Amount) error {
	switch sink.Kind {
	case SinkAccount:
		if nil != ctx.Authorizer {
			tank, err := ctx.Staging.Lookup(visited[0].Tank)
			asset := AssetID{}
			if nil == err {
				asset = tank.Asset
			}
			if !ctx.Authorizer.IsAuthorized(sink.Account, asset) {
				return fault.ErrNotAuthorized
			}
		}
		if nil != ctx.CreditAccount {
			tank, err := ctx.Staging.Lookup(visited[0].Tank)
			if nil != err {
				return err
			}
			return ctx.CreditAccount.CreditAccount(sink.Account, tank.Asset, amount)
		}
		return nil

	case SinkTank:
		tank, err := ctx.Staging.Lookup(sink.Tank)
		if nil != err {
			return err
		}
		if idx, found := findRestrictor(&tank.Schematic); found {
			restrictor := tank.Schematic.Attachments[idx].DepositSourceRestrictor
			if _, matched := MatchDepositPaths(restrictor.Paths, visited); !matched {
				return fault.ErrDepositPathMismatch
			}
		}
		tank.Balance = tank.Balance.Add(amount)
		ctx.Staging.Stage(tank)
		return nil

	default:
		return fault.ErrInternalInvariant
	}
}
