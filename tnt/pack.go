// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tnt

import (
	"sort"
	"time"

	"github.com/bitmark-inc/bitmarkd/account"
	"github.com/bitmark-inc/bitmarkd/fault"
	"github.com/bitmark-inc/bitmarkd/merkle"
	"github.com/bitmark-inc/bitmarkd/util"
)

// Packed is wire-format bytes: a varint tag followed by the tagged
// value's fields, in the same style as transactionrecord.Packed.
type Packed []byte

func appendUint64(buffer Packed, value uint64) Packed {
	return append(buffer, util.ToVarint64(value)...)
}

func appendBool(buffer Packed, value bool) Packed {
	if value {
		return appendUint64(buffer, 1)
	}
	return appendUint64(buffer, 0)
}

func appendBytes(buffer Packed, data []byte) Packed {
	buffer = appendUint64(buffer, uint64(len(data)))
	return append(buffer, data...)
}

func appendString(buffer Packed, s string) Packed {
	return appendBytes(buffer, []byte(s))
}

func appendAccount(buffer Packed, a *account.Account) Packed {
	if nil == a {
		return appendBytes(buffer, nil)
	}
	return appendBytes(buffer, a.Bytes())
}

func appendAssetID(buffer Packed, id AssetID) Packed {
	return append(buffer, id[:]...)
}

func appendFlowLimit(buffer Packed, limit AssetFlowLimit) Packed {
	buffer = appendBool(buffer, limit.Unlimited)
	if limit.Unlimited {
		return buffer
	}
	return appendUint64(buffer, uint64(limit.Limit))
}

// Pack serializes a Sink as tag + payload.
func (s Sink) Pack() Packed {
	buffer := appendUint64(nil, uint64(s.Kind))
	switch s.Kind {
	case SinkAccount:
		buffer = appendAccount(buffer, s.Account)
	case SinkTank:
		buffer = appendUint64(buffer, uint64(s.Tank))
	case SinkAttachment:
		buffer = appendUint64(buffer, uint64(s.Attachment))
	}
	return buffer
}

// UnpackSink reads a Sink from the front of record, returning the
// number of bytes consumed.
func UnpackSink(record []byte) (Sink, int, error) {
	kind, n := util.FromVarint64(record)
	if 0 == n {
		return Sink{}, 0, fault.ErrPackedDataTruncated
	}
	if SinkKind(kind) >= sinkKindLimit {
		return Sink{}, 0, fault.ErrUnknownTag
	}
	offset := n

	switch SinkKind(kind) {
	case SinkSameTank:
		return Sink{Kind: SinkSameTank}, offset, nil

	case SinkAccount:
		length, ln := util.FromVarint64(record[offset:])
		if 0 == ln {
			return Sink{}, 0, fault.ErrPackedDataTruncated
		}
		offset += ln
		if offset+int(length) > len(record) {
			return Sink{}, 0, fault.ErrPackedDataTruncated
		}
		a, err := account.AccountFromBytes(record[offset : offset+int(length)])
		if nil != err {
			return Sink{}, 0, err
		}
		offset += int(length)
		return Sink{Kind: SinkAccount, Account: a}, offset, nil

	case SinkTank:
		id, ln := util.FromVarint64(record[offset:])
		if 0 == ln {
			return Sink{}, 0, fault.ErrPackedDataTruncated
		}
		offset += ln
		return Sink{Kind: SinkTank, Tank: TankID(id)}, offset, nil

	case SinkAttachment:
		idx, ln := util.FromVarint64(record[offset:])
		if 0 == ln {
			return Sink{}, 0, fault.ErrPackedDataTruncated
		}
		offset += ln
		return Sink{Kind: SinkAttachment, Attachment: AttachmentIndex(idx)}, offset, nil
	}

	return Sink{}, 0, fault.ErrUnknownTag
}

// UnpackFlowLimit reads an AssetFlowLimit from the front of record.
func UnpackFlowLimit(record []byte) (AssetFlowLimit, int, error) {
	unlimitedFlag, n := util.FromVarint64(record)
	if 0 == n {
		return AssetFlowLimit{}, 0, fault.ErrPackedDataTruncated
	}
	offset := n
	if unlimitedFlag != 0 {
		return UnlimitedFlow, offset, nil
	}
	limit, ln := util.FromVarint64(record[offset:])
	if 0 == ln {
		return AssetFlowLimit{}, 0, fault.ErrPackedDataTruncated
	}
	offset += ln
	return LimitedFlow(Amount(limit)), offset, nil
}

// Pack serializes an Attachment as tag + payload.
func (a Attachment) Pack() Packed {
	buffer := appendUint64(nil, uint64(a.Kind))
	switch a.Kind {
	case AttachmentAssetFlowMeter:
		buffer = append(buffer, a.AssetFlowMeter.OutputSink.Pack()...)
		buffer = packAuthority(buffer, a.AssetFlowMeter.ResetAuthority)

	case AttachmentDepositSourceRestrictor:
		buffer = appendUint64(buffer, uint64(len(a.DepositSourceRestrictor.Paths)))
		for _, path := range a.DepositSourceRestrictor.Paths {
			buffer = appendUint64(buffer, uint64(len(path)))
			for _, step := range path {
				buffer = appendBool(buffer, step.Wildcard)
				buffer = appendBool(buffer, step.Repeatable)
				if !step.Wildcard {
					buffer = append(buffer, step.Sink.Pack()...)
				}
			}
		}

	case AttachmentTapOpener:
		buffer = appendUint64(buffer, uint64(a.TapOpener.Tap))
		buffer = appendFlowLimit(buffer, a.TapOpener.ReleaseAmount)
		buffer = append(buffer, a.TapOpener.OutputSink.Pack()...)

	case AttachmentConnectAuthority:
		buffer = packAuthority(buffer, a.ConnectAuthority.Authority)
		buffer = appendUint64(buffer, uint64(a.ConnectAuthority.Attachment))
	}
	return buffer
}

// UnpackAttachment reads an Attachment from the front of record.
func UnpackAttachment(record []byte) (Attachment, int, error) {
	kind, n := util.FromVarint64(record)
	if 0 == n {
		return Attachment{}, 0, fault.ErrPackedDataTruncated
	}
	if AttachmentKind(kind) >= attachmentKindLimit {
		return Attachment{}, 0, fault.ErrUnknownTag
	}
	offset := n

	switch AttachmentKind(kind) {
	case AttachmentAssetFlowMeter:
		sink, ln, err := UnpackSink(record[offset:])
		if nil != err {
			return Attachment{}, 0, err
		}
		offset += ln
		reset, rn, err := unpackAuthority(record[offset:])
		if nil != err {
			return Attachment{}, 0, err
		}
		offset += rn
		return Attachment{Kind: AttachmentAssetFlowMeter, AssetFlowMeter: &AssetFlowMeter{OutputSink: sink, ResetAuthority: reset}}, offset, nil

	case AttachmentDepositSourceRestrictor:
		pathCount, ln := util.FromVarint64(record[offset:])
		if 0 == ln {
			return Attachment{}, 0, fault.ErrPackedDataTruncated
		}
		offset += ln
		paths := make([][]DepositPathStep, 0, pathCount)
		for p := uint64(0); p < pathCount; p++ {
			count, ln := util.FromVarint64(record[offset:])
			if 0 == ln {
				return Attachment{}, 0, fault.ErrPackedDataTruncated
			}
			offset += ln
			path := make([]DepositPathStep, 0, count)
			for i := uint64(0); i < count; i++ {
				wildcard, ln := util.FromVarint64(record[offset:])
				if 0 == ln {
					return Attachment{}, 0, fault.ErrPackedDataTruncated
				}
				offset += ln
				repeatable, ln := util.FromVarint64(record[offset:])
				if 0 == ln {
					return Attachment{}, 0, fault.ErrPackedDataTruncated
				}
				offset += ln
				step := DepositPathStep{Wildcard: wildcard != 0, Repeatable: repeatable != 0}
				if !step.Wildcard {
					sink, sn, err := UnpackSink(record[offset:])
					if nil != err {
						return Attachment{}, 0, err
					}
					offset += sn
					step.Sink = sink
				}
				path = append(path, step)
			}
			paths = append(paths, path)
		}
		return Attachment{Kind: AttachmentDepositSourceRestrictor, DepositSourceRestrictor: &DepositSourceRestrictor{Paths: paths}}, offset, nil

	case AttachmentTapOpener:
		tapIdx, ln := util.FromVarint64(record[offset:])
		if 0 == ln {
			return Attachment{}, 0, fault.ErrPackedDataTruncated
		}
		offset += ln
		release, rn, err := UnpackFlowLimit(record[offset:])
		if nil != err {
			return Attachment{}, 0, err
		}
		offset += rn
		sink, sn, err := UnpackSink(record[offset:])
		if nil != err {
			return Attachment{}, 0, err
		}
		offset += sn
		return Attachment{Kind: AttachmentTapOpener, TapOpener: &TapOpener{
			Tap:           TapIndex(tapIdx),
			ReleaseAmount: release,
			OutputSink:    sink,
		}}, offset, nil

	case AttachmentConnectAuthority:
		authority, an, err := unpackAuthority(record[offset:])
		if nil != err {
			return Attachment{}, 0, err
		}
		offset += an
		target, tn := util.FromVarint64(record[offset:])
		if 0 == tn {
			return Attachment{}, 0, fault.ErrPackedDataTruncated
		}
		offset += tn
		return Attachment{Kind: AttachmentConnectAuthority, ConnectAuthority: &ConnectAuthority{
			Authority:  authority,
			Attachment: AttachmentIndex(target),
		}}, offset, nil
	}

	return Attachment{}, 0, fault.ErrUnknownTag
}

// packAuthority/unpackAuthority serialize an account.Authority as a
// count-prefixed list of (account, weight) pairs followed by the
// threshold.
func packAuthority(buffer Packed, a account.Authority) Packed {
	buffer = appendUint64(buffer, uint64(len(a.Weights)))
	for base58, weight := range a.Weights {
		buffer = appendString(buffer, base58)
		buffer = appendUint64(buffer, uint64(weight))
	}
	return appendUint64(buffer, uint64(a.Threshold))
}

func appendTime(buffer Packed, t time.Time) Packed {
	if t.IsZero() {
		return appendUint64(buffer, 0)
	}
	return appendUint64(buffer, uint64(t.Unix())+1)
}

func unpackTime(record []byte) (time.Time, int, error) {
	v, n := util.FromVarint64(record)
	if 0 == n {
		return time.Time{}, 0, fault.ErrPackedDataTruncated
	}
	if 0 == v {
		return time.Time{}, n, nil
	}
	return time.Unix(int64(v-1), 0).UTC(), n, nil
}

// Pack serializes a TapRequirement as tag + payload.
func (r TapRequirement) Pack() Packed {
	buffer := appendUint64(nil, uint64(r.Kind))
	switch r.Kind {
	case RequirementImmediateFlowLimit:
		buffer = appendFlowLimit(buffer, r.ImmediateFlowLimit.Limit)

	case RequirementCumulativeFlowLimit:
		buffer = appendFlowLimit(buffer, r.CumulativeFlowLimit.Limit)

	case RequirementPeriodicFlowLimit:
		buffer = appendFlowLimit(buffer, r.PeriodicFlowLimit.Limit)
		buffer = appendUint64(buffer, uint64(r.PeriodicFlowLimit.PeriodDurationSec))

	case RequirementTimeLock:
		buffer = appendUint64(buffer, uint64(len(r.TimeLock.Toggles)))
		for _, toggle := range r.TimeLock.Toggles {
			buffer = appendTime(buffer, toggle)
		}

	case RequirementMinimumTankLevel:
		buffer = appendUint64(buffer, uint64(r.MinimumTankLevel.MinimumLevel))

	case RequirementReview:
		buffer = packAuthority(buffer, r.Review.Reviewer)

	case RequirementDocumentation:
		buffer = appendString(buffer, r.Documentation.RequiredText)

	case RequirementDelay:
		buffer = appendUint64(buffer, uint64(r.Delay.Delay))
		buffer = packAuthority(buffer, r.Delay.VetoAuthority)

	case RequirementHashLock:
		buffer = appendUint64(buffer, uint64(r.HashLock.Algorithm))
		buffer = appendBytes(buffer, r.HashLock.Hash)

	case RequirementTicket:
		buffer = appendAccount(buffer, r.Ticket.Signer)

	case RequirementExchange:
		buffer = appendUint64(buffer, uint64(r.Exchange.MeterIndex))
		buffer = appendUint64(buffer, uint64(r.Exchange.TickAmount))
		buffer = appendFlowLimit(buffer, r.Exchange.ReleasePerTick)
	}
	return buffer
}

// UnpackTapRequirement reads a TapRequirement from the front of record.
func UnpackTapRequirement(record []byte) (TapRequirement, int, error) {
	kind, n := util.FromVarint64(record)
	if 0 == n {
		return TapRequirement{}, 0, fault.ErrPackedDataTruncated
	}
	if TapRequirementKind(kind) >= requirementKindLimit {
		return TapRequirement{}, 0, fault.ErrUnknownTag
	}
	offset := n

	switch TapRequirementKind(kind) {
	case RequirementImmediateFlowLimit:
		limit, ln, err := UnpackFlowLimit(record[offset:])
		if nil != err {
			return TapRequirement{}, 0, err
		}
		offset += ln
		return TapRequirement{Kind: RequirementImmediateFlowLimit, ImmediateFlowLimit: &ImmediateFlowLimit{Limit: limit}}, offset, nil

	case RequirementCumulativeFlowLimit:
		limit, ln, err := UnpackFlowLimit(record[offset:])
		if nil != err {
			return TapRequirement{}, 0, err
		}
		offset += ln
		return TapRequirement{Kind: RequirementCumulativeFlowLimit, CumulativeFlowLimit: &CumulativeFlowLimit{Limit: limit}}, offset, nil

	case RequirementPeriodicFlowLimit:
		limit, ln, err := UnpackFlowLimit(record[offset:])
		if nil != err {
			return TapRequirement{}, 0, err
		}
		offset += ln
		period, pn := util.FromVarint64(record[offset:])
		if 0 == pn {
			return TapRequirement{}, 0, fault.ErrPackedDataTruncated
		}
		offset += pn
		return TapRequirement{Kind: RequirementPeriodicFlowLimit, PeriodicFlowLimit: &PeriodicFlowLimit{
			Limit:             limit,
			PeriodDurationSec: uint32(period),
		}}, offset, nil

	case RequirementTimeLock:
		count, cn := util.FromVarint64(record[offset:])
		if 0 == cn {
			return TapRequirement{}, 0, fault.ErrPackedDataTruncated
		}
		offset += cn
		toggles := make([]time.Time, 0, count)
		for i := uint64(0); i < count; i++ {
			toggle, tn, err := unpackTime(record[offset:])
			if nil != err {
				return TapRequirement{}, 0, err
			}
			offset += tn
			toggles = append(toggles, toggle)
		}
		return TapRequirement{Kind: RequirementTimeLock, TimeLock: &TimeLock{Toggles: toggles}}, offset, nil

	case RequirementMinimumTankLevel:
		min, mn := util.FromVarint64(record[offset:])
		if 0 == mn {
			return TapRequirement{}, 0, fault.ErrPackedDataTruncated
		}
		offset += mn
		return TapRequirement{Kind: RequirementMinimumTankLevel, MinimumTankLevel: &MinimumTankLevel{MinimumLevel: Amount(min)}}, offset, nil

	case RequirementReview:
		authority, an, err := unpackAuthority(record[offset:])
		if nil != err {
			return TapRequirement{}, 0, err
		}
		offset += an
		return TapRequirement{Kind: RequirementReview, Review: &ReviewRequirement{Reviewer: authority}}, offset, nil

	case RequirementDocumentation:
		length, ln := util.FromVarint64(record[offset:])
		if 0 == ln {
			return TapRequirement{}, 0, fault.ErrPackedDataTruncated
		}
		offset += ln
		if offset+int(length) > len(record) {
			return TapRequirement{}, 0, fault.ErrPackedDataTruncated
		}
		text := string(record[offset : offset+int(length)])
		offset += int(length)
		return TapRequirement{Kind: RequirementDocumentation, Documentation: &DocumentationRequirement{RequiredText: text}}, offset, nil

	case RequirementDelay:
		delay, dn := util.FromVarint64(record[offset:])
		if 0 == dn {
			return TapRequirement{}, 0, fault.ErrPackedDataTruncated
		}
		offset += dn
		authority, an, err := unpackAuthority(record[offset:])
		if nil != err {
			return TapRequirement{}, 0, err
		}
		offset += an
		return TapRequirement{Kind: RequirementDelay, Delay: &DelayRequirement{
			Delay:         time.Duration(delay),
			VetoAuthority: authority,
		}}, offset, nil

	case RequirementHashLock:
		algo, an := util.FromVarint64(record[offset:])
		if 0 == an {
			return TapRequirement{}, 0, fault.ErrPackedDataTruncated
		}
		offset += an
		if !merkle.ValidHashAlgorithm(merkle.HashAlgorithm(algo)) {
			return TapRequirement{}, 0, fault.ErrUnknownTag
		}
		length, ln := util.FromVarint64(record[offset:])
		if 0 == ln {
			return TapRequirement{}, 0, fault.ErrPackedDataTruncated
		}
		offset += ln
		if offset+int(length) > len(record) {
			return TapRequirement{}, 0, fault.ErrPackedDataTruncated
		}
		hash := append([]byte(nil), record[offset:offset+int(length)]...)
		offset += int(length)
		return TapRequirement{Kind: RequirementHashLock, HashLock: &HashLockRequirement{
			Algorithm: merkle.HashAlgorithm(algo),
			Hash:      hash,
		}}, offset, nil

	case RequirementTicket:
		length, ln := util.FromVarint64(record[offset:])
		if 0 == ln {
			return TapRequirement{}, 0, fault.ErrPackedDataTruncated
		}
		offset += ln
		if offset+int(length) > len(record) {
			return TapRequirement{}, 0, fault.ErrPackedDataTruncated
		}
		var signer *account.Account
		if length > 0 {
			a, err := account.AccountFromBytes(record[offset : offset+int(length)])
			if nil != err {
				return TapRequirement{}, 0, err
			}
			signer = a
		}
		offset += int(length)
		return TapRequirement{Kind: RequirementTicket, Ticket: &TicketRequirement{Signer: signer}}, offset, nil

	case RequirementExchange:
		meterIdx, mn := util.FromVarint64(record[offset:])
		if 0 == mn {
			return TapRequirement{}, 0, fault.ErrPackedDataTruncated
		}
		offset += mn
		tick, tn := util.FromVarint64(record[offset:])
		if 0 == tn {
			return TapRequirement{}, 0, fault.ErrPackedDataTruncated
		}
		offset += tn
		release, rn, err := UnpackFlowLimit(record[offset:])
		if nil != err {
			return TapRequirement{}, 0, err
		}
		offset += rn
		return TapRequirement{Kind: RequirementExchange, Exchange: &ExchangeRequirement{
			MeterIndex:     AttachmentIndex(meterIdx),
			TickAmount:     Amount(tick),
			ReleasePerTick: release,
		}}, offset, nil
	}

	return TapRequirement{}, 0, fault.ErrUnknownTag
}

// Pack serializes a Tap: its open and connect authorities, the
// connected flag, requirements, output sink and the destructor flag.
func (t Tap) Pack() Packed {
	buffer := packAuthority(nil, t.OpenAuthority)
	buffer = packAuthority(buffer, t.ConnectAuthority)
	buffer = appendBool(buffer, t.Connected)
	buffer = appendUint64(buffer, uint64(len(t.Requirements)))
	for _, r := range t.Requirements {
		buffer = append(buffer, r.Pack()...)
	}
	buffer = append(buffer, t.OutputSink.Pack()...)
	buffer = appendBool(buffer, t.DestructorTap)
	return buffer
}

// UnpackTap reads a Tap from the front of record.
func UnpackTap(record []byte) (Tap, int, error) {
	authority, offset, err := unpackAuthority(record)
	if nil != err {
		return Tap{}, 0, err
	}
	connectAuthority, can, err := unpackAuthority(record[offset:])
	if nil != err {
		return Tap{}, 0, err
	}
	offset += can
	connected, cdn := util.FromVarint64(record[offset:])
	if 0 == cdn {
		return Tap{}, 0, fault.ErrPackedDataTruncated
	}
	offset += cdn
	count, cn := util.FromVarint64(record[offset:])
	if 0 == cn {
		return Tap{}, 0, fault.ErrPackedDataTruncated
	}
	offset += cn
	requirements := make([]TapRequirement, 0, count)
	for i := uint64(0); i < count; i++ {
		r, rn, err := UnpackTapRequirement(record[offset:])
		if nil != err {
			return Tap{}, 0, err
		}
		offset += rn
		requirements = append(requirements, r)
	}
	sink, sn, err := UnpackSink(record[offset:])
	if nil != err {
		return Tap{}, 0, err
	}
	offset += sn
	destructor, dn := util.FromVarint64(record[offset:])
	if 0 == dn {
		return Tap{}, 0, fault.ErrPackedDataTruncated
	}
	offset += dn
	return Tap{
		OpenAuthority:    authority,
		ConnectAuthority: connectAuthority,
		Connected:        connected != 0,
		Requirements:     requirements,
		OutputSink:       sink,
		DestructorTap:    destructor != 0,
	}, offset, nil
}

// Pack serializes a TankSchematic in full: asset id, the attachment and
// tap id counters, every attachment and tap keyed by its id (in
// ascending id order, for a deterministic encoding), and the emergency
// tap. Ids are part of the wire format so a tombstoned id - one whose
// entry tank_update removed - leaves a gap the decoder preserves rather
// than renumbers.
func (s TankSchematic) Pack() Packed {
	buffer := appendAssetID(nil, s.Asset)
	buffer = appendUint64(buffer, uint64(s.AttachmentCounter))
	buffer = appendUint64(buffer, uint64(s.TapCounter))

	attIDs := make([]AttachmentIndex, 0, len(s.Attachments))
	for id := range s.Attachments {
		attIDs = append(attIDs, id)
	}
	sort.Slice(attIDs, func(i, j int) bool { return attIDs[i] < attIDs[j] })
	buffer = appendUint64(buffer, uint64(len(attIDs)))
	for _, id := range attIDs {
		buffer = appendUint64(buffer, uint64(id))
		buffer = append(buffer, s.Attachments[id].Pack()...)
	}

	buffer = append(buffer, s.EmergencyTap.Pack()...)

	tapIDs := make([]TapIndex, 0, len(s.Taps))
	for id := range s.Taps {
		tapIDs = append(tapIDs, id)
	}
	sort.Slice(tapIDs, func(i, j int) bool { return tapIDs[i] < tapIDs[j] })
	buffer = appendUint64(buffer, uint64(len(tapIDs)))
	for _, id := range tapIDs {
		buffer = appendUint64(buffer, uint64(id))
		buffer = append(buffer, s.Taps[id].Pack()...)
	}
	return buffer
}

// UnpackTankSchematic reads a TankSchematic from the front of record.
func UnpackTankSchematic(record []byte) (TankSchematic, int, error) {
	if len(record) < 32 {
		return TankSchematic{}, 0, fault.ErrPackedDataTruncated
	}
	var asset AssetID
	copy(asset[:], record[:32])
	offset := 32

	attCounter, an := util.FromVarint64(record[offset:])
	if 0 == an {
		return TankSchematic{}, 0, fault.ErrPackedDataTruncated
	}
	offset += an
	tapCounter, tcn := util.FromVarint64(record[offset:])
	if 0 == tcn {
		return TankSchematic{}, 0, fault.ErrPackedDataTruncated
	}
	offset += tcn

	count, cn := util.FromVarint64(record[offset:])
	if 0 == cn {
		return TankSchematic{}, 0, fault.ErrPackedDataTruncated
	}
	offset += cn
	attachments := make(map[AttachmentIndex]*Attachment, count)
	for i := uint64(0); i < count; i++ {
		id, idn := util.FromVarint64(record[offset:])
		if 0 == idn {
			return TankSchematic{}, 0, fault.ErrPackedDataTruncated
		}
		offset += idn
		a, an, err := UnpackAttachment(record[offset:])
		if nil != err {
			return TankSchematic{}, 0, err
		}
		offset += an
		attachments[AttachmentIndex(id)] = &a
	}

	emergency, en, err := UnpackTap(record[offset:])
	if nil != err {
		return TankSchematic{}, 0, err
	}
	offset += en

	tapCount, tn := util.FromVarint64(record[offset:])
	if 0 == tn {
		return TankSchematic{}, 0, fault.ErrPackedDataTruncated
	}
	offset += tn
	taps := make(map[TapIndex]*Tap, tapCount)
	for i := uint64(0); i < tapCount; i++ {
		id, idn := util.FromVarint64(record[offset:])
		if 0 == idn {
			return TankSchematic{}, 0, fault.ErrPackedDataTruncated
		}
		offset += idn
		t, ln, err := UnpackTap(record[offset:])
		if nil != err {
			return TankSchematic{}, 0, err
		}
		offset += ln
		taps[TapIndex(id)] = &t
	}

	return TankSchematic{
		Asset:             asset,
		Attachments:       attachments,
		AttachmentCounter: AttachmentIndex(attCounter),
		EmergencyTap:      emergency,
		Taps:              taps,
		TapCounter:        TapIndex(tapCounter),
	}, offset, nil
}

func unpackAuthority(record []byte) (account.Authority, int, error) {
	count, n := util.FromVarint64(record)
	if 0 == n {
		return account.Authority{}, 0, fault.ErrPackedDataTruncated
	}
	offset := n
	weights := make(map[string]uint32, count)
	for i := uint64(0); i < count; i++ {
		length, ln := util.FromVarint64(record[offset:])
		if 0 == ln {
			return account.Authority{}, 0, fault.ErrPackedDataTruncated
		}
		offset += ln
		if offset+int(length) > len(record) {
			return account.Authority{}, 0, fault.ErrPackedDataTruncated
		}
		base58 := string(record[offset : offset+int(length)])
		offset += int(length)
		weight, wn := util.FromVarint64(record[offset:])
		if 0 == wn {
			return account.Authority{}, 0, fault.ErrPackedDataTruncated
		}
		offset += wn
		weights[base58] = uint32(weight)
	}
	threshold, tn := util.FromVarint64(record[offset:])
	if 0 == tn {
		return account.Authority{}, 0, fault.ErrPackedDataTruncated
	}
	offset += tn
	return account.Authority{Weights: weights, Threshold: uint32(threshold)}, offset, nil
}
