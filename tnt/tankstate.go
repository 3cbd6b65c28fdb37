// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tnt

import (
	"github.com/bitmark-inc/bitmarkd/fault"
	"github.com/bitmark-inc/bitmarkd/util"
)

// PackTank serializes a full runtime Tank - schematic plus balance and
// mutable per-accessory state - for a TankStore implementation to
// persist. This is a storage encoding, not the on-the-wire schematic
// format in pack.go: a host is free to store tanks however it likes,
// but a reference implementation needs one concrete choice.
func PackTank(t *Tank) Packed {
	buffer := appendUint64(nil, uint64(t.ID))
	buffer = appendAssetID(buffer, t.Asset)
	buffer = append(buffer, t.Schematic.Pack()...)
	buffer = appendUint64(buffer, uint64(t.Balance))
	buffer = appendUint64(buffer, uint64(t.DepositReserve))
	buffer = appendTime(buffer, t.CreationTime)

	buffer = appendUint64(buffer, uint64(len(t.AttachmentStates)))
	for idx, state := range t.AttachmentStates {
		buffer = appendUint64(buffer, uint64(idx))
		buffer = appendUint64(buffer, uint64(state.MeteredAmount))
	}

	buffer = appendUint64(buffer, uint64(len(t.RequirementStates)))
	for addr, state := range t.RequirementStates {
		buffer = appendUint64(buffer, uint64(addr.Tap))
		buffer = appendUint64(buffer, uint64(addr.Requirement))
		buffer = appendRequirementState(buffer, state)
	}

	return buffer
}

func appendRequirementState(buffer Packed, state *TapRequirementState) Packed {
	buffer = appendUint64(buffer, uint64(state.AmountReleased))
	buffer = appendUint64(buffer, state.PeriodNum)
	buffer = appendUint64(buffer, state.NextRequestID)

	buffer = appendUint64(buffer, uint64(len(state.Requests)))
	for _, r := range state.Requests {
		buffer = appendUint64(buffer, r.ID)
		buffer = appendFlowLimit(buffer, r.Amount)
		buffer = appendTime(buffer, r.CreatedAt)
		buffer = appendBool(buffer, r.Approved)
	}

	buffer = appendBytes(buffer, state.RevealedPreimage)

	buffer = appendUint64(buffer, uint64(len(state.UsedTickets)))
	for ticket, used := range state.UsedTickets {
		if !used {
			continue
		}
		buffer = appendUint64(buffer, ticket)
	}

	return buffer
}

// UnpackTankState reads a Tank as persisted by PackTank.
func UnpackTankState(record []byte) (*Tank, error) {
	id, n := util.FromVarint64(record)
	if 0 == n {
		return nil, fault.ErrPackedDataTruncated
	}
	offset := n

	if len(record) < offset+32 {
		return nil, fault.ErrPackedDataTruncated
	}
	var asset AssetID
	copy(asset[:], record[offset:offset+32])
	offset += 32

	schematic, sn, err := UnpackTankSchematic(record[offset:])
	if nil != err {
		return nil, err
	}
	offset += sn

	balance, bn := util.FromVarint64(record[offset:])
	if 0 == bn {
		return nil, fault.ErrPackedDataTruncated
	}
	offset += bn

	depositReserve, drn := util.FromVarint64(record[offset:])
	if 0 == drn {
		return nil, fault.ErrPackedDataTruncated
	}
	offset += drn

	creationTime, ctn, err := unpackTime(record[offset:])
	if nil != err {
		return nil, err
	}
	offset += ctn

	tank := &Tank{
		ID:             TankID(id),
		Asset:          asset,
		Schematic:      schematic,
		Balance:        Amount(balance),
		DepositReserve: Amount(depositReserve),
		CreationTime:   creationTime,
	}

	attachmentCount, an := util.FromVarint64(record[offset:])
	if 0 == an {
		return nil, fault.ErrPackedDataTruncated
	}
	offset += an
	if attachmentCount > 0 {
		tank.AttachmentStates = make(map[AttachmentIndex]*TankAttachmentState, attachmentCount)
	}
	for i := uint64(0); i < attachmentCount; i++ {
		idx, idn := util.FromVarint64(record[offset:])
		if 0 == idn {
			return nil, fault.ErrPackedDataTruncated
		}
		offset += idn
		metered, mn := util.FromVarint64(record[offset:])
		if 0 == mn {
			return nil, fault.ErrPackedDataTruncated
		}
		offset += mn
		tank.AttachmentStates[AttachmentIndex(idx)] = &TankAttachmentState{MeteredAmount: Amount(metered)}
	}

	requirementCount, rn := util.FromVarint64(record[offset:])
	if 0 == rn {
		return nil, fault.ErrPackedDataTruncated
	}
	offset += rn
	if requirementCount > 0 {
		tank.RequirementStates = make(map[RequirementAddress]*TapRequirementState, requirementCount)
	}
	for i := uint64(0); i < requirementCount; i++ {
		tapIdx, tn := util.FromVarint64(record[offset:])
		if 0 == tn {
			return nil, fault.ErrPackedDataTruncated
		}
		offset += tn
		reqIdx, qn := util.FromVarint64(record[offset:])
		if 0 == qn {
			return nil, fault.ErrPackedDataTruncated
		}
		offset += qn
		state, stn, err := unpackRequirementState(record[offset:])
		if nil != err {
			return nil, err
		}
		offset += stn
		addr := RequirementAddress{Tap: TapIndex(tapIdx), Requirement: RequirementIndex(reqIdx)}
		tank.RequirementStates[addr] = state
	}

	return tank, nil
}

func unpackRequirementState(record []byte) (*TapRequirementState, int, error) {
	released, n := util.FromVarint64(record)
	if 0 == n {
		return nil, 0, fault.ErrPackedDataTruncated
	}
	offset := n

	periodNum, pn := util.FromVarint64(record[offset:])
	if 0 == pn {
		return nil, 0, fault.ErrPackedDataTruncated
	}
	offset += pn

	nextRequestID, cn := util.FromVarint64(record[offset:])
	if 0 == cn {
		return nil, 0, fault.ErrPackedDataTruncated
	}
	offset += cn

	requestCount, rn := util.FromVarint64(record[offset:])
	if 0 == rn {
		return nil, 0, fault.ErrPackedDataTruncated
	}
	offset += rn
	requests := make([]PendingRequest, 0, requestCount)
	for i := uint64(0); i < requestCount; i++ {
		id, idn := util.FromVarint64(record[offset:])
		if 0 == idn {
			return nil, 0, fault.ErrPackedDataTruncated
		}
		offset += idn
		amount, an, err := UnpackFlowLimit(record[offset:])
		if nil != err {
			return nil, 0, err
		}
		offset += an
		requestCreatedAt, rcn, err := unpackTime(record[offset:])
		if nil != err {
			return nil, 0, err
		}
		offset += rcn
		approved, apn := util.FromVarint64(record[offset:])
		if 0 == apn {
			return nil, 0, fault.ErrPackedDataTruncated
		}
		offset += apn
		requests = append(requests, PendingRequest{
			ID:        id,
			Amount:    amount,
			CreatedAt: requestCreatedAt,
			Approved:  approved != 0,
		})
	}

	preimageLen, pln := util.FromVarint64(record[offset:])
	if 0 == pln {
		return nil, 0, fault.ErrPackedDataTruncated
	}
	offset += pln
	if offset+int(preimageLen) > len(record) {
		return nil, 0, fault.ErrPackedDataTruncated
	}
	var preimage []byte
	if preimageLen > 0 {
		preimage = append([]byte(nil), record[offset:offset+int(preimageLen)]...)
	}
	offset += int(preimageLen)

	ticketCount, tcn := util.FromVarint64(record[offset:])
	if 0 == tcn {
		return nil, 0, fault.ErrPackedDataTruncated
	}
	offset += tcn
	var usedTickets map[uint64]bool
	if ticketCount > 0 {
		usedTickets = make(map[uint64]bool, ticketCount)
	}
	for i := uint64(0); i < ticketCount; i++ {
		ticket, tn := util.FromVarint64(record[offset:])
		if 0 == tn {
			return nil, 0, fault.ErrPackedDataTruncated
		}
		offset += tn
		usedTickets[ticket] = true
	}

	return &TapRequirementState{
		AmountReleased:   Amount(released),
		PeriodNum:        periodNum,
		NextRequestID:    nextRequestID,
		Requests:         requests,
		RevealedPreimage: preimage,
		UsedTickets:      usedTickets,
	}, offset, nil
}
