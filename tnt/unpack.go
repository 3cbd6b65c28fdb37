// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tnt

import (
	"github.com/bitmark-inc/bitmarkd/fault"
	"github.com/bitmark-inc/bitmarkd/util"
)

// Pack serializes an AccessoryAddress.
func (a AccessoryAddress) Pack() Packed {
	buffer := appendBool(nil, a.IsAttachment)
	if a.IsAttachment {
		return appendUint64(buffer, uint64(a.Attachment))
	}
	buffer = appendUint64(buffer, uint64(a.Requirement.Tap))
	return appendUint64(buffer, uint64(a.Requirement.Requirement))
}

// UnpackAccessoryAddress reads an AccessoryAddress from the front of
// record.
func UnpackAccessoryAddress(record []byte) (AccessoryAddress, int, error) {
	isAttachment, n := util.FromVarint64(record)
	if 0 == n {
		return AccessoryAddress{}, 0, fault.ErrPackedDataTruncated
	}
	offset := n
	if isAttachment != 0 {
		idx, ln := util.FromVarint64(record[offset:])
		if 0 == ln {
			return AccessoryAddress{}, 0, fault.ErrPackedDataTruncated
		}
		offset += ln
		return AttachmentAccessory(AttachmentIndex(idx)), offset, nil
	}
	tap, tn := util.FromVarint64(record[offset:])
	if 0 == tn {
		return AccessoryAddress{}, 0, fault.ErrPackedDataTruncated
	}
	offset += tn
	req, rn := util.FromVarint64(record[offset:])
	if 0 == rn {
		return AccessoryAddress{}, 0, fault.ErrPackedDataTruncated
	}
	offset += rn
	return RequirementAccessory(RequirementAddress{Tap: TapIndex(tap), Requirement: RequirementIndex(req)}), offset, nil
}

// Pack serializes a Query as tag + payload.
func (q Query) Pack() Packed {
	buffer := appendUint64(nil, uint64(q.Kind))
	switch q.Kind {
	case QueryResetMeter, QueryResetExchangeAndMeter:
		// no payload

	case QueryReconnectAttachment:
		buffer = append(buffer, q.ReconnectAttachment.NewOutputSink.Pack()...)

	case QueryCreateRequestForReview:
		buffer = appendFlowLimit(buffer, q.CreateRequestForReview.Amount)

	case QueryReviewRequestToOpen:
		buffer = appendUint64(buffer, q.ReviewRequestToOpen.RequestID)

	case QueryCancelRequestForReview:
		buffer = appendUint64(buffer, q.CancelRequestForReview.RequestID)

	case QueryConsumeApprovedRequestToOpen:
		buffer = appendUint64(buffer, q.ConsumeApprovedRequestToOpen.RequestID)

	case QueryDocumentationString:
		buffer = appendString(buffer, q.DocumentationString.Text)

	case QueryCreateRequestForDelay:
		buffer = appendFlowLimit(buffer, q.CreateRequestForDelay.Amount)

	case QueryVetoRequestInDelay:
		buffer = appendUint64(buffer, q.VetoRequestInDelay.RequestID)

	case QueryCancelRequestInDelay:
		buffer = appendUint64(buffer, q.CancelRequestInDelay.RequestID)

	case QueryConsumeMaturedRequestToOpen:
		buffer = appendUint64(buffer, q.ConsumeMaturedRequestToOpen.RequestID)

	case QueryRevealHashPreimage:
		buffer = appendBytes(buffer, q.RevealHashPreimage.Preimage)

	case QueryRedeemTicketToOpen:
		buffer = appendUint64(buffer, uint64(q.RedeemTicketToOpen.MaxWithdrawal))
		buffer = appendUint64(buffer, q.RedeemTicketToOpen.TicketNumber)
		buffer = appendBytes(buffer, q.RedeemTicketToOpen.Signature)
	}
	return buffer
}

// UnpackQuery reads a Query from the front of record.
func UnpackQuery(record []byte) (Query, int, error) {
	kind, n := util.FromVarint64(record)
	if 0 == n {
		return Query{}, 0, fault.ErrPackedDataTruncated
	}
	if QueryKind(kind) >= queryKindLimit {
		return Query{}, 0, fault.ErrUnknownTag
	}
	offset := n

	switch QueryKind(kind) {
	case QueryResetMeter:
		return Query{Kind: QueryResetMeter, ResetMeter: &ResetMeter{}}, offset, nil

	case QueryResetExchangeAndMeter:
		return Query{Kind: QueryResetExchangeAndMeter, ResetExchangeAndMeter: &ResetExchangeAndMeter{}}, offset, nil

	case QueryReconnectAttachment:
		sink, sn, err := UnpackSink(record[offset:])
		if nil != err {
			return Query{}, 0, err
		}
		offset += sn
		return Query{Kind: QueryReconnectAttachment, ReconnectAttachment: &ReconnectAttachment{NewOutputSink: sink}}, offset, nil

	case QueryCreateRequestForReview:
		limit, ln, err := UnpackFlowLimit(record[offset:])
		if nil != err {
			return Query{}, 0, err
		}
		offset += ln
		return Query{Kind: QueryCreateRequestForReview, CreateRequestForReview: &CreateRequestForReview{Amount: limit}}, offset, nil

	case QueryReviewRequestToOpen:
		id, idn, err := unpackRequestID(record[offset:])
		if nil != err {
			return Query{}, 0, err
		}
		offset += idn
		return Query{Kind: QueryReviewRequestToOpen, ReviewRequestToOpen: &ReviewRequestToOpen{RequestID: id}}, offset, nil

	case QueryCancelRequestForReview:
		id, idn, err := unpackRequestID(record[offset:])
		if nil != err {
			return Query{}, 0, err
		}
		offset += idn
		return Query{Kind: QueryCancelRequestForReview, CancelRequestForReview: &CancelRequestForReview{RequestID: id}}, offset, nil

	case QueryConsumeApprovedRequestToOpen:
		id, idn, err := unpackRequestID(record[offset:])
		if nil != err {
			return Query{}, 0, err
		}
		offset += idn
		return Query{Kind: QueryConsumeApprovedRequestToOpen, ConsumeApprovedRequestToOpen: &ConsumeApprovedRequestToOpen{RequestID: id}}, offset, nil

	case QueryDocumentationString:
		length, ln := util.FromVarint64(record[offset:])
		if 0 == ln {
			return Query{}, 0, fault.ErrPackedDataTruncated
		}
		offset += ln
		if offset+int(length) > len(record) {
			return Query{}, 0, fault.ErrPackedDataTruncated
		}
		text := string(record[offset : offset+int(length)])
		offset += int(length)
		return Query{Kind: QueryDocumentationString, DocumentationString: &DocumentationString{Text: text}}, offset, nil

	case QueryCreateRequestForDelay:
		limit, ln, err := UnpackFlowLimit(record[offset:])
		if nil != err {
			return Query{}, 0, err
		}
		offset += ln
		return Query{Kind: QueryCreateRequestForDelay, CreateRequestForDelay: &CreateRequestForDelay{Amount: limit}}, offset, nil

	case QueryVetoRequestInDelay:
		id, idn, err := unpackRequestID(record[offset:])
		if nil != err {
			return Query{}, 0, err
		}
		offset += idn
		return Query{Kind: QueryVetoRequestInDelay, VetoRequestInDelay: &VetoRequestInDelay{RequestID: id}}, offset, nil

	case QueryCancelRequestInDelay:
		id, idn, err := unpackRequestID(record[offset:])
		if nil != err {
			return Query{}, 0, err
		}
		offset += idn
		return Query{Kind: QueryCancelRequestInDelay, CancelRequestInDelay: &CancelRequestInDelay{RequestID: id}}, offset, nil

	case QueryConsumeMaturedRequestToOpen:
		id, idn, err := unpackRequestID(record[offset:])
		if nil != err {
			return Query{}, 0, err
		}
		offset += idn
		return Query{Kind: QueryConsumeMaturedRequestToOpen, ConsumeMaturedRequestToOpen: &ConsumeMaturedRequestToOpen{RequestID: id}}, offset, nil

	case QueryRevealHashPreimage:
		length, ln := util.FromVarint64(record[offset:])
		if 0 == ln {
			return Query{}, 0, fault.ErrPackedDataTruncated
		}
		offset += ln
		if offset+int(length) > len(record) {
			return Query{}, 0, fault.ErrPackedDataTruncated
		}
		preimage := append([]byte(nil), record[offset:offset+int(length)]...)
		offset += int(length)
		return Query{Kind: QueryRevealHashPreimage, RevealHashPreimage: &RevealHashPreimage{Preimage: preimage}}, offset, nil

	case QueryRedeemTicketToOpen:
		maxWithdrawal, mn := util.FromVarint64(record[offset:])
		if 0 == mn {
			return Query{}, 0, fault.ErrPackedDataTruncated
		}
		offset += mn
		ticketNumber, tn := util.FromVarint64(record[offset:])
		if 0 == tn {
			return Query{}, 0, fault.ErrPackedDataTruncated
		}
		offset += tn
		length, ln := util.FromVarint64(record[offset:])
		if 0 == ln {
			return Query{}, 0, fault.ErrPackedDataTruncated
		}
		offset += ln
		if offset+int(length) > len(record) {
			return Query{}, 0, fault.ErrPackedDataTruncated
		}
		signature := append([]byte(nil), record[offset:offset+int(length)]...)
		offset += int(length)
		return Query{Kind: QueryRedeemTicketToOpen, RedeemTicketToOpen: &RedeemTicketToOpen{
			MaxWithdrawal: Amount(maxWithdrawal),
			TicketNumber:  ticketNumber,
			Signature:     signature,
		}}, offset, nil
	}

	return Query{}, 0, fault.ErrUnknownTag
}

func unpackRequestID(record []byte) (uint64, int, error) {
	id, n := util.FromVarint64(record)
	if 0 == n {
		return 0, 0, fault.ErrPackedDataTruncated
	}
	return id, n, nil
}

// Pack serializes a TargetedQuery: its address then its query.
func (tq TargetedQuery) Pack() Packed {
	buffer := tq.Address.Pack()
	return append(buffer, tq.Query.Pack()...)
}

// UnpackTargetedQuery reads a TargetedQuery from the front of record.
func UnpackTargetedQuery(record []byte) (TargetedQuery, int, error) {
	addr, an, err := UnpackAccessoryAddress(record)
	if nil != err {
		return TargetedQuery{}, 0, err
	}
	q, qn, err := UnpackQuery(record[an:])
	if nil != err {
		return TargetedQuery{}, 0, err
	}
	return TargetedQuery{Query: q, Address: addr}, an + qn, nil
}
