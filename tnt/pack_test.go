// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tnt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/bitmarkd/account"
	"github.com/bitmark-inc/bitmarkd/merkle"
	"github.com/bitmark-inc/bitmarkd/tnt"
)

func makeAccount(b byte) *account.Account {
	key := make([]byte, 32)
	for i := range key {
		key[i] = b
	}
	return &account.Account{
		AccountInterface: &account.ED25519Account{
			Test:      true,
			PublicKey: key,
		},
	}
}

func TestSinkPackRoundTrip(t *testing.T) {
	cases := []tnt.Sink{
		tnt.SameTankSink(),
		tnt.AccountSink(makeAccount(1)),
		tnt.TankSink(tnt.TankID(42)),
		tnt.AttachmentSink(tnt.AttachmentIndex(3)),
	}
	for _, s := range cases {
		packed := s.Pack()
		unpacked, n, err := tnt.UnpackSink(packed)
		require.NoError(t, err)
		assert.Equal(t, len(packed), n)
		assert.Equal(t, s.Kind, unpacked.Kind)
		assert.True(t, tnt.SinkEqual(s, 0, unpacked, 0))
	}
}

func TestAttachmentPackRoundTrip(t *testing.T) {
	cases := []tnt.Attachment{
		{Kind: tnt.AttachmentAssetFlowMeter, AssetFlowMeter: &tnt.AssetFlowMeter{OutputSink: tnt.TankSink(7)}},
		{Kind: tnt.AttachmentTapOpener, TapOpener: &tnt.TapOpener{
			Tap:           tnt.TapIndex(1),
			ReleaseAmount: tnt.LimitedFlow(100),
			OutputSink:    tnt.SameTankSink(),
		}},
		{Kind: tnt.AttachmentDepositSourceRestrictor, DepositSourceRestrictor: &tnt.DepositSourceRestrictor{
			Paths: [][]tnt.DepositPathStep{
				{
					tnt.WildcardStep(),
					tnt.SinkStep(tnt.TankSink(5)),
				},
			},
		}},
		{Kind: tnt.AttachmentConnectAuthority, ConnectAuthority: &tnt.ConnectAuthority{
			Authority:  *account.NewAuthority([]*account.Account{makeAccount(2)}, []uint32{1}, 1),
			Attachment: tnt.AttachmentIndex(0),
		}},
	}
	for _, a := range cases {
		packed := a.Pack()
		unpacked, n, err := tnt.UnpackAttachment(packed)
		require.NoError(t, err)
		assert.Equal(t, len(packed), n)
		assert.Equal(t, a.Kind, unpacked.Kind)
	}
}

func TestTapRequirementPackRoundTrip(t *testing.T) {
	reviewer := account.NewAuthority([]*account.Account{makeAccount(3)}, []uint32{2}, 1)
	cases := []tnt.TapRequirement{
		{Kind: tnt.RequirementImmediateFlowLimit, ImmediateFlowLimit: &tnt.ImmediateFlowLimit{Limit: tnt.LimitedFlow(10)}},
		{Kind: tnt.RequirementCumulativeFlowLimit, CumulativeFlowLimit: &tnt.CumulativeFlowLimit{Limit: tnt.UnlimitedFlow}},
		{Kind: tnt.RequirementPeriodicFlowLimit, PeriodicFlowLimit: &tnt.PeriodicFlowLimit{Limit: tnt.LimitedFlow(50), PeriodDurationSec: 3600}},
		{Kind: tnt.RequirementMinimumTankLevel, MinimumTankLevel: &tnt.MinimumTankLevel{MinimumLevel: 5}},
		{Kind: tnt.RequirementReview, Review: &tnt.ReviewRequirement{Reviewer: *reviewer}},
		{Kind: tnt.RequirementDocumentation, Documentation: &tnt.DocumentationRequirement{RequiredText: "I agree"}},
		{Kind: tnt.RequirementHashLock, HashLock: &tnt.HashLockRequirement{Algorithm: merkle.SHA256, Hash: []byte{1, 2, 3, 4}}},
		{Kind: tnt.RequirementTicket, Ticket: &tnt.TicketRequirement{Signer: makeAccount(4)}},
		{Kind: tnt.RequirementExchange, Exchange: &tnt.ExchangeRequirement{
			MeterIndex:     tnt.AttachmentIndex(0),
			TickAmount:     100,
			ReleasePerTick: tnt.LimitedFlow(1),
		}},
	}
	for _, r := range cases {
		packed := r.Pack()
		unpacked, n, err := tnt.UnpackTapRequirement(packed)
		require.NoError(t, err)
		assert.Equal(t, len(packed), n)
		assert.Equal(t, r.Kind, unpacked.Kind)
	}
}

func TestTapAndSchematicPackRoundTrip(t *testing.T) {
	authority := account.NewAuthority([]*account.Account{makeAccount(5)}, []uint32{1}, 1)
	tap := tnt.Tap{
		OpenAuthority: *authority,
		Connected:     true,
		Requirements: []tnt.TapRequirement{
			{Kind: tnt.RequirementImmediateFlowLimit, ImmediateFlowLimit: &tnt.ImmediateFlowLimit{Limit: tnt.LimitedFlow(25)}},
		},
		OutputSink: tnt.AccountSink(makeAccount(6)),
	}

	packedTap := tap.Pack()
	unpackedTap, n, err := tnt.UnpackTap(packedTap)
	require.NoError(t, err)
	assert.Equal(t, len(packedTap), n)
	assert.Equal(t, 1, len(unpackedTap.Requirements))
	assert.True(t, unpackedTap.Connected)

	schematic := tnt.NewTankSchematic(
		tnt.AssetID{0xaa},
		tnt.Tap{
			OpenAuthority:    *authority,
			ConnectAuthority: *authority,
			OutputSink:       tnt.SameTankSink(),
			DestructorTap:    true,
		},
		nil,
		[]tnt.Tap{tap},
	)

	packedSchematic := schematic.Pack()
	unpackedSchematic, sn, err := tnt.UnpackTankSchematic(packedSchematic)
	require.NoError(t, err)
	assert.Equal(t, len(packedSchematic), sn)
	assert.Equal(t, schematic.Asset, unpackedSchematic.Asset)
	assert.Equal(t, 1, len(unpackedSchematic.Taps))
	assert.True(t, unpackedSchematic.EmergencyTap.DestructorTap)
}

func TestQueryPackRoundTrip(t *testing.T) {
	cases := []tnt.Query{
		{Kind: tnt.QueryResetMeter, ResetMeter: &tnt.ResetMeter{}},
		{Kind: tnt.QueryDocumentationString, DocumentationString: &tnt.DocumentationString{Text: "ok"}},
		{Kind: tnt.QueryRedeemTicketToOpen, RedeemTicketToOpen: &tnt.RedeemTicketToOpen{
			MaxWithdrawal: 10,
			TicketNumber:  7,
			Signature:     []byte{9, 9, 9},
		}},
	}
	for _, q := range cases {
		packed := q.Pack()
		unpacked, n, err := tnt.UnpackQuery(packed)
		require.NoError(t, err)
		assert.Equal(t, len(packed), n)
		assert.Equal(t, q.Kind, unpacked.Kind)
	}
}
