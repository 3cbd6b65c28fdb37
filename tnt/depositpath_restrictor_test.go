// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tnt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/bitmarkd/account"
	"github.com/bitmark-inc/bitmarkd/tnt"
)

func restrictedSchematic(lastStep tnt.DepositPathStep) tnt.TankSchematic {
	authority := account.NewAuthority([]*account.Account{makeAccount(1)}, []uint32{1}, 1)
	return tnt.NewTankSchematic(
		tnt.AssetID{0x04},
		tnt.Tap{
			OpenAuthority:    *authority,
			ConnectAuthority: *authority,
			OutputSink:       tnt.AttachmentSink(2),
			DestructorTap:    true,
		},
		[]tnt.Attachment{
			{Kind: tnt.AttachmentAssetFlowMeter, AssetFlowMeter: &tnt.AssetFlowMeter{OutputSink: tnt.AttachmentSink(3)}},
			{Kind: tnt.AttachmentDepositSourceRestrictor, DepositSourceRestrictor: &tnt.DepositSourceRestrictor{
				Paths: [][]tnt.DepositPathStep{
					{tnt.WildcardStep(), lastStep},
				},
			}},
			{Kind: tnt.AttachmentConnectAuthority, ConnectAuthority: &tnt.ConnectAuthority{Authority: *authority}},
			{Kind: tnt.AttachmentAssetFlowMeter, AssetFlowMeter: &tnt.AssetFlowMeter{OutputSink: tnt.SameTankSink()}},
		},
		[]tnt.Tap{
			{
				OpenAuthority: *authority,
				Connected:     true,
				Requirements: []tnt.TapRequirement{
					{Kind: tnt.RequirementImmediateFlowLimit, ImmediateFlowLimit: &tnt.ImmediateFlowLimit{Limit: tnt.LimitedFlow(10)}},
				},
				OutputSink: tnt.AttachmentSink(0),
			},
		},
	)
}

func TestCreateTankAcceptsTapRouteMatchingRestrictor(t *testing.T) {
	schematic := restrictedSchematic(tnt.SinkStep(tnt.AttachmentSink(3)))
	store := newMemStore()
	staging := tnt.NewStaging(store)
	payer := makeAccount(2)
	clock := fixedClock{now: time.Unix(1000, 0)}
	_, err := tnt.CreateTank(staging, tnt.TankID(1), schematic, tnt.DefaultParameters, nil, payer, 0, &recordingDebit{}, clock)
	require.NoError(t, err)
}

func TestCreateTankRejectsTapRouteViolatingRestrictor(t *testing.T) {
	schematic := restrictedSchematic(tnt.SinkStep(tnt.AttachmentSink(99)))
	store := newMemStore()
	staging := tnt.NewStaging(store)
	payer := makeAccount(2)
	clock := fixedClock{now: time.Unix(1000, 0)}
	_, err := tnt.CreateTank(staging, tnt.TankID(1), schematic, tnt.DefaultParameters, nil, payer, 0, &recordingDebit{}, clock)
	assert.Error(t, err)
}
