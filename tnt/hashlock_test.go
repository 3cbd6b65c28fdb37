// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tnt_test

import (
	"crypto/sha256"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/bitmarkd/account"
	"github.com/bitmark-inc/bitmarkd/merkle"
	"github.com/bitmark-inc/bitmarkd/tnt"
)

func hashLockSchematic(destination *account.Account, openAuthority *account.Authority, hash []byte) tnt.TankSchematic {
	return tnt.NewTankSchematic(
		tnt.AssetID{0x03},
		tnt.Tap{
			OpenAuthority:    *openAuthority,
			ConnectAuthority: *openAuthority,
			OutputSink:       tnt.SameTankSink(),
			DestructorTap:    true,
		},
		nil,
		[]tnt.Tap{
			{
				OpenAuthority: *openAuthority,
				Connected:     true,
				Requirements: []tnt.TapRequirement{
					{Kind: tnt.RequirementHashLock, HashLock: &tnt.HashLockRequirement{Algorithm: merkle.SHA256, Hash: hash}},
				},
				OutputSink: tnt.AccountSink(destination),
			},
		},
	)
}

func TestTapOpenWithCorrectPreimageUnlocksHashLock(t *testing.T) {
	preimage := []byte("open sesame")
	sum := sha256.Sum256(preimage)

	destination := makeAccount(9)
	payer := makeAccount(2)
	openAuthority := account.NewAuthority([]*account.Account{makeAccount(1)}, []uint32{1}, 1)
	schematic := hashLockSchematic(destination, openAuthority, sum[:])

	store := newMemStore()
	staging := tnt.NewStaging(store)
	params := tnt.DefaultParameters
	clock := fixedClock{now: time.Unix(1000, 0)}
	tank, err := tnt.CreateTank(staging, tnt.TankID(1), schematic, params, nil, payer, 0, &recordingDebit{}, clock)
	require.NoError(t, err)
	tank.Balance = 100
	staging.Stage(tank)
	store.apply(staging)

	staging = tnt.NewStaging(store)
	credit := &recordingCredit{}
	ctx := &tnt.TapFlowContext{
		Staging:       staging,
		Authorizer:    allowAllAuthorizer{},
		CreditAccount: credit,
		Clock:         clock,
		Params:        params,
	}
	signers := tnt.Signers{makeAccount(1).String(): true}

	openQueries := []tnt.TargetedQuery{
		{
			Address: tnt.RequirementAccessory(tnt.RequirementAddress{Tap: 0, Requirement: 0}),
			Query:   tnt.Query{Kind: tnt.QueryRevealHashPreimage, RevealHashPreimage: &tnt.RevealHashPreimage{Preimage: preimage}},
		},
	}
	report, err := tnt.TapOpen(ctx, tnt.TankID(1), tnt.TapIndex(0), 15, openQueries, signers)
	require.NoError(t, err)
	require.Len(t, report.Entries, 1)
	assert.EqualValues(t, 15, report.Entries[0].Released)
}

func TestTapOpenWithWrongPreimageFailsHashLock(t *testing.T) {
	preimage := []byte("open sesame")
	sum := sha256.Sum256(preimage)

	destination := makeAccount(9)
	payer := makeAccount(2)
	openAuthority := account.NewAuthority([]*account.Account{makeAccount(1)}, []uint32{1}, 1)
	schematic := hashLockSchematic(destination, openAuthority, sum[:])

	store := newMemStore()
	staging := tnt.NewStaging(store)
	params := tnt.DefaultParameters
	clock := fixedClock{now: time.Unix(1000, 0)}
	tank, err := tnt.CreateTank(staging, tnt.TankID(1), schematic, params, nil, payer, 0, &recordingDebit{}, clock)
	require.NoError(t, err)
	tank.Balance = 100
	staging.Stage(tank)
	store.apply(staging)

	staging = tnt.NewStaging(store)
	ctx := &tnt.TapFlowContext{
		Staging:       staging,
		Authorizer:    allowAllAuthorizer{},
		CreditAccount: &recordingCredit{},
		Clock:         clock,
		Params:        params,
	}
	signers := tnt.Signers{makeAccount(1).String(): true}

	openQueries := []tnt.TargetedQuery{
		{
			Address: tnt.RequirementAccessory(tnt.RequirementAddress{Tap: 0, Requirement: 0}),
			Query:   tnt.Query{Kind: tnt.QueryRevealHashPreimage, RevealHashPreimage: &tnt.RevealHashPreimage{Preimage: []byte("wrong")}},
		},
	}
	_, err = tnt.TapOpen(ctx, tnt.TankID(1), tnt.TapIndex(0), 15, openQueries, signers)
	assert.Error(t, err)
}
