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

type memStore struct {
	tanks map[tnt.TankID]*tnt.Tank
}

func newMemStore() *memStore {
	return &memStore{tanks: make(map[tnt.TankID]*tnt.Tank)}
}

func (m *memStore) LookupTank(id tnt.TankID) (*tnt.Tank, error) {
	t, ok := m.tanks[id]
	if !ok {
		return nil, tnt.ErrTankNotFound
	}
	return t, nil
}

func (m *memStore) apply(staging *tnt.Staging) {
	written, removed := staging.Changes()
	for _, t := range written {
		m.tanks[t.ID] = t
	}
	for _, id := range removed {
		delete(m.tanks, id)
	}
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type allowAllAuthorizer struct{}

func (allowAllAuthorizer) IsAuthorized(*account.Account, tnt.AssetID) bool { return true }

type recordingCredit struct {
	lastAccount *account.Account
	lastAsset   tnt.AssetID
	lastAmount  tnt.Amount
}

func (r *recordingCredit) CreditAccount(acct *account.Account, asset tnt.AssetID, amount tnt.Amount) error {
	r.lastAccount = acct
	r.lastAsset = asset
	r.lastAmount = amount
	return nil
}

type recordingDebit struct {
	lastAccount *account.Account
	lastAsset   tnt.AssetID
	lastAmount  tnt.Amount
}

func (r *recordingDebit) DebitAccount(acct *account.Account, asset tnt.AssetID, amount tnt.Amount) error {
	r.lastAccount = acct
	r.lastAsset = asset
	r.lastAmount = amount
	return nil
}

func simpleImmediateSchematic(destination *account.Account, openAuthority account.Authority) tnt.TankSchematic {
	return tnt.NewTankSchematic(
		tnt.AssetID{0x01},
		tnt.Tap{
			OpenAuthority:    openAuthority,
			ConnectAuthority: openAuthority,
			OutputSink:       tnt.SameTankSink(),
			DestructorTap:    true,
		},
		nil,
		[]tnt.Tap{
			{
				OpenAuthority: openAuthority,
				Connected:     true,
				Requirements: []tnt.TapRequirement{
					{Kind: tnt.RequirementImmediateFlowLimit, ImmediateFlowLimit: &tnt.ImmediateFlowLimit{Limit: tnt.LimitedFlow(30)}},
				},
				OutputSink: tnt.AccountSink(destination),
			},
		},
	)
}

func TestTapOpenReleasesToAccountUnderImmediateFlowLimit(t *testing.T) {
	destination := makeAccount(9)
	payer := makeAccount(2)
	openAuthority := account.NewAuthority([]*account.Account{makeAccount(1)}, []uint32{1}, 1)
	schematic := simpleImmediateSchematic(destination, *openAuthority)

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
	report, err := tnt.TapOpen(ctx, tnt.TankID(1), tnt.TapIndex(0), 20, nil, signers)
	require.NoError(t, err)
	require.Len(t, report.Entries, 1)
	assert.EqualValues(t, 20, report.Entries[0].Released)
	assert.EqualValues(t, 20, credit.lastAmount)
	require.Contains(t, report.RequiredAuthorities, tnt.TankID(1))
	assert.Len(t, report.RequiredAuthorities[tnt.TankID(1)], 1)

	store.apply(staging)
	assert.EqualValues(t, 80, store.tanks[tnt.TankID(1)].Balance)

	// a second call exceeding the immediate limit fails
	staging2 := tnt.NewStaging(store)
	ctx2 := &tnt.TapFlowContext{
		Staging:       staging2,
		Authorizer:    allowAllAuthorizer{},
		CreditAccount: credit,
		Clock:         clock,
		Params:        params,
	}
	_, err = tnt.TapOpen(ctx2, tnt.TankID(1), tnt.TapIndex(0), 31, nil, signers)
	assert.Error(t, err)
}

func TestTapOpenRejectsUnauthorizedCaller(t *testing.T) {
	destination := makeAccount(9)
	payer := makeAccount(2)
	openAuthority := account.NewAuthority([]*account.Account{makeAccount(1)}, []uint32{1}, 1)
	schematic := simpleImmediateSchematic(destination, *openAuthority)

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

	_, err = tnt.TapOpen(ctx, tnt.TankID(1), tnt.TapIndex(0), 10, nil, tnt.Signers{})
	assert.True(t, tnt.IsAuthorization(err))
}

func TestCreateTankDebitsPayerForDepositAndFee(t *testing.T) {
	destination := makeAccount(9)
	payer := makeAccount(2)
	openAuthority := account.NewAuthority([]*account.Account{makeAccount(1)}, []uint32{1}, 1)
	schematic := simpleImmediateSchematic(destination, *openAuthority)

	store := newMemStore()
	staging := tnt.NewStaging(store)
	params := tnt.DefaultParameters
	clock := fixedClock{now: time.Unix(500, 0)}
	debit := &recordingDebit{}

	tank, err := tnt.CreateTank(staging, tnt.TankID(1), schematic, params, nil, payer, 100, debit, clock)
	require.NoError(t, err)
	assert.EqualValues(t, 100, tank.DepositReserve)
	assert.Equal(t, clock.now, tank.CreationTime)
	assert.Equal(t, tnt.NativeAsset, debit.lastAsset)
	assert.True(t, debit.lastAmount > 100)
}

func TestDeleteTankCreditsClaimantFromDepositReserve(t *testing.T) {
	destination := makeAccount(9)
	payer := makeAccount(2)
	claimant := makeAccount(3)
	openAuthority := account.NewAuthority([]*account.Account{makeAccount(1)}, []uint32{1}, 1)
	schematic := simpleImmediateSchematic(destination, *openAuthority)

	store := newMemStore()
	staging := tnt.NewStaging(store)
	params := tnt.DefaultParameters
	clock := fixedClock{now: time.Unix(500, 0)}

	_, err := tnt.CreateTank(staging, tnt.TankID(1), schematic, params, nil, payer, 100, &recordingDebit{}, clock)
	require.NoError(t, err)
	store.apply(staging)

	staging = tnt.NewStaging(store)
	credit := &recordingCredit{}
	signers := tnt.Signers{makeAccount(1).String(): true}
	err = tnt.DeleteTank(staging, tnt.TankID(1), signers, claimant, 100, credit)
	require.NoError(t, err)
	assert.EqualValues(t, 100, credit.lastAmount)
	assert.Equal(t, tnt.NativeAsset, credit.lastAsset)

	store.apply(staging)
	_, err = store.LookupTank(tnt.TankID(1))
	assert.Error(t, err)
}
