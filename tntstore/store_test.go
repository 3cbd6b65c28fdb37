// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tntstore_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/bitmarkd/account"
	"github.com/bitmark-inc/bitmarkd/tnt"
	"github.com/bitmark-inc/bitmarkd/tntstore"
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

type noopDebit struct{}

func (noopDebit) DebitAccount(*account.Account, tnt.AssetID, tnt.Amount) error { return nil }

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func openStore(t *testing.T) *tntstore.Store {
	t.Helper()
	db, err := tntstore.New(filepath.Join(t.TempDir(), "tnt.leveldb"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestStoreLookupMissingTankReturnsErrTankNotFound(t *testing.T) {
	store := openStore(t)
	_, err := store.LookupTank(tnt.TankID(1))
	assert.Equal(t, tnt.ErrTankNotFound, err)
}

func TestStoreCommitThenLookupRoundTrips(t *testing.T) {
	store := openStore(t)

	authority := account.NewAuthority([]*account.Account{makeAccount(1)}, []uint32{1}, 1)
	schematic := tnt.NewTankSchematic(
		tnt.AssetID{0x01},
		tnt.Tap{
			OpenAuthority:    *authority,
			ConnectAuthority: *authority,
			OutputSink:       tnt.SameTankSink(),
			DestructorTap:    true,
		},
		nil,
		[]tnt.Tap{
			{
				OpenAuthority: *authority,
				Connected:     true,
				Requirements: []tnt.TapRequirement{
					{Kind: tnt.RequirementImmediateFlowLimit, ImmediateFlowLimit: &tnt.ImmediateFlowLimit{Limit: tnt.LimitedFlow(10)}},
				},
				OutputSink: tnt.AccountSink(makeAccount(2)),
			},
		},
	)

	payer := makeAccount(3)
	clock := fixedClock{now: time.Unix(1000, 0)}
	staging := tnt.NewStaging(store)
	tank, err := tnt.CreateTank(staging, tnt.TankID(7), schematic, tnt.DefaultParameters, nil, payer, 0, noopDebit{}, clock)
	require.NoError(t, err)
	tank.Balance = 500
	staging.Stage(tank)

	require.NoError(t, store.Commit(staging))

	loaded, err := store.LookupTank(tnt.TankID(7))
	require.NoError(t, err)
	assert.EqualValues(t, 500, loaded.Balance)
	assert.Equal(t, tank.Asset, loaded.Asset)
	assert.Len(t, loaded.Schematic.Taps, 1)
	assert.True(t, loaded.Schematic.EmergencyTap.DestructorTap)
}

func TestStoreCommitDeletion(t *testing.T) {
	store := openStore(t)

	authority := account.NewAuthority([]*account.Account{makeAccount(1)}, []uint32{1}, 1)
	schematic := tnt.NewTankSchematic(
		tnt.AssetID{0x02},
		tnt.Tap{
			OpenAuthority:    *authority,
			ConnectAuthority: *authority,
			OutputSink:       tnt.SameTankSink(),
			DestructorTap:    true,
		},
		nil,
		nil,
	)

	payer := makeAccount(3)
	clock := fixedClock{now: time.Unix(1000, 0)}
	staging := tnt.NewStaging(store)
	tank, err := tnt.CreateTank(staging, tnt.TankID(9), schematic, tnt.DefaultParameters, nil, payer, 0, noopDebit{}, clock)
	require.NoError(t, err)
	staging.Stage(tank)
	require.NoError(t, store.Commit(staging))

	staging2 := tnt.NewStaging(store)
	staging2.Delete(tnt.TankID(9))
	require.NoError(t, store.Commit(staging2))

	_, err = store.LookupTank(tnt.TankID(9))
	assert.Equal(t, tnt.ErrTankNotFound, err)
}
