// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tntstore

import (
	"encoding/binary"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/bitmark-inc/bitmarkd/fault"
	"github.com/bitmark-inc/bitmarkd/tnt"
)

// Store is a tnt.TankStore backed by a single goleveldb database,
// keyed by big-endian tank id - the same fixed-width-key convention
// storage/data_access.go uses for its prefixed record keys.
type Store struct {
	sync.RWMutex
	db *leveldb.DB
}

// New opens (creating if absent) a leveldb database at path.
func New(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if nil != err {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func tankKey(id tnt.TankID) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(id))
	return key
}

// LookupTank implements tnt.TankStore.
func (s *Store) LookupTank(id tnt.TankID) (*tnt.Tank, error) {
	s.RLock()
	defer s.RUnlock()

	record, err := s.db.Get(tankKey(id), nil)
	if leveldb.ErrNotFound == err {
		return nil, fault.ErrTankNotFound
	}
	if nil != err {
		return nil, err
	}
	return tnt.UnpackTankState(record)
}

// Commit applies every change recorded by a tnt.Staging to the
// database in a single leveldb batch, so a host either sees all of a
// flow's writes or none of them - mirroring storage/access.go's
// Begin/Put/Delete/Commit pattern, collapsed into one call since tnt's
// Staging already plays the role of the in-flight batch.
func (s *Store) Commit(staging *tnt.Staging) error {
	written, removed := staging.Changes()

	s.Lock()
	defer s.Unlock()

	batch := new(leveldb.Batch)
	for _, tank := range written {
		batch.Put(tankKey(tank.ID), tnt.PackTank(tank))
	}
	for _, id := range removed {
		batch.Delete(tankKey(id))
	}
	return s.db.Write(batch, nil)
}
