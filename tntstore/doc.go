// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package tntstore is a reference tnt.TankStore backed by goleveldb: a
// single key-value database keyed by tank id, storing each tank as
// its tnt.PackTank storage encoding. Commit applies a tnt.Staging's changes in
// one leveldb batch, mirroring the host-facing Access interface in
// storage/access.go.
package tntstore
