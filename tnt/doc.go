// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package tnt implements the tanks-and-taps engine: a programmable
// primitive for releasing a fungible asset balance according to a
// schematic of taps, sinks, attachments and requirements.
//
// The package is a pure state-transition library. It does not persist
// objects, dispatch transactions, verify signatures against a
// consensus ledger, or expose a network/RPC surface; all of those are
// supplied by the host through the interfaces in host.go.
package tnt
