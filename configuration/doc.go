// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package configuration parses the operator-tunable engine parameters
// (the bounds the host picks when wiring up the tank-and-tap engine)
// from a YAML configuration file.
package configuration
