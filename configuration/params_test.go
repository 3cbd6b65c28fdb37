// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/bitmarkd/configuration"
	"github.com/bitmark-inc/bitmarkd/tnt"
)

func TestParseParametersDefaultsWhenFieldsAbsent(t *testing.T) {
	p, err := configuration.ParseParameters([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, tnt.DefaultParameters.MaxSinkChainLength, p.MaxSinkChainLength)
	assert.Equal(t, tnt.DefaultParameters.MaxTapsToOpen, p.MaxTapsToOpen)
}

func TestParseParametersOverridesFromFile(t *testing.T) {
	p, err := configuration.ParseParameters([]byte(`
max_sink_chain_length: 5
max_taps_to_open: 50
`))
	require.NoError(t, err)
	assert.EqualValues(t, 5, p.MaxSinkChainLength)
	assert.EqualValues(t, 50, p.MaxTapsToOpen)
}

func TestParseParametersRejectsInvalid(t *testing.T) {
	_, err := configuration.ParseParameters([]byte(`
max_sink_chain_length: 0
max_taps_to_open: 50
`))
	assert.Error(t, err)
}

func TestLoadParametersMissingFile(t *testing.T) {
	_, err := configuration.LoadParameters("/nonexistent/path/to/params.yaml")
	assert.Error(t, err)
}
