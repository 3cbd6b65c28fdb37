// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"io/ioutil"

	"github.com/bitmark-inc/bitmarkd/tnt"
	"gopkg.in/yaml.v2"
)

// fileFormat is the on-disk YAML shape; field names come from the
// explicit yaml tags.
type fileFormat struct {
	MaxSinkChainLength uint32 `yaml:"max_sink_chain_length"`
	MaxTapsToOpen      uint32 `yaml:"max_taps_to_open"`
}

// LoadParameters reads a YAML file and returns the engine parameters
// it specifies. Fields absent from the file fall back to the engine's
// built in defaults (tnt.DefaultParameters).
func LoadParameters(fileName string) (*tnt.Parameters, error) {
	raw, err := ioutil.ReadFile(fileName)
	if nil != err {
		return nil, err
	}
	return ParseParameters(raw)
}

// ParseParameters parses YAML bytes directly, useful for tests and
// for configuration embedded in a larger document.
func ParseParameters(raw []byte) (*tnt.Parameters, error) {
	f := fileFormat{
		MaxSinkChainLength: tnt.DefaultParameters.MaxSinkChainLength,
		MaxTapsToOpen:      tnt.DefaultParameters.MaxTapsToOpen,
	}
	if err := yaml.Unmarshal(raw, &f); nil != err {
		return nil, err
	}

	p := tnt.DefaultParameters
	p.MaxSinkChainLength = f.MaxSinkChainLength
	p.MaxTapsToOpen = f.MaxTapsToOpen
	if err := p.Validate(); nil != err {
		return nil, err
	}
	return &p, nil
}
