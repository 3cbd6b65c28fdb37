// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tnt

// BadSinkReason explains why GetDestinationSink refused to resolve a
// sink further.
type BadSinkReason int

const (
	ReceivesWrongAsset BadSinkReason = iota
	ReceivesNoAsset
	RemoteSink // sink names a tank/account the lookup function cannot see
)

// BadSinkError reports a sink that cannot legally carry the asset it
// was asked to carry.
type BadSinkError struct {
	Reason BadSinkReason
}

func (e *BadSinkError) Error() string {
	switch e.Reason {
	case ReceivesWrongAsset:
		return "sink receives a different asset"
	case ReceivesNoAsset:
		return "sink does not receive asset at all"
	default:
		return "sink refers to an object outside this lookup's reach"
	}
}

// ExceededMaxChainLengthError reports that walking a sink chain passed
// parameters.MaxSinkChainLength without reaching a terminal sink.
type ExceededMaxChainLengthError struct{}

func (e *ExceededMaxChainLengthError) Error() string {
	return "sink chain exceeds the configured maximum length"
}

// GetAttachmentAsset reports the asset an attachment outputs, for
// attachment kinds that receive asset at all.
func GetAttachmentAsset(schematic *TankSchematic, a Attachment) (AssetID, bool) {
	if !a.ReceivesAsset() {
		return AssetID{}, false
	}
	return schematic.Asset, true
}

// GetSinkAsset reports the asset a sink accepts, resolving through
// attachments and tanks via lookupTank. same_tank resolves relative to
// currentTank.
func GetSinkAsset(sink Sink, currentTank TankID, schematic *TankSchematic, lookupTank func(TankID) (*TankSchematic, error)) (AssetID, error) {
	resolved := sink.Resolved(currentTank)
	switch resolved.Kind {
	case SinkAccount:
		return AssetID{}, &BadSinkError{Reason: ReceivesNoAsset}
	case SinkTank:
		if resolved.Tank == currentTank {
			return schematic.Asset, nil
		}
		other, err := lookupTank(resolved.Tank)
		if nil != err {
			return AssetID{}, &BadSinkError{Reason: RemoteSink}
		}
		return other.Asset, nil
	case SinkAttachment:
		att, err := GetAttachment(schematic, resolved.Attachment)
		if nil != err {
			return AssetID{}, err
		}
		asset, ok := GetAttachmentAsset(schematic, *att)
		if !ok {
			return AssetID{}, &BadSinkError{Reason: ReceivesNoAsset}
		}
		return asset, nil
	}
	return AssetID{}, &BadSinkError{Reason: ReceivesNoAsset}
}

// SinkChainHop is one step of the chain GetSinkChain walks: the sink
// itself and the tank it was resolved relative to.
type SinkChainHop struct {
	Sink Sink
	Tank TankID
}

// GetSinkChain follows a non-terminal sink through successive
// attachments until it reaches a terminal sink (account or tank) or
// exceeds maxLength hops, returning every hop visited in order, from
// the starting sink through the terminal sink.
func GetSinkChain(start Sink, currentTank TankID, schematic *TankSchematic, lookupSchematic func(TankID) (*TankSchematic, error), maxLength uint32) ([]SinkChainHop, error) {
	hops := make([]SinkChainHop, 0, maxLength)
	sink := start
	tank := currentTank
	sch := schematic

	for count := uint32(0); ; count++ {
		resolved := sink.Resolved(tank)
		if resolved.IsTerminal() {
			hops = append(hops, SinkChainHop{Sink: resolved, Tank: tank})
			return hops, nil
		}
		if count >= maxLength {
			return nil, &ExceededMaxChainLengthError{}
		}

		att, err := GetAttachment(sch, resolved.Attachment)
		if nil != err {
			return nil, err
		}
		next, ok := att.OutputSink()
		if !ok {
			return nil, &BadSinkError{Reason: ReceivesNoAsset}
		}
		hops = append(hops, SinkChainHop{Sink: resolved, Tank: tank})
		sink = next
		// the attachment we just followed lives on `tank`; its output
		// sink's same_tank (if any) resolves against that same tank.
	}
}

// GetDestinationSink is GetSinkChain reduced to just the final,
// terminal hop.
func GetDestinationSink(start Sink, currentTank TankID, schematic *TankSchematic, lookupSchematic func(TankID) (*TankSchematic, error), maxLength uint32) (SinkChainHop, error) {
	hops, err := GetSinkChain(start, currentTank, schematic, lookupSchematic, maxLength)
	if nil != err {
		return SinkChainHop{}, err
	}
	return hops[len(hops)-1], nil
}
