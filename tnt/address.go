// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tnt

import "github.com/bitmark-inc/bitmarkd/fault"

// AccessoryAddress names either an attachment or a tap requirement
// slot within a single tank's schematic, for use anywhere a query or
// a range lookup must address "some accessory" generically.
type AccessoryAddress struct {
	IsAttachment bool
	Attachment   AttachmentIndex
	Requirement  RequirementAddress
}

// AttachmentAccessory addresses an attachment.
func AttachmentAccessory(idx AttachmentIndex) AccessoryAddress {
	return AccessoryAddress{IsAttachment: true, Attachment: idx}
}

// RequirementAccessory addresses a tap requirement.
func RequirementAccessory(addr RequirementAddress) AccessoryAddress {
	return AccessoryAddress{Requirement: addr}
}

// AccessoryLess totally orders accessory addresses: every attachment
// sorts before every requirement, and requirements sort by (tap,
// requirement index). It is used as the comparator for range-style
// lookups/deletes over a tank's accessories.
func AccessoryLess(a, b AccessoryAddress) bool {
	if a.IsAttachment != b.IsAttachment {
		return a.IsAttachment
	}
	if a.IsAttachment {
		return a.Attachment < b.Attachment
	}
	if a.Requirement.Tap != b.Requirement.Tap {
		return a.Requirement.Tap < b.Requirement.Tap
	}
	return a.Requirement.Requirement < b.Requirement.Requirement
}

// TapAddressMatches reports whether addr is a requirement on tap -
// it lets a bare TapIndex act as a transparent comparator key that
// matches every requirement address on that tap, for range deletion
// of an entire tap's requirements.
func TapAddressMatches(addr AccessoryAddress, tap TapIndex) bool {
	return !addr.IsAttachment && addr.Requirement.Tap == tap
}

// GetAttachment looks up an attachment by id, asserting it exists (it
// may have been tombstoned by a tank_update removal).
func GetAttachment(schematic *TankSchematic, idx AttachmentIndex) (*Attachment, error) {
	att, ok := schematic.Attachments[idx]
	if !ok {
		return nil, fault.ErrAttachmentNotFound
	}
	return att, nil
}

// GetTap looks up a tap by id, asserting it exists (it may have been
// tombstoned by a tank_update removal).
func GetTap(schematic *TankSchematic, idx TapIndex) (*Tap, error) {
	tap, ok := schematic.Taps[idx]
	if !ok {
		return nil, fault.ErrTapNotFound
	}
	return tap, nil
}

// GetRequirement looks up a tap requirement by address, asserting
// both the tap and the requirement slot exist.
func GetRequirement(schematic *TankSchematic, addr RequirementAddress) (*TapRequirement, error) {
	tap, err := GetTap(schematic, addr.Tap)
	if nil != err {
		return nil, err
	}
	if int(addr.Requirement) >= len(tap.Requirements) {
		return nil, fault.ErrRequirementNotFound
	}
	return &tap.Requirements[int(addr.Requirement)], nil
}
