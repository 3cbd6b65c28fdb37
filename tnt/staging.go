// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tnt

import (
	"time"

	"github.com/bitmark-inc/bitmarkd/account"
)

// Staging is a copy-on-write view over a TankStore. Every tank a flow
// touches is deep-copied into an in-memory shadow on first lookup;
// all further reads and writes during the flow see only the shadow.
// The flow either Commits (the host applies every shadowed tank
// atomically) or is simply discarded (the underlying store is never
// touched), matching the original implementation's "evaluate entirely
// against a staged copy, apply only on success" design, adapted from
// the batch-write pattern in the teacher's storage package.
type Staging struct {
	store   TankStore
	shadow  map[TankID]*Tank
	deleted map[TankID]bool
}

// NewStaging opens a staging layer over store.
func NewStaging(store TankStore) *Staging {
	return &Staging{
		store:   store,
		shadow:  make(map[TankID]*Tank),
		deleted: make(map[TankID]bool),
	}
}

// Lookup returns the tank, reading through to the underlying store and
// staging a deep copy on first touch. A tank staged for deletion
// during this flow is reported as not found.
func (s *Staging) Lookup(id TankID) (*Tank, error) {
	if s.deleted[id] {
		return nil, ErrTankGone
	}
	if t, ok := s.shadow[id]; ok {
		return t, nil
	}
	t, err := s.store.LookupTank(id)
	if nil != err {
		return nil, err
	}
	shadowed := cloneTank(t)
	s.shadow[id] = shadowed
	return shadowed, nil
}

// Stage records tank as a pending write; it replaces whatever copy
// Lookup previously handed out (used when the caller constructs a
// brand new tank, e.g. tank_create).
func (s *Staging) Stage(tank *Tank) {
	delete(s.deleted, tank.ID)
	s.shadow[tank.ID] = tank
}

// Delete stages tank id for removal.
func (s *Staging) Delete(id TankID) {
	delete(s.shadow, id)
	s.deleted[id] = true
}

// Changes returns every tank staged for write and every id staged for
// deletion, so the host can apply them to its persistent store in a
// single atomic batch. Discarding a Staging (simply not calling
// Changes/never applying its result) leaves the store untouched.
func (s *Staging) Changes() (written []*Tank, removed []TankID) {
	for _, t := range s.shadow {
		written = append(written, t)
	}
	for id := range s.deleted {
		removed = append(removed, id)
	}
	return written, removed
}

func cloneTank(t *Tank) *Tank {
	clone := &Tank{
		ID:             t.ID,
		Asset:          t.Asset,
		Schematic:      cloneTankSchematic(t.Schematic),
		Balance:        t.Balance,
		DepositReserve: t.DepositReserve,
		CreationTime:   t.CreationTime,
	}
	if t.AttachmentStates != nil {
		clone.AttachmentStates = make(map[AttachmentIndex]*TankAttachmentState, len(t.AttachmentStates))
		for k, v := range t.AttachmentStates {
			cp := *v
			clone.AttachmentStates[k] = &cp
		}
	}
	if t.RequirementStates != nil {
		clone.RequirementStates = make(map[RequirementAddress]*TapRequirementState, len(t.RequirementStates))
		for k, v := range t.RequirementStates {
			cp := *v
			cp.Requests = append([]PendingRequest(nil), v.Requests...)
			cp.RevealedPreimage = append([]byte(nil), v.RevealedPreimage...)
			if v.UsedTickets != nil {
				cp.UsedTickets = make(map[uint64]bool, len(v.UsedTickets))
				for t := range v.UsedTickets {
					cp.UsedTickets[t] = true
				}
			}
			clone.RequirementStates[k] = &cp
		}
	}
	return clone
}

// cloneTankSchematic deep-copies a schematic so a staged tank never
// shares a mutable attachment/tap/authority with the stored copy -
// abandoning a staged flow (never calling Commit) must be a true no-op
// against the store.
func cloneTankSchematic(s TankSchematic) TankSchematic {
	clone := s
	clone.EmergencyTap = *cloneTap(&s.EmergencyTap)
	if nil != s.Attachments {
		clone.Attachments = make(map[AttachmentIndex]*Attachment, len(s.Attachments))
		for k, v := range s.Attachments {
			clone.Attachments[k] = cloneAttachment(v)
		}
	}
	if nil != s.Taps {
		clone.Taps = make(map[TapIndex]*Tap, len(s.Taps))
		for k, v := range s.Taps {
			clone.Taps[k] = cloneTap(v)
		}
	}
	return clone
}

func cloneAuthority(a account.Authority) account.Authority {
	if nil == a.Weights {
		return a
	}
	weights := make(map[string]uint32, len(a.Weights))
	for k, v := range a.Weights {
		weights[k] = v
	}
	return account.Authority{Weights: weights, Threshold: a.Threshold}
}

func cloneAttachment(a *Attachment) *Attachment {
	clone := *a
	switch a.Kind {
	case AttachmentAssetFlowMeter:
		if nil != a.AssetFlowMeter {
			cp := *a.AssetFlowMeter
			cp.ResetAuthority = cloneAuthority(a.AssetFlowMeter.ResetAuthority)
			clone.AssetFlowMeter = &cp
		}
	case AttachmentDepositSourceRestrictor:
		if nil != a.DepositSourceRestrictor {
			cp := *a.DepositSourceRestrictor
			cp.Paths = make([][]DepositPathStep, len(a.DepositSourceRestrictor.Paths))
			for i, p := range a.DepositSourceRestrictor.Paths {
				cp.Paths[i] = append([]DepositPathStep(nil), p...)
			}
			clone.DepositSourceRestrictor = &cp
		}
	case AttachmentTapOpener:
		if nil != a.TapOpener {
			cp := *a.TapOpener
			clone.TapOpener = &cp
		}
	case AttachmentConnectAuthority:
		if nil != a.ConnectAuthority {
			cp := *a.ConnectAuthority
			cp.Authority = cloneAuthority(a.ConnectAuthority.Authority)
			clone.ConnectAuthority = &cp
		}
	}
	return &clone
}

func cloneTap(t *Tap) *Tap {
	clone := *t
	clone.OpenAuthority = cloneAuthority(t.OpenAuthority)
	clone.ConnectAuthority = cloneAuthority(t.ConnectAuthority)
	if nil != t.Requirements {
		clone.Requirements = make([]TapRequirement, len(t.Requirements))
		for i := range t.Requirements {
			clone.Requirements[i] = cloneTapRequirement(t.Requirements[i])
		}
	}
	return &clone
}

func cloneTapRequirement(r TapRequirement) TapRequirement {
	clone := r
	switch r.Kind {
	case RequirementImmediateFlowLimit:
		if nil != r.ImmediateFlowLimit {
			v := *r.ImmediateFlowLimit
			clone.ImmediateFlowLimit = &v
		}
	case RequirementCumulativeFlowLimit:
		if nil != r.CumulativeFlowLimit {
			v := *r.CumulativeFlowLimit
			clone.CumulativeFlowLimit = &v
		}
	case RequirementPeriodicFlowLimit:
		if nil != r.PeriodicFlowLimit {
			v := *r.PeriodicFlowLimit
			clone.PeriodicFlowLimit = &v
		}
	case RequirementTimeLock:
		if nil != r.TimeLock {
			v := *r.TimeLock
			v.Toggles = append([]time.Time(nil), r.TimeLock.Toggles...)
			clone.TimeLock = &v
		}
	case RequirementMinimumTankLevel:
		if nil != r.MinimumTankLevel {
			v := *r.MinimumTankLevel
			clone.MinimumTankLevel = &v
		}
	case RequirementReview:
		if nil != r.Review {
			v := *r.Review
			v.Reviewer = cloneAuthority(r.Review.Reviewer)
			clone.Review = &v
		}
	case RequirementDocumentation:
		if nil != r.Documentation {
			v := *r.Documentation
			clone.Documentation = &v
		}
	case RequirementDelay:
		if nil != r.Delay {
			v := *r.Delay
			v.VetoAuthority = cloneAuthority(r.Delay.VetoAuthority)
			clone.Delay = &v
		}
	case RequirementHashLock:
		if nil != r.HashLock {
			v := *r.HashLock
			v.Hash = append([]byte(nil), r.HashLock.Hash...)
			clone.HashLock = &v
		}
	case RequirementTicket:
		if nil != r.Ticket {
			v := *r.Ticket
			clone.Ticket = &v
		}
	case RequirementExchange:
		if nil != r.Exchange {
			v := *r.Exchange
			clone.Exchange = &v
		}
	}
	return clone
}
