// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tnt

import (
	"time"

	"github.com/bitmark-inc/bitmarkd/account"
	"github.com/bitmark-inc/bitmarkd/merkle"
)

// Amount is a tank balance / flow quantity. Arithmetic on Amount is
// saturating: it never wraps and never silently overflows into a
// negative value.
type Amount int64

// MaxAmount is the ceiling every saturating operation clamps to.
const MaxAmount = Amount(1<<63 - 1)

// Add returns a+b, clamped to [0, MaxAmount].
func (a Amount) Add(b Amount) Amount {
	if a > MaxAmount-b {
		return MaxAmount
	}
	r := a + b
	if r < 0 {
		return MaxAmount
	}
	return r
}

// Sub returns a-b, clamped to 0 (never negative).
func (a Amount) Sub(b Amount) Amount {
	r := a - b
	if r < 0 {
		return 0
	}
	return r
}

// Min returns the lesser of a and b.
func (a Amount) Min(b Amount) Amount {
	if a < b {
		return a
	}
	return b
}

// AssetID identifies the single fungible asset type a tank holds.
// Modeled on merkle.Digest: a fixed byte array, printed as hex.
type AssetID [32]byte

func (id AssetID) String() string {
	return merkle.Digest(id).String()
}

// NativeAsset is the host chain's own asset, distinct from any tank's
// Asset: deposit reserves (tank_create/tank_update/tank_delete) are
// always denominated in it, never in the tank's contained asset.
var NativeAsset = AssetID{}

// TankID addresses a tank on the host ledger.
type TankID uint64

// TapIndex, AttachmentIndex and RequirementIndex address components
// within a single tank's schematic.
type TapIndex uint32
type AttachmentIndex uint32
type RequirementIndex uint32

// AssetFlowLimit is either an unlimited allowance or a specific
// ceiling; several requirement/attachment fields use this rather than
// a bare Amount so "no limit configured" can be expressed directly.
type AssetFlowLimit struct {
	Unlimited bool
	Limit     Amount
}

// UnlimitedFlow is the conventional unlimited value.
var UnlimitedFlow = AssetFlowLimit{Unlimited: true}

// LimitedFlow builds a bounded AssetFlowLimit.
func LimitedFlow(amount Amount) AssetFlowLimit {
	return AssetFlowLimit{Limit: amount}
}

// SinkKind tags which variant a Sink holds. Order is append-only: it
// is part of the wire format (see pack.go).
type SinkKind uint64

const (
	SinkSameTank SinkKind = iota
	SinkAccount
	SinkTank
	SinkAttachment
	sinkKindLimit
)

// Sink names where asset released from a tap or attachment goes next.
// Exactly one of the fields below is meaningful, selected by Kind.
type Sink struct {
	Kind       SinkKind
	Account    *account.Account
	Tank       TankID
	Attachment AttachmentIndex
}

func SameTankSink() Sink                       { return Sink{Kind: SinkSameTank} }
func AccountSink(a *account.Account) Sink      { return Sink{Kind: SinkAccount, Account: a} }
func TankSink(id TankID) Sink                  { return Sink{Kind: SinkTank, Tank: id} }
func AttachmentSink(idx AttachmentIndex) Sink  { return Sink{Kind: SinkAttachment, Attachment: idx} }

// IsTerminal reports whether the sink ends a release (account or
// tank) rather than continuing on to another attachment.
func (s Sink) IsTerminal() bool {
	return s.Kind == SinkAccount || s.Kind == SinkTank
}

// Resolved substitutes SameTank with the tank the sink is being
// evaluated relative to; every other kind is returned unchanged.
func (s Sink) Resolved(currentTank TankID) Sink {
	if s.Kind == SinkSameTank {
		return TankSink(currentTank)
	}
	return s
}

// SinkEqual compares two sinks for the deposit-path matcher, each
// resolved relative to its own "current tank" - the two sides of a
// comparison may be evaluated against different tanks when same_tank
// appears on only one side.
func SinkEqual(a Sink, aTank TankID, b Sink, bTank TankID) bool {
	ra, rb := a.Resolved(aTank), b.Resolved(bTank)
	if ra.Kind != rb.Kind {
		return false
	}
	switch ra.Kind {
	case SinkAccount:
		return ra.Account != nil && rb.Account != nil && ra.Account.String() == rb.Account.String()
	case SinkTank:
		return ra.Tank == rb.Tank
	case SinkAttachment:
		return ra.Attachment == rb.Attachment
	}
	return true
}

// AttachmentKind tags which variant an Attachment holds. Append-only.
type AttachmentKind uint64

const (
	AttachmentAssetFlowMeter AttachmentKind = iota
	AttachmentDepositSourceRestrictor
	AttachmentTapOpener
	AttachmentConnectAuthority
	attachmentKindLimit
)

// Attachment is the tagged union of the four attachment variants.
// Exactly one of the typed fields is populated, selected by Kind.
type Attachment struct {
	Kind AttachmentKind

	AssetFlowMeter          *AssetFlowMeter
	DepositSourceRestrictor *DepositSourceRestrictor
	TapOpener               *TapOpener
	ConnectAuthority        *ConnectAuthority
}

// AssetFlowMeter records cumulative throughput and forwards the asset
// on unchanged. ResetAuthority, when non-null, may reset the meter via
// query_reset_meter; the emergency tap's open authority always may,
// regardless of ResetAuthority.
type AssetFlowMeter struct {
	OutputSink     Sink
	ResetAuthority account.Authority
}

// DepositSourceRestrictor only accepts deposits whose origin path
// matches one of Paths (see depositpath.go); it never receives/
// forwards asset itself, it only gates the terminal tank it is
// attached to. A deposit is accepted if it matches any one pattern -
// the first match, by pattern order, wins.
type DepositSourceRestrictor struct {
	Paths [][]DepositPathStep
}

// TapOpener receives the asset and, as a side effect, opens another
// tap on the same tank before forwarding the asset on.
type TapOpener struct {
	Tap           TapIndex
	ReleaseAmount AssetFlowLimit
	OutputSink    Sink
}

// ConnectAuthority lets Authority rewire the output sink of the
// attachment named by Attachment, via query_reconnect_attachment. It
// is distinct from a tap's own ConnectAuthority field, which gates
// connecting/reconnecting the tap itself rather than an attachment.
type ConnectAuthority struct {
	Authority  account.Authority
	Attachment AttachmentIndex
}

// ReceivesAsset reports whether this attachment kind accepts asset as
// input at all (deposit_source_restrictor and attachment_connect_
// authority do not - they are unreachable as a sink target).
func (a Attachment) ReceivesAsset() bool {
	return a.Kind == AttachmentAssetFlowMeter || a.Kind == AttachmentTapOpener
}

// OutputSink returns the sink this attachment forwards to, when it
// has one.
func (a Attachment) OutputSink() (Sink, bool) {
	switch a.Kind {
	case AttachmentAssetFlowMeter:
		return a.AssetFlowMeter.OutputSink, true
	case AttachmentTapOpener:
		return a.TapOpener.OutputSink, true
	}
	return Sink{}, false
}

// TapRequirementKind tags which variant a TapRequirement holds.
// Append-only; order must match query_type_list-style stability.
type TapRequirementKind uint64

const (
	RequirementImmediateFlowLimit TapRequirementKind = iota
	RequirementCumulativeFlowLimit
	RequirementPeriodicFlowLimit
	RequirementTimeLock
	RequirementMinimumTankLevel
	RequirementReview
	RequirementDocumentation
	RequirementDelay
	RequirementHashLock
	RequirementTicket
	RequirementExchange
	requirementKindLimit
)

// TapRequirement is the tagged union of the eleven requirement
// variants. Exactly one typed field is populated, selected by Kind.
type TapRequirement struct {
	Kind TapRequirementKind

	ImmediateFlowLimit   *ImmediateFlowLimit
	CumulativeFlowLimit  *CumulativeFlowLimit
	PeriodicFlowLimit    *PeriodicFlowLimit
	TimeLock             *TimeLock
	MinimumTankLevel     *MinimumTankLevel
	Review               *ReviewRequirement
	Documentation        *DocumentationRequirement
	Delay                *DelayRequirement
	HashLock             *HashLockRequirement
	Ticket               *TicketRequirement
	Exchange             *ExchangeRequirement
}

type ImmediateFlowLimit struct {
	Limit AssetFlowLimit
}

type CumulativeFlowLimit struct {
	Limit AssetFlowLimit
}

type PeriodicFlowLimit struct {
	Limit             AssetFlowLimit
	PeriodDurationSec uint32
}

// TimeLock holds alternating lock/unlock instants, starting locked.
// Toggles must be non-empty and strictly increasing.
type TimeLock struct {
	Toggles []time.Time
}

// UnlockedAt reports whether the lock is open at instant now: it
// starts locked and flips state at every entry in Toggles up to now.
func (t TimeLock) UnlockedAt(now time.Time) bool {
	unlocked := false
	for _, toggle := range t.Toggles {
		if now.Before(toggle) {
			break
		}
		unlocked = !unlocked
	}
	return unlocked
}

type MinimumTankLevel struct {
	MinimumLevel Amount
}

// ReviewRequirement releases only against a create_request_for_review
// request that the host has approved through ApproveRequest and that a
// consume_approved_request_to_open query redeems (see query.go); a
// review_request_to_open query does not approve a request.
type ReviewRequirement struct {
	Reviewer account.Authority
}

type DocumentationRequirement struct {
	RequiredText string
}

// DelayRequirement releases only after a create_request_for_delay
// query has aged past Delay without a matching veto.
type DelayRequirement struct {
	Delay         time.Duration
	VetoAuthority account.Authority
}

type HashLockRequirement struct {
	Algorithm merkle.HashAlgorithm
	Hash      []byte
}

// TicketRequirement releases against ed25519-signed tickets
// authorizing a specific withdrawal amount (see requirement_calc.go).
type TicketRequirement struct {
	Signer *account.Account
}

// ExchangeRequirement releases asset at ReleasePerTick for every
// TickAmount accumulated on the meter attachment MeterIndex measures.
type ExchangeRequirement struct {
	MeterIndex     AttachmentIndex
	TickAmount     Amount
	ReleasePerTick AssetFlowLimit
}

// Tap is one release point on a tank: OpenAuthority gates who may call
// tap_open, Requirements are AND-ed together by requirement_calc.go,
// and OutputSink names where a successful release goes.
//
// A tap may be created disconnected (Connected false) only if
// ConnectAuthority is non-null; such a tap cannot be opened until
// tank_update's taps_replace, gated by the tank's emergency connect
// authority, connects it. A tap with a null ConnectAuthority must be
// Connected at creation and stays that way for life.
type Tap struct {
	OpenAuthority    account.Authority
	ConnectAuthority account.Authority
	Connected        bool
	Requirements     []TapRequirement
	OutputSink       Sink
	DestructorTap    bool // true only for the emergency tap
}

// TankSchematic is the shape of a tank: the single asset type it
// holds, its attachments and ordinary taps (each addressed by an
// id that, once assigned, is never reused), and its mandatory
// emergency tap.
//
// Attachments and Taps are keyed by id rather than held in order, so
// tank_update can remove an item (tombstoning its id) or replace one
// in place without disturbing any other item's id. AttachmentCounter
// and TapCounter record the next id to hand out; they only ever
// increase, even across removals.
type TankSchematic struct {
	Asset AssetID

	Attachments       map[AttachmentIndex]*Attachment
	AttachmentCounter AttachmentIndex

	EmergencyTap Tap

	Taps       map[TapIndex]*Tap
	TapCounter TapIndex
}

// NewTankSchematic builds a schematic from ordered attachment/tap
// lists, the way a tank_create operation does: ids are assigned
// sequentially starting at 0, in list order.
func NewTankSchematic(asset AssetID, emergencyTap Tap, attachments []Attachment, taps []Tap) TankSchematic {
	schematic := TankSchematic{
		Asset:        asset,
		EmergencyTap: emergencyTap,
		Attachments:  make(map[AttachmentIndex]*Attachment, len(attachments)),
		Taps:         make(map[TapIndex]*Tap, len(taps)),
	}
	for i := range attachments {
		a := attachments[i]
		schematic.Attachments[schematic.nextAttachmentID()] = &a
	}
	for i := range taps {
		t := taps[i]
		schematic.Taps[schematic.nextTapID()] = &t
	}
	return schematic
}

// nextAttachmentID hands out the next never-reused attachment id.
func (s *TankSchematic) nextAttachmentID() AttachmentIndex {
	id := s.AttachmentCounter
	s.AttachmentCounter++
	return id
}

// nextTapID hands out the next never-reused tap id.
func (s *TankSchematic) nextTapID() TapIndex {
	id := s.TapCounter
	s.TapCounter++
	return id
}

// RequirementAddress names one requirement slot on one tap.
type RequirementAddress struct {
	Tap         TapIndex
	Requirement RequirementIndex
}

// TankUpdate is the mutation set a tank_update operation applies to a
// schematic in place: structural tap/attachment add/remove/replace,
// plus a signed change to the deposit reserve. Removed ids are
// tombstoned; replaced ids keep their id but get an entirely new
// definition; added items receive freshly minted ids.
type TankUpdate struct {
	DepositDelta Amount
	DepositDebit bool // DepositDelta increases the reserve if true, decreases if false

	TapsRemove  []TapIndex
	TapsReplace map[TapIndex]Tap
	TapsAdd     []Tap

	AttachmentsRemove  []AttachmentIndex
	AttachmentsReplace map[AttachmentIndex]Attachment
	AttachmentsAdd     []Attachment
}

// TankAttachmentState is the mutable per-attachment state an
// asset_flow_meter accumulates.
type TankAttachmentState struct {
	MeteredAmount Amount
}

// PendingRequest is a review or delay request awaiting its gate: a
// review request waits on Approved being set by the host (via
// ApproveRequest, after its own off-chain reviewers sign off); a delay
// request instead matures on its own once CreatedAt+Delay has passed,
// unless vetoed (removed) first.
type PendingRequest struct {
	ID        uint64
	Amount    AssetFlowLimit
	CreatedAt time.Time
	Approved  bool
}

// TapRequirementState is the mutable per-requirement state that
// cumulative/periodic/exchange limits and review/delay/hash_lock/
// ticket requirements accumulate between tap_open calls.
// NextRequestID is a persistent counter, not a request count: it never
// decreases, so a cancelled request's id is never handed to a later
// one.
type TapRequirementState struct {
	AmountReleased   Amount
	PeriodNum        uint64
	NextRequestID    uint64
	Requests         []PendingRequest
	RevealedPreimage []byte
	UsedTickets      map[uint64]bool
}

// Tank is the runtime object: a schematic plus the mutable state that
// evolves as taps are opened and asset deposited. DepositReserve is
// the host-native-asset deposit backing the tank's existence, debited
// from the payer at tank_create and refunded (in whole or in part) to
// a claimant at tank_delete. CreationTime anchors every periodic flow
// limit's period-number computation for the tank's lifetime.
type Tank struct {
	ID                TankID
	Asset             AssetID
	Schematic         TankSchematic
	Balance           Amount
	DepositReserve    Amount
	CreationTime      time.Time
	AttachmentStates  map[AttachmentIndex]*TankAttachmentState
	RequirementStates map[RequirementAddress]*TapRequirementState
}

// AttachmentState returns (creating if absent) the mutable state for
// attachment idx.
func (t *Tank) AttachmentState(idx AttachmentIndex) *TankAttachmentState {
	if t.AttachmentStates == nil {
		t.AttachmentStates = make(map[AttachmentIndex]*TankAttachmentState)
	}
	s, ok := t.AttachmentStates[idx]
	if !ok {
		s = &TankAttachmentState{}
		t.AttachmentStates[idx] = s
	}
	return s
}

// RequirementState returns (creating if absent) the mutable state for
// requirement addr.
func (t *Tank) RequirementState(addr RequirementAddress) *TapRequirementState {
	if t.RequirementStates == nil {
		t.RequirementStates = make(map[RequirementAddress]*TapRequirementState)
	}
	s, ok := t.RequirementStates[addr]
	if !ok {
		s = &TapRequirementState{}
		t.RequirementStates[addr] = s
	}
	return s
}
