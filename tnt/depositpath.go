// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tnt

import "github.com/bitmark-inc/bitmarkd/fault"

// DepositPathStep is one element of a deposit_source_restrictor
// pattern. A non-wildcard step names a specific sink that must match
// exactly at that position; a wildcard step matches any single sink,
// or - when Repeatable - any run of one or more sinks.
type DepositPathStep struct {
	Wildcard   bool
	Repeatable bool // only meaningful when Wildcard
	Sink       Sink // only meaningful when !Wildcard
}

// WildcardStep builds a single-sink wildcard step.
func WildcardStep() DepositPathStep { return DepositPathStep{Wildcard: true} }

// RepeatableWildcardStep builds a wildcard matching one or more sinks.
func RepeatableWildcardStep() DepositPathStep {
	return DepositPathStep{Wildcard: true, Repeatable: true}
}

// SinkStep builds a step that must match sink exactly.
func SinkStep(s Sink) DepositPathStep { return DepositPathStep{Sink: s} }

func isTerminalSinkStep(s DepositPathStep) bool {
	return !s.Wildcard && (s.Sink.Kind == SinkAccount || s.Sink.Kind == SinkTank || s.Sink.Kind == SinkSameTank)
}

func isTankSinkStep(s DepositPathStep) bool {
	return !s.Wildcard && (s.Sink.Kind == SinkTank || s.Sink.Kind == SinkSameTank)
}

// ValidateDepositPath checks the pattern well-formedness rules: a
// non-empty path of at least two steps, an origin step that names a
// terminal sink or a wildcard, a final step that names a tank (or
// same_tank) sink or a wildcard, no two adjacent repeatable
// wildcards, and not a pattern made entirely of wildcards.
func ValidateDepositPath(path []DepositPathStep) error {
	if 0 == len(path) {
		return fault.ErrBadDepositPath
	}
	if len(path) < 2 {
		return fault.ErrBadDepositPath
	}

	first := path[0]
	if !first.Wildcard && !isTerminalSinkStep(first) {
		return fault.ErrBadDepositPath
	}

	last := path[len(path)-1]
	if !last.Wildcard && !isTankSinkStep(last) {
		return fault.ErrBadDepositPath
	}

	allWildcard := true
	for i, step := range path {
		if !step.Wildcard {
			allWildcard = false
		}
		if step.Wildcard && step.Repeatable && i+1 < len(path) {
			next := path[i+1]
			if next.Wildcard && next.Repeatable {
				return fault.ErrBadDepositPath
			}
		}
	}
	if allWildcard {
		return fault.ErrBadDepositPath
	}

	return nil
}

// ValidateDepositPaths checks the pattern-list well-formedness rule: a
// deposit_source_restrictor names a non-empty list of patterns, each
// individually well formed per ValidateDepositPath.
func ValidateDepositPaths(paths [][]DepositPathStep) error {
	if 0 == len(paths) {
		return fault.ErrBadDepositPath
	}
	for _, path := range paths {
		if err := ValidateDepositPath(path); nil != err {
			return err
		}
	}
	return nil
}

// DepositPathVisit is one hop in the actual chain of sinks a deposit
// traveled through before arriving at a restricted tank. Tank is the
// "current tank" Sink was resolved against (for same_tank equality).
type DepositPathVisit struct {
	Sink Sink
	Tank TankID
}

// MatchDepositPath reports whether the actual chain of visits a
// deposit traveled (ordered from origin to, but excluding, the
// restricted tank itself) matches pattern.
func MatchDepositPath(pattern []DepositPathStep, actual []DepositPathVisit) bool {
	return matchDepositPathFrom(pattern, actual, 0, 0)
}

// MatchDepositPaths reports the index of the first pattern in
// patterns (tried in order) whose chain matches actual, or (0, false)
// if none match.
func MatchDepositPaths(patterns [][]DepositPathStep, actual []DepositPathVisit) (int, bool) {
	for i, pattern := range patterns {
		if MatchDepositPath(pattern, actual) {
			return i, true
		}
	}
	return 0, false
}

func matchDepositPathFrom(pattern []DepositPathStep, actual []DepositPathVisit, pi, ai int) bool {
	if pi == len(pattern) {
		return ai == len(actual)
	}
	step := pattern[pi]

	if step.Wildcard && step.Repeatable {
		for consume := 1; ai+consume <= len(actual); consume++ {
			if matchDepositPathFrom(pattern, actual, pi+1, ai+consume) {
				return true
			}
		}
		return false
	}

	if ai >= len(actual) {
		return false
	}

	if step.Wildcard {
		return matchDepositPathFrom(pattern, actual, pi+1, ai+1)
	}

	if !SinkEqual(step.Sink, actual[ai].Tank, actual[ai].Sink, actual[ai].Tank) {
		return false
	}
	return matchDepositPathFrom(pattern, actual, pi+1, ai+1)
}
