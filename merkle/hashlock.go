// Copyright (c) 2014-2016 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package merkle

import (
	"crypto/sha1"
	"crypto/sha256"

	"golang.org/x/crypto/ripemd160"
)

// HashAlgorithm identifies a preimage hash function usable by a
// hash_lock tap requirement.
type HashAlgorithm int

const (
	SHA256 HashAlgorithm = iota
	SHA1
	RIPEMD160
	Hash160 // ripemd160(sha256(x))
	algorithmLimit
)

// ValidHashAlgorithm reports whether a is a known algorithm.
func ValidHashAlgorithm(a HashAlgorithm) bool {
	return a >= SHA256 && a < algorithmLimit
}

// HashPreimage hashes preimage with algorithm a, matching the digest
// stored in a hash_lock requirement.
func HashPreimage(a HashAlgorithm, preimage []byte) []byte {
	switch a {
	case SHA256:
		d := sha256.Sum256(preimage)
		return d[:]
	case SHA1:
		d := sha1.Sum(preimage)
		return d[:]
	case RIPEMD160:
		h := ripemd160.New()
		h.Write(preimage)
		return h.Sum(nil)
	case Hash160:
		d := sha256.Sum256(preimage)
		h := ripemd160.New()
		h.Write(d[:])
		return h.Sum(nil)
	default:
		return nil
	}
}
