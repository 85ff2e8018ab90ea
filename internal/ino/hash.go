// Package ino derives stable 64-bit inode numbers from tablet identifiers.
package ino

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/dchest/siphash"
)

// Root is the reserved inode number of the filesystem root.
const Root uint64 = 1

// keys are generated once per process so that ino(id) is deterministic for
// the lifetime of a mount without requiring stability across builds or
// restarts (spec leaves cross-build stability as an open question).
var k0, k1 = newKeys()

func newKeys() (uint64, uint64) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand failing is effectively unrecoverable; fall back to a
		// fixed pair rather than panic, since ino merely needs to be
		// consistent within this process, not secret.
		return 0x9ae16a3b2f90404f, 0xc949d7c7509e6557
	}
	return binary.LittleEndian.Uint64(buf[0:8]), binary.LittleEndian.Uint64(buf[8:16])
}

// high63Mask clears the sign bit of the hash before it is ever stored.
// modernc.org/sqlite's INTEGER columns are backed by int64, and
// database/sql's generic uint64 Scan destination formats the driver's
// int64 value with fmt and re-parses it with strconv.ParseUint — which
// rejects the leading '-' a full 64-bit hash with the high bit set would
// produce. Masking to 63 bits keeps every stored ino non-negative in
// int64's range so it always round-trips, at the cost of one bit of hash
// space — still effectively collision-free for the ≤10^5 entries a
// tablet's document pool holds (spec §3).
const high63Mask = uint64(1)<<63 - 1

// Of derives the inode number for an identifier. The reserved identifier
// "." always maps to Root.
func Of(id string) uint64 {
	if id == "." {
		return Root
	}
	return siphash.Hash(k0, k1, []byte(id)) & high63Mask
}

// OfParent derives the parent inode number, defaulting to Root when parent
// is nil (top-level entries).
func OfParent(parent *string) uint64 {
	if parent == nil {
		return Root
	}
	return Of(*parent)
}
