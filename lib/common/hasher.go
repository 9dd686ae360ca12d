// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package common

import (
	"encoding/binary"

	"github.com/OneOfOne/xxhash"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Blake2b128 returns the 16 bytes blake2b digest of in.
func Blake2b128(in []byte) []byte {
	// blake2b.New only fails on sizes above 64 or keys above 64 bytes.
	h, _ := blake2b.New(16, nil)
	_, _ = h.Write(in)
	return h.Sum(nil)
}

// Blake2b256 returns the 32 bytes blake2b digest of in, used for block,
// extrinsic and long payload hashes.
func Blake2b256(in []byte) Hash {
	return blake2b.Sum256(in)
}

// Keccak256 returns the legacy keccak256 digest of in, as hashed by
// Ethereum compatible chains.
func Keccak256(in []byte) (digest Hash) {
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write(in)
	h.Sum(digest[:0])
	return digest
}

// Twox64 returns the 8 bytes xxHash64 digest of in with seed 0.
func Twox64(in []byte) []byte {
	return twox(in, 1)
}

// Twox128 returns the 16 bytes twox digest of in, used for pallet and
// storage item prefixes.
func Twox128(in []byte) []byte {
	return twox(in, 2)
}

// Twox256 returns the 32 bytes twox digest of in.
func Twox256(in []byte) []byte {
	return twox(in, 4)
}

// twox concatenates the little endian xxHash64 digests of in
// computed with the seeds 0 to rounds-1.
func twox(in []byte, rounds int) []byte {
	out := make([]byte, 0, 8*rounds)
	for seed := 0; seed < rounds; seed++ {
		h := xxhash.NewS64(uint64(seed))
		_, _ = h.Write(in)
		out = binary.LittleEndian.AppendUint64(out, h.Sum64())
	}
	return out
}
