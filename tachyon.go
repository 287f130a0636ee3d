// Package tachyon implements the Tachyon hash construction: a 256-bit,
// hardware-AES-accelerated hash with domain separation, keyed (MAC) mode,
// key derivation, and a Merkle-tree parallel dispatcher for large inputs.
//
// It is an experimental, non-audited construction. It makes no
// cryptographic security claims, and the hash is not constant-time with
// respect to input content — only digest comparison (Verify, VerifyMAC)
// is.
package tachyon

import (
	"crypto/subtle"

	"github.com/byt3forg3/tachyon/internal/backend"
	"github.com/byt3forg3/tachyon/internal/constants"
	"github.com/byt3forg3/tachyon/internal/kernel"
	"github.com/byt3forg3/tachyon/internal/merkle"
)

// HashSize is the fixed digest size Tachyon produces, in bytes.
const HashSize = constants.HashSize

// KeySize is the fixed key size accepted by HashKeyed and DeriveKey.
const KeySize = constants.KeySize

// BackendName reports which AES-round implementation this process selected
// at first use: "AVX-512", "AES-NI", or "Portable".
func BackendName() string {
	return backend.ActiveName()
}

// Hash computes the Tachyon hash of input under the Generic domain with no
// seed and no key.
func Hash(input []byte) [HashSize]byte {
	return hashFull(input, DomainGeneric, 0, nil)
}

// HashSeeded computes the Tachyon hash of input under the Generic domain
// with the given seed. Useful for randomized hashing and SMHasher-style
// per-run seed variation.
func HashSeeded(input []byte, seed uint64) [HashSize]byte {
	return hashFull(input, DomainGeneric, seed, nil)
}

// HashWithDomain computes the Tachyon hash of input tagged with domain,
// preventing cross-protocol collisions between callers that otherwise hash
// the same bytes for different purposes. It panics if domain collides with
// an internally reserved domain (the Merkle tree's own Leaf/Node tags).
func HashWithDomain(input []byte, domain Domain) [HashSize]byte {
	if err := constants.ValidateDomain(domain); err != nil {
		panic(err)
	}
	return hashFull(input, domain, 0, nil)
}

// HashKeyed computes a keyed hash (MAC) of input under a 32-byte key.
func HashKeyed(input []byte, key *[KeySize]byte) [HashSize]byte {
	return hashFull(input, DomainMessageAuth, 0, key[:])
}

// Verify reports whether expected is the Tachyon hash of input, comparing
// in constant time.
func Verify(input []byte, expected *[HashSize]byte) bool {
	got := Hash(input)
	return subtle.ConstantTimeCompare(got[:], expected[:]) == 1
}

// VerifyMAC reports whether expected is the keyed hash of input under key,
// comparing in constant time.
func VerifyMAC(input []byte, key *[KeySize]byte, expected *[HashSize]byte) bool {
	got := HashKeyed(input, key)
	return subtle.ConstantTimeCompare(got[:], expected[:]) == 1
}

// HashFull is the most general one-shot entry point: domain, seed and an
// optional key (nil for unkeyed) are all caller-controlled independently.
// Hash, HashSeeded, HashWithDomain and HashKeyed are convenience wrappers
// around it with some parameters fixed. It panics if domain collides with
// an internally reserved domain.
func HashFull(input []byte, domain Domain, seed uint64, key *[KeySize]byte) [HashSize]byte {
	if err := constants.ValidateDomain(domain); err != nil {
		panic(err)
	}
	var k []byte
	if key != nil {
		k = key[:]
	}
	return hashFull(input, domain, seed, k)
}

// DeriveKey derives a 32-byte key from masterKey using a context string,
// the same way HKDF derives subkeys from a master secret: distinct context
// strings always yield independent-looking derived keys.
func DeriveKey(context string, masterKey *[KeySize]byte) [KeySize]byte {
	return hashFull([]byte(context), DomainKeyDerivation, 0, masterKey[:])
}

// hashFull is the single entry point every exported one-shot function
// funnels through. Inputs at or above the Merkle chunk size take the
// parallel tree path; everything else goes straight to the linear kernel,
// so a caller that happens to land exactly on the boundary from either
// side still gets the same digest the streaming Hasher would produce.
func hashFull(input []byte, domain Domain, seed uint64, key []byte) [HashSize]byte {
	if len(input) >= merkle.ChunkSize {
		return merkle.HashParallel(input, domain, seed, key)
	}
	return kernel.OneshotDirect(input, domain, seed, key)
}
