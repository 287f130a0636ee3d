// Command libtachyon exposes Tachyon to C/C++ callers through a small,
// panic-safe cgo surface, built with `go build -buildmode=c-shared` (or
// c-archive). Each exported function validates its pointers, recovers from
// any panic inside the pure-Go implementation (a missing CPU feature, an
// invalid domain or key length, say), and reports success or failure
// through an int32 status code rather than ever letting a Go panic cross
// the cgo boundary. The streaming tachyon_hasher_* functions hand C callers
// an opaque handle minted by runtime/cgo instead of a raw Go pointer, so the
// Go runtime's garbage collector never has to reason about a pointer a C
// caller is holding.
package main

/*
#include <stdint.h>
#include <stddef.h>
*/
import "C"

import (
	"runtime/cgo"
	"unsafe"

	"github.com/byt3forg3/tachyon"
	"github.com/byt3forg3/tachyon/internal/constants"
)

// Domain constants mirrored for C callers.
const (
	domainGeneric          = constants.DomainGeneric
	domainFileChecksum     = constants.DomainFileChecksum
	domainKeyDerivation    = constants.DomainKeyDerivation
	domainMessageAuth      = constants.DomainMessageAuth
	domainDatabaseIndex    = constants.DomainDatabaseIndex
	domainContentAddressed = constants.DomainContentAddressed
)

//export TachyonDomainGeneric
func TachyonDomainGeneric() C.uint64_t { return C.uint64_t(domainGeneric) }

//export TachyonDomainFileChecksum
func TachyonDomainFileChecksum() C.uint64_t { return C.uint64_t(domainFileChecksum) }

//export TachyonDomainKeyDerivation
func TachyonDomainKeyDerivation() C.uint64_t { return C.uint64_t(domainKeyDerivation) }

//export TachyonDomainMessageAuth
func TachyonDomainMessageAuth() C.uint64_t { return C.uint64_t(domainMessageAuth) }

//export TachyonDomainDatabaseIndex
func TachyonDomainDatabaseIndex() C.uint64_t { return C.uint64_t(domainDatabaseIndex) }

//export TachyonDomainContentAddressed
func TachyonDomainContentAddressed() C.uint64_t { return C.uint64_t(domainContentAddressed) }

// statusOK, statusNullPointer and statusPanic mirror the reference binding's
// 0 / -1 / -2 return-code contract.
const (
	statusOK          = C.int32_t(0)
	statusNullPointer = C.int32_t(-1)
	statusPanic       = C.int32_t(-2)
)

func guard(f func()) (status C.int32_t) {
	status = statusOK
	defer func() {
		if recover() != nil {
			status = statusPanic
		}
	}()
	f()
	return
}

func inputSlice(ptr *C.uint8_t, length C.size_t) []byte {
	if length == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(ptr)), int(length))
}

//export tachyon_hash
func tachyon_hash(inputPtr *C.uint8_t, inputLen C.size_t, outputPtr *C.uint8_t) C.int32_t {
	if (inputPtr == nil && inputLen != 0) || outputPtr == nil {
		return statusNullPointer
	}
	return guard(func() {
		input := inputSlice(inputPtr, inputLen)
		h := tachyon.Hash(input)
		out := unsafe.Slice((*byte)(unsafe.Pointer(outputPtr)), tachyon.HashSize)
		copy(out, h[:])
	})
}

//export tachyon_hash_seeded
func tachyon_hash_seeded(inputPtr *C.uint8_t, inputLen C.size_t, seed C.uint64_t, outputPtr *C.uint8_t) C.int32_t {
	if (inputPtr == nil && inputLen != 0) || outputPtr == nil {
		return statusNullPointer
	}
	return guard(func() {
		input := inputSlice(inputPtr, inputLen)
		h := tachyon.HashSeeded(input, uint64(seed))
		out := unsafe.Slice((*byte)(unsafe.Pointer(outputPtr)), tachyon.HashSize)
		copy(out, h[:])
	})
}

// keyFromRaw validates a raw (pointer, length) key pair against KeySize and
// copies it into a fixed-size array, returning nil if keyPtr is nil. It
// panics with constants.ErrInvalidKeySize on a length mismatch — the one
// argument-error class the pure-Go API's *[KeySize]byte signature makes
// unreachable but a raw C pointer cannot.
func keyFromRaw(keyPtr *C.uint8_t, keyLen C.size_t) *[tachyon.KeySize]byte {
	if keyPtr == nil {
		return nil
	}
	if int(keyLen) != tachyon.KeySize {
		panic(constants.ErrInvalidKeySize)
	}
	var k [tachyon.KeySize]byte
	copy(k[:], unsafe.Slice((*byte)(unsafe.Pointer(keyPtr)), tachyon.KeySize))
	return &k
}

//export tachyon_hash_full
func tachyon_hash_full(inputPtr *C.uint8_t, inputLen C.size_t, domain C.uint64_t, seed C.uint64_t, keyPtr *C.uint8_t, keyLen C.size_t, outputPtr *C.uint8_t) C.int32_t {
	if (inputPtr == nil && inputLen != 0) || outputPtr == nil {
		return statusNullPointer
	}
	return guard(func() {
		input := inputSlice(inputPtr, inputLen)
		key := keyFromRaw(keyPtr, keyLen)
		h := tachyon.HashFull(input, tachyon.Domain(domain), uint64(seed), key)
		out := unsafe.Slice((*byte)(unsafe.Pointer(outputPtr)), tachyon.HashSize)
		copy(out, h[:])
	})
}

//export tachyon_hash_with_domain
func tachyon_hash_with_domain(inputPtr *C.uint8_t, inputLen C.size_t, domain C.uint64_t, outputPtr *C.uint8_t) C.int32_t {
	return tachyon_hash_full(inputPtr, inputLen, domain, 0, nil, 0, outputPtr)
}

//export tachyon_verify
func tachyon_verify(inputPtr *C.uint8_t, inputLen C.size_t, hashPtr *C.uint8_t) C.int32_t {
	if (inputPtr == nil && inputLen != 0) || hashPtr == nil {
		return statusNullPointer
	}
	var matched bool
	status := guard(func() {
		input := inputSlice(inputPtr, inputLen)
		want := unsafe.Slice((*byte)(unsafe.Pointer(hashPtr)), tachyon.HashSize)
		var expected [tachyon.HashSize]byte
		copy(expected[:], want)
		matched = tachyon.Verify(input, &expected)
	})
	if status != statusOK {
		return status
	}
	if matched {
		return C.int32_t(1)
	}
	return C.int32_t(0)
}

//export tachyon_hash_keyed
func tachyon_hash_keyed(inputPtr *C.uint8_t, inputLen C.size_t, keyPtr *C.uint8_t, keyLen C.size_t, outputPtr *C.uint8_t) C.int32_t {
	if (inputPtr == nil && inputLen != 0) || keyPtr == nil || outputPtr == nil {
		return statusNullPointer
	}
	return guard(func() {
		input := inputSlice(inputPtr, inputLen)
		key := keyFromRaw(keyPtr, keyLen)
		h := tachyon.HashKeyed(input, key)
		out := unsafe.Slice((*byte)(unsafe.Pointer(outputPtr)), tachyon.HashSize)
		copy(out, h[:])
	})
}

//export tachyon_verify_mac
func tachyon_verify_mac(inputPtr *C.uint8_t, inputLen C.size_t, keyPtr *C.uint8_t, keyLen C.size_t, macPtr *C.uint8_t) C.int32_t {
	if (inputPtr == nil && inputLen != 0) || keyPtr == nil || macPtr == nil {
		return statusNullPointer
	}
	var matched bool
	status := guard(func() {
		input := inputSlice(inputPtr, inputLen)
		key := keyFromRaw(keyPtr, keyLen)
		mac := unsafe.Slice((*byte)(unsafe.Pointer(macPtr)), tachyon.HashSize)
		var expected [tachyon.HashSize]byte
		copy(expected[:], mac)
		matched = tachyon.VerifyMAC(input, key, &expected)
	})
	if status != statusOK {
		return status
	}
	if matched {
		return C.int32_t(1)
	}
	return C.int32_t(0)
}

//export tachyon_derive_key
func tachyon_derive_key(contextPtr *C.char, contextLen C.size_t, masterKeyPtr *C.uint8_t, masterKeyLen C.size_t, outputPtr *C.uint8_t) C.int32_t {
	if (contextPtr == nil && contextLen != 0) || masterKeyPtr == nil || outputPtr == nil {
		return statusNullPointer
	}
	return guard(func() {
		var context string
		if contextLen > 0 {
			context = string(unsafe.Slice((*byte)(unsafe.Pointer(contextPtr)), int(contextLen)))
		}
		master := keyFromRaw(masterKeyPtr, masterKeyLen)
		derived := tachyon.DeriveKey(context, master)
		out := unsafe.Slice((*byte)(unsafe.Pointer(outputPtr)), tachyon.KeySize)
		copy(out, derived[:])
	})
}

// hasherHandle is the C-visible representation of a *tachyon.Hasher: an
// opaque handle minted by runtime/cgo, valid until tachyon_hasher_free.
type hasherHandle = C.uintptr_t

func hasherFromHandle(h hasherHandle) *tachyon.Hasher {
	return cgo.Handle(h).Value().(*tachyon.Hasher)
}

// newHasherHandle runs ctor under guard and mints a handle from its result.
// The zero Handle value is never minted by runtime/cgo, so returning the
// zero hasherHandle on a recovered panic (an invalid domain, here) is a
// safe failure sentinel for a C caller to check against.
func newHasherHandle(ctor func() *tachyon.Hasher) hasherHandle {
	var handle hasherHandle
	guard(func() {
		handle = hasherHandle(cgo.NewHandle(ctor()))
	})
	return handle
}

//export tachyon_hasher_new
func tachyon_hasher_new() hasherHandle {
	return newHasherHandle(tachyon.NewHasher)
}

//export tachyon_hasher_new_with_domain
func tachyon_hasher_new_with_domain(domain C.uint64_t) hasherHandle {
	return newHasherHandle(func() *tachyon.Hasher {
		return tachyon.NewHasherWithDomain(tachyon.Domain(domain))
	})
}

//export tachyon_hasher_new_seeded
func tachyon_hasher_new_seeded(domain C.uint64_t, seed C.uint64_t) hasherHandle {
	return newHasherHandle(func() *tachyon.Hasher {
		return tachyon.NewHasherFull(tachyon.Domain(domain), uint64(seed))
	})
}

//export tachyon_hasher_update
func tachyon_hasher_update(handle hasherHandle, inputPtr *C.uint8_t, inputLen C.size_t) C.int32_t {
	if inputPtr == nil && inputLen != 0 {
		return statusNullPointer
	}
	return guard(func() {
		h := hasherFromHandle(handle)
		if _, err := h.Write(inputSlice(inputPtr, inputLen)); err != nil {
			panic(err)
		}
	})
}

//export tachyon_hasher_finalize
func tachyon_hasher_finalize(handle hasherHandle, outputPtr *C.uint8_t) C.int32_t {
	if outputPtr == nil {
		return statusNullPointer
	}
	return guard(func() {
		digest := hasherFromHandle(handle).Finalize()
		out := unsafe.Slice((*byte)(unsafe.Pointer(outputPtr)), tachyon.HashSize)
		copy(out, digest[:])
	})
}

//export tachyon_hasher_free
func tachyon_hasher_free(handle hasherHandle) {
	guard(func() {
		cgo.Handle(handle).Delete()
	})
}

// main is required by package main but never runs: this binary only ever
// ships as a c-shared/c-archive library, never as an executable.
func main() {}
