package tachyon

import (
	"hash"

	"github.com/byt3forg3/tachyon/internal/constants"
	"github.com/byt3forg3/tachyon/internal/kernel"
	"github.com/byt3forg3/tachyon/internal/merkle"
)

// Hasher is a streaming Tachyon hasher with O(log n) memory: it buffers at
// most one chunk's worth of bytes and folds completed chunks into a Merkle
// stack as they arrive. Its digest for any input is bit-identical to the
// one-shot functions in this package for the same input, domain, seed and
// key.
type Hasher struct {
	buffer    []byte
	stack     *merkle.Stack
	domain    Domain
	seed      uint64
	key       []byte
	totalLen  uint64
	finalized bool
}

var _ hash.Hash = (*Hasher)(nil)

// NewHasher constructs a hasher for the default (Generic) domain and no seed.
func NewHasher() *Hasher {
	return NewHasherFull(DomainGeneric, 0)
}

// NewHasherWithDomain constructs a hasher tagged with domain. It panics if
// domain collides with an internally reserved domain.
func NewHasherWithDomain(domain Domain) *Hasher {
	return NewHasherFull(domain, 0)
}

// NewHasherFull constructs a hasher with both a domain and a seed. It
// panics if domain collides with an internally reserved domain.
func NewHasherFull(domain Domain, seed uint64) *Hasher {
	if err := constants.ValidateDomain(domain); err != nil {
		panic(err)
	}
	return &Hasher{
		buffer: make([]byte, 0, merkle.ChunkSize),
		stack:  merkle.NewStack(seed, nil),
		domain: domain,
		seed:   seed,
	}
}

// SetKey installs a 32-byte MAC key. Call it before the first Write — the
// stack compresses every node it has already built with whatever key was
// active at the time, so setting it mid-stream produces a hash no one-shot
// call can reproduce.
func (h *Hasher) SetKey(key []byte) {
	h.key = key
	h.stack.SetKey(key)
}

func (h *Hasher) processChunks(data []byte) {
	for len(data) >= merkle.ChunkSize {
		leaf := kernel.OneshotDirect(data[:merkle.ChunkSize], constants.DomainLeaf, h.seed, h.key)
		h.stack.Push(leaf)
		data = data[merkle.ChunkSize:]
	}
}

// Write adds data to the hasher. It returns ErrHasherFinalized if the
// hasher's Finalize method has already been called — Tachyon's streaming
// state is one-shot, and a Write past that point would otherwise silently
// produce a digest over a stream the caller believes already ended.
func (h *Hasher) Write(p []byte) (int, error) {
	if h.finalized {
		return 0, constants.ErrHasherFinalized
	}

	n := len(p)
	h.totalLen += uint64(n)

	// Fast path: buffer is empty and p alone spans whole chunks — process
	// them straight out of p without copying into the buffer first.
	if len(h.buffer) == 0 && len(p) >= merkle.ChunkSize {
		complete := (len(p) / merkle.ChunkSize) * merkle.ChunkSize
		h.processChunks(p[:complete])
		if rem := p[complete:]; len(rem) > 0 {
			h.buffer = append(h.buffer, rem...)
		}
		return n, nil
	}

	h.buffer = append(h.buffer, p...)
	if len(h.buffer) >= merkle.ChunkSize {
		complete := (len(h.buffer) / merkle.ChunkSize) * merkle.ChunkSize
		h.processChunks(h.buffer[:complete])
		h.buffer = append(h.buffer[:0], h.buffer[complete:]...)
	}
	return n, nil
}

func (h *Hasher) finalize() [32]byte {
	if len(h.buffer) >= merkle.ChunkSize {
		complete := (len(h.buffer) / merkle.ChunkSize) * merkle.ChunkSize
		h.processChunks(h.buffer[:complete])
		h.buffer = h.buffer[complete:]
	}
	// Finalize pushes the trailing leaf onto the stack it is called on, so
	// run it on a copy to leave the hasher's own stack untouched.
	stack := *h.stack
	return stack.Finalize(h.buffer, h.domain, h.totalLen)
}

// Sum appends the 32-byte digest to b and returns the resulting slice. It
// does not consume the hasher — further Write calls continue the same
// stream — matching hash.Hash's contract. It panics with ErrHasherFinalized
// if Finalize has already been called, since hash.Hash's Sum has no error
// return to report that state error through.
func (h *Hasher) Sum(b []byte) []byte {
	if h.finalized {
		panic(constants.ErrHasherFinalized)
	}
	out := h.finalize()
	return append(b, out[:]...)
}

// Sum256 returns the 32-byte digest of everything written so far. Like Sum,
// it panics with ErrHasherFinalized if Finalize has already been called.
func (h *Hasher) Sum256() [constants.HashSize]byte {
	if h.finalized {
		panic(constants.ErrHasherFinalized)
	}
	return h.finalize()
}

// Finalize completes the hash and consumes the hasher: any later Write
// returns ErrHasherFinalized, and Sum, Sum256 and Finalize itself panic
// with it.
// The reference construction enforces this at compile time by taking
// finalize's receiver by value; Go has no equivalent, so this is a runtime
// check instead of a type error.
func (h *Hasher) Finalize() [32]byte {
	if h.finalized {
		panic(constants.ErrHasherFinalized)
	}
	out := h.finalize()
	h.finalized = true
	return out
}

// Reset clears accumulated state, keeping the domain, seed and key, and
// un-finalizes the hasher.
func (h *Hasher) Reset() {
	h.buffer = h.buffer[:0]
	h.stack = merkle.NewStack(h.seed, h.key)
	h.totalLen = 0
	h.finalized = false
}

// Size returns Tachyon's fixed digest size, 32 bytes.
func (h *Hasher) Size() int { return constants.HashSize }

// BlockSize returns the bulk kernel's per-call compression block size, 512
// bytes. It is not a requirement on callers — Write accepts any length.
func (h *Hasher) BlockSize() int { return constants.BlockSize }
