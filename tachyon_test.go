package tachyon

import (
	"bytes"
	"encoding/hex"
	"math/bits"
	"testing"

	"github.com/byt3forg3/tachyon/internal/merkle"
)

func patternBytes(n int) []byte {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = byte(i % 251)
	}
	return out
}

func decodeDigest(t *testing.T, s string) [HashSize]byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != HashSize {
		t.Fatalf("bad test digest %q: %v", s, err)
	}
	var out [HashSize]byte
	copy(out[:], b)
	return out
}

func TestHashPinnedVectors(t *testing.T) {
	cases := []struct {
		name  string
		input []byte
		want  string
	}{
		{"empty", []byte(""), "7f3485746a9ec855ec3ff1c8287e6c6cfbfa454a8bfa3dd71c3c3e5b39e7c549"},
		{"abc", []byte("abc"), "3138c10ba15fe7d7fad8c7fc380474a0be7737a4e6296d246304ed767903e85b"},
		{"Tachyon", []byte("Tachyon"), "120b887e8501bf2a342d397cc46d43b1796502ad75232e7f4c555379cef8c120"},
		{"256xA", bytes.Repeat([]byte("A"), 256), "bafe91fc7d73b8dadc19d0605fe3279762f67ea7f0f4e0ffb9c89634b112ce4d"},
		{"1024xA", bytes.Repeat([]byte("A"), 1024), "f14c3aeee98faa9f5c38f08c76f479d425f39da9b277743eff6c576f0470d509"},
		{"1MiBxA", bytes.Repeat([]byte("A"), 1<<20), "7693207f8983d9b991278d951cd4986589a5ffe611c05ee3011426b34dcc4689"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			want := decodeDigest(t, tc.want)
			if got := Hash(tc.input); got != want {
				t.Fatalf("Hash(%s) = %x, want %x", tc.name, got, want)
			}
		})
	}
}

func TestHashKeyedAndVerifyMAC(t *testing.T) {
	var key [KeySize]byte
	for i := range key {
		key[i] = byte(i)
	}
	msg := []byte("message")
	mac := HashKeyed(msg, &key)
	if !VerifyMAC(msg, &key, &mac) {
		t.Fatalf("VerifyMAC rejected a correct MAC")
	}
	var wrongKey [KeySize]byte
	wrongKey[0] = 0xFF
	if VerifyMAC(msg, &wrongKey, &mac) {
		t.Fatalf("VerifyMAC accepted a MAC under the wrong key")
	}
}

func TestVerify(t *testing.T) {
	data := []byte("Secure Data")
	digest := Hash(data)
	if !Verify(data, &digest) {
		t.Fatalf("Verify rejected a correct digest")
	}
	tampered := digest
	tampered[0] ^= 0xFF
	if Verify(data, &tampered) {
		t.Fatalf("Verify accepted a tampered digest")
	}
}

func TestDeriveKeyIsContextSeparated(t *testing.T) {
	var master [KeySize]byte
	a := DeriveKey("session-2024", &master)
	b := DeriveKey("database-encryption", &master)
	if a == b {
		t.Fatalf("distinct contexts derived identical keys")
	}
}

func TestHashWithDomainSeparates(t *testing.T) {
	data := []byte("data")
	fileHash := HashWithDomain(data, DomainFileChecksum)
	dbHash := HashWithDomain(data, DomainDatabaseIndex)
	if fileHash == dbHash {
		t.Fatalf("distinct domains produced identical digests")
	}
}

func TestStreamingMatchesOneshot(t *testing.T) {
	sizes := []int{0, 1, 63, 64, 1000, merkle.ChunkSize, merkle.ChunkSize + 1, merkle.ChunkSize*3 + 5}
	for _, n := range sizes {
		input := patternBytes(n)
		want := HashWithDomain(input, DomainContentAddressed)

		h := NewHasherWithDomain(DomainContentAddressed)
		_, _ = h.Write(input)
		got := h.Sum256()

		if got != want {
			t.Fatalf("size %d: streaming=%x oneshot=%x diverged", n, got, want)
		}
	}
}

func TestChunkedWrites(t *testing.T) {
	input := patternBytes(merkle.ChunkSize*2 + 777)
	full := Hash(input)

	hasher := NewHasher()
	for offset := 0; offset < len(input); {
		chunk := 1
		if remain := len(input) - offset; remain > 4099 {
			chunk = (offset % 4099) + 1
		}
		end := offset + chunk
		if end > len(input) {
			end = len(input)
		}
		_, _ = hasher.Write(input[offset:end])
		offset = end
	}
	got := hasher.Sum256()
	if got != full {
		t.Fatalf("chunked mismatch\nwant=%x\ngot =%x", full, got)
	}
}

func TestHasherSetKeyMatchesHashKeyed(t *testing.T) {
	var key [KeySize]byte
	for i := range key {
		key[i] = byte(2 * i)
	}
	input := patternBytes(merkle.ChunkSize + 42)

	want := hashFull(input, DomainMessageAuth, 0, key[:])

	h := NewHasherWithDomain(DomainMessageAuth)
	h.SetKey(key[:])
	_, _ = h.Write(input)
	got := h.Sum256()

	if got != want {
		t.Fatalf("SetKey streaming digest diverged from one-shot keyed digest")
	}
}

func TestHasherReset(t *testing.T) {
	h := NewHasher()
	_, _ = h.Write([]byte("first"))
	h.Reset()
	_, _ = h.Write([]byte("second"))
	got := h.Sum256()
	want := Hash([]byte("second"))
	if got != want {
		t.Fatalf("Reset did not clear prior state")
	}
}

func hammingDistance(a, b [HashSize]byte) int {
	n := 0
	for i := range a {
		n += bits.OnesCount8(a[i] ^ b[i])
	}
	return n
}

// TestAvalancheSingleBitFlip checks the ~50% avalanche property spec.md §8
// names: flipping one input bit should flip roughly half the output bits,
// averaged across many flip positions, not some small or all-or-nothing
// fraction that would betray a structural weakness.
func TestAvalancheSingleBitFlip(t *testing.T) {
	base := patternBytes(128)
	baseHash := Hash(base)

	const wantBits = HashSize * 8 / 2
	var total, samples int
	for bit := 0; bit < len(base)*8; bit += 5 {
		flipped := append([]byte(nil), base...)
		flipped[bit/8] ^= 1 << (bit % 8)
		total += hammingDistance(baseHash, Hash(flipped))
		samples++
	}

	avg := float64(total) / float64(samples)
	if avg < float64(wantBits)*0.75 || avg > float64(wantBits)*1.25 {
		t.Fatalf("average flipped output bits per single input-bit flip = %.1f, want close to %d (50%% avalanche)", avg, wantBits)
	}
}

func TestHashReaderMatchesHash(t *testing.T) {
	input := patternBytes(merkle.ChunkSize + 500)
	got, err := HashReader(bytes.NewReader(input), 0, nil)
	if err != nil {
		t.Fatalf("HashReader: %v", err)
	}
	want := Hash(input)
	if got != want {
		t.Fatalf("HashReader = %x, want %x", got, want)
	}
}
