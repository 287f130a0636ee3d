// Package softaes implements the portable building blocks every Tachyon
// backend agrees on bit-for-bit: one AES round, lanewise add/xor, and
// carry-less multiplication over GF(2). Hardware backends replace only the
// AES round; the rest of the kernel is shared.
//
// The AES round here is the textbook four steps (SubBytes, ShiftRows,
// MixColumns, AddRoundKey) spelled out explicitly rather than table-driven,
// mirroring the reference portable kernel it was translated from.
package softaes

// sbox is the FIPS-197 S-box.
var sbox = [256]byte{
	0x63, 0x7c, 0x77, 0x7b, 0xf2, 0x6b, 0x6f, 0xc5, 0x30, 0x01, 0x67, 0x2b, 0xfe, 0xd7, 0xab, 0x76,
	0xca, 0x82, 0xc9, 0x7d, 0xfa, 0x59, 0x47, 0xf0, 0xad, 0xd4, 0xa2, 0xaf, 0x9c, 0xa4, 0x72, 0xc0,
	0xb7, 0xfd, 0x93, 0x26, 0x36, 0x3f, 0xf7, 0xcc, 0x34, 0xa5, 0xe5, 0xf1, 0x71, 0xd8, 0x31, 0x15,
	0x04, 0xc7, 0x23, 0xc3, 0x18, 0x96, 0x05, 0x9a, 0x07, 0x12, 0x80, 0xe2, 0xeb, 0x27, 0xb2, 0x75,
	0x09, 0x83, 0x2c, 0x1a, 0x1b, 0x6e, 0x5a, 0xa0, 0x52, 0x3b, 0xd6, 0xb3, 0x29, 0xe3, 0x2f, 0x84,
	0x53, 0xd1, 0x00, 0xed, 0x20, 0xfc, 0xb1, 0x5b, 0x6a, 0xcb, 0xbe, 0x39, 0x4a, 0x4c, 0x58, 0xcf,
	0xd0, 0xef, 0xaa, 0xfb, 0x43, 0x4d, 0x33, 0x85, 0x45, 0xf9, 0x02, 0x7f, 0x50, 0x3c, 0x9f, 0xa8,
	0x51, 0xa3, 0x40, 0x8f, 0x92, 0x9d, 0x38, 0xf5, 0xbc, 0xb6, 0xda, 0x21, 0x10, 0xff, 0xf3, 0xd2,
	0xcd, 0x0c, 0x13, 0xec, 0x5f, 0x97, 0x44, 0x17, 0xc4, 0xa7, 0x7e, 0x3d, 0x64, 0x5d, 0x19, 0x73,
	0x60, 0x81, 0x4f, 0xdc, 0x22, 0x2a, 0x90, 0x88, 0x46, 0xee, 0xb8, 0x14, 0xde, 0x5e, 0x0b, 0xdb,
	0xe0, 0x32, 0x3a, 0x0a, 0x49, 0x06, 0x24, 0x5c, 0xc2, 0xd3, 0xac, 0x62, 0x91, 0x95, 0xe4, 0x79,
	0xe7, 0xc8, 0x37, 0x6d, 0x8d, 0xd5, 0x4e, 0xa9, 0x6c, 0x56, 0xf4, 0xea, 0x65, 0x7a, 0xae, 0x08,
	0xba, 0x78, 0x25, 0x2e, 0x1c, 0xa6, 0xb4, 0xc6, 0xe8, 0xdd, 0x74, 0x1f, 0x4b, 0xbd, 0x8b, 0x8a,
	0x70, 0x3e, 0xb5, 0x66, 0x48, 0x03, 0xf6, 0x0e, 0x61, 0x35, 0x57, 0xb9, 0x86, 0xc1, 0x1d, 0x9e,
	0xe1, 0xf8, 0x98, 0x11, 0x69, 0xd9, 0x8e, 0x94, 0x9b, 0x1e, 0x87, 0xe9, 0xce, 0x55, 0x28, 0xdf,
	0x8c, 0xa1, 0x89, 0x0d, 0xbf, 0xe6, 0x42, 0x68, 0x41, 0x99, 0x2d, 0x0f, 0xb0, 0x54, 0xbb, 0x16,
}

// Lane is one 128-bit AES block, carried as two little-endian 64-bit words
// so it maps directly onto hardware SIMD lane pairs without a byte-order
// conversion at the boundary.
type Lane struct {
	Lo, Hi uint64
}

// LaneFromU64s builds a Lane from its low and high 64-bit words.
func LaneFromU64s(lo, hi uint64) Lane {
	return Lane{Lo: lo, Hi: hi}
}

func (l Lane) bytes() [16]byte {
	var b [16]byte
	putU64(b[0:8], l.Lo)
	putU64(b[8:16], l.Hi)
	return b
}

func laneFromBytes(b [16]byte) Lane {
	return Lane{Lo: getU64(b[0:8]), Hi: getU64(b[8:16])}
}

func putU64(b []byte, v uint64) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
	b[4] = byte(v >> 32)
	b[5] = byte(v >> 40)
	b[6] = byte(v >> 48)
	b[7] = byte(v >> 56)
}

func getU64(b []byte) uint64 {
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}

// Xor returns a^b, lanewise byte XOR.
func (l Lane) Xor(o Lane) Lane {
	return Lane{Lo: l.Lo ^ o.Lo, Hi: l.Hi ^ o.Hi}
}

// Add returns a+b, lanewise wrapping 64-bit integer add (not a GF(2) op —
// matches the reference add_epi64 used in feed-forward mixing).
func (l Lane) Add(o Lane) Lane {
	return Lane{Lo: l.Lo + o.Lo, Hi: l.Hi + o.Hi}
}

// TernaryXor returns a^b^c.
func TernaryXor(a, b, c Lane) Lane {
	return a.Xor(b).Xor(c)
}

// gfDouble multiplies b by 2 in GF(2^8) under the AES reduction polynomial,
// branchless so the bit shifted out of the top never drives a data-dependent
// branch.
func gfDouble(b byte) byte {
	return (b << 1) ^ ((b >> 7) * 0x1b)
}

func mixColumn(c []byte) {
	t0, t1, t2, t3 := c[0], c[1], c[2], c[3]
	c[0] = gfDouble(t0^t1) ^ t1 ^ t2 ^ t3
	c[1] = gfDouble(t1^t2) ^ t2 ^ t3 ^ t0
	c[2] = gfDouble(t2^t3) ^ t3 ^ t0 ^ t1
	c[3] = gfDouble(t3^t0) ^ t0 ^ t1 ^ t2
}

// AESRound applies one AES encryption round (SubBytes, ShiftRows,
// MixColumns, AddRoundKey) to state, keyed by key. This is the single
// primitive every backend must reproduce bit-exactly; hardware backends
// call AESENC instead of this function but must agree with it on every
// input.
func AESRound(state, key Lane) Lane {
	s := state.bytes()

	for i := range s {
		s[i] = sbox[s[i]]
	}

	// ShiftRows: row r (bytes r, r+4, r+8, r+12) rotates left by r.
	tmp := s[1]
	s[1] = s[5]
	s[5] = s[9]
	s[9] = s[13]
	s[13] = tmp

	tmp1, tmp2 := s[2], s[6]
	s[2] = s[10]
	s[6] = s[14]
	s[10] = tmp1
	s[14] = tmp2

	tmp = s[15]
	s[15] = s[11]
	s[11] = s[7]
	s[7] = s[3]
	s[3] = tmp

	mixColumn(s[0:4])
	mixColumn(s[4:8])
	mixColumn(s[8:12])
	mixColumn(s[12:16])

	kb := key.bytes()
	var out [16]byte
	for i := range out {
		out[i] = s[i] ^ kb[i]
	}
	return laneFromBytes(out)
}

// clmul64 carry-less-multiplies two 64-bit values, widening to 128 bits.
// The bit loop is branchless: each bit of b becomes an all-ones/all-zeros
// mask via two's-complement negation, and the XOR accumulation always runs,
// so no data-dependent branch leaks timing.
func clmul64(a, b uint64) (lo, hi uint64) {
	for i := uint(0); i < 64; i++ {
		mask := -((b >> i) & 1)
		msgLo := a << i
		var msgHi uint64
		if i != 0 {
			msgHi = a >> (64 - i)
		}
		lo ^= msgLo & mask
		hi ^= msgHi & mask
	}
	return lo, hi
}

// Clmulepi64 reproduces PCLMULQDQ's immediate-selected carry-less multiply:
// imm's bit 4 selects a's high or low half, bit 0 selects b's.
func Clmulepi64(a, b Lane, imm int) Lane {
	aVal := a.Lo
	if imm&0x10 != 0 {
		aVal = a.Hi
	}
	bVal := b.Lo
	if imm&0x01 != 0 {
		bVal = b.Hi
	}
	lo, hi := clmul64(aVal, bVal)
	return Lane{Lo: lo, Hi: hi}
}
