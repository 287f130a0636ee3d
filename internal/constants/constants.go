// Package constants holds the frozen numeric tables that define Tachyon.
//
// Every base constant here (other than the golden ratio) is the fractional
// part of the natural logarithm of a prime, scaled to 64 bits:
// frac(ln(p)) * 2^64. RKChain and ShortInit are precomputed states rather
// than logarithms.
// That makes the tables independently reproducible and gives the
// construction a "nothing up my sleeve" argument. Primes are assigned
// consecutively, partitioned by purpose; see the comment blocks below.
//
// Changing any of these values changes every digest Tachyon ever produced.
package constants

import "errors"

const (
	// Rounds is the AES-round count for full diffusion in the bulk and
	// short kernels.
	Rounds = 10

	// HashSize is the digest width in bytes. Tachyon only ever produces
	// 256-bit output.
	HashSize = 32

	// KeySize is the MAC/derive-key key width in bytes.
	KeySize = 32

	// BlockSize is the bulk kernel's per-call compression block, in bytes
	// (32 lanes x 16 bytes).
	BlockSize = 512

	// RemainderChunkSize is the finalizer's mini-compression chunk size.
	RemainderChunkSize = 64

	// NumLanes is the number of 512-bit-equivalent lanes in the bulk state.
	NumLanes = 8

	// LaneStride is the number of 128-bit elements per lane.
	LaneStride = 4

	// VecSize is the byte width of one lane element (one AES block).
	VecSize = 16

	// ChunkSize is the Merkle leaf granularity used by the streaming
	// driver and the parallel one-shot path: 256 KiB.
	ChunkSize = 256 * 1024

	// MaxStackDepth bounds the Merkle stack: 64 slots cover any input
	// reachable at 256 KiB granularity (2^64 leaves would overflow a
	// length counter long before the stack would).
	MaxStackDepth = 64
)

// GoldenRatio is floor(2^64 / phi), the one constant not derived from a
// prime logarithm. It doubles as the "chaos" value mixed into length/domain
// commitments.
const GoldenRatio uint64 = 0x9E37_79B9_7F4A_7C15

// ChaosBase is an alias for GoldenRatio used in the metadata-word and
// key-whitening formulas; kept as a distinct name because the two values
// play unrelated roles even though they are numerically identical.
const ChaosBase uint64 = GoldenRatio

// Initialization bases, derived from frac(ln(2))..frac(ln(17)) for the
// seven primes 2..17, with the golden ratio inserted at C4 between ln(7)
// and ln(11).
const (
	C0 uint64 = 0xB172_17F7_D1CF_79AB // ln(2)
	C1 uint64 = 0x193E_A7AA_D030_A976 // ln(3)
	C2 uint64 = 0x9C04_1F7E_D8D3_36AF // ln(5)
	C3 uint64 = 0xF227_2AE3_25A5_7546 // ln(7)
	C4 uint64 = GoldenRatio           // phi
	C5 uint64 = 0x65DC_76EF_E6E9_76F7 // ln(11)
	C6 uint64 = 0x90A0_8566_318A_1FD0 // ln(13)
	C7 uint64 = 0xD54D_783F_4FEF_39DF // ln(17)
)

// InitBases lists C0..C7 in order for table-driven lane initialization.
var InitBases = [8]uint64{C0, C1, C2, C3, C4, C5, C6, C7}

// Whitening words pre-round every raw data load, frac(ln(19)) and
// frac(ln(23)).
const (
	Whitening0 uint64 = 0xF1C6_C0C0_9665_8E40 // ln(19)
	Whitening1 uint64 = 0x22AF_BFBA_367E_0122 // ln(23)
)

// KeyScheduleBase/KeyScheduleMult exist for parity with the reference key
// schedule derivation; Tachyon's frozen RKChain already bakes these in, so
// they are not consulted at runtime, only documented.
const (
	KeyScheduleBase uint64 = GoldenRatio
	KeyScheduleMult uint64 = 0x5E07_1979_BFC3_D7AC // ln(29)
)

// CLMULConstant/CLMULConstant2 are the two independent polynomial constants
// used by the quadratic CLMUL hardening step, frac(ln(31)) and frac(ln(193)).
const (
	CLMULConstant  uint64 = 0x6F19_C912_256B_3E22 // ln(31)
	CLMULConstant2 uint64 = 0x433F_AA0A_5398_8000 // ln(193)
)

// LaneOffsets are 32 unique per-lane additive constants, frac(ln(p)) for
// the 32 consecutive primes starting at 37.
var LaneOffsets = [32]uint64{
	0x9C65_1DC7_58F7_A6F2, // ln(37)
	0xB6AC_A8B1_D589_B575, // ln(41)
	0xC2DE_02C2_9D82_22CB, // ln(43)
	0xD9A3_45F2_1E16_CB31, // ln(47)
	0xF865_0D04_4795_568F, // ln(53)
	0x13D9_7E71_CA5E_2DA9, // ln(59)
	0x1C62_3AC4_9B03_386C, // ln(61)
	0x3466_BC4A_044B_5829, // ln(67)
	0x433E_FD09_35B2_3D6B, // ln(71)
	0x4A5B_8CC8_8BF9_8CD3, // ln(73)
	0x5E94_226B_EC5C_BFB8, // ln(79)
	0x6B39_2358_B920_6784, // ln(83)
	0x7D17_45EB_A2BD_8E2D, // ln(89)
	0x9320_4239_52FE_003B, // ln(97)
	0x9D78_89C6_EE8C_2F8E, // ln(101)
	0xA27D_9956_44FA_F994, // ln(103)
	0xAC3E_82AF_D1D6_DC79, // ln(107)
	0xB0FC_2CC0_5541_91F5, // ln(109)
	0xBA36_168C_E0D6_EE1D, // ln(113)
	0xD81C_A518_0B90_858D, // ln(127)
	0xE00C_EE88_B218_9A5C, // ln(131)
	0xEB83_DEB5_6027_349A, // ln(137)
	0xEF39_AF05_C2C4_931B, // ln(139)
	0x0102_A006_F9CB_3C2A, // ln(149)
	0x046C_738E_0014_C2F8, // ln(151)
	0x0E66_2006_8217_19E4, // ln(157)
	0x1800_035E_755E_C056, // ln(163)
	0x1E34_D7AD_75D7_A815, // ln(167)
	0x273E_1E31_1EA1_A70B, // ln(173)
	0x2FF8_8423_D216_0504, // ln(179)
	0x32D0_B391_A3CA_A870, // ln(181)
	0x4094_FDCB_1C2E_7EE1, // ln(191)
}

// RKChain is the precomputed 10-entry round-key chain, each entry a
// (lo, hi) pair. Reference: AESENC-iterating phi under itself.
var RKChain = [Rounds][2]uint64{
	{0x9E37_79B9_7F4A_7C15, 0xFBEB_0F56_99A3_0AE2},
	{0xE077_2D41_8B60_4247, 0xCB99_FBAD_2127_15AA},
	{0x9943_E41C_900E_A2BD, 0x3391_839B_4E1D_B7D2},
	{0x3FDD_17D0_1F01_E973, 0x4FE6_2D4E_63CB_7DB7},
	{0x7C5B_6818_36BF_20E5, 0x20EA_7205_0896_74B4},
	{0x57E5_2B0B_6FD1_22C4, 0x92E2_3D97_BDB0_1EAB},
	{0x9E66_7CEF_9217_7102, 0x1A17_61F6_D1C3_AAA5},
	{0x5976_F92D_468F_E2FD, 0xAE36_2340_5BAF_D085},
	{0xCD2A_F6F6_F29B_F341, 0xD310_BEDD_A16B_12D4},
	{0xD11A_12CC_D34B_BD1B, 0xAC09_BEFD_5925_A5FE},
}

// ShortInit is the precomputed 4-lane post-merge state for the short
// kernel's common case (seed=0, no key) — equal to running the bulk init
// with seed=0 and no key, merged down to 4 lanes.
var ShortInit = [LaneStride][2]uint64{
	{0x8572_268C_3E8B_949A, 0x5526_0EB0_F6D0_8B28},
	{0x7B6B_8694_04C5_10F3, 0x5815_3672_FF72_57BB},
	{0x23AE_5234_151A_861E, 0x436D_9112_8FA3_A475},
	{0x2D3E_A94F_6D07_F7BC, 0x31C0_28B3_04D2_3746},
}

// Domain tags. The six predefined IDs are small and wire-visible through
// digests; Leaf/Node are reserved for the Merkle construction and must
// never be reachable from a user-supplied domain.
const (
	DomainGeneric          uint64 = 0
	DomainFileChecksum     uint64 = 1
	DomainKeyDerivation    uint64 = 2
	DomainMessageAuth      uint64 = 3
	DomainDatabaseIndex    uint64 = 4
	DomainContentAddressed uint64 = 5

	DomainLeaf uint64 = 0xFFFF_FFFF_0000_0000
	DomainNode uint64 = 0xFFFF_FFFF_0000_0001

	// userDomainSentinel marks a custom domain; it is disjoint from every
	// predefined ID (0..5) and from DomainLeaf/DomainNode.
	userDomainSentinel uint64 = 0x1000_0000_0000_0000
)

// CustomDomain builds a user domain tag from a 16-bit id, setting the
// sentinel bit that keeps it out of the predefined and internal ranges.
func CustomDomain(id uint16) uint64 {
	return userDomainSentinel | uint64(id)
}

// IsReservedDomain reports whether d is one of the two internal Leaf/Node
// tags. Domains carrying the user-domain sentinel bit are not checked for
// having been built through CustomDomain.
func IsReservedDomain(d uint64) bool {
	return d == DomainLeaf || d == DomainNode
}

// IsUserDomain reports whether d is safe for a caller to pass as a domain
// tag: anything other than the two internal Leaf/Node tags the Merkle
// construction reserves for its own tree commitments.
func IsUserDomain(d uint64) bool {
	return !IsReservedDomain(d)
}

// ErrInvalidDomain is returned, or panicked with at boundaries that cannot
// return an error, when a caller-supplied domain collides with the
// internal Leaf/Node range.
var ErrInvalidDomain = errors.New("tachyon: domain collides with a reserved internal domain")

// ErrInvalidKeySize is returned when a raw byte key does not match
// KeySize. It is only reachable at the C ABI boundary, where a key arrives
// as a pointer and a length rather than a fixed-size Go array.
var ErrInvalidKeySize = errors.New("tachyon: key must be exactly KeySize bytes")

// ErrHasherFinalized is returned, or panicked with where the interface
// being satisfied has no error return, when a Hasher is used after its
// Finalize method has already consumed it.
var ErrHasherFinalized = errors.New("tachyon: hasher already finalized")

// ValidateDomain rejects any domain a caller must not be able to reach by
// hand.
func ValidateDomain(d uint64) error {
	if IsReservedDomain(d) {
		return ErrInvalidDomain
	}
	return nil
}
