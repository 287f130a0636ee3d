//go:build amd64 && goexperiment.simd

package backend

import (
	"simd/archsimd"

	"github.com/byt3forg3/tachyon/internal/softaes"
	"golang.org/x/sys/cpu"
)

func laneToVec(l softaes.Lane) archsimd.Uint8x16 {
	var b [16]byte
	putU64(b[0:8], l.Lo)
	putU64(b[8:16], l.Hi)
	return archsimd.LoadUint8x16(&b)
}

func vecToLane(v archsimd.Uint8x16) softaes.Lane {
	var b [16]byte
	v.Store(&b)
	return softaes.LaneFromU64s(getU64(b[0:8]), getU64(b[8:16]))
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

func singleWidthRound(state, key softaes.Lane) softaes.Lane {
	s := laneToVec(state)
	k := laneToVec(key)
	return vecToLane(s.AESEncryptOneRound(k))
}

func singleWidthRoundWide(states, keys [4]softaes.Lane) [4]softaes.Lane {
	var out [4]softaes.Lane
	for i := range out {
		out[i] = singleWidthRound(states[i], keys[i])
	}
	return out
}

// packWide composes four independent 128-bit lanes into one 512-bit
// register, generalizing the broadcast-pack idiom (which replicates a
// single 128-bit value across all sub-lanes) to four distinct values.
func packWide(a, b, c, d archsimd.Uint8x16) archsimd.Uint8x64 {
	lo := archsimd.Uint8x32FromUint8x16(a, b)
	hi := archsimd.Uint8x32FromUint8x16(c, d)
	return archsimd.Uint8x64FromUint8x32(lo, hi)
}

func unpackWide(v archsimd.Uint8x64) (a, b, c, d [16]byte) {
	var buf [64]byte
	v.Store(&buf)
	copy(a[:], buf[0:16])
	copy(b[:], buf[16:32])
	copy(c[:], buf[32:48])
	copy(d[:], buf[48:64])
	return
}

func wideRound(states, keys [4]softaes.Lane) [4]softaes.Lane {
	sv := packWide(laneToVec(states[0]), laneToVec(states[1]), laneToVec(states[2]), laneToVec(states[3]))
	kv := packWide(laneToVec(keys[0]), laneToVec(keys[1]), laneToVec(keys[2]), laneToVec(keys[3]))
	res := sv.AESEncryptOneRound(kv)

	a, b, c, d := unpackWide(res)
	return [4]softaes.Lane{
		softaes.LaneFromU64s(getU64(a[0:8]), getU64(a[8:16])),
		softaes.LaneFromU64s(getU64(b[0:8]), getU64(b[8:16])),
		softaes.LaneFromU64s(getU64(c[0:8]), getU64(c[8:16])),
		softaes.LaneFromU64s(getU64(d[0:8]), getU64(d[8:16])),
	}
}

func wideRoundSingle(state, key softaes.Lane) softaes.Lane {
	out := wideRound([4]softaes.Lane{state, state, state, state}, [4]softaes.Lane{key, key, key, key})
	return out[0]
}

func probeWideVector() (Backend, bool) {
	if !(archsimd.X86.AVX() && archsimd.X86.AVX512() && archsimd.X86.AVX512VAES() && archsimd.X86.AES()) {
		return Backend{}, false
	}
	return Backend{
		Name:      "AVX-512",
		Round:     wideRoundSingle,
		RoundWide: wideRound,
	}, true
}

func probeSingleWidth() (Backend, bool) {
	if !(cpu.X86.HasAES && archsimd.X86.AES()) {
		return Backend{}, false
	}
	return Backend{
		Name:      "AES-NI",
		Round:     singleWidthRound,
		RoundWide: singleWidthRoundWide,
	}, true
}

func init() {
	candidates = append(candidates, probeWideVector, probeSingleWidth)
}
