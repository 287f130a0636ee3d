// Package kernel implements Tachyon's core compression algorithm: lane
// initialization, per-block bulk compression, and finalization. The
// algorithm calls its AES rounds through a backend.Backend — the
// process-wide active one for OneshotDirect, or an explicit one passed to
// OneshotDirectWithBackend — so it runs, bit-for-bit, under any backend:
// the portable software round or either hardware round from
// internal/backend.
package kernel

import (
	"github.com/byt3forg3/tachyon/internal/backend"
	"github.com/byt3forg3/tachyon/internal/constants"
	"github.com/byt3forg3/tachyon/internal/softaes"
)

// Lane is a single 128-bit AES block.
type Lane = softaes.Lane

// Round is the AES-round primitive the kernel calls. Swapping it swaps the
// backend; the algorithm around it never changes.
type Round func(state, key Lane) Lane

const (
	rounds             = constants.Rounds
	mid                = rounds / 2
	laneStride         = constants.LaneStride
	numLanes           = constants.NumLanes
	blockSize          = constants.BlockSize
	remainderChunkSize = constants.RemainderChunkSize
)

type state struct {
	acc    [32]Lane
	domain uint64
	seed   uint64
	key    [32]byte
	hasKey bool
	round  Round
	batch  func(states, keys [4]Lane) [4]Lane
}

func newState(domain, seed uint64, key []byte, b backend.Backend) *state {
	s := &state{domain: domain, seed: seed, round: b.Round, batch: b.RoundWide}
	if key != nil {
		s.hasKey = true
		copy(s.key[:], key)
	}
	return s
}

// round4 applies the AES round to four independent (state, key) pairs at
// once through the active backend's wide-vector primitive. Every group of
// exactly laneStride lanes in this kernel shares no data dependency within
// the group, which is what makes it safe to batch this way.
func (s *state) round4(states, keys [4]Lane) [4]Lane {
	return s.batch(states, keys)
}

func lane(lo, hi uint64) Lane { return softaes.LaneFromU64s(lo, hi) }

func rkChainLane(i int) Lane {
	return lane(constants.RKChain[i][0], constants.RKChain[i][1])
}

func loLane(i int) Lane {
	v := constants.LaneOffsets[i]
	return lane(v, v)
}

func laneFromBytes(b []byte) Lane {
	return softaes.LaneFromU64s(getU64(b[0:8]), getU64(b[8:16]))
}

func getU64(b []byte) uint64 {
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
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

func laneBytes(l Lane) [16]byte {
	var b [16]byte
	putU64(b[0:8], l.Lo)
	putU64(b[8:16], l.Hi)
	return b
}

// linearInit seeds all 32 accumulator lanes from the base constants, folds
// in the seed, and (if a key is present) absorbs it across every lane.
func (s *state) linearInit() {
	for i := range s.acc {
		base := constants.InitBases[i/laneStride]
		offset := uint64(i%laneStride) * 2
		s.acc[i] = lane(base+offset, base+offset+1)
	}

	seedVal := s.seed
	if seedVal == 0 {
		seedVal = constants.C5
	}
	seedVec := lane(seedVal, seedVal)
	for i := range s.acc {
		s.acc[i] = s.round(s.acc[i], seedVec)
	}

	if !s.hasKey {
		return
	}

	k0 := laneFromBytes(s.key[0:16])
	k1 := laneFromBytes(s.key[16:32])
	gr := lane(constants.GoldenRatio, constants.GoldenRatio)
	k2 := k0.Xor(gr)
	k3 := k1.Xor(gr)
	keys := [4]Lane{k0, k1, k2, k3}

	for i := 0; i < numLanes; i++ {
		lo := loLane(i)
		base := i * laneStride
		var withLo [4]Lane
		for j, key := range keys {
			withLo[j] = key.Add(lo)
		}
		group := [4]Lane{s.acc[base], s.acc[base+1], s.acc[base+2], s.acc[base+3]}
		group = s.round4(group, withLo)
		group = s.round4(group, keys)
		copy(s.acc[base:base+laneStride], group[:])
	}
}

// linearCompress folds one blockSize-byte block into the accumulator.
func (s *state) linearCompress(data []byte, blockIdx uint64) {
	blk := lane(blockIdx, blockIdx)
	wk := lane(constants.Whitening0, constants.Whitening1)

	var rk [rounds]Lane
	for i := range rk {
		rk[i] = rkChainLane(i)
	}

	var lo [32]Lane
	for i := range lo {
		lo[i] = loLane(i)
	}

	saves := s.acc

	var d [numLanes][laneStride]Lane
	for i := 0; i < numLanes; i++ {
		for j := 0; j < laneStride; j++ {
			off := (i*laneStride + j) * constants.VecSize
			d[i][j] = s.round(laneFromBytes(data[off:off+16]), wk)
		}
	}

	for r := 0; r < mid; r++ {
		rkv := rk[r]
		for g := 0; g < numLanes; g++ {
			base := g * laneStride
			var keys, states [4]Lane
			for item := 0; item < laneStride; item++ {
				keys[item] = d[g][item].Add(rkv).Add(lo[base+item]).Add(blk)
				states[item] = s.acc[base+item]
			}
			out := s.round4(states, keys)
			copy(s.acc[base:base+laneStride], out[:])
		}

		for i := range d {
			src := (i + 3) % numLanes
			for j := range d[i] {
				d[i][j] = d[i][j].Xor(s.acc[src*laneStride+j])
			}
		}

		old := s.acc
		for i := 0; i < numLanes; i++ {
			src := (i + 1) % numLanes
			copy(s.acc[i*laneStride:i*laneStride+laneStride], old[src*laneStride:src*laneStride+laneStride])
		}
	}

	old := s.acc
	for i := 0; i < numLanes; i++ {
		for j := 0; j < laneStride; j++ {
			s.acc[i*laneStride+j] = old[i*laneStride+(j+1)%laneStride]
		}
	}

	for l := 0; l < laneStride; l++ {
		for i := 0; i < laneStride; i++ {
			idxLo := i*laneStride + l
			idxHi := (i+laneStride)*laneStride + l
			a, b := s.acc[idxLo], s.acc[idxHi]
			s.acc[idxLo] = a.Xor(b)
			s.acc[idxHi] = b.Add(a)
		}
	}

	for l := 0; l < laneStride; l++ {
		pairs := [4][2]int{{l, 2*laneStride + l}, {laneStride + l, 3*laneStride + l}, {4*laneStride + l, 6*laneStride + l}, {5*laneStride + l, 7*laneStride + l}}
		for _, p := range pairs {
			g0, g1 := p[0], p[1]
			a0, a1 := s.acc[g0], s.acc[g1]
			s.acc[g0] = a0.Xor(a1)
			s.acc[g1] = a1.Add(a0)
		}
	}

	for r := mid; r < rounds; r++ {
		rkv := rk[r]
		for g := 0; g < numLanes; g++ {
			base := g * laneStride
			dataGroup := (g + laneStride) % numLanes
			var keys, states [4]Lane
			for item := 0; item < laneStride; item++ {
				keys[item] = d[dataGroup][item].Add(rkv).Add(lo[base+item]).Add(blk)
				states[item] = s.acc[base+item]
			}
			out := s.round4(states, keys)
			copy(s.acc[base:base+laneStride], out[:])
		}

		for i := range d {
			src := (i + 3) % numLanes
			for j := range d[i] {
				d[i][j] = d[i][j].Xor(s.acc[src*laneStride+j])
			}
		}

		old := s.acc
		for i := 0; i < numLanes; i++ {
			src := (i + 1) % numLanes
			copy(s.acc[i*laneStride:i*laneStride+laneStride], old[src*laneStride:src*laneStride+laneStride])
		}
	}

	old = s.acc
	for i := 0; i < numLanes; i++ {
		for j := 0; j < laneStride; j++ {
			s.acc[i*laneStride+j] = old[i*laneStride+(j+1)%laneStride]
		}
	}

	for i := range s.acc {
		s.acc[i] = s.acc[i].Xor(saves[i])
	}
}

// linearFinalize processes the trailing remainder (processing 64-byte mini
// chunks, then the padded final chunk), tree-merges the 32 accumulator
// lanes down to 4, hardens with CLMUL, commits length/domain metadata, and
// writes the 32-byte digest.
func (s *state) linearFinalize(remainder []byte, totalLen uint64) [32]byte {
	wk := lane(constants.Whitening0, constants.Whitening1)
	offset := 0
	chunkIdx := 0

	for len(remainder)-offset >= remainderChunkSize {
		chunk := remainder[offset : offset+remainderChunkSize]
		var dVec [laneStride]Lane
		for j := range dVec {
			dVec[j] = s.round(laneFromBytes(chunk[j*16:(j+1)*16]), wk)
		}

		base := chunkIdx * laneStride
		var lo [laneStride]Lane
		for j := range lo {
			lo[j] = loLane(base + j)
		}
		var save [laneStride]Lane
		copy(save[:], s.acc[base:base+laneStride])

		for r := 0; r < rounds; r++ {
			rkv := rkChainLane(r)
			var keys [4]Lane
			for j := 0; j < laneStride; j++ {
				keys[j] = dVec[j].Add(rkv).Add(lo[j])
			}
			out := s.round4([4]Lane{s.acc[base], s.acc[base+1], s.acc[base+2], s.acc[base+3]}, keys)
			copy(s.acc[base:base+laneStride], out[:])
			tmp := s.acc[base]
			s.acc[base] = s.acc[base+1]
			s.acc[base+1] = s.acc[base+2]
			s.acc[base+2] = s.acc[base+3]
			s.acc[base+3] = tmp

			for j := range dVec {
				dVec[j] = dVec[j].Xor(s.acc[base+j])
			}
		}

		for j := 0; j < laneStride; j++ {
			s.acc[base+j] = s.acc[base+j].Xor(save[j])
		}
		offset += remainderChunkSize
		chunkIdx++
	}

	var blk [remainderChunkSize]byte
	left := len(remainder) - offset
	if left > 0 {
		copy(blk[:left], remainder[offset:offset+left])
	}
	blk[left] = 0x80

	var d0 [laneStride]Lane
	for j := range d0 {
		d0[j] = s.round(laneFromBytes(blk[j*16:(j+1)*16]), wk)
	}

	mergeRK0 := lane(constants.C5, constants.C5)
	mergeRK1 := lane(constants.C6, constants.C6)
	mergeRK2 := lane(constants.C7, constants.C7)

	mergeLevel := func(t, src int, rk Lane) {
		var states, keys [4]Lane
		for j := 0; j < laneStride; j++ {
			states[j] = s.acc[t+j]
			keys[j] = s.acc[src+j].Xor(rk)
		}
		out := s.round4(states, keys)
		copy(s.acc[t:t+laneStride], out[:])
		for j := 0; j < laneStride; j++ {
			keys[j] = s.acc[t+j].Xor(rk)
		}
		out = s.round4([4]Lane{s.acc[t], s.acc[t+1], s.acc[t+2], s.acc[t+3]}, keys)
		copy(s.acc[t:t+laneStride], out[:])
	}
	for i := 0; i < laneStride; i++ {
		mergeLevel(i*laneStride, (i+laneStride)*laneStride, mergeRK0)
	}
	for i := 0; i < 2; i++ {
		mergeLevel(i*laneStride, (i+2)*laneStride, mergeRK1)
	}
	mergeLevel(0, laneStride, mergeRK2)

	clmulK := lane(constants.CLMULConstant, constants.CLMULConstant2)
	var cl1s [4]Lane
	for i := 0; i < laneStride; i++ {
		acc := s.acc[i]
		cl1s[i] = softaes.Clmulepi64(acc, clmulK, 0x00).Xor(softaes.Clmulepi64(acc, clmulK, 0x11))
	}
	mids := s.round4([4]Lane{s.acc[0], s.acc[1], s.acc[2], s.acc[3]}, cl1s)
	var finalKeys [4]Lane
	for i := 0; i < laneStride; i++ {
		cl2 := softaes.Clmulepi64(mids[i], mids[i], 0x01)
		finalKeys[i] = cl1s[i].Xor(cl2)
	}
	out := s.round4([4]Lane{s.acc[0], s.acc[1], s.acc[2], s.acc[3]}, finalKeys)
	copy(s.acc[0:laneStride], out[:])

	var save0 [laneStride]Lane
	copy(save0[:], s.acc[:laneStride])

	meta := [laneStride]Lane{
		lane(s.domain^totalLen, constants.ChaosBase),
		lane(totalLen, s.domain),
		lane(constants.ChaosBase, totalLen),
		lane(s.domain, constants.ChaosBase),
	}
	for j := 0; j < laneStride; j++ {
		s.acc[j] = softaes.TernaryXor(s.acc[j], d0[j], meta[j])
	}

	for r := 0; r < rounds; r++ {
		rkv := rkChainLane(r)
		var keys [4]Lane
		for j := 0; j < laneStride; j++ {
			keys[j] = d0[j].Add(rkv)
		}
		out := s.round4([4]Lane{s.acc[0], s.acc[1], s.acc[2], s.acc[3]}, keys)
		copy(s.acc[0:laneStride], out[:])
		tmp := s.acc[0]
		s.acc[0] = s.acc[1]
		s.acc[1] = s.acc[2]
		s.acc[2] = s.acc[3]
		s.acc[3] = tmp

		if r%2 == 1 {
			for j := range d0 {
				d0[j] = d0[j].Xor(s.acc[j])
			}
		}
	}

	for j := 0; j < laneStride; j++ {
		s.acc[j] = s.acc[j].Xor(save0[j])
	}

	if s.hasKey {
		k0 := laneFromBytes(s.key[0:16])
		k1 := laneFromBytes(s.key[16:32])

		patterns := [4][4]Lane{
			{k0, k1, k1, k0},
			{k1, k0, k0, k1},
			{k0, k1, k0, k1},
			{k0, k0, k1, k1},
		}
		for _, keys := range patterns {
			out := s.round4([4]Lane{s.acc[0], s.acc[1], s.acc[2], s.acc[3]}, keys)
			copy(s.acc[0:laneStride], out[:])
		}
	}

	return s.finalLaneReductionBatched(mergeRK0, mergeRK1, mergeRK2)
}

// finalLaneReductionBatched runs the final mix from four lanes down to the
// two lanes of the 32-byte digest, batching the three rounds that operate
// on four independent lanes and falling back to the scalar primitive for
// the last two rounds, which only ever have two independent lanes left.
func (s *state) finalLaneReductionBatched(mergeRK0, mergeRK1, mergeRK2 Lane) [32]byte {
	acc := [4]Lane{s.acc[0], s.acc[1], s.acc[2], s.acc[3]}
	a := s.round4(acc, acc)

	b := s.round4(a, [4]Lane{a[2], a[3], a[0], a[1]})

	c := s.round4(b, [4]Lane{b[1], b[0].Xor(mergeRK2), b[3].Xor(mergeRK1), b[2].Xor(mergeRK0)})

	dRes0 := s.round(c[0], c[2])
	dRes1 := s.round(c[1], c[3])

	e0 := s.round(dRes0, dRes1)
	e1 := s.round(dRes1, dRes0.Xor(mergeRK2))

	var out [32]byte
	lb := laneBytes(e0)
	copy(out[0:16], lb[:])
	lb = laneBytes(e1)
	copy(out[16:32], lb[:])
	return out
}

// hashShort is the dedicated path for inputs under remainderChunkSize bytes.
// When seed==0 and no key is set, it starts from the frozen ShortInit
// state instead of re-running linearInit.
func hashShort(input []byte, domain, seed uint64, key []byte, b backend.Backend) [32]byte {
	round := b.Round
	round4 := b.RoundWide

	var acc [laneStride]Lane
	hasKey := key != nil

	if seed == 0 && !hasKey {
		for i := range acc {
			acc[i] = lane(constants.ShortInit[i][0], constants.ShortInit[i][1])
		}
	} else {
		base := constants.C0
		for i := range acc {
			acc[i] = lane(base+uint64(i)*2, base+uint64(i)*2+1)
		}
		sVal := seed
		if sVal == 0 {
			sVal = constants.C5
		}
		sVec := lane(sVal, sVal)
		acc = round4(acc, [4]Lane{sVec, sVec, sVec, sVec})

		if hasKey {
			k0 := laneFromBytes(key[0:16])
			k1 := laneFromBytes(key[16:32])
			gr := lane(constants.GoldenRatio, constants.GoldenRatio)
			k2 := k0.Xor(gr)
			k3 := k1.Xor(gr)
			keys := [4]Lane{k0, k1, k2, k3}
			lo := loLane(0)
			var withLo [4]Lane
			for j, kv := range keys {
				withLo[j] = kv.Add(lo)
			}
			acc = round4(acc, withLo)
			acc = round4(acc, keys)
		}
	}

	wk := lane(constants.Whitening0, constants.Whitening1)
	var blk [remainderChunkSize]byte
	copy(blk[:len(input)], input)
	blk[len(input)] = 0x80

	var d [laneStride]Lane
	for i := range d {
		d[i] = round(laneFromBytes(blk[i*16:(i+1)*16]), wk)
	}

	saves := acc

	meta := [laneStride]Lane{
		lane(domain^uint64(len(input)), constants.ChaosBase),
		lane(uint64(len(input)), domain),
		lane(constants.ChaosBase, uint64(len(input))),
		lane(domain, constants.ChaosBase),
	}
	for i := range acc {
		acc[i] = acc[i].Xor(d[i].Xor(meta[i]))
	}

	var lo [laneStride]Lane
	for i := range lo {
		lo[i] = loLane(i)
	}

	for r := 0; r < rounds; r++ {
		rkv := rkChainLane(r)
		var keys [4]Lane
		for i := 0; i < laneStride; i++ {
			keys[i] = d[i].Add(rkv).Add(lo[i])
		}
		acc = round4(acc, keys)

		if r%2 == 1 {
			t := acc
			d[0] = d[0].Xor(t[1])
			d[1] = d[1].Xor(t[2])
			d[2] = d[2].Xor(t[3])
			d[3] = d[3].Xor(t[0])
		}
		tmp := acc[0]
		acc[0] = acc[1]
		acc[1] = acc[2]
		acc[2] = acc[3]
		acc[3] = tmp
	}

	for i := range acc {
		acc[i] = acc[i].Xor(saves[i])
	}

	mergeRK0 := lane(constants.C5, constants.C5)
	mergeRK1 := lane(constants.C6, constants.C6)
	mergeRK2 := lane(constants.C7, constants.C7)

	tmpState := &state{round: round, batch: round4}
	copy(tmpState.acc[0:4], acc[:])
	return tmpState.finalLaneReductionBatched(mergeRK0, mergeRK1, mergeRK2)
}

// OneshotDirect hashes input with a single call to the linear kernel: no
// Merkle dispatch, regardless of length. Internal/merkle uses this as the
// leaf and node compression primitive for inputs at or above the chunk
// threshold.
func OneshotDirect(input []byte, domain, seed uint64, key []byte) [32]byte {
	return oneshotDirectWith(input, domain, seed, key, backend.Active())
}

// OneshotDirectWithBackend hashes input using an explicit backend rather
// than the process-wide selected one, so tests can assert every backend
// agrees bit-for-bit.
func OneshotDirectWithBackend(input []byte, domain, seed uint64, key []byte, b backend.Backend) [32]byte {
	return oneshotDirectWith(input, domain, seed, key, b)
}

// oneshotDirectWith is OneshotDirect parameterized by backend, used by
// cross-backend equivalence tests.
func oneshotDirectWith(input []byte, domain, seed uint64, key []byte, b backend.Backend) [32]byte {
	if len(input) < remainderChunkSize && seed == 0 && key == nil {
		return hashShort(input, domain, seed, key, b)
	}

	s := newState(domain, seed, key, b)
	s.linearInit()

	off := 0
	var blockIdx uint64
	for len(input)-off >= blockSize {
		s.linearCompress(input[off:off+blockSize], blockIdx)
		blockIdx++
		off += blockSize
	}

	return s.linearFinalize(input[off:], uint64(len(input)))
}
