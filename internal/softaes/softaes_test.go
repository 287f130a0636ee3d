package softaes

import "testing"

func TestAESRoundKnownVector(t *testing.T) {
	const c0 = 0xB172_17F7_D1CF_79AB
	const seed = 0xDEAD_BEEF

	state := LaneFromU64s(c0, c0+1)
	key := LaneFromU64s(seed, seed)

	got := AESRound(state, key)

	const wantLo = 0x321c_e16f_8973_6a62
	const wantHi = 0x321c_e16f_8780_999f

	if got.Lo != wantLo || got.Hi != wantHi {
		t.Fatalf("AESRound(%#x) = {%#016x %#016x}, want {%#016x %#016x}", state, got.Lo, got.Hi, wantLo, wantHi)
	}
}

func TestXorSelfIsZero(t *testing.T) {
	l := LaneFromU64s(0x1122334455667788, 0x99aabbccddeeff00)
	if got := l.Xor(l); got != (Lane{}) {
		t.Fatalf("l.Xor(l) = %#v, want zero", got)
	}
}

func TestAddWraps(t *testing.T) {
	l := LaneFromU64s(^uint64(0), ^uint64(0))
	one := LaneFromU64s(1, 1)
	got := l.Add(one)
	if got.Lo != 0 || got.Hi != 0 {
		t.Fatalf("Add did not wrap: got %#v", got)
	}
}

func TestClmulepi64SelectsHalves(t *testing.T) {
	a := LaneFromU64s(2, 3)
	b := LaneFromU64s(5, 7)

	// imm=0x00 selects a.Lo, b.Lo: 2*5 in GF(2) = 0b10 carry-less mult 0b101 = 0b1010.
	got := Clmulepi64(a, b, 0x00)
	if got.Lo != 0b1010 || got.Hi != 0 {
		t.Fatalf("Clmulepi64(lo,lo) = %#v, want lo=0b1010", got)
	}

	// imm=0x11 selects a.Hi, b.Hi: 3*7 in GF(2) = 0b11 carry-less mult 0b111 = 0b101.
	got = Clmulepi64(a, b, 0x11)
	if got.Lo != 0b101 || got.Hi != 0 {
		t.Fatalf("Clmulepi64(hi,hi) = %#v, want lo=0b101", got)
	}
}

func TestTernaryXor(t *testing.T) {
	a := LaneFromU64s(1, 2)
	b := LaneFromU64s(3, 4)
	c := LaneFromU64s(5, 6)
	want := a.Xor(b).Xor(c)
	if got := TernaryXor(a, b, c); got != want {
		t.Fatalf("TernaryXor = %#v, want %#v", got, want)
	}
}
