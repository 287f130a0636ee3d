// Package backend selects, on first use, which implementation of the
// AES round primitive the kernel will call for the rest of the process's
// life. Three implementations exist: a portable one that runs everywhere,
// a single-width hardware one (one 128-bit AES round per call), and a
// wide-vector hardware one (four lanes per call). All three must agree
// bit-for-bit; only their speed differs.
package backend

import (
	"log/slog"
	"sync"

	"github.com/byt3forg3/tachyon/internal/softaes"
)

// Backend is the set of primitives a kernel needs from its AES-round
// implementation. Round operates on a single 128-bit lane; RoundWide
// operates on four lanes packed together when the active backend supports
// it (RoundWide is always non-nil — the portable and single-width backends
// implement it by calling Round four times).
type Backend struct {
	Name      string
	Round     func(state, key softaes.Lane) softaes.Lane
	RoundWide func(states, keys [4]softaes.Lane) [4]softaes.Lane
}

func portableRoundWide(states, keys [4]softaes.Lane) [4]softaes.Lane {
	var out [4]softaes.Lane
	for i := range out {
		out[i] = softaes.AESRound(states[i], keys[i])
	}
	return out
}

var portableBackend = Backend{
	Name:      "Portable",
	Round:     softaes.AESRound,
	RoundWide: portableRoundWide,
}

// candidates is populated per-architecture by init functions in
// backend_*.go files; each appends its backend in preference order
// (fastest first). The portable backend is always the final fallback.
var candidates []func() (Backend, bool)

var selected = sync.OnceValue(func() Backend {
	for _, probe := range candidates {
		if b, ok := probe(); ok {
			slog.Debug("tachyon: backend selected", "backend", b.Name)
			return b
		}
	}
	slog.Debug("tachyon: backend selected", "backend", portableBackend.Name)
	return portableBackend
})

// Active returns the process-wide backend, selecting it on first call and
// memoizing the result for every later call.
func Active() Backend {
	return selected()
}

// ActiveName returns the name of the active backend, for diagnostics and
// the capi surface.
func ActiveName() string {
	return Active().Name
}
