package tachyon

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/byt3forg3/tachyon/internal/merkle"
)

// DefaultBufferSize is the read buffer WriteReader allocates when the
// caller doesn't supply one, matching the Merkle leaf granularity so reads
// line up with chunk boundaries.
const DefaultBufferSize = merkle.ChunkSize

const maxEmptyReads = 8

// Progress reports how much of a stream has been hashed so far.
type Progress struct {
	Processed uint64
	Total     uint64
	Elapsed   time.Duration
}

// ProgressFunc receives periodic Progress reports from WriteReader.
type ProgressFunc func(Progress)

// LogProgress returns a ProgressFunc that logs each report at slog.Debug
// level, for callers — cmd/tachyonsum, notably — that want visibility into
// a long-running hash without writing their own callback. logger may be
// nil, in which case slog.Default() is used.
func LogProgress(logger *slog.Logger) ProgressFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(p Progress) {
		logger.Debug("tachyon: hash progress",
			"processed", p.Processed, "total", p.Total, "elapsed", p.Elapsed)
	}
}

// WriteReader streams r into the hasher using buf (or a default buffer, if
// buf is empty) and reports progress via onProgress. total is the known
// total length, or 0 if unknown; it is only used for reporting.
func (h *Hasher) WriteReader(r io.Reader, buf []byte, total uint64, onProgress ProgressFunc) (int64, error) {
	if len(buf) == 0 {
		buf = make([]byte, DefaultBufferSize)
	}

	start := time.Now()
	var processed uint64
	emptyReads := 0

	for {
		n, err := r.Read(buf)
		if n > 0 {
			emptyReads = 0
			_, _ = h.Write(buf[:n])
			processed += uint64(n)
			if onProgress != nil {
				onProgress(Progress{Processed: processed, Total: total, Elapsed: time.Since(start)})
			}
		}

		if err == io.EOF {
			if n == 0 && onProgress != nil {
				onProgress(Progress{Processed: processed, Total: total, Elapsed: time.Since(start)})
			}
			return int64(processed), nil
		}
		if err != nil {
			return int64(processed), err
		}
		if n == 0 {
			emptyReads++
			if emptyReads >= maxEmptyReads {
				return int64(processed), io.ErrNoProgress
			}
		}
	}
}

// HashReader streams r into a fresh Generic-domain hasher and returns the
// resulting digest.
func HashReader(r io.Reader, bufSize int, onProgress ProgressFunc) ([HashSize]byte, error) {
	h := NewHasher()
	buf := make([]byte, bufferSizeOrDefault(bufSize))
	if _, err := h.WriteReader(r, buf, 0, onProgress); err != nil {
		return [HashSize]byte{}, err
	}
	return h.Sum256(), nil
}

// HashFile streams the named file into a fresh Generic-domain hasher,
// reporting progress against the file's known size, and returns the
// resulting digest.
func HashFile(path string, bufSize int, onProgress ProgressFunc) ([HashSize]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return [HashSize]byte{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return [HashSize]byte{}, err
	}
	total := uint64(info.Size())

	h := NewHasher()
	buf := make([]byte, bufferSizeOrDefault(bufSize))
	if _, err := h.WriteReader(f, buf, total, onProgress); err != nil {
		return [HashSize]byte{}, err
	}
	return h.Sum256(), nil
}

func bufferSizeOrDefault(n int) int {
	if n > 0 {
		return n
	}
	return DefaultBufferSize
}
