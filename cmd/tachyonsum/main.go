// Command tachyonsum prints Tachyon digests for files or stdin, in the
// style of sha256sum/b3sum.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/byt3forg3/tachyon"
)

func main() {
	seed := flag.Uint64("seed", 0, "hash seed")
	domain := flag.Uint64("domain", uint64(tachyon.DomainGeneric), "domain tag")
	keyHex := flag.String("key", "", "32-byte hex MAC key (enables keyed hashing)")
	bench := flag.Bool("backend", false, "print the selected AES-round backend and exit")
	verbose := flag.Bool("v", false, "log hashing progress at slog.Debug level")
	flag.Parse()

	if *bench {
		fmt.Println(tachyon.BackendName())
		return
	}

	var key []byte
	if *keyHex != "" {
		k, err := hex.DecodeString(*keyHex)
		if err != nil || len(k) != tachyon.KeySize {
			log.Fatalf("-key must be %d hex-encoded bytes", tachyon.KeySize)
		}
		key = k
	}

	args := flag.Args()
	if len(args) == 0 {
		args = []string{"-"}
	}

	var onProgress tachyon.ProgressFunc
	if *verbose {
		onProgress = tachyon.LogProgress(nil)
	}

	status := 0
	for _, path := range args {
		digest, err := hashPath(path, *domain, *seed, key, onProgress)
		if err != nil {
			log.Printf("%s: %v", path, err)
			status = 1
			continue
		}
		if path == "-" {
			fmt.Printf("%s  -\n", hex.EncodeToString(digest[:]))
		} else {
			fmt.Printf("%s  %s\n", hex.EncodeToString(digest[:]), path)
		}
	}
	os.Exit(status)
}

func hashPath(path string, domain, seed uint64, key []byte, onProgress tachyon.ProgressFunc) ([tachyon.HashSize]byte, error) {
	var r *os.File
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return [tachyon.HashSize]byte{}, err
		}
		defer f.Close()
		r = f
	}

	h := tachyon.NewHasherFull(domain, seed)
	if key != nil {
		h.SetKey(key)
	}
	var total uint64
	if info, err := r.Stat(); err == nil {
		total = uint64(info.Size())
	}
	if _, err := h.WriteReader(r, nil, total, onProgress); err != nil {
		return [tachyon.HashSize]byte{}, err
	}
	return h.Sum256(), nil
}
