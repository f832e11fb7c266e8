package hash

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/zeebo/blake3"
)

// DigestLengthBytes is the length of Sum's output.
const DigestLengthBytes = 64

// Hash is the hash function we use for transcripts, commitment keys and
// challenge seeds.
//
// Internally, this is a wrapper around blake3.Hasher, whose extendable output is
// available through Digest.
type Hash struct {
	h *blake3.Hasher
}

// New creates a Hash struct with an empty state.
func New() *Hash {
	return &Hash{h: blake3.New()}
}

// Digest returns a reader for the current output of the function.
//
// This finalizes the current state of the hash, and returns what's
// essentially a stream of random bytes.
func (hash *Hash) Digest() io.Reader {
	return hash.h.Digest()
}

// Sum returns a slice of length DigestLengthBytes resulting from the current hash state.
// If a different length is required, use io.ReadFull(hash.Digest(), out) instead.
func (hash *Hash) Sum() []byte {
	out := make([]byte, DigestLengthBytes)
	if _, err := io.ReadFull(hash.Digest(), out); err != nil {
		panic(fmt.Sprintf("hash.Sum: internal hash failure: %v", err))
	}
	return out
}

// WriteAny takes many different data types and writes them to the hash state.
//
// Currently supported types:
//
//   - []byte
//   - string
//   - hash.WriterToWithDomain
//
// This function will apply its own domain separation for the first two types.
// The last type already suggests which domain to use, and this function respects it.
func (hash *Hash) WriteAny(data ...interface{}) error {
	var toBeWritten BytesWithDomain
	for _, d := range data {
		switch t := d.(type) {
		case []byte:
			toBeWritten = BytesWithDomain{"[]byte", t}
		case string:
			toBeWritten = BytesWithDomain{"string", []byte(t)}
		case WriterToWithDomain:
			var buf bytes.Buffer
			if _, err := t.WriteTo(&buf); err != nil {
				return fmt.Errorf("hash.Hash: write %s: %w", t.Domain(), err)
			}
			toBeWritten = BytesWithDomain{t.Domain(), buf.Bytes()}
		default:
			panic(fmt.Sprintf("hash.Hash: unsupported type %T", d))
		}

		// Write out `(<domain><length><data>)`, so that each domain separated
		// piece of data is distinguished from others.
		_, _ = hash.h.WriteString("(")
		_, _ = hash.h.WriteString(toBeWritten.TheDomain)
		var length [8]byte
		binary.BigEndian.PutUint64(length[:], uint64(len(toBeWritten.Bytes)))
		_, _ = hash.h.Write(length[:])
		_, _ = hash.h.Write(toBeWritten.Bytes)
		_, _ = hash.h.WriteString(")")
	}
	return nil
}

// Clone returns a copy of the Hash in its current state.
func (hash *Hash) Clone() *Hash {
	return &Hash{h: hash.h.Clone()}
}
