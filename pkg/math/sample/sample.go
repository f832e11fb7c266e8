// Package sample expands seeds into ring elements.
//
// All deterministic samplers read from an XOF keyed by (seed, nonce), so that two
// implementations given the same seed produce bit-identical polynomials. Only
// Bounded consumes fresh entropy.
package sample

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/taurusgroup/dilizium/pkg/math/ring"
	"golang.org/x/crypto/sha3"
)

const (
	maxIterations = 255

	shake128Rate = 168
	shake256Rate = 136

	// uniformBlocks is enough SHAKE-128 output for 256 candidates of 3 bytes.
	uniformBlocks = (768 + shake128Rate - 1) / shake128Rate
)

var ErrMaxIterations = fmt.Errorf("sample: failed to generate after %d iterations", maxIterations)

var (
	ErrUnsupportedEta    = errors.New("sample: unsupported eta")
	ErrUnsupportedGamma1 = errors.New("sample: unsupported gamma1")
)

// XOF expands a seed and a 16 bit nonce into a pseudorandom stream.
type XOF func(seed []byte, nonce uint16) io.Reader

// SHAKE128 absorbs seed ‖ nonce, with the nonce in little-endian order.
func SHAKE128(seed []byte, nonce uint16) io.Reader {
	return absorb(sha3.NewShake128(), seed, nonce)
}

// SHAKE256 absorbs seed ‖ nonce, with the nonce in little-endian order.
func SHAKE256(seed []byte, nonce uint16) io.Reader {
	return absorb(sha3.NewShake256(), seed, nonce)
}

func absorb(h sha3.ShakeHash, seed []byte, nonce uint16) io.Reader {
	_, _ = h.Write(seed)
	_, _ = h.Write([]byte{byte(nonce), byte(nonce >> 8)})
	return h
}

func mustReadBits(rand io.Reader, buf []byte) {
	for i := 0; i < maxIterations; i++ {
		if _, err := io.ReadFull(rand, buf); err == nil {
			return
		}
	}
	panic(ErrMaxIterations)
}

// Uniform samples a polynomial with coefficients uniform in [0, Q).
//
// Candidates are 3 byte little-endian integers with the top bit cleared; those
// at least Q are rejected. The result is interpreted as lying in the transform
// domain, which is how public matrices are stored.
func Uniform(xof XOF, seed []byte, nonce uint16) ring.NTTPoly {
	var a ring.NTTPoly
	stream := xof(seed, nonce)

	buf := make([]byte, uniformBlocks*shake128Rate+2)
	buflen := uniformBlocks * shake128Rate
	mustReadBits(stream, buf[:buflen])
	ctr := rejectUniform(a[:], buf[:buflen])
	for ctr < ring.N {
		// keep the bytes of an incomplete candidate
		off := buflen % 3
		copy(buf, buf[buflen-off:buflen])
		mustReadBits(stream, buf[off:off+shake128Rate])
		buflen = off + shake128Rate
		ctr += rejectUniform(a[ctr:], buf[:buflen])
	}
	return a
}

func rejectUniform(a []int32, buf []byte) int {
	ctr := 0
	for pos := 0; ctr < len(a) && pos+3 <= len(buf); pos += 3 {
		t := uint32(buf[pos]) | uint32(buf[pos+1])<<8 | uint32(buf[pos+2])<<16
		t &= 0x7FFFFF
		if t < ring.Q {
			a[ctr] = int32(t)
			ctr++
		}
	}
	return ctr
}

// Eta samples secret polynomials with coefficients in [-eta, eta].
type Eta struct {
	eta int32
}

// NewEta returns a sampler for eta, which must be 2 or 4.
func NewEta(eta int32) (Eta, error) {
	if eta != 2 && eta != 4 {
		return Eta{}, fmt.Errorf("sample.NewEta: %d: %w", eta, ErrUnsupportedEta)
	}
	return Eta{eta: eta}, nil
}

// Bound returns eta.
func (e Eta) Bound() int32 { return e.eta }

// Sample decodes SHAKE output nibble by nibble, rejecting nibbles outside
// [0, 15) for eta = 2 and [0, 9) for eta = 4.
func (e Eta) Sample(xof XOF, seed []byte, nonce uint16) ring.Poly {
	var p ring.Poly
	stream := xof(seed, nonce)
	buf := make([]byte, shake128Rate)
	for ctr := 0; ctr < ring.N; {
		mustReadBits(stream, buf)
		ctr += e.reject(p[ctr:], buf)
	}
	return p
}

func (e Eta) reject(a []int32, buf []byte) int {
	ctr := 0
	for pos := 0; ctr < len(a) && pos < len(buf); pos++ {
		t0 := int32(buf[pos] & 0x0F)
		t1 := int32(buf[pos] >> 4)
		if c, ok := e.decode(t0); ok {
			a[ctr] = c
			ctr++
		}
		if c, ok := e.decode(t1); ok && ctr < len(a) {
			a[ctr] = c
			ctr++
		}
	}
	return ctr
}

func (e Eta) decode(t int32) (int32, bool) {
	if e.eta == 2 {
		if t >= 15 {
			return 0, false
		}
		t -= (205 * t >> 10) * 5
		return 2 - t, true
	}
	if t >= 9 {
		return 0, false
	}
	return 4 - t, true
}

// Mask samples masking polynomials with coefficients in [-(gamma1-1), gamma1].
type Mask struct {
	gamma1 int32
}

// NewMask returns a sampler for gamma1, which must be 2¹⁷ or 2¹⁹.
func NewMask(gamma1 int32) (Mask, error) {
	if gamma1 != 1<<17 && gamma1 != 1<<19 {
		return Mask{}, fmt.Errorf("sample.NewMask: %d: %w", gamma1, ErrUnsupportedGamma1)
	}
	return Mask{gamma1: gamma1}, nil
}

// Gamma1 returns the masking range.
func (m Mask) Gamma1() int32 { return m.gamma1 }

// Sample unpacks 18 bit (gamma1 = 2¹⁷) or 20 bit (gamma1 = 2¹⁹) little-endian
// integers v and returns coefficients gamma1 - v.
func (m Mask) Sample(xof XOF, seed []byte, nonce uint16) ring.Poly {
	var p ring.Poly
	stream := xof(seed, nonce)
	if m.gamma1 == 1<<17 {
		buf := make([]byte, ring.N/4*9)
		mustReadBits(stream, buf)
		for i := 0; i < ring.N/4; i++ {
			b := buf[9*i:]
			p[4*i+0] = int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
			p[4*i+1] = int32(b[2])>>2 | int32(b[3])<<6 | int32(b[4])<<14
			p[4*i+2] = int32(b[4])>>4 | int32(b[5])<<4 | int32(b[6])<<12
			p[4*i+3] = int32(b[6])>>6 | int32(b[7])<<2 | int32(b[8])<<10
			for j := 4 * i; j < 4*i+4; j++ {
				p[j] = m.gamma1 - p[j]&0x3FFFF
			}
		}
		return p
	}
	buf := make([]byte, ring.N/2*5)
	mustReadBits(stream, buf)
	for i := 0; i < ring.N/2; i++ {
		b := buf[5*i:]
		p[2*i+0] = int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
		p[2*i+1] = int32(b[2])>>4 | int32(b[3])<<4 | int32(b[4])<<12
		p[2*i+0] = m.gamma1 - p[2*i+0]&0xFFFFF
		p[2*i+1] = m.gamma1 - p[2*i+1]&0xFFFFF
	}
	return p
}

// Challenge samples a polynomial with exactly tau coefficients in {-1, 1} and
// all others zero, for 0 < tau ≤ 64.
//
// The first 8 bytes of the stream give the signs; each following byte is a
// candidate position for an in-place Fisher–Yates shuffle. The stream is keyed
// with nonce 0.
func Challenge(xof XOF, seed []byte, tau int) ring.Poly {
	if tau <= 0 || tau > 64 {
		panic(fmt.Sprintf("sample.Challenge: tau %d out of range", tau))
	}
	var c ring.Poly
	stream := bufio.NewReaderSize(xof(seed, 0), shake256Rate)

	var signBytes [8]byte
	mustReadBits(stream, signBytes[:])
	signs := binary.LittleEndian.Uint64(signBytes[:])

	for i := ring.N - tau; i < ring.N; i++ {
		var b int
		for {
			x, err := stream.ReadByte()
			if err != nil {
				panic(fmt.Sprintf("sample.Challenge: %v", err))
			}
			if b = int(x); b <= i {
				break
			}
		}
		c[i] = c[b]
		c[b] = 1 - 2*int32(signs&1)
		signs >>= 1
	}
	return c
}

// Bounded samples a polynomial with coefficients uniform in [-bound, bound],
// reading 4 bytes per candidate from rand.
func Bounded(rand io.Reader, bound int32) ring.Poly {
	if bound <= 0 {
		panic(fmt.Sprintf("sample.Bounded: bound %d must be positive", bound))
	}
	var p ring.Poly
	m := uint32(2*bound + 1)
	limit := (^uint32(0) / m) * m
	buf := make([]byte, 4*ring.N)
	for ctr := 0; ctr < ring.N; {
		mustReadBits(rand, buf)
		for pos := 0; ctr < ring.N && pos+4 <= len(buf); pos += 4 {
			v := binary.LittleEndian.Uint32(buf[pos:])
			if v >= limit {
				continue
			}
			p[ctr] = int32(v%m) - bound
			ctr++
		}
	}
	return p
}
