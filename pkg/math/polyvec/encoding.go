package polyvec

import (
	"encoding/binary"
	"io"

	"github.com/taurusgroup/dilizium/pkg/math/ring"
)

// writeCoefficients writes the canonical representative of every coefficient
// in [0, Q) as 4 little-endian bytes.
func writeCoefficients(w io.Writer, p *[ring.N]int32) (int64, error) {
	var buf [4 * ring.N]byte
	for i, c := range p {
		c %= ring.Q
		if c < 0 {
			c += ring.Q
		}
		binary.LittleEndian.PutUint32(buf[4*i:], uint32(c))
	}
	n, err := w.Write(buf[:])
	return int64(n), err
}

func writeLength(w io.Writer, l int) (int64, error) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(l))
	n, err := w.Write(buf[:])
	return int64(n), err
}

// WriteTo implements io.WriterTo.
func (v Vector) WriteTo(w io.Writer) (int64, error) {
	total, err := writeLength(w, len(v))
	if err != nil {
		return total, err
	}
	for i := range v {
		n, err := writeCoefficients(w, (*[ring.N]int32)(&v[i]))
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Domain implements hash.WriterToWithDomain.
func (Vector) Domain() string { return "polyvec.Vector" }

// WriteTo implements io.WriterTo.
func (v NTTVector) WriteTo(w io.Writer) (int64, error) {
	total, err := writeLength(w, len(v))
	if err != nil {
		return total, err
	}
	for i := range v {
		n, err := writeCoefficients(w, (*[ring.N]int32)(&v[i]))
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Domain implements hash.WriterToWithDomain.
func (NTTVector) Domain() string { return "polyvec.NTTVector" }

// WriteTo implements io.WriterTo.
func (m Matrix) WriteTo(w io.Writer) (int64, error) {
	total, err := writeLength(w, len(m))
	if err != nil {
		return total, err
	}
	for _, row := range m {
		n, err := row.WriteTo(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Domain implements hash.WriterToWithDomain.
func (Matrix) Domain() string { return "polyvec.Matrix" }
