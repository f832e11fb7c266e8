package party

import "io"

// ID represents a unique identifier for a participant in a protocol run.
//
// It is ordered lexicographically; the order decides which party starts its
// nonce counter at the offset.
type ID string

// WriteTo implements io.WriterTo.
func (id ID) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, string(id))
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (ID) Domain() string {
	return "ID"
}
