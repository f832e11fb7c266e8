package party

import (
	"encoding/binary"
	"io"
	"sort"
)

// IDSlice is a sorted slice of unique IDs.
type IDSlice []ID

// NewIDSlice returns a sorted copy of partyIDs.
func NewIDSlice(partyIDs []ID) IDSlice {
	ids := make(IDSlice, len(partyIDs))
	copy(ids, partyIDs)
	ids.sort()
	return ids
}

func (partyIDs IDSlice) Len() int           { return len(partyIDs) }
func (partyIDs IDSlice) Less(i, j int) bool { return partyIDs[i] < partyIDs[j] }
func (partyIDs IDSlice) Swap(i, j int)      { partyIDs[i], partyIDs[j] = partyIDs[j], partyIDs[i] }

func (partyIDs IDSlice) sort() { sort.Sort(partyIDs) }

// Valid returns true if partyIDs is sorted, free of duplicates and empty IDs.
func (partyIDs IDSlice) Valid() bool {
	for i, id := range partyIDs {
		if id == "" {
			return false
		}
		if i > 0 && partyIDs[i-1] >= id {
			return false
		}
	}
	return true
}

// Contains returns true if partyIDs contains all of ids.
func (partyIDs IDSlice) Contains(ids ...ID) bool {
	for _, id := range ids {
		if _, ok := partyIDs.search(id); !ok {
			return false
		}
	}
	return true
}

// GetIndex returns the index of id in partyIDs, or -1 if it is absent.
func (partyIDs IDSlice) GetIndex(id ID) int {
	if idx, ok := partyIDs.search(id); ok {
		return idx
	}
	return -1
}

func (partyIDs IDSlice) search(x ID) (int, bool) {
	index := sort.Search(len(partyIDs), func(i int) bool { return partyIDs[i] >= x })
	if index < len(partyIDs) && partyIDs[index] == x {
		return index, true
	}
	return 0, false
}

// Remove returns a new sorted IDSlice without id.
func (partyIDs IDSlice) Remove(id ID) IDSlice {
	newPartyIDs := make(IDSlice, 0, len(partyIDs))
	for _, partyID := range partyIDs {
		if partyID != id {
			newPartyIDs = append(newPartyIDs, partyID)
		}
	}
	return newPartyIDs
}

// WriteTo implements io.WriterTo, writing the number of IDs followed by each
// length-prefixed ID.
func (partyIDs IDSlice) WriteTo(w io.Writer) (int64, error) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(len(partyIDs)))
	n, err := w.Write(buf[:])
	total := int64(n)
	if err != nil {
		return total, err
	}
	for _, id := range partyIDs {
		binary.BigEndian.PutUint64(buf[:], uint64(len(id)))
		n, err = w.Write(buf[:])
		total += int64(n)
		if err != nil {
			return total, err
		}
		n, err = io.WriteString(w, string(id))
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Domain implements hash.WriterToWithDomain.
func (IDSlice) Domain() string {
	return "IDSlice"
}
