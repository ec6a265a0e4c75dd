package edges

// Signature is a row-major 3x3 classification of a tile's sample points;
// 1.0 marks a black sample, 0.0 anything else.
type Signature [9]float64

// Padded lays the signature out as a 4x4 matrix: each row gets a trailing
// 0.0 and a row of zeros is appended.
func (s Signature) Padded() [16]float64 {
	var out [16]float64
	for row := 0; row < 3; row++ {
		copy(out[row*4:row*4+3], s[row*3:row*3+3])
	}
	return out
}

// Unpad reverses Padded, dropping the padding column and row.
func Unpad(m [16]float64) Signature {
	var s Signature
	for row := 0; row < 3; row++ {
		copy(s[row*3:row*3+3], m[row*4:row*4+3])
	}
	return s
}

// Bools reports which samples are black.
func (s Signature) Bools() [9]bool {
	var out [9]bool
	for i, v := range s {
		out[i] = v != 0
	}
	return out
}

// Entry is the signature of one kept tile.
type Entry struct {
	// Index is the dense output index; discarded tiles are not counted.
	Index     int
	Col       int
	Row       int
	Signature Signature
}

// Sheet holds signatures in ascending index order.
type Sheet struct {
	entries []Entry
}

func (s *Sheet) add(e Entry) {
	s.entries = append(s.entries, e)
}

// Len returns the number of kept tiles.
func (s *Sheet) Len() int {
	return len(s.entries)
}

// Entries returns the entries in index order.
func (s *Sheet) Entries() []Entry {
	return s.entries
}

// At returns the entry with the given index.
func (s *Sheet) At(i int) (Entry, bool) {
	if i < 0 || i >= len(s.entries) {
		return Entry{}, false
	}
	return s.entries[i], true
}

// Signatures returns just the signatures, in index order.
func (s *Sheet) Signatures() []Signature {
	out := make([]Signature, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Signature
	}
	return out
}
