package core

import "math/bits"

// Bitmap is an immutable set of board indices packed one bit per cell. It is
// a string so that game states holding it stay comparable.
type Bitmap string

// NewBitmap returns an empty bitmap able to hold size indices
func NewBitmap(size int) Bitmap {
	return Bitmap(make([]byte, (size+7)/8))
}

// BitmapOf returns a bitmap of size with the given indices set
func BitmapOf(size int, indices ...int) Bitmap {
	buf := make([]byte, (size+7)/8)
	for _, idx := range indices {
		if idx >= 0 && idx/8 < len(buf) {
			buf[idx/8] |= 1 << uint(idx%8)
		}
	}
	return Bitmap(buf)
}

// Has reports whether idx is set
func (m Bitmap) Has(idx int) bool {
	if idx < 0 || idx/8 >= len(m) {
		return false
	}
	return m[idx/8]&(1<<uint(idx%8)) != 0
}

// Without returns a copy of m with idx cleared
func (m Bitmap) Without(idx int) Bitmap {
	if !m.Has(idx) {
		return m
	}
	buf := []byte(m)
	buf[idx/8] &^= 1 << uint(idx%8)
	return Bitmap(buf)
}

// Count returns the number of set indices
func (m Bitmap) Count() int {
	n := 0
	for i := 0; i < len(m); i++ {
		n += bits.OnesCount8(m[i])
	}
	return n
}

// Indices returns the set indices in ascending order
func (m Bitmap) Indices() []int {
	out := make([]int, 0, m.Count())
	for i := 0; i < len(m)*8; i++ {
		if m.Has(i) {
			out = append(out, i)
		}
	}
	return out
}
