package game

import (
	"iter"
	"math/bits"
)

const (
	// MaxWords is the number of 64-bit words backing a Bitset (32x32 cells).
	MaxWords = 16
	// Capacity is the number of addressable cells in a Bitset.
	Capacity = MaxWords * 64
)

// Bitset is a fixed-capacity set of cell indices, stored inline so it can be
// copied by value. Cells are addressed row-major: index = row*width + col.
//
// Indices passed to Get/Set/Clear must be < Capacity. This is not checked.
type Bitset [MaxWords]uint64

// Single returns a Bitset with only index set.
func Single(index int) Bitset {
	var b Bitset
	b[index>>6] = 1 << (uint(index) & 63)
	return b
}

func (b Bitset) Get(index int) bool {
	return b[index>>6]>>(uint(index)&63)&1 != 0
}

func (b *Bitset) Set(index int) {
	b[index>>6] |= 1 << (uint(index) & 63)
}

func (b *Bitset) Clear(index int) {
	b[index>>6] &^= 1 << (uint(index) & 63)
}

func (b Bitset) IsEmpty() bool {
	for _, w := range b {
		if w != 0 {
			return false
		}
	}
	return true
}

func (b Bitset) Any() bool { return !b.IsEmpty() }

// Count returns the number of set bits.
func (b Bitset) Count() int {
	n := 0
	for _, w := range b {
		n += bits.OnesCount64(w)
	}
	return n
}

// LowestBit returns the smallest set index, or false if the set is empty.
func (b Bitset) LowestBit() (int, bool) {
	for i, w := range b {
		if w != 0 {
			return i*64 + bits.TrailingZeros64(w), true
		}
	}
	return 0, false
}

// ShiftLeft moves every bit from index i to i+n. Bits pushed past the last
// index are dropped. n must be non-negative.
func (b Bitset) ShiftLeft(n int) Bitset {
	if n == 0 {
		return b
	}
	if n >= Capacity {
		return Bitset{}
	}
	ws, bs := n/64, uint(n%64)
	var out Bitset
	for i := ws; i < MaxWords; i++ {
		out[i] = b[i-ws] << bs
		if bs != 0 && i > ws {
			out[i] |= b[i-ws-1] >> (64 - bs)
		}
	}
	return out
}

// ShiftRight moves every bit from index i to i-n. Bits pushed below zero are
// dropped. n must be non-negative.
func (b Bitset) ShiftRight(n int) Bitset {
	if n == 0 {
		return b
	}
	if n >= Capacity {
		return Bitset{}
	}
	ws, bs := n/64, uint(n%64)
	var out Bitset
	for i := 0; i < MaxWords-ws; i++ {
		out[i] = b[i+ws] >> bs
		if bs != 0 && i+ws+1 < MaxWords {
			out[i] |= b[i+ws+1] << (64 - bs)
		}
	}
	return out
}

func (b Bitset) And(o Bitset) Bitset {
	for i := range b {
		b[i] &= o[i]
	}
	return b
}

func (b Bitset) Or(o Bitset) Bitset {
	for i := range b {
		b[i] |= o[i]
	}
	return b
}

// AndNot returns b with every bit of o cleared.
func (b Bitset) AndNot(o Bitset) Bitset {
	for i := range b {
		b[i] &^= o[i]
	}
	return b
}

// Not flips every bit up to Capacity. Mask the result with a board mask
// before treating it as a set of cells.
func (b Bitset) Not() Bitset {
	for i := range b {
		b[i] = ^b[i]
	}
	return b
}

// Iter returns a one-shot iterator over the set indices in ascending order.
// It works on its own copy of the words, so b is unaffected.
func (b Bitset) Iter() *BitIterator {
	return &BitIterator{words: b, limit: MaxWords}
}

// Ones yields the set indices in ascending order.
func (b Bitset) Ones() iter.Seq[int] {
	return func(yield func(int) bool) {
		it := BitIterator{words: b, limit: MaxWords}
		for {
			idx, ok := it.Next()
			if !ok || !yield(idx) {
				return
			}
		}
	}
}

// BitIterator walks set bits by clearing them from a private copy. Once
// exhausted it stays exhausted.
type BitIterator struct {
	words Bitset
	word  int
	limit int
}

func (it *BitIterator) Next() (int, bool) {
	for it.word < it.limit {
		w := it.words[it.word]
		if w != 0 {
			it.words[it.word] = w & (w - 1)
			return it.word*64 + bits.TrailingZeros64(w), true
		}
		it.word++
	}
	return 0, false
}

// Word-bounded variants. nw is the number of words a board actually uses;
// words at or beyond nw are left zero in the result.

func (b *Bitset) iterW(nw int) BitIterator {
	return BitIterator{words: *b, limit: nw}
}

// shiftLeftW assumes 0 < n < 64.
func (b *Bitset) shiftLeftW(n, nw int) Bitset {
	var out Bitset
	s := uint(n)
	out[0] = b[0] << s
	for i := 1; i < nw; i++ {
		out[i] = b[i]<<s | b[i-1]>>(64-s)
	}
	return out
}

// shiftRightW assumes 0 < n < 64.
func (b *Bitset) shiftRightW(n, nw int) Bitset {
	var out Bitset
	s := uint(n)
	for i := 0; i < nw; i++ {
		out[i] = b[i] >> s
		if i+1 < MaxWords {
			out[i] |= b[i+1] << (64 - s)
		}
	}
	return out
}

func (b *Bitset) andW(o *Bitset, nw int) Bitset {
	var out Bitset
	for i := 0; i < nw; i++ {
		out[i] = b[i] & o[i]
	}
	return out
}

func (b *Bitset) orW(o *Bitset, nw int) Bitset {
	var out Bitset
	for i := 0; i < nw; i++ {
		out[i] = b[i] | o[i]
	}
	return out
}

func (b *Bitset) andNotW(o *Bitset, nw int) Bitset {
	var out Bitset
	for i := 0; i < nw; i++ {
		out[i] = b[i] &^ o[i]
	}
	return out
}

func (b *Bitset) equalW(o *Bitset, nw int) bool {
	for i := 0; i < nw; i++ {
		if b[i] != o[i] {
			return false
		}
	}
	return true
}

func (b *Bitset) anyW(nw int) bool {
	for i := 0; i < nw; i++ {
		if b[i] != 0 {
			return true
		}
	}
	return false
}

func (b *Bitset) countW(nw int) int {
	n := 0
	for i := 0; i < nw; i++ {
		n += bits.OnesCount64(b[i])
	}
	return n
}

func (b Bitset) Equal(o Bitset) bool { return b == o }
