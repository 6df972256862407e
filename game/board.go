// Package game defines the board representation for Go: bitsets, board
// geometry, stone storage and the small value types shared by the rules
// engine and its consumers.
//
// Everything here is a plain value: copying a Board or Bitset copies its
// contents.
package game

import (
	"strconv"
	"strings"
)

// Board stores stones as one Bitset per colour. The two sets never share a
// bit. Board holds no rules; legality lives in package rules.
type Board struct {
	black  Bitset
	white  Bitset
	width  int
	height int
}

func NewBoard(width, height int) Board {
	return Board{width: width, height: height}
}

func (b *Board) Width() int  { return b.width }
func (b *Board) Height() int { return b.height }

func (b *Board) Black() Bitset { return b.black }
func (b *Board) White() Bitset { return b.white }

// StonesFor returns the stones of p. None yields an empty set.
func (b *Board) StonesFor(p Player) Bitset {
	switch p {
	case Black:
		return b.black
	case White:
		return b.white
	}
	return Bitset{}
}

func (b *Board) Occupied() Bitset { return b.black.Or(b.white) }

// EmptySquares returns the cells of boardMask holding no stone.
func (b *Board) EmptySquares(boardMask Bitset) Bitset {
	return boardMask.AndNot(b.Occupied())
}

// Place puts a p stone on index, replacing whatever was there.
func (b *Board) Place(index int, p Player) {
	switch p {
	case Black:
		b.white.Clear(index)
		b.black.Set(index)
	case White:
		b.black.Clear(index)
		b.white.Set(index)
	default:
		b.ClearIndex(index)
	}
}

func (b *Board) ClearIndex(index int) {
	b.black.Clear(index)
	b.white.Clear(index)
}

// RemoveStones clears every cell of bb from both colours.
func (b *Board) RemoveStones(bb Bitset) {
	b.black = b.black.AndNot(bb)
	b.white = b.white.AndNot(bb)
}

// RestoreStones adds bb to p's stones. bb must not overlap the other colour.
func (b *Board) RestoreStones(bb Bitset, p Player) {
	switch p {
	case Black:
		b.black = b.black.Or(bb)
	case White:
		b.white = b.white.Or(bb)
	}
}

// GetPiece returns the stone at pos, or None if empty or off the board.
func (b *Board) GetPiece(pos Position) Player {
	if !pos.Valid(b.width, b.height) {
		return None
	}
	idx := pos.Index(b.width)
	switch {
	case b.black.Get(idx):
		return Black
	case b.white.Get(idx):
		return White
	}
	return None
}

// SetPiece writes a stone (or None to clear) without any rule checks.
// Positions off the board are ignored.
func (b *Board) SetPiece(pos Position, p Player) {
	if !pos.Valid(b.width, b.height) {
		return
	}
	b.Place(pos.Index(b.width), p)
}

func (b *Board) Clear() {
	b.black = Bitset{}
	b.white = Bitset{}
}

// String draws the board with the highest row first.
func (b *Board) String() string {
	var sb strings.Builder
	for row := b.height - 1; row >= 0; row-- {
		sb.WriteByte('|')
		for col := 0; col < b.width; col++ {
			sb.WriteByte(b.GetPiece(Position{Col: col, Row: row}).Char())
			sb.WriteByte('|')
		}
		sb.WriteByte('\n')
	}
	sb.WriteByte(' ')
	for col := 0; col < b.width; col++ {
		sb.WriteString(strconv.Itoa(col % 10))
		sb.WriteByte(' ')
	}
	sb.WriteByte('\n')
	return sb.String()
}
