// Package convert encodes a game into the float planes consumed by a
// policy/value network.
package convert

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/brensch/baduk/game"
	"github.com/brensch/baduk/rules"
)

const (
	// HistoryLength is the number of past positions encoded, current one
	// included.
	HistoryLength = 8
	PiecePlanes   = 2
	// Channels is HistoryLength*PiecePlanes stone planes plus the colour
	// plane.
	Channels      = HistoryLength*PiecePlanes + 1
	ColorPlane    = Channels - 1
	BytesPerFloat = 4

	maxFloats = Channels * game.Capacity
)

var bufferPool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, maxFloats*BytesPerFloat)
		return &b
	},
}

var floatPool = sync.Pool{
	New: func() interface{} {
		b := make([]float32, maxFloats)
		return &b
	},
}

// PutBuffer returns a buffer from GameToBytes to the pool.
func PutBuffer(b *[]byte) {
	*b = (*b)[:cap(*b)]
	bufferPool.Put(b)
}

// PutFloatBuffer returns a buffer from GameToFloat32 to the pool.
func PutFloatBuffer(b *[]float32) {
	*b = (*b)[:cap(*b)]
	floatPool.Put(b)
}

// FloatSize is the number of floats in the encoding of a width x height game.
func FloatSize(width, height int) int { return Channels * width * height }

// Index returns the offset of (plane, row, col) in an encoding.
func Index(plane, row, col, width, height int) int {
	return plane*width*height + row*width + col
}

// Encode writes the planes of g into dst, which must hold at least
// FloatSize(g.Width(), g.Height()) floats.
//
// Layout [Channels, Height, Width], from the side to move's perspective:
// plane 2k holds its stones k moves ago and plane 2k+1 the opponent's,
// for k < HistoryLength. Planes past the start of the game stay zero.
// ColorPlane is all ones when Black is to move.
func Encode(g *rules.Game, dst []float32) {
	w, h := g.Width(), g.Height()
	area := w * h
	dst = dst[:Channels*area]
	clear(dst)

	me := g.Turn()
	k := 0
	for b := range g.RecentBoards(HistoryLength) {
		own := dst[(2*k)*area : (2*k+1)*area]
		opp := dst[(2*k+1)*area : (2*k+2)*area]
		for idx := range b.StonesFor(me).Ones() {
			own[idx] = 1
		}
		for idx := range b.StonesFor(me.Opposite()).Ones() {
			opp[idx] = 1
		}
		k++
	}

	if me == game.Black {
		color := dst[ColorPlane*area:]
		for i := range color {
			color[i] = 1
		}
	}
}

// GameToFloat32 encodes g into a pooled slice of exactly
// FloatSize(g.Width(), g.Height()) floats. Return it with PutFloatBuffer.
func GameToFloat32(g *rules.Game) *[]float32 {
	bp := floatPool.Get().(*[]float32)
	*bp = (*bp)[:FloatSize(g.Width(), g.Height())]
	Encode(g, *bp)
	return bp
}

// GameToBytes is GameToFloat32 packed as little-endian float32. Return the
// buffer with PutBuffer.
func GameToBytes(g *rules.Game) *[]byte {
	fp := GameToFloat32(g)
	defer PutFloatBuffer(fp)

	bp := bufferPool.Get().(*[]byte)
	*bp = (*bp)[:len(*fp)*BytesPerFloat]
	data := *bp
	for i, v := range *fp {
		binary.LittleEndian.PutUint32(data[i*BytesPerFloat:], math.Float32bits(v))
	}
	return bp
}

// BytesToFloat32 decodes a GameToBytes payload.
func BytesToFloat32(data []byte) []float32 {
	out := make([]float32, len(data)/BytesPerFloat)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*BytesPerFloat:]))
	}
	return out
}
