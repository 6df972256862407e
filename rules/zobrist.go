package rules

import "github.com/brensch/baduk/game"

const zobristSeed = 0x9e3779b97f4a7c15

// mix64 is the splitmix64 finalizer.
func mix64(x uint64) uint64 {
	x += zobristSeed
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// stoneKey is the Zobrist key for a p stone on cell idx. Keys are derived on
// demand so there is no shared table between games.
func stoneKey(idx int, p game.Player) uint64 {
	k := uint64(idx) << 1
	if p == game.White {
		k |= 1
	}
	return mix64(k)
}

// xorStones folds the key of every stone in bb into h.
func xorStones(h uint64, geo *game.Geometry, bb game.Bitset, p game.Player) uint64 {
	it := geo.Iter(bb)
	for {
		idx, ok := it.Next()
		if !ok {
			return h
		}
		h ^= stoneKey(idx, p)
	}
}

// hashBoard computes the Zobrist hash of b from scratch.
func hashBoard(geo *game.Geometry, b *game.Board) uint64 {
	h := xorStones(0, geo, b.Black(), game.Black)
	return xorStones(h, geo, b.White(), game.White)
}
