package game

const (
	MinSize = 2
	MaxSize = 32
)

// Geometry holds the masks needed for adjacency on a width x height board.
// It is built once per board size and never modified afterwards.
//
// The set operations on Geometry only touch the Words words the board
// occupies, which is what makes small boards cheap.
type Geometry struct {
	Width  int
	Height int
	Area   int
	// Words is ceil(Area/64).
	Words int

	BoardMask Bitset
	// NotCol0 is BoardMask without column 0. It stops a right shift from
	// wrapping the last column of one row into the first column of the next.
	NotCol0 Bitset
	// NotColLast is BoardMask without the last column.
	NotColLast Bitset
}

// WordsFor returns the number of words a width x height board needs.
func WordsFor(width, height int) int {
	return (width*height + 63) / 64
}

// NewGeometry builds the masks for a board. Dimensions must already be in
// [MinSize, MaxSize]; callers validate.
func NewGeometry(width, height int) Geometry {
	area := width * height
	g := Geometry{
		Width:  width,
		Height: height,
		Area:   area,
		Words:  WordsFor(width, height),
	}
	for i := 0; i < area; i++ {
		g.BoardMask.Set(i)
	}
	g.NotCol0 = g.BoardMask
	g.NotColLast = g.BoardMask
	for row := 0; row < height; row++ {
		g.NotCol0.Clear(row * width)
		g.NotColLast.Clear(row*width + width - 1)
	}
	return g
}

func (g *Geometry) Index(p Position) int { return p.Row*g.Width + p.Col }

func (g *Geometry) PositionOf(index int) Position { return PositionFromIndex(index, g.Width) }

func (g *Geometry) Contains(p Position) bool { return p.Valid(g.Width, g.Height) }

// Neighbors returns every cell orthogonally adjacent to some cell of bb.
func (g *Geometry) Neighbors(bb Bitset) Bitset {
	nw := g.Words
	// A left shift can spill one word past the board.
	nw1 := min(nw+1, MaxWords)

	right := bb.shiftLeftW(1, nw1)
	right = right.andW(&g.NotCol0, nw1)
	left := bb.shiftRightW(1, nw)
	left = left.andW(&g.NotColLast, nw)
	down := bb.shiftLeftW(g.Width, nw1)
	up := bb.shiftRightW(g.Width, nw)

	out := right.orW(&left, nw1)
	out = out.orW(&down, nw1)
	out = out.orW(&up, nw1)
	return out.andW(&g.BoardMask, nw)
}

// FloodFill returns the connected component of seed inside mask.
func (g *Geometry) FloodFill(seed, mask Bitset) Bitset {
	nw := g.Words
	filled := seed.andW(&mask, nw)
	for {
		nbrs := g.Neighbors(filled)
		grown := filled.orW(&nbrs, nw)
		grown = grown.andW(&mask, nw)
		if grown.equalW(&filled, nw) {
			return filled
		}
		filled = grown
	}
}

func (g *Geometry) And(a, b Bitset) Bitset { return a.andW(&b, g.Words) }

func (g *Geometry) Or(a, b Bitset) Bitset { return a.orW(&b, g.Words) }

func (g *Geometry) AndNot(a, b Bitset) Bitset { return a.andNotW(&b, g.Words) }

func (g *Geometry) Any(a Bitset) bool { return a.anyW(g.Words) }

func (g *Geometry) IsEmpty(a Bitset) bool { return !a.anyW(g.Words) }

func (g *Geometry) Count(a Bitset) int { return a.countW(g.Words) }

func (g *Geometry) Equal(a, b Bitset) bool { return a.equalW(&b, g.Words) }

// Iter is Bitset.Iter limited to the words the board uses.
func (g *Geometry) Iter(a Bitset) BitIterator { return a.iterW(g.Words) }

// Empty returns the board cells not occupied by either colour.
func (g *Geometry) Empty(b *Board) Bitset {
	occ := b.black.orW(&b.white, g.Words)
	return g.BoardMask.andNotW(&occ, g.Words)
}
