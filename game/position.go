package game

// Position is a board coordinate. (0,0) is the first cell of row 0.
type Position struct {
	Col int
	Row int
}

func PositionFromIndex(index, width int) Position {
	return Position{Col: index % width, Row: index / width}
}

func (p Position) Index(width int) int { return p.Row*width + p.Col }

func (p Position) Valid(width, height int) bool {
	return p.Col >= 0 && p.Row >= 0 && p.Col < width && p.Row < height
}
