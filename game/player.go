package game

// Player is a stone colour. None marks an empty cell.
type Player int8

const (
	None  Player = 0
	Black Player = 1
	White Player = -1
)

func (p Player) Opposite() Player { return -p }

// Char renders the player as 'B', 'W' or '.'.
func (p Player) Char() byte {
	switch p {
	case Black:
		return 'B'
	case White:
		return 'W'
	default:
		return '.'
	}
}

func (p Player) String() string {
	switch p {
	case Black:
		return "Black"
	case White:
		return "White"
	default:
		return "None"
	}
}

func PlayerFromChar(c byte) (Player, bool) {
	switch c {
	case 'B', 'b':
		return Black, true
	case 'W', 'w':
		return White, true
	}
	return None, false
}

func PlayerFromInt(i int8) (Player, bool) {
	switch i {
	case 1:
		return Black, true
	case -1:
		return White, true
	}
	return None, false
}
