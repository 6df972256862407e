package game

// Outcome is the result of a finished game.
type Outcome int8

const (
	BlackWin Outcome = iota + 1
	WhiteWin
	Draw
)

// Winner returns the winning colour, or false for a draw.
func (o Outcome) Winner() (Player, bool) {
	switch o {
	case BlackWin:
		return Black, true
	case WhiteWin:
		return White, true
	}
	return None, false
}

// RewardAbsolute is +1 for a Black win, -1 for a White win and 0 otherwise.
func (o Outcome) RewardAbsolute() float32 {
	switch o {
	case BlackWin:
		return 1
	case WhiteWin:
		return -1
	}
	return 0
}

// RewardFrom is the reward seen by perspective: +1 if it won, -1 if it lost.
func (o Outcome) RewardFrom(perspective Player) float32 {
	r := o.RewardAbsolute()
	if perspective == White {
		return -r
	}
	return r
}

func (o Outcome) IsDraw() bool { return o == Draw }

func (o Outcome) String() string {
	switch o {
	case BlackWin:
		return "Black wins"
	case WhiteWin:
		return "White wins"
	case Draw:
		return "Draw"
	}
	return "Unknown"
}
