package game

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMoveSyntax is returned when a move's text form cannot be parsed.
var ErrMoveSyntax = errors.New("invalid move syntax")

// Move is either a stone placement or a pass. The zero value is Place(0, 0).
type Move struct {
	col  int
	row  int
	pass bool
}

func Place(col, row int) Move { return Move{col: col, row: row} }

func Pass() Move { return Move{pass: true} }

func (m Move) IsPass() bool { return m.pass }

// Position returns the placement coordinate, or false for a pass.
func (m Move) Position() (Position, bool) {
	if m.pass {
		return Position{}, false
	}
	return Position{Col: m.col, Row: m.row}, true
}

func (m Move) Col() (int, bool) { return m.col, !m.pass }

func (m Move) Row() (int, bool) { return m.row, !m.pass }

func (m Move) String() string {
	if m.pass {
		return "Pass"
	}
	return fmt.Sprintf("Place(%d, %d)", m.col, m.row)
}

// MarshalText encodes the move as "col,row" or "pass".
func (m Move) MarshalText() ([]byte, error) {
	if m.pass {
		return []byte("pass"), nil
	}
	return []byte(strconv.Itoa(m.col) + "," + strconv.Itoa(m.row)), nil
}

func (m *Move) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "pass" {
		*m = Pass()
		return nil
	}
	cs, rs, ok := strings.Cut(s, ",")
	if !ok {
		return fmt.Errorf("%w: %q", ErrMoveSyntax, s)
	}
	col, err := strconv.Atoi(strings.TrimSpace(cs))
	if err != nil || col < 0 {
		return fmt.Errorf("%w: column in %q", ErrMoveSyntax, s)
	}
	row, err := strconv.Atoi(strings.TrimSpace(rs))
	if err != nil || row < 0 {
		return fmt.Errorf("%w: row in %q", ErrMoveSyntax, s)
	}
	*m = Place(col, row)
	return nil
}

// EncodeAction maps a move to a policy index: row*width+col for a placement
// and width*height for a pass.
func EncodeAction(m Move, width, height int) int {
	if m.pass {
		return width * height
	}
	return m.row*width + m.col
}

// DecodeAction is the inverse of EncodeAction. Indices above width*height
// are rejected.
func DecodeAction(action, width, height int) (Move, bool) {
	area := width * height
	switch {
	case action == area:
		return Pass(), true
	case action < 0 || action > area:
		return Move{}, false
	}
	return Place(action%width, action/width), true
}

// TotalActions is the size of the action space, including pass.
func TotalActions(width, height int) int { return width*height + 1 }
