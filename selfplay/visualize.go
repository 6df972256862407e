package selfplay

import (
	"fmt"
	"log"
	"strings"

	"github.com/brensch/baduk/convert"
	"github.com/brensch/baduk/game"
	"github.com/brensch/baduk/rules"
)

// PrintBoard logs FormatBoard(g) followed by the current-position input
// planes.
func PrintBoard(g *rules.Game) {
	var sb strings.Builder
	sb.WriteString(FormatBoard(g))
	printEncodedPlanes(&sb, g)
	log.Print(sb.String())
}

// FormatBoard draws the board with row 0 at the top. X is Black, O is White,
// the last placement is wrapped in brackets and the ko point is marked k.
func FormatBoard(g *rules.Game) string {
	last, hasLast := game.Position{}, false
	if m, ok := g.LastMove(); ok {
		last, hasLast = m.Position()
	}
	ko, hasKo := g.KoPoint()

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n=== TRACE Move %d (%s to play", g.MoveCount(), g.Turn())
	if g.IsOver() {
		o, _ := g.Outcome()
		fmt.Fprintf(&sb, ", over: %s", o)
	}
	sb.WriteString(") ===\n")

	sb.WriteString("   ")
	for col := 0; col < g.Width(); col++ {
		fmt.Fprintf(&sb, "%3d", col)
	}
	sb.WriteString("\n")
	for row := 0; row < g.Height(); row++ {
		fmt.Fprintf(&sb, "%3d", row)
		for col := 0; col < g.Width(); col++ {
			pos := game.Position{Col: col, Row: row}
			c := "."
			switch g.GetPiece(pos) {
			case game.Black:
				c = "X"
			case game.White:
				c = "O"
			default:
				if hasKo && pos == ko {
					c = "k"
				}
			}
			if hasLast && pos == last {
				fmt.Fprintf(&sb, "[%s]", c)
			} else {
				fmt.Fprintf(&sb, " %s ", c)
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// printEncodedPlanes writes the newest two stone planes and the colour
// plane. Older history planes are shifted copies and add nothing to a trace.
func printEncodedPlanes(sb *strings.Builder, g *rules.Game) {
	dataPtr := convert.GameToFloat32(g)
	defer convert.PutFloatBuffer(dataPtr)
	data := *dataPtr
	w, h := g.Width(), g.Height()

	names := map[int]string{0: "to_move", 1: "opponent", convert.ColorPlane: "black_to_move"}
	sb.WriteString("\n--- TRACE Encoded input planes (C,H,W) ---\n")
	for _, c := range []int{0, 1, convert.ColorPlane} {
		fmt.Fprintf(sb, "Plane %d (%s):\n", c, names[c])
		for row := 0; row < h; row++ {
			for col := 0; col < w; col++ {
				if data[convert.Index(c, row, col, w, h)] == 0 {
					sb.WriteString(" .")
					continue
				}
				sb.WriteString(" 1")
			}
			sb.WriteString("\n")
		}
	}
}
