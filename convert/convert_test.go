package convert

import (
	"slices"
	"testing"

	"github.com/brensch/baduk/game"
	"github.com/brensch/baduk/rules"
)

func newGame(t *testing.T, w, h int) *rules.Game {
	t.Helper()
	g, err := rules.New(w, h)
	if err != nil {
		t.Fatalf("rules.New: %v", err)
	}
	return g
}

func planeSum(data []float32, plane, w, h int) float32 {
	var s float32
	for _, v := range data[plane*w*h : (plane+1)*w*h] {
		s += v
	}
	return s
}

func TestEncode_EmptyBoard(t *testing.T) {
	g := newGame(t, 9, 9)
	data := make([]float32, FloatSize(9, 9))
	Encode(g, data)

	for plane := 0; plane < ColorPlane; plane++ {
		if s := planeSum(data, plane, 9, 9); s != 0 {
			t.Fatalf("plane %d sum=%v want=0", plane, s)
		}
	}
	if s := planeSum(data, ColorPlane, 9, 9); s != 81 {
		t.Fatalf("colour plane sum=%v want=81 for Black to move", s)
	}
}

func TestEncode_PerspectiveAndHistory(t *testing.T) {
	g := newGame(t, 5, 4)
	if !g.MakeMove(game.Place(2, 1)) {
		t.Fatalf("move rejected")
	}
	data := make([]float32, FloatSize(5, 4))
	Encode(g, data)

	// White to move: Black's stone is on the opponent plane.
	if data[Index(0, 1, 2, 5, 4)] != 0 {
		t.Fatalf("black stone on own plane")
	}
	if data[Index(1, 1, 2, 5, 4)] != 1 {
		t.Fatalf("black stone missing from opponent plane")
	}
	if planeSum(data, 1, 5, 4) != 1 {
		t.Fatalf("opponent plane has extra stones")
	}
	// One move ago the board was empty.
	if planeSum(data, 2, 5, 4) != 0 || planeSum(data, 3, 5, 4) != 0 {
		t.Fatalf("history plane not empty")
	}
	if planeSum(data, ColorPlane, 5, 4) != 0 {
		t.Fatalf("colour plane set for White to move")
	}
}

func TestEncode_HistoryShowsCapturedStone(t *testing.T) {
	g := newGame(t, 5, 5)
	for _, m := range []game.Move{game.Place(1, 0), game.Place(0, 0), game.Place(0, 1)} {
		if !g.MakeMove(m) {
			t.Fatalf("%v rejected", m)
		}
	}
	data := make([]float32, FloatSize(5, 5))
	Encode(g, data)

	// White to move. Its corner stone is gone now but was there a move ago.
	if data[Index(0, 0, 0, 5, 5)] != 0 {
		t.Fatalf("captured stone still encoded on current plane")
	}
	if data[Index(2, 0, 0, 5, 5)] != 1 {
		t.Fatalf("captured stone missing from history plane")
	}
	if data[Index(3, 1, 0, 5, 5)] != 0 {
		t.Fatalf("capturing stone appears before it was played")
	}
	if data[Index(3, 0, 1, 5, 5)] != 1 {
		t.Fatalf("older black stone missing from history")
	}
	// Three moves played: planes for k >= 4 are beyond the start.
	for plane := 8; plane < ColorPlane; plane++ {
		if s := planeSum(data, plane, 5, 5); s != 0 {
			t.Fatalf("plane %d sum=%v want=0", plane, s)
		}
	}
}

func TestGameToBytes_MatchesFloats(t *testing.T) {
	g := newGame(t, 9, 9)
	for _, m := range []game.Move{game.Place(4, 4), game.Place(3, 3), game.Pass()} {
		g.MakeMove(m)
	}
	fp := GameToFloat32(g)
	defer PutFloatBuffer(fp)
	bp := GameToBytes(g)
	defer PutBuffer(bp)

	if len(*bp) != FloatSize(9, 9)*BytesPerFloat {
		t.Fatalf("bytes=%d want=%d", len(*bp), FloatSize(9, 9)*BytesPerFloat)
	}
	if got := BytesToFloat32(*bp); !slices.Equal(got, *fp) {
		t.Fatalf("byte encoding differs from float encoding")
	}
}

func TestPooledBuffersAreCleared(t *testing.T) {
	busy := newGame(t, 9, 9)
	for _, m := range []game.Move{game.Place(0, 0), game.Place(8, 8), game.Place(4, 4)} {
		busy.MakeMove(m)
	}
	PutFloatBuffer(GameToFloat32(busy))

	fp := GameToFloat32(newGame(t, 9, 9))
	defer PutFloatBuffer(fp)
	for plane := 0; plane < ColorPlane; plane++ {
		if s := planeSum(*fp, plane, 9, 9); s != 0 {
			t.Fatalf("stale data in plane %d", plane)
		}
	}
}

func BenchmarkGameToBytes19x19(b *testing.B) {
	g := rules.Standard()
	for _, a := range []int{60, 61, 80, 100, 120, 180, 200, 220, 240} {
		m, _ := game.DecodeAction(a, 19, 19)
		g.MakeMove(m)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		PutBuffer(GameToBytes(g))
	}
}
