package tictactoe

import (
	"strings"
	"testing"
)

func swapMarks(b Board, x, y Mark) Board {
	var swapped Board
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			switch b[row][col] {
			case x:
				swapped[row][col] = y
			case y:
				swapped[row][col] = x
			default:
				swapped[row][col] = b[row][col]
			}
		}
	}
	return swapped
}

func TestPerceiveEncoding(t *testing.T) {
	b := Board{
		{PlayerA, Empty, PlayerB},
		{Empty, Human, Empty},
		{PlayerB, Empty, PlayerA},
	}
	s := Perceive(b, PlayerA)
	if s.Key() != "102020201" {
		t.Errorf("unexpected key for player A: %s", s.Key())
	}
	s = Perceive(b, PlayerB)
	if s.Key() != "201020102" {
		t.Errorf("unexpected key for player B: %s", s.Key())
	}
	s = Perceive(b, Human)
	if s.Key() != "202010202" {
		t.Errorf("unexpected key for human: %s", s.Key())
	}
}

func TestPerceiveIsSymmetric(t *testing.T) {
	boards := []Board{
		{},
		{{PlayerA, Empty, Empty}, {Empty, PlayerB, Empty}, {Empty, Empty, Empty}},
		{{PlayerA, PlayerB, PlayerA}, {PlayerB, PlayerA, Empty}, {Empty, PlayerB, Empty}},
		{{Human, PlayerA, Empty}, {Empty, Human, Empty}, {PlayerA, Empty, Empty}},
	}
	pairs := [][2]Mark{{PlayerA, PlayerB}, {PlayerA, Human}, {PlayerB, Human}}
	for i, b := range boards {
		for _, pair := range pairs {
			x, y := pair[0], pair[1]
			mirrored := swapMarks(b, x, y)
			if Perceive(b, x) != Perceive(mirrored, y) {
				t.Errorf("board %d: perception of %d differs from %d on mirrored board", i, x, y)
			}
			if Perceive(b, x).Key() != Perceive(mirrored, y).Key() {
				t.Errorf("board %d: keys differ for %d and %d", i, x, y)
			}
		}
	}
}

func TestStateKeyIsExact(t *testing.T) {
	seen := make(map[StateKey]PerceivedState)
	// every single-cell difference yields a different key
	base := PerceivedState{}
	seen[base.Key()] = base
	for i := 0; i < Size*Size; i++ {
		for _, v := range []uint8{PerceivedOwn, PerceivedOpponent} {
			s := base
			s[i/Size][i%Size] = v
			key := s.Key()
			if other, ok := seen[key]; ok && other != s {
				t.Fatalf("key collision for %s", key)
			}
			seen[key] = s
			if key.State() != s {
				t.Errorf("key %s does not decode back to its state", key)
			}
		}
	}
	if len(seen) != 1+2*Size*Size {
		t.Errorf("expected %d distinct keys, got %d", 1+2*Size*Size, len(seen))
	}
}

func TestParseStateKey(t *testing.T) {
	key, err := ParseStateKey("120000021")
	if err != nil {
		t.Fatalf("valid key rejected: %s", err)
	}
	if key.State().Key() != key {
		t.Errorf("parsed key does not round trip")
	}
	for _, bad := range []string{"", "12", "1200000213", "12000002x", "120000023"} {
		if _, err := ParseStateKey(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestPerceivedStateBoard(t *testing.T) {
	b := Board{{PlayerB, Empty, Empty}, {Empty, PlayerA, Empty}, {Empty, Empty, Empty}}
	s := Perceive(b, PlayerB)
	if s.Board(PlayerB, PlayerA) != b {
		t.Errorf("perceived state does not rebuild the board")
	}
}

func TestRenderWithoutColors(t *testing.T) {
	r := NewRenderer(false)
	out := r.Render(Board{{PlayerA, Empty, Empty}, {Empty, PlayerB, Empty}, {Empty, Empty, Human}})
	for _, symbol := range []string{"X", "O", "H"} {
		if !strings.Contains(out, symbol) {
			t.Errorf("rendered board is missing %s:\n%s", symbol, out)
		}
	}
	if strings.Count(out, "\n") != 6 {
		t.Errorf("unexpected number of lines:\n%s", out)
	}
}
