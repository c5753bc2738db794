package core

import (
	"strings"
	"testing"
)

func TestNewScreen(t *testing.T) {
	s := NewScreen(80, 24)

	if s.Width() != 80 {
		t.Errorf("Width() = %d, expected 80", s.Width())
	}
	if s.Height() != 24 {
		t.Errorf("Height() = %d, expected 24", s.Height())
	}

	// Check that it's initialized with spaces
	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			if s.Get(x, y) != ' ' {
				t.Errorf("New screen should be filled with spaces, got %q at (%d, %d)", s.Get(x, y), x, y)
			}
		}
	}
}

func TestScreenSetGet(t *testing.T) {
	s := NewScreen(10, 10)

	s.Set(5, 5, 'X')
	if s.Get(5, 5) != 'X' {
		t.Errorf("Get(5, 5) = %q, expected 'X'", s.Get(5, 5))
	}

	// Out of bounds is ignored
	s.Set(-1, 0, 'Y')
	s.Set(10, 0, 'Y')
	if s.Get(-1, 0) != ' ' {
		t.Error("Out-of-bounds Get should return space")
	}
}

func TestScreenSetColor(t *testing.T) {
	s := NewScreen(10, 3)

	s.SetColor(2, 1, '*', ColorBrightCyan)
	cell := s.GetCell(2, 1)
	if cell.Rune != '*' || cell.Color != ColorBrightCyan {
		t.Errorf("GetCell(2, 1) = %+v, expected '*' in bright cyan", cell)
	}

	s.Clear()
	if s.GetCell(2, 1).Color != ColorDefault {
		t.Error("Clear should reset colors")
	}
}

func TestScreenDrawTextColor(t *testing.T) {
	s := NewScreen(20, 5)

	s.DrawTextColor(2, 1, "Hello", ColorYellow)
	if got := s.Row(1); !strings.HasPrefix(got, "  Hello") {
		t.Errorf("Row(1) = %q, expected to start with '  Hello'", got)
	}
	if s.GetCell(2, 1).Color != ColorYellow {
		t.Error("DrawTextColor did not apply the color")
	}

	// Clipped at the right edge
	s.DrawTextColor(17, 2, "World", ColorDefault)
	if got := s.Row(2); !strings.HasSuffix(got, "Wor") {
		t.Errorf("Row(2) = %q, expected to end with 'Wor'", got)
	}
}

func TestScreenDrawTextCentered(t *testing.T) {
	s := NewScreen(11, 2)
	s.DrawTextCentered(0, "abc", ColorRed)

	if got := s.Row(0); got != "    abc    " {
		t.Errorf("Row(0) = %q, expected centered text", got)
	}

	// Wider than the screen: starts at the left edge and clips.
	s.DrawTextCentered(1, "abcdefghijklmn", ColorRed)
	if got := s.Row(1); got != "abcdefghijk" {
		t.Errorf("Row(1) = %q, expected clipped text", got)
	}
}

func TestScreenString(t *testing.T) {
	s := NewScreen(3, 2)
	s.Set(0, 0, 'a')
	s.Set(2, 1, 'b')

	if got := s.String(); got != "a  \n  b" {
		t.Errorf("String() = %q", got)
	}
}

func TestScreenResize(t *testing.T) {
	s := NewScreen(10, 10)
	s.Set(1, 1, 'X')
	s.Resize(20, 5)

	if s.Width() != 20 || s.Height() != 5 {
		t.Errorf("Resize() gave %dx%d, expected 20x5", s.Width(), s.Height())
	}
	if s.Get(1, 1) != ' ' {
		t.Error("Resize should clear the buffer")
	}
}
