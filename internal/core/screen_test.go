package core

import (
	"strings"
	"testing"
)

func TestNewScreenIsBlank(t *testing.T) {
	s := NewScreen(8, 3)

	if s.Width() != 8 || s.Height() != 3 {
		t.Fatalf("size = %dx%d, expected 8x3", s.Width(), s.Height())
	}
	if got := s.String(); got != "        \n        \n        " {
		t.Errorf("String() = %q, expected three blank rows", got)
	}
}

func TestScreenOffScreenWrites(t *testing.T) {
	s := NewScreen(4, 2)

	for _, p := range []Location{L(-1, 0), L(4, 0), L(0, -1), L(0, 2)} {
		s.SetColor(p.X, p.Y, 'X', ColorRed)
		if got := s.GetCell(p.X, p.Y); got != Blank {
			t.Errorf("GetCell(%v) = %+v, expected Blank", p, got)
		}
	}
	if strings.ContainsRune(s.String(), 'X') {
		t.Errorf("off-screen write leaked: %q", s.String())
	}
}

func TestScreenColors(t *testing.T) {
	s := NewScreen(10, 3)
	if n := s.DrawTextColor(1, 1, "@@", ColorBrightYellow); n != 2 {
		t.Errorf("DrawTextColor() = %d, expected 2", n)
	}

	cell := s.GetCell(1, 1)
	if cell.Rune != '@' || cell.Color != ColorBrightYellow {
		t.Errorf("GetCell(1, 1) = %+v, expected yellow '@'", cell)
	}

	s.Set(2, 1, 'x')
	if got := s.GetCell(2, 1).Color; got != ColorDefault {
		t.Errorf("Set should reset colour, got %v", got)
	}
}

func TestScreenFill(t *testing.T) {
	tests := []struct {
		name string
		r    Rect
		want string
	}{
		{"inside", NewRect(1, 0, 2, 2), " ## \n ## \n    "},
		{"clipped left and bottom", NewRect(-2, 1, 3, 5), "    \n#   \n#   "},
		{"off screen", NewRect(10, 10, 3, 3), "    \n    \n    "},
		{"whole screen", NewRect(0, 0, 4, 3), "####\n####\n####"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewScreen(4, 3)
			s.Fill(tc.r, ScreenCell{Rune: '#', Color: ColorBlue})
			if got := s.String(); got != tc.want {
				t.Errorf("Fill(%+v) = %q, expected %q", tc.r, got, tc.want)
			}
		})
	}

	s := NewScreen(4, 3)
	s.Fill(s.Bounds(), ScreenCell{Rune: '#'})
	s.Clear()
	if got := s.Row(1); got != "    " {
		t.Errorf("after Clear, Row(1) = %q", got)
	}
}

func TestScreenText(t *testing.T) {
	s := NewScreen(10, 3)
	s.DrawText(8, 0, "Hello")
	s.DrawTextCentered(1, "mid")
	s.DrawText(-2, 2, "cut")

	want := []string{"        He", "   mid    ", "t         "}
	for y, row := range want {
		if got := s.Row(y); got != row {
			t.Errorf("Row(%d) = %q, expected %q", y, got, row)
		}
	}
	if got := s.Row(5); got != "          " {
		t.Errorf("Row(5) = %q, expected blanks", got)
	}
}

func TestScreenDrawBox(t *testing.T) {
	s := NewScreen(6, 4)
	s.DrawBox(NewRect(0, 0, 5, 4))

	want := "┌───┐ \n│   │ \n│   │ \n└───┘ "
	if got := s.String(); got != want {
		t.Errorf("DrawBox:\n%s\nexpected:\n%s", got, want)
	}

	s.Clear()
	s.DrawBox(NewRect(1, 1, 1, 3))
	if got := s.String(); strings.TrimSpace(got) != "" {
		t.Errorf("a box narrower than two columns should draw nothing, got %q", got)
	}
}

func TestScreenResize(t *testing.T) {
	s := NewScreen(10, 10)
	s.DrawText(0, 0, "Hello")
	s.DrawText(0, 5, "World")

	s.Resize(4, 6)
	if s.Width() != 4 || s.Height() != 6 {
		t.Fatalf("after resize, size = %dx%d, expected 4x6", s.Width(), s.Height())
	}
	if got := s.Row(0); got != "Hell" {
		t.Errorf("Row(0) = %q, expected \"Hell\"", got)
	}

	s.Resize(7, 8)
	if got := s.Row(5); got != "Worl   " {
		t.Errorf("Row(5) = %q after enlarging, expected \"Worl   \"", got)
	}
	if got := s.Row(7); got != "       " {
		t.Errorf("Row(7) = %q, expected blanks", got)
	}

	s.Resize(-3, 2)
	if s.Width() != 0 || s.String() != "\n" {
		t.Errorf("negative width should give an empty screen, got %q", s.String())
	}
}
