package core

import (
	"strings"
)

// Color is a foreground colour of a screen cell. The platform layer decides
// how each one looks on the terminal.
type Color uint8

// Palette available to games. ColorDefault leaves the terminal colour alone.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite
	ColorOrange
	ColorGray
)

// ScreenCell is one character of the screen buffer with its colour.
type ScreenCell struct {
	Rune  rune
	Color Color
}

// Blank is an uncoloured space.
var Blank = ScreenCell{Rune: ' '}

// Screen is a character buffer the views draw the environment into. Rows are
// stored back to back in one slice. Writes outside the buffer are dropped,
// so callers can draw partly off-screen without clipping first.
type Screen struct {
	width, height int
	cells         []ScreenCell
}

// NewScreen creates a blank screen of the given size.
func NewScreen(width, height int) *Screen {
	s := &Screen{}
	s.Resize(width, height)
	return s
}

// Width returns the screen width in characters.
func (s *Screen) Width() int { return s.width }

// Height returns the screen height in characters.
func (s *Screen) Height() int { return s.height }

// Bounds returns the whole screen as a rectangle.
func (s *Screen) Bounds() Rect { return NewRect(0, 0, s.width, s.height) }

// Resize changes the screen size, keeping whatever fits in the top-left
// corner.
func (s *Screen) Resize(width, height int) {
	width, height = max(0, width), max(0, height)
	if s.cells != nil && width == s.width && height == s.height {
		return
	}
	cells := make([]ScreenCell, width*height)
	for i := range cells {
		cells[i] = Blank
	}
	for y := 0; y < min(s.height, height); y++ {
		copy(cells[y*width:y*width+min(s.width, width)], s.row(y))
	}
	s.width, s.height, s.cells = width, height, cells
}

func (s *Screen) row(y int) []ScreenCell {
	return s.cells[y*s.width : (y+1)*s.width]
}

func (s *Screen) index(x, y int) (int, bool) {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return 0, false
	}
	return y*s.width + x, true
}

// Clear blanks the whole screen.
func (s *Screen) Clear() {
	s.Fill(s.Bounds(), Blank)
}

// Fill paints every cell of r that is on screen with c.
func (s *Screen) Fill(r Rect, c ScreenCell) {
	x0, y0 := max(0, r.X), max(0, r.Y)
	x1, y1 := min(s.width, r.Right()), min(s.height, r.Bottom())
	for y := y0; y < y1; y++ {
		row := s.row(y)
		for x := x0; x < x1; x++ {
			row[x] = c
		}
	}
}

// Set places an uncoloured rune.
func (s *Screen) Set(x, y int, r rune) {
	s.SetColor(x, y, r, ColorDefault)
}

// SetColor places a coloured rune.
func (s *Screen) SetColor(x, y int, r rune, c Color) {
	if i, ok := s.index(x, y); ok {
		s.cells[i] = ScreenCell{Rune: r, Color: c}
	}
}

// Get returns the rune at (x, y), or a space off-screen.
func (s *Screen) Get(x, y int) rune {
	return s.GetCell(x, y).Rune
}

// GetCell returns the cell at (x, y), or Blank off-screen.
func (s *Screen) GetCell(x, y int) ScreenCell {
	if i, ok := s.index(x, y); ok {
		return s.cells[i]
	}
	return Blank
}

// DrawText writes uncoloured text starting at (x, y).
func (s *Screen) DrawText(x, y int, text string) {
	s.DrawTextColor(x, y, text, ColorDefault)
}

// DrawTextColor writes text starting at (x, y), one rune per column, and
// returns the number of columns it covered.
func (s *Screen) DrawTextColor(x, y int, text string, c Color) int {
	n := 0
	for _, r := range text {
		s.SetColor(x+n, y, r, c)
		n++
	}
	return n
}

// DrawTextCentered writes text centred on row y.
func (s *Screen) DrawTextCentered(y int, text string) {
	s.DrawText((s.width-len([]rune(text)))/2, y, text)
}

// DrawBox outlines r with box-drawing characters.
func (s *Screen) DrawBox(r Rect) {
	if r.W < 2 || r.H < 2 {
		return
	}
	right, bottom := r.Right()-1, r.Bottom()-1
	for x := r.X + 1; x < right; x++ {
		s.Set(x, r.Y, '─')
		s.Set(x, bottom, '─')
	}
	for y := r.Y + 1; y < bottom; y++ {
		s.Set(r.X, y, '│')
		s.Set(right, y, '│')
	}
	s.Set(r.X, r.Y, '┌')
	s.Set(right, r.Y, '┐')
	s.Set(r.X, bottom, '└')
	s.Set(right, bottom, '┘')
}

// Row returns row y without colours. Off-screen rows are all spaces.
func (s *Screen) Row(y int) string {
	if y < 0 || y >= s.height {
		return strings.Repeat(" ", s.width)
	}
	var sb strings.Builder
	sb.Grow(s.width)
	for _, c := range s.row(y) {
		sb.WriteRune(c.Rune)
	}
	return sb.String()
}

// String returns the whole screen without colours, one line per row.
func (s *Screen) String() string {
	rows := make([]string, s.height)
	for y := range rows {
		rows[y] = s.Row(y)
	}
	return strings.Join(rows, "\n")
}
