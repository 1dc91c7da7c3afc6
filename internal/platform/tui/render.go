package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/gridrunner/internal/core"
	"github.com/vovakirdan/gridrunner/internal/env"
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault:       lipgloss.NewStyle(),
	core.ColorRed:           lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	core.ColorGreen:         lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	core.ColorYellow:        lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	core.ColorBlue:          lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	core.ColorMagenta:       lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	core.ColorCyan:          lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	core.ColorWhite:         lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	core.ColorBrightRed:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	core.ColorBrightGreen:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	core.ColorBrightYellow:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	core.ColorBrightBlue:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	core.ColorBrightMagenta: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	core.ColorBrightCyan:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	core.ColorBrightWhite:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
	core.ColorOrange:        lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	core.ColorGray:          lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}

var (
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Padding(0, 1)
	statusDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y, n := 0, s.Height(); y < n; y++ {
		if y > 0 {
			sb.WriteRune('\n')
		}

		// Group consecutive cells with the same color for efficiency
		x := 0
		for x < s.Width() {
			cell := s.GetCell(x, y)
			startColor := cell.Color

			var run strings.Builder
			for x < s.Width() {
				cell = s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// Glyphs tells the renderer how cells and objects look. registry.Game
// implements it.
type Glyphs interface {
	CellGlyph(c env.CellContents) core.ScreenCell
	ObjectGlyph(obj env.Object) core.ScreenCell
}

// cellColumns is how many screen columns one grid cell takes. Terminal
// characters are about twice as tall as wide.
const cellColumns = 2

// EnvironmentSize returns the screen size needed to draw cells.
func EnvironmentSize(cells *env.CellEnvironment) (int, int) {
	return cells.CellWidth() * cellColumns, cells.CellHeight()
}

// DrawEnvironment paints the grid and its objects with the top-left corner at
// (ox, oy). An object is drawn in the cell holding its centre, so a moving
// object hops from cell to cell halfway through a step.
func DrawEnvironment(dst *core.Screen, cells *env.CellEnvironment, g Glyphs, ox, oy int) {
	for cy, n := 0, cells.CellHeight(); cy < n; cy++ {
		for cx, n := 0, cells.CellWidth(); cx < n; cx++ {
			gl := g.CellGlyph(cells.Cell(cx, cy))
			for i := 0; i < cellColumns; i++ {
				dst.SetColor(ox+cx*cellColumns+i, oy+cy, gl.Rune, gl.Color)
			}
		}
	}

	size := cells.CellSize()
	for _, obj := range cells.Objects() {
		loc := obj.Location()
		cx := core.FloorDiv(loc.X+size/2, size)
		cy := core.FloorDiv(loc.Y+size/2, size)
		gl := g.ObjectGlyph(obj)
		dst.SetColor(ox+cx*cellColumns, oy+cy, gl.Rune, gl.Color)
		dst.SetColor(ox+cx*cellColumns+1, oy+cy, ' ', core.ColorDefault)
	}
}

// DrawDialog paints a framed text box across the bottom of the screen.
func DrawDialog(dst *core.Screen, text string, waiting bool) {
	w := dst.Width() - 4
	if w < 10 {
		w = dst.Width()
	}
	lines := wrap(text, w-4)
	h := len(lines) + 2
	x := (dst.Width() - w) / 2
	y := dst.Height() - h - 1
	if y < 0 {
		y = 0
	}

	box := core.NewRect(x, y, w, h)
	dst.Fill(box, core.Blank)
	dst.DrawBox(box)
	for i, line := range lines {
		dst.DrawTextColor(x+2, y+1+i, line, core.ColorBrightWhite)
	}
	if waiting {
		dst.DrawTextColor(x+w-3, y+h-1, "▼", core.ColorBrightYellow)
	}
}

// DrawIntermission paints the screen shown between two levels.
func DrawIntermission(dst *core.Screen, finished, next string, reward float64, remaining time.Duration) {
	dst.Clear()
	mid := dst.Height() / 2
	dst.DrawTextCentered(mid-2, "LEVEL COMPLETE")
	if finished != "" {
		dst.DrawTextCentered(mid-1, finished)
	}
	dst.DrawTextCentered(mid+1, fmt.Sprintf("Reward so far: %.0f", reward))
	secs := int((remaining + time.Second - 1) / time.Second)
	dst.DrawTextCentered(mid+3, fmt.Sprintf("Next: %s in %ds", next, secs))
}

// DrawGameOver paints the final screen of a run.
func DrawGameOver(dst *core.Screen, reason string, reward float64, levels int) {
	dst.Clear()
	mid := dst.Height() / 2
	title := "GAME OVER"
	if reason == "completed" {
		title = "YOU MADE IT"
	}
	dst.DrawTextCentered(mid-2, title)
	dst.DrawTextCentered(mid, fmt.Sprintf("Reward: %.0f   Levels: %d", reward, levels))
	dst.DrawTextCentered(mid+2, fmt.Sprintf("(%s) press q to leave", reason))
}

// renderStatus builds the one-line status bar.
func renderStatus(level string, reward float64, frames uint64, paused bool, width int) string {
	left := statusStyle.Render(fmt.Sprintf("%s  reward %.0f", level, reward))
	right := fmt.Sprintf("frame %d", frames)
	if paused {
		right = "PAUSED  " + right
	}
	right = statusDimStyle.Render(right)
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// wrap breaks text into lines of at most width runes on spaces.
func wrap(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	var lines []string
	var cur []rune
	for _, word := range strings.Fields(text) {
		wr := []rune(word)
		switch {
		case len(cur) == 0:
			cur = wr
		case len(cur)+1+len(wr) <= width:
			cur = append(append(cur, ' '), wr...)
		default:
			lines = append(lines, string(cur))
			cur = wr
		}
		for len(cur) > width {
			lines = append(lines, string(cur[:width]))
			cur = cur[width:]
		}
	}
	if len(cur) > 0 || len(lines) == 0 {
		lines = append(lines, string(cur))
	}
	return lines
}
