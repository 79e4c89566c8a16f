// SPDX-License-Identifier: MIT
package render

import (
	"image/color"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

const blockRune = "█"

// CellSurface is a Surface backed by a terminal cell grid. FillRect marks
// cells with a color; String renders the grid as styled block characters for
// the TUI view. Resize and drawing may happen from different goroutines, so
// the grid is mutex-protected.
type CellSurface struct {
	mu     sync.Mutex
	width  int
	height int
	cells  []color.Color // row-major, nil means background

	styles map[string]lipgloss.Style // style cache keyed by hex color
}

// NewCellSurface creates a surface of the given extent.
func NewCellSurface(width, height int) *CellSurface {
	s := &CellSurface{styles: make(map[string]lipgloss.Style)}
	s.Resize(width, height)
	return s
}

// Resize changes the surface extent and clears it.
func (s *CellSurface) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
	s.cells = make([]color.Color, width*height)
}

// Size returns the current extent.
func (s *CellSurface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

// Clear resets all cells to background.
func (s *CellSurface) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cells {
		s.cells[i] = nil
	}
}

// FillRect fills a rectangle, clipping against the surface bounds.
func (s *CellSurface) FillRect(x, y, width, height int, c color.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()

	x0, y0 := x, y
	x1, y1 := x+width, y+height
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > s.width {
		x1 = s.width
	}
	if y1 > s.height {
		y1 = s.height
	}

	for row := y0; row < y1; row++ {
		base := row * s.width
		for col := x0; col < x1; col++ {
			s.cells[base+col] = c
		}
	}
}

// String renders the grid as newline-separated styled rows.
func (s *CellSurface) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	for row := range s.height {
		if row > 0 {
			b.WriteByte('\n')
		}
		base := row * s.width
		for col := range s.width {
			c := s.cells[base+col]
			if c == nil {
				b.WriteByte(' ')
				continue
			}
			b.WriteString(s.styleFor(c).Render(blockRune))
		}
	}
	return b.String()
}

// styleFor returns a cached lipgloss style for the color. Called with the
// mutex held.
func (s *CellSurface) styleFor(c color.Color) lipgloss.Style {
	hex := hexOf(c)
	if style, ok := s.styles[hex]; ok {
		return style
	}
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
	s.styles[hex] = style
	return style
}

// hexOf formats any color as #rrggbb.
func hexOf(c color.Color) string {
	r, g, b, _ := c.RGBA()
	const digits = "0123456789abcdef"
	out := [7]byte{'#'}
	for i, v := range [3]uint32{r >> 8, g >> 8, b >> 8} {
		out[1+2*i] = digits[v>>4]
		out[2+2*i] = digits[v&0xf]
	}
	return string(out[:])
}

var _ Surface = (*CellSurface)(nil)
