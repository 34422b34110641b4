package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Mark tints a canvas cell.
type Mark uint8

const (
	MarkNone Mark = iota
	MarkSelection
	MarkHighlight
)

// brailleBits maps a dot within a 2x4 cell to its bit in U+2800.
var brailleBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille dot grid. Dot (0, 0) is the top-left corner; every
// terminal cell holds 2x4 dots.
type Canvas struct {
	cols, rows int
	dots       []rune
	marks      []Mark
}

// NewCanvas returns an empty canvas of cols x rows cells.
func NewCanvas(cols, rows int) *Canvas {
	cols, rows = max(cols, 0), max(rows, 0)
	return &Canvas{
		cols:  cols,
		rows:  rows,
		dots:  make([]rune, cols*rows),
		marks: make([]Mark, cols*rows),
	}
}

// DotSize returns the canvas size in dots.
func (c *Canvas) DotSize() (w, h int) {
	return c.cols * 2, c.rows * 4
}

// Set lights one dot. Dots outside the canvas are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 || x >= c.cols*2 || y >= c.rows*4 {
		return
	}
	c.dots[(y/4)*c.cols+x/2] |= brailleBits[y%4][x%2]
}

// Line draws a straight segment between two dots.
func (c *Canvas) Line(x0, y0, x1, y1 int) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// Mark tints the cell at col, row.
func (c *Canvas) Mark(col, row int, m Mark) {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return
	}
	c.marks[row*c.cols+col] = m
}

// Rect outlines the cells between two corners with m.
func (c *Canvas) Rect(c0, r0, c1, r1 int, m Mark) {
	if c0 > c1 {
		c0, c1 = c1, c0
	}
	if r0 > r1 {
		r0, r1 = r1, r0
	}
	for col := c0; col <= c1; col++ {
		c.Mark(col, r0, m)
		c.Mark(col, r1, m)
	}
	for row := r0; row <= r1; row++ {
		c.Mark(c0, row, m)
		c.Mark(c1, row, m)
	}
}

// Cell returns the braille glyph at col, row.
func (c *Canvas) Cell(col, row int) rune {
	return 0x2800 + c.dots[row*c.cols+col]
}

// Lines renders each row, styling runs of cells by their mark. Empty
// selection cells are drawn as a box outline.
func (c *Canvas) Lines(plain, selection, highlight lipgloss.Style) []string {
	out := make([]string, c.rows)
	for row := 0; row < c.rows; row++ {
		var b, run strings.Builder
		cur := MarkNone
		flush := func() {
			if run.Len() == 0 {
				return
			}
			switch cur {
			case MarkSelection:
				b.WriteString(selection.Render(run.String()))
			case MarkHighlight:
				b.WriteString(highlight.Render(run.String()))
			default:
				b.WriteString(plain.Render(run.String()))
			}
			run.Reset()
		}
		for col := 0; col < c.cols; col++ {
			m := c.marks[row*c.cols+col]
			if m != cur {
				flush()
				cur = m
			}
			glyph := c.Cell(col, row)
			if m == MarkSelection && glyph == 0x2800 {
				glyph = '·'
			}
			run.WriteRune(glyph)
		}
		flush()
		out[row] = b.String()
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
