package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a braille dot grid. A cell may carry a label that replaces its
// dots when drawn; labels mark body positions and carry a tag, the body index.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	labels        map[[2]int]label
}

type label struct {
	r   rune
	tag int
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		labels: make(map[[2]int]label),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
	return c
}

// SubWidth and SubHeight are the canvas size in dots.
func (c *Canvas) SubWidth() int  { return c.Width * 2 }
func (c *Canvas) SubHeight() int { return c.Height * 4 }

// Set lights the dot at (x, y) in dot coordinates. Out of range is ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// Label puts r in the cell holding dot (x, y). A later label wins.
func (c *Canvas) Label(x, y int, r rune, tag int) {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return
	}
	c.labels[[2]int{y / 4, x / 2}] = label{r, tag}
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
	clear(c.labels)
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Rows renders each row, with labels substituted, without styling.
func (c *Canvas) Rows() []string {
	rows := make([]string, c.Height)
	for i, row := range c.Grid {
		line := make([]rune, len(row))
		copy(line, row)
		for j := range line {
			if l, ok := c.labels[[2]int{i, j}]; ok {
				line[j] = l.r
			}
		}
		rows[i] = string(line)
	}
	return rows
}

// Render styles dots with dots and each label with style(tag).
func (c *Canvas) Render(dots lipgloss.Style, style func(tag int) lipgloss.Style) string {
	var b strings.Builder
	for i, row := range c.Grid {
		start := 0
		for j := range row {
			l, ok := c.labels[[2]int{i, j}]
			if !ok {
				continue
			}
			if j > start {
				b.WriteString(dots.Render(string(row[start:j])))
			}
			b.WriteString(style(l.tag).Render(string(l.r)))
			start = j + 1
		}
		if start < len(row) {
			b.WriteString(dots.Render(string(row[start:])))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Rows() {
		b.WriteString(row + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
