package levels

import (
	"bufio"
	"encoding/json"
	"io"
	"strconv"
)

// Matrix is a width x height grid of levels in which every cell is either
// set or unset.
type Matrix struct {
	width  int
	height int
	values []uint64
	set    []bool
}

// NewMatrix creates a matrix with every cell unset.
func NewMatrix(width, height int) *Matrix {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Matrix{
		width:  width,
		height: height,
		values: make([]uint64, width*height),
		set:    make([]bool, width*height),
	}
}

// Width returns the number of columns.
func (m *Matrix) Width() int { return m.width }

// Height returns the number of rows.
func (m *Matrix) Height() int { return m.height }

// Set stores a level. Out-of-range coordinates are ignored.
func (m *Matrix) Set(x, y int, v uint64) {
	if !m.inBounds(x, y) {
		return
	}
	i := y*m.width + x
	m.values[i] = v
	m.set[i] = true
}

// At returns the level at (x, y) and whether it was set.
func (m *Matrix) At(x, y int) (uint64, bool) {
	if !m.inBounds(x, y) {
		return 0, false
	}
	i := y*m.width + x
	return m.values[i], m.set[i]
}

// Max returns the largest set level, or 0 if no cell is set.
func (m *Matrix) Max() uint64 {
	var best uint64
	for i, v := range m.values {
		if m.set[i] && v > best {
			best = v
		}
	}
	return best
}

// Defined returns the number of set cells.
func (m *Matrix) Defined() int {
	n := 0
	for _, ok := range m.set {
		if ok {
			n++
		}
	}
	return n
}

// Render writes one line per row with cells separated by a space and "."
// for unset cells.
func (m *Matrix) Render(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			if x > 0 {
				bw.WriteByte(' ')
			}
			if v, ok := m.At(x, y); ok {
				bw.WriteString(strconv.FormatUint(v, 10))
			} else {
				bw.WriteByte('.')
			}
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Rows returns the matrix row by row with nil for unset cells.
func (m *Matrix) Rows() [][]*uint64 {
	rows := make([][]*uint64, m.height)
	for y := range rows {
		rows[y] = make([]*uint64, m.width)
		for x := range rows[y] {
			if v, ok := m.At(x, y); ok {
				v := v
				rows[y][x] = &v
			}
		}
	}
	return rows
}

// MarshalJSON encodes the matrix as its dimensions and rows, unset cells
// as null.
func (m *Matrix) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Width  int         `json:"width"`
		Height int         `json:"height"`
		Max    uint64      `json:"max"`
		Rows   [][]*uint64 `json:"rows"`
	}{m.width, m.height, m.Max(), m.Rows()})
}

func (m *Matrix) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.width && y < m.height
}
