// Package board implements the playfield as a bit-packed grid. A board has
// 24 rows of 10 columns, split into 4 segments of 6 rows so that each
// segment's fill state is a single 60-bit field inside a uint64.
//
// Segments are ordered bottom to top, and cells in each segment are ordered
// bottom-left to top-right. {0, 0} is the bottom-left cell of the board.
package board

import (
	"strings"
)

const (
	Width        = 10
	Height       = 24
	SegmentRows  = 6
	NumSegments  = Height / SegmentRows
	segmentCells = Width * SegmentRows
)

// Point addresses a cell. Coordinates may be out of bounds; out-of-bounds
// reads resolve per IsFilled.
type Point struct {
	X, Y int8
}

func Pt(x, y int8) Point {
	return Point{X: x, Y: y}
}

func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

type Board struct {
	fill [NumSegments]uint64
}

// Empty returns a board with no filled cells.
func Empty() Board {
	return Board{}
}

// Filled returns a board with every cell filled.
func Filled() Board {
	var b Board
	for i := range b.fill {
		b.fill[i] = fullSegment
	}
	return b
}

const fullSegment = (uint64(1) << segmentCells) - 1

const fullRow = (uint64(1) << Width) - 1

// IsFilled reports whether the cell at p is filled. The walls (x < 0,
// x >= Width) and the floor (y < 0) read as filled so that kick and
// translation checks need no special casing; cells above the board read
// as empty.
func (b *Board) IsFilled(p Point) bool {
	if p.X < 0 || p.X >= Width || p.Y < 0 {
		return true
	}
	if p.Y >= Height {
		return false
	}
	seg := int(p.Y) / SegmentRows
	idx := int(p.X) + (int(p.Y)%SegmentRows)*Width
	return (b.fill[seg]>>idx)&1 == 1
}

// Fill sets the cell at p. Out-of-bounds points are ignored.
func (b *Board) Fill(p Point) {
	if p.X < 0 || p.X >= Width || p.Y < 0 || p.Y >= Height {
		return
	}
	seg := int(p.Y) / SegmentRows
	idx := int(p.X) + (int(p.Y)%SegmentRows)*Width
	b.fill[seg] |= 1 << idx
}

// Unfill clears the cell at p. Out-of-bounds points are ignored.
func (b *Board) Unfill(p Point) {
	if p.X < 0 || p.X >= Width || p.Y < 0 || p.Y >= Height {
		return
	}
	seg := int(p.Y) / SegmentRows
	idx := int(p.X) + (int(p.Y)%SegmentRows)*Width
	b.fill[seg] &^= 1 << idx
}

// IsEmpty reports whether no cell is filled. An empty board after a lock
// step is a perfect clear.
func (b *Board) IsEmpty() bool {
	for _, seg := range b.fill {
		if seg != 0 {
			return false
		}
	}
	return true
}

// CellCount returns the number of filled cells.
func (b *Board) CellCount() int {
	n := 0
	for _, seg := range b.fill {
		n += popcount(seg)
	}
	return n
}

func popcount(x uint64) int {
	n := 0
	for x != 0 {
		x &= x - 1
		n++
	}
	return n
}

func (b *Board) rowBits(y int8) uint64 {
	seg := int(y) / SegmentRows
	shift := (int(y) % SegmentRows) * Width
	return (b.fill[seg] >> shift) & fullRow
}

// IsRowFull reports whether every cell in row y is filled.
func (b *Board) IsRowFull(y int8) bool {
	if y < 0 || y >= Height {
		return false
	}
	return b.rowBits(y) == fullRow
}

// IsRowEmpty reports whether no cell in row y is filled.
func (b *Board) IsRowEmpty(y int8) bool {
	if y < 0 || y >= Height {
		return true
	}
	return b.rowBits(y) == 0
}

// CanFit reports whether none of the given cells collides with a filled
// cell, the walls, or the floor.
func (b *Board) CanFit(points [4]Point) bool {
	for _, p := range points {
		if b.IsFilled(p) {
			return false
		}
	}
	return true
}

// CanPlace reports whether a piece occupying the given cells is resting:
// at least one cell directly below a piece cell is filled or off-board.
func (b *Board) CanPlace(points [4]Point) bool {
	for _, p := range points {
		if b.IsFilled(Pt(p.X, p.Y-1)) {
			return true
		}
	}
	return false
}

// FillPoints fills all four cells of a locked piece.
func (b *Board) FillPoints(points [4]Point) {
	for _, p := range points {
		b.Fill(p)
	}
}

// ClearFullRows removes every full row, compacts the rows above it
// downward, and returns the number of rows cleared. Detection and removal
// happen in one step so a caller never observes a board with a full row.
func (b *Board) ClearFullRows() int {
	var next Board
	cleared := 0
	nextY := int8(0)
	for y := int8(0); y < Height; y++ {
		row := b.rowBits(y)
		if row == fullRow {
			cleared++
			continue
		}
		seg := int(nextY) / SegmentRows
		shift := (int(nextY) % SegmentRows) * Width
		next.fill[seg] |= row << shift
		nextY++
	}
	*b = next
	return cleared
}

// Hash64 returns the raw segment words for fingerprinting.
func (b *Board) Hash64() [NumSegments]uint64 {
	return b.fill
}

// ToDisplayText returns a human-readable rendering of the lowest rows of
// the board, top row first.
func (b *Board) ToDisplayText(rows int8) string {
	if rows <= 0 || rows > Height {
		rows = Height
	}
	var sb strings.Builder
	for y := rows - 1; y >= 0; y-- {
		for x := int8(0); x < Width; x++ {
			if b.IsFilled(Pt(x, y)) {
				sb.WriteString("■")
			} else {
				sb.WriteString("·")
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
