package board

import (
	"testing"

	"github.com/matryer/is"
)

func TestIsFilledWallsAndFloor(t *testing.T) {
	is := is.New(t)
	b := Empty()

	for y := int8(0); y < Height; y++ {
		is.True(b.IsFilled(Pt(-1, y))) // left wall
		is.True(b.IsFilled(Pt(10, y))) // right wall
	}
	for x := int8(0); x < Width; x++ {
		is.True(b.IsFilled(Pt(x, -1))) // floor
		is.True(!b.IsFilled(Pt(x, Height)))
	}
}

func TestFillAndUnfill(t *testing.T) {
	is := is.New(t)
	b := Empty()

	pts := []Point{Pt(0, 0), Pt(9, 0), Pt(0, 5), Pt(9, 6), Pt(3, 12), Pt(9, 23)}
	for _, p := range pts {
		b.Fill(p)
	}
	for _, p := range pts {
		is.True(b.IsFilled(p))
	}
	is.Equal(b.CellCount(), len(pts))

	for _, p := range pts {
		b.Unfill(p)
	}
	is.True(b.IsEmpty())
}

func TestRowPredicates(t *testing.T) {
	is := is.New(t)
	b := Empty()

	for x := int8(0); x < Width; x++ {
		b.Fill(Pt(x, 7))
	}
	is.True(b.IsRowFull(7))
	is.True(!b.IsRowEmpty(7))
	is.True(b.IsRowEmpty(8))

	b.Unfill(Pt(4, 7))
	is.True(!b.IsRowFull(7))
}

func TestClearFullRowsCompacts(t *testing.T) {
	is := is.New(t)
	b := Empty()

	// Full rows at 0, 1, 4, 5 and a diagonal at rows 2 and 3 that must
	// shift down to rows 0 and 1.
	for x := int8(0); x < Width; x++ {
		b.Fill(Pt(x, 0))
		b.Fill(Pt(x, 1))
		b.Fill(Pt(x, 4))
		b.Fill(Pt(x, 5))
	}
	b.Fill(Pt(2, 2))
	b.Fill(Pt(3, 3))

	cleared := b.ClearFullRows()
	is.Equal(cleared, 4)

	expected := Empty()
	expected.Fill(Pt(2, 0))
	expected.Fill(Pt(3, 1))
	is.Equal(b, expected)
}

func TestClearFullRowsAcrossSegmentBoundary(t *testing.T) {
	is := is.New(t)
	b := Empty()

	// Row 5 is the top row of segment 0; row 6 is the bottom of segment 1.
	for x := int8(0); x < Width; x++ {
		b.Fill(Pt(x, 5))
	}
	b.Fill(Pt(7, 6))

	cleared := b.ClearFullRows()
	is.Equal(cleared, 1)
	is.True(b.IsFilled(Pt(7, 5)))
	is.True(!b.IsFilled(Pt(7, 6)))
}

func TestClearFullRowsRoundTrip(t *testing.T) {
	is := is.New(t)
	b := Empty()

	// One full row plus scattered cells above it: clearing removes exactly
	// Width cells and shifts the rest down one row.
	for x := int8(0); x < Width; x++ {
		b.Fill(Pt(x, 0))
	}
	b.Fill(Pt(1, 1))
	b.Fill(Pt(8, 2))
	before := b.CellCount()

	cleared := b.ClearFullRows()
	is.Equal(cleared, 1)
	is.Equal(b.CellCount(), before-Width)
	is.True(b.IsFilled(Pt(1, 0)))
	is.True(b.IsFilled(Pt(8, 1)))
}

func TestCanFitAndCanPlace(t *testing.T) {
	is := is.New(t)
	b := Empty()
	b.Fill(Pt(3, 0))

	flat := [4]Point{Pt(3, 1), Pt(4, 1), Pt(5, 1), Pt(6, 1)}
	is.True(b.CanFit(flat))
	is.True(b.CanPlace(flat)) // rests on the filled cell at (3, 0)

	floating := [4]Point{Pt(4, 2), Pt(5, 2), Pt(6, 2), Pt(7, 2)}
	is.True(!b.CanPlace(floating))

	overlapping := [4]Point{Pt(3, 0), Pt(4, 0), Pt(5, 0), Pt(6, 0)}
	is.True(!b.CanFit(overlapping))

	againstWall := [4]Point{Pt(-1, 0), Pt(0, 0), Pt(1, 0), Pt(2, 0)}
	is.True(!b.CanFit(againstWall))
}
