// Package piece defines the seven tetromino kinds, their orientations, and
// the geometry used to project a piece onto the board.
package piece

import (
	"fmt"

	"github.com/bryanmylee/perfect-clear/board"
)

// Kind is a tetromino shape. KindNone marks an empty queue slot or an
// uncharged hold slot.
type Kind uint8

const (
	KindNone Kind = iota
	I
	J
	L
	O
	S
	T
	Z
)

// Kinds lists the seven playable kinds in canonical order.
var Kinds = [7]Kind{I, J, L, O, S, T, Z}

// NumKinds is the number of playable kinds.
const NumKinds = 7

func (k Kind) String() string {
	switch k {
	case I:
		return "I"
	case J:
		return "J"
	case L:
		return "L"
	case O:
		return "O"
	case S:
		return "S"
	case T:
		return "T"
	case Z:
		return "Z"
	}
	return "?"
}

// KindFromRune parses a kind letter. Returns KindNone and an error for
// anything else.
func KindFromRune(r rune) (Kind, error) {
	switch r {
	case 'I', 'i':
		return I, nil
	case 'J', 'j':
		return J, nil
	case 'L', 'l':
		return L, nil
	case 'O', 'o':
		return O, nil
	case 'S', 's':
		return S, nil
	case 'T', 't':
		return T, nil
	case 'Z', 'z':
		return Z, nil
	}
	return KindNone, fmt.Errorf("unknown piece kind %q", r)
}

// Orientation is one of the four rotation states, in 0/R/2/L order.
type Orientation uint8

const (
	North Orientation = iota // 0, spawn state
	East                     // R, one clockwise turn
	South                    // 2
	West                     // L, one counter-clockwise turn
)

func (o Orientation) String() string {
	return [...]string{"0", "R", "2", "L"}[o&3]
}

// Rotation is a rotation move applied to an orientation.
type Rotation uint8

const (
	Clockwise Rotation = iota
	CounterClockwise
	Half
)

// Rotated returns the orientation after applying r.
func (o Orientation) Rotated(r Rotation) Orientation {
	switch r {
	case Clockwise:
		return (o + 1) & 3
	case CounterClockwise:
		return (o + 3) & 3
	default:
		return (o + 2) & 3
	}
}

// boxSize is the bounding box edge length for a kind. I and O rotate
// inside a 4x4 box; the rest inside a 3x3 box. Rotating the box contents
// symmetrically avoids special-casing pieces whose true center sits on a
// half-cell boundary.
func (k Kind) boxSize() int8 {
	if k == I || k == O {
		return 4
	}
	return 3
}

// spawnOffsets are the occupied cells within the bounding box at spawn
// orientation, as offsets from the box's bottom-left corner.
var spawnOffsets = map[Kind][4]board.Point{
	I: {board.Pt(0, 2), board.Pt(1, 2), board.Pt(2, 2), board.Pt(3, 2)},
	J: {board.Pt(0, 2), board.Pt(0, 1), board.Pt(1, 1), board.Pt(2, 1)},
	L: {board.Pt(2, 2), board.Pt(0, 1), board.Pt(1, 1), board.Pt(2, 1)},
	O: {board.Pt(1, 2), board.Pt(2, 2), board.Pt(1, 1), board.Pt(2, 1)},
	S: {board.Pt(1, 2), board.Pt(2, 2), board.Pt(0, 1), board.Pt(1, 1)},
	T: {board.Pt(1, 2), board.Pt(0, 1), board.Pt(1, 1), board.Pt(2, 1)},
	Z: {board.Pt(0, 2), board.Pt(1, 2), board.Pt(1, 1), board.Pt(2, 1)},
}

// SpawnPosition is the bounding box bottom-left corner at spawn.
func (k Kind) SpawnPosition() board.Point {
	if k == I {
		return board.Pt(3, 18)
	}
	return board.Pt(3, 19)
}

// Piece is an active piece: a kind at an orientation, positioned by the
// bottom-left corner of its bounding box.
type Piece struct {
	Kind        Kind
	Orientation Orientation
	Position    board.Point
}

// Spawn returns the piece in its spawn orientation and position.
func Spawn(k Kind) Piece {
	return Piece{Kind: k, Orientation: North, Position: k.SpawnPosition()}
}

// Points returns the four board cells the piece occupies.
func (p Piece) Points() [4]board.Point {
	offsets := orientedOffsets(p.Kind, p.Orientation)
	for i := range offsets {
		offsets[i] = offsets[i].Add(p.Position)
	}
	return offsets
}

func orientedOffsets(k Kind, o Orientation) [4]board.Point {
	offsets := spawnOffsets[k]
	m := k.boxSize() - 1
	switch o {
	case North:
	case South:
		for i, off := range offsets {
			offsets[i] = board.Pt(m-off.X, m-off.Y)
		}
	case East:
		for i, off := range offsets {
			offsets[i] = board.Pt(off.Y, m-off.X)
		}
	case West:
		for i, off := range offsets {
			offsets[i] = board.Pt(m-off.Y, off.X)
		}
	}
	return offsets
}
