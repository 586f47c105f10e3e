package piece

import (
	"fmt"

	"github.com/bryanmylee/perfect-clear/board"
)

// KickTable identifies the set of offset candidates tried when a rotation
// collides at the target orientation.
type KickTable uint8

const (
	// KickSRS is the Super Rotation System guideline table.
	KickSRS KickTable = iota
	// KickNone permits only unkicked rotations.
	KickNone
)

// KickTableFromID resolves a configuration kick table id.
func KickTableFromID(id string) (KickTable, error) {
	switch id {
	case "srs":
		return KickSRS, nil
	case "none":
		return KickNone, nil
	}
	return 0, fmt.Errorf("unknown kick table %q", id)
}

func (t KickTable) String() string {
	if t == KickNone {
		return "none"
	}
	return "srs"
}

type transition struct {
	from, to Orientation
}

// srsCommonKicks applies to J, L, S, T and Z. Offsets are (x, y) and are
// tried in order; the first collision-free candidate wins.
var srsCommonKicks = map[transition][4]board.Point{
	{North, East}: {board.Pt(-1, 0), board.Pt(-1, 1), board.Pt(0, -2), board.Pt(-1, -2)},
	{East, North}: {board.Pt(1, 0), board.Pt(1, -1), board.Pt(0, 2), board.Pt(1, 2)},
	{East, South}: {board.Pt(1, 0), board.Pt(1, -1), board.Pt(0, 2), board.Pt(1, 2)},
	{South, East}: {board.Pt(-1, 0), board.Pt(-1, 1), board.Pt(0, -2), board.Pt(-1, -2)},
	{South, West}: {board.Pt(1, 0), board.Pt(1, 1), board.Pt(0, -2), board.Pt(1, -2)},
	{West, South}: {board.Pt(-1, 0), board.Pt(-1, -1), board.Pt(0, 2), board.Pt(-1, 2)},
	{West, North}: {board.Pt(-1, 0), board.Pt(-1, -1), board.Pt(0, 2), board.Pt(-1, 2)},
	{North, West}: {board.Pt(1, 0), board.Pt(1, 1), board.Pt(0, -2), board.Pt(1, -2)},
}

// srsIKicks is the I piece's own table; its rotation center sits on a cell
// corner so its kicks differ from the common table.
var srsIKicks = map[transition][4]board.Point{
	{North, East}: {board.Pt(-2, 0), board.Pt(1, 0), board.Pt(-2, -1), board.Pt(1, 2)},
	{East, North}: {board.Pt(2, 0), board.Pt(-1, 0), board.Pt(2, 1), board.Pt(-1, -2)},
	{East, South}: {board.Pt(-1, 0), board.Pt(2, 0), board.Pt(-1, 2), board.Pt(2, -1)},
	{South, East}: {board.Pt(1, 0), board.Pt(-2, 0), board.Pt(1, -2), board.Pt(-2, 1)},
	{South, West}: {board.Pt(2, 0), board.Pt(-1, 0), board.Pt(2, 1), board.Pt(-1, -2)},
	{West, South}: {board.Pt(-2, 0), board.Pt(1, 0), board.Pt(-2, -1), board.Pt(1, 2)},
	{West, North}: {board.Pt(1, 0), board.Pt(-2, 0), board.Pt(1, -2), board.Pt(-2, 1)},
	{North, West}: {board.Pt(-1, 0), board.Pt(2, 0), board.Pt(-1, 2), board.Pt(2, -1)},
}

// Kicks returns the ordered offset candidates for rotating kind k between
// two orientations, or nil when the table defines none (O pieces, 180
// transitions, and every transition under KickNone).
func (t KickTable) Kicks(k Kind, from, to Orientation) []board.Point {
	if t == KickNone || k == O {
		return nil
	}
	var kicks [4]board.Point
	var ok bool
	if k == I {
		kicks, ok = srsIKicks[transition{from, to}]
	} else {
		kicks, ok = srsCommonKicks[transition{from, to}]
	}
	if !ok {
		return nil
	}
	return kicks[:]
}
