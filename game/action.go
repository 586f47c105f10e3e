package game

import "fmt"

// Action is a single input applied to a game state. The ordering of the
// constants is the fixed lexicographic order used when breaking ties
// between otherwise equivalent solution lines.
type Action uint8

const (
	MoveLeft Action = iota
	MoveRight
	SoftDrop
	HardDrop
	RotateCW
	RotateCCW
	Rotate180
	Hold
	Place
)

func (a Action) String() string {
	switch a {
	case MoveLeft:
		return "left"
	case MoveRight:
		return "right"
	case SoftDrop:
		return "softdrop"
	case HardDrop:
		return "harddrop"
	case RotateCW:
		return "cw"
	case RotateCCW:
		return "ccw"
	case Rotate180:
		return "180"
	case Hold:
		return "hold"
	case Place:
		return "place"
	}
	return "unknown"
}

// ActionFromID resolves a configuration move id to its action.
func ActionFromID(id string) (Action, error) {
	for a := MoveLeft; a <= Place; a++ {
		if a.String() == id {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", id)
}

// IsMove reports whether a moves the active piece without locking it.
func (a Action) IsMove() bool {
	return a <= Rotate180
}

// Line is an ordered action sequence from the root of a search.
type Line []Action

func (l Line) String() string {
	s := ""
	for i, a := range l {
		if i > 0 {
			s += " "
		}
		s += a.String()
	}
	return s
}

// Compare orders lines lexicographically by action constant, with a
// shorter line ordering before any extension of it.
func (l Line) Compare(other Line) int {
	n := len(l)
	if len(other) < n {
		n = len(other)
	}
	for i := 0; i < n; i++ {
		if l[i] != other[i] {
			if l[i] < other[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(l) < len(other):
		return -1
	case len(l) > len(other):
		return 1
	}
	return 0
}

// Clone returns an independent copy of the line.
func (l Line) Clone() Line {
	c := make(Line, len(l))
	copy(c, l)
	return c
}
