// Package game holds the solver's game state and the reducer that applies
// actions to it. All reducers are pure: they return a new state and leave
// the receiver untouched, so branches of a search tree never share mutable
// data.
package game

import (
	"errors"

	"github.com/bryanmylee/perfect-clear/board"
	"github.com/bryanmylee/perfect-clear/piece"
)

const (
	// QueueLen is the fixed queue size. Fixed so states copy without heap
	// allocations.
	QueueLen = 7
	// HistoryLen is the bounded seen-piece history. Two bags is the most
	// the probability model ever needs to look back.
	HistoryLen = 14
)

var (
	ErrNoActivePiece   = errors.New("no active piece")
	ErrIllegalMove     = errors.New("illegal move")
	ErrHoldUnavailable = errors.New("hold already used this cycle")
	ErrPieceInAir      = errors.New("piece has no support below")
	ErrQueueEmpty      = errors.New("queue has no known next piece")
	ErrToppedOut       = errors.New("next piece cannot spawn")
)

// Game is a full game state. It is a value type; assignment is a deep copy.
type Game struct {
	Board     board.Board
	Active    piece.Piece // valid only when HasActive
	HasActive bool
	HoldKind  piece.Kind // KindNone when the hold slot is uncharged
	HoldUsed  bool

	// Queue entries in draw order. KindNone marks an unresolved slot.
	Queue [QueueLen]piece.Kind

	// Seen is the most recent observed draws, oldest first; SeenCount is
	// the total number of draws ever observed and fixes the bag phase.
	Seen      [HistoryLen]piece.Kind
	SeenCount int

	// PiecesPlaced counts locks since the last perfect clear.
	PiecesPlaced int

	// Prob is the joint probability of every guessed future piece on the
	// path that produced this state. Monotonically non-increasing.
	Prob float64
}

// New returns an empty game with probability 1.
func New() Game {
	return Game{Prob: 1.0}
}

// QueuePush appends known kinds to the first unresolved slots.
func (g *Game) QueuePush(kinds ...piece.Kind) {
	for _, k := range kinds {
		for i := range g.Queue {
			if g.Queue[i] == piece.KindNone {
				g.Queue[i] = k
				break
			}
		}
	}
}

// observe records a drawn kind into the bounded history.
func (g *Game) observe(k piece.Kind) {
	if g.SeenCount < HistoryLen {
		g.Seen[g.SeenCount] = k
	} else {
		copy(g.Seen[:], g.Seen[1:])
		g.Seen[HistoryLen-1] = k
	}
	g.SeenCount++
}

// SeenHistory returns the observed draws, oldest first.
func (g *Game) SeenHistory() []piece.Kind {
	n := g.SeenCount
	if n > HistoryLen {
		n = HistoryLen
	}
	return g.Seen[:n]
}

func spawnOrTopOut(b *board.Board, k piece.Kind) (piece.Piece, error) {
	p := piece.Spawn(k)
	if !b.CanFit(p.Points()) {
		return piece.Piece{}, ErrToppedOut
	}
	return p, nil
}

// WithConsumedQueue takes the known head of the queue as the new active
// piece. Returns ErrQueueEmpty when the head slot is unresolved and
// ErrToppedOut when the piece cannot spawn.
func (g Game) WithConsumedQueue() (Game, error) {
	head := g.Queue[0]
	if head == piece.KindNone {
		return Game{}, ErrQueueEmpty
	}
	p, err := spawnOrTopOut(&g.Board, head)
	if err != nil {
		return Game{}, err
	}
	copy(g.Queue[:], g.Queue[1:])
	g.Queue[QueueLen-1] = piece.KindNone
	g.Active = p
	g.HasActive = true
	g.observe(head)
	return g, nil
}

// WithGuessedNext assumes an unresolved queue slot resolves to k with the
// given probability, scaling the branch probability accordingly.
func (g Game) WithGuessedNext(k piece.Kind, prob float64) (Game, error) {
	p, err := spawnOrTopOut(&g.Board, k)
	if err != nil {
		return Game{}, err
	}
	g.Active = p
	g.HasActive = true
	g.Prob *= prob
	g.observe(k)
	return g, nil
}

// WithHold uses the once-per-cycle hold. With a charged hold slot the
// active and held kinds swap and the held kind respawns; with an uncharged
// slot the active kind is stored and the state is left without an active
// piece for the caller to assign the next one.
func (g Game) WithHold() (Game, error) {
	if g.HoldUsed {
		return Game{}, ErrHoldUnavailable
	}
	if !g.HasActive {
		return Game{}, ErrNoActivePiece
	}
	activeKind := g.Active.Kind
	if g.HoldKind == piece.KindNone {
		g.HoldKind = activeKind
		g.HasActive = false
		g.HoldUsed = true
		return g, nil
	}
	p, err := spawnOrTopOut(&g.Board, g.HoldKind)
	if err != nil {
		return Game{}, err
	}
	g.Active = p
	g.HasActive = true
	g.HoldKind = activeKind
	g.HoldUsed = true
	return g, nil
}

// WithMove applies a single piece move. The kick table resolves rotation
// collisions. A failed move returns ErrIllegalMove (or ErrNoActivePiece)
// and mutates nothing.
func (g Game) WithMove(a Action, kicks piece.KickTable) (Game, error) {
	if !g.HasActive {
		return Game{}, ErrNoActivePiece
	}
	switch a {
	case MoveLeft:
		return g.withTranslation(board.Pt(-1, 0))
	case MoveRight:
		return g.withTranslation(board.Pt(1, 0))
	case SoftDrop:
		return g.withTranslation(board.Pt(0, -1))
	case HardDrop:
		return g.withHardDrop()
	case RotateCW:
		return g.withRotation(piece.Clockwise, kicks)
	case RotateCCW:
		return g.withRotation(piece.CounterClockwise, kicks)
	case Rotate180:
		return g.withRotation(piece.Half, kicks)
	}
	return Game{}, ErrIllegalMove
}

func (g Game) withTranslation(offset board.Point) (Game, error) {
	next := g.Active
	next.Position = next.Position.Add(offset)
	if !g.Board.CanFit(next.Points()) {
		return Game{}, ErrIllegalMove
	}
	g.Active = next
	return g, nil
}

func (g Game) withHardDrop() (Game, error) {
	next := g.Active
	for g.Board.CanFit(next.Points()) {
		next.Position.Y--
	}
	next.Position.Y++
	if next.Position.Y == g.Active.Position.Y {
		return Game{}, ErrIllegalMove
	}
	g.Active = next
	return g, nil
}

func (g Game) withRotation(r piece.Rotation, kicks piece.KickTable) (Game, error) {
	from := g.Active.Orientation
	to := from.Rotated(r)

	rotated := g.Active
	rotated.Orientation = to
	points := rotated.Points()
	if g.Board.CanFit(points) {
		g.Active = rotated
		return g, nil
	}

	for _, kick := range kicks.Kicks(g.Active.Kind, from, to) {
		kicked := points
		for i := range kicked {
			kicked[i] = kicked[i].Add(kick)
		}
		if g.Board.CanFit(kicked) {
			rotated.Position = rotated.Position.Add(kick)
			g.Active = rotated
			return g, nil
		}
	}
	return Game{}, ErrIllegalMove
}

// WithPlaced locks the active piece: its cells fill the board, full rows
// clear and compact atomically, the lock counters update, and the hold
// becomes available again. Returns the rows cleared alongside the state.
// A piece with no support below cannot be placed (ErrPieceInAir).
func (g Game) WithPlaced() (Game, int, error) {
	if !g.HasActive {
		return Game{}, 0, ErrNoActivePiece
	}
	points := g.Active.Points()
	if !g.Board.CanPlace(points) {
		return Game{}, 0, ErrPieceInAir
	}
	g.Board.FillPoints(points)
	cleared := g.Board.ClearFullRows()
	g.HasActive = false
	g.HoldUsed = false
	if g.Board.IsEmpty() {
		g.PiecesPlaced = 0
	} else {
		g.PiecesPlaced++
	}
	return g, cleared, nil
}

// IsPerfectClear reports whether the board has zero occupied cells.
func (g *Game) IsPerfectClear() bool {
	return g.Board.IsEmpty()
}
