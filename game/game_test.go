package game

import (
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/bryanmylee/perfect-clear/board"
	"github.com/bryanmylee/perfect-clear/piece"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	os.Exit(m.Run())
}

var srs = mustKicks("srs")

func mustKicks(id string) piece.KickTable {
	t, err := piece.KickTableFromID(id)
	if err != nil {
		panic(err)
	}
	return t
}

func withActive(k piece.Kind) Game {
	g := New()
	g.Active = piece.Spawn(k)
	g.HasActive = true
	return g
}

func TestRotationWithoutKick(t *testing.T) {
	is := is.New(t)
	g := withActive(piece.I)
	original := g.Active.Position

	next, err := g.WithMove(RotateCW, srs)
	is.NoErr(err)
	is.Equal(next.Active.Orientation, piece.East)
	is.Equal(next.Active.Position, original)
}

func TestRotationUsesFirstFittingKick(t *testing.T) {
	is := is.New(t)

	// A filled board with an I-shaped vertical slot at column 3 and a
	// horizontal slot at row 2. Rotating the horizontal piece clockwise
	// collides unkicked and resolves with the first SRS kick (-2, 0).
	b := board.Filled()
	for _, p := range []board.Point{
		board.Pt(3, 2), board.Pt(4, 2), board.Pt(5, 2), board.Pt(6, 2),
		board.Pt(3, 0), board.Pt(3, 1), board.Pt(3, 3),
	} {
		b.Unfill(p)
	}

	g := New()
	g.Board = b
	g.Active = piece.Spawn(piece.I)
	g.Active.Position = board.Pt(3, 0)
	g.HasActive = true

	next, err := g.WithMove(RotateCW, srs)
	is.NoErr(err)
	is.Equal(next.Active.Orientation, piece.East)
	is.Equal(next.Active.Position, board.Pt(1, 0))

	// And the counter-rotation undoes it.
	back, err := next.WithMove(RotateCCW, srs)
	is.NoErr(err)
	is.Equal(back.Active.Orientation, piece.North)
	is.Equal(back.Active.Position, board.Pt(3, 0))
}

func TestRotationFailsWhenKicksExhausted(t *testing.T) {
	is := is.New(t)

	b := board.Filled()
	// Just the horizontal slot: nowhere for a vertical I to go.
	for _, p := range []board.Point{
		board.Pt(3, 2), board.Pt(4, 2), board.Pt(5, 2), board.Pt(6, 2),
	} {
		b.Unfill(p)
	}
	g := New()
	g.Board = b
	g.Active = piece.Spawn(piece.I)
	g.Active.Position = board.Pt(3, 0)
	g.HasActive = true

	_, err := g.WithMove(RotateCW, srs)
	is.Equal(err, ErrIllegalMove)
	// Receiver is untouched.
	is.Equal(g.Active.Orientation, piece.North)
}

func TestTranslationAndBounds(t *testing.T) {
	is := is.New(t)
	g := withActive(piece.I)
	g.Active.Position = board.Pt(3, -1)

	next, err := g.WithMove(SoftDrop, srs)
	is.NoErr(err)
	is.Equal(next.Active.Position, board.Pt(3, -2))

	next, err = next.WithMove(MoveLeft, srs)
	is.NoErr(err)
	is.Equal(next.Active.Position, board.Pt(2, -2))

	next, err = next.WithMove(MoveRight, srs)
	is.NoErr(err)
	is.Equal(next.Active.Position, board.Pt(3, -2))

	_, err = next.WithMove(SoftDrop, srs)
	is.Equal(err, ErrIllegalMove)
}

func TestHardDrop(t *testing.T) {
	is := is.New(t)

	g := withActive(piece.I)
	next, err := g.WithMove(HardDrop, srs)
	is.NoErr(err)
	is.Equal(next.Active.Position.Y, int8(-2))

	g = withActive(piece.O)
	next, err = g.WithMove(HardDrop, srs)
	is.NoErr(err)
	is.Equal(next.Active.Position.Y, int8(-1))

	// A hard drop that cannot move is an illegal move.
	_, err = next.WithMove(HardDrop, srs)
	is.Equal(err, ErrIllegalMove)

	g = withActive(piece.I)
	g.Board.Fill(board.Pt(3, 10))
	next, err = g.WithMove(HardDrop, srs)
	is.NoErr(err)
	is.Equal(next.Active.Position.Y, int8(9))
}

func TestConsumeQueue(t *testing.T) {
	is := is.New(t)
	g := New()

	_, err := g.WithConsumedQueue()
	is.Equal(err, ErrQueueEmpty)

	g.QueuePush(piece.I, piece.J)
	next, err := g.WithConsumedQueue()
	is.NoErr(err)
	is.True(next.HasActive)
	is.Equal(next.Active.Kind, piece.I)
	is.Equal(next.Queue[0], piece.J)
	is.Equal(next.Queue[1], piece.KindNone)
	is.Equal(next.SeenCount, 1)
	is.Equal(next.Seen[0], piece.I)
}

func TestConsumeQueueToppedOut(t *testing.T) {
	is := is.New(t)
	g := New()
	for x := int8(3); x < 7; x++ {
		g.Board.Fill(board.Pt(x, 20))
	}
	g.QueuePush(piece.I)

	_, err := g.WithConsumedQueue()
	is.Equal(err, ErrToppedOut)
}

func TestGuessedNextScalesProbability(t *testing.T) {
	is := is.New(t)
	g := New()

	next, err := g.WithGuessedNext(piece.J, 0.5)
	is.NoErr(err)
	is.Equal(next.Active.Kind, piece.J)
	is.Equal(next.Prob, 0.5)

	next, err = next.WithMove(HardDrop, srs)
	is.NoErr(err)
	next, _, err = next.WithPlaced()
	is.NoErr(err)
	next, err = next.WithGuessedNext(piece.T, 0.25)
	is.NoErr(err)
	is.Equal(next.Prob, 0.125)
}

func TestHoldSwapAndCharge(t *testing.T) {
	is := is.New(t)

	// Swap with a charged hold slot.
	g := withActive(piece.I)
	g.HoldKind = piece.J
	next, err := g.WithHold()
	is.NoErr(err)
	is.True(next.HoldUsed)
	is.Equal(next.HoldKind, piece.I)
	is.Equal(next.Active.Kind, piece.J)

	// Hold is once per cycle.
	_, err = next.WithHold()
	is.Equal(err, ErrHoldUnavailable)

	// Charging an empty hold slot leaves no active piece.
	g = withActive(piece.S)
	next, err = g.WithHold()
	is.NoErr(err)
	is.True(next.HoldUsed)
	is.Equal(next.HoldKind, piece.S)
	is.True(!next.HasActive)

	// No active piece, no hold.
	g = New()
	_, err = g.WithHold()
	is.Equal(err, ErrNoActivePiece)
}

func TestPlacePiece(t *testing.T) {
	is := is.New(t)

	g := New()
	_, _, err := g.WithPlaced()
	is.Equal(err, ErrNoActivePiece)

	g = withActive(piece.I)
	g.Active.Position = board.Pt(3, -1)
	_, _, err = g.WithPlaced()
	is.Equal(err, ErrPieceInAir)

	g.Active.Position = board.Pt(3, -2)
	g.HoldUsed = true
	next, cleared, err := g.WithPlaced()
	is.NoErr(err)
	is.Equal(cleared, 0)
	is.True(!next.HasActive)
	is.True(!next.HoldUsed) // lock resets hold
	is.Equal(next.PiecesPlaced, 1)

	expected := board.Empty()
	for x := int8(3); x < 7; x++ {
		expected.Fill(board.Pt(x, 0))
	}
	is.Equal(next.Board, expected)
}

func TestPlaceClearsRowAndDetectsPerfectClear(t *testing.T) {
	is := is.New(t)

	g := New()
	for x := int8(0); x < 6; x++ {
		g.Board.Fill(board.Pt(x, 0))
	}
	g.Active = piece.Spawn(piece.I)
	g.Active.Position = board.Pt(6, -2) // cells at columns 6..9, row 0
	g.HasActive = true
	g.PiecesPlaced = 3

	next, cleared, err := g.WithPlaced()
	is.NoErr(err)
	is.Equal(cleared, 1)
	is.True(next.IsPerfectClear())
	is.Equal(next.PiecesPlaced, 0) // reset on perfect clear
}

func TestLineCompare(t *testing.T) {
	is := is.New(t)
	a := Line{MoveLeft, HardDrop, Place}
	b := Line{MoveLeft, RotateCW, Place}
	is.Equal(a.Compare(b), -1)
	is.Equal(b.Compare(a), 1)
	is.Equal(a.Compare(a), 0)
	is.Equal(a.Compare(Line{MoveLeft, HardDrop, Place, Place}), -1)
	is.Equal(a.String(), "left harddrop place")
}
