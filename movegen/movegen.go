// Package movegen enumerates every placement of the active piece that is
// reachable through the configured move set. It runs a breadth-first
// search over (position, orientation) states; because the frontier is
// FIFO and each state keeps only its first-discovered predecessor, the
// backpointer chain from any state is a shortest action line to it.
package movegen

import (
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/bryanmylee/perfect-clear/board"
	"github.com/bryanmylee/perfect-clear/game"
	"github.com/bryanmylee/perfect-clear/piece"
)

type node struct {
	pos board.Point
	o   piece.Orientation
}

// step is a backpointer: the first-discovered predecessor of a state and
// the action that reached it. No cumulative cost is stored; discovery
// order already encodes path length.
type step struct {
	prev node
	act  game.Action
}

// Result is the reachability graph of one search, immutable once built.
// It is safe for concurrent readers, which lets it be shared through a
// cache.
type Result struct {
	Kind       piece.Kind
	start      node
	memo       map[node]step
	placements []piece.Piece
}

// Find explores all states of the active piece on b reachable through
// moves, resolving rotations with kicks. Lock-capable states are
// collected in discovery order.
func Find(b board.Board, active piece.Piece, moves []game.Action, kicks piece.KickTable) *Result {
	ordered := make([]game.Action, 0, len(moves))
	for _, a := range moves {
		if a.IsMove() {
			ordered = append(ordered, a)
		}
	}
	// Expanding in fixed action order keeps discovered lines deterministic.
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	res := &Result{
		Kind:  active.Kind,
		start: node{active.Position, active.Orientation},
		memo:  make(map[node]step),
	}
	// A colliding start state reaches nothing.
	if !b.CanFit(active.Points()) {
		return res
	}
	res.memo[res.start] = step{}

	scratch := game.Game{Board: b, HasActive: true}
	frontier := []node{res.start}
	for len(frontier) > 0 {
		cur := frontier[0]
		frontier = frontier[1:]

		scratch.Active = piece.Piece{Kind: active.Kind, Orientation: cur.o, Position: cur.pos}
		if b.CanPlace(scratch.Active.Points()) {
			res.placements = append(res.placements, scratch.Active)
		}
		for _, a := range ordered {
			next, err := scratch.WithMove(a, kicks)
			if err != nil {
				continue
			}
			n := node{next.Active.Position, next.Active.Orientation}
			if _, seen := res.memo[n]; seen {
				continue
			}
			res.memo[n] = step{prev: cur, act: a}
			frontier = append(frontier, n)
		}
	}

	log.Debug().
		Str("kind", active.Kind.String()).
		Int("visited", len(res.memo)).
		Int("placements", len(res.placements)).
		Msg("placement search done")
	return res
}

// Placements returns the lock-capable piece states in discovery order.
// The slice is shared; callers must not mutate it.
func (r *Result) Placements() []piece.Piece {
	return r.placements
}

// NumVisited returns the number of distinct states explored.
func (r *Result) NumVisited() int {
	return len(r.memo)
}

// Path reconstructs the action line from the search start to p, ending
// with the lock. Returns false when p was never visited.
func (r *Result) Path(p piece.Piece) (game.Line, bool) {
	cur := node{p.Position, p.Orientation}
	if _, ok := r.memo[cur]; !ok {
		return nil, false
	}
	var rev game.Line
	for cur != r.start {
		s := r.memo[cur]
		rev = append(rev, s.act)
		cur = s.prev
	}
	line := make(game.Line, 0, len(rev)+1)
	for i := len(rev) - 1; i >= 0; i-- {
		line = append(line, rev[i])
	}
	return append(line, game.Place), true
}
