// Package solver searches for perfect clears. Starting from a game state
// it expands every way the next pieces can resolve and be placed, scores
// terminal states by the joint probability of the guesses on their path,
// and picks the line with the best chance of emptying the board.
package solver

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/bryanmylee/perfect-clear/bag"
	"github.com/bryanmylee/perfect-clear/cache"
	"github.com/bryanmylee/perfect-clear/config"
	"github.com/bryanmylee/perfect-clear/game"
	"github.com/bryanmylee/perfect-clear/movegen"
	"github.com/bryanmylee/perfect-clear/piece"
)

// FinalState classifies a terminal search state.
type FinalState uint8

const (
	// NoResult means the search never reached a terminal state.
	NoResult FinalState = iota
	// Cleared means a placement emptied the board.
	Cleared
	// Failed means the branch ended without a clear.
	Failed
)

func (s FinalState) String() string {
	switch s {
	case Cleared:
		return "cleared"
	case Failed:
		return "failed"
	}
	return "none"
}

// FailReason says why a failed branch ended.
type FailReason uint8

const (
	ReasonNone FailReason = iota
	// ReasonNoValidPlacement: the next piece cannot spawn or has no
	// reachable resting place.
	ReasonNoValidPlacement
	// ReasonSearchBound: the depth or probability bound cut the branch.
	ReasonSearchBound
)

func (r FailReason) String() string {
	switch r {
	case ReasonNoValidPlacement:
		return "no valid placement"
	case ReasonSearchBound:
		return "search bound exceeded"
	}
	return "none"
}

// Result is the outcome of one solve.
type Result struct {
	// Solved reports whether any branch reached a perfect clear. When
	// false, Failure carries the best diagnostic the search saw.
	Solved  bool
	Prob    float64
	Line    game.Line
	Pieces  int
	Failure FailReason
	// Final is the state at the end of the selected line, unresolved
	// queue slots left blank.
	Final game.Game

	Nodes     uint64
	Leaves    uint64
	CacheHits uint64
	Elapsed   time.Duration
}

func (r Result) String() string {
	if r.Solved {
		return fmt.Sprintf("cleared  p=%.4g  pieces=%d  nodes=%d  in %s\nline: %s",
			r.Prob, r.Pieces, r.Nodes, r.Elapsed, r.Line)
	}
	return fmt.Sprintf("no perfect clear (%s)  best-leaf p=%.4g  nodes=%d  in %s",
		r.Failure, r.Prob, r.Nodes, r.Elapsed)
}

// Solver runs perfect-clear searches against one rule set, sharing a
// placement cache across solves.
type Solver struct {
	bagType     bag.Type
	kicks       piece.KickTable
	moves       []game.Action
	fingerprint uint64
	maxPieces   int
	probFloor   float64
	earlyAccept float64
	workers     int
	cache       *cache.Cache
}

// New resolves cfg into a solver. A nil placement cache allocates one
// sized by the configuration.
func New(cfg config.Config, c *cache.Cache) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	bagType, err := cfg.Bag()
	if err != nil {
		return nil, err
	}
	kicks, err := cfg.Kicks()
	if err != nil {
		return nil, err
	}
	moves, err := cfg.MoveSet()
	if err != nil {
		return nil, err
	}
	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if c == nil {
		c = cache.New(cfg.CacheFraction)
	}
	return &Solver{
		bagType:     bagType,
		kicks:       kicks,
		moves:       moves,
		fingerprint: cfg.Fingerprint(),
		maxPieces:   cfg.MaxPieces,
		probFloor:   cfg.ProbFloor,
		earlyAccept: cfg.EarlyAccept,
		workers:     workers,
		cache:       c,
	}, nil
}

// Cache exposes the shared placement cache.
func (s *Solver) Cache() *cache.Cache {
	return s.cache
}

// leaf is a terminal state with everything the selector compares.
type leaf struct {
	state  FinalState
	prob   float64
	pieces int
	line   game.Line
	reason FailReason
	final  game.Game
}

// better orders leaves: any result beats none, cleared beats failed,
// then higher probability, then fewer pieces, then the lexicographically
// smaller action line. Total, so the selected line is deterministic no
// matter what order branches finish in.
func better(a, b leaf) bool {
	if a.state == NoResult || b.state == NoResult {
		return a.state != NoResult
	}
	if a.state != b.state {
		return a.state == Cleared
	}
	if a.prob != b.prob {
		return a.prob > b.prob
	}
	if a.pieces != b.pieces {
		return a.pieces < b.pieces
	}
	return a.line.Compare(b.line) < 0
}

type counters struct {
	nodes  atomic.Uint64
	leaves atomic.Uint64
}

type task struct {
	g     game.Game
	depth int
	line  game.Line
}

// Solve searches from g for the line most likely to reach a perfect
// clear. Cancelling ctx (or hitting the early-accept threshold) stops
// the search and returns the best line found so far rather than an
// error; an unsolvable search returns Solved false with a diagnostic.
func (s *Solver) Solve(ctx context.Context, g game.Game) (Result, error) {
	start := time.Now()
	hitsBefore := s.cache.Stats().Hits

	// A state with nothing left to play and an empty board is already a
	// perfect clear.
	if g.IsPerfectClear() && !g.HasActive && g.Queue[0] == piece.KindNone {
		return Result{Solved: true, Prob: g.Prob, Final: g, Elapsed: time.Since(start)}, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu   sync.Mutex
		best leaf
		ctrs counters
	)
	merge := func(l leaf) {
		ctrs.leaves.Add(1)
		mu.Lock()
		if better(l, best) {
			best = l
		}
		accepted := s.earlyAccept > 0 && best.state == Cleared && best.prob >= s.earlyAccept
		mu.Unlock()
		if accepted {
			cancel()
		}
	}

	// Expand the root synchronously, deferring everything past the first
	// placement into tasks fanned out below.
	var tasks []task
	root := &walker{s: s, ctx: ctx, merge: merge, ctrs: &ctrs}
	root.fork = func(t task) {
		tasks = append(tasks, t)
	}
	root.expand(g, 0, nil)

	gr := errgroup.Group{}
	gr.SetLimit(s.workers)
	for _, t := range tasks {
		t := t
		gr.Go(func() error {
			w := &walker{s: s, ctx: ctx, merge: merge, ctrs: &ctrs}
			w.expand(t.g, t.depth, t.line)
			return nil
		})
	}
	_ = gr.Wait() // workers never return errors

	res := Result{
		Solved:    best.state == Cleared,
		Prob:      best.prob,
		Line:      best.line,
		Pieces:    best.pieces,
		Final:     best.final,
		Nodes:     ctrs.nodes.Load(),
		Leaves:    ctrs.leaves.Load(),
		CacheHits: s.cache.Stats().Hits - hitsBefore,
		Elapsed:   time.Since(start),
	}
	if !res.Solved {
		res.Failure = best.reason
		if best.state == NoResult {
			res.Failure = ReasonSearchBound
		}
	}
	log.Info().
		Bool("solved", res.Solved).
		Float64("prob", res.Prob).
		Int("pieces", res.Pieces).
		Uint64("nodes", res.Nodes).
		Uint64("leaves", res.Leaves).
		Uint64("cache-hits", res.CacheHits).
		Dur("elapsed", res.Elapsed).
		Msg("solve done")
	return res, nil
}

// walker runs a depth-first expansion. Each parallel worker owns one.
type walker struct {
	s     *Solver
	ctx   context.Context
	merge func(leaf)
	ctrs  *counters
	// fork, when set, receives post-first-placement states instead of
	// recursing into them.
	fork func(task)
}

func (w *walker) expand(g game.Game, depth int, line game.Line) {
	if w.ctx.Err() != nil {
		return
	}
	w.ctrs.nodes.Add(1)

	if !g.HasActive {
		w.expandSpawn(g, depth, line)
		return
	}

	// Holding is a branch of its own: the swapped-in (or next) piece
	// gets its full set of placements.
	if !g.HoldUsed {
		if held, err := g.WithHold(); err == nil {
			w.expand(held, depth, append(line.Clone(), game.Hold))
		}
	}

	res := w.placements(g)
	if len(res.Placements()) == 0 {
		w.merge(leaf{state: Failed, prob: g.Prob, pieces: depth, line: line, reason: ReasonNoValidPlacement, final: g})
		return
	}
	for _, p := range res.Placements() {
		if w.ctx.Err() != nil {
			return
		}
		path, ok := res.Path(p)
		if !ok {
			continue
		}
		next := g
		next.Active = p
		next, _, err := next.WithPlaced()
		if err != nil {
			continue
		}
		branchLine := append(line.Clone(), path...)
		switch {
		case next.IsPerfectClear():
			w.merge(leaf{state: Cleared, prob: next.Prob, pieces: depth + 1, line: branchLine, final: next})
		case depth+1 >= w.s.maxPieces:
			w.merge(leaf{state: Failed, prob: next.Prob, pieces: depth + 1, line: branchLine, reason: ReasonSearchBound, final: next})
		case w.fork != nil && depth == 0:
			w.fork(task{g: next, depth: 1, line: branchLine})
		default:
			w.expand(next, depth+1, branchLine)
		}
	}
}

// expandSpawn resolves the next active piece: consume a known queue head,
// or fan out over every kind the bag can still produce.
func (w *walker) expandSpawn(g game.Game, depth int, line game.Line) {
	if g.Queue[0] != piece.KindNone {
		next, err := g.WithConsumedQueue()
		if err != nil {
			w.merge(leaf{state: Failed, prob: g.Prob, pieces: depth, line: line, reason: ReasonNoValidPlacement, final: g})
			return
		}
		w.expand(next, depth, line)
		return
	}

	dist := w.s.bagType.Next(g.SeenHistory(), g.SeenCount)
	for _, k := range piece.Kinds {
		p := dist.P(k)
		if p == 0 {
			continue
		}
		next, err := g.WithGuessedNext(k, p)
		if err != nil {
			w.merge(leaf{state: Failed, prob: g.Prob * p, pieces: depth, line: line, reason: ReasonNoValidPlacement, final: g})
			continue
		}
		if next.Prob < w.s.probFloor {
			w.merge(leaf{state: Failed, prob: next.Prob, pieces: depth, line: line, reason: ReasonSearchBound, final: next})
			continue
		}
		w.expand(next, depth, line)
	}
}

// placements runs the placement search through the shared cache. Pieces
// always enter play at their spawn state, so (rule set, board, kind)
// fully determines the result.
func (w *walker) placements(g game.Game) *movegen.Result {
	key := cache.Key(w.s.fingerprint, g.Board, g.Active.Kind)
	if res, ok := w.s.cache.Get(key); ok {
		return res
	}
	res := movegen.Find(g.Board, g.Active, w.s.moves, w.s.kicks)
	w.s.cache.Put(key, res)
	return res
}
