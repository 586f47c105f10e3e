package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/bryanmylee/perfect-clear/board"
	"github.com/bryanmylee/perfect-clear/game"
	"github.com/bryanmylee/perfect-clear/piece"
)

// displayRows is how much of the board `show` prints by default; the
// hidden rows above the visible field are rarely interesting.
const displayRows = 8

func (sc *ShellController) displayText(rows int8) string {
	var sb strings.Builder
	sb.WriteString(sc.game.Board.ToDisplayText(rows))

	queue := lo.FilterMap(sc.game.Queue[:], func(k piece.Kind, _ int) (string, bool) {
		return k.String(), k != piece.KindNone
	})
	sb.WriteString("queue: ")
	if len(queue) == 0 {
		sb.WriteString("(empty)")
	} else {
		sb.WriteString(strings.Join(queue, " "))
	}
	sb.WriteString("\nhold:  ")
	if sc.game.HoldKind == piece.KindNone {
		sb.WriteString("(empty)")
	} else {
		sb.WriteString(sc.game.HoldKind.String())
	}
	fmt.Fprintf(&sb, "\nplaced: %d  prob: %v", sc.game.PiecesPlaced, sc.game.Prob)
	return sb.String()
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	rows, err := cmd.options.IntDefault("rows", displayRows)
	if err != nil {
		return nil, err
	}
	return msg(sc.displayText(int8(rows))), nil
}

func (sc *ShellController) optionsText() string {
	return strings.Join([]string{
		"bag            " + sc.cfg.BagType,
		"kicks          " + sc.cfg.KickTableID,
		"moves          " + strings.Join(sc.cfg.Moves, " "),
		"max_pieces     " + strconv.Itoa(sc.cfg.MaxPieces),
		"prob_floor     " + strconv.FormatFloat(sc.cfg.ProbFloor, 'g', -1, 64),
		"early_accept   " + strconv.FormatFloat(sc.cfg.EarlyAccept, 'g', -1, 64),
		"workers        " + strconv.Itoa(sc.cfg.Workers),
		"cache_fraction " + strconv.FormatFloat(sc.cfg.CacheFraction, 'g', -1, 64),
	}, "\n")
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(sc.optionsText()), nil
	}
	if sc.solving.Load() {
		return nil, errSolving
	}
	opt := cmd.args[0]
	values := cmd.args[1:]
	if len(values) == 0 {
		return nil, fmt.Errorf("usage: set %s <value...>", opt)
	}

	next := sc.cfg
	next.Moves = append([]string(nil), sc.cfg.Moves...)
	var err error
	switch opt {
	case "bag":
		next.BagType = values[0]
	case "kicks":
		next.KickTableID = values[0]
	case "moves":
		next.Moves = values
	case "max_pieces":
		next.MaxPieces, err = strconv.Atoi(values[0])
	case "prob_floor":
		next.ProbFloor, err = strconv.ParseFloat(values[0], 64)
	case "early_accept":
		next.EarlyAccept, err = strconv.ParseFloat(values[0], 64)
	case "workers":
		next.Workers, err = strconv.Atoi(values[0])
	case "cache_fraction":
		next.CacheFraction, err = strconv.ParseFloat(values[0], 64)
	default:
		return nil, fmt.Errorf("unknown option %q", opt)
	}
	if err != nil {
		return nil, err
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}
	sc.cfg = next
	if err := sc.rebuild(); err != nil {
		return nil, err
	}
	return msg("set " + opt + " to " + strings.Join(values, " ")), nil
}

func (sc *ShellController) fill(cmd *shellcmd, on bool) (*Response, error) {
	if len(cmd.args) != 2 {
		return nil, errors.New("usage: fill|unfill <column> <row>")
	}
	x, err := strconv.Atoi(cmd.args[0])
	if err != nil {
		return nil, err
	}
	y, err := strconv.Atoi(cmd.args[1])
	if err != nil {
		return nil, err
	}
	if x < 0 || x >= board.Width || y < 0 || y >= board.Height {
		return nil, fmt.Errorf("cell (%d, %d) out of bounds", x, y)
	}
	p := board.Pt(int8(x), int8(y))
	if on {
		sc.game.Board.Fill(p)
	} else {
		sc.game.Board.Unfill(p)
	}
	return msg(sc.displayText(displayRows)), nil
}

func (sc *ShellController) queue(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return sc.show(&shellcmd{options: CmdOptions{}})
	}
	spec := strings.ToUpper(cmd.args[0])
	if spec == "CLEAR" {
		sc.game.Queue = [game.QueueLen]piece.Kind{}
		return msg("queue cleared"), nil
	}
	if len(spec) > game.QueueLen {
		return nil, fmt.Errorf("queue holds at most %d pieces", game.QueueLen)
	}
	var kinds []piece.Kind
	for _, r := range spec {
		k, err := piece.KindFromRune(r)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	sc.game.Queue = [game.QueueLen]piece.Kind{}
	sc.game.QueuePush(kinds...)
	return msg("queue set to " + spec), nil
}

func (sc *ShellController) hold(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		if sc.game.HoldKind == piece.KindNone {
			return msg("hold: (empty)"), nil
		}
		return msg("hold: " + sc.game.HoldKind.String()), nil
	}
	spec := strings.ToUpper(cmd.args[0])
	if spec == "CLEAR" {
		sc.game.HoldKind = piece.KindNone
		return msg("hold cleared"), nil
	}
	k, err := piece.KindFromRune(rune(spec[0]))
	if err != nil {
		return nil, err
	}
	sc.game.HoldKind = k
	return msg("hold set to " + k.String()), nil
}

func (sc *ShellController) deal(cmd *shellcmd) (*Response, error) {
	n := game.QueueLen
	if len(cmd.args) > 0 {
		var err error
		n, err = strconv.Atoi(cmd.args[0])
		if err != nil {
			return nil, err
		}
	}
	free := lo.CountBy(sc.game.Queue[:], func(k piece.Kind) bool {
		return k == piece.KindNone
	})
	if n > free {
		n = free
	}
	dealt := make([]string, 0, n)
	for i := 0; i < n; i++ {
		k := sc.dealer.Draw()
		sc.game.QueuePush(k)
		dealt = append(dealt, k.String())
	}
	if len(dealt) == 0 {
		return msg("queue is full"), nil
	}
	return msg("dealt " + strings.Join(dealt, " ")), nil
}

func (sc *ShellController) solve(cmd *shellcmd) (*Response, error) {
	if !sc.solving.CompareAndSwap(false, true) {
		return nil, errSolving
	}
	ctx, cancel := context.WithCancel(context.Background())
	sc.solveCancel = cancel

	g := sc.game
	go func() {
		defer sc.solving.Store(false)
		defer cancel()
		res, err := sc.solver.Solve(ctx, g)
		if err != nil {
			showMessage("solve error: "+err.Error(), sc.l.Stderr())
			return
		}
		showMessage(res.String(), sc.l.Stderr())
	}()
	return msg("solving..."), nil
}

func (sc *ShellController) stop(cmd *shellcmd) (*Response, error) {
	if !sc.solving.Load() {
		return nil, errors.New("no solve is running")
	}
	sc.solveCancel()
	return msg("stopping; best line so far will be reported"), nil
}

func (sc *ShellController) stats(cmd *shellcmd) (*Response, error) {
	s := sc.cache.Stats()
	return msg(fmt.Sprintf(
		"cache lookups %d  hits %d  stores %d  fingerprint %x",
		s.Lookups, s.Hits, s.Stores, sc.cfg.Fingerprint())), nil
}

func (sc *ShellController) reset(cmd *shellcmd) (*Response, error) {
	if sc.solving.Load() {
		return nil, errSolving
	}
	sc.game = game.New()
	log.Debug().Msg("game reset")
	return msg("game reset"), nil
}
