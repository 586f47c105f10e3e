// Package shell is the interactive front end: a readline loop that edits
// a game state, deals pieces, and runs solves against it.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/bryanmylee/perfect-clear/bag"
	"github.com/bryanmylee/perfect-clear/cache"
	"github.com/bryanmylee/perfect-clear/config"
	"github.com/bryanmylee/perfect-clear/game"
	"github.com/bryanmylee/perfect-clear/solver"
)

var (
	errNoCommand = errors.New("no command entered")
	errSolving   = errors.New("a solve is already running; stop it first")
)

type Response struct {
	message string
}

func msg(message string) *Response {
	return &Response{message: message}
}

type CmdOptions map[string][]string

func (c CmdOptions) String(key string) string {
	v := c[key]
	if len(v) > 0 {
		return v[0]
	}
	return ""
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultI, nil
	}
	return strconv.Atoi(v[0])
}

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
}

// extractFields splits a command line, treating -key value pairs as
// options and everything else as positional arguments.
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoCommand
	}
	cmd := &shellcmd{cmd: fields[0], options: CmdOptions{}}
	for i := 1; i < len(fields); i++ {
		f := fields[i]
		if strings.HasPrefix(f, "-") && len(f) > 1 {
			key := strings.TrimPrefix(f, "-")
			if i+1 < len(fields) {
				cmd.options[key] = append(cmd.options[key], fields[i+1])
				i++
			} else {
				cmd.options[key] = append(cmd.options[key], "")
			}
		} else {
			cmd.args = append(cmd.args, f)
		}
	}
	return cmd, nil
}

type ShellController struct {
	l *readline.Instance

	cfg    config.Config
	cache  *cache.Cache
	solver *solver.Solver
	game   game.Game
	dealer *bag.Dealer

	solving     atomic.Bool
	solveCancel context.CancelFunc
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(m string, w io.Writer) {
	io.WriteString(w, m)
	io.WriteString(w, "\n")
}

func NewShellController(cfg config.Config) *ShellController {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31mpc>\033[0m ",
		HistoryFile:     "/tmp/pc-readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	sc := &ShellController{l: l, cfg: cfg, game: game.New()}
	if err := sc.rebuild(); err != nil {
		panic(err)
	}
	return sc
}

// rebuild re-resolves the configuration into a solver and dealer. The
// placement cache survives; a changed rule set changes the fingerprint,
// which quietly orphans stale entries.
func (sc *ShellController) rebuild() error {
	if err := sc.cfg.Validate(); err != nil {
		return err
	}
	if sc.cache == nil {
		sc.cache = cache.New(sc.cfg.CacheFraction)
	}
	s, err := solver.New(sc.cfg, sc.cache)
	if err != nil {
		return err
	}
	bagType, err := sc.cfg.Bag()
	if err != nil {
		return err
	}
	sc.solver = s
	sc.dealer = bag.NewDealer(bagType)
	return nil
}

func (sc *ShellController) executeCommand(cmd *shellcmd) (*Response, error) {
	switch cmd.cmd {
	case "show":
		return sc.show(cmd)
	case "set":
		return sc.set(cmd)
	case "fill":
		return sc.fill(cmd, true)
	case "unfill":
		return sc.fill(cmd, false)
	case "queue":
		return sc.queue(cmd)
	case "hold":
		return sc.hold(cmd)
	case "deal":
		return sc.deal(cmd)
	case "solve":
		return sc.solve(cmd)
	case "stop":
		return sc.stop(cmd)
	case "stats":
		return sc.stats(cmd)
	case "reset":
		return sc.reset(cmd)
	case "help":
		return usage(cmd)
	}
	return nil, fmt.Errorf("unknown command %q; try help", cmd.cmd)
}

func (sc *ShellController) Execute(sig chan os.Signal, line string) error {
	cmd, err := extractFields(line)
	if err != nil {
		if errors.Is(err, errNoCommand) {
			return nil
		}
		return err
	}
	switch cmd.cmd {
	case "bye", "exit":
		sig <- syscall.SIGINT
		return nil
	default:
		resp, err := sc.executeCommand(cmd)
		if err != nil {
			showMessage("error: "+err.Error(), sc.l.Stderr())
			return nil
		}
		if resp != nil && resp.message != "" {
			showMessage(resp.message, sc.l.Stderr())
		}
		return nil
	}
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			}
			continue
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if line == "bye" || line == "exit" {
			sig <- syscall.SIGINT
			break
		}
		if err := sc.Execute(sig, line); err != nil {
			log.Error().Err(err).Msg("")
			break
		}
	}
	log.Debug().Msg("exiting readline loop")
}

func (sc *ShellController) Cleanup() {
	if sc.solveCancel != nil {
		sc.solveCancel()
	}
}
