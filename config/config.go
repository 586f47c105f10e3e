// Package config holds the solver's tunable settings. A Config is plain
// data with YAML tags so it round-trips through a settings file; resolved
// accessors turn the string ids into engine types and reject anything
// unknown.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"

	"github.com/bryanmylee/perfect-clear/bag"
	"github.com/bryanmylee/perfect-clear/game"
	"github.com/bryanmylee/perfect-clear/piece"
)

// ErrInvalid wraps every configuration validation failure.
var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	// BagType is the next-piece randomizer id: random, 7-bag or 14-bag.
	BagType string `yaml:"bag"`
	// KickTableID selects rotation kicks: srs or none.
	KickTableID string `yaml:"kicks"`
	// Moves is the ids of the piece moves the search may use.
	Moves []string `yaml:"moves"`

	// MaxPieces bounds search depth in pieces placed past the root.
	MaxPieces int `yaml:"max_pieces"`
	// ProbFloor prunes branches whose joint probability falls below it.
	ProbFloor float64 `yaml:"prob_floor"`
	// EarlyAccept stops a solve as soon as a cleared line reaches this
	// probability. 0 disables early acceptance.
	EarlyAccept float64 `yaml:"early_accept"`

	// Workers caps concurrent branch expansion. 0 means GOMAXPROCS.
	Workers int `yaml:"workers"`
	// CacheFraction is the share of system memory the placement cache
	// may use.
	CacheFraction float64 `yaml:"cache_fraction"`
}

// Default returns the settings used when no file overrides them.
func Default() Config {
	return Config{
		BagType:     "7-bag",
		KickTableID: "srs",
		Moves: []string{
			"left", "right", "softdrop", "harddrop", "cw", "ccw",
		},
		MaxPieces:     10,
		ProbFloor:     1e-4,
		EarlyAccept:   0,
		Workers:       0,
		CacheFraction: 0.25,
	}
}

// Load reads a YAML settings file over the defaults.
func Load(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks every field, wrapping failures in ErrInvalid.
func (c *Config) Validate() error {
	if _, err := c.Bag(); err != nil {
		return err
	}
	if _, err := c.Kicks(); err != nil {
		return err
	}
	moves, err := c.MoveSet()
	if err != nil {
		return err
	}
	if len(moves) == 0 {
		return fmt.Errorf("%w: empty move set", ErrInvalid)
	}
	if c.MaxPieces < 1 {
		return fmt.Errorf("%w: max_pieces %d, want >= 1", ErrInvalid, c.MaxPieces)
	}
	if c.ProbFloor < 0 || c.ProbFloor >= 1 {
		return fmt.Errorf("%w: prob_floor %v, want [0, 1)", ErrInvalid, c.ProbFloor)
	}
	if c.EarlyAccept < 0 || c.EarlyAccept > 1 {
		return fmt.Errorf("%w: early_accept %v, want [0, 1]", ErrInvalid, c.EarlyAccept)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers %d, want >= 0", ErrInvalid, c.Workers)
	}
	if c.CacheFraction <= 0 || c.CacheFraction > 1 {
		return fmt.Errorf("%w: cache_fraction %v, want (0, 1]", ErrInvalid, c.CacheFraction)
	}
	return nil
}

// Bag resolves the configured randomizer.
func (c *Config) Bag() (bag.Type, error) {
	t, err := bag.TypeFromID(c.BagType)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return t, nil
}

// Kicks resolves the configured kick table.
func (c *Config) Kicks() (piece.KickTable, error) {
	kt, err := piece.KickTableFromID(c.KickTableID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return kt, nil
}

// MoveSet resolves the configured move ids, dropping duplicates.
func (c *Config) MoveSet() ([]game.Action, error) {
	var (
		moves []game.Action
		seen  [game.Place + 1]bool
	)
	for _, id := range c.Moves {
		a, err := game.ActionFromID(id)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		if !a.IsMove() {
			return nil, fmt.Errorf("%w: %q is not a piece move", ErrInvalid, id)
		}
		if !seen[a] {
			seen[a] = true
			moves = append(moves, a)
		}
	}
	return moves, nil
}

// Fingerprint hashes the rule set: bag type, kick table and move set.
// Cached search results from different rule sets never collide. Depth and
// concurrency settings are deliberately excluded.
func (c *Config) Fingerprint() uint64 {
	moves := append([]string(nil), c.Moves...)
	sort.Strings(moves)
	h := xxhash.New()
	h.WriteString(c.BagType)
	h.WriteString("\x00")
	h.WriteString(c.KickTableID)
	h.WriteString("\x00")
	h.WriteString(strings.Join(moves, ","))
	return h.Sum64()
}
