package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/bryanmylee/perfect-clear/bag"
	"github.com/bryanmylee/perfect-clear/game"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	os.Exit(m.Run())
}

func TestDefaultValidates(t *testing.T) {
	is := is.New(t)
	c := Default()
	is.NoErr(c.Validate())

	typ, err := c.Bag()
	is.NoErr(err)
	is.Equal(typ, bag.SevenBag)

	moves, err := c.MoveSet()
	is.NoErr(err)
	is.Equal(len(moves), 6)
}

func TestLoadOverridesDefaults(t *testing.T) {
	is := is.New(t)

	path := filepath.Join(t.TempDir(), "settings.yaml")
	is.NoErr(os.WriteFile(path, []byte(
		"bag: 14-bag\nmax_pieces: 4\nmoves: [left, right, harddrop, 180]\n",
	), 0o644))

	c, err := Load(path)
	is.NoErr(err)
	is.Equal(c.BagType, "14-bag")
	is.Equal(c.MaxPieces, 4)
	is.Equal(c.KickTableID, "srs") // untouched default

	moves, err := c.MoveSet()
	is.NoErr(err)
	is.Equal(moves[3], game.Rotate180)
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown bag", func(c *Config) { c.BagType = "tgm" }},
		{"unknown kicks", func(c *Config) { c.KickTableID = "arika" }},
		{"unknown move", func(c *Config) { c.Moves = []string{"warp"} }},
		{"non-move action", func(c *Config) { c.Moves = []string{"place"} }},
		{"empty moves", func(c *Config) { c.Moves = nil }},
		{"zero depth", func(c *Config) { c.MaxPieces = 0 }},
		{"bad prob floor", func(c *Config) { c.ProbFloor = 1.5 }},
		{"bad early accept", func(c *Config) { c.EarlyAccept = -0.1 }},
		{"negative workers", func(c *Config) { c.Workers = -1 }},
		{"zero cache", func(c *Config) { c.CacheFraction = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			is := is.New(t)
			c := Default()
			tc.mutate(&c)
			err := c.Validate()
			is.True(errors.Is(err, ErrInvalid))
		})
	}
}

func TestFingerprint(t *testing.T) {
	is := is.New(t)

	a := Default()
	b := Default()
	is.Equal(a.Fingerprint(), b.Fingerprint())

	// Move order does not matter; depth does not matter.
	b.Moves = []string{"harddrop", "cw", "ccw", "softdrop", "right", "left"}
	b.MaxPieces = 2
	is.Equal(a.Fingerprint(), b.Fingerprint())

	// A different bag, kicks or move set each changes the fingerprint.
	b = Default()
	b.BagType = "14-bag"
	is.True(a.Fingerprint() != b.Fingerprint())

	b = Default()
	b.KickTableID = "none"
	is.True(a.Fingerprint() != b.Fingerprint())

	b = Default()
	b.Moves = append(b.Moves, "180")
	is.True(a.Fingerprint() != b.Fingerprint())
}
