// Package bag models the next-piece distribution. A bag is a fixed
// multiset of piece kinds drawn without replacement until exhausted, then
// replenished; reconstructing the current bag's remaining contents from
// the seen-piece history yields the exact distribution of the next draw.
package bag

import (
	"errors"
	"fmt"

	"github.com/bryanmylee/perfect-clear/piece"
)

// Type selects the randomizer the distribution models.
type Type uint8

const (
	// Random draws every kind uniformly, independent of history.
	Random Type = iota
	// SevenBag shuffles one copy of each kind per bag of 7 draws.
	SevenBag
	// FourteenBag shuffles two copies of each kind per bag of 14 draws.
	FourteenBag
)

// ErrUnknownType reports an unrecognized bag type id.
var ErrUnknownType = errors.New("unknown bag type")

// TypeFromID resolves a configuration bag type id.
func TypeFromID(id string) (Type, error) {
	switch id {
	case "random":
		return Random, nil
	case "7-bag":
		return SevenBag, nil
	case "14-bag":
		return FourteenBag, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownType, id)
}

func (t Type) String() string {
	switch t {
	case SevenBag:
		return "7-bag"
	case FourteenBag:
		return "14-bag"
	}
	return "random"
}

// Size returns the number of draws per bag, or 0 for Random.
func (t Type) Size() int {
	switch t {
	case SevenBag:
		return 7
	case FourteenBag:
		return 14
	}
	return 0
}

// Distribution is a probability per playable kind, indexed by
// piece.Kinds order. Entries always sum to 1.
type Distribution [piece.NumKinds]float64

// P returns the probability of drawing k next.
func (d Distribution) P(k piece.Kind) float64 {
	return d[kindIndex(k)]
}

func kindIndex(k piece.Kind) int {
	return int(k - piece.I)
}

// Next returns the distribution of the next draw given the observed draw
// history (oldest first) and the total number of draws observed, which
// fixes the phase within the current bag. A bag boundary occurs every
// Size() draws.
func (t Type) Next(history []piece.Kind, seenCount int) Distribution {
	var d Distribution
	switch t {
	case Random:
		for i := range d {
			d[i] = 1.0 / piece.NumKinds
		}
	case SevenBag:
		drawn := currentBagDraws(history, seenCount, 7)
		remaining := 0
		var inBag [piece.NumKinds]bool
		for i := range inBag {
			inBag[i] = true
		}
		for _, k := range drawn {
			inBag[kindIndex(k)] = false
		}
		for _, ok := range inBag {
			if ok {
				remaining++
			}
		}
		for i, ok := range inBag {
			if ok {
				d[i] = 1.0 / float64(remaining)
			}
		}
	case FourteenBag:
		drawn := currentBagDraws(history, seenCount, 14)
		var left [piece.NumKinds]int
		for i := range left {
			left[i] = 2
		}
		total := 14
		for _, k := range drawn {
			left[kindIndex(k)]--
			total--
		}
		for i, n := range left {
			if n > 0 {
				d[i] = float64(n) / float64(total)
			}
		}
	}
	return d
}

// currentBagDraws returns the draws belonging to the bag in progress: the
// (seenCount mod size) most recent history entries. The 14-entry history
// bound is exactly enough for the largest bag.
func currentBagDraws(history []piece.Kind, seenCount, size int) []piece.Kind {
	inBag := seenCount % size
	if inBag == 0 {
		return nil
	}
	if inBag > len(history) {
		inBag = len(history)
	}
	return history[len(history)-inBag:]
}
