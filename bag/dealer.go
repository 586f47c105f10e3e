package bag

import (
	"lukechampine.com/frand"

	"github.com/bryanmylee/perfect-clear/piece"
)

// Dealer draws pieces from a shuffled bag, refilling on exhaustion. It
// drives interactive play; the solver itself only ever consumes the
// Distribution side of this package.
type Dealer struct {
	typ Type
	rng *frand.RNG
	// remaining draws of the bag in progress, next draw last.
	pending []piece.Kind
}

// NewDealer seeds a dealer from the shared frand source.
func NewDealer(t Type) *Dealer {
	return &Dealer{typ: t, rng: frand.New()}
}

// Draw returns the next piece.
func (d *Dealer) Draw() piece.Kind {
	if d.typ == Random {
		return piece.Kinds[d.rng.Intn(piece.NumKinds)]
	}
	if len(d.pending) == 0 {
		d.refill()
	}
	k := d.pending[len(d.pending)-1]
	d.pending = d.pending[:len(d.pending)-1]
	return k
}

func (d *Dealer) refill() {
	copies := d.typ.Size() / piece.NumKinds
	d.pending = d.pending[:0]
	for i := 0; i < copies; i++ {
		d.pending = append(d.pending, piece.Kinds[:]...)
	}
	d.rng.Shuffle(len(d.pending), func(i, j int) {
		d.pending[i], d.pending[j] = d.pending[j], d.pending[i]
	})
}
