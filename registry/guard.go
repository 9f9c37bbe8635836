package registry

import "sync/atomic"

// guard is held for the whole duration of a mutating call. Any other
// mutating call that starts meanwhile, including one made from inside a
// token callback, is refused instead of interleaving.
type guard struct {
	busy atomic.Bool
}

func (g *guard) enter() error {
	if !g.busy.CompareAndSwap(false, true) {
		return ErrReentrantCall
	}
	return nil
}

func (g *guard) exit() {
	g.busy.Store(false)
}
