package party

import "sync/atomic"

// requestGuard admits one outstanding generation request per page
type requestGuard struct {
	busy atomic.Bool
}

func (g *requestGuard) acquire() bool {
	return g.busy.CompareAndSwap(false, true)
}

func (g *requestGuard) release() {
	g.busy.Store(false)
}

func (g *requestGuard) held() bool {
	return g.busy.Load()
}
