package cache

import (
	"strconv"
	"sync"
)

// FillToken is taken before a cache miss is loaded from the source of truth.
// A fill made with a token is dropped when the entry was invalidated after the
// token was taken.
type FillToken struct {
	Remote int64
	Local  uint64
}

func (t FillToken) String() string {
	return strconv.FormatInt(t.Remote, 10) + "." + strconv.FormatUint(t.Local, 10)
}

// Generations counts invalidations per key. Writers guarded by a generation
// only land while no invalidation happened since they read it.
type Generations struct {
	mu   sync.Mutex
	gens map[string]uint64
}

func NewGenerations() *Generations {
	return &Generations{gens: make(map[string]uint64)}
}

func (g *Generations) Current(key string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gens[key]
}

// Bump advances the generation of key and runs drop under the same lock.
func (g *Generations) Bump(key string, drop func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gens[key]++
	if drop != nil {
		drop()
	}
}

// IfCurrent runs write only when key is still at gen.
func (g *Generations) IfCurrent(key string, gen uint64, write func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gens[key] != gen {
		return false
	}
	write()
	return true
}
