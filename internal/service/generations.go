package service

import (
	"errors"
	"sync"
	"time"

	"github.com/fakhrymubarak/skytrackr/internal/config"
	"github.com/patrickmn/go-cache"
)

var ErrStaleResponse = errors.New("response superseded by a newer request")

// Generations hands out request tokens per client session. Only the response
// to the most recent token of a session may be committed; older ones are stale.
// A session with no new token for the idle timeout is forgotten.
type Generations struct {
	mu     sync.Mutex
	latest *cache.Cache
}

// NewGenerations uses the configured session idle timeout.
func NewGenerations() *Generations {
	return NewGenerationsWithIdle(config.GetSessionIdleTimeout())
}

func NewGenerationsWithIdle(idle time.Duration) *Generations {
	return &Generations{latest: cache.New(idle, idle)}
}

// Next issues a new token for session, superseding every earlier one.
func (g *Generations) Next(session string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	var token uint64 = 1
	if v, ok := g.latest.Get(session); ok {
		token = v.(uint64) + 1
	}
	g.latest.Set(session, token, cache.DefaultExpiration)
	return token
}

// Commit reports whether token is still the latest for session.
func (g *Generations) Commit(session string, token uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	v, ok := g.latest.Get(session)
	return ok && v.(uint64) == token
}
