// Package useragent provides the browser user-agent pool used for request
// camouflage. Some edges serve different content to bare clients; rotating
// through real browser strings keeps probe responses representative.
package useragent

import (
	"math/rand/v2"
	"sync/atomic"

	"github.com/httpeek/httpeek/pkg/defaults"
)

// Pool is a set of user-agent strings with random and round-robin selection.
// The zero value is unusable; construct with New or Default.
type Pool struct {
	agents []string
	cursor atomic.Uint64
}

// New creates a pool from the given user-agent strings.
// An empty argument list falls back to the default browser set.
func New(agents ...string) *Pool {
	if len(agents) == 0 {
		return Default()
	}
	return &Pool{agents: agents}
}

// Default returns a pool of current browser user agents.
func Default() *Pool {
	return &Pool{agents: []string{
		defaults.UAChrome,
		defaults.UAChromeWindows,
		defaults.UASafari,
	}}
}

// Random returns a uniformly random agent from the pool.
func (p *Pool) Random() string {
	return p.agents[rand.IntN(len(p.agents))]
}

// Next returns agents in round-robin order. Safe for concurrent use.
func (p *Pool) Next() string {
	n := p.cursor.Add(1) - 1
	return p.agents[n%uint64(len(p.agents))]
}

// Agents returns a copy of the pool contents.
func (p *Pool) Agents() []string {
	out := make([]string, len(p.agents))
	copy(out, p.agents)
	return out
}

// Random returns a random agent from the default pool.
func Random() string {
	return defaultPool.Random()
}

var defaultPool = Default()
