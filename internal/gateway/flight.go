package gateway

import (
	"errors"
	"sync"

	"github.com/abhisek/studyplan/internal/apperr"
)

// ErrInFlight is returned when a call overlaps an unfinished call for the
// same operation. The overlapping call never reaches the provider.
var ErrInFlight = errors.New("a request for this operation is already in progress")

// flightGuard admits at most one active call per operation key.
type flightGuard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

// acquire marks op as in flight. It returns a release func, or a
// GenerationError wrapping ErrInFlight if op is already running.
func (g *flightGuard) acquire(op string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.active == nil {
		g.active = make(map[string]struct{})
	}
	if _, busy := g.active[op]; busy {
		return nil, &apperr.GenerationError{Op: op, Err: ErrInFlight}
	}
	g.active[op] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.active, op)
			g.mu.Unlock()
		})
	}, nil
}

// busy reports whether op is currently in flight.
func (g *flightGuard) busy(op string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.active[op]
	return ok
}
