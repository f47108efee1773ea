package search

import (
	"sync"

	"hypertune/internal/resample"
)

// Pool hands out per-worker evaluator clones. Worker 0 always receives the
// template itself; any other id receives a private clone created on first
// use and reused for the rest of the search. Clones exist because an event
// mutates its evaluator's model slot in place: two events sharing one
// evaluator concurrently would corrupt each other's evaluation.
type Pool struct {
	template *resample.Evaluator

	mu      sync.Mutex
	workers map[int]*resample.Evaluator
}

func NewPool(template *resample.Evaluator) *Pool {
	return &Pool{
		template: template,
		workers:  make(map[int]*resample.Evaluator),
	}
}

// Template returns the shared evaluator used by sequential dispatch.
func (p *Pool) Template() *resample.Evaluator { return p.template }

// Worker returns the evaluator owned by the given worker id.
func (p *Pool) Worker(id int) *resample.Evaluator {
	if id == 0 {
		return p.template
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	ev, ok := p.workers[id]
	if !ok {
		ev = p.template.Clone()
		p.workers[id] = ev
	}
	return ev
}

// Spawn returns a one-off clone for policies that give every event its
// own evaluator.
func (p *Pool) Spawn() *resample.Evaluator { return p.template.Clone() }

// Size reports how many clones have been materialized so far, excluding
// the template.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.workers)
}
