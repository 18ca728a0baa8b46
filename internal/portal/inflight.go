package portal

import "sync"

// FieldFormID is the hidden input identifying one rendering of a form.
// Posts that repeat it while the first is still running share its state.
const FieldFormID = "form_id"

// inflight holds the forms of submissions still being processed, keyed by
// form id.
type inflight[F any] struct {
	mu      sync.Mutex
	entries map[string]*inflightEntry[F]
}

type inflightEntry[F any] struct {
	form F
	refs int
}

func newInflight[F any]() *inflight[F] {
	return &inflight[F]{entries: map[string]*inflightEntry[F]{}}
}

// acquire returns the form pending under id, or registers the one build
// returns. The caller must call release when the request is done. An empty
// id is never shared.
func (p *inflight[F]) acquire(id string, build func() F) (form F, release func()) {
	if id == "" {
		return build(), func() {}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[id]
	if !ok {
		e = &inflightEntry[F]{form: build()}
		p.entries[id] = e
	}
	e.refs++
	var once sync.Once
	return e.form, func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			if e.refs--; e.refs == 0 {
				delete(p.entries, id)
			}
		})
	}
}

func (p *inflight[F]) pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}
