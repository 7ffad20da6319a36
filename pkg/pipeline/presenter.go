package pipeline

import (
	"log/slog"
	"sync"

	"github.com/teslashibe/go-faceoverlay/internal/log"
)

// Presenter is the presentation context: a single goroutine that runs view
// mutations one at a time, in the order they were posted.
type Presenter struct {
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan func()
	done   chan struct{}
}

// NewPresenter starts a presenter whose queue holds up to size pending jobs.
func NewPresenter(size int, logger *slog.Logger) *Presenter {
	if size <= 0 {
		size = 1
	}
	p := &Presenter{
		logger: log.Or(logger),
		queue:  make(chan func(), size),
		done:   make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *Presenter) run() {
	defer close(p.done)
	for fn := range p.queue {
		p.exec(fn)
	}
}

func (p *Presenter) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("presenter job panicked", "panic", r)
		}
	}()
	fn()
}

// Post queues fn. It blocks while the queue is full and returns false once
// the presenter is closed.
func (p *Presenter) Post(fn func()) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	p.queue <- fn
	return true
}

// Sync runs fn on the presenter and waits for it to finish.
func (p *Presenter) Sync(fn func()) bool {
	done := make(chan struct{})
	if !p.Post(func() {
		defer close(done)
		fn()
	}) {
		return false
	}
	<-done
	return true
}

// Close stops accepting jobs, runs the ones already queued and waits.
func (p *Presenter) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()
	<-p.done
}
