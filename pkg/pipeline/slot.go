package pipeline

import "sync"

// slot is a single-slot mailbox between the capture context and the
// detection worker. Publishing overwrites an unconsumed task.
type slot struct {
	mu     sync.Mutex
	cond   *sync.Cond
	task   *task
	closed bool

	overwritten uint64
}

func newSlot() *slot {
	s := &slot{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// publish hands t to the worker. It reports false if the slot is closed.
func (s *slot) publish(t *task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	if s.task != nil {
		s.overwritten++
	}
	s.task = t
	s.cond.Signal()
	return true
}

// take blocks until a task is available. It returns nil once the slot is
// closed; a task published before close is discarded.
func (s *slot) take() *task {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.task == nil && !s.closed {
		s.cond.Wait()
	}
	if s.closed {
		return nil
	}
	t := s.task
	s.task = nil
	return t
}

func (s *slot) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.task = nil
	s.cond.Broadcast()
}
