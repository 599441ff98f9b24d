package runner

import "sync"

// tableLocks serializes operations that target the same table. A
// worker holding a table's token blocks any other worker wanting that
// table until release, regardless of operation kind.
type tableLocks struct {
	mu   sync.Mutex
	cond *sync.Cond
	held map[string]bool
}

func newTableLocks() *tableLocks {
	t := &tableLocks{held: make(map[string]bool)}
	t.cond = sync.NewCond(&t.mu)
	return t
}

func (t *tableLocks) acquire(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for t.held[name] {
		t.cond.Wait()
	}
	t.held[name] = true
}

func (t *tableLocks) release(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.held, name)
	t.cond.Broadcast()
}
