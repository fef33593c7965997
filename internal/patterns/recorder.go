package patterns

import (
	"log"
	"sync"
)

// AsyncRecorder writes outcomes to the store from a background
// goroutine. Record never blocks and never reports failure to the
// caller; write errors are logged and dropped.
type AsyncRecorder struct {
	store   *Store
	queue   chan Outcome
	wg      sync.WaitGroup
	closeMu sync.Mutex
	closed  bool
}

// NewAsyncRecorder starts a recorder draining into the store. A
// non-positive buffer defaults to 32.
func NewAsyncRecorder(store *Store, buffer int) *AsyncRecorder {
	if buffer <= 0 {
		buffer = 32
	}
	r := &AsyncRecorder{
		store: store,
		queue: make(chan Outcome, buffer),
	}
	r.wg.Add(1)
	go r.drain()
	return r
}

func (r *AsyncRecorder) drain() {
	defer r.wg.Done()
	for o := range r.queue {
		if err := r.store.Insert(o); err != nil {
			log.Printf("[patterns] dropped outcome for task %s: %v", o.TaskID, err)
		}
	}
}

// Record enqueues an outcome. A full queue or a closed recorder drops
// the outcome with a log line.
func (r *AsyncRecorder) Record(o Outcome) {
	r.closeMu.Lock()
	defer r.closeMu.Unlock()
	if r.closed {
		log.Printf("[patterns] recorder closed, dropped outcome for task %s", o.TaskID)
		return
	}
	select {
	case r.queue <- o:
	default:
		log.Printf("[patterns] queue full, dropped outcome for task %s", o.TaskID)
	}
}

// Close stops accepting outcomes and waits for queued writes to land.
func (r *AsyncRecorder) Close() {
	r.closeMu.Lock()
	if r.closed {
		r.closeMu.Unlock()
		return
	}
	r.closed = true
	close(r.queue)
	r.closeMu.Unlock()
	r.wg.Wait()
}
