package mcts

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// drainInterval is how often the reclaimer wakes to drain its queue
// (spec.md §4.13: "every ~100 ms").
const drainInterval = 100 * time.Millisecond

// reclaimJob is one detached subtree awaiting disposal. Exactly one field is
// set: solid holds the contiguous child array of a solidified subtree,
// linked the head of a linked-list one (where dropping the head is enough to
// cascade-free the whole chain via the garbage collector).
type reclaimJob struct {
	linked *Node
	solid  []Node
}

// reclaimer is the process-wide background subtree disposer (spec.md
// §4.13, §9 "Global state"). Its queue is the only structure this core
// shares across trees; everything else is tree-local. id is a per-process
// correlation id attached to every log line this reclaimer emits, useful
// when several engine instances share one log stream.
type reclaimer struct {
	id uuid.UUID

	mu    sync.Mutex
	queue []reclaimJob
	wake  chan struct{}
	stop  chan struct{}
	once  sync.Once
}

var globalReclaimer = newReclaimer()

func newReclaimer() *reclaimer {
	r := &reclaimer{
		id:   uuid.New(),
		wake: make(chan struct{}, 1),
		stop: make(chan struct{}),
	}
	go r.run()
	return r
}

// enqueueLinked hands off a detached linked-list subtree root for
// asynchronous disposal.
func (r *reclaimer) enqueueLinked(root *Node) {
	if root == nil {
		return
	}
	r.mu.Lock()
	r.queue = append(r.queue, reclaimJob{linked: root})
	r.mu.Unlock()
	r.nudge()
}

// enqueueSolid hands off a detached solidified child array for
// asynchronous disposal; each of its elements needs to be individually
// torn down (its own subtree walked and released) before the backing
// slice can be dropped.
func (r *reclaimer) enqueueSolid(children []Node) {
	if len(children) == 0 {
		return
	}
	r.mu.Lock()
	r.queue = append(r.queue, reclaimJob{solid: children})
	r.mu.Unlock()
	r.nudge()
}

func (r *reclaimer) nudge() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *reclaimer) run() {
	ticker := time.NewTicker(drainInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			r.drain()
			return
		case <-ticker.C:
			r.drain()
		case <-r.wake:
			r.drain()
		}
	}
}

func (r *reclaimer) drain() {
	r.mu.Lock()
	jobs := r.queue
	r.queue = nil
	r.mu.Unlock()

	if len(jobs) == 0 {
		return
	}
	for _, j := range jobs {
		if j.linked != nil {
			r.disposeLinked(j.linked)
		}
		if j.solid != nil {
			r.disposeSolid(j.solid)
		}
	}
	log.Debug().Str("reclaimer", r.id.String()).Int("jobs", len(jobs)).Msg("drained detached subtrees")
}

// disposeLinked walks a linked-list subtree depth-first, recursing into
// whichever child container each descendant uses, so a subtree that
// happens to contain solidified nodes further down is still torn down
// completely rather than merely unlinked.
func (r *reclaimer) disposeLinked(n *Node) {
	for c := n.child; c != nil; {
		next := c.sibling
		r.disposeLinked(c)
		c = next
	}
	if n.solidChildren {
		r.disposeSolid(n.children)
	}
}

func (r *reclaimer) disposeSolid(children []Node) {
	for i := range children {
		r.disposeLinked(&children[i])
	}
}

// stopAndDrain signals the background worker to run one final drain pass
// and exit; calling it again is a no-op. The global reclaimer is never
// stopped and runs for the process lifetime.
func (r *reclaimer) stopAndDrain() {
	r.once.Do(func() { close(r.stop) })
}
