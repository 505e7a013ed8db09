package ephemqd

import (
	"sort"
	"sync"

	"github.com/ephemq/ephemq/internal/lg"
)

// Registry maps queue names to queues. A single mutex guards both the map
// and every queue's contents, and is held only for one lookup plus one
// mutation.
type Registry struct {
	sync.Mutex
	queues map[string]*Queue
	logf   lg.AppLogFunc
}

func NewRegistry(logf lg.AppLogFunc) *Registry {
	return &Registry{
		queues: make(map[string]*Queue),
		logf:   logf,
	}
}

// Push appends msg to the tail of the named queue, creating the queue on
// first use. The registry keeps msg; callers must not modify it afterwards.
func (r *Registry) Push(key string, msg []byte) {
	r.Lock()
	q, ok := r.queues[key]
	if !ok {
		q = newQueue(key)
		r.queues[key] = q
	}
	q.push(msg)
	r.Unlock()

	if !ok && r.logf != nil {
		r.logf(lg.INFO, "QUEUE(%s): created", key)
	}
}

// PopNow removes and returns the head of the named queue without waiting.
// An unknown key reports empty and does not create a queue.
func (r *Registry) PopNow(key string) ([]byte, bool) {
	r.Lock()
	defer r.Unlock()
	q, ok := r.queues[key]
	if !ok {
		return nil, false
	}
	return q.pop()
}

// Exists reports whether a queue was ever created for key.
func (r *Registry) Exists(key string) bool {
	r.Lock()
	_, ok := r.queues[key]
	r.Unlock()
	return ok
}

func (r *Registry) Depth(key string) int64 {
	r.Lock()
	defer r.Unlock()
	q, ok := r.queues[key]
	if !ok {
		return 0
	}
	return q.depth()
}

// TotalDepth is the number of messages held across all queues.
func (r *Registry) TotalDepth() int64 {
	r.Lock()
	defer r.Unlock()
	var total int64
	for _, q := range r.queues {
		total += q.depth()
	}
	return total
}

func (r *Registry) Len() int {
	r.Lock()
	defer r.Unlock()
	return len(r.queues)
}

// Snapshot returns per-queue stats sorted by name. A non-empty name limits
// the result to that queue.
func (r *Registry) Snapshot(name string) []QueueStats {
	r.Lock()
	out := []QueueStats{}
	if name != "" {
		if q, ok := r.queues[name]; ok {
			out = append(out, q.stats())
		}
	} else {
		out = make([]QueueStats, 0, len(r.queues))
		for _, q := range r.queues {
			out = append(out, q.stats())
		}
	}
	r.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
