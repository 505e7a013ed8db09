package ephemqd

import (
	"time"
)

// compactThreshold is the minimum number of consumed slots before the
// backing slice is compacted.
const compactThreshold = 64

// Queue is the FIFO of messages stored under one name. It is not safe for
// concurrent use; the owning Registry serializes access.
type Queue struct {
	name      string
	messages  [][]byte
	head      int
	pushCount uint64
	popCount  uint64
	createdAt time.Time
}

func newQueue(name string) *Queue {
	return &Queue{
		name:      name,
		createdAt: time.Now(),
	}
}

func (q *Queue) push(msg []byte) {
	q.messages = append(q.messages, msg)
	q.pushCount++
}

func (q *Queue) pop() ([]byte, bool) {
	if q.head == len(q.messages) {
		return nil, false
	}
	msg := q.messages[q.head]
	q.messages[q.head] = nil
	q.head++
	q.popCount++

	switch {
	case q.head == len(q.messages):
		// drained; reuse the backing array from the start
		q.messages = q.messages[:0]
		q.head = 0
	case q.head >= compactThreshold && q.head*2 >= len(q.messages):
		n := copy(q.messages, q.messages[q.head:])
		for i := n; i < len(q.messages); i++ {
			q.messages[i] = nil
		}
		q.messages = q.messages[:n]
		q.head = 0
	}
	return msg, true
}

func (q *Queue) depth() int64 {
	return int64(len(q.messages) - q.head)
}

func (q *Queue) stats() QueueStats {
	return QueueStats{
		Name:      q.name,
		Depth:     q.depth(),
		PushCount: q.pushCount,
		PopCount:  q.popCount,
		CreatedAt: q.createdAt,
	}
}
