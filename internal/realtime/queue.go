package realtime

type pendingSend struct {
	event string
	data  any
	opts  SendOptions
}

// sendQueue is a bounded FIFO of messages awaiting the next successful
// connect. At the limit the oldest entry is evicted first.
type sendQueue struct {
	limit int
	items []pendingSend
}

func (q *sendQueue) push(m pendingSend) (evicted bool) {
	if q.limit > 0 && len(q.items) >= q.limit {
		copy(q.items, q.items[1:])
		q.items = q.items[:len(q.items)-1]
		evicted = true
	}
	q.items = append(q.items, m)
	return evicted
}

func (q *sendQueue) drain() []pendingSend {
	out := q.items
	q.items = nil
	return out
}

func (q *sendQueue) len() int { return len(q.items) }
