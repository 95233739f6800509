package match

import "slices"

// Entry is a connection waiting for a slot.
type Entry struct {
	ConnID   string
	Nickname string
}

// Position is a queued connection's 1-based place in line.
type Position struct {
	ConnID   string
	Position int
	Total    int
}

// Queue is the FIFO of waiting connections. It is not safe for concurrent
// use; the Manager only touches it from the loop goroutine.
type Queue struct {
	entries []Entry
}

func NewQueue() *Queue {
	return &Queue{entries: make([]Entry, 0, 8)}
}

// Enqueue appends e unless its connection is already queued.
func (q *Queue) Enqueue(e Entry) bool {
	if q.indexOf(e.ConnID) >= 0 {
		return false
	}
	q.entries = append(q.entries, e)
	return true
}

// PushFront puts e at the head of the line, ahead of everyone else.
func (q *Queue) PushFront(e Entry) bool {
	if q.indexOf(e.ConnID) >= 0 {
		return false
	}
	q.entries = slices.Insert(q.entries, 0, e)
	return true
}

// Pop removes and returns the head entry.
func (q *Queue) Pop() (Entry, bool) {
	if len(q.entries) == 0 {
		return Entry{}, false
	}
	e := q.entries[0]
	q.entries = q.entries[1:]
	return e, true
}

// Remove drops a queued connection. It reports whether anything was removed.
func (q *Queue) Remove(connID string) bool {
	i := q.indexOf(connID)
	if i < 0 {
		return false
	}
	q.entries = slices.Delete(q.entries, i, i+1)
	return true
}

func (q *Queue) Len() int {
	return len(q.entries)
}

// Positions lists every queued connection with its place and the queue length.
func (q *Queue) Positions() []Position {
	out := make([]Position, len(q.entries))
	for i, e := range q.entries {
		out[i] = Position{ConnID: e.ConnID, Position: i + 1, Total: len(q.entries)}
	}
	return out
}

// Entries returns a copy of the queue in order.
func (q *Queue) Entries() []Entry {
	return slices.Clone(q.entries)
}

func (q *Queue) indexOf(connID string) int {
	return slices.IndexFunc(q.entries, func(e Entry) bool { return e.ConnID == connID })
}
