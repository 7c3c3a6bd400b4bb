// Package schedule holds effects that fire at a later world tick. The world
// loop calls RunDue once per step.
package schedule

import "container/heap"

type Func func(nowTick uint64)

type entry struct {
	id       uint64
	fireTick uint64
	fn       Func
	index    int
}

type entryHeap []*entry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	if h[i].fireTick != h[j].fireTick {
		return h[i].fireTick < h[j].fireTick
	}
	return h[i].id < h[j].id
}
func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *entryHeap) Push(x any) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// Queue orders entries by fire tick, then by scheduling order.
type Queue struct {
	h      entryHeap
	byID   map[uint64]*entry
	nextID uint64
}

func NewQueue() *Queue {
	return &Queue{byID: map[uint64]*entry{}}
}

// At schedules fn for fireTick and returns an id usable with Cancel.
func (q *Queue) At(fireTick uint64, fn Func) uint64 {
	q.nextID++
	e := &entry{id: q.nextID, fireTick: fireTick, fn: fn}
	heap.Push(&q.h, e)
	q.byID[e.id] = e
	return e.id
}

// After schedules fn delay ticks after nowTick.
func (q *Queue) After(nowTick, delay uint64, fn Func) uint64 {
	return q.At(nowTick+delay, fn)
}

func (q *Queue) Cancel(id uint64) bool {
	e := q.byID[id]
	if e == nil {
		return false
	}
	heap.Remove(&q.h, e.index)
	delete(q.byID, id)
	return true
}

func (q *Queue) Len() int { return len(q.h) }

// RunDue fires every entry with fireTick <= nowTick in order. Entries
// scheduled by a running entry for the same tick fire in the same call.
func (q *Queue) RunDue(nowTick uint64) int {
	n := 0
	for len(q.h) > 0 && q.h[0].fireTick <= nowTick {
		e := heap.Pop(&q.h).(*entry)
		delete(q.byID, e.id)
		if e.fn != nil {
			e.fn(nowTick)
		}
		n++
	}
	return n
}
