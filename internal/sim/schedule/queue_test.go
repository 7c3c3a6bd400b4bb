package schedule

import (
	"reflect"
	"testing"
)

func TestRunDue_Order(t *testing.T) {
	q := NewQueue()
	var got []string
	q.At(5, func(uint64) { got = append(got, "b") })
	q.At(3, func(uint64) { got = append(got, "a") })
	q.At(5, func(uint64) { got = append(got, "c") })
	q.At(9, func(uint64) { got = append(got, "late") })

	if n := q.RunDue(2); n != 0 {
		t.Fatalf("nothing should fire at tick 2, fired %d", n)
	}
	if n := q.RunDue(5); n != 3 {
		t.Fatalf("expected 3 entries at tick 5, got %d", n)
	}
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("unexpected order %#v", got)
	}
	if q.Len() != 1 {
		t.Fatalf("expected 1 pending, got %d", q.Len())
	}
}

func TestCancel(t *testing.T) {
	q := NewQueue()
	fired := false
	id := q.After(10, 3, func(uint64) { fired = true })
	if !q.Cancel(id) || q.Cancel(id) {
		t.Fatalf("cancel should succeed exactly once")
	}
	q.RunDue(100)
	if fired {
		t.Fatalf("cancelled entry fired")
	}
}

func TestRunDue_ChainedSameTick(t *testing.T) {
	q := NewQueue()
	var ticks []uint64
	q.At(4, func(now uint64) {
		ticks = append(ticks, now)
		q.At(now, func(now uint64) { ticks = append(ticks, now+100) })
		q.At(now+1, func(now uint64) { ticks = append(ticks, now+1000) })
	})
	q.RunDue(4)
	if !reflect.DeepEqual(ticks, []uint64{4, 104}) {
		t.Fatalf("unexpected ticks %#v", ticks)
	}
	q.RunDue(5)
	if !reflect.DeepEqual(ticks, []uint64{4, 104, 1005}) {
		t.Fatalf("unexpected ticks %#v", ticks)
	}
}
