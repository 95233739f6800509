package match

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mcdev12/courtside/go/internal/game"
)

func TestQueuePreservesArrivalOrder(t *testing.T) {
	q := NewQueue()
	ids := []string{"a", "b", "c", "d", "e", "f"}
	for _, id := range ids {
		if !q.Enqueue(Entry{ConnID: id}) {
			t.Fatalf("enqueue %s rejected", id)
		}
	}
	var got []string
	for {
		e, ok := q.Pop()
		if !ok {
			break
		}
		got = append(got, e.ConnID)
	}
	if diff := cmp.Diff(ids, got); diff != "" {
		t.Fatalf("pop order (-want +got):\n%s", diff)
	}
}

func TestQueueEnqueueIsIdempotent(t *testing.T) {
	q := NewQueue()
	q.Enqueue(Entry{ConnID: "a", Nickname: "first"})
	if q.Enqueue(Entry{ConnID: "a", Nickname: "second"}) {
		t.Fatalf("duplicate enqueue accepted")
	}
	if q.PushFront(Entry{ConnID: "a"}) {
		t.Fatalf("duplicate push front accepted")
	}
	if q.Len() != 1 || q.Entries()[0].Nickname != "first" {
		t.Fatalf("queue = %+v", q.Entries())
	}
}

func TestQueuePushFrontJumpsTheLine(t *testing.T) {
	q := NewQueue()
	q.Enqueue(Entry{ConnID: "organic"})
	q.PushFront(Entry{ConnID: "evicted1"})
	q.PushFront(Entry{ConnID: "evicted2"})

	want := []Entry{{ConnID: "evicted2"}, {ConnID: "evicted1"}, {ConnID: "organic"}}
	if diff := cmp.Diff(want, q.Entries()); diff != "" {
		t.Fatalf("queue (-want +got):\n%s", diff)
	}
}

func TestQueueRemoveAndPositions(t *testing.T) {
	q := NewQueue()
	for _, id := range []string{"a", "b", "c"} {
		q.Enqueue(Entry{ConnID: id})
	}
	if !q.Remove("b") {
		t.Fatalf("remove b failed")
	}
	if q.Remove("missing") {
		t.Fatalf("removing an unknown id reported success")
	}
	want := []Position{
		{ConnID: "a", Position: 1, Total: 2},
		{ConnID: "c", Position: 2, Total: 2},
	}
	if diff := cmp.Diff(want, q.Positions()); diff != "" {
		t.Fatalf("positions (-want +got):\n%s", diff)
	}
}

func TestIndexTracksOneLocationPerConnection(t *testing.T) {
	x := NewIndex()
	x.Queue("a")
	if loc, ok := x.Lookup("a"); !ok || !loc.Queued() {
		t.Fatalf("a should be queued, got %+v %v", loc, ok)
	}
	if _, ok := x.SlotOf("a"); ok {
		t.Fatalf("queued connection reported a slot")
	}

	x.Seat("a", game.Right1)
	if slot, ok := x.SlotOf("a"); !ok || slot != game.Right1 {
		t.Fatalf("slot = %q %v, want right1", slot, ok)
	}
	if x.Len() != 1 {
		t.Fatalf("index len = %d, want 1", x.Len())
	}

	x.Remove("a")
	if _, ok := x.Lookup("a"); ok {
		t.Fatalf("removed connection still indexed")
	}
}
