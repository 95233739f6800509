package match

import "github.com/mcdev12/courtside/go/internal/game"

// Location is where a known connection currently is: queued, or seated in a slot.
type Location struct {
	Slot game.Slot
}

func (l Location) Queued() bool {
	return l.Slot == ""
}

// Index is the reverse lookup from connection to location. A connection is
// absent, queued, or in exactly one slot.
type Index struct {
	locations map[string]Location
}

func NewIndex() *Index {
	return &Index{locations: make(map[string]Location)}
}

// Queue marks connID as waiting in the queue.
func (x *Index) Queue(connID string) {
	x.locations[connID] = Location{}
}

// Seat marks connID as occupying slot.
func (x *Index) Seat(connID string, slot game.Slot) {
	x.locations[connID] = Location{Slot: slot}
}

func (x *Index) Remove(connID string) {
	delete(x.locations, connID)
}

func (x *Index) Lookup(connID string) (Location, bool) {
	loc, ok := x.locations[connID]
	return loc, ok
}

// SlotOf returns the slot connID occupies, if it is seated.
func (x *Index) SlotOf(connID string) (game.Slot, bool) {
	loc, ok := x.locations[connID]
	if !ok || loc.Queued() {
		return "", false
	}
	return loc.Slot, true
}

func (x *Index) Len() int {
	return len(x.locations)
}
