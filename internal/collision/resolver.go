package collision

import (
	"orbitribbon/internal/physics"
)

// Contact surface used for every pushing pair.
const (
	DefaultBounce = 0.5
	DefaultMu     = 5000.0
)

// DefaultMaxContacts caps the contacts generated for one pair.
const DefaultMaxContacts = 16

// Resolver turns narrow-phase contacts into record entries and contact
// joints.
type Resolver struct {
	Record      Record
	Surface     physics.Surface
	MaxContacts int
}

func NewResolver(rec Record) *Resolver {
	if rec == nil {
		rec = Record{}
	}
	return &Resolver{
		Record:      rec,
		Surface:     physics.Surface{Mu: DefaultMu, Bounce: DefaultBounce},
		MaxContacts: DefaultMaxContacts,
	}
}

// HandleCollision resolves a pair of tagged leaves. It runs once per
// pair, so it records and pushes for both sides. The returned count is
// the number of contacts found.
//
// A higher-priority object driving into a lower one is only pushed back
// by the lower object's joint being world-anchored, which behaves poorly
// when the higher one is the mover.
func (r *Resolver) HandleCollision(a, b *physics.Geom, group *physics.JointGroup) int {
	ta, tb := TagOf(a), TagOf(b)
	if ta == nil || tb == nil {
		return 0
	}
	contacts := physics.Collide(a, b, r.MaxContacts)
	if len(contacts) == 0 {
		return 0
	}
	r.Record.add(a, b, contacts)

	if !ta.Push || !tb.Push || group == nil {
		return len(contacts)
	}
	b1, b2 := a.Body(), b.Body()
	switch {
	case ta.Priority > tb.Priority:
		b1 = nil
	case ta.Priority < tb.Priority:
		b2 = nil
	}
	for _, c := range contacts {
		group.NewContact(c, r.Surface).Attach(b1, b2)
	}
	return len(contacts)
}
