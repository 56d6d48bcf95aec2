package dialog

import (
	"sync"
	"time"

	"promohub/internal/promotion"
)

type Flow int

const (
	FlowNone Flow = iota
	FlowAddPromo
	FlowEditPromo
	FlowDeletePromo
)

func (f Flow) String() string {
	switch f {
	case FlowAddPromo:
		return "add_promo"
	case FlowEditPromo:
		return "edit_promo"
	case FlowDeletePromo:
		return "del_promo"
	default:
		return "none"
	}
}

type Step int

const (
	StepNone Step = iota

	// add-promotion flow
	StepPreviewImage
	StepTitle
	StepDescription
	StepLink
	StepConfirm

	// edit-promotion flow
	StepPickPromo
	StepPickField
	StepNewValue

	// delete-promotion flow
	StepDeletePick
	StepDeleteConfirm
)

// State — накопленные данные одного незавершённого диалога.
type State struct {
	Flow Flow
	Step Step

	// edit/delete target
	PromoID int64
	Field   promotion.Field

	// add flow accumulation
	Title       string
	Description string
	Link        string
	PreviewRef  *string

	touched time.Time
}

// Store keeps per-actor dialogue state in process memory behind one coarse
// lock; cross-actor contention is not a real workload here. States older
// than ttl are discarded on access (ttl 0 disables expiry).
type Store struct {
	mu     sync.Mutex
	states map[int64]*State
	ttl    time.Duration
	now    func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		states: make(map[int64]*State),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Begin unconditionally replaces any in-progress flow for the actor.
// Last writer wins: previously collected fields are discarded.
func (s *Store) Begin(actorID int64, flow Flow, step Step) *State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := &State{Flow: flow, Step: step, touched: s.now()}
	s.states[actorID] = st
	return st
}

// Get returns the actor's live state, or nil when none is active.
// The caller owns mutation: at most one event per actor is in flight.
func (s *Store) Get(actorID int64) *State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[actorID]
	if !ok {
		return nil
	}
	if s.ttl > 0 && s.now().Sub(st.touched) > s.ttl {
		delete(s.states, actorID)
		return nil
	}
	st.touched = s.now()
	return st
}

func (s *Store) Clear(actorID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, actorID)
}
