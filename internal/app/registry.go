package app

import (
	"sort"
	"sync"

	"blackjack/internal/domain"
)

// TableInfo is one row of the lobby listing.
type TableInfo struct {
	ID        string       `json:"id"`
	Occupancy int          `json:"occupancy"`
	Capacity  int          `json:"capacity"`
	Phase     domain.Phase `json:"phase"`
}

// Registry owns the bounded pool of sessions and the cross-session
// exclusivity guarantee: a participant is seated in at most one session at a
// time. It keeps its own occupancy and phase bookkeeping so aggregate queries
// read one consistent snapshot without touching any session's lock.
type Registry struct {
	mu        sync.Mutex
	limit     int
	capacity  int
	factory   func(id string) *domain.Session
	sessions  map[string]*domain.Session
	locations map[string]string
	occupancy map[string]int
	phases    map[string]domain.Phase
}

// NewRegistry builds a registry bounded to limit sessions, each created by
// the factory with capacity seats.
func NewRegistry(limit, capacity int, factory func(id string) *domain.Session) *Registry {
	return &Registry{
		limit:     limit,
		capacity:  capacity,
		factory:   factory,
		sessions:  make(map[string]*domain.Session),
		locations: make(map[string]string),
		occupancy: make(map[string]int),
		phases:    make(map[string]domain.Phase),
	}
}

// Ensure returns the session with the given id, creating it if absent.
// Creating past the registry bound fails with ErrRegistryFull; an existing id
// is returned unchanged regardless of the bound.
func (r *Registry) Ensure(id string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sess, ok := r.sessions[id]; ok {
		return sess, nil
	}
	if len(r.sessions) >= r.limit {
		return nil, ErrRegistryFull
	}
	sess := r.factory(id)
	r.sessions[id] = sess
	r.occupancy[id] = 0
	r.phases[id] = domain.PhaseIdle
	return sess, nil
}

// Get returns an existing session.
func (r *Registry) Get(id string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[id]
	if !ok {
		return nil, ErrNoSuchSession
	}
	return sess, nil
}

// SeatParticipant seats p in the given session after checking that p is not
// already seated somewhere else. The registry lock is held across the seat so
// two concurrent joins cannot both pass the exclusivity check.
func (r *Registry) SeatParticipant(id string, p *domain.Participant) ([]domain.Transition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[id]
	if !ok {
		return nil, ErrNoSuchSession
	}
	if loc, seated := r.locations[p.UserID]; seated && loc != id {
		return nil, ErrAlreadyElsewhere
	}
	ts, err := sess.Seat(p)
	if err != nil {
		return nil, err
	}
	r.locations[p.UserID] = id
	r.noteLocked(ts[len(ts)-1].View)
	return ts, nil
}

// UnseatParticipant removes the participant and clears their location record.
func (r *Registry) UnseatParticipant(id, userID string) ([]domain.Transition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[id]
	if !ok {
		return nil, ErrNoSuchSession
	}
	ts, err := sess.Unseat(userID)
	if err != nil {
		return nil, err
	}
	delete(r.locations, userID)
	r.noteLocked(ts[len(ts)-1].View)
	return ts, nil
}

// Destroy removes the session and every location record pointing at it.
func (r *Registry) Destroy(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
	delete(r.occupancy, id)
	delete(r.phases, id)
	for userID, loc := range r.locations {
		if loc == id {
			delete(r.locations, userID)
		}
	}
}

// LocationOf reports which session, if any, the participant is seated in.
func (r *Registry) LocationOf(userID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	loc, ok := r.locations[userID]
	return loc, ok
}

// NoteView refreshes the registry's bookkeeping from a committed snapshot.
// The service calls this after every session operation it runs directly.
func (r *Registry) NoteView(v domain.SessionView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.noteLocked(v)
}

func (r *Registry) noteLocked(v domain.SessionView) {
	if _, ok := r.sessions[v.ID]; !ok {
		return
	}
	r.occupancy[v.ID] = len(v.Participants)
	r.phases[v.ID] = v.Phase
}

// Tables lists every session's lobby row under one lock hold.
func (r *Registry) Tables() []TableInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]TableInfo, 0, len(r.sessions))
	for id := range r.sessions {
		out = append(out, TableInfo{
			ID:        id,
			Occupancy: r.occupancy[id],
			Capacity:  r.capacity,
			Phase:     r.phases[id],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Occupancy returns the total number of seated participants.
func (r *Registry) Occupancy() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	total := 0
	for _, n := range r.occupancy {
		total += n
	}
	return total
}

// ActiveRoundCount returns how many sessions are mid-round.
func (r *Registry) ActiveRoundCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, phase := range r.phases {
		if phase == domain.PhaseRoundActive {
			count++
		}
	}
	return count
}
