package app

import (
	"errors"
	"math/rand"
	"time"

	"blackjack/internal/dealer"
	"blackjack/internal/domain"
)

var (
	ErrActionInProgress = errors.New("another action is in progress")
	ErrNoSuchSession    = errors.New("no such session")
	ErrAlreadyElsewhere = errors.New("participant is seated at another table")
	ErrRegistryFull     = errors.New("session registry is full")
)

// Defaults applied by NewService when an Options field is zero.
const (
	DefaultSeats        = 7
	DefaultMaxSessions  = 128
	DefaultGuardTimeout = 5 * time.Second
)

// Options configures the service. Zero fields take defaults, so the zero
// Options is usable.
type Options struct {
	Seats        int
	MaxSessions  int
	GuardTimeout time.Duration
	Policy       dealer.Policy
	NewRand      func() *rand.Rand
}

// Service runs the game use-cases: it admits one command per session at a
// time, applies it to the session state machine, keeps the registry's
// aggregate bookkeeping current, and packages the committed transitions as
// transport events. It performs no I/O; ports act on the events it returns.
type Service struct {
	registry *Registry
	guard    *Guard
}

// NewService constructs a Service with its bounded registry and guard.
func NewService(opts Options) *Service {
	if opts.Seats <= 0 {
		opts.Seats = DefaultSeats
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	if opts.GuardTimeout <= 0 {
		opts.GuardTimeout = DefaultGuardTimeout
	}
	if opts.Policy == nil {
		opts.Policy = dealer.NewThreshold()
	}
	if opts.NewRand == nil {
		opts.NewRand = func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		}
	}
	factory := func(id string) *domain.Session {
		return domain.NewSession(id, opts.Seats, opts.NewRand(), opts.Policy)
	}
	return &Service{
		registry: NewRegistry(opts.MaxSessions, opts.Seats, factory),
		guard:    NewGuard(opts.GuardTimeout),
	}
}

// EnsureTable creates the session if it does not exist yet.
func (s *Service) EnsureTable(sessionID string) error {
	_, err := s.registry.Ensure(sessionID)
	return err
}

// DestroyTable removes the session and its seat records.
func (s *Service) DestroyTable(sessionID string) {
	s.registry.Destroy(sessionID)
}

// TableView returns the session's current snapshot.
func (s *Service) TableView(sessionID string) (domain.SessionView, error) {
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return domain.SessionView{}, err
	}
	return sess.View(), nil
}

// Tables lists every table for lobby discovery.
func (s *Service) Tables() []TableInfo {
	return s.registry.Tables()
}

// Occupancy returns the total seated participant count across tables.
func (s *Service) Occupancy() int {
	return s.registry.Occupancy()
}

// ActiveRounds returns the number of tables currently mid-round.
func (s *Service) ActiveRounds() int {
	return s.registry.ActiveRoundCount()
}

// SeatedAt reports which table, if any, the user is seated at.
func (s *Service) SeatedAt(userID string) (string, bool) {
	return s.registry.LocationOf(userID)
}

// Join seats a new participant with the given bankroll, or restores the
// connection of one already seated here (a rejoin after a network drop). The
// joiner additionally receives a targeted snapshot of the full table state.
func (s *Service) Join(sessionID, userID, displayName string, balance int64) ([]Event, error) {
	ticket, err := s.guard.Acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer s.guard.Release(sessionID, ticket)

	if loc, ok := s.registry.LocationOf(userID); ok && loc == sessionID {
		sess, err := s.registry.Get(sessionID)
		if err != nil {
			return nil, err
		}
		ts, err := sess.SetConnected(userID, true)
		if err != nil {
			return nil, err
		}
		s.registry.NoteView(ts[len(ts)-1].View)
		return s.withSnapshotFor(userID, ts), nil
	}

	ts, err := s.registry.SeatParticipant(sessionID, domain.NewParticipant(userID, displayName, balance))
	if err != nil {
		return nil, err
	}
	return s.withSnapshotFor(userID, ts), nil
}

// Leave unseats the participant in any phase (the explicit leave path).
func (s *Service) Leave(sessionID, userID string) ([]Event, error) {
	ticket, err := s.guard.Acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer s.guard.Release(sessionID, ticket)

	ts, err := s.registry.UnseatParticipant(sessionID, userID)
	if err != nil {
		return nil, err
	}
	return eventsFromTransitions(ts), nil
}

// Disconnect handles a presence drop. Mid-round with a committed stake the
// seat is kept and marked disconnected; otherwise the drop unseats, so an
// idle table never waits on a ghost.
func (s *Service) Disconnect(sessionID, userID string) ([]Event, error) {
	ticket, err := s.guard.Acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer s.guard.Release(sessionID, ticket)

	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	v := sess.View()
	p, seated := v.ParticipantView(userID)
	if !seated {
		return nil, domain.ErrNoSuchParticipant
	}
	if v.Phase == domain.PhaseRoundActive && p.Wager > 0 {
		ts, err := sess.SetConnected(userID, false)
		if err != nil {
			return nil, err
		}
		s.registry.NoteView(ts[len(ts)-1].View)
		return eventsFromTransitions(ts), nil
	}
	ts, err := s.registry.UnseatParticipant(sessionID, userID)
	if err != nil {
		return nil, err
	}
	return eventsFromTransitions(ts), nil
}

// StartWagering opens the stake window. The caller must be seated here; the
// transport decides who may trigger it (the table owner, by default).
func (s *Service) StartWagering(sessionID, userID string) ([]Event, error) {
	ticket, err := s.guard.Acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer s.guard.Release(sessionID, ticket)

	sess, err := s.seatedSession(sessionID, userID)
	if err != nil {
		return nil, err
	}
	ts, err := sess.BeginWagering()
	if err != nil {
		return nil, err
	}
	s.registry.NoteView(ts[len(ts)-1].View)
	return eventsFromTransitions(ts), nil
}

// PlaceWager commits the participant's stake for the coming round.
func (s *Service) PlaceWager(sessionID, userID string, amount float64) ([]Event, error) {
	ticket, err := s.guard.Acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer s.guard.Release(sessionID, ticket)

	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	ts, err := sess.CommitWager(userID, amount)
	if err != nil {
		return nil, err
	}
	s.registry.NoteView(ts[len(ts)-1].View)
	return eventsFromTransitions(ts), nil
}

// Hit draws one card for the participant holding the turn.
func (s *Service) Hit(sessionID, userID string) ([]Event, error) {
	return s.act(sessionID, userID, domain.CommandHit)
}

// Stand finishes the participant's turn.
func (s *Service) Stand(sessionID, userID string) ([]Event, error) {
	return s.act(sessionID, userID, domain.CommandStand)
}

func (s *Service) act(sessionID, userID string, cmd domain.Command) ([]Event, error) {
	ticket, err := s.guard.Acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer s.guard.Release(sessionID, ticket)

	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	ts, err := sess.Act(userID, cmd)
	if err != nil {
		return nil, err
	}
	s.registry.NoteView(ts[len(ts)-1].View)
	return eventsFromTransitions(ts), nil
}

// NextRound clears the settled round and returns the table to idle.
func (s *Service) NextRound(sessionID, userID string) ([]Event, error) {
	ticket, err := s.guard.Acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer s.guard.Release(sessionID, ticket)

	sess, err := s.seatedSession(sessionID, userID)
	if err != nil {
		return nil, err
	}
	ts, err := sess.ResetForNextRound()
	if err != nil {
		return nil, err
	}
	s.registry.NoteView(ts[len(ts)-1].View)
	return eventsFromTransitions(ts), nil
}

// Snapshot sends the requesting user a private copy of the full table state.
func (s *Service) Snapshot(sessionID, userID string) ([]Event, error) {
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return []Event{{
		Kind:       EventStateSnapshot,
		Payload:    StateSnapshotPayload{State: NewSnapshot(sess.View())},
		Recipients: []string{userID},
	}}, nil
}

// seatedSession resolves the session and verifies the actor is seated in it.
func (s *Service) seatedSession(sessionID, userID string) (*domain.Session, error) {
	if loc, ok := s.registry.LocationOf(userID); !ok || loc != sessionID {
		return nil, domain.ErrNoSuchParticipant
	}
	return s.registry.Get(sessionID)
}

// withSnapshotFor appends a targeted full-state snapshot for one user to the
// broadcast events of their join.
func (s *Service) withSnapshotFor(userID string, ts []domain.Transition) []Event {
	events := eventsFromTransitions(ts)
	last := ts[len(ts)-1].View
	return append(events, Event{
		Kind:       EventStateSnapshot,
		Payload:    StateSnapshotPayload{State: NewSnapshot(last)},
		Recipients: []string{userID},
	})
}
