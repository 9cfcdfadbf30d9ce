package domain

import (
	"errors"
	"math/rand"
	"sync"

	"blackjack/internal/dealer"
	"blackjack/internal/stake"
)

// Phase is a session's position in the round lifecycle.
type Phase string

const (
	// PhaseIdle means no round is underway; participants may join and leave.
	PhaseIdle Phase = "idle"
	// PhaseWagering means stakes are being committed; no new joins.
	PhaseWagering Phase = "wagering"
	// PhaseRoundActive means cards are dealt and turns are in progress.
	PhaseRoundActive Phase = "round_active"
	// PhaseRoundSettled means outcomes are computed and payouts applied.
	PhaseRoundSettled Phase = "round_settled"
)

// Session operation failures.
var (
	ErrRoomFull          = errors.New("room is full")
	ErrAlreadySeated     = errors.New("participant is already seated")
	ErrRoundInProgress   = errors.New("a round is in progress")
	ErrNoParticipants    = errors.New("no participants are seated")
	ErrNotWagering       = errors.New("no wagering is in progress")
	ErrAlreadyWagered    = errors.New("wager is already committed")
	ErrNotInProgress     = errors.New("no round is in progress")
	ErrNoSuchParticipant = errors.New("no such participant")
	ErrNotYourTurn       = errors.New("not this participant's turn")
	ErrCannotAct         = errors.New("participant cannot act")
	ErrShoeExhausted     = errors.New("the shoe is exhausted")
	ErrNotSettled        = errors.New("the round is not settled")
	ErrUnknownCommand    = errors.New("unknown command")
)

// Command is a participant's move on their turn.
type Command string

const (
	CommandHit   Command = "hit"
	CommandStand Command = "stand"
)

// Session is one table's authoritative state machine. All exported operations
// run under an internal lock, mutate state as a single unit and return the
// committed transitions in apply order. Operations that push the turn cursor
// past the last participant run the house hand and settlement within the same
// unit, so callers always see a round finish atomically.
type Session struct {
	mu sync.Mutex

	id       string
	capacity int
	phase    Phase

	participants []*Participant
	dealer       DealerHand
	shoe         Shoe
	rng          *rand.Rand
	policy       dealer.Policy

	// turnCursor indexes participants; len(participants) is the past-end
	// sentinel. It only moves forward within a round.
	turnCursor int

	winners     []string
	settlements []SettlementRecord
}

// NewSession creates an idle session. The rand source drives every shuffle of
// the session's shoe; the policy drives the house hand.
func NewSession(id string, capacity int, rng *rand.Rand, policy dealer.Policy) *Session {
	return &Session{
		id:       id,
		capacity: capacity,
		phase:    PhaseIdle,
		dealer:   DealerHand{Status: DealerWaiting},
		rng:      rng,
		policy:   policy,
	}
}

// ID returns the session's identifier.
func (s *Session) ID() string { return s.id }

// Capacity returns the seat limit.
func (s *Session) Capacity() int { return s.capacity }

// View returns a complete deep-copied snapshot of the current state.
func (s *Session) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

// Seat adds a participant. Joins are only admitted while the session is idle.
func (s *Session) Seat(p *Participant) ([]Transition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.participants) >= s.capacity {
		return nil, ErrRoomFull
	}
	if s.indexOf(p.UserID) >= 0 {
		return nil, ErrAlreadySeated
	}
	if s.phase != PhaseIdle {
		return nil, ErrRoundInProgress
	}
	s.participants = append(s.participants, p)
	return []Transition{{
		Kind:        TransitionSeated,
		Participant: p.UserID,
		View:        s.view(),
	}}, nil
}

// Unseat removes a participant in any phase. Leaving during wagering refunds
// a committed stake; leaving mid-round forfeits it and records the forfeiture
// as a settlement entry. If the removal empties the session any round in
// progress is abandoned without settlement and the session returns to idle.
// If the removal leaves no participant able to act, the house hand plays out
// and the round settles.
func (s *Session) Unseat(userID string) ([]Transition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(userID)
	if idx < 0 {
		return nil, ErrNoSuchParticipant
	}
	p := s.participants[idx]

	var forfeit *SettlementRecord
	switch s.phase {
	case PhaseWagering:
		if p.HasWagered {
			p.Balance += p.Wager
			p.Wager = 0
			p.HasWagered = false
		}
	case PhaseRoundActive:
		if p.Wager > 0 {
			rec := SettlementRecord{
				ParticipantID:    p.UserID,
				Wager:            p.Wager,
				Outcome:          stake.OutcomeAbandoned,
				Payout:           0,
				ResultingBalance: p.Balance,
			}
			s.settlements = append(s.settlements, rec)
			forfeit = &rec
			p.Wager = 0
			p.HasWagered = false
		}
	}

	s.participants = append(s.participants[:idx], s.participants[idx+1:]...)
	if idx < s.turnCursor {
		s.turnCursor--
	}

	ts := []Transition{{
		Kind:        TransitionUnseated,
		Participant: userID,
		Forfeit:     forfeit,
		View:        s.view(),
	}}

	if len(s.participants) == 0 {
		if s.phase != PhaseIdle {
			abandoned := s.phase == PhaseRoundActive
			s.clearRound()
			if abandoned {
				ts = append(ts, Transition{Kind: TransitionRoundAbandoned, View: s.view()})
			}
		}
		return ts, nil
	}

	switch s.phase {
	case PhaseWagering:
		if s.allWagered() {
			ts = append(ts, s.beginRound()...)
		}
	case PhaseRoundActive:
		s.advanceCursor()
		if s.pastEnd() {
			ts = append(ts, s.runDealer()...)
		}
	}
	return ts, nil
}

// SetConnected flips a seated participant's connection state. A disconnected
// participant keeps their seat, hand and wager but cannot act until they
// reconnect.
func (s *Session) SetConnected(userID string, connected bool) ([]Transition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(userID)
	if idx < 0 {
		return nil, ErrNoSuchParticipant
	}
	s.participants[idx].Connected = connected
	return []Transition{{
		Kind:        TransitionConnectionChanged,
		Participant: userID,
		Connected:   connected,
		View:        s.view(),
	}}, nil
}

// BeginWagering opens the stake-commitment window for the seated participants.
func (s *Session) BeginWagering() ([]Transition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.participants) == 0 {
		return nil, ErrNoParticipants
	}
	if s.phase != PhaseIdle {
		return nil, ErrRoundInProgress
	}
	s.phase = PhaseWagering
	for _, p := range s.participants {
		p.HasWagered = false
	}
	return []Transition{{Kind: TransitionWageringStarted, View: s.view()}}, nil
}

// CommitWager validates and commits one participant's stake. The amount is
// taken as the transport delivered it; validation normalizes it to chips.
// When the last seated participant commits, the round begins: the shoe is
// reshuffled, two cards go to every participant and two to the house with the
// second concealed, dealt naturals are marked, and the turn passes to the
// first participant still in play. If nobody is, the house plays out and the
// round settles immediately.
func (s *Session) CommitWager(userID string, amount float64) ([]Transition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseWagering {
		return nil, ErrNotWagering
	}
	idx := s.indexOf(userID)
	if idx < 0 {
		return nil, ErrNoSuchParticipant
	}
	p := s.participants[idx]
	if p.HasWagered {
		return nil, ErrAlreadyWagered
	}
	wager, err := stake.ValidateWager(amount, p.Balance)
	if err != nil {
		return nil, err
	}
	p.Balance -= wager
	p.Wager = wager
	p.HasWagered = true

	ts := []Transition{{
		Kind:        TransitionWagerCommitted,
		Participant: userID,
		Wager:       wager,
		View:        s.view(),
	}}
	if s.allWagered() {
		ts = append(ts, s.beginRound()...)
	}
	return ts, nil
}

// Act applies a turn command for the participant holding the turn. A Hit on
// an exhausted shoe fails with ErrShoeExhausted and changes nothing.
func (s *Session) Act(userID string, cmd Command) ([]Transition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseRoundActive {
		return nil, ErrNotInProgress
	}
	idx := s.indexOf(userID)
	if idx < 0 {
		return nil, ErrNoSuchParticipant
	}
	if s.pastEnd() || idx != s.turnCursor {
		return nil, ErrNotYourTurn
	}
	p := s.participants[idx]
	if p.Status != StatusActive || !p.Connected {
		return nil, ErrCannotAct
	}

	var ts []Transition
	switch cmd {
	case CommandHit:
		card, ok := s.shoe.Draw()
		if !ok {
			return nil, ErrShoeExhausted
		}
		p.Hand = append(p.Hand, card)
		value := HandValue(p.Hand)
		switch {
		case value > 21:
			p.Status = StatusBusted
		case value == 21:
			p.Status = StatusStanding
		}
		if p.Status != StatusActive {
			s.advanceCursor()
		}
		ts = append(ts, Transition{
			Kind:        TransitionCardDrawn,
			Participant: userID,
			Card:        &card,
			HandValue:   value,
			Status:      p.Status,
			View:        s.view(),
		})
	case CommandStand:
		p.Status = StatusStanding
		s.advanceCursor()
		ts = append(ts, Transition{
			Kind:        TransitionStood,
			Participant: userID,
			HandValue:   HandValue(p.Hand),
			Status:      p.Status,
			View:        s.view(),
		})
	default:
		return nil, ErrUnknownCommand
	}

	if s.pastEnd() {
		ts = append(ts, s.runDealer()...)
	}
	return ts, nil
}

// ResetForNextRound clears hands, statuses and settlement records while
// preserving seats and balances, returning the session to idle.
func (s *Session) ResetForNextRound() ([]Transition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseRoundSettled {
		return nil, ErrNotSettled
	}
	s.clearRound()
	return []Transition{{Kind: TransitionRoundReset, View: s.view()}}, nil
}

// beginRound deals a fresh round. Caller holds the lock and has verified that
// every seated participant has committed a wager.
func (s *Session) beginRound() []Transition {
	s.shoe.Reset(s.rng)
	s.dealer.reset()
	s.winners = nil
	s.settlements = nil
	for _, p := range s.participants {
		p.Hand = nil
		p.Status = StatusActive
	}
	s.phase = PhaseRoundActive
	s.turnCursor = 0

	// Two passes round-robin: each participant, then the house. The house's
	// second card is the hole card.
	for pass := 0; pass < 2; pass++ {
		for _, p := range s.participants {
			if card, ok := s.shoe.Draw(); ok {
				p.Hand = append(p.Hand, card)
			}
		}
		if card, ok := s.shoe.Draw(); ok {
			s.dealer.Cards = append(s.dealer.Cards, card)
		}
	}
	s.dealer.Status = DealerConcealed

	for _, p := range s.participants {
		if IsNatural(p.Hand) {
			p.Status = StatusNaturalWin
		}
	}
	s.advanceCursor()

	ts := []Transition{{Kind: TransitionRoundDealt, View: s.view()}}
	if s.pastEnd() {
		ts = append(ts, s.runDealer()...)
	}
	return ts
}

// runDealer reveals the hole card, draws per the house policy and settles the
// round. Caller holds the lock; the cursor is past-end.
func (s *Session) runDealer() []Transition {
	s.dealer.Reveal()
	ts := []Transition{{
		Kind:      TransitionDealerRevealed,
		HandValue: s.dealer.Value(),
		View:      s.view(),
	}}
	for s.policy.NextAction(s.dealer.Value()) == dealer.ActionHit {
		card, ok := s.shoe.Draw()
		if !ok {
			break
		}
		s.dealer.Cards = append(s.dealer.Cards, card)
		ts = append(ts, Transition{
			Kind:      TransitionDealerDrew,
			Card:      &card,
			HandValue: s.dealer.Value(),
			View:      s.view(),
		})
	}
	if s.dealer.Value() > 21 {
		s.dealer.Status = DealerBusted
	} else {
		s.dealer.Status = DealerStanding
	}
	return append(ts, s.settle())
}

// settle classifies every staked participant against the house hand, applies
// payouts and records the results. Caller holds the lock.
func (s *Session) settle() Transition {
	records := make([]SettlementRecord, 0, len(s.participants))
	for _, p := range s.participants {
		if p.Wager <= 0 {
			continue
		}
		outcome := s.classify(p)
		payout := stake.Payout(p.Wager, outcome)
		p.Balance += payout
		rec := SettlementRecord{
			ParticipantID:    p.UserID,
			Wager:            p.Wager,
			Outcome:          outcome,
			Payout:           payout,
			ResultingBalance: p.Balance,
		}
		p.Wager = 0
		p.HasWagered = false
		if outcome == stake.OutcomeWin || outcome == stake.OutcomeBlackjack {
			s.winners = append(s.winners, p.UserID)
		}
		s.settlements = append(s.settlements, rec)
		records = append(records, rec)
	}
	s.phase = PhaseRoundSettled
	return Transition{
		Kind:    TransitionRoundSettled,
		Records: records,
		Winners: append([]string(nil), s.winners...),
		View:    s.view(),
	}
}

// classify orders the win determination: a busted participant always loses;
// against a busted house every survivor wins; otherwise hand values decide,
// with a dealt natural paying blackjack-tier unless the house holds one too.
func (s *Session) classify(p *Participant) stake.Outcome {
	if p.Status == StatusBusted {
		return stake.OutcomeLose
	}
	if s.dealer.Status == DealerBusted {
		if p.Status == StatusNaturalWin && !s.dealer.IsNatural() {
			return stake.OutcomeBlackjack
		}
		return stake.OutcomeWin
	}
	pv, dv := p.HandValue(), s.dealer.Value()
	switch {
	case pv > dv:
		if p.Status == StatusNaturalWin {
			return stake.OutcomeBlackjack
		}
		return stake.OutcomeWin
	case pv == dv:
		return stake.OutcomePush
	default:
		return stake.OutcomeLose
	}
}

// clearRound returns the session to idle, preserving seats and balances.
func (s *Session) clearRound() {
	for _, p := range s.participants {
		p.resetForRound()
	}
	s.dealer.reset()
	s.turnCursor = 0
	s.winners = nil
	s.settlements = nil
	s.phase = PhaseIdle
}

// advanceCursor moves the turn forward past every participant no longer able
// to take a turn. It never moves backward.
func (s *Session) advanceCursor() {
	for s.turnCursor < len(s.participants) && s.participants[s.turnCursor].Status != StatusActive {
		s.turnCursor++
	}
}

// pastEnd reports whether every participant's turn is over.
func (s *Session) pastEnd() bool {
	return s.turnCursor >= len(s.participants)
}

func (s *Session) allWagered() bool {
	for _, p := range s.participants {
		if !p.HasWagered {
			return false
		}
	}
	return true
}

func (s *Session) indexOf(userID string) int {
	for i, p := range s.participants {
		if p.UserID == userID {
			return i
		}
	}
	return -1
}

// view builds a deep-copied snapshot. Caller holds the lock.
func (s *Session) view() SessionView {
	parts := make([]Participant, len(s.participants))
	for i, p := range s.participants {
		parts[i] = p.clone()
	}
	turn := ""
	if s.phase == PhaseRoundActive && !s.pastEnd() {
		turn = s.participants[s.turnCursor].UserID
	}
	return SessionView{
		ID:            s.id,
		Capacity:      s.capacity,
		Phase:         s.phase,
		Participants:  parts,
		Dealer:        s.dealer.clone(),
		TurnCursor:    s.turnCursor,
		Turn:          turn,
		Winners:       append([]string(nil), s.winners...),
		Settlements:   append([]SettlementRecord(nil), s.settlements...),
		ShoeRemaining: s.shoe.Remaining(),
	}
}
