package app

import "blackjack/internal/domain"

// EventKind identifies emitted game events for transport dispatch.
type EventKind string

const (
	EventPlayerJoined       EventKind = "player_joined"
	EventPlayerLeft         EventKind = "player_left"
	EventPlayerDisconnected EventKind = "player_disconnected"
	EventPlayerReconnected  EventKind = "player_reconnected"
	EventWageringStarted    EventKind = "wagering_started"
	EventWagerCommitted     EventKind = "wager_committed"
	EventRoundDealt         EventKind = "round_dealt"
	EventCardDrawn          EventKind = "card_drawn"
	EventParticipantStood   EventKind = "participant_stood"
	EventDealerRevealed     EventKind = "dealer_revealed"
	EventDealerDrew         EventKind = "dealer_drew"
	EventRoundSettled       EventKind = "round_settled"
	EventRoundReset         EventKind = "round_reset"
	EventRoundAbandoned     EventKind = "round_abandoned"
	EventStateSnapshot      EventKind = "state_snapshot"
	EventError              EventKind = "error"
)

// Event is one committed state change packaged for the transport, with
// optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type PlayerJoinedPayload struct {
	UserID      string          `json:"userId"`
	DisplayName string          `json:"displayName"`
	State       SnapshotPayload `json:"state"`
}

type PlayerLeftPayload struct {
	UserID  string                   `json:"userId"`
	Forfeit *domain.SettlementRecord `json:"forfeit,omitempty"`
	State   SnapshotPayload          `json:"state"`
}

type ConnectionPayload struct {
	UserID string          `json:"userId"`
	State  SnapshotPayload `json:"state"`
}

type WageringStartedPayload struct {
	State SnapshotPayload `json:"state"`
}

type WagerCommittedPayload struct {
	UserID string          `json:"userId"`
	Wager  int64           `json:"wager"`
	State  SnapshotPayload `json:"state"`
}

type RoundDealtPayload struct {
	State SnapshotPayload `json:"state"`
}

type CardDrawnPayload struct {
	UserID    string            `json:"userId"`
	Card      domain.Card       `json:"card"`
	HandValue int               `json:"handValue"`
	Status    domain.TurnStatus `json:"status"`
	State     SnapshotPayload   `json:"state"`
}

type StoodPayload struct {
	UserID    string          `json:"userId"`
	HandValue int             `json:"handValue"`
	State     SnapshotPayload `json:"state"`
}

type DealerRevealedPayload struct {
	HandValue int             `json:"handValue"`
	State     SnapshotPayload `json:"state"`
}

type DealerDrewPayload struct {
	Card      domain.Card     `json:"card"`
	HandValue int             `json:"handValue"`
	State     SnapshotPayload `json:"state"`
}

type RoundSettledPayload struct {
	Records []domain.SettlementRecord `json:"records"`
	Winners []string                  `json:"winners"`
	State   SnapshotPayload           `json:"state"`
}

type RoundResetPayload struct {
	State SnapshotPayload `json:"state"`
}

type StateSnapshotPayload struct {
	State SnapshotPayload `json:"state"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// eventsFromTransitions maps committed domain transitions onto transport
// events one to one, preserving apply order. Every payload carries the full
// snapshot taken when its transition committed.
func eventsFromTransitions(ts []domain.Transition) []Event {
	events := make([]Event, 0, len(ts))
	for _, t := range ts {
		state := NewSnapshot(t.View)
		switch t.Kind {
		case domain.TransitionSeated:
			name := t.Participant
			if p, ok := t.View.ParticipantView(t.Participant); ok {
				name = p.DisplayName
			}
			events = append(events, Event{
				Kind:    EventPlayerJoined,
				Payload: PlayerJoinedPayload{UserID: t.Participant, DisplayName: name, State: state},
			})
		case domain.TransitionUnseated:
			events = append(events, Event{
				Kind:    EventPlayerLeft,
				Payload: PlayerLeftPayload{UserID: t.Participant, Forfeit: t.Forfeit, State: state},
			})
		case domain.TransitionConnectionChanged:
			kind := EventPlayerDisconnected
			if t.Connected {
				kind = EventPlayerReconnected
			}
			events = append(events, Event{
				Kind:    kind,
				Payload: ConnectionPayload{UserID: t.Participant, State: state},
			})
		case domain.TransitionWageringStarted:
			events = append(events, Event{
				Kind:    EventWageringStarted,
				Payload: WageringStartedPayload{State: state},
			})
		case domain.TransitionWagerCommitted:
			events = append(events, Event{
				Kind:    EventWagerCommitted,
				Payload: WagerCommittedPayload{UserID: t.Participant, Wager: t.Wager, State: state},
			})
		case domain.TransitionRoundDealt:
			events = append(events, Event{
				Kind:    EventRoundDealt,
				Payload: RoundDealtPayload{State: state},
			})
		case domain.TransitionCardDrawn:
			events = append(events, Event{
				Kind: EventCardDrawn,
				Payload: CardDrawnPayload{
					UserID:    t.Participant,
					Card:      *t.Card,
					HandValue: t.HandValue,
					Status:    t.Status,
					State:     state,
				},
			})
		case domain.TransitionStood:
			events = append(events, Event{
				Kind:    EventParticipantStood,
				Payload: StoodPayload{UserID: t.Participant, HandValue: t.HandValue, State: state},
			})
		case domain.TransitionDealerRevealed:
			events = append(events, Event{
				Kind:    EventDealerRevealed,
				Payload: DealerRevealedPayload{HandValue: t.HandValue, State: state},
			})
		case domain.TransitionDealerDrew:
			events = append(events, Event{
				Kind:    EventDealerDrew,
				Payload: DealerDrewPayload{Card: *t.Card, HandValue: t.HandValue, State: state},
			})
		case domain.TransitionRoundSettled:
			events = append(events, Event{
				Kind:    EventRoundSettled,
				Payload: RoundSettledPayload{Records: t.Records, Winners: t.Winners, State: state},
			})
		case domain.TransitionRoundReset:
			events = append(events, Event{
				Kind:    EventRoundReset,
				Payload: RoundResetPayload{State: state},
			})
		case domain.TransitionRoundAbandoned:
			events = append(events, Event{
				Kind:    EventRoundAbandoned,
				Payload: RoundResetPayload{State: state},
			})
		}
	}
	return events
}
