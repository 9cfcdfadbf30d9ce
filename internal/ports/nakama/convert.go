package nakama

import (
	"encoding/json"
	"errors"
	"fmt"

	"blackjack/internal/app"
	"blackjack/internal/domain"
	"blackjack/internal/stake"
)

var eventOpCodes = map[app.EventKind]int64{
	app.EventPlayerJoined:       OpEvPlayerJoined,
	app.EventPlayerLeft:         OpEvPlayerLeft,
	app.EventPlayerDisconnected: OpEvPlayerDisconnected,
	app.EventPlayerReconnected:  OpEvPlayerReconnected,
	app.EventWageringStarted:    OpEvWageringStarted,
	app.EventWagerCommitted:     OpEvWagerCommitted,
	app.EventRoundDealt:         OpEvRoundDealt,
	app.EventCardDrawn:          OpEvCardDrawn,
	app.EventParticipantStood:   OpEvParticipantStood,
	app.EventDealerRevealed:     OpEvDealerRevealed,
	app.EventDealerDrew:         OpEvDealerDrew,
	app.EventRoundSettled:       OpEvRoundSettled,
	app.EventRoundReset:         OpEvRoundReset,
	app.EventRoundAbandoned:     OpEvRoundAbandoned,
	app.EventStateSnapshot:      OpEvStateSnapshot,
	app.EventError:              OpEvError,
}

// marshalEvent converts an app event into its opcode and JSON wire payload.
func marshalEvent(ev app.Event) (int64, []byte, error) {
	opCode, ok := eventOpCodes[ev.Kind]
	if !ok {
		return 0, nil, fmt.Errorf("no opcode for event kind %q", ev.Kind)
	}
	data, err := json.Marshal(ev.Payload)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal %q payload: %w", ev.Kind, err)
	}
	return opCode, data, nil
}

// errorCode maps rule violations to stable codes clients can branch on.
func errorCode(err error) string {
	switch {
	case errors.Is(err, app.ErrActionInProgress):
		return "action_in_progress"
	case errors.Is(err, app.ErrNoSuchSession):
		return "no_such_table"
	case errors.Is(err, app.ErrAlreadyElsewhere):
		return "seated_elsewhere"
	case errors.Is(err, app.ErrRegistryFull):
		return "registry_full"
	case errors.Is(err, domain.ErrRoomFull):
		return "table_full"
	case errors.Is(err, domain.ErrAlreadySeated):
		return "already_seated"
	case errors.Is(err, domain.ErrRoundInProgress):
		return "round_in_progress"
	case errors.Is(err, domain.ErrNoParticipants):
		return "no_participants"
	case errors.Is(err, domain.ErrNotWagering):
		return "not_wagering"
	case errors.Is(err, domain.ErrAlreadyWagered):
		return "already_wagered"
	case errors.Is(err, domain.ErrNotInProgress):
		return "no_active_round"
	case errors.Is(err, domain.ErrNoSuchParticipant):
		return "not_seated"
	case errors.Is(err, domain.ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, domain.ErrCannotAct):
		return "cannot_act"
	case errors.Is(err, domain.ErrShoeExhausted):
		return "shoe_exhausted"
	case errors.Is(err, domain.ErrNotSettled):
		return "round_not_settled"
	case errors.Is(err, stake.ErrNotANumber):
		return "wager_not_a_number"
	case errors.Is(err, stake.ErrBelowMinimum):
		return "wager_below_minimum"
	case errors.Is(err, stake.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, stake.ErrInvalidDenomination):
		return "invalid_denomination"
	default:
		return "bad_request"
	}
}
