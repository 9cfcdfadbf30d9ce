package nakama

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"blackjack/internal/app"
	"blackjack/internal/domain"
	"blackjack/internal/stake"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"action in progress", app.ErrActionInProgress, "action_in_progress"},
		{"no such session", app.ErrNoSuchSession, "no_such_table"},
		{"seated elsewhere", app.ErrAlreadyElsewhere, "seated_elsewhere"},
		{"registry full", app.ErrRegistryFull, "registry_full"},
		{"room full", domain.ErrRoomFull, "table_full"},
		{"already seated", domain.ErrAlreadySeated, "already_seated"},
		{"round in progress", domain.ErrRoundInProgress, "round_in_progress"},
		{"no participants", domain.ErrNoParticipants, "no_participants"},
		{"not wagering", domain.ErrNotWagering, "not_wagering"},
		{"already wagered", domain.ErrAlreadyWagered, "already_wagered"},
		{"not in progress", domain.ErrNotInProgress, "no_active_round"},
		{"no such participant", domain.ErrNoSuchParticipant, "not_seated"},
		{"not your turn", domain.ErrNotYourTurn, "not_your_turn"},
		{"cannot act", domain.ErrCannotAct, "cannot_act"},
		{"shoe exhausted", domain.ErrShoeExhausted, "shoe_exhausted"},
		{"not settled", domain.ErrNotSettled, "round_not_settled"},
		{"wager not a number", stake.ErrNotANumber, "wager_not_a_number"},
		{"wager below minimum", stake.ErrBelowMinimum, "wager_below_minimum"},
		{"insufficient balance", stake.ErrInsufficientBalance, "insufficient_balance"},
		{"invalid denomination", stake.ErrInvalidDenomination, "invalid_denomination"},
		{"wrapped sentinel", fmt.Errorf("placing wager: %w", stake.ErrInsufficientBalance), "insufficient_balance"},
		{"unknown error", errors.New("something else"), "bad_request"},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			if got := errorCode(test.err); got != test.want {
				t.Fatalf("errorCode(%v) = %q, want %q", test.err, got, test.want)
			}
		})
	}
}

func TestMarshalEventCoversEveryKind(t *testing.T) {
	kinds := []app.EventKind{
		app.EventPlayerJoined,
		app.EventPlayerLeft,
		app.EventPlayerDisconnected,
		app.EventPlayerReconnected,
		app.EventWageringStarted,
		app.EventWagerCommitted,
		app.EventRoundDealt,
		app.EventCardDrawn,
		app.EventParticipantStood,
		app.EventDealerRevealed,
		app.EventDealerDrew,
		app.EventRoundSettled,
		app.EventRoundReset,
		app.EventRoundAbandoned,
		app.EventStateSnapshot,
		app.EventError,
	}

	seen := make(map[int64]app.EventKind, len(kinds))
	for _, kind := range kinds {
		opCode, data, err := marshalEvent(app.Event{Kind: kind})
		if err != nil {
			t.Fatalf("marshalEvent(%q): %v", kind, err)
		}
		if opCode < OpEvPlayerJoined || opCode > OpEvError {
			t.Fatalf("marshalEvent(%q) opcode = %d, outside the event range", kind, opCode)
		}
		if prev, dup := seen[opCode]; dup {
			t.Fatalf("opcode %d shared by %q and %q", opCode, prev, kind)
		}
		seen[opCode] = kind
		if !json.Valid(data) {
			t.Fatalf("marshalEvent(%q) produced invalid JSON: %s", kind, data)
		}
	}
}

func TestMarshalEventPayload(t *testing.T) {
	opCode, data, err := marshalEvent(app.Event{
		Kind:    app.EventError,
		Payload: app.ErrorPayload{Code: "not_owner", Message: "only the owner may start"},
	})
	if err != nil {
		t.Fatalf("marshalEvent: %v", err)
	}
	if opCode != OpEvError {
		t.Fatalf("opcode = %d, want %d", opCode, OpEvError)
	}
	var payload app.ErrorPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("payload round trip: %v", err)
	}
	if payload.Code != "not_owner" || payload.Message != "only the owner may start" {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestMarshalEventRejectsUnknownKind(t *testing.T) {
	if _, _, err := marshalEvent(app.Event{Kind: app.EventKind("mystery")}); err == nil {
		t.Fatal("unknown event kind did not error")
	}
}
