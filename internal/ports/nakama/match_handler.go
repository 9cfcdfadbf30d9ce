package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"blackjack/internal/app"
	"blackjack/internal/config"
	"blackjack/internal/domain"
	"blackjack/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// tickRate is the match loop frequency. Two ticks per second keeps dealer
// pacing in half-second steps.
const tickRate = 2

// emptyTableGraceTicks is how long a table with no connected presences stays
// alive for reconnects before the match closes.
const emptyTableGraceTicks = int64(60 * tickRate)

// MatchLabel is the queryable JSON label kept current on every table.
type MatchLabel struct {
	Game      string `json:"game"`
	Phase     string `json:"phase"`
	Open      int    `json:"open"`
	Occupancy int    `json:"occupancy"`
}

// queuedEvent is an event held for a later tick so dealer actions reach
// clients at a watchable pace.
type queuedEvent struct {
	ev      app.Event
	dueTick int64
}

// MatchState holds the per-table transport state. The authoritative game
// state lives in the shared app service; this struct only tracks presences,
// the owner gate and the outgoing event queue.
type MatchState struct {
	TableID    string
	Presences  map[string]runtime.Presence
	Owner      string
	EventQueue []queuedEvent
	// EmptySince is the tick the last presence left, 0 while occupied.
	EmptySince int64
}

// scheduleEvents spaces dealer actions across ticks. Events ahead of the
// first paced kind go out immediately; everything from there on queues in
// order, so later commands cannot overtake a draining dealer sequence.
func (ms *MatchState) scheduleEvents(tick int64, paceTicks int, events []app.Event) []app.Event {
	pace := int64(paceTicks)
	next := tick
	if n := len(ms.EventQueue); n > 0 {
		next = ms.EventQueue[n-1].dueTick
	}
	var sendNow []app.Event
	for _, ev := range events {
		if pace > 0 && pacedEventKind(ev.Kind) {
			next += pace
		}
		if next <= tick && len(ms.EventQueue) == 0 {
			sendNow = append(sendNow, ev)
			continue
		}
		ms.EventQueue = append(ms.EventQueue, queuedEvent{ev: ev, dueTick: next})
	}
	return sendNow
}

// flushDue pops every queued event scheduled at or before tick.
func (ms *MatchState) flushDue(tick int64) []app.Event {
	var due []app.Event
	for len(ms.EventQueue) > 0 && ms.EventQueue[0].dueTick <= tick {
		due = append(due, ms.EventQueue[0].ev)
		ms.EventQueue = ms.EventQueue[1:]
	}
	return due
}

func pacedEventKind(kind app.EventKind) bool {
	switch kind {
	case app.EventDealerDrew, app.EventRoundSettled:
		return true
	}
	return false
}

// wagerRequest is the client payload for OpPlaceWager.
type wagerRequest struct {
	Amount float64 `json:"amount"`
}

type matchHandler struct {
	svc          *app.Service
	reservations *app.ReservationService
	cfg          config.Config
	economy      ports.EconomyPort
}

// NewMatch returns the factory function registered with Nakama. Every table
// shares the app service, which is what makes seat exclusivity hold across
// tables.
func NewMatch(svc *app.Service, reservations *app.ReservationService, cfg config.Config) func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule) (runtime.Match, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return &matchHandler{
			svc:          svc,
			reservations: reservations,
			cfg:          cfg,
			economy:      NewNakamaEconomyAdapter(nk),
		}, nil
	}
}

// MatchInit registers the table with the app service and publishes the first
// label.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	matchID, ok := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)
	if !ok || matchID == "" {
		logger.Error("MatchInit: match id missing from context")
		return nil, 0, ""
	}
	if err := mh.svc.EnsureTable(matchID); err != nil {
		logger.Error("MatchInit: failed to register table %s: %v", matchID, err)
		return nil, 0, ""
	}

	state := &MatchState{
		TableID:   matchID,
		Presences: make(map[string]runtime.Presence),
	}

	label, err := mh.labelJSON(matchID)
	if err != nil {
		logger.Error("MatchInit: %v", err)
		mh.svc.DestroyTable(matchID)
		return nil, 0, ""
	}
	return state, tickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}
	userID := presence.GetUserId()

	if token := metadata["reservation"]; token != "" {
		if !mh.reservations.Enabled() {
			return state, false, "reservations are not enabled"
		}
		if err := mh.reservations.Verify(token, userID, matchState.TableID); err != nil {
			logger.Warn("MatchJoinAttempt: invalid reservation from %s: %v", userID, err)
			return state, false, "invalid reservation"
		}
	}

	// A participant rejoining their own seat is always admitted.
	if loc, seated := mh.svc.SeatedAt(userID); seated {
		if loc == matchState.TableID {
			return state, true, ""
		}
		return state, false, "already seated at another table"
	}

	view, err := mh.svc.TableView(matchState.TableID)
	if err != nil {
		return state, false, "table not found"
	}
	if len(view.Participants) >= view.Capacity {
		return state, false, "table is full"
	}
	if view.Phase != domain.PhaseIdle {
		return state, false, "round in progress"
	}
	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		matchState.Presences[userID] = p
		matchState.EmptySince = 0

		// The persistent wallet is the bankroll of record. A read failure
		// seats the player broke rather than minting chips.
		var balance int64
		if b, err := mh.economy.GetBalance(ctx, userID); err != nil {
			logger.Warn("MatchJoin: failed to read wallet for %s: %v", userID, err)
		} else {
			balance = b
		}

		events, err := mh.svc.Join(matchState.TableID, userID, p.GetUsername(), balance)
		if err != nil {
			logger.Warn("MatchJoin: seating %s failed: %v", userID, err)
			delete(matchState.Presences, userID)
			if kickErr := dispatcher.MatchKick([]runtime.Presence{p}); kickErr != nil {
				logger.Error("MatchJoin: failed to kick %s: %v", userID, kickErr)
			}
			continue
		}
		mh.deliver(ctx, matchState, dispatcher, logger, tick, events)
	}

	mh.refreshOwner(matchState, logger)
	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

// MatchLeave treats every presence drop as a disconnect. The service keeps
// mid-round seats with committed stakes and unseats everyone else; players
// who left voluntarily were already unseated by their leave command.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		delete(matchState.Presences, userID)

		events, err := mh.svc.Disconnect(matchState.TableID, userID)
		if err != nil {
			if !errors.Is(err, domain.ErrNoSuchParticipant) && !errors.Is(err, app.ErrNoSuchSession) {
				logger.Warn("MatchLeave: disconnect for %s failed: %v", userID, err)
			}
			continue
		}
		mh.deliver(ctx, matchState, dispatcher, logger, tick, events)
	}

	if len(matchState.Presences) == 0 {
		view, err := mh.svc.TableView(matchState.TableID)
		if err != nil || len(view.Participants) == 0 {
			logger.Info("MatchLeave: table %s deserted, closing.", matchState.TableID)
			mh.teardown(matchState, logger)
			return nil
		}
		matchState.EmptySince = tick
	}

	mh.refreshOwner(matchState, logger)
	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	for _, ev := range matchState.flushDue(tick) {
		mh.sendEvent(matchState, dispatcher, logger, ev)
	}

	for _, msg := range messages {
		mh.handleCommand(ctx, matchState, dispatcher, logger, tick, msg)
	}

	// Seats survive a disconnect, but a table nobody is connected to cannot
	// make progress. Give reconnects a grace window, then close it down.
	if len(matchState.Presences) == 0 {
		if matchState.EmptySince == 0 {
			matchState.EmptySince = tick
		}
		if tick-matchState.EmptySince >= emptyTableGraceTicks {
			logger.Info("MatchLoop: table %s abandoned, closing.", matchState.TableID)
			mh.teardown(matchState, logger)
			return nil
		}
	} else {
		matchState.EmptySince = 0
	}

	return matchState
}

func (mh *matchHandler) handleCommand(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, tick int64, msg runtime.MatchData) {
	sender := msg.GetUserId()

	var events []app.Event
	var err error
	switch msg.GetOpCode() {
	case OpStartWagering:
		if sender != state.Owner {
			mh.sendError(state, dispatcher, logger, sender, "not_owner", "only the table owner can open wagering")
			return
		}
		events, err = mh.svc.StartWagering(state.TableID, sender)
	case OpPlaceWager:
		var req wagerRequest
		if jsonErr := json.Unmarshal(msg.GetData(), &req); jsonErr != nil {
			logger.Warn("MatchLoop: malformed wager payload from %s: %v", sender, jsonErr)
			mh.sendError(state, dispatcher, logger, sender, "bad_request", "malformed wager payload")
			return
		}
		events, err = mh.svc.PlaceWager(state.TableID, sender, req.Amount)
	case OpHit:
		events, err = mh.svc.Hit(state.TableID, sender)
	case OpStand:
		events, err = mh.svc.Stand(state.TableID, sender)
	case OpNextRound:
		if sender != state.Owner {
			mh.sendError(state, dispatcher, logger, sender, "not_owner", "only the table owner can start the next round")
			return
		}
		events, err = mh.svc.NextRound(state.TableID, sender)
	case OpRequestState:
		events, err = mh.svc.Snapshot(state.TableID, sender)
	case OpLeaveTable:
		events, err = mh.svc.Leave(state.TableID, sender)
		if err == nil {
			if p, seated := state.Presences[sender]; seated {
				delete(state.Presences, sender)
				if kickErr := dispatcher.MatchKick([]runtime.Presence{p}); kickErr != nil {
					logger.Error("MatchLoop: failed to kick %s: %v", sender, kickErr)
				}
			}
		}
	default:
		logger.Warn("MatchLoop: unknown opcode %d from %s", msg.GetOpCode(), sender)
		return
	}

	if err != nil {
		logger.Debug("MatchLoop: command %d from %s rejected: %v", msg.GetOpCode(), sender, err)
		mh.sendError(state, dispatcher, logger, sender, errorCode(err), err.Error())
		return
	}

	mh.deliver(ctx, state, dispatcher, logger, tick, events)
	mh.refreshOwner(state, logger)
	mh.updateLabel(state, dispatcher, logger)
}

// deliver mirrors settlements to wallets, then sends or queues the events.
// Wallet writes never wait on pacing.
func (mh *matchHandler) deliver(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, tick int64, events []app.Event) {
	mh.mirrorSettlements(ctx, state, logger, events)
	for _, ev := range state.scheduleEvents(tick, mh.cfg.DealerPaceTicks, events) {
		mh.sendEvent(state, dispatcher, logger, ev)
	}
}

// mirrorSettlements applies a round's chip movements to persistent wallets.
// The table has already committed the result; a wallet failure is logged for
// reconciliation rather than undoing the round.
func (mh *matchHandler) mirrorSettlements(ctx context.Context, state *MatchState, logger runtime.Logger, events []app.Event) {
	var updates []ports.WalletUpdate
	for _, ev := range events {
		switch ev.Kind {
		case app.EventRoundSettled:
			p, ok := ev.Payload.(app.RoundSettledPayload)
			if !ok {
				continue
			}
			for _, rec := range p.Records {
				net := rec.Payout - rec.Wager
				if net == 0 {
					continue
				}
				updates = append(updates, ports.WalletUpdate{
					UserID: rec.ParticipantID,
					Amount: net,
					Metadata: map[string]interface{}{
						"match_id": state.TableID,
						"reason":   "round_settlement",
						"outcome":  string(rec.Outcome),
					},
				})
			}
		case app.EventPlayerLeft:
			p, ok := ev.Payload.(app.PlayerLeftPayload)
			if !ok || p.Forfeit == nil || p.Forfeit.Wager == 0 {
				continue
			}
			updates = append(updates, ports.WalletUpdate{
				UserID: p.Forfeit.ParticipantID,
				Amount: -p.Forfeit.Wager,
				Metadata: map[string]interface{}{
					"match_id": state.TableID,
					"reason":   "abandoned_forfeit",
				},
			})
		}
	}
	if len(updates) == 0 {
		return
	}
	if err := mh.economy.UpdateBalances(ctx, updates); err != nil {
		logger.Error("Failed to mirror settlements for table %s: %v", state.TableID, err)
	}
}

func (mh *matchHandler) sendEvent(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	opCode, data, err := marshalEvent(ev)
	if err != nil {
		logger.Error("Failed to encode event: %v", err)
		return
	}

	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, connected := state.Presences[uid]; connected {
				recipients = append(recipients, p)
			}
		}
		// The intended recipients are offline; the event must not leak to
		// anyone else.
		if len(recipients) == 0 {
			return
		}
	}

	if err := dispatcher.BroadcastMessage(opCode, data, recipients, nil, true); err != nil {
		logger.Error("Failed to broadcast event %q: %v", ev.Kind, err)
	}
}

// sendError delivers a rule violation privately to its sender.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID, code, message string) {
	p, connected := state.Presences[userID]
	if !connected {
		logger.Warn("Cannot send error to %s: presence not found", userID)
		return
	}
	data, err := json.Marshal(app.ErrorPayload{Code: code, Message: message})
	if err != nil {
		logger.Error("Failed to marshal error payload: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpEvError, data, []runtime.Presence{p}, nil, true); err != nil {
		logger.Error("Failed to send error to %s: %v", userID, err)
	}
}

// refreshOwner keeps the owner gate pointed at a connected participant.
func (mh *matchHandler) refreshOwner(state *MatchState, logger runtime.Logger) {
	view, err := mh.svc.TableView(state.TableID)
	if err != nil {
		state.Owner = ""
		return
	}
	if p, seated := view.ParticipantView(state.Owner); seated && p.Connected {
		return
	}
	state.Owner = ""
	for _, p := range view.Participants {
		if p.Connected {
			state.Owner = p.UserID
			logger.Debug("Owner set to %s.", state.Owner)
			break
		}
	}
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := mh.labelJSON(state.TableID)
	if err != nil {
		logger.Error("UpdateLabel: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: failed to update: %v", err)
	}
}

func (mh *matchHandler) labelJSON(tableID string) (string, error) {
	view, err := mh.svc.TableView(tableID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve table %s: %w", tableID, err)
	}
	label := MatchLabel{
		Game:      "blackjack",
		Phase:     string(view.Phase),
		Open:      view.Capacity - len(view.Participants),
		Occupancy: len(view.Participants),
	}
	data, err := json.Marshal(label)
	if err != nil {
		return "", fmt.Errorf("failed to marshal label: %w", err)
	}
	return string(data), nil
}

// teardown removes the table from the shared service. Wagers of an
// interrupted round were never mirrored, so wallets are untouched.
func (mh *matchHandler) teardown(state *MatchState, logger runtime.Logger) {
	if view, err := mh.svc.TableView(state.TableID); err == nil && view.Phase == domain.PhaseRoundActive {
		logger.Warn("Closing table %s mid-round.", state.TableID)
	}
	mh.svc.DestroyTable(state.TableID)
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	if matchState, ok := state.(*MatchState); ok {
		mh.teardown(matchState, logger)
	}
	logger.Debug("MatchTerminate: closed with grace %d.", graceSeconds)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
