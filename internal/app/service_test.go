package app

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"blackjack/internal/domain"
)

func newTestService() *Service {
	seed := int64(1)
	return NewService(Options{
		Seats:        7,
		MaxSessions:  8,
		GuardTimeout: 5 * time.Second,
		NewRand: func() *rand.Rand {
			seed++
			return rand.New(rand.NewSource(seed))
		},
	})
}

// startRound drives a table from empty to a dealt round: two participants
// seated with 1000 chips each, wagers of 100 and 200 committed. It returns
// the events of the final wager, which include the deal.
func startRound(t *testing.T, svc *Service, tableID string) []Event {
	t.Helper()
	if err := svc.EnsureTable(tableID); err != nil {
		t.Fatalf("ensure table error: %v", err)
	}
	if _, err := svc.Join(tableID, "u1", "Ann", 1000); err != nil {
		t.Fatalf("join u1 error: %v", err)
	}
	if _, err := svc.Join(tableID, "u2", "Bob", 1000); err != nil {
		t.Fatalf("join u2 error: %v", err)
	}
	if _, err := svc.StartWagering(tableID, "u1"); err != nil {
		t.Fatalf("start wagering error: %v", err)
	}
	if _, err := svc.PlaceWager(tableID, "u1", 100); err != nil {
		t.Fatalf("wager u1 error: %v", err)
	}
	evs, err := svc.PlaceWager(tableID, "u2", 200)
	if err != nil {
		t.Fatalf("wager u2 error: %v", err)
	}
	return evs
}

// startActiveRound deals rounds until one stays open for turns. A deal where
// every participant draws a natural settles outright; in that case the table
// is cleared and redealt with fresh bankrolls, so callers can rely on an
// active round with wagers of 100 and 200 against balances of 900 and 800.
func startActiveRound(t *testing.T, svc *Service, tableID string) {
	t.Helper()
	startRound(t, svc, tableID)
	for i := 0; i < 8; i++ {
		v, err := svc.TableView(tableID)
		if err != nil {
			t.Fatalf("view error: %v", err)
		}
		if v.Phase == domain.PhaseRoundActive {
			return
		}
		if _, err := svc.Leave(tableID, "u1"); err != nil {
			t.Fatalf("reset leave u1 error: %v", err)
		}
		if _, err := svc.Leave(tableID, "u2"); err != nil {
			t.Fatalf("reset leave u2 error: %v", err)
		}
		startRound(t, svc, tableID)
	}
	t.Fatalf("no deal stayed open after repeated attempts")
}

func eventKinds(evs []Event) []EventKind {
	kinds := make([]EventKind, len(evs))
	for i, ev := range evs {
		kinds[i] = ev.Kind
	}
	return kinds
}

func findEvent(evs []Event, kind EventKind) (Event, bool) {
	for _, ev := range evs {
		if ev.Kind == kind {
			return ev, true
		}
	}
	return Event{}, false
}

func TestJoinBroadcastsAndTargetsSnapshot(t *testing.T) {
	svc := newTestService()
	if err := svc.EnsureTable("t1"); err != nil {
		t.Fatalf("ensure table error: %v", err)
	}

	evs, err := svc.Join("t1", "u1", "Ann", 1000)
	if err != nil {
		t.Fatalf("join error: %v", err)
	}
	if len(evs) != 2 {
		t.Fatalf("events = %v, want joined + snapshot", eventKinds(evs))
	}
	if evs[0].Kind != EventPlayerJoined {
		t.Fatalf("events[0] = %s, want player_joined", evs[0].Kind)
	}
	if len(evs[0].Recipients) != 0 {
		t.Fatalf("join event recipients = %v, want broadcast", evs[0].Recipients)
	}
	joined := evs[0].Payload.(PlayerJoinedPayload)
	if joined.UserID != "u1" || joined.DisplayName != "Ann" {
		t.Fatalf("joined payload = %+v", joined)
	}
	if evs[1].Kind != EventStateSnapshot {
		t.Fatalf("events[1] = %s, want state_snapshot", evs[1].Kind)
	}
	if len(evs[1].Recipients) != 1 || evs[1].Recipients[0] != "u1" {
		t.Fatalf("snapshot recipients = %v, want [u1]", evs[1].Recipients)
	}
	snap := evs[1].Payload.(StateSnapshotPayload)
	if snap.State.SessionID != "t1" || snap.State.Phase != domain.PhaseIdle {
		t.Fatalf("snapshot state = %+v", snap.State)
	}
}

func TestJoinUnknownTable(t *testing.T) {
	svc := newTestService()
	if _, err := svc.Join("missing", "u1", "Ann", 1000); !errors.Is(err, ErrNoSuchSession) {
		t.Fatalf("join error = %v, want ErrNoSuchSession", err)
	}
}

func TestJoinWhileSeatedElsewhere(t *testing.T) {
	svc := newTestService()
	svc.EnsureTable("t1")
	svc.EnsureTable("t2")
	if _, err := svc.Join("t1", "u1", "Ann", 1000); err != nil {
		t.Fatalf("join t1 error: %v", err)
	}
	if _, err := svc.Join("t2", "u1", "Ann", 1000); !errors.Is(err, ErrAlreadyElsewhere) {
		t.Fatalf("join t2 error = %v, want ErrAlreadyElsewhere", err)
	}
}

func TestGuardBlocksOverlappingCommands(t *testing.T) {
	svc := newTestService()
	svc.EnsureTable("t1")
	if _, err := svc.Join("t1", "u1", "Ann", 1000); err != nil {
		t.Fatalf("join error: %v", err)
	}

	ticket, err := svc.guard.Acquire("t1")
	if err != nil {
		t.Fatalf("acquire error: %v", err)
	}
	if _, err := svc.Hit("t1", "u1"); !errors.Is(err, ErrActionInProgress) {
		t.Fatalf("hit while held error = %v, want ErrActionInProgress", err)
	}
	if _, err := svc.Join("t1", "u2", "Bob", 1000); !errors.Is(err, ErrActionInProgress) {
		t.Fatalf("join while held error = %v, want ErrActionInProgress", err)
	}

	svc.guard.Release("t1", ticket)
	// With the hold gone the command reaches the session and fails on rules,
	// not on admission.
	if _, err := svc.Hit("t1", "u1"); !errors.Is(err, domain.ErrNotInProgress) {
		t.Fatalf("hit after release error = %v, want ErrNotInProgress", err)
	}
}

func TestStartWageringRequiresSeatHere(t *testing.T) {
	svc := newTestService()
	svc.EnsureTable("t1")
	svc.EnsureTable("t2")
	svc.Join("t1", "u1", "Ann", 1000)
	svc.Join("t2", "u2", "Bob", 1000)

	if _, err := svc.StartWagering("t1", "stranger"); !errors.Is(err, domain.ErrNoSuchParticipant) {
		t.Fatalf("stranger error = %v, want ErrNoSuchParticipant", err)
	}
	if _, err := svc.StartWagering("t1", "u2"); !errors.Is(err, domain.ErrNoSuchParticipant) {
		t.Fatalf("cross-table error = %v, want ErrNoSuchParticipant", err)
	}
	if _, err := svc.StartWagering("t1", "u1"); err != nil {
		t.Fatalf("seated caller error: %v", err)
	}
}

func TestFinalWagerDealsRound(t *testing.T) {
	svc := newTestService()
	evs := startRound(t, svc, "t1")

	dealt, ok := findEvent(evs, EventRoundDealt)
	if !ok {
		t.Fatalf("events = %v, want round_dealt present", eventKinds(evs))
	}
	state := dealt.Payload.(RoundDealtPayload).State
	if state.Phase != domain.PhaseRoundActive {
		t.Fatalf("deal snapshot phase = %s, want round_active", state.Phase)
	}
	if len(state.Participants) != 2 {
		t.Fatalf("participants = %d, want 2", len(state.Participants))
	}
	for _, p := range state.Participants {
		if len(p.Hand) != 2 {
			t.Fatalf("%s hand = %d cards, want 2", p.UserID, len(p.Hand))
		}
	}
	if state.Participants[0].Balance != 900 || state.Participants[1].Balance != 800 {
		t.Fatalf("balances = %d, %d, want 900, 800",
			state.Participants[0].Balance, state.Participants[1].Balance)
	}
	if len(state.Dealer.Cards) != 1 || state.Dealer.HiddenCount != 1 {
		t.Fatalf("dealer shows %d cards with %d hidden, want 1 and 1",
			len(state.Dealer.Cards), state.Dealer.HiddenCount)
	}
	if state.ShoeRemaining != 46 {
		t.Fatalf("shoe remaining = %d, want 46", state.ShoeRemaining)
	}
}

func TestDisconnectUnseatsOutsideActiveRound(t *testing.T) {
	svc := newTestService()
	svc.EnsureTable("t1")
	svc.Join("t1", "u1", "Ann", 1000)

	evs, err := svc.Disconnect("t1", "u1")
	if err != nil {
		t.Fatalf("disconnect error: %v", err)
	}
	if _, ok := findEvent(evs, EventPlayerLeft); !ok {
		t.Fatalf("events = %v, want player_left", eventKinds(evs))
	}
	if _, seated := svc.SeatedAt("u1"); seated {
		t.Fatalf("u1 still seated after idle disconnect")
	}
}

func TestDisconnectMidRoundKeepsSeat(t *testing.T) {
	svc := newTestService()
	startActiveRound(t, svc, "t1")

	evs, err := svc.Disconnect("t1", "u1")
	if err != nil {
		t.Fatalf("disconnect error: %v", err)
	}
	if _, ok := findEvent(evs, EventPlayerDisconnected); !ok {
		t.Fatalf("events = %v, want player_disconnected", eventKinds(evs))
	}
	if loc, seated := svc.SeatedAt("u1"); !seated || loc != "t1" {
		t.Fatalf("u1 location = %q, %v, want t1 with seat kept", loc, seated)
	}
	v, err := svc.TableView("t1")
	if err != nil {
		t.Fatalf("view error: %v", err)
	}
	p, ok := v.ParticipantView("u1")
	if !ok {
		t.Fatalf("u1 missing from view")
	}
	if p.Connected {
		t.Fatalf("u1 still marked connected")
	}
	if p.Wager != 100 {
		t.Fatalf("u1 wager = %d, want 100 still committed", p.Wager)
	}
}

func TestRejoinReconnectsAndResendsState(t *testing.T) {
	svc := newTestService()
	startActiveRound(t, svc, "t1")
	if _, err := svc.Disconnect("t1", "u1"); err != nil {
		t.Fatalf("disconnect error: %v", err)
	}

	evs, err := svc.Join("t1", "u1", "Ann", 1000)
	if err != nil {
		t.Fatalf("rejoin error: %v", err)
	}
	if _, ok := findEvent(evs, EventPlayerReconnected); !ok {
		t.Fatalf("events = %v, want player_reconnected", eventKinds(evs))
	}
	snapEv, ok := findEvent(evs, EventStateSnapshot)
	if !ok {
		t.Fatalf("events = %v, want state_snapshot", eventKinds(evs))
	}
	if len(snapEv.Recipients) != 1 || snapEv.Recipients[0] != "u1" {
		t.Fatalf("snapshot recipients = %v, want [u1]", snapEv.Recipients)
	}
	state := snapEv.Payload.(StateSnapshotPayload).State
	if state.Phase != domain.PhaseRoundActive {
		t.Fatalf("rejoin snapshot phase = %s, want round_active", state.Phase)
	}
	if state.Dealer.HiddenCount != 1 {
		t.Fatalf("rejoin snapshot leaks hole card: %+v", state.Dealer)
	}

	v, _ := svc.TableView("t1")
	p, _ := v.ParticipantView("u1")
	if !p.Connected {
		t.Fatalf("u1 not reconnected")
	}
	// The rejoin must not have minted a second seat or reset the bankroll.
	if len(v.Participants) != 2 {
		t.Fatalf("participants = %d, want 2", len(v.Participants))
	}
	if p.Balance != 900 {
		t.Fatalf("balance = %d, want 900 from the committed wager", p.Balance)
	}
}

func TestStandToSettlementAndNextRound(t *testing.T) {
	svc := newTestService()
	all := startRound(t, svc, "t1")

	for i := 0; i < 20; i++ {
		v, err := svc.TableView("t1")
		if err != nil {
			t.Fatalf("view error: %v", err)
		}
		if v.Phase != domain.PhaseRoundActive {
			break
		}
		evs, err := svc.Stand("t1", v.Turn)
		if err != nil {
			t.Fatalf("stand by %s error: %v", v.Turn, err)
		}
		all = append(all, evs...)
	}

	v, _ := svc.TableView("t1")
	if v.Phase != domain.PhaseRoundSettled {
		t.Fatalf("phase = %s, want round_settled", v.Phase)
	}
	settledEv, ok := findEvent(all, EventRoundSettled)
	if !ok {
		t.Fatalf("no round_settled event emitted")
	}
	settled := settledEv.Payload.(RoundSettledPayload)
	if len(settled.Records) != 2 {
		t.Fatalf("settlement records = %d, want 2", len(settled.Records))
	}
	for _, rec := range settled.Records {
		p, ok := v.ParticipantView(rec.ParticipantID)
		if !ok {
			t.Fatalf("record for unknown participant %s", rec.ParticipantID)
		}
		if p.Balance != rec.ResultingBalance {
			t.Fatalf("%s balance = %d, record says %d", rec.ParticipantID, p.Balance, rec.ResultingBalance)
		}
	}
	if _, ok := findEvent(all, EventDealerRevealed); !ok {
		t.Fatalf("no dealer_revealed event emitted")
	}

	evs, err := svc.NextRound("t1", "u1")
	if err != nil {
		t.Fatalf("next round error: %v", err)
	}
	if _, ok := findEvent(evs, EventRoundReset); !ok {
		t.Fatalf("events = %v, want round_reset", eventKinds(evs))
	}
	v, _ = svc.TableView("t1")
	if v.Phase != domain.PhaseIdle {
		t.Fatalf("phase after reset = %s, want idle", v.Phase)
	}
	for _, p := range v.Participants {
		if len(p.Hand) != 0 || p.Wager != 0 {
			t.Fatalf("%s not reset: %+v", p.UserID, p)
		}
	}

	if _, err := svc.NextRound("t1", "u1"); !errors.Is(err, domain.ErrNotSettled) {
		t.Fatalf("second reset error = %v, want ErrNotSettled", err)
	}
}

func TestLeaveMidRoundForfeitsStake(t *testing.T) {
	svc := newTestService()
	startActiveRound(t, svc, "t1")

	evs, err := svc.Leave("t1", "u1")
	if err != nil {
		t.Fatalf("leave error: %v", err)
	}
	leftEv, ok := findEvent(evs, EventPlayerLeft)
	if !ok {
		t.Fatalf("events = %v, want player_left", eventKinds(evs))
	}
	left := leftEv.Payload.(PlayerLeftPayload)
	if left.UserID != "u1" {
		t.Fatalf("left userId = %s, want u1", left.UserID)
	}
	if left.Forfeit == nil {
		t.Fatalf("mid-round leave carried no forfeiture")
	}
	if left.Forfeit.Wager != 100 || left.Forfeit.Payout != 0 {
		t.Fatalf("forfeit = %+v, want wager 100 payout 0", left.Forfeit)
	}
	if _, seated := svc.SeatedAt("u1"); seated {
		t.Fatalf("u1 still seated after leave")
	}
}

func TestSnapshotTargetsRequester(t *testing.T) {
	svc := newTestService()
	svc.EnsureTable("t1")
	svc.Join("t1", "u1", "Ann", 1000)

	evs, err := svc.Snapshot("t1", "u1")
	if err != nil {
		t.Fatalf("snapshot error: %v", err)
	}
	if len(evs) != 1 || evs[0].Kind != EventStateSnapshot {
		t.Fatalf("events = %v, want a single state_snapshot", eventKinds(evs))
	}
	if len(evs[0].Recipients) != 1 || evs[0].Recipients[0] != "u1" {
		t.Fatalf("recipients = %v, want [u1]", evs[0].Recipients)
	}
}

func TestServiceAggregates(t *testing.T) {
	svc := newTestService()
	startRound(t, svc, "t1")
	svc.EnsureTable("t2")
	svc.Join("t2", "u3", "Cay", 1000)

	tables := svc.Tables()
	if len(tables) != 2 {
		t.Fatalf("tables = %d, want 2", len(tables))
	}
	if tables[0].ID != "t1" || tables[1].ID != "t2" {
		t.Fatalf("table order = %s, %s, want t1, t2", tables[0].ID, tables[1].ID)
	}
	if got := svc.Occupancy(); got != 3 {
		t.Fatalf("occupancy = %d, want 3", got)
	}
	// t1 is mid-round unless the deal settled it outright.
	v, _ := svc.TableView("t1")
	wantActive := 0
	if v.Phase == domain.PhaseRoundActive {
		wantActive = 1
	}
	if got := svc.ActiveRounds(); got != wantActive {
		t.Fatalf("active rounds = %d, want %d", got, wantActive)
	}

	svc.DestroyTable("t1")
	if got := len(svc.Tables()); got != 1 {
		t.Fatalf("tables after destroy = %d, want 1", got)
	}
}
