// Command tablesim runs a blackjack table in the terminal against the same
// game service the Nakama module serves, which makes it a quick way to play
// through rule changes without standing up a server.
package main

import (
	"flag"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"

	"blackjack/internal/app"
	"blackjack/internal/dealer"
	"blackjack/internal/domain"
	"blackjack/internal/stake"
)

const tableID = "local"

func main() {
	seats := flag.Int("seats", 4, "seats at the table")
	balance := flag.Int64("balance", 1000, "starting chips per player")
	stand := flag.Int("stand", dealer.DefaultStand, "dealer stands at this value or higher")
	seed := flag.Int64("seed", 0, "shoe seed, 0 draws one from the clock")
	flag.Parse()

	opts := app.Options{
		Seats:  *seats,
		Policy: dealer.Threshold{Stand: *stand},
	}
	if *seed != 0 {
		opts.NewRand = func() *rand.Rand { return rand.New(rand.NewSource(*seed)) }
	}
	svc := app.NewService(opts)
	if err := svc.EnsureTable(tableID); err != nil {
		pterm.Error.Printfln("Failed to open the table: %v", err)
		os.Exit(1)
	}

	printTitle()

	cl := &client{}
	if n := seatPlayers(svc, cl, *seats, *balance); n == 0 {
		pterm.Error.Println("Nobody sat down.")
		os.Exit(1)
	}

	for {
		sweepBroke(svc, cl)
		view, err := svc.TableView(tableID)
		if err != nil || len(view.Participants) == 0 {
			pterm.Info.Println("The table is empty.")
			break
		}
		host := view.Participants[0].UserID

		events, err := svc.StartWagering(tableID, host)
		if err != nil {
			pterm.Error.Printfln("Cannot open wagering: %v", err)
			break
		}
		cl.apply(events)

		collectWagers(svc, cl)
		playRound(svc, cl)

		again, _ := pterm.DefaultInteractiveConfirm.
			WithDefaultText("Deal another round?").
			WithDefaultValue(true).Show()
		if !again {
			break
		}
		events, err = svc.NextRound(tableID, host)
		if err != nil {
			pterm.Error.Printfln("Cannot reset the table: %v", err)
			break
		}
		cl.apply(events)
	}

	pterm.Println("Thanks for playing.")
}

func printTitle() {
	title, err := pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("Black", pterm.FgDarkGray.ToStyle()),
		putils.LettersFromStringWithStyle("jack", pterm.FgRed.ToStyle()),
	).Srender()
	if err != nil {
		pterm.DefaultHeader.Println("Blackjack")
		return
	}
	pterm.Print(title)
}

func seatPlayers(svc *app.Service, cl *client, seats int, balance int64) int {
	seated := 0
	for seated < seats {
		name, _ := pterm.DefaultInteractiveTextInput.
			WithDefaultText("Enter a player name, or done to start").Show()
		name = strings.TrimSpace(name)
		if name == "" || strings.EqualFold(name, "done") {
			break
		}
		events, err := svc.Join(tableID, strings.ToLower(name), name, balance)
		if err != nil {
			pterm.Error.Printfln("Cannot seat %s: %v", name, err)
			continue
		}
		cl.apply(events)
		seated++
	}
	return seated
}

// sweepBroke walks players who can no longer cover the table minimum. Seats
// must clear before wagering opens because dealing waits on every seat.
func sweepBroke(svc *app.Service, cl *client) {
	view, err := svc.TableView(tableID)
	if err != nil {
		return
	}
	for _, p := range view.Participants {
		if p.Balance >= stake.MinimumWager {
			continue
		}
		pterm.Info.Printfln("%s is out of chips and leaves the table.", p.DisplayName)
		events, err := svc.Leave(tableID, p.UserID)
		if err != nil {
			continue
		}
		cl.apply(events)
	}
}

func collectWagers(svc *app.Service, cl *client) {
	for cl.table.Phase == domain.PhaseWagering {
		next, ok := nextUnwagered(cl.table)
		if !ok {
			return
		}
		input, _ := pterm.DefaultInteractiveTextInput.
			WithDefaultText(pterm.Sprintf("%s, enter your wager (chips %d)", next.DisplayName, next.Balance)).Show()
		amount, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
		if err != nil {
			pterm.Error.Println("Enter a number.")
			continue
		}
		events, err := svc.PlaceWager(tableID, next.UserID, amount)
		if err != nil {
			pterm.Error.Printfln("Wager rejected: %v", err)
			continue
		}
		cl.apply(events)
	}
}

func nextUnwagered(table app.SnapshotPayload) (app.ParticipantState, bool) {
	for _, p := range table.Participants {
		if !p.HasWagered {
			return p, true
		}
	}
	return app.ParticipantState{}, false
}

func playRound(svc *app.Service, cl *client) {
	for cl.table.Phase == domain.PhaseRoundActive {
		turn := cl.table.Turn
		p, ok := participantState(cl.table, turn)
		if !ok {
			return
		}
		printTable(cl.table)
		action, _ := pterm.DefaultInteractiveSelect.
			WithDefaultText(pterm.Sprintf("%s, your move (hand %d, dealer shows %d)", p.DisplayName, p.HandValue, cl.table.Dealer.HandValue)).
			WithOptions([]string{"Hit", "Stand"}).Show()

		var events []app.Event
		var err error
		if action == "Hit" {
			events, err = svc.Hit(tableID, turn)
		} else {
			events, err = svc.Stand(tableID, turn)
		}
		if err != nil {
			pterm.Error.Printfln("Move rejected: %v", err)
			continue
		}
		cl.apply(events)
	}
}

// client renders the event stream the way a connected player would see it and
// keeps the latest snapshot for the prompts.
type client struct {
	table app.SnapshotPayload
}

func (c *client) apply(events []app.Event) {
	for _, ev := range events {
		switch p := ev.Payload.(type) {
		case app.PlayerJoinedPayload:
			chips := int64(0)
			if seat, ok := participantState(p.State, p.UserID); ok {
				chips = seat.Balance
			}
			pterm.Info.Printfln("%s sat down with %d chips.", p.DisplayName, chips)
			c.table = p.State
		case app.PlayerLeftPayload:
			if p.Forfeit != nil {
				pterm.Info.Printfln("%s left mid-round and forfeited %d.", displayName(c.table, p.UserID), p.Forfeit.Wager)
			} else {
				pterm.Info.Printfln("%s left the table.", displayName(c.table, p.UserID))
			}
			c.table = p.State
		case app.WageringStartedPayload:
			pterm.Info.Println("Wagers are open.")
			c.table = p.State
		case app.WagerCommittedPayload:
			pterm.Info.Printfln("%s wagered %d.", displayName(p.State, p.UserID), p.Wager)
			c.table = p.State
		case app.RoundDealtPayload:
			pterm.Info.Println("Cards are out.")
			c.table = p.State
		case app.CardDrawnPayload:
			if p.Status == domain.StatusBusted {
				pterm.Info.Printfln("%s drew %s and busted at %d.", displayName(p.State, p.UserID), cardString(p.Card), p.HandValue)
			} else {
				pterm.Info.Printfln("%s drew %s (%d).", displayName(p.State, p.UserID), cardString(p.Card), p.HandValue)
			}
			c.table = p.State
		case app.StoodPayload:
			pterm.Info.Printfln("%s stands at %d.", displayName(p.State, p.UserID), p.HandValue)
			c.table = p.State
		case app.DealerRevealedPayload:
			pterm.Info.Printfln("Dealer reveals %s (%d).", handString(p.State.Dealer.Cards), p.HandValue)
			c.table = p.State
		case app.DealerDrewPayload:
			pterm.Info.Printfln("Dealer draws %s (%d).", cardString(p.Card), p.HandValue)
			c.table = p.State
		case app.RoundSettledPayload:
			c.table = p.State
			printTable(c.table, settlementPanel(p))
		case app.RoundResetPayload:
			if ev.Kind == app.EventRoundAbandoned {
				pterm.Info.Println("The round was abandoned.")
			} else {
				pterm.Info.Println("Table cleared for the next round.")
			}
			c.table = p.State
		case app.StateSnapshotPayload:
			c.table = p.State
		case app.ConnectionPayload:
			c.table = p.State
		}
	}
}
