package main

import (
	"strings"

	"github.com/pterm/pterm"

	"blackjack/internal/app"
	"blackjack/internal/domain"
	"blackjack/internal/stake"
)

// faceDown is the display block for cards nobody may see yet.
const faceDown = "▓▓"

func cardString(c domain.Card) string {
	switch c.Suit {
	case domain.SuitHearts:
		return c.Rank.String() + pterm.LightRed("♥")
	case domain.SuitDiamonds:
		return c.Rank.String() + pterm.LightRed("♦")
	case domain.SuitClubs:
		return c.Rank.String() + pterm.Black("♣")
	default:
		return c.Rank.String() + pterm.Black("♠")
	}
}

func handString(cards []domain.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = cardString(c)
	}
	return strings.Join(parts, " ")
}

func statusString(status domain.TurnStatus) string {
	switch status {
	case domain.StatusActive:
		return pterm.LightGreen("Playing")
	case domain.StatusStanding:
		return pterm.LightYellow("Standing")
	case domain.StatusBusted:
		return pterm.LightRed("Busted")
	case domain.StatusNaturalWin:
		return pterm.LightCyan("Blackjack!")
	default:
		return "Waiting"
	}
}

// participantBox renders one seat. The seat whose turn it is gets a wider box
// and a highlighted name so it stands out in the row.
func participantBox(p app.ParticipantState, onTurn bool) string {
	padding := 2
	if onTurn {
		padding = 4
	}
	box := pterm.DefaultBox.WithHorizontalPadding(padding).WithTopPadding(1).WithBottomPadding(1)
	title := p.DisplayName
	if onTurn {
		title = pterm.LightCyan(p.DisplayName)
	}
	hand := faceDown
	if len(p.Hand) > 0 {
		hand = pterm.Sprintf("%s (%d)", handString(p.Hand), p.HandValue)
	}
	return box.WithTitle(title).WithTitleTopLeft().Sprintf(
		"%s\nWager: %d\nChips: %d\n%s",
		statusString(p.Status), p.Wager, p.Balance, hand,
	)
}

func dealerBox(d app.DealerState) string {
	box := pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1)
	hand := handString(d.Cards)
	for i := 0; i < d.HiddenCount; i++ {
		if hand != "" {
			hand += " "
		}
		hand += faceDown
	}
	if hand == "" {
		hand = "no cards"
	}
	return box.WithTitle(pterm.LightYellow("|DEALER|")).WithTitleTopCenter().
		Sprintf("%s\nShowing: %d", hand, d.HandValue)
}

// printTable draws the dealer above the seat row, with any extra panels (the
// settlement box) underneath.
func printTable(table app.SnapshotPayload, extra ...pterm.Panel) {
	seats := make([]pterm.Panel, 0, len(table.Participants))
	for _, p := range table.Participants {
		seats = append(seats, pterm.Panel{Data: participantBox(p, table.Turn == p.UserID)})
	}
	rows := [][]pterm.Panel{
		{{Data: dealerBox(table.Dealer)}},
		seats,
	}
	if len(extra) > 0 {
		rows = append(rows, extra)
	}
	pterm.DefaultPanel.WithPanels(rows).Render()
}

func settlementPanel(p app.RoundSettledPayload) pterm.Panel {
	box := pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1)
	lines := ""
	for _, rec := range p.Records {
		name := displayName(p.State, rec.ParticipantID)
		switch rec.Outcome {
		case stake.OutcomeBlackjack:
			lines += pterm.Sprintfln("%s hit blackjack and wins %d", pterm.LightCyan(name), rec.Payout-rec.Wager)
		case stake.OutcomeWin:
			lines += pterm.Sprintfln("%s wins %d", pterm.LightGreen(name), rec.Payout-rec.Wager)
		case stake.OutcomePush:
			lines += pterm.Sprintfln("%s pushes", name)
		default:
			lines += pterm.Sprintfln("%s loses %d", pterm.LightRed(name), rec.Wager)
		}
	}
	return pterm.Panel{Data: box.WithTitle(pterm.LightGreen("|SETTLEMENT|")).WithTitleTopCenter().Sprintf(lines)}
}

func displayName(table app.SnapshotPayload, userID string) string {
	for _, p := range table.Participants {
		if p.UserID == userID {
			return p.DisplayName
		}
	}
	return userID
}

func participantState(table app.SnapshotPayload, userID string) (app.ParticipantState, bool) {
	for _, p := range table.Participants {
		if p.UserID == userID {
			return p, true
		}
	}
	return app.ParticipantState{}, false
}
