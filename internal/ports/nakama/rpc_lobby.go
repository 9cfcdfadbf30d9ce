package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"blackjack/internal/app"
	"blackjack/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// QuickTableResponse is returned by the quick table RPC.
type QuickTableResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
	Rejoin  bool   `json:"rejoin,omitempty"`
}

// TableSummary is one lobby row in the list tables response.
type TableSummary struct {
	MatchID   string `json:"match_id"`
	Phase     string `json:"phase"`
	Open      int    `json:"open"`
	Occupancy int    `json:"occupancy"`
}

// ListTablesResponse is returned by the list tables RPC.
type ListTablesResponse struct {
	Tables []TableSummary `json:"tables"`
}

// rpcQuickTable finds a table the caller can sit at right away, creating one
// when every existing table is full or mid-round. A caller who already holds
// a seat is pointed back at it.
func rpcQuickTable(svc *app.Service, cfg config.Config) func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

		if tableID, seated := svc.SeatedAt(userID); seated {
			return marshalRPCResponse(logger, QuickTableResponse{MatchID: tableID, Rejoin: true})
		}

		// Only idle tables admit fresh players; wagering and dealt rounds
		// are closed doors.
		query := "+label.game:blackjack +label.phase:idle +label.open:>=1"
		limit := 10
		authoritative := true
		minSize := 0
		maxSize := cfg.MaxSeats

		matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, query)
		if err != nil {
			logger.Error("MatchList error: %v", err)
			return "", err
		}
		if len(matches) > 0 {
			return marshalRPCResponse(logger, QuickTableResponse{MatchID: matches[0].MatchId})
		}

		matchID, err := nk.MatchCreate(ctx, MatchNameBlackjack, nil)
		if err != nil {
			logger.Error("MatchCreate error: %v", err)
			return "", err
		}
		return marshalRPCResponse(logger, QuickTableResponse{MatchID: matchID, IsNew: true})
	}
}

// rpcListTables returns every blackjack table with its lobby label, full and
// mid-round tables included.
func rpcListTables(cfg config.Config) func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		query := "+label.game:blackjack"
		limit := 100
		authoritative := true
		minSize := 0
		maxSize := cfg.MaxSeats

		matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, query)
		if err != nil {
			logger.Error("MatchList error: %v", err)
			return "", err
		}

		resp := ListTablesResponse{Tables: make([]TableSummary, 0, len(matches))}
		for _, m := range matches {
			var label MatchLabel
			if err := json.Unmarshal([]byte(m.GetLabel().GetValue()), &label); err != nil {
				logger.Warn("Skipping table %s with unreadable label: %v", m.MatchId, err)
				continue
			}
			resp.Tables = append(resp.Tables, TableSummary{
				MatchID:   m.MatchId,
				Phase:     label.Phase,
				Open:      label.Open,
				Occupancy: label.Occupancy,
			})
		}
		return marshalRPCResponse(logger, resp)
	}
}
