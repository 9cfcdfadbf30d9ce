package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"blackjack/internal/app"
	"blackjack/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// ReserveSeatRequest asks for a short-lived hold on a seat at one table.
type ReserveSeatRequest struct {
	MatchID string `json:"match_id"`
}

// ReserveSeatResponse carries the signed reservation the client presents in
// its match join metadata under the "reservation" key.
type ReserveSeatResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

func rpcReserveSeat(svc *app.Service, reservations *app.ReservationService) func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		if !reservations.Enabled() {
			return "", runtime.NewError("Seat reservations are not enabled", 12) // UNIMPLEMENTED
		}

		userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
		if userID == "" {
			return "", runtime.NewError("User ID not found", 16) // UNAUTHENTICATED
		}

		var req ReserveSeatRequest
		if err := json.Unmarshal([]byte(payload), &req); err != nil || req.MatchID == "" {
			return "", runtime.NewError("Invalid payload", 3) // INVALID_ARGUMENT
		}

		if tableID, seated := svc.SeatedAt(userID); seated && tableID != req.MatchID {
			return "", runtime.NewError("Already seated at another table", 9) // FAILED_PRECONDITION
		}

		view, err := svc.TableView(req.MatchID)
		if err != nil {
			return "", runtime.NewError("Table not found", 5) // NOT_FOUND
		}
		// A reservation for the caller's own seat is a rejoin aid and always
		// allowed; fresh seats need room and an idle table.
		if _, seated := view.ParticipantView(userID); !seated {
			if len(view.Participants) >= view.Capacity {
				return "", runtime.NewError("Table is full", 9)
			}
			if view.Phase != domain.PhaseIdle {
				return "", runtime.NewError("Round in progress", 9)
			}
		}

		token, expiresAt, err := reservations.Issue(userID, req.MatchID)
		if err != nil {
			logger.Error("Failed to issue reservation for %s: %v", userID, err)
			return "", runtime.NewError("Internal error", 13) // INTERNAL
		}

		return marshalRPCResponse(logger, ReserveSeatResponse{Token: token, ExpiresAt: expiresAt.Unix()})
	}
}
