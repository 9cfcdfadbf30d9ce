package nakama

import (
	"context"
	"database/sql"
	"fmt"

	"blackjack/internal/app"
	"blackjack/internal/config"
	"blackjack/internal/dealer"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule wires configuration, RPCs, the table match handler and the
// account hooks into the Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)

	cfg, err := config.Load(env["BLACKJACK_CONFIG_FILE"], env)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// One service backs every table so a player cannot hold seats at two
	// tables at once.
	svc := app.NewService(app.Options{
		Seats:        cfg.MaxSeats,
		MaxSessions:  cfg.MaxSessions,
		GuardTimeout: cfg.GuardTimeout(),
		Policy:       dealer.Threshold{Stand: cfg.DealerStand},
	})
	reservations := app.NewReservationService(cfg.ReservationSecret, cfg.ReservationTTL())

	if err := RegisterRPCs(initializer, svc, reservations, cfg); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameBlackjack, NewMatch(svc, reservations, cfg)); err != nil {
		return err
	}

	if err := initializer.RegisterAfterAuthenticateDevice(NewAfterAuthenticateDevice(cfg)); err != nil {
		return err
	}

	logger.Info("Blackjack table module loaded.")
	return nil
}
