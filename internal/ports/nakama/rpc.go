package nakama

import (
	"encoding/json"

	"blackjack/internal/app"
	"blackjack/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// RegisterRPCs registers the lobby and reservation RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer, svc *app.Service, reservations *app.ReservationService, cfg config.Config) error {
	if err := initializer.RegisterRpc(RpcQuickTable, rpcQuickTable(svc, cfg)); err != nil {
		return err
	}
	if err := initializer.RegisterRpc(RpcListTables, rpcListTables(cfg)); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcReserveSeat, rpcReserveSeat(svc, reservations))
}

func marshalRPCResponse(logger runtime.Logger, v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Error("Failed to marshal RPC response: %v", err)
		return "", runtime.NewError("Internal error", 13) // INTERNAL
	}
	return string(data), nil
}
