package nakama

const (
	// RpcQuickTable is the Nakama RPC id clients call to find or create a
	// table with an open seat.
	RpcQuickTable = "quick_table"

	// RpcListTables is the Nakama RPC id returning every live table.
	RpcListTables = "list_tables"

	// RpcReserveSeat is the Nakama RPC id issuing a signed seat reservation
	// token for a specific table.
	RpcReserveSeat = "reserve_seat"

	// MatchNameBlackjack is the authoritative match handler name registered
	// with Nakama.
	MatchNameBlackjack = "blackjack_table"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartWagering int64 = 1
	OpPlaceWager    int64 = 2
	OpHit           int64 = 3
	OpStand         int64 = 4
	OpNextRound     int64 = 5
	OpRequestState  int64 = 6
	OpLeaveTable    int64 = 7

	// Server -> Client events
	OpEvPlayerJoined       int64 = 101
	OpEvPlayerLeft         int64 = 102
	OpEvPlayerDisconnected int64 = 103
	OpEvPlayerReconnected  int64 = 104
	OpEvWageringStarted    int64 = 105
	OpEvWagerCommitted     int64 = 106
	OpEvRoundDealt         int64 = 107
	OpEvCardDrawn          int64 = 108
	OpEvParticipantStood   int64 = 109
	OpEvDealerRevealed     int64 = 110
	OpEvDealerDrew         int64 = 111
	OpEvRoundSettled       int64 = 112
	OpEvRoundReset         int64 = 113
	OpEvRoundAbandoned     int64 = 114
	OpEvStateSnapshot      int64 = 115 // may be sent privately
	OpEvError              int64 = 116 // always sent privately
)
