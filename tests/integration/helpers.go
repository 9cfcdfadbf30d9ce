package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/heroiclabs/nakama-common/rtapi"
	"github.com/heroiclabs/nakama-go/v2"
)

const (
	ServerKey = "defaultkey"
	HttpKey   = "defaulthttpkey"
	Host      = "127.0.0.1"
	Port      = 7350
)

// Opcodes mirrored from the module's wire contract. The integration module
// is a black-box client, so the numbers live here rather than in an import.
const (
	OpStartWagering int64 = 1
	OpPlaceWager    int64 = 2
	OpHit           int64 = 3
	OpStand         int64 = 4

	OpEvPlayerJoined     int64 = 101
	OpEvWageringStarted  int64 = 105
	OpEvWagerCommitted   int64 = 106
	OpEvRoundDealt       int64 = 107
	OpEvParticipantStood int64 = 109
	OpEvRoundSettled     int64 = 112
)

// tableState is the snapshot every event payload carries under "state".
// Cards stay raw; these tests only count them.
type tableState struct {
	Phase        string `json:"phase"`
	Turn         string `json:"turn"`
	Participants []struct {
		UserID    string            `json:"userId"`
		Hand      []json.RawMessage `json:"hand"`
		HandValue int               `json:"handValue"`
	} `json:"participants"`
	Dealer struct {
		Cards       []json.RawMessage `json:"cards"`
		HiddenCount int               `json:"hiddenCount"`
	} `json:"dealer"`
}

type roundDealtEvent struct {
	State tableState `json:"state"`
}

type stoodEvent struct {
	UserID    string     `json:"userId"`
	HandValue int        `json:"handValue"`
	State     tableState `json:"state"`
}

type roundSettledEvent struct {
	Records []struct {
		ParticipantID string `json:"participantId"`
		Wager         int64  `json:"wager"`
		Outcome       string `json:"outcome"`
		Payout        int64  `json:"payout"`
	} `json:"records"`
	Winners []string   `json:"winners"`
	State   tableState `json:"state"`
}

type TestClient struct {
	Client  *nakama.Client
	Session *nakama.Session
	Socket  *nakama.Socket
	UserID  string
}

func NewTestClient(t *testing.T) *TestClient {
	client := nakama.NewClient(ServerKey, Host, Port, false)

	// Create unique ID
	deviceID := fmt.Sprintf("test_device_%d", time.Now().UnixNano())

	// Authenticate
	session, err := client.AuthenticateDevice(context.Background(), deviceID, true, "")
	if err != nil {
		t.Fatalf("Failed to authenticate: %v", err)
	}

	// Create Socket
	socket := client.NewSocket()
	if err := socket.Connect(context.Background(), session, true); err != nil {
		t.Fatalf("Failed to connect socket: %v", err)
	}

	return &TestClient{
		Client:  client,
		Session: session,
		Socket:  socket,
		UserID:  session.UserId,
	}
}

func (tc *TestClient) Close() {
	if tc.Socket != nil {
		tc.Socket.Close()
	}
}

// QuickTable calls the 'quick_table' RPC and joins the returned match ID.
func (tc *TestClient) QuickTable(t *testing.T) string {
	rpc, err := tc.Client.RpcFunc(context.Background(), tc.Session, "quick_table", "{}")
	if err != nil {
		t.Fatalf("RPC quick_table failed: %v", err)
	}

	var resp struct {
		MatchID string `json:"match_id"`
		IsNew   bool   `json:"is_new"`
	}
	if err := json.Unmarshal([]byte(rpc.Payload), &resp); err != nil {
		t.Fatalf("quick_table returned bad JSON: %v", err)
	}
	if resp.MatchID == "" {
		t.Fatalf("quick_table returned no match ID")
	}

	// Join Match
	if _, err := tc.Socket.JoinMatch(context.Background(), nil, resp.MatchID, nil); err != nil {
		t.Fatalf("Failed to join match %s: %v", resp.MatchID, err)
	}

	return resp.MatchID
}

// SendCommand sends one table command over the socket.
func (tc *TestClient) SendCommand(t *testing.T, matchID string, opCode int64, payload []byte) {
	if _, err := tc.Socket.SendMatchState(context.Background(), matchID, opCode, payload, nil); err != nil {
		t.Fatalf("Failed to send opcode %d: %v", opCode, err)
	}
}

// WaitForMatchState waits for a specific opcode from the socket.
func (tc *TestClient) WaitForMatchState(t *testing.T, opCode int64, timeout time.Duration) *rtapi.MatchData {
	ch := make(chan *rtapi.MatchData)

	// Hook into socket (This is simplistic; robust tests might need a better event bus)
	// nakama-go socket callbacks are set on the socket object.
	// We need to overwrite OnMatchData.

	originalHandler := tc.Socket.OnMatchData
	tc.Socket.OnMatchData = func(data *rtapi.MatchData) {
		if data.OpCode == opCode {
			ch <- data
		}
		if originalHandler != nil {
			originalHandler(data)
		}
	}

	select {
	case data := <-ch:
		return data
	case <-time.After(timeout):
		t.Fatalf("Timeout waiting for OpCode %d", opCode)
		return nil
	}
}
