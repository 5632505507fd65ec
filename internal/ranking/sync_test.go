package ranking

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"traderank/internal/domain"
	"traderank/internal/mt5"
	"traderank/internal/storage/memory"
)

// stubBridge serves canned payloads in place of the MT5 bridge.
type stubBridge struct {
	account *mt5.AccountPayload
	trades  []*mt5.TradePayload
}

func (b *stubBridge) Account(_ context.Context, _ string) (*mt5.AccountPayload, error) {
	return b.account, nil
}

func (b *stubBridge) ClosedTrades(_ context.Context, _ string, _, _ time.Time) ([]*mt5.TradePayload, error) {
	return b.trades, nil
}

func tradePayload(ticket, symbol string, closeAt time.Time) *mt5.TradePayload {
	return &mt5.TradePayload{
		Ticket:     ticket,
		Symbol:     symbol,
		Volume:     0.1,
		Profit:     50,
		Commission: 2,
		Swap:       1,
		OpenTime:   closeAt.Add(-time.Hour).UnixMilli(),
		CloseTime:  closeAt.UnixMilli(),
	}
}

func newSyncFixture(t *testing.T, bridge mt5.Client) (*SyncService, Stores) {
	t.Helper()
	stores := Stores{
		Traders:  memory.NewTraderStore(),
		Accounts: memory.NewTradingAccountStore(),
		Trades:   memory.NewClosedTradeStore(),
	}
	return NewSyncService(bridge, stores.Accounts, stores.Trades, nil), stores
}

func TestLinkAccount(t *testing.T) {
	bridge := &stubBridge{account: &mt5.AccountPayload{
		AccountID: "900123",
		Balance:   10000.123,
		Leverage:  200,
		Currency:  "usd",
		Status:    "active",
	}}
	syncer, stores := newSyncFixture(t, bridge)
	ctx := context.Background()

	account, err := syncer.LinkAccount(ctx, "t1", "900123")
	if err != nil {
		t.Fatalf("LinkAccount failed: %v", err)
	}
	if account.ExternalID != "900123" || account.Currency != "USD" || account.Status != "ACTIVE" {
		t.Errorf("account not normalized: %+v", account)
	}

	// Linking again is idempotent.
	again, err := syncer.LinkAccount(ctx, "t1", "900123")
	if err != nil {
		t.Fatalf("second LinkAccount failed: %v", err)
	}
	if again.ID != account.ID {
		t.Errorf("relink changed ID: %s vs %s", again.ID, account.ID)
	}

	accounts, err := stores.Accounts.ListByTraderID(ctx, "t1")
	if err != nil {
		t.Fatalf("ListByTraderID failed: %v", err)
	}
	if len(accounts) != 1 {
		t.Errorf("got %d accounts, want 1", len(accounts))
	}
}

func TestSyncAccount_SkipsInvalidAndDuplicates(t *testing.T) {
	closeAt := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	bridge := &stubBridge{trades: []*mt5.TradePayload{
		tradePayload("1", "EURUSD", closeAt),
		tradePayload("2", "", closeAt),                   // no symbol
		{Ticket: "3", Symbol: "GBPUSD", CloseTime: 0},    // no close time
		tradePayload("4", "GBPUSD", closeAt.Add(time.Hour)),
	}}
	syncer, stores := newSyncFixture(t, bridge)
	ctx := context.Background()

	account := &domain.TradingAccount{ID: "a1", TraderID: "t1", ExternalID: "900123", Currency: "USD", Status: "ACTIVE"}
	if err := stores.Accounts.Insert(ctx, account); err != nil {
		t.Fatalf("seed account: %v", err)
	}

	stored, err := syncer.SyncAccount(ctx, account)
	if err != nil {
		t.Fatalf("SyncAccount failed: %v", err)
	}
	if stored != 2 {
		t.Errorf("stored = %d, want 2 (invalid payloads skipped)", stored)
	}

	// Re-syncing the same window stores nothing new.
	stored, err = syncer.SyncAccount(ctx, account)
	if err != nil {
		t.Fatalf("second SyncAccount failed: %v", err)
	}
	if stored != 0 {
		t.Errorf("resync stored = %d, want 0", stored)
	}

	trades, err := stores.Trades.ListByAccountIDs(ctx, []string{"a1"}, domain.ClosedTradeQuery{})
	if err != nil {
		t.Fatalf("ListByAccountIDs failed: %v", err)
	}
	if len(trades) != 2 {
		t.Errorf("got %d trades, want 2", len(trades))
	}
	// Fees are commission plus swap.
	if trades[0].Fees != 3 {
		t.Errorf("Fees = %v, want 3", trades[0].Fees)
	}
}

// newStreamServer replays one trade.closed notification per subscribe frame.
func newStreamServer(t *testing.T, trade *mt5.TradePayload) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			var req struct {
				Action string `json:"action"`
				Login  string `json:"login"`
			}
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			if req.Action != "subscribe" {
				continue
			}
			err = conn.WriteJSON(map[string]interface{}{
				"event": "trade.closed",
				"login": req.Login,
				"trade": trade,
			})
			if err != nil {
				return
			}
		}
	}))
}

func TestConsumeStreams_StoresStreamedTrades(t *testing.T) {
	closeAt := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	server := newStreamServer(t, tradePayload("77", "EURUSD", closeAt))
	defer server.Close()

	syncer, stores := newSyncFixture(t, &stubBridge{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := stores.Traders.Insert(ctx, &domain.TraderSummary{ID: "t1", UserID: "u1", DisplayName: "T1", Tier: domain.TierGold, Rank: 1}); err != nil {
		t.Fatalf("seed trader: %v", err)
	}
	account := &domain.TradingAccount{ID: "a1", TraderID: "t1", ExternalID: "900123", Currency: "USD", Status: "ACTIVE"}
	if err := stores.Accounts.Insert(ctx, account); err != nil {
		t.Fatalf("seed account: %v", err)
	}

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	stream, err := mt5.NewStreamClient(ctx, wsURL, nil, nil)
	if err != nil {
		t.Fatalf("NewStreamClient failed: %v", err)
	}
	defer stream.Close()

	done := make(chan error, 1)
	go func() {
		done <- syncer.ConsumeStreams(ctx, stream, stores.Traders)
	}()

	// Wait for the streamed trade to land in the store.
	deadline := time.Now().Add(3 * time.Second)
	for {
		trades, err := stores.Trades.ListByAccountIDs(ctx, []string{"a1"}, domain.ClosedTradeQuery{})
		if err != nil {
			t.Fatalf("ListByAccountIDs failed: %v", err)
		}
		if len(trades) == 1 {
			if trades[0].Symbol != "EURUSD" || trades[0].ProfitLoss != 50 {
				t.Errorf("streamed trade mangled: %+v", trades[0])
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("streamed trade never stored")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("ConsumeStreams did not stop on cancel")
	}
}
