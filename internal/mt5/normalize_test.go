package mt5

import (
	"testing"
	"time"
)

func TestNormalizeAccount(t *testing.T) {
	payload := &AccountPayload{
		AccountID: "12345",
		Balance:   10000.12345,
		Leverage:  0,
		Currency:  "usd",
		Status:    "active",
	}

	acct := NormalizeAccount("acct-1", "trader-1", payload)

	if acct.ID != "acct-1" {
		t.Errorf("ID = %s, want acct-1", acct.ID)
	}
	if acct.TraderID != "trader-1" {
		t.Errorf("TraderID = %s, want trader-1", acct.TraderID)
	}
	if acct.ExternalID != "12345" {
		t.Errorf("ExternalID = %s, want 12345", acct.ExternalID)
	}
	if acct.Balance != 10000.12 {
		t.Errorf("Balance = %f, want 10000.12", acct.Balance)
	}
	if acct.Leverage != 100 {
		t.Errorf("Leverage = %d, want default 100", acct.Leverage)
	}
	if acct.Currency != "USD" {
		t.Errorf("Currency = %s, want USD", acct.Currency)
	}
	if acct.Status != "ACTIVE" {
		t.Errorf("Status = %s, want ACTIVE", acct.Status)
	}
}

func TestNormalizeTrade(t *testing.T) {
	closeAt := time.Date(2025, 6, 10, 14, 30, 0, 0, time.UTC)
	payload := &TradePayload{
		Ticket:     "777",
		Symbol:     " eurusd ",
		Profit:     120.456,
		Commission: 2.5,
		Swap:       0.5,
		OpenTime:   closeAt.Add(-2 * time.Hour).UnixMilli(),
		CloseTime:  closeAt.UnixMilli(),
	}

	trade := NormalizeTrade("acct-1", payload)

	if trade.Symbol != "EURUSD" {
		t.Errorf("Symbol = %s, want EURUSD", trade.Symbol)
	}
	if trade.ProfitLoss != 120.46 {
		t.Errorf("ProfitLoss = %f, want 120.46", trade.ProfitLoss)
	}
	if trade.Fees != 3.0 {
		t.Errorf("Fees = %f, want 3.0", trade.Fees)
	}
	if !trade.CloseTime.Equal(closeAt) {
		t.Errorf("CloseTime = %v, want %v", trade.CloseTime, closeAt)
	}
	if trade.CloseTime.Location() != time.UTC {
		t.Error("CloseTime should be in UTC")
	}
	if trade.ID == "" {
		t.Error("trade ID should not be empty")
	}

	// Same payload, same ID.
	again := NormalizeTrade("acct-1", payload)
	if again.ID != trade.ID {
		t.Errorf("IDs differ for identical payload: %s vs %s", trade.ID, again.ID)
	}

	// Different account, different ID.
	other := NormalizeTrade("acct-2", payload)
	if other.ID == trade.ID {
		t.Error("IDs should differ across accounts")
	}
}

func TestNormalizeTrades(t *testing.T) {
	payloads := []*TradePayload{
		{Ticket: "1", Symbol: "EURUSD", Profit: 10, CloseTime: time.Now().UnixMilli()},
		{Ticket: "2", Symbol: "GBPUSD", Profit: -5, CloseTime: time.Now().UnixMilli()},
	}

	trades := NormalizeTrades("acct-1", payloads)
	if len(trades) != 2 {
		t.Fatalf("got %d trades, want 2", len(trades))
	}
	if trades[0].ID == trades[1].ID {
		t.Error("trade IDs should be distinct")
	}
}

func TestNormalizeTrades_DropsInvalid(t *testing.T) {
	payloads := []*TradePayload{
		{Ticket: "1", Symbol: "EURUSD", CloseTime: time.Now().UnixMilli()},
		nil,
		{Ticket: "2", Symbol: "", CloseTime: time.Now().UnixMilli()},
		{Ticket: "3", Symbol: "GBPUSD", CloseTime: 0},
	}

	trades := NormalizeTrades("acct-1", payloads)
	if len(trades) != 1 {
		t.Fatalf("got %d trades, want 1 (invalid dropped)", len(trades))
	}
	if trades[0].Symbol != "EURUSD" {
		t.Errorf("surviving trade = %+v, want the EURUSD one", trades[0])
	}
}

func TestValidTrade(t *testing.T) {
	now := time.Now().UnixMilli()

	if ValidTrade(nil) {
		t.Error("nil payload should be invalid")
	}
	if ValidTrade(&TradePayload{Ticket: "1", CloseTime: now}) {
		t.Error("missing symbol should be invalid")
	}
	if ValidTrade(&TradePayload{Ticket: "1", Symbol: "EURUSD"}) {
		t.Error("missing close time should be invalid")
	}
	if !ValidTrade(&TradePayload{Ticket: "1", Symbol: "EURUSD", CloseTime: now}) {
		t.Error("complete payload should be valid")
	}
}
