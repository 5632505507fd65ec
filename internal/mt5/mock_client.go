package mt5

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"
)

// MockClient serves deterministic bridge data without a live connection.
// The same login always yields the same account and trade history, which
// keeps local development and tests reproducible.
type MockClient struct {
	now func() time.Time
}

// NewMockClient creates a mock bridge client.
func NewMockClient() *MockClient {
	return &MockClient{now: time.Now}
}

// Compile-time interface check.
var _ Client = (*MockClient)(nil)

// Account returns a deterministic account document for the login.
func (c *MockClient) Account(_ context.Context, login string) (*AccountPayload, error) {
	seed := loginSeed(login)
	return &AccountPayload{
		AccountID: login,
		Balance:   10000 + float64(seed%40)*250,
		Leverage:  100,
		Currency:  "USD",
		Status:    "ACTIVE",
	}, nil
}

// ClosedTrades returns a deterministic trade history: one to three trades
// per weekday over the requested window, alternating wins and losses with
// a positive expectancy.
func (c *MockClient) ClosedTrades(_ context.Context, login string, from, to time.Time) ([]*TradePayload, error) {
	seed := loginSeed(login)
	symbols := []string{"EURUSD", "GBPUSD", "XAUUSD", "US500"}

	var trades []*TradePayload
	ticket := seed * 1000
	for day := from.UTC().Truncate(24 * time.Hour); !day.After(to); day = day.AddDate(0, 0, 1) {
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}

		perDay := int(seed+uint64(day.YearDay()))%3 + 1
		for i := 0; i < perDay; i++ {
			ticket++
			closeAt := day.Add(time.Duration(9+i*3) * time.Hour)
			if closeAt.After(to) {
				continue
			}

			profit := 120.0
			if (int(seed)+day.YearDay()+i)%3 == 0 {
				profit = -60.0
			}

			trades = append(trades, &TradePayload{
				Ticket:     fmt.Sprintf("%d", ticket),
				Symbol:     symbols[(int(seed)+i)%len(symbols)],
				Volume:     0.1 + float64(i)*0.05,
				OpenPrice:  1.08 + float64(i)*0.001,
				ClosePrice: 1.081 + float64(i)*0.001,
				Profit:     profit,
				Commission: 2.5,
				Swap:       0.5,
				OpenTime:   closeAt.Add(-2 * time.Hour).UnixMilli(),
				CloseTime:  closeAt.UnixMilli(),
			})
		}
	}
	return trades, nil
}

func loginSeed(login string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(login))
	return h.Sum64()%97 + 1
}
