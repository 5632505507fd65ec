// Package idhash derives deterministic record IDs from domain keys.
// IDs are the first 16 bytes of a SHA256 over the pipe-joined key fields,
// base58-encoded. Re-ingesting the same upstream data always produces the
// same IDs, which makes inserts naturally idempotent under duplicate-key
// checks.
package idhash

import (
	"crypto/sha256"
	"fmt"

	"github.com/mr-tron/base58"
)

func encode(data string) string {
	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:16])
}

// ComputePayoutID computes a deterministic payout record ID.
// Formula: SHA256("payout|" + trader_id), truncated and base58-encoded.
func ComputePayoutID(traderID string) string {
	return encode(fmt.Sprintf("payout|%s", traderID))
}

// ComputeTradeID computes a deterministic closed-trade ID.
// Formula: SHA256(account_id|symbol|close_time_ms|external_ticket).
func ComputeTradeID(accountID, symbol string, closeTimeMs int64, externalTicket string) string {
	return encode(fmt.Sprintf("%s|%s|%d|%s", accountID, symbol, closeTimeMs, externalTicket))
}

// ComputeAccountID computes a deterministic trading-account ID.
// Formula: SHA256("account|" + trader_id + "|" + broker_login).
func ComputeAccountID(traderID, login string) string {
	return encode(fmt.Sprintf("account|%s|%s", traderID, login))
}

// ComputeEntitlementID computes a deterministic entitlement ID.
// Formula: SHA256(trader_id|reward_type|granted_at_ms).
func ComputeEntitlementID(traderID, rewardType string, grantedAtMs int64) string {
	return encode(fmt.Sprintf("%s|%s|%d", traderID, rewardType, grantedAtMs))
}

// ComputeSnapshotID computes a deterministic snapshot run ID.
// Formula: SHA256("snapshot|" + run_key).
func ComputeSnapshotID(runKey string) string {
	return encode(fmt.Sprintf("snapshot|%s", runKey))
}
