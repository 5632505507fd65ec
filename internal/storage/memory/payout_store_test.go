package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"traderank/internal/domain"
	"traderank/internal/storage"
)

func TestPayoutStore_UpsertPreservesCreatedAt(t *testing.T) {
	store := NewPayoutStore()
	ctx := context.Background()

	created := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	first := &domain.PayoutRecord{
		ID:            "p1",
		TraderID:      "t1",
		Level:         domain.PayoutLevelGold,
		PayoutPercent: 95,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	if err := store.Upsert(ctx, first); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	second := &domain.PayoutRecord{
		ID:            "p2", // new ID must not replace the original
		TraderID:      "t1",
		Level:         domain.PayoutLevelSilver,
		PayoutPercent: 80,
		CreatedAt:     created.AddDate(0, 0, 7),
		UpdatedAt:     created.AddDate(0, 0, 7),
	}
	if err := store.Upsert(ctx, second); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := store.GetByTraderID(ctx, "t1")
	if err != nil {
		t.Fatalf("GetByTraderID failed: %v", err)
	}
	if got.Level != domain.PayoutLevelSilver || got.PayoutPercent != 80 {
		t.Errorf("update not applied: %+v", got)
	}
	if got.ID != "p1" {
		t.Errorf("ID = %s, want original p1", got.ID)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want original %v", got.CreatedAt, created)
	}
}

func TestPayoutStore_NotFound(t *testing.T) {
	store := NewPayoutStore()
	if _, err := store.GetByTraderID(context.Background(), "never"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestPayoutStore_InvalidInput(t *testing.T) {
	store := NewPayoutStore()
	ctx := context.Background()

	if err := store.Upsert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil, got %v", err)
	}
	if err := store.Upsert(ctx, &domain.PayoutRecord{TraderID: ""}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty trader ID, got %v", err)
	}
}
