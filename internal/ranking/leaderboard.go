package ranking

import (
	"context"
	"errors"

	"traderank/internal/domain"
	"traderank/internal/observability"
	"traderank/internal/resolution"
	"traderank/internal/storage"
)

// Leaderboard pagination bounds.
const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// LeaderboardPage is one page of the public leaderboard.
type LeaderboardPage struct {
	Traders []*domain.TraderSummary
	Total   int
	Page    int
	Limit   int
	Source  string
}

type leaderboardData struct {
	traders []*domain.TraderSummary
	total   int
}

// Leaderboard serves a ranked trader listing with optional tier filter.
// Sources are tried in order: latest snapshot run, the trader table, and
// finally the static dataset. An empty source is a miss, not a result.
func (s *Service) Leaderboard(ctx context.Context, page, limit int, tier domain.Tier) (*LeaderboardPage, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if tier != "" && !tier.Valid() {
		return nil, storage.ErrInvalidInput
	}

	query := storage.TraderQuery{
		Tier:   tier,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	chain := resolution.NewChain(s.logger,
		resolution.Source[leaderboardData]{
			Name: "snapshot",
			Fetch: func(ctx context.Context) (leaderboardData, bool, error) {
				return s.leaderboardFromSnapshot(ctx, query)
			},
		},
		resolution.Source[leaderboardData]{
			Name: "database",
			Fetch: func(ctx context.Context) (leaderboardData, bool, error) {
				traders, total, err := s.stores.Traders.List(ctx, query)
				if err != nil {
					return leaderboardData{}, false, err
				}
				return leaderboardData{traders: traders, total: total}, len(traders) > 0, nil
			},
		},
		resolution.Source[leaderboardData]{
			Name: "static",
			Fetch: func(ctx context.Context) (leaderboardData, bool, error) {
				return staticLeaderboard(query), true, nil
			},
		},
	)

	res := chain.Resolve(ctx)
	observability.RecordLeaderboardQuery()
	observability.RecordResolution(res.Source)

	return &LeaderboardPage{
		Traders: res.Value.traders,
		Total:   res.Value.total,
		Page:    page,
		Limit:   limit,
		Source:  res.Source,
	}, nil
}

func (s *Service) leaderboardFromSnapshot(ctx context.Context, q storage.TraderQuery) (leaderboardData, bool, error) {
	snapshotID, err := s.latestSnapshotID(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return leaderboardData{}, false, nil
	}
	if err != nil {
		return leaderboardData{}, false, err
	}

	rows, total, err := s.stores.Snapshots.ListByRun(ctx, snapshotID, q)
	if errors.Is(err, storage.ErrNotFound) {
		return leaderboardData{}, false, nil
	}
	if err != nil {
		return leaderboardData{}, false, err
	}
	if len(rows) == 0 {
		return leaderboardData{}, false, nil
	}

	traders := make([]*domain.TraderSummary, 0, len(rows))
	for _, row := range rows {
		traders = append(traders, snapshotToSummary(row))
	}
	return leaderboardData{traders: traders, total: total}, true, nil
}

// snapshotToSummary maps a snapshot row into a leaderboard entry.
func snapshotToSummary(row *domain.TraderSnapshot) *domain.TraderSummary {
	return &domain.TraderSummary{
		ID:          row.TraderID,
		DisplayName: row.DisplayName,
		Score:       row.Score,
		Tier:        row.Tier,
		Rank:        row.Rank,
	}
}

func staticLeaderboard(q storage.TraderQuery) leaderboardData {
	var matched []*domain.TraderSummary
	for _, t := range mockTraders() {
		if q.Tier != "" && t.Tier != q.Tier {
			continue
		}
		matched = append(matched, t)
	}

	total := len(matched)
	if q.Offset >= total {
		return leaderboardData{traders: nil, total: total}
	}
	end := total
	if q.Limit > 0 && q.Offset+q.Limit < end {
		end = q.Offset + q.Limit
	}
	return leaderboardData{traders: matched[q.Offset:end], total: total}
}
