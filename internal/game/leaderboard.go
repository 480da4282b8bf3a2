package game

import (
	"context"

	"github.com/abenezer101/farmrush/internal/identity"
	"github.com/abenezer101/farmrush/internal/models"
	"github.com/abenezer101/farmrush/internal/store"
)

// Leaderboard keeps each player's best-ever score for the instance in a
// sorted set. Stored scores only move up.
type Leaderboard struct {
	store    store.Store
	resolver identity.Resolver
}

// NewLeaderboard creates a Leaderboard over s
func NewLeaderboard(s store.Store, resolver identity.Resolver) *Leaderboard {
	return &Leaderboard{store: s, resolver: resolver}
}

// SubmitScore records score for userID if it beats their stored best.
// Returns whether the stored value changed.
func (b *Leaderboard) SubmitScore(ctx context.Context, instance, userID string, score int) (bool, error) {
	key := leaderboardKey(instance)
	current, _, err := b.store.ZScore(ctx, key, userID)
	if err != nil {
		return false, err
	}
	if float64(score) <= current {
		return false, nil
	}
	if err := b.store.ZAdd(ctx, key, userID, float64(score)); err != nil {
		return false, err
	}
	return true, nil
}

// Best returns userID's stored best score, zero if none
func (b *Leaderboard) Best(ctx context.Context, instance, userID string) (int, error) {
	score, _, err := b.store.ZScore(ctx, leaderboardKey(instance), userID)
	if err != nil {
		return 0, err
	}
	return int(score), nil
}

// Top returns the first n entries ranked by score descending. A name that
// fails to resolve degrades to the anonymized fallback rather than failing
// the whole request.
func (b *Leaderboard) Top(ctx context.Context, instance string, n int) ([]models.LeaderboardEntry, error) {
	if n <= 0 {
		n = LeaderboardSize
	}
	entries, err := b.store.ZRevRange(ctx, leaderboardKey(instance), 0, n-1)
	if err != nil {
		return nil, err
	}
	out := make([]models.LeaderboardEntry, 0, len(entries))
	for i, e := range entries {
		out = append(out, models.LeaderboardEntry{
			Username: identity.ResolveOrFallback(ctx, b.resolver, instance, e.Member),
			Score:    int(e.Score),
			Rank:     i + 1,
		})
	}
	return out, nil
}
