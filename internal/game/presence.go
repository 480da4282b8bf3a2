package game

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"strconv"
	"time"

	"github.com/abenezer101/farmrush/internal/identity"
	"github.com/abenezer101/farmrush/internal/models"
	"github.com/abenezer101/farmrush/internal/store"
)

// Presence tracks live players as soft state: every position push upserts
// the player's entry and refreshes its TTL, and absence of pushes is the
// leave signal. No explicit disconnect exists.
type Presence struct {
	store    store.Store
	resolver identity.Resolver
	ttl      time.Duration
	now      func() time.Time
}

// NewPresence creates a Presence over s. ttl <= 0 falls back to PresenceTTL.
func NewPresence(s store.Store, resolver identity.Resolver, ttl time.Duration) *Presence {
	if ttl <= 0 {
		ttl = PresenceTTL
	}
	return &Presence{store: s, resolver: resolver, ttl: ttl, now: time.Now}
}

// indexEntry is the JSON stored per player in the active-players index hash
type indexEntry struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Rotation   float64 `json:"rotation"`
	CornCount  int     `json:"cornCount"`
	LastUpdate int64   `json:"lastUpdate"`
}

// Publish upserts the caller's presence entry and refreshes both the
// per-player key and the shared index to the presence TTL
func (p *Presence) Publish(ctx context.Context, instance, userID string, x, y, rotation float64, cornCount int) error {
	now := p.now()

	key := playerKey(instance, userID)
	err := p.store.HSet(ctx, key, map[string]string{
		"x":          strconv.FormatFloat(x, 'f', -1, 64),
		"y":          strconv.FormatFloat(y, 'f', -1, 64),
		"rotation":   strconv.FormatFloat(rotation, 'f', -1, 64),
		"cornCount":  strconv.Itoa(cornCount),
		"lastUpdate": strconv.FormatInt(now.UnixMilli(), 10),
	})
	if err != nil {
		return err
	}
	if err := p.store.Expire(ctx, key, p.ttl); err != nil {
		return err
	}

	raw, err := json.Marshal(indexEntry{
		X:          x,
		Y:          y,
		Rotation:   rotation,
		CornCount:  cornCount,
		LastUpdate: now.UnixMilli(),
	})
	if err != nil {
		return err
	}
	idx := activeKey(instance)
	if err := p.store.HSet(ctx, idx, map[string]string{userID: string(raw)}); err != nil {
		return err
	}
	return p.store.Expire(ctx, idx, p.ttl)
}

// Active returns a snapshot of live players other than selfID. The index
// hash shares one TTL refreshed by any publisher, so individual staleness
// is enforced here: entries older than the TTL are dropped.
func (p *Presence) Active(ctx context.Context, instance, selfID string) ([]models.ActivePlayer, error) {
	rec, err := p.store.HGetAll(ctx, activeKey(instance))
	if err != nil {
		return nil, err
	}
	cutoff := p.now().Add(-p.ttl).UnixMilli()

	players := make([]models.ActivePlayer, 0, len(rec))
	for userID, raw := range rec {
		if userID == selfID {
			continue
		}
		var e indexEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			log.Printf("presence: dropping unreadable entry for %s: %v", userID, err)
			continue
		}
		if e.LastUpdate < cutoff {
			continue
		}
		players = append(players, models.ActivePlayer{
			UserID:    userID,
			Username:  identity.ResolveOrFallback(ctx, p.resolver, instance, userID),
			X:         e.X,
			Y:         e.Y,
			Rotation:  e.Rotation,
			CornCount: e.CornCount,
		})
	}
	sort.Slice(players, func(i, j int) bool { return players[i].UserID < players[j].UserID })
	return players, nil
}
