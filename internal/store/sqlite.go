package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite is a durable Store backend. A single connection keeps every
// operation serialized, which is plenty for one game instance per post.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the store database at path
func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db, now: time.Now}, nil
}

func initPragmas(db *sql.DB) error {
	// WAL suits the small frequent writes of position/harvest traffic.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS hashes (
			key TEXT NOT NULL,
			field TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (key, field)
		);`,
		`CREATE TABLE IF NOT EXISTS zsets (
			key TEXT NOT NULL,
			member TEXT NOT NULL,
			score REAL NOT NULL,
			PRIMARY KEY (key, member)
		);`,
		`CREATE TABLE IF NOT EXISTS expirations (
			key TEXT PRIMARY KEY,
			expires_at INTEGER NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// purge drops key if its TTL has passed
func (s *SQLite) purge(ctx context.Context, key string) error {
	var expiresAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT expires_at FROM expirations WHERE key = ?`, key).Scan(&expiresAt)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}
	if s.now().UnixMilli() < expiresAt {
		return nil
	}
	for _, q := range []string{
		`DELETE FROM hashes WHERE key = ?`,
		`DELETE FROM zsets WHERE key = ?`,
		`DELETE FROM expirations WHERE key = ?`,
	} {
		if _, err := s.db.ExecContext(ctx, q, key); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) HSet(ctx context.Context, key string, fields map[string]string) error {
	if err := s.purge(ctx, key); err != nil {
		return err
	}
	for f, v := range fields {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO hashes (key, field, value) VALUES (?, ?, ?)
			 ON CONFLICT (key, field) DO UPDATE SET value = excluded.value`,
			key, f, v)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) HGet(ctx context.Context, key, field string) (string, bool, error) {
	if err := s.purge(ctx, key); err != nil {
		return "", false, err
	}
	var v string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM hashes WHERE key = ? AND field = ?`, key, field).Scan(&v)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *SQLite) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if err := s.purge(ctx, key); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT field, value FROM hashes WHERE key = ?`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var f, v string
		if err := rows.Scan(&f, &v); err != nil {
			return nil, err
		}
		out[f] = v
	}
	return out, rows.Err()
}

func (s *SQLite) HDel(ctx context.Context, key string, fields ...string) error {
	if err := s.purge(ctx, key); err != nil {
		return err
	}
	for _, f := range fields {
		if _, err := s.db.ExecContext(ctx,
			`DELETE FROM hashes WHERE key = ? AND field = ?`, key, f); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) Del(ctx context.Context, key string) error {
	for _, q := range []string{
		`DELETE FROM hashes WHERE key = ?`,
		`DELETE FROM zsets WHERE key = ?`,
		`DELETE FROM expirations WHERE key = ?`,
	} {
		if _, err := s.db.ExecContext(ctx, q, key); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := s.purge(ctx, key); err != nil {
		return err
	}
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM hashes WHERE key = ? UNION SELECT 1 FROM zsets WHERE key = ? LIMIT 1`,
		key, key).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO expirations (key, expires_at) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET expires_at = excluded.expires_at`,
		key, s.now().Add(ttl).UnixMilli())
	return err
}

func (s *SQLite) ZAdd(ctx context.Context, key, member string, score float64) error {
	if err := s.purge(ctx, key); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO zsets (key, member, score) VALUES (?, ?, ?)
		 ON CONFLICT (key, member) DO UPDATE SET score = excluded.score`,
		key, member, score)
	return err
}

func (s *SQLite) ZScore(ctx context.Context, key, member string) (float64, bool, error) {
	if err := s.purge(ctx, key); err != nil {
		return 0, false, err
	}
	var score float64
	err := s.db.QueryRowContext(ctx,
		`SELECT score FROM zsets WHERE key = ? AND member = ?`, key, member).Scan(&score)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return score, true, nil
}

func (s *SQLite) ZRevRange(ctx context.Context, key string, start, stop int) ([]ZEntry, error) {
	if err := s.purge(ctx, key); err != nil {
		return nil, err
	}
	if start < 0 {
		start = 0
	}
	limit := -1
	if stop >= 0 {
		if stop < start {
			return nil, nil
		}
		limit = stop - start + 1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT member, score FROM zsets WHERE key = ?
		 ORDER BY score DESC, member ASC LIMIT ? OFFSET ?`,
		key, limit, start)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ZEntry
	for rows.Next() {
		var e ZEntry
		if err := rows.Scan(&e.Member, &e.Score); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
