// Package repository archives encoded game snapshots. The engine treats the
// payload as opaque bytes.
package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/config"
)

// ErrNotFound is returned when a game has no archived snapshot.
var ErrNotFound = errors.New("snapshot not found")

// Record is one archived snapshot.
type Record struct {
	GameID    string
	Seq       int
	State     string
	Data      []byte
	CreatedAt time.Time
}

// SnapshotStore saves and reads archived snapshots.
type SnapshotStore interface {
	Save(ctx context.Context, gameID string, seq int, state string, data []byte) error
	Latest(ctx context.Context, gameID string) (Record, error)
	History(ctx context.Context, gameID string) ([]Record, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS game_snapshots (
	game_id    TEXT        NOT NULL,
	seq        INTEGER     NOT NULL,
	state      TEXT        NOT NULL,
	data       JSONB       NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (game_id, seq)
)`

// PostgresStore keeps snapshots in the game_snapshots table.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresStore connects to cfg.URL and creates the table if needed.
func NewPostgresStore(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	stats := pool.Stat()
	logger.Info("snapshot store connected",
		zap.Int32("max_conns", stats.MaxConns()),
		zap.Int32("total_conns", stats.TotalConns()),
	)
	return &PostgresStore{pool: pool, logger: logger}, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Save upserts the snapshot numbered seq of gameID.
func (s *PostgresStore) Save(ctx context.Context, gameID string, seq int, state string, data []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO game_snapshots (game_id, seq, state, data)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (game_id, seq) DO UPDATE
		SET state = EXCLUDED.state, data = EXCLUDED.data, created_at = now()
	`, gameID, seq, state, data)
	if err != nil {
		return fmt.Errorf("failed to save snapshot %s/%d: %w", gameID, seq, err)
	}
	return nil
}

// Latest returns the highest numbered snapshot of gameID.
func (s *PostgresStore) Latest(ctx context.Context, gameID string) (Record, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT game_id, seq, state, data, created_at
		FROM game_snapshots
		WHERE game_id = $1
		ORDER BY seq DESC
		LIMIT 1
	`, gameID)

	var r Record
	if err := row.Scan(&r.GameID, &r.Seq, &r.State, &r.Data, &r.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, fmt.Errorf("game %s: %w", gameID, ErrNotFound)
		}
		return Record{}, fmt.Errorf("failed to load snapshot of %s: %w", gameID, err)
	}
	return r, nil
}

// History returns every snapshot of gameID in order.
func (s *PostgresStore) History(ctx context.Context, gameID string) ([]Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT game_id, seq, state, data, created_at
		FROM game_snapshots
		WHERE game_id = $1
		ORDER BY seq
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history of %s: %w", gameID, err)
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Record, error) {
		var r Record
		err := row.Scan(&r.GameID, &r.Seq, &r.State, &r.Data, &r.CreatedAt)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read history of %s: %w", gameID, err)
	}
	return records, nil
}

// MemoryStore is an in-process SnapshotStore.
type MemoryStore struct {
	mu    sync.RWMutex
	games map[string]map[int]Record
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{games: make(map[string]map[int]Record)}
}

func (s *MemoryStore) Save(_ context.Context, gameID string, seq int, state string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, ok := s.games[gameID]
	if !ok {
		records = make(map[int]Record)
		s.games[gameID] = records
	}
	records[seq] = Record{
		GameID:    gameID,
		Seq:       seq,
		State:     state,
		Data:      append([]byte(nil), data...),
		CreatedAt: time.Now(),
	}
	return nil
}

func (s *MemoryStore) Latest(ctx context.Context, gameID string) (Record, error) {
	history, err := s.History(ctx, gameID)
	if err != nil {
		return Record{}, err
	}
	return history[len(history)-1], nil
}

func (s *MemoryStore) History(_ context.Context, gameID string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.games[gameID]
	if len(records) == 0 {
		return nil, fmt.Errorf("game %s: %w", gameID, ErrNotFound)
	}
	out := make([]Record, 0, len(records))
	for _, r := range records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}
