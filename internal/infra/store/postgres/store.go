// Package postgres persists the record store in PostgreSQL using the same
// JSON bucket layout as the sqlite backend. The pgx stdlib driver is used
// so everything goes through database/sql.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"isolateledger/internal/infra/store/memory"
	"isolateledger/pkg/domain"
)

const schema = `CREATE TABLE IF NOT EXISTS collections (
    name TEXT PRIMARY KEY,
    payload JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// sqlOpen is swappable so tests can inject a stub driver.
var sqlOpen = sql.Open

// OverrideSQLOpen replaces the database opener and returns a restore func.
func OverrideSQLOpen(fn func(driverName, dsn string) (*sql.DB, error)) func() {
	prev := sqlOpen
	sqlOpen = fn
	return func() { sqlOpen = prev }
}

// Store is a durable record store backed by PostgreSQL.
type Store struct {
	mem *memory.Store
	db  *sql.DB
}

var _ domain.RecordStore = (*Store)(nil)

type storedRecord struct {
	Key    string         `json:"key"`
	Fields map[string]any `json:"fields"`
}

// Open connects with the given DSN, applies the schema and hydrates the
// in-memory state.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn required")
	}
	db, err := sqlOpen("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	mem := memory.New()
	if err := load(ctx, db, mem); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{mem: mem, db: db}, nil
}

func load(ctx context.Context, db *sql.DB, mem *memory.Store) error {
	rows, err := db.QueryContext(ctx, `SELECT name, payload FROM collections`)
	if err != nil {
		return fmt.Errorf("load collections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	state := make(map[string][]domain.Record)
	for rows.Next() {
		var name string
		var payload []byte
		if err := rows.Scan(&name, &payload); err != nil {
			return fmt.Errorf("scan collection row: %w", err)
		}
		var stored []storedRecord
		if err := json.Unmarshal(payload, &stored); err != nil {
			return fmt.Errorf("decode collection %s: %w", name, err)
		}
		records := make([]domain.Record, 0, len(stored))
		for _, rec := range stored {
			records = append(records, domain.Record{Key: rec.Key, Fields: rec.Fields})
		}
		state[name] = records
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate collections: %w", err)
	}
	return mem.Restore(state)
}

// Subscribe delegates to the in-memory store.
func (s *Store) Subscribe(collection string, fn domain.SnapshotFunc) (domain.CancelFunc, error) {
	return s.mem.Subscribe(collection, fn)
}

// Put inserts a record and persists the collection.
func (s *Store) Put(collection string, fields domain.FieldPatch) (domain.Record, error) {
	rec, err := s.mem.Put(collection, fields)
	if err != nil {
		return domain.Record{}, err
	}
	if err := s.persist(collection); err != nil {
		return domain.Record{}, err
	}
	return rec, nil
}

// Patch applies a partial write and persists the collection.
func (s *Store) Patch(collection, key string, patch domain.FieldPatch) error {
	if err := s.mem.Patch(collection, key, patch); err != nil {
		return err
	}
	return s.persist(collection)
}

// Remove deletes a record and persists the collection.
func (s *Store) Remove(collection, key string) error {
	if err := s.mem.Remove(collection, key); err != nil {
		return err
	}
	return s.persist(collection)
}

// List delegates to the in-memory store.
func (s *Store) List(collection string) ([]domain.Record, error) {
	return s.mem.List(collection)
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) persist(collection string) error {
	records, err := s.mem.List(collection)
	if err != nil {
		return err
	}
	stored := make([]storedRecord, 0, len(records))
	for _, rec := range records {
		stored = append(stored, storedRecord{Key: rec.Key, Fields: rec.Fields})
	}
	payload, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", collection, err)
	}
	_, err = s.db.Exec(`INSERT INTO collections(name, payload, updated_at)
        VALUES($1, $2, now())
        ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = now()`,
		collection, payload)
	if err != nil {
		return fmt.Errorf("persist collection %s: %w", collection, err)
	}
	return nil
}
