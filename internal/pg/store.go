// Package pg is the optional Postgres persistence behind the catalog
// server. Catalog rows are open-shaped, so they live as jsonb in a single
// generic table rather than one DDL-managed table per catalog.
package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"smartorder/internal/catalog"
)

const ddl = `
create table if not exists catalogos (
	seq      bigserial primary key,
	tabla    text not null,
	id_valor text not null,
	datos    jsonb not null,
	unique (tabla, id_valor)
)`

// Store persists catalog records keyed by (tabla, id_valor). seq keeps the
// insertion order the in-memory storage relies on.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (*Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if _, err := db.ExecContext(ctx, ddl); err != nil {
		// tolerate concurrent bootstrap: 42710 duplicate_object
		var pgErr *pgconn.PgError
		if !(errors.As(err, &pgErr) && pgErr.Code == "42710") &&
			!strings.Contains(strings.ToLower(err.Error()), "already exists") {
			return nil, fmt.Errorf("apply catalogos DDL: %w", err)
		}
	}
	return &Store{db: db}, nil
}

func (s *Store) SaveRecord(ctx context.Context, table, idValue string, rec catalog.Record) error {
	datos, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		insert into catalogos (tabla, id_valor, datos)
		values ($1, $2, $3)
		on conflict (tabla, id_valor) do update set datos = excluded.datos`,
		table, idValue, datos)
	if err != nil {
		return fmt.Errorf("save %s/%s: %w", table, idValue, err)
	}
	return nil
}

func (s *Store) DeleteRecord(ctx context.Context, table, idValue string) error {
	_, err := s.db.ExecContext(ctx,
		`delete from catalogos where tabla = $1 and id_valor = $2`, table, idValue)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", table, idValue, err)
	}
	return nil
}

// LoadAll returns every persisted record grouped by table, in insertion
// order within each table.
func (s *Store) LoadAll(ctx context.Context) (map[string][]catalog.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`select tabla, datos from catalogos order by tabla, seq`)
	if err != nil {
		return nil, fmt.Errorf("load catalogos: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]catalog.Record)
	for rows.Next() {
		var tabla string
		var datos []byte
		if err := rows.Scan(&tabla, &datos); err != nil {
			return nil, err
		}
		var rec catalog.Record
		if err := json.Unmarshal(datos, &rec); err != nil {
			return nil, fmt.Errorf("decode record of %s: %w", tabla, err)
		}
		out[tabla] = append(out[tabla], rec)
	}
	return out, rows.Err()
}
