package api

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"smartorder/internal/catalog"
	"smartorder/pkg/logger"
)

// FieldError is one validation problem, reported as a list in error bodies.
type FieldError struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

const (
	ErrUnknownField    = "unknown_field"
	ErrIdentifierField = "identifier_field"
	ErrNotFound        = "not_found"
	ErrDuplicateID     = "duplicate_id"
	ErrRequired        = "required"
)

func ferr(code, field, msg string) FieldError {
	return FieldError{Code: code, Field: field, Message: msg}
}

// Persister is the optional write-through backing store.
type Persister interface {
	SaveRecord(ctx context.Context, table, idValue string, rec catalog.Record) error
	DeleteRecord(ctx context.Context, table, idValue string) error
	LoadAll(ctx context.Context) (map[string][]catalog.Record, error)
}

// table holds one catalog's rows in insertion order plus its resolved shape.
type table struct {
	desc    catalog.Descriptor
	schema  catalog.Schema
	records []catalog.Record
	nextID  int64
}

// Storage keeps every catalog in memory behind one RWMutex. Each table's
// column set and identifier come from its descriptor's declared fields;
// identifiers are assigned sequentially on insert.
type Storage struct {
	mu     sync.RWMutex
	tables map[string]*table
	pers   Persister
	log    *logger.Logger
}

func NewStorage(reg *catalog.Registry, log *logger.Logger) *Storage {
	if log == nil {
		log = logger.Nop()
	}
	s := &Storage{tables: make(map[string]*table), log: log}
	for _, d := range reg.Tables() {
		s.tables[d.Table] = &table{
			desc:   d,
			schema: catalog.Resolve(d, nil, nil),
			nextID: 1,
		}
	}
	return s
}

// WithPersister attaches a backing store and loads its contents.
func (s *Storage) WithPersister(ctx context.Context, p Persister) error {
	data, err := p.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load persisted catalogs: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pers = p
	for name, records := range data {
		t, ok := s.tables[name]
		if !ok {
			s.log.Warnw("persisted rows for unknown catalog", "table", name, "rows", len(records))
			continue
		}
		t.records = records
		t.nextID = nextIdentifier(t.schema.IDField, records)
	}
	return nil
}

// nextIdentifier is one past the highest numeric identifier seen.
func nextIdentifier(idField string, records []catalog.Record) int64 {
	var max int64
	for _, rec := range records {
		if n, err := strconv.ParseInt(strings.TrimSpace(catalog.CellString(rec[idField])), 10, 64); err == nil && n > max {
			max = n
		}
	}
	return max + 1
}

// cloneRecord detaches a row from the table: handlers marshal after the lock
// is released, so they must never see the live map a later write mutates.
func cloneRecord(rec catalog.Record) catalog.Record {
	out := make(catalog.Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

// Descriptor returns the static configuration of one catalog.
func (s *Storage) Descriptor(name string) (catalog.Descriptor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[name]
	if !ok {
		return catalog.Descriptor{}, false
	}
	return t.desc, true
}

// List returns detached copies of the rows plus the table's column order.
func (s *Storage) List(name string) ([]catalog.Record, []string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[name]
	if !ok {
		return nil, nil, false
	}
	out := make([]catalog.Record, len(t.records))
	for i, rec := range t.records {
		out[i] = cloneRecord(rec)
	}
	return out, t.schema.AllFields, true
}

// Insert validates the fields, assigns the next identifier and appends the
// record. Unknown columns are rejected rather than silently stored.
func (s *Storage) Insert(ctx context.Context, name string, fields map[string]any) (catalog.Record, []string, []FieldError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[name]
	if !ok {
		return nil, nil, []FieldError{ferr(ErrNotFound, "tabla", "catálogo no encontrado")}
	}

	var errs []FieldError
	if len(fields) == 0 {
		errs = append(errs, ferr(ErrRequired, "", "complete al menos un campo"))
	}
	for k := range fields {
		if k == t.schema.IDField {
			errs = append(errs, ferr(ErrIdentifierField, k, "la columna identificadora la asigna el servidor"))
			continue
		}
		if !contains(t.schema.AllFields, k) {
			errs = append(errs, ferr(ErrUnknownField, k, fmt.Sprintf("columna desconocida %q", k)))
		}
	}
	if len(errs) > 0 {
		return nil, nil, errs
	}

	rec := make(catalog.Record, len(fields)+1)
	for k, v := range fields {
		rec[k] = v
	}
	rec[t.schema.IDField] = t.nextID
	t.nextID++
	t.records = append(t.records, rec)

	s.persistLocked(ctx, name, rec, t.schema.IDField)
	return cloneRecord(rec), t.schema.AllFields, nil
}

// UpdateField sets exactly one column of exactly one record.
func (s *Storage) UpdateField(ctx context.Context, name, campo string, valor any, idCampo, idValor string) (catalog.Record, []string, []FieldError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[name]
	if !ok {
		return nil, nil, []FieldError{ferr(ErrNotFound, "tabla", "catálogo no encontrado")}
	}
	if errs := s.checkIdentifier(t, idCampo, idValor); len(errs) > 0 {
		return nil, nil, errs
	}
	if strings.TrimSpace(campo) == "" {
		return nil, nil, []FieldError{ferr(ErrRequired, "campo", "campo requerido")}
	}
	if campo == t.schema.IDField {
		return nil, nil, []FieldError{ferr(ErrIdentifierField, campo, "la columna identificadora no es editable")}
	}
	if !contains(t.schema.AllFields, campo) {
		return nil, nil, []FieldError{ferr(ErrUnknownField, campo, fmt.Sprintf("columna desconocida %q", campo))}
	}

	rec := findRecord(t, idCampo, idValor)
	if rec == nil {
		return nil, nil, []FieldError{ferr(ErrNotFound, idCampo, "registro no encontrado")}
	}
	rec[campo] = valor

	s.persistLocked(ctx, name, rec, t.schema.IDField)
	return cloneRecord(rec), t.schema.AllFields, nil
}

// Delete removes exactly one record identified by column/value.
func (s *Storage) Delete(ctx context.Context, name, idCampo, idValor string) []FieldError {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[name]
	if !ok {
		return []FieldError{ferr(ErrNotFound, "tabla", "catálogo no encontrado")}
	}
	if errs := s.checkIdentifier(t, idCampo, idValor); len(errs) > 0 {
		return errs
	}

	for i, rec := range t.records {
		if catalog.CellString(rec[idCampo]) == idValor {
			t.records = append(t.records[:i], t.records[i+1:]...)
			if s.pers != nil {
				if err := s.pers.DeleteRecord(ctx, name, idValor); err != nil {
					s.log.Errorw("persist delete failed", "table", name, "id", idValor, "err", err)
				}
			}
			return nil
		}
	}
	return []FieldError{ferr(ErrNotFound, idCampo, "registro no encontrado")}
}

// Seed inserts records as-is, keeping their identifiers. Used by tests and
// by the dev server's fixture loading.
func (s *Storage) Seed(name string, records []catalog.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[name]
	if !ok {
		return
	}
	t.records = append(t.records, records...)
	t.nextID = nextIdentifier(t.schema.IDField, t.records)
}

func (s *Storage) checkIdentifier(t *table, idCampo, idValor string) []FieldError {
	var errs []FieldError
	if strings.TrimSpace(idCampo) == "" {
		errs = append(errs, ferr(ErrRequired, "id_campo", "columna identificadora requerida"))
	} else if idCampo != t.schema.IDField {
		errs = append(errs, ferr(ErrUnknownField, idCampo, fmt.Sprintf("la columna identificadora de %s es %q", t.desc.Table, t.schema.IDField)))
	}
	if strings.TrimSpace(idValor) == "" {
		errs = append(errs, ferr(ErrRequired, "id_valor", "valor identificador requerido"))
	}
	return errs
}

func findRecord(t *table, idCampo, idValor string) catalog.Record {
	for _, rec := range t.records {
		if catalog.CellString(rec[idCampo]) == idValor {
			return rec
		}
	}
	return nil
}

// persistLocked write-through; persistence failures are logged, the
// in-memory mutation stands.
func (s *Storage) persistLocked(ctx context.Context, name string, rec catalog.Record, idField string) {
	if s.pers == nil {
		return
	}
	if err := s.pers.SaveRecord(ctx, name, catalog.CellString(rec[idField]), rec); err != nil {
		s.log.Errorw("persist save failed", "table", name, "err", err)
	}
}

func contains(fields []string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}
