package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"smartorder/internal/notify"
	"smartorder/pkg/logger"
)

// Local precondition errors, raised before any network call.
var (
	ErrNoEditableColumns = errors.New("el catálogo no tiene columnas editables")
	ErrEmptyPayload      = errors.New("complete al menos un campo")
	ErrNoIdentifier      = errors.New("no se pudo resolver la columna identificadora")
	ErrBlankIdentifier   = errors.New("el registro no tiene valor identificador")
)

// Gateway is the slice of the remote data gateway the workflows use.
type Gateway interface {
	Request(ctx context.Context, method, path string, body any) (json.RawMessage, error)
}

// Service runs the catalog workflows: load, create, per-field edit, delete.
// Every successful mutation re-fetches the whole collection; in-memory state
// is never patched in place.
type Service struct {
	gw     Gateway
	toasts *notify.Center
	log    *logger.Logger
}

func NewService(gw Gateway, toasts *notify.Center, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{gw: gw, toasts: toasts, log: log}
}

// Outcome carries the refreshed collection after a workflow. Reloaded is
// false when the workflow ended without touching the backend collection
// (no-op save, precondition failure, declined confirmation).
type Outcome struct {
	Records  []Record
	Schema   Schema
	Reloaded bool
}

func catalogPath(d Descriptor) string {
	return "/parametros/catalogos/" + d.Table
}

// Load fetches the collection and resolves its schema.
func (s *Service) Load(ctx context.Context, d Descriptor) ([]Record, Schema, error) {
	raw, err := s.gw.Request(ctx, http.MethodGet, catalogPath(d), nil)
	if err != nil {
		return nil, Schema{}, err
	}
	records, order, err := DecodeCollection(raw)
	if err != nil {
		return nil, Schema{}, fmt.Errorf("catálogo %s: %w", d.Table, err)
	}
	sch := Resolve(d, records, order)
	s.log.Debugw("catalog loaded", "table", d.Table, "rows", len(records), "id_field", sch.IDField)
	return records, sch, nil
}

// Create posts one new record built from the trimmed non-empty inputs only:
// blank optional fields are omitted, never sent as null or empty string.
// The gateway error is returned so the invoking form can stay open.
func (s *Service) Create(ctx context.Context, d Descriptor, sch Schema, input map[string]string) (Outcome, error) {
	if len(sch.FormFields) == 0 {
		s.pushError(d, ErrNoEditableColumns)
		return Outcome{}, ErrNoEditableColumns
	}
	payload := make(map[string]string, len(input))
	for _, f := range sch.FormFields {
		if v := strings.TrimSpace(input[f]); v != "" {
			payload[f] = v
		}
	}
	if len(payload) == 0 {
		s.pushError(d, ErrEmptyPayload)
		return Outcome{}, ErrEmptyPayload
	}

	if _, err := s.gw.Request(ctx, http.MethodPost, catalogPath(d), payload); err != nil {
		s.pushError(d, err)
		return Outcome{}, err
	}
	s.toasts.Push(notify.Success, d.Label, "registro creado")
	return s.reload(ctx, d)
}

// fieldUpdate is the wire shape of one per-field PUT.
type fieldUpdate struct {
	Campo   string `json:"campo"`
	Valor   string `json:"valor"`
	IDCampo string `json:"id_campo"`
	IDValor string `json:"id_valor"`
}

// deleteRequest identifies the record to remove.
type deleteRequest struct {
	ColumnaID string `json:"columna_id"`
	ValorID   string `json:"valor_id"`
}

// Save applies a pending edit: one PUT per changed field, strictly
// sequential, each awaited before the next is issued. The backend updates
// one column per call and may run per-field recalculation, so concurrent or
// batched submission would break the protocol. A failure mid-sequence aborts
// the remaining fields and leaves the edit unsaved; there is no rollback of
// the fields already applied, and no automatic reload after the failure.
func (s *Service) Save(ctx context.Context, d Descriptor, sch Schema, edit *PendingEdit) (Outcome, error) {
	idValue, err := identifierValue(sch, edit.Original)
	if err != nil {
		s.pushError(d, err)
		return Outcome{}, err
	}

	changes := edit.ChangeSet(sch)
	if len(changes) == 0 {
		s.toasts.Push(notify.Info, d.Label, "sin cambios que guardar")
		return Outcome{}, nil
	}

	for _, ch := range changes {
		body := fieldUpdate{Campo: ch.Field, Valor: ch.Value, IDCampo: sch.IDField, IDValor: idValue}
		if _, err := s.gw.Request(ctx, http.MethodPut, catalogPath(d), body); err != nil {
			s.log.Warnw("edit aborted mid-sequence", "table", d.Table, "field", ch.Field, "id", idValue, "err", err)
			s.pushError(d, err)
			return Outcome{}, err
		}
	}

	s.toasts.Push(notify.Success, d.Label, fmt.Sprintf("%d campo(s) actualizado(s)", len(changes)))
	return s.reload(ctx, d)
}

// Delete removes one record after the confirmation step accepts. Gateway
// failures are surfaced through the toast relay instead of being re-thrown:
// there is no dialog pending to hold the error.
func (s *Service) Delete(ctx context.Context, d Descriptor, sch Schema, rec Record, confirm func(prompt string) bool) Outcome {
	idValue, err := identifierValue(sch, rec)
	if err != nil {
		s.pushError(d, err)
		return Outcome{}
	}
	if confirm == nil || !confirm(fmt.Sprintf("¿Eliminar el registro %s de %s?", idValue, d.Label)) {
		return Outcome{}
	}

	body := deleteRequest{ColumnaID: sch.IDField, ValorID: idValue}
	if _, err := s.gw.Request(ctx, http.MethodDelete, catalogPath(d), body); err != nil {
		s.pushError(d, err)
		return Outcome{}
	}

	s.toasts.Push(notify.Success, d.Label, "registro eliminado")
	out, err := s.reload(ctx, d)
	if err != nil {
		return Outcome{}
	}
	return out
}

func (s *Service) reload(ctx context.Context, d Descriptor) (Outcome, error) {
	records, sch, err := s.Load(ctx, d)
	if err != nil {
		s.pushError(d, err)
		return Outcome{}, err
	}
	return Outcome{Records: records, Schema: sch, Reloaded: true}, nil
}

func (s *Service) pushError(d Descriptor, err error) {
	s.toasts.Push(notify.Error, d.Label, err.Error())
}

func identifierValue(sch Schema, rec Record) (string, error) {
	if sch.IDField == "" {
		return "", ErrNoIdentifier
	}
	v := strings.TrimSpace(CellString(rec[sch.IDField]))
	if v == "" {
		return "", ErrBlankIdentifier
	}
	return v, nil
}
