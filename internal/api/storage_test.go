package api

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartorder/internal/catalog"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	return NewStorage(catalog.NewRegistry(catalog.Defaults()), nil)
}

func TestListReturnsDetachedCopies(t *testing.T) {
	s := newTestStorage(t)
	s.Seed("marcas", []catalog.Record{{"id_marca": int64(1), "nombre": "Torres"}})

	records, _, ok := s.List("marcas")
	require.True(t, ok)
	records[0]["nombre"] = "mutado"

	again, _, ok := s.List("marcas")
	require.True(t, ok)
	assert.Equal(t, "Torres", catalog.CellString(again[0]["nombre"]))
}

func TestInsertAndUpdateReturnDetachedCopies(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	rec, _, errs := s.Insert(ctx, "marcas", map[string]any{"nombre": "Torres"})
	require.Empty(t, errs)
	rec["nombre"] = "mutado"

	records, _, _ := s.List("marcas")
	assert.Equal(t, "Torres", catalog.CellString(records[0]["nombre"]))

	rec, _, errs = s.UpdateField(ctx, "marcas", "nombre", "Gloria", "id_marca", "1")
	require.Empty(t, errs)
	rec["nombre"] = "mutado"

	records, _, _ = s.List("marcas")
	assert.Equal(t, "Gloria", catalog.CellString(records[0]["nombre"]))
}

// Listed rows are marshalled after the storage lock is released, so reads and
// per-field writes on the same table must never share a map.
func TestConcurrentListAndUpdateField(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	s.Seed("marcas", []catalog.Record{{"id_marca": int64(1), "nombre": "Torres"}})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			records, fields, ok := s.List("marcas")
			assert.True(t, ok)
			_, err := marshalCollection(records, fields)
			assert.NoError(t, err)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			_, _, errs := s.UpdateField(ctx, "marcas", "nombre", "n"+strconv.Itoa(i), "id_marca", "1")
			assert.Empty(t, errs)
		}
	}()
	wg.Wait()
}
