package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCollectionShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"bare array", `[{"id_marca":1,"nombre":"a"}]`},
		{"data wrapper", `{"data":[{"id_marca":1,"nombre":"a"}]}`},
		{"resultado wrapper", `{"resultado":[{"id_marca":1,"nombre":"a"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, order, err := DecodeCollection([]byte(tt.raw))
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, "a", records[0]["nombre"])
			assert.Equal(t, []string{"id_marca", "nombre"}, order)
		})
	}
}

func TestDecodeCollectionFieldOrder(t *testing.T) {
	// column order must survive decoding even when it is not alphabetical
	raw := `[{"zeta":1,"alfa":2,"id_x":3,"media":null}]`
	_, order, err := DecodeCollection([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alfa", "id_x", "media"}, order)
}

func TestDecodeCollectionEmpty(t *testing.T) {
	records, order, err := DecodeCollection([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Nil(t, order)

	records, order, err = DecodeCollection(nil)
	require.NoError(t, err)
	assert.Nil(t, records)
	assert.Nil(t, order)
}

func TestDecodeCollectionRejectsUnknownShape(t *testing.T) {
	_, _, err := DecodeCollection([]byte(`{"otra":true}`))
	assert.Error(t, err)
}

func TestCellString(t *testing.T) {
	assert.Equal(t, "", CellString(nil))
	assert.Equal(t, "texto", CellString("texto"))
	assert.Equal(t, "42", CellString(float64(42)))
	assert.Equal(t, "3.5", CellString(3.5))
	assert.Equal(t, "true", CellString(true))
}
