package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChangeSetMinimal(t *testing.T) {
	sch := testSchema()
	original := Record{"id_marca": 1, "nombre": "Torres", "nota": "x"}

	edit := NewPendingEdit(sch, original)
	edit.Set("nombre", "Torres e Hijos")

	changes := edit.ChangeSet(sch)
	assert.Equal(t, []FieldChange{{Field: "nombre", Value: "Torres e Hijos"}}, changes)
}

func TestChangeSetEmptyWhenUntouched(t *testing.T) {
	sch := testSchema()
	original := Record{"id_marca": 1, "nombre": "Torres", "nota": nil}

	edit := NewPendingEdit(sch, original)
	assert.Empty(t, edit.ChangeSet(sch))
}

func TestChangeSetComparesStringRepresentations(t *testing.T) {
	sch := testSchema()
	// JSON numbers arrive as float64; typing the same number back must not
	// register as a change
	original := Record{"id_marca": 1, "nombre": "Torres", "nota": float64(5)}

	edit := NewPendingEdit(sch, original)
	edit.Set("nota", "5")
	assert.Empty(t, edit.ChangeSet(sch))

	edit.Set("nota", "6")
	assert.Equal(t, []FieldChange{{Field: "nota", Value: "6"}}, edit.ChangeSet(sch))
}

func TestChangeSetFollowsFormFieldOrder(t *testing.T) {
	sch := testSchema()
	original := Record{"id_marca": 1, "nombre": "a", "nota": "b"}

	edit := NewPendingEdit(sch, original)
	edit.Set("nota", "b2")
	edit.Set("nombre", "a2")

	changes := edit.ChangeSet(sch)
	assert.Equal(t, "nombre", changes[0].Field)
	assert.Equal(t, "nota", changes[1].Field)
}

func TestNewPendingEditSeedsNilAsEmpty(t *testing.T) {
	sch := testSchema()
	edit := NewPendingEdit(sch, Record{"id_marca": 1, "nombre": "a", "nota": nil})
	assert.Equal(t, "", edit.Values["nota"])
}

func TestChangeSetCanClearAFieldToBlank(t *testing.T) {
	sch := testSchema()
	edit := NewPendingEdit(sch, Record{"id_marca": 1, "nombre": "a", "nota": "b"})
	edit.Set("nota", "")

	changes := edit.ChangeSet(sch)
	assert.Equal(t, []FieldChange{{Field: "nota", Value: ""}}, changes)
}
