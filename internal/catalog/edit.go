package catalog

// PendingEdit holds the original record and a working copy of its editable
// values. One edit exists at a time; it is dropped on cancel, on a completed
// save or when the active table changes.
type PendingEdit struct {
	Original Record
	Values   map[string]string
}

// NewPendingEdit seeds the working values from the record's current cells.
func NewPendingEdit(sch Schema, original Record) *PendingEdit {
	values := make(map[string]string, len(sch.FormFields))
	for _, f := range sch.FormFields {
		values[f] = CellString(original[f])
	}
	return &PendingEdit{Original: original, Values: values}
}

// Set replaces one working value.
func (e *PendingEdit) Set(field, value string) {
	e.Values[field] = value
}

// FieldChange is one entry of an edit's change-set.
type FieldChange struct {
	Field string
	Value string
}

// ChangeSet diffs the working values against the original record by string
// representation, in form-field order. Only fields that differ are included.
func (e *PendingEdit) ChangeSet(sch Schema) []FieldChange {
	var out []FieldChange
	for _, f := range sch.FormFields {
		was := CellString(e.Original[f])
		now, ok := e.Values[f]
		if !ok {
			continue
		}
		if was != now {
			out = append(out, FieldChange{Field: f, Value: now})
		}
	}
	return out
}
