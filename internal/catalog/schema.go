package catalog

import (
	"sort"
	"strings"
)

// Schema is the runtime-derived shape of one catalog: ordered column list,
// identifier column and the editable form fields.
type Schema struct {
	AllFields  []string
	IDField    string
	FormFields []string
}

// Resolve derives the schema for a catalog from the fetched records.
// fieldOrder is the first record's column order as seen on the wire (see
// DecodeCollection); when empty and records exist, the first record's keys
// are used in sorted order so repeated calls stay deterministic.
//
// Identifier resolution, first match wins:
//  1. the declared id field, if present in the field list — the declared
//     hint is only trusted against real columns when rows exist, and against
//     the declared list otherwise;
//  2. the first field whose name starts with "id_" (case-insensitive);
//  3. the first field;
//  4. "" when the field list itself is empty.
//
// Known instability: the first row's key set is authoritative for the whole
// collection, so two resolutions around a reload can disagree when the first
// row changes or a table briefly returns zero rows. Callers always re-resolve
// after a reload instead of caching the identifier across fetches.
func Resolve(d Descriptor, records []Record, fieldOrder []string) Schema {
	fromRecords := len(records) > 0

	var all []string
	switch {
	case fromRecords && len(fieldOrder) > 0:
		all = append(all, fieldOrder...)
	case fromRecords:
		for k := range records[0] {
			all = append(all, k)
		}
		sort.Strings(all)
	default:
		all = append(all, d.DeclaredFields...)
	}

	id := resolveIdentifier(d.IDField, all)

	hidden := d.Hidden()
	form := make([]string, 0, len(all))
	for _, f := range all {
		if f == id || hidden[strings.ToLower(f)] {
			continue
		}
		form = append(form, f)
	}

	return Schema{AllFields: all, IDField: id, FormFields: form}
}

func resolveIdentifier(declared string, fields []string) string {
	if len(fields) == 0 {
		return ""
	}
	if declared != "" {
		for _, f := range fields {
			if f == declared {
				return declared
			}
		}
	}
	for _, f := range fields {
		if strings.HasPrefix(strings.ToLower(f), "id_") {
			return f
		}
	}
	return fields[0]
}
