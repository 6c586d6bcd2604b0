package catalog

import (
	"sort"
	"strconv"
	"strings"
)

// Filter returns the records whose concatenated column values contain query,
// case-insensitive, across every resolved column. Empty query matches all.
func Filter(records []Record, schema Schema, query string) []Record {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return records
	}
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		var sb strings.Builder
		for _, f := range schema.AllFields {
			sb.WriteString(CellString(rec[f]))
			sb.WriteByte(' ')
		}
		if strings.Contains(strings.ToLower(sb.String()), needle) {
			out = append(out, rec)
		}
	}
	return out
}

// SortByIdentifier orders records by the resolved identifier, ascending and
// stable. Values that both parse as numbers compare numerically; otherwise
// the comparison is lowercase lexical. Without a resolved identifier the
// order is left as received.
func SortByIdentifier(records []Record, schema Schema) {
	if schema.IDField == "" {
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		a := CellString(records[i][schema.IDField])
		b := CellString(records[j][schema.IDField])
		fa, errA := strconv.ParseFloat(strings.TrimSpace(a), 64)
		fb, errB := strconv.ParseFloat(strings.TrimSpace(b), 64)
		if errA == nil && errB == nil {
			return fa < fb
		}
		return strings.ToLower(a) < strings.ToLower(b)
	})
}

// PrettyLabel turns a column name into a display header: strips an "id_"
// prefix marker and replaces underscores. Cosmetic only.
func PrettyLabel(field string) string {
	s := strings.TrimSpace(field)
	if strings.HasPrefix(strings.ToLower(s), "id_") {
		s = "ID " + s[3:]
	}
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return field
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
