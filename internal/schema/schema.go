// Package schema holds the per-table metadata profiles and the
// convention-driven field classification used by both the server's generic
// CRUD layer and the console's table/form engine.
package schema

import "strings"

// Tables returns the whitelist of known entity names.
func Tables() []string {
	out := make([]string, len(validTables))
	copy(out, validTables)
	return out
}

// IsValidTable reports whether name is a known entity.
func IsValidTable(name string) bool {
	for _, t := range validTables {
		if t == name {
			return true
		}
	}
	return false
}

// Columns returns the grid column descriptors for a table, in render order.
// Unknown tables yield an empty slice; callers render an empty grid rather
// than fail.
func Columns(table string) []Column {
	cols := tableColumns[table]
	out := make([]Column, len(cols))
	copy(out, cols)
	return out
}

// FormFields returns the editable field keys for a table. When no explicit
// profile exists the fields are derived from the sample record's keys minus
// anything matching the primary-key convention; with no sample the result is
// empty.
func FormFields(table string, sample *Record) []string {
	if fields, ok := formFields[table]; ok {
		out := make([]string, len(fields))
		copy(out, fields)
		return out
	}
	if sample == nil {
		return nil
	}
	var out []string
	for _, k := range sample.Keys() {
		if strings.HasPrefix(strings.ToLower(k), "id_") {
			continue
		}
		out = append(out, k)
	}
	return out
}

// PrimaryKeyColumn returns the declared primary-key column of a table, or ""
// for unknown tables. By convention it is the first declared column.
func PrimaryKeyColumn(table string) string {
	cols := tableColumns[table]
	if len(cols) == 0 {
		return ""
	}
	return cols[0].Key
}

// ColumnKeys returns the declared column names of a table.
func ColumnKeys(table string) []string {
	cols := tableColumns[table]
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		out = append(out, c.Key)
	}
	return out
}

// IsDropdownField reports whether the field renders as an enumerated choice.
func IsDropdownField(key string) bool {
	_, ok := dropdownFields[key]
	return ok
}

// IsNumericField reports whether the field is edited as a number.
func IsNumericField(key string) bool {
	_, ok := numericFields[key]
	return ok
}

// IsDateField reports whether the field carries a date. The convention is a
// "data" substring in the name (Polish for "date").
func IsDateField(key string) bool {
	return strings.Contains(key, "data")
}

// IsForeignKeyField reports whether an id_ field is an editable foreign key.
func IsForeignKeyField(key string) bool {
	_, ok := foreignKeyFields[key]
	return ok
}

// NormalizeDateForInput converts a raw timestamp value into the date portion
// a calendar input accepts: everything before the first 'T' or space.
// Nil yields "".
func NormalizeDateForInput(raw any) string {
	if raw == nil {
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		return ""
	}
	if i := strings.IndexAny(s, "T "); i >= 0 {
		return s[:i]
	}
	return s
}
