// Package resource describes each administrable table: its columns, form
// fields, name rule and uniqueness scopes. One Descriptor drives both the list
// controller and the server-side validation.
package resource

import (
	"strings"

	"energy-admin/internal/gateway"
	"energy-admin/internal/names"
)

// FieldKind selects how a form field is normalized and validated.
type FieldKind int

const (
	KindName  FieldKind = iota // uppercased, checked against the descriptor's name rule
	KindText                   // trimmed free text
	KindRef                    // id of a row in Ref
	KindOrder                  // four digit position, OrderMin..OrderMax
)

const (
	OrderMin = 1000
	OrderMax = 9999
)

// Field is one input of the create/edit form.
type Field struct {
	Name     string
	Label    string
	Kind     FieldKind
	Required bool
	Ref      string // parent table for KindRef
}

// Column is one table column shown in the list.
type Column struct {
	Name     string
	Title    string
	Width    int
	Sortable bool
}

// ScopedUnique is a field whose value must be unique among rows sharing Scope.
type ScopedUnique struct {
	Field string
	Scope string
}

// Descriptor is the schema of one administrable table.
type Descriptor struct {
	Table       string
	Title       string
	Singular    string
	Columns     []Column
	Fields      []Field
	NameRule    names.Rule
	NameScope   string            // parent column scoping name uniqueness; "" is global
	Scoped      []ScopedUnique    // extra scoped-unique fields
	Constraints map[string]string // unique index name -> field
	DefaultSort string
}

// Field looks up a form field by name.
func (d *Descriptor) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Sortable reports whether col may be used in ORDER BY.
func (d *Descriptor) Sortable(col string) bool {
	for _, c := range d.Columns {
		if c.Name == col {
			return c.Sortable
		}
	}
	return false
}

// Filterable reports whether col may be used as an equality filter.
func (d *Descriptor) Filterable(col string) bool {
	if col == "id" {
		return true
	}
	_, ok := d.Field(col)
	return ok
}

// Parents returns the reference fields in form order.
func (d *Descriptor) Parents() []Field {
	var out []Field
	for _, f := range d.Fields {
		if f.Kind == KindRef {
			out = append(out, f)
		}
	}
	return out
}

// NameFieldScope builds the uniqueness scope for a name given form/row values.
func (d *Descriptor) NameFieldScope(values map[string]string) gateway.Scope {
	if d.NameScope == "" {
		return gateway.Scope{}
	}
	return gateway.Scope{Column: d.NameScope, Value: values[d.NameScope]}
}

// ScopedFor returns the scoped-unique entry for field, if any.
func (d *Descriptor) ScopedFor(field string) (ScopedUnique, bool) {
	for _, s := range d.Scoped {
		if s.Field == field {
			return s, true
		}
	}
	return ScopedUnique{}, false
}

// ConflictField maps a violated constraint back to the form field it guards.
// constraint is an index name (Postgres) and columns the constrained columns
// (SQLite reports only those); either may be empty.
func (d *Descriptor) ConflictField(constraint string, columns []string) string {
	if f, ok := d.Constraints[constraint]; ok {
		return f
	}
	// the guarded field is the last column that is not a scope column
	for i := len(columns) - 1; i >= 0; i-- {
		col := strings.TrimPrefix(columns[i], d.Table+".")
		if col == d.NameScope {
			continue
		}
		if _, ok := d.Field(col); ok {
			return col
		}
	}
	return ""
}

// ConflictMessage is the user-facing text for a uniqueness violation on field.
func (d *Descriptor) ConflictMessage(field string) string {
	if s, ok := d.ScopedFor(field); ok {
		parent := s.Scope
		if f, ok := d.Field(s.Scope); ok {
			parent = strings.ToLower(f.Label)
		}
		return "this " + strings.ToLower(d.labelOf(field)) + " is already used in the selected " + parent
	}
	if d.NameScope != "" {
		parent := d.NameScope
		if f, ok := d.Field(d.NameScope); ok {
			parent = strings.ToLower(f.Label)
		}
		return "a " + strings.ToLower(d.Singular) + " with this name already exists in the selected " + parent
	}
	return "a " + strings.ToLower(d.Singular) + " with this name already exists"
}

func (d *Descriptor) labelOf(field string) string {
	if f, ok := d.Field(field); ok {
		return f.Label
	}
	return field
}
