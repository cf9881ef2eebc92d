package resource

import (
	"fmt"

	"energy-admin/internal/gateway"
	"energy-admin/internal/names"
)

// Table names.
const (
	Companies = "companies"
	Countries = "countries"
	Cities    = "cities"
	Districts = "districts"
	LineTypes = "line_types"
	Lines     = "lines"
	Machines  = "machines"
	KPIs      = "kpis"
)

// Registry is an ordered set of descriptors keyed by table.
type Registry struct {
	order  []string
	tables map[string]*Descriptor
}

// NewRegistry builds a registry; tables keep their registration order.
func NewRegistry(descs ...*Descriptor) *Registry {
	r := &Registry{tables: make(map[string]*Descriptor, len(descs))}
	for _, d := range descs {
		r.order = append(r.order, d.Table)
		r.tables[d.Table] = d
	}
	return r
}

// Get returns the descriptor for table.
func (r *Registry) Get(table string) (*Descriptor, error) {
	d, ok := r.tables[table]
	if !ok {
		return nil, fmt.Errorf("%w: %q", gateway.ErrUnknownTable, table)
	}
	return d, nil
}

// All returns descriptors in registration order.
func (r *Registry) All() []*Descriptor {
	out := make([]*Descriptor, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, r.tables[t])
	}
	return out
}

func auditColumns() []Column {
	return []Column{
		{Name: "created_at", Title: "Created", Width: 17, Sortable: true},
		{Name: "updated_at", Title: "Updated", Width: 17, Sortable: true},
	}
}

func nameField() Field {
	return Field{Name: "name", Label: "Name", Kind: KindName, Required: true}
}

// Default returns the factory-energy schema: the location hierarchy, the
// production hierarchy and the KPI catalogue.
func Default() *Registry {
	return NewRegistry(
		&Descriptor{
			Table: Companies, Title: "Companies", Singular: "Company",
			Columns:     append([]Column{{Name: "name", Title: "Name", Width: 30, Sortable: true}}, auditColumns()...),
			Fields:      []Field{nameField()},
			NameRule:    names.Letters,
			Constraints: map[string]string{"idx_companies_name": "name"},
			DefaultSort: "name",
		},
		&Descriptor{
			Table: Countries, Title: "Countries", Singular: "Country",
			Columns:     append([]Column{{Name: "name", Title: "Name", Width: 30, Sortable: true}}, auditColumns()...),
			Fields:      []Field{nameField()},
			NameRule:    names.Letters,
			Constraints: map[string]string{"idx_countries_name": "name"},
			DefaultSort: "name",
		},
		&Descriptor{
			Table: Cities, Title: "Cities", Singular: "City",
			Columns: append([]Column{
				{Name: "name", Title: "Name", Width: 25, Sortable: true},
				{Name: "country_id", Title: "Country", Width: 26, Sortable: true},
			}, auditColumns()...),
			Fields: []Field{
				{Name: "country_id", Label: "Country", Kind: KindRef, Required: true, Ref: Countries},
				nameField(),
			},
			NameRule:    names.Letters,
			NameScope:   "country_id",
			Constraints: map[string]string{"idx_cities_country_name": "name"},
			DefaultSort: "name",
		},
		&Descriptor{
			Table: Districts, Title: "Districts", Singular: "District",
			Columns: append([]Column{
				{Name: "name", Title: "Name", Width: 25, Sortable: true},
				{Name: "city_id", Title: "City", Width: 26, Sortable: true},
			}, auditColumns()...),
			Fields: []Field{
				{Name: "city_id", Label: "City", Kind: KindRef, Required: true, Ref: Cities},
				nameField(),
			},
			NameRule:    names.Letters,
			NameScope:   "city_id",
			Constraints: map[string]string{"idx_districts_city_name": "name"},
			DefaultSort: "name",
		},
		&Descriptor{
			Table: LineTypes, Title: "Line types", Singular: "Line type",
			Columns:     append([]Column{{Name: "name", Title: "Name", Width: 30, Sortable: true}}, auditColumns()...),
			Fields:      []Field{nameField()},
			NameRule:    names.Letters,
			Constraints: map[string]string{"idx_line_types_name": "name"},
			DefaultSort: "name",
		},
		&Descriptor{
			Table: Lines, Title: "Lines", Singular: "Line",
			Columns: append([]Column{
				{Name: "name", Title: "Name", Width: 20, Sortable: true},
				{Name: "company_id", Title: "Company", Width: 26},
				{Name: "district_id", Title: "District", Width: 26},
				{Name: "line_type_id", Title: "Type", Width: 26},
			}, auditColumns()...),
			Fields: []Field{
				{Name: "company_id", Label: "Company", Kind: KindRef, Required: true, Ref: Companies},
				{Name: "district_id", Label: "District", Kind: KindRef, Required: true, Ref: Districts},
				{Name: "line_type_id", Label: "Line type", Kind: KindRef, Required: true, Ref: LineTypes},
				nameField(),
			},
			NameRule:    names.Code,
			NameScope:   "company_id",
			Constraints: map[string]string{"idx_lines_company_name": "name"},
			DefaultSort: "name",
		},
		&Descriptor{
			Table: Machines, Title: "Machines", Singular: "Machine",
			Columns: append([]Column{
				{Name: "name", Title: "Name", Width: 20, Sortable: true},
				{Name: "order", Title: "Order", Width: 6, Sortable: true},
				{Name: "line_id", Title: "Line", Width: 26, Sortable: true},
			}, auditColumns()...),
			Fields: []Field{
				{Name: "line_id", Label: "Line", Kind: KindRef, Required: true, Ref: Lines},
				nameField(),
				{Name: "order", Label: "Order", Kind: KindOrder, Required: true},
			},
			NameRule:  names.Code,
			NameScope: "line_id",
			Scoped:    []ScopedUnique{{Field: "order", Scope: "line_id"}},
			Constraints: map[string]string{
				"idx_machines_line_name":  "name",
				"idx_machines_line_order": "order",
			},
			DefaultSort: "order",
		},
		&Descriptor{
			Table: KPIs, Title: "KPIs", Singular: "KPI",
			Columns: append([]Column{
				{Name: "name", Title: "Name", Width: 30, Sortable: true},
				{Name: "unit", Title: "Unit", Width: 10, Sortable: true},
			}, auditColumns()...),
			Fields: []Field{
				nameField(),
				{Name: "unit", Label: "Unit", Kind: KindText, Required: true},
			},
			NameRule:    names.Letters,
			Constraints: map[string]string{"idx_kpis_name": "name"},
			DefaultSort: "name",
		},
	)
}
