package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energy-admin/internal/gateway"
)

func mustGet(t *testing.T, table string) *Descriptor {
	t.Helper()
	d, err := Default().Get(table)
	require.NoError(t, err)
	return d
}

func TestRegistry_GetUnknown(t *testing.T) {
	_, err := Default().Get("users")
	assert.ErrorIs(t, err, gateway.ErrUnknownTable)
	assert.Len(t, Default().All(), 8)
}

func TestValidate_Names(t *testing.T) {
	testCases := []struct {
		name     string
		table    string
		form     map[string]string
		expected gateway.Fields
		errCodes map[string]string
	}{
		{
			name:     "Company name is uppercased",
			table:    Companies,
			form:     map[string]string{"name": "Acme"},
			expected: gateway.Fields{"name": "ACME"},
		},
		{
			name:     "Company rejects digits and hyphen",
			table:    Companies,
			form:     map[string]string{"name": "Acme-1"},
			errCodes: map[string]string{"name": gateway.CodeInvalid},
		},
		{
			name:     "Line accepts code names",
			table:    Lines,
			form:     map[string]string{"name": "LINE-1", "company_id": "c1", "district_id": "d1", "line_type_id": "t1"},
			expected: gateway.Fields{"name": "LINE-1", "company_id": "c1", "district_id": "d1", "line_type_id": "t1"},
		},
		{
			name:     "Empty name is required",
			table:    Countries,
			form:     map[string]string{"name": "  "},
			errCodes: map[string]string{"name": gateway.CodeRequired},
		},
		{
			name:     "City needs a country",
			table:    Cities,
			form:     map[string]string{"name": "Springfield"},
			errCodes: map[string]string{"country_id": gateway.CodeRequired},
		},
		{
			name:     "KPI unit kept as typed",
			table:    KPIs,
			form:     map[string]string{"name": "energy use", "unit": " kWh "},
			expected: gateway.Fields{"name": "ENERGY USE", "unit": "kWh"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fields, errs := mustGet(t, tc.table).Validate(tc.form)
			if tc.errCodes != nil {
				got := map[string]string{}
				for _, fe := range errs {
					got[fe.Field] = fe.Code
				}
				assert.Equal(t, tc.errCodes, got)
				return
			}
			assert.Empty(t, errs)
			assert.Equal(t, tc.expected, fields)
		})
	}
}

func TestValidate_MachineOrderRange(t *testing.T) {
	d := mustGet(t, Machines)
	base := func(order string) map[string]string {
		return map[string]string{"name": "PRESS 1", "line_id": "l1", "order": order}
	}

	fields, errs := d.Validate(base("9999"))
	assert.Empty(t, errs)
	assert.Equal(t, 9999, fields["order"])

	fields, errs = d.Validate(base("1000"))
	assert.Empty(t, errs)
	assert.Equal(t, 1000, fields["order"])

	for _, bad := range []string{"10000", "999", "12a4"} {
		_, errs = d.Validate(base(bad))
		require.Len(t, errs, 1, bad)
		assert.Equal(t, "order", errs[0].Field)
	}
}

func TestValidateInput_RejectsUnknownFields(t *testing.T) {
	d := mustGet(t, Machines)
	fields, errs := d.ValidateInput(map[string]any{"name": "press 2", "line_id": "l1", "order": float64(1200), "created_by": "x"})
	require.Len(t, errs, 1)
	assert.Equal(t, "created_by", errs[0].Field)
	assert.Equal(t, 1200, fields["order"])
	assert.Equal(t, "PRESS 2", fields["name"])
}

func TestConflictField(t *testing.T) {
	d := mustGet(t, Machines)
	assert.Equal(t, "order", d.ConflictField("idx_machines_line_order", nil))
	assert.Equal(t, "order", d.ConflictField("", []string{"machines.line_id", "machines.order"}))
	assert.Equal(t, "name", d.ConflictField("", []string{"machines.line_id", "machines.name"}))
	assert.Equal(t, "", d.ConflictField("pk", nil))

	assert.Equal(t, "this order is already used in the selected line", d.ConflictMessage("order"))
	assert.Equal(t, "a machine with this name already exists in the selected line", d.ConflictMessage("name"))
	assert.Equal(t, "a company with this name already exists", mustGet(t, Companies).ConflictMessage("name"))
}

func TestNameFieldScope(t *testing.T) {
	city := mustGet(t, Cities)
	assert.Equal(t, gateway.Scope{Column: "country_id", Value: "c1"}, city.NameFieldScope(map[string]string{"country_id": "c1"}))
	assert.True(t, mustGet(t, Companies).NameFieldScope(nil).IsGlobal())
}

func TestSortableAndFilterable(t *testing.T) {
	d := mustGet(t, Machines)
	assert.True(t, d.Sortable("order"))
	assert.False(t, d.Sortable("created_by"))
	assert.True(t, d.Filterable("line_id"))
	assert.False(t, d.Filterable("password"))
}
