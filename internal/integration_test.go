package internal

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"energy-admin/config"
	"energy-admin/internal/api"
	"energy-admin/internal/auth"
	"energy-admin/internal/gateway"
	"energy-admin/internal/listctl"
	"energy-admin/internal/remote"
	"energy-admin/internal/resource"
	"energy-admin/internal/session"
	"energy-admin/internal/store"
	"energy-admin/internal/testutil"
)

// TestPlantSetupLifecycle drives the console's list controllers through the
// HTTP client against a real router, building a plant from country down to
// machine and checking the database state after each step.
func TestPlantSetupLifecycle(t *testing.T) {
	// --- Test Setup ---
	gin.SetMode(gin.TestMode)
	db := testutil.NewSQLite(t)
	reg := resource.Default()
	gormStore := store.NewGormStore(db, reg)
	authSvc := auth.NewService(db, "integration-secret", "energyd", time.Hour)
	_, err := authSvc.CreateUser(context.Background(), "op@plant.io", "hunter2")
	require.NoError(t, err)

	serverCfg := config.ServerConfig{RateLimitPerSec: 1000, RateLimitBurst: 1000, CacheTTL: time.Minute}
	h := api.NewHandler(gormStore, reg, authSvc, zap.NewNop())
	srv := httptest.NewServer(api.NewRouter(h, authSvc, serverCfg, zap.NewNop()))
	defer srv.Close()

	client, err := remote.New(&config.ConsoleConfig{APIURL: srv.URL, Timeout: 5 * time.Second}, zap.NewNop())
	require.NoError(t, err)
	sess := session.NewStore(client)
	client.UseTokens(sess)

	ctx := context.Background()
	cfg := listctl.Config{Debounce: 10 * time.Millisecond}
	controller := func(table string) *listctl.Controller {
		d, err := reg.Get(table)
		require.NoError(t, err)
		c := listctl.New(d, client, sess, cfg, nil)
		t.Cleanup(c.Close)
		c.Load(ctx)
		return c
	}
	create := func(c *listctl.Controller, fields map[string]string, order ...string) error {
		c.OpenCreate(ctx)
		for _, name := range order {
			c.SetField(ctx, name, fields[name])
		}
		return c.Submit(ctx)
	}

	// --- Signed out: saves are refused ---
	companies := controller(resource.Companies)
	assert.Equal(t, listctl.StatusErrored, waitSettled(t, companies).Status)
	err = create(companies, map[string]string{"name": "acme"}, "name")
	assert.ErrorIs(t, err, gateway.ErrNotAuthenticated)
	companies.CloseModal()

	_, err = sess.SignIn(ctx, "op@plant.io", "wrong")
	assert.ErrorIs(t, err, gateway.ErrInvalidCredentials)
	_, err = sess.SignIn(ctx, "op@plant.io", "hunter2")
	require.NoError(t, err)

	// --- Step 1: location hierarchy ---
	require.NoError(t, create(companies, map[string]string{"name": "acme"}, "name"))
	company := only(t, gormStore, resource.Companies, "ACME")
	assert.Equal(t, sess.Actor(), company.String("created_by"))

	countries := controller(resource.Countries)
	require.NoError(t, create(countries, map[string]string{"name": "turkey"}, "name"))
	country := only(t, gormStore, resource.Countries, "TURKEY")

	cities := controller(resource.Cities)
	require.NoError(t, create(cities, map[string]string{"country_id": country.ID(), "name": "izmir"}, "country_id", "name"))
	city := only(t, gormStore, resource.Cities, "IZMIR")

	districts := controller(resource.Districts)
	require.NoError(t, create(districts, map[string]string{"city_id": city.ID(), "name": "bornova"}, "city_id", "name"))
	district := only(t, gormStore, resource.Districts, "BORNOVA")

	lineTypes := controller(resource.LineTypes)
	require.NoError(t, create(lineTypes, map[string]string{"name": "assembly"}, "name"))
	lineType := only(t, gormStore, resource.LineTypes, "ASSEMBLY")

	// --- Step 2: production line ---
	lines := controller(resource.Lines)
	lineFields := map[string]string{
		"company_id":   company.ID(),
		"district_id":  district.ID(),
		"line_type_id": lineType.ID(),
		"name":         "line-1",
	}
	require.NoError(t, create(lines, lineFields, "company_id", "district_id", "line_type_id", "name"))
	line := only(t, gormStore, resource.Lines, "LINE-1")

	// --- Step 3: machines and their order within the line ---
	machines := controller(resource.Machines)
	machineOrder := []string{"line_id", "name", "order"}
	require.NoError(t, create(machines, map[string]string{"line_id": line.ID(), "name": "press 2", "order": "1001"}, machineOrder...))
	require.NoError(t, create(machines, map[string]string{"line_id": line.ID(), "name": "press 1", "order": "1000"}, machineOrder...))

	err = create(machines, map[string]string{"line_id": line.ID(), "name": "press 3", "order": "1000"}, machineOrder...)
	require.Error(t, err)
	snap := machines.Snapshot()
	assert.Equal(t, listctl.ModalOpen, snap.Modal)
	assert.Contains(t, snap.FieldErrors["order"], "already used")
	assert.ElementsMatch(t, []int{1000, 1001}, snap.Taken["order"])
	machines.CloseModal()

	machines.Refresh()
	require.Eventually(t, func() bool {
		s := machines.Snapshot()
		return s.Status == listctl.StatusLoaded && s.Total == 2
	}, 2*time.Second, 5*time.Millisecond)
	rows := machines.Snapshot().Rows
	assert.Equal(t, "PRESS 1", rows[0].String("name"))
	assert.Equal(t, "PRESS 2", rows[1].String("name"))

	// --- Step 4: edit keeps its own order and records the editor ---
	machines.OpenEdit(ctx, rows[1])
	machines.SetField(ctx, "name", "press 2b")
	require.NoError(t, machines.Submit(ctx))
	edited := only(t, gormStore, resource.Machines, "PRESS 2B")
	assert.Equal(t, sess.Actor(), edited.String("updated_by"))
	n, _ := gateway.ToInt(edited["order"])
	assert.Equal(t, 1001, n)
}

// waitSettled waits for the first list query to finish either way.
func waitSettled(t *testing.T, c *listctl.Controller) listctl.Snapshot {
	t.Helper()
	var s listctl.Snapshot
	require.Eventually(t, func() bool {
		s = c.Snapshot()
		return s.Status == listctl.StatusLoaded || s.Status == listctl.StatusErrored
	}, 2*time.Second, 5*time.Millisecond)
	return s
}

// only returns the single row of table called name.
func only(t *testing.T, gw gateway.Gateway, table, name string) gateway.Row {
	t.Helper()
	page, err := gw.List(context.Background(), table, gateway.Query{Search: name})
	require.NoError(t, err)
	for _, r := range page.Rows {
		if r.String("name") == name {
			return r
		}
	}
	t.Fatalf("%s %q not found in %v", table, name, page.Rows)
	return nil
}
