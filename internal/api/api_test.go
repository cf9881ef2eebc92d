package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"energy-admin/config"
	"energy-admin/internal/auth"
	"energy-admin/internal/gateway"
	"energy-admin/internal/resource"
	"energy-admin/internal/store"
	"energy-admin/internal/testutil"
)

type testServer struct {
	router *gin.Engine
	store  *store.GormStore
	token  string
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewSQLite(t)
	reg := resource.Default()
	s := store.NewGormStore(db, reg)
	authSvc := auth.NewService(db, "test-secret", "energyd", time.Hour)
	_, err := authSvc.CreateUser(context.Background(), "op@plant.io", "hunter2")
	require.NoError(t, err)

	cfg := config.ServerConfig{RateLimitPerSec: 1000, RateLimitBurst: 1000, CacheTTL: time.Minute}
	ts := &testServer{
		router: NewRouter(NewHandler(s, reg, authSvc, zap.NewNop()), authSvc, cfg, zap.NewNop()),
		store:  s,
	}

	w := ts.do(t, "POST", "/api/v1/auth/signin", map[string]string{"email": "op@plant.io", "password": "hunter2"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var sess struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
	ts.token = sess.Token
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if ts.token != "" {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type errorsBody struct {
	Errors []gateway.FieldError `json:"errors"`
}

func TestSignIn_WrongPassword(t *testing.T) {
	ts := setupServer(t)
	ts.token = ""
	w := ts.do(t, "POST", "/api/v1/auth/signin", map[string]string{"email": "op@plant.io", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"invalid email or password"}`, w.Body.String())

	w = ts.do(t, "POST", "/api/v1/auth/signin", map[string]string{"email": "op@plant.io"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRoutesRequireToken(t *testing.T) {
	ts := setupServer(t)
	ts.token = ""
	for _, path := range []string{"/api/v1/companies", "/api/v1/dashboard", "/api/v1/companies/exists?name=X"} {
		w := ts.do(t, "GET", path, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
	w := ts.do(t, "POST", "/api/v1/companies", map[string]any{"name": "ACME"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateAndList(t *testing.T) {
	ts := setupServer(t)

	w := ts.do(t, "POST", "/api/v1/companies", map[string]any{"name": " acme  corp "})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	row := decode[gateway.Row](t, w)
	assert.Equal(t, "ACME CORP", row.String("name"))
	assert.NotEmpty(t, row.String("created_by"))

	for _, n := range []string{"GLOBEX", "INITECH"} {
		require.Equal(t, http.StatusCreated, ts.do(t, "POST", "/api/v1/companies", map[string]any{"name": n}).Code)
	}

	w = ts.do(t, "GET", "/api/v1/companies?q=co&sort=name&dir=desc&offset=0&limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	page := decode[gateway.Page](t, w)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "ACME CORP", page.Rows[0].String("name"))

	w = ts.do(t, "GET", "/api/v1/companies?sort=name&dir=desc&limit=2", nil)
	page = decode[gateway.Page](t, w)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Rows, 2)
	assert.Equal(t, "INITECH", page.Rows[0].String("name"))
}

func TestListBadRequests(t *testing.T) {
	ts := setupServer(t)

	testCases := []struct {
		name string
		path string
		code int
	}{
		{name: "Unknown table", path: "/api/v1/users", code: http.StatusNotFound},
		{name: "Unknown sort", path: "/api/v1/companies?sort=password", code: http.StatusBadRequest},
		{name: "Bad direction", path: "/api/v1/companies?dir=up", code: http.StatusBadRequest},
		{name: "Bad offset", path: "/api/v1/companies?offset=-1", code: http.StatusBadRequest},
		{name: "Unknown filter", path: "/api/v1/cities?eq.created_by=x", code: http.StatusBadRequest},
		{name: "Known filter", path: "/api/v1/cities?eq.country_id=x", code: http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, ts.do(t, "GET", tc.path, nil).Code)
		})
	}
}

func TestCreate_ValidationAndConflicts(t *testing.T) {
	ts := setupServer(t)
	usa := decode[gateway.Row](t, ts.do(t, "POST", "/api/v1/countries", map[string]any{"name": "USA"}))

	w := ts.do(t, "POST", "/api/v1/companies", map[string]any{"name": "Acme-1"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode[errorsBody](t, w)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, gateway.CodeInvalid, body.Errors[0].Code)

	w = ts.do(t, "POST", "/api/v1/cities", map[string]any{"name": "Springfield", "country_id": "missing"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body = decode[errorsBody](t, w)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, gateway.CodeRefNotFound, body.Errors[0].Code)

	require.Equal(t, http.StatusCreated, ts.do(t, "POST", "/api/v1/cities", map[string]any{"name": "Springfield", "country_id": usa.ID()}).Code)
	w = ts.do(t, "POST", "/api/v1/cities", map[string]any{"name": "SPRINGFIELD", "country_id": usa.ID()})
	assert.Equal(t, http.StatusConflict, w.Code)
	body = decode[errorsBody](t, w)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, gateway.FieldError{
		Code:    gateway.CodeUniqueViolation,
		Field:   "name",
		Message: "a city with this name already exists in the selected country",
	}, body.Errors[0])

	w = ts.do(t, "POST", "/api/v1/companies", "not an object")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExistsAndUpdate(t *testing.T) {
	ts := setupServer(t)
	kpi := decode[gateway.Row](t, ts.do(t, "POST", "/api/v1/kpis", map[string]any{"name": "PEAK DEMAND", "unit": "kW"}))

	w := ts.do(t, "GET", "/api/v1/kpis/exists?name=PEAK+DEMAND", nil)
	assert.JSONEq(t, `{"exists":true}`, w.Body.String())
	w = ts.do(t, "GET", "/api/v1/kpis/exists?name=PEAK+DEMAND&exclude_id="+kpi.ID(), nil)
	assert.JSONEq(t, `{"exists":false}`, w.Body.String())
	w = ts.do(t, "GET", "/api/v1/kpis/exists", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, "PATCH", "/api/v1/kpis/"+kpi.ID(), map[string]any{"name": "peak load", "unit": "kW"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[gateway.Row](t, w)
	assert.Equal(t, "PEAK LOAD", updated.String("name"))
	assert.NotEmpty(t, updated.String("updated_by"))

	w = ts.do(t, "PATCH", "/api/v1/kpis/missing", map[string]any{"name": "X", "unit": "kW"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDashboard(t *testing.T) {
	ts := setupServer(t)

	w := ts.do(t, "GET", "/api/v1/dashboard?q=press&sort=kwh&dir=desc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

	var data struct {
		Cards    []map[string]any `json:"cards"`
		Series   []map[string]any `json:"series"`
		Machines []struct {
			Machine string `json:"machine"`
		} `json:"machines"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &data))
	assert.Len(t, data.Cards, 4)
	assert.Len(t, data.Series, 24)
	require.Len(t, data.Machines, 3)
	assert.Equal(t, "PRESS 1", data.Machines[0].Machine)
	assert.Equal(t, "COMPRESSOR", data.Machines[2].Machine)

	w = ts.do(t, "GET", "/api/v1/dashboard?q=press&sort=kwh&dir=desc", nil)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
}
