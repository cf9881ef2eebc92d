package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"energy-admin/internal/gateway"
	"energy-admin/internal/mw"
	"energy-admin/internal/resource"
)

// MaxLimit caps the page size a client may request.
const MaxLimit = 500

// parseQuery reads q, sort, dir, offset, limit and eq.<column> parameters.
func parseQuery(c *gin.Context) (gateway.Query, error) {
	q := gateway.Query{
		Search: c.Query("q"),
		Sort:   c.Query("sort"),
	}
	switch strings.ToLower(c.Query("dir")) {
	case "", "asc":
	case "desc":
		q.Desc = true
	default:
		return q, fmt.Errorf("dir must be asc or desc")
	}

	var err error
	if q.Offset, err = intParam(c, "offset", 0); err != nil {
		return q, err
	}
	if q.Limit, err = intParam(c, "limit", 0); err != nil {
		return q, err
	}
	if q.Limit == 0 || q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}

	for k, v := range c.Request.URL.Query() {
		col, ok := strings.CutPrefix(k, "eq.")
		if !ok || len(v) == 0 {
			continue
		}
		if q.Eq == nil {
			q.Eq = make(map[string]string)
		}
		q.Eq[col] = v[0]
	}
	return q, nil
}

func intParam(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return n, nil
}

// List handles GET /api/v1/:table.
func (h *Handler) List(c *gin.Context) {
	d, ok := h.descriptor(c)
	if !ok {
		return
	}
	q, err := parseQuery(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page, err := h.gw.List(c.Request.Context(), d.Table, q)
	if err != nil {
		h.fail(c, d, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Exists handles GET /api/v1/:table/exists.
func (h *Handler) Exists(c *gin.Context) {
	d, ok := h.descriptor(c)
	if !ok {
		return
	}
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	scope := gateway.Scope{Column: c.Query("scope_column"), Value: c.Query("scope_value")}
	exists, err := h.gw.ExistsByName(c.Request.Context(), d.Table, name, scope, c.Query("exclude_id"))
	if err != nil {
		h.fail(c, d, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

// Create handles POST /api/v1/:table.
func (h *Handler) Create(c *gin.Context) {
	d, ok := h.descriptor(c)
	if !ok {
		return
	}
	fields, ok := h.bindFields(c, d)
	if !ok {
		return
	}
	row, err := h.gw.Insert(c.Request.Context(), d.Table, fields, c.GetString(mw.KeyUserID))
	if err != nil {
		h.fail(c, d, err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

// Update handles PATCH /api/v1/:table/:id. The body carries the complete form.
func (h *Handler) Update(c *gin.Context) {
	d, ok := h.descriptor(c)
	if !ok {
		return
	}
	fields, ok := h.bindFields(c, d)
	if !ok {
		return
	}
	row, err := h.gw.Update(c.Request.Context(), d.Table, c.Param("id"), fields, c.GetString(mw.KeyUserID))
	if err != nil {
		h.fail(c, d, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

// bindFields decodes the JSON body and runs the descriptor's validation.
func (h *Handler) bindFields(c *gin.Context, d *resource.Descriptor) (gateway.Fields, bool) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return nil, false
	}
	fields, errs := d.ValidateInput(body)
	if len(errs) > 0 {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"errors": errs})
		return nil, false
	}
	return fields, true
}
