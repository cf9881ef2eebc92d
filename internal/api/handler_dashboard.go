package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"energy-admin/internal/dashboard"
)

// Dashboard handles GET /api/v1/dashboard. The machine table honours
// q, sort and dir like the list endpoints.
func Dashboard(c *gin.Context) {
	data := dashboard.Mock()
	data.Machines = dashboard.Filter(data.Machines, c.Query("q"))
	dashboard.Sort(data.Machines, c.Query("sort"), strings.EqualFold(c.Query("dir"), "desc"))
	c.JSON(http.StatusOK, data)
}
