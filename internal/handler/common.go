package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mei-dev/tutor-center-api/internal/models"
)

// listFilterFromQuery reads skip/limit query parameters. Unparseable values
// fall back to the defaults applied by Normalize.
func listFilterFromQuery(c *gin.Context) models.ListFilter {
	var filter models.ListFilter
	if skip, err := strconv.Atoi(c.DefaultQuery("skip", "0")); err == nil {
		filter.Skip = skip
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "100")); err == nil {
		filter.Limit = limit
	}
	return filter.Normalize()
}
