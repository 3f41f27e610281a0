package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tomschnierer025/weedtracker/internal/domain/models"
	"github.com/tomschnierer025/weedtracker/internal/filter"
)

const dateLayout = "2006-01-02"

// queryFromContext reads the shared filter-bar parameters every list endpoint
// accepts: text, dateFrom, dateTo, types (comma separated).
func queryFromContext(c *gin.Context) filter.Query {
	q := filter.Query{Text: c.Query("text")}

	if raw := c.Query("dateFrom"); raw != "" {
		if parsed, err := time.Parse(dateLayout, raw); err == nil {
			q.DateFrom = parsed
		}
	}
	if raw := c.Query("dateTo"); raw != "" {
		if parsed, err := time.Parse(dateLayout, raw); err == nil {
			q.DateTo = parsed
		}
	}
	for _, token := range strings.Split(c.Query("types"), ",") {
		if jobType, ok := models.ParseJobType(token); ok {
			q.Types = append(q.Types, jobType)
		}
	}
	return q
}
