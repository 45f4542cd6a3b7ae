package taxonomy

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/crowdpulse/backend/internal/aggregate"
)

var sortColumns = map[string]bool{
	aggregate.SortName:           true,
	aggregate.SortStaffCount:     true,
	aggregate.SortIncidentsCount: true,
	aggregate.SortResolvedAvg:    true,
}

// BindListOptions reads the listing query parameters. Unknown sort columns
// fall back to the default ordering rather than erroring.
func BindListOptions(c *gin.Context) aggregate.ListOptions {
	opts := aggregate.ListOptions{
		Keyword:              c.Query("keyword"),
		TopSorted:            c.Query("top_sorted") == "true",
		IncludeUncategorized: c.Query("include_uncategorized") == "true",
	}
	if v := c.Query("is_assigned"); v != "" {
		assigned := v == "true"
		opts.IsAssigned = &assigned
	}
	col := strings.ToLower(c.Query("sort_column"))
	if col == "" {
		col = strings.ToLower(c.Query("sort"))
	}
	if sortColumns[col] {
		opts.SortColumn = col
	}
	opts.Descending = strings.EqualFold(c.Query("order"), "desc")
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		opts.Page = page
	}
	if size, err := strconv.Atoi(c.Query("page_size")); err == nil {
		opts.PageSize = size
	}
	return opts
}
