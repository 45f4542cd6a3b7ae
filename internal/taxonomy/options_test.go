package taxonomy

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/crowdpulse/backend/internal/aggregate"
)

func bindFromQuery(t *testing.T, rawQuery string) aggregate.ListOptions {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?"+rawQuery, nil)
	return BindListOptions(c)
}

func TestBindListOptionsSortColumn(t *testing.T) {
	opts := bindFromQuery(t, "sort_column=incidents_count&order=desc")
	assert.Equal(t, aggregate.SortIncidentsCount, opts.SortColumn)
	assert.True(t, opts.Descending)
}

func TestBindListOptionsSortAlias(t *testing.T) {
	opts := bindFromQuery(t, "sort=staff_count")
	assert.Equal(t, aggregate.SortStaffCount, opts.SortColumn)
	assert.False(t, opts.Descending)
}

func TestBindListOptionsUnknownSortColumnFallsBack(t *testing.T) {
	opts := bindFromQuery(t, "sort_column=nope&page=2&page_size=5")
	assert.Empty(t, opts.SortColumn)
	assert.Equal(t, 2, opts.Page)
	assert.Equal(t, 5, opts.PageSize)
}
