package aggregate

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(name string, assigned bool, incidents int) Row {
	return Row{ID: uuid.New(), Name: name, IsAssigned: assigned, IncidentsCount: incidents}
}

func names(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}

func TestPrepareDefaultOrderingAssignedFirstThenName(t *testing.T) {
	rows := []Row{
		row("Bravo", false, 0),
		row("alpha", false, 0),
		row("Zulu", true, 0),
		row("yankee", true, 0),
	}
	got, total := Prepare(rows, ListOptions{})
	assert.Equal(t, 4, total)
	assert.Equal(t, []string{"yankee", "Zulu", "alpha", "Bravo"}, names(got))
}

func TestPrepareKeywordFilterIsCaseInsensitive(t *testing.T) {
	rows := []Row{
		row("Medical Team", false, 0),
		row("Security", false, 0),
		row("medics north", false, 0),
	}
	got, total := Prepare(rows, ListOptions{Keyword: "MEDIC"})
	assert.Equal(t, 2, total)
	assert.Equal(t, []string{"Medical Team", "medics north"}, names(got))
}

func TestPrepareIsAssignedFilter(t *testing.T) {
	assigned := true
	rows := []Row{
		row("a", true, 0),
		row("b", false, 0),
	}
	got, total := Prepare(rows, ListOptions{IsAssigned: &assigned})
	assert.Equal(t, 1, total)
	assert.Equal(t, []string{"a"}, names(got))
}

func TestPrepareSortByIncidentsDescendingKeepsAssignedFirst(t *testing.T) {
	rows := []Row{
		row("few", true, 1),
		row("many", true, 9),
		row("unassigned-many", false, 50),
	}
	got, _ := Prepare(rows, ListOptions{SortColumn: SortIncidentsCount, Descending: true})
	assert.Equal(t, []string{"many", "few", "unassigned-many"}, names(got))
}

func TestPreparePagination(t *testing.T) {
	rows := []Row{
		row("a", false, 0), row("b", false, 0), row("c", false, 0),
		row("d", false, 0), row("e", false, 0),
	}
	got, total := Prepare(rows, ListOptions{Page: 2, PageSize: 2})
	assert.Equal(t, 5, total)
	assert.Equal(t, []string{"c", "d"}, names(got))

	got, total = Prepare(rows, ListOptions{Page: 9, PageSize: 2})
	assert.Equal(t, 5, total)
	assert.Empty(t, got)
}

func TestTopSortedExcludesZeroAndCapsAtTen(t *testing.T) {
	rows := make([]Row, 0, 14)
	for i := 0; i < 12; i++ {
		rows = append(rows, Row{ID: uuid.New(), Name: string(rune('a' + i)), IncidentsCount: i + 1})
	}
	rows = append(rows, row("idle-1", true, 0), row("idle-2", false, 0))

	got, total := Prepare(rows, ListOptions{TopSorted: true, Keyword: "ignored", Page: 3})
	require.Len(t, got, TopSortedLimit)
	assert.Equal(t, TopSortedLimit, total)
	// descending by incident count, zero-count rows never appear
	assert.Equal(t, 12, got[0].IncidentsCount)
	assert.Equal(t, 3, got[len(got)-1].IncidentsCount)
	for _, r := range got {
		assert.Greater(t, r.IncidentsCount, 0)
	}
}

func TestStaffCountUnavailableIsTotalMinusAvailable(t *testing.T) {
	c := StaffCount{Total: 7, Available: 3}
	assert.Equal(t, 4, c.Unavailable())
}
