package aggregate

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Row is one listing entry with its aggregates merged in. Shaping (filter,
// sort, paginate) happens in memory after the batched queries ran.
type Row struct {
	ID                    uuid.UUID `json:"id"`
	Name                  string    `json:"name"`
	Pinned                bool      `json:"pinned"`
	IsAssigned            bool      `json:"is_assigned"`
	StaffCount            int       `json:"staff_count"`
	AvailableStaffCount   int       `json:"available_staff_count"`
	UnavailableStaffCount int       `json:"unavailable_staff_count"`
	IncidentsCount        int       `json:"incidents_count"`
	ResolvedAvgTimeSec    float64   `json:"resolved_avg_time_sec"`
}

// Sortable columns accepted via the sort query parameter.
const (
	SortName           = "name"
	SortStaffCount     = "staff_count"
	SortIncidentsCount = "incidents_count"
	SortResolvedAvg    = "resolved_avg_time"
)

// TopSortedLimit caps the top_sorted shortcut listing.
const TopSortedLimit = 10

// ListOptions controls listing shape. Zero value means: no filter, default
// ordering, first page with DefaultPageSize entries.
type ListOptions struct {
	Keyword    string
	IsAssigned *bool
	SortColumn string
	Descending bool
	TopSorted  bool
	Page       int
	PageSize   int
	// IncludeUncategorized adds the pseudo-entity for incidents carrying no
	// division. Only meaningful for division listings.
	IncludeUncategorized bool
}

// DefaultPageSize matches the listing endpoints' default.
const DefaultPageSize = 25

// AllRows as PageSize disables pagination (used by exports).
const AllRows = -1

// Prepare applies filtering, ordering and pagination and returns the visible
// page plus the total row count after filtering. TopSorted overrides every
// other shaping option.
func Prepare(rows []Row, opts ListOptions) ([]Row, int) {
	if opts.TopSorted {
		top := topSorted(rows)
		return top, len(top)
	}
	filtered := Filter(rows, opts)
	Sort(filtered, opts)
	return paginate(filtered, opts), len(filtered)
}

// Filter returns the rows matching the keyword and assignment filters. The
// keyword matches the name case-insensitively as a substring.
func Filter(rows []Row, opts ListOptions) []Row {
	keyword := strings.ToLower(strings.TrimSpace(opts.Keyword))
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if keyword != "" && !strings.Contains(strings.ToLower(r.Name), keyword) {
			continue
		}
		if opts.IsAssigned != nil && r.IsAssigned != *opts.IsAssigned {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Sort orders rows in place: assigned entities first, then the requested
// column, then name ascending case-insensitively as the stable tiebreak.
func Sort(rows []Row, opts ListOptions) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.IsAssigned != b.IsAssigned {
			return a.IsAssigned
		}
		if cmp := compareColumn(a, b, opts.SortColumn); cmp != 0 {
			if opts.Descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return lessByName(a, b)
	})
}

func compareColumn(a, b Row, column string) int {
	switch column {
	case SortStaffCount:
		return a.StaffCount - b.StaffCount
	case SortIncidentsCount:
		return a.IncidentsCount - b.IncidentsCount
	case SortResolvedAvg:
		switch {
		case a.ResolvedAvgTimeSec < b.ResolvedAvgTimeSec:
			return -1
		case a.ResolvedAvgTimeSec > b.ResolvedAvgTimeSec:
			return 1
		}
		return 0
	case SortName:
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	default:
		return 0
	}
}

func lessByName(a, b Row) bool {
	return strings.ToLower(a.Name) < strings.ToLower(b.Name)
}

// topSorted keeps entities with at least one incident, orders them by
// incident count descending (name as tiebreak) and caps the result.
func topSorted(rows []Row) []Row {
	withIncidents := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.IncidentsCount > 0 {
			withIncidents = append(withIncidents, r)
		}
	}
	sort.SliceStable(withIncidents, func(i, j int) bool {
		if withIncidents[i].IncidentsCount != withIncidents[j].IncidentsCount {
			return withIncidents[i].IncidentsCount > withIncidents[j].IncidentsCount
		}
		return lessByName(withIncidents[i], withIncidents[j])
	})
	if len(withIncidents) > TopSortedLimit {
		withIncidents = withIncidents[:TopSortedLimit]
	}
	return withIncidents
}

func paginate(rows []Row, opts ListOptions) []Row {
	size := opts.PageSize
	if size == AllRows {
		return rows
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	page := opts.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * size
	if start >= len(rows) {
		return []Row{}
	}
	end := start + size
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}
