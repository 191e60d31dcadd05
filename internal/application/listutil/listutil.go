package listutil

import (
	"cmp"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"rollcall/internal/domain/stats"
)

// PageParams carries pagination parameters parsed from a request.
type PageParams struct {
	Page    int // 1-indexed page number
	PerPage int // rows per page
}

// SortParams carries sorting parameters parsed from a request.
type SortParams struct {
	Sort string // column name
	Dir  string // "asc" or "desc"
}

// PageInfo carries pagination metadata for responses.
type PageInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Sortable columns of the member stats table.
const (
	SortName     = "name"
	SortRate     = "rate"
	SortAttended = "attended"
)

// StatsSortColumns lists the columns SortStats understands.
var StatsSortColumns = []string{SortName, SortRate, SortAttended}

// MaxPerPage bounds per_page regardless of the configured default.
const MaxPerPage = 200

// ParsePageParams extracts page and per_page from URL query values.
// PRE: defaultPerPage is within [1, MaxPerPage]
// POST: returns valid PageParams with defaults applied
func ParsePageParams(q url.Values, defaultPerPage int) PageParams {
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if perPage < 1 || perPage > MaxPerPage {
		perPage = defaultPerPage
	}
	return PageParams{Page: page, PerPage: perPage}
}

// ParseSortParams extracts sort and dir from URL query values.
// PRE: none
// POST: returns SortParams; Dir is always "asc" or "desc"
func ParseSortParams(q url.Values, allowedColumns []string) SortParams {
	sort := strings.ToLower(q.Get("sort"))
	dir := strings.ToLower(q.Get("dir"))

	if !slices.Contains(allowedColumns, sort) {
		sort = ""
	}
	if dir != "asc" && dir != "desc" {
		dir = "asc"
	}
	return SortParams{Sort: sort, Dir: dir}
}

// NewPageInfo computes pagination metadata.
// PRE: total >= 0
// POST: returns PageInfo with TotalPages computed; Page clamped to valid range
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = 1
	}
	totalPages := max((total+perPage-1)/perPage, 1)
	page = min(max(page, 1), totalPages)
	return PageInfo{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Offset returns the index of the first row on the current page.
// POST: Returns (Page-1) * PerPage
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// EndRow returns the exclusive end index of the current page.
// POST: Returns min(Offset+PerPage, Total)
func (p PageInfo) EndRow() int {
	return min(p.Offset()+p.PerPage, p.Total)
}

// Paginate returns the rows of items on the requested page and the page metadata.
// The returned slice shares storage with items.
func Paginate[T any](items []T, params PageParams) ([]T, PageInfo) {
	info := NewPageInfo(params.Page, params.PerPage, len(items))
	return items[info.Offset():info.EndRow()], info
}

// SortStats returns a sorted copy of memberStats. An empty column keeps
// roster order. Ties fall back to member name then id so pages are stable.
func SortStats(memberStats []stats.MemberAttendanceStat, params SortParams) []stats.MemberAttendanceStat {
	out := slices.Clone(memberStats)
	if params.Sort == "" {
		if params.Dir == "desc" {
			slices.Reverse(out)
		}
		return out
	}

	byName := func(a, b stats.MemberAttendanceStat) int {
		return cmp.Or(
			cmp.Compare(strings.ToLower(a.Member.Name), strings.ToLower(b.Member.Name)),
			cmp.Compare(a.Member.ID, b.Member.ID),
		)
	}
	primary := byName
	switch params.Sort {
	case SortRate:
		primary = func(a, b stats.MemberAttendanceStat) int { return cmp.Compare(a.AttendanceRate, b.AttendanceRate) }
	case SortAttended:
		primary = func(a, b stats.MemberAttendanceStat) int { return cmp.Compare(a.EventsAttended, b.EventsAttended) }
	}

	slices.SortStableFunc(out, func(a, b stats.MemberAttendanceStat) int {
		c := primary(a, b)
		if params.Dir == "desc" {
			c = -c
		}
		if c != 0 {
			return c
		}
		return byName(a, b)
	})
	return out
}
