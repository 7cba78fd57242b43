package listutil

import (
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Pageable carries paging and sorting parameters parsed from a request.
// Pages are 0-indexed.
type Pageable struct {
	Page int    // 0-indexed page number
	Size int    // rows per page
	Sort string // allowed sort key, empty for the default order
	Dir  string // "asc" or "desc"
}

// PageInfo carries pagination metadata for a response.
type PageInfo struct {
	Page       int // 0-indexed
	Size       int
	Total      int // total matching rows
	TotalPages int // ceil(Total / Size)
}

// DefaultSize is the default number of rows per page.
const DefaultSize = 20

// SizeOptions are the allowed rows-per-page values.
var SizeOptions = []int{10, 20, 50, 100, 200}

// MaxSize is the largest allowed page size.
const MaxSize = 200

// MaxPage is the largest page number whose offset fits in an int at any size.
const MaxPage = math.MaxInt / MaxSize

// ParsePageable extracts page, size and sort from URL query values.
// sort has the form "key" or "key,asc|desc".
// PRE: none
// POST: 0 <= Page <= MaxPage; Size is one of SizeOptions; Sort is empty or in allowedSort;
// Dir is always "asc" or "desc"
func ParsePageable(q url.Values, allowedSort []string) Pageable {
	page, _ := strconv.Atoi(q.Get("page"))
	page = min(max(page, 0), MaxPage)
	size, _ := strconv.Atoi(q.Get("size"))
	if !slices.Contains(SizeOptions, size) {
		size = DefaultSize
	}

	key, dir, _ := strings.Cut(q.Get("sort"), ",")
	key = strings.TrimSpace(key)
	dir = strings.ToLower(strings.TrimSpace(dir))
	if !slices.Contains(allowedSort, key) {
		key = ""
	}
	if dir != "desc" {
		dir = "asc"
	}
	return Pageable{Page: page, Size: size, Sort: key, Dir: dir}
}

// SortParam renders the sort back into its query form, e.g. "name,desc".
// POST: Returns "" when no sort key is set
func (p Pageable) SortParam() string {
	if p.Sort == "" {
		return ""
	}
	return p.Sort + "," + p.Dir
}

// Offset returns the SQL OFFSET for the page.
// POST: Returns Page * Size
func (p Pageable) Offset() int {
	return p.Page * p.Size
}

// NewPageInfo computes pagination metadata.
// Pages past the end are kept as requested so callers return empty content.
// PRE: total >= 0, page >= 0
// POST: TotalPages = ceil(total/size); size defaults to DefaultSize when < 1
func NewPageInfo(page, size, total int) PageInfo {
	if size < 1 {
		size = DefaultSize
	}
	page = min(max(page, 0), math.MaxInt/size)
	return PageInfo{
		Page:       page,
		Size:       size,
		Total:      total,
		TotalPages: (total + size - 1) / size,
	}
}

// Offset returns the SQL OFFSET for the current page.
// POST: Returns Page * Size
func (p PageInfo) Offset() int {
	return p.Page * p.Size
}

// First reports whether this is the first page.
func (p PageInfo) First() bool {
	return p.Page == 0
}

// Last reports whether no page follows this one.
// POST: true when Page >= TotalPages-1, including when there are no rows
func (p PageInfo) Last() bool {
	return p.Page >= p.TotalPages-1
}
