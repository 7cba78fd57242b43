package listutil

import (
	"math"
	"net/url"
	"testing"
)

var allowed = []string{"id", "name", "email"}

func TestParsePageable(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Pageable
	}{
		{"defaults", "", Pageable{Page: 0, Size: 20, Sort: "", Dir: "asc"}},
		{"explicit", "page=3&size=50&sort=name,desc", Pageable{Page: 3, Size: 50, Sort: "name", Dir: "desc"}},
		{"sort without dir", "sort=email", Pageable{Page: 0, Size: 20, Sort: "email", Dir: "asc"}},
		{"upper case dir", "sort=id,DESC", Pageable{Page: 0, Size: 20, Sort: "id", Dir: "desc"}},
		{"negative page", "page=-2", Pageable{Page: 0, Size: 20, Dir: "asc"}},
		{"size not an option", "size=33", Pageable{Page: 0, Size: 20, Dir: "asc"}},
		{"disallowed sort", "sort=password,desc", Pageable{Page: 0, Size: 20, Sort: "", Dir: "desc"}},
		{"huge page", "page=922337203685477581&size=20", Pageable{Page: MaxPage, Size: 20, Dir: "asc"}},
		{"page beyond int range", "page=99999999999999999999999", Pageable{Page: MaxPage, Size: 20, Dir: "asc"}},
		{"garbage", "page=abc&size=xyz&sort=,sideways", Pageable{Page: 0, Size: 20, Dir: "asc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			if got := ParsePageable(q, allowed); got != tt.want {
				t.Errorf("ParsePageable(%q) = %+v, want %+v", tt.query, got, tt.want)
			}
		})
	}
}

func TestPageable_SortParamAndOffset(t *testing.T) {
	p := Pageable{Page: 2, Size: 50, Sort: "name", Dir: "desc"}
	if got := p.SortParam(); got != "name,desc" {
		t.Errorf("SortParam() = %q", got)
	}
	if got := p.Offset(); got != 100 {
		t.Errorf("Offset() = %d, want 100", got)
	}
	if got := (Pageable{}).SortParam(); got != "" {
		t.Errorf("empty SortParam() = %q", got)
	}
}

func TestNewPageInfo(t *testing.T) {
	tests := []struct {
		name                string
		page, size, total   int
		wantPages, wantOff  int
		wantFirst, wantLast bool
	}{
		{"empty", 0, 20, 0, 0, 0, true, true},
		{"one partial page", 0, 20, 5, 1, 0, true, true},
		{"exact pages", 1, 10, 20, 2, 10, false, true},
		{"middle page", 1, 10, 35, 4, 10, false, false},
		{"past the end", 9, 10, 35, 4, 90, false, true},
		{"zero size defaults", 0, 0, 45, 3, 0, true, false},
		{"huge page clamped", math.MaxInt, 200, 35, 1, (math.MaxInt / 200) * 200, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pi := NewPageInfo(tt.page, tt.size, tt.total)
			if pi.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", pi.TotalPages, tt.wantPages)
			}
			if pi.Offset() != tt.wantOff {
				t.Errorf("Offset() = %d, want %d", pi.Offset(), tt.wantOff)
			}
			if pi.First() != tt.wantFirst || pi.Last() != tt.wantLast {
				t.Errorf("First/Last = %v/%v, want %v/%v", pi.First(), pi.Last(), tt.wantFirst, tt.wantLast)
			}
		})
	}
}
