package grid

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// UnknownLastRow means more rows exist past the returned window.
const UnknownLastRow = -1

const containsOp = "contains"

var (
	ErrFetch           = errors.New("row block fetch failed")
	ErrInvalidWindow   = errors.New("invalid row window")
	ErrUnalignedWindow = errors.New("row window is not aligned to its size")
	ErrNoSnapshot      = errors.New("no offline snapshot for rows")
)

// Filter is a single column predicate as produced by a text column filter.
type Filter struct {
	Type   string `json:"type"`
	Filter string `json:"filter"`
}

// Contains builds the only filter the backend understands.
func Contains(value string) Filter {
	return Filter{Type: containsOp, Filter: value}
}

// FilterModel maps a column name to its filter.
type FilterModel map[string]Filter

// Clone returns an independent copy of m.
func (m FilterModel) Clone() FilterModel {
	out := make(FilterModel, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Key is a stable text form of m, used to tell cached results apart.
func (m FilterModel) Key() string {
	cols := make([]string, 0, len(m))
	for c := range m {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	var b strings.Builder
	for i, c := range cols {
		if i > 0 {
			b.WriteByte('&')
		}
		f := m[c]
		b.WriteString(url.QueryEscape(c))
		b.WriteByte(':')
		b.WriteString(url.QueryEscape(f.Type))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(f.Filter))
	}
	return b.String()
}

// Request is one row window asked for by the grid.
type Request struct {
	StartRow int
	EndRow   int
	Filters  FilterModel
}

// PageParams returns the backend page and limit for the window.
func PageParams(startRow, endRow int) (page, limit int, err error) {
	if startRow < 0 || endRow <= startRow {
		return 0, 0, fmt.Errorf("%w: [%d, %d)", ErrInvalidWindow, startRow, endRow)
	}
	limit = endRow - startRow
	if startRow%limit != 0 {
		return 0, 0, fmt.Errorf("%w: [%d, %d)", ErrUnalignedWindow, startRow, endRow)
	}
	return endRow / limit, limit, nil
}

// FlattenFilters turns every "contains" filter into a <column>_contains
// parameter. Columns whose filter uses another operator are returned in
// dropped, sorted.
func FlattenFilters(m FilterModel) (params url.Values, dropped []string) {
	params = url.Values{}
	for col, f := range m {
		if f.Type != containsOp {
			dropped = append(dropped, col)
			continue
		}
		params.Set(col+"_contains", f.Filter)
	}
	sort.Strings(dropped)
	return params, dropped
}

// BuildQuery returns the full GET /leads query for req.
func BuildQuery(req Request) (url.Values, []string, error) {
	page, limit, err := PageParams(req.StartRow, req.EndRow)
	if err != nil {
		return nil, nil, err
	}
	params, dropped := FlattenFilters(req.Filters)
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))
	return params, dropped, nil
}

// LastRow reports total when the window reaches the end of the result
// set and UnknownLastRow otherwise.
func LastRow(total, endRow int) int {
	if total <= endRow {
		return total
	}
	return UnknownLastRow
}
