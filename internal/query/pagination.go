package query

import (
	"net/url"
	"strconv"

	apperr "github.com/cookshelf/backend/internal/errors"
)

// Page describes one page of a filtered result set. The page number is
// clamped, never rejected: a stale bookmark into a now-shorter result set
// degrades gracefully to the last page.
type Page struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
	Offset     int   `json:"-"`
}

// NewPage computes page metadata from the post-filter row count.
// TotalPages is at least 1 even for an empty result set, so page 1 of an
// empty listing is a valid, empty page rather than an error.
func NewPage(page, pageSize int, totalItems int64) (Page, error) {
	if pageSize < 1 {
		return Page{}, apperr.New(apperr.CodeInvalid, "page_size must be greater than zero")
	}
	if page < 1 {
		page = 1
	}

	totalPages := int((totalItems + int64(pageSize) - 1) / int64(pageSize))
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}

	return Page{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
		Offset:     (page - 1) * pageSize,
	}, nil
}

// HasPrevious reports whether a previous page exists.
func (p Page) HasPrevious() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p Page) HasNext() bool { return p.Page < p.TotalPages }

// Link builds the listing URL for the given page number, carrying the
// original filter and sort fragments forward so repeated pagination preserves
// the caller's view.
func (p Page) Link(path string, page int, filters FilterSet, sorts SortSet) string {
	values := url.Values{}
	values.Set("page", strconv.Itoa(page))
	values.Set("page_size", strconv.Itoa(p.PageSize))
	if filters.Raw != "" {
		values.Set("filters", filters.Raw)
	}
	if sorts.Raw != "" {
		values.Set("sort", sorts.Raw)
	}
	return path + "?" + values.Encode()
}

// PreviousLink returns the previous-page URL, or "" when on the first page.
func (p Page) PreviousLink(path string, filters FilterSet, sorts SortSet) string {
	if !p.HasPrevious() {
		return ""
	}
	return p.Link(path, p.Page-1, filters, sorts)
}

// NextLink returns the next-page URL, or "" when on the last page.
func (p Page) NextLink(path string, filters FilterSet, sorts SortSet) string {
	if !p.HasNext() {
		return ""
	}
	return p.Link(path, p.Page+1, filters, sorts)
}
