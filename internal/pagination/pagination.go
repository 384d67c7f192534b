package pagination

import (
	"net/http"
	"strconv"
)

const maxLimit = 100

// Params is a page request. Page is 1-based.
type Params struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Offset returns the row offset for the page.
func (p Params) Offset() int { return (p.Page - 1) * p.Limit }

// Page describes the slice of results returned to the client.
type Page struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

func (p Params) Result(total int) Page {
	return Page{Page: p.Page, Limit: p.Limit, Total: total}
}

// New clamps page and limit to sane values.
func New(page, limit, defaultLimit int) Params {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return Params{Page: page, Limit: limit}
}

// FromRequest reads ?page= and ?limit= from the query string.
func FromRequest(r *http.Request, defaultLimit int) Params {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return New(page, limit, defaultLimit)
}

// Window returns the [start, end) bounds of the page inside n items.
func (p Params) Window(n int) (int, int) {
	start := p.Offset()
	if start > n {
		start = n
	}
	end := start + p.Limit
	if end > n {
		end = n
	}
	return start, end
}
