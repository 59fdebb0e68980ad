package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params holds pagination parameters extracted from a request.
type Params struct {
	Page   int
	Limit  int
	Offset int
}

// FromContext extracts page/limit query parameters from the echo context.
// Page numbering starts at 1.
func FromContext(c echo.Context) Params {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page <= 0 {
		page = 1
	}

	return Params{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// Response wraps a paginated API payload.
type Response struct {
	Items      interface{} `json:"items"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
	HasMore    bool        `json:"has_more"`
}

func NewResponse(items interface{}, total int, p Params) *Response {
	totalPages := 0
	if p.Limit > 0 {
		totalPages = (total + p.Limit - 1) / p.Limit
	}
	return &Response{
		Items:      items,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: totalPages,
		HasMore:    p.Offset+p.Limit < total,
	}
}

// HasNext reports whether results exist after the current page.
func (p Params) HasNext(total int) bool {
	return p.Offset+p.Limit < total
}
