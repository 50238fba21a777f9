package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Params holds pagination parameters extracted from a request.
type Params struct {
	Limit  int
	Offset int
}

// FromContext extracts pagination parameters from the echo context.
func FromContext(c echo.Context) Params {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if offset < 0 {
		offset = 0
	}

	return Params{Limit: limit, Offset: offset}
}

// Response wraps a paginated API response.
type Response struct {
	Data    interface{} `json:"data"`
	Total   int         `json:"total"`
	Limit   int         `json:"limit"`
	Offset  int         `json:"offset"`
	HasMore bool        `json:"has_more"`
}

func NewResponse(data interface{}, total, limit, offset int) *Response {
	return &Response{
		Data:    data,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: remaining(total, offset) > limit,
	}
}

// remaining is how many items lie past offset. It never overflows, even for
// offsets near math.MaxInt.
func remaining(total, offset int) int {
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return 0
	}
	return total - offset
}

// Window returns the [start, end) bounds of the page within a slice of
// length total.
func (p Params) Window(total int) (start, end int) {
	start = total - remaining(total, p.Offset)
	end = total
	if p.Limit >= 0 && p.Limit < end-start {
		end = start + p.Limit
	}
	return start, end
}
