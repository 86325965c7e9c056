package models

// Page is a paginated result set.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"total_elements"`
}

// PageRequest carries normalized pagination parameters.
type PageRequest struct {
	Page int
	Size int
}

// NewPageRequest clamps page and size to sane bounds.
func NewPageRequest(page, size int) PageRequest {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 10
	}
	if size > 100 {
		size = 100
	}
	return PageRequest{Page: page, Size: size}
}

// Limit returns the SQL LIMIT for the request.
func (p PageRequest) Limit() int { return p.Size }

// Offset returns the SQL OFFSET for the request.
func (p PageRequest) Offset() int { return p.Page * p.Size }
