package models

// Pagination describes the window applied to a list response.
type Pagination struct {
	Skip       int `json:"skip"`
	Limit      int `json:"limit"`
	TotalCount int `json:"total_count"`
}

// ListFilter carries the offset/limit window for plain list endpoints.
type ListFilter struct {
	Skip  int
	Limit int
}

// Normalize clamps the window to sane bounds. The default page is the first
// hundred rows.
func (f ListFilter) Normalize() ListFilter {
	if f.Skip < 0 {
		f.Skip = 0
	}
	if f.Limit <= 0 || f.Limit > 1000 {
		f.Limit = 100
	}
	return f
}
