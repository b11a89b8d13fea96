package pagination

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Page holds a normalized limit/offset pair.
type Page struct {
	Limit  int
	Offset int
}

// Normalize clamps limit to [1, MaxLimit] and offset to >= 0. Zero or
// negative limit falls back to DefaultLimit.
func Normalize(limit, offset int) Page {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return Page{Limit: limit, Offset: offset}
}

// Meta describes the position of a page within the full filtered result set.
type Meta struct {
	Total       int `json:"total"`
	Limit       int `json:"limit"`
	Offset      int `json:"offset"`
	HasMore     bool `json:"has_more"`
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
}

// NewMeta computes page metadata for a total count before pagination.
// Callers must pass a normalized limit (>= 1).
func NewMeta(total, limit, offset int) Meta {
	return Meta{
		Total:       total,
		Limit:       limit,
		Offset:      offset,
		HasMore:     offset+limit < total,
		CurrentPage: offset/limit + 1,
		TotalPages:  (total + limit - 1) / limit,
	}
}
