package repository

// PageMeta describes one page of a list response.
type PageMeta struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPageMeta computes page metadata for a total row count.
func NewPageMeta(page, perPage, total int) PageMeta {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if page < 1 {
		page = 1
	}
	totalPages := total / perPage
	if total%perPage != 0 {
		totalPages++
	}
	return PageMeta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Offset returns the row offset for the page.
func (m PageMeta) Offset() int {
	return (m.Page - 1) * m.PerPage
}
