package models

// Pagination is the page metadata every paged list endpoint returns.
type Pagination struct {
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Total int `json:"total"`
}

// HasNext reports whether another page exists after the current one.
func (p Pagination) HasNext() bool {
	return p.Page < p.Pages
}

// Next returns the next page number, or 0 and false on the last page.
func (p Pagination) Next() (int, bool) {
	if !p.HasNext() {
		return 0, false
	}
	return p.Page + 1, true
}
