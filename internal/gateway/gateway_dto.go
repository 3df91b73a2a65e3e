package gateway

// ListMeta is the fixed pagination contract every list endpoint honors:
// 1-based page numbers and a server-chosen page size.
type ListMeta struct {
	CurrentPage int `json:"current_page"`
	Total       int `json:"total"`
	PerPage     int `json:"per_page"`
}

// LastPage derives the highest valid 1-based page number.
func (m ListMeta) LastPage() int {
	if m.Total <= 0 || m.PerPage < 1 {
		return 0
	}
	return (m.Total + m.PerPage - 1) / m.PerPage
}
