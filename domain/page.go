package domain

const DefaultPageSize = 10

type PageQuery struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

func (q *PageQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageSize
	}
}

func (q PageQuery) Skip() int {
	skip := (q.Page - 1) * q.Limit
	if skip < 0 {
		return 0
	}
	return skip
}

type Pagination struct {
	Page       int `json:"page"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
	Count      int `json:"count"`
}

func BuildPagination(q PageQuery, total, pageCount int) Pagination {
	totalPages := total / q.Limit
	if total%q.Limit != 0 {
		totalPages++
	}
	return Pagination{
		Page:       q.Page,
		Total:      total,
		TotalPages: totalPages,
		Count:      pageCount + q.Skip(),
	}
}
