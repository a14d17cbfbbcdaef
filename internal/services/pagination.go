package services

// PageRequest is a 1-indexed pagination request.
type PageRequest struct {
	Page  int
	Limit int
}

// Normalize clamps the request to sane values. Page defaults to 1, limit to
// defLimit, capped at maxLimit.
func (p PageRequest) Normalize(defLimit, maxLimit int) PageRequest {
	out := p
	if out.Page < 1 {
		out.Page = 1
	}
	if out.Limit < 1 {
		out.Limit = defLimit
	}
	if maxLimit > 0 && out.Limit > maxLimit {
		out.Limit = maxLimit
	}
	return out
}

// Skip returns the number of documents to skip for this page.
func (p PageRequest) Skip() int {
	return (p.Page - 1) * p.Limit
}

// PageResult describes the page actually returned.
type PageResult struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewPageResult computes totalPages = ceil(total/limit).
func NewPageResult(req PageRequest, total int64) PageResult {
	totalPages := 0
	if req.Limit > 0 {
		totalPages = int((total + int64(req.Limit) - 1) / int64(req.Limit))
	}
	return PageResult{
		Page:       req.Page,
		Limit:      req.Limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
