package pagination

// Limits for listing endpoints.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// OffsetRequest represents an offset-based pagination request.
type OffsetRequest struct {
	Offset int `json:"offset,omitempty"`
	Limit  int `json:"limit,omitempty"`
}

// OffsetResponse represents an offset-based pagination response.
type OffsetResponse[T any] struct {
	Items      []T   `json:"items"`
	Offset     int   `json:"offset"`
	Limit      int   `json:"limit"`
	TotalItems int64 `json:"total_items"`
	HasMore    bool  `json:"has_more"`
}

// NewOffsetRequest creates an offset request with validated defaults.
func NewOffsetRequest(offset, limit int) *OffsetRequest {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > MaxLimit {
		limit = DefaultLimit
	}
	return &OffsetRequest{Offset: offset, Limit: limit}
}

// GetOffset returns the validated offset for a SQL query.
func (r *OffsetRequest) GetOffset() int {
	if r.Offset < 0 {
		return 0
	}
	return r.Offset
}

// GetLimit returns the validated limit.
func (r *OffsetRequest) GetLimit() int {
	if r.Limit <= 0 || r.Limit > MaxLimit {
		return DefaultLimit
	}
	return r.Limit
}

// NewOffsetResponse builds a response from a fetched page and total count.
func NewOffsetResponse[T any](req *OffsetRequest, items []T, total int64) *OffsetResponse[T] {
	return &OffsetResponse[T]{
		Items:      items,
		Offset:     req.GetOffset(),
		Limit:      req.GetLimit(),
		TotalItems: total,
		HasMore:    int64(req.GetOffset()+len(items)) < total,
	}
}
