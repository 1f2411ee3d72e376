package pagination

import "testing"

func TestNewOffsetRequest(t *testing.T) {
	tests := []struct {
		name       string
		offset     int
		limit      int
		wantOffset int
		wantLimit  int
	}{
		{name: "valid values", offset: 20, limit: 50, wantOffset: 20, wantLimit: 50},
		{name: "negative offset", offset: -5, limit: 10, wantOffset: 0, wantLimit: 10},
		{name: "zero limit", offset: 0, limit: 0, wantOffset: 0, wantLimit: DefaultLimit},
		{name: "limit over max", offset: 0, limit: 500, wantOffset: 0, wantLimit: DefaultLimit},
		{name: "limit at max", offset: 0, limit: MaxLimit, wantOffset: 0, wantLimit: MaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := NewOffsetRequest(tt.offset, tt.limit)
			if req.GetOffset() != tt.wantOffset {
				t.Errorf("GetOffset() = %d, want %d", req.GetOffset(), tt.wantOffset)
			}
			if req.GetLimit() != tt.wantLimit {
				t.Errorf("GetLimit() = %d, want %d", req.GetLimit(), tt.wantLimit)
			}
		})
	}
}

func TestNewOffsetResponse(t *testing.T) {
	tests := []struct {
		name        string
		offset      int
		items       int
		total       int64
		wantHasMore bool
	}{
		{name: "more pages remain", offset: 0, items: 10, total: 25, wantHasMore: true},
		{name: "last full page", offset: 20, items: 5, total: 25, wantHasMore: false},
		{name: "empty result", offset: 0, items: 0, total: 0, wantHasMore: false},
		{name: "offset past end", offset: 100, items: 0, total: 25, wantHasMore: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := NewOffsetRequest(tt.offset, 10)
			items := make([]string, tt.items)
			resp := NewOffsetResponse(req, items, tt.total)
			if resp.HasMore != tt.wantHasMore {
				t.Errorf("HasMore = %v, want %v", resp.HasMore, tt.wantHasMore)
			}
			if resp.TotalItems != tt.total {
				t.Errorf("TotalItems = %d, want %d", resp.TotalItems, tt.total)
			}
			if len(resp.Items) != tt.items {
				t.Errorf("len(Items) = %d, want %d", len(resp.Items), tt.items)
			}
		})
	}
}
