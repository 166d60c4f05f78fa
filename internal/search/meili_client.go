// Package search tìm kiếm cơ quan thuế theo tên (Meilisearch hoặc quét bộ nhớ)
package search

import (
	"fmt"

	ms "github.com/meilisearch/meilisearch-go"
)

// ClientWrapper bọc Meilisearch client với API tương thích 1.5.x
type ClientWrapper struct {
	cli ms.ServiceManager
}

// NewClientWrapper tạo mới Meilisearch client wrapper
func NewClientWrapper(url, key string) *ClientWrapper {
	return &ClientWrapper{
		cli: ms.New(url, ms.WithAPIKey(key)),
	}
}

// Healthy kiểm tra kết nối tới server
func (c *ClientWrapper) Healthy() error {
	if _, err := c.cli.Health(); err != nil {
		return fmt.Errorf("không thể kết nối Meilisearch: %w", err)
	}
	return nil
}

// Index trả về index theo uid
func (c *ClientWrapper) Index(uid string) ms.IndexManager {
	return c.cli.Index(uid)
}

// SearchIndex search với các tham số tương thích Meilisearch 1.5.x
func (c *ClientWrapper) SearchIndex(index string, q string, filter string, limit int64) (*ms.SearchResponse, error) {
	req := &ms.SearchRequest{
		Limit:  limit,
		Filter: filter,
	}
	return c.cli.Index(index).Search(q, req)
}

// FilterVersion filter document theo phiên bản bảng tham chiếu
func FilterVersion(version string) string {
	if version == "" {
		return ""
	}
	return fmt.Sprintf("table_version = %q", version)
}

// FilterDistrict filter thêm điều kiện văn phòng cấp quận
func FilterDistrict(version string, district bool) string {
	f := fmt.Sprintf("is_district = %t", district)
	if v := FilterVersion(version); v != "" {
		return v + " AND " + f
	}
	return f
}
