package requests

// ResolveRequest request resolve một chuỗi địa danh
type ResolveRequest struct {
	Locality string         `json:"locality" binding:"required"` // Địa danh người dùng nhập
	Options  ResolveOptions `json:"options,omitempty"`           // Tùy chọn resolve
}

// ResolveOptions tùy chọn resolve
type ResolveOptions struct {
	UseCache bool `json:"use_cache,omitempty"` // Có sử dụng cache không
	Explain  bool `json:"explain,omitempty"`   // Trả về danh sách ứng viên + lý do chấm điểm
	Suggest  bool `json:"suggest,omitempty"`   // Gợi ý khi không khớp
}

// BatchResolveRequest request resolve hàng loạt
type BatchResolveRequest struct {
	Localities []string       `json:"localities" binding:"required,min=1"` // Danh sách địa danh
	Options    ResolveOptions `json:"options,omitempty"`
}

// InvalidateCacheRequest request invalidate cache; rỗng = phiên bản bảng hiện tại
type InvalidateCacheRequest struct {
	TableVersion string `json:"table_version,omitempty"`
	All          bool   `json:"all,omitempty"` // Xóa toàn bộ cache
}
