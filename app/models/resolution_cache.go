package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ResolutionCache bản ghi cache kết quả resolve trong MongoDB
type ResolutionCache struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CacheKey     string             `bson:"cache_key" json:"cache_key"`     // table_version:fingerprint
	Locality     string             `bson:"locality" json:"locality"`       // Chuỗi gốc
	Result       ResolutionResult   `bson:"result" json:"result"`           // Kết quả resolve
	OfficeCode   string             `bson:"office_code" json:"office_code"` // Mã cơ quan thuế (rỗng khi không khớp)
	TableVersion string             `bson:"table_version" json:"table_version"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	LastAccessed time.Time          `bson:"last_accessed" json:"last_accessed"`
	AccessCount  int                `bson:"access_count" json:"access_count"`
}

// NewResolutionCache tạo mới một ResolutionCache
func NewResolutionCache(key string, result ResolutionResult) *ResolutionCache {
	now := time.Now()
	return &ResolutionCache{
		CacheKey:     key,
		Locality:     result.Locality,
		Result:       result,
		OfficeCode:   result.OfficeCode(),
		TableVersion: result.TableVersion,
		CreatedAt:    now,
		LastAccessed: now,
		AccessCount:  1,
	}
}

// UpdateAccess cập nhật thông tin truy cập
func (rc *ResolutionCache) UpdateAccess() {
	rc.LastAccessed = time.Now()
	rc.AccessCount++
}

// IsExpired kiểm tra cache có hết hạn không (dựa trên thời gian tạo)
func (rc *ResolutionCache) IsExpired(ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return time.Since(rc.CreatedAt) > ttl
}

// IsValidTableVersion kiểm tra phiên bản bảng tham chiếu có khớp không
func (rc *ResolutionCache) IsValidTableVersion(currentVersion string) bool {
	return rc.TableVersion == currentVersion
}
