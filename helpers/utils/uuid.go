package utils

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GenerateJobID tạo ID cho batch job (UUID v4)
func GenerateJobID() string {
	return uuid.NewString()
}

// GenerateShortID tạo ID ngắn (8 ký tự hex đầu của UUID)
func GenerateShortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// IsJobID kiểm tra chuỗi có phải UUID hợp lệ không
func IsJobID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// Fingerprint sinh fingerprint sha256 cho chuỗi đầu vào
func Fingerprint(s string) string {
	hash := sha256.Sum256([]byte(s))
	return fmt.Sprintf("sha256:%x", hash)
}

// CacheKey key cache theo phiên bản bảng tham chiếu
func CacheKey(tableVersion, fingerprint string) string {
	return tableVersion + ":" + fingerprint
}
