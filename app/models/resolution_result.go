package models

import (
	"github.com/ugd-resolver/internal/parser"
	"github.com/ugd-resolver/internal/resolver"
	"github.com/ugd-resolver/internal/suggest"
)

// Trạng thái resolve
const (
	StatusMatched   = "matched"
	StatusUnmatched = "unmatched"
	StatusEmpty     = "empty"
)

// ResolutionResult kết quả resolve một chuỗi địa danh
type ResolutionResult struct {
	Locality     string                     `json:"locality" bson:"locality"`                 // Chuỗi gốc (đã NFC + trim)
	Normalized   string                     `json:"normalized" bson:"normalized"`             // Chuỗi đã chuẩn hóa
	Fingerprint  string                     `json:"fingerprint" bson:"fingerprint"`           // sha256 của chuỗi đã chuẩn hóa
	Status       string                     `json:"status" bson:"status"`                     // matched | unmatched | empty
	Office       *TaxOffice                 `json:"office,omitempty" bson:"office,omitempty"` // Cơ quan thuế khớp
	Score        int                        `json:"score" bson:"score"`
	TableVersion string                     `json:"table_version" bson:"table_version"`
	Parsed       *parser.ParsedAddressInput `json:"parsed,omitempty" bson:"parsed,omitempty"`
	Suggestions  []suggest.Suggestion       `json:"suggestions,omitempty" bson:"suggestions,omitempty"`
	Explain      *resolver.Resolution       `json:"explain,omitempty" bson:"-"`
	CacheHit     bool                       `json:"-" bson:"-"`
}

// Matched true khi có cơ quan thuế khớp
func (r *ResolutionResult) Matched() bool {
	return r != nil && r.Status == StatusMatched && r.Office != nil
}

// OfficeCode mã cơ quan thuế hoặc "" khi không khớp
func (r *ResolutionResult) OfficeCode() string {
	if !r.Matched() {
		return ""
	}
	return r.Office.Code
}
