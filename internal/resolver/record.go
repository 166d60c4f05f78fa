package resolver

import (
	"github.com/ugd-resolver/internal/normalizer"
	"github.com/ugd-resolver/internal/reference"
)

// Record bản ghi cơ quan thuế đã chuẩn hóa. Không được sửa sau khi tạo.
type Record struct {
	Code             string   `json:"code"`
	BIN              string   `json:"bin"`
	RawName          string   `json:"name"`
	RawRegion        string   `json:"region,omitempty"`
	NameTokens       []string `json:"name_tokens"`
	NormalizedRegion string   `json:"normalized_region,omitempty"`
	IsDistrict       bool     `json:"is_district"`
}

// NewRecord chuẩn hóa một dòng thô của bảng tham chiếu
func NewRecord(raw reference.RawRecord) *Record {
	norm := normalizer.NormalizeRecord(raw.Name, raw.Region)
	return &Record{
		Code:             raw.Code,
		BIN:              raw.BIN,
		RawName:          raw.Name,
		RawRegion:        raw.Region,
		NameTokens:       norm.NameTokens,
		NormalizedRegion: norm.NormalizedRegion,
		IsDistrict:       norm.IsDistrict,
	}
}

// Raw trả lại dạng thô của bản ghi (dùng khi export)
func (r *Record) Raw() reference.RawRecord {
	return reference.RawRecord{
		Code:   r.Code,
		BIN:    r.BIN,
		Name:   r.RawName,
		Region: r.RawRegion,
	}
}

// HasToken true nếu tên chứa đúng token này
func (r *Record) HasToken(term string) bool {
	for _, token := range r.NameTokens {
		if token == term {
			return true
		}
	}
	return false
}
