package models

import "github.com/ugd-resolver/internal/resolver"

// TaxOffice cơ quan thuế trả về cho client (dạng gốc, không có token)
type TaxOffice struct {
	Code       string `json:"code" bson:"code"`
	BIN        string `json:"bin" bson:"bin"`
	Name       string `json:"name" bson:"name"`
	Region     string `json:"region,omitempty" bson:"region,omitempty"`
	IsDistrict bool   `json:"is_district" bson:"is_district"`
}

// NewTaxOffice tạo TaxOffice từ bản ghi tham chiếu; nil khi rec nil
func NewTaxOffice(rec *resolver.Record) *TaxOffice {
	if rec == nil {
		return nil
	}
	return &TaxOffice{
		Code:       rec.Code,
		BIN:        rec.BIN,
		Name:       rec.RawName,
		Region:     rec.RawRegion,
		IsDistrict: rec.IsDistrict,
	}
}

// TaxOffices chuyển danh sách bản ghi
func TaxOffices(records []*resolver.Record) []TaxOffice {
	out := make([]TaxOffice, 0, len(records))
	for _, rec := range records {
		out = append(out, *NewTaxOffice(rec))
	}
	return out
}
