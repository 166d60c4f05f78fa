package resolver

import "github.com/ugd-resolver/internal/reference"

var (
	esilDistrict = reference.RawRecord{Code: "0301", BIN: "123456789013", Name: "Есильское районное управление", Region: "Акмолинская область"}
	almatyCity   = reference.RawRecord{Code: "6001", BIN: "000000000000", Name: "ДГД по г.Алматы"}
	astanaCity   = reference.RawRecord{Code: "6201", BIN: "000000000000", Name: "ДГД по г.Астане"}
	numberedUGD  = reference.RawRecord{Code: "0005", Name: "УГД №5"}
	digitOnly    = reference.RawRecord{Code: "5555", Name: "5"}
	abaiDistrict = reference.RawRecord{Code: "4810", Name: "Абайский район"}
)

func newTestTable(rows ...reference.RawRecord) *Table {
	return NewTable(rows, "test")
}

func reasonRules(c MatchCandidate) []string {
	var rules []string
	for _, r := range c.Reasons {
		rules = append(rules, r.Rule)
	}
	return rules
}
