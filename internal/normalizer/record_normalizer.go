package normalizer

import (
	"regexp"
	"strings"
)

// NormalizedRecord kết quả chuẩn hóa một bản ghi cơ quan thuế tham chiếu
type NormalizedRecord struct {
	NameTokens       []string `json:"name_tokens"`
	NormalizedRegion string   `json:"normalized_region,omitempty"`
	IsDistrict       bool     `json:"is_district"`
}

var (
	reRegionNameSuffix = regexp.MustCompile(`\s*` + Alternation(Rules.RegionNameSuffixes) + `$`)
	reRegionNamePrefix = regexp.MustCompile(`^` + Alternation(Rules.RegionNamePrefixes))

	// "угд по", "дгд по", "департамент государственных доходов по" ở đầu tên
	reAdminBodyPrefix = regexp.MustCompile(`^` + Alternation(Rules.AdminBodyPrefixes) + `(?:\s+|$)(?:по(?:\s+|$))?`)
	reLocalityPrefix  = regexp.MustCompile(`^` + Alternation(Rules.LocalityPrefixes) + `\s*`)

	// "есильскому району" → "есильск"
	reDistrictCaseForm = regexp.MustCompile(`^(\S+)` + Alternation(Rules.DistrictCaseSuffixes) + `\s+району`)
	// "району имени казыбек би" → "казыбек би"
	reDistrictNamedAfter = regexp.MustCompile(`^району\s+(?:имени\s*)?([^,]+)`)
	reQuotedName         = regexp.MustCompile(`^["«“]([^"»”]+)["»”]`)

	reDistrictWord = wordPattern(Rules.DistrictWords)
	reRegionWord   = wordPattern(Rules.RegionWords)
)

// wordPattern match từ đứng riêng hoặc ở cuối chuỗi
func wordPattern(words []string) *regexp.Regexp {
	alt := Alternation(words)
	return regexp.MustCompile(`(?:^|\s)` + alt + `(?:\s|$)|` + alt + `$`)
}

// namePipeline các bước 2–8 chuẩn hóa tên, theo đúng thứ tự
var namePipeline = Pipeline{
	StripRule("admin_body_prefix", reAdminBodyPrefix),
	StripRule("locality_prefix", reLocalityPrefix),
	CaptureRule("district_case_form", reDistrictCaseForm, trimDistrictStem),
	CaptureRule("district_named_after", reDistrictNamedAfter, nil),
	CaptureRule("quoted_name", reQuotedName, nil),
	ReplaceRule("district_word", reDistrictWord, " "),
	ReplaceRule("region_word", reRegionWord, " "),
}

// NamePipeline trả về pipeline chuẩn hóa tên (để test từng rule)
func NamePipeline() Pipeline {
	return namePipeline
}

// trimDistrictStem cắt "ом"/"ым" cuối gốc quận; "...ск" giữ nguyên
func trimDistrictStem(token string) string {
	for _, trim := range Rules.DistrictStemTrims {
		if strings.HasSuffix(token, trim) {
			return strings.TrimSuffix(token, trim)
		}
	}
	return token
}

// IsDistrict true nếu tên chứa "район" hoặc "району" (không phân biệt hoa thường)
func IsDistrict(name string) bool {
	lower := strings.ToLower(name)
	for _, w := range Rules.DistrictWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// NormalizeRegionName chuẩn hóa tên vùng; trả về "" khi không có vùng
func NormalizeRegionName(region string) string {
	s := strings.TrimSpace(strings.ToLower(region))
	if s == "" {
		return ""
	}

	s = reRegionNameSuffix.ReplaceAllLiteralString(s, "")
	s = reRegionNamePrefix.ReplaceAllLiteralString(s, "")
	return Normalize(s)
}

// NormalizeNameForTokens tách tên cơ quan thành các token đã chuẩn hóa
func NormalizeNameForTokens(name string) []string {
	tokens, _ := ExplainNameTokens(name)
	return tokens
}

// ExplainNameTokens như NormalizeNameForTokens, kèm các rule đã áp dụng
func ExplainNameTokens(name string) ([]string, []Step) {
	if name == "" {
		return nil, nil
	}

	s, steps := namePipeline.Run(strings.ToLower(name))

	var tokens []string
	for _, token := range Terms(Normalize(s)) {
		if RuneLen(token) > 1 || HasDigit(token) {
			tokens = append(tokens, token)
		}
	}
	return tokens, steps
}

// NormalizeRecord chuẩn hóa tên + vùng của một bản ghi tham chiếu
func NormalizeRecord(name, region string) NormalizedRecord {
	return NormalizedRecord{
		NameTokens:       NormalizeNameForTokens(name),
		NormalizedRegion: NormalizeRegionName(region),
		IsDistrict:       IsDistrict(name),
	}
}
