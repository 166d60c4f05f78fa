package parser

import (
	"regexp"
	"strings"

	"github.com/ugd-resolver/internal/normalizer"
)

// ParsedAddressInput kết quả phân tích chuỗi địa danh người dùng nhập
type ParsedAddressInput struct {
	RegionTerms   []string `json:"region_terms"`
	DistrictTerms []string `json:"district_terms"`
	GeneralTerms  []string `json:"general_terms"`
	// AllTerms gồm các term trên, cộng từng mảnh (tách theo khoảng trắng) của term vùng
	AllTerms []string `json:"all_terms"`
}

// Empty true khi không tách được term nào
func (p *ParsedAddressInput) Empty() bool {
	return p == nil || len(p.AllTerms) == 0
}

// AddressParser tách chuỗi địa danh thành term vùng / quận / chung.
// Không giữ state ngoài các regex đã compile nên dùng chung được giữa các goroutine.
type AddressParser struct {
	rules *normalizer.RulesConfig

	splitter       *regexp.Regexp
	districtSuffix *regexp.Regexp
	districtPrefix *regexp.Regexp
	generalPrefix  *regexp.Regexp
	generalSuffix  *regexp.Regexp
}

// NewAddressParser tạo mới AddressParser từ bộ từ vựng hành chính
func NewAddressParser(rules *normalizer.RulesConfig) *AddressParser {
	sep := normalizer.CharClass(rules.Separators)
	sepOrSpace := "[\\s" + strings.TrimPrefix(sep, "[")

	// "a, b" | "a; b" | "a / b" | "a и b" | "a или b" | "a or b"
	splitter := regexp.MustCompile(`(?i)(?:^|` + sepOrSpace + `+)` + normalizer.Alternation(rules.Connectors) +
		`(?:` + sepOrSpace + `+|$)|` + sep)

	districtAlt := normalizer.Alternation(rules.DistrictAffixes)
	generalPrefix, generalSuffix := normalizer.AffixPatterns(rules.LocalityAffixes)

	return &AddressParser{
		rules:          rules,
		splitter:       splitter,
		districtSuffix: regexp.MustCompile(`\s*` + districtAlt + `$`),
		districtPrefix: regexp.MustCompile(`^` + districtAlt + `\s*`),
		generalPrefix:  generalPrefix,
		generalSuffix:  generalSuffix,
	}
}

var defaultParser = NewAddressParser(normalizer.Rules)

// DefaultParser parser dùng từ vựng embedded
func DefaultParser() *AddressParser {
	return defaultParser
}

// ParseLocality phân tích chuỗi địa danh bằng từ vựng mặc định
func ParseLocality(locality string) *ParsedAddressInput {
	return defaultParser.Parse(locality)
}

// Parse tách và phân loại các phần của chuỗi địa danh. Không bao giờ lỗi:
// input rỗng cho kết quả rỗng.
func (ap *AddressParser) Parse(locality string) *ParsedAddressInput {
	var regions, districts, general []string

	for _, part := range ap.SplitParts(locality) {
		lower := strings.ToLower(part)

		switch {
		case ap.isRegionPart(lower):
			if region := normalizer.NormalizeRegionName(lower); region != "" {
				regions = append(regions, region)
			}
		case ap.isDistrictPart(lower):
			districts = append(districts, ap.districtTerms(lower)...)
		default:
			general = append(general, ap.generalTerms(lower)...)
		}
	}

	regions = normalizer.Unique(regions)
	districts = longTerms(normalizer.Unique(districts))

	classified := make(map[string]struct{}, len(regions)+len(districts))
	for _, t := range regions {
		classified[t] = struct{}{}
	}
	for _, t := range districts {
		classified[t] = struct{}{}
	}

	var generalFinal []string
	for _, t := range normalizer.Unique(general) {
		if _, ok := classified[t]; !ok {
			generalFinal = append(generalFinal, t)
		}
	}

	all := make([]string, 0, len(regions)+len(districts)+len(generalFinal))
	for _, r := range regions {
		all = append(all, r)
		all = append(all, strings.Fields(r)...)
	}
	all = append(all, districts...)
	all = append(all, generalFinal...)

	return &ParsedAddressInput{
		RegionTerms:   nonNil(regions),
		DistrictTerms: nonNil(districts),
		GeneralTerms:  nonNil(generalFinal),
		AllTerms:      nonNil(normalizer.Unique(all)),
	}
}

// SplitParts tách input theo dấu phân cách và liên từ, bỏ phần rỗng
func (ap *AddressParser) SplitParts(locality string) []string {
	if strings.TrimSpace(locality) == "" {
		return nil
	}

	var parts []string
	for _, raw := range ap.splitter.Split(locality, -1) {
		if part := strings.TrimSpace(raw); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

// isRegionPart: "... область" / "... обл" / "... обл." hoặc bốn thành phố lớn
func (ap *AddressParser) isRegionPart(lower string) bool {
	for _, marker := range ap.rules.RegionMarkers {
		if strings.HasSuffix(lower, marker) {
			return true
		}
	}
	for _, city := range ap.rules.MajorCityPrefixes {
		if strings.HasPrefix(lower, city) {
			return true
		}
	}
	return false
}

func (ap *AddressParser) isDistrictPart(lower string) bool {
	for _, marker := range ap.rules.DistrictMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// districtTerms cắt "район"/"р-н"/"ауданы" ở cuối, nếu không có thì ở đầu
func (ap *AddressParser) districtTerms(lower string) []string {
	stripped := ap.districtSuffix.ReplaceAllLiteralString(lower, "")
	if stripped == lower {
		stripped = ap.districtPrefix.ReplaceAllLiteralString(lower, "")
	}
	return longTerms(normalizer.Terms(normalizer.Normalize(stripped)))
}

// generalTerms cắt tối đa một tiền tố và một hậu tố; nếu cắt hết thì dùng lại phần gốc
func (ap *AddressParser) generalTerms(lower string) []string {
	stripped := ap.generalPrefix.ReplaceAllLiteralString(lower, "")
	stripped = ap.generalSuffix.ReplaceAllLiteralString(stripped, "")

	normalized := normalizer.Normalize(stripped)
	if normalized == "" {
		normalized = normalizer.Normalize(lower)
	}
	return normalizer.Terms(normalized)
}

func longTerms(terms []string) []string {
	var out []string
	for _, t := range terms {
		if normalizer.RuneLen(t) > 1 {
			out = append(out, t)
		}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
