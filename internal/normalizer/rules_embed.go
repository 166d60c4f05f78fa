package normalizer

import (
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

//go:embed data/rules.yaml
var rulesYAML []byte

// RulesConfig chứa từ vựng hành chính được load từ YAML
type RulesConfig struct {
	AdminBodyPrefixes    []string `yaml:"admin_body_prefixes"`
	LocalityPrefixes     []string `yaml:"locality_prefixes"`
	DistrictCaseSuffixes []string `yaml:"district_case_suffixes"`
	DistrictStemTrims    []string `yaml:"district_stem_trims"`
	DistrictWords        []string `yaml:"district_words"`
	RegionWords          []string `yaml:"region_words"`
	RegionNameSuffixes   []string `yaml:"region_name_suffixes"`
	RegionNamePrefixes   []string `yaml:"region_name_prefixes"`
	RegionMarkers        []string `yaml:"region_markers"`
	MajorCityPrefixes    []string `yaml:"major_city_prefixes"`
	DistrictMarkers      []string `yaml:"district_markers"`
	DistrictAffixes      []string `yaml:"district_affixes"`
	LocalityAffixes      []string `yaml:"locality_affixes"`
	Connectors           []string `yaml:"connectors"`
	Separators           string   `yaml:"separators"`
	AdjectiveEndings     []string `yaml:"adjective_endings"`
	MinStemLength        int      `yaml:"min_stem_length"`
}

// Rules từ vựng mặc định (embedded)
var Rules = mustLoadRules()

// LoadRulesConfig load cấu hình rules từ embedded YAML
func LoadRulesConfig() (*RulesConfig, error) {
	config := &RulesConfig{}
	if err := yaml.Unmarshal(rulesYAML, config); err != nil {
		return nil, fmt.Errorf("lỗi parse rules.yaml: %w", err)
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func mustLoadRules() *RulesConfig {
	config, err := LoadRulesConfig()
	if err != nil {
		panic(err)
	}
	return config
}

func (rc *RulesConfig) validate() error {
	required := map[string][]string{
		"admin_body_prefixes":    rc.AdminBodyPrefixes,
		"locality_prefixes":      rc.LocalityPrefixes,
		"district_case_suffixes": rc.DistrictCaseSuffixes,
		"district_words":         rc.DistrictWords,
		"region_words":           rc.RegionWords,
		"region_name_suffixes":   rc.RegionNameSuffixes,
		"region_markers":         rc.RegionMarkers,
		"major_city_prefixes":    rc.MajorCityPrefixes,
		"district_markers":       rc.DistrictMarkers,
		"district_affixes":       rc.DistrictAffixes,
		"locality_affixes":       rc.LocalityAffixes,
		"connectors":             rc.Connectors,
	}
	for key, list := range required {
		if len(list) == 0 {
			return fmt.Errorf("rules.yaml: %s không được rỗng", key)
		}
	}
	if rc.Separators == "" {
		return fmt.Errorf("rules.yaml: separators không được rỗng")
	}
	return nil
}

// Alternation build nhóm regex (không capture) từ danh sách từ, từ dài nhất trước
// để leftmost-first ưu tiên "обл." hơn "обл", "или" hơn "и".
func Alternation(words []string) string {
	sorted := make([]string, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool {
		return utf8.RuneCountInString(sorted[i]) > utf8.RuneCountInString(sorted[j])
	})

	quoted := make([]string, len(sorted))
	for i, w := range sorted {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return "(?:" + strings.Join(quoted, "|") + ")"
}

// CharClass build character class từ danh sách ký tự
func CharClass(chars string) string {
	return "[" + regexp.QuoteMeta(chars) + "]"
}

// splitAbbreviations tách từ viết tắt có dấu chấm ("г.") khỏi từ đầy đủ ("город")
func splitAbbreviations(words []string) (full, abbr []string) {
	for _, w := range words {
		if strings.HasSuffix(w, ".") {
			abbr = append(abbr, w)
		} else {
			full = append(full, w)
		}
	}
	return full, abbr
}

// AffixPatterns build regex cắt một tiền tố và một hậu tố hành chính.
// Từ đầy đủ phải đứng riêng (theo sau bởi khoảng trắng hoặc hết chuỗi),
// từ viết tắt có dấu chấm có thể dính liền ("г.алматы").
func AffixPatterns(words []string) (prefix, suffix *regexp.Regexp) {
	full, abbr := splitAbbreviations(words)

	var prefixParts []string
	if len(full) > 0 {
		prefixParts = append(prefixParts, Alternation(full)+`(?:\s+|$)`)
	}
	if len(abbr) > 0 {
		prefixParts = append(prefixParts, Alternation(abbr)+`\s*`)
	}

	prefix = regexp.MustCompile(`^(?:` + strings.Join(prefixParts, "|") + `)`)
	suffix = regexp.MustCompile(`(?:^|\s+)` + Alternation(words) + `$`)
	return prefix, suffix
}
