package resolver

import (
	"strings"

	"github.com/ugd-resolver/internal/normalizer"
	"github.com/ugd-resolver/internal/parser"
)

// Trọng số chấm điểm
const (
	RegionMatchBonus          = 100
	RegionMismatchPenalty     = -200
	NonDistrictPenalty        = -100
	DistrictMatchBonus        = 150
	DistrictMismatchPenalty   = -75
	UnexpectedDistrictPenalty = -20
	NameTermWeight            = 20
	RegionTermWeight          = 10
	TermLengthCap             = 5

	// Ứng viên phải có điểm > CandidateThreshold
	CandidateThreshold = -100
)

// Tên rule trong Reason
const (
	RuleRegionMatch        = "region_match"
	RuleRegionMismatch     = "region_mismatch"
	RuleNotDistrict        = "not_district"
	RuleDistrictMatch      = "district_match"
	RuleDistrictMismatch   = "district_mismatch"
	RuleUnexpectedDistrict = "unexpected_district"
	RuleNameTerm           = "name_term"
	RuleRegionTerm         = "region_term"
)

// Reason một khoản cộng/trừ điểm (chỉ để debug)
type Reason struct {
	Rule  string `json:"rule"`
	Delta int    `json:"delta"`
	Term  string `json:"term,omitempty"`
}

// MatchCandidate bản ghi kèm điểm cho một truy vấn
type MatchCandidate struct {
	Record  *Record  `json:"record"`
	Score   int      `json:"score"`
	Reasons []Reason `json:"reasons,omitempty"`
}

func (c *MatchCandidate) add(rule string, delta int, term string) {
	c.Score += delta
	c.Reasons = append(c.Reasons, Reason{Rule: rule, Delta: delta, Term: term})
}

// IsCandidate điểm có đủ để vào vòng xếp hạng không
func IsCandidate(score int) bool {
	return score > CandidateThreshold
}

// Score chấm điểm một bản ghi với input đã parse. Hàm thuần, không side effect.
func Score(rec *Record, parsed *parser.ParsedAddressInput) MatchCandidate {
	c := MatchCandidate{Record: rec}

	// 1. vùng
	if len(parsed.RegionTerms) > 0 {
		matched := false
		for _, term := range parsed.RegionTerms {
			if regionMatches(rec, term) {
				c.add(RuleRegionMatch, RegionMatchBonus, term)
				matched = true
				break
			}
		}
		if !matched {
			c.add(RuleRegionMismatch, RegionMismatchPenalty, "")
		}
	}

	// 2. quận
	switch {
	case len(parsed.DistrictTerms) > 0 && !rec.IsDistrict:
		c.add(RuleNotDistrict, NonDistrictPenalty, "")
	case len(parsed.DistrictTerms) > 0:
		matched := false
		for _, term := range parsed.DistrictTerms {
			if anyOverlap(rec.NameTokens, term) {
				c.add(RuleDistrictMatch, DistrictMatchBonus, term)
				matched = true
			}
		}
		if !matched {
			c.add(RuleDistrictMismatch, DistrictMismatchPenalty, "")
		}
	case rec.IsDistrict:
		c.add(RuleUnexpectedDistrict, UnexpectedDistrictPenalty, "")
	}

	// 3. term chung với tên
	for _, term := range parsed.GeneralTerms {
		if anyOverlap(rec.NameTokens, term) {
			c.add(RuleNameTerm, NameTermWeight*cappedLen(term), term)
		}
	}

	// 4. term chung với vùng, chỉ khi input không nêu vùng
	if len(parsed.RegionTerms) == 0 && rec.NormalizedRegion != "" {
		for _, term := range parsed.GeneralTerms {
			if strings.Contains(rec.NormalizedRegion, term) {
				c.add(RuleRegionTerm, RegionTermWeight*cappedLen(term), term)
			}
		}
	}

	return c
}

// regionMatches: bản ghi có vùng thì so chuỗi con trên vùng;
// bản ghi không có vùng (văn phòng cấp thành phố) thì so với token tên.
func regionMatches(rec *Record, term string) bool {
	if rec.NormalizedRegion != "" {
		return strings.Contains(rec.NormalizedRegion, term)
	}
	return anyOverlap(rec.NameTokens, term)
}

func cappedLen(term string) int {
	if n := normalizer.RuneLen(term); n < TermLengthCap {
		return n
	}
	return TermLengthCap
}

// ScoreAll chấm điểm toàn bộ bản ghi, giữ thứ tự bảng, bỏ bản ghi có điểm <= CandidateThreshold
func ScoreAll(records []*Record, parsed *parser.ParsedAddressInput) []MatchCandidate {
	var candidates []MatchCandidate
	for _, rec := range records {
		c := Score(rec, parsed)
		if IsCandidate(c.Score) {
			candidates = append(candidates, c)
		}
	}
	return candidates
}
