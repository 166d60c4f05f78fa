package resolver

import (
	"sort"

	"github.com/ugd-resolver/internal/parser"
)

// ConfidenceFloor điểm tối thiểu của ứng viên tốt nhất khi input có nhiều term
const ConfidenceFloor = 50

// Rank sắp xếp giảm dần theo điểm; điểm bằng nhau giữ thứ tự bảng
func Rank(candidates []MatchCandidate) []MatchCandidate {
	ranked := make([]MatchCandidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// Select chọn ứng viên tốt nhất hoặc nil khi không đủ tin cậy
func Select(candidates []MatchCandidate, parsed *parser.ParsedAddressInput) *MatchCandidate {
	return selectRanked(Rank(candidates), parsed)
}

func selectRanked(ranked []MatchCandidate, parsed *parser.ParsedAddressInput) *MatchCandidate {
	if len(ranked) == 0 || parsed.Empty() {
		return nil
	}

	best := &ranked[0]
	if best.Score < ConfidenceFloor && len(parsed.AllTerms) > 1 {
		// Nhánh một-term nằm trong điều kiện nhiều-term nên không bao giờ chạy.
		// Giữ nguyên hành vi này; xem DESIGN.md.
		if len(parsed.AllTerms) == 1 {
			return singleTermFallback(ranked, parsed.AllTerms[0])
		}
		return nil
	}
	return best
}

// singleTermFallback ứng viên đầu tiên (điểm dương) có token tên hoặc vùng đúng bằng term
func singleTermFallback(ranked []MatchCandidate, term string) *MatchCandidate {
	for i := range ranked {
		c := &ranked[i]
		if c.Score > 0 && (c.Record.HasToken(term) || c.Record.NormalizedRegion == term) {
			return c
		}
	}
	return nil
}
