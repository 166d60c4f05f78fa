package suggest

import (
	"sort"

	"github.com/agnivade/levenshtein"
	"github.com/mozillazg/go-unidecode"
	"github.com/ugd-resolver/internal/normalizer"
	"github.com/ugd-resolver/internal/resolver"
	"github.com/xrash/smetrics"
)

// DefaultFloor độ tương đồng tối thiểu để gợi ý
const DefaultFloor = 0.82

// Suggestion gợi ý "có phải bạn muốn tìm" khi resolve không ra kết quả.
// Chỉ mang tính tham khảo, không bao giờ được coi là kết quả khớp.
type Suggestion struct {
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	Region     string  `json:"region,omitempty"`
	Similarity float64 `json:"similarity"`
	Term       string  `json:"term"`
	Token      string  `json:"token"`
}

// Suggester xếp hạng bản ghi theo độ giống giữa term truy vấn và token tên
type Suggester struct {
	floor float64
	limit int
}

// NewSuggester tạo mới Suggester; floor <= 0 dùng DefaultFloor
func NewSuggester(floor float64, limit int) *Suggester {
	if floor <= 0 {
		floor = DefaultFloor
	}
	if limit <= 0 {
		limit = 5
	}
	return &Suggester{floor: floor, limit: limit}
}

// Similarity điểm giống nhau trong [0,1]: max của Jaro-Winkler (trên dạng Latin)
// và Levenshtein chuẩn hóa theo số ký tự
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	// smetrics so theo byte nên chuyển sang Latin trước
	score := smetrics.JaroWinkler(unidecode.Unidecode(a), unidecode.Unidecode(b), 0.7, 4)

	maxLen := normalizer.RuneLen(a)
	if n := normalizer.RuneLen(b); n > maxLen {
		maxLen = n
	}
	levScore := 1.0 - float64(levenshtein.ComputeDistance(a, b))/float64(maxLen)
	if levScore > score {
		score = levScore
	}
	return score
}

// Suggest trả về tối đa limit gợi ý, giảm dần theo độ giống, mỗi bản ghi một lần
func (s *Suggester) Suggest(records []*resolver.Record, terms []string) []Suggestion {
	if len(terms) == 0 {
		return nil
	}

	var out []Suggestion
	for _, rec := range records {
		best := Suggestion{}
		for _, term := range terms {
			for _, token := range rec.NameTokens {
				if sim := Similarity(term, token); sim > best.Similarity {
					best = Suggestion{Similarity: sim, Term: term, Token: token}
				}
			}
		}
		if best.Similarity < s.floor {
			continue
		}
		best.Code = rec.Code
		best.Name = rec.RawName
		best.Region = rec.RawRegion
		out = append(out, best)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Similarity > out[j].Similarity
	})
	if len(out) > s.limit {
		out = out[:s.limit]
	}
	return out
}
