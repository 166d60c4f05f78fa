package search

import (
	"context"
	"sort"
	"strings"

	"github.com/ugd-resolver/internal/normalizer"
	"github.com/ugd-resolver/internal/resolver"
)

// MemorySearcher tìm kiếm bằng quét bảng trong bộ nhớ khi không cấu hình Meilisearch
type MemorySearcher struct {
	maxCandidates int
}

// NewMemorySearcher tạo mới MemorySearcher
func NewMemorySearcher(maxCandidates int) *MemorySearcher {
	if maxCandidates <= 0 {
		maxCandidates = 20
	}
	return &MemorySearcher{maxCandidates: maxCandidates}
}

// Search: mỗi term của query khớp chuỗi con trên tên đã chuẩn hóa hoặc dạng Latin.
// Điểm = tỉ lệ term khớp.
func (s *MemorySearcher) Search(ctx context.Context, table *resolver.Table, query string, limit int) ([]OfficeHit, error) {
	terms := normalizer.Terms(normalizer.Normalize(query))
	if len(terms) == 0 {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 || limit > s.maxCandidates {
		limit = s.maxCandidates
	}

	var hits []OfficeHit
	for _, rec := range table.Records() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := normalizer.Normalize(rec.RawName + " " + rec.RawRegion)
		latin := Transliterate(rec.RawName + " " + rec.RawRegion)

		matched := 0
		for _, term := range terms {
			if strings.Contains(name, term) || strings.Contains(latin, term) {
				matched++
			}
		}
		if matched == 0 {
			continue
		}

		hits = append(hits, OfficeHit{
			Code:       rec.Code,
			BIN:        rec.BIN,
			Name:       rec.RawName,
			Region:     rec.RawRegion,
			IsDistrict: rec.IsDistrict,
			Score:      float64(matched) / float64(len(terms)),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}
