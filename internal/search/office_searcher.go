package search

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/meilisearch/meilisearch-go"
	"github.com/mozillazg/go-unidecode"
	"github.com/ugd-resolver/internal/normalizer"
	"github.com/ugd-resolver/internal/resolver"
	"go.uber.org/zap"
)

// ErrEmptyQuery query tìm kiếm rỗng
var ErrEmptyQuery = errors.New("query không được để trống")

// OfficeHit một kết quả tìm kiếm
type OfficeHit struct {
	Code       string  `json:"code"`
	BIN        string  `json:"bin"`
	Name       string  `json:"name"`
	Region     string  `json:"region,omitempty"`
	IsDistrict bool    `json:"is_district"`
	Score      float64 `json:"score"`
}

// Searcher tìm cơ quan thuế theo tên trong một snapshot bảng tham chiếu
type Searcher interface {
	Search(ctx context.Context, table *resolver.Table, query string, limit int) ([]OfficeHit, error)
}

// SearchConfig cấu hình cho Meilisearch
type SearchConfig struct {
	Host          string
	APIKey        string
	IndexName     string
	Timeout       time.Duration
	MaxCandidates int
}

// OfficeSearcher tìm kiếm cơ quan thuế qua Meilisearch (chịu lỗi gõ, hỗ trợ gõ Latin)
type OfficeSearcher struct {
	client        *ClientWrapper
	logger        *zap.Logger
	indexName     string
	timeout       time.Duration
	maxCandidates int
}

// NewOfficeSearcher tạo mới OfficeSearcher, kiểm tra kết nối trước
func NewOfficeSearcher(config SearchConfig, logger *zap.Logger) (*OfficeSearcher, error) {
	client := NewClientWrapper(config.Host, config.APIKey)
	if err := client.Healthy(); err != nil {
		return nil, err
	}

	if config.IndexName == "" {
		config.IndexName = "tax_offices"
	}
	if config.MaxCandidates <= 0 {
		config.MaxCandidates = 20
	}

	return &OfficeSearcher{
		client:        client,
		logger:        logger,
		indexName:     config.IndexName,
		timeout:       config.Timeout,
		maxCandidates: config.MaxCandidates,
	}, nil
}

// Search tìm trong index, chỉ lấy document của phiên bản bảng hiện tại
func (s *OfficeSearcher) Search(ctx context.Context, table *resolver.Table, query string, limit int) ([]OfficeHit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > s.maxCandidates {
		limit = s.maxCandidates
	}

	result, err := s.client.SearchIndex(s.indexName, query, FilterVersion(table.Version()), int64(limit))
	if err != nil {
		return nil, fmt.Errorf("lỗi tìm kiếm Meilisearch: %w", err)
	}
	return parseHits(result), nil
}

// parseHits parse kết quả Meilisearch thành OfficeHit
func parseHits(result *meilisearch.SearchResponse) []OfficeHit {
	hits := make([]OfficeHit, 0, len(result.Hits))
	for i, hit := range result.Hits {
		hitMap, ok := hit.(map[string]interface{})
		if !ok {
			continue
		}
		hits = append(hits, hitFromDocument(hitMap, i))
	}
	return hits
}

func hitFromDocument(doc map[string]interface{}, rank int) OfficeHit {
	h := OfficeHit{}
	h.Code, _ = doc["code"].(string)
	h.BIN, _ = doc["bin"].(string)
	h.Name, _ = doc["name"].(string)
	h.Region, _ = doc["region"].(string)
	h.IsDistrict, _ = doc["is_district"].(bool)

	// Meilisearch trả hit theo thứ tự relevance; dùng _rankingScore nếu có
	if score, ok := doc["_rankingScore"].(float64); ok {
		h.Score = score
	} else {
		h.Score = 1.0 / float64(rank+1)
	}
	return h
}

// BuildIndexes cấu hình index cho tìm kiếm cơ quan thuế
func (s *OfficeSearcher) BuildIndexes() error {
	index := s.client.Index(s.indexName)

	searchableAttrs := []string{"name", "name_tokens", "name_latin", "region", "code"}
	filterableAttrs := []string{"table_version", "is_district", "code", "normalized_region"}
	sortableAttrs := []string{"code"}
	rankingRules := []string{"words", "typo", "proximity", "attribute", "sort", "exactness"}
	stopWords := []string{"по", "угд", "дгд", "ugd", "dgd", "po"}
	synonyms := map[string][]string{
		"г":          {"город"},
		"р-н":        {"район"},
		"обл":        {"область"},
		"нур-султан": {"астана"},
		"астана":     {"нур-султан"},
	}
	oneTypo := int64(4)
	twoTypos := int64(8)

	task, err := index.UpdateSettings(&meilisearch.Settings{
		SearchableAttributes: searchableAttrs,
		FilterableAttributes: filterableAttrs,
		SortableAttributes:   sortableAttrs,
		RankingRules:         rankingRules,
		StopWords:            stopWords,
		Synonyms:             synonyms,
		TypoTolerance: &meilisearch.TypoTolerance{
			Enabled: true,
			MinWordSizeForTypos: meilisearch.MinWordSizeForTypos{
				OneTypo:  oneTypo,
				TwoTypos: twoTypos,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("lỗi cấu hình index: %w", err)
	}

	s.logger.Info("Đã cấu hình index Meilisearch thành công",
		zap.String("index", s.indexName),
		zap.Int64("task_uid", task.TaskUID))
	return nil
}

// SeedOffices nạp toàn bộ bảng tham chiếu vào index, theo batch 1000
func (s *OfficeSearcher) SeedOffices(table *resolver.Table) error {
	records := table.Records()
	if len(records) == 0 {
		return errors.New("không có dữ liệu để seed")
	}

	index := s.client.Index(s.indexName)
	version := table.Version()

	documents := make([]map[string]interface{}, 0, len(records))
	for i, rec := range records {
		documents = append(documents, OfficeDocument(rec, version, i))
	}

	batchSize := 1000
	for i := 0; i < len(documents); i += batchSize {
		end := i + batchSize
		if end > len(documents) {
			end = len(documents)
		}

		task, err := index.AddDocuments(documents[i:end], "id")
		if err != nil {
			return fmt.Errorf("lỗi thêm documents batch %d-%d: %w", i, end, err)
		}

		s.logger.Info("Đã thêm batch documents",
			zap.Int("from", i),
			zap.Int("to", end),
			zap.Int64("task_uid", task.TaskUID))
	}

	s.logger.Info("Đã seed bảng tham chiếu vào Meilisearch",
		zap.String("version", version),
		zap.Int("total_documents", len(documents)))
	return nil
}

// OfficeDocument document Meilisearch cho một bản ghi.
// id = phiên bản + số dòng nên các phiên bản cũ không ghi đè lên nhau.
func OfficeDocument(rec *resolver.Record, version string, row int) map[string]interface{} {
	return map[string]interface{}{
		"id":                version + "_" + strconv.Itoa(row),
		"code":              rec.Code,
		"bin":               rec.BIN,
		"name":              rec.RawName,
		"region":            rec.RawRegion,
		"name_tokens":       rec.NameTokens,
		"normalized_region": rec.NormalizedRegion,
		"name_latin":        Transliterate(rec.RawName),
		"is_district":       rec.IsDistrict,
		"table_version":     version,
	}
}

// Transliterate chuyển tên sang Latin đã chuẩn hóa ("ДГД по г.Алматы" → "dgd po g almaty")
func Transliterate(s string) string {
	return normalizer.Normalize(unidecode.Unidecode(s))
}
