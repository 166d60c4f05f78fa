package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ugd-resolver/internal/reference"
	"github.com/ugd-resolver/internal/resolver"
	"go.uber.org/zap"
)

func testTable() *resolver.Table {
	return resolver.NewTable([]reference.RawRecord{
		{Code: "0301", BIN: "123456789013", Name: "Есильское районное управление", Region: "Акмолинская область"},
		{Code: "6001", BIN: "000000000000", Name: "ДГД по г.Алматы"},
		{Code: "6201", BIN: "000000000000", Name: "ДГД по г.Астане"},
	}, "v1")
}

func TestNewOfficeSearcher_Unreachable(t *testing.T) {
	config := SearchConfig{
		Host:      "http://127.0.0.1:1",
		IndexName: "tax_offices",
		Timeout:   time.Second,
	}

	_, err := NewOfficeSearcher(config, zap.NewNop())
	assert.Error(t, err)
}

func TestOfficeDocument(t *testing.T) {
	rec, ok := testTable().ByCode("6001")
	require.True(t, ok)

	doc := OfficeDocument(rec, "v1", 1)

	assert.Equal(t, "v1_1", doc["id"])
	assert.Equal(t, "6001", doc["code"])
	assert.Equal(t, "ДГД по г.Алматы", doc["name"])
	assert.Equal(t, []string{"алматы"}, doc["name_tokens"])
	assert.Equal(t, false, doc["is_district"])
	assert.Equal(t, "v1", doc["table_version"])
	assert.Contains(t, doc["name_latin"], "almaty")
}

func TestHitFromDocument(t *testing.T) {
	hit := hitFromDocument(map[string]interface{}{
		"code":          "6001",
		"bin":           "000000000000",
		"name":          "ДГД по г.Алматы",
		"is_district":   false,
		"_rankingScore": 0.9,
	}, 3)

	assert.Equal(t, "6001", hit.Code)
	assert.Equal(t, 0.9, hit.Score)

	hit = hitFromDocument(map[string]interface{}{"code": "1"}, 1)
	assert.Equal(t, 0.5, hit.Score)
}

func TestFilters(t *testing.T) {
	assert.Equal(t, "", FilterVersion(""))
	assert.Equal(t, `table_version = "v1"`, FilterVersion("v1"))
	assert.Equal(t, `table_version = "v1" AND is_district = true`, FilterDistrict("v1", true))
	assert.Equal(t, "is_district = false", FilterDistrict("", false))
}

func TestMemorySearcher_Search(t *testing.T) {
	s := NewMemorySearcher(10)
	table := testTable()

	testCases := []struct {
		name  string
		query string
		codes []string
	}{
		{name: "Cyrillic substring", query: "алмат", codes: []string{"6001"}},
		{name: "Latin query", query: "Almaty", codes: []string{"6001"}},
		{name: "Region match", query: "акмолинская", codes: []string{"0301"}},
		{name: "Partial terms ranked", query: "ДГД Астане", codes: []string{"6201", "6001"}},
		{name: "No match", query: "Павлодар", codes: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			hits, err := s.Search(context.Background(), table, tc.query, 0)
			require.NoError(t, err)

			var codes []string
			for _, h := range hits {
				codes = append(codes, h.Code)
			}
			assert.Equal(t, tc.codes, codes)
		})
	}
}

func TestMemorySearcher_Errors(t *testing.T) {
	s := NewMemorySearcher(0)

	_, err := s.Search(context.Background(), testTable(), "  ", 5)
	assert.ErrorIs(t, err, ErrEmptyQuery)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Search(ctx, testTable(), "алматы", 5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemorySearcher_Limit(t *testing.T) {
	hits, err := NewMemorySearcher(10).Search(context.Background(), testTable(), "дгд", 1)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}
